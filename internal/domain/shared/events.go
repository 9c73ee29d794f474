package shared

import (
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types.
const (
	// Enrollment events
	EventStudentEnrolled EventType = "enrollment.student_enrolled"

	// Record events
	EventGradeRecorded    EventType = "record.grade_recorded"
	EventAttendanceMarked EventType = "record.attendance_marked"

	// Performance events
	EventPerformanceEvaluated EventType = "performance.evaluated"

	// System events
	EventRosterImported EventType = "system.roster_imported"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		AggregateId: aggregateID,
	}
}

// WithCorrelationID sets the correlation ID for tracing.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// Enrollment Events
// ═══════════════════════════════════════════════════════════════════════════

// StudentEnrolledEvent is emitted when a new enrollment is created.
type StudentEnrolledEvent struct {
	BaseEvent
	CourseCode string `json:"course_code"`
}

// Payload implements Event interface.
func (e StudentEnrolledEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id":  e.AggregateId,
		"course_code": e.CourseCode,
	}
}

// NewStudentEnrolledEvent creates a new StudentEnrolledEvent.
func NewStudentEnrolledEvent(studentID, courseCode string) StudentEnrolledEvent {
	return StudentEnrolledEvent{
		BaseEvent:  NewBaseEvent(EventStudentEnrolled, studentID),
		CourseCode: courseCode,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Record Events
// ═══════════════════════════════════════════════════════════════════════════

// GradeRecordedEvent is emitted after a grade is stored or replaced.
type GradeRecordedEvent struct {
	BaseEvent
	CourseCode string  `json:"course_code"`
	Letter     string  `json:"letter"`
	Points     int     `json:"points"`
	GPA        float64 `json:"gpa"`
}

// Payload implements Event interface.
func (e GradeRecordedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id":  e.AggregateId,
		"course_code": e.CourseCode,
		"letter":      e.Letter,
		"points":      e.Points,
		"gpa":         e.GPA,
	}
}

// NewGradeRecordedEvent creates a new GradeRecordedEvent.
func NewGradeRecordedEvent(studentID, courseCode, letter string, points int, gpa float64) GradeRecordedEvent {
	return GradeRecordedEvent{
		BaseEvent:  NewBaseEvent(EventGradeRecorded, studentID),
		CourseCode: courseCode,
		Letter:     letter,
		Points:     points,
		GPA:        gpa,
	}
}

// AttendanceMarkedEvent is emitted after a presence mark is appended.
type AttendanceMarkedEvent struct {
	BaseEvent
	CourseCode string  `json:"course_code"`
	Present    bool    `json:"present"`
	CourseRate float64 `json:"course_rate"`
}

// Payload implements Event interface.
func (e AttendanceMarkedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id":  e.AggregateId,
		"course_code": e.CourseCode,
		"present":     e.Present,
		"course_rate": e.CourseRate,
	}
}

// NewAttendanceMarkedEvent creates a new AttendanceMarkedEvent.
func NewAttendanceMarkedEvent(studentID, courseCode string, present bool, courseRate float64) AttendanceMarkedEvent {
	return AttendanceMarkedEvent{
		BaseEvent:  NewBaseEvent(EventAttendanceMarked, studentID),
		CourseCode: courseCode,
		Present:    present,
		CourseRate: courseRate,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Performance Events
// ═══════════════════════════════════════════════════════════════════════════

// PerformanceEvaluatedEvent is emitted when a performance evaluation lands
// outside the middle band.
type PerformanceEvaluatedEvent struct {
	BaseEvent
	GPA            float64 `json:"gpa"`
	Attendance     float64 `json:"attendance"`
	Classification string  `json:"classification"`
}

// Payload implements Event interface.
func (e PerformanceEvaluatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id":     e.AggregateId,
		"gpa":            e.GPA,
		"attendance":     e.Attendance,
		"classification": e.Classification,
	}
}

// NewPerformanceEvaluatedEvent creates a new PerformanceEvaluatedEvent.
func NewPerformanceEvaluatedEvent(studentID string, gpa, attendance float64, classification string) PerformanceEvaluatedEvent {
	return PerformanceEvaluatedEvent{
		BaseEvent:      NewBaseEvent(EventPerformanceEvaluated, studentID),
		GPA:            gpa,
		Attendance:     attendance,
		Classification: classification,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// System Events
// ═══════════════════════════════════════════════════════════════════════════

// RosterImportedEvent is emitted after a roster source has been applied.
type RosterImportedEvent struct {
	BaseEvent
	Source      string `json:"source"`
	Students    int    `json:"students"`
	Courses     int    `json:"courses"`
	Lecturers   int    `json:"lecturers"`
	Enrollments int    `json:"enrollments"`
}

// Payload implements Event interface.
func (e RosterImportedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"source":      e.Source,
		"students":    e.Students,
		"courses":     e.Courses,
		"lecturers":   e.Lecturers,
		"enrollments": e.Enrollments,
	}
}

// NewRosterImportedEvent creates a new RosterImportedEvent.
func NewRosterImportedEvent(source string, students, courses, lecturers, enrollments int) RosterImportedEvent {
	return RosterImportedEvent{
		BaseEvent:   NewBaseEvent(EventRosterImported, source),
		Source:      source,
		Students:    students,
		Courses:     courses,
		Lecturers:   lecturers,
		Enrollments: enrollments,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Bus contracts
// ═══════════════════════════════════════════════════════════════════════════

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}

// NopPublisher discards every event.
type NopPublisher struct{}

// Publish implements EventPublisher.
func (NopPublisher) Publish(Event) error { return nil }
