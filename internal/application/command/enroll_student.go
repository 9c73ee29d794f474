package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/alem-hub/campus-records/internal/domain/shared"
	"github.com/alem-hub/campus-records/internal/domain/university"
	"github.com/alem-hub/campus-records/pkg/logger"
)

// EnrollStudentCommand enrolls a student in a course.
type EnrollStudentCommand struct {
	StudentID  string
	CourseCode string

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c EnrollStudentCommand) Validate() error {
	if strings.TrimSpace(c.StudentID) == "" {
		return fmt.Errorf("%w: enroll_student: student_id is required", shared.ErrInvalidInput)
	}
	if strings.TrimSpace(c.CourseCode) == "" {
		return fmt.Errorf("%w: enroll_student: course_code is required", shared.ErrInvalidInput)
	}
	return nil
}

// EnrollStudentResult reports whether a new enrollment was created.
type EnrollStudentResult struct {
	StudentID   string
	CourseCode  string
	CourseTitle string
	Created     bool
}

// Enroller is the registrar surface EnrollStudentHandler needs.
type Enroller interface {
	Enroll(studentID, courseCode string) (bool, error)
	Course(code string) (*university.Course, error)
}

// EnrollStudentHandler handles EnrollStudentCommand.
type EnrollStudentHandler struct {
	registrar Enroller
	publisher shared.EventPublisher
	log       *logger.Logger
}

// NewEnrollStudentHandler creates a new EnrollStudentHandler. A nil publisher
// or logger discards events or log lines.
func NewEnrollStudentHandler(registrar Enroller, publisher shared.EventPublisher, log *logger.Logger) *EnrollStudentHandler {
	if publisher == nil {
		publisher = shared.NopPublisher{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &EnrollStudentHandler{
		registrar: registrar,
		publisher: publisher,
		log:       log.With(logger.Component("command"), logger.Operation("enroll_student")),
	}
}

// Handle enrolls the student. Re-enrolling is not an error and publishes
// nothing.
func (h *EnrollStudentHandler) Handle(ctx context.Context, cmd EnrollStudentCommand) (*EnrollStudentResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	created, err := h.registrar.Enroll(cmd.StudentID, cmd.CourseCode)
	if err != nil {
		h.log.Warn("enrollment rejected",
			logger.StudentID(cmd.StudentID), logger.CourseCode(cmd.CourseCode), logger.Err(err))
		return nil, fmt.Errorf("enroll_student: %w", err)
	}

	result := &EnrollStudentResult{StudentID: cmd.StudentID, CourseCode: cmd.CourseCode, Created: created}
	// Enroll has already checked the course exists.
	if c, err := h.registrar.Course(cmd.CourseCode); err == nil {
		result.CourseTitle = c.Title()
	}
	if !created {
		h.log.Debug("already enrolled", logger.StudentID(cmd.StudentID), logger.CourseCode(cmd.CourseCode))
		return result, nil
	}

	event := shared.NewStudentEnrolledEvent(cmd.StudentID, cmd.CourseCode)
	event.BaseEvent = event.WithCorrelationID(cmd.CorrelationID)
	publish(h.publisher, h.log, event)

	h.log.Info("student enrolled",
		logger.StudentID(cmd.StudentID),
		logger.CourseCode(cmd.CourseCode),
		logger.String("course_title", result.CourseTitle),
	)
	return result, nil
}

// publish sends an event and logs a failure. Publishing never fails a
// command that has already been applied.
func publish(p shared.EventPublisher, log *logger.Logger, event shared.Event) {
	if err := p.Publish(event); err != nil {
		log.Error("publish event failed",
			logger.String("event_type", string(event.EventType())),
			logger.String("aggregate_id", event.AggregateID()),
			logger.Err(err),
		)
	}
}
