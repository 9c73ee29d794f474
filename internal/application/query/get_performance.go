// Package query contains read-only registrar operations (CQRS - Queries).
package query

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/alem-hub/campus-records/internal/domain/record"
	"github.com/alem-hub/campus-records/internal/domain/shared"
	"github.com/alem-hub/campus-records/internal/domain/university"
	"github.com/alem-hub/campus-records/pkg/logger"
)

// GetPerformanceQuery asks for one student's performance.
type GetPerformanceQuery struct {
	StudentID string
}

// Validate validates the query.
func (q GetPerformanceQuery) Validate() error {
	if strings.TrimSpace(q.StudentID) == "" {
		return fmt.Errorf("%w: get_performance: student_id is required", shared.ErrInvalidInput)
	}
	return nil
}

// CoursePerformanceDTO is one course line of a performance view.
type CoursePerformanceDTO struct {
	Code           string
	Enrolled       bool
	Graded         bool
	Letter         string
	Points         int
	Sessions       int
	AttendanceRate float64
}

// PerformanceDTO is the read model for a student's performance.
type PerformanceDTO struct {
	StudentID      string
	Name           string
	GPA            float64
	Attendance     float64
	Classification record.Classification
	Message        string
	Summary        string
	Courses        []CoursePerformanceDTO
}

// StudentReader is the registrar surface the query needs.
type StudentReader interface {
	EnrolledCourses(studentID string) ([]*university.Course, error)
	ViewStudent(studentID string, fn func(s *university.Student)) error
}

// GetPerformanceHandler handles GetPerformanceQuery.
type GetPerformanceHandler struct {
	registrar StudentReader
	publisher shared.EventPublisher
	log       *logger.Logger
}

// NewGetPerformanceHandler creates a new GetPerformanceHandler. Evaluations
// outside the middle band are published as PerformanceEvaluatedEvent.
func NewGetPerformanceHandler(registrar StudentReader, publisher shared.EventPublisher, log *logger.Logger) *GetPerformanceHandler {
	if publisher == nil {
		publisher = shared.NopPublisher{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &GetPerformanceHandler{
		registrar: registrar,
		publisher: publisher,
		log:       log.With(logger.Component("query"), logger.Operation("get_performance")),
	}
}

// Handle builds the performance view.
func (h *GetPerformanceHandler) Handle(ctx context.Context, q GetPerformanceQuery) (*PerformanceDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	enrolled, err := h.registrar.EnrolledCourses(q.StudentID)
	if err != nil {
		return nil, fmt.Errorf("get_performance: %w", err)
	}
	enrolledCodes := make(map[string]bool, len(enrolled))
	for _, c := range enrolled {
		enrolledCodes[c.Code()] = true
	}

	var dto PerformanceDTO
	err = h.registrar.ViewStudent(q.StudentID, func(s *university.Student) {
		rec := s.Record()
		p := rec.Performance()

		dto = PerformanceDTO{
			StudentID:      s.ID(),
			Name:           s.Name(),
			GPA:            p.GPA,
			Attendance:     p.Attendance,
			Classification: p.Classification,
			Message:        p.Classification.Message(),
			Summary:        p.Summary(),
			Courses:        courseLines(rec, enrolledCodes),
		}
	})
	if err != nil {
		return nil, fmt.Errorf("get_performance: %w", err)
	}

	if dto.Classification != record.ClassificationNone {
		// A query never fails on publish.
		event := shared.NewPerformanceEvaluatedEvent(
			dto.StudentID, dto.GPA, dto.Attendance, string(dto.Classification),
		)
		if err := h.publisher.Publish(event); err != nil {
			h.log.Error("publish event failed",
				logger.String("event_type", string(event.EventType())),
				logger.StudentID(dto.StudentID),
				logger.Err(err),
			)
		}
	}

	return &dto, nil
}

// courseLines lists every course the student is enrolled in or has record
// data for, sorted by code.
func courseLines(rec *record.AcademicRecord, enrolled map[string]bool) []CoursePerformanceDTO {
	codes := make(map[string]struct{}, len(enrolled))
	for code := range enrolled {
		codes[code] = struct{}{}
	}
	for _, code := range rec.Courses() {
		codes[code] = struct{}{}
	}

	lines := make([]CoursePerformanceDTO, 0, len(codes))
	for code := range codes {
		line := CoursePerformanceDTO{
			Code:           code,
			Enrolled:       enrolled[code],
			Sessions:       rec.Attendance(code).Len(),
			AttendanceRate: rec.AttendanceRate(code),
		}
		if g, ok := rec.Grade(code); ok {
			line.Graded = true
			line.Letter = string(g.Letter())
			line.Points = g.Points()
		}
		lines = append(lines, line)
	}

	sort.Slice(lines, func(i, j int) bool { return lines[i].Code < lines[j].Code })
	return lines
}
