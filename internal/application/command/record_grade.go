package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/alem-hub/campus-records/internal/domain/record"
	"github.com/alem-hub/campus-records/internal/domain/shared"
	"github.com/alem-hub/campus-records/pkg/logger"
)

// RecordGradeCommand stores or replaces a student's letter grade for a course.
// The letter is kept as given; letters outside A-F score zero points.
type RecordGradeCommand struct {
	StudentID     string
	CourseCode    string
	Letter        string
	CorrelationID string
}

// Validate validates the command.
func (c RecordGradeCommand) Validate() error {
	if strings.TrimSpace(c.StudentID) == "" {
		return fmt.Errorf("%w: record_grade: student_id is required", shared.ErrInvalidInput)
	}
	if strings.TrimSpace(c.CourseCode) == "" {
		return fmt.Errorf("%w: record_grade: course_code is required", shared.ErrInvalidInput)
	}
	return nil
}

// RecordGradeResult is the record state right after the grade was stored.
type RecordGradeResult struct {
	StudentID  string
	CourseCode string
	Letter     record.Letter
	Points     int
	GPA        float64
}

// RecordKeeper runs fn against a student's record under the registrar lock.
type RecordKeeper interface {
	WithRecord(studentID string, fn func(rec *record.AcademicRecord)) error
}

// RecordGradeHandler handles RecordGradeCommand.
type RecordGradeHandler struct {
	records   RecordKeeper
	publisher shared.EventPublisher
	log       *logger.Logger
}

// NewRecordGradeHandler creates a new RecordGradeHandler.
func NewRecordGradeHandler(records RecordKeeper, publisher shared.EventPublisher, log *logger.Logger) *RecordGradeHandler {
	if publisher == nil {
		publisher = shared.NopPublisher{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &RecordGradeHandler{
		records:   records,
		publisher: publisher,
		log:       log.With(logger.Component("command"), logger.Operation("record_grade")),
	}
}

// Handle records the grade and reports the resulting GPA.
func (h *RecordGradeHandler) Handle(ctx context.Context, cmd RecordGradeCommand) (*RecordGradeResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var result RecordGradeResult
	err := h.records.WithRecord(cmd.StudentID, func(rec *record.AcademicRecord) {
		rec.RecordGrade(cmd.CourseCode, cmd.Letter)
		g, _ := rec.Grade(cmd.CourseCode)
		result = RecordGradeResult{
			StudentID:  cmd.StudentID,
			CourseCode: cmd.CourseCode,
			Letter:     g.Letter(),
			Points:     g.Points(),
			GPA:        rec.GPA(),
		}
	})
	if err != nil {
		return nil, fmt.Errorf("record_grade: %w", err)
	}

	log := h.log.With(logger.StudentID(cmd.StudentID), logger.CourseCode(cmd.CourseCode))
	if !result.Letter.IsKnown() {
		log.Warn("unrecognised grade letter scores zero", logger.String("letter", cmd.Letter))
	}

	event := shared.NewGradeRecordedEvent(cmd.StudentID, cmd.CourseCode, string(result.Letter), result.Points, result.GPA)
	event.BaseEvent = event.WithCorrelationID(cmd.CorrelationID)
	publish(h.publisher, h.log, event)

	log.Info("grade recorded", logger.String("letter", cmd.Letter), logger.GPA(result.GPA))
	return &result, nil
}
