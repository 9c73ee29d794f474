package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/alem-hub/campus-records/internal/domain/record"
	"github.com/alem-hub/campus-records/internal/domain/shared"
	"github.com/alem-hub/campus-records/pkg/logger"
)

// RecordAttendanceCommand appends one presence mark to a course log.
type RecordAttendanceCommand struct {
	StudentID     string
	CourseCode    string
	Present       bool
	CorrelationID string
}

// Validate validates the command.
func (c RecordAttendanceCommand) Validate() error {
	if strings.TrimSpace(c.StudentID) == "" {
		return fmt.Errorf("%w: record_attendance: student_id is required", shared.ErrInvalidInput)
	}
	if strings.TrimSpace(c.CourseCode) == "" {
		return fmt.Errorf("%w: record_attendance: course_code is required", shared.ErrInvalidInput)
	}
	return nil
}

// RecordAttendanceResult is the course log state after the mark.
type RecordAttendanceResult struct {
	StudentID  string
	CourseCode string
	Sessions   int
	CourseRate float64
	Average    float64
}

// RecordAttendanceHandler handles RecordAttendanceCommand.
type RecordAttendanceHandler struct {
	records   RecordKeeper
	publisher shared.EventPublisher
	log       *logger.Logger
}

// NewRecordAttendanceHandler creates a new RecordAttendanceHandler.
func NewRecordAttendanceHandler(records RecordKeeper, publisher shared.EventPublisher, log *logger.Logger) *RecordAttendanceHandler {
	if publisher == nil {
		publisher = shared.NopPublisher{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &RecordAttendanceHandler{
		records:   records,
		publisher: publisher,
		log:       log.With(logger.Component("command"), logger.Operation("record_attendance")),
	}
}

// Handle appends the mark.
func (h *RecordAttendanceHandler) Handle(ctx context.Context, cmd RecordAttendanceCommand) (*RecordAttendanceResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var result RecordAttendanceResult
	err := h.records.WithRecord(cmd.StudentID, func(rec *record.AcademicRecord) {
		rec.RecordAttendance(cmd.CourseCode, cmd.Present)
		result = RecordAttendanceResult{
			StudentID:  cmd.StudentID,
			CourseCode: cmd.CourseCode,
			Sessions:   rec.Attendance(cmd.CourseCode).Len(),
			CourseRate: rec.AttendanceRate(cmd.CourseCode),
			Average:    rec.AverageAttendance(),
		}
	})
	if err != nil {
		return nil, fmt.Errorf("record_attendance: %w", err)
	}

	event := shared.NewAttendanceMarkedEvent(cmd.StudentID, cmd.CourseCode, cmd.Present, result.CourseRate)
	event.BaseEvent = event.WithCorrelationID(cmd.CorrelationID)
	publish(h.publisher, h.log, event)

	h.log.Debug("attendance marked",
		logger.StudentID(cmd.StudentID),
		logger.CourseCode(cmd.CourseCode),
		logger.Bool("present", cmd.Present),
		logger.Attendance(result.Average),
	)
	return &result, nil
}
