package query

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/campus-records/internal/domain/record"
	"github.com/alem-hub/campus-records/internal/domain/shared"
	"github.com/alem-hub/campus-records/internal/domain/university"
	"github.com/alem-hub/campus-records/pkg/logger"
)

type capturePublisher struct {
	events []shared.Event
}

func (p *capturePublisher) Publish(e shared.Event) error {
	p.events = append(p.events, e)
	return nil
}

type failingPublisher struct{}

func (failingPublisher) Publish(shared.Event) error { return errors.New("broker down") }

func setup(t *testing.T) *university.Registrar {
	t.Helper()

	r := university.NewRegistrar()
	require.NoError(t, r.AddCourse(university.NewCourse("CS101", "Intro to Programming", 4)))
	require.NoError(t, r.AddCourse(university.NewCourse("MA201", "Linear Algebra", 3)))
	require.NoError(t, r.AddStudent(university.NewStudent("S1", "Aigerim", "aigerim@uni.edu", "")))
	require.NoError(t, r.AddStudent(university.NewStudent("S2", "Bolat", "bolat@uni.edu", "")))
	return r
}

func TestGetPerformance_Excellent(t *testing.T) {
	r := setup(t)
	_, err := r.Enroll("S1", "CS101")
	require.NoError(t, err)
	_, err = r.Enroll("S1", "MA201")
	require.NoError(t, err)

	require.NoError(t, r.RecordGrade("S1", "CS101", "A"))
	require.NoError(t, r.RecordAttendance("S1", "CS101", true))

	pub := &capturePublisher{}
	dto, err := NewGetPerformanceHandler(r, pub, nil).Handle(context.Background(), GetPerformanceQuery{StudentID: "S1"})
	require.NoError(t, err)

	assert.Equal(t, "Aigerim", dto.Name)
	assert.Equal(t, 4.0, dto.GPA)
	assert.Equal(t, 100.0, dto.Attendance)
	assert.Equal(t, record.ClassificationExcellent, dto.Classification)
	assert.Equal(t, "Excellent performance!", dto.Message)
	assert.Equal(t, "GPA: 4.00, Average Attendance: 100.0%", dto.Summary)

	require.Len(t, dto.Courses, 2)
	assert.Equal(t, CoursePerformanceDTO{
		Code: "CS101", Enrolled: true, Graded: true, Letter: "A", Points: 4, Sessions: 1, AttendanceRate: 100,
	}, dto.Courses[0])
	assert.Equal(t, CoursePerformanceDTO{Code: "MA201", Enrolled: true}, dto.Courses[1])

	require.Len(t, pub.events, 1)
	ev := pub.events[0].(shared.PerformanceEvaluatedEvent)
	assert.Equal(t, "excellent", ev.Classification)
}

func TestGetPerformance_MiddleBandPublishesNothing(t *testing.T) {
	r := setup(t)
	require.NoError(t, r.RecordGrade("S2", "CS101", "B"))
	for _, present := range []bool{true, true, true, false} {
		require.NoError(t, r.RecordAttendance("S2", "CS101", present))
	}

	pub := &capturePublisher{}
	dto, err := NewGetPerformanceHandler(r, pub, nil).Handle(context.Background(), GetPerformanceQuery{StudentID: "S2"})
	require.NoError(t, err)

	assert.Equal(t, record.ClassificationNone, dto.Classification)
	assert.Empty(t, dto.Message)
	require.Len(t, dto.Courses, 1)
	assert.False(t, dto.Courses[0].Enrolled)
	assert.Empty(t, pub.events)
}

func TestGetPerformance_EmptyRecordIsAtRisk(t *testing.T) {
	pub := &capturePublisher{}
	dto, err := NewGetPerformanceHandler(setup(t), pub, nil).Handle(context.Background(), GetPerformanceQuery{StudentID: "S2"})
	require.NoError(t, err)

	assert.Equal(t, record.ClassificationAtRisk, dto.Classification)
	assert.Empty(t, dto.Courses)
	assert.Len(t, pub.events, 1)
}

func TestGetPerformance_Errors(t *testing.T) {
	h := NewGetPerformanceHandler(setup(t), nil, nil)

	_, err := h.Handle(context.Background(), GetPerformanceQuery{})
	assert.True(t, shared.IsValidation(err))

	_, err = h.Handle(context.Background(), GetPerformanceQuery{StudentID: "ghost"})
	assert.True(t, shared.IsNotFound(err))
}

func TestGetPerformance_PublishFailureIsLogged(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{Output: &buf, Level: logger.LevelDebug})

	dto, err := NewGetPerformanceHandler(setup(t), failingPublisher{}, log).
		Handle(context.Background(), GetPerformanceQuery{StudentID: "S2"})
	require.NoError(t, err)
	assert.Equal(t, record.ClassificationAtRisk, dto.Classification)

	out := buf.String()
	assert.Contains(t, out, "publish event failed")
	assert.Contains(t, out, "broker down")
	assert.Contains(t, out, `"operation":"get_performance"`)
}
