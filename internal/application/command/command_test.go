package command

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/campus-records/internal/domain/shared"
	"github.com/alem-hub/campus-records/internal/domain/university"
	"github.com/alem-hub/campus-records/pkg/logger"
	"github.com/alem-hub/campus-records/pkg/retry"
)

// capturePublisher records published events.
type capturePublisher struct {
	mu     sync.Mutex
	events []shared.Event
	err    error
}

func (p *capturePublisher) Publish(e shared.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *capturePublisher) types() []shared.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]shared.EventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

func newRegistrar(t *testing.T) *university.Registrar {
	t.Helper()

	r := university.NewRegistrar()
	require.NoError(t, r.AddCourse(university.NewCourse("CS101", "Intro to Programming", 4)))
	require.NoError(t, r.AddCourse(university.NewCourse("MA201", "Linear Algebra", 3)))
	require.NoError(t, r.AddStudent(university.NewStudent("S1", "Aigerim", "aigerim@uni.edu", "")))
	return r
}

func TestEnrollStudent(t *testing.T) {
	pub := &capturePublisher{}
	h := NewEnrollStudentHandler(newRegistrar(t), pub, nil)
	ctx := context.Background()

	res, err := h.Handle(ctx, EnrollStudentCommand{StudentID: "S1", CourseCode: "CS101", CorrelationID: "run-1"})
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, "Intro to Programming", res.CourseTitle)

	res, err = h.Handle(ctx, EnrollStudentCommand{StudentID: "S1", CourseCode: "CS101"})
	require.NoError(t, err)
	assert.False(t, res.Created)

	require.Equal(t, []shared.EventType{shared.EventStudentEnrolled}, pub.types())
	ev := pub.events[0].(shared.StudentEnrolledEvent)
	assert.Equal(t, "run-1", ev.CorrelationID)
	assert.Equal(t, "CS101", ev.CourseCode)
}

func TestEnrollStudent_LogsCourseTitle(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{Output: &buf, Level: logger.LevelInfo})
	h := NewEnrollStudentHandler(newRegistrar(t), nil, log)

	_, err := h.Handle(context.Background(), EnrollStudentCommand{StudentID: "S1", CourseCode: "MA201"})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "student enrolled")
	assert.Contains(t, out, `"course_title":"Linear Algebra"`)
}

func TestEnrollStudent_Errors(t *testing.T) {
	h := NewEnrollStudentHandler(newRegistrar(t), nil, nil)
	ctx := context.Background()

	_, err := h.Handle(ctx, EnrollStudentCommand{CourseCode: "CS101"})
	assert.True(t, shared.IsValidation(err))

	_, err = h.Handle(ctx, EnrollStudentCommand{StudentID: "S9", CourseCode: "CS101"})
	assert.True(t, errors.Is(err, shared.ErrStudentNotFound))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = h.Handle(cancelled, EnrollStudentCommand{StudentID: "S1", CourseCode: "CS101"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRecordGrade(t *testing.T) {
	pub := &capturePublisher{}
	h := NewRecordGradeHandler(newRegistrar(t), pub, nil)
	ctx := context.Background()

	res, err := h.Handle(ctx, RecordGradeCommand{StudentID: "S1", CourseCode: "CS101", Letter: "A"})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Points)
	assert.Equal(t, 4.0, res.GPA)

	res, err = h.Handle(ctx, RecordGradeCommand{StudentID: "S1", CourseCode: "MA201", Letter: "B"})
	require.NoError(t, err)
	assert.Equal(t, 3.5, res.GPA)

	require.Len(t, pub.events, 2)
	ev := pub.events[1].(shared.GradeRecordedEvent)
	assert.Equal(t, "B", ev.Letter)
	assert.Equal(t, 3, ev.Points)
	assert.Equal(t, 3.5, ev.GPA)
}

func TestRecordGrade_UnknownLetterKeptVerbatim(t *testing.T) {
	h := NewRecordGradeHandler(newRegistrar(t), nil, nil)

	res, err := h.Handle(context.Background(), RecordGradeCommand{StudentID: "S1", CourseCode: "CS101", Letter: "a"})
	require.NoError(t, err)
	assert.Equal(t, "a", string(res.Letter))
	assert.Equal(t, 0, res.Points)
	assert.Equal(t, 0.0, res.GPA)
}

func TestRecordGrade_PublishFailureDoesNotFailCommand(t *testing.T) {
	pub := &capturePublisher{err: errors.New("bus down")}
	h := NewRecordGradeHandler(newRegistrar(t), pub, nil)

	_, err := h.Handle(context.Background(), RecordGradeCommand{StudentID: "S1", CourseCode: "CS101", Letter: "A"})
	assert.NoError(t, err)
}

func TestRecordGrade_Errors(t *testing.T) {
	h := NewRecordGradeHandler(newRegistrar(t), nil, nil)
	ctx := context.Background()

	_, err := h.Handle(ctx, RecordGradeCommand{StudentID: "S1", Letter: "A"})
	assert.True(t, shared.IsValidation(err))

	_, err = h.Handle(ctx, RecordGradeCommand{StudentID: "ghost", CourseCode: "CS101", Letter: "A"})
	assert.True(t, shared.IsNotFound(err))
}

func TestRecordAttendance(t *testing.T) {
	pub := &capturePublisher{}
	h := NewRecordAttendanceHandler(newRegistrar(t), pub, nil)
	ctx := context.Background()

	for _, present := range []bool{true, true, false} {
		_, err := h.Handle(ctx, RecordAttendanceCommand{StudentID: "S1", CourseCode: "CS101", Present: present})
		require.NoError(t, err)
	}

	res, err := h.Handle(ctx, RecordAttendanceCommand{StudentID: "S1", CourseCode: "MA201", Present: true})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Sessions)
	assert.Equal(t, 100.0, res.CourseRate)
	// (66.67 + 100) / 2
	assert.Equal(t, 83.3, res.Average)

	require.Len(t, pub.events, 4)
	ev := pub.events[2].(shared.AttendanceMarkedEvent)
	assert.False(t, ev.Present)
	assert.Equal(t, 66.7, ev.CourseRate)
}

func TestRecordAttendance_Errors(t *testing.T) {
	h := NewRecordAttendanceHandler(newRegistrar(t), nil, nil)

	_, err := h.Handle(context.Background(), RecordAttendanceCommand{CourseCode: "CS101"})
	assert.True(t, shared.IsValidation(err))

	_, err = h.Handle(context.Background(), RecordAttendanceCommand{StudentID: "ghost", CourseCode: "CS101"})
	assert.True(t, shared.IsNotFound(err))
}

// stubSource is a fixed in-memory roster source.
type stubSource struct {
	data *university.RosterData
	err  error
}

func (s stubSource) Name() string { return "stub" }

func (s stubSource) Load(context.Context) (*university.RosterData, error) {
	return s.data, s.err
}

func TestImportRoster(t *testing.T) {
	pub := &capturePublisher{}
	r := university.NewRegistrar()
	h := NewImportRosterHandler(r, pub, nil)

	res, err := h.Handle(context.Background(), stubSource{data: &university.RosterData{
		Courses:     []university.CourseEntry{{Code: "CS101", Title: "Intro", CreditHours: 4}},
		Students:    []university.StudentEntry{{ID: "S1", Name: "Aigerim"}},
		Enrollments: []university.EnrollmentEntry{{StudentID: "S1", CourseCode: "CS101"}},
	}})
	require.NoError(t, err)

	assert.Equal(t, "stub", res.Source)
	assert.Equal(t, 1, res.Stats.Enrollments)
	assert.True(t, r.IsEnrolled("S1", "CS101"))

	require.Len(t, pub.events, 1)
	ev := pub.events[0].(shared.RosterImportedEvent)
	assert.Equal(t, "stub", ev.AggregateID())
	assert.Equal(t, 1, ev.Students)
}

func TestImportRoster_Failures(t *testing.T) {
	pub := &capturePublisher{}
	h := NewImportRosterHandler(university.NewRegistrar(), pub, nil)
	ctx := context.Background()

	_, err := h.Handle(ctx, nil)
	assert.True(t, shared.IsValidation(err))

	_, err = h.Handle(ctx, stubSource{err: shared.ErrRosterUnavailable})
	assert.True(t, errors.Is(err, shared.ErrRosterUnavailable))

	res, err := h.Handle(ctx, stubSource{data: &university.RosterData{
		Students:    []university.StudentEntry{{ID: "S1", Name: "Aigerim"}},
		Enrollments: []university.EnrollmentEntry{{StudentID: "S1", CourseCode: "NOPE"}},
	}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrCourseNotFound))
	assert.Equal(t, 1, res.Stats.Students)

	assert.Empty(t, pub.events)
}

// flakySource fails with err until calls exceeds failures.
type flakySource struct {
	failures int
	err      error
	calls    int
}

func (s *flakySource) Name() string { return "flaky" }

func (s *flakySource) Load(context.Context) (*university.RosterData, error) {
	s.calls++
	if s.calls <= s.failures {
		return nil, s.err
	}
	return &university.RosterData{Students: []university.StudentEntry{{ID: "S1", Name: "Aigerim"}}}, nil
}

func fastRetry() retry.Policy {
	return retry.Policy{Attempts: 3, Delay: time.Millisecond}
}

func TestImportRoster_RetriesUnavailableSource(t *testing.T) {
	r := university.NewRegistrar()
	src := &flakySource{failures: 2, err: shared.ErrRosterUnavailable}
	h := NewImportRosterHandler(r, nil, nil).WithRetry(fastRetry())

	res, err := h.Handle(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, 1, res.Stats.Students)
	_, err = r.Student("S1")
	assert.NoError(t, err)
}

func TestImportRoster_MalformedIsNotRetried(t *testing.T) {
	src := &flakySource{failures: 5, err: shared.ErrRosterMalformed}
	h := NewImportRosterHandler(university.NewRegistrar(), nil, nil).WithRetry(fastRetry())

	_, err := h.Handle(context.Background(), src)
	assert.ErrorIs(t, err, shared.ErrRosterMalformed)
	assert.Equal(t, 1, src.calls)
}

func TestImportRoster_GivesUpAfterMaxAttempts(t *testing.T) {
	src := &flakySource{failures: 5, err: shared.ErrRosterUnavailable}
	h := NewImportRosterHandler(university.NewRegistrar(), nil, nil).WithRetry(fastRetry())

	_, err := h.Handle(context.Background(), src)
	assert.ErrorIs(t, err, shared.ErrRosterUnavailable)
	assert.Equal(t, 3, src.calls)
}
