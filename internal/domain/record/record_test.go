package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoints(t *testing.T) {
	assert.Equal(t, 4, Points(LetterA))
	assert.Equal(t, 3, Points(LetterB))
	assert.Equal(t, 2, Points(LetterC))
	assert.Equal(t, 1, Points(LetterD))
	assert.Equal(t, 0, Points(LetterF))

	for _, l := range []Letter{"", "E", "a", "A+", "B-", "pass"} {
		assert.Equal(t, 0, Points(l), "letter %q", l)
		assert.False(t, l.IsKnown(), "letter %q", l)
	}
}

func TestNewGrade_StoresLetterVerbatim(t *testing.T) {
	g := NewGrade("CS101", "A+")

	assert.Equal(t, "CS101", g.CourseCode())
	assert.Equal(t, Letter("A+"), g.Letter())
	assert.Equal(t, 0, g.Points())
}

func TestGPA(t *testing.T) {
	rec := New()
	assert.Equal(t, 0.0, rec.GPA())

	rec.RecordGrade("CS101", "A")
	rec.RecordGrade("MA201", "B")
	assert.Equal(t, 3.5, rec.GPA())
}

func TestGPA_RecordingSameCourseReplaces(t *testing.T) {
	rec := New()
	rec.RecordGrade("CS101", "A")
	rec.RecordGrade("CS101", "C")

	require.Len(t, rec.Grades(), 1)
	g, ok := rec.Grade("CS101")
	require.True(t, ok)
	assert.Equal(t, LetterC, g.Letter())
	assert.Equal(t, 2.0, rec.GPA())
}

func TestGPA_UnknownLetterScoresZero(t *testing.T) {
	rec := New()
	rec.RecordGrade("CS101", "A")
	rec.RecordGrade("PE100", "P")

	assert.Equal(t, 2.0, rec.GPA())
}

func TestGPA_RoundsToTwoDecimals(t *testing.T) {
	rec := New()
	rec.RecordGrade("C1", "A")
	rec.RecordGrade("C2", "A")
	rec.RecordGrade("C3", "B")
	// 11/3 = 3.666...
	assert.Equal(t, 3.67, rec.GPA())
}

func TestGPA_HalfwayRoundsUp(t *testing.T) {
	rec := New()
	for i, l := range []string{"A", "A", "A", "B", "F", "F", "F", "F"} {
		rec.RecordGrade(string(rune('a'+i)), l)
	}
	// 15/8 = 1.875
	assert.Equal(t, 1.88, rec.GPA())
}

func TestAttendance_HalfwayRoundsUp(t *testing.T) {
	rec := New()
	rec.RecordAttendance("CS101", true)
	for i := 0; i < 15; i++ {
		rec.RecordAttendance("CS101", false)
	}
	// 1/16 = 6.25%
	assert.Equal(t, 6.3, rec.AttendanceRate("CS101"))
	assert.Equal(t, 6.3, rec.AverageAttendance())
}

func TestAverageAttendance(t *testing.T) {
	rec := New()
	assert.Equal(t, 0.0, rec.AverageAttendance())

	rec.RecordAttendance("CS101", true)
	rec.RecordAttendance("CS101", true)
	rec.RecordAttendance("CS101", false)
	assert.Equal(t, 66.7, rec.AverageAttendance())
}

func TestAverageAttendance_IsUnweightedAcrossCourses(t *testing.T) {
	rec := New()
	rec.RecordAttendance("CS101", true)
	rec.RecordAttendance("CS101", true)
	rec.RecordAttendance("MA201", false)
	rec.RecordAttendance("MA201", false)

	assert.Equal(t, 50.0, rec.AverageAttendance())

	// A longer log does not weigh more.
	for i := 0; i < 8; i++ {
		rec.RecordAttendance("MA201", false)
	}
	assert.Equal(t, 50.0, rec.AverageAttendance())
}

func TestAverageAttendance_EmptyLogCountsInDivisor(t *testing.T) {
	rec := New()
	rec.OpenAttendance("PH110")
	assert.Equal(t, 0.0, rec.AverageAttendance())

	rec.RecordAttendance("CS101", true)
	rec.RecordAttendance("CS101", true)
	assert.Equal(t, 50.0, rec.AverageAttendance())
}

func TestOpenAttendance_KeepsExistingMarks(t *testing.T) {
	rec := New()
	rec.RecordAttendance("CS101", true)
	rec.OpenAttendance("CS101")

	assert.Equal(t, 1, rec.Attendance("CS101").Len())
}

func TestRecordAttendance_GrowsLogByOne(t *testing.T) {
	rec := New()
	for i := 1; i <= 3; i++ {
		rec.RecordAttendance("CS101", i%2 == 0)
		assert.Equal(t, i, rec.Attendance("CS101").Len())
	}
	assert.Equal(t, []bool{false, true, false}, rec.Attendance("CS101").Marks())
	assert.Equal(t, 33.3, rec.AttendanceRate("CS101"))
	assert.Equal(t, 0.0, rec.AttendanceRate("XX000"))
}

func TestAttendance_ReturnsCopy(t *testing.T) {
	rec := New()
	rec.RecordAttendance("CS101", true)

	marks := rec.Attendance("CS101").Marks()
	marks[0] = false

	assert.Equal(t, 100.0, rec.AverageAttendance())
}

func TestCourses(t *testing.T) {
	rec := New()
	rec.RecordGrade("MA201", "B")
	rec.RecordAttendance("CS101", true)
	rec.RecordGrade("CS101", "A")
	rec.OpenAttendance("PH110")

	assert.Equal(t, []string{"CS101", "MA201", "PH110"}, rec.Courses())
}
