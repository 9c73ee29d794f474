package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_WritesJSONLines(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Output: &buf, Level: LevelInfo})
	log.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	log.With(Component("registrar")).Info("grade recorded",
		StudentID("S1"), CourseCode("CS101"), GPA(3.5), Err(errors.New("boom")))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	assert.Equal(t, "INFO", got["level"])
	assert.Equal(t, "grade recorded", got["message"])
	assert.Equal(t, "2026-01-02T03:04:05Z", got["timestamp"])

	fields := got["fields"].(map[string]any)
	assert.Equal(t, "registrar", fields["component"])
	assert.Equal(t, "S1", fields["student_id"])
	assert.Equal(t, "CS101", fields["course_code"])
	assert.Equal(t, 3.5, fields["gpa"])
	assert.Equal(t, "boom", fields["error"])
}

func TestLogger_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Output: &buf, Level: LevelWarn})

	log.Debug("hidden")
	log.Info("hidden")
	log.Warn("shown")
	log.Error("shown too")

	assert.Equal(t, 2, strings.Count(buf.String(), "\n"))
}

func TestLogger_WithDoesNotLeakIntoParent(t *testing.T) {
	var buf bytes.Buffer
	parent := New(Options{Output: &buf, Level: LevelInfo})
	_ = parent.With(StudentID("S1"))

	parent.Info("plain")
	assert.NotContains(t, buf.String(), "student_id")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel(" warning "))
	assert.Equal(t, LevelError, ParseLevel("ERROR"))
	assert.Equal(t, LevelInfo, ParseLevel("verbose"))
}
