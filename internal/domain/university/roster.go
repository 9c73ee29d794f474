package university

import (
	"context"
	"fmt"
)

// ══════════════════════════════════════════════════════════════════════════════
// ROSTER SEED DATA
// A roster is the read-only bootstrap input of a registrar: who exists, who
// teaches what, who takes what, and any grades or attendance already on file.
// Sources live in infrastructure (YAML file, PostgreSQL).
// ══════════════════════════════════════════════════════════════════════════════

// RosterData is a source-independent snapshot of a roster.
type RosterData struct {
	Lecturers   []LecturerEntry
	Courses     []CourseEntry
	Students    []StudentEntry
	Enrollments []EnrollmentEntry
	Grades      []GradeEntry
	Attendance  []AttendanceEntry
}

type LecturerEntry struct {
	ID         string
	Name       string
	Email      string
	Phone      string
	Department string
}

type CourseEntry struct {
	Code        string
	Title       string
	CreditHours int
	LecturerID  string // optional
}

type StudentEntry struct {
	ID    string
	Name  string
	Email string
	Phone string
}

type EnrollmentEntry struct {
	StudentID  string
	CourseCode string
}

type GradeEntry struct {
	StudentID  string
	CourseCode string
	Letter     string
}

// AttendanceEntry is one presence mark. Entries for the same student and
// course are applied in slice order.
type AttendanceEntry struct {
	StudentID  string
	CourseCode string
	Present    bool
}

// RosterSource loads roster data.
type RosterSource interface {
	// Name identifies the source in logs and events.
	Name() string

	// Load reads the full roster.
	Load(ctx context.Context) (*RosterData, error)
}

// ApplyStats counts what Apply created.
type ApplyStats struct {
	Lecturers   int
	Courses     int
	Students    int
	Enrollments int
	Grades      int
	Marks       int
}

// Apply loads roster data into the registrar. Entities are added in
// dependency order (lecturers, courses, students, enrollments, grades,
// attendance). The first error stops the import; entities added before it
// remain.
func (r *Registrar) Apply(data *RosterData) (ApplyStats, error) {
	var stats ApplyStats
	if data == nil {
		return stats, nil
	}

	for _, l := range data.Lecturers {
		if err := r.AddLecturer(NewLecturer(l.ID, l.Name, l.Email, l.Phone, l.Department)); err != nil {
			return stats, fmt.Errorf("apply lecturer: %w", err)
		}
		stats.Lecturers++
	}

	for _, c := range data.Courses {
		if err := r.AddCourse(NewCourse(c.Code, c.Title, c.CreditHours)); err != nil {
			return stats, fmt.Errorf("apply course: %w", err)
		}
		if c.LecturerID != "" {
			if err := r.AssignLecturer(c.Code, c.LecturerID); err != nil {
				return stats, fmt.Errorf("apply course %s: %w", c.Code, err)
			}
		}
		stats.Courses++
	}

	for _, s := range data.Students {
		if err := r.AddStudent(NewStudent(s.ID, s.Name, s.Email, s.Phone)); err != nil {
			return stats, fmt.Errorf("apply student: %w", err)
		}
		stats.Students++
	}

	for _, e := range data.Enrollments {
		created, err := r.Enroll(e.StudentID, e.CourseCode)
		if err != nil {
			return stats, fmt.Errorf("apply enrollment: %w", err)
		}
		if created {
			stats.Enrollments++
		}
	}

	for _, g := range data.Grades {
		if err := r.RecordGrade(g.StudentID, g.CourseCode, g.Letter); err != nil {
			return stats, fmt.Errorf("apply grade: %w", err)
		}
		stats.Grades++
	}

	for _, a := range data.Attendance {
		if err := r.RecordAttendance(a.StudentID, a.CourseCode, a.Present); err != nil {
			return stats, fmt.Errorf("apply attendance: %w", err)
		}
		stats.Marks++
	}

	return stats, nil
}
