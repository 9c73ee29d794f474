// Package university models the people and courses of a university and the
// Registrar that coordinates them.
//
// Student, Course, and Lecturer carry identity and descriptive data only.
// Membership (which student takes which course, who teaches what) lives in
// the Registrar, which is the single owner of every entity and of the
// enrollment relation.
package university

import (
	"io"
	"strings"

	"github.com/alem-hub/campus-records/internal/domain/person"
	"github.com/alem-hub/campus-records/internal/domain/record"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT
// ══════════════════════════════════════════════════════════════════════════════

// Student is a person with an academic record.
type Student struct {
	person.Person
	record *record.AcademicRecord
}

// NewStudent creates a student with an empty academic record.
func NewStudent(id, name, email, phone string) *Student {
	return &Student{
		Person: person.New(id, name, email, phone),
		record: record.New(),
	}
}

// Role implements person.Member.
func (s *Student) Role() person.Role {
	return person.RoleStudent
}

// Record returns the student's academic record. Access through the pointer
// is not synchronised; use Registrar.WithRecord when the registrar is shared.
func (s *Student) Record() *record.AcademicRecord {
	return s.record
}

// ShowPerformance writes the performance report and returns the GPA.
func (s *Student) ShowPerformance(w io.Writer) float64 {
	return s.record.GeneratePerformanceReport(w)
}

// ══════════════════════════════════════════════════════════════════════════════
// LECTURER
// ══════════════════════════════════════════════════════════════════════════════

// Lecturer is a member of teaching staff.
type Lecturer struct {
	person.Person
	department string
}

// NewLecturer creates a lecturer.
func NewLecturer(id, name, email, phone, department string) *Lecturer {
	return &Lecturer{
		Person:     person.New(id, name, email, phone),
		department: strings.TrimSpace(department),
	}
}

// Role implements person.Member.
func (l *Lecturer) Role() person.Role {
	return person.RoleLecturer
}

// Department returns the lecturer's department, possibly empty.
func (l *Lecturer) Department() string {
	return l.department
}

// ══════════════════════════════════════════════════════════════════════════════
// COURSE
// ══════════════════════════════════════════════════════════════════════════════

// Course is a unit of teaching identified by its code.
type Course struct {
	code        string
	title       string
	creditHours int

	// lecturerID is written only by the Registrar.
	lecturerID string
}

// NewCourse creates a course with no lecturer assigned.
func NewCourse(code, title string, creditHours int) *Course {
	return &Course{
		code:        strings.TrimSpace(code),
		title:       strings.TrimSpace(title),
		creditHours: creditHours,
	}
}

func (c *Course) Code() string     { return c.code }
func (c *Course) Title() string    { return c.title }
func (c *Course) CreditHours() int { return c.creditHours }

// LecturerID returns the assigned lecturer, if any.
func (c *Course) LecturerID() (string, bool) {
	return c.lecturerID, c.lecturerID != ""
}

var (
	_ person.Member = (*Student)(nil)
	_ person.Member = (*Lecturer)(nil)
)
