// Package report renders registrar state as plain text.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/alem-hub/campus-records/internal/domain/university"
)

const (
	bannerWidth    = 40
	separatorWidth = 30
)

// Directory is the registrar surface the presenter reads.
type Directory interface {
	Course(code string) (*university.Course, error)
	Lecturer(id string) (*university.Lecturer, error)
	Courses() []*university.Course
	Lecturers() []*university.Lecturer
	Students() []*university.Student
	Roster(courseCode string) ([]*university.Student, error)
	CoursesTaughtBy(lecturerID string) ([]*university.Course, error)
	ViewStudent(studentID string, fn func(s *university.Student)) error
}

// Presenter writes course, lecturer and student reports.
type Presenter struct {
	dir Directory
}

// NewPresenter creates a presenter over dir.
func NewPresenter(dir Directory) *Presenter {
	return &Presenter{dir: dir}
}

// CourseDetails writes the title line, lecturer and enrolled students of a
// course.
func (p *Presenter) CourseDetails(w io.Writer, code string) error {
	c, err := p.dir.Course(code)
	if err != nil {
		return err
	}
	roster, err := p.dir.Roster(code)
	if err != nil {
		return err
	}

	lecturer := "TBA"
	if id, ok := c.LecturerID(); ok {
		if l, err := p.dir.Lecturer(id); err == nil {
			lecturer = l.Name()
		}
	}

	names := make([]string, len(roster))
	for i, s := range roster {
		names[i] = s.Name()
	}

	ew := &errWriter{w: w}
	ew.printf("%s: %s (%d credits)\n", c.Code(), c.Title(), c.CreditHours())
	ew.printf("Lecturer: %s\n", lecturer)
	ew.printf("Enrolled (%d): %s\n", len(names), strings.Join(names, ", "))
	return ew.err
}

// LecturerSummary writes a lecturer's name, department, contact and the
// courses they teach.
func (p *Presenter) LecturerSummary(w io.Writer, id string) error {
	l, err := p.dir.Lecturer(id)
	if err != nil {
		return err
	}
	taught, err := p.dir.CoursesTaughtBy(id)
	if err != nil {
		return err
	}

	codes := make([]string, len(taught))
	for i, c := range taught {
		codes[i] = c.Code()
	}
	teaches := "none"
	if len(codes) > 0 {
		teaches = strings.Join(codes, ", ")
	}

	department := l.Department()
	if department == "" {
		department = "-"
	}

	ew := &errWriter{w: w}
	ew.printf("Lecturer: %s\n", l.Name())
	ew.printf("Department: %s\n", department)
	ew.printf("Contact: %s\n", l.Contact())
	ew.printf("Teaches (%d): %s\n", len(codes), teaches)
	return ew.err
}

// StudentPerformance writes the "Performance for NAME:" header followed by
// the student's performance report.
func (p *Presenter) StudentPerformance(w io.Writer, studentID string) error {
	ew := &errWriter{w: w}
	err := p.dir.ViewStudent(studentID, func(s *university.Student) {
		ew.printf("Performance for %s:\n", s.Name())
		s.ShowPerformance(ew)
	})
	if err != nil {
		return err
	}
	return ew.err
}

// FullReport writes a banner, every course, every lecturer and every
// student's performance, each in registration order.
func (p *Presenter) FullReport(w io.Writer) error {
	ew := &errWriter{w: w}
	banner := strings.Repeat("=", bannerWidth)
	ew.printf("%s\nUNIVERSITY FULL REPORT\n%s\n", banner, banner)

	for _, c := range p.dir.Courses() {
		if err := p.CourseDetails(ew, c.Code()); err != nil {
			return err
		}
		ew.printf("\n")
	}

	for _, l := range p.dir.Lecturers() {
		if err := p.LecturerSummary(ew, l.ID()); err != nil {
			return err
		}
		ew.printf("\n")
	}

	separator := strings.Repeat("-", separatorWidth)
	for _, s := range p.dir.Students() {
		if err := p.StudentPerformance(ew, s.ID()); err != nil {
			return err
		}
		ew.printf("%s\n", separator)
	}

	return ew.err
}

// errWriter keeps the first write error and drops later writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(b []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(b)
	e.err = err
	return n, err
}

func (e *errWriter) printf(format string, args ...any) {
	fmt.Fprintf(e, format, args...)
}
