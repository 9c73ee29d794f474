package rosterfile

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/alem-hub/campus-records/internal/domain/university"
)

type rosterDoc struct {
	Lecturers []lecturerDTO `yaml:"lecturers"`
	Courses   []courseDTO   `yaml:"courses"`
	Students  []studentDTO  `yaml:"students"`
}

type lecturerDTO struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	Email      string `yaml:"email"`
	Phone      string `yaml:"phone"`
	Department string `yaml:"department"`
}

type courseDTO struct {
	Code        string `yaml:"code"`
	Title       string `yaml:"title"`
	CreditHours int    `yaml:"credit_hours"`
	Lecturer    string `yaml:"lecturer"`
}

type studentDTO struct {
	ID         string            `yaml:"id"`
	Name       string            `yaml:"name"`
	Email      string            `yaml:"email"`
	Phone      string            `yaml:"phone"`
	Courses    []string          `yaml:"courses"`
	Grades     map[string]string `yaml:"grades"`
	Attendance map[string][]bool `yaml:"attendance"`
}

// validate checks the fields a registrar cannot do without. Reference
// integrity is left to Registrar.Apply.
func (d rosterDoc) validate() error {
	var errs []error

	for i, l := range d.Lecturers {
		if strings.TrimSpace(l.ID) == "" {
			errs = append(errs, fmt.Errorf("lecturers[%d]: id is required", i))
		}
	}
	for i, c := range d.Courses {
		if strings.TrimSpace(c.Code) == "" {
			errs = append(errs, fmt.Errorf("courses[%d]: code is required", i))
		}
		if c.CreditHours < 0 {
			errs = append(errs, fmt.Errorf("courses[%d]: credit_hours must not be negative", i))
		}
	}
	for i, s := range d.Students {
		if strings.TrimSpace(s.ID) == "" {
			errs = append(errs, fmt.Errorf("students[%d]: id is required", i))
		}
	}

	return errors.Join(errs...)
}

// toRoster flattens the document. Per-student maps are emitted in course
// code order; attendance lists keep their file order.
func (d rosterDoc) toRoster() *university.RosterData {
	data := &university.RosterData{}

	for _, l := range d.Lecturers {
		data.Lecturers = append(data.Lecturers, university.LecturerEntry{
			ID:         l.ID,
			Name:       l.Name,
			Email:      l.Email,
			Phone:      l.Phone,
			Department: l.Department,
		})
	}

	for _, c := range d.Courses {
		data.Courses = append(data.Courses, university.CourseEntry{
			Code:        c.Code,
			Title:       c.Title,
			CreditHours: c.CreditHours,
			LecturerID:  c.Lecturer,
		})
	}

	for _, s := range d.Students {
		data.Students = append(data.Students, university.StudentEntry{
			ID:    s.ID,
			Name:  s.Name,
			Email: s.Email,
			Phone: s.Phone,
		})

		for _, code := range s.Courses {
			data.Enrollments = append(data.Enrollments, university.EnrollmentEntry{StudentID: s.ID, CourseCode: code})
		}

		for _, code := range sortedKeys(s.Grades) {
			data.Grades = append(data.Grades, university.GradeEntry{
				StudentID:  s.ID,
				CourseCode: code,
				Letter:     s.Grades[code],
			})
		}

		for _, code := range sortedKeys(s.Attendance) {
			for _, present := range s.Attendance[code] {
				data.Attendance = append(data.Attendance, university.AttendanceEntry{
					StudentID:  s.ID,
					CourseCode: code,
					Present:    present,
				})
			}
		}
	}

	return data
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
