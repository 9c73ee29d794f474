package university

import (
	"fmt"
	"sync"

	"github.com/alem-hub/campus-records/internal/domain/record"
	"github.com/alem-hub/campus-records/internal/domain/shared"
)

// enrollment is one row of the student-course relation, as arena indexes.
type enrollment struct {
	student int
	course  int
}

// Registrar owns every student, course, and lecturer plus the enrollment
// relation between students and courses. Entities live in insertion-ordered
// arenas indexed by ID; the views "courses of a student" and "students of a
// course" are both read from the one relation table.
//
// Registrar is safe for concurrent use. Record access through WithRecord and
// the Record* helpers is serialised by the same lock.
type Registrar struct {
	mu sync.RWMutex

	students    []*Student
	courses     []*Course
	lecturers   []*Lecturer
	studentIdx  map[string]int
	courseIdx   map[string]int
	lecturerIdx map[string]int

	enrollments []enrollment
	enrolled    map[enrollment]struct{}
}

// NewRegistrar creates an empty registrar.
func NewRegistrar() *Registrar {
	return &Registrar{
		studentIdx:  make(map[string]int),
		courseIdx:   make(map[string]int),
		lecturerIdx: make(map[string]int),
		enrolled:    make(map[enrollment]struct{}),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Collections
// ─────────────────────────────────────────────────────────────────────────────

// AddStudent registers a student. IDs must be unique.
func (r *Registrar) AddStudent(s *Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.studentIdx[s.ID()]; ok {
		return fmt.Errorf("%w: %s", shared.ErrStudentAlreadyExists, s.ID())
	}
	r.studentIdx[s.ID()] = len(r.students)
	r.students = append(r.students, s)
	return nil
}

// AddCourse registers a course. Codes must be unique.
func (r *Registrar) AddCourse(c *Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.courseIdx[c.Code()]; ok {
		return fmt.Errorf("%w: %s", shared.ErrCourseAlreadyExists, c.Code())
	}
	r.courseIdx[c.Code()] = len(r.courses)
	r.courses = append(r.courses, c)
	return nil
}

// AddLecturer registers a lecturer. IDs must be unique.
func (r *Registrar) AddLecturer(l *Lecturer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.lecturerIdx[l.ID()]; ok {
		return fmt.Errorf("%w: %s", shared.ErrLecturerAlreadyExists, l.ID())
	}
	r.lecturerIdx[l.ID()] = len(r.lecturers)
	r.lecturers = append(r.lecturers, l)
	return nil
}

// Student looks up a student by ID.
func (r *Registrar) Student(id string) (*Student, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.studentIdx[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrStudentNotFound, id)
	}
	return r.students[i], nil
}

// Course looks up a course by code.
func (r *Registrar) Course(code string) (*Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.courseIdx[code]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrCourseNotFound, code)
	}
	return r.courses[i], nil
}

// Lecturer looks up a lecturer by ID.
func (r *Registrar) Lecturer(id string) (*Lecturer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.lecturerIdx[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrLecturerNotFound, id)
	}
	return r.lecturers[i], nil
}

// Students returns all students in registration order.
func (r *Registrar) Students() []*Student {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Student(nil), r.students...)
}

// Courses returns all courses in registration order.
func (r *Registrar) Courses() []*Course {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Course(nil), r.courses...)
}

// Lecturers returns all lecturers in registration order.
func (r *Registrar) Lecturers() []*Lecturer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Lecturer(nil), r.lecturers...)
}

// ─────────────────────────────────────────────────────────────────────────────
// Relations
// ─────────────────────────────────────────────────────────────────────────────

// AssignLecturer makes a lecturer responsible for a course, replacing any
// earlier assignment.
func (r *Registrar) AssignLecturer(courseCode, lecturerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ci, ok := r.courseIdx[courseCode]
	if !ok {
		return fmt.Errorf("%w: %s", shared.ErrCourseNotFound, courseCode)
	}
	if _, ok := r.lecturerIdx[lecturerID]; !ok {
		return fmt.Errorf("%w: %s", shared.ErrLecturerNotFound, lecturerID)
	}
	r.courses[ci].lecturerID = lecturerID
	return nil
}

// Enroll adds a student to a course. Enrolling twice is a no-op; the result
// is true only when a new enrollment was created.
func (r *Registrar) Enroll(studentID, courseCode string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	si, ok := r.studentIdx[studentID]
	if !ok {
		return false, fmt.Errorf("%w: %s", shared.ErrStudentNotFound, studentID)
	}
	ci, ok := r.courseIdx[courseCode]
	if !ok {
		return false, fmt.Errorf("%w: %s", shared.ErrCourseNotFound, courseCode)
	}

	e := enrollment{student: si, course: ci}
	if _, ok := r.enrolled[e]; ok {
		return false, nil
	}
	r.enrolled[e] = struct{}{}
	r.enrollments = append(r.enrollments, e)
	return true, nil
}

// IsEnrolled reports whether the student takes the course. Unknown IDs are
// simply not enrolled.
func (r *Registrar) IsEnrolled(studentID, courseCode string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	si, ok := r.studentIdx[studentID]
	if !ok {
		return false
	}
	ci, ok := r.courseIdx[courseCode]
	if !ok {
		return false
	}
	_, ok = r.enrolled[enrollment{student: si, course: ci}]
	return ok
}

// EnrolledCourses returns the student's courses in enrollment order.
func (r *Registrar) EnrolledCourses(studentID string) ([]*Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	si, ok := r.studentIdx[studentID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrStudentNotFound, studentID)
	}
	out := make([]*Course, 0)
	for _, e := range r.enrollments {
		if e.student == si {
			out = append(out, r.courses[e.course])
		}
	}
	return out, nil
}

// Roster returns the students enrolled in a course in enrollment order.
func (r *Registrar) Roster(courseCode string) ([]*Student, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ci, ok := r.courseIdx[courseCode]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrCourseNotFound, courseCode)
	}
	out := make([]*Student, 0)
	for _, e := range r.enrollments {
		if e.course == ci {
			out = append(out, r.students[e.student])
		}
	}
	return out, nil
}

// CoursesTaughtBy returns the courses assigned to a lecturer.
func (r *Registrar) CoursesTaughtBy(lecturerID string) ([]*Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.lecturerIdx[lecturerID]; !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrLecturerNotFound, lecturerID)
	}
	out := make([]*Course, 0)
	for _, c := range r.courses {
		if c.lecturerID == lecturerID {
			out = append(out, c)
		}
	}
	return out, nil
}

// EnrollmentCount returns the number of student-course enrollments.
func (r *Registrar) EnrollmentCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.enrollments)
}

// ─────────────────────────────────────────────────────────────────────────────
// Records
// ─────────────────────────────────────────────────────────────────────────────

// WithRecord runs fn on the student's academic record while holding the
// registrar's write lock.
func (r *Registrar) WithRecord(studentID string, fn func(rec *record.AcademicRecord)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.studentIdx[studentID]
	if !ok {
		return fmt.Errorf("%w: %s", shared.ErrStudentNotFound, studentID)
	}
	fn(r.students[i].record)
	return nil
}

// ViewStudent runs fn on the student while holding the read lock. fn must
// not modify the student's record.
func (r *Registrar) ViewStudent(studentID string, fn func(s *Student)) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.studentIdx[studentID]
	if !ok {
		return fmt.Errorf("%w: %s", shared.ErrStudentNotFound, studentID)
	}
	fn(r.students[i])
	return nil
}

// RecordGrade stores a grade on the student's record.
func (r *Registrar) RecordGrade(studentID, courseCode, letter string) error {
	return r.WithRecord(studentID, func(rec *record.AcademicRecord) {
		rec.RecordGrade(courseCode, letter)
	})
}

// RecordAttendance appends a presence mark to the student's record.
func (r *Registrar) RecordAttendance(studentID, courseCode string, present bool) error {
	return r.WithRecord(studentID, func(rec *record.AcademicRecord) {
		rec.RecordAttendance(courseCode, present)
	})
}

// OpenAttendance opens an empty attendance log on the student's record.
func (r *Registrar) OpenAttendance(studentID, courseCode string) error {
	return r.WithRecord(studentID, func(rec *record.AcademicRecord) {
		rec.OpenAttendance(courseCode)
	})
}

// Performance computes a student's current performance.
func (r *Registrar) Performance(studentID string) (record.PerformanceReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.studentIdx[studentID]
	if !ok {
		return record.PerformanceReport{}, fmt.Errorf("%w: %s", shared.ErrStudentNotFound, studentID)
	}
	return r.students[i].record.Performance(), nil
}
