package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/alem-hub/campus-records/internal/domain/shared"
	"github.com/alem-hub/campus-records/internal/domain/university"
)

// Querier is the read surface shared by *Connection and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

// RosterRepository implements university.RosterSource over the
// student-information schema.
type RosterRepository struct {
	conn *Connection
	q    Querier
}

var _ university.RosterSource = (*RosterRepository)(nil)

// NewRosterRepository loads rosters through conn, reading every table from
// one read-only snapshot.
func NewRosterRepository(conn *Connection) *RosterRepository {
	return &RosterRepository{conn: conn}
}

// NewRosterRepositoryWithQuerier loads rosters directly through q, outside
// any transaction it does not already hold.
func NewRosterRepositoryWithQuerier(q Querier) *RosterRepository {
	return &RosterRepository{q: q}
}

// Name implements university.RosterSource.
func (r *RosterRepository) Name() string { return "postgres" }

// Load implements university.RosterSource.
func (r *RosterRepository) Load(ctx context.Context) (*university.RosterData, error) {
	if r.conn == nil {
		return loadRoster(ctx, r.q)
	}

	var data *university.RosterData
	err := r.conn.WithTx(ctx, ReadOnlySnapshot, func(tx pgx.Tx) error {
		var err error
		data, err = loadRoster(ctx, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

const (
	selectLecturers = `
		SELECT id, name, email, phone, department
		FROM lecturers
		ORDER BY id`

	selectCourses = `
		SELECT code, title, credit_hours, lecturer_id
		FROM courses
		ORDER BY code`

	selectStudents = `
		SELECT id, name, email, phone
		FROM students
		ORDER BY id`

	selectEnrollments = `
		SELECT student_id, course_code
		FROM enrollments
		ORDER BY enrolled_at, student_id, course_code`

	selectGrades = `
		SELECT student_id, course_code, letter
		FROM grades
		ORDER BY student_id, course_code`

	// Mark order within a (student, course) log is insertion order.
	selectAttendance = `
		SELECT student_id, course_code, present
		FROM attendance_marks
		ORDER BY id`
)

func loadRoster(ctx context.Context, q Querier) (*university.RosterData, error) {
	var (
		data university.RosterData
		err  error
	)

	if data.Lecturers, err = collect(ctx, q, "lecturers", selectLecturers, scanLecturer); err != nil {
		return nil, err
	}
	if data.Courses, err = collect(ctx, q, "courses", selectCourses, scanCourse); err != nil {
		return nil, err
	}
	if data.Students, err = collect(ctx, q, "students", selectStudents, scanStudent); err != nil {
		return nil, err
	}
	if data.Enrollments, err = collect(ctx, q, "enrollments", selectEnrollments, scanEnrollment); err != nil {
		return nil, err
	}
	if data.Grades, err = collect(ctx, q, "grades", selectGrades, scanGrade); err != nil {
		return nil, err
	}
	if data.Attendance, err = collect(ctx, q, "attendance_marks", selectAttendance, scanMark); err != nil {
		return nil, err
	}

	return &data, nil
}

func collect[T any](ctx context.Context, q Querier, table, sql string, scan func(pgx.CollectableRow) (T, error)) ([]T, error) {
	rows, err := q.Query(ctx, sql)
	if err != nil {
		return nil, sourceError(table, err)
	}

	out, err := pgx.CollectRows(rows, scan)
	if err != nil {
		return nil, sourceError(table, err)
	}
	return out, nil
}

func sourceError(table string, err error) error {
	if IsUndefinedTable(err) {
		return fmt.Errorf("%w: table %s missing, run migrations: %v", shared.ErrRosterUnavailable, table, err)
	}
	return fmt.Errorf("%w: read %s: %v", shared.ErrRosterUnavailable, table, err)
}

// ─────────────────────────────────────────────────────────────────────────────
// Row mappers
// ─────────────────────────────────────────────────────────────────────────────

func scanLecturer(row pgx.CollectableRow) (university.LecturerEntry, error) {
	var (
		e     university.LecturerEntry
		phone *string
	)
	if err := row.Scan(&e.ID, &e.Name, &e.Email, &phone, &e.Department); err != nil {
		return e, err
	}
	e.Phone = deref(phone)
	return e, nil
}

func scanCourse(row pgx.CollectableRow) (university.CourseEntry, error) {
	var (
		e          university.CourseEntry
		lecturerID *string
	)
	if err := row.Scan(&e.Code, &e.Title, &e.CreditHours, &lecturerID); err != nil {
		return e, err
	}
	e.LecturerID = deref(lecturerID)
	return e, nil
}

func scanStudent(row pgx.CollectableRow) (university.StudentEntry, error) {
	var (
		e     university.StudentEntry
		phone *string
	)
	if err := row.Scan(&e.ID, &e.Name, &e.Email, &phone); err != nil {
		return e, err
	}
	e.Phone = deref(phone)
	return e, nil
}

func scanEnrollment(row pgx.CollectableRow) (university.EnrollmentEntry, error) {
	var e university.EnrollmentEntry
	err := row.Scan(&e.StudentID, &e.CourseCode)
	return e, err
}

func scanGrade(row pgx.CollectableRow) (university.GradeEntry, error) {
	var e university.GradeEntry
	err := row.Scan(&e.StudentID, &e.CourseCode, &e.Letter)
	return e, err
}

func scanMark(row pgx.CollectableRow) (university.AttendanceEntry, error) {
	var e university.AttendanceEntry
	err := row.Scan(&e.StudentID, &e.CourseCode, &e.Present)
	return e, err
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
