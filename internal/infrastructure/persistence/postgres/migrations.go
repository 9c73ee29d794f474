package postgres

// Migrations returns the student-information schema in version order.
func Migrations() []Migration {
	return []Migration{
		{Version: 1, Name: "create_people", UpSQL: migration001Up, DownSQL: migration001Down},
		{Version: 2, Name: "create_courses", UpSQL: migration002Up, DownSQL: migration002Down},
		{Version: 3, Name: "create_records", UpSQL: migration003Up, DownSQL: migration003Down},
	}
}

const migration001Up = `
CREATE TABLE IF NOT EXISTS lecturers (
    id VARCHAR(32) PRIMARY KEY,
    name VARCHAR(120) NOT NULL,
    email VARCHAR(200) NOT NULL,
    phone VARCHAR(40),
    department VARCHAR(120) NOT NULL DEFAULT '',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS students (
    id VARCHAR(32) PRIMARY KEY,
    name VARCHAR(120) NOT NULL,
    email VARCHAR(200) NOT NULL,
    phone VARCHAR(40),
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
`

const migration001Down = `
DROP TABLE IF EXISTS students;
DROP TABLE IF EXISTS lecturers;
`

const migration002Up = `
CREATE TABLE IF NOT EXISTS courses (
    code VARCHAR(20) PRIMARY KEY,
    title VARCHAR(200) NOT NULL,
    credit_hours INTEGER NOT NULL DEFAULT 0,
    lecturer_id VARCHAR(32) REFERENCES lecturers(id) ON DELETE SET NULL
);

CREATE INDEX IF NOT EXISTS idx_courses_lecturer ON courses(lecturer_id);

CREATE TABLE IF NOT EXISTS enrollments (
    student_id VARCHAR(32) NOT NULL REFERENCES students(id) ON DELETE CASCADE,
    course_code VARCHAR(20) NOT NULL REFERENCES courses(code) ON DELETE CASCADE,
    enrolled_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    PRIMARY KEY (student_id, course_code)
);
`

const migration002Down = `
DROP TABLE IF EXISTS enrollments;
DROP TABLE IF EXISTS courses;
`

// Grades store the letter as entered; unrecognised letters are kept and
// score zero points when loaded.
const migration003Up = `
CREATE TABLE IF NOT EXISTS grades (
    student_id VARCHAR(32) NOT NULL REFERENCES students(id) ON DELETE CASCADE,
    course_code VARCHAR(20) NOT NULL,
    letter TEXT NOT NULL,
    recorded_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    PRIMARY KEY (student_id, course_code)
);

CREATE TABLE IF NOT EXISTS attendance_marks (
    id BIGSERIAL PRIMARY KEY,
    student_id VARCHAR(32) NOT NULL REFERENCES students(id) ON DELETE CASCADE,
    course_code VARCHAR(20) NOT NULL,
    present BOOLEAN NOT NULL,
    marked_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_attendance_student_course
    ON attendance_marks(student_id, course_code, id);
`

const migration003Down = `
DROP TABLE IF EXISTS attendance_marks;
DROP TABLE IF EXISTS grades;
`
