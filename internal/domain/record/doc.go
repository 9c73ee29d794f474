// Package record holds the academic record of a single student: the grades
// recorded per course, the attendance register per course, and the metrics
// derived from them.
//
// The package has no dependencies outside the standard library and no
// error paths. Every operation is total: unknown grade letters score zero
// points and empty collections produce 0.0 rather than dividing by zero.
//
// # Grades
//
// A Grade pairs a course code with a Letter. Letters outside the A-F
// enumeration are stored verbatim and score zero:
//
//	rec := record.New()
//	rec.RecordGrade("CS101", "A")
//	rec.RecordGrade("MA201", "B")
//	rec.GPA() // 3.5
//
// Recording a course again replaces the previous grade.
//
// # Attendance
//
// Each course has an append-only AttendanceLog:
//
//	rec.RecordAttendance("CS101", true)
//	rec.RecordAttendance("CS101", false)
//	rec.AverageAttendance() // 50.0
//
// # Performance
//
// GeneratePerformanceReport writes a summary to an io.Writer and returns the
// GPA; Performance returns the same information as a value.
//
// AcademicRecord is not safe for concurrent use. Callers that share a record
// between goroutines serialise access themselves (the university.Registrar
// does this).
package record
