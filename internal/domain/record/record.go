package record

import (
	"math"
	"sort"
)

// AcademicRecord aggregates the grades and attendance of one student.
// The zero value is not usable; create records with New.
type AcademicRecord struct {
	grades     map[string]Grade
	attendance map[string]*AttendanceLog
}

// New returns an empty record.
func New() *AcademicRecord {
	return &AcademicRecord{
		grades:     make(map[string]Grade),
		attendance: make(map[string]*AttendanceLog),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Recording
// ─────────────────────────────────────────────────────────────────────────────

// RecordGrade stores the grade for a course, replacing any earlier grade.
func (r *AcademicRecord) RecordGrade(courseCode, letter string) {
	r.grades[courseCode] = NewGrade(courseCode, letter)
}

// RecordAttendance appends one presence mark to the course's log, opening the
// log if needed.
func (r *AcademicRecord) RecordAttendance(courseCode string, present bool) {
	r.log(courseCode).mark(present)
}

// OpenAttendance opens an empty log for the course. An open log with no marks
// still counts towards AverageAttendance's divisor.
func (r *AcademicRecord) OpenAttendance(courseCode string) {
	r.log(courseCode)
}

func (r *AcademicRecord) log(courseCode string) *AttendanceLog {
	l, ok := r.attendance[courseCode]
	if !ok {
		l = &AttendanceLog{}
		r.attendance[courseCode] = l
	}
	return l
}

// ─────────────────────────────────────────────────────────────────────────────
// Read access
// ─────────────────────────────────────────────────────────────────────────────

// Grade returns the grade recorded for a course.
func (r *AcademicRecord) Grade(courseCode string) (Grade, bool) {
	g, ok := r.grades[courseCode]
	return g, ok
}

// Grades returns all grades ordered by course code.
func (r *AcademicRecord) Grades() []Grade {
	out := make([]Grade, 0, len(r.grades))
	for _, g := range r.grades {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].courseCode < out[j].courseCode })
	return out
}

// Attendance returns a copy of the attendance log for a course.
func (r *AcademicRecord) Attendance(courseCode string) AttendanceLog {
	l, ok := r.attendance[courseCode]
	if !ok {
		return AttendanceLog{}
	}
	return AttendanceLog{marks: l.Marks()}
}

// AttendanceRate returns the presence percentage for one course, rounded to
// one decimal. Unknown courses and empty logs give 0.
func (r *AcademicRecord) AttendanceRate(courseCode string) float64 {
	l, ok := r.attendance[courseCode]
	if !ok {
		return 0
	}
	pct, _ := l.rate()
	return roundTo(pct, 1)
}

// Courses returns every course code that has a grade or an attendance log,
// sorted.
func (r *AcademicRecord) Courses() []string {
	seen := make(map[string]struct{}, len(r.grades)+len(r.attendance))
	for c := range r.grades {
		seen[c] = struct{}{}
	}
	for c := range r.attendance {
		seen[c] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// Metrics
// ─────────────────────────────────────────────────────────────────────────────

// GPA returns the unweighted mean of grade points over graded courses,
// rounded to two decimals. Credit hours play no part. An empty record gives 0.
func (r *AcademicRecord) GPA() float64 {
	if len(r.grades) == 0 {
		return 0
	}
	total := 0
	for _, g := range r.grades {
		total += g.Points()
	}
	return roundTo(float64(total)/float64(len(r.grades)), 2)
}

// AverageAttendance returns the mean of the per-course presence percentages,
// rounded to one decimal.
//
// Courses with an open but empty log add nothing to the sum yet still count
// in the divisor, so they pull the average down.
func (r *AcademicRecord) AverageAttendance() float64 {
	if len(r.attendance) == 0 {
		return 0
	}
	var sum float64
	for _, l := range r.attendance {
		if pct, ok := l.rate(); ok {
			sum += pct
		}
	}
	return roundTo(sum/float64(len(r.attendance)), 1)
}

// roundTo rounds half away from zero to the given number of decimals. Inputs
// here are never negative, so this is round-half-up.
func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
