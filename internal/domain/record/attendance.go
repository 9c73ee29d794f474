package record

// AttendanceLog is the ordered list of presence marks for one course.
// Marks are only ever appended.
type AttendanceLog struct {
	marks []bool
}

func (l *AttendanceLog) mark(present bool) {
	l.marks = append(l.marks, present)
}

// Len returns the number of sessions recorded.
func (l AttendanceLog) Len() int {
	return len(l.marks)
}

// Present returns the number of sessions marked present.
func (l AttendanceLog) Present() int {
	n := 0
	for _, p := range l.marks {
		if p {
			n++
		}
	}
	return n
}

// Marks returns a copy of the marks in recording order.
func (l AttendanceLog) Marks() []bool {
	out := make([]bool, len(l.marks))
	copy(out, l.marks)
	return out
}

// rate returns the unrounded presence percentage; ok is false for an empty log.
func (l AttendanceLog) rate() (pct float64, ok bool) {
	if len(l.marks) == 0 {
		return 0, false
	}
	return float64(l.Present()) * 100 / float64(len(l.marks)), true
}
