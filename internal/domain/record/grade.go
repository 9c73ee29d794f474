package record

// ══════════════════════════════════════════════════════════════════════════════
// LETTER
// ══════════════════════════════════════════════════════════════════════════════

// Letter is a course grade letter. The known letters form a closed set; any
// other value is still a valid Letter and scores zero points.
type Letter string

const (
	LetterA Letter = "A"
	LetterB Letter = "B"
	LetterC Letter = "C"
	LetterD Letter = "D"
	LetterF Letter = "F"
)

// IsKnown reports whether the letter belongs to the A-F enumeration.
func (l Letter) IsKnown() bool {
	switch l {
	case LetterA, LetterB, LetterC, LetterD, LetterF:
		return true
	default:
		return false
	}
}

// String returns the letter as recorded.
func (l Letter) String() string {
	return string(l)
}

// MaxPoints is the point value of the best grade.
const MaxPoints = 4

// Points maps a letter to its grade points. Unknown letters map to 0.
func Points(l Letter) int {
	switch l {
	case LetterA:
		return 4
	case LetterB:
		return 3
	case LetterC:
		return 2
	case LetterD:
		return 1
	case LetterF:
		return 0
	default:
		return 0
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// GRADE
// ══════════════════════════════════════════════════════════════════════════════

// Grade is the immutable grade a student holds for one course.
type Grade struct {
	courseCode string
	letter     Letter
}

// NewGrade creates a grade. The letter is stored verbatim.
func NewGrade(courseCode, letter string) Grade {
	return Grade{courseCode: courseCode, letter: Letter(letter)}
}

// CourseCode returns the course the grade belongs to.
func (g Grade) CourseCode() string {
	return g.courseCode
}

// Letter returns the recorded letter.
func (g Grade) Letter() Letter {
	return g.letter
}

// Points returns the grade points for the letter.
func (g Grade) Points() int {
	return Points(g.letter)
}
