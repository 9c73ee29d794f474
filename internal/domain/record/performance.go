package record

import (
	"fmt"
	"io"
)

// Classification thresholds.
const (
	ExcellentGPA        = 3.5
	ExcellentAttendance = 90.0
	AtRiskGPA           = 2.0
	AtRiskAttendance    = 60.0
)

// Classification is the outcome of the performance rule.
type Classification string

const (
	// ClassificationExcellent - GPA and attendance both at or above the
	// excellent thresholds.
	ClassificationExcellent Classification = "excellent"
	// ClassificationAtRisk - GPA or attendance below the warning thresholds.
	ClassificationAtRisk Classification = "at_risk"
	// ClassificationNone - the middle band; nothing is reported.
	ClassificationNone Classification = "none"
)

// Message returns the line printed for the classification, or "" for the
// middle band.
func (c Classification) Message() string {
	switch c {
	case ClassificationExcellent:
		return "Excellent performance!"
	case ClassificationAtRisk:
		return "Warning: Poor performance"
	default:
		return ""
	}
}

// Classify applies the performance rule. The excellent check runs first, so
// the two reported outcomes never overlap.
func Classify(gpa, attendance float64) Classification {
	switch {
	case gpa >= ExcellentGPA && attendance >= ExcellentAttendance:
		return ClassificationExcellent
	case gpa < AtRiskGPA || attendance < AtRiskAttendance:
		return ClassificationAtRisk
	default:
		return ClassificationNone
	}
}

// PerformanceReport is a point-in-time view of a record's metrics.
type PerformanceReport struct {
	GPA            float64
	Attendance     float64
	Classification Classification
}

// Summary returns the one-line GPA and attendance summary.
func (p PerformanceReport) Summary() string {
	return fmt.Sprintf("GPA: %.2f, Average Attendance: %.1f%%", p.GPA, p.Attendance)
}

// Performance computes the record's current performance.
func (r *AcademicRecord) Performance() PerformanceReport {
	gpa := r.GPA()
	att := r.AverageAttendance()
	return PerformanceReport{
		GPA:            gpa,
		Attendance:     att,
		Classification: Classify(gpa, att),
	}
}

// GeneratePerformanceReport writes the summary line and, outside the middle
// band, a classification line to w. It returns the GPA. Write errors are
// ignored.
func (r *AcademicRecord) GeneratePerformanceReport(w io.Writer) float64 {
	p := r.Performance()
	fmt.Fprintln(w, p.Summary())
	if msg := p.Classification.Message(); msg != "" {
		fmt.Fprintln(w, msg)
	}
	return p.GPA
}
