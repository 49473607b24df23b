package model

import (
	"time"

	"github.com/google/uuid"
)

// Grade is the letter grade on a durable Result. Distinct scale from Rating.
type Grade string

const (
	GradeAPlus Grade = "A+"
	GradeA     Grade = "A"
	GradeB     Grade = "B"
	GradeC     Grade = "C"
	GradeD     Grade = "D"
	GradeF     Grade = "F"
)

// AllGrades lists every grade, best first. Used by distribution reports.
var AllGrades = []Grade{GradeAPlus, GradeA, GradeB, GradeC, GradeD, GradeF}

// GradeFor maps a clamped percentage to its letter grade. Thresholds are
// inclusive at each boundary.
func GradeFor(percentage float64) Grade {
	switch {
	case percentage >= 90:
		return GradeAPlus
	case percentage >= 80:
		return GradeA
	case percentage >= 65:
		return GradeB
	case percentage >= 50:
		return GradeC
	case percentage >= 35:
		return GradeD
	default:
		return GradeF
	}
}

// Result is the permanent grade record for one (exam, student) pair. The
// pair is unique at the storage layer; a second recording amends the row.
type Result struct {
	ID        uuid.UUID `json:"id"`
	ExamID    uuid.UUID `json:"exam_id"`
	StudentID int       `json:"student_id"`
	Marks     int       `json:"marks"`
	Grade     Grade     `json:"grade"`
	Feedback  string    `json:"feedback,omitempty"`
	GradedBy  int       `json:"graded_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GradeBucket is one row of an exam's grade distribution report.
type GradeBucket struct {
	Grade Grade `json:"grade"`
	Count int   `json:"count"`
}

// ManualGradeRequest is the payload for a grader recording or amending a
// result by hand.
type ManualGradeRequest struct {
	StudentID int    `json:"student_id" binding:"required,min=1"`
	Marks     int    `json:"marks" binding:"min=0"`
	Grade     string `json:"grade" binding:"required,oneof=A+ A B C D F"`
	Feedback  string `json:"feedback" binding:"omitempty,max=2000"`
}
