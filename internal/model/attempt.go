package model

import (
	"time"

	"github.com/google/uuid"
)

// AttemptStatus enumerates attempt states. COMPLETED and ABANDONED are
// terminal; an attempt never leaves them.
type AttemptStatus string

const (
	AttemptStatusInProgress AttemptStatus = "IN_PROGRESS"
	AttemptStatusCompleted  AttemptStatus = "COMPLETED"
	AttemptStatusAbandoned  AttemptStatus = "ABANDONED"
)

// Rating is the qualitative performance label derived from an attempt's
// percentage.
type Rating string

const (
	RatingExcellent    Rating = "Excellent"
	RatingGood         Rating = "Good"
	RatingSatisfactory Rating = "Satisfactory"
	RatingNeedsWork    Rating = "Needs Improvement"
)

// RatingFor maps a clamped percentage to its rating. Thresholds are
// inclusive: exactly 90 is Excellent, not Good.
func RatingFor(percentage float64) Rating {
	switch {
	case percentage >= 90:
		return RatingExcellent
	case percentage >= 75:
		return RatingGood
	case percentage >= 50:
		return RatingSatisfactory
	default:
		return RatingNeedsWork
	}
}

// ClampPercentage normalizes score/maxScore into a percentage in [0,100].
// A zero max score yields 0 rather than dividing by zero.
func ClampPercentage(score, maxScore int) float64 {
	if maxScore <= 0 {
		return 0
	}
	p := float64(score) / float64(maxScore) * 100
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// AttemptAnswer is one graded answer inside an attempt. Selected holds the
// chosen option values; empty means the question was left unanswered.
type AttemptAnswer struct {
	QuestionID    uuid.UUID `json:"question_id"`
	Selected      []string  `json:"selected"`
	Correct       bool      `json:"correct"`
	PointsAwarded int       `json:"points_awarded"`
}

// Attempt is one student's single sitting of an exam. MaxScore is a snapshot
// of the exam's total marks at begin time and is immune to later exam edits.
type Attempt struct {
	ID         uuid.UUID       `json:"id"`
	ExamID     uuid.UUID       `json:"exam_id"`
	StudentID  int             `json:"student_id"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
	Score      int             `json:"score"`
	MaxScore   int             `json:"max_score"`
	Percentage float64         `json:"percentage"`
	Rating     Rating          `json:"rating,omitempty"`
	Answers    []AttemptAnswer `json:"answers,omitempty"`
	Late       bool            `json:"late"`
	Status     AttemptStatus   `json:"status"`
}

// SubmittedAnswer is one answer as sent by the student at submission time.
type SubmittedAnswer struct {
	QuestionID uuid.UUID `json:"question_id" binding:"required"`
	Selected   []string  `json:"selected" binding:"omitempty,max=10"`
}

// SubmitAnswersRequest is the payload finalizing an attempt.
type SubmitAnswersRequest struct {
	Answers []SubmittedAnswer `json:"answers" binding:"dive"`
}
