package model

import (
	"time"

	"github.com/google/uuid"
)

// ExamStatus enumerates the lifecycle states of an exam.
type ExamStatus string

const (
	ExamStatusDraft     ExamStatus = "DRAFT"
	ExamStatusScheduled ExamStatus = "SCHEDULED"
	ExamStatusActive    ExamStatus = "ACTIVE"
	ExamStatusCompleted ExamStatus = "COMPLETED"
	ExamStatusArchived  ExamStatus = "ARCHIVED"
)

// legalTransitions maps each status to the targets an explicit transition
// may move it to. Completion also happens implicitly once the window closes;
// see Exam.EffectiveStatus.
var legalTransitions = map[ExamStatus][]ExamStatus{
	ExamStatusDraft:     {ExamStatusScheduled, ExamStatusArchived},
	ExamStatusScheduled: {ExamStatusActive},
	ExamStatusActive:    {ExamStatusCompleted},
	ExamStatusCompleted: {ExamStatusArchived},
}

// CanTransition reports whether from → to is a legal explicit transition.
func CanTransition(from, to ExamStatus) bool {
	for _, t := range legalTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// Exam is an assembled, time-boxed test over a fixed question set.
type Exam struct {
	ID              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	OwnerID         int        `json:"owner_id"`
	SubjectID       int        `json:"subject_id"`
	ClassID         int        `json:"class_id"`
	Chapter         string     `json:"chapter"`
	DurationMinutes int        `json:"duration_minutes"`
	StartAt         time.Time  `json:"start_at"`
	EndAt           time.Time  `json:"end_at"`
	AttemptQuota    int        `json:"attempt_quota"`
	TotalMarks      int        `json:"total_marks"`
	PassingMarks    int        `json:"passing_marks"`
	Status          ExamStatus `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// EffectiveStatus is the status the exam should present to readers at the
// given instant. A SCHEDULED or ACTIVE exam whose window has elapsed presents
// as COMPLETED even before the stored row catches up; the stored status is
// reconciled lazily on the next write path.
func (e *Exam) EffectiveStatus(now time.Time) ExamStatus {
	switch e.Status {
	case ExamStatusScheduled, ExamStatusActive:
		if !now.Before(e.EndAt) {
			return ExamStatusCompleted
		}
	}
	return e.Status
}

// IsAcceptingAttempts reports whether a student may begin an attempt right
// now: effective status ACTIVE and now within [StartAt, EndAt).
func (e *Exam) IsAcceptingAttempts(now time.Time) bool {
	if e.EffectiveStatus(now) != ExamStatusActive {
		return false
	}
	return !now.Before(e.StartAt) && now.Before(e.EndAt)
}

// ExamQuestionRef is one position in an exam's ordered question set.
type ExamQuestionRef struct {
	QuestionID uuid.UUID `json:"question_id"`
	Position   int       `json:"position"`
}

// ExamPayload is the Redis-cached payload served to students (no answer keys).
type ExamPayload struct {
	ExamID          uuid.UUID            `json:"exam_id"`
	Title           string               `json:"title"`
	DurationMinutes int                  `json:"duration_minutes"`
	TotalMarks      int                  `json:"total_marks"`
	Questions       []QuestionForStudent `json:"questions"`
}

// AnswerKeyEntry is the cached per-question grading key used by the
// submission scoring path.
type AnswerKeyEntry struct {
	Type           QuestionType `json:"type"`
	CorrectOptions []string     `json:"correct_options"`
	Points         int          `json:"points"`
}

// CreateExamRequest is the payload for creating a new draft exam.
type CreateExamRequest struct {
	Title           string    `json:"title" binding:"required,min=3,max=255"`
	SubjectID       int       `json:"subject_id" binding:"required,min=1"`
	ClassID         int       `json:"class_id" binding:"required,min=1"`
	Chapter         string    `json:"chapter" binding:"omitempty,max=255"`
	DurationMinutes int       `json:"duration_minutes" binding:"required,min=1,max=480"`
	StartAt         time.Time `json:"start_at" binding:"required"`
	EndAt           time.Time `json:"end_at" binding:"required,gtfield=StartAt"`
	AttemptQuota    int       `json:"attempt_quota" binding:"required,min=1"`
	PassingMarks    int       `json:"passing_marks" binding:"min=0"`
}

// UpdateExamRequest is the payload for editing a draft exam.
type UpdateExamRequest struct {
	Title           string     `json:"title" binding:"omitempty,min=3,max=255"`
	Chapter         string     `json:"chapter" binding:"omitempty,max=255"`
	DurationMinutes int        `json:"duration_minutes" binding:"omitempty,min=1,max=480"`
	StartAt         *time.Time `json:"start_at" binding:"omitempty"`
	EndAt           *time.Time `json:"end_at" binding:"omitempty"`
	AttemptQuota    int        `json:"attempt_quota" binding:"omitempty,min=1"`
	PassingMarks    *int       `json:"passing_marks" binding:"omitempty,min=0"`
}

// SetQuestionsRequest replaces a draft exam's ordered question set.
type SetQuestionsRequest struct {
	QuestionIDs []uuid.UUID `json:"question_ids" binding:"required,min=1"`
}

// TransitionRequest asks the lifecycle supervisor to move an exam to a
// target status.
type TransitionRequest struct {
	Target string `json:"target" binding:"required,oneof=DRAFT SCHEDULED ACTIVE COMPLETED ARCHIVED"`
}
