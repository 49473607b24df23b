package model

import (
	"time"

	"github.com/google/uuid"
)

// QuestionType enumerates how a question is answered and scored.
type QuestionType string

const (
	QuestionTypeSingleChoice QuestionType = "SINGLE_CHOICE"
	QuestionTypeMultiChoice  QuestionType = "MULTI_CHOICE"
)

// Difficulty is the authoring-time difficulty label of a question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

// QuestionStatus enumerates question bank lifecycle states.
type QuestionStatus string

const (
	QuestionStatusActive   QuestionStatus = "ACTIVE"
	QuestionStatusInactive QuestionStatus = "INACTIVE"
)

// Question is a scored question in a teacher's bank. Exams reference
// questions by id and never copy them.
type Question struct {
	ID             uuid.UUID      `json:"id"`
	TeacherID      int            `json:"teacher_id"`
	SubjectID      int            `json:"subject_id"`
	ClassID        int            `json:"class_id"`
	Chapter        string         `json:"chapter"`
	Text           string         `json:"text"`
	Type           QuestionType   `json:"type"`
	Difficulty     Difficulty     `json:"difficulty"`
	Options        []string       `json:"options"`
	CorrectOptions []string       `json:"correct_options,omitempty"`
	Points         int            `json:"points"`
	TimeAllowance  int            `json:"time_allowance_seconds"`
	Status         QuestionStatus `json:"status"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// HasValidAnswerKey reports whether the correct answer references declared
// options: exactly one option for single choice, a non-empty subset for
// multi choice.
func (q *Question) HasValidAnswerKey() bool {
	if len(q.CorrectOptions) == 0 {
		return false
	}
	if q.Type == QuestionTypeSingleChoice && len(q.CorrectOptions) != 1 {
		return false
	}
	declared := make(map[string]struct{}, len(q.Options))
	for _, o := range q.Options {
		declared[o] = struct{}{}
	}
	for _, c := range q.CorrectOptions {
		if _, ok := declared[c]; !ok {
			return false
		}
	}
	return true
}

// QuestionForStudent is a question stripped of its answer key, sent to
// students taking an exam.
type QuestionForStudent struct {
	ID            uuid.UUID    `json:"id"`
	Text          string       `json:"text"`
	Type          QuestionType `json:"type"`
	Options       []string     `json:"options"`
	Points        int          `json:"points"`
	TimeAllowance int          `json:"time_allowance_seconds"`
	Position      int          `json:"position"`
}

// CreateQuestionRequest is the payload for adding a question to the bank.
type CreateQuestionRequest struct {
	SubjectID      int      `json:"subject_id" binding:"required,min=1"`
	ClassID        int      `json:"class_id" binding:"required,min=1"`
	Chapter        string   `json:"chapter" binding:"omitempty,max=255"`
	Text           string   `json:"text" binding:"required,min=1,max=4000"`
	Type           string   `json:"type" binding:"required,oneof=SINGLE_CHOICE MULTI_CHOICE"`
	Difficulty     string   `json:"difficulty" binding:"required,oneof=EASY MEDIUM HARD"`
	Options        []string `json:"options" binding:"required,min=2,max=10,dive,required,max=1000"`
	CorrectOptions []string `json:"correct_options" binding:"required,min=1,dive,required"`
	Points         int      `json:"points" binding:"required,min=1"`
	TimeAllowance  int      `json:"time_allowance_seconds" binding:"required,min=5"`
}

// UpdateQuestionRequest is the payload for editing a bank question.
type UpdateQuestionRequest struct {
	Chapter        string   `json:"chapter" binding:"omitempty,max=255"`
	Text           string   `json:"text" binding:"omitempty,min=1,max=4000"`
	Difficulty     string   `json:"difficulty" binding:"omitempty,oneof=EASY MEDIUM HARD"`
	Options        []string `json:"options" binding:"omitempty,min=2,max=10,dive,required,max=1000"`
	CorrectOptions []string `json:"correct_options" binding:"omitempty,min=1,dive,required"`
	Points         int      `json:"points" binding:"omitempty,min=1"`
	TimeAllowance  int      `json:"time_allowance_seconds" binding:"omitempty,min=5"`
	Status         string   `json:"status" binding:"omitempty,oneof=ACTIVE INACTIVE"`
}
