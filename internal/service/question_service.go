package service

import (
	"context"

	"github.com/edumark/examly-backend/internal/model"
	"github.com/edumark/examly-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// QuestionService handles the per-teacher question bank.
type QuestionService struct {
	questions *repository.QuestionRepository
	log       zerolog.Logger
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(questions *repository.QuestionRepository, log zerolog.Logger) *QuestionService {
	return &QuestionService{
		questions: questions,
		log:       log.With().Str("component", "question_service").Logger(),
	}
}

// Create adds a question to the caller's bank. The answer key must
// reference declared options.
func (s *QuestionService) Create(ctx context.Context, teacherID int, req *model.CreateQuestionRequest) (*model.Question, error) {
	q := &model.Question{
		TeacherID:      teacherID,
		SubjectID:      req.SubjectID,
		ClassID:        req.ClassID,
		Chapter:        req.Chapter,
		Text:           req.Text,
		Type:           model.QuestionType(req.Type),
		Difficulty:     model.Difficulty(req.Difficulty),
		Options:        req.Options,
		CorrectOptions: req.CorrectOptions,
		Points:         req.Points,
		TimeAllowance:  req.TimeAllowance,
		Status:         model.QuestionStatusActive,
	}
	if !q.HasValidAnswerKey() {
		return nil, ErrInvalidAnswerKey
	}
	if err := s.questions.Create(ctx, q); err != nil {
		return nil, storeErr(err)
	}
	return q, nil
}

// Get retrieves one of the caller's bank questions. Principals may read any.
func (s *QuestionService) Get(ctx context.Context, id uuid.UUID, callerID int, isPrincipal bool) (*model.Question, error) {
	q, err := s.questions.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	if !isPrincipal && q.TeacherID != callerID {
		return nil, ErrNotFound
	}
	return q, nil
}

// List retrieves the caller's bank questions with optional subject filter.
func (s *QuestionService) List(ctx context.Context, teacherID int, subjectID *int, limit, offset int) ([]model.Question, int, error) {
	questions, total, err := s.questions.ListByTeacherPaginated(ctx, teacherID, subjectID, limit, offset)
	if err != nil {
		return nil, 0, storeErr(err)
	}
	return questions, total, nil
}

// Update edits one of the caller's bank questions, re-validating the answer
// key against the (possibly replaced) option list.
func (s *QuestionService) Update(ctx context.Context, id uuid.UUID, callerID int, isPrincipal bool, req *model.UpdateQuestionRequest) (*model.Question, error) {
	q, err := s.questions.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	if !isPrincipal && q.TeacherID != callerID {
		return nil, ErrNotFound
	}

	if req.Chapter != "" {
		q.Chapter = req.Chapter
	}
	if req.Text != "" {
		q.Text = req.Text
	}
	if req.Difficulty != "" {
		q.Difficulty = model.Difficulty(req.Difficulty)
	}
	if req.Options != nil {
		q.Options = req.Options
	}
	if req.CorrectOptions != nil {
		q.CorrectOptions = req.CorrectOptions
	}
	if req.Points > 0 {
		q.Points = req.Points
	}
	if req.TimeAllowance > 0 {
		q.TimeAllowance = req.TimeAllowance
	}
	if req.Status != "" {
		q.Status = model.QuestionStatus(req.Status)
	}
	if !q.HasValidAnswerKey() {
		return nil, ErrInvalidAnswerKey
	}

	if err := s.questions.Update(ctx, q); err != nil {
		return nil, storeErr(err)
	}
	return q, nil
}
