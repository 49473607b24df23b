package service

import (
	"context"

	"github.com/edumark/examly-backend/internal/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ResultStore is the result storage surface of the reconciler.
type ResultStore interface {
	Upsert(ctx context.Context, res *model.Result) error
	GetByExamAndStudent(ctx context.Context, examID uuid.UUID, studentID int) (*model.Result, error)
	ListByExam(ctx context.Context, examID uuid.UUID) ([]model.Result, error)
	ListByStudent(ctx context.Context, studentID int) ([]model.Result, error)
	GradeDistribution(ctx context.Context, examID uuid.UUID) (map[model.Grade]int, error)
}

// SystemGrader marks a result row as machine-recorded.
const SystemGrader = 0

// ResultService reconciles completed attempts into durable results and
// serves grade reads. One result row exists per (exam, student) pair; the
// storage constraint makes concurrent first recordings coalesce and later
// recordings amend in place.
type ResultService struct {
	results ResultStore
	exams   ExamStore
	log     zerolog.Logger
}

// NewResultService creates a new ResultService.
func NewResultService(results ResultStore, exams ExamStore, log zerolog.Logger) *ResultService {
	return &ResultService{
		results: results,
		exams:   exams,
		log:     log.With().Str("component", "result_service").Logger(),
	}
}

// RecordFromAttempt upserts the durable result derived from a completed
// attempt. Safe to call more than once for the same attempt.
func (s *ResultService) RecordFromAttempt(ctx context.Context, attempt *model.Attempt) error {
	if attempt.Status != model.AttemptStatusCompleted {
		return ErrAlreadyFinalized
	}
	res := &model.Result{
		ExamID:    attempt.ExamID,
		StudentID: attempt.StudentID,
		Marks:     attempt.Score,
		Grade:     model.GradeFor(attempt.Percentage),
		GradedBy:  SystemGrader,
	}
	if err := s.results.Upsert(ctx, res); err != nil {
		return storeErr(err)
	}
	s.log.Info().
		Str("exam_id", res.ExamID.String()).
		Int("student_id", res.StudentID).
		Int("marks", res.Marks).
		Str("grade", string(res.Grade)).
		Msg("result reconciled")
	return nil
}

// RecordManual records or amends a result by hand. Only the exam owner or a
// principal may grade.
func (s *ResultService) RecordManual(ctx context.Context, examID uuid.UUID, callerID int, isPrincipal bool, req *model.ManualGradeRequest) (*model.Result, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		return nil, storeErr(err)
	}
	if !isPrincipal && exam.OwnerID != callerID {
		return nil, ErrNotExamOwner
	}

	res := &model.Result{
		ExamID:    examID,
		StudentID: req.StudentID,
		Marks:     req.Marks,
		Grade:     model.Grade(req.Grade),
		Feedback:  req.Feedback,
		GradedBy:  callerID,
	}
	if err := s.results.Upsert(ctx, res); err != nil {
		return nil, storeErr(err)
	}
	s.log.Info().
		Str("exam_id", examID.String()).
		Int("student_id", req.StudentID).
		Int("graded_by", callerID).
		Msg("manual grade recorded")
	return res, nil
}

// GetForStudent retrieves the student's own result on an exam.
func (s *ResultService) GetForStudent(ctx context.Context, examID uuid.UUID, studentID int) (*model.Result, error) {
	res, err := s.results.GetByExamAndStudent(ctx, examID, studentID)
	if err != nil {
		return nil, storeErr(err)
	}
	return res, nil
}

// ListForStudent retrieves all the student's results, newest first.
func (s *ResultService) ListForStudent(ctx context.Context, studentID int) ([]model.Result, error) {
	results, err := s.results.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, storeErr(err)
	}
	return results, nil
}

// ListForExam retrieves every result for an exam on behalf of its owner or
// a principal.
func (s *ResultService) ListForExam(ctx context.Context, examID uuid.UUID, callerID int, isPrincipal bool) ([]model.Result, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		return nil, storeErr(err)
	}
	if !isPrincipal && exam.OwnerID != callerID {
		return nil, ErrNotExamOwner
	}
	results, err := s.results.ListByExam(ctx, examID)
	if err != nil {
		return nil, storeErr(err)
	}
	return results, nil
}

// Distribution reports how many results fall into each grade, best grade
// first, including empty buckets.
func (s *ResultService) Distribution(ctx context.Context, examID uuid.UUID, callerID int, isPrincipal bool) ([]model.GradeBucket, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		return nil, storeErr(err)
	}
	if !isPrincipal && exam.OwnerID != callerID {
		return nil, ErrNotExamOwner
	}

	counts, err := s.results.GradeDistribution(ctx, examID)
	if err != nil {
		return nil, storeErr(err)
	}

	buckets := make([]model.GradeBucket, 0, len(model.AllGrades))
	for _, g := range model.AllGrades {
		buckets = append(buckets, model.GradeBucket{Grade: g, Count: counts[g]})
	}
	return buckets, nil
}
