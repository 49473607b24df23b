package service

import (
	"context"
	"time"

	"github.com/edumark/examly-backend/internal/model"
	"github.com/edumark/examly-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// answerKeyGrace keeps cached payloads and grading keys alive past the exam
// window so late submissions still grade off the fast lane.
const answerKeyGrace = 2 * time.Hour

// ExamService handles exam authoring: draft CRUD, question set assembly,
// and fast-lane cache warming.
type ExamService struct {
	exams     *repository.ExamRepository
	questions *repository.QuestionRepository
	cache     *RedisExamCache
	now       func() time.Time
	log       zerolog.Logger
}

// NewExamService creates a new ExamService.
func NewExamService(exams *repository.ExamRepository, questions *repository.QuestionRepository, cache *RedisExamCache, log zerolog.Logger) *ExamService {
	return &ExamService{
		exams:     exams,
		questions: questions,
		cache:     cache,
		now:       time.Now,
		log:       log.With().Str("component", "exam_service").Logger(),
	}
}

// Create opens a new draft exam owned by the caller. Total marks stay zero
// until a question set is attached.
func (s *ExamService) Create(ctx context.Context, ownerID int, req *model.CreateExamRequest) (*model.Exam, error) {
	exam := &model.Exam{
		Title:           req.Title,
		OwnerID:         ownerID,
		SubjectID:       req.SubjectID,
		ClassID:         req.ClassID,
		Chapter:         req.Chapter,
		DurationMinutes: req.DurationMinutes,
		StartAt:         req.StartAt,
		EndAt:           req.EndAt,
		AttemptQuota:    req.AttemptQuota,
		PassingMarks:    req.PassingMarks,
		Status:          model.ExamStatusDraft,
	}
	if err := s.exams.Create(ctx, exam); err != nil {
		return nil, storeErr(err)
	}
	s.log.Info().Str("exam_id", exam.ID.String()).Int("owner_id", ownerID).Msg("draft exam created")
	return exam, nil
}

// Get retrieves an exam with its effective status and question references.
func (s *ExamService) Get(ctx context.Context, examID uuid.UUID, callerID int, isPrincipal bool) (*model.Exam, []model.ExamQuestionRef, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		return nil, nil, storeErr(err)
	}
	if !isPrincipal && exam.OwnerID != callerID {
		return nil, nil, ErrNotExamOwner
	}
	refs, err := s.exams.ListQuestionRefs(ctx, examID)
	if err != nil {
		return nil, nil, storeErr(err)
	}
	exam.Status = exam.EffectiveStatus(s.now())
	return exam, refs, nil
}

// Update edits a draft exam. Exams past DRAFT are frozen except for their
// lifecycle status.
func (s *ExamService) Update(ctx context.Context, examID uuid.UUID, callerID int, isPrincipal bool, req *model.UpdateExamRequest) (*model.Exam, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		return nil, storeErr(err)
	}
	if !isPrincipal && exam.OwnerID != callerID {
		return nil, ErrNotExamOwner
	}
	if exam.Status != model.ExamStatusDraft {
		return nil, ErrExamNotDraft
	}

	if req.Title != "" {
		exam.Title = req.Title
	}
	if req.Chapter != "" {
		exam.Chapter = req.Chapter
	}
	if req.DurationMinutes > 0 {
		exam.DurationMinutes = req.DurationMinutes
	}
	if req.StartAt != nil {
		exam.StartAt = *req.StartAt
	}
	if req.EndAt != nil {
		exam.EndAt = *req.EndAt
	}
	if req.AttemptQuota > 0 {
		exam.AttemptQuota = req.AttemptQuota
	}
	if req.PassingMarks != nil {
		exam.PassingMarks = *req.PassingMarks
	}
	if !exam.EndAt.After(exam.StartAt) {
		return nil, ErrInvalidTransition
	}
	if exam.TotalMarks > 0 && exam.PassingMarks > exam.TotalMarks {
		return nil, ErrPassingTooHigh
	}

	if err := s.exams.Update(ctx, exam); err != nil {
		return nil, storeErr(err)
	}
	return exam, nil
}

// SetQuestions attaches an ordered question set to a draft exam and derives
// its total marks. Every referenced question must be ACTIVE with a valid
// answer key. The set is frozen once any attempt exists.
func (s *ExamService) SetQuestions(ctx context.Context, examID uuid.UUID, callerID int, isPrincipal bool, req *model.SetQuestionsRequest) (*model.Exam, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		return nil, storeErr(err)
	}
	if !isPrincipal && exam.OwnerID != callerID {
		return nil, ErrNotExamOwner
	}
	if exam.Status != model.ExamStatusDraft {
		return nil, ErrExamNotDraft
	}

	questions, err := s.questions.ListByIDs(ctx, req.QuestionIDs)
	if err != nil {
		return nil, storeErr(err)
	}
	byID := make(map[uuid.UUID]*model.Question, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}

	totalMarks := 0
	refs := make([]model.ExamQuestionRef, 0, len(req.QuestionIDs))
	for i, id := range req.QuestionIDs {
		q, ok := byID[id]
		if !ok || q.Status != model.QuestionStatusActive {
			return nil, ErrNotFound
		}
		if !q.HasValidAnswerKey() {
			return nil, ErrInvalidAnswerKey
		}
		totalMarks += q.Points
		refs = append(refs, model.ExamQuestionRef{QuestionID: id, Position: i + 1})
	}

	if exam.PassingMarks > totalMarks {
		return nil, ErrPassingTooHigh
	}

	if err := s.exams.SetQuestions(ctx, examID, refs, totalMarks); err != nil {
		return nil, storeErr(err)
	}
	exam.TotalMarks = totalMarks

	s.log.Info().
		Str("exam_id", examID.String()).
		Int("questions", len(refs)).
		Int("total_marks", totalMarks).
		Msg("question set attached")
	return exam, nil
}

// Delete removes a draft exam.
func (s *ExamService) Delete(ctx context.Context, examID uuid.UUID, callerID int, isPrincipal bool) error {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		return storeErr(err)
	}
	if !isPrincipal && exam.OwnerID != callerID {
		return ErrNotExamOwner
	}
	if exam.Status != model.ExamStatusDraft {
		return ErrExamNotDraft
	}
	return storeErr(s.exams.Delete(ctx, examID))
}

// ListForStaff retrieves exams visible to the caller, with effective
// statuses. Principals see every exam; teachers see their own.
func (s *ExamService) ListForStaff(ctx context.Context, callerID int, isPrincipal bool, limit, offset int) ([]model.Exam, int, error) {
	ownerID := callerID
	if isPrincipal {
		ownerID = 0
	}
	exams, total, err := s.exams.ListByOwnerPaginated(ctx, ownerID, limit, offset)
	if err != nil {
		return nil, 0, storeErr(err)
	}
	now := s.now()
	for i := range exams {
		exams[i].Status = exams[i].EffectiveStatus(now)
	}
	return exams, total, nil
}

// ListLobby retrieves the exams a student's class can see, with effective
// statuses.
func (s *ExamService) ListLobby(ctx context.Context, classID int) ([]model.Exam, error) {
	exams, err := s.exams.ListForClass(ctx, classID)
	if err != nil {
		return nil, storeErr(err)
	}
	now := s.now()
	for i := range exams {
		exams[i].Status = exams[i].EffectiveStatus(now)
	}
	return exams, nil
}

// GetPayload serves the student-facing exam payload, fast lane first. The
// exam must target the student's class and be accepting attempts.
func (s *ExamService) GetPayload(ctx context.Context, examID uuid.UUID, classID int) (*model.ExamPayload, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		return nil, storeErr(err)
	}
	if exam.ClassID != classID {
		return nil, ErrNotFound
	}
	if !exam.IsAcceptingAttempts(s.now()) {
		return nil, ErrExamNotOpen
	}

	if s.cache != nil {
		payload, err := s.cache.GetPayload(ctx, examID)
		if err != nil {
			s.log.Warn().Err(err).Str("exam_id", examID.String()).Msg("payload cache read failed")
		} else if payload != nil {
			return payload, nil
		}
	}

	payload, _, err := s.buildFastLane(ctx, exam)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetPayload(ctx, payload, s.cacheTTL(exam)); err != nil {
			s.log.Warn().Err(err).Str("exam_id", examID.String()).Msg("payload cache write failed")
		}
	}
	return payload, nil
}

// WarmExamCache primes the payload and answer key for an exam going live.
func (s *ExamService) WarmExamCache(ctx context.Context, examID uuid.UUID) error {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		return storeErr(err)
	}
	payload, key, err := s.buildFastLane(ctx, exam)
	if err != nil {
		return err
	}
	if s.cache == nil {
		return nil
	}
	ttl := s.cacheTTL(exam)
	if err := s.cache.SetPayload(ctx, payload, ttl); err != nil {
		return err
	}
	return s.cache.SetAnswerKey(ctx, examID, key, ttl)
}

// PrewarmAllCaches primes the fast lane for every ACTIVE exam. Called on
// startup so a restart never leaves a live exam grading cold.
func (s *ExamService) PrewarmAllCaches(ctx context.Context) {
	exams, err := s.exams.ListActiveStatuses(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("cache prewarm listing failed")
		return
	}
	now := s.now()
	warmed := 0
	for i := range exams {
		if exams[i].EffectiveStatus(now) != model.ExamStatusActive {
			continue
		}
		if err := s.WarmExamCache(ctx, exams[i].ID); err != nil {
			s.log.Warn().Err(err).Str("exam_id", exams[i].ID.String()).Msg("cache prewarm failed")
			continue
		}
		warmed++
	}
	s.log.Info().Int("warmed", warmed).Msg("exam caches prewarmed")
}

func (s *ExamService) buildFastLane(ctx context.Context, exam *model.Exam) (*model.ExamPayload, map[uuid.UUID]model.AnswerKeyEntry, error) {
	questions, err := s.questions.ListByExam(ctx, exam.ID)
	if err != nil {
		return nil, nil, storeErr(err)
	}
	if len(questions) == 0 {
		return nil, nil, ErrNoQuestions
	}

	forStudents := make([]model.QuestionForStudent, len(questions))
	for i, q := range questions {
		forStudents[i] = model.QuestionForStudent{
			ID:            q.ID,
			Text:          q.Text,
			Type:          q.Type,
			Options:       q.Options,
			Points:        q.Points,
			TimeAllowance: q.TimeAllowance,
			Position:      i + 1,
		}
	}

	payload := &model.ExamPayload{
		ExamID:          exam.ID,
		Title:           exam.Title,
		DurationMinutes: exam.DurationMinutes,
		TotalMarks:      exam.TotalMarks,
		Questions:       forStudents,
	}
	return payload, buildAnswerKey(questions), nil
}

func (s *ExamService) cacheTTL(exam *model.Exam) time.Duration {
	ttl := time.Until(exam.EndAt) + answerKeyGrace
	if ttl < answerKeyGrace {
		ttl = answerKeyGrace
	}
	return ttl
}
