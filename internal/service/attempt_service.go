package service

import (
	"context"
	"time"

	"github.com/edumark/examly-backend/internal/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AttemptStore is the attempt storage surface of the attempt engine.
type AttemptStore interface {
	CreateIfUnderQuota(ctx context.Context, a *model.Attempt, quota int) error
	Finalize(ctx context.Context, a *model.Attempt) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Attempt, error)
	GetInProgress(ctx context.Context, examID uuid.UUID, studentID int) (*model.Attempt, error)
	CountForQuota(ctx context.Context, examID uuid.UUID, studentID int) (int, error)
	ListByExamAndStudent(ctx context.Context, examID uuid.UUID, studentID int) ([]model.Attempt, error)
	ListByExam(ctx context.Context, examID uuid.UUID) ([]model.Attempt, error)
}

// QuestionStore is the question lookup surface of the attempt engine.
type QuestionStore interface {
	ListByExam(ctx context.Context, examID uuid.UUID) ([]model.Question, error)
}

// AnswerKeyCache is the fast lane for grading keys.
type AnswerKeyCache interface {
	GetAnswerKey(ctx context.Context, examID uuid.UUID) (map[uuid.UUID]model.AnswerKeyEntry, error)
}

// ReconcileEnqueuer queues result-reconciliation jobs for the worker.
type ReconcileEnqueuer interface {
	EnqueueReconcile(ctx context.Context, job ReconcileJob) error
}

// ResultRecorder records a durable result from a completed attempt. Used as
// the synchronous fallback when the reconcile queue is unreachable.
type ResultRecorder interface {
	RecordFromAttempt(ctx context.Context, attempt *model.Attempt) error
}

// AttemptService runs the attempt lifecycle: quota-gated begin, graded
// submission, abandonment. Every terminal write is guarded on IN_PROGRESS
// so each sitting finalizes at most once.
type AttemptService struct {
	exams     ExamStore
	attempts  AttemptStore
	questions QuestionStore
	keys      AnswerKeyCache
	queue     ReconcileEnqueuer
	results   ResultRecorder
	monitor   MonitorPublisher
	now       func() time.Time
	log       zerolog.Logger
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(exams ExamStore, attempts AttemptStore, questions QuestionStore, keys AnswerKeyCache, queue ReconcileEnqueuer, results ResultRecorder, monitor MonitorPublisher, log zerolog.Logger) *AttemptService {
	return &AttemptService{
		exams:     exams,
		attempts:  attempts,
		questions: questions,
		keys:      keys,
		queue:     queue,
		results:   results,
		monitor:   monitor,
		now:       time.Now,
		log:       log.With().Str("component", "attempt_service").Logger(),
	}
}

// Begin opens a new attempt for the student. The exam must be effectively
// ACTIVE with the current instant inside its window, and the student must
// have a quota slot left. The slot check and the insert run atomically in
// storage, so racing begins never overshoot the quota.
func (s *AttemptService) Begin(ctx context.Context, examID uuid.UUID, studentID int) (*model.Attempt, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		return nil, storeErr(err)
	}

	now := s.now()
	reconcileStatus(ctx, s.exams, exam, now, s.log)

	if !exam.IsAcceptingAttempts(now) {
		return nil, ErrExamNotOpen
	}

	attempt := &model.Attempt{
		ExamID:    examID,
		StudentID: studentID,
		MaxScore:  exam.TotalMarks,
		Status:    model.AttemptStatusInProgress,
	}
	if err := s.attempts.CreateIfUnderQuota(ctx, attempt, exam.AttemptQuota); err != nil {
		return nil, storeErr(err)
	}

	if s.monitor != nil {
		s.monitor.PublishMonitorEvent(ctx, model.MonitorEvent{
			Type:      model.MonitorAttemptStarted,
			ExamID:    examID,
			StudentID: studentID,
			AttemptID: attempt.ID,
			At:        now,
		})
	}

	s.log.Info().
		Str("attempt_id", attempt.ID.String()).
		Str("exam_id", examID.String()).
		Int("student_id", studentID).
		Msg("attempt started")
	return attempt, nil
}

// Submit grades the student's answers and finalizes the attempt. Submission
// is accepted even after the exam window closes; the attempt is then marked
// late rather than rejected, since the student may have started in time and
// been delayed by the network. Repeated submission of the same attempt fails
// with ErrAlreadyFinalized.
func (s *AttemptService) Submit(ctx context.Context, attemptID uuid.UUID, studentID int, answers []model.SubmittedAnswer) (*model.Attempt, error) {
	attempt, err := s.attempts.GetByID(ctx, attemptID)
	if err != nil {
		return nil, storeErr(err)
	}
	if attempt.StudentID != studentID {
		return nil, ErrNotFound
	}
	if attempt.Status != model.AttemptStatusInProgress {
		return nil, ErrAlreadyFinalized
	}

	exam, err := s.exams.GetByID(ctx, attempt.ExamID)
	if err != nil {
		return nil, storeErr(err)
	}

	key, err := s.answerKey(ctx, attempt.ExamID)
	if err != nil {
		return nil, err
	}
	refs, err := s.exams.ListQuestionRefs(ctx, attempt.ExamID)
	if err != nil {
		return nil, storeErr(err)
	}

	graded, score := gradeAnswers(refs, key, answers)

	now := s.now()
	late := !now.Before(exam.EndAt)

	attempt.FinishedAt = &now
	attempt.Score = score
	attempt.Percentage = model.ClampPercentage(score, attempt.MaxScore)
	attempt.Rating = model.RatingFor(attempt.Percentage)
	attempt.Answers = graded
	attempt.Late = late
	attempt.Status = model.AttemptStatusCompleted

	if err := s.finalize(ctx, attempt); err != nil {
		return nil, err
	}

	if late {
		s.log.Warn().
			Str("attempt_id", attempt.ID.String()).
			Str("exam_id", attempt.ExamID.String()).
			Int("student_id", studentID).
			Time("end_at", exam.EndAt).
			Msg("late submission accepted")
	}

	s.reconcile(ctx, attempt)

	if s.monitor != nil {
		s.monitor.PublishMonitorEvent(ctx, model.MonitorEvent{
			Type:      model.MonitorAttemptSubmitted,
			ExamID:    attempt.ExamID,
			StudentID: studentID,
			AttemptID: attempt.ID,
			Score:     attempt.Score,
			Late:      late,
			At:        now,
		})
	}

	s.log.Info().
		Str("attempt_id", attempt.ID.String()).
		Int("score", score).
		Int("max_score", attempt.MaxScore).
		Bool("late", late).
		Msg("attempt submitted")
	return attempt, nil
}

// Abandon voids an open attempt without grading it. Abandoned attempts do
// not consume a quota slot and never produce a result.
func (s *AttemptService) Abandon(ctx context.Context, attemptID uuid.UUID, studentID int) (*model.Attempt, error) {
	attempt, err := s.attempts.GetByID(ctx, attemptID)
	if err != nil {
		return nil, storeErr(err)
	}
	if attempt.StudentID != studentID {
		return nil, ErrNotFound
	}
	if attempt.Status != model.AttemptStatusInProgress {
		return nil, ErrAlreadyFinalized
	}

	now := s.now()
	attempt.FinishedAt = &now
	attempt.Status = model.AttemptStatusAbandoned

	if err := s.finalize(ctx, attempt); err != nil {
		return nil, err
	}

	if s.monitor != nil {
		s.monitor.PublishMonitorEvent(ctx, model.MonitorEvent{
			Type:      model.MonitorAttemptAbandoned,
			ExamID:    attempt.ExamID,
			StudentID: studentID,
			AttemptID: attempt.ID,
			At:        now,
		})
	}
	return attempt, nil
}

// Current returns the student's open sitting on an exam, so a reconnecting
// client can pick up where it left off instead of burning a quota slot on a
// fresh Begin. ErrNotFound when nothing is in progress.
func (s *AttemptService) Current(ctx context.Context, examID uuid.UUID, studentID int) (*model.Attempt, error) {
	attempt, err := s.attempts.GetInProgress(ctx, examID, studentID)
	if err != nil {
		return nil, storeErr(err)
	}
	return attempt, nil
}

// Get retrieves one of the student's own attempts.
func (s *AttemptService) Get(ctx context.Context, attemptID uuid.UUID, studentID int) (*model.Attempt, error) {
	attempt, err := s.attempts.GetByID(ctx, attemptID)
	if err != nil {
		return nil, storeErr(err)
	}
	if attempt.StudentID != studentID {
		return nil, ErrNotFound
	}
	return attempt, nil
}

// ListMine retrieves the student's attempts on an exam, newest first.
func (s *AttemptService) ListMine(ctx context.Context, examID uuid.UUID, studentID int) ([]model.Attempt, error) {
	attempts, err := s.attempts.ListByExamAndStudent(ctx, examID, studentID)
	if err != nil {
		return nil, storeErr(err)
	}
	return attempts, nil
}

// ListForExam retrieves every attempt on an exam for its owner or a
// principal.
func (s *AttemptService) ListForExam(ctx context.Context, examID uuid.UUID, callerID int, isPrincipal bool) ([]model.Attempt, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		return nil, storeErr(err)
	}
	if !isPrincipal && exam.OwnerID != callerID {
		return nil, ErrNotExamOwner
	}
	attempts, err := s.attempts.ListByExam(ctx, examID)
	if err != nil {
		return nil, storeErr(err)
	}
	return attempts, nil
}

// QuotaRemaining reports how many attempt slots the student still has.
func (s *AttemptService) QuotaRemaining(ctx context.Context, exam *model.Exam, studentID int) (int, error) {
	used, err := s.attempts.CountForQuota(ctx, exam.ID, studentID)
	if err != nil {
		return 0, storeErr(err)
	}
	remaining := exam.AttemptQuota - used
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// finalize writes the terminal state and disambiguates a lost guard: a
// terminal row means someone finalized first, a missing row means the
// attempt is gone.
func (s *AttemptService) finalize(ctx context.Context, attempt *model.Attempt) error {
	err := s.attempts.Finalize(ctx, attempt)
	if err == nil {
		return nil
	}
	mapped := storeErr(err)
	if mapped != ErrNotFound {
		return mapped
	}
	current, ferr := s.attempts.GetByID(ctx, attempt.ID)
	if ferr != nil {
		return storeErr(ferr)
	}
	if current.Status != model.AttemptStatusInProgress {
		return ErrAlreadyFinalized
	}
	return ErrStorageUnavailable
}

// reconcile hands the completed attempt to the result pipeline: queue first,
// synchronous upsert when the queue is unreachable. A failure here never
// fails the submission; the grade is safe on the attempt row and the worker
// or a manual regrade can reconcile later.
func (s *AttemptService) reconcile(ctx context.Context, attempt *model.Attempt) {
	job := ReconcileJob{
		AttemptID: attempt.ID,
		ExamID:    attempt.ExamID,
		StudentID: attempt.StudentID,
	}
	if s.queue != nil {
		err := s.queue.EnqueueReconcile(ctx, job)
		if err == nil {
			return
		}
		s.log.Warn().Err(err).Str("attempt_id", attempt.ID.String()).Msg("reconcile enqueue failed, recording directly")
	}
	if s.results == nil {
		return
	}
	if err := s.results.RecordFromAttempt(ctx, attempt); err != nil {
		s.log.Error().Err(err).
			Str("attempt_id", attempt.ID.String()).
			Str("exam_id", attempt.ExamID.String()).
			Int("student_id", attempt.StudentID).
			Msg("direct result recording failed")
	}
}

// answerKey loads the grading key from the fast lane, rebuilding it from
// storage on a miss.
func (s *AttemptService) answerKey(ctx context.Context, examID uuid.UUID) (map[uuid.UUID]model.AnswerKeyEntry, error) {
	if s.keys != nil {
		key, err := s.keys.GetAnswerKey(ctx, examID)
		if err != nil {
			s.log.Warn().Err(err).Str("exam_id", examID.String()).Msg("answer key cache read failed")
		} else if key != nil {
			return key, nil
		}
	}

	questions, err := s.questions.ListByExam(ctx, examID)
	if err != nil {
		return nil, storeErr(err)
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	return buildAnswerKey(questions), nil
}

// buildAnswerKey derives the per-question grading key from bank questions.
func buildAnswerKey(questions []model.Question) map[uuid.UUID]model.AnswerKeyEntry {
	key := make(map[uuid.UUID]model.AnswerKeyEntry, len(questions))
	for _, q := range questions {
		key[q.ID] = model.AnswerKeyEntry{
			Type:           q.Type,
			CorrectOptions: q.CorrectOptions,
			Points:         q.Points,
		}
	}
	return key
}

// gradeAnswers scores a submission against the exam's ordered question set.
// Every question in the set yields one graded answer; questions the student
// never answered score zero. A repeated question ID in the submission keeps
// the last occurrence. Submitted IDs outside the question set are ignored.
func gradeAnswers(refs []model.ExamQuestionRef, key map[uuid.UUID]model.AnswerKeyEntry, submitted []model.SubmittedAnswer) ([]model.AttemptAnswer, int) {
	selections := make(map[uuid.UUID][]string, len(submitted))
	for _, a := range submitted {
		selections[a.QuestionID] = a.Selected
	}

	graded := make([]model.AttemptAnswer, 0, len(refs))
	score := 0
	for _, ref := range refs {
		entry, ok := key[ref.QuestionID]
		if !ok {
			continue
		}
		selected := selections[ref.QuestionID]
		answer := model.AttemptAnswer{
			QuestionID: ref.QuestionID,
			Selected:   selected,
		}
		if len(selected) > 0 && sameOptionSet(selected, entry.CorrectOptions) {
			answer.Correct = true
			answer.PointsAwarded = entry.Points
			score += entry.Points
		}
		graded = append(graded, answer)
	}
	return graded, score
}

// sameOptionSet compares two option lists as sets: order and duplicates do
// not matter, membership does.
func sameOptionSet(a, b []string) bool {
	set := make(map[string]struct{}, len(a))
	for _, v := range a {
		set[v] = struct{}{}
	}
	other := make(map[string]struct{}, len(b))
	for _, v := range b {
		other[v] = struct{}{}
	}
	if len(set) != len(other) {
		return false
	}
	for v := range set {
		if _, ok := other[v]; !ok {
			return false
		}
	}
	return true
}
