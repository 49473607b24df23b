package service

import (
	"context"
	"errors"
	"time"

	"github.com/edumark/examly-backend/internal/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ExamStore is the exam storage surface the lifecycle and attempt engines
// depend on.
type ExamStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error)
	UpdateStatusIf(ctx context.Context, id uuid.UUID, expect, to model.ExamStatus) error
	ListQuestionRefs(ctx context.Context, examID uuid.UUID) ([]model.ExamQuestionRef, error)
}

// CacheWarmer primes the fast lane when an exam goes live.
type CacheWarmer interface {
	WarmExamCache(ctx context.Context, examID uuid.UUID) error
}

// MonitorPublisher fans lifecycle and attempt events out to the live
// monitor stream.
type MonitorPublisher interface {
	PublishMonitorEvent(ctx context.Context, event model.MonitorEvent)
}

// LifecycleService supervises exam status transitions. Completion is
// two-faced: readers see the window-derived effective status immediately,
// while the stored row catches up lazily on the next write path through
// reconcileStatus.
type LifecycleService struct {
	exams   ExamStore
	warmer  CacheWarmer
	monitor MonitorPublisher
	now     func() time.Time
	log     zerolog.Logger
}

// NewLifecycleService creates a new LifecycleService.
func NewLifecycleService(exams ExamStore, warmer CacheWarmer, monitor MonitorPublisher, log zerolog.Logger) *LifecycleService {
	return &LifecycleService{
		exams:   exams,
		warmer:  warmer,
		monitor: monitor,
		now:     time.Now,
		log:     log.With().Str("component", "lifecycle_service").Logger(),
	}
}

// reconcileStatus persists the window-derived completion of a SCHEDULED or
// ACTIVE exam whose end has passed, then reflects it on the in-memory exam.
// Losing the guarded update to a concurrent writer is fine: someone else
// already caught the row up.
func reconcileStatus(ctx context.Context, store ExamStore, exam *model.Exam, now time.Time, log zerolog.Logger) {
	effective := exam.EffectiveStatus(now)
	if effective == exam.Status {
		return
	}
	err := store.UpdateStatusIf(ctx, exam.ID, exam.Status, effective)
	if err != nil && !errors.Is(storeErr(err), ErrNotFound) {
		log.Warn().Err(err).
			Str("exam_id", exam.ID.String()).
			Str("from", string(exam.Status)).
			Str("to", string(effective)).
			Msg("lazy status catch-up failed")
		return
	}
	exam.Status = effective
}

// Transition moves an exam to the target status on behalf of a staff caller.
// Activation before the start time is refused; scheduling requires a
// non-empty question set; every move must be legal from the exam's current
// effective status.
func (s *LifecycleService) Transition(ctx context.Context, examID uuid.UUID, callerID int, isPrincipal bool, target model.ExamStatus) (*model.Exam, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		return nil, storeErr(err)
	}
	if !isPrincipal && exam.OwnerID != callerID {
		return nil, ErrNotExamOwner
	}

	now := s.now()
	reconcileStatus(ctx, s.exams, exam, now, s.log)

	if !model.CanTransition(exam.Status, target) {
		return nil, ErrInvalidTransition
	}
	if target == model.ExamStatusActive && now.Before(exam.StartAt) {
		return nil, ErrNotYetDue
	}
	if target == model.ExamStatusScheduled {
		refs, err := s.exams.ListQuestionRefs(ctx, examID)
		if err != nil {
			return nil, storeErr(err)
		}
		if len(refs) == 0 {
			return nil, ErrNoQuestions
		}
	}

	if err := s.exams.UpdateStatusIf(ctx, examID, exam.Status, target); err != nil {
		if errors.Is(storeErr(err), ErrNotFound) {
			// Guard lost to a concurrent transition.
			return nil, ErrInvalidTransition
		}
		return nil, storeErr(err)
	}
	exam.Status = target

	if target == model.ExamStatusActive && s.warmer != nil {
		if err := s.warmer.WarmExamCache(ctx, examID); err != nil {
			s.log.Warn().Err(err).Str("exam_id", examID.String()).Msg("cache warm on activation failed")
		}
	}
	if s.monitor != nil {
		s.monitor.PublishMonitorEvent(ctx, model.MonitorEvent{
			Type:   model.MonitorExamTransitioned,
			ExamID: examID,
			Status: string(target),
			At:     now,
		})
	}

	s.log.Info().
		Str("exam_id", examID.String()).
		Str("to", string(target)).
		Int("caller_id", callerID).
		Msg("exam transitioned")
	return exam, nil
}

// Describe returns the exam with its status replaced by the effective
// status at the current instant. Read-only: the stored row is untouched.
func (s *LifecycleService) Describe(ctx context.Context, examID uuid.UUID) (*model.Exam, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		return nil, storeErr(err)
	}
	exam.Status = exam.EffectiveStatus(s.now())
	return exam, nil
}
