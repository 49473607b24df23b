package service

import (
	"context"
	"errors"

	"github.com/edumark/examly-backend/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Service-level sentinel errors. Handlers translate these into API error
// codes with errors.Is.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrConflict           = errors.New("resource already exists")

	ErrInvalidTransition = errors.New("illegal exam status transition")
	ErrNotYetDue         = errors.New("exam activation before start time")
	ErrExamNotDraft      = errors.New("exam is not a draft")
	ErrNotExamOwner      = errors.New("caller does not own this exam")
	ErrNoQuestions       = errors.New("exam has no question set")
	ErrQuestionSetLocked = errors.New("question set locked by existing attempts")

	ErrPassingTooHigh = errors.New("passing marks exceed total marks")

	ErrExamNotOpen       = errors.New("exam not accepting attempts")
	ErrQuotaExceeded     = errors.New("attempt quota exceeded")
	ErrAlreadyFinalized  = errors.New("attempt already finalized")
	ErrDuplicateResult   = errors.New("result already recorded")
	ErrInvalidAnswerKey  = errors.New("answer key does not reference declared options")

	// ErrStorageUnavailable marks a failed storage round trip as retryable.
	// The operation did not observably commit; callers may retry safely.
	ErrStorageUnavailable = errors.New("storage unavailable, retry")
)

// storeErr maps storage-layer failures onto service sentinels. Unknown
// errors pass through untouched so handlers fall back to a 500.
func storeErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return ErrNotFound
	case errors.Is(err, repository.ErrQuotaFull):
		return ErrQuotaExceeded
	case errors.Is(err, repository.ErrQuestionSetLocked):
		return ErrQuestionSetLocked
	case errors.Is(err, context.DeadlineExceeded):
		return ErrStorageUnavailable
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrConflict
	}
	if pgconn.Timeout(err) {
		return ErrStorageUnavailable
	}
	return err
}
