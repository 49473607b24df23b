package repository

import (
	"context"
	"errors"
	"strconv"
	"time"
)

// queryTimeout bounds every storage round trip. Operations that exceed it
// fail with a context deadline error, which the service layer surfaces as a
// retryable storage failure instead of hanging the request.
const queryTimeout = 5 * time.Second

// ErrQuotaFull is returned by the conditional attempt insert when the
// student has no attempt slots left on the exam.
var ErrQuotaFull = errors.New("attempt quota reached")

// ErrQuestionSetLocked is returned when a question-set mutation is refused
// because attempts have been recorded against the exam.
var ErrQuestionSetLocked = errors.New("question set locked by existing attempts")

func qctx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, queryTimeout)
}

// itoa shortens positional-placeholder construction in dynamic queries.
func itoa(n int) string {
	return strconv.Itoa(n)
}
