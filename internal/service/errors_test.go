package service

import (
	"context"
	"errors"
	"testing"

	"github.com/edumark/examly-backend/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestStoreErr(t *testing.T) {
	assert.NoError(t, storeErr(nil))
	assert.ErrorIs(t, storeErr(pgx.ErrNoRows), ErrNotFound)
	assert.ErrorIs(t, storeErr(repository.ErrQuotaFull), ErrQuotaExceeded)
	assert.ErrorIs(t, storeErr(repository.ErrQuestionSetLocked), ErrQuestionSetLocked)
	assert.ErrorIs(t, storeErr(context.DeadlineExceeded), ErrStorageUnavailable)
	assert.ErrorIs(t, storeErr(&pgconn.PgError{Code: "23505"}), ErrConflict)

	unknown := errors.New("boom")
	assert.ErrorIs(t, storeErr(unknown), unknown, "unknown errors pass through")
}
