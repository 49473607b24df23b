package repository

import (
	"context"

	"github.com/edumark/examly-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const attemptColumns = `id, exam_id, student_id, started_at, finished_at, score, max_score,
	percentage, rating, answers, late, status`

// AttemptRepository handles attempt data access.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

func scanAttempt(row pgx.Row) (*model.Attempt, error) {
	a := &model.Attempt{}
	err := row.Scan(&a.ID, &a.ExamID, &a.StudentID, &a.StartedAt, &a.FinishedAt,
		&a.Score, &a.MaxScore, &a.Percentage, &a.Rating, &a.Answers, &a.Late, &a.Status)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// CreateIfUnderQuota inserts a new IN_PROGRESS attempt only if the student
// still has attempt slots left on the exam. Concurrent begins for the same
// (exam, student) pair are serialized with a transaction-scoped advisory
// lock, so the count-then-insert pair executes atomically: with quota N and
// N+k racing requests, exactly N succeed. ABANDONED attempts do not consume
// slots. Returns ErrQuotaFull when no slot remains.
func (r *AttemptRepository) CreateIfUnderQuota(ctx context.Context, a *model.Attempt, quota int) error {
	ctx, cancel := qctx(ctx)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	lockKey := a.ExamID.String() + ":" + itoa(a.StudentID)
	if _, err := tx.Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, lockKey); err != nil {
		return err
	}

	var used int
	if err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM attempts
		 WHERE exam_id = $1 AND student_id = $2 AND status <> 'ABANDONED'`,
		a.ExamID, a.StudentID,
	).Scan(&used); err != nil {
		return err
	}
	if used >= quota {
		return ErrQuotaFull
	}

	if err := tx.QueryRow(ctx,
		`INSERT INTO attempts (exam_id, student_id, max_score, status)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, started_at`,
		a.ExamID, a.StudentID, a.MaxScore, a.Status,
	).Scan(&a.ID, &a.StartedAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Finalize writes an attempt's terminal state guarded by the IN_PROGRESS
// status, so only the first finalization of a sitting wins. Returns
// pgx.ErrNoRows when the guard fails; callers re-fetch to tell an already
// terminal attempt from a missing one.
func (r *AttemptRepository) Finalize(ctx context.Context, a *model.Attempt) error {
	ctx, cancel := qctx(ctx)
	defer cancel()

	tag, err := r.pool.Exec(ctx,
		`UPDATE attempts
		 SET finished_at = $1, score = $2, percentage = $3, rating = $4,
		     answers = $5, late = $6, status = $7
		 WHERE id = $8 AND status = 'IN_PROGRESS'`,
		a.FinishedAt, a.Score, a.Percentage, a.Rating, a.Answers, a.Late, a.Status, a.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// GetByID retrieves an attempt by its UUID.
func (r *AttemptRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Attempt, error) {
	ctx, cancel := qctx(ctx)
	defer cancel()

	return scanAttempt(r.pool.QueryRow(ctx,
		`SELECT `+attemptColumns+` FROM attempts WHERE id = $1`, id))
}

// GetInProgress retrieves the student's open attempt on an exam, if any.
func (r *AttemptRepository) GetInProgress(ctx context.Context, examID uuid.UUID, studentID int) (*model.Attempt, error) {
	ctx, cancel := qctx(ctx)
	defer cancel()

	return scanAttempt(r.pool.QueryRow(ctx,
		`SELECT `+attemptColumns+` FROM attempts
		 WHERE exam_id = $1 AND student_id = $2 AND status = 'IN_PROGRESS'
		 ORDER BY started_at DESC LIMIT 1`, examID, studentID))
}

// CountForQuota returns how many attempt slots the student has consumed on
// an exam. ABANDONED attempts are excluded.
func (r *AttemptRepository) CountForQuota(ctx context.Context, examID uuid.UUID, studentID int) (int, error) {
	ctx, cancel := qctx(ctx)
	defer cancel()

	var used int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM attempts
		 WHERE exam_id = $1 AND student_id = $2 AND status <> 'ABANDONED'`,
		examID, studentID,
	).Scan(&used)
	return used, err
}

// ListByExamAndStudent retrieves a student's attempts on an exam, newest
// first.
func (r *AttemptRepository) ListByExamAndStudent(ctx context.Context, examID uuid.UUID, studentID int) ([]model.Attempt, error) {
	ctx, cancel := qctx(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx,
		`SELECT `+attemptColumns+` FROM attempts
		 WHERE exam_id = $1 AND student_id = $2
		 ORDER BY started_at DESC`, examID, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAttempts(rows)
}

// ListByExam retrieves every attempt on an exam, newest first. Feeds the
// live monitor and the grader's review view.
func (r *AttemptRepository) ListByExam(ctx context.Context, examID uuid.UUID) ([]model.Attempt, error) {
	ctx, cancel := qctx(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx,
		`SELECT `+attemptColumns+` FROM attempts
		 WHERE exam_id = $1
		 ORDER BY started_at DESC`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAttempts(rows)
}

// BestCompletedByExamAndStudent returns the highest-scoring COMPLETED
// attempt for the pair, used when reconciling results across retries.
func (r *AttemptRepository) BestCompletedByExamAndStudent(ctx context.Context, examID uuid.UUID, studentID int) (*model.Attempt, error) {
	ctx, cancel := qctx(ctx)
	defer cancel()

	return scanAttempt(r.pool.QueryRow(ctx,
		`SELECT `+attemptColumns+` FROM attempts
		 WHERE exam_id = $1 AND student_id = $2 AND status = 'COMPLETED'
		 ORDER BY score DESC, finished_at ASC LIMIT 1`, examID, studentID))
}

func collectAttempts(rows pgx.Rows) ([]model.Attempt, error) {
	var attempts []model.Attempt
	for rows.Next() {
		var a model.Attempt
		if err := rows.Scan(&a.ID, &a.ExamID, &a.StudentID, &a.StartedAt, &a.FinishedAt,
			&a.Score, &a.MaxScore, &a.Percentage, &a.Rating, &a.Answers, &a.Late, &a.Status); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}
