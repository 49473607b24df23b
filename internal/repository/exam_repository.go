package repository

import (
	"context"

	"github.com/edumark/examly-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const examColumns = `id, title, owner_id, subject_id, class_id, chapter, duration_minutes,
	start_at, end_at, attempt_quota, total_marks, passing_marks, status, created_at, updated_at`

// ExamRepository handles exam data access.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

func scanExam(row pgx.Row) (*model.Exam, error) {
	e := &model.Exam{}
	err := row.Scan(&e.ID, &e.Title, &e.OwnerID, &e.SubjectID, &e.ClassID, &e.Chapter,
		&e.DurationMinutes, &e.StartAt, &e.EndAt, &e.AttemptQuota, &e.TotalMarks,
		&e.PassingMarks, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Create inserts a new exam.
func (r *ExamRepository) Create(ctx context.Context, e *model.Exam) error {
	ctx, cancel := qctx(ctx)
	defer cancel()

	return r.pool.QueryRow(ctx,
		`INSERT INTO exams (title, owner_id, subject_id, class_id, chapter, duration_minutes,
		                    start_at, end_at, attempt_quota, total_marks, passing_marks, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING id, created_at, updated_at`,
		e.Title, e.OwnerID, e.SubjectID, e.ClassID, e.Chapter, e.DurationMinutes,
		e.StartAt, e.EndAt, e.AttemptQuota, e.TotalMarks, e.PassingMarks, e.Status,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

// GetByID retrieves an exam by its UUID.
func (r *ExamRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	ctx, cancel := qctx(ctx)
	defer cancel()

	return scanExam(r.pool.QueryRow(ctx,
		`SELECT `+examColumns+` FROM exams WHERE id = $1`, id))
}

// Update rewrites a draft exam's editable fields.
func (r *ExamRepository) Update(ctx context.Context, e *model.Exam) error {
	ctx, cancel := qctx(ctx)
	defer cancel()

	_, err := r.pool.Exec(ctx,
		`UPDATE exams
		 SET title = $1, chapter = $2, duration_minutes = $3, start_at = $4, end_at = $5,
		     attempt_quota = $6, passing_marks = $7, updated_at = NOW()
		 WHERE id = $8`,
		e.Title, e.Chapter, e.DurationMinutes, e.StartAt, e.EndAt,
		e.AttemptQuota, e.PassingMarks, e.ID)
	return err
}

// UpdateStatusIf advances an exam's status guarded by the expected current
// status. Returns pgx.ErrNoRows when the guard fails, which callers treat
// as a concurrent transition.
func (r *ExamRepository) UpdateStatusIf(ctx context.Context, id uuid.UUID, expect, to model.ExamStatus) error {
	ctx, cancel := qctx(ctx)
	defer cancel()

	tag, err := r.pool.Exec(ctx,
		`UPDATE exams SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
		to, id, expect)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// SetQuestions replaces an exam's ordered question set and total marks.
// Refused once any attempt has been recorded against the exam: historical
// scoring would be invalidated.
func (r *ExamRepository) SetQuestions(ctx context.Context, examID uuid.UUID, refs []model.ExamQuestionRef, totalMarks int) error {
	ctx, cancel := qctx(ctx)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var attempts int
	if err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM attempts WHERE exam_id = $1`, examID,
	).Scan(&attempts); err != nil {
		return err
	}
	if attempts > 0 {
		return ErrQuestionSetLocked
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM exam_questions WHERE exam_id = $1`, examID); err != nil {
		return err
	}

	for _, ref := range refs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO exam_questions (exam_id, question_id, position) VALUES ($1, $2, $3)`,
			examID, ref.QuestionID, ref.Position); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx,
		`UPDATE exams SET total_marks = $1, updated_at = NOW() WHERE id = $2`,
		totalMarks, examID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ListQuestionRefs returns an exam's ordered question references.
func (r *ExamRepository) ListQuestionRefs(ctx context.Context, examID uuid.UUID) ([]model.ExamQuestionRef, error) {
	ctx, cancel := qctx(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx,
		`SELECT question_id, position FROM exam_questions WHERE exam_id = $1 ORDER BY position`,
		examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []model.ExamQuestionRef
	for rows.Next() {
		var ref model.ExamQuestionRef
		if err := rows.Scan(&ref.QuestionID, &ref.Position); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// ListByOwnerPaginated retrieves exams filtered by owner with pagination.
// Pass ownerID=0 to list all exams (principal).
func (r *ExamRepository) ListByOwnerPaginated(ctx context.Context, ownerID, limit, offset int) ([]model.Exam, int, error) {
	ctx, cancel := qctx(ctx)
	defer cancel()

	countQuery := `SELECT COUNT(*) FROM exams`
	query := `SELECT ` + examColumns + ` FROM exams`
	var args []any

	if ownerID > 0 {
		countQuery += ` WHERE owner_id = $1`
		query += ` WHERE owner_id = $1`
		args = append(args, ownerID)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY created_at DESC LIMIT $` + itoa(len(args)+1) + ` OFFSET $` + itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var exams []model.Exam
	for rows.Next() {
		var e model.Exam
		if err := rows.Scan(&e.ID, &e.Title, &e.OwnerID, &e.SubjectID, &e.ClassID, &e.Chapter,
			&e.DurationMinutes, &e.StartAt, &e.EndAt, &e.AttemptQuota, &e.TotalMarks,
			&e.PassingMarks, &e.Status, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, 0, err
		}
		exams = append(exams, e)
	}
	return exams, total, rows.Err()
}

// ListForClass retrieves the exams a class can see in the student lobby:
// anything past DRAFT and not yet ARCHIVED.
func (r *ExamRepository) ListForClass(ctx context.Context, classID int) ([]model.Exam, error) {
	ctx, cancel := qctx(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx,
		`SELECT `+examColumns+` FROM exams
		 WHERE class_id = $1 AND status IN ('SCHEDULED', 'ACTIVE', 'COMPLETED')
		 ORDER BY start_at DESC`, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exams []model.Exam
	for rows.Next() {
		var e model.Exam
		if err := rows.Scan(&e.ID, &e.Title, &e.OwnerID, &e.SubjectID, &e.ClassID, &e.Chapter,
			&e.DurationMinutes, &e.StartAt, &e.EndAt, &e.AttemptQuota, &e.TotalMarks,
			&e.PassingMarks, &e.Status, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		exams = append(exams, e)
	}
	return exams, rows.Err()
}

// ListActiveStatuses returns exams whose stored status is SCHEDULED or
// ACTIVE. Used for cache prewarming on application startup.
func (r *ExamRepository) ListActiveStatuses(ctx context.Context) ([]model.Exam, error) {
	ctx, cancel := qctx(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx,
		`SELECT `+examColumns+` FROM exams
		 WHERE status IN ('SCHEDULED', 'ACTIVE')
		 ORDER BY start_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exams []model.Exam
	for rows.Next() {
		var e model.Exam
		if err := rows.Scan(&e.ID, &e.Title, &e.OwnerID, &e.SubjectID, &e.ClassID, &e.Chapter,
			&e.DurationMinutes, &e.StartAt, &e.EndAt, &e.AttemptQuota, &e.TotalMarks,
			&e.PassingMarks, &e.Status, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		exams = append(exams, e)
	}
	return exams, rows.Err()
}

// Delete removes a draft exam and its question references.
func (r *ExamRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := qctx(ctx)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM exam_questions WHERE exam_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM exams WHERE id = $1`, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
