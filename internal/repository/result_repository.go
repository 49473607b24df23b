package repository

import (
	"context"

	"github.com/edumark/examly-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const resultColumns = `id, exam_id, student_id, marks, grade, feedback, graded_by, created_at, updated_at`

// ResultRepository handles result data access.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

func scanResult(row pgx.Row) (*model.Result, error) {
	res := &model.Result{}
	err := row.Scan(&res.ID, &res.ExamID, &res.StudentID, &res.Marks, &res.Grade,
		&res.Feedback, &res.GradedBy, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Upsert records a result for the (exam, student) pair. The pair carries a
// unique constraint, so concurrent first recordings coalesce into a single
// row and later recordings amend it in place.
func (r *ResultRepository) Upsert(ctx context.Context, res *model.Result) error {
	ctx, cancel := qctx(ctx)
	defer cancel()

	return r.pool.QueryRow(ctx,
		`INSERT INTO results (exam_id, student_id, marks, grade, feedback, graded_by)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (exam_id, student_id) DO UPDATE
		 SET marks = EXCLUDED.marks, grade = EXCLUDED.grade, feedback = EXCLUDED.feedback,
		     graded_by = EXCLUDED.graded_by, updated_at = NOW()
		 RETURNING id, created_at, updated_at`,
		res.ExamID, res.StudentID, res.Marks, res.Grade, res.Feedback, res.GradedBy,
	).Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt)
}

// GetByExamAndStudent retrieves the result row for the pair.
func (r *ResultRepository) GetByExamAndStudent(ctx context.Context, examID uuid.UUID, studentID int) (*model.Result, error) {
	ctx, cancel := qctx(ctx)
	defer cancel()

	return scanResult(r.pool.QueryRow(ctx,
		`SELECT `+resultColumns+` FROM results WHERE exam_id = $1 AND student_id = $2`,
		examID, studentID))
}

// ListByExam retrieves every result for an exam, best marks first.
func (r *ResultRepository) ListByExam(ctx context.Context, examID uuid.UUID) ([]model.Result, error) {
	ctx, cancel := qctx(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx,
		`SELECT `+resultColumns+` FROM results WHERE exam_id = $1 ORDER BY marks DESC`,
		examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectResults(rows)
}

// ListByStudent retrieves a student's results across exams, newest first.
func (r *ResultRepository) ListByStudent(ctx context.Context, studentID int) ([]model.Result, error) {
	ctx, cancel := qctx(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx,
		`SELECT `+resultColumns+` FROM results WHERE student_id = $1 ORDER BY created_at DESC`,
		studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectResults(rows)
}

// GradeDistribution counts results per grade for an exam.
func (r *ResultRepository) GradeDistribution(ctx context.Context, examID uuid.UUID) (map[model.Grade]int, error) {
	ctx, cancel := qctx(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx,
		`SELECT grade, COUNT(*) FROM results WHERE exam_id = $1 GROUP BY grade`,
		examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dist := make(map[model.Grade]int, len(model.AllGrades))
	for rows.Next() {
		var g model.Grade
		var n int
		if err := rows.Scan(&g, &n); err != nil {
			return nil, err
		}
		dist[g] = n
	}
	return dist, rows.Err()
}

// BulkUpsert records a batch of results in one round trip with UNNEST.
// Used by the reconcile worker; the caller falls back to per-item Upsert
// when the batch fails.
func (r *ResultRepository) BulkUpsert(ctx context.Context, results []model.Result) error {
	if len(results) == 0 {
		return nil
	}
	ctx, cancel := qctx(ctx)
	defer cancel()

	examIDs := make([]uuid.UUID, len(results))
	studentIDs := make([]int, len(results))
	marks := make([]int, len(results))
	grades := make([]string, len(results))
	feedbacks := make([]string, len(results))
	gradedBys := make([]int, len(results))
	for i, res := range results {
		examIDs[i] = res.ExamID
		studentIDs[i] = res.StudentID
		marks[i] = res.Marks
		grades[i] = string(res.Grade)
		feedbacks[i] = res.Feedback
		gradedBys[i] = res.GradedBy
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO results (exam_id, student_id, marks, grade, feedback, graded_by)
		 SELECT * FROM UNNEST($1::uuid[], $2::int[], $3::int[], $4::text[], $5::text[], $6::int[])
		 ON CONFLICT (exam_id, student_id) DO UPDATE
		 SET marks = EXCLUDED.marks, grade = EXCLUDED.grade, feedback = EXCLUDED.feedback,
		     graded_by = EXCLUDED.graded_by, updated_at = NOW()`,
		examIDs, studentIDs, marks, grades, feedbacks, gradedBys)
	return err
}

func collectResults(rows pgx.Rows) ([]model.Result, error) {
	var results []model.Result
	for rows.Next() {
		var res model.Result
		if err := rows.Scan(&res.ID, &res.ExamID, &res.StudentID, &res.Marks, &res.Grade,
			&res.Feedback, &res.GradedBy, &res.CreatedAt, &res.UpdatedAt); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}
