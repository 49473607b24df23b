package repository

import (
	"context"

	"github.com/edumark/examly-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const questionColumns = `id, teacher_id, subject_id, class_id, chapter, text, type, difficulty,
	options, correct_options, points, time_allowance_seconds, status, created_at, updated_at`

// QuestionRepository handles question bank data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

func scanQuestion(row pgx.Row) (*model.Question, error) {
	q := &model.Question{}
	err := row.Scan(&q.ID, &q.TeacherID, &q.SubjectID, &q.ClassID, &q.Chapter, &q.Text,
		&q.Type, &q.Difficulty, &q.Options, &q.CorrectOptions, &q.Points,
		&q.TimeAllowance, &q.Status, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// Create inserts a new bank question.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	ctx, cancel := qctx(ctx)
	defer cancel()

	return r.pool.QueryRow(ctx,
		`INSERT INTO questions (teacher_id, subject_id, class_id, chapter, text, type, difficulty,
		                        options, correct_options, points, time_allowance_seconds, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING id, created_at, updated_at`,
		q.TeacherID, q.SubjectID, q.ClassID, q.Chapter, q.Text, q.Type, q.Difficulty,
		q.Options, q.CorrectOptions, q.Points, q.TimeAllowance, q.Status,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
}

// GetByID retrieves a question by its UUID.
func (r *QuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	ctx, cancel := qctx(ctx)
	defer cancel()

	return scanQuestion(r.pool.QueryRow(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = $1`, id))
}

// ListByExam retrieves an exam's questions ordered by their position in the
// exam's question set.
func (r *QuestionRepository) ListByExam(ctx context.Context, examID uuid.UUID) ([]model.Question, error) {
	ctx, cancel := qctx(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx,
		`SELECT q.id, q.teacher_id, q.subject_id, q.class_id, q.chapter, q.text, q.type, q.difficulty,
		        q.options, q.correct_options, q.points, q.time_allowance_seconds, q.status,
		        q.created_at, q.updated_at
		 FROM questions q
		 JOIN exam_questions eq ON eq.question_id = q.id
		 WHERE eq.exam_id = $1
		 ORDER BY eq.position`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.TeacherID, &q.SubjectID, &q.ClassID, &q.Chapter, &q.Text,
			&q.Type, &q.Difficulty, &q.Options, &q.CorrectOptions, &q.Points,
			&q.TimeAllowance, &q.Status, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// CountActiveByIDs returns how many of the given ids reference ACTIVE
// questions, and the sum of their point values. Used to validate an exam's
// question set before accepting it.
func (r *QuestionRepository) CountActiveByIDs(ctx context.Context, ids []uuid.UUID) (int, int, error) {
	ctx, cancel := qctx(ctx)
	defer cancel()

	var count, totalPoints int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(points), 0)
		 FROM questions
		 WHERE id = ANY($1) AND status = 'ACTIVE'`, ids,
	).Scan(&count, &totalPoints)
	return count, totalPoints, err
}

// ListByIDs retrieves questions by id in no particular order.
func (r *QuestionRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Question, error) {
	ctx, cancel := qctx(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.TeacherID, &q.SubjectID, &q.ClassID, &q.Chapter, &q.Text,
			&q.Type, &q.Difficulty, &q.Options, &q.CorrectOptions, &q.Points,
			&q.TimeAllowance, &q.Status, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// ListByTeacherPaginated retrieves a teacher's bank questions with optional
// subject filtering.
func (r *QuestionRepository) ListByTeacherPaginated(ctx context.Context, teacherID int, subjectID *int, limit, offset int) ([]model.Question, int, error) {
	ctx, cancel := qctx(ctx)
	defer cancel()

	where := ` WHERE teacher_id = $1`
	args := []any{teacherID}
	if subjectID != nil {
		args = append(args, *subjectID)
		where += ` AND subject_id = $2`
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM questions`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + questionColumns + ` FROM questions` + where +
		` ORDER BY created_at DESC LIMIT $` + itoa(len(args)+1) + ` OFFSET $` + itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.TeacherID, &q.SubjectID, &q.ClassID, &q.Chapter, &q.Text,
			&q.Type, &q.Difficulty, &q.Options, &q.CorrectOptions, &q.Points,
			&q.TimeAllowance, &q.Status, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, 0, err
		}
		questions = append(questions, q)
	}
	return questions, total, rows.Err()
}

// Update rewrites a question's editable fields.
func (r *QuestionRepository) Update(ctx context.Context, q *model.Question) error {
	ctx, cancel := qctx(ctx)
	defer cancel()

	_, err := r.pool.Exec(ctx,
		`UPDATE questions
		 SET chapter = $1, text = $2, difficulty = $3, options = $4, correct_options = $5,
		     points = $6, time_allowance_seconds = $7, status = $8, updated_at = NOW()
		 WHERE id = $9`,
		q.Chapter, q.Text, q.Difficulty, q.Options, q.CorrectOptions,
		q.Points, q.TimeAllowance, q.Status, q.ID)
	return err
}
