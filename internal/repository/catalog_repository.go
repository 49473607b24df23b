package repository

import (
	"context"

	"github.com/edumark/examly-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CatalogRepository handles subject and class data access.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository creates a new CatalogRepository.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// ListSubjects retrieves all subjects ordered by name.
func (r *CatalogRepository) ListSubjects(ctx context.Context) ([]model.Subject, error) {
	ctx, cancel := qctx(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx, `SELECT id, name FROM subjects ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subjects []model.Subject
	for rows.Next() {
		var s model.Subject
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, err
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}

// CreateSubject inserts a new subject.
func (r *CatalogRepository) CreateSubject(ctx context.Context, s *model.Subject) error {
	ctx, cancel := qctx(ctx)
	defer cancel()

	return r.pool.QueryRow(ctx,
		`INSERT INTO subjects (name) VALUES ($1) RETURNING id`, s.Name,
	).Scan(&s.ID)
}

// ListClasses retrieves all classes ordered by grade level then name.
func (r *CatalogRepository) ListClasses(ctx context.Context) ([]model.Class, error) {
	ctx, cancel := qctx(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx,
		`SELECT id, name, grade_level FROM classes ORDER BY grade_level, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var classes []model.Class
	for rows.Next() {
		var c model.Class
		if err := rows.Scan(&c.ID, &c.Name, &c.GradeLevel); err != nil {
			return nil, err
		}
		classes = append(classes, c)
	}
	return classes, rows.Err()
}

// CreateClass inserts a new class.
func (r *CatalogRepository) CreateClass(ctx context.Context, c *model.Class) error {
	ctx, cancel := qctx(ctx)
	defer cancel()

	return r.pool.QueryRow(ctx,
		`INSERT INTO classes (name, grade_level) VALUES ($1, $2) RETURNING id`,
		c.Name, c.GradeLevel,
	).Scan(&c.ID)
}

// GetClassByID retrieves a class by ID.
func (r *CatalogRepository) GetClassByID(ctx context.Context, id int) (*model.Class, error) {
	ctx, cancel := qctx(ctx)
	defer cancel()

	c := &model.Class{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, grade_level FROM classes WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.GradeLevel)
	if err != nil {
		return nil, err
	}
	return c, nil
}
