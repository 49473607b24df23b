package repository

import (
	"context"

	"github.com/edumark/examly-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StudentRepository handles student account data access.
type StudentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

func scanStudent(row pgx.Row) (*model.Student, error) {
	s := &model.Student{}
	err := row.Scan(&s.ID, &s.Name, &s.StudentNo, &s.ClassID, &s.PasswordHash,
		&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetByStudentNo retrieves a student by their login number.
func (r *StudentRepository) GetByStudentNo(ctx context.Context, studentNo string) (*model.Student, error) {
	ctx, cancel := qctx(ctx)
	defer cancel()

	return scanStudent(r.pool.QueryRow(ctx,
		`SELECT id, name, student_no, class_id, password_hash, created_at, updated_at
		 FROM students WHERE student_no = $1`, studentNo))
}

// GetByID retrieves a student by ID.
func (r *StudentRepository) GetByID(ctx context.Context, id int) (*model.Student, error) {
	ctx, cancel := qctx(ctx)
	defer cancel()

	return scanStudent(r.pool.QueryRow(ctx,
		`SELECT id, name, student_no, class_id, password_hash, created_at, updated_at
		 FROM students WHERE id = $1`, id))
}

// Create inserts a new student account.
func (r *StudentRepository) Create(ctx context.Context, s *model.Student) error {
	ctx, cancel := qctx(ctx)
	defer cancel()

	return r.pool.QueryRow(ctx,
		`INSERT INTO students (name, student_no, class_id, password_hash)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		s.Name, s.StudentNo, s.ClassID, s.PasswordHash,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

// ListByClass retrieves a class's students ordered by name.
func (r *StudentRepository) ListByClass(ctx context.Context, classID int) ([]model.Student, error) {
	ctx, cancel := qctx(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx,
		`SELECT id, name, student_no, class_id, password_hash, created_at, updated_at
		 FROM students WHERE class_id = $1 ORDER BY name`, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []model.Student
	for rows.Next() {
		var s model.Student
		if err := rows.Scan(&s.ID, &s.Name, &s.StudentNo, &s.ClassID, &s.PasswordHash,
			&s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

// StaffRepository handles staff account data access.
type StaffRepository struct {
	pool *pgxpool.Pool
}

// NewStaffRepository creates a new StaffRepository.
func NewStaffRepository(pool *pgxpool.Pool) *StaffRepository {
	return &StaffRepository{pool: pool}
}

func scanStaff(row pgx.Row) (*model.Staff, error) {
	s := &model.Staff{}
	err := row.Scan(&s.ID, &s.Name, &s.Email, &s.Role, &s.PasswordHash,
		&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetByEmail retrieves a staff member by email.
func (r *StaffRepository) GetByEmail(ctx context.Context, email string) (*model.Staff, error) {
	ctx, cancel := qctx(ctx)
	defer cancel()

	return scanStaff(r.pool.QueryRow(ctx,
		`SELECT id, name, email, role, password_hash, created_at, updated_at
		 FROM staff WHERE email = $1`, email))
}

// GetByID retrieves a staff member by ID.
func (r *StaffRepository) GetByID(ctx context.Context, id int) (*model.Staff, error) {
	ctx, cancel := qctx(ctx)
	defer cancel()

	return scanStaff(r.pool.QueryRow(ctx,
		`SELECT id, name, email, role, password_hash, created_at, updated_at
		 FROM staff WHERE id = $1`, id))
}

// Create inserts a new staff account.
func (r *StaffRepository) Create(ctx context.Context, s *model.Staff) error {
	ctx, cancel := qctx(ctx)
	defer cancel()

	return r.pool.QueryRow(ctx,
		`INSERT INTO staff (name, email, role, password_hash)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		s.Name, s.Email, s.Role, s.PasswordHash,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}
