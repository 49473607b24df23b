package service

import (
	"context"
	"errors"
	"time"

	"github.com/edumark/examly-backend/internal/config"
	"github.com/edumark/examly-backend/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// User kinds embedded in token claims.
const (
	KindStudent = "STUDENT"
	KindStaff   = "STAFF"
)

// Claims is the JWT payload for both user kinds. Capabilities are resolved
// from the staff role at login and carried in the token, so authorization
// checks never hit storage.
type Claims struct {
	jwt.RegisteredClaims
	UserID       int      `json:"uid"`
	Kind         string   `json:"kind"`
	Name         string   `json:"name"`
	ClassID      int      `json:"class_id,omitempty"`
	Role         string   `json:"role,omitempty"`
	Capabilities []string `json:"capabilities,omitempty"`
	SessionID    string   `json:"sid,omitempty"`
}

// StudentAccountStore is the student lookup surface the auth service needs.
type StudentAccountStore interface {
	GetByStudentNo(ctx context.Context, studentNo string) (*model.Student, error)
	GetByID(ctx context.Context, id int) (*model.Student, error)
}

// StaffAccountStore is the staff lookup surface the auth service needs.
type StaffAccountStore interface {
	GetByEmail(ctx context.Context, email string) (*model.Staff, error)
	GetByID(ctx context.Context, id int) (*model.Staff, error)
}

// SessionRegistry tracks the single live session per student. A new login
// replaces the stored session ID and invalidates the previous device.
type SessionRegistry interface {
	Put(ctx context.Context, studentID int, sessionID string, ttl time.Duration) error
	Get(ctx context.Context, studentID int) (string, error)
	Delete(ctx context.Context, studentID int) error
}

// RedisSessionRegistry stores student sessions in Redis.
type RedisSessionRegistry struct {
	rdb *redis.Client
}

// NewRedisSessionRegistry creates a new RedisSessionRegistry.
func NewRedisSessionRegistry(rdb *redis.Client) *RedisSessionRegistry {
	return &RedisSessionRegistry{rdb: rdb}
}

func (r *RedisSessionRegistry) Put(ctx context.Context, studentID int, sessionID string, ttl time.Duration) error {
	return r.rdb.Set(ctx, config.CacheKey.StudentSessionKey(studentID), sessionID, ttl).Err()
}

func (r *RedisSessionRegistry) Get(ctx context.Context, studentID int) (string, error) {
	v, err := r.rdb.Get(ctx, config.CacheKey.StudentSessionKey(studentID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return v, err
}

func (r *RedisSessionRegistry) Delete(ctx context.Context, studentID int) error {
	return r.rdb.Del(ctx, config.CacheKey.StudentSessionKey(studentID)).Err()
}

// AuthService handles login, token issuance, and session validation.
type AuthService struct {
	students  StudentAccountStore
	staff     StaffAccountStore
	sessions  SessionRegistry
	jwtSecret []byte
	jwtExpiry time.Duration
	log       zerolog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(students StudentAccountStore, staff StaffAccountStore, sessions SessionRegistry, cfg *config.Config, log zerolog.Logger) *AuthService {
	return &AuthService{
		students:  students,
		staff:     staff,
		sessions:  sessions,
		jwtSecret: []byte(cfg.JWTSecret),
		jwtExpiry: cfg.JWTExpiry,
		log:       log.With().Str("component", "auth_service").Logger(),
	}
}

// LoginStudent authenticates a student by number and password and issues a
// token. The new session replaces any session open on another device.
func (s *AuthService) LoginStudent(ctx context.Context, req *model.StudentLoginRequest) (string, *model.Student, error) {
	student, err := s.students.GetByStudentNo(ctx, req.StudentNo)
	if err != nil {
		if errors.Is(storeErr(err), ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, storeErr(err)
	}

	if bcrypt.CompareHashAndPassword([]byte(student.PasswordHash), []byte(req.Password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	sessionID := uuid.New().String()
	if err := s.sessions.Put(ctx, student.ID, sessionID, s.jwtExpiry); err != nil {
		return "", nil, ErrStorageUnavailable
	}

	token, err := s.sign(&Claims{
		RegisteredClaims: s.registered(),
		UserID:           student.ID,
		Kind:             KindStudent,
		Name:             student.Name,
		ClassID:          student.ClassID,
		SessionID:        sessionID,
	})
	if err != nil {
		return "", nil, err
	}

	s.log.Info().Int("student_id", student.ID).Msg("student logged in")
	return token, student, nil
}

// LoginStaff authenticates a staff member by email and password. Staff
// capabilities come from the role at login time.
func (s *AuthService) LoginStaff(ctx context.Context, req *model.StaffLoginRequest) (string, *model.Staff, error) {
	staff, err := s.staff.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(storeErr(err), ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, storeErr(err)
	}

	if bcrypt.CompareHashAndPassword([]byte(staff.PasswordHash), []byte(req.Password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.sign(&Claims{
		RegisteredClaims: s.registered(),
		UserID:           staff.ID,
		Kind:             KindStaff,
		Name:             staff.Name,
		Role:             string(staff.Role),
		Capabilities:     model.CapabilitiesForRole(staff.Role),
	})
	if err != nil {
		return "", nil, err
	}

	s.log.Info().Int("staff_id", staff.ID).Str("role", string(staff.Role)).Msg("staff logged in")
	return token, staff, nil
}

// LogoutStudent drops the student's live session.
func (s *AuthService) LogoutStudent(ctx context.Context, studentID int) error {
	return s.sessions.Delete(ctx, studentID)
}

// ParseToken validates a signed token and returns its claims.
func (s *AuthService) ParseToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidCredentials
	}
	return claims, nil
}

// ValidateStudentSession reports whether the token's session is still the
// student's live one. A login on another device replaces it.
func (s *AuthService) ValidateStudentSession(ctx context.Context, claims *Claims) (bool, error) {
	if claims.Kind != KindStudent {
		return true, nil
	}
	current, err := s.sessions.Get(ctx, claims.UserID)
	if err != nil {
		return false, ErrStorageUnavailable
	}
	return current != "" && current == claims.SessionID, nil
}

// HashPassword derives a bcrypt hash for account provisioning.
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *AuthService) sign(claims *Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

func (s *AuthService) registered() jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiry)),
	}
}
