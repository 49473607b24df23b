package service

import (
	"context"
	"testing"
	"time"

	"github.com/edumark/examly-backend/internal/config"
	"github.com/edumark/examly-backend/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuthService(t *testing.T) (*AuthService, *fakeSessionRegistry) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	students := &fakeStudentStore{students: map[string]*model.Student{
		"S00042": {ID: 42, Name: "Ada Student", StudentNo: "S00042", ClassID: 3, PasswordHash: string(hash)},
	}}
	staff := &fakeStaffStore{staff: map[string]*model.Staff{
		"teacher@example.com":   {ID: 7, Name: "Tom Teacher", Email: "teacher@example.com", Role: model.StaffRoleTeacher, PasswordHash: string(hash)},
		"principal@example.com": {ID: 8, Name: "Pat Principal", Email: "principal@example.com", Role: model.StaffRolePrincipal, PasswordHash: string(hash)},
	}}
	sessions := newFakeSessionRegistry()
	cfg := &config.Config{JWTSecret: "test-secret", JWTExpiry: time.Hour}
	return NewAuthService(students, staff, sessions, cfg, zerolog.Nop()), sessions
}

func TestLoginStudent(t *testing.T) {
	svc, sessions := newTestAuthService(t)

	token, student, err := svc.LoginStudent(context.Background(), &model.StudentLoginRequest{
		StudentNo: "S00042", Password: "password123",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, 42, student.ID)

	claims, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, 42, claims.UserID)
	assert.Equal(t, KindStudent, claims.Kind)
	assert.Equal(t, 3, claims.ClassID)
	assert.Equal(t, sessions.sessions[42], claims.SessionID)
}

func TestLoginStudentBadPassword(t *testing.T) {
	svc, _ := newTestAuthService(t)
	_, _, err := svc.LoginStudent(context.Background(), &model.StudentLoginRequest{
		StudentNo: "S00042", Password: "wrong-password",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginStudentUnknownNumber(t *testing.T) {
	svc, _ := newTestAuthService(t)
	_, _, err := svc.LoginStudent(context.Background(), &model.StudentLoginRequest{
		StudentNo: "S99999", Password: "password123",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSecondLoginInvalidatesFirstSession(t *testing.T) {
	svc, _ := newTestAuthService(t)
	req := &model.StudentLoginRequest{StudentNo: "S00042", Password: "password123"}

	firstToken, _, err := svc.LoginStudent(context.Background(), req)
	require.NoError(t, err)
	firstClaims, err := svc.ParseToken(firstToken)
	require.NoError(t, err)

	secondToken, _, err := svc.LoginStudent(context.Background(), req)
	require.NoError(t, err)
	secondClaims, err := svc.ParseToken(secondToken)
	require.NoError(t, err)

	ok, err := svc.ValidateStudentSession(context.Background(), firstClaims)
	require.NoError(t, err)
	assert.False(t, ok, "the older device is logged out")

	ok, err = svc.ValidateStudentSession(context.Background(), secondClaims)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLogoutDropsSession(t *testing.T) {
	svc, _ := newTestAuthService(t)
	token, _, err := svc.LoginStudent(context.Background(), &model.StudentLoginRequest{
		StudentNo: "S00042", Password: "password123",
	})
	require.NoError(t, err)
	claims, err := svc.ParseToken(token)
	require.NoError(t, err)

	require.NoError(t, svc.LogoutStudent(context.Background(), 42))

	ok, err := svc.ValidateStudentSession(context.Background(), claims)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoginStaffEmbedsCapabilities(t *testing.T) {
	svc, _ := newTestAuthService(t)

	token, staff, err := svc.LoginStaff(context.Background(), &model.StaffLoginRequest{
		Email: "teacher@example.com", Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, model.StaffRoleTeacher, staff.Role)

	claims, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, KindStaff, claims.Kind)
	assert.Equal(t, string(model.StaffRoleTeacher), claims.Role)
	assert.Contains(t, claims.Capabilities, string(model.CapabilityExamsTransition))
	assert.Contains(t, claims.Capabilities, string(model.CapabilityExamsMonitor))
}

func TestValidateSessionSkipsStaff(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ok, err := svc.ValidateStudentSession(context.Background(), &Claims{Kind: KindStaff, UserID: 7})
	require.NoError(t, err)
	assert.True(t, ok, "staff tokens carry no device session")
}

func TestParseTokenRejectsTampering(t *testing.T) {
	svc, _ := newTestAuthService(t)
	token, _, err := svc.LoginStudent(context.Background(), &model.StudentLoginRequest{
		StudentNo: "S00042", Password: "password123",
	})
	require.NoError(t, err)

	_, err = svc.ParseToken(token + "x")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.ParseToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginStudentSessionStoreDown(t *testing.T) {
	svc, sessions := newTestAuthService(t)
	sessions.putErr = context.DeadlineExceeded

	_, _, err := svc.LoginStudent(context.Background(), &model.StudentLoginRequest{
		StudentNo: "S00042", Password: "password123",
	})
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}
