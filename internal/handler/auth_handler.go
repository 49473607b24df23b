package handler

import (
	"net/http"

	"github.com/edumark/examly-backend/internal/middleware"
	"github.com/edumark/examly-backend/internal/model"
	"github.com/edumark/examly-backend/internal/response"
	"github.com/edumark/examly-backend/internal/service"
	"github.com/edumark/examly-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles login and session endpoints.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// StudentLogin godoc
// POST /api/v1/auth/student/login
// Authenticates a student by number and password. A new login replaces any
// session open on another device.
func (h *AuthHandler) StudentLogin(c *gin.Context) {
	var req model.StudentLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	token, student, err := h.authService.LoginStudent(c.Request.Context(), &req)
	if err != nil {
		failFromErr(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"token":   token,
		"student": student,
	})
}

// StaffLogin godoc
// POST /api/v1/auth/staff/login
// Authenticates a teacher or principal by email and password.
func (h *AuthHandler) StaffLogin(c *gin.Context) {
	var req model.StaffLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	token, staff, err := h.authService.LoginStaff(c.Request.Context(), &req)
	if err != nil {
		failFromErr(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"token": token,
		"staff": staff,
	})
}

// StudentLogout godoc
// POST /api/v1/student/logout
// Ends the student's live session.
func (h *AuthHandler) StudentLogout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	if err := h.authService.LogoutStudent(c.Request.Context(), claims.UserID); err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"logged_out": true})
}

// Me godoc
// GET /api/v1/auth/me
// Returns the calling token's identity.
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user_id":      claims.UserID,
		"kind":         claims.Kind,
		"name":         claims.Name,
		"class_id":     claims.ClassID,
		"role":         claims.Role,
		"capabilities": claims.Capabilities,
	})
}
