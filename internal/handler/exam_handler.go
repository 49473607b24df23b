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

// ExamHandler handles staff exam management endpoints.
type ExamHandler struct {
	examService      *service.ExamService
	lifecycleService *service.LifecycleService
	attemptService   *service.AttemptService
	resultService    *service.ResultService
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(examService *service.ExamService, lifecycleService *service.LifecycleService, attemptService *service.AttemptService, resultService *service.ResultService) *ExamHandler {
	return &ExamHandler{
		examService:      examService,
		lifecycleService: lifecycleService,
		attemptService:   attemptService,
		resultService:    resultService,
	}
}

// List godoc
// GET /api/v1/staff/exams
// Lists exams with pagination. Principals see all; teachers see their own.
func (h *ExamHandler) List(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	page, perPage := parsePagination(c)
	exams, total, err := h.examService.ListForStaff(c.Request.Context(), claims.UserID, middleware.IsPrincipal(c), perPage, (page-1)*perPage)
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"exams": exams}, buildPagination(page, perPage, total))
}

// Create godoc
// POST /api/v1/staff/exams
// Creates a new draft exam owned by the caller.
func (h *ExamHandler) Create(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.CreateExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam, err := h.examService.Create(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"exam": exam})
}

// Get godoc
// GET /api/v1/staff/exams/:exam_id
// Returns the exam with its effective status and question references.
func (h *ExamHandler) Get(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, ok := parseUUIDParam(c, "exam_id")
	if !ok {
		return
	}

	exam, refs, err := h.examService.Get(c.Request.Context(), examID, claims.UserID, middleware.IsPrincipal(c))
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"exam": exam, "questions": refs})
}

// Update godoc
// PUT /api/v1/staff/exams/:exam_id
// Edits a draft exam.
func (h *ExamHandler) Update(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, ok := parseUUIDParam(c, "exam_id")
	if !ok {
		return
	}

	var req model.UpdateExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam, err := h.examService.Update(c.Request.Context(), examID, claims.UserID, middleware.IsPrincipal(c), &req)
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// Delete godoc
// DELETE /api/v1/staff/exams/:exam_id
// Removes a draft exam.
func (h *ExamHandler) Delete(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, ok := parseUUIDParam(c, "exam_id")
	if !ok {
		return
	}

	if err := h.examService.Delete(c.Request.Context(), examID, claims.UserID, middleware.IsPrincipal(c)); err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// SetQuestions godoc
// PUT /api/v1/staff/exams/:exam_id/questions
// Replaces a draft exam's ordered question set and derives its total marks.
func (h *ExamHandler) SetQuestions(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, ok := parseUUIDParam(c, "exam_id")
	if !ok {
		return
	}

	var req model.SetQuestionsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam, err := h.examService.SetQuestions(c.Request.Context(), examID, claims.UserID, middleware.IsPrincipal(c), &req)
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// Transition godoc
// POST /api/v1/staff/exams/:exam_id/transition
// Moves the exam to a target lifecycle status.
func (h *ExamHandler) Transition(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, ok := parseUUIDParam(c, "exam_id")
	if !ok {
		return
	}

	var req model.TransitionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam, err := h.lifecycleService.Transition(c.Request.Context(), examID, claims.UserID, middleware.IsPrincipal(c), model.ExamStatus(req.Target))
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// ListAttempts godoc
// GET /api/v1/staff/exams/:exam_id/attempts
// Lists every attempt on the exam, newest first.
func (h *ExamHandler) ListAttempts(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, ok := parseUUIDParam(c, "exam_id")
	if !ok {
		return
	}

	attempts, err := h.attemptService.ListForExam(c.Request.Context(), examID, claims.UserID, middleware.IsPrincipal(c))
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"attempts": attempts})
}

// ListResults godoc
// GET /api/v1/staff/exams/:exam_id/results
// Lists every durable result for the exam, best marks first.
func (h *ExamHandler) ListResults(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, ok := parseUUIDParam(c, "exam_id")
	if !ok {
		return
	}

	results, err := h.resultService.ListForExam(c.Request.Context(), examID, claims.UserID, middleware.IsPrincipal(c))
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"results": results})
}

// Distribution godoc
// GET /api/v1/staff/exams/:exam_id/results/distribution
// Reports how many results fall into each grade.
func (h *ExamHandler) Distribution(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, ok := parseUUIDParam(c, "exam_id")
	if !ok {
		return
	}

	buckets, err := h.resultService.Distribution(c.Request.Context(), examID, claims.UserID, middleware.IsPrincipal(c))
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"distribution": buckets})
}

// ManualGrade godoc
// POST /api/v1/staff/exams/:exam_id/results
// Records or amends a result by hand.
func (h *ExamHandler) ManualGrade(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, ok := parseUUIDParam(c, "exam_id")
	if !ok {
		return
	}

	var req model.ManualGradeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.resultService.RecordManual(c.Request.Context(), examID, claims.UserID, middleware.IsPrincipal(c), &req)
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"result": result})
}
