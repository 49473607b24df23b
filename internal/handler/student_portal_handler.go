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

// StudentPortalHandler handles the student-facing exam endpoints: lobby,
// payload, attempt lifecycle, and result reads.
type StudentPortalHandler struct {
	examService    *service.ExamService
	attemptService *service.AttemptService
	resultService  *service.ResultService
}

// NewStudentPortalHandler creates a new StudentPortalHandler.
func NewStudentPortalHandler(examService *service.ExamService, attemptService *service.AttemptService, resultService *service.ResultService) *StudentPortalHandler {
	return &StudentPortalHandler{
		examService:    examService,
		attemptService: attemptService,
		resultService:  resultService,
	}
}

// lobbyEntry is one exam row in the student lobby.
type lobbyEntry struct {
	Exam              model.Exam `json:"exam"`
	RemainingAttempts int        `json:"remaining_attempts"`
}

// Lobby godoc
// GET /api/v1/student/exams
// Lists the exams the student's class can see, with effective statuses and
// remaining attempt slots.
func (h *StudentPortalHandler) Lobby(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	exams, err := h.examService.ListLobby(c.Request.Context(), claims.ClassID)
	if err != nil {
		failFromErr(c, err)
		return
	}

	entries := make([]lobbyEntry, 0, len(exams))
	for i := range exams {
		remaining, err := h.attemptService.QuotaRemaining(c.Request.Context(), &exams[i], claims.UserID)
		if err != nil {
			failFromErr(c, err)
			return
		}
		entries = append(entries, lobbyEntry{Exam: exams[i], RemainingAttempts: remaining})
	}
	response.Success(c, http.StatusOK, gin.H{"exams": entries})
}

// GetExamPayload godoc
// GET /api/v1/student/exams/:exam_id
// Serves the question payload for an exam the student may take. Answer keys
// never leave the server.
func (h *StudentPortalHandler) GetExamPayload(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, ok := parseUUIDParam(c, "exam_id")
	if !ok {
		return
	}

	payload, err := h.examService.GetPayload(c.Request.Context(), examID, claims.ClassID)
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"exam": payload})
}

// BeginAttempt godoc
// POST /api/v1/student/exams/:exam_id/attempts
// Opens a new attempt if the exam window is open and quota remains.
func (h *StudentPortalHandler) BeginAttempt(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, ok := parseUUIDParam(c, "exam_id")
	if !ok {
		return
	}

	attempt, err := h.attemptService.Begin(c.Request.Context(), examID, claims.UserID)
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"attempt": attempt})
}

// CurrentAttempt godoc
// GET /api/v1/student/exams/:exam_id/attempts/current
// Returns the student's open attempt on an exam, letting a reconnecting
// client resume its sitting. 404 when nothing is in progress.
func (h *StudentPortalHandler) CurrentAttempt(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, ok := parseUUIDParam(c, "exam_id")
	if !ok {
		return
	}

	attempt, err := h.attemptService.Current(c.Request.Context(), examID, claims.UserID)
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"attempt": attempt})
}

// SubmitAnswers godoc
// POST /api/v1/student/attempts/:attempt_id/submit
// Grades the submission and finalizes the attempt. Accepted past the exam
// window, but flagged late.
func (h *StudentPortalHandler) SubmitAnswers(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	attemptID, ok := parseUUIDParam(c, "attempt_id")
	if !ok {
		return
	}

	var req model.SubmitAnswersRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	attempt, err := h.attemptService.Submit(c.Request.Context(), attemptID, claims.UserID, req.Answers)
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"attempt": attempt})
}

// AbandonAttempt godoc
// POST /api/v1/student/attempts/:attempt_id/abandon
// Voids an open attempt without grading. The slot is returned to the quota.
func (h *StudentPortalHandler) AbandonAttempt(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	attemptID, ok := parseUUIDParam(c, "attempt_id")
	if !ok {
		return
	}

	attempt, err := h.attemptService.Abandon(c.Request.Context(), attemptID, claims.UserID)
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"attempt": attempt})
}

// GetAttempt godoc
// GET /api/v1/student/attempts/:attempt_id
// Returns one of the student's own attempts, graded answers included once
// finalized.
func (h *StudentPortalHandler) GetAttempt(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	attemptID, ok := parseUUIDParam(c, "attempt_id")
	if !ok {
		return
	}

	attempt, err := h.attemptService.Get(c.Request.Context(), attemptID, claims.UserID)
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"attempt": attempt})
}

// MyAttempts godoc
// GET /api/v1/student/exams/:exam_id/attempts
// Lists the student's attempts on an exam, newest first.
func (h *StudentPortalHandler) MyAttempts(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, ok := parseUUIDParam(c, "exam_id")
	if !ok {
		return
	}

	attempts, err := h.attemptService.ListMine(c.Request.Context(), examID, claims.UserID)
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"attempts": attempts})
}

// MyResults godoc
// GET /api/v1/student/results
// Lists all the student's durable results, newest first.
func (h *StudentPortalHandler) MyResults(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	results, err := h.resultService.ListForStudent(c.Request.Context(), claims.UserID)
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"results": results})
}

// MyResultForExam godoc
// GET /api/v1/student/exams/:exam_id/result
// Returns the student's durable result on an exam, if recorded.
func (h *StudentPortalHandler) MyResultForExam(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, ok := parseUUIDParam(c, "exam_id")
	if !ok {
		return
	}

	result, err := h.resultService.GetForStudent(c.Request.Context(), examID, claims.UserID)
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"result": result})
}
