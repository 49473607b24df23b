package handler

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/edumark/examly-backend/internal/response"
	"github.com/edumark/examly-backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// failFromErr translates service sentinel errors into API error responses.
// Unknown errors become a 500.
func failFromErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
	case errors.Is(err, service.ErrConflict):
		response.Fail(c, http.StatusConflict, response.ErrConflict)
	case errors.Is(err, service.ErrNotExamOwner):
		response.Fail(c, http.StatusForbidden, response.ErrNotExamOwner)
	case errors.Is(err, service.ErrExamNotDraft):
		response.Fail(c, http.StatusConflict, response.ErrExamNotDraft)
	case errors.Is(err, service.ErrNoQuestions):
		response.Fail(c, http.StatusBadRequest, response.ErrNoQuestions)
	case errors.Is(err, service.ErrQuestionSetLocked):
		response.Fail(c, http.StatusConflict, response.ErrQuestionSetLocked)
	case errors.Is(err, service.ErrInvalidAnswerKey):
		response.Fail(c, http.StatusBadRequest, response.ErrValidation)
	case errors.Is(err, service.ErrPassingTooHigh):
		response.Fail(c, http.StatusBadRequest, response.ErrValidation)
	case errors.Is(err, service.ErrInvalidTransition):
		response.Fail(c, http.StatusConflict, response.ErrInvalidTransition)
	case errors.Is(err, service.ErrNotYetDue):
		response.Fail(c, http.StatusConflict, response.ErrNotYetDue)
	case errors.Is(err, service.ErrExamNotOpen):
		response.Fail(c, http.StatusConflict, response.ErrExamNotOpen)
	case errors.Is(err, service.ErrQuotaExceeded):
		response.Fail(c, http.StatusConflict, response.ErrQuotaExceeded)
	case errors.Is(err, service.ErrAlreadyFinalized):
		response.Fail(c, http.StatusConflict, response.ErrAlreadyFinalized)
	case errors.Is(err, service.ErrDuplicateResult):
		response.Fail(c, http.StatusConflict, response.ErrDuplicateResult)
	case errors.Is(err, service.ErrStorageUnavailable):
		response.Fail(c, http.StatusServiceUnavailable, response.ErrStorageUnavailable)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// parseUUIDParam parses a UUID path parameter, failing the request on a bad
// format. The bool reports success.
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

// parsePagination reads page/per_page query params with sane bounds.
func parsePagination(c *gin.Context) (page, perPage int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "10"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 10
	}
	return page, perPage
}

// buildPagination assembles the response pagination block.
func buildPagination(page, perPage, total int) *response.Pagination {
	return &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: int(math.Ceil(float64(total) / float64(perPage))),
	}
}
