package middleware

import (
	"net/http"

	"github.com/edumark/examly-backend/internal/response"
	"github.com/edumark/examly-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// CheckSingleDeviceSession validates the student token's session ID against
// the live session in Redis. A login on another device replaces the stored
// session, so the older token stops working here.
func CheckSingleDeviceSession(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		if claims.Kind != service.KindStudent {
			c.Next()
			return
		}

		valid, err := authService.ValidateStudentSession(c.Request.Context(), claims)
		if err != nil {
			response.AbortFail(c, http.StatusServiceUnavailable, response.ErrStorageUnavailable)
			return
		}
		if !valid {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrSessionInvalidated)
			return
		}

		c.Next()
	}
}
