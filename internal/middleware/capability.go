package middleware

import (
	"net/http"

	"github.com/edumark/examly-backend/internal/model"
	"github.com/edumark/examly-backend/internal/response"
	"github.com/gin-gonic/gin"
)

// RequireCapability checks that the staff JWT carries the required capability.
func RequireCapability(capability model.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		for _, granted := range claims.Capabilities {
			if granted == string(capability) {
				c.Next()
				return
			}
		}

		response.AbortFail(c, http.StatusForbidden, response.ErrCapabilityDenied)
	}
}

// RequireAnyCapability checks that the staff JWT carries at least one of the
// given capabilities.
func RequireAnyCapability(capabilities ...model.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		for _, have := range claims.Capabilities {
			for _, want := range capabilities {
				if have == string(want) {
					c.Next()
					return
				}
			}
		}

		response.AbortFail(c, http.StatusForbidden, response.ErrCapabilityDenied)
	}
}
