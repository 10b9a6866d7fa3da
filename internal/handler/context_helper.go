package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/scholarhub/college-review-api/internal/middleware"
	"github.com/scholarhub/college-review-api/internal/models"
)

// claimsFromContext returns the JWT claims stored by the auth middleware.
// Services treat nil claims as an unauthenticated caller, so routes mounted
// without the JWT middleware stay usable in tests.
func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, _ := c.Get(middleware.ContextUserKey)
	claims, _ := value.(*models.JWTClaims)
	return claims
}
