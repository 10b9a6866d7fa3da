package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scholarhub/college-review-api/internal/dto"
	"github.com/scholarhub/college-review-api/internal/models"
	appErrors "github.com/scholarhub/college-review-api/pkg/errors"
	"github.com/scholarhub/college-review-api/pkg/response"
)

type reviewService interface {
	Submit(ctx context.Context, applicationID string, req dto.SubmitReviewRequest, claims *models.JWTClaims) (*dto.ReviewResult, error)
}

// ReviewHandler wires HTTP endpoints to the review service.
type ReviewHandler struct {
	service reviewService
}

// NewReviewHandler creates a new handler.
func NewReviewHandler(svc reviewService) *ReviewHandler {
	return &ReviewHandler{service: svc}
}

// Submit godoc
// @Summary Submit review decision
// @Description Record a review decision for an application, redistributing its ranking when distribution was already executed
// @Tags Reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Param payload body dto.SubmitReviewRequest true "Review payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /college-review/applications/{id}/review [post]
func (h *ReviewHandler) Submit(c *gin.Context) {
	var req dto.SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid review payload"))
		return
	}

	result, err := h.service.Submit(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "review recorded", result)
}
