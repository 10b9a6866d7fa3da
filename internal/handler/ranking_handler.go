package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scholarhub/college-review-api/internal/dto"
	"github.com/scholarhub/college-review-api/internal/models"
	appErrors "github.com/scholarhub/college-review-api/pkg/errors"
	"github.com/scholarhub/college-review-api/pkg/response"
)

type rankingService interface {
	List(ctx context.Context, filter models.RankingFilter, claims *models.JWTClaims) ([]dto.RankingSummary, error)
	Get(ctx context.Context, id string, claims *models.JWTClaims) (*dto.RankingDetail, error)
	Create(ctx context.Context, req dto.CreateRankingRequest, claims *models.JWTClaims) (*models.Ranking, error)
	Reorder(ctx context.Context, id string, entries []dto.OrderEntry, claims *models.JWTClaims) error
	ExecuteDistribution(ctx context.Context, id string, claims *models.JWTClaims) (*dto.DistributionResult, error)
	Finalize(ctx context.Context, id string, claims *models.JWTClaims) error
	Unfinalize(ctx context.Context, id string, claims *models.JWTClaims) error
	Delete(ctx context.Context, id string, claims *models.JWTClaims) error
}

type rosterExporter interface {
	Roster(ctx context.Context, rankingID, format string, claims *models.JWTClaims) ([]byte, string, string, error)
}

// RankingHandler wires HTTP endpoints to the ranking service.
type RankingHandler struct {
	service rankingService
	exports rosterExporter
}

// NewRankingHandler creates a new handler. A nil exporter disables the export
// endpoint.
func NewRankingHandler(svc rankingService, exports rosterExporter) *RankingHandler {
	return &RankingHandler{service: svc, exports: exports}
}

// List godoc
// @Summary List rankings
// @Description List ranking summaries for the caller's college
// @Tags Rankings
// @Produce json
// @Security BearerAuth
// @Param college_id query string false "College filter (superadmin only)"
// @Param academic_year query string false "Academic year filter"
// @Param semester query string false "Semester filter"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /college-review/rankings [get]
func (h *RankingHandler) List(c *gin.Context) {
	filter := models.RankingFilter{
		CollegeID:    c.Query("college_id"),
		AcademicYear: c.Query("academic_year"),
		Semester:     c.Query("semester"),
	}

	items, err := h.service.List(c.Request.Context(), filter, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "rankings retrieved", items)
}

// Get godoc
// @Summary Get ranking detail
// @Description Get a ranking with its ordered items and quota context
// @Tags Rankings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Ranking ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /college-review/rankings/{id} [get]
func (h *RankingHandler) Get(c *gin.Context) {
	detail, err := h.service.Get(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "ranking retrieved", detail)
}

// Create godoc
// @Summary Create ranking
// @Description Create a ranking for a sub-type scope, or return the existing one unless force_new is set
// @Tags Rankings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateRankingRequest true "Ranking payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /college-review/rankings [post]
func (h *RankingHandler) Create(c *gin.Context) {
	var req dto.CreateRankingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid ranking payload"))
		return
	}

	ranking, err := h.service.Create(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "ranking created", ranking)
}

// Reorder godoc
// @Summary Reorder ranking items
// @Description Persist a complete new order for the ranking's items
// @Tags Rankings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Ranking ID"
// @Param payload body []dto.OrderEntry true "Full item order"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /college-review/rankings/{id}/order [put]
func (h *RankingHandler) Reorder(c *gin.Context) {
	var entries []dto.OrderEntry
	if err := c.ShouldBindJSON(&entries); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid order payload"))
		return
	}

	if err := h.service.Reorder(c.Request.Context(), c.Param("id"), entries, claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "order saved", nil)
}

// Distribute godoc
// @Summary Execute distribution
// @Description Run the quota-matrix distribution for the ranking
// @Tags Rankings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Ranking ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /college-review/rankings/{id}/execute-matrix-distribution [post]
func (h *RankingHandler) Distribute(c *gin.Context) {
	result, err := h.service.ExecuteDistribution(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "distribution executed", result)
}

// Finalize godoc
// @Summary Finalize ranking
// @Description Lock the ranking against further mutation
// @Tags Rankings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Ranking ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /college-review/rankings/{id}/finalize [post]
func (h *RankingHandler) Finalize(c *gin.Context) {
	if err := h.service.Finalize(c.Request.Context(), c.Param("id"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "ranking finalized", nil)
}

// Unfinalize godoc
// @Summary Unfinalize ranking
// @Description Release the finalize lock
// @Tags Rankings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Ranking ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /college-review/rankings/{id}/unfinalize [post]
func (h *RankingHandler) Unfinalize(c *gin.Context) {
	if err := h.service.Unfinalize(c.Request.Context(), c.Param("id"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "ranking unfinalized", nil)
}

// Delete godoc
// @Summary Delete ranking
// @Description Delete a ranking and its items
// @Tags Rankings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Ranking ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /college-review/rankings/{id} [delete]
func (h *RankingHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "ranking deleted", nil)
}

// Export godoc
// @Summary Export ranking roster
// @Description Export the ranking's ordered items as CSV or PDF
// @Tags Rankings
// @Produce octet-stream
// @Security BearerAuth
// @Param id path string true "Ranking ID"
// @Param format query string false "Export format (csv or pdf)" default(csv)
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /college-review/rankings/{id}/export [get]
func (h *RankingHandler) Export(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "exports are disabled"))
		return
	}

	payload, contentType, filename, err := h.exports.Roster(c.Request.Context(), c.Param("id"), c.Query("format"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}
