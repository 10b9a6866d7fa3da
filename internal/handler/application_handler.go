package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/scholarhub/college-review-api/internal/dto"
	"github.com/scholarhub/college-review-api/internal/models"
	"github.com/scholarhub/college-review-api/pkg/response"
)

type applicationService interface {
	List(ctx context.Context, filter models.ApplicationFilter, claims *models.JWTClaims) (*dto.ApplicationPage, error)
	Get(ctx context.Context, id string, claims *models.JWTClaims) (*models.Application, error)
}

// ApplicationHandler wires HTTP endpoints to the application service.
type ApplicationHandler struct {
	service applicationService
}

// NewApplicationHandler creates a new handler.
func NewApplicationHandler(svc applicationService) *ApplicationHandler {
	return &ApplicationHandler{service: svc}
}

// List godoc
// @Summary List applications
// @Description List applications under review for the caller's college
// @Tags Applications
// @Produce json
// @Security BearerAuth
// @Param college_id query string false "College filter (superadmin only)"
// @Param sub_type_code query string false "Scholarship sub-type filter"
// @Param academic_year query string false "Academic year filter"
// @Param semester query string false "Semester filter"
// @Param review_status query string false "Review status filter"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(50)
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /college-review/applications [get]
func (h *ApplicationHandler) List(c *gin.Context) {
	filter := models.ApplicationFilter{
		CollegeID:    c.Query("college_id"),
		SubTypeCode:  c.Query("sub_type_code"),
		AcademicYear: c.Query("academic_year"),
		Semester:     c.Query("semester"),
	}
	if status := c.Query("review_status"); status != "" {
		rs := models.ReviewStatus(status)
		filter.ReviewStatus = &rs
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("size", "50"))

	page, err := h.service.List(c.Request.Context(), filter, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "applications retrieved", page)
}

// Get godoc
// @Summary Get application
// @Description Get a single application
// @Tags Applications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /college-review/applications/{id} [get]
func (h *ApplicationHandler) Get(c *gin.Context) {
	app, err := h.service.Get(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "application retrieved", app)
}
