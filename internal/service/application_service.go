package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/scholarhub/college-review-api/internal/dto"
	"github.com/scholarhub/college-review-api/internal/models"
	appErrors "github.com/scholarhub/college-review-api/pkg/errors"
)

type applicationStore interface {
	FindByID(ctx context.Context, id string) (*models.Application, error)
	List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, int, error)
}

// ApplicationService lists and reads applications under college review.
type ApplicationService struct {
	repo   applicationStore
	logger *zap.Logger
}

// NewApplicationService builds an ApplicationService.
func NewApplicationService(repo applicationStore, logger *zap.Logger) *ApplicationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApplicationService{repo: repo, logger: logger}
}

// List returns a page of applications scoped to the caller's college.
func (s *ApplicationService) List(ctx context.Context, filter models.ApplicationFilter, claims *models.JWTClaims) (*dto.ApplicationPage, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	collegeID, err := resolveCollege(filter.CollegeID, claims)
	if err != nil {
		return nil, err
	}
	filter.CollegeID = collegeID

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 50
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}

	pages := total / filter.PageSize
	if total%filter.PageSize != 0 {
		pages++
	}
	return &dto.ApplicationPage{
		Items: items,
		Total: total,
		Page:  filter.Page,
		Size:  filter.PageSize,
		Pages: pages,
	}, nil
}

// Get loads a single application.
func (s *ApplicationService) Get(ctx context.Context, id string, claims *models.JWTClaims) (*models.Application, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}

	app, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}
	if err := ensureCollegeAccess(app.CollegeID, claims); err != nil {
		return nil, err
	}
	return app, nil
}
