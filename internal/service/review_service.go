package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/scholarhub/college-review-api/internal/dto"
	"github.com/scholarhub/college-review-api/internal/models"
	appErrors "github.com/scholarhub/college-review-api/pkg/errors"
)

const applicationResource = "application"

type reviewApplicationStore interface {
	FindByID(ctx context.Context, id string) (*models.Application, error)
	UpdateReview(ctx context.Context, id string, status models.ReviewStatus, comments *string, scores json.RawMessage, reviewerID string, ts time.Time) error
}

type reviewRankingReader interface {
	FindForApplication(ctx context.Context, applicationID string) (*models.Ranking, error)
}

type redistributor interface {
	Redistribute(ctx context.Context, rankingID string) (*dto.DistributionResult, error)
}

// ReviewService handles review submission and the distribution side effect a
// decision may trigger.
type ReviewService struct {
	apps      reviewApplicationStore
	rankings  reviewRankingReader
	dist      redistributor
	audit     auditLogger
	validator *validator.Validate
	logger    *zap.Logger
}

// NewReviewService builds a ReviewService.
func NewReviewService(
	apps reviewApplicationStore,
	rankings reviewRankingReader,
	dist redistributor,
	audit auditLogger,
	validate *validator.Validate,
	logger *zap.Logger,
) *ReviewService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReviewService{
		apps:      apps,
		rankings:  rankings,
		dist:      dist,
		audit:     audit,
		validator: validate,
		logger:    logger,
	}
}

// Submit records a review decision. When the application sits in a ranking
// whose distribution was already executed, the ranking is redistributed and
// the outcome reported through RedistributionInfo; a finalized ranking blocks
// the side effect instead. Positions are never touched.
func (s *ReviewService) Submit(ctx context.Context, applicationID string, req dto.SubmitReviewRequest, claims *models.JWTClaims) (*dto.ReviewResult, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}

	app, err := s.apps.FindByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}
	if err := ensureCollegeAccess(app.CollegeID, claims); err != nil {
		return nil, err
	}

	var scores json.RawMessage
	if len(req.Items) > 0 {
		scores, err = json.Marshal(req.Items)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review scores")
		}
	}
	var comments *string
	if req.Comments != "" {
		comments = &req.Comments
	}

	now := time.Now().UTC()
	if err := s.apps.UpdateReview(ctx, applicationID, req.Recommendation, comments, scores, claims.UserID, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save review")
	}

	info := s.redistributeIfNeeded(ctx, applicationID)

	s.emitAudit(ctx, claims, applicationID, app.ReviewStatus, req.Recommendation)

	updated, err := s.apps.FindByID(ctx, applicationID)
	if err != nil {
		s.logger.Warn("failed to reload application after review", zap.String("application_id", applicationID), zap.Error(err))
		updated = app
	}

	return &dto.ReviewResult{Application: updated, RedistributionInfo: info}, nil
}

func (s *ReviewService) redistributeIfNeeded(ctx context.Context, applicationID string) *dto.RedistributionInfo {
	ranking, err := s.rankings.FindForApplication(ctx, applicationID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("failed to resolve ranking for application", zap.String("application_id", applicationID), zap.Error(err))
		}
		return nil
	}

	if ranking.IsFinalized {
		return &dto.RedistributionInfo{Blocked: true, TotalQuota: ranking.TotalQuota}
	}
	if !ranking.DistributionExecuted {
		return nil
	}

	result, err := s.dist.Redistribute(ctx, ranking.ID)
	if err != nil {
		s.logger.Error("redistribution after review failed", zap.String("ranking_id", ranking.ID), zap.Error(err))
		return nil
	}
	return &dto.RedistributionInfo{
		Executed:       true,
		AllocatedCount: result.AllocatedCount,
		TotalQuota:     result.TotalQuota,
	}
}

func (s *ReviewService) emitAudit(ctx context.Context, actor *models.JWTClaims, applicationID string, oldStatus, newStatus models.ReviewStatus) {
	if s.audit == nil {
		return
	}
	oldValues, _ := json.Marshal(map[string]interface{}{"reviewStatus": oldStatus})
	newValues, _ := json.Marshal(map[string]interface{}{"reviewStatus": newStatus})
	log := &models.AuditLog{
		UserID:     &actor.UserID,
		Action:     models.AuditActionApplicationReview,
		Resource:   applicationResource,
		ResourceID: &applicationID,
		OldValues:  oldValues,
		NewValues:  newValues,
		IPAddress:  "system",
		UserAgent:  "review-service",
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to record review audit", zap.Error(err))
	}
}
