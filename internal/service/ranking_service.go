package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/scholarhub/college-review-api/internal/dto"
	"github.com/scholarhub/college-review-api/internal/models"
	appErrors "github.com/scholarhub/college-review-api/pkg/errors"
)

const rankingResource = "ranking"

func rankingDetailKey(id string) string {
	return fmt.Sprintf("ranking:%s:detail", id)
}

type rankingStore interface {
	List(ctx context.Context, filter models.RankingFilter) ([]dto.RankingSummary, error)
	FindByID(ctx context.Context, id string) (*models.Ranking, error)
	FindByScope(ctx context.Context, typeID, subTypeCode, collegeID, academicYear string, semester *string) (*models.Ranking, error)
	ListItems(ctx context.Context, rankingID string) ([]models.RankingItem, error)
	Create(ctx context.Context, ranking *models.Ranking) error
	UpdateOrder(ctx context.Context, rankingID string, entries []dto.OrderEntry) error
	ApplyAllocations(ctx context.Context, rankingID string, allocatedItemIDs []string) error
	SetFinalized(ctx context.Context, id string, finalized bool) error
	Delete(ctx context.Context, id string) error
	CountAllocatedElsewhere(ctx context.Context, typeID, subTypeCode, academicYear string, semester *string, excludeRankingID string) (int, error)
}

type subTypeReader interface {
	FindSubType(ctx context.Context, scholarshipTypeID, code string) (*models.ScholarshipSubType, error)
	CollegeQuota(ctx context.Context, subTypeID, collegeID string) (int, error)
	QuotaBreakdown(ctx context.Context, subType *models.ScholarshipSubType) ([]dto.CollegeQuotaRow, error)
}

type rankingCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type cacheObserver interface {
	ObserveCacheLookup(hit bool)
}

// RankingService orchestrates ranking lifecycle, ordering and distribution.
type RankingService struct {
	repo      rankingStore
	subTypes  subTypeReader
	cache     rankingCache
	audit     auditLogger
	validator *validator.Validate
	logger    *zap.Logger
	cacheTTL  time.Duration
	metrics   cacheObserver
}

// SetMetrics attaches a cache instrumentation sink.
func (s *RankingService) SetMetrics(metrics cacheObserver) {
	s.metrics = metrics
}

// NewRankingService builds a RankingService with sane defaults.
func NewRankingService(
	repo rankingStore,
	subTypes subTypeReader,
	cache rankingCache,
	audit auditLogger,
	validate *validator.Validate,
	logger *zap.Logger,
	cacheTTL time.Duration,
) *RankingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &RankingService{
		repo:      repo,
		subTypes:  subTypes,
		cache:     cache,
		audit:     audit,
		validator: validate,
		logger:    logger,
		cacheTTL:  cacheTTL,
	}
}

// List returns ranking summaries scoped to the caller's college.
func (s *RankingService) List(ctx context.Context, filter models.RankingFilter, claims *models.JWTClaims) ([]dto.RankingSummary, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	collegeID, err := resolveCollege(filter.CollegeID, claims)
	if err != nil {
		return nil, err
	}
	filter.CollegeID = collegeID

	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rankings")
	}
	return items, nil
}

// Get materializes a ranking with its ordered items and quota context,
// serving from cache when possible.
func (s *RankingService) Get(ctx context.Context, id string, claims *models.JWTClaims) (*dto.RankingDetail, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}

	cacheKey := rankingDetailKey(id)
	if s.cache != nil {
		var cached dto.RankingDetail
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			if err := ensureCollegeAccess(cached.CollegeID, claims); err == nil {
				if s.metrics != nil {
					s.metrics.ObserveCacheLookup(true)
				}
				return &cached, nil
			}
		}
		if s.metrics != nil {
			s.metrics.ObserveCacheLookup(false)
		}
	}

	ranking, err := s.loadRanking(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureAccess(ranking, claims); err != nil {
		return nil, err
	}

	detail, err := s.buildDetail(ctx, ranking)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, detail, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache ranking detail", zap.String("ranking_id", id), zap.Error(err))
		}
	}
	return detail, nil
}

// Create creates a ranking for a sub-type scope, seeding its items from the
// college's applications. Without ForceNew an existing ranking for the same
// scope is returned instead of creating a duplicate.
func (s *RankingService) Create(ctx context.Context, req dto.CreateRankingRequest, claims *models.JWTClaims) (*models.Ranking, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid ranking payload")
	}
	collegeID, err := resolveCollege("", claims)
	if err != nil {
		return nil, err
	}

	semester := canonicalSemester(req.Semester)

	if !req.ForceNew {
		existing, err := s.repo.FindByScope(ctx, req.ScholarshipTypeID, req.SubTypeCode, collegeID, req.AcademicYear, semester)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up existing ranking")
		}
	}

	subType, err := s.subTypes.FindSubType(ctx, req.ScholarshipTypeID, req.SubTypeCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "scholarship sub-type not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sub-type")
	}
	collegeQuota, err := s.subTypes.CollegeQuota(ctx, subType.ID, collegeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load college quota")
	}

	name := req.RankingName
	if name == "" {
		name = fmt.Sprintf("%s %s", subType.Name, req.AcademicYear)
	}

	ranking := &models.Ranking{
		ID:                uuid.NewString(),
		Name:              name,
		ScholarshipTypeID: req.ScholarshipTypeID,
		SubTypeCode:       req.SubTypeCode,
		CollegeID:         collegeID,
		AcademicYear:      req.AcademicYear,
		Semester:          semester,
		TotalQuota:        subType.TotalQuota,
		CollegeQuota:      collegeQuota,
		CreatedAt:         time.Now().UTC(),
	}
	ranking.UpdatedAt = ranking.CreatedAt

	if err := s.repo.Create(ctx, ranking); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create ranking")
	}

	s.emitAudit(ctx, claims, models.AuditActionRankingCreate, ranking.ID, nil, map[string]interface{}{
		"subTypeCode":  ranking.SubTypeCode,
		"academicYear": ranking.AcademicYear,
		"forceNew":     req.ForceNew,
	})
	return ranking, nil
}

// Reorder persists a full new order for the ranking's items. The entries must
// form a dense 1..N permutation covering every item exactly once.
func (s *RankingService) Reorder(ctx context.Context, id string, entries []dto.OrderEntry, claims *models.JWTClaims) error {
	if claims == nil {
		return appErrors.ErrUnauthorized
	}
	ranking, err := s.loadRanking(ctx, id)
	if err != nil {
		return err
	}
	if err := s.ensureAccess(ranking, claims); err != nil {
		return err
	}
	if ranking.IsFinalized {
		return appErrors.Clone(appErrors.ErrFinalized, "ranking is finalized and cannot be reordered")
	}
	if err := validateOrder(entries); err != nil {
		return err
	}

	if err := s.repo.UpdateOrder(ctx, id, entries); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save order")
	}

	s.invalidate(ctx, id)
	s.emitAudit(ctx, claims, models.AuditActionRankingReorder, id, nil, map[string]interface{}{"items": len(entries)})
	return nil
}

// ExecuteDistribution runs the quota-matrix distribution for the ranking.
func (s *RankingService) ExecuteDistribution(ctx context.Context, id string, claims *models.JWTClaims) (*dto.DistributionResult, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	ranking, err := s.loadRanking(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureAccess(ranking, claims); err != nil {
		return nil, err
	}
	if ranking.IsFinalized {
		return nil, appErrors.Clone(appErrors.ErrFinalized, "ranking is finalized, distribution is locked")
	}

	result, err := s.distribute(ctx, ranking)
	if err != nil {
		return nil, err
	}

	s.emitAudit(ctx, claims, models.AuditActionRankingDistribute, id, nil, map[string]interface{}{
		"allocated": result.AllocatedCount,
	})
	return result, nil
}

// Redistribute re-runs distribution for a ranking as a review side effect.
// The caller is responsible for finalize gating.
func (s *RankingService) Redistribute(ctx context.Context, rankingID string) (*dto.DistributionResult, error) {
	ranking, err := s.loadRanking(ctx, rankingID)
	if err != nil {
		return nil, err
	}
	return s.distribute(ctx, ranking)
}

// Finalize locks the ranking. Distribution must have been executed first.
func (s *RankingService) Finalize(ctx context.Context, id string, claims *models.JWTClaims) error {
	if claims == nil {
		return appErrors.ErrUnauthorized
	}
	ranking, err := s.loadRanking(ctx, id)
	if err != nil {
		return err
	}
	if err := s.ensureAccess(ranking, claims); err != nil {
		return err
	}
	if ranking.IsFinalized {
		return appErrors.Clone(appErrors.ErrConflict, "ranking is already finalized")
	}
	if !ranking.DistributionExecuted {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "distribution must be executed before finalizing")
	}

	if err := s.repo.SetFinalized(ctx, id, true); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to finalize ranking")
	}

	s.invalidate(ctx, id)
	s.emitAudit(ctx, claims, models.AuditActionRankingFinalize, id,
		map[string]interface{}{"isFinalized": false}, map[string]interface{}{"isFinalized": true})
	return nil
}

// Unfinalize releases the lock.
func (s *RankingService) Unfinalize(ctx context.Context, id string, claims *models.JWTClaims) error {
	if claims == nil {
		return appErrors.ErrUnauthorized
	}
	ranking, err := s.loadRanking(ctx, id)
	if err != nil {
		return err
	}
	if err := s.ensureAccess(ranking, claims); err != nil {
		return err
	}
	if !ranking.IsFinalized {
		return appErrors.Clone(appErrors.ErrConflict, "ranking is not finalized")
	}

	if err := s.repo.SetFinalized(ctx, id, false); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to unfinalize ranking")
	}

	s.invalidate(ctx, id)
	s.emitAudit(ctx, claims, models.AuditActionRankingUnfinalize, id,
		map[string]interface{}{"isFinalized": true}, map[string]interface{}{"isFinalized": false})
	return nil
}

// Delete removes a ranking and its items.
func (s *RankingService) Delete(ctx context.Context, id string, claims *models.JWTClaims) error {
	if claims == nil {
		return appErrors.ErrUnauthorized
	}
	ranking, err := s.loadRanking(ctx, id)
	if err != nil {
		return err
	}
	if err := s.ensureAccess(ranking, claims); err != nil {
		return err
	}
	if ranking.IsFinalized {
		return appErrors.Clone(appErrors.ErrFinalized, "ranking is finalized and cannot be deleted")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete ranking")
	}

	s.invalidate(ctx, id)
	s.emitAudit(ctx, claims, models.AuditActionRankingDelete, id, map[string]interface{}{"name": ranking.Name}, nil)
	return nil
}

func (s *RankingService) distribute(ctx context.Context, ranking *models.Ranking) (*dto.DistributionResult, error) {
	items, err := s.repo.ListItems(ctx, ranking.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load ranking items")
	}

	allocatedElsewhere, err := s.repo.CountAllocatedElsewhere(ctx,
		ranking.ScholarshipTypeID, ranking.SubTypeCode, ranking.AcademicYear, ranking.Semester, ranking.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to inspect quota usage")
	}

	capacity := ranking.CollegeQuota
	if remaining := ranking.TotalQuota - allocatedElsewhere; remaining < capacity {
		capacity = remaining
	}
	if capacity < 0 {
		capacity = 0
	}

	allocated := make([]string, 0, capacity)
	deallocated := 0
	for _, item := range items {
		keep := false
		if len(allocated) < capacity && item.ReviewStatus != models.ReviewRejected {
			allocated = append(allocated, item.ID)
			keep = true
		}
		if item.IsAllocated && !keep {
			deallocated++
		}
	}

	if err := s.repo.ApplyAllocations(ctx, ranking.ID, allocated); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to apply distribution")
	}

	s.invalidate(ctx, ranking.ID)
	return &dto.DistributionResult{
		RankingID:        ranking.ID,
		AllocatedCount:   len(allocated),
		DeallocatedCount: deallocated,
		TotalQuota:       ranking.TotalQuota,
		CollegeQuota:     ranking.CollegeQuota,
	}, nil
}

func (s *RankingService) buildDetail(ctx context.Context, ranking *models.Ranking) (*dto.RankingDetail, error) {
	items, err := s.repo.ListItems(ctx, ranking.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load ranking items")
	}

	detail := &dto.RankingDetail{
		ID:                   ranking.ID,
		RankingName:          ranking.Name,
		CollegeID:            ranking.CollegeID,
		SubTypeCode:          ranking.SubTypeCode,
		AcademicYear:         ranking.AcademicYear,
		Semester:             ranking.Semester,
		TotalQuota:           ranking.TotalQuota,
		CollegeQuota:         ranking.CollegeQuota,
		IsFinalized:          ranking.IsFinalized,
		DistributionExecuted: ranking.DistributionExecuted,
		Items:                items,
	}

	subType, err := s.subTypes.FindSubType(ctx, ranking.ScholarshipTypeID, ranking.SubTypeCode)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sub-type")
		}
		return detail, nil
	}
	detail.SubTypeMetadata = subType.Metadata

	breakdown, err := s.subTypes.QuotaBreakdown(ctx, subType)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load quota breakdown")
	}
	detail.CollegeQuotaBreakdown = breakdown
	return detail, nil
}

func (s *RankingService) loadRanking(ctx context.Context, id string) (*models.Ranking, error) {
	ranking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "ranking not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load ranking")
	}
	return ranking, nil
}

func (s *RankingService) ensureAccess(ranking *models.Ranking, claims *models.JWTClaims) error {
	return ensureCollegeAccess(ranking.CollegeID, claims)
}

func (s *RankingService) invalidate(ctx context.Context, rankingID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, fmt.Sprintf("ranking:%s:*", rankingID)); err != nil {
		s.logger.Warn("failed to invalidate ranking cache", zap.String("ranking_id", rankingID), zap.Error(err))
	}
}

func (s *RankingService) emitAudit(ctx context.Context, actor *models.JWTClaims, action models.AuditAction, rankingID string, oldPayload, newPayload map[string]interface{}) {
	if s.audit == nil {
		return
	}
	var oldValues, newValues []byte
	if oldPayload != nil {
		oldValues, _ = json.Marshal(oldPayload)
	}
	if newPayload != nil {
		newValues, _ = json.Marshal(newPayload)
	}
	var userID *string
	if actor != nil {
		userID = &actor.UserID
	}
	log := &models.AuditLog{
		UserID:     userID,
		Action:     action,
		Resource:   rankingResource,
		ResourceID: &rankingID,
		OldValues:  oldValues,
		NewValues:  newValues,
		IPAddress:  "system",
		UserAgent:  "ranking-service",
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to record ranking audit", zap.Error(err))
	}
}

// validateOrder checks that entries form a dense 1..N permutation without
// duplicate items.
func validateOrder(entries []dto.OrderEntry) error {
	if len(entries) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "order must not be empty")
	}
	seenItems := make(map[string]struct{}, len(entries))
	seenPositions := make([]bool, len(entries))
	for _, entry := range entries {
		if entry.ItemID == "" {
			return appErrors.Clone(appErrors.ErrValidation, "order entry is missing item_id")
		}
		if _, dup := seenItems[entry.ItemID]; dup {
			return appErrors.Clone(appErrors.ErrInvalidOrder, fmt.Sprintf("item %s appears more than once", entry.ItemID))
		}
		seenItems[entry.ItemID] = struct{}{}
		if entry.Position < 1 || entry.Position > len(entries) {
			return appErrors.Clone(appErrors.ErrInvalidOrder, fmt.Sprintf("position %d is out of range", entry.Position))
		}
		if seenPositions[entry.Position-1] {
			return appErrors.Clone(appErrors.ErrInvalidOrder, fmt.Sprintf("position %d appears more than once", entry.Position))
		}
		seenPositions[entry.Position-1] = true
	}
	return nil
}

// canonicalSemester lower-cases the semester and collapses the year-round
// sentinel to an explicit absence.
func canonicalSemester(semester *string) *string {
	if semester == nil {
		return nil
	}
	lowered := strings.ToLower(strings.TrimSpace(*semester))
	if lowered == "" || lowered == models.SemesterYearRound {
		return nil
	}
	return &lowered
}

func resolveCollege(requested string, claims *models.JWTClaims) (string, error) {
	switch claims.Role {
	case models.RoleSuperAdmin:
		if requested != "" {
			return requested, nil
		}
		if claims.CollegeID != nil {
			return *claims.CollegeID, nil
		}
		return "", appErrors.Clone(appErrors.ErrValidation, "college_id is required")
	case models.RoleCollegeAdmin, models.RoleProfessor:
		if claims.CollegeID == nil || *claims.CollegeID == "" {
			return "", appErrors.Clone(appErrors.ErrForbidden, "account is not bound to a college")
		}
		if requested != "" && requested != *claims.CollegeID {
			return "", appErrors.ErrForbidden
		}
		return *claims.CollegeID, nil
	default:
		return "", appErrors.ErrForbidden
	}
}

func ensureCollegeAccess(collegeID string, claims *models.JWTClaims) error {
	if claims == nil {
		return appErrors.ErrUnauthorized
	}
	if claims.Role == models.RoleSuperAdmin {
		return nil
	}
	if claims.CollegeID != nil && *claims.CollegeID == collegeID {
		return nil
	}
	return appErrors.ErrForbidden
}
