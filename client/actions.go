package client

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Notifier receives the user-facing outcome of an action. Implementations
// typically map onto a toast system.
type Notifier interface {
	Success(message string)
	Info(message string)
	Error(message string)
}

// Notification messages. Partial success on create is deliberately distinct
// from both full success and full failure.
const (
	MsgRankingCreated           = "Ranking created"
	MsgRankingCreatedLoadFailed = "Ranking created, but loading it failed. Refresh to continue."
	MsgRankingCreateFailed      = "Failed to create ranking"
	MsgRankingFinalized         = "Ranking finalized"
	MsgRankingUnfinalized       = "Ranking unfinalized"
	MsgRankingDeleted           = "Ranking deleted"
	MsgRankingLocked            = "Ranking is finalized and cannot be changed"
	MsgDistributionExecuted     = "Distribution executed: %d of %d slots allocated"
	MsgReviewSaved              = "Review saved"
	MsgReviewRedistributed      = "Review saved. Distribution re-run: %d of %d slots allocated"
	MsgReviewBlocked            = "Review saved. Roster is already finalized, distribution unchanged"
)

// Client-side gate errors.
var (
	ErrNoSelection = errors.New("no ranking selected")
	ErrFinalized   = errors.New("ranking is finalized")
)

// Defaults supplies the system "current" scope used when the caller has not
// explicitly chosen one: academic year, semester and the scholarship
// type/sub-type the portal is currently reviewing.
type Defaults struct {
	AcademicYear      string
	Semester          *string
	ScholarshipTypeID string
	SubTypeCode       string
}

type actionsGateway interface {
	CreateRanking(ctx context.Context, req CreateRankingRequest) (*RankingSummary, error)
	ExecuteDistribution(ctx context.Context, rankingID string) (*DistributionResult, error)
	Finalize(ctx context.Context, rankingID string) error
	Unfinalize(ctx context.Context, rankingID string) error
	DeleteRanking(ctx context.Context, rankingID string) error
	SubmitReview(ctx context.Context, applicationID string, req SubmitReviewRequest) (*ReviewOutcome, error)
}

// Actions orchestrates the mutating ranking workflows: each one is a
// request/refresh/notify triangle over the gateway, store and notifier.
type Actions struct {
	gateway  actionsGateway
	store    *Store
	sync     *SyncController
	notifier Notifier
	logger   *zap.Logger
	defaults Defaults
}

// NewActions builds the action layer.
func NewActions(gateway actionsGateway, store *Store, sync *SyncController, notifier Notifier, logger *zap.Logger, defaults Defaults) *Actions {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Actions{
		gateway:  gateway,
		store:    store,
		sync:     sync,
		notifier: notifier,
		logger:   logger,
		defaults: defaults,
	}
}

// Reorder applies a new item order optimistically and schedules its debounced
// persistence. Rejected locally when the ranking is finalized, before any
// timer is armed or request issued.
func (a *Actions) Reorder(orderedItemIDs []string) error {
	detail := a.store.Detail()
	if detail == nil {
		return ErrNoSelection
	}
	if detail.IsFinalized {
		a.notifier.Error(MsgRankingLocked)
		return ErrFinalized
	}

	entries, err := a.store.ApplyOrder(orderedItemIDs)
	if err != nil {
		return err
	}
	a.sync.Reorder(detail.ID, entries)
	return nil
}

// CreateRanking creates a ranking, then refreshes the list and selects the
// new ranking. A create that succeeds but whose detail fails to load is
// reported distinctly from a failed create.
func (a *Actions) CreateRanking(ctx context.Context, req CreateRankingRequest) error {
	if req.AcademicYear == "" {
		req.AcademicYear = a.defaults.AcademicYear
	}
	if req.Semester == nil {
		req.Semester = a.defaults.Semester
	}
	if req.ScholarshipTypeID == "" {
		req.ScholarshipTypeID = a.defaults.ScholarshipTypeID
	}
	if req.SubTypeCode == "" {
		req.SubTypeCode = a.defaults.SubTypeCode
	}

	created, err := a.gateway.CreateRanking(ctx, req)
	if err != nil {
		a.notifier.Error(MsgRankingCreateFailed)
		return err
	}

	if err := a.store.RefreshList(ctx); err != nil {
		a.notifier.Info(MsgRankingCreatedLoadFailed)
		return nil
	}
	if err := a.store.Select(ctx, created.ID); err != nil {
		a.notifier.Info(MsgRankingCreatedLoadFailed)
		return nil
	}

	a.notifier.Success(MsgRankingCreated)
	return nil
}

// ExecuteDistribution runs distribution for the selected ranking. Rejected
// locally when finalized.
func (a *Actions) ExecuteDistribution(ctx context.Context, rankingID string) error {
	if detail := a.store.Detail(); detail != nil && detail.ID == rankingID && detail.IsFinalized {
		a.notifier.Error(MsgRankingLocked)
		return ErrFinalized
	}

	result, err := a.gateway.ExecuteDistribution(ctx, rankingID)
	if err != nil {
		a.notifier.Error(errorMessage(err))
		return err
	}

	if err := a.store.RefreshDetail(ctx); err != nil {
		a.logger.Warn("failed to refresh detail after distribution", zap.Error(err))
	}
	a.notifier.Success(fmt.Sprintf(MsgDistributionExecuted, result.AllocatedCount, result.TotalQuota))
	return nil
}

// Finalize locks the ranking. On success the list is refreshed and the
// locally held detail, when it is the toggled ranking, is patched instead of
// re-fetched.
func (a *Actions) Finalize(ctx context.Context, rankingID string) error {
	if err := a.gateway.Finalize(ctx, rankingID); err != nil {
		a.notifier.Error(errorMessage(err))
		return err
	}

	if err := a.store.RefreshList(ctx); err != nil {
		a.logger.Warn("failed to refresh list after finalize", zap.Error(err))
	}
	a.store.PatchFinalized(rankingID, true)
	a.notifier.Success(MsgRankingFinalized)
	return nil
}

// Unfinalize releases the lock, mirroring Finalize.
func (a *Actions) Unfinalize(ctx context.Context, rankingID string) error {
	if err := a.gateway.Unfinalize(ctx, rankingID); err != nil {
		a.notifier.Error(errorMessage(err))
		return err
	}

	if err := a.store.RefreshList(ctx); err != nil {
		a.logger.Warn("failed to refresh list after unfinalize", zap.Error(err))
	}
	a.store.PatchFinalized(rankingID, false)
	a.notifier.Success(MsgRankingUnfinalized)
	return nil
}

// Delete removes the ranking. When it is the selected one, the selection and
// detail are cleared before the list refresh so the view never renders stale
// detail for a ranking that no longer exists.
func (a *Actions) Delete(ctx context.Context, rankingID string) error {
	if detail := a.store.Detail(); detail != nil && detail.ID == rankingID && detail.IsFinalized {
		a.notifier.Error(MsgRankingLocked)
		return ErrFinalized
	}

	if err := a.gateway.DeleteRanking(ctx, rankingID); err != nil {
		a.notifier.Error(errorMessage(err))
		return err
	}

	if a.store.SelectedID() == rankingID {
		a.store.ClearSelection()
	}
	if err := a.store.RefreshList(ctx); err != nil {
		a.logger.Warn("failed to refresh list after delete", zap.Error(err))
	}
	a.notifier.Success(MsgRankingDeleted)
	return nil
}

// SubmitReview records a review decision and interprets the redistribution
// side effect the server may have run: one of three mutually exclusive
// notifications, then an unconditional fan-out refresh of detail, list and
// applications to converge on server truth.
func (a *Actions) SubmitReview(ctx context.Context, applicationID string, req SubmitReviewRequest) error {
	if detail := a.store.Detail(); detail != nil && detail.IsFinalized && detailContainsApplication(detail, applicationID) {
		a.notifier.Error(MsgRankingLocked)
		return ErrFinalized
	}

	outcome, err := a.gateway.SubmitReview(ctx, applicationID, req)
	if err != nil {
		a.notifier.Error(errorMessage(err))
		return err
	}

	switch info := outcome.RedistributionInfo; {
	case info != nil && info.Blocked:
		a.notifier.Info(MsgReviewBlocked)
	case info != nil && info.Executed:
		a.notifier.Success(fmt.Sprintf(MsgReviewRedistributed, info.AllocatedCount, info.TotalQuota))
	default:
		a.notifier.Success(MsgReviewSaved)
	}

	if err := a.store.RefreshDetail(ctx); err != nil {
		a.logger.Warn("failed to refresh detail after review", zap.Error(err))
	}
	if err := a.store.RefreshList(ctx); err != nil {
		a.logger.Warn("failed to refresh list after review", zap.Error(err))
	}
	if err := a.store.RefreshApplications(ctx); err != nil {
		a.logger.Warn("failed to refresh applications after review", zap.Error(err))
	}
	return nil
}

func detailContainsApplication(detail *RankingDetail, applicationID string) bool {
	for _, item := range detail.Items {
		if item.ApplicationID == applicationID {
			return true
		}
	}
	return false
}

func errorMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return "Request failed"
}
