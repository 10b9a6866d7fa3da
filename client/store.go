package client

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// SemesterYearRound is the legacy sentinel some responses carry for rankings
// spanning the whole academic year. Normalization collapses it to an absent
// semester.
const SemesterYearRound = "yearly"

// NormalizeSemester lower-cases a semester value and collapses the year-round
// sentinel to an explicit absence. Idempotent.
func NormalizeSemester(semester *string) *string {
	if semester == nil {
		return nil
	}
	lowered := strings.ToLower(strings.TrimSpace(*semester))
	if lowered == "" || lowered == SemesterYearRound {
		return nil
	}
	return &lowered
}

// NormalizeRanking canonicalizes a fetched ranking detail in place.
func NormalizeRanking(detail *RankingDetail) {
	if detail == nil {
		return
	}
	detail.Semester = NormalizeSemester(detail.Semester)
	if detail.Items == nil {
		detail.Items = []RankingItem{}
	}
	if detail.CollegeQuotaBreakdown == nil {
		detail.CollegeQuotaBreakdown = []CollegeQuotaRow{}
	}
}

type storeGateway interface {
	ListRankings(ctx context.Context, opts RankingListOptions) ([]RankingSummary, error)
	GetRanking(ctx context.Context, id string) (*RankingDetail, error)
	ListApplications(ctx context.Context, opts ApplicationListOptions) (*ApplicationPage, error)
}

// Store holds the selected ranking, its materialized detail and the shared
// list state the review screens render from. A failed fetch leaves prior
// state in place so a transient error never blanks the view.
type Store struct {
	mu      sync.RWMutex
	gateway storeGateway
	logger  *zap.Logger

	selectedID   string
	detail       *RankingDetail
	summaries    []RankingSummary
	applications []Application
	loading      bool

	listOptions RankingListOptions
	appOptions  ApplicationListOptions
}

// NewStore builds a Store over the gateway.
func NewStore(gateway storeGateway, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{gateway: gateway, logger: logger}
}

// SetListOptions fixes the filters used by RefreshList and RefreshApplications.
func (s *Store) SetListOptions(rankings RankingListOptions, applications ApplicationListOptions) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listOptions = rankings
	s.appOptions = applications
}

// Select switches the selection to the given ranking and fetches its detail.
// On failure the previous detail stays in place and the error is returned.
func (s *Store) Select(ctx context.Context, id string) error {
	s.mu.Lock()
	s.selectedID = id
	s.loading = true
	s.mu.Unlock()

	detail, err := s.gateway.GetRanking(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if s.selectedID != id {
		// Selection moved on while the fetch was in flight.
		return nil
	}
	if err != nil {
		s.logger.Warn("failed to load ranking detail", zap.String("ranking_id", id), zap.Error(err))
		return err
	}
	NormalizeRanking(detail)
	s.detail = detail
	return nil
}

// ClearSelection drops the selection and its materialized detail.
func (s *Store) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedID = ""
	s.detail = nil
}

// SelectedID returns the current selection, empty when none.
func (s *Store) SelectedID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedID
}

// Detail returns the materialized detail of the selected ranking, nil when
// none is loaded.
func (s *Store) Detail() *RankingDetail {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.detail
}

// Loading reports whether a detail fetch is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Summaries returns the last fetched ranking list.
func (s *Store) Summaries() []RankingSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summaries
}

// Applications returns the last fetched application list.
func (s *Store) Applications() []Application {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.applications
}

// RefreshList re-fetches the ranking list, keeping prior state on failure.
func (s *Store) RefreshList(ctx context.Context) error {
	s.mu.RLock()
	opts := s.listOptions
	s.mu.RUnlock()

	summaries, err := s.gateway.ListRankings(ctx, opts)
	if err != nil {
		s.logger.Warn("failed to refresh ranking list", zap.Error(err))
		return err
	}
	for i := range summaries {
		summaries[i].Semester = NormalizeSemester(summaries[i].Semester)
	}

	s.mu.Lock()
	s.summaries = summaries
	s.mu.Unlock()
	return nil
}

// RefreshApplications re-fetches the application list, keeping prior state on
// failure.
func (s *Store) RefreshApplications(ctx context.Context) error {
	s.mu.RLock()
	opts := s.appOptions
	s.mu.RUnlock()

	page, err := s.gateway.ListApplications(ctx, opts)
	if err != nil {
		s.logger.Warn("failed to refresh applications", zap.Error(err))
		return err
	}

	s.mu.Lock()
	s.applications = page.Items
	s.mu.Unlock()
	return nil
}

// RefreshDetail re-fetches the selected ranking's detail. No-op without a
// selection.
func (s *Store) RefreshDetail(ctx context.Context) error {
	id := s.SelectedID()
	if id == "" {
		return nil
	}
	return s.Select(ctx, id)
}

// PatchFinalized flips the finalize flag locally on the matching summary and,
// when it is the selected ranking, on the materialized detail. Saves a round
// trip for a field whose new value the caller already knows.
func (s *Store) PatchFinalized(id string, finalized bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.summaries {
		if s.summaries[i].ID == id {
			s.summaries[i].IsFinalized = finalized
		}
	}
	if s.detail != nil && s.detail.ID == id {
		s.detail.IsFinalized = finalized
	}
}

// ApplyOrder rearranges the in-memory items to match orderedItemIDs and
// returns the persistence payload: {item_id, position} pairs where position is
// the 1-based index in the new array order. The ids must cover the current
// items exactly.
func (s *Store) ApplyOrder(orderedItemIDs []string) ([]OrderEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.detail == nil {
		return nil, fmt.Errorf("no ranking selected")
	}
	if len(orderedItemIDs) != len(s.detail.Items) {
		return nil, fmt.Errorf("order covers %d items, ranking has %d", len(orderedItemIDs), len(s.detail.Items))
	}

	byID := make(map[string]RankingItem, len(s.detail.Items))
	for _, item := range s.detail.Items {
		byID[item.ItemID] = item
	}

	reordered := make([]RankingItem, 0, len(orderedItemIDs))
	entries := make([]OrderEntry, 0, len(orderedItemIDs))
	for i, id := range orderedItemIDs {
		item, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("unknown item %s in order", id)
		}
		delete(byID, id)
		item.RankPosition = i + 1
		reordered = append(reordered, item)
		entries = append(entries, OrderEntry{ItemID: id, Position: i + 1})
	}

	s.detail.Items = reordered
	return entries, nil
}
