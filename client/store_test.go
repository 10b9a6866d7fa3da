package client

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gatewayStub struct {
	detail     *RankingDetail
	detailErr  error
	summaries  []RankingSummary
	listErr    error
	page       *ApplicationPage
	pageErr    error
	getCalls   int
	listCalls  int
	pagesCalls int
}

func (g *gatewayStub) ListRankings(ctx context.Context, opts RankingListOptions) ([]RankingSummary, error) {
	g.listCalls++
	if g.listErr != nil {
		return nil, g.listErr
	}
	return g.summaries, nil
}

func (g *gatewayStub) GetRanking(ctx context.Context, id string) (*RankingDetail, error) {
	g.getCalls++
	if g.detailErr != nil {
		return nil, g.detailErr
	}
	copied := *g.detail
	copied.Items = append([]RankingItem(nil), g.detail.Items...)
	return &copied, nil
}

func (g *gatewayStub) ListApplications(ctx context.Context, opts ApplicationListOptions) (*ApplicationPage, error) {
	g.pagesCalls++
	if g.pageErr != nil {
		return nil, g.pageErr
	}
	return g.page, nil
}

func strptr(s string) *string { return &s }

func threeItemDetail() *RankingDetail {
	return &RankingDetail{
		ID:          "R",
		RankingName: "Merit 2026",
		Items: []RankingItem{
			{ItemID: "A", ApplicationID: "app-a", RankPosition: 1},
			{ItemID: "B", ApplicationID: "app-b", RankPosition: 2},
			{ItemID: "C", ApplicationID: "app-c", RankPosition: 3},
		},
	}
}

func TestNormalizeSemester(t *testing.T) {
	assert.Nil(t, NormalizeSemester(nil))
	assert.Nil(t, NormalizeSemester(strptr("yearly")))
	assert.Nil(t, NormalizeSemester(strptr("  YEARLY ")))
	assert.Nil(t, NormalizeSemester(strptr("")))

	got := NormalizeSemester(strptr("ODD"))
	require.NotNil(t, got)
	assert.Equal(t, "odd", *got)
}

func TestNormalizeSemesterIdempotent(t *testing.T) {
	once := NormalizeSemester(strptr("Even"))
	twice := NormalizeSemester(once)
	require.NotNil(t, twice)
	assert.Equal(t, *once, *twice)

	assert.Nil(t, NormalizeSemester(NormalizeSemester(strptr("yearly"))))
}

func TestStoreSelectNormalizesDetail(t *testing.T) {
	detail := threeItemDetail()
	detail.Semester = strptr("Yearly")
	stub := &gatewayStub{detail: detail}
	store := NewStore(stub, nil)

	require.NoError(t, store.Select(context.Background(), "R"))

	got := store.Detail()
	require.NotNil(t, got)
	assert.Nil(t, got.Semester)
	assert.Equal(t, "R", store.SelectedID())
}

func TestStoreSelectKeepsPriorDetailOnFailure(t *testing.T) {
	stub := &gatewayStub{detail: threeItemDetail()}
	store := NewStore(stub, nil)
	require.NoError(t, store.Select(context.Background(), "R"))

	stub.detailErr = errors.New("transient")
	err := store.Select(context.Background(), "R")
	require.Error(t, err)

	got := store.Detail()
	require.NotNil(t, got)
	assert.Equal(t, "R", got.ID)
}

func TestStoreRefreshListKeepsPriorOnFailure(t *testing.T) {
	stub := &gatewayStub{summaries: []RankingSummary{{ID: "R", Semester: strptr("ODD")}}}
	store := NewStore(stub, nil)

	require.NoError(t, store.RefreshList(context.Background()))
	require.Len(t, store.Summaries(), 1)
	require.NotNil(t, store.Summaries()[0].Semester)
	assert.Equal(t, "odd", *store.Summaries()[0].Semester)

	stub.listErr = errors.New("transient")
	require.Error(t, store.RefreshList(context.Background()))
	assert.Len(t, store.Summaries(), 1)
}

func TestStoreApplyOrderProjectsPositionsFromIndex(t *testing.T) {
	stub := &gatewayStub{detail: threeItemDetail()}
	store := NewStore(stub, nil)
	require.NoError(t, store.Select(context.Background(), "R"))

	// Stale rank positions on the items must not leak into the payload.
	entries, err := store.ApplyOrder([]string{"C", "B", "A"})
	require.NoError(t, err)
	assert.Equal(t, []OrderEntry{
		{ItemID: "C", Position: 1},
		{ItemID: "B", Position: 2},
		{ItemID: "A", Position: 3},
	}, entries)

	items := store.Detail().Items
	require.Len(t, items, 3)
	assert.Equal(t, "C", items[0].ItemID)
	assert.Equal(t, 1, items[0].RankPosition)
	assert.Equal(t, "A", items[2].ItemID)
	assert.Equal(t, 3, items[2].RankPosition)
}

func TestStoreApplyOrderRejectsUnknownOrMissingItems(t *testing.T) {
	stub := &gatewayStub{detail: threeItemDetail()}
	store := NewStore(stub, nil)
	require.NoError(t, store.Select(context.Background(), "R"))

	_, err := store.ApplyOrder([]string{"C", "B"})
	assert.Error(t, err)

	_, err = store.ApplyOrder([]string{"C", "B", "Z"})
	assert.Error(t, err)
}

func TestStorePatchFinalized(t *testing.T) {
	stub := &gatewayStub{
		detail:    threeItemDetail(),
		summaries: []RankingSummary{{ID: "R"}, {ID: "other"}},
	}
	store := NewStore(stub, nil)
	require.NoError(t, store.RefreshList(context.Background()))
	require.NoError(t, store.Select(context.Background(), "R"))

	store.PatchFinalized("R", true)

	assert.True(t, store.Detail().IsFinalized)
	assert.True(t, store.Summaries()[0].IsFinalized)
	assert.False(t, store.Summaries()[1].IsFinalized)
}

func TestStoreClearSelection(t *testing.T) {
	stub := &gatewayStub{detail: threeItemDetail()}
	store := NewStore(stub, nil)
	require.NoError(t, store.Select(context.Background(), "R"))

	store.ClearSelection()

	assert.Empty(t, store.SelectedID())
	assert.Nil(t, store.Detail())
}
