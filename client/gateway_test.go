package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tokenStub struct {
	mu      sync.Mutex
	token   string
	cleared bool
}

func (t *tokenStub) AccessToken() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.token
}

func (t *tokenStub) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.token = ""
	t.cleared = true
}

func newTestGateway(t *testing.T, handler http.HandlerFunc) (*Gateway, *tokenStub) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	tokens := &tokenStub{token: "token-1"}
	gateway := NewGateway(GatewayConfig{BaseURL: server.URL + "/api/v1", Tokens: tokens})
	return gateway, tokens
}

func TestGatewayListRankingsSendsBearerToken(t *testing.T) {
	gateway, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/college-review/rankings", r.URL.Path)
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		assert.Equal(t, "2026/2027", r.URL.Query().Get("academic_year"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"message":"ok","data":[{"id":"r1","ranking_name":"Merit"}]}`))
	})

	summaries, err := gateway.ListRankings(context.Background(), RankingListOptions{AcademicYear: "2026/2027"})
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "r1", summaries[0].ID)
}

func TestGatewayListQueryKeysAreSnakeCase(t *testing.T) {
	gateway, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/college-review/rankings":
			assert.Equal(t, "2026/2027", r.URL.Query().Get("academic_year"))
			assert.Equal(t, "odd", r.URL.Query().Get("semester"))
			_, _ = w.Write([]byte(`{"success":true,"message":"ok","data":[]}`))
		case "/api/v1/college-review/applications":
			assert.Equal(t, "merit", r.URL.Query().Get("sub_type_code"))
			assert.Equal(t, "2026/2027", r.URL.Query().Get("academic_year"))
			assert.Equal(t, "PENDING", r.URL.Query().Get("review_status"))
			_, _ = w.Write([]byte(`{"success":true,"message":"ok","data":{"items":[],"total":0,"page":1,"size":50,"pages":0}}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	_, err := gateway.ListRankings(context.Background(), RankingListOptions{AcademicYear: "2026/2027", Semester: "odd"})
	require.NoError(t, err)
	_, err = gateway.ListApplications(context.Background(), ApplicationListOptions{
		SubTypeCode:  "merit",
		AcademicYear: "2026/2027",
		ReviewStatus: "PENDING",
	})
	require.NoError(t, err)
}

func TestGatewayToleratesLegacyBareArray(t *testing.T) {
	gateway, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"r1"},{"id":"r2"}]`))
	})

	summaries, err := gateway.ListRankings(context.Background(), RankingListOptions{})
	require.NoError(t, err)
	assert.Len(t, summaries, 2)
}

func TestGatewayToleratesLegacyBareObject(t *testing.T) {
	gateway, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"created-1","ranking_name":"Merit 2026"}`))
	})

	created, err := gateway.CreateRanking(context.Background(), CreateRankingRequest{SubTypeCode: "merit"})
	require.NoError(t, err)
	assert.Equal(t, "created-1", created.ID)
}

func TestGatewayEnvelopeFailureSurfacesMessage(t *testing.T) {
	gateway, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"success":false,"message":"ranking is finalized"}`))
	})

	err := gateway.SaveOrder(context.Background(), "r1", []OrderEntry{{ItemID: "a", Position: 1}})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "ranking is finalized", apiErr.Message)
}

func TestGatewayUnauthorizedClearsCredentials(t *testing.T) {
	gateway, tokens := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"success":false,"message":"invalid token"}`))
	})

	_, err := gateway.GetRanking(context.Background(), "r1")
	require.Error(t, err)
	assert.True(t, tokens.cleared)
	assert.Empty(t, tokens.AccessToken())
}

func TestGatewaySaveOrderPayload(t *testing.T) {
	var body []byte
	gateway, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/v1/college-review/rankings/r1/order", r.URL.Path)
		body, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{"success":true,"message":"order saved"}`))
	})

	err := gateway.SaveOrder(context.Background(), "r1", []OrderEntry{
		{ItemID: "c", Position: 1},
		{ItemID: "a", Position: 2},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"item_id":"c","position":1},{"item_id":"a","position":2}]`, string(body))
}

func TestGatewaySubmitReviewDecodesRedistributionInfo(t *testing.T) {
	gateway, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/college-review/applications/app-1/review", r.URL.Path)
		_, _ = w.Write([]byte(`{"success":true,"message":"review recorded","data":{"application":{"id":"app-1","review_status":"APPROVED"},"redistribution_info":{"executed":true,"allocated_count":4,"total_quota":10}}}`))
	})

	outcome, err := gateway.SubmitReview(context.Background(), "app-1", SubmitReviewRequest{Recommendation: "APPROVED"})
	require.NoError(t, err)
	require.NotNil(t, outcome.RedistributionInfo)
	assert.True(t, outcome.RedistributionInfo.Executed)
	assert.Equal(t, 4, outcome.RedistributionInfo.AllocatedCount)
	assert.Equal(t, "APPROVED", outcome.Application.ReviewStatus)
}
