package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// TokenProvider supplies the bearer token attached to every request. Clear is
// invoked when the server rejects the credentials so the next request can
// re-authenticate.
type TokenProvider interface {
	AccessToken() string
	Clear()
}

// Gateway is the typed HTTP boundary to the college review endpoints.
type Gateway struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenProvider
	logger     *zap.Logger
}

// GatewayConfig configures a Gateway.
type GatewayConfig struct {
	BaseURL    string
	HTTPClient *http.Client
	Tokens     TokenProvider
	Logger     *zap.Logger
}

// NewGateway builds a Gateway. BaseURL should include the API prefix, e.g.
// "https://portal.example.edu/api/v1".
func NewGateway(cfg GatewayConfig) *Gateway {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		tokens:     cfg.Tokens,
		logger:     logger,
	}
}

// RankingListOptions filter the ranking list endpoint.
type RankingListOptions struct {
	AcademicYear string
	Semester     string
}

// ApplicationListOptions filter the application list endpoint.
type ApplicationListOptions struct {
	SubTypeCode  string
	AcademicYear string
	Semester     string
	ReviewStatus string
	Page         int
	Size         int
}

// ListRankings fetches ranking summaries.
func (g *Gateway) ListRankings(ctx context.Context, opts RankingListOptions) ([]RankingSummary, error) {
	query := url.Values{}
	if opts.AcademicYear != "" {
		query.Set("academic_year", opts.AcademicYear)
	}
	if opts.Semester != "" {
		query.Set("semester", opts.Semester)
	}

	env, err := g.do(ctx, http.MethodGet, "/college-review/rankings", query, nil)
	if err != nil {
		return nil, err
	}
	var summaries []RankingSummary
	if err := env.Decode(&summaries); err != nil {
		return nil, fmt.Errorf("decode ranking list: %w", err)
	}
	return summaries, nil
}

// GetRanking fetches a ranking detail.
func (g *Gateway) GetRanking(ctx context.Context, id string) (*RankingDetail, error) {
	env, err := g.do(ctx, http.MethodGet, "/college-review/rankings/"+id, nil, nil)
	if err != nil {
		return nil, err
	}
	var detail RankingDetail
	if err := env.Decode(&detail); err != nil {
		return nil, fmt.Errorf("decode ranking detail: %w", err)
	}
	return &detail, nil
}

// CreateRanking creates a ranking, or returns the existing one for the same
// scope unless ForceNew is set.
func (g *Gateway) CreateRanking(ctx context.Context, req CreateRankingRequest) (*RankingSummary, error) {
	env, err := g.do(ctx, http.MethodPost, "/college-review/rankings", nil, req)
	if err != nil {
		return nil, err
	}
	var created RankingSummary
	if err := env.Decode(&created); err != nil {
		return nil, fmt.Errorf("decode created ranking: %w", err)
	}
	return &created, nil
}

// SaveOrder persists a complete new item order for the ranking.
func (g *Gateway) SaveOrder(ctx context.Context, rankingID string, entries []OrderEntry) error {
	_, err := g.do(ctx, http.MethodPut, "/college-review/rankings/"+rankingID+"/order", nil, entries)
	return err
}

// ExecuteDistribution runs the quota-matrix distribution for the ranking.
func (g *Gateway) ExecuteDistribution(ctx context.Context, rankingID string) (*DistributionResult, error) {
	env, err := g.do(ctx, http.MethodPost, "/college-review/rankings/"+rankingID+"/execute-matrix-distribution", nil, nil)
	if err != nil {
		return nil, err
	}
	var result DistributionResult
	if err := env.Decode(&result); err != nil {
		return nil, fmt.Errorf("decode distribution result: %w", err)
	}
	return &result, nil
}

// Finalize locks the ranking.
func (g *Gateway) Finalize(ctx context.Context, rankingID string) error {
	_, err := g.do(ctx, http.MethodPost, "/college-review/rankings/"+rankingID+"/finalize", nil, nil)
	return err
}

// Unfinalize releases the lock.
func (g *Gateway) Unfinalize(ctx context.Context, rankingID string) error {
	_, err := g.do(ctx, http.MethodPost, "/college-review/rankings/"+rankingID+"/unfinalize", nil, nil)
	return err
}

// DeleteRanking deletes the ranking and its items.
func (g *Gateway) DeleteRanking(ctx context.Context, rankingID string) error {
	_, err := g.do(ctx, http.MethodDelete, "/college-review/rankings/"+rankingID, nil, nil)
	return err
}

// SubmitReview records a review decision for an application.
func (g *Gateway) SubmitReview(ctx context.Context, applicationID string, req SubmitReviewRequest) (*ReviewOutcome, error) {
	env, err := g.do(ctx, http.MethodPost, "/college-review/applications/"+applicationID+"/review", nil, req)
	if err != nil {
		return nil, err
	}
	var outcome ReviewOutcome
	if err := env.Decode(&outcome); err != nil {
		return nil, fmt.Errorf("decode review outcome: %w", err)
	}
	return &outcome, nil
}

// ListApplications fetches a page of applications under review.
func (g *Gateway) ListApplications(ctx context.Context, opts ApplicationListOptions) (*ApplicationPage, error) {
	query := url.Values{}
	if opts.SubTypeCode != "" {
		query.Set("sub_type_code", opts.SubTypeCode)
	}
	if opts.AcademicYear != "" {
		query.Set("academic_year", opts.AcademicYear)
	}
	if opts.Semester != "" {
		query.Set("semester", opts.Semester)
	}
	if opts.ReviewStatus != "" {
		query.Set("review_status", opts.ReviewStatus)
	}
	if opts.Page > 0 {
		query.Set("page", fmt.Sprintf("%d", opts.Page))
	}
	if opts.Size > 0 {
		query.Set("size", fmt.Sprintf("%d", opts.Size))
	}

	env, err := g.do(ctx, http.MethodGet, "/college-review/applications", query, nil)
	if err != nil {
		return nil, err
	}
	var page ApplicationPage
	if err := env.Decode(&page); err != nil {
		return nil, fmt.Errorf("decode application page: %w", err)
	}
	return &page, nil
}

func (g *Gateway) do(ctx context.Context, method, path string, query url.Values, payload interface{}) (*Envelope, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	endpoint := g.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if g.tokens != nil {
		if token := g.tokens.AccessToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	res, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch res.StatusCode {
	case http.StatusUnauthorized:
		if g.tokens != nil {
			g.tokens.Clear()
		}
	case http.StatusForbidden, http.StatusTooManyRequests:
		g.logger.Warn("request rejected",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", res.StatusCode))
	}

	env, decodeErr := DecodeEnvelope(raw)
	if decodeErr != nil {
		if res.StatusCode >= 400 {
			return nil, &APIError{StatusCode: res.StatusCode}
		}
		return nil, decodeErr
	}

	if !env.Success || res.StatusCode >= 400 {
		return nil, &APIError{StatusCode: res.StatusCode, Message: env.Message, Errors: env.Errors}
	}
	return env, nil
}
