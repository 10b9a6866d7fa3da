package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholarhub/college-review-api/internal/dto"
	"github.com/scholarhub/college-review-api/internal/middleware"
	"github.com/scholarhub/college-review-api/internal/models"
	appErrors "github.com/scholarhub/college-review-api/pkg/errors"
	"github.com/scholarhub/college-review-api/pkg/response"
)

type rankingServiceMock struct {
	listResp   []dto.RankingSummary
	getResp    *dto.RankingDetail
	createResp *models.Ranking
	distResp   *dto.DistributionResult
	reorderErr error
	deleteErr  error

	reorderEntries []dto.OrderEntry
	listFilter     models.RankingFilter
}

func (m *rankingServiceMock) List(ctx context.Context, filter models.RankingFilter, claims *models.JWTClaims) ([]dto.RankingSummary, error) {
	m.listFilter = filter
	return m.listResp, nil
}

func (m *rankingServiceMock) Get(ctx context.Context, id string, claims *models.JWTClaims) (*dto.RankingDetail, error) {
	if m.getResp == nil {
		return nil, appErrors.ErrNotFound
	}
	return m.getResp, nil
}

func (m *rankingServiceMock) Create(ctx context.Context, req dto.CreateRankingRequest, claims *models.JWTClaims) (*models.Ranking, error) {
	return m.createResp, nil
}

func (m *rankingServiceMock) Reorder(ctx context.Context, id string, entries []dto.OrderEntry, claims *models.JWTClaims) error {
	m.reorderEntries = entries
	return m.reorderErr
}

func (m *rankingServiceMock) ExecuteDistribution(ctx context.Context, id string, claims *models.JWTClaims) (*dto.DistributionResult, error) {
	return m.distResp, nil
}

func (m *rankingServiceMock) Finalize(ctx context.Context, id string, claims *models.JWTClaims) error {
	return nil
}

func (m *rankingServiceMock) Unfinalize(ctx context.Context, id string, claims *models.JWTClaims) error {
	return nil
}

func (m *rankingServiceMock) Delete(ctx context.Context, id string, claims *models.JWTClaims) error {
	return m.deleteErr
}

type rosterExporterMock struct {
	payload     []byte
	contentType string
	filename    string
}

func (m *rosterExporterMock) Roster(ctx context.Context, rankingID, format string, claims *models.JWTClaims) ([]byte, string, string, error) {
	return m.payload, m.contentType, m.filename, nil
}

func adminClaims() *models.JWTClaims {
	collegeID := "college-1"
	return &models.JWTClaims{UserID: "u1", Role: models.RoleCollegeAdmin, CollegeID: &collegeID}
}

func TestRankingHandlerListReadsSnakeCaseFilters(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &rankingServiceMock{}
	handler := NewRankingHandler(svc, nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/college-review/rankings?academic_year=2026%2F2027&semester=odd", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, adminClaims())

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2026/2027", svc.listFilter.AcademicYear)
	assert.Equal(t, "odd", svc.listFilter.Semester)
}

func TestRankingHandlerGet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewRankingHandler(&rankingServiceMock{getResp: &dto.RankingDetail{ID: "r1", RankingName: "Merit 2026"}}, nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/college-review/rankings/r1", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "r1"}}
	c.Set(middleware.ContextUserKey, adminClaims())

	handler.Get(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	data, ok := envelope.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "r1", data["id"])
}

func TestRankingHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewRankingHandler(&rankingServiceMock{}, nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/college-review/rankings/missing", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "missing"}}
	c.Set(middleware.ContextUserKey, adminClaims())

	handler.Get(c)
	require.Equal(t, http.StatusNotFound, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.False(t, envelope.Success)
}

func TestRankingHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewRankingHandler(&rankingServiceMock{createResp: &models.Ranking{ID: "r1", Name: "Merit 2026"}}, nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(dto.CreateRankingRequest{
		ScholarshipTypeID: "st1",
		SubTypeCode:       "merit",
		AcademicYear:      "2026/2027",
	})
	req, _ := http.NewRequest(http.MethodPost, "/college-review/rankings", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, adminClaims())

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestRankingHandlerReorderInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &rankingServiceMock{}
	handler := NewRankingHandler(svc, nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPut, "/college-review/rankings/r1/order", bytes.NewReader([]byte(`{"not":"an array"}`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "r1"}}
	c.Set(middleware.ContextUserKey, adminClaims())

	handler.Reorder(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, svc.reorderEntries)
}

func TestRankingHandlerReorderPassesEntries(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &rankingServiceMock{}
	handler := NewRankingHandler(svc, nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body := []byte(`[{"item_id":"i2","position":1},{"item_id":"i1","position":2}]`)
	req, _ := http.NewRequest(http.MethodPut, "/college-review/rankings/r1/order", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "r1"}}
	c.Set(middleware.ContextUserKey, adminClaims())

	handler.Reorder(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, svc.reorderEntries, 2)
	assert.Equal(t, "i2", svc.reorderEntries[0].ItemID)
	assert.Equal(t, 1, svc.reorderEntries[0].Position)
}

func TestRankingHandlerReorderFinalized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewRankingHandler(&rankingServiceMock{reorderErr: appErrors.ErrFinalized}, nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body := []byte(`[{"item_id":"i1","position":1}]`)
	req, _ := http.NewRequest(http.MethodPut, "/college-review/rankings/r1/order", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "r1"}}
	c.Set(middleware.ContextUserKey, adminClaims())

	handler.Reorder(c)
	require.Equal(t, http.StatusConflict, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.False(t, envelope.Success)
	assert.Equal(t, "ranking is finalized", envelope.Message)
}

func TestRankingHandlerDistribute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewRankingHandler(&rankingServiceMock{distResp: &dto.DistributionResult{
		RankingID: "r1", AllocatedCount: 4, TotalQuota: 10, CollegeQuota: 4,
	}}, nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/college-review/rankings/r1/execute-matrix-distribution", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "r1"}}
	c.Set(middleware.ContextUserKey, adminClaims())

	handler.Distribute(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	data, ok := envelope.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(4), data["allocated_count"])
}

func TestRankingHandlerExport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewRankingHandler(&rankingServiceMock{}, &rosterExporterMock{
		payload:     []byte("rank,student\n1,Jordan Blake\n"),
		contentType: "text/csv",
		filename:    "ranking-r1.csv",
	})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/college-review/rankings/r1/export?format=csv", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "r1"}}
	c.Set(middleware.ContextUserKey, adminClaims())

	handler.Export(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="ranking-r1.csv"`, w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Body.String(), "Jordan Blake")
}

func TestRankingHandlerExportDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewRankingHandler(&rankingServiceMock{}, nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/college-review/rankings/r1/export", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "r1"}}
	c.Set(middleware.ContextUserKey, adminClaims())

	handler.Export(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
