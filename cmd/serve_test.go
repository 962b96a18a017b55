package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crestline-research/finmap/internal/model"
	"github.com/crestline-research/finmap/internal/registry"
	"github.com/crestline-research/finmap/internal/store"
)

// newTestAPI builds a router over the default registry and a throwaway
// sqlite store.
func newTestAPI(t *testing.T) http.Handler {
	t.Helper()
	cfg = testConfig(t)

	reg, err := registry.Default()
	require.NoError(t, err)

	st, err := store.NewSQLite(cfg.Store.Path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	return newRouter(&apiServer{engine: cfg.Engine, reg: reg, st: st})
}

func TestServeHealth(t *testing.T) {
	router := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestServeTargets(t *testing.T) {
	router := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/targets", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var defs []model.TargetDefinition
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &defs))
	assert.NotEmpty(t, defs)

	names := make(map[string]bool)
	for _, d := range defs {
		names[d.Name] = true
	}
	assert.True(t, names["Total Assets"])
	assert.True(t, names["Revenue"])
}

func TestServeCoverage(t *testing.T) {
	router := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/coverage", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var cov registryCoverage
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &cov))
	assert.Greater(t, cov.Targets, 0)
	assert.Greater(t, cov.WithFormula, 0)
	assert.NotEmpty(t, cov.ByStatement)
}

func TestServeAnalyze(t *testing.T) {
	router := newTestAPI(t)

	payload := analyzeRequest{
		Company: "Acme Mills Ltd",
		Rows: []model.RawRow{
			{Label: "Total Assets", Statement: model.BalanceSheet, Values: map[string]float64{"202303": 4500, "202403": 5000}},
			{Label: "Revenue from Operations", Statement: model.ProfitLoss, Values: map[string]float64{"202303": 10000, "202403": 12000}},
			{Label: "Profit After Tax", Values: map[string]float64{"202303": 500, "202403": 600}},
		},
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp analyzeResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Acme Mills Ltd", resp.Company)
	assert.Equal(t, []string{"202303", "202403"}, resp.Years)
	require.NotNil(t, resp.Analysis)
	assert.NotEmpty(t, resp.Resolutions)

	// The statementless PAT row is classified by label and still maps.
	var patMapped bool
	for _, a := range resp.Mapping {
		if a.SourceLabel == "Profit After Tax" {
			patMapped = true
		}
	}
	assert.True(t, patMapped, "expected the classified PAT row to map")
}

func TestServeAnalyzeEmptyRows(t *testing.T) {
	router := newTestAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", bytes.NewReader([]byte(`{"company":"x","rows":[]}`)))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "rows are required")
}

func TestServeAnalyzeBadBody(t *testing.T) {
	router := newTestAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", bytes.NewReader([]byte("{nope")))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestServeRunsEmpty(t *testing.T) {
	router := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/runs", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var runs []model.RunRecord
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &runs))
	assert.Empty(t, runs)
}

func TestServeRunsBadLimit(t *testing.T) {
	router := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/runs?limit=zero", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestServeGetRunNotFound(t *testing.T) {
	router := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/runs/no-such-run", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "run not found")
}

func TestServeGetRunRoundTrip(t *testing.T) {
	cfg = testConfig(t)

	reg, err := registry.Default()
	require.NoError(t, err)
	st, err := store.NewSQLite(cfg.Store.Path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	ctx := context.Background()
	require.NoError(t, st.Migrate(ctx))

	dir := writeCompanyDir(t, t.TempDir(), "acme-mills")
	files, err := collectFiles([]string{dir})
	require.NoError(t, err)
	result, err := runPipeline("Acme Mills Ltd", files)
	require.NoError(t, err)
	runID, err := saveRun(ctx, st, result)
	require.NoError(t, err)

	router := newRouter(&apiServer{engine: cfg.Engine, reg: reg, st: st})

	req := httptest.NewRequest(http.MethodGet, "/v1/runs/"+runID, nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var detail runDetail
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &detail))
	require.NotNil(t, detail.Run)
	assert.Equal(t, "Acme Mills Ltd", detail.Run.Company)
	assert.NotEmpty(t, detail.Mappings)
	assert.NotEmpty(t, detail.Resolutions)
}
