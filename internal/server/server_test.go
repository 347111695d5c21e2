package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PortfolioTracker/internal/analysis"
	"PortfolioTracker/internal/collector"
	"PortfolioTracker/internal/model"
	"PortfolioTracker/internal/portfolio"
	"PortfolioTracker/internal/tracker"
)

func newTestServer(t *testing.T, src *collector.MockSource, holdings ...model.Holding) (*Server, *tracker.Session) {
	t.Helper()
	runner := analysis.NewRunner(src, analysis.Options{}, zerolog.Nop())
	session := tracker.NewSession(portfolio.New(holdings...), src, runner, nil, zerolog.Nop())
	return New(Config{Addr: "127.0.0.1:0", Log: zerolog.Nop(), Session: session, Version: "test"}), session
}

func do(s *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, &collector.MockSource{})
	rec := do(s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "test", body["version"])
}

func TestAddHolding(t *testing.T) {
	testCases := []struct {
		name       string
		body       string
		wantStatus int
		wantLen    int
	}{
		{"numeric quantity", `{"ticker":"aapl","quantity":2}`, http.StatusCreated, 1},
		{"string quantity", `{"ticker":"AAPL","quantity":"1.5"}`, http.StatusCreated, 1},
		{"non-numeric quantity", `{"ticker":"AAPL","quantity":"lots"}`, http.StatusBadRequest, 0},
		{"missing quantity", `{"ticker":"AAPL"}`, http.StatusBadRequest, 0},
		{"negative quantity", `{"ticker":"AAPL","quantity":-1}`, http.StatusBadRequest, 0},
		{"empty ticker", `{"ticker":"","quantity":1}`, http.StatusBadRequest, 0},
		{"malformed body", `{"ticker":`, http.StatusBadRequest, 0},
		{"fetch failure", `{"ticker":"DOWN","quantity":1}`, http.StatusBadGateway, 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			src := &collector.MockSource{BasePrice: 50, Fail: map[string]bool{"DOWN": true}}
			s, session := newTestServer(t, src)

			rec := do(s, http.MethodPost, "/api/holdings", tc.body)
			assert.Equal(t, tc.wantStatus, rec.Code, rec.Body.String())
			assert.Len(t, session.Holdings(), tc.wantLen)
			if rec.Code != http.StatusCreated {
				assert.Contains(t, rec.Body.String(), `"error"`)
			}
		})
	}
}

func TestAddHolding_ReturnsSnapshot(t *testing.T) {
	src := &collector.MockSource{Prices: map[string]float64{"AAPL": 100}}
	s, _ := newTestServer(t, src)

	rec := do(s, http.MethodPost, "/api/holdings", `{"ticker":"AAPL","quantity":3}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var snap model.AnalysisSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	require.Len(t, snap.PositionValues, 1)
	assert.Equal(t, "300", snap.TotalValue.String())
}

func TestListHoldings(t *testing.T) {
	s, _ := newTestServer(t, &collector.MockSource{})
	rec := do(s, http.MethodGet, "/api/holdings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestAnalysis(t *testing.T) {
	src := &collector.MockSource{Closes: map[string][]float64{"A": {100, 110}, "B": {50, 49}}}
	s, session := newTestServer(t, src,
		model.Holding{Ticker: "A", Quantity: 1, Price: 110},
		model.Holding{Ticker: "B", Quantity: 1, Price: 49},
	)
	assert.Nil(t, session.Latest())

	rec := do(s, http.MethodGet, "/api/analysis", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Volatility struct {
			Status string  `json:"status"`
			Value  float64 `json:"value"`
		} `json:"volatility"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Volatility.Status)
	assert.InDelta(t, 0.06, body.Volatility.Value, 1e-12)

	first := session.Latest()
	require.NotNil(t, first)
	do(s, http.MethodGet, "/api/analysis", "")
	assert.Same(t, first, session.Latest(), "cached snapshot reused")
	do(s, http.MethodGet, "/api/analysis?refresh=true", "")
	assert.NotSame(t, first, session.Latest())
}

func TestExportImport(t *testing.T) {
	s, session := newTestServer(t, &collector.MockSource{}, model.Holding{Ticker: "MSFT", Quantity: 2, Price: 400})
	require.Equal(t, http.StatusOK, do(s, http.MethodGet, "/api/analysis", "").Code)
	require.NotNil(t, session.Latest())

	rec := do(s, http.MethodGet, "/api/portfolio/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="portfolio.json"`, rec.Header().Get("Content-Disposition"))
	assert.JSONEq(t, `[{"ticker":"MSFT","quantity":2,"price":400}]`, rec.Body.String())

	rec = do(s, http.MethodPost, "/api/portfolio/import", `{"not":"an array"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, session.Holdings(), 1)

	rec = do(s, http.MethodPost, "/api/portfolio/import", `[{"ticker":"btc-usd","quantity":0.5,"price":60000}]`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []model.Holding{{Ticker: "BTC-USD", Quantity: 0.5, Price: 60000}}, session.Holdings())

	rec = do(s, http.MethodGet, "/api/analysis", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var snap model.AnalysisSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	require.Len(t, snap.PositionValues, 1)
	assert.Equal(t, "BTC-USD", snap.PositionValues[0].Ticker, "analysis reflects the imported holdings")
}

func TestCORSPreflight(t *testing.T) {
	s, _ := newTestServer(t, &collector.MockSource{})
	req := httptest.NewRequest(http.MethodOptions, "/api/holdings", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
