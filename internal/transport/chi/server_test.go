package chi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kailas-cloud/jdih-search/internal/domain"
	healthuc "github.com/kailas-cloud/jdih-search/internal/usecase/health"
	searchuc "github.com/kailas-cloud/jdih-search/internal/usecase/search"
)

type fakeSearcher struct {
	resp  searchuc.Response
	err   error
	query string
}

func (f *fakeSearcher) Search(_ context.Context, query string) (searchuc.Response, error) {
	f.query = query
	return f.resp, f.err
}

type fakeHealth struct{ report healthuc.Report }

func (f fakeHealth) Check(context.Context) healthuc.Report { return f.report }

func newTestRouter(s Searcher, h HealthChecker, opts RouterOptions) http.Handler {
	return NewRouter(NewServer(s, h, zap.NewNop()), zap.NewNop(), opts)
}

func healthy() fakeHealth {
	return fakeHealth{report: healthuc.Report{Status: healthuc.Healthy, Checks: map[string]healthuc.CheckResult{"index": healthuc.CheckOK}}}
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/process", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestProcess(t *testing.T) {
	s := &fakeSearcher{resp: searchuc.Response{IDs: []int64{3, 20, 21}}}
	rec := post(t, newTestRouter(s, healthy(), RouterOptions{}), `{"search":"pajak daerah"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.JSONEq(t, `{"results":[3,20,21]}`, rec.Body.String())
	assert.Equal(t, "pajak daerah", s.query)
}

func TestProcess_EmptyResultsIsList(t *testing.T) {
	s := &fakeSearcher{resp: searchuc.Response{IDs: []int64{}}}
	rec := post(t, newTestRouter(s, healthy(), RouterOptions{}), `{"search":""}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"results":[]}`, rec.Body.String())
}

func TestProcess_Degraded(t *testing.T) {
	s := &fakeSearcher{resp: searchuc.Response{IDs: []int64{7}, Degraded: true}}
	rec := post(t, newTestRouter(s, healthy(), RouterOptions{}), `{"search":"izin"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "true", rec.Header().Get("X-Search-Degraded"))
}

func TestProcess_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
		code string
	}{
		{"invalid json", `{"search":`, CodeBadRequest},
		{"wrong type", `{"search":42}`, CodeBadRequest},
		{"missing field", `{"query":"x"}`, CodeValidation},
		{"empty body", ``, CodeValidation},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := post(t, newTestRouter(&fakeSearcher{}, healthy(), RouterOptions{}), tc.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var er ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &er))
			assert.Equal(t, tc.code, er.Code)
		})
	}
}

func TestProcess_DomainErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		retry      bool
	}{
		{"index not ready", domain.ErrIndexNotReady, http.StatusServiceUnavailable, CodeIndexNotReady, true},
		{"encoder timeout", fmt.Errorf("vectorize query: %w", domain.ErrEncoderTimeout), http.StatusServiceUnavailable, CodeEncoderTimeout, true},
		{"provider failure", fmt.Errorf("x: %w", domain.ErrEmbeddingProviderError), http.StatusServiceUnavailable, CodeEncoderFailure, true},
		{"unexpected", fmt.Errorf("boom"), http.StatusInternalServerError, CodeInternal, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := &fakeSearcher{resp: searchuc.Response{IDs: []int64{}}, err: tc.err}
			rec := post(t, newTestRouter(s, healthy(), RouterOptions{}), `{"search":"x"}`)

			require.Equal(t, tc.wantStatus, rec.Code)
			var er ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &er))
			assert.Equal(t, tc.wantCode, er.Code)
			assert.Equal(t, tc.retry, rec.Header().Get("Retry-After") != "")
		})
	}
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		status     healthuc.Status
		wantStatus int
	}{
		{"healthy", healthuc.Healthy, http.StatusOK},
		{"degraded still serves", healthuc.Degraded, http.StatusOK},
		{"unhealthy", healthuc.Unhealthy, http.StatusServiceUnavailable},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := fakeHealth{report: healthuc.Report{Status: tc.status, Checks: map[string]healthuc.CheckResult{"database": healthuc.CheckError}}}
			rec := httptest.NewRecorder()
			newTestRouter(&fakeSearcher{}, h, RouterOptions{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			require.Equal(t, tc.wantStatus, rec.Code)
			var body HealthResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, string(tc.status), body.Status)
			assert.Equal(t, "error", body.Checks["database"])
		})
	}
}

func TestHealthCheck_ReportsIndex(t *testing.T) {
	builtAt := time.Date(2026, 10, 1, 8, 30, 0, 0, time.FixedZone("WIB", 7*3600))
	h := fakeHealth{report: healthuc.Report{
		Status:       healthuc.Healthy,
		Checks:       map[string]healthuc.CheckResult{"index": healthuc.CheckOK},
		Documents:    42,
		IndexBuiltAt: builtAt,
	}}
	rec := httptest.NewRecorder()
	newTestRouter(&fakeSearcher{}, h, RouterOptions{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 42, body.Documents)
	assert.Equal(t, "2026-10-01T01:30:00Z", body.IndexBuiltAt)
}

func TestHealthCheck_NoIndexOmitsBuildTime(t *testing.T) {
	h := fakeHealth{report: healthuc.Report{Status: healthuc.Unhealthy, Checks: map[string]healthuc.CheckResult{"index": healthuc.CheckError}}}
	rec := httptest.NewRecorder()
	newTestRouter(&fakeSearcher{}, h, RouterOptions{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotContains(t, rec.Body.String(), "index_built_at")
}

func TestMetricsEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(&fakeSearcher{}, healthy(), RouterOptions{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "# HELP")
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	h := newTestRouter(&fakeSearcher{}, healthy(), RouterOptions{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/process", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

type panicSearcher struct{}

func (panicSearcher) Search(context.Context, string) (searchuc.Response, error) {
	panic("kaboom")
}

func TestJSONRecoverer(t *testing.T) {
	rec := post(t, newTestRouter(panicSearcher{}, healthy(), RouterOptions{}), `{"search":"x"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), CodeInternal)
}
