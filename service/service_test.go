package service

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthz(t *testing.T) {
	h := NewHealthzServer(log.NewLogger(log.DiscardHandler()), nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "http://example.com")
	h.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestResults(t *testing.T) {
	var latest []byte
	h := NewHealthzServer(log.NewLogger(log.DiscardHandler()), func() ([]byte, bool) {
		return latest, latest != nil
	})

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	assert.Equal(t, http.StatusNotFound, get("/results/latest").Code)

	latest = []byte(`{"runId":"abc"}`)
	rec := get("/results/latest")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"runId":"abc"}`, rec.Body.String())

	assert.Equal(t, http.StatusNotFound, get("/results/abc").Code)
}

func TestMetricsHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	(&MetricsServer{}).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestShutdownBeforeStart(t *testing.T) {
	s := New(log.NewLogger(log.DiscardHandler()), Config{}, nil)
	s.Start(t.Context())
	s.Shutdown()
}
