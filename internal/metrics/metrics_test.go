package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/varix-web/drawings"
	"github.com/jrsteele09/varix-web/internal/metrics"
	"github.com/stretchr/testify/require"
)

var _ drawings.Observer = (*metrics.Metrics)(nil)

func scrape(t *testing.T, m *metrics.Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMetrics(t *testing.T) {
	m := metrics.New()
	m.ObserveRequest("/login", http.MethodPost, http.StatusSeeOther, 20*time.Millisecond)
	m.ObserveRequest("", http.MethodGet, http.StatusNotFound, time.Millisecond)
	m.AuthFlow("callback", "authenticated")
	m.Upload("success", 2048)
	m.Upload("error", 99)

	out := scrape(t, m)
	require.Contains(t, out, `varix_http_requests_total{code="303",method="POST",route="/login"} 1`)
	require.Contains(t, out, `varix_http_requests_total{code="404",method="GET",route="unmatched"} 1`)
	require.Contains(t, out, `varix_auth_flows_total{flow="callback",outcome="authenticated"} 1`)
	require.Contains(t, out, `varix_drawing_uploads_total{outcome="error"} 1`)
	require.Contains(t, out, `varix_drawing_upload_bytes_total 2048`)
	require.Contains(t, out, "go_goroutines")
}

func TestNilMetrics(t *testing.T) {
	var m *metrics.Metrics
	require.NotPanics(t, func() {
		m.ObserveRequest("/", http.MethodGet, http.StatusOK, time.Millisecond)
		m.AuthFlow("login", "failed")
		m.Upload("success", 1)
	})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
