package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Put("/photos/{photoId}/rating", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {})

	for _, id := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/photos/"+id+"/rating", nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues(http.MethodPut, "/photos/{photoId}/rating", "422"))
	assert.Equal(t, 2.0, got)
	assert.Equal(t, 1, testutil.CollectAndCount(m.RequestsTotal))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.InFlightGauge))
}

func TestMiddleware_UnmatchedPathsShareOneSeries(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Put("/photos/{photoId}/rating", func(w http.ResponseWriter, r *http.Request) {})

	for _, path := range []string{"/a1", "/a2", "/a3", "/photos/x/y"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 1, testutil.CollectAndCount(m.RequestsTotal))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues(http.MethodGet, unmatchedRoute, "404")))
}

func TestHandler_ExposesServiceMetrics(t *testing.T) {
	m := New()
	m.RatingsSubmitted.WithLabelValues(ResultCreated).Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `photo_ratings_ratings_submitted_total{result="created"} 1`))
}
