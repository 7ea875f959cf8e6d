package httpserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Clark-Hu/photo-ratings/internal/config"
)

func newUnitServer(t *testing.T) *Server {
	t.Helper()
	return New(config.Config{AuthToken: "secret", RatingMin: 1, RatingMax: 5}, nil, nil, nil, nil)
}

func TestRoundToTwoDecimals(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  float64
	}{
		{"zero", 0, 0},
		{"round-up", 3.666, 3.67},
		{"round-down", 2.333, 2.33},
		{"exact", 4.5, 4.5},
		{"integer", 4, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := roundToTwoDecimals(tt.value)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("roundToTwoDecimals(%v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestRatingViolation(t *testing.T) {
	srv := newUnitServer(t)
	value := func(v int) *int { return &v }

	tests := []struct {
		name string
		req  ratingRequest
		want string
	}{
		{"missing", ratingRequest{}, "Rating value is required"},
		{"below range", ratingRequest{Value: value(0)}, "Rating must be between 1 and 5"},
		{"above range", ratingRequest{Value: value(6)}, "Rating must be between 1 and 5"},
		{"lower bound", ratingRequest{Value: value(1)}, ""},
		{"upper bound", ratingRequest{Value: value(5)}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := srv.ratingViolation(tt.req); got != tt.want {
				t.Fatalf("ratingViolation() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeErrorText(t *testing.T) {
	decode := func(body string) error {
		var req ratingRequest
		rec := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(body))
		return decodeJSONBody(rec, r, &req)
	}

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"syntax", decode(`{"value":`), http.StatusBadRequest},
		{"type", decode(`{"value":"five"}`), http.StatusUnprocessableEntity},
		{"empty", decode(``), http.StatusBadRequest},
		{"unknown field", decode(`{"stars":3}`), http.StatusBadRequest},
		{"too large", decode(`{"value":` + strings.Repeat(" ", maxRequestBody) + `1}`), http.StatusRequestEntityTooLarge},
		{"other", errors.New("boom"), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err == nil {
				t.Fatalf("expected a decode error")
			}
			status, message := decodeErrorText(tt.err)
			if status != tt.wantStatus || message == "" {
				t.Fatalf("decodeErrorText() = %d %q, want status %d", status, message, tt.wantStatus)
			}
		})
	}
}

func TestHandleCreatePhoto_AuthValidation(t *testing.T) {
	srv := newUnitServer(t)

	req := httptest.NewRequest(http.MethodPost, "/photos", bytes.NewBufferString(`{"title":"Test"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/photos", bytes.NewBufferString(`{"title":"Test"}`))
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 for wrong token", rec.Code)
	}

	var resp errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if resp.Code != "UNAUTHORIZED" {
		t.Fatalf("code = %s, want UNAUTHORIZED", resp.Code)
	}
}

func TestHandleCreatePhoto_InvalidPayload(t *testing.T) {
	srv := newUnitServer(t)

	for _, body := range []string{"invalid json", `{"title":"   "}`} {
		req := httptest.NewRequest(http.MethodPost, "/photos", bytes.NewBufferString(body))
		req.Header.Set("Authorization", "Bearer secret")
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("body %q: status = %d, want 422", body, rec.Code)
		}
	}
}

func TestHandleHealthz_NoStore(t *testing.T) {
	srv := newUnitServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newUnitServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "go_goroutines") {
		t.Fatalf("metrics output missing runtime collectors")
	}
}
