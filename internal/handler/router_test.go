package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/boddenberg/finboard-bfa/internal/domain"
	"github.com/boddenberg/finboard-bfa/internal/handler"
	"github.com/boddenberg/finboard-bfa/internal/infra/kv"
	"github.com/boddenberg/finboard-bfa/internal/infra/observability"
	"github.com/boddenberg/finboard-bfa/internal/service"

	"go.uber.org/zap"
)

func newBareRouter() http.Handler {
	return handler.NewRouter(nil, nil, nil, observability.NewMetrics(), zap.NewNop())
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return v
}

func TestHealthz(t *testing.T) {
	rec := do(t, newBareRouter(), http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	health := decode[domain.HealthStatus](t, rec)
	if health.Status != "healthy" {
		t.Errorf("expected healthy, got %q", health.Status)
	}
}

func TestReadyz(t *testing.T) {
	rec := do(t, newBareRouter(), http.MethodGet, "/readyz", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestReadyz_ProfileNotLoaded(t *testing.T) {
	profile := service.NewProfile(kv.NewMemoryStore(), 0, observability.NewMetrics(), zap.NewNop())
	router := handler.NewRouter(nil, profile, nil, observability.NewMetrics(), zap.NewNop())

	rec := do(t, router, http.MethodGet, "/readyz", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

func TestMetrics(t *testing.T) {
	rec := do(t, newBareRouter(), http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestDashboardMetrics(t *testing.T) {
	rec := do(t, newBareRouter(), http.MethodGet, "/v1/metrics/dashboard", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestPing(t *testing.T) {
	rec := do(t, newBareRouter(), http.MethodGet, "/ping", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestUnconfiguredServices(t *testing.T) {
	router := newBareRouter()

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/v1/dashboard/cards"},
		{http.MethodGet, "/v1/profile"},
		{http.MethodPatch, "/v1/profile"},
		{http.MethodPost, "/v1/settings/profile"},
		{http.MethodPost, "/v1/transfers/confirm"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := do(t, router, tt.method, tt.path, map[string]string{})
			if rec.Code != http.StatusServiceUnavailable {
				t.Errorf("expected 503, got %d", rec.Code)
			}
		})
	}
}

func TestValidateAmount(t *testing.T) {
	router := newBareRouter()

	tests := []struct {
		amount  string
		valid   bool
		message string
	}{
		{"525.50", true, ""},
		{"", false, "Amount is required"},
		{"abc", false, "Please enter a valid number"},
		{"-5", false, "Amount must be greater than zero"},
		{"10000.01", false, "Amount cannot exceed $10,000"},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, "/v1/transfers/validate", map[string]string{"amount": tt.amount})
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			resp := decode[struct {
				Valid bool   `json:"valid"`
				Error string `json:"error"`
			}](t, rec)
			if resp.Valid != tt.valid || resp.Error != tt.message {
				t.Errorf("got valid=%v error=%q, want valid=%v error=%q", resp.Valid, resp.Error, tt.valid, tt.message)
			}
		})
	}
}

func TestInvalidJSONBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/transfers/validate", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	newBareRouter().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}
