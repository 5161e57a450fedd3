package observability_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/boddenberg/finboard-bfa/internal/infra/observability"

	"go.uber.org/zap"
)

func TestMetricsSnapshot(t *testing.T) {
	m := observability.NewMetrics()

	m.IncrRound("applied")
	m.IncrRound("applied")
	m.IncrRound("applied")
	m.IncrRound("failed")
	m.IncrRound("discarded")
	m.IncrProfileWrite("success")
	m.IncrProfileWrite("error")
	m.IncrTransfer("completed")
	m.IncrValidationFailure("transfer")
	m.IncrValidationFailure("settings_profile")
	m.RecordRequestDuration("dashboard_round", 10*time.Millisecond)

	s := m.Snapshot()
	if s.RoundsApplied != 3 || s.RoundsFailed != 1 || s.RoundsDiscarded != 1 {
		t.Errorf("unexpected round counts: %+v", s)
	}
	if s.RoundErrorRate != 0.25 {
		t.Errorf("expected error rate 0.25, got %f", s.RoundErrorRate)
	}
	if s.ProfileWrites != 2 || s.ProfileWriteErrors != 1 {
		t.Errorf("unexpected profile write counts: %+v", s)
	}
	if s.TransfersCompleted != 1 {
		t.Errorf("expected 1 completed transfer, got %d", s.TransfersCompleted)
	}
	if s.ValidationFailures != 2 {
		t.Errorf("expected 2 validation failures, got %d", s.ValidationFailures)
	}
}

func TestNewMetrics_Twice(t *testing.T) {
	// Private registries: a second call must not panic.
	_ = observability.NewMetrics()
	_ = observability.NewMetrics()
}

func TestNewLogger_Levels(t *testing.T) {
	for _, lvl := range []string{"debug", "info", "warn", "bogus"} {
		logger := observability.NewLogger(lvl, "json")
		if logger == nil {
			t.Fatalf("nil logger for level %q", lvl)
		}
	}
}

func TestZapLoggerMiddleware_PassesThrough(t *testing.T) {
	h := observability.ZapLoggerMiddleware(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("expected 418, got %d", rec.Code)
	}
}

func TestInitTracer_Disabled(t *testing.T) {
	shutdown, err := observability.InitTracer(context.Background(), "", "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("unexpected shutdown error: %v", err)
	}
}
