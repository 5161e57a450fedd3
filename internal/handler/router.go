package handler

import (
	"net/http"
	"time"

	"github.com/boddenberg/finboard-bfa/internal/domain"
	"github.com/boddenberg/finboard-bfa/internal/infra/observability"
	"github.com/boddenberg/finboard-bfa/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
// Any service may be nil; its routes then answer 503.
func NewRouter(
	dashboard *service.Dashboard,
	profile *service.Profile,
	transfers *service.Transfers,
	metrics *observability.Metrics,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.TracingMiddleware)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(dashboard, profile))
	r.Get("/readyz", readyzHandler(dashboard, profile))
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {
		r.Get("/metrics/dashboard", dashboardMetricsHandler(metrics))

		// Dashboard
		r.Route("/dashboard", func(r chi.Router) {
			if dashboard == nil {
				r.Handle("/*", unavailable("dashboard provider not configured"))
				return
			}
			r.Get("/", getDashboardHandler(dashboard))
			r.Post("/refetch", refetchHandler(dashboard, logger))
			r.Get("/{collection}", getCollectionHandler(dashboard, logger))
		})

		// Profile and settings
		r.Group(func(r chi.Router) {
			if profile == nil {
				r.Handle("/profile", unavailable("profile provider not configured"))
				r.Handle("/profile/*", unavailable("profile provider not configured"))
				r.Handle("/settings/*", unavailable("profile provider not configured"))
				return
			}
			r.Get("/profile", getProfileHandler(profile))
			r.Post("/settings/validate", validateFieldHandler())

			r.Group(func(r chi.Router) {
				r.Use(RequireProfile(profile))
				r.Patch("/profile", patchProfileHandler(profile, logger))
				r.Put("/profile/avatar", putAvatarHandler(profile, logger))
				r.Post("/settings/profile", saveProfileHandler(profile, metrics, logger))
				r.Post("/settings/security", saveSecurityHandler(profile, metrics, logger))
			})
		})

		// Quick transfer
		r.Route("/transfers", func(r chi.Router) {
			r.Post("/validate", validateAmountHandler())
			if transfers == nil {
				r.Handle("/*", unavailable("transfer service not configured"))
				return
			}
			r.Post("/", submitTransferHandler(transfers, logger))
			r.Post("/confirm", confirmTransferHandler(transfers, logger))
			r.Post("/cancel", cancelTransferHandler(transfers, logger))
		})
	})

	return r
}

func unavailable(msg string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusServiceUnavailable, msg)
	}
}

// ============================================================
// Operational
// ============================================================

func healthzHandler(dashboard *service.Dashboard, profile *service.Profile) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "finboard-bfa", Status: "healthy", LastChecked: now},
		}

		if dashboard != nil {
			snap := dashboard.Snapshot()
			status := "healthy"
			if snap.Status == domain.DashboardError {
				status = "degraded"
			}
			services = append(services, domain.ServiceHealth{
				Name: "dashboard", Status: status, Detail: string(snap.Status), LastChecked: now,
			})
		}

		if profile != nil {
			status, detail := "healthy", "loaded"
			switch {
			case profile.IsLoading():
				detail = "loading"
			case !profile.IsLoaded():
				status, detail = "degraded", "unavailable"
			}
			services = append(services, domain.ServiceHealth{
				Name: "profile", Status: status, Detail: detail, LastChecked: now,
			})
		}

		overall := "healthy"
		for _, s := range services {
			if s.Status != "healthy" {
				overall = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{Status: overall, Services: services})
	}
}

// readyzHandler reports ready once the first dashboard round finished and
// the profile is loaded.
func readyzHandler(dashboard *service.Dashboard, profile *service.Profile) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if dashboard != nil {
			switch dashboard.Snapshot().Status {
			case domain.DashboardIdle, domain.DashboardLoading:
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "loading dashboard"})
				return
			}
		}
		if profile != nil && !profile.IsLoaded() {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "loading profile"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func dashboardMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.Snapshot())
	}
}
