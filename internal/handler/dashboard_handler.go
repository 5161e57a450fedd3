package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/boddenberg/finboard-bfa/internal/domain"
	"github.com/boddenberg/finboard-bfa/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Dashboard (/v1/dashboard)
// ============================================================

func getDashboardHandler(dashboard *service.Dashboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, dashboard.Snapshot())
	}
}

// getCollectionHandler serves one collection as a bare JSON array, the same
// shape the HTTP dashboard client consumes.
func getCollectionHandler(dashboard *service.Dashboard, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/dashboard/{collection}")
		defer span.End()

		name := chi.URLParam(r, "collection")
		span.SetAttributes(attribute.String("dashboard.collection", name))

		collection, ok := dashboard.Snapshot().Collection(name)
		if !ok {
			handleServiceError(w, &domain.ErrNotFound{Resource: "collection", ID: name}, nil, logger)
			return
		}
		writeJSON(w, http.StatusOK, collection)
	}
}

// refetchHandler runs one round and returns the resulting snapshot. A failed
// round is reported through the snapshot error, not the status code. The
// round is detached from the request so a disconnecting client cannot
// cancel it.
func refetchHandler(dashboard *service.Dashboard, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/dashboard/refetch")
		defer span.End()

		if err := dashboard.Refetch(context.WithoutCancel(ctx)); err != nil {
			if errors.Is(err, service.ErrClosed) {
				handleServiceError(w, err, nil, logger)
				return
			}
			span.RecordError(err)
		}
		writeJSON(w, http.StatusOK, dashboard.Snapshot())
	}
}
