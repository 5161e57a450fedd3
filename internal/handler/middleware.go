package handler

import (
	"net/http"

	"github.com/boddenberg/finboard-bfa/internal/service"
)

// RequireProfile answers 503 until the profile provider has a profile.
func RequireProfile(profile *service.Profile) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !profile.IsLoaded() {
				w.Header().Set("Retry-After", "1")
				if profile.IsLoading() {
					writeError(w, http.StatusServiceUnavailable, "profile is still loading")
					return
				}
				writeError(w, http.StatusServiceUnavailable, "profile unavailable")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
