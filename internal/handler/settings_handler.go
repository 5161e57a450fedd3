package handler

import (
	"net/http"

	"github.com/boddenberg/finboard-bfa/internal/form"
	"github.com/boddenberg/finboard-bfa/internal/infra/observability"
	"github.com/boddenberg/finboard-bfa/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Settings (/v1/settings)
// ============================================================

type validateFieldRequest struct {
	Field       string `json:"field"`
	Value       string `json:"value"`
	NewPassword string `json:"newPassword"`
}

type validateResponse struct {
	Field string `json:"field"`
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

func validateFieldHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req validateFieldRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.Field == "" {
			writeError(w, http.StatusBadRequest, "field is required")
			return
		}
		msg := form.ValidateField(req.Field, req.Value, req.NewPassword)
		writeJSON(w, http.StatusOK, validateResponse{Field: req.Field, Valid: msg == "", Error: msg})
	}
}

// settingsForm seeds a form from the stored profile and applies the
// submitted values on top, the way the settings page edits it.
func settingsForm(profile *service.Profile, values map[string]string) *form.SettingsForm {
	f := form.NewSettingsForm(profile.User())
	for field, value := range values {
		if field == form.FieldCountry {
			f.Select(field, value)
			continue
		}
		f.Change(field, value)
	}
	return f
}

func saveProfileHandler(profile *service.Profile, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/settings/profile")
		defer span.End()

		var values map[string]string
		if !decodeJSON(w, r, &values) {
			return
		}
		delete(values, form.FieldPassword)
		delete(values, form.FieldNewPassword)
		delete(values, form.FieldConfirmPassword)

		n, err := settingsForm(profile, values).SaveProfile(ctx, profile)
		if err != nil {
			metrics.IncrValidationFailure("settings_profile")
			handleServiceError(w, err, &n, logger)
			return
		}
		writeJSON(w, http.StatusOK, notificationResponse{Notification: n, User: publicUser(profile)})
	}
}

type securityRequest struct {
	Password        string `json:"password"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

func saveSecurityHandler(profile *service.Profile, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/settings/security")
		defer span.End()

		var req securityRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		f := form.NewSettingsForm(profile.User())
		f.Change(form.FieldPassword, req.Password)
		f.Change(form.FieldNewPassword, req.NewPassword)
		f.Change(form.FieldConfirmPassword, req.ConfirmPassword)

		n, err := f.SavePassword(ctx, profile)
		if err != nil {
			metrics.IncrValidationFailure("settings_security")
			handleServiceError(w, err, &n, logger)
			return
		}
		writeJSON(w, http.StatusOK, notificationResponse{Notification: n})
	}
}
