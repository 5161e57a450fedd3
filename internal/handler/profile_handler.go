package handler

import (
	"net/http"

	"github.com/boddenberg/finboard-bfa/internal/domain"
	"github.com/boddenberg/finboard-bfa/internal/form"
	"github.com/boddenberg/finboard-bfa/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Profile (/v1/profile)
// ============================================================

type notificationResponse struct {
	Notification domain.Notification `json:"notification"`
	User         *domain.UserProfile `json:"user,omitempty"`
}

// publicState strips the password hash before a profile leaves the service.
func publicState(profile *service.Profile) domain.ProfileState {
	state := profile.State()
	if state.User != nil {
		state.User.PasswordHash = ""
	}
	return state
}

func publicUser(profile *service.Profile) *domain.UserProfile {
	return publicState(profile).User
}

func getProfileHandler(profile *service.Profile) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, publicState(profile))
	}
}

// patchProfileHandler applies a partial update. Passwords are only changed
// through the security settings.
func patchProfileHandler(profile *service.Profile, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PATCH /v1/profile")
		defer span.End()

		var patch domain.ProfilePatch
		if !decodeJSON(w, r, &patch) {
			return
		}
		patch.Password = nil
		if patch.Empty() {
			writeError(w, http.StatusBadRequest, "no profile fields to update")
			return
		}

		if err := profile.UpdateUser(ctx, patch); err != nil {
			handleServiceError(w, err, nil, logger)
			return
		}
		writeJSON(w, http.StatusOK, publicState(profile))
	}
}

func putAvatarHandler(profile *service.Profile, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/profile/avatar")
		defer span.End()

		r.Body = http.MaxBytesReader(w, r.Body, form.MaxAvatarSize+maxJSONBody)
		if err := r.ParseMultipartForm(form.MaxAvatarSize); err != nil {
			handleServiceError(w, &domain.ErrPayloadTooLarge{Size: r.ContentLength, Limit: form.MaxAvatarSize}, nil, logger)
			return
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile("avatar")
		if err != nil {
			writeError(w, http.StatusBadRequest, "missing avatar file")
			return
		}
		defer file.Close()

		n, err := form.UploadAvatar(ctx, profile, header.Header.Get("Content-Type"), header.Size, file)
		if err != nil {
			handleServiceError(w, err, &n, logger)
			return
		}
		writeJSON(w, http.StatusOK, notificationResponse{Notification: n, User: publicUser(profile)})
	}
}
