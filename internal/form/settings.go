package form

import (
	"context"
	"errors"
	"io"

	"github.com/boddenberg/finboard-bfa/internal/domain"
	"github.com/boddenberg/finboard-bfa/internal/port"
)

var profileFields = []string{
	FieldName, FieldUsername, FieldEmail, FieldDateOfBirth,
	FieldPresentAddress, FieldCity, FieldPostalCode, FieldCountry,
}

// SettingsForm is the editable copy of the profile shown on the settings
// page, with its per-field errors.
type SettingsForm struct {
	values map[string]string
	errors map[string]string
}

// NewSettingsForm seeds the form from a loaded profile. A nil user gives an
// empty form.
func NewSettingsForm(user *domain.UserProfile) *SettingsForm {
	f := &SettingsForm{
		values: map[string]string{
			FieldPassword:        PasswordPlaceholder,
			FieldNewPassword:     "",
			FieldConfirmPassword: "",
		},
		errors: map[string]string{},
	}
	if user != nil {
		f.values[FieldName] = user.Name
		f.values[FieldUsername] = user.Username
		f.values[FieldEmail] = user.Email
		f.values[FieldDateOfBirth] = user.DateOfBirth
		f.values[FieldPresentAddress] = user.PresentAddress
		f.values[FieldPermanentAddress] = user.PermanentAddress
		f.values[FieldCity] = user.City
		f.values[FieldPostalCode] = user.PostalCode
		f.values[FieldCountry] = user.Country
	}
	return f
}

// Value returns the current value of field.
func (f *SettingsForm) Value(field string) string {
	return f.values[field]
}

// Errors returns the fields that currently carry an error message.
func (f *SettingsForm) Errors() map[string]string {
	out := make(map[string]string, len(f.errors))
	for k, v := range f.errors {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// Change sets field to value and validates it. The returned message is also
// kept in Errors. Changing the new password re-checks a non-empty confirmation.
func (f *SettingsForm) Change(field, value string) string {
	f.values[field] = value
	msg := ValidateField(field, value, f.values[FieldNewPassword])
	f.errors[field] = msg

	if field == FieldNewPassword {
		confirm := f.values[FieldConfirmPassword]
		f.errors[FieldConfirmPassword] = ""
		if confirm != "" {
			f.errors[FieldConfirmPassword] = ValidateConfirmPassword(confirm, value)
		}
	}
	return msg
}

// Select sets a value picked from a fixed list (country). It clears the
// field's error without validating.
func (f *SettingsForm) Select(field, value string) {
	f.values[field] = value
	f.errors[field] = ""
}

// SaveProfile validates the profile tab and, when valid, sends the profile
// fields (never credentials) to updater in a single call.
func (f *SettingsForm) SaveProfile(ctx context.Context, updater port.ProfileUpdater) (domain.Notification, error) {
	errs := map[string]string{}
	for _, field := range profileFields {
		if msg := ValidateField(field, f.values[field], f.values[FieldNewPassword]); msg != "" {
			errs[field] = msg
		}
	}
	f.errors = errs

	if len(errs) > 0 {
		return validationNotification("Please fix the errors in the form before saving."),
			&domain.ErrFormInvalid{Form: "profile", Fields: copyMap(errs)}
	}

	patch := domain.ProfilePatch{
		Name:             ptr(f.values[FieldName]),
		Username:         ptr(f.values[FieldUsername]),
		Email:            ptr(f.values[FieldEmail]),
		DateOfBirth:      ptr(f.values[FieldDateOfBirth]),
		PresentAddress:   ptr(f.values[FieldPresentAddress]),
		PermanentAddress: ptr(f.values[FieldPermanentAddress]),
		City:             ptr(f.values[FieldCity]),
		PostalCode:       ptr(f.values[FieldPostalCode]),
		Country:          ptr(f.values[FieldCountry]),
	}
	if err := updater.UpdateUser(ctx, patch); err != nil {
		return errorNotification("Failed to update profile. Please try again."), err
	}

	return domain.Notification{
		Title:       "Profile updated",
		Description: "Your profile has been updated successfully.",
		Variant:     domain.VariantSuccess,
	}, nil
}

// SavePassword validates the security tab and, when valid, stores the new
// password. The password fields are reset afterwards.
func (f *SettingsForm) SavePassword(ctx context.Context, updater port.ProfileUpdater) (domain.Notification, error) {
	errs := map[string]string{}

	current := f.values[FieldPassword]
	if current == "" || current == PasswordPlaceholder {
		errs[FieldPassword] = "Current password is required"
	}

	newPassword := f.values[FieldNewPassword]
	confirm := f.values[FieldConfirmPassword]
	if newPassword == "" {
		errs[FieldNewPassword] = "New password is required"
	} else {
		if msg := ValidateNewPassword(newPassword); msg != "" {
			errs[FieldNewPassword] = msg
		}
		switch {
		case confirm == "":
			errs[FieldConfirmPassword] = "Please confirm your password"
		case confirm != newPassword:
			errs[FieldConfirmPassword] = "Passwords do not match"
		}
	}
	f.errors = errs

	if len(errs) > 0 {
		return validationNotification("Please fix the errors in the form before updating your password."),
			&domain.ErrFormInvalid{Form: "security", Fields: copyMap(errs)}
	}

	if err := updater.UpdateUser(ctx, domain.ProfilePatch{Password: ptr(newPassword)}); err != nil {
		return errorNotification("Failed to update password. Please try again."), err
	}

	f.values[FieldPassword] = PasswordPlaceholder
	f.values[FieldNewPassword] = ""
	f.values[FieldConfirmPassword] = ""

	return domain.Notification{
		Title:       "Password updated",
		Description: "Your password has been updated successfully.",
		Variant:     domain.VariantSuccess,
	}, nil
}

// UploadAvatar checks the image type and size, then hands it to updater.
func UploadAvatar(ctx context.Context, updater port.AvatarUpdater, contentType string, size int64, r io.Reader) (domain.Notification, error) {
	if err := ValidateAvatar(contentType, size); err != nil {
		var media *domain.ErrUnsupportedMedia
		if errors.As(err, &media) {
			return domain.Notification{
				Title:       "Invalid file type",
				Description: "Please upload a JPEG, PNG, or GIF image.",
				Variant:     domain.VariantDestructive,
			}, err
		}
		return domain.Notification{
			Title:       "File too large",
			Description: "Please upload an image smaller than 5MB.",
			Variant:     domain.VariantDestructive,
		}, err
	}

	if err := updater.UpdateAvatar(ctx, contentType, r); err != nil {
		return errorNotification("Failed to update profile picture. Please try again."), err
	}

	return domain.Notification{
		Title:       "Avatar updated",
		Description: "Your profile picture has been updated successfully.",
		Variant:     domain.VariantSuccess,
	}, nil
}

func validationNotification(description string) domain.Notification {
	return domain.Notification{Title: "Validation Error", Description: description, Variant: domain.VariantDestructive}
}

func errorNotification(description string) domain.Notification {
	return domain.Notification{Title: "Error", Description: description, Variant: domain.VariantDestructive}
}

func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func ptr(s string) *string { return &s }
