// Package form holds the field validators and the form state machines of the
// settings page and the quick-transfer widget. Validators return the message
// to display, or "" when the value is valid.
package form

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/boddenberg/finboard-bfa/internal/domain"
)

// PasswordPlaceholder stands in for the current password, which is never
// sent back to the client.
const PasswordPlaceholder = "**********"

// MaxAvatarSize is the largest accepted avatar upload, in bytes.
const MaxAvatarSize = 5 * 1024 * 1024

var avatarTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// Settings field names, as sent by the client.
const (
	FieldName             = "name"
	FieldUsername         = "username"
	FieldEmail            = "email"
	FieldPassword         = "password"
	FieldNewPassword      = "newPassword"
	FieldConfirmPassword  = "confirmPassword"
	FieldDateOfBirth      = "dateOfBirth"
	FieldPresentAddress   = "presentAddress"
	FieldPermanentAddress = "permanentAddress"
	FieldCity             = "city"
	FieldPostalCode       = "postalCode"
	FieldCountry          = "country"
)

var (
	emailRegex      = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	postalCodeRegex = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	upperRegex      = regexp.MustCompile(`[A-Z]`)
	lowerRegex      = regexp.MustCompile(`[a-z]`)
	digitRegex      = regexp.MustCompile(`[0-9]`)
	specialRegex    = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

// ValidateField checks one settings field. newPassword is the current value
// of the new-password field, needed to validate the confirmation.
func ValidateField(field, value, newPassword string) string {
	switch field {
	case FieldName:
		return ValidateName(value)
	case FieldUsername:
		return ValidateUsername(value)
	case FieldEmail:
		return ValidateEmail(value)
	case FieldNewPassword:
		return ValidateNewPassword(value)
	case FieldConfirmPassword:
		return ValidateConfirmPassword(value, newPassword)
	case FieldPostalCode:
		return ValidatePostalCode(value)
	default:
		return ""
	}
}

func ValidateName(value string) string {
	if strings.TrimSpace(value) == "" {
		return "Name is required"
	}
	return ""
}

func ValidateUsername(value string) string {
	if strings.TrimSpace(value) == "" {
		return "Username is required"
	}
	if utf8.RuneCountInString(value) < 3 {
		return "Username must be at least 3 characters"
	}
	return ""
}

func ValidateEmail(value string) string {
	if strings.TrimSpace(value) == "" {
		return "Email is required"
	}
	if !emailRegex.MatchString(value) {
		return "Please enter a valid email address"
	}
	return ""
}

// ValidateNewPassword lists every missing strength requirement. An empty
// value is valid: the field is optional until the security tab is saved.
func ValidateNewPassword(value string) string {
	if value == "" {
		return ""
	}

	var missing []string
	if utf8.RuneCountInString(value) < 8 {
		missing = append(missing, "at least 8 characters")
	}
	if !upperRegex.MatchString(value) {
		missing = append(missing, "an uppercase letter")
	}
	if !lowerRegex.MatchString(value) {
		missing = append(missing, "a lowercase letter")
	}
	if !digitRegex.MatchString(value) {
		missing = append(missing, "a number")
	}
	if !specialRegex.MatchString(value) {
		missing = append(missing, "a special character")
	}
	if len(missing) == 0 {
		return ""
	}
	return "Password must contain " + strings.Join(missing, ", ")
}

func ValidateConfirmPassword(value, newPassword string) string {
	if value != newPassword {
		return "Passwords do not match"
	}
	return ""
}

func ValidatePostalCode(value string) string {
	if value != "" && !postalCodeRegex.MatchString(value) {
		return "Please enter a valid postal code"
	}
	return ""
}

// ValidateAmount parses a transfer amount. It returns the parsed value and
// "" when the amount is acceptable.
func ValidateAmount(raw string) (float64, string) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, "Amount is required"
	}

	amount, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, "Please enter a valid number"
	}
	if amount <= 0 {
		return amount, "Amount must be greater than zero"
	}
	if amount > domain.MaxTransferAmount {
		return amount, "Amount cannot exceed $10,000"
	}
	return amount, ""
}

// ValidateAvatar checks an uploaded image before it is encoded.
func ValidateAvatar(contentType string, size int64) error {
	if !avatarTypes[contentType] {
		return &domain.ErrUnsupportedMedia{ContentType: contentType}
	}
	if size > MaxAvatarSize {
		return &domain.ErrPayloadTooLarge{Size: size, Limit: MaxAvatarSize}
	}
	return nil
}
