package domain

// Notification variants.
const (
	VariantSuccess     = "success"
	VariantDestructive = "destructive"
)

// Notification is a transient, user-facing message (a toast in the UI).
type Notification struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Variant     string `json:"variant"`
}
