// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"
	"io"

	"github.com/boddenberg/finboard-bfa/internal/domain"
)

// DashboardSource fetches the dashboard collections. Implemented by the
// mock data service and by the HTTP client.
type DashboardSource interface {
	FetchCards(ctx context.Context) ([]domain.Card, error)
	FetchTransactions(ctx context.Context) ([]domain.Transaction, error)
	FetchWeeklyActivity(ctx context.Context) ([]domain.WeeklyActivity, error)
	FetchExpenseCategories(ctx context.Context) ([]domain.ExpenseCategory, error)
	FetchContacts(ctx context.Context) ([]domain.Contact, error)
	FetchBalanceHistory(ctx context.Context) ([]domain.BalanceHistory, error)
}

// KVStore is a string key-value store scoped to one client installation.
// Get reports found=false (and no error) for a missing key.
type KVStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Take(key string) (T, bool)
	Delete(key string)
}

// ProfileUpdater applies partial profile updates. Implemented by the
// profile service; consumed by the settings form.
type ProfileUpdater interface {
	UpdateUser(ctx context.Context, patch domain.ProfilePatch) error
}

// AvatarUpdater replaces the profile picture with the image read from r.
type AvatarUpdater interface {
	UpdateAvatar(ctx context.Context, contentType string, r io.Reader) error
}

// TransferSender performs a transfer. Implemented by the transfer service;
// consumed by the quick-transfer form.
type TransferSender interface {
	Send(ctx context.Context, recipientID string, amount float64) (*domain.Transfer, error)
}

// ContactDirectory looks up a contact among the loaded dashboard contacts.
type ContactDirectory interface {
	ContactByID(id string) (domain.Contact, bool)
}

// EventPublisher publishes domain events to a broker.
type EventPublisher interface {
	PublishTransferCompleted(ctx context.Context, event domain.TransferCompletedEvent) error
}
