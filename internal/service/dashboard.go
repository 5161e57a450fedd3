// Package service holds the long-lived providers behind the dashboard UI:
// the dashboard data provider, the profile provider and quick transfers.
package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/boddenberg/finboard-bfa/internal/domain"
	"github.com/boddenberg/finboard-bfa/internal/infra/observability"
	"github.com/boddenberg/finboard-bfa/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("service")

// ErrClosed is returned by operations on a provider after Close.
var ErrClosed = errors.New("provider closed")

// Dashboard loads the six dashboard collections and keeps the last
// successful set together with the aggregate loading/error state.
type Dashboard struct {
	source  port.DashboardSource
	metrics *observability.Metrics
	logger  *zap.Logger

	mu       sync.RWMutex
	data     domain.DashboardData
	status   domain.DashboardStatus
	errMsg   *string
	latest   uint64 // token of the newest started round
	applied  uint64 // token of the round currently on display
	loadedAt *time.Time
	closed   bool
}

// NewDashboard creates the dashboard provider. Nothing is fetched until
// Start or Refetch.
func NewDashboard(source port.DashboardSource, metrics *observability.Metrics, logger *zap.Logger) *Dashboard {
	return &Dashboard{
		source:  source,
		metrics: metrics,
		logger:  logger,
		status:  domain.DashboardIdle,
		data: domain.DashboardData{
			Cards:             []domain.Card{},
			Transactions:      []domain.Transaction{},
			WeeklyActivity:    []domain.WeeklyActivity{},
			ExpenseCategories: []domain.ExpenseCategory{},
			Contacts:          []domain.Contact{},
			BalanceHistory:    []domain.BalanceHistory{},
		},
	}
}

// Start enters Loading and runs the first round in the background.
func (d *Dashboard) Start(ctx context.Context) {
	token, ok := d.begin()
	if !ok {
		return
	}
	go func() {
		_ = d.run(ctx, token)
	}()
}

// Refetch runs one round and blocks until it completes. A failed round
// sets the provider error and is also returned so callers may inspect it.
// A round overtaken by a newer one is discarded and returns nil.
func (d *Dashboard) Refetch(ctx context.Context) error {
	token, ok := d.begin()
	if !ok {
		return ErrClosed
	}
	return d.run(ctx, token)
}

func (d *Dashboard) begin() (uint64, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0, false
	}
	d.latest++
	d.status = domain.DashboardLoading
	d.errMsg = nil
	return d.latest, true
}

func (d *Dashboard) run(ctx context.Context, token uint64) error {
	ctx, span := tracer.Start(ctx, "Dashboard.Refetch")
	defer span.End()
	span.SetAttributes(attribute.Int64("dashboard.round", int64(token)))

	start := time.Now()
	data, err := d.fetchAll(ctx)
	d.metrics.RecordRequestDuration("dashboard_round", time.Since(start))

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed || token != d.latest {
		d.metrics.IncrRound("discarded")
		d.logger.Debug("discarding stale dashboard round",
			zap.Uint64("round", token),
			zap.Uint64("latest", d.latest),
			zap.Bool("closed", d.closed),
		)
		return nil
	}

	if err != nil {
		span.RecordError(err)
		msg := domain.DashboardErrorMessage
		d.errMsg = &msg
		d.status = domain.DashboardError
		d.metrics.IncrRound("failed")
		d.logger.Error("failed to load dashboard data", zap.Uint64("round", token), zap.Error(err))
		return fmt.Errorf("dashboard round %d: %w", token, err)
	}

	now := time.Now()
	d.data = data
	d.status = domain.DashboardLoaded
	d.applied = token
	d.loadedAt = &now
	d.metrics.IncrRound("applied")
	return nil
}

// fetchAll issues the six fetches concurrently. The result is only used
// when every fetch succeeded.
func (d *Dashboard) fetchAll(ctx context.Context) (domain.DashboardData, error) {
	var data domain.DashboardData
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		data.Cards, err = d.source.FetchCards(gCtx)
		return d.wrap("cards", err)
	})
	g.Go(func() (err error) {
		data.Transactions, err = d.source.FetchTransactions(gCtx)
		return d.wrap("transactions", err)
	})
	g.Go(func() (err error) {
		data.WeeklyActivity, err = d.source.FetchWeeklyActivity(gCtx)
		return d.wrap("weekly-activity", err)
	})
	g.Go(func() (err error) {
		data.ExpenseCategories, err = d.source.FetchExpenseCategories(gCtx)
		return d.wrap("expense-categories", err)
	})
	g.Go(func() (err error) {
		data.Contacts, err = d.source.FetchContacts(gCtx)
		return d.wrap("contacts", err)
	})
	g.Go(func() (err error) {
		data.BalanceHistory, err = d.source.FetchBalanceHistory(gCtx)
		return d.wrap("balance-history", err)
	})

	if err := g.Wait(); err != nil {
		return domain.DashboardData{}, err
	}
	return data, nil
}

func (d *Dashboard) wrap(resource string, err error) error {
	if err == nil {
		return nil
	}
	d.metrics.IncrExternalError(resource)
	return fmt.Errorf("%s fetch: %w", resource, err)
}

// Snapshot returns a copy of the current state.
func (d *Dashboard) Snapshot() domain.DashboardSnapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()

	snap := domain.DashboardSnapshot{
		DashboardData: domain.DashboardData{
			Cards:             slices.Clone(d.data.Cards),
			Transactions:      slices.Clone(d.data.Transactions),
			WeeklyActivity:    slices.Clone(d.data.WeeklyActivity),
			ExpenseCategories: slices.Clone(d.data.ExpenseCategories),
			Contacts:          slices.Clone(d.data.Contacts),
			BalanceHistory:    slices.Clone(d.data.BalanceHistory),
		},
		IsLoading: d.status == domain.DashboardLoading,
		Status:    d.status,
		Round:     d.applied,
	}
	if d.errMsg != nil {
		msg := *d.errMsg
		snap.Error = &msg
	}
	if d.loadedAt != nil {
		t := *d.loadedAt
		snap.LoadedAt = &t
	}
	return snap
}

// ContactByID finds a contact among the loaded contacts.
func (d *Dashboard) ContactByID(id string) (domain.Contact, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, c := range d.data.Contacts {
		if c.ID == id {
			return c, true
		}
	}
	return domain.Contact{}, false
}

// Close drops the collections. Rounds still in flight complete but their
// results are discarded.
func (d *Dashboard) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.data = domain.DashboardData{}
}
