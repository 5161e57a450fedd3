package main

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/boddenberg/finboard-bfa/internal/config"
	"github.com/boddenberg/finboard-bfa/internal/infra/cache"
	"github.com/boddenberg/finboard-bfa/internal/infra/client"
	"github.com/boddenberg/finboard-bfa/internal/infra/events"
	"github.com/boddenberg/finboard-bfa/internal/infra/kv"
	"github.com/boddenberg/finboard-bfa/internal/infra/mockapi"
	"github.com/boddenberg/finboard-bfa/internal/infra/observability"
	"github.com/boddenberg/finboard-bfa/internal/infra/resilience"
	"github.com/boddenberg/finboard-bfa/internal/port"
	"github.com/boddenberg/finboard-bfa/internal/service"

	"go.uber.org/zap"
)

const serviceName = "finboard-bfa"

// app holds the wired providers shared by every command.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	metrics   *observability.Metrics
	dashboard *service.Dashboard
	profile   *service.Profile
	transfers *service.Transfers

	closers []func() error
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)

	a := &app{cfg: cfg, logger: logger}

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("dashboard_source", cfg.DataSource),
		zap.String("profile_store", cfg.ProfileStore),
		zap.Duration("mock_delay", cfg.MockDelay),
		zap.Duration("profile_delay", cfg.ProfileDelay),
		zap.Duration("transfer_delay", cfg.TransferDelay),
		zap.Duration("confirmation_ttl", cfg.ConfirmationTTL),
		zap.String("refresh_schedule", cfg.RefreshSchedule),
		zap.Bool("events_enabled", cfg.AMQPURL != ""),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(ctx, cfg.OTLPEndpoint, serviceName)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a.onClose(func() error { return shutdown(context.Background()) })

	// --- Metrics ---
	a.metrics = observability.NewMetrics()

	// --- Dashboard ---
	a.dashboard = service.NewDashboard(newSource(cfg, logger), a.metrics, logger)
	a.onClose(func() error { a.dashboard.Close(); return nil })

	// --- Profile ---
	store, err := newStore(cfg)
	if err != nil {
		a.close()
		return nil, err
	}
	if c, ok := store.(io.Closer); ok {
		a.onClose(c.Close)
	}
	a.profile = service.NewProfile(store, cfg.ProfileDelay, a.metrics, logger)
	a.onClose(func() error { a.profile.Close(); return nil })

	// --- Transfers ---
	publisher := newPublisher(cfg, logger)
	a.onClose(publisher.Close)

	pending := cache.New[string](cfg.ConfirmationTTL)
	a.onClose(func() error { pending.Close(); return nil })

	a.transfers = service.NewTransfers(a.dashboard, publisher, pending, service.TransferOptions{
		SigningKey: []byte(cfg.TransferSigningKey),
		Delay:      cfg.TransferDelay,
		ConfirmTTL: cfg.ConfirmationTTL,
	}, a.metrics, logger)

	return a, nil
}

func newSource(cfg *config.Config, logger *zap.Logger) port.DashboardSource {
	if cfg.DataSource == "http" {
		logger.Info("using HTTP dashboard API", zap.String("url", cfg.DashboardAPIURL))
		cb := resilience.NewCircuitBreaker("dashboard-api", logger)
		return client.NewDashboardClient(
			&http.Client{Timeout: cfg.HTTPTimeout},
			cfg.DashboardAPIURL,
			cb,
			resilience.Config{
				MaxRetries:     cfg.MaxRetries,
				InitialBackoff: cfg.InitialBackoff,
				MaxConcurrency: cfg.MaxConcurrency,
			},
		)
	}
	logger.Info("using in-process mock dashboard data")
	return mockapi.New(cfg.MockDelay)
}

func newStore(cfg *config.Config) (port.KVStore, error) {
	if cfg.ProfileStore == "sqlite" {
		store, err := kv.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open profile store: %w", err)
		}
		return store, nil
	}
	return kv.NewMemoryStore(), nil
}

type closablePublisher interface {
	port.EventPublisher
	Close() error
}

// newPublisher connects to the broker when one is configured. Events are
// best effort, so a broker that cannot be reached disables publishing.
func newPublisher(cfg *config.Config, logger *zap.Logger) closablePublisher {
	if cfg.AMQPURL == "" {
		return events.NewNoop(logger)
	}
	p, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey, logger)
	if err != nil {
		logger.Warn("event broker unavailable, transfer events disabled", zap.Error(err))
		return events.NewNoop(logger)
	}
	logger.Info("publishing transfer events",
		zap.String("exchange", cfg.AMQPExchange),
		zap.String("routing_key", cfg.AMQPRoutingKey),
	)
	return p
}

func (a *app) onClose(fn func() error) {
	a.closers = append(a.closers, fn)
}

// close releases resources in reverse order of acquisition.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("shutdown step failed", zap.Error(err))
		}
	}
	a.closers = nil
	_ = a.logger.Sync()
}
