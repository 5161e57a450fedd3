// Package client holds HTTP implementations of the service ports.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/boddenberg/finboard-bfa/internal/domain"
	"github.com/boddenberg/finboard-bfa/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("client")

// DashboardClient fetches dashboard collections from a remote API exposing
// GET {baseURL}/v1/dashboard/{collection}.
type DashboardClient struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	bulkhead   *resilience.Bulkhead
	cfg        resilience.Config
}

// NewDashboardClient creates a new DashboardClient.
func NewDashboardClient(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, cfg resilience.Config) *DashboardClient {
	return &DashboardClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		cb:         cb,
		bulkhead:   resilience.NewBulkhead(cfg.MaxConcurrency),
		cfg:        cfg,
	}
}

func (c *DashboardClient) FetchCards(ctx context.Context) ([]domain.Card, error) {
	return fetch[domain.Card](ctx, c, "cards")
}

func (c *DashboardClient) FetchTransactions(ctx context.Context) ([]domain.Transaction, error) {
	return fetch[domain.Transaction](ctx, c, "transactions")
}

func (c *DashboardClient) FetchWeeklyActivity(ctx context.Context) ([]domain.WeeklyActivity, error) {
	return fetch[domain.WeeklyActivity](ctx, c, "weekly-activity")
}

func (c *DashboardClient) FetchExpenseCategories(ctx context.Context) ([]domain.ExpenseCategory, error) {
	return fetch[domain.ExpenseCategory](ctx, c, "expense-categories")
}

func (c *DashboardClient) FetchContacts(ctx context.Context) ([]domain.Contact, error) {
	return fetch[domain.Contact](ctx, c, "contacts")
}

func (c *DashboardClient) FetchBalanceHistory(ctx context.Context) ([]domain.BalanceHistory, error) {
	return fetch[domain.BalanceHistory](ctx, c, "balance-history")
}

// fetch GETs one collection with bulkhead, circuit breaker, retry and tracing.
func fetch[T any](ctx context.Context, c *DashboardClient, collection string) ([]T, error) {
	ctx, span := tracer.Start(ctx, "DashboardClient.Fetch")
	defer span.End()
	span.SetAttributes(attribute.String("dashboard.collection", collection))

	var items []T

	err := c.bulkhead.Do(ctx, func() error {
		_, err := c.cb.Execute(func() (any, error) {
			return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
				url := fmt.Sprintf("%s/v1/dashboard/%s", c.baseURL, collection)
				req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
				if err != nil {
					return resilience.Permanent(err)
				}
				req.Header.Set("Accept", "application/json")

				resp, err := c.httpClient.Do(req)
				if err != nil {
					return err
				}
				defer resp.Body.Close()

				if resp.StatusCode == http.StatusNotFound {
					return resilience.Permanent(&domain.ErrNotFound{Resource: "collection", ID: collection})
				}
				if resp.StatusCode != http.StatusOK {
					return fmt.Errorf("dashboard API returned status %d", resp.StatusCode)
				}

				items = nil
				return json.NewDecoder(resp.Body).Decode(&items)
			})
		})
		return err
	})

	if err != nil {
		span.RecordError(err)
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &domain.ErrCircuitOpen{Service: "dashboard-api"}
		}
		return nil, &domain.ErrExternalService{Service: "dashboard-api:" + collection, Err: err}
	}

	if items == nil {
		items = []T{}
	}
	return items, nil
}
