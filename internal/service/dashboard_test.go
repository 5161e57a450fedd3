package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/boddenberg/finboard-bfa/internal/domain"
	"github.com/boddenberg/finboard-bfa/internal/infra/mockapi"
	"github.com/boddenberg/finboard-bfa/internal/infra/observability"
	"github.com/boddenberg/finboard-bfa/internal/service"

	"go.uber.org/zap"
)

// --- Mocks ---

// gatedSource blocks the n-th FetchCards call until gates[n] is closed and
// then returns cards[n]. The other collections come from the mock API.
type gatedSource struct {
	*mockapi.Source

	mu    sync.Mutex
	calls int
	gates []chan struct{}
	cards [][]domain.Card
}

func newGatedSource(rounds int) *gatedSource {
	g := &gatedSource{Source: mockapi.New(0)}
	for i := 0; i < rounds; i++ {
		g.gates = append(g.gates, make(chan struct{}))
		g.cards = append(g.cards, []domain.Card{{ID: "round-" + string(rune('a'+i))}})
	}
	return g
}

func (g *gatedSource) FetchCards(ctx context.Context) ([]domain.Card, error) {
	g.mu.Lock()
	i := g.calls
	g.calls++
	gate, cards := g.gates[i], g.cards[i]
	g.mu.Unlock()

	select {
	case <-gate:
		return cards, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (g *gatedSource) started() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(time.Millisecond)
	}
}

// --- Tests ---

func TestDashboard_InitialState(t *testing.T) {
	d := service.NewDashboard(mockapi.New(0), observability.NewMetrics(), zap.NewNop())

	snap := d.Snapshot()
	if snap.Status != domain.DashboardIdle || snap.IsLoading || snap.Error != nil {
		t.Errorf("unexpected initial state: %+v", snap)
	}
	if snap.Cards == nil || len(snap.Cards) != 0 {
		t.Error("collections should start empty")
	}
}

func TestDashboard_RefetchLoadsAllCollections(t *testing.T) {
	d := service.NewDashboard(mockapi.New(0), observability.NewMetrics(), zap.NewNop())

	if err := d.Refetch(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap := d.Snapshot()
	if snap.IsLoading || snap.Status != domain.DashboardLoaded || snap.Error != nil {
		t.Errorf("unexpected state: %+v", snap)
	}
	if len(snap.Cards) != 3 || len(snap.Transactions) != 3 || len(snap.WeeklyActivity) != 7 ||
		len(snap.ExpenseCategories) != 4 || len(snap.Contacts) != 3 || len(snap.BalanceHistory) != 7 {
		t.Errorf("unexpected collection sizes: %+v", snap.DashboardData)
	}
	if snap.Round != 1 || snap.LoadedAt == nil {
		t.Errorf("expected round 1 with a load time, got %d %v", snap.Round, snap.LoadedAt)
	}
}

func TestDashboard_StartIsLoadingUntilDone(t *testing.T) {
	d := service.NewDashboard(mockapi.New(30*time.Millisecond), observability.NewMetrics(), zap.NewNop())

	d.Start(context.Background())
	if !d.Snapshot().IsLoading {
		t.Fatal("expected isLoading right after Start")
	}

	waitFor(t, func() bool { return !d.Snapshot().IsLoading })
	if len(d.Snapshot().Cards) != 3 {
		t.Error("expected cards after the first round")
	}
}

func TestDashboard_SequentialRefetchesSettle(t *testing.T) {
	d := service.NewDashboard(mockapi.New(0), observability.NewMetrics(), zap.NewNop())

	for i := 0; i < 3; i++ {
		if err := d.Refetch(context.Background()); err != nil {
			t.Fatalf("round %d: %v", i, err)
		}
	}

	snap := d.Snapshot()
	if snap.IsLoading || snap.Round != 3 || len(snap.Contacts) != 3 {
		t.Errorf("unexpected state after three rounds: %+v", snap)
	}
}

func TestDashboard_FailureKeepsPreviousData(t *testing.T) {
	src := mockapi.New(0)
	metrics := observability.NewMetrics()
	d := service.NewDashboard(src, metrics, zap.NewNop())

	if err := d.Refetch(context.Background()); err != nil {
		t.Fatalf("first round: %v", err)
	}

	boom := errors.New("boom")
	src.SetFault(func(resource string) error {
		if resource == mockapi.ResourceExpenseCategories {
			return boom
		}
		return nil
	})

	err := d.Refetch(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped fault, got %v", err)
	}

	snap := d.Snapshot()
	if snap.Error == nil || *snap.Error != domain.DashboardErrorMessage {
		t.Errorf("expected provider error message, got %v", snap.Error)
	}
	if snap.IsLoading || snap.Status != domain.DashboardError {
		t.Errorf("unexpected state: %+v", snap)
	}
	if len(snap.Cards) != 3 || snap.Round != 1 {
		t.Error("collections of the last good round must be kept")
	}

	src.SetFault(nil)
	if err := d.Refetch(context.Background()); err != nil {
		t.Fatalf("recovery round: %v", err)
	}
	if s := d.Snapshot(); s.Error != nil || s.Status != domain.DashboardLoaded {
		t.Errorf("error should clear on recovery: %+v", s)
	}

	if m := metrics.Snapshot(); m.RoundsFailed != 1 || m.RoundsApplied != 2 {
		t.Errorf("unexpected round metrics: %+v", m)
	}
}

func TestDashboard_StaleRoundIsDiscarded(t *testing.T) {
	src := newGatedSource(2)
	metrics := observability.NewMetrics()
	d := service.NewDashboard(src, metrics, zap.NewNop())

	errs := make(chan error, 2)
	go func() { errs <- d.Refetch(context.Background()) }()
	waitFor(t, func() bool { return src.started() == 1 })
	go func() { errs <- d.Refetch(context.Background()) }()
	waitFor(t, func() bool { return src.started() == 2 })

	// newest round finishes first
	close(src.gates[1])
	if err := <-errs; err != nil {
		t.Fatalf("newest round: %v", err)
	}
	snap := d.Snapshot()
	if snap.IsLoading || snap.Cards[0].ID != "round-b" {
		t.Fatalf("expected round-b applied, got %+v", snap)
	}

	close(src.gates[0])
	if err := <-errs; err != nil {
		t.Fatalf("stale round should be dropped silently, got %v", err)
	}
	if got := d.Snapshot().Cards[0].ID; got != "round-b" {
		t.Errorf("stale round overwrote newer data: %s", got)
	}
	if m := metrics.Snapshot(); m.RoundsDiscarded != 1 || m.RoundsApplied != 1 {
		t.Errorf("unexpected round metrics: %+v", m)
	}
}

func TestDashboard_LoadingUntilNewestRoundCompletes(t *testing.T) {
	src := newGatedSource(2)
	d := service.NewDashboard(src, observability.NewMetrics(), zap.NewNop())

	done := make(chan struct{}, 2)
	go func() { d.Refetch(context.Background()); done <- struct{}{} }()
	waitFor(t, func() bool { return src.started() == 1 })
	go func() { d.Refetch(context.Background()); done <- struct{}{} }()
	waitFor(t, func() bool { return src.started() == 2 })

	close(src.gates[0])
	<-done
	if !d.Snapshot().IsLoading {
		t.Error("older round must not end the loading state")
	}

	close(src.gates[1])
	<-done
	if d.Snapshot().IsLoading {
		t.Error("expected loading to end with the newest round")
	}
}

func TestDashboard_CloseDiscardsLateResults(t *testing.T) {
	src := newGatedSource(1)
	d := service.NewDashboard(src, observability.NewMetrics(), zap.NewNop())

	d.Start(context.Background())
	waitFor(t, func() bool { return src.started() == 1 })
	d.Close()
	close(src.gates[0])

	time.Sleep(20 * time.Millisecond)
	if snap := d.Snapshot(); len(snap.Cards) != 0 || snap.Round != 0 {
		t.Errorf("late result applied after Close: %+v", snap)
	}

	if err := d.Refetch(context.Background()); !errors.Is(err, service.ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestDashboard_ContactByID(t *testing.T) {
	d := service.NewDashboard(mockapi.New(0), observability.NewMetrics(), zap.NewNop())

	if _, ok := d.ContactByID("contact1"); ok {
		t.Error("no contacts before the first round")
	}
	d.Refetch(context.Background())

	c, ok := d.ContactByID("contact2")
	if !ok || c.Name != "Randy Press" {
		t.Errorf("unexpected lookup: %+v %v", c, ok)
	}
}

func TestDashboard_SnapshotIsACopy(t *testing.T) {
	d := service.NewDashboard(mockapi.New(0), observability.NewMetrics(), zap.NewNop())
	d.Refetch(context.Background())

	snap := d.Snapshot()
	snap.Cards[0].Balance = -1

	if d.Snapshot().Cards[0].Balance == -1 {
		t.Error("snapshot shares memory with provider state")
	}
}
