package service_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/boddenberg/finboard-bfa/internal/service"

	"go.uber.org/zap"
)

type countingRefetcher struct {
	calls atomic.Int32
}

func (c *countingRefetcher) Refetch(context.Context) error {
	c.calls.Add(1)
	return nil
}

func TestRefresher_InvalidSchedule(t *testing.T) {
	if _, err := service.NewRefresher("not a schedule", &countingRefetcher{}, time.Second, zap.NewNop()); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestRefresher_RunsOnSchedule(t *testing.T) {
	target := &countingRefetcher{}
	r, err := service.NewRefresher("@every 1s", target, time.Second, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r.Start()
	deadline := time.Now().Add(3 * time.Second)
	for target.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	<-r.Stop().Done()

	if target.calls.Load() == 0 {
		t.Error("refetch was never triggered")
	}
}
