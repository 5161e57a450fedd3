package events

import (
	"context"

	"github.com/boddenberg/finboard-bfa/internal/domain"

	"go.uber.org/zap"
)

// Noop logs events at debug level and drops them. Used when no broker is configured.
type Noop struct {
	logger *zap.Logger
}

func NewNoop(logger *zap.Logger) *Noop {
	return &Noop{logger: logger}
}

func (n *Noop) PublishTransferCompleted(_ context.Context, evt domain.TransferCompletedEvent) error {
	n.logger.Debug("transfer event dropped, no broker configured", zap.String("transfer_id", evt.TransferID))
	return nil
}

func (n *Noop) Close() error { return nil }
