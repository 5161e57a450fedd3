package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/boddenberg/finboard-bfa/internal/domain"
	"github.com/boddenberg/finboard-bfa/internal/form"
	"github.com/boddenberg/finboard-bfa/internal/infra/observability"
	"github.com/boddenberg/finboard-bfa/internal/infra/resilience"
	"github.com/boddenberg/finboard-bfa/internal/port"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// TransferOptions tunes the transfer service.
type TransferOptions struct {
	SigningKey []byte
	Delay      time.Duration // simulated processing time of a transfer
	ConfirmTTL time.Duration // lifetime of a confirmation token
}

// Transfers runs the quick-transfer protocol over a stateless API: Prepare
// validates and issues a signed single-use confirmation token, Confirm
// redeems it and performs the transfer.
type Transfers struct {
	contacts  port.ContactDirectory
	publisher port.EventPublisher
	pending   port.Cache[string] // confirmation id -> recipient id
	opts      TransferOptions
	metrics   *observability.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

// ConfirmationClaims are carried by a confirmation token.
type ConfirmationClaims struct {
	RecipientID   string  `json:"rid"`
	RecipientName string  `json:"name"`
	Amount        float64 `json:"amt"`
	jwt.RegisteredClaims
}

func NewTransfers(
	contacts port.ContactDirectory,
	publisher port.EventPublisher,
	pending port.Cache[string],
	opts TransferOptions,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Transfers {
	return &Transfers{
		contacts:  contacts,
		publisher: publisher,
		pending:   pending,
		opts:      opts,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// Prepare runs the submit step of the quick-transfer form. When the form
// is valid it returns a confirmation; otherwise the notification (if any)
// and the validation error.
func (t *Transfers) Prepare(ctx context.Context, recipientID, amount string) (*domain.TransferConfirmation, *domain.Notification, error) {
	_, span := tracer.Start(ctx, "Transfers.Prepare")
	defer span.End()

	f := form.NewTransferForm(t.contacts)
	if recipientID != "" {
		f.Select(recipientID)
	}
	f.SetAmount(amount)

	if n, err := f.Submit(); err != nil {
		t.metrics.IncrTransfer("rejected")
		t.metrics.IncrValidationFailure("transfer")
		return nil, n, err
	}

	value, _ := form.ValidateAmount(amount)
	name := ""
	if c, ok := t.contacts.ContactByID(recipientID); ok {
		name = c.Name
	}

	now := t.now()
	expires := now.Add(t.opts.ConfirmTTL)
	id := uuid.NewString()
	claims := ConfirmationClaims{
		RecipientID:   recipientID,
		RecipientName: name,
		Amount:        value,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
			Issuer:    "finboard-bfa",
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.opts.SigningKey)
	if err != nil {
		return nil, nil, fmt.Errorf("sign confirmation: %w", err)
	}

	t.pending.Set(id, recipientID)
	t.metrics.IncrTransfer("prepared")

	return &domain.TransferConfirmation{
		Token:         token,
		RecipientID:   recipientID,
		RecipientName: name,
		Amount:        value,
		ExpiresAt:     expires,
	}, nil, nil
}

// Confirm redeems a confirmation token and performs the transfer. A token
// can be redeemed once; after a failed transfer it stays redeemable.
func (t *Transfers) Confirm(ctx context.Context, token string) (domain.Notification, *domain.Transfer, error) {
	ctx, span := tracer.Start(ctx, "Transfers.Confirm")
	defer span.End()

	claims, err := t.parse(token)
	if err != nil {
		return domain.TransferFailedNotification(), nil, err
	}
	if _, ok := t.pending.Take(claims.ID); !ok {
		return domain.TransferFailedNotification(), nil, &domain.ErrConfirmationExpired{}
	}

	f := form.NewTransferForm(t.contacts)
	f.Select(claims.RecipientID)
	f.SetAmount(strconv.FormatFloat(claims.Amount, 'f', -1, 64))
	if _, err := f.Submit(); err != nil {
		return domain.TransferFailedNotification(), nil, err
	}

	n, transfer, err := f.Confirm(ctx, t)
	if err != nil {
		span.RecordError(err)
		t.pending.Set(claims.ID, claims.RecipientID)
		t.logger.Error("transfer failed",
			zap.String("recipient_id", claims.RecipientID),
			zap.Error(err),
		)
		return n, nil, err
	}

	t.metrics.IncrTransfer("completed")
	return n, transfer, nil
}

// Cancel invalidates a confirmation token.
func (t *Transfers) Cancel(token string) error {
	claims, err := t.parse(token)
	if err != nil {
		return err
	}
	t.pending.Delete(claims.ID)
	t.metrics.IncrTransfer("cancelled")
	return nil
}

// Send performs the transfer after the simulated processing delay and
// publishes a TransferCompletedEvent. A publish failure is logged only.
func (t *Transfers) Send(ctx context.Context, recipientID string, amount float64) (*domain.Transfer, error) {
	ctx, span := tracer.Start(ctx, "Transfers.Send")
	defer span.End()
	span.SetAttributes(attribute.String("transfer.recipient_id", recipientID))

	if amount <= 0 || amount > domain.MaxTransferAmount {
		return nil, &domain.ErrValidation{Field: "amount", Message: "amount out of range"}
	}

	start := time.Now()
	if err := resilience.Wait(ctx, t.opts.Delay); err != nil {
		return nil, err
	}
	t.metrics.RecordRequestDuration("transfer", time.Since(start))

	name := ""
	if c, ok := t.contacts.ContactByID(recipientID); ok {
		name = c.Name
	}

	transfer := &domain.Transfer{
		ID:            uuid.NewString(),
		RecipientID:   recipientID,
		RecipientName: name,
		Amount:        amount,
		Status:        domain.TransferCompleted,
		CreatedAt:     t.now(),
	}

	evt := domain.TransferCompletedEvent{
		TransferID:  transfer.ID,
		RecipientID: recipientID,
		Amount:      amount,
		OccurredAt:  transfer.CreatedAt,
	}
	if err := t.publisher.PublishTransferCompleted(ctx, evt); err != nil {
		t.metrics.IncrExternalError("events")
		t.logger.Warn("failed to publish transfer event",
			zap.String("transfer_id", transfer.ID),
			zap.Error(err),
		)
	}

	t.logger.Info("transfer completed",
		zap.String("transfer_id", transfer.ID),
		zap.String("recipient_id", recipientID),
		zap.Float64("amount", amount),
	)
	return transfer, nil
}

func (t *Transfers) parse(token string) (*ConfirmationClaims, error) {
	claims := &ConfirmationClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return t.opts.SigningKey, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, &domain.ErrConfirmationExpired{}
		}
		return nil, &domain.ErrValidation{Field: "token", Message: "invalid confirmation token"}
	}
	if !parsed.Valid {
		return nil, &domain.ErrValidation{Field: "token", Message: "invalid confirmation token"}
	}
	return claims, nil
}
