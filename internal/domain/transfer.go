package domain

import (
	"fmt"
	"time"
)

// ============================================================
// Quick transfer
// ============================================================

// MaxTransferAmount is the largest amount a quick transfer may send.
const MaxTransferAmount = 10000

// TransferStatus values.
const (
	TransferCompleted = "completed"
	TransferCancelled = "cancelled"
)

// Transfer is a completed quick transfer.
type Transfer struct {
	ID            string    `json:"id"`
	RecipientID   string    `json:"recipientId"`
	RecipientName string    `json:"recipientName"`
	Amount        float64   `json:"amount"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
}

// TransferConfirmation is issued when a transfer passes validation and
// must be confirmed (or cancelled) before it is performed.
type TransferConfirmation struct {
	Token         string    `json:"token"`
	RecipientID   string    `json:"recipientId"`
	RecipientName string    `json:"recipientName"`
	Amount        float64   `json:"amount"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

// TransferCompletedEvent is published after a transfer succeeds.
type TransferCompletedEvent struct {
	TransferID  string    `json:"transferId"`
	RecipientID string    `json:"recipientId"`
	Amount      float64   `json:"amount"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// TransferSuccessNotification builds the notification shown after a transfer.
func TransferSuccessNotification(recipientName string, amount float64) Notification {
	if recipientName == "" {
		recipientName = "recipient"
	}
	return Notification{
		Title:       "Transfer Successful",
		Description: fmt.Sprintf("%.2f has been sent to %s.", amount, recipientName),
		Variant:     VariantSuccess,
	}
}

// TransferFailedNotification is shown when the transfer itself fails.
func TransferFailedNotification() Notification {
	return Notification{
		Title:       "Transfer Failed",
		Description: "There was an error processing your transfer. Please try again.",
		Variant:     VariantDestructive,
	}
}
