package form

import (
	"context"

	"github.com/boddenberg/finboard-bfa/internal/domain"
	"github.com/boddenberg/finboard-bfa/internal/port"
)

// InitialTransferAmount is the amount the quick-transfer widget starts with.
const InitialTransferAmount = "525.50"

// TransferForm is the quick-transfer widget: one selected contact, an amount,
// and a confirmation step between submit and the actual transfer.
type TransferForm struct {
	contacts    port.ContactDirectory
	selected    string
	amount      string
	amountError string
	confirming  bool
}

func NewTransferForm(contacts port.ContactDirectory) *TransferForm {
	return &TransferForm{contacts: contacts, amount: InitialTransferAmount}
}

// Select toggles id: selecting the selected contact clears the selection.
func (f *TransferForm) Select(id string) {
	if id == f.selected {
		f.selected = ""
		return
	}
	f.selected = id
}

func (f *TransferForm) Selected() string    { return f.selected }
func (f *TransferForm) Amount() string      { return f.amount }
func (f *TransferForm) AmountError() string { return f.amountError }
func (f *TransferForm) Confirming() bool    { return f.confirming }

// Recipient looks up the selected contact.
func (f *TransferForm) Recipient() (domain.Contact, bool) {
	if f.selected == "" {
		return domain.Contact{}, false
	}
	return f.contacts.ContactByID(f.selected)
}

// SetAmount stores the raw input and validates it.
func (f *TransferForm) SetAmount(raw string) string {
	f.amount = raw
	_, f.amountError = ValidateAmount(raw)
	return f.amountError
}

// Submit opens the confirmation step when both a recipient and a valid
// amount are present. A missing recipient is reported as a notification,
// an invalid amount as a field error.
func (f *TransferForm) Submit() (*domain.Notification, error) {
	if f.selected == "" {
		return &domain.Notification{
			Title:       "Error",
			Description: "Please select a recipient",
			Variant:     domain.VariantDestructive,
		}, &domain.ErrValidation{Field: "recipient", Message: "Please select a recipient"}
	}

	if _, msg := ValidateAmount(f.amount); msg != "" {
		f.amountError = msg
		return nil, &domain.ErrValidation{Field: "amount", Message: msg}
	}

	f.amountError = ""
	f.confirming = true
	return nil, nil
}

// Cancel closes the confirmation step.
func (f *TransferForm) Cancel() {
	f.confirming = false
}

// Confirm performs the transfer. On success the form resets and the
// confirmation closes; on failure it stays open so the user can retry.
func (f *TransferForm) Confirm(ctx context.Context, sender port.TransferSender) (domain.Notification, *domain.Transfer, error) {
	if !f.confirming {
		return domain.TransferFailedNotification(), nil,
			&domain.ErrValidation{Field: "confirmation", Message: "no transfer awaiting confirmation"}
	}

	amount, _ := ValidateAmount(f.amount)
	transfer, err := sender.Send(ctx, f.selected, amount)
	if err != nil {
		return domain.TransferFailedNotification(), nil, err
	}

	name := ""
	if c, ok := f.Recipient(); ok {
		name = c.Name
	}

	f.confirming = false
	f.amount = "0.00"
	f.amountError = ""
	f.selected = ""

	return domain.TransferSuccessNotification(name, amount), transfer, nil
}
