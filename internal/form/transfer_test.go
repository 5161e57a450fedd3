package form_test

import (
	"context"
	"errors"
	"testing"

	"github.com/boddenberg/finboard-bfa/internal/domain"
	"github.com/boddenberg/finboard-bfa/internal/form"
)

type mockContacts map[string]domain.Contact

func (m mockContacts) ContactByID(id string) (domain.Contact, bool) {
	c, ok := m[id]
	return c, ok
}

type mockSender struct {
	calls int
	err   error
}

func (m *mockSender) Send(_ context.Context, recipientID string, amount float64) (*domain.Transfer, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Transfer{ID: "t-1", RecipientID: recipientID, Amount: amount, Status: domain.TransferCompleted}, nil
}

var contacts = mockContacts{"contact1": {ID: "contact1", Name: "Livia Bator"}}

func TestTransferForm_Defaults(t *testing.T) {
	f := form.NewTransferForm(contacts)
	if f.Amount() != "525.50" || f.Selected() != "" || f.Confirming() {
		t.Errorf("unexpected initial state: %q %q %v", f.Amount(), f.Selected(), f.Confirming())
	}
}

func TestTransferForm_SelectToggles(t *testing.T) {
	f := form.NewTransferForm(contacts)
	f.Select("contact1")
	f.Select("contact1")
	if f.Selected() != "" {
		t.Errorf("selecting twice should deselect, got %q", f.Selected())
	}
	f.Select("contact1")
	f.Select("contact2")
	if f.Selected() != "contact2" {
		t.Errorf("expected contact2, got %q", f.Selected())
	}
}

func TestTransferForm_NegativeAmount(t *testing.T) {
	f := form.NewTransferForm(contacts)
	if msg := f.SetAmount("-50"); msg != "Amount must be greater than zero" {
		t.Errorf("got %q", msg)
	}
	if f.AmountError() != "Amount must be greater than zero" {
		t.Errorf("field error not kept: %q", f.AmountError())
	}
}

func TestTransferForm_SubmitWithoutRecipient(t *testing.T) {
	f := form.NewTransferForm(contacts)
	f.SetAmount("100")

	n, err := f.Submit()
	if err == nil || n == nil || n.Description != "Please select a recipient" {
		t.Fatalf("expected recipient notification, got %+v %v", n, err)
	}
	if f.Confirming() {
		t.Error("confirmation must stay closed")
	}
	if f.AmountError() != "" {
		t.Error("missing recipient is not a field error")
	}
}

func TestTransferForm_SubmitInvalidAmount(t *testing.T) {
	f := form.NewTransferForm(contacts)
	f.Select("contact1")
	f.SetAmount("20000")

	n, err := f.Submit()
	var v *domain.ErrValidation
	if !errors.As(err, &v) || v.Field != "amount" || n != nil {
		t.Fatalf("expected amount field error, got %+v %v", n, err)
	}
	if f.Confirming() {
		t.Error("confirmation must stay closed")
	}
}

func TestTransferForm_ConfirmSuccess(t *testing.T) {
	f := form.NewTransferForm(contacts)
	f.Select("contact1")
	f.SetAmount("100")

	if _, err := f.Submit(); err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}
	if !f.Confirming() {
		t.Fatal("expected confirmation step")
	}

	sender := &mockSender{}
	n, transfer, err := f.Confirm(context.Background(), sender)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Title != "Transfer Successful" || n.Description != "100.00 has been sent to Livia Bator." {
		t.Errorf("unexpected notification: %+v", n)
	}
	if transfer == nil || sender.calls != 1 {
		t.Errorf("expected one send, got %d", sender.calls)
	}
	if f.Amount() != "0.00" || f.Selected() != "" || f.Confirming() {
		t.Errorf("form not reset: %q %q %v", f.Amount(), f.Selected(), f.Confirming())
	}
}

func TestTransferForm_ConfirmUnknownContactName(t *testing.T) {
	f := form.NewTransferForm(contacts)
	f.Select("ghost")
	f.Submit()

	n, _, err := f.Confirm(context.Background(), &mockSender{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Description != "525.50 has been sent to recipient." {
		t.Errorf("unexpected notification: %+v", n)
	}
}

func TestTransferForm_ConfirmFailureKeepsConfirmation(t *testing.T) {
	f := form.NewTransferForm(contacts)
	f.Select("contact1")
	f.Submit()

	n, _, err := f.Confirm(context.Background(), &mockSender{err: errors.New("down")})
	if err == nil || n.Title != "Transfer Failed" {
		t.Fatalf("expected failure, got %+v %v", n, err)
	}
	if !f.Confirming() || f.Selected() != "contact1" {
		t.Error("confirmation should stay open after a failure")
	}
}

func TestTransferForm_CancelAndConfirmWithoutSubmit(t *testing.T) {
	f := form.NewTransferForm(contacts)
	f.Select("contact1")
	f.Submit()
	f.Cancel()

	sender := &mockSender{}
	if _, _, err := f.Confirm(context.Background(), sender); err == nil {
		t.Fatal("confirm after cancel should fail")
	}
	if sender.calls != 0 {
		t.Error("cancel must have no side effects")
	}
	if f.Selected() != "contact1" || f.Amount() != "525.50" {
		t.Error("cancel should keep the form state")
	}
}

func TestTransferForm_Recipient(t *testing.T) {
	f := form.NewTransferForm(contacts)
	if _, ok := f.Recipient(); ok {
		t.Error("expected no recipient before selection")
	}

	f.Select("contact1")
	if c, ok := f.Recipient(); !ok || c.Name != "Livia Bator" {
		t.Errorf("expected Livia Bator, got %+v (%v)", c, ok)
	}

	f.Select("unknown")
	if _, ok := f.Recipient(); ok {
		t.Error("expected unknown contact to be missing")
	}
}
