// Package mockapi simulates the remote dashboard API: every fetch waits a
// fixed delay and then returns a static data set.
package mockapi

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/boddenberg/finboard-bfa/internal/domain"
	"github.com/boddenberg/finboard-bfa/internal/infra/resilience"
)

// DefaultDelay is the simulated latency of every fetch.
const DefaultDelay = 800 * time.Millisecond

// Resource names, used for fault injection and error reporting.
const (
	ResourceCards             = "cards"
	ResourceTransactions      = "transactions"
	ResourceWeeklyActivity    = "weekly-activity"
	ResourceExpenseCategories = "expense-categories"
	ResourceContacts          = "contacts"
	ResourceBalanceHistory    = "balance-history"
)

// FaultFunc decides whether a fetch of resource fails. Returning nil lets it succeed.
type FaultFunc func(resource string) error

// Source is an in-process stand-in for the dashboard API.
type Source struct {
	delay time.Duration
	fault atomic.Pointer[FaultFunc]
	calls atomic.Int64
}

// Option configures a Source.
type Option func(*Source)

// WithFault installs a fault injector.
func WithFault(f FaultFunc) Option {
	return func(s *Source) { s.SetFault(f) }
}

// New creates a mock source with the given delay.
func New(delay time.Duration, opts ...Option) *Source {
	s := &Source{delay: delay}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetFault replaces the fault injector; nil removes it.
func (s *Source) SetFault(f FaultFunc) {
	if f == nil {
		s.fault.Store(nil)
		return
	}
	s.fault.Store(&f)
}

// Calls returns how many fetches have been started.
func (s *Source) Calls() int64 {
	return s.calls.Load()
}

func (s *Source) simulate(ctx context.Context, resource string) error {
	s.calls.Add(1)
	if err := resilience.Wait(ctx, s.delay); err != nil {
		return err
	}
	if f := s.fault.Load(); f != nil {
		return (*f)(resource)
	}
	return nil
}

func (s *Source) FetchCards(ctx context.Context) ([]domain.Card, error) {
	if err := s.simulate(ctx, ResourceCards); err != nil {
		return nil, err
	}
	return []domain.Card{
		{ID: "card1", Balance: 5756, CardHolder: "Eddy Cusuma", CardNumber: "3778 **** **** 1234", ValidThru: "12/22", IsDefault: true},
		{ID: "card2", Balance: 3280, CardHolder: "Eddy Cusuma", CardNumber: "4539 **** **** 5789", ValidThru: "08/24", IsDefault: false},
		{ID: "card3", Balance: 1890, CardHolder: "Eddy Cusuma", CardNumber: "5267 **** **** 7591", ValidThru: "05/23", IsDefault: false},
	}, nil
}

func (s *Source) FetchTransactions(ctx context.Context) ([]domain.Transaction, error) {
	if err := s.simulate(ctx, ResourceTransactions); err != nil {
		return nil, err
	}
	return []domain.Transaction{
		{ID: "tx1", Type: domain.TransactionWithdrawal, Amount: 850, Description: "Deposit from my Card", Date: "28 January 2021", Icon: "card", IconBg: "#FFF5D9"},
		{ID: "tx2", Type: domain.TransactionDeposit, Amount: 2500, Description: "Deposit Paypal", Date: "25 January 2021", Icon: "paypal", IconBg: "#E7EDFF"},
		{ID: "tx3", Type: domain.TransactionDeposit, Amount: 5400, Description: "Jemi Wilson", Date: "21 January 2021", Icon: "user", IconBg: "#DCFAF8"},
	}, nil
}

func (s *Source) FetchWeeklyActivity(ctx context.Context) ([]domain.WeeklyActivity, error) {
	if err := s.simulate(ctx, ResourceWeeklyActivity); err != nil {
		return nil, err
	}
	return []domain.WeeklyActivity{
		{Day: "Sat", Deposit: 91, Withdrawal: 178},
		{Day: "Sun", Deposit: 49, Withdrawal: 130},
		{Day: "Mon", Deposit: 98, Withdrawal: 122},
		{Day: "Tue", Deposit: 138, Withdrawal: 178},
		{Day: "Wed", Deposit: 91, Withdrawal: 57},
		{Day: "Thu", Deposit: 91, Withdrawal: 145},
		{Day: "Fri", Deposit: 126, Withdrawal: 147},
	}, nil
}

func (s *Source) FetchExpenseCategories(ctx context.Context) ([]domain.ExpenseCategory, error) {
	if err := s.simulate(ctx, ResourceExpenseCategories); err != nil {
		return nil, err
	}
	return []domain.ExpenseCategory{
		{Category: "Bill Expense", Percentage: 25, Color: "#FC7900"},
		{Category: "Entertainment", Percentage: 30, Color: "#343C6A"},
		{Category: "Investment", Percentage: 20, Color: "#396AFF"},
		{Category: "Others", Percentage: 25, Color: "#232323"},
	}, nil
}

func (s *Source) FetchContacts(ctx context.Context) ([]domain.Contact, error) {
	if err := s.simulate(ctx, ResourceContacts); err != nil {
		return nil, err
	}
	return []domain.Contact{
		{ID: "contact1", Name: "Livia Bator", Role: "CEO", Avatar: "/dashboardAssets/livia.png"},
		{ID: "contact2", Name: "Randy Press", Role: "Director", Avatar: "/dashboardAssets/randy.png"},
		{ID: "contact3", Name: "Workman", Role: "Designer", Avatar: "/dashboardAssets/workman.png"},
	}, nil
}

func (s *Source) FetchBalanceHistory(ctx context.Context) ([]domain.BalanceHistory, error) {
	if err := s.simulate(ctx, ResourceBalanceHistory); err != nil {
		return nil, err
	}
	return []domain.BalanceHistory{
		{Month: "Jul", Balance: 120},
		{Month: "Aug", Balance: 340},
		{Month: "Sep", Balance: 490},
		{Month: "Oct", Balance: 780},
		{Month: "Nov", Balance: 220},
		{Month: "Dec", Balance: 580},
		{Month: "Jan", Balance: 640},
	}, nil
}
