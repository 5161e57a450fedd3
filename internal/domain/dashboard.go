package domain

import "time"

// ============================================================
// Dashboard collections
// ============================================================

// Card is a payment card shown in the card overview.
type Card struct {
	ID         string  `json:"id"`
	Balance    float64 `json:"balance"`
	CardHolder string  `json:"cardHolder"`
	CardNumber string  `json:"cardNumber"` // masked, e.g. "3778 **** **** 1234"
	ValidThru  string  `json:"validThru"`  // MM/YY
	IsDefault  bool    `json:"isDefault"`
}

// TransactionType classifies an entry of the transaction feed.
type TransactionType string

const (
	TransactionDeposit    TransactionType = "deposit"
	TransactionWithdrawal TransactionType = "withdrawal"
	TransactionTransfer   TransactionType = "transfer"
)

// Transaction is a single entry of the recent transactions feed.
type Transaction struct {
	ID          string          `json:"id"`
	Type        TransactionType `json:"type"`
	Amount      float64         `json:"amount"`
	Description string          `json:"description"`
	Date        string          `json:"date"` // display string
	Icon        string          `json:"icon"`
	IconBg      string          `json:"iconBg"`
}

// WeeklyActivity holds deposits and withdrawals for one weekday.
type WeeklyActivity struct {
	Day        string  `json:"day"`
	Deposit    float64 `json:"deposit"`
	Withdrawal float64 `json:"withdrawal"`
}

// ExpenseCategory is one slice of the expense breakdown.
type ExpenseCategory struct {
	Category   string  `json:"category"`
	Percentage float64 `json:"percentage"`
	Color      string  `json:"color"`
}

// Contact is a quick-transfer recipient.
type Contact struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Avatar string `json:"avatar"`
}

// BalanceHistory is the balance at the end of one month.
type BalanceHistory struct {
	Month   string  `json:"month"`
	Balance float64 `json:"balance"`
}

// ============================================================
// Dashboard state
// ============================================================

// DashboardStatus is the state of the dashboard fetch lifecycle.
type DashboardStatus string

const (
	DashboardIdle    DashboardStatus = "idle"
	DashboardLoading DashboardStatus = "loading"
	DashboardLoaded  DashboardStatus = "loaded"
	DashboardError   DashboardStatus = "error"
)

// DashboardErrorMessage is the user-facing message set when a round fails.
const DashboardErrorMessage = "Failed to load dashboard data. Please try again later."

// DashboardData groups the six collections fetched in one round.
type DashboardData struct {
	Cards             []Card            `json:"cards"`
	Transactions      []Transaction     `json:"transactions"`
	WeeklyActivity    []WeeklyActivity  `json:"weeklyActivity"`
	ExpenseCategories []ExpenseCategory `json:"expenseCategories"`
	Contacts          []Contact         `json:"contacts"`
	BalanceHistory    []BalanceHistory  `json:"balanceHistory"`
}

// Collections lists the collection names served one by one, in fetch order.
var Collections = []string{
	"cards", "transactions", "weekly-activity", "expense-categories", "contacts", "balance-history",
}

// Collection returns the named collection.
func (d DashboardData) Collection(name string) (any, bool) {
	switch name {
	case "cards":
		return d.Cards, true
	case "transactions":
		return d.Transactions, true
	case "weekly-activity":
		return d.WeeklyActivity, true
	case "expense-categories":
		return d.ExpenseCategories, true
	case "contacts":
		return d.Contacts, true
	case "balance-history":
		return d.BalanceHistory, true
	}
	return nil, false
}

// DashboardSnapshot is the read surface of the dashboard provider.
type DashboardSnapshot struct {
	DashboardData
	IsLoading bool            `json:"isLoading"`
	Error     *string         `json:"error"`
	Status    DashboardStatus `json:"status"`
	Round     uint64          `json:"round"`
	LoadedAt  *time.Time      `json:"loadedAt,omitempty"`
}
