// Package attempt tracks checkout submissions per order id. The hosted page
// refuses an order id it has already seen through to a final state, so the
// service consults this store before building a new redirect.
package attempt

import (
	"time"

	"github.com/shopspring/decimal"
)

type State string

const (
	StatePending   State = "pending"
	StateCompleted State = "completed"
	StateCanceled  State = "canceled"
	StateFailed    State = "failed"
)

// IsTerminal reports whether no further transition is allowed.
func (s State) IsTerminal() bool {
	switch s {
	case StateCompleted, StateCanceled, StateFailed:
		return true
	}
	return false
}

type Attempt struct {
	GatewayID  string
	OrderID    string
	State      State
	// Amount is the order total; Charged is what the redirect asked the
	// gateway to collect. Both are in Currency.
	Amount     decimal.Decimal
	Charged    decimal.Decimal
	Currency   string
	IsTestMode bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
