package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const StateCompleted = "completed"

// Payment is a ledger entry for money the gateway accepted.
type Payment struct {
	ID           uuid.UUID
	State        string
	Amount       decimal.Decimal
	Currency     string
	GatewayID    string
	OrderID      string
	IsTestMode   bool
	RemoteID     string
	RemoteState  string
	AuthorizedAt time.Time
	CreatedAt    time.Time
}

// Callback is one inbound return from the hosted page, stored for audit
// whether or not it was accepted.
type Callback struct {
	ID             int64
	GatewayID      string
	OrderID        string
	Kind           string
	Params         map[string]string
	SignatureValid bool
}
