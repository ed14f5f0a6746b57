package callback

import (
	"fmt"
	"strings"
	"time"

	"epdq-gateway/internal/attempt"
	"epdq-gateway/internal/gateway"
	"epdq-gateway/internal/payment"

	"github.com/shopspring/decimal"
)

// Kind is the return URL the gateway sent the shopper to.
type Kind string

const (
	KindAccept    Kind = "accept"
	KindDecline   Kind = "decline"
	KindException Kind = "exception"
	KindCancel    Kind = "cancel"
)

func ParseKind(raw string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(raw))); k {
	case KindAccept, KindDecline, KindException, KindCancel:
		return k, nil
	default:
		return "", fmt.Errorf("%w: unknown return kind %q", ErrMalformedCallback, raw)
	}
}

type FailureKind string

const (
	FailureDeclined  FailureKind = "declined"
	FailureException FailureKind = "exception"
)

const RemoteStateAccepted = "accepted"

// Inbound parameter names read by the handler.
const (
	ParamOrderID  = "ORDERID"
	ParamAmount   = "AMOUNT"
	ParamCurrency = "CURRENCY"
	ParamPayID    = "PAYID"
)

var (
	CancelNotice = fmt.Sprintf(
		"You have canceled checkout at %s. If you wish to retry, please re-add the products to your cart.",
		gateway.DisplayLabel,
	)
	FailureNotice = "Your payment could not be completed. Please try again or choose another payment method."
)

type Outcome struct {
	State       attempt.State
	FailureKind FailureKind
	Amount      decimal.Decimal
	Currency    string
	RemoteID    string
	RemoteState string
	Timestamp   time.Time
}

type Result struct {
	Outcome Outcome
	// Notice is shown to the shopper; empty on success.
	Notice string
	// Payment is set only for a completed outcome.
	Payment *payment.Payment
	// ResubmissionBlocked is true when the order id can no longer be sent to
	// the gateway and the shopper has to start a new order.
	ResubmissionBlocked bool
}
