package checkout

import "errors"

var (
	ErrInvalidAmount = errors.New("invalid payment amount")
	ErrInvalidOrder  = errors.New("invalid order")

	// ErrDuplicateOrderResubmission is returned when an order id already went
	// through the hosted page. The gateway rejects reused ids, so the shopper
	// has to start a new order.
	ErrDuplicateOrderResubmission = errors.New("order id was already submitted to the gateway")
)
