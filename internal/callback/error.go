package callback

import (
	"errors"

	"epdq-gateway/internal/gateway"
)

var (
	ErrSignatureMismatch = errors.New("callback signature mismatch")
	ErrMalformedCallback = errors.New("malformed callback")
	ErrCallbackReplayed  = errors.New("callback for an already finished order")
)

// ErrorKind names err for operators and metrics. Shoppers only ever see a
// generic message.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSignatureMismatch):
		return "signature_mismatch"
	case errors.Is(err, ErrMalformedCallback):
		return "malformed_callback"
	case errors.Is(err, ErrCallbackReplayed):
		return "callback_replayed"
	case errors.Is(err, gateway.ErrConfiguration):
		return "configuration_error"
	default:
		return "internal_error"
	}
}
