package transport

import (
	"errors"
	"net/http"
	"net/url"

	"epdq-gateway/internal/callback"
	"epdq-gateway/internal/gateway"
	"epdq-gateway/internal/logger"
	"epdq-gateway/internal/signature"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// shopperErrorMessage is all a shopper learns about a rejected callback.
const shopperErrorMessage = "We could not confirm your payment. Please contact the store before trying again."

type callbackResponse struct {
	State               string `json:"state"`
	FailureKind         string `json:"failure_kind,omitempty"`
	Amount              string `json:"amount"`
	Currency            string `json:"currency"`
	RemoteID            string `json:"remote_id,omitempty"`
	RemoteState         string `json:"remote_state,omitempty"`
	Notice              string `json:"notice,omitempty"`
	ResubmissionBlocked bool   `json:"resubmission_blocked"`
	PaymentID           string `json:"payment_id,omitempty"`
}

func (s *Server) gatewayReturn(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	gatewayID := ps.ByName("gateway_id")
	log := logger.ForGateway(ctx, gatewayID).With(zap.String("kind", ps.ByName("kind")))

	kind, err := callback.ParseKind(ps.ByName("kind"))
	if err != nil {
		writeError(w, "not found", http.StatusNotFound)
		return
	}

	params, err := callbackParams(r)
	if err != nil {
		log.Warn("unreadable callback", zap.Error(err))
		writeError(w, shopperErrorMessage, http.StatusBadRequest)
		return
	}

	cfg, err := s.gateways.Get(ctx, gatewayID)
	if err != nil {
		log.Error("callback for unavailable gateway", zap.Error(err))
		if errors.Is(err, gateway.ErrConfigurationNotFound) {
			writeError(w, "unknown payment gateway", http.StatusNotFound)
			return
		}
		writeError(w, shopperErrorMessage, http.StatusInternalServerError)
		return
	}

	res, err := s.callbacks.Handle(ctx, cfg, kind, params)
	if err != nil {
		// The handler already logged and counted the specific kind.
		writeError(w, shopperErrorMessage, callbackStatus(err))
		return
	}

	out := callbackResponse{
		State:               string(res.Outcome.State),
		FailureKind:         string(res.Outcome.FailureKind),
		Amount:              res.Outcome.Amount.StringFixed(2),
		Currency:            res.Outcome.Currency,
		RemoteID:            res.Outcome.RemoteID,
		RemoteState:         res.Outcome.RemoteState,
		Notice:              res.Notice,
		ResubmissionBlocked: res.ResubmissionBlocked,
	}
	if res.Payment != nil {
		out.PaymentID = res.Payment.ID.String()
	}
	writeJSON(w, http.StatusOK, out)
}

// callbackParams returns the gateway's fields exactly as sent: the form body
// on POST, the query string otherwise. Repeated keys keep the first value.
func callbackParams(r *http.Request) (signature.Params, error) {
	var values url.Values
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
		values = r.PostForm
		if len(values) == 0 {
			values = r.URL.Query()
		}
	} else {
		values = r.URL.Query()
	}

	params := make(signature.Params, len(values))
	for k, v := range values {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}
	return params, nil
}

func callbackStatus(err error) int {
	switch {
	case errors.Is(err, callback.ErrSignatureMismatch):
		return http.StatusForbidden
	case errors.Is(err, callback.ErrMalformedCallback):
		return http.StatusBadRequest
	case errors.Is(err, callback.ErrCallbackReplayed):
		return http.StatusConflict
	case errors.Is(err, gateway.ErrConfiguration):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
