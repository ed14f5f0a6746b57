package transport

import (
	"errors"
	"net/http"
	"strings"

	"epdq-gateway/internal/checkout"
	"epdq-gateway/internal/gateway"
	"epdq-gateway/internal/logger"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

type checkoutRequest struct {
	Order     checkout.OrderSnapshot `json:"order"`
	Amount    *checkout.Money        `json:"amount,omitempty"`
	ReturnURL string                 `json:"return_url"`
	CancelURL string                 `json:"cancel_url"`
}

type checkoutResponse struct {
	URL    string            `json:"url"`
	Method string            `json:"method"`
	Fields map[string]string `json:"fields"`
}

func (s *Server) checkout(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	gatewayID := ps.ByName("gateway_id")
	log := logger.ForGateway(ctx, gatewayID)

	var body checkoutRequest
	if err := decodeJSON(w, r, &body); err != nil {
		log.Warn("invalid checkout payload", zap.Error(err))
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	// Without an explicit amount the whole order total is charged.
	payment := checkout.Payment{Amount: body.Order.Total}
	if body.Amount != nil {
		payment.Amount = *body.Amount
	}

	req, err := s.checkouts.Start(ctx, gatewayID, body.Order, payment, checkout.ReturnURLs{
		Return: body.ReturnURL,
		Cancel: body.CancelURL,
	})
	if err != nil {
		status, msg := checkoutError(err)
		writeError(w, msg, status)
		return
	}

	if wantsHTML(r) {
		if err := renderRedirectForm(w, gateway.DisplayLabel, req); err != nil {
			log.Error("failed to render redirect form", zap.Error(err))
		}
		return
	}

	writeJSON(w, http.StatusOK, checkoutResponse{
		URL:    req.URL,
		Method: http.MethodPost,
		Fields: req.Params,
	})
}

func checkoutError(err error) (int, string) {
	switch {
	case errors.Is(err, gateway.ErrConfigurationNotFound):
		return http.StatusNotFound, "unknown payment gateway"
	case errors.Is(err, gateway.ErrConfiguration):
		return http.StatusServiceUnavailable, "payment method is temporarily unavailable"
	case errors.Is(err, checkout.ErrDuplicateOrderResubmission):
		return http.StatusConflict, "this order was already sent to the payment page; please start a new order"
	case errors.Is(err, checkout.ErrInvalidAmount), errors.Is(err, checkout.ErrInvalidOrder):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func wantsHTML(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") && !strings.Contains(accept, "application/json")
}
