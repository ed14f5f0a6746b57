package checkout

import (
	"context"
	"errors"
	"fmt"

	"epdq-gateway/internal/attempt"
	"epdq-gateway/internal/gateway"
	"epdq-gateway/internal/logger"
	"epdq-gateway/internal/metrics"

	"go.uber.org/zap"
)

type Service interface {
	// Start loads the gateway configuration, refuses an order id that already
	// finished at the gateway, builds the signed redirect and records the
	// attempt as pending.
	Start(ctx context.Context, gatewayID string, order Order, payment Payment, defaults ReturnURLs) (*RedirectRequest, error)
}

type service struct {
	gateways gateway.Service
	attempts attempt.Repository
	builder  *Builder
	metrics  *metrics.Metrics
}

func NewService(gateways gateway.Service, attempts attempt.Repository, m *metrics.Metrics) Service {
	return &service{
		gateways: gateways,
		attempts: attempts,
		builder:  NewBuilder(),
		metrics:  m,
	}
}

func (s *service) Start(ctx context.Context, gatewayID string, order Order, payment Payment, defaults ReturnURLs) (*RedirectRequest, error) {
	log := logger.ForOrder(ctx, gatewayID, order.OrderID())

	cfg, err := s.gateways.Get(ctx, gatewayID)
	if err != nil {
		log.Error("failed to load gateway configuration", zap.Error(err))
		return nil, err
	}

	prev, err := s.attempts.Get(ctx, gatewayID, order.OrderID())
	switch {
	case errors.Is(err, attempt.ErrAttemptNotFound):
	case err != nil:
		log.Error("failed to load checkout attempt", zap.Error(err))
		return nil, err
	case prev.State.IsTerminal():
		log.Warn("order id reused after a finished attempt", zap.String("state", string(prev.State)))
		s.metrics.CheckoutRejected(gatewayID, "duplicate_order")
		return nil, ErrDuplicateOrderResubmission
	}

	req, err := s.builder.Build(order, payment, cfg, defaults)
	if err != nil {
		log.Warn("cannot build redirect", zap.Error(err))
		s.metrics.CheckoutRejected(gatewayID, rejectReason(err))
		return nil, err
	}

	total := order.OrderTotal()
	mode := cfg.ResolveMode("")
	ok, err := s.attempts.SavePending(ctx, &attempt.Attempt{
		GatewayID:  gatewayID,
		OrderID:    req.Params[ParamOrderID],
		Amount:     total.Number,
		Charged:    payment.Amount.Number,
		Currency:   total.CurrencyCode,
		IsTestMode: mode.IsTest(),
	})
	if err != nil {
		log.Error("failed to record checkout attempt", zap.Error(err))
		return nil, fmt.Errorf("record checkout attempt: %w", err)
	}
	if !ok {
		// A callback finished the attempt between the lookup and the save.
		s.metrics.CheckoutRejected(gatewayID, "duplicate_order")
		return nil, ErrDuplicateOrderResubmission
	}

	s.metrics.RedirectBuilt(gatewayID, string(mode))
	log.Info("redirect built",
		zap.String("mode", string(mode)),
		zap.String("amount", req.Params[ParamAmount]),
		zap.String("currency", req.Params[ParamCurrency]),
	)
	return req, nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, gateway.ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, ErrInvalidOrder):
		return "invalid_order"
	default:
		return "other"
	}
}
