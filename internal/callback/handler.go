// Package callback interprets the shopper's return from the hosted payment
// page and decides what gets recorded locally.
package callback

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"epdq-gateway/internal/attempt"
	"epdq-gateway/internal/gateway"
	"epdq-gateway/internal/logger"
	"epdq-gateway/internal/metrics"
	"epdq-gateway/internal/payment"
	"epdq-gateway/internal/signature"
	"epdq-gateway/internal/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Handler struct {
	attempts attempt.Repository
	payments payment.Repository
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewHandler(attempts attempt.Repository, payments payment.Repository, m *metrics.Metrics) *Handler {
	return &Handler{
		attempts: attempts,
		payments: payments,
		metrics:  m,
		now:      time.Now,
	}
}

// Handle verifies and applies one return callback. params must be exactly
// what the gateway sent, SHASIGN included.
func (h *Handler) Handle(ctx context.Context, cfg gateway.Configuration, kind Kind, params signature.Params) (*Result, error) {
	orderID, _ := params.Lookup(ParamOrderID)
	orderID = strings.TrimSpace(orderID)

	log := logger.ForOrder(ctx, cfg.GatewayID, orderID).With(zap.String("kind", string(kind)))

	sigValid, sigErr := h.verify(cfg, params)

	record := &payment.Callback{
		GatewayID:      cfg.GatewayID,
		OrderID:        orderID,
		Kind:           string(kind),
		Params:         params,
		SignatureValid: sigValid,
	}
	callbackID, err := h.payments.SaveCallback(ctx, record)
	if err != nil {
		log.Error("failed to store callback", zap.Error(err))
		return nil, fmt.Errorf("store callback: %w", err)
	}

	res, err := h.apply(ctx, cfg, kind, orderID, params, sigErr)
	if err != nil {
		h.fail(ctx, log, cfg.GatewayID, kind, callbackID, err)
		return nil, err
	}

	if err := h.payments.MarkCallbackProcessed(ctx, callbackID); err != nil {
		log.Warn("failed to mark callback processed", zap.Int64("callback_id", callbackID), zap.Error(err))
	}
	h.metrics.Callback(cfg.GatewayID, string(kind), string(res.Outcome.State))
	log.Info("callback applied",
		zap.String("state", string(res.Outcome.State)),
		zap.String("remote_id", utils.Mask(res.Outcome.RemoteID)),
	)
	return res, nil
}

// verify checks SHASIGN with the SHA-OUT passphrase. Every return kind must
// carry one.
func (h *Handler) verify(cfg gateway.Configuration, params signature.Params) (bool, error) {
	candidate, ok := params.Lookup(signature.Field)
	if !ok || strings.TrimSpace(candidate) == "" {
		return false, fmt.Errorf("%w: %s is missing", ErrSignatureMismatch, signature.Field)
	}

	codec, err := cfg.Codec()
	if err != nil {
		return false, err
	}
	valid, err := codec.Verify(params, cfg.SHAOutPassphrase, candidate)
	if err != nil {
		return false, fmt.Errorf("%w: %w", gateway.ErrConfiguration, err)
	}
	if !valid {
		return false, ErrSignatureMismatch
	}
	return true, nil
}

func (h *Handler) apply(ctx context.Context, cfg gateway.Configuration, kind Kind, orderID string, params signature.Params, sigErr error) (*Result, error) {
	if sigErr != nil {
		return nil, sigErr
	}
	if orderID == "" {
		return nil, fmt.Errorf("%w: %s is missing", ErrMalformedCallback, ParamOrderID)
	}

	att, err := h.attempts.Get(ctx, cfg.GatewayID, orderID)
	if err != nil {
		if errors.Is(err, attempt.ErrAttemptNotFound) {
			return nil, fmt.Errorf("%w: unknown order %q", ErrMalformedCallback, orderID)
		}
		return nil, err
	}
	if att.State.IsTerminal() {
		if kind == KindAccept && att.State == attempt.StateCompleted {
			return h.resumeAccept(ctx, cfg, att, params)
		}
		return nil, fmt.Errorf("%w: order %q is %s", ErrCallbackReplayed, orderID, att.State)
	}
	if err := matchAttempt(att, params); err != nil {
		return nil, err
	}

	res := &Result{}
	var outcome Outcome

	switch kind {
	case KindAccept:
		outcome = h.acceptedOutcome(att, params)
	case KindCancel:
		outcome = h.closedOutcome(att, attempt.StateCanceled, "")
		res.Notice = CancelNotice
		res.ResubmissionBlocked = true
	case KindDecline:
		outcome = h.closedOutcome(att, attempt.StateFailed, FailureDeclined)
		res.Notice = FailureNotice
		res.ResubmissionBlocked = true
	case KindException:
		outcome = h.closedOutcome(att, attempt.StateFailed, FailureException)
		res.Notice = FailureNotice
		res.ResubmissionBlocked = true
	default:
		return nil, fmt.Errorf("%w: unknown return kind %q", ErrMalformedCallback, kind)
	}

	moved, err := h.attempts.Transition(ctx, cfg.GatewayID, orderID, outcome.State)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, fmt.Errorf("%w: order %q", ErrCallbackReplayed, orderID)
	}
	res.Outcome = outcome

	if outcome.State != attempt.StateCompleted {
		return res, nil
	}

	p, err := h.recordPayment(ctx, cfg, orderID, outcome)
	if err != nil {
		return nil, err
	}
	res.Payment = p
	return res, nil
}

// resumeAccept handles a signed accept for an attempt that is already
// completed. If the payment row is missing (the insert failed after the
// transition) it is written now; otherwise the callback is a replay.
func (h *Handler) resumeAccept(ctx context.Context, cfg gateway.Configuration, att *attempt.Attempt, params signature.Params) (*Result, error) {
	_, err := h.payments.GetPaymentByOrder(ctx, cfg.GatewayID, att.OrderID)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: payment for order %q already recorded", ErrCallbackReplayed, att.OrderID)
	case !errors.Is(err, payment.ErrPaymentNotFound):
		return nil, fmt.Errorf("load payment: %w", err)
	}

	if err := matchAttempt(att, params); err != nil {
		return nil, err
	}

	outcome := h.acceptedOutcome(att, params)
	p, err := h.recordPayment(ctx, cfg, att.OrderID, outcome)
	if err != nil {
		return nil, err
	}
	logger.ForOrder(ctx, cfg.GatewayID, att.OrderID).Warn("payment recorded for an already completed attempt")
	return &Result{Outcome: outcome, Payment: p}, nil
}

func (h *Handler) acceptedOutcome(att *attempt.Attempt, params signature.Params) Outcome {
	remoteID := att.OrderID
	if payID, ok := params.Lookup(ParamPayID); ok && payID != "" {
		remoteID = payID
	}
	return Outcome{
		State:       attempt.StateCompleted,
		Amount:      att.Amount,
		Currency:    att.Currency,
		RemoteID:    remoteID,
		RemoteState: RemoteStateAccepted,
		Timestamp:   h.now(),
	}
}

func (h *Handler) closedOutcome(att *attempt.Attempt, state attempt.State, failure FailureKind) Outcome {
	return Outcome{
		State:       state,
		FailureKind: failure,
		Amount:      att.Amount,
		Currency:    att.Currency,
		Timestamp:   h.now(),
	}
}

func (h *Handler) recordPayment(ctx context.Context, cfg gateway.Configuration, orderID string, outcome Outcome) (*payment.Payment, error) {
	mode := cfg.ResolveMode("")
	p := &payment.Payment{
		State:        payment.StateCompleted,
		Amount:       outcome.Amount,
		Currency:     outcome.Currency,
		GatewayID:    cfg.GatewayID,
		OrderID:      orderID,
		IsTestMode:   mode.IsTest(),
		RemoteID:     outcome.RemoteID,
		RemoteState:  outcome.RemoteState,
		AuthorizedAt: outcome.Timestamp,
	}
	created, err := h.payments.SavePayment(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("save payment: %w", err)
	}
	if !created {
		return nil, fmt.Errorf("%w: payment for order %q already recorded", ErrCallbackReplayed, orderID)
	}
	h.metrics.PaymentRecorded(cfg.GatewayID, p.Currency, string(mode))
	return p, nil
}

// matchAttempt rejects a callback whose amount or currency differs from what
// the redirect asked for. Both fields are optional on the return leg.
func matchAttempt(att *attempt.Attempt, params signature.Params) error {
	if cur, ok := params.Lookup(ParamCurrency); ok && cur != "" && !strings.EqualFold(cur, att.Currency) {
		return fmt.Errorf("%w: currency %q does not match %q", ErrMalformedCallback, cur, att.Currency)
	}
	if raw, ok := params.Lookup(ParamAmount); ok && raw != "" {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return fmt.Errorf("%w: amount %q: %w", ErrMalformedCallback, raw, err)
		}
		if !amount.Equal(att.Charged) {
			return fmt.Errorf("%w: amount %s does not match %s", ErrMalformedCallback, amount, att.Charged)
		}
	}
	return nil
}

func (h *Handler) fail(ctx context.Context, log *zap.Logger, gatewayID string, kind Kind, callbackID int64, err error) {
	errKind := ErrorKind(err)
	if errors.Is(err, ErrSignatureMismatch) {
		h.metrics.SignatureFailure(gatewayID)
	}
	h.metrics.Callback(gatewayID, string(kind), errKind)
	log.Warn("callback rejected", zap.String("error_kind", errKind), zap.Error(err))

	if markErr := h.payments.MarkCallbackFailed(ctx, callbackID, errKind); markErr != nil {
		log.Warn("failed to mark callback failed", zap.Int64("callback_id", callbackID), zap.Error(markErr))
	}
}
