package payment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
)

type Repository interface {
	// SavePayment inserts p. It returns false when the order already has a
	// payment for this gateway.
	SavePayment(ctx context.Context, p *Payment) (bool, error)
	GetPaymentByOrder(ctx context.Context, gatewayID, orderID string) (*Payment, error)

	SaveCallback(ctx context.Context, c *Callback) (int64, error)
	MarkCallbackProcessed(ctx context.Context, callbackID int64) error
	MarkCallbackFailed(ctx context.Context, callbackID int64, reason string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) SavePayment(ctx context.Context, p *Payment) (bool, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	const q = `
	INSERT INTO payments (
		id,
		state,
		amount,
		currency,
		gateway_id,
		order_id,
		is_test_mode,
		remote_id,
		remote_state,
		authorized_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (gateway_id, order_id)
	DO NOTHING
	RETURNING created_at;
	`

	err := r.db.QueryRowContext(ctx, q,
		p.ID,
		p.State,
		p.Amount,
		p.Currency,
		p.GatewayID,
		p.OrderID,
		p.IsTestMode,
		p.RemoteID,
		p.RemoteState,
		p.AuthorizedAt,
	).Scan(&p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *repository) GetPaymentByOrder(ctx context.Context, gatewayID, orderID string) (*Payment, error) {
	const q = `
	SELECT id, state, amount, currency, gateway_id, order_id, is_test_mode,
		remote_id, remote_state, authorized_at, created_at
	FROM payments
	WHERE gateway_id = $1 AND order_id = $2
	`

	var p Payment
	err := r.db.QueryRowContext(ctx, q, gatewayID, orderID).Scan(
		&p.ID, &p.State, &p.Amount, &p.Currency, &p.GatewayID, &p.OrderID, &p.IsTestMode,
		&p.RemoteID, &p.RemoteState, &p.AuthorizedAt, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) SaveCallback(ctx context.Context, c *Callback) (int64, error) {
	payload, err := json.Marshal(c.Params)
	if err != nil {
		return 0, err
	}

	const q = `
	INSERT INTO payment_callbacks (
		gateway_id,
		order_id,
		kind,
		signature_valid,
		payload
	)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id;
	`

	err = r.db.QueryRowContext(ctx, q,
		c.GatewayID,
		c.OrderID,
		c.Kind,
		c.SignatureValid,
		payload,
	).Scan(&c.ID)
	if err != nil {
		return 0, err
	}
	return c.ID, nil
}

func (r *repository) MarkCallbackProcessed(ctx context.Context, callbackID int64) error {
	const q = `
	UPDATE payment_callbacks
	SET processed_at = now()
	WHERE id = $1;
	`

	_, err := r.db.ExecContext(ctx, q, callbackID)
	return err
}

func (r *repository) MarkCallbackFailed(ctx context.Context, callbackID int64, reason string) error {
	const q = `
	UPDATE payment_callbacks
	SET process_error = $2
	WHERE id = $1;
	`

	_, err := r.db.ExecContext(ctx, q, callbackID, reason)
	return err
}
