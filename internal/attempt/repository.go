package attempt

import (
	"context"
	"database/sql"
	"errors"
)

type Repository interface {
	Get(ctx context.Context, gatewayID, orderID string) (*Attempt, error)
	// SavePending inserts a pending attempt or refreshes one that is still
	// pending. It returns false when the order already reached a final state.
	SavePending(ctx context.Context, a *Attempt) (bool, error)
	// Transition moves a pending attempt to state. It returns false when the
	// attempt was not pending anymore.
	Transition(ctx context.Context, gatewayID, orderID string, to State) (bool, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Get(ctx context.Context, gatewayID, orderID string) (*Attempt, error) {
	const q = `
	SELECT gateway_id, order_id, state, amount, charged_amount, currency, is_test_mode, created_at, updated_at
	FROM checkout_attempts
	WHERE gateway_id = $1 AND order_id = $2
	`

	var (
		a     Attempt
		state string
	)
	err := r.db.QueryRowContext(ctx, q, gatewayID, orderID).Scan(
		&a.GatewayID, &a.OrderID, &state, &a.Amount, &a.Charged, &a.Currency, &a.IsTestMode, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAttemptNotFound
		}
		return nil, err
	}
	a.State = State(state)
	return &a, nil
}

func (r *repository) SavePending(ctx context.Context, a *Attempt) (bool, error) {
	const q = `
	INSERT INTO checkout_attempts (gateway_id, order_id, state, amount, charged_amount, currency, is_test_mode)
	VALUES ($1, $2, 'pending', $3, $4, $5, $6)
	ON CONFLICT (gateway_id, order_id) DO UPDATE SET
		amount = EXCLUDED.amount,
		charged_amount = EXCLUDED.charged_amount,
		currency = EXCLUDED.currency,
		is_test_mode = EXCLUDED.is_test_mode,
		updated_at = now()
	WHERE checkout_attempts.state = 'pending'
	RETURNING created_at, updated_at;
	`

	err := r.db.QueryRowContext(ctx, q,
		a.GatewayID, a.OrderID, a.Amount, a.Charged, a.Currency, a.IsTestMode,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	a.State = StatePending
	return true, nil
}

func (r *repository) Transition(ctx context.Context, gatewayID, orderID string, to State) (bool, error) {
	const q = `
	UPDATE checkout_attempts
	SET state = $3, updated_at = now()
	WHERE gateway_id = $1 AND order_id = $2 AND state = 'pending'
	`

	res, err := r.db.ExecContext(ctx, q, gatewayID, orderID, string(to))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
