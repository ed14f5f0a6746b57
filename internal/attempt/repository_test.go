package attempt

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_IsTerminal(t *testing.T) {
	assert.False(t, StatePending.IsTerminal())
	assert.True(t, StateCompleted.IsTerminal())
	assert.True(t, StateCanceled.IsTerminal())
	assert.True(t, StateFailed.IsTerminal())
	assert.False(t, State("").IsTerminal())
}

func TestRepository_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()
	columns := []string{"gateway_id", "order_id", "state", "amount", "charged_amount", "currency", "is_test_mode", "created_at", "updated_at"}

	t.Run("Success", func(t *testing.T) {
		now := time.Now()
		mock.ExpectQuery(`SELECT (.+) FROM checkout_attempts`).
			WithArgs("epdq", "O123").
			WillReturnRows(sqlmock.NewRows(columns).AddRow("epdq", "O123", "canceled", "49.99", "49.99", "GBP", true, now, now))

		a, err := repo.Get(ctx, "epdq", "O123")
		require.NoError(t, err)
		assert.Equal(t, StateCanceled, a.State)
		assert.True(t, decimal.RequireFromString("49.99").Equal(a.Amount))
		assert.Equal(t, "GBP", a.Currency)
		assert.True(t, a.IsTestMode)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM checkout_attempts`).
			WithArgs("epdq", "missing").
			WillReturnError(sql.ErrNoRows)

		a, err := repo.Get(ctx, "epdq", "missing")
		assert.ErrorIs(t, err, ErrAttemptNotFound)
		assert.Nil(t, a)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SavePending(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	newAttempt := func() *Attempt {
		return &Attempt{GatewayID: "epdq", OrderID: "O123", Amount: decimal.RequireFromString("49.99"), Charged: decimal.RequireFromString("49.99"), Currency: "GBP"}
	}

	t.Run("Created", func(t *testing.T) {
		now := time.Now()
		mock.ExpectQuery(`INSERT INTO checkout_attempts`).
			WithArgs("epdq", "O123", sqlmock.AnyArg(), sqlmock.AnyArg(), "GBP", false).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

		a := newAttempt()
		ok, err := repo.SavePending(ctx, a)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, StatePending, a.State)
		assert.Equal(t, now, a.CreatedAt)
	})

	t.Run("Already final", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO checkout_attempts`).
			WithArgs("epdq", "O123", sqlmock.AnyArg(), sqlmock.AnyArg(), "GBP", false).
			WillReturnError(sql.ErrNoRows)

		ok, err := repo.SavePending(ctx, newAttempt())
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("DBError", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO checkout_attempts`).
			WillReturnError(errors.New("db down"))

		ok, err := repo.SavePending(ctx, newAttempt())
		assert.EqualError(t, err, "db down")
		assert.False(t, ok)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Transition(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	t.Run("From pending", func(t *testing.T) {
		mock.ExpectExec(`UPDATE checkout_attempts`).
			WithArgs("epdq", "O123", "completed").
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := repo.Transition(ctx, "epdq", "O123", StateCompleted)
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Already final", func(t *testing.T) {
		mock.ExpectExec(`UPDATE checkout_attempts`).
			WithArgs("epdq", "O123", "canceled").
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := repo.Transition(ctx, "epdq", "O123", StateCanceled)
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("DBError", func(t *testing.T) {
		mock.ExpectExec(`UPDATE checkout_attempts`).
			WillReturnError(errors.New("db down"))

		_, err := repo.Transition(ctx, "epdq", "O123", StateFailed)
		assert.Error(t, err)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
