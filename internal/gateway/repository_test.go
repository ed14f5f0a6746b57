package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"epdq-gateway/internal/signature"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configColumns = []string{
	"gateway_id", "redirect_url", "pspid", "sha_in_passphrase", "sha_out_passphrase",
	"accept_url", "decline_url", "exception_url", "cancel_url", "back_url", "home_url",
	"locale", "logo_url", "hash_algorithm", "mode", "updated_at",
}

func TestRepository_GetConfiguration(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Now()

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows(configColumns).AddRow(
			"epdq", "https://mdepayments.epdq.co.uk/ncol/test/orderstandard.asp", "MyPSPID", "in", "out",
			"https://shop.example/accept", "", "", "", "", "",
			"en_US", "", "SHA-256", "test", now,
		)
		mock.ExpectQuery(`SELECT (.+) FROM gateway_configurations`).
			WithArgs("epdq").
			WillReturnRows(rows)

		cfg, err := repo.GetConfiguration(ctx, "epdq")
		require.NoError(t, err)
		assert.Equal(t, "MyPSPID", cfg.PSPID)
		assert.Equal(t, signature.SHA256, cfg.HashAlgorithm)
		assert.Equal(t, ModeTest, cfg.Mode)
		assert.Equal(t, now, cfg.UpdatedAt)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM gateway_configurations`).
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows(configColumns))

		cfg, err := repo.GetConfiguration(ctx, "missing")
		assert.ErrorIs(t, err, ErrConfigurationNotFound)
		assert.Nil(t, cfg)
	})

	t.Run("DBError", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM gateway_configurations`).
			WithArgs("epdq").
			WillReturnError(errors.New("connection reset"))

		_, err := repo.GetConfiguration(ctx, "epdq")
		assert.EqualError(t, err, "connection reset")
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SaveConfiguration(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	cfg := validConfig()
	cfg.HashAlgorithm = signature.SHA1
	cfg.Mode = ModeTest
	now := time.Now()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO gateway_configurations`).
			WithArgs(
				cfg.GatewayID, cfg.RedirectURL, cfg.PSPID, cfg.SHAInPassphrase, cfg.SHAOutPassphrase,
				cfg.AcceptURL, cfg.DeclineURL, cfg.ExceptionURL, cfg.CancelURL, cfg.BackURL, cfg.HomeURL,
				cfg.Locale, cfg.LogoURL, "SHA-1", "test",
			).
			WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))

		c := cfg
		err := repo.SaveConfiguration(context.Background(), &c)
		require.NoError(t, err)
		assert.Equal(t, now, c.UpdatedAt)
	})

	t.Run("DBError", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO gateway_configurations`).
			WillReturnError(errors.New("database error"))

		c := cfg
		err := repo.SaveConfiguration(context.Background(), &c)
		assert.Error(t, err)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
