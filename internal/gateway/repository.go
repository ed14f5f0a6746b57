package gateway

import (
	"context"
	"database/sql"
	"errors"

	"epdq-gateway/internal/signature"
)

type Repository interface {
	GetConfiguration(ctx context.Context, gatewayID string) (*Configuration, error)
	SaveConfiguration(ctx context.Context, cfg *Configuration) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetConfiguration(ctx context.Context, gatewayID string) (*Configuration, error) {
	const q = `
	SELECT gateway_id, redirect_url, pspid, sha_in_passphrase, sha_out_passphrase,
		accept_url, decline_url, exception_url, cancel_url, back_url, home_url,
		locale, logo_url, hash_algorithm, mode, updated_at
	FROM gateway_configurations
	WHERE gateway_id = $1
	`

	var (
		c    Configuration
		alg  string
		mode string
	)
	err := r.db.QueryRowContext(ctx, q, gatewayID).Scan(
		&c.GatewayID, &c.RedirectURL, &c.PSPID, &c.SHAInPassphrase, &c.SHAOutPassphrase,
		&c.AcceptURL, &c.DeclineURL, &c.ExceptionURL, &c.CancelURL, &c.BackURL, &c.HomeURL,
		&c.Locale, &c.LogoURL, &alg, &mode, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrConfigurationNotFound
		}
		return nil, err
	}
	c.HashAlgorithm = signature.Algorithm(alg)
	c.Mode = Mode(mode)
	return &c, nil
}

func (r *repository) SaveConfiguration(ctx context.Context, c *Configuration) error {
	const q = `
	INSERT INTO gateway_configurations (
		gateway_id, redirect_url, pspid, sha_in_passphrase, sha_out_passphrase,
		accept_url, decline_url, exception_url, cancel_url, back_url, home_url,
		locale, logo_url, hash_algorithm, mode
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	ON CONFLICT (gateway_id) DO UPDATE SET
		redirect_url = EXCLUDED.redirect_url,
		pspid = EXCLUDED.pspid,
		sha_in_passphrase = EXCLUDED.sha_in_passphrase,
		sha_out_passphrase = EXCLUDED.sha_out_passphrase,
		accept_url = EXCLUDED.accept_url,
		decline_url = EXCLUDED.decline_url,
		exception_url = EXCLUDED.exception_url,
		cancel_url = EXCLUDED.cancel_url,
		back_url = EXCLUDED.back_url,
		home_url = EXCLUDED.home_url,
		locale = EXCLUDED.locale,
		logo_url = EXCLUDED.logo_url,
		hash_algorithm = EXCLUDED.hash_algorithm,
		mode = EXCLUDED.mode,
		updated_at = now()
	RETURNING updated_at;
	`

	return r.db.QueryRowContext(ctx, q,
		c.GatewayID, c.RedirectURL, c.PSPID, c.SHAInPassphrase, c.SHAOutPassphrase,
		c.AcceptURL, c.DeclineURL, c.ExceptionURL, c.CancelURL, c.BackURL, c.HomeURL,
		c.Locale, c.LogoURL, string(c.HashAlgorithm), string(c.Mode),
	).Scan(&c.UpdatedAt)
}
