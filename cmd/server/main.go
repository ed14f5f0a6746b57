package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"epdq-gateway/internal/attempt"
	"epdq-gateway/internal/auth"
	"epdq-gateway/internal/callback"
	"epdq-gateway/internal/checkout"
	"epdq-gateway/internal/config"
	"epdq-gateway/internal/db"
	"epdq-gateway/internal/gateway"
	"epdq-gateway/internal/logger"
	"epdq-gateway/internal/metrics"
	"epdq-gateway/internal/middleware"
	"epdq-gateway/internal/payment"
	"epdq-gateway/internal/signature"
	"epdq-gateway/internal/transport"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

var (
	initDBFunc      = db.NewDatabase
	startServerFunc = func(addr string, handler http.Handler) error {
		srv := &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
		}
		return srv.ListenAndServe()
	}
)

func main() {
	if err := run(); err != nil {
		logger.L().Error("server stopped", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database, err := initDBFunc(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	handler, err := newServer(cfg, database)
	if err != nil {
		return err
	}

	logger.L().Info("payment gateway listening", zap.String("port", cfg.AppPort), zap.String("env", cfg.AppEnv))
	if err := startServerFunc(":"+cfg.AppPort, handler); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}

// newServer wires the repositories and services into the HTTP stack.
func newServer(cfg *config.Config, database *sql.DB) (http.Handler, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	gateways := gateway.NewService(gateway.NewRepository(database))
	attempts := attempt.NewRepository(database)
	payments := payment.NewRepository(database)

	if cfg.HasBootstrapGateway() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := bootstrapGateway(ctx, gateways, cfg)
		cancel()
		if err != nil {
			return nil, err
		}
	}

	tokens, err := auth.NewService(cfg.JWTSecret, 0, auth.Operator{
		Email:        cfg.OperatorEmail,
		PasswordHash: cfg.OperatorPasswordHash,
	})
	if err != nil {
		return nil, fmt.Errorf("operator auth: %w", err)
	}

	srv := transport.NewServer(
		gateways,
		checkout.NewService(gateways, attempts, m),
		callback.NewHandler(attempts, payments, m),
		tokens,
		m,
		database,
	)

	var h http.Handler = srv.Routes()
	h = middleware.RateLimit(cfg.InternalSecretKey, cfg.TrustedProxies...)(h)
	h = logger.LoggingMiddleware(h)
	h = logger.RequestIDMiddleware(h)
	return h, nil
}

// bootstrapGateway stores the EPDQ_* configuration unless one is already
// saved. Operator edits always win over the environment.
func bootstrapGateway(ctx context.Context, gateways gateway.Service, cfg *config.Config) error {
	b := cfg.Bootstrap
	_, err := gateways.Get(ctx, b.GatewayID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gateway.ErrConfigurationNotFound) {
		return fmt.Errorf("bootstrap gateway %s: %w", b.GatewayID, err)
	}

	saved, err := gateways.Save(ctx, gateway.Configuration{
		GatewayID:        b.GatewayID,
		RedirectURL:      b.RedirectURL,
		PSPID:            b.PSPID,
		SHAInPassphrase:  b.SHAInPassphrase,
		SHAOutPassphrase: b.SHAOutPassphrase,
		AcceptURL:        b.AcceptURL,
		DeclineURL:       b.DeclineURL,
		ExceptionURL:     b.ExceptionURL,
		CancelURL:        b.CancelURL,
		BackURL:          b.BackURL,
		HomeURL:          b.HomeURL,
		Locale:           b.Locale,
		LogoURL:          b.LogoURL,
		HashAlgorithm:    signature.Algorithm(b.HashAlgorithm),
	})
	if err != nil {
		return fmt.Errorf("bootstrap gateway %s: %w", b.GatewayID, err)
	}

	logger.L().Info("gateway configuration seeded from environment",
		zap.String("gateway_id", saved.GatewayID),
		zap.String("mode", string(saved.Mode)),
	)
	return nil
}
