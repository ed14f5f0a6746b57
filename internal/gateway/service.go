package gateway

import (
	"context"
	"fmt"
	"strings"

	"epdq-gateway/internal/logger"
	"epdq-gateway/internal/signature"
	"epdq-gateway/internal/utils"

	"go.uber.org/zap"
)

type Service interface {
	// Get returns a copy of the stored configuration.
	Get(ctx context.Context, gatewayID string) (Configuration, error)
	// Save validates and persists cfg. The mode is always recomputed from the
	// redirect URL; whatever the caller put in cfg.Mode is discarded.
	Save(ctx context.Context, cfg Configuration) (Configuration, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Get(ctx context.Context, gatewayID string) (Configuration, error) {
	if gatewayID == "" {
		return Configuration{}, ErrConfigurationNotFound
	}
	cfg, err := s.repo.GetConfiguration(ctx, gatewayID)
	if err != nil {
		return Configuration{}, err
	}
	return *cfg, nil
}

func (s *service) Save(ctx context.Context, cfg Configuration) (Configuration, error) {
	log := logger.ForGateway(ctx, cfg.GatewayID)

	if strings.TrimSpace(cfg.GatewayID) == "" {
		return Configuration{}, fmt.Errorf("%w: gateway id is required", ErrConfiguration)
	}

	cfg = normalize(cfg)
	if err := cfg.Validate(); err != nil {
		log.Warn("rejected gateway configuration", zap.Error(err))
		return Configuration{}, err
	}

	if err := s.repo.SaveConfiguration(ctx, &cfg); err != nil {
		log.Error("failed to save gateway configuration", zap.Error(err))
		return Configuration{}, fmt.Errorf("save gateway configuration: %w", err)
	}

	log.Info("gateway configuration saved",
		zap.String("mode", string(cfg.Mode)),
		zap.String("pspid", utils.Mask(cfg.PSPID)),
		zap.String("hash_algorithm", string(cfg.HashAlgorithm)),
	)
	return cfg, nil
}

func normalize(cfg Configuration) Configuration {
	cfg.GatewayID = strings.TrimSpace(cfg.GatewayID)
	cfg.RedirectURL = strings.TrimSpace(cfg.RedirectURL)
	cfg.PSPID = strings.TrimSpace(cfg.PSPID)
	cfg.Locale = strings.TrimSpace(cfg.Locale)
	if cfg.Locale == "" {
		cfg.Locale = DefaultLocale
	}
	if alg, err := signature.ParseAlgorithm(string(cfg.HashAlgorithm)); err == nil {
		cfg.HashAlgorithm = alg
	}
	cfg.Mode = ResolveMode(cfg.RedirectURL)
	return cfg
}
