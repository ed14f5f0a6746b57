package config

import (
	"errors"
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string `env:"DB_HOST" env-description:"Postgres host"`
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME"`
	DBPort     string `env:"DB_PORT" env-default:"5432"`
	DBSSLMode  string `env:"DB_SSLMODE" env-default:"disable"`

	AppPort string `env:"APP_PORT" env-default:"8080"`
	AppEnv  string `env:"APP_ENV" env-default:"development"`

	JWTSecret            string   `env:"JWT_SECRET" env-description:"HMAC key for operator tokens"`
	OperatorEmail        string   `env:"OPERATOR_EMAIL"`
	OperatorPasswordHash string   `env:"OPERATOR_PASSWORD_HASH" env-description:"bcrypt hash of the operator password"`
	InternalSecretKey    string   `env:"INTERNAL_SECRET_KEY"`
	TrustedProxies       []string `env:"TRUSTED_PROXIES" env-separator:"," env-description:"reverse proxies (IPs or CIDRs) whose X-Forwarded-For is honored"`

	// Gateway seeded at startup when no stored configuration exists yet.
	Bootstrap struct {
		GatewayID        string `env:"EPDQ_GATEWAY_ID" env-default:"epdq"`
		RedirectURL      string `env:"EPDQ_REDIRECT_URL"`
		PSPID            string `env:"EPDQ_PSPID"`
		SHAInPassphrase  string `env:"EPDQ_SHA_IN_PASSPHRASE"`
		SHAOutPassphrase string `env:"EPDQ_SHA_OUT_PASSPHRASE"`
		HashAlgorithm    string `env:"EPDQ_HASH_ALGORITHM" env-default:"SHA-1"`
		Locale           string `env:"EPDQ_LOCALE" env-default:"en_US"`
		AcceptURL        string `env:"EPDQ_ACCEPT_URL"`
		DeclineURL       string `env:"EPDQ_DECLINE_URL"`
		ExceptionURL     string `env:"EPDQ_EXCEPTION_URL"`
		CancelURL        string `env:"EPDQ_CANCEL_URL"`
		BackURL          string `env:"EPDQ_BACK_URL"`
		HomeURL          string `env:"EPDQ_HOME_URL"`
		LogoURL          string `env:"EPDQ_LOGO_URL"`
	}
}

// HasBootstrapGateway reports whether enough EPDQ_* values are set to seed a
// gateway configuration.
func (c *Config) HasBootstrapGateway() bool {
	return c.Bootstrap.RedirectURL != "" && c.Bootstrap.PSPID != ""
}

// LoadConfig reads .env if present, then the process environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		desc, _ := cleanenv.GetDescription(cfg, nil)
		return nil, fmt.Errorf("load config: %w; %s", err, desc)
	}

	if cfg.DBHost == "" {
		return nil, errors.New("environment variables not loaded properly: DB_HOST is empty")
	}

	return cfg, nil
}
