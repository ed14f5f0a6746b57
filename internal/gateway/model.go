package gateway

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"epdq-gateway/internal/signature"
)

const DisplayLabel = "Barclaycard ePDQ"

// CardTypes are the brands the hosted page is provisioned for.
var CardTypes = []string{"mastercard", "visa", "maestro"}

// Configuration holds one merchant's gateway settings. It is passed by value
// and never modified while a transaction is being built or verified.
type Configuration struct {
	GatewayID        string
	RedirectURL      string
	PSPID            string
	SHAInPassphrase  string
	SHAOutPassphrase string
	AcceptURL        string
	DeclineURL       string
	ExceptionURL     string
	CancelURL        string
	BackURL          string
	HomeURL          string
	Locale           string
	LogoURL          string
	HashAlgorithm    signature.Algorithm
	Mode             Mode
	UpdatedAt        time.Time
}

// ResolveMode derives the mode from url, or from the configured redirect URL
// when url is empty.
func (c Configuration) ResolveMode(url string) Mode {
	if url == "" {
		url = c.RedirectURL
	}
	return ResolveMode(url)
}

// Language is the LANGUAGE value sent to the hosted page.
func (c Configuration) Language() string {
	if c.Locale == "" {
		return DefaultLocale
	}
	return c.Locale
}

// Codec returns a signature codec for the configured algorithm.
func (c Configuration) Codec() (*signature.Codec, error) {
	alg := c.HashAlgorithm
	if alg == "" {
		alg = signature.DefaultAlgorithm
	}
	codec, err := signature.NewCodec(alg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return codec, nil
}

// Validate reports every missing or invalid field at once. Each returned
// error matches ErrConfiguration.
func (c Configuration) Validate() error {
	var errs []error
	missing := func(field string) {
		errs = append(errs, fmt.Errorf("%w: %s is required", ErrConfiguration, field))
	}

	if strings.TrimSpace(c.RedirectURL) == "" {
		missing("redirect url")
	} else if u, err := url.Parse(c.RedirectURL); err != nil || !u.IsAbs() || u.Host == "" {
		errs = append(errs, fmt.Errorf("%w: redirect url %q is not an absolute url", ErrConfiguration, c.RedirectURL))
	}
	if strings.TrimSpace(c.PSPID) == "" {
		missing("pspid")
	}
	for _, p := range []struct{ field, value string }{
		{"sha in passphrase", c.SHAInPassphrase},
		{"sha out passphrase", c.SHAOutPassphrase},
	} {
		switch field := p.field; p.value {
		case "":
			missing(field)
		case RedactedSecret:
			errs = append(errs, fmt.Errorf("%w: %s is the redaction placeholder", ErrConfiguration, field))
		}
	}
	if c.Locale != "" && !IsSupportedLocale(c.Locale) {
		errs = append(errs, fmt.Errorf("%w: unsupported locale %q", ErrConfiguration, c.Locale))
	}
	if _, err := c.Codec(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Redacted returns a copy safe to log or return to an operator.
func (c Configuration) Redacted() Configuration {
	if c.SHAInPassphrase != "" {
		c.SHAInPassphrase = RedactedSecret
	}
	if c.SHAOutPassphrase != "" {
		c.SHAOutPassphrase = RedactedSecret
	}
	return c
}

// RedactedSecret stands in for a passphrase in Redacted copies. It is never a
// valid passphrase.
const RedactedSecret = "********"
