// Package checkout builds the signed parameter set that sends a shopper to
// the hosted payment page.
package checkout

import (
	"fmt"
	"strings"

	"epdq-gateway/internal/gateway"
	"epdq-gateway/internal/signature"
)

// Outbound parameter names.
const (
	ParamAmount       = "AMOUNT"
	ParamName         = "CN"
	ParamAddress      = "OWNERADDRESS"
	ParamTown         = "OWNERTOWN"
	ParamZip          = "OWNERZIP"
	ParamCountry      = "OWNERCTY"
	ParamCurrency     = "CURRENCY"
	ParamEmail        = "EMAIL"
	ParamLanguage     = "LANGUAGE"
	ParamLogo         = "LOGO"
	ParamOrderID      = "ORDERID"
	ParamPSPID        = "PSPID"
	ParamAcceptURL    = "ACCEPTURL"
	ParamDeclineURL   = "DECLINEURL"
	ParamExceptionURL = "EXCEPTIONURL"
	ParamCancelURL    = "CANCELURL"
	ParamBackURL      = "BACKURL"
	ParamHomeURL      = "HOMEURL"
	ParamTitle        = "TITLE"
)

type Builder struct{}

func NewBuilder() *Builder {
	return &Builder{}
}

// Build assembles and signs the redirect for one payment. The returned
// parameters already carry SHASIGN and must not be changed.
func (b *Builder) Build(order Order, payment Payment, cfg gateway.Configuration, defaults ReturnURLs) (*RedirectRequest, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	codec, err := cfg.Codec()
	if err != nil {
		return nil, err
	}

	orderID := strings.TrimSpace(order.OrderID())
	if orderID == "" {
		return nil, fmt.Errorf("%w: order id is required", ErrInvalidOrder)
	}
	if payment.Amount.CurrencyCode == "" {
		return nil, fmt.Errorf("%w: currency is required", ErrInvalidAmount)
	}
	amount, err := MinorUnits(payment.Amount.Number)
	if err != nil {
		return nil, err
	}

	billing := order.BillingAddress()
	params := signature.Params{
		ParamAmount:       amount,
		ParamName:         CustomerName(billing),
		ParamAddress:      StreetAddress(billing),
		ParamTown:         billing.Locality,
		ParamZip:          billing.PostalCode,
		ParamCountry:      billing.CountryCode,
		ParamCurrency:     payment.Amount.CurrencyCode,
		ParamEmail:        order.CustomerEmail(),
		ParamLanguage:     cfg.Language(),
		ParamLogo:         cfg.LogoURL,
		ParamOrderID:      orderID,
		ParamPSPID:        cfg.PSPID,
		ParamAcceptURL:    firstNonEmpty(cfg.AcceptURL, defaults.Return),
		ParamDeclineURL:   cfg.DeclineURL,
		ParamExceptionURL: cfg.ExceptionURL,
		ParamCancelURL:    firstNonEmpty(cfg.CancelURL, defaults.Cancel),
		ParamBackURL:      cfg.BackURL,
		ParamHomeURL:      cfg.HomeURL,
		ParamTitle:        order.StoreName(),
	}

	sig, err := codec.Sign(params, cfg.SHAInPassphrase)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", gateway.ErrConfiguration, err)
	}
	params[signature.Field] = sig

	return &RedirectRequest{URL: cfg.RedirectURL, Params: params}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
