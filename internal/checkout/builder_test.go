package checkout

import (
	"testing"

	"epdq-gateway/internal/gateway"
	"epdq-gateway/internal/signature"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() gateway.Configuration {
	return gateway.Configuration{
		GatewayID:        "epdq",
		RedirectURL:      "https://mdepayments.epdq.co.uk/ncol/test/orderstandard.asp",
		PSPID:            "MyPSPID",
		SHAInPassphrase:  "Mysecretsig1875!?",
		SHAOutPassphrase: "Myoutsecret42",
		DeclineURL:       "https://shop.example/decline",
		ExceptionURL:     "https://shop.example/exception",
		LogoURL:          "https://shop.example/logo.png",
	}
}

func testOrder() OrderSnapshot {
	return OrderSnapshot{
		ID:    "O123",
		Total: Money{Number: decimal.RequireFromString("49.99"), CurrencyCode: "GBP"},
		Billing: Address{
			GivenName:    "Anna",
			FamilyName:   "Smith",
			AddressLine1: "1 High Street",
			AddressLine2: "Flat 2",
			Locality:     "London",
			PostalCode:   "SW1A 1AA",
			CountryCode:  "GB",
		},
		Store: "Example Store",
		Email: "anna@example.com",
	}
}

func testPayment() Payment {
	return Payment{Amount: Money{Number: decimal.RequireFromString("49.99"), CurrencyCode: "GBP"}}
}

func TestMinorUnits(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"12.3", "1230"},
		{"12.345", "1235"},
		{"12.344", "1234"},
		{"49.99", "4999"},
		{"0.005", "1"},
		{"0", "0"},
		{"1000000", "100000000"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := MinorUnits(decimal.RequireFromString(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := MinorUnits(decimal.RequireFromString("-1"))
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestCustomerName(t *testing.T) {
	assert.Equal(t, "Anna Smith", CustomerName(Address{GivenName: "Anna", FamilyName: "Smith"}))
	assert.Equal(t, "Anna Marie Smith", CustomerName(Address{GivenName: "Anna", AdditionalName: "Marie", FamilyName: "Smith"}))
	assert.Equal(t, "Smith", CustomerName(Address{FamilyName: "Smith"}))
}

func TestStreetAddress(t *testing.T) {
	assert.Equal(t, "1 High Street", StreetAddress(Address{AddressLine1: "1 High Street"}))
	assert.Equal(t, "1 High Street, Flat 2", StreetAddress(Address{AddressLine1: "1 High Street", AddressLine2: "Flat 2"}))
}

func TestBuilder_Build(t *testing.T) {
	b := NewBuilder()
	defaults := ReturnURLs{Return: "https://shop.example/checkout/O123/return", Cancel: "https://shop.example/checkout/O123/cancel"}

	t.Run("Full parameter set", func(t *testing.T) {
		req, err := b.Build(testOrder(), testPayment(), testConfig(), defaults)
		require.NoError(t, err)

		assert.Equal(t, testConfig().RedirectURL, req.URL)
		p := req.Params
		assert.Equal(t, "4999", p[ParamAmount])
		assert.Equal(t, "Anna Smith", p[ParamName])
		assert.Equal(t, "1 High Street, Flat 2", p[ParamAddress])
		assert.Equal(t, "London", p[ParamTown])
		assert.Equal(t, "SW1A 1AA", p[ParamZip])
		assert.Equal(t, "GB", p[ParamCountry])
		assert.Equal(t, "GBP", p[ParamCurrency])
		assert.Equal(t, "anna@example.com", p[ParamEmail])
		assert.Equal(t, gateway.DefaultLocale, p[ParamLanguage])
		assert.Equal(t, "O123", p[ParamOrderID])
		assert.Equal(t, "MyPSPID", p[ParamPSPID])
		assert.Equal(t, defaults.Return, p[ParamAcceptURL])
		assert.Equal(t, defaults.Cancel, p[ParamCancelURL])
		assert.Equal(t, "https://shop.example/decline", p[ParamDeclineURL])
		assert.Equal(t, "Example Store", p[ParamTitle])
		assert.Len(t, p, 20)
	})

	t.Run("Signature verifies with the in passphrase", func(t *testing.T) {
		req, err := b.Build(testOrder(), testPayment(), testConfig(), defaults)
		require.NoError(t, err)

		codec, err := signature.NewCodec(signature.SHA1)
		require.NoError(t, err)

		ok, err := codec.Verify(req.Params, "Mysecretsig1875!?", req.Params[signature.Field])
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = codec.Verify(req.Params, "Myoutsecret42", req.Params[signature.Field])
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Configured URLs win over defaults", func(t *testing.T) {
		cfg := testConfig()
		cfg.AcceptURL = "https://shop.example/accept"
		cfg.CancelURL = "https://shop.example/cancel"
		cfg.Locale = "fr_FR"

		req, err := b.Build(testOrder(), testPayment(), cfg, defaults)
		require.NoError(t, err)
		assert.Equal(t, "https://shop.example/accept", req.Params[ParamAcceptURL])
		assert.Equal(t, "https://shop.example/cancel", req.Params[ParamCancelURL])
		assert.Equal(t, "fr_FR", req.Params[ParamLanguage])
	})

	t.Run("Configured algorithm is used", func(t *testing.T) {
		cfg := testConfig()
		cfg.HashAlgorithm = signature.SHA512

		req, err := b.Build(testOrder(), testPayment(), cfg, defaults)
		require.NoError(t, err)
		assert.Len(t, req.Params[signature.Field], 128)
	})

	t.Run("Deterministic", func(t *testing.T) {
		a, err := b.Build(testOrder(), testPayment(), testConfig(), defaults)
		require.NoError(t, err)
		c, err := b.Build(testOrder(), testPayment(), testConfig(), defaults)
		require.NoError(t, err)
		assert.Equal(t, a.Params, c.Params)
	})

	t.Run("Configuration error fails fast", func(t *testing.T) {
		cfg := testConfig()
		cfg.SHAInPassphrase = ""

		req, err := b.Build(testOrder(), testPayment(), cfg, defaults)
		assert.ErrorIs(t, err, gateway.ErrConfiguration)
		assert.Nil(t, req)
	})

	t.Run("Negative amount", func(t *testing.T) {
		p := testPayment()
		p.Amount.Number = decimal.RequireFromString("-0.01")

		_, err := b.Build(testOrder(), p, testConfig(), defaults)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("Missing currency", func(t *testing.T) {
		p := testPayment()
		p.Amount.CurrencyCode = ""

		_, err := b.Build(testOrder(), p, testConfig(), defaults)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("Missing order id", func(t *testing.T) {
		o := testOrder()
		o.ID = ""

		_, err := b.Build(o, testPayment(), testConfig(), defaults)
		assert.ErrorIs(t, err, ErrInvalidOrder)
	})
}
