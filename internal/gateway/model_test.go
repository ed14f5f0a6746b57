package gateway

import (
	"testing"

	"epdq-gateway/internal/signature"

	"github.com/stretchr/testify/assert"
)

func validConfig() Configuration {
	return Configuration{
		GatewayID:        "epdq",
		RedirectURL:      "https://mdepayments.epdq.co.uk/ncol/test/orderstandard.asp",
		PSPID:            "MyPSPID",
		SHAInPassphrase:  "in-secret",
		SHAOutPassphrase: "out-secret",
		Locale:           "en_GB",
	}
}

func TestResolveMode(t *testing.T) {
	tests := []struct {
		url  string
		want Mode
	}{
		{"https://secure.gateway.example/test/order.cgi", ModeTest},
		{"https://secure.gateway.example/order.cgi", ModeLive},
		{"https://secure.gateway.example/TEST/order.cgi", ModeTest},
		{"https://secure.gateway.example/testing/order.cgi", ModeLive},
		{"", ModeLive},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ResolveMode(tt.url), tt.url)
	}
}

func TestConfiguration_ResolveMode(t *testing.T) {
	cfg := Configuration{RedirectURL: "https://mdepayments.epdq.co.uk/ncol/Test/orderstandard.asp"}

	t.Run("Defaults to redirect url", func(t *testing.T) {
		assert.Equal(t, ModeTest, cfg.ResolveMode(""))
	})

	t.Run("Explicit url wins", func(t *testing.T) {
		assert.Equal(t, ModeLive, cfg.ResolveMode("https://payments.epdq.co.uk/ncol/prod/orderstandard.asp"))
	})
}

func TestConfiguration_Validate(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		cfg := validConfig()
		cfg.Locale = "en_US"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("Missing required fields", func(t *testing.T) {
		err := Configuration{}.Validate()
		assert.ErrorIs(t, err, ErrConfiguration)
		for _, field := range []string{"redirect url", "pspid", "sha in passphrase", "sha out passphrase"} {
			assert.Contains(t, err.Error(), field)
		}
	})

	t.Run("Blank passphrase only", func(t *testing.T) {
		cfg := validConfig()
		cfg.Locale = ""
		cfg.SHAOutPassphrase = ""
		err := cfg.Validate()
		assert.ErrorIs(t, err, ErrConfiguration)
		assert.Contains(t, err.Error(), "sha out passphrase")
		assert.NotContains(t, err.Error(), "sha in passphrase")
	})

	t.Run("Redaction placeholder as passphrase", func(t *testing.T) {
		cfg := validConfig()
		cfg.Locale = ""
		cfg.SHAInPassphrase = RedactedSecret
		err := cfg.Validate()
		assert.ErrorIs(t, err, ErrConfiguration)
		assert.Contains(t, err.Error(), "sha in passphrase is the redaction placeholder")
		assert.NotContains(t, err.Error(), "sha out passphrase")
	})

	t.Run("Relative redirect url", func(t *testing.T) {
		cfg := validConfig()
		cfg.Locale = ""
		cfg.RedirectURL = "/ncol/test/orderstandard.asp"
		assert.ErrorIs(t, cfg.Validate(), ErrConfiguration)
	})

	t.Run("Unsupported locale", func(t *testing.T) {
		err := validConfig().Validate()
		assert.ErrorIs(t, err, ErrConfiguration)
		assert.Contains(t, err.Error(), "en_GB")
	})

	t.Run("Unsupported algorithm", func(t *testing.T) {
		cfg := validConfig()
		cfg.Locale = ""
		cfg.HashAlgorithm = signature.Algorithm("MD5")
		err := cfg.Validate()
		assert.ErrorIs(t, err, ErrConfiguration)
		assert.ErrorIs(t, err, signature.ErrUnsupportedAlgorithm)
	})
}

func TestConfiguration_Redacted(t *testing.T) {
	cfg := validConfig()
	red := cfg.Redacted()

	assert.Equal(t, RedactedSecret, red.SHAInPassphrase)
	assert.Equal(t, RedactedSecret, red.SHAOutPassphrase)
	assert.Equal(t, "in-secret", cfg.SHAInPassphrase)
	assert.Equal(t, cfg.PSPID, red.PSPID)

	assert.Empty(t, Configuration{}.Redacted().SHAInPassphrase)
}

func TestConfiguration_LanguageAndCodec(t *testing.T) {
	assert.Equal(t, DefaultLocale, Configuration{}.Language())
	assert.Equal(t, "fr_FR", Configuration{Locale: "fr_FR"}.Language())

	codec, err := Configuration{}.Codec()
	assert.NoError(t, err)
	assert.Equal(t, signature.SHA1, codec.Algorithm())

	codec, err = Configuration{HashAlgorithm: signature.SHA512}.Codec()
	assert.NoError(t, err)
	assert.Equal(t, signature.SHA512, codec.Algorithm())
}

func TestLocales(t *testing.T) {
	assert.True(t, IsSupportedLocale(DefaultLocale))
	assert.False(t, IsSupportedLocale("xx_XX"))

	codes := LocaleCodes()
	assert.Len(t, codes, len(SupportedLocales))
	assert.IsIncreasing(t, codes)
}
