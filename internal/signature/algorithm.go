package signature

import (
	"fmt"
	"strings"

	"gitee.com/golang-module/dongle"
)

// Algorithm names the digest the gateway expects. ePDQ accounts are
// provisioned with one of these in the back office; the value here must match.
type Algorithm string

const (
	SHA1   Algorithm = "SHA-1"
	SHA256 Algorithm = "SHA-256"
	SHA512 Algorithm = "SHA-512"
)

// DefaultAlgorithm is the legacy single-round digest.
const DefaultAlgorithm = SHA1

// ParseAlgorithm accepts "sha1", "SHA-256", "sha512" and similar spellings.
// An empty value selects DefaultAlgorithm.
func ParseAlgorithm(raw string) (Algorithm, error) {
	norm := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(raw), "-", ""))
	switch norm {
	case "":
		return DefaultAlgorithm, nil
	case "SHA1":
		return SHA1, nil
	case "SHA256":
		return SHA256, nil
	case "SHA512":
		return SHA512, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, raw)
	}
}

// digest returns the uppercase hex digest of s.
func (a Algorithm) digest(s string) (string, error) {
	enc := dongle.Encrypt.FromString(s)
	switch a {
	case SHA1:
		enc = enc.BySha1()
	case SHA256:
		enc = enc.BySha256()
	case SHA512:
		enc = enc.BySha512()
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, string(a))
	}
	if enc.Error != nil {
		return "", enc.Error
	}
	return strings.ToUpper(enc.ToHexString()), nil
}
