// Package signature implements the SHA-IN/SHA-OUT signing scheme of the ePDQ
// hosted payment page: canonical parameter string, digest and verification.
package signature

import (
	"crypto/subtle"
	"strings"
)

// Canonicalize builds the digest input. Entries with an empty value and the
// signature field itself are skipped, the rest are emitted as KEY=VALUE in
// ordinal key order, each followed by the passphrase.
func Canonicalize(params Params, passphrase string) string {
	var b strings.Builder
	for _, k := range params.SortedKeys() {
		v := params[k]
		if v == "" || strings.EqualFold(k, Field) {
			continue
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(v)
		b.WriteString(passphrase)
	}
	return b.String()
}

// Codec signs and verifies parameter sets with one digest algorithm.
// It holds no secrets and is safe for concurrent use.
type Codec struct {
	algorithm Algorithm
}

func NewCodec(algorithm Algorithm) (*Codec, error) {
	if _, err := algorithm.digest(""); err != nil {
		return nil, err
	}
	return &Codec{algorithm: algorithm}, nil
}

func (c *Codec) Algorithm() Algorithm {
	return c.algorithm
}

// Sign returns the uppercase hex digest of the canonical string.
func (c *Codec) Sign(params Params, passphrase string) (string, error) {
	if passphrase == "" {
		return "", ErrEmptyPassphrase
	}
	return c.algorithm.digest(Canonicalize(params, passphrase))
}

// Verify recomputes the digest over params (minus the signature field) and
// compares it with candidate in constant time. Hex case in candidate is
// ignored.
func (c *Codec) Verify(params Params, passphrase, candidate string) (bool, error) {
	expected, err := c.Sign(params, passphrase)
	if err != nil {
		return false, err
	}
	got := strings.ToUpper(strings.TrimSpace(candidate))
	return subtle.ConstantTimeCompare([]byte(expected), []byte(got)) == 1, nil
}
