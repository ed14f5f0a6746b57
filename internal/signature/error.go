package signature

import "errors"

var (
	ErrEmptyPassphrase      = errors.New("signature passphrase is empty")
	ErrUnsupportedAlgorithm = errors.New("unsupported hash algorithm")
)
