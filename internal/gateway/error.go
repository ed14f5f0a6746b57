package gateway

import "errors"

var (
	// ErrConfiguration marks merchant setup problems. It blocks redirect
	// construction and is reported to the operator, never to the shopper.
	ErrConfiguration = errors.New("gateway configuration error")

	ErrConfigurationNotFound = errors.New("gateway configuration not found")
)
