package auth

import "errors"

var (
	ErrMissingSecret      = errors.New("JWT_SECRET is not set")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
)
