package utils

import "errors"

// Errors returned by the stores and the token service. Handlers map these to
// HTTP status codes; everything else surfaces as an internal error.
var (
	ErrNotFound           = errors.New("record not found")
	ErrUsernameTaken      = errors.New("username already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenConfig        = errors.New("token secret and algorithm must be configured")
)
