package services

import "errors"

// Sentinel errors handlers map onto HTTP statuses.
var (
	ErrInvalidCredentials = errors.New("invalid email, password, or role")
	ErrUnauthorized       = errors.New("operation not permitted")
	ErrNotFound           = errors.New("resource not found")
	ErrEmailTaken         = errors.New("email already registered")
)
