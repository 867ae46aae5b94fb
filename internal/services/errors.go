package services

import "errors"

// Sentinel errors mapped to HTTP status codes by the handlers. Resource
// lookups reuse repositories.ErrNotFound.
var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailRegistered    = errors.New("email already registered")
)
