package service

import "errors"

// Error kinds surfaced by services. Handlers collapse every authentication
// failure into a uniform 401 response body; the distinct kinds exist so logs
// and metrics can tell a forged token from a replayed one.
var (
	ErrValidation         = errors.New("validation failed")
	ErrConflict           = errors.New("phone already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSession     = errors.New("invalid session")
	ErrNotFound           = errors.New("not found")
)
