// Package common defines shared constants and sentinel errors used across
// client and server layers of GophTasks. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrStore      = errors.New("store error")

	// Input shape errors. *ValidationError unwraps to ErrValidation.
	ErrValidation = errors.New("validation error")

	// Authentication errors. Both are surfaced to end users uniformly.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")

	// ErrTokenExpired is always reported together with ErrInvalidToken.
	// It exists for logging only and must not change client behaviour.
	ErrTokenExpired = errors.New("token expired")

	// Uniqueness errors (duplicate email).
	ErrConflict = errors.New("already exists")

	// Startup errors (missing signing secret and friends).
	ErrConfiguration = errors.New("configuration error")

	// Client-side transport errors.
	ErrorInternal  = errors.New("internal error")
	ErrUnavailable = errors.New("server unavailable")
)
