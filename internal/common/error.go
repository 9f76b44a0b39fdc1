// Package common defines shared constants and sentinel errors used across
// the Postscript client and server layers. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation / item-specific errors.
	ErrInvalidInput = errors.New("invalid input")

	// Crypto errors. ErrDecryptionFailed deliberately covers every
	// authentication or key-derivation failure so the error surface never
	// distinguishes a wrong key from tampered data.
	ErrInvalidShare       = errors.New("invalid secret share")
	ErrUnsupportedVersion = errors.New("unsupported envelope version")
	ErrDecryptionFailed   = errors.New("decryption failed")

	// Heartbeat configuration validation errors.
	ErrInvalidFrequency   = errors.New("invalid heartbeat frequency")
	ErrInvalidGracePeriod = errors.New("invalid grace period")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
