// Package common defines shared constants and sentinel errors used across
// authkeeper layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Input validation errors. Messages are the caller's fault and safe
	// to surface in detail.
	ErrValidation = errors.New("validation failed")

	// Authentication errors. ErrInvalidCredentials covers both a wrong
	// password and an inactive account so a caller cannot tell the two
	// apart. ErrInvalidToken covers bad signature, expiry, wrong token
	// kind, and revocation for the same reason.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")

	// Infrastructure errors.
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInternal         = errors.New("internal error")
)
