// Package common defines shared constants and sentinel errors used across
// the service layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors. ErrorNotFound covers both a genuinely
	// missing resource and an ownership mismatch; the two are intentionally
	// indistinguishable to callers.
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("already exists")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorValidation   = errors.New("validation error")

	// Token errors. All of them collapse to a generic "unauthenticated"
	// response at the transport boundary.
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")
	ErrWrongTokenKind = errors.New("wrong token kind")

	// ErrUnknownSubject means a structurally valid token references a user
	// that no longer exists.
	ErrUnknownSubject = errors.New("unknown subject")
)
