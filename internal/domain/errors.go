package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
)

// Verification failures. ErrStorageWrite never aborts an operation; it is only
// reported through a result's Degraded list.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrMalformedCode  = errors.New("malformed verification code")
	ErrCodeExpired    = errors.New("verification code expired")
	ErrCodeMismatch   = errors.New("verification code mismatch")
	ErrNoActiveCode   = errors.New("no active verification code")
	ErrDeliveryFailed = errors.New("failed to send verification email")
	ErrDirectoryWrite = errors.New("identity directory write failed")
	ErrDirectoryRead  = errors.New("identity directory read failed")
	ErrStorageWrite   = errors.New("verification record write failed")
)
