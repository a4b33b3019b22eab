// Package common defines shared constants and sentinel errors used across
// client and server layers of identitykeeper. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// ErrorUnauthorized covers both "no such account" and "wrong password";
	// the two cases are never distinguished to callers.
	ErrorUnauthorized = errors.New("unauthorized")

	// ErrAccessDenied is returned when a caller acts on a resource it does not own.
	// Every RPC here acts on the caller's own account, so nothing in this module
	// produces it yet; transports still map it to PermissionDenied for
	// collaborators that do.
	ErrAccessDenied = errors.New("access denied")

	// ErrFederatedAccount rejects password operations on accounts that were
	// provisioned or claimed through the external identity provider.
	ErrFederatedAccount = errors.New("password management is not available for federated accounts")

	// Validation errors.
	ErrorValidation = errors.New("validation error")
	ErrMissingEmail = errors.New("email not found in federated identity assertion")

	// ErrPersistence wraps storage-layer failures. The cause is logged, never
	// shown to the client.
	ErrPersistence = errors.New("persistence failure")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
