// Package client talks to the identitykeeper session service over gRPC.
//
// GRPCClient holds the tokens returned by Login and attaches the access token
// to every protected call through a unary interceptor. gRPC status codes are
// mapped back to sentinel errors (ErrUnavailable, ErrUnauthorized,
// ErrNotLoggedIn, plus the shared ones in package common) so callers can use
// errors.Is.
//
// A GRPCClient is not safe for concurrent Login/Logout; the CLI drives it from
// a single goroutine.
package client
