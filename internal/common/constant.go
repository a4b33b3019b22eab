// Package common contains shared constants and sentinel errors used across
// identitykeeper components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// AuthorizationHeaderName carries "Bearer <token>" credentials.
const AuthorizationHeaderName = "authorization"

// TokenType is returned to clients alongside every issued token pair.
const TokenType = "Bearer"

// MinPasswordLength is the shortest password accepted for local accounts.
const MinPasswordLength = 8
