// Package auth issues and verifies the signed bearer tokens used for
// sessions.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/identitykeeper/internal/common"
	"github.com/dmitrijs2005/identitykeeper/internal/logging"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// RefreshTokenRecorder persists a refresh token as it is issued. Resolving
// the subject to an account is the recorder's job.
type RefreshTokenRecorder interface {
	RecordRefreshToken(ctx context.Context, subject, token string, expiresAt time.Time) error
}

// Values of the typ claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

type sessionClaims struct {
	jwt.RegisteredClaims
	Type string `json:"typ,omitempty"`
}

// TokenService mints and checks HS512 tokens carrying sub, iat, exp, jti and
// typ. Only access tokens authenticate a caller.
type TokenService struct {
	keys       SigningKeySource
	recorder   RefreshTokenRecorder
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
	log        logging.Logger
}

func NewTokenService(keys SigningKeySource, recorder RefreshTokenRecorder, accessTTL, refreshTTL time.Duration, log logging.Logger) *TokenService {
	if log == nil {
		log = logging.Nop{}
	}
	return &TokenService{
		keys:       keys,
		recorder:   recorder,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
		log:        log.With("module", "tokens"),
	}
}

// WithClock replaces the time source used for issuing and validating.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	s.now = now
	return s
}

// AccessTTL returns the configured access token lifetime.
func (s *TokenService) AccessTTL() time.Duration { return s.accessTTL }

// IssueAccessToken signs a short-lived token for subject (the account e-mail).
func (s *TokenService) IssueAccessToken(ctx context.Context, subject string) (string, error) {
	token, _, err := s.sign(subject, TokenTypeAccess, s.accessTTL)
	return token, err
}

// IssueRefreshToken signs a long-lived token for subject and records it.
// A recorder failure aborts issuance.
func (s *TokenService) IssueRefreshToken(ctx context.Context, subject string) (string, error) {
	token, expiresAt, err := s.sign(subject, TokenTypeRefresh, s.refreshTTL)
	if err != nil {
		return "", err
	}

	if s.recorder != nil {
		if err := s.recorder.RecordRefreshToken(ctx, subject, token, expiresAt); err != nil {
			return "", fmt.Errorf("record refresh token: %w", err)
		}
	}

	return token, nil
}

func (s *TokenService) sign(subject, typ string, ttl time.Duration) (string, time.Time, error) {
	if strings.TrimSpace(subject) == "" {
		return "", time.Time{}, fmt.Errorf("%w: empty subject", common.ErrorValidation)
	}

	now := s.now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
		Type: typ,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(s.keys.SigningKey())
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return signed, claims.ExpiresAt.Time, nil
}

func (s *TokenService) keyFunc(t *jwt.Token) (any, error) {
	if t.Method.Alg() != jwt.SigningMethodHS512.Alg() {
		return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
	}
	return s.keys.SigningKey(), nil
}

// Validate reports whether token is an access token signed with the current
// key, uses HS512, names a subject and has not expired. Every rejection is
// logged with its reason.
func (s *TokenService) Validate(ctx context.Context, token string) bool {
	res, _, err := s.inspectAccess(token)
	if res != Valid {
		s.log.Info(ctx, "token rejected", "reason", res.String(), "error", err)
		return false
	}
	return true
}

// Inspect classifies token without logging. The typ claim is not checked.
func (s *TokenService) Inspect(token string) ValidationResult {
	res, _, _ := s.inspect(token)
	return res
}

// Authenticate validates an access token and returns its subject. Expired
// tokens yield common.ErrTokenExpired, anything else (refresh tokens included)
// common.ErrInvalidToken.
func (s *TokenService) Authenticate(ctx context.Context, token string) (string, error) {
	res, claims, err := s.inspectAccess(token)
	switch res {
	case Valid:
		return claims.Subject, nil
	case Expired:
		s.log.Debug(ctx, "token rejected", "reason", res.String())
		return "", common.ErrTokenExpired
	default:
		s.log.Info(ctx, "token rejected", "reason", res.String(), "error", err)
		return "", common.ErrInvalidToken
	}
}

// ExtractSubject returns the sub claim. The signature is checked, expiry is not.
func (s *TokenService) ExtractSubject(token string) (string, error) {
	claims, err := s.claims(token)
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: no subject", common.ErrInvalidToken)
	}
	return claims.Subject, nil
}

// ExtractExpiry returns the exp claim. The signature is checked, expiry is not.
func (s *TokenService) ExtractExpiry(token string) (time.Time, error) {
	claims, err := s.claims(token)
	if err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, fmt.Errorf("%w: no expiry", common.ErrInvalidToken)
	}
	return claims.ExpiresAt.Time, nil
}

func (s *TokenService) claims(token string) (*sessionClaims, error) {
	claims := &sessionClaims{}
	if _, err := jwt.ParseWithClaims(token, claims, s.keyFunc, jwt.WithoutClaimsValidation()); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	return claims, nil
}

func (s *TokenService) inspectAccess(token string) (ValidationResult, *sessionClaims, error) {
	res, claims, err := s.inspect(token)
	if res == Valid && claims.Type != TokenTypeAccess {
		return WrongType, nil, fmt.Errorf("token type %q is not %q", claims.Type, TokenTypeAccess)
	}
	return res, claims, err
}

func (s *TokenService) inspect(token string) (ValidationResult, *sessionClaims, error) {
	if strings.TrimSpace(token) == "" {
		return EmptyClaims, nil, errors.New("token is empty")
	}

	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims, s.keyFunc, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	switch {
	case err == nil:
		if claims.Subject == "" {
			return EmptyClaims, claims, errors.New("token has no subject")
		}
		return Valid, claims, nil
	case errors.Is(err, jwt.ErrTokenMalformed):
		return Malformed, nil, err
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return Unsupported, nil, err
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return SignatureMismatch, nil, err
	case errors.Is(err, jwt.ErrTokenExpired):
		return Expired, nil, err
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return EmptyClaims, nil, err
	default:
		return Malformed, nil, err
	}
}
