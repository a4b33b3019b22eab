// Package refreshtokens declares the server-side repository contract for
// managing refresh tokens in persistent storage.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/identitykeeper/internal/server/models"
)

// Repository defines operations for storing, looking up and revoking refresh
// tokens. Records are never deleted.
type Repository interface {
	// Create stores a new, non-revoked refresh token for userID.
	Create(ctx context.Context, userID string, token string, expiresAt time.Time) error

	// RevokeAll marks every non-revoked token of userID as revoked in a single
	// statement and reports how many rows changed.
	RevokeAll(ctx context.Context, userID string) (int64, error)

	// FindActiveByUser returns the non-revoked tokens of userID, oldest first.
	FindActiveByUser(ctx context.Context, userID string) ([]models.RefreshToken, error)

	// Find looks up a refresh token by its token string.
	// Implementations return common.ErrorNotFound when the token is absent.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)
}
