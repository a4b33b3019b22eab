package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/identitykeeper/internal/common"
	"github.com/dmitrijs2005/identitykeeper/internal/logging"
	"github.com/dmitrijs2005/identitykeeper/internal/server/repositories/repomanager"
)

// TokenRecorder persists issued refresh tokens. The token subject is the
// account e-mail; the record is keyed on the account ID.
type TokenRecorder struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewTokenRecorder(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *TokenRecorder {
	if log == nil {
		log = logging.Nop{}
	}
	return &TokenRecorder{db: db, repomanager: m, log: log.With("module", "token_recorder")}
}

// RecordRefreshToken stores token for the account whose e-mail is subject.
func (r *TokenRecorder) RecordRefreshToken(ctx context.Context, subject, token string, expiresAt time.Time) error {
	account, err := r.repomanager.Accounts(r.db).GetByEmail(ctx, subject)
	if err != nil {
		r.log.Error(ctx, "resolve refresh token owner", "subject", subject, "error", err)
		return fmt.Errorf("%w: resolve owner: %v", common.ErrPersistence, err)
	}

	if err := r.repomanager.RefreshTokens(r.db).Create(ctx, account.ID, token, expiresAt); err != nil {
		r.log.Error(ctx, "store refresh token", "account_id", account.ID, "error", err)
		return fmt.Errorf("%w: store refresh token: %v", common.ErrPersistence, err)
	}

	return nil
}
