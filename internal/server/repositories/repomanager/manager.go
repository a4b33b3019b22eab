package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/identitykeeper/internal/dbx"
	"github.com/dmitrijs2005/identitykeeper/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/identitykeeper/internal/server/repositories/refreshtokens"
)

// RepositoryManager vends repositories bound to a DBTX, so the same
// repositories can run against the pool or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}
