package accounts

import (
	"context"

	"github.com/dmitrijs2005/identitykeeper/internal/server/models"
)

// Repository is the account store used by the session and reconciliation
// services.
type Repository interface {
	// Create inserts a new account. A taken e-mail or ID yields
	// common.ErrorAlreadyExists.
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
	// Update persists names, password hash and the federated flag.
	Update(ctx context.Context, account *models.Account) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
