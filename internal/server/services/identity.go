package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/identitykeeper/internal/common"
	"github.com/dmitrijs2005/identitykeeper/internal/dbx"
	"github.com/dmitrijs2005/identitykeeper/internal/logging"
	"github.com/dmitrijs2005/identitykeeper/internal/server/models"
	"github.com/dmitrijs2005/identitykeeper/internal/server/passwords"
	"github.com/dmitrijs2005/identitykeeper/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/identitykeeper/internal/server/repositories/repomanager"
)

// reconcileAttempts bounds retries when two first logins for the same e-mail
// race on the unique constraint.
const reconcileAttempts = 2

// IdentityReconciler maps a federated assertion onto a local account,
// creating or claiming it as needed.
type IdentityReconciler struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      passwords.Hasher
	newID       func() (string, error)
	log         logging.Logger
}

func NewIdentityReconciler(db *sql.DB, m repomanager.RepositoryManager, hasher passwords.Hasher, log logging.Logger) *IdentityReconciler {
	if log == nil {
		log = logging.Nop{}
	}
	return &IdentityReconciler{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		newID:       common.NewAccountID,
		log:         log.With("module", "reconciler"),
	}
}

// Reconcile returns the durable account for a. An existing account with the
// same e-mail is claimed: its federated flag is set for good and its names
// follow the provider. Otherwise a federated account is created with a
// password hash nobody knows.
func (r *IdentityReconciler) Reconcile(ctx context.Context, a Assertion) (*models.Account, error) {
	if a.Email == "" {
		return nil, common.ErrMissingEmail
	}

	first, last := splitName(a.Name)

	// The throwaway hash is prepared before the transaction when the e-mail is
	// not on record, so no transaction stays open across a bcrypt round.
	var throwaway string
	if _, err := r.repomanager.Accounts(r.db).GetByEmail(ctx, a.Email); errors.Is(err, common.ErrorNotFound) {
		if throwaway, err = r.throwawayHash(); err != nil {
			r.log.Error(ctx, "prepare federated account failed", "email", a.Email, "error", err)
			return nil, fmt.Errorf("%w: prepare account: %v", common.ErrorInternal, err)
		}
	}

	var account *models.Account
	err := dbx.WithTxRetry(ctx, r.db, nil, reconcileAttempts,
		func(err error) bool { return errors.Is(err, common.ErrorAlreadyExists) },
		func(ctx context.Context, tx dbx.DBTX) error {
			var err error
			account, err = r.reconcile(ctx, r.repomanager.Accounts(tx), a.Email, first, last, throwaway)
			return err
		})
	if err != nil {
		r.log.Error(ctx, "reconcile federated identity failed", "email", a.Email, "error", err)
		return nil, fmt.Errorf("%w: reconcile %s: %v", common.ErrPersistence, a.Email, err)
	}

	return account, nil
}

func (r *IdentityReconciler) reconcile(ctx context.Context, repo accounts.Repository, email, first, last, throwaway string) (*models.Account, error) {
	account, err := repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return r.claim(ctx, repo, account, first, last)
	case errors.Is(err, common.ErrorNotFound):
		return r.create(ctx, repo, email, first, last, throwaway)
	default:
		return nil, err
	}
}

func (r *IdentityReconciler) claim(ctx context.Context, repo accounts.Repository, account *models.Account, first, last string) (*models.Account, error) {
	changed := false

	if !account.IsFederated {
		account.IsFederated = true
		changed = true
		r.log.Info(ctx, "local account claimed by federated login", "account_id", account.ID)
	}
	if first != account.FirstName {
		account.FirstName = first
		changed = true
	}
	if last != "" && last != account.LastName {
		account.LastName = last
		changed = true
	}

	if !changed {
		return account, nil
	}

	if err := repo.Update(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (r *IdentityReconciler) create(ctx context.Context, repo accounts.Repository, email, first, last, hash string) (*models.Account, error) {
	id, err := r.newID()
	if err != nil {
		return nil, err
	}

	// Only reached without a prepared hash when the account vanished between
	// the lookup and the transaction.
	if hash == "" {
		if hash, err = r.throwawayHash(); err != nil {
			return nil, err
		}
	}

	account := &models.Account{
		ID:           id,
		Email:        email,
		FirstName:    first,
		LastName:     last,
		PasswordHash: hash,
		IsFederated:  true,
	}

	created, err := repo.Create(ctx, account)
	if err != nil {
		return nil, err
	}

	r.log.Info(ctx, "federated account created", "account_id", created.ID)
	return created, nil
}

// throwawayHash hashes 32 random bytes that are wiped right after.
func (r *IdentityReconciler) throwawayHash() (string, error) {
	secret := common.GenerateRandByteArray(32)
	defer common.WipeByteArray(secret)
	return r.hasher.Hash(string(secret))
}
