// Package services contains server-side business logic: local and federated
// login, logout, password and profile management, and refresh-token
// bookkeeping.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/dmitrijs2005/identitykeeper/internal/common"
	"github.com/dmitrijs2005/identitykeeper/internal/logging"
	"github.com/dmitrijs2005/identitykeeper/internal/server/models"
	"github.com/dmitrijs2005/identitykeeper/internal/server/passwords"
	"github.com/dmitrijs2005/identitykeeper/internal/server/repositories/repomanager"
)

// TokenIssuer mints the access/refresh pair returned by a login.
type TokenIssuer interface {
	IssueAccessToken(ctx context.Context, subject string) (string, error)
	IssueRefreshToken(ctx context.Context, subject string) (string, error)
}

// Reconciler resolves a federated assertion to a local account.
type Reconciler interface {
	Reconcile(ctx context.Context, a Assertion) (*models.Account, error)
}

// AccountSummary is the read projection of an account handed to clients.
type AccountSummary struct {
	ID          string `json:"accountId"`
	Email       string `json:"email"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	IsFederated bool   `json:"isFederated"`
}

func summarize(a *models.Account) *AccountSummary {
	return &AccountSummary{
		ID:          a.ID,
		Email:       a.Email,
		FirstName:   a.FirstName,
		LastName:    a.LastName,
		IsFederated: a.IsFederated,
	}
}

// LoginResult is the outcome of a successful local or federated login.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	Account      AccountSummary
}

// RegisterInput carries the fields required to create a local account.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// SessionService handles account sessions:
// - Login / FederatedLogin: authenticate and mint a token pair
// - Logout: revoke every refresh token of the account
// - ChangePassword, Register, Profile, UpdateProfile
type SessionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tokens      TokenIssuer
	hasher      passwords.Hasher
	reconciler  Reconciler
	log         logging.Logger
}

func NewSessionService(db *sql.DB, m repomanager.RepositoryManager, tokens TokenIssuer, hasher passwords.Hasher, reconciler Reconciler, log logging.Logger) *SessionService {
	if log == nil {
		log = logging.Nop{}
	}
	return &SessionService{
		db:          db,
		repomanager: m,
		tokens:      tokens,
		hasher:      hasher,
		reconciler:  reconciler,
		log:         log.With("module", "sessions"),
	}
}

// Login checks email and password and returns a fresh token pair. Unknown
// accounts, wrong passwords and federated accounts all yield
// common.ErrorUnauthorized.
func (s *SessionService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	account, err := s.repomanager.Accounts(s.db).GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, s.persistence(ctx, "load account", err)
	}

	if account.IsFederated || !s.hasher.Matches(password, account.PasswordHash) {
		s.log.Info(ctx, "login rejected", "account_id", account.ID)
		return nil, common.ErrorUnauthorized
	}

	return s.issue(ctx, account)
}

// FederatedLogin reconciles a and issues a token pair for the resulting
// account.
func (s *SessionService) FederatedLogin(ctx context.Context, a Assertion) (*LoginResult, error) {
	account, err := s.reconciler.Reconcile(ctx, a)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, account)
}

// Logout revokes all refresh tokens of accountID and returns how many were
// active.
func (s *SessionService) Logout(ctx context.Context, accountID string) (int64, error) {
	n, err := s.repomanager.RefreshTokens(s.db).RevokeAll(ctx, accountID)
	if err != nil {
		return 0, s.persistence(ctx, "revoke refresh tokens", err)
	}
	s.log.Info(ctx, "logged out", "account_id", accountID, "revoked", n)
	return n, nil
}

// RefreshTokenActive reports whether token is on record and not revoked.
func (s *SessionService) RefreshTokenActive(ctx context.Context, token string) (bool, error) {
	record, err := s.repomanager.RefreshTokens(s.db).Find(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, nil
		}
		return false, s.persistence(ctx, "find refresh token", err)
	}
	return !record.Revoked, nil
}

// ChangePassword replaces the password of a local account. Federated accounts
// are refused before the current password is looked at.
func (s *SessionService) ChangePassword(ctx context.Context, accountID, currentPassword, newPassword string) error {
	repo := s.repomanager.Accounts(s.db)

	account, err := repo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return s.persistence(ctx, "load account", err)
	}

	if account.IsFederated {
		return common.ErrFederatedAccount
	}
	if !s.hasher.Matches(currentPassword, account.PasswordHash) {
		return common.ErrorUnauthorized
	}
	if len(newPassword) < common.MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", common.ErrorValidation, common.MinPasswordLength)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}
	account.PasswordHash = hash

	if err := repo.Update(ctx, account); err != nil {
		return s.persistence(ctx, "update password", err)
	}

	s.log.Info(ctx, "password changed", "account_id", accountID)
	return nil
}

// Register creates a local account.
func (s *SessionService) Register(ctx context.Context, in RegisterInput) (*models.Account, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)

	if err := validateRegistration(in); err != nil {
		return nil, err
	}

	repo := s.repomanager.Accounts(s.db)

	exists, err := repo.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return nil, s.persistence(ctx, "check email", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: email is already taken", common.ErrorAlreadyExists)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}
	id, err := common.NewAccountID()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	account, err := repo.Create(ctx, &models.Account{
		ID:           id,
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		return nil, s.persistence(ctx, "create account", err)
	}

	s.log.Info(ctx, "account registered", "account_id", account.ID)
	return account, nil
}

func validateRegistration(in RegisterInput) error {
	var problems []string
	if in.FirstName == "" {
		problems = append(problems, "first name is required")
	}
	if in.LastName == "" {
		problems = append(problems, "last name is required")
	}
	if !isBareAddress(in.Email) {
		problems = append(problems, "a valid email is required")
	}
	if len(in.Password) < common.MinPasswordLength {
		problems = append(problems, fmt.Sprintf("password must be at least %d characters", common.MinPasswordLength))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", common.ErrorValidation, strings.Join(problems, "; "))
	}
	return nil
}

// isBareAddress accepts "local@domain" only; display names and angle
// brackets are rejected so the stored e-mail is exactly the address.
func isBareAddress(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// Profile returns the summary of accountID.
func (s *SessionService) Profile(ctx context.Context, accountID string) (*AccountSummary, error) {
	account, err := s.repomanager.Accounts(s.db).GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, s.persistence(ctx, "load account", err)
	}
	return summarize(account), nil
}

// ProfileByEmail returns the summary of the account owning email, the subject
// of an access token.
func (s *SessionService) ProfileByEmail(ctx context.Context, email string) (*AccountSummary, error) {
	account, err := s.repomanager.Accounts(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, s.persistence(ctx, "load account", err)
	}
	return summarize(account), nil
}

// UpdateProfile sets the given names. Nil or blank values are left alone.
func (s *SessionService) UpdateProfile(ctx context.Context, accountID string, firstName, lastName *string) (*AccountSummary, error) {
	repo := s.repomanager.Accounts(s.db)

	account, err := repo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, s.persistence(ctx, "load account", err)
	}

	changed := false
	if v := trimmed(firstName); v != "" && v != account.FirstName {
		account.FirstName = v
		changed = true
	}
	if v := trimmed(lastName); v != "" && v != account.LastName {
		account.LastName = v
		changed = true
	}

	if changed {
		if err := repo.Update(ctx, account); err != nil {
			return nil, s.persistence(ctx, "update profile", err)
		}
	}

	return summarize(account), nil
}

func trimmed(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

func (s *SessionService) issue(ctx context.Context, account *models.Account) (*LoginResult, error) {
	access, err := s.tokens.IssueAccessToken(ctx, account.Email)
	if err != nil {
		return nil, s.issueFailure(ctx, err)
	}
	refresh, err := s.tokens.IssueRefreshToken(ctx, account.Email)
	if err != nil {
		return nil, s.issueFailure(ctx, err)
	}

	return &LoginResult{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    common.TokenType,
		Account:      *summarize(account),
	}, nil
}

func (s *SessionService) issueFailure(ctx context.Context, err error) error {
	if errors.Is(err, common.ErrPersistence) {
		return err
	}
	s.log.Error(ctx, "issue tokens", "error", err)
	return fmt.Errorf("%w: issue tokens: %v", common.ErrorInternal, err)
}

func (s *SessionService) persistence(ctx context.Context, op string, err error) error {
	s.log.Error(ctx, op, "error", err)
	return fmt.Errorf("%w: %s: %v", common.ErrPersistence, op, err)
}
