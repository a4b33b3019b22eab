package grpc

import (
	"context"

	"github.com/dmitrijs2005/identitykeeper/internal/common"
	"github.com/dmitrijs2005/identitykeeper/internal/logging"
	"github.com/dmitrijs2005/identitykeeper/internal/server/models"
	"github.com/dmitrijs2005/identitykeeper/internal/server/services"
)

type fakeSessions struct {
	accounts map[string]*services.AccountSummary // by email

	registerErr error
	loginErr    error
	logoutErr   error
	changeErr   error
	profileErr  error

	loggedOut    []string
	changed      []string
	updatedFirst *string
	updatedLast  *string
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{accounts: map[string]*services.AccountSummary{
		"ada@example.com": {ID: "USER-ADA0-0001", Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace"},
	}}
}

func (f *fakeSessions) Register(_ context.Context, in services.RegisterInput) (*models.Account, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &models.Account{ID: "USER-NEW0-0001", Email: in.Email}, nil
}

func (f *fakeSessions) Login(_ context.Context, email, password string) (*services.LoginResult, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	a, ok := f.accounts[email]
	if !ok || password != "secret123" {
		return nil, common.ErrorUnauthorized
	}
	return &services.LoginResult{AccessToken: "token-for:" + email, RefreshToken: "refresh", TokenType: "Bearer", Account: *a}, nil
}

func (f *fakeSessions) Logout(_ context.Context, accountID string) (int64, error) {
	if f.logoutErr != nil {
		return 0, f.logoutErr
	}
	f.loggedOut = append(f.loggedOut, accountID)
	return 2, nil
}

func (f *fakeSessions) ChangePassword(_ context.Context, accountID, _, _ string) error {
	if f.changeErr != nil {
		return f.changeErr
	}
	f.changed = append(f.changed, accountID)
	return nil
}

func (f *fakeSessions) Profile(_ context.Context, accountID string) (*services.AccountSummary, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	for _, a := range f.accounts {
		if a.ID == accountID {
			return a, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeSessions) ProfileByEmail(_ context.Context, email string) (*services.AccountSummary, error) {
	a, ok := f.accounts[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return a, nil
}

func (f *fakeSessions) UpdateProfile(_ context.Context, accountID string, first, last *string) (*services.AccountSummary, error) {
	f.updatedFirst, f.updatedLast = first, last
	return f.Profile(context.Background(), accountID)
}

// fakeTokens accepts "token-for:<email>" and rejects everything else.
type fakeTokens struct{}

func (fakeTokens) Authenticate(_ context.Context, token string) (string, error) {
	const prefix = "token-for:"
	switch {
	case token == "expired":
		return "", common.ErrTokenExpired
	case len(token) > len(prefix) && token[:len(prefix)] == prefix:
		return token[len(prefix):], nil
	default:
		return "", common.ErrInvalidToken
	}
}

func newTestServer(sessions *fakeSessions) *GRPCServer {
	return NewGRPCServer("127.0.0.1:0", logging.Nop{}, sessions, fakeTokens{})
}
