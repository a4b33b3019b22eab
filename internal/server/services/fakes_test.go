package services

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/dmitrijs2005/identitykeeper/internal/common"
	"github.com/dmitrijs2005/identitykeeper/internal/dbx"
	"github.com/dmitrijs2005/identitykeeper/internal/server/models"
	"github.com/dmitrijs2005/identitykeeper/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/identitykeeper/internal/server/repositories/refreshtokens"
)

// fakeAccounts is an in-memory account store keyed by ID.
type fakeAccounts struct {
	mu   sync.Mutex
	byID map[string]models.Account

	getErr    error
	createErr error
	updateErr error
	existsErr error

	// beforeCreate runs inside Create before the uniqueness check.
	beforeCreate func(f *fakeAccounts)

	creates int
	updates int
}

func newFakeAccounts(seed ...models.Account) *fakeAccounts {
	f := &fakeAccounts{byID: map[string]models.Account{}}
	for _, a := range seed {
		f.byID[a.ID] = a
	}
	return f
}

func (f *fakeAccounts) put(a models.Account) { f.byID[a.ID] = a }

func (f *fakeAccounts) Create(_ context.Context, a *models.Account) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.beforeCreate != nil {
		hook := f.beforeCreate
		f.beforeCreate = nil
		hook(f)
	}
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, existing := range f.byID {
		if existing.Email == a.Email || existing.ID == a.ID {
			return nil, common.ErrorAlreadyExists
		}
	}
	f.creates++
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	f.byID[a.ID] = *a
	return a, nil
}

func (f *fakeAccounts) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, a := range f.byID {
		if a.Email == email {
			cp := a
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeAccounts) GetByID(_ context.Context, id string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	a, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &a, nil
}

func (f *fakeAccounts) Update(_ context.Context, a *models.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.byID[a.ID]; !ok {
		return common.ErrorNotFound
	}
	f.updates++
	f.byID[a.ID] = *a
	return nil
}

func (f *fakeAccounts) ExistsByEmail(_ context.Context, email string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	_, err := f.GetByEmail(context.Background(), email)
	return err == nil, nil
}

func (f *fakeAccounts) get(id string) models.Account {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id]
}

// fakeTokens is an in-memory refresh token store.
type fakeTokens struct {
	mu      sync.Mutex
	records []models.RefreshToken

	createErr error
	revokeErr error
	findErr   error
}

func (f *fakeTokens) Create(_ context.Context, userID, token string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.records = append(f.records, models.RefreshToken{
		ID: int64(len(f.records) + 1), UserID: userID, Token: token, ExpiresAt: expiresAt, CreatedAt: time.Now(),
	})
	return nil
}

func (f *fakeTokens) RevokeAll(_ context.Context, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.revokeErr != nil {
		return 0, f.revokeErr
	}
	var n int64
	for i := range f.records {
		if f.records[i].UserID == userID && !f.records[i].Revoked {
			f.records[i].Revoked = true
			n++
		}
	}
	return n, nil
}

func (f *fakeTokens) FindActiveByUser(_ context.Context, userID string) ([]models.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.RefreshToken
	for _, r := range f.records {
		if r.UserID == userID && !r.Revoked {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeTokens) Find(_ context.Context, token string) (*models.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, r := range f.records {
		if r.Token == token {
			cp := r
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

type fakeRepoManager struct {
	a *fakeAccounts
	r *fakeTokens
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m *fakeRepoManager) Accounts(dbx.DBTX) accounts.Repository           { return m.a }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return m.r }

// plainHasher keeps tests fast; "h:" + password is the hash.
type plainHasher struct{ err error }

func (h plainHasher) Hash(p string) (string, error) {
	if h.err != nil {
		return "", h.err
	}
	return "h:" + p, nil
}

func (h plainHasher) Matches(p, hash string) bool { return hash == "h:"+p }

// stubIssuer returns fixed tokens or an error.
type stubIssuer struct {
	accessErr, refreshErr error
	subjects              []string
}

func (s *stubIssuer) IssueAccessToken(_ context.Context, subject string) (string, error) {
	s.subjects = append(s.subjects, subject)
	if s.accessErr != nil {
		return "", s.accessErr
	}
	return "access-" + subject, nil
}

func (s *stubIssuer) IssueRefreshToken(_ context.Context, subject string) (string, error) {
	if s.refreshErr != nil {
		return "", s.refreshErr
	}
	return "refresh-" + subject, nil
}
