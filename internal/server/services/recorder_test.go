package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/identitykeeper/internal/common"
	"github.com/dmitrijs2005/identitykeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRecorder_StoresRecordForSubjectAccount(t *testing.T) {
	db, _ := newSQLMockDB(t)
	accs := newFakeAccounts(models.Account{ID: "USER-1", Email: "ada@example.com"})
	toks := &fakeTokens{}
	rec := NewTokenRecorder(db, &fakeRepoManager{a: accs, r: toks}, nil)

	exp := time.Now().Add(time.Hour)
	require.NoError(t, rec.RecordRefreshToken(context.Background(), "ada@example.com", "tok", exp))

	require.Len(t, toks.records, 1)
	assert.Equal(t, "USER-1", toks.records[0].UserID)
	assert.Equal(t, "tok", toks.records[0].Token)
	assert.False(t, toks.records[0].Revoked)
	assert.True(t, toks.records[0].ExpiresAt.Equal(exp))
}

func TestTokenRecorder_UnknownSubject(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rec := NewTokenRecorder(db, &fakeRepoManager{a: newFakeAccounts(), r: &fakeTokens{}}, nil)

	err := rec.RecordRefreshToken(context.Background(), "ghost@example.com", "tok", time.Now())
	require.ErrorIs(t, err, common.ErrPersistence)
}

func TestTokenRecorder_StoreFailure(t *testing.T) {
	db, _ := newSQLMockDB(t)
	accs := newFakeAccounts(models.Account{ID: "USER-1", Email: "ada@example.com"})
	rec := NewTokenRecorder(db, &fakeRepoManager{a: accs, r: &fakeTokens{createErr: errors.New("dup")}}, nil)

	err := rec.RecordRefreshToken(context.Background(), "ada@example.com", "tok", time.Now())
	require.ErrorIs(t, err, common.ErrPersistence)
	assert.Contains(t, err.Error(), "dup")
}
