package auth

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/identitykeeper/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	logging.Nop
	mu    sync.Mutex
	warns []string
}

func (l *recordingLogger) Warn(_ context.Context, msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

func (l *recordingLogger) With(...any) logging.Logger { return l }

func TestKeyManager_UsesLongSecret(t *testing.T) {
	secret := strings.Repeat("k", MinKeyBytes)
	km := NewKeyManager(secret, nil)

	assert.Equal(t, []byte(secret), km.SigningKey())
	assert.False(t, km.Ephemeral())
}

func TestKeyManager_ShortSecretFallsBackToRandomKey(t *testing.T) {
	log := &recordingLogger{}
	km := NewKeyManager("too-short", log)

	key := km.SigningKey()
	require.Len(t, key, MinKeyBytes)
	assert.NotEqual(t, []byte("too-short"), key)
	assert.True(t, km.Ephemeral())
	assert.Len(t, log.warns, 1)

	// Cached: no second warning, same bytes.
	assert.Equal(t, key, km.SigningKey())
	assert.Len(t, log.warns, 1)
}

func TestKeyManager_ConcurrentFirstAccessSeesOneKey(t *testing.T) {
	log := &recordingLogger{}
	km := NewKeyManager("", log)

	const n = 64
	keys := make([][]byte, n)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			keys[i] = km.SigningKey()
		}(i)
	}
	close(start)
	wg.Wait()

	for i := 1; i < n; i++ {
		require.Equal(t, keys[0], keys[i])
	}
	assert.Len(t, log.warns, 1)
}

func TestKeyManager_EphemeralKeysDifferAcrossInstances(t *testing.T) {
	a := NewKeyManager("short", nil)
	b := NewKeyManager("short", nil)
	assert.NotEqual(t, a.SigningKey(), b.SigningKey())
}
