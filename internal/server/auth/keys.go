package auth

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/identitykeeper/internal/common"
	"github.com/dmitrijs2005/identitykeeper/internal/logging"
)

// MinKeyBytes is the smallest secret accepted for HS512 signing (512 bits).
const MinKeyBytes = 64

// SigningKeySource supplies the HMAC key used to sign and verify tokens.
type SigningKeySource interface {
	SigningKey() []byte
}

// KeyManager resolves the signing key once per process.
//
// When the configured secret is shorter than MinKeyBytes a random key is
// generated instead. Such a key lives only in memory, so every token issued
// before a restart stops validating after it.
type KeyManager struct {
	secret string
	log    logging.Logger

	once      sync.Once
	key       []byte
	ephemeral bool
}

func NewKeyManager(secret string, log logging.Logger) *KeyManager {
	if log == nil {
		log = logging.Nop{}
	}
	return &KeyManager{secret: secret, log: log.With("module", "keys")}
}

// SigningKey returns the process-wide key. Concurrent first callers all see
// the same bytes. Callers must not modify the returned slice.
func (k *KeyManager) SigningKey() []byte {
	k.once.Do(k.resolve)
	return k.key
}

// Ephemeral reports whether the key was generated rather than taken from
// configuration.
func (k *KeyManager) Ephemeral() bool {
	k.once.Do(k.resolve)
	return k.ephemeral
}

func (k *KeyManager) resolve() {
	if len(k.secret) >= MinKeyBytes {
		k.key = []byte(k.secret)
		return
	}

	k.key = common.GenerateRandByteArray(MinKeyBytes)
	k.ephemeral = true
	k.log.Warn(context.Background(), "configured secret is shorter than 512 bits, using a generated key; issued tokens will not survive a restart",
		"configured_bytes", len(k.secret), "required_bytes", MinKeyBytes)
}
