package common

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const (
	accountIDPrefix   = "USER"
	idSectionLength   = 4
	idSectionCount    = 2
	idSectionAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// NewAccountID returns a durable account identifier of the form
// USER-XXXX-XXXX, where X is drawn from 0-9A-Z.
func NewAccountID() (string, error) {
	var sb strings.Builder
	sb.WriteString(accountIDPrefix)

	max := big.NewInt(int64(len(idSectionAlphabet)))
	for s := 0; s < idSectionCount; s++ {
		sb.WriteByte('-')
		for i := 0; i < idSectionLength; i++ {
			n, err := rand.Int(rand.Reader, max)
			if err != nil {
				return "", err
			}
			sb.WriteByte(idSectionAlphabet[n.Int64()])
		}
	}
	return sb.String(), nil
}
