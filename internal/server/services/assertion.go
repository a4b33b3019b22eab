package services

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/identitykeeper/internal/common"
)

// Claim keys read from the identity provider's userinfo document. Any other
// key is ignored.
const (
	ClaimEmail = "email"
	ClaimName  = "name"
	ClaimID    = "id"
)

// Assertion is an identity asserted by the external provider.
type Assertion struct {
	Email      string
	Name       string
	ProviderID string
}

// NewAssertion picks the known claims out of an untyped userinfo map.
// A missing or blank email yields common.ErrMissingEmail.
func NewAssertion(claims map[string]any) (Assertion, error) {
	a := Assertion{
		Email:      claimString(claims, ClaimEmail),
		Name:       claimString(claims, ClaimName),
		ProviderID: claimString(claims, ClaimID),
	}
	if a.Email == "" {
		return Assertion{}, common.ErrMissingEmail
	}
	return a, nil
}

func claimString(claims map[string]any, key string) string {
	v, ok := claims[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case fmt.Stringer:
		return strings.TrimSpace(t.String())
	case float64, int, int64, uint64:
		return fmt.Sprint(t)
	default:
		return ""
	}
}

// splitName splits a display name on its first space. A name without a space
// becomes the first name alone; an empty one becomes "User".
func splitName(name string) (first, last string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "User", ""
	}
	first, last, _ = strings.Cut(name, " ")
	return first, strings.TrimSpace(last)
}
