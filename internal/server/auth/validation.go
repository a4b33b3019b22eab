package auth

// ValidationResult classifies the outcome of inspecting a token.
type ValidationResult int

const (
	Valid ValidationResult = iota
	Expired
	Malformed
	SignatureMismatch
	Unsupported
	EmptyClaims
	// WrongType is a well-formed token that is not an access token.
	WrongType
)

func (r ValidationResult) String() string {
	switch r {
	case Valid:
		return "valid"
	case Expired:
		return "expired"
	case Malformed:
		return "malformed"
	case SignatureMismatch:
		return "signature mismatch"
	case Unsupported:
		return "unsupported"
	case EmptyClaims:
		return "empty claims"
	case WrongType:
		return "wrong token type"
	default:
		return "unknown"
	}
}
