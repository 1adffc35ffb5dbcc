package credential

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Token is an opaque credential. The zero value means "no credential".
//
// Contract:
// - Comparison: tokens are only compared for equality and presence.
// - Validation: the core never verifies signatures or expiry; that is
//   the issuing collaborator's job.
type Token string

// None is the absent credential.
const None Token = ""

// Present returns true if a credential is set.
func (t Token) Present() bool {
	return t != None
}

// Equal reports whether two tokens carry the same credential value.
func (t Token) Equal(other Token) bool {
	return t == other
}

// String returns a redacted representation. The raw token value is never
// printed; use the Token directly where the value is needed.
func (t Token) String() string {
	if !t.Present() {
		return "credential.None"
	}
	return "[REDACTED]"
}

// Subject extracts the subject claim from a JWT-shaped token without
// verifying it. Returns ("", false) when the token is not a parseable
// JWT or carries no subject.
func (t Token) Subject() (string, bool) {
	if !t.Present() {
		return "", false
	}

	parser := jwt.NewParser()
	parsed, _, err := parser.ParseUnverified(string(t), jwt.MapClaims{})
	if err != nil {
		return "", false
	}

	sub, err := parsed.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", false
	}
	return sub, true
}

// FromBearer extracts a token from an Authorization header value.
// Returns None when the value does not carry a bearer token.
func FromBearer(header string) Token {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return None
	}
	value := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return Token(value)
}
