// Package identity extracts the user identity from a bearer credential
// without contacting the backend.
//
// No signature is verified here. The backend issued the token and remains
// the only party that authorizes requests; the subject is used for display
// and for filtering transfer lists, never for access decisions.
package identity

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DeriveUserID returns the "sub" claim of a three-part token.
//
// The payload segment may use either base64 alphabet and may or may not be
// padded. It reports false when the token does not have exactly three
// dot-separated parts, when the payload is not base64-encoded JSON, or when
// "sub" is absent or not a string.
func DeriveUserID(token string) (string, bool) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", false
	}

	payload, err := decodeSegment(parts[1])
	if err != nil {
		return "", false
	}

	var claims map[string]any
	if err := json.Unmarshal(payload, &claims); err != nil {
		return "", false
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return "", false
	}
	return sub, true
}

func decodeSegment(seg string) ([]byte, error) {
	normalized := strings.NewReplacer("-", "+", "_", "/").Replace(seg)
	if rem := len(normalized) % 4; rem != 0 {
		normalized += strings.Repeat("=", 4-rem)
	}
	return base64.StdEncoding.DecodeString(normalized)
}

// ExpiresAt returns the "exp" claim of a JWT, if present. The token is
// parsed without verification.
func ExpiresAt(token string) (time.Time, bool) {
	parser := jwt.NewParser(jwt.WithPaddingAllowed())

	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
