package session

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	jwt "github.com/golang-jwt/jwt/v5"
)

var urlSafeAlphabet = strings.NewReplacer("-", "+", "_", "/")

// DecodePayload returns the claims carried by the payload segment of a JWT.
//
// The signature is NOT verified. The result only drives navigation hints
// (which section to show, whether a session looks expired); the backend
// remains responsible for authorizing every request it serves.
func DecodePayload(token string) (jwt.MapClaims, bool) {
	segments := strings.Split(token, ".")
	if len(segments) < 2 || segments[1] == "" {
		return nil, false
	}

	payload := urlSafeAlphabet.Replace(segments[1])
	if rem := len(payload) % 4; rem != 0 {
		payload += strings.Repeat("=", 4-rem)
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, false
	}

	var claims jwt.MapClaims
	if err := json.Unmarshal(raw, &claims); err != nil || claims == nil {
		return nil, false
	}
	return claims, true
}
