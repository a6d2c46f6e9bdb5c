package session

import (
	"context"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// Oracle answers session questions from the stored token.
type Oracle struct {
	tokens *TokenStore
	now    func() time.Time
}

// NewOracle builds an oracle over a token store.
func NewOracle(tokens *TokenStore, now func() time.Time) *Oracle {
	if now == nil {
		now = time.Now
	}
	return &Oracle{tokens: tokens, now: now}
}

// HasToken reports whether a non-empty token is stored.
func (o *Oracle) HasToken(ctx context.Context) bool {
	token, err := o.tokens.Token(ctx)
	return err == nil && token != ""
}

// IsLoggedIn reports whether the stored token carries an exp claim later than
// the current second. Undecodable tokens and missing exp fail closed.
func (o *Oracle) IsLoggedIn(ctx context.Context) bool {
	claims, ok := o.claims(ctx)
	if !ok {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Unix() > o.now().Unix()
}

// Role returns the role claim verbatim.
func (o *Oracle) Role(ctx context.Context) (string, bool) {
	claims, ok := o.claims(ctx)
	if !ok {
		return "", false
	}
	role, ok := claims["role"].(string)
	if !ok || role == "" {
		return "", false
	}
	return role, true
}

func (o *Oracle) claims(ctx context.Context) (jwt.MapClaims, bool) {
	token, err := o.tokens.Token(ctx)
	if err != nil || token == "" {
		return nil, false
	}
	return DecodePayload(token)
}
