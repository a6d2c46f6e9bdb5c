package session

import (
	"context"
	"encoding/json"

	"github.com/festivaz/web-gateway/internal/domain"
)

// TokenStore persists the bearer token and cached user record of one session.
// The two entries are written and removed independently; a cached user does
// not imply a valid token.
type TokenStore struct {
	store Store
	sid   string
}

// NewTokenStore binds a store to a session id.
func NewTokenStore(store Store, sid string) *TokenStore {
	return &TokenStore{store: store, sid: sid}
}

// SaveToken stores the raw JWT.
func (t *TokenStore) SaveToken(ctx context.Context, token string) error {
	return t.store.Set(ctx, t.sid, KeyToken, token)
}

// Token returns the stored JWT or an empty string.
func (t *TokenStore) Token(ctx context.Context) (string, error) {
	token, _, err := t.store.Get(ctx, t.sid, KeyToken)
	return token, err
}

// SaveUser stores the user record as JSON.
func (t *TokenStore) SaveUser(ctx context.Context, user domain.CachedUser) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return t.store.Set(ctx, t.sid, KeyUser, string(raw))
}

// User returns the cached user record. Malformed entries read as absent.
func (t *TokenStore) User(ctx context.Context) (domain.CachedUser, bool, error) {
	raw, ok, err := t.store.Get(ctx, t.sid, KeyUser)
	if err != nil || !ok {
		return nil, false, err
	}
	var user domain.CachedUser
	if err := json.Unmarshal([]byte(raw), &user); err != nil || user == nil {
		return nil, false, nil
	}
	return user, true, nil
}

// Clear removes the token and user record.
func (t *TokenStore) Clear(ctx context.Context) error {
	return t.store.Remove(ctx, t.sid, KeyToken, KeyUser)
}
