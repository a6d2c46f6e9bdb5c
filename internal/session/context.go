package session

import (
	"context"
	"time"

	"github.com/festivaz/web-gateway/internal/domain"
)

// Manager opens per-request session contexts over a shared store.
type Manager struct {
	store Store
	now   func() time.Time
}

// NewManager builds a manager. A nil clock defaults to time.Now.
func NewManager(store Store, now func() time.Time) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{store: store, now: now}
}

// Open returns the session context for sid.
func (m *Manager) Open(sid string) *Context {
	tokens := NewTokenStore(m.store, sid)
	return &Context{
		id:     sid,
		tokens: tokens,
		oracle: NewOracle(tokens, m.now),
	}
}

// Context is the session state of one browser, passed explicitly to the
// guards, redirector and account flows that need it.
type Context struct {
	id     string
	tokens *TokenStore
	oracle *Oracle
}

// ID returns the session id.
func (c *Context) ID() string { return c.id }

// Tokens exposes the underlying token store.
func (c *Context) Tokens() *TokenStore { return c.tokens }

func (c *Context) HasToken(ctx context.Context) bool   { return c.oracle.HasToken(ctx) }
func (c *Context) IsLoggedIn(ctx context.Context) bool { return c.oracle.IsLoggedIn(ctx) }

// Role returns the token's role claim.
func (c *Context) Role(ctx context.Context) (string, bool) { return c.oracle.Role(ctx) }

// User returns the cached user record, treating store failures as absent.
func (c *Context) User(ctx context.Context) (domain.CachedUser, bool) {
	user, ok, err := c.tokens.User(ctx)
	if err != nil {
		return nil, false
	}
	return user, ok
}

// Logout removes the token and cached user. Calling it on an empty session is a no-op.
func (c *Context) Logout(ctx context.Context) error {
	return c.tokens.Clear(ctx)
}
