package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/festivaz/web-gateway/internal/session"
)

const sessionKey = "festivaz_session"

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

// SessionMiddleware resolves the browser's session id from its cookie and
// attaches the session context to the request.
type SessionMiddleware struct {
	manager *session.Manager
	cookie  CookieConfig
}

// NewSessionMiddleware constructs middleware.
func NewSessionMiddleware(manager *session.Manager, cookie CookieConfig) *SessionMiddleware {
	if cookie.Name == "" {
		cookie.Name = "festivaz_sid"
	}
	return &SessionMiddleware{manager: manager, cookie: cookie}
}

// Handle opens the session for the request, issuing a new id when the cookie
// is missing or malformed.
func (m *SessionMiddleware) Handle(c *fiber.Ctx) error {
	sid := c.Cookies(m.cookie.Name)
	if _, err := uuid.Parse(sid); err != nil {
		sid = uuid.NewString()
		m.SetCookie(c, sid, true)
	}
	c.Locals(sessionKey, m.manager.Open(sid))
	return c.Next()
}

// SetCookie writes the session cookie. A non-persistent cookie lasts for the
// browser session only.
func (m *SessionMiddleware) SetCookie(c *fiber.Ctx, sid string, persistent bool) {
	cookie := &fiber.Cookie{
		Name:     m.cookie.Name,
		Value:    sid,
		Path:     "/",
		HTTPOnly: true,
		Secure:   m.cookie.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
	if persistent && m.cookie.MaxAge > 0 {
		cookie.MaxAge = int(m.cookie.MaxAge.Seconds())
	} else if !persistent {
		cookie.SessionOnly = true
	}
	c.Cookie(cookie)
}

// SessionFromContext retrieves the session attached by SessionMiddleware.
func SessionFromContext(c *fiber.Ctx) (*session.Context, bool) {
	val := c.Locals(sessionKey)
	if val == nil {
		return nil, false
	}
	sess, ok := val.(*session.Context)
	return sess, ok
}
