package auth

import (
	"errors"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/festivaz/web-gateway/internal/domain"
	"github.com/festivaz/web-gateway/internal/events"
	"github.com/festivaz/web-gateway/internal/observability"
	"github.com/festivaz/web-gateway/internal/session"
	apperrors "github.com/festivaz/web-gateway/pkg/util"
)

// Guard gates navigation into role-scoped sections.
//
// Decisions are taken from the unverified token payload and only steer the
// browser; the backend authorizes every data request on its own.
type Guard struct {
	tokens     *TokenManager
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewGuard builds a guard.
func NewGuard(dispatcher events.Dispatcher, metrics *observability.Metrics, logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{dispatcher: dispatcher, metrics: metrics, logger: logger}
}

// VerifyIssuedBy makes the guard check the signature of tokens that claim to
// be issued by the gateway. Such a token that fails verification is treated
// like an expired one. Backend tokens are unaffected.
func (g *Guard) VerifyIssuedBy(tokens *TokenManager) *Guard {
	g.tokens = tokens
	return g
}

type guardRule struct {
	section string
	roles   []domain.Role
	// loginPath, when set, receives unauthenticated visitors with a returnUrl.
	loginPath string
}

// Require lets a request through only for a live session whose role claim
// exactly matches one of roles. With no roles any live session passes.
// Visitors without a live session are logged out and sent to the landing page.
func (g *Guard) Require(section string, roles ...domain.Role) fiber.Handler {
	rule := guardRule{section: section, roles: roles}
	return func(c *fiber.Ctx) error {
		return g.check(c, rule)
	}
}

// RequireWithLogin behaves like Require but sends unauthenticated visitors to
// loginPath, carrying the attempted URL in the returnUrl query parameter.
func (g *Guard) RequireWithLogin(section, loginPath string, roles ...domain.Role) fiber.Handler {
	rule := guardRule{section: section, roles: roles, loginPath: loginPath}
	return func(c *fiber.Ctx) error {
		return g.check(c, rule)
	}
}

func (g *Guard) check(c *fiber.Ctx, rule guardRule) error {
	sess, ok := SessionFromContext(c)
	if !ok {
		return apperrors.NewInternalError(errors.New("session middleware not installed"))
	}
	ctx := c.UserContext()

	if !sess.IsLoggedIn(ctx) || g.forged(c, sess) {
		hadToken := sess.HasToken(ctx)
		if err := sess.Logout(ctx); err != nil {
			g.logger.Warn("clear stale session", zap.String("session_id", sess.ID()), zap.Error(err))
		}
		if hadToken {
			event := events.NewEvent(events.EventSessionExpired, sess.ID())
			event.Path = c.OriginalURL()
			g.publish(c, event)
		}
		g.metrics.RecordGuardDecision(rule.section, observability.DecisionDenyUnauthenticated)
		if rule.loginPath != "" {
			return c.Redirect(rule.loginPath+"?returnUrl="+url.QueryEscape(c.OriginalURL()), fiber.StatusFound)
		}
		return c.Redirect(domain.PathLanding, fiber.StatusFound)
	}

	if len(rule.roles) == 0 {
		g.metrics.RecordGuardDecision(rule.section, observability.DecisionAllow)
		return c.Next()
	}

	role, _ := sess.Role(ctx)
	if !rule.allows(role) {
		event := events.NewEvent(events.EventNavigationDenied, sess.ID())
		event.Role = role
		event.Path = c.OriginalURL()
		event.Payload = events.DeniedPayload{Section: rule.section, Reason: "role"}
		g.publish(c, event)
		g.metrics.RecordGuardDecision(rule.section, observability.DecisionDenyRole)
		return c.Redirect(domain.PathUnauthorized, fiber.StatusFound)
	}

	g.metrics.RecordGuardDecision(rule.section, observability.DecisionAllow)
	return c.Next()
}

// forged reports a gateway-issued token whose signature or claims do not verify.
func (g *Guard) forged(c *fiber.Ctx, sess *session.Context) bool {
	if g.tokens == nil {
		return false
	}
	token, err := sess.Tokens().Token(c.UserContext())
	if err != nil || token == "" {
		return false
	}
	claims, ok := session.DecodePayload(token)
	if !ok || !g.tokens.Issued(claims) {
		return false
	}
	if _, err := g.tokens.ParseToken(token); err != nil {
		g.logger.Warn("gateway token failed verification",
			zap.String("session_id", sess.ID()), zap.String("path", c.OriginalURL()), zap.Error(err))
		return true
	}
	return false
}

// allows matches the role claim case-sensitively.
func (r guardRule) allows(role string) bool {
	if role == "" {
		return false
	}
	for _, allowed := range r.roles {
		if string(allowed) == role {
			return true
		}
	}
	return false
}

func (g *Guard) publish(c *fiber.Ctx, event events.Event) {
	if g.dispatcher == nil {
		return
	}
	if err := g.dispatcher.Publish(c.UserContext(), event); err != nil {
		g.logger.Warn("publish guard event", zap.String("type", string(event.Type)), zap.Error(err))
	}
}
