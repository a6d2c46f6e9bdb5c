package auth

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/festivaz/web-gateway/internal/domain"
	"github.com/festivaz/web-gateway/internal/events"
	"github.com/festivaz/web-gateway/internal/observability"
	"github.com/festivaz/web-gateway/internal/session"
)

const rootSection = "root"

// RootRedirector sends visitors who already have a session from the landing
// page to their section's home.
type RootRedirector struct {
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewRootRedirector builds the redirector.
func NewRootRedirector(dispatcher events.Dispatcher, metrics *observability.Metrics, logger *zap.Logger) *RootRedirector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RootRedirector{dispatcher: dispatcher, metrics: metrics, logger: logger}
}

// Handle only acts on GET requests whose URL is exactly the root path.
// A session counts as present when the token is live or a cached user exists.
func (r *RootRedirector) Handle(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodGet || !isRootURL(c.OriginalURL()) {
		return c.Next()
	}
	sess, ok := SessionFromContext(c)
	if !ok {
		return c.Next()
	}
	ctx := c.UserContext()

	loggedIn := sess.IsLoggedIn(ctx)
	user, hasUser := sess.User(ctx)
	if !loggedIn && !hasUser {
		r.metrics.RecordGuardDecision(rootSection, observability.DecisionPassThrough)
		return c.Next()
	}

	claimRole, _ := sess.Role(ctx)
	role := session.ResolveRole(user, claimRole)
	target := RootTarget(role)

	r.metrics.RecordGuardDecision(rootSection, observability.DecisionRedirect)
	if r.dispatcher != nil {
		event := events.NewEvent(events.EventRootRedirected, sess.ID())
		event.Role = role
		event.Path = target
		if err := r.dispatcher.Publish(ctx, event); err != nil {
			r.logger.Warn("publish redirect event", zap.Error(err))
		}
	}
	return c.Redirect(target, fiber.StatusFound)
}

// RootTarget maps a resolved role to the path the landing page redirects to.
// Matching ignores case; unknown or empty roles go to the customer dashboard.
func RootTarget(role string) string {
	parsed, ok := domain.ParseRole(role)
	if !ok {
		return domain.PathCustomerDashboard
	}
	return parsed.HomePath()
}

func isRootURL(u string) bool {
	return u == "" || u == "/"
}
