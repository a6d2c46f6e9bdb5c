package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/festivaz/web-gateway/internal/domain"
	"github.com/festivaz/web-gateway/internal/events"
	"github.com/festivaz/web-gateway/internal/observability"
	"github.com/festivaz/web-gateway/internal/session"
)

const testCookie = "festivaz_sid"

type guardFixture struct {
	app      *fiber.App
	manager  *session.Manager
	recorded []events.Event
}

func newGuardFixture(t *testing.T, register func(app *fiber.App, guard *Guard, redirector *RootRedirector)) *guardFixture {
	t.Helper()
	f := &guardFixture{manager: session.NewManager(session.NewMemoryStore(), nil)}

	dispatcher := events.NewInMemoryDispatcher()
	for _, et := range []events.EventType{events.EventSessionExpired, events.EventNavigationDenied, events.EventRootRedirected} {
		dispatcher.Subscribe(et, func(_ context.Context, e events.Event) error {
			f.recorded = append(f.recorded, e)
			return nil
		})
	}

	f.app = fiber.New()
	mw := NewSessionMiddleware(f.manager, CookieConfig{Name: testCookie})
	f.app.Use(mw.Handle)
	metrics := observability.NewMetrics()
	register(f.app, NewGuard(dispatcher, metrics, nil), NewRootRedirector(dispatcher, metrics, nil))
	return f
}

func (f *guardFixture) seed(t *testing.T, token string, user domain.CachedUser) string {
	t.Helper()
	sid := uuid.NewString()
	sess := f.manager.Open(sid)
	ctx := context.Background()
	if token != "" {
		if err := sess.Tokens().SaveToken(ctx, token); err != nil {
			t.Fatalf("save token: %v", err)
		}
	}
	if user != nil {
		if err := sess.Tokens().SaveUser(ctx, user); err != nil {
			t.Fatalf("save user: %v", err)
		}
	}
	return sid
}

func (f *guardFixture) get(t *testing.T, path, sid string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: testCookie, Value: sid})
	}
	resp, err := f.app.Test(req, -1)
	if err != nil {
		t.Fatalf("request %s: %v", path, err)
	}
	return resp
}

func tokenFor(t *testing.T, role string, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{"exp": exp.Unix()}
	if role != "" {
		claims["role"] = role
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}

func ok(c *fiber.Ctx) error { return c.SendString("ok") }

func sectionRoutes(app *fiber.App, guard *Guard, _ *RootRedirector) {
	app.Get("/any/*", guard.Require("any"), ok)
	app.Get("/admin/*", guard.Require("admin", domain.RoleAdmin), ok)
	app.Get("/console/*", guard.RequireWithLogin("console", "/adminlogin", domain.RoleAdmin), ok)
}

func TestGuardWithoutRolesAllowsLiveSession(t *testing.T) {
	f := newGuardFixture(t, sectionRoutes)
	sid := f.seed(t, tokenFor(t, "Customer", time.Now().Add(time.Hour)), domain.CachedUser{"id": "u"})

	resp := f.get(t, "/any/page", sid)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestGuardClearsExpiredSession(t *testing.T) {
	f := newGuardFixture(t, sectionRoutes)
	sid := f.seed(t, tokenFor(t, "Customer", time.Now().Add(-time.Minute)), domain.CachedUser{"id": "u"})

	resp := f.get(t, "/any/page", sid)
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/" {
		t.Fatalf("got %d -> %q, want 302 -> /", resp.StatusCode, resp.Header.Get("Location"))
	}

	sess := f.manager.Open(sid)
	if sess.HasToken(context.Background()) {
		t.Fatalf("expected token cleared")
	}
	if _, ok := sess.User(context.Background()); ok {
		t.Fatalf("expected user cleared")
	}
	if len(f.recorded) != 1 || f.recorded[0].Type != events.EventSessionExpired {
		t.Fatalf("events = %+v", f.recorded)
	}
}

func TestGuardDeniesVisitorWithoutToken(t *testing.T) {
	f := newGuardFixture(t, sectionRoutes)
	sid := f.seed(t, "", domain.CachedUser{"id": "u", "role": "Admin"})

	resp := f.get(t, "/admin/dashboard", sid)
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/" {
		t.Fatalf("got %d -> %q", resp.StatusCode, resp.Header.Get("Location"))
	}
	if _, ok := f.manager.Open(sid).User(context.Background()); ok {
		t.Fatalf("expected cached user cleared")
	}
	if len(f.recorded) != 0 {
		t.Fatalf("no expiry event expected without a token, got %+v", f.recorded)
	}
}

func TestGuardRoleMatchIsCaseSensitive(t *testing.T) {
	f := newGuardFixture(t, sectionRoutes)
	sid := f.seed(t, tokenFor(t, "admin", time.Now().Add(time.Hour)), nil)

	resp := f.get(t, "/admin/dashboard", sid)
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != domain.PathUnauthorized {
		t.Fatalf("got %d -> %q, want 302 -> /unauthorized", resp.StatusCode, resp.Header.Get("Location"))
	}
	if !f.manager.Open(sid).HasToken(context.Background()) {
		t.Fatalf("a role mismatch must not log the session out")
	}
	if len(f.recorded) != 1 || f.recorded[0].Type != events.EventNavigationDenied || f.recorded[0].Role != "admin" {
		t.Fatalf("events = %+v", f.recorded)
	}
}

func TestGuardDeniesMissingRoleClaim(t *testing.T) {
	f := newGuardFixture(t, sectionRoutes)
	sid := f.seed(t, tokenFor(t, "", time.Now().Add(time.Hour)), nil)

	resp := f.get(t, "/admin/dashboard", sid)
	if resp.Header.Get("Location") != domain.PathUnauthorized {
		t.Fatalf("location = %q", resp.Header.Get("Location"))
	}
}

func TestGuardAllowsMatchingRoleOnNestedPaths(t *testing.T) {
	f := newGuardFixture(t, sectionRoutes)
	sid := f.seed(t, tokenFor(t, "Admin", time.Now().Add(time.Hour)), nil)

	for _, path := range []string{"/admin/dashboard", "/admin/event-management", "/admin/faqs/12"} {
		if resp := f.get(t, path, sid); resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: status = %d", path, resp.StatusCode)
		}
	}
}

func TestGuardWithLoginRedirectCarriesReturnURL(t *testing.T) {
	f := newGuardFixture(t, sectionRoutes)

	resp := f.get(t, "/console/bookings?page=2", "")
	want := "/adminlogin?returnUrl=%2Fconsole%2Fbookings%3Fpage%3D2"
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != want {
		t.Fatalf("got %d -> %q, want %q", resp.StatusCode, resp.Header.Get("Location"), want)
	}
}

func TestGuardVerifiesGatewayIssuedTokens(t *testing.T) {
	tm := NewTokenManager("console-secret", 30)
	f := newGuardFixture(t, func(app *fiber.App, guard *Guard, r *RootRedirector) {
		sectionRoutes(app, guard.VerifyIssuedBy(tm), r)
	})

	genuine, _, err := tm.GenerateToken("admin", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	forged, _, err := NewTokenManager("guessed-secret", 30).GenerateToken("admin", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("generate forged: %v", err)
	}

	if resp := f.get(t, "/admin/dashboard", f.seed(t, genuine, nil)); resp.StatusCode != http.StatusOK {
		t.Fatalf("genuine gateway token: status = %d", resp.StatusCode)
	}
	backendSigned := tokenFor(t, "Admin", time.Now().Add(time.Hour))
	if resp := f.get(t, "/admin/dashboard", f.seed(t, backendSigned, nil)); resp.StatusCode != http.StatusOK {
		t.Fatalf("backend token: status = %d", resp.StatusCode)
	}

	sid := f.seed(t, forged, nil)
	resp := f.get(t, "/admin/dashboard", sid)
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != domain.PathLanding {
		t.Fatalf("forged token: got %d -> %q, want 302 -> /", resp.StatusCode, resp.Header.Get("Location"))
	}
	if f.manager.Open(sid).HasToken(context.Background()) {
		t.Fatalf("forged token must be cleared")
	}
	if len(f.recorded) != 1 || f.recorded[0].Type != events.EventSessionExpired {
		t.Fatalf("events = %+v", f.recorded)
	}
}
