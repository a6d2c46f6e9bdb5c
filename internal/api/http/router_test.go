package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/festivaz/web-gateway/internal/api/http/handlers"
	"github.com/festivaz/web-gateway/internal/auth"
	"github.com/festivaz/web-gateway/internal/backend"
	"github.com/festivaz/web-gateway/internal/config"
	"github.com/festivaz/web-gateway/internal/domain"
	"github.com/festivaz/web-gateway/internal/events"
	"github.com/festivaz/web-gateway/internal/observability"
	"github.com/festivaz/web-gateway/internal/service"
	"github.com/festivaz/web-gateway/internal/session"
)

const cookieName = "festivaz_sid"

type gateway struct {
	app *fiber.App
	sid string
}

func newGateway(t *testing.T, backendURL string) *gateway {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	manager := session.NewManager(session.NewMemoryStore(), nil)
	sessions := auth.NewSessionMiddleware(manager, auth.CookieConfig{Name: cookieName, MaxAge: time.Hour})

	hash, err := auth.HashPassword("Admin", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	admins := service.NewAdminAuthService(config.AdminConfig{
		Username:     "Admin",
		PasswordHash: hash,
		TokenSecret:  "console",
	}, dispatcher, metrics, logger)
	accounts := service.NewAccountService(service.AccountDependencies{
		API:        backend.NewClient(backendURL, 2*time.Second),
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, MiddlewareConfig{Timeout: 5 * time.Second})
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("web-gateway", "test", nil),
		Account:        handlers.NewAccountHandler(accounts),
		Admin:          handlers.NewAdminHandler(admins, sessions),
		Pages:          handlers.NewPagesHandler(),
		Session:        sessions,
		Guard:          auth.NewGuard(dispatcher, metrics, logger).VerifyIssuedBy(admins.Tokens()),
		RootRedirector: auth.NewRootRedirector(dispatcher, metrics, logger),
		Metrics:        metrics.Handler(),
	})
	return &gateway{app: app, sid: uuid.NewString()}
}

func (g *gateway) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	req.AddCookie(&http.Cookie{Name: cookieName, Value: g.sid})
	resp, err := g.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func expectRedirect(t *testing.T, resp *http.Response, want string) {
	t.Helper()
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != want {
		t.Fatalf("got %d -> %q, want 302 -> %q", resp.StatusCode, resp.Header.Get("Location"), want)
	}
}

func decodeData(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	data, _ := body["data"].(map[string]any)
	if data == nil {
		data, _ = body["error"].(map[string]any)
	}
	return data
}

func backendServer(t *testing.T, role string) *httptest.Server {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("backend"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var creds domain.LoginCredentials
		_ = json.NewDecoder(r.Body).Decode(&creds)
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/account/registerserviceprovider" {
			w.WriteHeader(http.StatusCreated)
			return
		}
		if r.URL.Path != "/account/login" || creds.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`"Invalid email or password"`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "u-1", "token": token, "role": role})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCustomerJourney(t *testing.T) {
	g := newGateway(t, backendServer(t, "Customer").URL)

	expectRedirect(t, g.do(t, http.MethodGet, "/customer/dashboard", ""), domain.PathLanding)
	if resp := g.do(t, http.MethodGet, "/", ""); resp.StatusCode != http.StatusOK {
		t.Fatalf("landing status = %d", resp.StatusCode)
	}

	resp := g.do(t, http.MethodPost, "/account/login", `{"email":"user@example.com","password":"secret"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d", resp.StatusCode)
	}
	if data := decodeData(t, resp); data["redirect"] != domain.PathCustomer {
		t.Fatalf("login redirect = %v", data["redirect"])
	}

	if resp := g.do(t, http.MethodGet, "/customer/bookings", ""); resp.StatusCode != http.StatusOK {
		t.Fatalf("section status = %d", resp.StatusCode)
	}
	expectRedirect(t, g.do(t, http.MethodGet, "/customer", ""), "/customer/dashboard")
	expectRedirect(t, g.do(t, http.MethodGet, "/", ""), domain.PathCustomerDashboard)
	expectRedirect(t, g.do(t, http.MethodGet, "/admin/dashboard", ""), domain.PathUnauthorized)

	if resp := g.do(t, http.MethodPost, "/account/logout", ""); resp.StatusCode != http.StatusOK {
		t.Fatalf("logout status = %d", resp.StatusCode)
	}
	expectRedirect(t, g.do(t, http.MethodGet, "/customer/dashboard", ""), domain.PathLanding)
}

func TestLoginRejectedByBackend(t *testing.T) {
	g := newGateway(t, backendServer(t, "Customer").URL)

	resp := g.do(t, http.MethodPost, "/account/login", `{"email":"user@example.com","password":"wrong"}`)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
	if data := decodeData(t, resp); data["message"] != "Invalid email or password" {
		t.Fatalf("error = %v", data)
	}
	expectRedirect(t, g.do(t, http.MethodGet, "/customer/dashboard", ""), domain.PathLanding)
}

func TestAdminConsoleLogin(t *testing.T) {
	g := newGateway(t, backendServer(t, "Customer").URL)

	if resp := g.do(t, http.MethodGet, domain.PathAdminLogin, ""); resp.StatusCode != http.StatusOK {
		t.Fatalf("admin login page status = %d", resp.StatusCode)
	}
	expectRedirect(t, g.do(t, http.MethodGet, "/admin/events", ""), "/adminlogin?returnUrl=%2Fadmin%2Fevents")

	resp := g.do(t, http.MethodPost, "/adminlogin?returnUrl=%2Fadmin%2Fevents", `{"username":"admin","password":"Admin","remember":false}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin login status = %d", resp.StatusCode)
	}
	if !strings.Contains(resp.Header.Get("Set-Cookie"), cookieName+"="+g.sid) {
		t.Fatalf("expected session cookie rewrite, got %q", resp.Header.Get("Set-Cookie"))
	}
	if data := decodeData(t, resp); data["redirect"] != "/admin/events" {
		t.Fatalf("redirect = %v", data["redirect"])
	}
	if resp := g.do(t, http.MethodGet, "/admin/events", ""); resp.StatusCode != http.StatusOK {
		t.Fatalf("admin section status = %d", resp.StatusCode)
	}
}

func TestAdminLoginIgnoresForeignReturnURL(t *testing.T) {
	g := newGateway(t, backendServer(t, "Customer").URL)

	resp := g.do(t, http.MethodPost, "/adminlogin?returnUrl=https%3A%2F%2Fevil.example", `{"username":"Admin","password":"Admin"}`)
	if data := decodeData(t, resp); data["redirect"] != domain.PathAdmin {
		t.Fatalf("redirect = %v", data["redirect"])
	}
}

func TestUnknownPathsRedirectHome(t *testing.T) {
	g := newGateway(t, backendServer(t, "Customer").URL)
	expectRedirect(t, g.do(t, http.MethodGet, "/no/such/page", ""), domain.PathLanding)

	if resp := g.do(t, http.MethodGet, "/unauthorized", ""); resp.StatusCode != http.StatusForbidden {
		t.Fatalf("unauthorized page status = %d", resp.StatusCode)
	}
}

func TestMissingCookieIssuesSession(t *testing.T) {
	g := newGateway(t, backendServer(t, "Customer").URL)

	resp, err := g.app.Test(httptest.NewRequest(http.MethodGet, "/events", nil), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.HasPrefix(resp.Header.Get("Set-Cookie"), cookieName+"=") {
		t.Fatalf("expected a session cookie, got %q", resp.Header.Get("Set-Cookie"))
	}
}

func TestHealthAndMetrics(t *testing.T) {
	g := newGateway(t, backendServer(t, "Customer").URL)
	for _, path := range []string{"/health/live", "/health/ready", "/metrics"} {
		resp, err := g.app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
		if err != nil {
			t.Fatalf("%s: %v", path, err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s status = %d", path, resp.StatusCode)
		}
	}
}

func TestServiceProviderRegistration(t *testing.T) {
	g := newGateway(t, backendServer(t, "Customer").URL)

	body := `{"email":"hello@lanterns.lk","password":"longenough","companyName":"Lanterns Ltd",
		"brandName":"Lanterns","phone":"+94 77 123 4567","addressLine1":"1 Main St","city":"Colombo",
		"district":"Colombo","postalCode":"00100","country":"LK"}`
	resp := g.do(t, http.MethodPost, "/account/register-serviceprovider", body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	if data := decodeData(t, resp); data["status"] != "submitted" || data["message"] != service.MsgProviderSubmitted {
		t.Fatalf("receipt = %v", data)
	}
	expectRedirect(t, g.do(t, http.MethodGet, "/service-provider/dashboard", ""), domain.PathLanding)
}

func TestMalformedPayloadIsValidationError(t *testing.T) {
	g := newGateway(t, backendServer(t, "Customer").URL)

	for _, path := range []string{"/account/login", "/account/register", "/account/register-serviceprovider", domain.PathAdminLogin} {
		resp := g.do(t, http.MethodPost, path, `{"email":`)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: status = %d, want 400", path, resp.StatusCode)
		}
		if data := decodeData(t, resp); data["code"] != "VALIDATION_FAILED" {
			t.Fatalf("%s: error = %v", path, data)
		}
	}
}
