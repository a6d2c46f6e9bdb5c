package http

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/festivaz/web-gateway/internal/api/http/handlers"
	"github.com/festivaz/web-gateway/internal/auth"
	"github.com/festivaz/web-gateway/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Account        *handlers.AccountHandler
	Admin          *handlers.AdminHandler
	Pages          *handlers.PagesHandler
	Session        *auth.SessionMiddleware
	Guard          *auth.Guard
	RootRedirector *auth.RootRedirector
	Metrics        http.Handler
}

type guestPage struct {
	path  string
	page  string
	title string
}

var guestPages = []guestPage{
	{"/about", "about", "About"},
	{"/contact", "contact", "Contact"},
	{"/events", "events", "Events"},
	{"/events/:id", "events", "Event details"},
	{"/create-event", "create-event", "Create event"},
	{"/gallery", "gallery", "Gallery"},
	{"/services", "services", "Services"},
	{"/providers/:id", "providers", "Providers"},
	{"/provider-profile/:id", "provider-profile", "Provider profile"},
	{"/login", "login", "Login"},
	{"/register", "register", "Register"},
	{"/register-serviceprovider", "register-serviceprovider", "Register as a service provider"},
	{domain.PathAdminLogin, "adminlogin", "Admin Login"},
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics))
	}

	web := app.Group("", cfg.Session.Handle)

	web.Get(domain.PathLanding, cfg.RootRedirector.Handle, cfg.Pages.Landing)
	for _, gp := range guestPages {
		web.Get(gp.path, cfg.Pages.Guest(gp.page, gp.title))
	}
	web.Get(domain.PathUnauthorized, cfg.Pages.Unauthorized)

	account := web.Group("/account")
	account.Post("/login", cfg.Account.Login)
	account.Post("/google-login", cfg.Account.GoogleLogin)
	account.Post("/register", cfg.Account.Register)
	account.Post("/register-serviceprovider", cfg.Account.RegisterServiceProvider)
	account.Post("/logout", cfg.Account.Logout)
	account.Get("/session", cfg.Account.Session)

	web.Post(domain.PathAdminLogin, cfg.Admin.Login)

	registerSection(web, cfg, "customer", "dashboard",
		cfg.Guard.Require("customer", domain.RoleCustomer))
	registerSection(web, cfg, "service-provider", "dashboard",
		cfg.Guard.Require("service-provider", domain.RoleServiceProvider))
	registerSection(web, cfg, "thirdparty", "dashboard",
		cfg.Guard.Require("thirdparty", domain.RoleThirdParty))
	registerSection(web, cfg, "admin", "dashboard",
		cfg.Guard.RequireWithLogin("admin", domain.PathAdminLogin, domain.RoleAdmin))

	web.Get("/*", func(c *fiber.Ctx) error {
		return c.Redirect(domain.PathLanding, fiber.StatusFound)
	})
}

func registerSection(router fiber.Router, cfg RouteConfig, section, defaultPage string, guard fiber.Handler) {
	prefix := "/" + section
	group := router.Group(prefix, func(c *fiber.Ctx) error {
		// fiber matches group middleware by string prefix, so /admin would
		// otherwise also guard /adminlogin.
		if p := c.Path(); p != prefix && !strings.HasPrefix(p, prefix+"/") {
			return c.Next()
		}
		return guard(c)
	})
	page := cfg.Pages.Section(section, defaultPage)
	group.Get("/", page)
	group.Get("/*", page)
}
