package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/festivaz/web-gateway/internal/api/dto"
	"github.com/festivaz/web-gateway/internal/domain"
	"github.com/festivaz/web-gateway/internal/service"
	apperrors "github.com/festivaz/web-gateway/pkg/util"
)

// CookieWriter rewrites the session cookie.
type CookieWriter interface {
	SetCookie(c *fiber.Ctx, sid string, persistent bool)
}

// AdminHandler serves the admin console login.
type AdminHandler struct {
	admins  *service.AdminAuthService
	cookies CookieWriter
}

// NewAdminHandler constructs handler.
func NewAdminHandler(admins *service.AdminAuthService, cookies CookieWriter) *AdminHandler {
	return &AdminHandler{admins: admins, cookies: cookies}
}

// Login handles POST /adminlogin. Without remember the session cookie only
// lives as long as the browser session.
func (h *AdminHandler) Login(c *fiber.Ctx) error {
	sess, err := requireSession(c)
	if err != nil {
		return err
	}
	if !h.admins.Enabled() {
		return fiber.NewError(http.StatusNotFound, "admin console login disabled")
	}
	var req dto.AdminLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return apperrors.NewValidationError("username and password required", nil)
	}

	result, err := h.admins.Login(c.UserContext(), sess, req.Username, req.Password)
	if err != nil {
		return err
	}

	remember := req.Remember == nil || *req.Remember
	if h.cookies != nil {
		h.cookies.SetCookie(c, sess.ID(), remember)
	}

	redirect := result.Redirect
	if returnURL := safeReturnURL(c.Query("returnUrl")); returnURL != "" {
		redirect = returnURL
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{Redirect: redirect, Role: result.Role}})
}

// safeReturnURL only accepts local paths inside the admin section.
func safeReturnURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.IsAbs() || u.Host != "" || strings.HasPrefix(raw, "//") {
		return ""
	}
	if u.Path != domain.PathAdmin && !strings.HasPrefix(u.Path, domain.PathAdmin+"/") {
		return ""
	}
	return u.RequestURI()
}
