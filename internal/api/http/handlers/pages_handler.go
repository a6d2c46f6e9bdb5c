package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/festivaz/web-gateway/internal/api/dto"
	"github.com/festivaz/web-gateway/internal/auth"
)

// PagesHandler renders page descriptors for guest and section routes.
type PagesHandler struct{}

// NewPagesHandler constructs handler.
func NewPagesHandler() *PagesHandler {
	return &PagesHandler{}
}

// Landing handles GET / for visitors without a session.
func (h *PagesHandler) Landing(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": dto.PageResponse{Section: "guest", Page: "home", Title: "FestivaZ"}})
}

// Guest renders a fixed guest page.
func (h *PagesHandler) Guest(page, title string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		resp := dto.PageResponse{Section: "guest", Page: page, Title: title}
		if id := c.Params("id"); id != "" {
			resp.Page = page + "/" + id
		}
		return c.JSON(fiber.Map{"data": resp})
	}
}

// Section renders any page beneath a guarded section. The bare section path
// redirects to defaultPage.
func (h *PagesHandler) Section(section, defaultPage string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page := strings.Trim(c.Params("*"), "/")
		if page == "" {
			return c.Redirect("/"+section+"/"+defaultPage, fiber.StatusFound)
		}
		resp := dto.PageResponse{Section: section, Page: page}
		if sess, ok := auth.SessionFromContext(c); ok {
			resp.Role, _ = sess.Role(c.UserContext())
		}
		return c.JSON(fiber.Map{"data": resp})
	}
}

// Unauthorized handles GET /unauthorized.
func (h *PagesHandler) Unauthorized(c *fiber.Ctx) error {
	return c.Status(http.StatusForbidden).JSON(fiber.Map{"data": dto.PageResponse{
		Section: "guest",
		Page:    "unauthorized",
		Title:   "You do not have access to this section",
	}})
}
