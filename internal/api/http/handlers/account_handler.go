package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/festivaz/web-gateway/internal/api/dto"
	"github.com/festivaz/web-gateway/internal/auth"
	"github.com/festivaz/web-gateway/internal/domain"
	"github.com/festivaz/web-gateway/internal/service"
	"github.com/festivaz/web-gateway/internal/session"
	apperrors "github.com/festivaz/web-gateway/pkg/util"
)

// AccountHandler exposes the account login, registration and logout endpoints.
type AccountHandler struct {
	accounts *service.AccountService
}

// NewAccountHandler constructs handler.
func NewAccountHandler(accounts *service.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// Login handles POST /account/login.
func (h *AccountHandler) Login(c *fiber.Ctx) error {
	sess, err := requireSession(c)
	if err != nil {
		return err
	}
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	result, err := h.accounts.Login(c.UserContext(), sess, domain.LoginCredentials{Email: req.Email, Password: req.Password})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": loginResponse(result)})
}

// GoogleLogin handles POST /account/google-login.
func (h *AccountHandler) GoogleLogin(c *fiber.Ctx) error {
	sess, err := requireSession(c)
	if err != nil {
		return err
	}
	var req dto.GoogleLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	result, err := h.accounts.GoogleLogin(c.UserContext(), sess, req.IDToken)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": loginResponse(result)})
}

// Register handles POST /account/register.
func (h *AccountHandler) Register(c *fiber.Ctx) error {
	sess, err := requireSession(c)
	if err != nil {
		return err
	}
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	result, err := h.accounts.Register(c.UserContext(), sess, req.CustomerRegistration, req.ConfirmPassword)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": loginResponse(result)})
}

// RegisterServiceProvider handles POST /account/register-serviceprovider.
func (h *AccountHandler) RegisterServiceProvider(c *fiber.Ctx) error {
	sess, err := requireSession(c)
	if err != nil {
		return err
	}
	var req domain.ServiceProviderRegistration
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	msg, err := h.accounts.RegisterServiceProvider(c.UserContext(), sess, req)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.RegistrationReceipt{Status: "submitted", Message: msg}})
}

// Logout handles POST /account/logout.
func (h *AccountHandler) Logout(c *fiber.Ctx) error {
	sess, err := requireSession(c)
	if err != nil {
		return err
	}
	if err := h.accounts.Logout(c.UserContext(), sess); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "logged_out", "redirect": domain.PathLanding}})
}

// Session handles GET /account/session.
func (h *AccountHandler) Session(c *fiber.Ctx) error {
	sess, err := requireSession(c)
	if err != nil {
		return err
	}
	snapshot, err := h.accounts.Snapshot(c.UserContext(), sess)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SessionResponse{
		LoggedIn: snapshot.LoggedIn,
		Role:     snapshot.Role,
		User:     snapshot.User,
	}})
}

func loginResponse(result *service.LoginResult) dto.LoginResponse {
	return dto.LoginResponse{Redirect: result.Redirect, Role: result.Role, User: result.User}
}

func requireSession(c *fiber.Ctx) (*session.Context, error) {
	sess, ok := auth.SessionFromContext(c)
	if !ok {
		return nil, apperrors.NewInternalError(errors.New("session middleware not installed"))
	}
	return sess, nil
}
