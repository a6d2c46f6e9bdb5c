package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/festivaz/web-gateway/internal/auth"
	"github.com/festivaz/web-gateway/internal/config"
	"github.com/festivaz/web-gateway/internal/domain"
	"github.com/festivaz/web-gateway/internal/events"
	"github.com/festivaz/web-gateway/internal/observability"
	"github.com/festivaz/web-gateway/internal/session"
	apperrors "github.com/festivaz/web-gateway/pkg/util"
)

// MsgAdminInvalidCredentials is shown on a failed admin console login.
const MsgAdminInvalidCredentials = "Invalid username or password."

// AdminAuthService authenticates the admin console against a configured
// credential and issues a gateway-signed Admin token.
type AdminAuthService struct {
	username     string
	passwordHash string
	tokens       *auth.TokenManager
	dispatcher   events.Dispatcher
	metrics      *observability.Metrics
	logger       *zap.Logger
}

// NewAdminAuthService builds the service.
func NewAdminAuthService(cfg config.AdminConfig, dispatcher events.Dispatcher, metrics *observability.Metrics, logger *zap.Logger) *AdminAuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminAuthService{
		username:     strings.ToLower(strings.TrimSpace(cfg.Username)),
		passwordHash: cfg.PasswordHash,
		tokens:       auth.NewTokenManager(cfg.TokenSecret, cfg.TokenTTLMinutes),
		dispatcher:   dispatcher,
		metrics:      metrics,
		logger:       logger,
	}
}

// Tokens returns the manager that signs admin console tokens.
func (s *AdminAuthService) Tokens() *auth.TokenManager {
	return s.tokens
}

// Enabled reports whether an admin password hash is configured.
func (s *AdminAuthService) Enabled() bool {
	return s.passwordHash != ""
}

// Login checks the credential. The username ignores case and surrounding
// whitespace. A failed attempt clears whatever the session held.
func (s *AdminAuthService) Login(ctx context.Context, sess *session.Context, username, password string) (*LoginResult, error) {
	if strings.ToLower(strings.TrimSpace(username)) != s.username || auth.ComparePassword(s.passwordHash, password) != nil {
		if err := sess.Logout(ctx); err != nil {
			s.logger.Warn("clear session after failed admin login", zap.Error(err))
		}
		s.metrics.RecordLogin("admin", false)
		return nil, apperrors.NewUnauthorized(MsgAdminInvalidCredentials)
	}

	token, _, err := s.tokens.GenerateToken(s.username, domain.RoleAdmin)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	user := domain.CachedUser{
		"id":          s.username,
		"displayName": "Administrator",
		"role":        string(domain.RoleAdmin),
	}
	if err := sess.Tokens().SaveUser(ctx, user); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if err := sess.Tokens().SaveToken(ctx, token); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	s.metrics.RecordLogin("admin", true)

	result := &LoginResult{Redirect: domain.PathAdmin, Role: string(domain.RoleAdmin), User: user}
	if s.dispatcher != nil {
		event := events.NewEvent(events.EventSessionLogin, sess.ID())
		event.Role = result.Role
		event.Payload = events.LoginPayload{Flow: "admin", UserID: s.username, Redirect: result.Redirect}
		if err := s.dispatcher.Publish(ctx, event); err != nil {
			s.logger.Warn("publish admin login event", zap.Error(err))
		}
	}
	return result, nil
}
