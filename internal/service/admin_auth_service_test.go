package service

import (
	"context"
	"net/http"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/festivaz/web-gateway/internal/auth"
	"github.com/festivaz/web-gateway/internal/config"
	"github.com/festivaz/web-gateway/internal/domain"
	"github.com/festivaz/web-gateway/internal/observability"
	"github.com/festivaz/web-gateway/internal/session"
)

func newAdminService(t *testing.T) *AdminAuthService {
	t.Helper()
	hash, err := auth.HashPassword("Admin", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	cfg := config.AdminConfig{Username: "Admin", PasswordHash: hash, TokenSecret: "console", TokenTTLMinutes: 30}
	return NewAdminAuthService(cfg, nil, observability.NewMetrics(), nil)
}

func TestAdminLoginIssuesAdminSession(t *testing.T) {
	svc := newAdminService(t)
	_, sess := newSession()
	ctx := context.Background()

	result, err := svc.Login(ctx, sess, "  ADMIN ", "Admin")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.Redirect != domain.PathAdmin {
		t.Fatalf("redirect = %q", result.Redirect)
	}
	if !sess.IsLoggedIn(ctx) {
		t.Fatalf("expected live session")
	}
	if role, ok := sess.Role(ctx); !ok || role != "Admin" {
		t.Fatalf("role = %q, %v", role, ok)
	}
	user, ok := sess.User(ctx)
	if !ok || session.ResolveRole(user, "") != "Admin" {
		t.Fatalf("cached user = %v", user)
	}
}

func TestAdminLoginRejectsWrongPasswordAndClearsSession(t *testing.T) {
	svc := newAdminService(t)
	_, sess := newSession()
	ctx := context.Background()
	if err := sess.Tokens().SaveUser(ctx, domain.CachedUser{"id": "someone"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, err := svc.Login(ctx, sess, "Admin", "admin")
	de := domainError(t, err)
	if de.HTTPStatus != http.StatusUnauthorized || de.Message != MsgAdminInvalidCredentials {
		t.Fatalf("error = %+v", de)
	}
	if _, ok := sess.User(ctx); ok {
		t.Fatalf("failed login must clear the session")
	}
}

func TestAdminServiceDisabledWithoutHash(t *testing.T) {
	svc := NewAdminAuthService(config.AdminConfig{Username: "Admin"}, nil, nil, nil)
	if svc.Enabled() {
		t.Fatalf("expected disabled service")
	}
	_, sess := newSession()
	if _, err := svc.Login(context.Background(), sess, "Admin", ""); err == nil {
		t.Fatalf("empty hash must never authenticate")
	}
}
