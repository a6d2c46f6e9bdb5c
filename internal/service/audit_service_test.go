package service

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/festivaz/web-gateway/internal/events"
)

func TestAuditServiceLogsSessionEvents(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	dispatcher := events.NewInMemoryDispatcher()
	NewAuditService(dispatcher, zap.New(core)).RegisterHandlers()

	ctx := context.Background()
	for _, et := range []events.EventType{
		events.EventSessionLogin,
		events.EventSessionLogout,
		events.EventSessionExpired,
		events.EventNavigationDenied,
		events.EventRootRedirected,
	} {
		if err := dispatcher.Publish(ctx, events.NewEvent(et, "sid-7")); err != nil {
			t.Fatalf("publish %s: %v", et, err)
		}
	}

	if got := logs.Len(); got != 5 {
		t.Fatalf("logged %d entries, want 5", got)
	}
	for _, entry := range logs.All() {
		if entry.LoggerName != "audit" {
			t.Fatalf("logger name = %q", entry.LoggerName)
		}
		if entry.ContextMap()["session_id"] != "sid-7" {
			t.Fatalf("entry %q missing session id: %v", entry.Message, entry.ContextMap())
		}
	}
}
