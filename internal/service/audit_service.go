package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/festivaz/web-gateway/internal/events"
)

// AuditService writes session lifecycle events to the log.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	return &AuditService{dispatcher: dispatcher, logger: logger.Named("audit")}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventSessionLogin, a.handleLogin)
	a.dispatcher.Subscribe(events.EventSessionLogout, a.handleLogout)
	a.dispatcher.Subscribe(events.EventSessionExpired, a.handleExpired)
	a.dispatcher.Subscribe(events.EventNavigationDenied, a.handleDenied)
	a.dispatcher.Subscribe(events.EventRootRedirected, a.handleRedirected)
}

func (a *AuditService) handleLogin(_ context.Context, event events.Event) error {
	a.logger.Info("SessionLogin", eventFields(event)...)
	return nil
}

func (a *AuditService) handleLogout(_ context.Context, event events.Event) error {
	a.logger.Info("SessionLogout", eventFields(event)...)
	return nil
}

func (a *AuditService) handleExpired(_ context.Context, event events.Event) error {
	a.logger.Info("SessionExpired", eventFields(event)...)
	return nil
}

func (a *AuditService) handleDenied(_ context.Context, event events.Event) error {
	a.logger.Warn("NavigationDenied", eventFields(event)...)
	return nil
}

func (a *AuditService) handleRedirected(_ context.Context, event events.Event) error {
	a.logger.Debug("RootRedirected", eventFields(event)...)
	return nil
}

func eventFields(event events.Event) []zap.Field {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("session_id", event.SessionID),
		zap.Time("at", event.Timestamp),
	}
	if event.Role != "" {
		fields = append(fields, zap.String("role", event.Role))
	}
	if event.Path != "" {
		fields = append(fields, zap.String("path", event.Path))
	}
	if event.Payload != nil {
		fields = append(fields, zap.Any("payload", event.Payload))
	}
	return fields
}
