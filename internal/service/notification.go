package service

import (
	"context"
	"fmt"

	domainauth "github.com/cscs/firecrest-ui-api/internal/domain/auth"
	"github.com/cscs/firecrest-ui-api/internal/ports"
	"github.com/google/uuid"
)

// NotificationService manages the session's flash-message queue: messages
// pushed on one request are consumed (read once) on the next.
type NotificationService struct {
	sessions ports.SessionStore
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(sessions ports.SessionStore) *NotificationService {
	return &NotificationService{sessions: sessions}
}

// Push appends a notification to the session's queue.
func (s *NotificationService) Push(ctx context.Context, sessionID, msgType, message string) (*domainauth.NotificationMessage, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	notification := domainauth.NotificationMessage{
		ID:      uuid.NewString(),
		Type:    msgType,
		Message: message,
	}
	session.Notifications = append(session.Notifications, notification)

	if saveErr := s.sessions.Save(ctx, session); saveErr != nil {
		return nil, fmt.Errorf("save session: %w", saveErr)
	}
	return &notification, nil
}

// Consume returns all pending notifications marked as displayed and empties
// the queue. A second call returns nothing.
func (s *NotificationService) Consume(ctx context.Context, sessionID string) ([]domainauth.NotificationMessage, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if len(session.Notifications) == 0 {
		return []domainauth.NotificationMessage{}, nil
	}

	pending := session.Notifications
	for i := range pending {
		pending[i].Displayed = true
	}

	session.Notifications = nil
	if saveErr := s.sessions.Save(ctx, session); saveErr != nil {
		return nil, fmt.Errorf("save session: %w", saveErr)
	}
	return pending, nil
}
