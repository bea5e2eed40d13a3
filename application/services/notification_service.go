package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"crosstalk/application/ports"
	"go.uber.org/zap"
)

// NotificationService pushes build lifecycle notifications to a user's
// active WebSocket connections. It is used directly by the ws-notify
// Lambda without the overhead of the command bus.
type NotificationService struct {
	connections ports.ConnectionRepository
	notifier    ports.PushNotifier
	logger      *zap.Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(
	connections ports.ConnectionRepository,
	notifier ports.PushNotifier,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		connections: connections,
		notifier:    notifier,
		logger:      logger,
	}
}

// Notification is the message pushed to subscribers
type Notification struct {
	Type      string    `json:"type"`
	NetworkID string    `json:"network_id,omitempty"`
	Name      string    `json:"name,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NotifyUser sends a notification to every active connection of a
// user, pruning connections the gateway reports as gone. It returns
// the number of connections reached.
func (s *NotificationService) NotifyUser(ctx context.Context, userID string, n Notification) (int, error) {
	if userID == "" {
		return 0, fmt.Errorf("user ID is required")
	}

	payload, err := json.Marshal(n)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal notification: %w", err)
	}

	conns, err := s.connections.GetByUserID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to list connections: %w", err)
	}

	delivered := 0
	for _, conn := range conns {
		if err := s.notifier.Push(ctx, conn.ConnectionID, payload); err != nil {
			if s.notifier.IsGone(err) {
				if delErr := s.connections.Delete(ctx, conn.ConnectionID); delErr != nil {
					s.logger.Warn("Failed to prune stale connection",
						zap.String("connectionID", conn.ConnectionID),
						zap.Error(delErr),
					)
				}
				continue
			}
			s.logger.Warn("Failed to push notification",
				zap.String("connectionID", conn.ConnectionID),
				zap.Error(err),
			)
			continue
		}
		delivered++
	}

	s.logger.Debug("Notification delivered",
		zap.String("userID", userID),
		zap.String("type", n.Type),
		zap.Int("connections", len(conns)),
		zap.Int("delivered", delivered),
	)

	return delivered, nil
}
