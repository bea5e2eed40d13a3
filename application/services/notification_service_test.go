package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"crosstalk/application/ports"
	"crosstalk/tests/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNotificationService_NotifyUser_DeliversToAllConnections(t *testing.T) {
	// Arrange
	ctx := context.Background()
	connections := new(mocks.MockConnectionRepository)
	notifier := new(mocks.MockPushNotifier)

	connections.On("GetByUserID", ctx, "user-1").Return([]ports.Connection{
		{ConnectionID: "conn-1", UserID: "user-1"},
		{ConnectionID: "conn-2", UserID: "user-1"},
	}, nil)
	notifier.On("Push", ctx, "conn-1", mock.Anything).Return(nil)
	notifier.On("Push", ctx, "conn-2", mock.Anything).Return(nil)

	service := NewNotificationService(connections, notifier, zap.NewNop())

	// Act
	delivered, err := service.NotifyUser(ctx, "user-1", Notification{
		Type:      "network.built",
		NetworkID: "net-1",
		Timestamp: time.Now(),
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, delivered)
	notifier.AssertExpectations(t)
}

func TestNotificationService_NotifyUser_PrunesGoneConnections(t *testing.T) {
	// Arrange
	ctx := context.Background()
	connections := new(mocks.MockConnectionRepository)
	notifier := new(mocks.MockPushNotifier)
	gone := errors.New("410 gone")

	connections.On("GetByUserID", ctx, "user-1").Return([]ports.Connection{
		{ConnectionID: "stale", UserID: "user-1"},
		{ConnectionID: "live", UserID: "user-1"},
	}, nil)
	notifier.On("Push", ctx, "stale", mock.Anything).Return(gone)
	notifier.On("IsGone", gone).Return(true)
	connections.On("Delete", ctx, "stale").Return(nil)
	notifier.On("Push", ctx, "live", mock.Anything).Return(nil)

	service := NewNotificationService(connections, notifier, zap.NewNop())

	// Act
	delivered, err := service.NotifyUser(ctx, "user-1", Notification{Type: "network.built"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, delivered)
	connections.AssertCalled(t, "Delete", ctx, "stale")
}

func TestNotificationService_NotifyUser_TransientPushFailureSkipped(t *testing.T) {
	// Arrange
	ctx := context.Background()
	connections := new(mocks.MockConnectionRepository)
	notifier := new(mocks.MockPushNotifier)
	transient := errors.New("throttled")

	connections.On("GetByUserID", ctx, "user-1").Return([]ports.Connection{
		{ConnectionID: "conn-1", UserID: "user-1"},
	}, nil)
	notifier.On("Push", ctx, "conn-1", mock.Anything).Return(transient)
	notifier.On("IsGone", transient).Return(false)

	service := NewNotificationService(connections, notifier, zap.NewNop())

	// Act
	delivered, err := service.NotifyUser(ctx, "user-1", Notification{Type: "network.built"})

	// Assert: a failed push is not fatal and the record is kept
	require.NoError(t, err)
	assert.Equal(t, 0, delivered)
	connections.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestNotificationService_NotifyUser_RequiresUserID(t *testing.T) {
	service := NewNotificationService(new(mocks.MockConnectionRepository), new(mocks.MockPushNotifier), zap.NewNop())

	_, err := service.NotifyUser(context.Background(), "", Notification{Type: "network.built"})

	assert.Error(t, err)
}
