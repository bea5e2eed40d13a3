package handlers

import (
	"context"
	"errors"
	"testing"
	"time"

	"crosstalk/application/sagas"
	"crosstalk/domain/core/validators"
	"crosstalk/domain/events"
	"crosstalk/tests/fixtures"
	"crosstalk/tests/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func buildHandlerWith(
	networkRepo *mocks.MockNetworkRepository,
	eventStore *mocks.MockEventStore,
	publisher *mocks.MockEventPublisher,
	lock *mocks.MockDistributedLock,
) *BuildNetworkHandler {
	logger := zap.NewNop()
	saga := sagas.NewBuildNetworkSaga(networkRepo, eventStore, publisher, logger)
	return NewBuildNetworkHandler(saga, publisher, lock, validators.NewDatasetValidator(), logger)
}

func TestBuildNetworkHandler_Handle_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	networkRepo := new(mocks.MockNetworkRepository)
	eventStore := new(mocks.MockEventStore)
	publisher := new(mocks.MockEventPublisher)
	lock := new(mocks.MockDistributedLock)

	lock.On("Acquire", ctx, "network_build_test-user-123", 5*time.Minute).
		Return(mocks.NoopRelease, nil)
	networkRepo.On("Save", ctx, mock.AnythingOfType("*aggregates.SignalingNetwork")).Return(nil)
	eventStore.On("SaveEvents", ctx, mock.AnythingOfType("string"), mock.AnythingOfType("[]events.DomainEvent")).Return(nil)
	publisher.On("PublishBatch", ctx, mock.AnythingOfType("[]events.DomainEvent")).Return(nil)

	handler := buildHandlerWith(networkRepo, eventStore, publisher, lock)
	cmd := fixtures.NewBuildCommandBuilder().Build()

	// Act
	network, err := handler.Handle(ctx, cmd)

	// Assert
	require.NoError(t, err)
	require.NotNil(t, network)
	assert.Equal(t, "test-user-123", network.UserID())
	assert.Equal(t, []string{"A", "B"}, network.Levels())
	assert.InDelta(t, 4.0, network.Matrix().At(0, 1), 1e-12)
	// Events were published, so the aggregate has drained them
	assert.Empty(t, network.DomainEvents())

	networkRepo.AssertExpectations(t)
	eventStore.AssertExpectations(t)
	publisher.AssertExpectations(t)
	lock.AssertExpectations(t)
}

func TestBuildNetworkHandler_Handle_InvalidCommand(t *testing.T) {
	// Arrange
	ctx := context.Background()
	handler := buildHandlerWith(
		new(mocks.MockNetworkRepository),
		new(mocks.MockEventStore),
		new(mocks.MockEventPublisher),
		new(mocks.MockDistributedLock),
	)

	cmd := fixtures.NewBuildCommandBuilder().WithUserID("").Build()

	// Act
	network, err := handler.Handle(ctx, cmd)

	// Assert
	require.Error(t, err)
	assert.Nil(t, network)
}

func TestBuildNetworkHandler_Handle_RejectedDatasetPublishesEvent(t *testing.T) {
	// Arrange
	ctx := context.Background()
	networkRepo := new(mocks.MockNetworkRepository)
	eventStore := new(mocks.MockEventStore)
	publisher := new(mocks.MockEventPublisher)
	lock := new(mocks.MockDistributedLock)

	publisher.On("Publish", ctx, mock.MatchedBy(func(e events.DomainEvent) bool {
		return e.GetEventType() == events.EventTypeDatasetRejected
	})).Return(nil)

	handler := buildHandlerWith(networkRepo, eventStore, publisher, lock)
	cmd := fixtures.NewBuildCommandBuilder().WithSingleGene().Build()

	// Act
	network, err := handler.Handle(ctx, cmd)

	// Assert
	require.Error(t, err)
	assert.Nil(t, network)
	publisher.AssertExpectations(t)
	// The lock is never taken for a rejected dataset
	lock.AssertNotCalled(t, "Acquire", mock.Anything, mock.Anything, mock.Anything)
}

func TestBuildNetworkHandler_Handle_LockContention(t *testing.T) {
	// Arrange
	ctx := context.Background()
	lock := new(mocks.MockDistributedLock)
	lock.On("Acquire", ctx, mock.AnythingOfType("string"), mock.AnythingOfType("time.Duration")).
		Return(nil, errors.New("lock already held"))

	networkRepo := new(mocks.MockNetworkRepository)
	handler := buildHandlerWith(networkRepo, new(mocks.MockEventStore), new(mocks.MockEventPublisher), lock)
	cmd := fixtures.NewBuildCommandBuilder().Build()

	// Act
	network, err := handler.Handle(ctx, cmd)

	// Assert
	require.Error(t, err)
	assert.Nil(t, network)
	networkRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestBuildNetworkHandler_Handle_SaveFailureReleasesLock(t *testing.T) {
	// Arrange
	ctx := context.Background()
	released := false
	release := func(context.Context) error {
		released = true
		return nil
	}

	lock := new(mocks.MockDistributedLock)
	lock.On("Acquire", ctx, mock.AnythingOfType("string"), mock.AnythingOfType("time.Duration")).
		Return(release, nil)

	networkRepo := new(mocks.MockNetworkRepository)
	networkRepo.On("Save", ctx, mock.AnythingOfType("*aggregates.SignalingNetwork")).
		Return(errors.New("table unavailable"))

	handler := buildHandlerWith(networkRepo, new(mocks.MockEventStore), new(mocks.MockEventPublisher), lock)
	cmd := fixtures.NewBuildCommandBuilder().Build()

	// Act
	network, err := handler.Handle(ctx, cmd)

	// Assert
	require.Error(t, err)
	assert.Nil(t, network)
	assert.True(t, released)
}
