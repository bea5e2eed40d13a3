package sagas

import (
	"context"
	"errors"
	"testing"
	"time"

	"crosstalk/domain/analysis"
	"crosstalk/domain/core/aggregates"
	"crosstalk/tests/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSaga_Execute_PassesDataBetweenSteps(t *testing.T) {
	saga := New("pipeline", zap.NewNop())
	saga.AddStep(Step{
		Name: "first",
		Execute: func(ctx context.Context, data interface{}) (interface{}, error) {
			return 1, nil
		},
	})
	saga.AddStep(Step{
		Name: "second",
		Execute: func(ctx context.Context, data interface{}) (interface{}, error) {
			return data.(int) + 1, nil
		},
	})

	out, err := saga.Execute(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, 2, out)
	assert.Equal(t, StateCompleted, saga.State())
}

func TestSaga_Execute_CompensatesInReverseOrder(t *testing.T) {
	var undone []string
	saga := New("pipeline", zap.NewNop())

	for _, name := range []string{"a", "b"} {
		name := name
		saga.AddStep(Step{
			Name: name,
			Execute: func(ctx context.Context, data interface{}) (interface{}, error) {
				return nil, nil
			},
			Compensate: func(ctx context.Context, data interface{}) error {
				undone = append(undone, name)
				return nil
			},
		})
	}
	saga.AddStep(Step{
		Name: "boom",
		Execute: func(ctx context.Context, data interface{}) (interface{}, error) {
			return nil, errors.New("exploded")
		},
	})

	_, err := saga.Execute(context.Background(), nil)

	require.Error(t, err)
	assert.Equal(t, []string{"b", "a"}, undone)
	assert.Equal(t, StateCompensated, saga.State())
}

func TestSaga_Execute_RetriesBeforeFailing(t *testing.T) {
	attempts := 0
	saga := New("retry", zap.NewNop())
	saga.AddStep(Step{
		Name: "flaky",
		Execute: func(ctx context.Context, data interface{}) (interface{}, error) {
			attempts++
			if attempts < 2 {
				return nil, errors.New("transient")
			}
			return "ok", nil
		},
		MaxRetries: 3,
		RetryDelay: time.Millisecond,
	})

	out, err := saga.Execute(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 2, attempts)
}

func testNetwork(t *testing.T) *aggregates.SignalingNetwork {
	t.Helper()

	matrix := analysis.NewSignalingMatrix([]string{"A", "B"})
	linkage := analysis.NewLinkageIndex()
	linkage.LinkClusterTFs("A", "tf1")

	network, err := aggregates.NewSignalingNetwork("user123", "test", &analysis.BuildResult{
		Matrix:  matrix,
		Linkage: linkage,
		Genes:   []string{"g1", "g2"},
	}, []string{"A", "B"}, nil)
	require.NoError(t, err)
	return network
}

func TestBuildNetworkSaga_Persist_Success(t *testing.T) {
	ctx := context.Background()
	networkRepo := new(mocks.MockNetworkRepository)
	eventStore := new(mocks.MockEventStore)
	publisher := new(mocks.MockEventPublisher)

	network := testNetwork(t)

	networkRepo.On("Save", ctx, network).Return(nil)
	eventStore.On("SaveEvents", ctx, network.ID().String(), mock.AnythingOfType("[]events.DomainEvent")).Return(nil)
	publisher.On("PublishBatch", ctx, mock.AnythingOfType("[]events.DomainEvent")).Return(nil)

	saga := NewBuildNetworkSaga(networkRepo, eventStore, publisher, zap.NewNop())
	err := saga.Persist(ctx, network)

	require.NoError(t, err)
	assert.Empty(t, network.DomainEvents())
	networkRepo.AssertExpectations(t)
	eventStore.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestBuildNetworkSaga_Persist_EventStoreFailureRemovesNetwork(t *testing.T) {
	ctx := context.Background()
	networkRepo := new(mocks.MockNetworkRepository)
	eventStore := new(mocks.MockEventStore)
	publisher := new(mocks.MockEventPublisher)

	network := testNetwork(t)

	networkRepo.On("Save", ctx, network).Return(nil)
	eventStore.On("SaveEvents", ctx, network.ID().String(), mock.AnythingOfType("[]events.DomainEvent")).
		Return(errors.New("event table unavailable"))
	// Compensation unwinds the saved network row
	networkRepo.On("Delete", ctx, network.ID()).Return(nil)

	saga := NewBuildNetworkSaga(networkRepo, eventStore, publisher, zap.NewNop())
	err := saga.Persist(ctx, network)

	require.Error(t, err)
	networkRepo.AssertCalled(t, "Delete", ctx, network.ID())
	publisher.AssertNotCalled(t, "PublishBatch", mock.Anything, mock.Anything)
}

func TestBuildNetworkSaga_Persist_PublishFailureIsTolerated(t *testing.T) {
	ctx := context.Background()
	networkRepo := new(mocks.MockNetworkRepository)
	eventStore := new(mocks.MockEventStore)
	publisher := new(mocks.MockEventPublisher)

	network := testNetwork(t)

	networkRepo.On("Save", ctx, network).Return(nil)
	eventStore.On("SaveEvents", ctx, network.ID().String(), mock.AnythingOfType("[]events.DomainEvent")).Return(nil)
	publisher.On("PublishBatch", ctx, mock.AnythingOfType("[]events.DomainEvent")).
		Return(errors.New("bus unavailable"))

	saga := NewBuildNetworkSaga(networkRepo, eventStore, publisher, zap.NewNop())
	err := saga.Persist(ctx, network)

	// Stored events can be replayed, so the saga still succeeds and the
	// aggregate keeps its events for the outbox
	require.NoError(t, err)
	assert.NotEmpty(t, network.DomainEvents())
	networkRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
