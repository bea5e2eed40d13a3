package sagas

import (
	"context"
	"fmt"
	"time"

	"crosstalk/application/ports"
	"crosstalk/domain/core/aggregates"
	"go.uber.org/zap"
)

// BuildNetworkSaga persists a freshly built network with compensation:
// if event persistence fails after the network row is written, the row
// is removed again so readers never see a network without history.
type BuildNetworkSaga struct {
	networkRepo ports.NetworkRepository
	eventStore  ports.EventStore
	publisher   ports.EventPublisher
	logger      *zap.Logger
}

// NewBuildNetworkSaga creates a new build persistence saga
func NewBuildNetworkSaga(
	networkRepo ports.NetworkRepository,
	eventStore ports.EventStore,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *BuildNetworkSaga {
	return &BuildNetworkSaga{
		networkRepo: networkRepo,
		eventStore:  eventStore,
		publisher:   publisher,
		logger:      logger,
	}
}

// Persist runs the saga for the given network
func (s *BuildNetworkSaga) Persist(ctx context.Context, network *aggregates.SignalingNetwork) error {
	saga := New("persist_network", s.logger)

	saga.AddStep(Step{
		Name: "save_network",
		Execute: func(ctx context.Context, _ interface{}) (interface{}, error) {
			if err := s.networkRepo.Save(ctx, network); err != nil {
				return nil, fmt.Errorf("failed to save network: %w", err)
			}
			return network, nil
		},
		Compensate: func(ctx context.Context, _ interface{}) error {
			return s.networkRepo.Delete(ctx, network.ID())
		},
		MaxRetries: 3,
		RetryDelay: 500 * time.Millisecond,
	})

	saga.AddStep(Step{
		Name: "store_events",
		Execute: func(ctx context.Context, data interface{}) (interface{}, error) {
			evts := network.DomainEvents()
			if len(evts) == 0 {
				return data, nil
			}
			if err := s.eventStore.SaveEvents(ctx, network.ID().String(), evts); err != nil {
				return nil, fmt.Errorf("failed to store events: %w", err)
			}
			return data, nil
		},
		Compensate: func(ctx context.Context, _ interface{}) error {
			return s.eventStore.DeleteEvents(ctx, network.ID().String())
		},
		MaxRetries: 3,
		RetryDelay: 500 * time.Millisecond,
	})

	saga.AddStep(Step{
		Name: "publish_events",
		Execute: func(ctx context.Context, data interface{}) (interface{}, error) {
			evts := network.DomainEvents()
			if len(evts) == 0 {
				return data, nil
			}
			if err := s.publisher.PublishBatch(ctx, evts); err != nil {
				// Stored events can be replayed later, so a publish
				// failure does not unwind the saga
				s.logger.Warn("Failed to publish events, relying on stored history",
					zap.String("networkID", network.ID().String()),
					zap.Error(err),
				)
				return data, nil
			}
			network.ClearEvents()
			return data, nil
		},
	})

	_, err := saga.Execute(ctx, nil)
	return err
}
