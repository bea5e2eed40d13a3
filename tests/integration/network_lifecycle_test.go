// Package integration exercises the full command and query path with
// in-memory adapters behind the application ports.
package integration

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"crosstalk/application/commands"
	cmdhandlers "crosstalk/application/commands/handlers"
	"crosstalk/application/ports"
	"crosstalk/application/queries"
	queryhandlers "crosstalk/application/queries/handlers"
	"crosstalk/application/sagas"
	"crosstalk/domain/core/aggregates"
	"crosstalk/domain/core/validators"
	"crosstalk/domain/core/valueobjects"
	"crosstalk/domain/events"
	"crosstalk/domain/versioning"
	pkgerrors "crosstalk/pkg/errors"
	"crosstalk/tests/fixtures"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryNetworkRepo struct {
	mu       sync.Mutex
	networks map[string]*aggregates.SignalingNetwork
}

func newMemoryNetworkRepo() *memoryNetworkRepo {
	return &memoryNetworkRepo{networks: make(map[string]*aggregates.SignalingNetwork)}
}

func (r *memoryNetworkRepo) Save(_ context.Context, network *aggregates.SignalingNetwork) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.networks[network.ID().String()] = network
	return nil
}

func (r *memoryNetworkRepo) GetByID(_ context.Context, id valueobjects.NetworkID) (*aggregates.SignalingNetwork, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	network, ok := r.networks[id.String()]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("network")
	}
	return network, nil
}

func (r *memoryNetworkRepo) GetByUserID(_ context.Context, userID string) ([]*aggregates.SignalingNetwork, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*aggregates.SignalingNetwork
	for _, network := range r.networks {
		if network.UserID() == userID {
			out = append(out, network)
		}
	}
	return out, nil
}

func (r *memoryNetworkRepo) Delete(_ context.Context, id valueobjects.NetworkID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.networks, id.String())
	return nil
}

type memoryEventStore struct {
	mu     sync.Mutex
	stored map[string][]ports.StoredEvent
}

func newMemoryEventStore() *memoryEventStore {
	return &memoryEventStore{stored: make(map[string][]ports.StoredEvent)}
}

func (s *memoryEventStore) SaveEvents(_ context.Context, aggregateID string, evts []events.DomainEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, event := range evts {
		payload, err := json.Marshal(event)
		if err != nil {
			return err
		}
		s.stored[aggregateID] = append(s.stored[aggregateID], ports.StoredEvent{
			AggregateID: aggregateID,
			EventType:   event.GetEventType(),
			Payload:     payload,
			Timestamp:   event.GetTimestamp(),
			Version:     event.GetVersion(),
		})
	}
	return nil
}

func (s *memoryEventStore) GetEvents(_ context.Context, aggregateID string) ([]ports.StoredEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ports.StoredEvent(nil), s.stored[aggregateID]...), nil
}

func (s *memoryEventStore) DeleteEvents(_ context.Context, aggregateID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.stored, aggregateID)
	return nil
}

type memoryPublisher struct {
	mu        sync.Mutex
	published []events.DomainEvent
}

func (p *memoryPublisher) Publish(_ context.Context, event events.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, event)
	return nil
}

func (p *memoryPublisher) PublishBatch(_ context.Context, evts []events.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, evts...)
	return nil
}

func (p *memoryPublisher) eventTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, len(p.published))
	for i, event := range p.published {
		types[i] = event.GetEventType()
	}
	return types
}

type memoryLock struct {
	mu   sync.Mutex
	held map[string]bool
}

func newMemoryLock() *memoryLock {
	return &memoryLock{held: make(map[string]bool)}
}

func (l *memoryLock) Acquire(_ context.Context, key string, _ time.Duration) (func(context.Context) error, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return nil, pkgerrors.NewConflictError("lock already held")
	}
	l.held[key] = true
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
		return nil
	}, nil
}

type testEnv struct {
	repo       *memoryNetworkRepo
	eventStore *memoryEventStore
	publisher  *memoryPublisher
	lock       *memoryLock

	build   *cmdhandlers.BuildNetworkHandler
	rename  *cmdhandlers.RenameClustersHandler
	remove  *cmdhandlers.DeleteNetworkHandler
	get     *queryhandlers.GetNetworkHandler
	matrix  *queryhandlers.GetSignalingMatrixHandler
	collate *queryhandlers.CollateItemsHandler
}

func newTestEnv() *testEnv {
	logger := zap.NewNop()
	repo := newMemoryNetworkRepo()
	eventStore := newMemoryEventStore()
	publisher := &memoryPublisher{}
	lock := newMemoryLock()

	saga := sagas.NewBuildNetworkSaga(repo, eventStore, publisher, logger)

	return &testEnv{
		repo:       repo,
		eventStore: eventStore,
		publisher:  publisher,
		lock:       lock,
		build:      cmdhandlers.NewBuildNetworkHandler(saga, publisher, lock, validators.NewDatasetValidator(), logger),
		rename:     cmdhandlers.NewRenameClustersHandler(repo, eventStore, publisher, versioning.NewVersioningService(20), logger),
		remove:     cmdhandlers.NewDeleteNetworkHandler(repo, publisher, logger),
		get:        queryhandlers.NewGetNetworkHandler(repo, nil, logger),
		matrix:     queryhandlers.NewGetSignalingMatrixHandler(repo, logger),
		collate:    queryhandlers.NewCollateItemsHandler(repo, logger),
	}
}

func TestNetworkLifecycle_BuildQueryRenameDelete(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	userID := "researcher-1"

	// Build
	network, err := env.build.Handle(ctx, fixtures.NewBuildCommandBuilder().
		WithUserID(userID).
		WithName("pbmc-map").
		Build())
	require.NoError(t, err)
	networkID := network.ID().String()

	stored, err := env.eventStore.GetEvents(ctx, networkID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, events.EventTypeNetworkBuilt, stored[0].EventType)
	assert.Equal(t, []string{events.EventTypeNetworkBuilt}, env.publisher.eventTypes())

	// Query the full state
	state, err := env.get.Handle(ctx, queries.GetNetworkQuery{UserID: userID, NetworkID: networkID})
	require.NoError(t, err)
	assert.Equal(t, "pbmc-map", state.Name)
	assert.Equal(t, []string{"A", "B"}, state.Clusters)
	assert.Equal(t, []string{"tf1"}, state.Linkage.ClusterTFs["A"])
	assert.Equal(t, []string{"rec1"}, state.Linkage.TFReceptors["tf1"])
	assert.Equal(t, []string{"lig1"}, state.Linkage.ReceptorLigands["rec1"])
	assert.Equal(t, 4.0, state.Matrix.Data[0][1])

	// Collation follows the linkage chain
	collation, err := env.collate.Handle(ctx, queries.CollateItemsQuery{UserID: userID, NetworkID: networkID})
	require.NoError(t, err)
	assert.Equal(t, []string{"tf1"}, collation.Features)
	assert.Equal(t, []string{"rec1"}, collation.Receptors)
	assert.Equal(t, []string{"lig1"}, collation.Ligands)

	// Rename propagates into matrix keys and linkage
	err = env.rename.Handle(ctx, commands.RenameClustersCommand{
		NetworkID: networkID,
		UserID:    userID,
		Renames:   map[string]string{"A": "Tumor"},
	})
	require.NoError(t, err)

	matrix, err := env.matrix.Handle(ctx, queries.GetSignalingMatrixQuery{UserID: userID, NetworkID: networkID})
	require.NoError(t, err)
	assert.Equal(t, []string{"R_Tumor", "R_B"}, matrix.Matrix.Rows)
	assert.Equal(t, []string{"L_Tumor", "L_B"}, matrix.Matrix.Cols)
	assert.Equal(t, 4.0, matrix.Matrix.Data[0][1])

	state, err = env.get.Handle(ctx, queries.GetNetworkQuery{UserID: userID, NetworkID: networkID})
	require.NoError(t, err)
	assert.Equal(t, []string{"Tumor", "B"}, state.Clusters)
	assert.Equal(t, []string{"tf1"}, state.Linkage.ClusterTFs["Tumor"])
	assert.Equal(t, 2, state.Version)

	// Delete
	err = env.remove.Handle(ctx, commands.DeleteNetworkCommand{NetworkID: networkID, UserID: userID})
	require.NoError(t, err)

	_, err = env.get.Handle(ctx, queries.GetNetworkQuery{UserID: userID, NetworkID: networkID})
	assert.True(t, pkgerrors.IsNotFound(err))

	types := env.publisher.eventTypes()
	assert.Equal(t, events.EventTypeNetworkDeleted, types[len(types)-1])
}

func TestNetworkLifecycle_RejectedDatasetPublishesEvent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	_, err := env.build.Handle(ctx, fixtures.NewBuildCommandBuilder().
		WithUserID("researcher-1").
		WithSingleGene().
		Build())

	require.Error(t, err)
	assert.Equal(t, []string{events.EventTypeDatasetRejected}, env.publisher.eventTypes())

	networks, repoErr := env.repo.GetByUserID(ctx, "researcher-1")
	require.NoError(t, repoErr)
	assert.Empty(t, networks)
}

func TestNetworkLifecycle_ConcurrentBuildsAreSerialized(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	// Hold the user's build lock the way an in-flight build would
	release, err := env.lock.Acquire(ctx, "network_build_researcher-1", 5*time.Minute)
	require.NoError(t, err)
	defer release(ctx)

	_, err = env.build.Handle(ctx, fixtures.NewBuildCommandBuilder().
		WithUserID("researcher-1").
		Build())

	require.Error(t, err)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeConflict))
}

func TestNetworkLifecycle_CrossUserAccessDenied(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	network, err := env.build.Handle(ctx, fixtures.NewBuildCommandBuilder().
		WithUserID("owner").
		Build())
	require.NoError(t, err)

	err = env.remove.Handle(ctx, commands.DeleteNetworkCommand{
		NetworkID: network.ID().String(),
		UserID:    "intruder",
	})
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeUnauthorized))

	_, err = env.matrix.Handle(ctx, queries.GetSignalingMatrixQuery{
		UserID:    "intruder",
		NetworkID: network.ID().String(),
	})
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeUnauthorized))
}
