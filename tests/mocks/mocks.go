// Package mocks provides testify mock implementations of the
// application ports for handler and saga tests.
package mocks

import (
	"context"
	"time"

	"crosstalk/application/ports"
	"crosstalk/domain/core/aggregates"
	"crosstalk/domain/core/valueobjects"
	"crosstalk/domain/events"

	"github.com/stretchr/testify/mock"
)

// MockNetworkRepository mocks ports.NetworkRepository
type MockNetworkRepository struct {
	mock.Mock
}

func (m *MockNetworkRepository) Save(ctx context.Context, network *aggregates.SignalingNetwork) error {
	args := m.Called(ctx, network)
	return args.Error(0)
}

func (m *MockNetworkRepository) GetByID(ctx context.Context, id valueobjects.NetworkID) (*aggregates.SignalingNetwork, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*aggregates.SignalingNetwork), args.Error(1)
}

func (m *MockNetworkRepository) GetByUserID(ctx context.Context, userID string) ([]*aggregates.SignalingNetwork, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*aggregates.SignalingNetwork), args.Error(1)
}

func (m *MockNetworkRepository) Delete(ctx context.Context, id valueobjects.NetworkID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockEventStore mocks ports.EventStore
type MockEventStore struct {
	mock.Mock
}

func (m *MockEventStore) SaveEvents(ctx context.Context, aggregateID string, evts []events.DomainEvent) error {
	args := m.Called(ctx, aggregateID, evts)
	return args.Error(0)
}

func (m *MockEventStore) GetEvents(ctx context.Context, aggregateID string) ([]ports.StoredEvent, error) {
	args := m.Called(ctx, aggregateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.StoredEvent), args.Error(1)
}

func (m *MockEventStore) DeleteEvents(ctx context.Context, aggregateID string) error {
	args := m.Called(ctx, aggregateID)
	return args.Error(0)
}

// MockEventPublisher mocks ports.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) PublishBatch(ctx context.Context, evts []events.DomainEvent) error {
	args := m.Called(ctx, evts)
	return args.Error(0)
}

// MockDistributedLock mocks ports.DistributedLock
type MockDistributedLock struct {
	mock.Mock
}

func (m *MockDistributedLock) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	args := m.Called(ctx, key, ttl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(func(context.Context) error), args.Error(1)
}

// NoopRelease is a release function for lock mocks that do not track
// release calls
func NoopRelease(context.Context) error { return nil }

// MockConnectionRepository mocks ports.ConnectionRepository
type MockConnectionRepository struct {
	mock.Mock
}

func (m *MockConnectionRepository) Save(ctx context.Context, conn ports.Connection) error {
	args := m.Called(ctx, conn)
	return args.Error(0)
}

func (m *MockConnectionRepository) GetByUserID(ctx context.Context, userID string) ([]ports.Connection, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.Connection), args.Error(1)
}

func (m *MockConnectionRepository) Delete(ctx context.Context, connectionID string) error {
	args := m.Called(ctx, connectionID)
	return args.Error(0)
}

func (m *MockConnectionRepository) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

// MockPushNotifier mocks ports.PushNotifier
type MockPushNotifier struct {
	mock.Mock
}

func (m *MockPushNotifier) Push(ctx context.Context, connectionID string, payload []byte) error {
	args := m.Called(ctx, connectionID, payload)
	return args.Error(0)
}

func (m *MockPushNotifier) IsGone(err error) bool {
	args := m.Called(err)
	return args.Bool(0)
}

// MockCache mocks ports.Cache
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (interface{}, bool) {
	args := m.Called(ctx, key)
	return args.Get(0), args.Bool(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value interface{}, ttlSeconds int) error {
	args := m.Called(ctx, key, value, ttlSeconds)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
