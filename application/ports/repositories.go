package ports

import (
	"context"
	"time"

	"crosstalk/domain/core/aggregates"
	"crosstalk/domain/core/valueobjects"
	"crosstalk/domain/events"
)

// NetworkRepository defines the interface for signaling network
// persistence. This is a port in hexagonal architecture - the domain
// doesn't know about the implementation.
type NetworkRepository interface {
	// Save persists a network (create or update)
	Save(ctx context.Context, network *aggregates.SignalingNetwork) error

	// GetByID retrieves a network by its ID
	GetByID(ctx context.Context, id valueobjects.NetworkID) (*aggregates.SignalingNetwork, error)

	// GetByUserID retrieves all networks owned by a user
	GetByUserID(ctx context.Context, userID string) ([]*aggregates.SignalingNetwork, error)

	// Delete removes a network
	Delete(ctx context.Context, id valueobjects.NetworkID) error
}

// Connection represents an active WebSocket subscriber
type Connection struct {
	ConnectionID string
	UserID       string
	Endpoint     string
	ConnectedAt  time.Time
	ExpiresAt    time.Time
}

// ConnectionRepository tracks WebSocket connections so build
// notifications can be pushed to subscribers
type ConnectionRepository interface {
	// Save stores a connection record
	Save(ctx context.Context, conn Connection) error

	// GetByUserID retrieves a user's active connections
	GetByUserID(ctx context.Context, userID string) ([]Connection, error)

	// Delete removes a connection record
	Delete(ctx context.Context, connectionID string) error

	// DeleteExpired removes connection records past their expiry
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// EventStore persists domain events for audit and replay
type EventStore interface {
	// SaveEvents persists domain events for an aggregate
	SaveEvents(ctx context.Context, aggregateID string, evts []events.DomainEvent) error

	// GetEvents loads the event history of an aggregate
	GetEvents(ctx context.Context, aggregateID string) ([]StoredEvent, error)

	// DeleteEvents removes all events for an aggregate
	DeleteEvents(ctx context.Context, aggregateID string) error
}

// StoredEvent is a persisted domain event record
type StoredEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Payload     []byte    `json:"payload"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

// Cache is the read-side cache used by the query bus middleware
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, bool)
	Set(ctx context.Context, key string, value interface{}, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// DistributedLock serializes long-running network builds
type DistributedLock interface {
	// Acquire takes the lock, failing fast if it is held. The returned
	// function releases the lock.
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error)
}
