package events

import (
	"time"

	"crosstalk/domain/core/valueobjects"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// Event type identifiers, used for routing and event store round-trips
const (
	EventTypeNetworkBuilt    = "network.built"
	EventTypeClustersRenamed = "network.clusters_renamed"
	EventTypeNetworkDeleted  = "network.deleted"
	EventTypeDatasetRejected = "dataset.rejected"
)

// Network Events

// NetworkBuilt is raised when a signaling network finishes construction
type NetworkBuilt struct {
	BaseEvent
	NetworkID    valueobjects.NetworkID `json:"network_id"`
	UserID       string                 `json:"user_id"`
	Name         string                 `json:"name"`
	ClusterCount int                    `json:"cluster_count"`
}

// NewNetworkBuilt creates a NetworkBuilt event
func NewNetworkBuilt(networkID valueobjects.NetworkID, userID, name string, clusterCount int, timestamp time.Time) NetworkBuilt {
	return NetworkBuilt{
		BaseEvent: BaseEvent{
			AggregateID: networkID.String(),
			EventType:   EventTypeNetworkBuilt,
			Timestamp:   timestamp,
			Version:     1,
		},
		NetworkID:    networkID,
		UserID:       userID,
		Name:         name,
		ClusterCount: clusterCount,
	}
}

// ClustersRenamed is raised when a network's cluster labels are remapped
type ClustersRenamed struct {
	BaseEvent
	NetworkID valueobjects.NetworkID `json:"network_id"`
	Renames   map[string]string      `json:"renames"`
}

// NewClustersRenamed creates a ClustersRenamed event
func NewClustersRenamed(networkID valueobjects.NetworkID, renames map[string]string, timestamp time.Time) ClustersRenamed {
	copied := make(map[string]string, len(renames))
	for k, v := range renames {
		copied[k] = v
	}
	return ClustersRenamed{
		BaseEvent: BaseEvent{
			AggregateID: networkID.String(),
			EventType:   EventTypeClustersRenamed,
			Timestamp:   timestamp,
			Version:     1,
		},
		NetworkID: networkID,
		Renames:   copied,
	}
}

// NetworkDeleted is raised when a network is removed
type NetworkDeleted struct {
	BaseEvent
	NetworkID valueobjects.NetworkID `json:"network_id"`
	UserID    string                 `json:"user_id"`
}

// NewNetworkDeleted creates a NetworkDeleted event
func NewNetworkDeleted(networkID valueobjects.NetworkID, userID string, timestamp time.Time) NetworkDeleted {
	return NetworkDeleted{
		BaseEvent: BaseEvent{
			AggregateID: networkID.String(),
			EventType:   EventTypeNetworkDeleted,
			Timestamp:   timestamp,
			Version:     1,
		},
		NetworkID: networkID,
		UserID:    userID,
	}
}

// DatasetRejected is raised when an uploaded dataset fails validation
type DatasetRejected struct {
	BaseEvent
	DatasetName string   `json:"dataset_name"`
	UserID      string   `json:"user_id"`
	Reasons     []string `json:"reasons"`
}

// NewDatasetRejected creates a DatasetRejected event
func NewDatasetRejected(datasetName, userID string, reasons []string, timestamp time.Time) DatasetRejected {
	return DatasetRejected{
		BaseEvent: BaseEvent{
			AggregateID: datasetName,
			EventType:   EventTypeDatasetRejected,
			Timestamp:   timestamp,
			Version:     1,
		},
		DatasetName: datasetName,
		UserID:      userID,
		Reasons:     append([]string(nil), reasons...),
	}
}
