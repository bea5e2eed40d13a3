package versioning

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"crosstalk/domain/core/aggregates"
)

// NetworkVersion records a specific version of a built network so
// renames and rebuilds leave an auditable trail
type NetworkVersion struct {
	NetworkID    string    `json:"network_id"`
	Version      int       `json:"version"`
	Checksum     string    `json:"checksum"`
	ClusterCount int       `json:"cluster_count"`
	CreatedAt    time.Time `json:"created_at"`
	CreatedBy    string    `json:"created_by"`
	Description  string    `json:"description"`
}

// VersioningService produces version records for networks
type VersioningService struct {
	maxVersions int
}

// NewVersioningService creates a new versioning service
func NewVersioningService(maxVersions int) *VersioningService {
	return &VersioningService{maxVersions: maxVersions}
}

// CreateVersion creates a version record for the network's current state
func (s *VersioningService) CreateVersion(
	network *aggregates.SignalingNetwork,
	userID string,
	description string,
) (*NetworkVersion, error) {
	if network == nil {
		return nil, fmt.Errorf("network cannot be nil")
	}

	checksum, err := Checksum(network)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate checksum: %w", err)
	}

	return &NetworkVersion{
		NetworkID:    network.ID().String(),
		Version:      network.Version(),
		Checksum:     checksum,
		ClusterCount: len(network.Levels()),
		CreatedAt:    time.Now(),
		CreatedBy:    userID,
		Description:  description,
	}, nil
}

// MaxVersions returns the retention limit for version records
func (s *VersioningService) MaxVersions() int {
	return s.maxVersions
}

// Checksum hashes the analytically relevant state of a network: cluster
// levels, matrix values, and linkage contents. Metadata changes do not
// move the checksum.
func Checksum(network *aggregates.SignalingNetwork) (string, error) {
	matrix := network.Matrix()
	linkage := network.Linkage()

	state := struct {
		Levels  []string              `json:"levels"`
		Rows    []string              `json:"rows"`
		Cols    []string              `json:"cols"`
		Data    [][]float64           `json:"data"`
		Linkage map[string][][]string `json:"linkage"`
	}{
		Levels:  network.Levels(),
		Linkage: make(map[string][][]string),
	}
	for _, k := range matrix.Rows() {
		state.Rows = append(state.Rows, k.String())
	}
	for _, k := range matrix.Cols() {
		state.Cols = append(state.Cols, k.String())
	}
	state.Data = matrix.Data()
	for _, cluster := range linkage.Clusters() {
		tfs := linkage.TFsFor(cluster)
		entry := [][]string{tfs}
		for _, tf := range tfs {
			entry = append(entry, linkage.ReceptorsFor(tf))
		}
		state.Linkage[cluster] = entry
	}

	payload, err := json.Marshal(state)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
