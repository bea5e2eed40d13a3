package valueobjects

import (
	"errors"
	"strings"
)

// ClusterRole distinguishes the two roles a cluster plays in a signaling
// matrix: the receptor-expressing side (rows) and the ligand-expressing
// side (columns). The wire form keeps the "R_"/"L_" prefixes that the
// matrix row/column naming convention depends on.
type ClusterRole string

const (
	RoleReceptor ClusterRole = "R"
	RoleLigand   ClusterRole = "L"
)

// ClusterKey is a value object keying one axis of a signaling matrix.
// It carries the cluster label plus an explicit role tag instead of the
// prefix-encoded string the upstream data uses.
type ClusterKey struct {
	cluster string
	role    ClusterRole
}

// ReceptorKey creates the receptor-role key for a cluster
func ReceptorKey(cluster string) ClusterKey {
	return ClusterKey{cluster: cluster, role: RoleReceptor}
}

// LigandKey creates the ligand-role key for a cluster
func LigandKey(cluster string) ClusterKey {
	return ClusterKey{cluster: cluster, role: RoleLigand}
}

// ParseClusterKey parses the "R_<cluster>" / "L_<cluster>" wire form
func ParseClusterKey(s string) (ClusterKey, error) {
	switch {
	case strings.HasPrefix(s, "R_"):
		return ClusterKey{cluster: s[2:], role: RoleReceptor}, nil
	case strings.HasPrefix(s, "L_"):
		return ClusterKey{cluster: s[2:], role: RoleLigand}, nil
	default:
		return ClusterKey{}, errors.New(`cluster key must carry an "R_" or "L_" prefix`)
	}
}

// Cluster returns the cluster label
func (k ClusterKey) Cluster() string {
	return k.cluster
}

// Role returns the role tag
func (k ClusterKey) Role() ClusterRole {
	return k.role
}

// String returns the prefixed wire form, e.g. "R_fibroblast"
func (k ClusterKey) String() string {
	return string(k.role) + "_" + k.cluster
}

// Equals checks if two ClusterKeys are equal
func (k ClusterKey) Equals(other ClusterKey) bool {
	return k.cluster == other.cluster && k.role == other.role
}

// IsZero checks if the ClusterKey is the zero value
func (k ClusterKey) IsZero() bool {
	return k.cluster == "" && k.role == ""
}

// WithCluster returns a key with the same role and a new cluster label
func (k ClusterKey) WithCluster(cluster string) ClusterKey {
	return ClusterKey{cluster: cluster, role: k.role}
}

// MarshalText implements encoding.TextMarshaler so keys survive use as
// JSON map keys
func (k ClusterKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *ClusterKey) UnmarshalText(data []byte) error {
	parsed, err := ParseClusterKey(string(data))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
