package queries

import "errors"

// GetClusterGraphQuery represents a query for the cluster-level
// signaling graph. The "sq" scale mode is only legal here.
type GetClusterGraphQuery struct {
	UserID    string `json:"user_id"`
	NetworkID string `json:"network_id"`

	// Matrix transform applied before assembly
	MinThresh *float64 `json:"min_thresh,omitempty"`
	MaxThresh *float64 `json:"max_thresh,omitempty"`
	Scale     string   `json:"scale,omitempty"`     // "none", "sqrt", "log", "sq"
	Normalize string   `json:"normalize,omitempty"` // "none", "row", "col"

	// Node sizing and edge weighting
	ScaleBy    string   `json:"scale_by,omitempty"` // "lig_sig", "rec_sig", "none"
	VertScale  *float64 `json:"vert_scale,omitempty"`
	EdgeWeight *float64 `json:"edge_weight,omitempty"`

	// Layout mode: "grid", "circle", "random"
	Layout string `json:"layout,omitempty"`
	Seed   int64  `json:"seed,omitempty"`
}

// Validate validates the query
func (q GetClusterGraphQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("user ID is required")
	}
	if q.NetworkID == "" {
		return errors.New("network ID is required")
	}
	return nil
}

// GraphResult represents a rendered graph for visualization
type GraphResult struct {
	NetworkID string         `json:"networkId"`
	Nodes     []GraphNodeDTO `json:"nodes"`
	Edges     []GraphEdgeDTO `json:"edges"`
}

// GraphNodeDTO represents a node in the graph result
type GraphNodeDTO struct {
	ID    string  `json:"id"`
	Class string  `json:"class"`
	Color string  `json:"color,omitempty"`
	Size  float64 `json:"size"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// GraphEdgeDTO represents an edge in the graph result
type GraphEdgeDTO struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight float64 `json:"weight"`
	Color  string  `json:"color,omitempty"`
}
