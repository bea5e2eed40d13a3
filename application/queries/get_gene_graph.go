package queries

import "errors"

// GetGeneGraphQuery represents a query for the gene-level graph of
// selected clusters. A nil cluster list means all clusters; an empty
// list is honored as-is and yields an empty graph.
type GetGeneGraphQuery struct {
	UserID    string   `json:"user_id"`
	NetworkID string   `json:"network_id"`
	Clusters  []string `json:"clusters,omitempty"`

	// Layout mode: "grid", "circle", "random". Gene graphs default to
	// the three-column grid.
	Layout string `json:"layout,omitempty"`
	Seed   int64  `json:"seed,omitempty"`
}

// Validate validates the query
func (q GetGeneGraphQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("user ID is required")
	}
	if q.NetworkID == "" {
		return errors.New("network ID is required")
	}
	return nil
}
