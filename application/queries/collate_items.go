package queries

import "errors"

// CollateItemsQuery represents a query for the collated feature,
// receptor, and ligand lists of selected clusters
type CollateItemsQuery struct {
	UserID    string   `json:"user_id"`
	NetworkID string   `json:"network_id"`
	Clusters  []string `json:"clusters,omitempty"`
}

// Validate validates the query
func (q CollateItemsQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("user ID is required")
	}
	if q.NetworkID == "" {
		return errors.New("network ID is required")
	}
	return nil
}

// CollateItemsResult represents the collated item lists
type CollateItemsResult struct {
	NetworkID string   `json:"networkId"`
	Clusters  []string `json:"clusters"`
	Features  []string `json:"features"`
	Receptors []string `json:"receptors"`
	Ligands   []string `json:"ligands"`
}
