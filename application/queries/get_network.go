package queries

import "errors"

// GetNetworkQuery represents a query to get a single network
type GetNetworkQuery struct {
	UserID    string `json:"user_id"`
	NetworkID string `json:"network_id"`
}

// Validate validates the query
func (q GetNetworkQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("user ID is required")
	}
	if q.NetworkID == "" {
		return errors.New("network ID is required")
	}
	return nil
}

// GetNetworkResult represents the full network state
type GetNetworkResult struct {
	ID        string            `json:"id"`
	UserID    string            `json:"userId"`
	Name      string            `json:"name"`
	Clusters  []string          `json:"clusters"`
	Genes     []string          `json:"genes"`
	Colors    map[string]string `json:"colors,omitempty"`
	Matrix    MatrixDTO         `json:"matrix"`
	Linkage   LinkageDTO        `json:"linkage"`
	Version   int               `json:"version"`
	CreatedAt string            `json:"createdAt"`
	UpdatedAt string            `json:"updatedAt"`
}

// MatrixDTO is a data transfer object for signaling matrices. Rows and
// Cols carry the prefixed cluster keys ("R_" / "L_").
type MatrixDTO struct {
	Rows []string    `json:"rows"`
	Cols []string    `json:"cols"`
	Data [][]float64 `json:"data"`
}

// LinkageDTO is a data transfer object for the linkage index
type LinkageDTO struct {
	ClusterTFs      map[string][]string `json:"cluster_tfs"`
	TFReceptors     map[string][]string `json:"tf_receptors"`
	ReceptorLigands map[string][]string `json:"receptor_ligands"`
}
