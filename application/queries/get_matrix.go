package queries

import "errors"

// GetSignalingMatrixQuery represents a query for the signaling matrix,
// optionally transformed. Transform order is fixed: clamp, scale,
// normalize.
type GetSignalingMatrixQuery struct {
	UserID    string   `json:"user_id"`
	NetworkID string   `json:"network_id"`
	MinThresh *float64 `json:"min_thresh,omitempty"`
	MaxThresh *float64 `json:"max_thresh,omitempty"`
	Scale     string   `json:"scale,omitempty"`     // "none", "sqrt", "log"
	Normalize string   `json:"normalize,omitempty"` // "none", "row", "col"
}

// Validate validates the query
func (q GetSignalingMatrixQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("user ID is required")
	}
	if q.NetworkID == "" {
		return errors.New("network ID is required")
	}
	return nil
}

// GetSignalingMatrixResult represents the transformed matrix
type GetSignalingMatrixResult struct {
	NetworkID string    `json:"networkId"`
	Matrix    MatrixDTO `json:"matrix"`
	Scale     string    `json:"scale"`
	Normalize string    `json:"normalize"`
}
