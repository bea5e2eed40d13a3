package queries

import "errors"

// ListNetworksQuery represents a query to list a user's networks
type ListNetworksQuery struct {
	UserID string
	Limit  int
	Offset int
	SortBy string // "created", "updated", "name"
	Order  string // "asc", "desc"
}

// Validate validates the query
func (q ListNetworksQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("user ID is required")
	}
	if q.Limit < 0 {
		return errors.New("limit cannot be negative")
	}
	if q.Offset < 0 {
		return errors.New("offset cannot be negative")
	}
	if q.SortBy != "" && q.SortBy != "created" && q.SortBy != "updated" && q.SortBy != "name" {
		return errors.New("invalid sort field")
	}
	if q.Order != "" && q.Order != "asc" && q.Order != "desc" {
		return errors.New("invalid sort order")
	}
	return nil
}

// ListNetworksResult represents the result of listing networks
type ListNetworksResult struct {
	Networks   []NetworkSummary `json:"networks"`
	TotalCount int              `json:"totalCount"`
	Limit      int              `json:"limit"`
	Offset     int              `json:"offset"`
}

// NetworkSummary represents a summary of a network
type NetworkSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ClusterCount int    `json:"clusterCount"`
	GeneCount    int    `json:"geneCount"`
	Version      int    `json:"version"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
}
