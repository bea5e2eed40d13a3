package commands

import (
	"errors"
)

// DeleteNetworkCommand removes a signaling network
type DeleteNetworkCommand struct {
	NetworkID string `json:"network_id" validate:"required,uuid"`
	UserID    string `json:"user_id" validate:"required"`
}

// Validate validates the command
func (cmd DeleteNetworkCommand) Validate() error {
	if cmd.NetworkID == "" {
		return errors.New("network ID is required")
	}
	if cmd.UserID == "" {
		return errors.New("user ID is required")
	}
	return nil
}

// BulkDeleteNetworksCommand removes several networks at once
type BulkDeleteNetworksCommand struct {
	NetworkIDs []string `json:"network_ids" validate:"required,min=1,max=50,dive,uuid"`
	UserID     string   `json:"user_id" validate:"required"`
}

// Validate validates the command
func (cmd BulkDeleteNetworksCommand) Validate() error {
	if len(cmd.NetworkIDs) == 0 {
		return errors.New("at least one network ID is required")
	}
	if len(cmd.NetworkIDs) > MaxBulkDelete {
		return errors.New("too many network IDs in one request")
	}
	if cmd.UserID == "" {
		return errors.New("user ID is required")
	}
	return nil
}

const MaxBulkDelete = 50

// BulkDeleteNetworksResult reports the outcome of a bulk delete
type BulkDeleteNetworksResult struct {
	DeletedCount int      `json:"deleted_count"`
	FailedIDs    []string `json:"failed_ids,omitempty"`
	Errors       []string `json:"errors,omitempty"`
}
