package commands

import (
	"errors"
)

// RenameClustersCommand renames cluster levels on an existing network.
// Renames maps old label -> new label.
type RenameClustersCommand struct {
	NetworkID string            `json:"network_id" validate:"required,uuid"`
	UserID    string            `json:"user_id" validate:"required"`
	Renames   map[string]string `json:"renames" validate:"required,min=1"`
}

// Validate validates the command
func (cmd RenameClustersCommand) Validate() error {
	if cmd.NetworkID == "" {
		return errors.New("network ID is required")
	}
	if cmd.UserID == "" {
		return errors.New("user ID is required")
	}
	if len(cmd.Renames) == 0 {
		return errors.New("at least one rename is required")
	}
	for from, to := range cmd.Renames {
		if from == "" || to == "" {
			return errors.New("rename labels must not be empty")
		}
	}
	return nil
}
