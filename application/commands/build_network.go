package commands

import (
	"errors"
)

// BuildNetworkCommand represents the command to construct a signaling
// network from a single-cell dataset
type BuildNetworkCommand struct {
	UserID string `json:"user_id" validate:"required"`
	Name   string `json:"name" validate:"required,min=1,max=200"`

	// Expression matrix: genes x cells
	Genes      []string    `json:"genes" validate:"required,min=1"`
	Cells      []string    `json:"cells" validate:"required,min=1"`
	Expression [][]float64 `json:"expression" validate:"required"`

	// Transcription factor activity matrix: TFs x cells, same cell axis
	TFs        []string    `json:"tfs" validate:"required,min=1"`
	Activities [][]float64 `json:"activities" validate:"required"`

	// Per-cell cluster labels, aligned with Cells. ClusterOrder fixes
	// the level ordering; when empty, first appearance wins.
	Clusters     []string `json:"clusters" validate:"required"`
	ClusterOrder []string `json:"cluster_order,omitempty"`

	// Curated receptor -> ligands database
	ReceptorLigands map[string][]string `json:"receptor_ligands" validate:"required"`

	// Optional per-cluster display colors
	Colors map[string]string `json:"colors,omitempty"`

	// Optional construction threshold overrides
	MaxTFPValue       *float64 `json:"max_tf_p_value,omitempty"`
	MinCorrelation    *float64 `json:"min_correlation,omitempty"`
	MaxTFsPerCluster  *int     `json:"max_tfs_per_cluster,omitempty"`
	MaxReceptorsPerTF *int     `json:"max_receptors_per_tf,omitempty"`
}

// Validate validates the command
func (cmd BuildNetworkCommand) Validate() error {
	if cmd.UserID == "" {
		return errors.New("user ID is required")
	}
	if cmd.Name == "" {
		return errors.New("network name is required")
	}
	if len(cmd.Name) > MaxNameLength {
		return errors.New("network name exceeds maximum length")
	}
	if len(cmd.Genes) == 0 || len(cmd.Cells) == 0 {
		return errors.New("expression matrix must not be empty")
	}
	if len(cmd.Expression) != len(cmd.Genes) {
		return errors.New("expression row count must match gene count")
	}
	if len(cmd.TFs) == 0 {
		return errors.New("activity matrix must not be empty")
	}
	if len(cmd.Activities) != len(cmd.TFs) {
		return errors.New("activity row count must match TF count")
	}
	if len(cmd.Clusters) != len(cmd.Cells) {
		return errors.New("cluster labels must align with cells")
	}
	if len(cmd.ReceptorLigands) == 0 {
		return errors.New("receptor-ligand database is required")
	}
	return nil
}

const MaxNameLength = 200
