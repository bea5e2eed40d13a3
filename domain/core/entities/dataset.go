package entities

import (
	"time"

	"crosstalk/domain/analysis"
	pkgerrors "crosstalk/pkg/errors"
)

// Dataset is the entity carrying one uploaded single-cell dataset: the
// gene expression matrix, the transcription-factor activity scores, the
// cluster assignment, and the curated receptor-ligand database the
// network construction step consumes.
type Dataset struct {
	name            string
	userID          string
	expression      *analysis.ExpressionMatrix
	activities      *analysis.ExpressionMatrix
	clusters        *analysis.ClusterAssignment
	receptorLigands map[string][]string
	createdAt       time.Time
}

// NewDataset creates a dataset entity, rejecting structurally broken
// inputs up front. Scientific plausibility checks live in the
// DatasetValidator.
func NewDataset(
	name, userID string,
	expression, activities *analysis.ExpressionMatrix,
	clusters *analysis.ClusterAssignment,
	receptorLigands map[string][]string,
) (*Dataset, error) {
	if name == "" {
		return nil, pkgerrors.NewValidationError("dataset name required")
	}
	if userID == "" {
		return nil, pkgerrors.NewValidationError("userID required")
	}
	if expression == nil || activities == nil || clusters == nil {
		return nil, pkgerrors.NewValidationError("expression, activities, and cluster assignment are required")
	}
	return &Dataset{
		name:            name,
		userID:          userID,
		expression:      expression,
		activities:      activities,
		clusters:        clusters,
		receptorLigands: receptorLigands,
		createdAt:       time.Now(),
	}, nil
}

// Name returns the dataset name
func (d *Dataset) Name() string { return d.name }

// UserID returns the owner's ID
func (d *Dataset) UserID() string { return d.userID }

// Expression returns the gene expression matrix
func (d *Dataset) Expression() *analysis.ExpressionMatrix { return d.expression }

// Activities returns the transcription-factor activity matrix
func (d *Dataset) Activities() *analysis.ExpressionMatrix { return d.activities }

// Clusters returns the cluster assignment
func (d *Dataset) Clusters() *analysis.ClusterAssignment { return d.clusters }

// ReceptorLigands returns the curated receptor-ligand database
func (d *Dataset) ReceptorLigands() map[string][]string { return d.receptorLigands }

// CreatedAt returns when the dataset was registered
func (d *Dataset) CreatedAt() time.Time { return d.createdAt }

// BuildInput adapts the dataset for the network construction engine
func (d *Dataset) BuildInput() analysis.BuildInput {
	return analysis.BuildInput{
		Expression:      d.expression,
		Activities:      d.activities,
		Clusters:        d.clusters,
		ReceptorLigands: d.receptorLigands,
	}
}
