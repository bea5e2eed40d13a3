package validators

import (
	"fmt"

	"crosstalk/domain/core/entities"
	pkgerrors "crosstalk/pkg/errors"
)

// DatasetValidator validates dataset-level domain rules before a
// network build is attempted
type DatasetValidator struct {
	minCellsPerCluster int
	minGenes           int
	minTFs             int
	maxCells           int
}

// NewDatasetValidator creates a validator with default rules
func NewDatasetValidator() *DatasetValidator {
	return &DatasetValidator{
		minCellsPerCluster: 3,
		minGenes:           2,
		minTFs:             1,
		maxCells:           500000,
	}
}

// Validate checks a dataset and returns the full list of violations.
// The returned error wraps the first violation; the list is for the
// rejection event and the API response.
func (v *DatasetValidator) Validate(d *entities.Dataset) ([]string, error) {
	var reasons []string

	expr := d.Expression()
	acts := d.Activities()
	clusters := d.Clusters()

	if len(expr.Genes()) < v.minGenes {
		reasons = append(reasons, fmt.Sprintf("expression matrix needs at least %d genes", v.minGenes))
	}
	if len(acts.Genes()) < v.minTFs {
		reasons = append(reasons, "activity matrix has no transcription factors")
	}
	if len(expr.Cells()) > v.maxCells {
		reasons = append(reasons, fmt.Sprintf("dataset exceeds %d cells", v.maxCells))
	}

	exprCells := expr.Cells()
	actCells := acts.Cells()
	if len(exprCells) != len(actCells) {
		reasons = append(reasons, "expression and activity matrices have different cell counts")
	} else {
		for i := range exprCells {
			if exprCells[i] != actCells[i] {
				reasons = append(reasons, "expression and activity matrices disagree on cell order")
				break
			}
		}
	}

	for _, cell := range exprCells {
		if _, ok := clusters.Cluster(cell); !ok {
			reasons = append(reasons, "cell has no cluster assignment: "+cell)
			break
		}
	}

	for _, level := range clusters.Levels() {
		if n := len(clusters.CellsIn(level)); n < v.minCellsPerCluster {
			reasons = append(reasons,
				fmt.Sprintf("cluster %q has %d cells, below the minimum of %d", level, n, v.minCellsPerCluster))
		}
	}

	if len(d.ReceptorLigands()) == 0 {
		reasons = append(reasons, "receptor-ligand database is empty")
	}

	if len(reasons) > 0 {
		return reasons, pkgerrors.NewValidationError(reasons[0]).
			WithDetail("violations", reasons)
	}
	return nil, nil
}
