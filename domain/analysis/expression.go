package analysis

import (
	pkgerrors "crosstalk/pkg/errors"
)

// GeneUniverse is the membership test the collator and graph builders
// use to decide whether a gene is actually present in the expression
// data. ExpressionMatrix and GeneSet both satisfy it.
type GeneUniverse interface {
	HasGene(gene string) bool
}

// ExpressionMatrix holds gene expression as genes x cells. Within the
// analytics core it is only read: membership tests, per-gene rows, and
// per-cluster means.
type ExpressionMatrix struct {
	genes     []string
	geneIndex map[string]int
	cells     []string
	cellIndex map[string]int
	data      [][]float64
}

// NewExpressionMatrix creates an expression matrix from row-major data.
// data must have one row per gene and one column per cell.
func NewExpressionMatrix(genes, cells []string, data [][]float64) (*ExpressionMatrix, error) {
	if len(data) != len(genes) {
		return nil, pkgerrors.NewValidationError("expression data must have one row per gene")
	}
	m := &ExpressionMatrix{
		genes:     append([]string(nil), genes...),
		geneIndex: make(map[string]int, len(genes)),
		cells:     append([]string(nil), cells...),
		cellIndex: make(map[string]int, len(cells)),
		data:      make([][]float64, len(genes)),
	}
	for i, g := range genes {
		if _, dup := m.geneIndex[g]; dup {
			return nil, pkgerrors.NewValidationError("duplicate gene name: " + g)
		}
		m.geneIndex[g] = i
	}
	for j, c := range cells {
		if _, dup := m.cellIndex[c]; dup {
			return nil, pkgerrors.NewValidationError("duplicate cell ID: " + c)
		}
		m.cellIndex[c] = j
	}
	for i, row := range data {
		if len(row) != len(cells) {
			return nil, pkgerrors.NewValidationError("expression data must have one column per cell")
		}
		m.data[i] = append([]float64(nil), row...)
	}
	return m, nil
}

// Genes returns the gene names in row order
func (m *ExpressionMatrix) Genes() []string {
	return append([]string(nil), m.genes...)
}

// Cells returns the cell IDs in column order
func (m *ExpressionMatrix) Cells() []string {
	return append([]string(nil), m.cells...)
}

// HasGene reports whether the gene is a row of the matrix
func (m *ExpressionMatrix) HasGene(gene string) bool {
	_, ok := m.geneIndex[gene]
	return ok
}

// Row returns a copy of the expression values for a gene across all
// cells, in cell order
func (m *ExpressionMatrix) Row(gene string) ([]float64, bool) {
	i, ok := m.geneIndex[gene]
	if !ok {
		return nil, false
	}
	return append([]float64(nil), m.data[i]...), true
}

// MeanIn returns the mean expression of a gene over the given cell IDs.
// Cells absent from the matrix are skipped; an empty selection yields 0.
func (m *ExpressionMatrix) MeanIn(gene string, cellIDs []string) (float64, bool) {
	i, ok := m.geneIndex[gene]
	if !ok {
		return 0, false
	}
	sum, n := 0.0, 0
	for _, c := range cellIDs {
		if j, ok := m.cellIndex[c]; ok {
			sum += m.data[i][j]
			n++
		}
	}
	if n == 0 {
		return 0, true
	}
	return sum / float64(n), true
}

// SumIn returns the summed expression of a gene over the given cell IDs
func (m *ExpressionMatrix) SumIn(gene string, cellIDs []string) (float64, bool) {
	i, ok := m.geneIndex[gene]
	if !ok {
		return 0, false
	}
	sum := 0.0
	for _, c := range cellIDs {
		if j, ok := m.cellIndex[c]; ok {
			sum += m.data[i][j]
		}
	}
	return sum, true
}

// GeneSet is a lightweight gene universe for callers that only know the
// row names of an expression matrix, not the values
type GeneSet map[string]struct{}

// NewGeneSet builds a GeneSet from gene names
func NewGeneSet(genes []string) GeneSet {
	s := make(GeneSet, len(genes))
	for _, g := range genes {
		s[g] = struct{}{}
	}
	return s
}

// HasGene reports membership
func (s GeneSet) HasGene(gene string) bool {
	_, ok := s[gene]
	return ok
}

// ClusterAssignment maps cells to cluster labels as an ordered
// categorical: the level order defines matrix row/column ordering and
// default iteration order everywhere downstream.
type ClusterAssignment struct {
	byCell map[string]string
	cells  []string
	levels []string
}

// NewClusterAssignment creates an assignment from parallel cell and
// label slices. If levelOrder is nil, levels are taken in first-seen
// order of the labels.
func NewClusterAssignment(cells, labels []string, levelOrder []string) (*ClusterAssignment, error) {
	if len(cells) != len(labels) {
		return nil, pkgerrors.NewValidationError("cells and cluster labels must have equal length")
	}
	a := &ClusterAssignment{
		byCell: make(map[string]string, len(cells)),
		cells:  append([]string(nil), cells...),
	}
	known := make(map[string]struct{})
	if levelOrder != nil {
		a.levels = append([]string(nil), levelOrder...)
		for _, l := range levelOrder {
			known[l] = struct{}{}
		}
	}
	for i, c := range cells {
		if _, dup := a.byCell[c]; dup {
			return nil, pkgerrors.NewValidationError("duplicate cell ID in cluster assignment: " + c)
		}
		label := labels[i]
		if _, ok := known[label]; !ok {
			if levelOrder != nil {
				return nil, pkgerrors.NewValidationError("cluster label not in level order: " + label)
			}
			known[label] = struct{}{}
			a.levels = append(a.levels, label)
		}
		a.byCell[c] = label
	}
	return a, nil
}

// Levels returns the ordered cluster levels
func (a *ClusterAssignment) Levels() []string {
	return append([]string(nil), a.levels...)
}

// Cluster returns the cluster label for a cell
func (a *ClusterAssignment) Cluster(cell string) (string, bool) {
	label, ok := a.byCell[cell]
	return label, ok
}

// CellsIn returns the cell IDs assigned to a cluster, in input order
func (a *ClusterAssignment) CellsIn(cluster string) []string {
	var out []string
	for _, c := range a.cells {
		if a.byCell[c] == cluster {
			out = append(out, c)
		}
	}
	return out
}

// Len returns the number of assigned cells
func (a *ClusterAssignment) Len() int {
	return len(a.cells)
}

// RenameLevel relabels a cluster level in place. Unknown labels are a
// no-op.
func (a *ClusterAssignment) RenameLevel(from, to string) {
	for i, l := range a.levels {
		if l == from {
			a.levels[i] = to
		}
	}
	for c, l := range a.byCell {
		if l == from {
			a.byCell[c] = to
		}
	}
}

// Clone returns a deep copy of the assignment
func (a *ClusterAssignment) Clone() *ClusterAssignment {
	clone := &ClusterAssignment{
		byCell: make(map[string]string, len(a.byCell)),
		cells:  append([]string(nil), a.cells...),
		levels: append([]string(nil), a.levels...),
	}
	for k, v := range a.byCell {
		clone.byCell[k] = v
	}
	return clone
}
