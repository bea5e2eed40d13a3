// Package analysis implements the signaling-network analytics core:
// signaling matrix transforms, receptor-ligand-transcription-factor
// linkage traversal, and graph assembly over clusters and genes. All
// operations are pure functions over in-memory inputs; callers get a
// fresh matrix or graph per call and shared inputs are never mutated.
package analysis

import (
	"crosstalk/domain/core/valueobjects"
	pkgerrors "crosstalk/pkg/errors"
)

// SignalingMatrix is a real-valued matrix of inferred signaling strength.
// Rows are receptor-role cluster keys, columns are ligand-role cluster
// keys; entry (r, l) is the aggregate signaling from ligand-expressing
// cluster l into receptor-expressing cluster r. The matrix is not
// necessarily symmetric and entries are non-negative.
type SignalingMatrix struct {
	rows     []valueobjects.ClusterKey
	cols     []valueobjects.ClusterKey
	rowIndex map[valueobjects.ClusterKey]int
	colIndex map[valueobjects.ClusterKey]int
	data     [][]float64
}

// NewSignalingMatrix creates a zero matrix over the given cluster levels.
// Level order defines row and column order.
func NewSignalingMatrix(clusters []string) *SignalingMatrix {
	m := &SignalingMatrix{
		rows:     make([]valueobjects.ClusterKey, 0, len(clusters)),
		cols:     make([]valueobjects.ClusterKey, 0, len(clusters)),
		rowIndex: make(map[valueobjects.ClusterKey]int, len(clusters)),
		colIndex: make(map[valueobjects.ClusterKey]int, len(clusters)),
		data:     make([][]float64, len(clusters)),
	}
	for i, cluster := range clusters {
		rk := valueobjects.ReceptorKey(cluster)
		lk := valueobjects.LigandKey(cluster)
		m.rows = append(m.rows, rk)
		m.cols = append(m.cols, lk)
		m.rowIndex[rk] = i
		m.colIndex[lk] = i
		m.data[i] = make([]float64, len(clusters))
	}
	return m
}

// ReconstructSignalingMatrix rebuilds a matrix from stored row/column
// keys and values. Keys must carry receptor and ligand roles respectively
// and data must be rectangular.
func ReconstructSignalingMatrix(rows, cols []valueobjects.ClusterKey, data [][]float64) (*SignalingMatrix, error) {
	if len(data) != len(rows) {
		return nil, pkgerrors.NewValidationError("matrix data row count does not match row keys")
	}
	m := &SignalingMatrix{
		rows:     append([]valueobjects.ClusterKey(nil), rows...),
		cols:     append([]valueobjects.ClusterKey(nil), cols...),
		rowIndex: make(map[valueobjects.ClusterKey]int, len(rows)),
		colIndex: make(map[valueobjects.ClusterKey]int, len(cols)),
		data:     make([][]float64, len(rows)),
	}
	for i, k := range rows {
		if k.Role() != valueobjects.RoleReceptor {
			return nil, pkgerrors.NewValidationError("matrix row keys must carry the receptor role")
		}
		m.rowIndex[k] = i
	}
	for j, k := range cols {
		if k.Role() != valueobjects.RoleLigand {
			return nil, pkgerrors.NewValidationError("matrix column keys must carry the ligand role")
		}
		m.colIndex[k] = j
	}
	for i, row := range data {
		if len(row) != len(cols) {
			return nil, pkgerrors.NewValidationError("matrix data column count does not match column keys")
		}
		m.data[i] = append([]float64(nil), row...)
	}
	return m, nil
}

// Dims returns the row and column counts
func (m *SignalingMatrix) Dims() (rows, cols int) {
	return len(m.rows), len(m.cols)
}

// Rows returns the receptor-role row keys in order
func (m *SignalingMatrix) Rows() []valueobjects.ClusterKey {
	return append([]valueobjects.ClusterKey(nil), m.rows...)
}

// Cols returns the ligand-role column keys in order
func (m *SignalingMatrix) Cols() []valueobjects.ClusterKey {
	return append([]valueobjects.ClusterKey(nil), m.cols...)
}

// At returns the entry at positional indices (i, j)
func (m *SignalingMatrix) At(i, j int) float64 {
	return m.data[i][j]
}

// Set assigns the entry at positional indices (i, j)
func (m *SignalingMatrix) Set(i, j int, v float64) {
	m.data[i][j] = v
}

// Value looks up the entry for a receptor-role row key and ligand-role
// column key. The second return reports whether both keys exist.
func (m *SignalingMatrix) Value(row, col valueobjects.ClusterKey) (float64, bool) {
	i, okRow := m.rowIndex[row]
	j, okCol := m.colIndex[col]
	if !okRow || !okCol {
		return 0, false
	}
	return m.data[i][j], true
}

// SetValue assigns the entry for the given keys, reporting whether both
// keys exist
func (m *SignalingMatrix) SetValue(row, col valueobjects.ClusterKey, v float64) bool {
	i, okRow := m.rowIndex[row]
	j, okCol := m.colIndex[col]
	if !okRow || !okCol {
		return false
	}
	m.data[i][j] = v
	return true
}

// RowSum returns the sum of the receptor row for a cluster: the total
// signaling received by that cluster
func (m *SignalingMatrix) RowSum(cluster string) float64 {
	i, ok := m.rowIndex[valueobjects.ReceptorKey(cluster)]
	if !ok {
		return 0
	}
	sum := 0.0
	for _, v := range m.data[i] {
		sum += v
	}
	return sum
}

// ColSum returns the sum of the ligand column for a cluster: the total
// signaling emitted by that cluster
func (m *SignalingMatrix) ColSum(cluster string) float64 {
	j, ok := m.colIndex[valueobjects.LigandKey(cluster)]
	if !ok {
		return 0
	}
	sum := 0.0
	for i := range m.data {
		sum += m.data[i][j]
	}
	return sum
}

// Data returns a deep copy of the matrix values in row-major order
func (m *SignalingMatrix) Data() [][]float64 {
	out := make([][]float64, len(m.data))
	for i, row := range m.data {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

// Clone returns a deep copy of the matrix
func (m *SignalingMatrix) Clone() *SignalingMatrix {
	clone := &SignalingMatrix{
		rows:     append([]valueobjects.ClusterKey(nil), m.rows...),
		cols:     append([]valueobjects.ClusterKey(nil), m.cols...),
		rowIndex: make(map[valueobjects.ClusterKey]int, len(m.rowIndex)),
		colIndex: make(map[valueobjects.ClusterKey]int, len(m.colIndex)),
		data:     m.Data(),
	}
	for k, v := range m.rowIndex {
		clone.rowIndex[k] = v
	}
	for k, v := range m.colIndex {
		clone.colIndex[k] = v
	}
	return clone
}

// RenameCluster relabels a cluster on both axes. Unknown labels are a
// no-op so bulk renames can be applied blindly.
func (m *SignalingMatrix) RenameCluster(from, to string) {
	oldRow := valueobjects.ReceptorKey(from)
	if i, ok := m.rowIndex[oldRow]; ok {
		newRow := valueobjects.ReceptorKey(to)
		m.rows[i] = newRow
		delete(m.rowIndex, oldRow)
		m.rowIndex[newRow] = i
	}
	oldCol := valueobjects.LigandKey(from)
	if j, ok := m.colIndex[oldCol]; ok {
		newCol := valueobjects.LigandKey(to)
		m.cols[j] = newCol
		delete(m.colIndex, oldCol)
		m.colIndex[newCol] = j
	}
}
