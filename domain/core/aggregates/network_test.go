package aggregates

import (
	"testing"

	"crosstalk/domain/analysis"
	"crosstalk/domain/core/valueobjects"
	"crosstalk/domain/events"
	pkgerrors "crosstalk/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildResult(t *testing.T) *analysis.BuildResult {
	t.Helper()

	matrix := analysis.NewSignalingMatrix([]string{"A", "B"})
	matrix.Set(0, 1, 4) // B's ligands drive A's receptors

	linkage := analysis.NewLinkageIndex()
	linkage.LinkClusterTFs("A", "tf1")
	linkage.LinkTFReceptors("tf1", "rec1")
	linkage.LinkReceptorLigands("rec1", "lig1")

	return &analysis.BuildResult{
		Matrix:  matrix,
		Linkage: linkage,
		LigandSums: map[string]map[string]float64{
			"A": {"lig1": 1},
			"B": {"lig1": 12},
		},
		Genes: []string{"rec1", "lig1"},
	}
}

func newNetwork(t *testing.T) *SignalingNetwork {
	t.Helper()
	n, err := NewSignalingNetwork("user123", "pancreas", buildResult(t), []string{"A", "B"},
		map[string]string{"A": "#ff0000"})
	require.NoError(t, err)
	return n
}

func TestNewSignalingNetwork_RaisesBuiltEvent(t *testing.T) {
	n := newNetwork(t)

	raised := n.DomainEvents()
	require.Len(t, raised, 1)
	assert.Equal(t, events.EventTypeNetworkBuilt, raised[0].GetEventType())

	n.ClearEvents()
	assert.Empty(t, n.DomainEvents())
}

func TestNewSignalingNetwork_Validation(t *testing.T) {
	result := buildResult(t)

	_, err := NewSignalingNetwork("", "name", result, []string{"A"}, nil)
	assert.Error(t, err)

	_, err = NewSignalingNetwork("user123", "", result, []string{"A"}, nil)
	assert.Error(t, err)

	_, err = NewSignalingNetwork("user123", "name", nil, []string{"A"}, nil)
	assert.Error(t, err)

	_, err = NewSignalingNetwork("user123", "name", &analysis.BuildResult{}, []string{"A"}, nil)
	assert.Error(t, err)
}

func TestSignalingNetwork_MatrixIsACopy(t *testing.T) {
	n := newNetwork(t)

	m := n.Matrix()
	m.Set(0, 1, 999)

	assert.Equal(t, 4.0, n.Matrix().At(0, 1))
}

func TestSignalingNetwork_ClusterGraphAdmitsSquareScale(t *testing.T) {
	n := newNetwork(t)

	transform := analysis.DefaultTransformOptions()
	transform.Scale = analysis.ScaleSquare

	g, err := n.ClusterGraph(transform, analysis.DefaultClusterGraphOptions())
	require.NoError(t, err)

	edge, ok := g.Edge("B", "A")
	require.True(t, ok)
	// 4 squared, times the default edge weight
	assert.InDelta(t, 16*0.3, edge.Weight, 1e-12)
}

func TestSignalingNetwork_TransformedMatrixRestrictsScales(t *testing.T) {
	n := newNetwork(t)

	opts := analysis.DefaultTransformOptions()
	opts.Scale = analysis.ScaleSquare

	// The matrix view does not admit "sq"
	_, err := n.TransformedMatrix(opts,
		analysis.ScaleNone, analysis.ScaleSqrt, analysis.ScaleLog)
	assert.Error(t, err)

	opts.Scale = analysis.ScaleSqrt
	m, err := n.TransformedMatrix(opts,
		analysis.ScaleNone, analysis.ScaleSqrt, analysis.ScaleLog)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, m.At(0, 1), 1e-12)
}

func TestSignalingNetwork_GeneGraphSizesLigandsFromSums(t *testing.T) {
	n := newNetwork(t)

	g, err := n.GeneGraph([]string{"B"}, analysis.GeneGraphOptions{DefaultSize: 10})
	require.NoError(t, err)

	lig, ok := g.Node("lig1")
	require.True(t, ok)
	assert.Equal(t, 12.0, lig.Size)
}

func TestSignalingNetwork_GeneGraphFirstClusterSumWins(t *testing.T) {
	n := newNetwork(t)

	g, err := n.GeneGraph([]string{"A", "B"}, analysis.GeneGraphOptions{DefaultSize: 10})
	require.NoError(t, err)

	lig, ok := g.Node("lig1")
	require.True(t, ok)
	assert.Equal(t, 1.0, lig.Size)
}

func TestSignalingNetwork_CollateItems(t *testing.T) {
	n := newNetwork(t)

	// nil selects all levels
	out, err := n.CollateItems(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"tf1"}, out.Features)
	assert.Equal(t, []string{"rec1"}, out.Receptors)
	assert.Equal(t, []string{"lig1"}, out.Ligands)

	// an explicitly empty selection stays empty
	out, err = n.CollateItems([]string{})
	require.NoError(t, err)
	assert.Empty(t, out.Features)
}

func TestSignalingNetwork_RenameClusters(t *testing.T) {
	n := newNetwork(t)
	n.ClearEvents()

	err := n.RenameClusters(map[string]string{"A": "alpha"})
	require.NoError(t, err)

	assert.Equal(t, []string{"alpha", "B"}, n.Levels())
	assert.Equal(t, map[string]string{"alpha": "#ff0000"}, n.Colors())
	assert.Equal(t, []string{"tf1"}, n.Linkage().TFsFor("alpha"))
	assert.Equal(t, 2, n.Version())

	raised := n.DomainEvents()
	require.Len(t, raised, 1)
	assert.Equal(t, events.EventTypeClustersRenamed, raised[0].GetEventType())
}

func TestSignalingNetwork_RenameClustersValidation(t *testing.T) {
	n := newNetwork(t)

	assert.Error(t, n.RenameClusters(nil))
	assert.Error(t, n.RenameClusters(map[string]string{"missing": "x"}))
	assert.Error(t, n.RenameClusters(map[string]string{"A": ""}))

	// A failed rename leaves the aggregate untouched
	assert.Equal(t, []string{"A", "B"}, n.Levels())
	assert.Equal(t, 1, n.Version())
}

func TestSignalingNetwork_RenameClustersRejectsExistingLabel(t *testing.T) {
	matrix := analysis.NewSignalingMatrix([]string{"A", "B"})
	matrix.Set(0, 0, 2)
	matrix.Set(1, 1, 3)
	result := &analysis.BuildResult{
		Matrix:  matrix,
		Linkage: analysis.NewLinkageIndex(),
	}
	n, err := NewSignalingNetwork("user123", "pancreas", result, []string{"A", "B"}, nil)
	require.NoError(t, err)
	n.ClearEvents()

	err = n.RenameClusters(map[string]string{"A": "B"})

	require.Error(t, err)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeValidation))

	// The aggregate is untouched: both rows stay addressable
	assert.Equal(t, []string{"A", "B"}, n.Levels())
	vA, okA := n.Matrix().Value(valueobjects.ReceptorKey("A"), valueobjects.LigandKey("A"))
	vB, okB := n.Matrix().Value(valueobjects.ReceptorKey("B"), valueobjects.LigandKey("B"))
	require.True(t, okA)
	require.True(t, okB)
	assert.Equal(t, 2.0, vA)
	assert.Equal(t, 3.0, vB)
	assert.Equal(t, 1, n.Version())
	assert.Empty(t, n.DomainEvents())
}

func TestSignalingNetwork_RenameClustersRejectsDuplicateTargets(t *testing.T) {
	n := newNetwork(t)

	err := n.RenameClusters(map[string]string{"A": "merged", "B": "merged"})

	require.Error(t, err)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeValidation))
	assert.Equal(t, []string{"A", "B"}, n.Levels())
}

func TestSignalingNetwork_RenameClustersSwap(t *testing.T) {
	matrix := analysis.NewSignalingMatrix([]string{"A", "B"})
	matrix.Set(0, 0, 2)
	matrix.Set(1, 1, 3)
	result := &analysis.BuildResult{
		Matrix:  matrix,
		Linkage: analysis.NewLinkageIndex(),
	}
	n, err := NewSignalingNetwork("user123", "pancreas", result, []string{"A", "B"}, nil)
	require.NoError(t, err)

	// A label held by another cluster is fair game when that cluster
	// vacates it in the same command
	err = n.RenameClusters(map[string]string{"A": "B", "B": "A"})
	require.NoError(t, err)

	assert.Equal(t, []string{"B", "A"}, n.Levels())
	vB, okB := n.Matrix().Value(valueobjects.ReceptorKey("B"), valueobjects.LigandKey("B"))
	vA, okA := n.Matrix().Value(valueobjects.ReceptorKey("A"), valueobjects.LigandKey("A"))
	require.True(t, okA)
	require.True(t, okB)
	assert.Equal(t, 2.0, vB) // A's diagonal value now lives under B
	assert.Equal(t, 3.0, vA)
}

func TestSignalingNetwork_MarkDeleted(t *testing.T) {
	n := newNetwork(t)
	n.ClearEvents()

	n.MarkDeleted()

	raised := n.DomainEvents()
	require.Len(t, raised, 1)
	assert.Equal(t, events.EventTypeNetworkDeleted, raised[0].GetEventType())
}
