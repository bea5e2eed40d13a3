package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildClusterGraph_ZeroEntriesProduceNoEdge(t *testing.T) {
	// Diagonal matrix: each cluster only signals to itself
	m := matrixFromData(t, []string{"A", "B"}, [][]float64{
		{1, 0},
		{0, 1},
	})

	g, err := BuildClusterGraph(m, []string{"A", "B"}, DefaultClusterGraphOptions())

	require.NoError(t, err)
	assert.Equal(t, 2, g.NodeCount())
	assert.Equal(t, 2, g.EdgeCount())

	// Only the self-loops exist
	_, ok := g.Edge("A", "A")
	assert.True(t, ok)
	_, ok = g.Edge("B", "B")
	assert.True(t, ok)
	_, ok = g.Edge("A", "B")
	assert.False(t, ok)
	_, ok = g.Edge("B", "A")
	assert.False(t, ok)
}

func TestBuildClusterGraph_EdgeDirectionLigandToReceptor(t *testing.T) {
	// Entry (R_A, L_B) = 4: B's ligands drive A's receptors
	m := matrixFromData(t, []string{"A", "B"}, [][]float64{
		{0, 4},
		{0, 0},
	})

	opts := DefaultClusterGraphOptions()
	opts.EdgeWeight = 0.5
	g, err := BuildClusterGraph(m, []string{"A", "B"}, opts)

	require.NoError(t, err)
	edge, ok := g.Edge("B", "A")
	require.True(t, ok)
	assert.InDelta(t, 2.0, edge.Weight, 1e-12)

	_, ok = g.Edge("A", "B")
	assert.False(t, ok)
}

func TestBuildClusterGraph_NodeSizing(t *testing.T) {
	m := matrixFromData(t, []string{"A", "B"}, [][]float64{
		{0, 3},
		{0, 0},
	})

	opts := ClusterGraphOptions{ScaleBy: ScaleByLigandSignal, VertScale: 2, EdgeWeight: 1}
	g, err := BuildClusterGraph(m, []string{"A", "B"}, opts)
	require.NoError(t, err)

	// B emits 3 in total, A emits nothing
	nodeB, _ := g.Node("B")
	assert.InDelta(t, math.Asinh(3)*2, nodeB.Size, 1e-12)
	nodeA, _ := g.Node("A")
	assert.Equal(t, 0.0, nodeA.Size)

	opts.ScaleBy = ScaleByReceptorSignal
	g, err = BuildClusterGraph(m, []string{"A", "B"}, opts)
	require.NoError(t, err)
	nodeA, _ = g.Node("A")
	assert.InDelta(t, math.Asinh(3)*2, nodeA.Size, 1e-12)

	opts.ScaleBy = ScaleByNone
	g, err = BuildClusterGraph(m, []string{"A", "B"}, opts)
	require.NoError(t, err)
	nodeA, _ = g.Node("A")
	assert.Equal(t, 2.0, nodeA.Size)
}

func TestBuildClusterGraph_ColorsInheritedFromLigandCluster(t *testing.T) {
	m := matrixFromData(t, []string{"A", "B"}, [][]float64{
		{0, 4},
		{0, 0},
	})

	opts := DefaultClusterGraphOptions()
	opts.Colors = map[string]string{"A": "#ff0000", "B": "#0000ff"}
	g, err := BuildClusterGraph(m, []string{"A", "B"}, opts)

	require.NoError(t, err)
	edge, _ := g.Edge("B", "A")
	assert.Equal(t, "#0000ff", edge.Color)
}

func TestBuildClusterGraph_InvalidScaleBy(t *testing.T) {
	m := NewSignalingMatrix([]string{"A"})

	opts := DefaultClusterGraphOptions()
	opts.ScaleBy = ScaleBy("volume")
	_, err := BuildClusterGraph(m, []string{"A"}, opts)

	assert.Error(t, err)
}

func TestBuildGeneGraph_NodesAndEdges(t *testing.T) {
	idx := testLinkage()
	universe := NewGeneSet([]string{"lig1", "lig2", "lig3"})

	g, err := BuildGeneGraph(idx, []string{"A", "B"}, universe, DefaultGeneGraphOptions())

	require.NoError(t, err)
	assert.Equal(t, []string{"lig1", "lig2", "lig3"}, g.NodesByClass(NodeClassLigand))
	assert.Equal(t, []string{"rec1", "rec2"}, g.NodesByClass(NodeClassReceptor))
	assert.Equal(t, []string{"tf1", "tf2"}, g.NodesByClass(NodeClassFeature))

	// Receptor -> feature edges
	_, ok := g.Edge("rec1", "tf1")
	assert.True(t, ok)
	_, ok = g.Edge("rec1", "tf2")
	assert.True(t, ok)
	_, ok = g.Edge("rec2", "tf2")
	assert.True(t, ok)

	// Ligand -> receptor edges
	_, ok = g.Edge("lig1", "rec1")
	assert.True(t, ok)
	_, ok = g.Edge("lig3", "rec2")
	assert.True(t, ok)

	// No ligand -> feature shortcuts
	_, ok = g.Edge("lig1", "tf1")
	assert.False(t, ok)
}

func TestBuildGeneGraph_UniverseFiltersLigandNodes(t *testing.T) {
	idx := testLinkage()
	universe := NewGeneSet([]string{"lig1"})

	g, err := BuildGeneGraph(idx, []string{"A", "B"}, universe, DefaultGeneGraphOptions())

	require.NoError(t, err)
	assert.Equal(t, []string{"lig1"}, g.NodesByClass(NodeClassLigand))
	_, ok := g.Edge("lig2", "rec1")
	assert.False(t, ok)
}

func TestBuildGeneGraph_LigandSizes(t *testing.T) {
	idx := testLinkage()
	universe := NewGeneSet([]string{"lig1", "lig2", "lig3"})

	opts := GeneGraphOptions{
		LigandSizes: map[string]float64{"lig1": 42},
		DefaultSize: 7,
	}
	g, err := BuildGeneGraph(idx, []string{"A"}, universe, opts)

	require.NoError(t, err)
	sized, _ := g.Node("lig1")
	assert.Equal(t, 42.0, sized.Size)
	unsized, _ := g.Node("lig2")
	assert.Equal(t, 7.0, unsized.Size)
	// Receptors never take ligand sizes
	rec, _ := g.Node("rec1")
	assert.Equal(t, 7.0, rec.Size)
}

func TestBuildGeneGraph_ClassAndOverrideColors(t *testing.T) {
	idx := testLinkage()
	universe := NewGeneSet([]string{"lig1", "lig2", "lig3"})

	opts := GeneGraphOptions{
		ClassColors: map[NodeClass]string{NodeClassLigand: "blue", NodeClassReceptor: "green"},
		NodeColors:  map[string]string{"lig2": "red"},
		DefaultSize: 10,
	}
	g, err := BuildGeneGraph(idx, []string{"A", "B"}, universe, opts)

	require.NoError(t, err)
	n, _ := g.Node("lig1")
	assert.Equal(t, "blue", n.Color)
	n, _ = g.Node("lig2")
	assert.Equal(t, "red", n.Color)
	n, _ = g.Node("rec1")
	assert.Equal(t, "green", n.Color)

	// Edges take the source node's color
	edge, _ := g.Edge("lig2", "rec1")
	assert.Equal(t, "red", edge.Color)
}
