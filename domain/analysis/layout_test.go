package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func geneGraphForLayout(t *testing.T) *Graph {
	t.Helper()
	idx := testLinkage()
	universe := NewGeneSet([]string{"lig1", "lig2", "lig3"})
	g, err := BuildGeneGraph(idx, []string{"A", "B"}, universe, DefaultGeneGraphOptions())
	require.NoError(t, err)
	return g
}

func TestGridLayout_ThreeColumns(t *testing.T) {
	g := geneGraphForLayout(t)

	pos := GridLayout(g)

	for _, lig := range []string{"lig1", "lig2", "lig3"} {
		assert.Equal(t, -0.75, pos[lig].X)
	}
	for _, rec := range []string{"rec1", "rec2"} {
		assert.Equal(t, 0.0, pos[rec].X)
	}
	for _, tf := range []string{"tf1", "tf2"} {
		assert.Equal(t, 0.75, pos[tf].X)
	}
}

func TestGridLayout_ColumnSpread(t *testing.T) {
	g := geneGraphForLayout(t)

	pos := GridLayout(g)

	// Three ligands: positions 1,2,3 with mean 2 give y = -1, 0, 1
	assert.InDelta(t, -1.0, pos["lig1"].Y, 1e-12)
	assert.InDelta(t, 0.0, pos["lig2"].Y, 1e-12)
	assert.InDelta(t, 1.0, pos["lig3"].Y, 1e-12)

	// Two receptors: positions 1,2 with mean 1.5 give y = -2/3, 2/3
	assert.InDelta(t, -2.0/3.0, pos["rec1"].Y, 1e-12)
	assert.InDelta(t, 2.0/3.0, pos["rec2"].Y, 1e-12)
}

func TestComputeLayout_Circle(t *testing.T) {
	g := NewGraph()
	g.AddNode(GraphNode{ID: "a"})
	g.AddNode(GraphNode{ID: "b"})
	g.AddNode(GraphNode{ID: "c"})
	g.AddNode(GraphNode{ID: "d"})

	pos, err := ComputeLayout(g, LayoutCircle, 0)

	require.NoError(t, err)
	require.Len(t, pos, 4)
	for _, p := range pos {
		assert.InDelta(t, 1.0, math.Hypot(p.X, p.Y), 1e-12)
	}
	assert.InDelta(t, 1.0, pos["a"].X, 1e-12)
	assert.InDelta(t, 0.0, pos["a"].Y, 1e-12)
}

func TestComputeLayout_RandomIsSeeded(t *testing.T) {
	g := geneGraphForLayout(t)

	first, err := ComputeLayout(g, LayoutRandom, 42)
	require.NoError(t, err)
	second, err := ComputeLayout(g, LayoutRandom, 42)
	require.NoError(t, err)
	different, err := ComputeLayout(g, LayoutRandom, 43)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotEqual(t, first, different)

	for _, p := range first {
		assert.GreaterOrEqual(t, p.X, -1.0)
		assert.LessOrEqual(t, p.X, 1.0)
	}
}

func TestComputeLayout_UnknownMode(t *testing.T) {
	g := NewGraph()

	_, err := ComputeLayout(g, LayoutMode("force"), 0)

	assert.Error(t, err)
}
