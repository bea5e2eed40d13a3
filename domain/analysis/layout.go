package analysis

import (
	"math"
	"math/rand"

	pkgerrors "crosstalk/pkg/errors"
)

// LayoutMode selects the 2D layout computed for an assembled graph
type LayoutMode string

const (
	LayoutGrid   LayoutMode = "grid"
	LayoutCircle LayoutMode = "circle"
	LayoutRandom LayoutMode = "random"
)

// Position is a 2D layout coordinate
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ComputeLayout returns node coordinates for a graph. The grid layout is
// the three-column gene schematic; circle and random are generic
// fallbacks. seed only affects the random layout.
func ComputeLayout(g *Graph, mode LayoutMode, seed int64) (map[string]Position, error) {
	switch mode {
	case LayoutGrid:
		return GridLayout(g), nil
	case LayoutCircle:
		return circleLayout(g), nil
	case LayoutRandom:
		return randomLayout(g, seed), nil
	default:
		return nil, pkgerrors.NewConfigError("layout mode", string(mode),
			string(LayoutGrid), string(LayoutCircle), string(LayoutRandom))
	}
}

// GridLayout places ligand, receptor, and feature nodes in three fixed
// columns at x = -0.75, 0, and 0.75. Within a column the positions
// 1..n are spread and centered as (position/mean(positions) - 1) * 2, so
// the schematic is independent of any graph-layout algorithm.
func GridLayout(g *Graph) map[string]Position {
	out := make(map[string]Position, g.NodeCount())
	columns := []struct {
		class NodeClass
		x     float64
	}{
		{NodeClassLigand, -0.75},
		{NodeClassReceptor, 0},
		{NodeClassFeature, 0.75},
	}
	for _, col := range columns {
		ids := g.NodesByClass(col.class)
		n := len(ids)
		if n == 0 {
			continue
		}
		mean := float64(n+1) / 2
		for i, id := range ids {
			pos := float64(i + 1)
			out[id] = Position{X: col.x, Y: (pos/mean - 1) * 2}
		}
	}
	return out
}

func circleLayout(g *Graph) map[string]Position {
	nodes := g.Nodes()
	out := make(map[string]Position, len(nodes))
	n := float64(len(nodes))
	for i, node := range nodes {
		theta := 2 * math.Pi * float64(i) / n
		out[node.ID] = Position{X: math.Cos(theta), Y: math.Sin(theta)}
	}
	return out
}

func randomLayout(g *Graph, seed int64) map[string]Position {
	rng := rand.New(rand.NewSource(seed))
	nodes := g.Nodes()
	out := make(map[string]Position, len(nodes))
	for _, node := range nodes {
		out[node.ID] = Position{X: rng.Float64()*2 - 1, Y: rng.Float64()*2 - 1}
	}
	return out
}
