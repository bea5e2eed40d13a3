package analysis

import (
	"math"

	"crosstalk/domain/core/valueobjects"
	pkgerrors "crosstalk/pkg/errors"
)

// ScaleBy selects how cluster node sizes are derived from the matrix
type ScaleBy string

const (
	ScaleByLigandSignal   ScaleBy = "lig_sig"
	ScaleByReceptorSignal ScaleBy = "rec_sig"
	ScaleByNone           ScaleBy = "none"
)

// ClusterGraphOptions configures cluster-level graph assembly
type ClusterGraphOptions struct {
	// ScaleBy selects node sizing: summed outgoing ligand signaling,
	// summed incoming receptor signaling, or a constant
	ScaleBy ScaleBy
	// VertScale multiplies node sizes; it is the constant size when
	// ScaleBy is "none"
	VertScale float64
	// EdgeWeight multiplies matrix entries into edge weights
	EdgeWeight float64
	// Colors maps cluster labels to node colors; edges inherit the
	// color of their ligand cluster
	Colors map[string]string
}

// DefaultClusterGraphOptions mirrors the conventional rendering defaults
func DefaultClusterGraphOptions() ClusterGraphOptions {
	return ClusterGraphOptions{
		ScaleBy:    ScaleByLigandSignal,
		VertScale:  3,
		EdgeWeight: 0.3,
	}
}

// BuildClusterGraph assembles the directed cluster-level signaling
// graph from a signaling matrix. Every ordered (receptor-cluster,
// ligand-cluster) pair with a nonzero matrix entry yields one edge from
// the ligand cluster to the receptor cluster; exact zeros produce no
// edge, which is a meaningful sparsification rather than a rendering
// artifact. Self-loops are preserved when the diagonal entry is nonzero.
func BuildClusterGraph(m *SignalingMatrix, levels []string, opts ClusterGraphOptions) (*Graph, error) {
	switch opts.ScaleBy {
	case ScaleByLigandSignal, ScaleByReceptorSignal, ScaleByNone:
	default:
		return nil, pkgerrors.NewConfigError("scale_by mode", string(opts.ScaleBy),
			string(ScaleByLigandSignal), string(ScaleByReceptorSignal), string(ScaleByNone))
	}

	g := NewGraph()

	for _, cluster := range levels {
		var size float64
		switch opts.ScaleBy {
		case ScaleByLigandSignal:
			size = math.Asinh(m.ColSum(cluster)) * opts.VertScale
		case ScaleByReceptorSignal:
			size = math.Asinh(m.RowSum(cluster)) * opts.VertScale
		case ScaleByNone:
			size = opts.VertScale
		}
		g.AddNode(GraphNode{
			ID:    cluster,
			Class: NodeClassCluster,
			Color: opts.Colors[cluster],
			Size:  size,
		})
	}

	for _, recCluster := range levels {
		for _, ligCluster := range levels {
			v, ok := m.Value(valueobjects.ReceptorKey(recCluster), valueobjects.LigandKey(ligCluster))
			if !ok || v == 0 {
				continue
			}
			g.AddEdge(GraphEdge{
				Source: ligCluster,
				Target: recCluster,
				Weight: v * opts.EdgeWeight,
				Color:  opts.Colors[ligCluster],
			})
		}
	}

	return g, nil
}

// GeneGraphOptions configures gene-level graph assembly
type GeneGraphOptions struct {
	// ClassColors maps node classes to default colors
	ClassColors map[NodeClass]string
	// NodeColors overrides colors per gene
	NodeColors map[string]string
	// LigandSizes scales ligand nodes by aggregated per-cluster
	// signaling sums; genes absent from the map get DefaultSize
	LigandSizes map[string]float64
	// DefaultSize is the size for every node without an explicit scale
	DefaultSize float64
}

// DefaultGeneGraphOptions returns the conventional defaults
func DefaultGeneGraphOptions() GeneGraphOptions {
	return GeneGraphOptions{DefaultSize: 10}
}

// BuildGeneGraph assembles the gene association graph for a set of
// target clusters: transcription factors collated from the linkage
// index, edges receptor to transcription factor and ligand to receptor.
// Ligands are restricted to the gene universe. The graph is simplified
// on assembly: duplicate edges collapse, self-loops survive.
func BuildGeneGraph(idx *LinkageIndex, clusters []string, universe GeneUniverse, opts GeneGraphOptions) (*Graph, error) {
	if opts.DefaultSize == 0 {
		opts.DefaultSize = 10
	}

	g := NewGraph()
	collation := Collate(idx, clusters, universe)

	addGene := func(id string, class NodeClass) {
		color := opts.ClassColors[class]
		if override, ok := opts.NodeColors[id]; ok {
			color = override
		}
		size := opts.DefaultSize
		if class == NodeClassLigand {
			if s, ok := opts.LigandSizes[id]; ok {
				size = s
			}
		}
		g.AddNode(GraphNode{ID: id, Class: class, Color: color, Size: size})
	}

	for _, lig := range collation.Ligands {
		addGene(lig, NodeClassLigand)
	}
	for _, rec := range collation.Receptors {
		addGene(rec, NodeClassReceptor)
	}
	for _, tf := range collation.Features {
		addGene(tf, NodeClassFeature)
	}

	ligandOK := make(map[string]struct{}, len(collation.Ligands))
	for _, lig := range collation.Ligands {
		ligandOK[lig] = struct{}{}
	}

	for _, tf := range collation.Features {
		for _, rec := range idx.ReceptorsFor(tf) {
			g.AddEdge(GraphEdge{
				Source: rec,
				Target: tf,
				Weight: 1,
				Color:  nodeColor(g, rec),
			})
			for _, lig := range idx.LigandsFor(rec) {
				if _, ok := ligandOK[lig]; !ok {
					continue
				}
				g.AddEdge(GraphEdge{
					Source: lig,
					Target: rec,
					Weight: 1,
					Color:  nodeColor(g, lig),
				})
			}
		}
	}

	return g, nil
}

func nodeColor(g *Graph, id string) string {
	if n, ok := g.Node(id); ok {
		return n.Color
	}
	return ""
}
