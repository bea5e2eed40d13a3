package analysis

// NodeClass classifies graph nodes for coloring and layout
type NodeClass string

const (
	NodeClassCluster  NodeClass = "cluster"
	NodeClassLigand   NodeClass = "ligand"
	NodeClassReceptor NodeClass = "receptor"
	NodeClassFeature  NodeClass = "feature"
)

// GraphNode is a node of an assembled signaling graph with the
// attributes the rendering layer consumes
type GraphNode struct {
	ID    string    `json:"id"`
	Class NodeClass `json:"class"`
	Color string    `json:"color,omitempty"`
	Size  float64   `json:"size"`
}

// GraphEdge is a directed attributed edge
type GraphEdge struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight float64 `json:"weight"`
	Color  string  `json:"color,omitempty"`
}

type edgeKey struct {
	source, target string
}

// Graph is the ephemeral output of the network assemblers: built fresh
// per call, consumed by the rendering layer, never persisted. Duplicate
// edges are collapsed on insert; self-loops are valid edges.
type Graph struct {
	nodes     []GraphNode
	nodeIndex map[string]int
	edges     []GraphEdge
	edgeIndex map[edgeKey]int
}

// NewGraph creates an empty graph
func NewGraph() *Graph {
	return &Graph{
		nodeIndex: make(map[string]int),
		edgeIndex: make(map[edgeKey]int),
	}
}

// AddNode inserts a node, keeping the first occurrence when the ID is
// already present
func (g *Graph) AddNode(node GraphNode) {
	if _, exists := g.nodeIndex[node.ID]; exists {
		return
	}
	g.nodeIndex[node.ID] = len(g.nodes)
	g.nodes = append(g.nodes, node)
}

// AddEdge inserts a directed edge, collapsing duplicates on the
// (source, target) pair. Self-loops are preserved.
func (g *Graph) AddEdge(edge GraphEdge) {
	key := edgeKey{source: edge.Source, target: edge.Target}
	if _, exists := g.edgeIndex[key]; exists {
		return
	}
	g.edgeIndex[key] = len(g.edges)
	g.edges = append(g.edges, edge)
}

// Node returns the node with the given ID
func (g *Graph) Node(id string) (GraphNode, bool) {
	i, ok := g.nodeIndex[id]
	if !ok {
		return GraphNode{}, false
	}
	return g.nodes[i], true
}

// Edge returns the edge for a (source, target) pair
func (g *Graph) Edge(source, target string) (GraphEdge, bool) {
	i, ok := g.edgeIndex[edgeKey{source: source, target: target}]
	if !ok {
		return GraphEdge{}, false
	}
	return g.edges[i], true
}

// Nodes returns the nodes in insertion order
func (g *Graph) Nodes() []GraphNode {
	return append([]GraphNode(nil), g.nodes...)
}

// Edges returns the edges in insertion order
func (g *Graph) Edges() []GraphEdge {
	return append([]GraphEdge(nil), g.edges...)
}

// NodeCount returns the number of nodes
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// NodesByClass returns the node IDs of one class, in insertion order
func (g *Graph) NodesByClass(class NodeClass) []string {
	var out []string
	for _, n := range g.nodes {
		if n.Class == class {
			out = append(out, n.ID)
		}
	}
	return out
}
