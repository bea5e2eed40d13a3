package aggregates

import (
	"strconv"
	"time"

	"crosstalk/domain/analysis"
	"crosstalk/domain/core/valueobjects"
	"crosstalk/domain/events"
	pkgerrors "crosstalk/pkg/errors"
)

// SignalingNetwork is the aggregate root for a built cell-cell signaling
// network. The matrix and linkage index are produced once by the
// construction step and treated as immutable afterwards; every
// transform or graph assembly works on copies, so concurrent readers of
// one aggregate never observe mutation.
type SignalingNetwork struct {
	id         valueobjects.NetworkID
	userID     string
	name       string
	matrix     *analysis.SignalingMatrix
	linkage    *analysis.LinkageIndex
	levels     []string
	ligandSums map[string]map[string]float64
	universe   analysis.GeneSet
	geneOrder  []string
	colors     map[string]string
	createdAt  time.Time
	updatedAt  time.Time
	version    int
	events     []events.DomainEvent
}

// NewSignalingNetwork creates an aggregate from a construction result
func NewSignalingNetwork(userID, name string, result *analysis.BuildResult, levels []string, colors map[string]string) (*SignalingNetwork, error) {
	if userID == "" {
		return nil, pkgerrors.NewValidationError("userID required")
	}
	if name == "" {
		return nil, pkgerrors.NewValidationError("network name required")
	}
	if result == nil || result.Matrix == nil || result.Linkage == nil {
		return nil, pkgerrors.NewValidationError("construction result is incomplete")
	}

	now := time.Now()
	n := &SignalingNetwork{
		id:         valueobjects.NewNetworkID(),
		userID:     userID,
		name:       name,
		matrix:     result.Matrix,
		linkage:    result.Linkage,
		levels:     append([]string(nil), levels...),
		ligandSums: result.LigandSums,
		universe:   analysis.NewGeneSet(result.Genes),
		geneOrder:  append([]string(nil), result.Genes...),
		colors:     copyColors(colors),
		createdAt:  now,
		updatedAt:  now,
		version:    1,
	}

	n.addEvent(events.NewNetworkBuilt(n.id, userID, name, len(levels), now))
	return n, nil
}

// ReconstructNetwork recreates an aggregate from stored data without
// raising events
func ReconstructNetwork(
	id valueobjects.NetworkID,
	userID, name string,
	matrix *analysis.SignalingMatrix,
	linkage *analysis.LinkageIndex,
	levels []string,
	ligandSums map[string]map[string]float64,
	genes []string,
	colors map[string]string,
	createdAt, updatedAt time.Time,
	version int,
) (*SignalingNetwork, error) {
	if id.IsZero() || userID == "" || name == "" {
		return nil, pkgerrors.NewValidationError("required fields missing for network reconstruction")
	}
	if matrix == nil || linkage == nil {
		return nil, pkgerrors.NewPreconditionError("network has no signaling matrix or linkage index")
	}
	return &SignalingNetwork{
		id:         id,
		userID:     userID,
		name:       name,
		matrix:     matrix,
		linkage:    linkage,
		levels:     append([]string(nil), levels...),
		ligandSums: ligandSums,
		universe:   analysis.NewGeneSet(genes),
		geneOrder:  append([]string(nil), genes...),
		colors:     copyColors(colors),
		createdAt:  createdAt,
		updatedAt:  updatedAt,
		version:    version,
	}, nil
}

func copyColors(colors map[string]string) map[string]string {
	out := make(map[string]string, len(colors))
	for k, v := range colors {
		out[k] = v
	}
	return out
}

// ID returns the network's unique identifier
func (n *SignalingNetwork) ID() valueobjects.NetworkID { return n.id }

// UserID returns the owner's ID
func (n *SignalingNetwork) UserID() string { return n.userID }

// Name returns the network's name
func (n *SignalingNetwork) Name() string { return n.name }

// Levels returns the ordered cluster levels
func (n *SignalingNetwork) Levels() []string {
	return append([]string(nil), n.levels...)
}

// Colors returns the cluster color assignments
func (n *SignalingNetwork) Colors() map[string]string {
	return copyColors(n.colors)
}

// Genes returns the gene universe in expression row order
func (n *SignalingNetwork) Genes() []string {
	return append([]string(nil), n.geneOrder...)
}

// Matrix returns a copy of the raw signaling matrix
func (n *SignalingNetwork) Matrix() *analysis.SignalingMatrix {
	return n.matrix.Clone()
}

// Linkage returns a copy of the linkage index
func (n *SignalingNetwork) Linkage() *analysis.LinkageIndex {
	return n.linkage.Clone()
}

// CreatedAt returns when the network was built
func (n *SignalingNetwork) CreatedAt() time.Time { return n.createdAt }

// UpdatedAt returns when the network was last modified
func (n *SignalingNetwork) UpdatedAt() time.Time { return n.updatedAt }

// Version returns the aggregate version
func (n *SignalingNetwork) Version() int { return n.version }

// TransformedMatrix applies a matrix transform restricted to the given
// allowed scale modes and returns a fresh matrix
func (n *SignalingNetwork) TransformedMatrix(opts analysis.TransformOptions, allowedScales ...analysis.ScaleMode) (*analysis.SignalingMatrix, error) {
	if len(allowedScales) > 0 {
		if err := opts.Validate(allowedScales...); err != nil {
			return nil, err
		}
	}
	return n.matrix.Transform(opts)
}

// ClusterGraph assembles the cluster-level signaling graph, applying
// the transform before assembly. The cluster-network view admits the
// "sq" scale mode on top of the common set.
func (n *SignalingNetwork) ClusterGraph(transform analysis.TransformOptions, opts analysis.ClusterGraphOptions) (*analysis.Graph, error) {
	if err := transform.Validate(analysis.ScaleNone, analysis.ScaleSqrt, analysis.ScaleLog, analysis.ScaleSquare); err != nil {
		return nil, err
	}
	m, err := n.matrix.Transform(transform)
	if err != nil {
		return nil, err
	}
	if opts.Colors == nil {
		opts.Colors = n.colors
	}
	return analysis.BuildClusterGraph(m, n.levels, opts)
}

// GeneGraph assembles the gene association graph for the given target
// clusters (nil means all levels). Ligand node sizes come from the
// per-cluster signaling sums recorded at build time; when a ligand name
// appears in several requested clusters the first cluster's sum wins.
func (n *SignalingNetwork) GeneGraph(clusters []string, opts analysis.GeneGraphOptions) (*analysis.Graph, error) {
	resolved, err := n.resolveClusters(clusters)
	if err != nil {
		return nil, err
	}
	if opts.LigandSizes == nil {
		opts.LigandSizes = n.ligandSignalSums(resolved)
	}
	return analysis.BuildGeneGraph(n.linkage, resolved, n.universe, opts)
}

// CollateItems traverses the linkage index across the given clusters
// (nil means all levels) and returns the deduplicated item sets
func (n *SignalingNetwork) CollateItems(clusters []string) (analysis.Collation, error) {
	resolved, err := n.resolveClusters(clusters)
	if err != nil {
		return analysis.Collation{}, err
	}
	return analysis.Collate(n.linkage, resolved, n.universe), nil
}

// resolveClusters substitutes the full level set for a nil cluster
// selection. An explicitly empty selection stays empty; having no
// levels at all is a precondition failure.
func (n *SignalingNetwork) resolveClusters(clusters []string) ([]string, error) {
	if clusters != nil {
		return clusters, nil
	}
	if len(n.levels) == 0 {
		return nil, pkgerrors.NewPreconditionError("no clusters available")
	}
	return n.levels, nil
}

// ligandSignalSums merges per-cluster ligand sums across the requested
// clusters, keeping the first occurrence when a ligand name repeats
func (n *SignalingNetwork) ligandSignalSums(clusters []string) map[string]float64 {
	out := make(map[string]float64)
	for _, cluster := range clusters {
		for lig, sum := range n.ligandSums[cluster] {
			if _, dup := out[lig]; dup {
				continue
			}
			out[lig] = sum
		}
	}
	return out
}

// LigandSums returns the recorded per-cluster ligand expression sums
func (n *SignalingNetwork) LigandSums() map[string]map[string]float64 {
	out := make(map[string]map[string]float64, len(n.ligandSums))
	for cluster, sums := range n.ligandSums {
		inner := make(map[string]float64, len(sums))
		for k, v := range sums {
			inner[k] = v
		}
		out[cluster] = inner
	}
	return out
}

// RenameClusters remaps cluster labels across the levels, the matrix
// axes, the linkage index, and the color assignments in one operation
func (n *SignalingNetwork) RenameClusters(renames map[string]string) error {
	if len(renames) == 0 {
		return pkgerrors.NewValidationError("no renames provided")
	}
	existing := make(map[string]struct{}, len(n.levels))
	for _, l := range n.levels {
		existing[l] = struct{}{}
	}
	sources := make(map[string]string, len(renames))
	for from, to := range renames {
		if to == "" {
			return pkgerrors.NewValidationError("cluster cannot be renamed to an empty label")
		}
		if _, ok := existing[from]; !ok {
			return pkgerrors.NewNotFoundError("cluster " + from)
		}
		if prev, dup := sources[to]; dup {
			return pkgerrors.NewValidationError("clusters " + prev + " and " + from + " both rename to " + to)
		}
		sources[to] = from
	}
	for _, to := range renames {
		_, taken := existing[to]
		_, vacated := renames[to]
		if taken && !vacated {
			return pkgerrors.NewValidationError("cluster " + to + " already exists")
		}
	}

	// Swaps and chains (A->B while B->C) make sequential relabeling
	// order-dependent, so route every source through a placeholder
	// label that can never collide with a real cluster.
	temps := make(map[string]string, len(renames))
	i := 0
	for from := range renames {
		temp := "\x00rename-" + strconv.Itoa(i)
		i++
		temps[from] = temp
		n.applyRename(from, temp)
	}
	for from, to := range renames {
		n.applyRename(temps[from], to)
	}

	n.updatedAt = time.Now()
	n.version++
	n.addEvent(events.NewClustersRenamed(n.id, renames, n.updatedAt))
	return nil
}

func (n *SignalingNetwork) applyRename(from, to string) {
	for i, l := range n.levels {
		if l == from {
			n.levels[i] = to
		}
	}
	n.matrix.RenameCluster(from, to)
	n.linkage.RenameCluster(from, to)
	if color, ok := n.colors[from]; ok {
		delete(n.colors, from)
		n.colors[to] = color
	}
	if sums, ok := n.ligandSums[from]; ok {
		delete(n.ligandSums, from)
		n.ligandSums[to] = sums
	}
}

// MarkDeleted raises the deletion event
func (n *SignalingNetwork) MarkDeleted() {
	n.addEvent(events.NewNetworkDeleted(n.id, n.userID, time.Now()))
}

// DomainEvents returns the events raised since the last drain
func (n *SignalingNetwork) DomainEvents() []events.DomainEvent {
	return append([]events.DomainEvent(nil), n.events...)
}

// ClearEvents drains the raised events
func (n *SignalingNetwork) ClearEvents() {
	n.events = nil
}

func (n *SignalingNetwork) addEvent(event events.DomainEvent) {
	n.events = append(n.events, event)
}
