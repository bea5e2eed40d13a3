package analysis

// LinkageIndex is the three-tier mapping traversed from a cluster to its
// candidate signaling chain: cluster to differentially-expressed
// transcription factors, transcription factor to linked receptors, and
// receptor to candidate ligands. It is built once at network
// construction time and read-only afterwards; the three namespaces are
// distinct so traversal never cycles.
type LinkageIndex struct {
	clusterTFs      map[string][]string
	clusterOrder    []string
	tfReceptors     map[string][]string
	tfOrder         []string
	receptorLigands map[string][]string
	receptorOrder   []string
}

// NewLinkageIndex creates an empty index
func NewLinkageIndex() *LinkageIndex {
	return &LinkageIndex{
		clusterTFs:      make(map[string][]string),
		tfReceptors:     make(map[string][]string),
		receptorLigands: make(map[string][]string),
	}
}

// LinkClusterTFs appends transcription factors to a cluster's list,
// preserving insertion order
func (idx *LinkageIndex) LinkClusterTFs(cluster string, tfs ...string) {
	if _, ok := idx.clusterTFs[cluster]; !ok {
		idx.clusterOrder = append(idx.clusterOrder, cluster)
	}
	idx.clusterTFs[cluster] = append(idx.clusterTFs[cluster], tfs...)
}

// LinkTFReceptors appends receptors to a transcription factor's list
func (idx *LinkageIndex) LinkTFReceptors(tf string, receptors ...string) {
	if _, ok := idx.tfReceptors[tf]; !ok {
		idx.tfOrder = append(idx.tfOrder, tf)
	}
	idx.tfReceptors[tf] = append(idx.tfReceptors[tf], receptors...)
}

// LinkReceptorLigands appends ligands to a receptor's list
func (idx *LinkageIndex) LinkReceptorLigands(receptor string, ligands ...string) {
	if _, ok := idx.receptorLigands[receptor]; !ok {
		idx.receptorOrder = append(idx.receptorOrder, receptor)
	}
	idx.receptorLigands[receptor] = append(idx.receptorLigands[receptor], ligands...)
}

// Clusters returns the clusters with at least one linked transcription
// factor, in insertion order
func (idx *LinkageIndex) Clusters() []string {
	return append([]string(nil), idx.clusterOrder...)
}

// TFsFor returns the transcription factors linked to a cluster
func (idx *LinkageIndex) TFsFor(cluster string) []string {
	return append([]string(nil), idx.clusterTFs[cluster]...)
}

// ReceptorsFor returns the receptors linked to a transcription factor
func (idx *LinkageIndex) ReceptorsFor(tf string) []string {
	return append([]string(nil), idx.tfReceptors[tf]...)
}

// LigandsFor returns the candidate ligands for a receptor
func (idx *LinkageIndex) LigandsFor(receptor string) []string {
	return append([]string(nil), idx.receptorLigands[receptor]...)
}

// RenameCluster relabels a cluster key. Unknown labels are a no-op.
func (idx *LinkageIndex) RenameCluster(from, to string) {
	tfs, ok := idx.clusterTFs[from]
	if !ok {
		return
	}
	delete(idx.clusterTFs, from)
	idx.clusterTFs[to] = tfs
	for i, c := range idx.clusterOrder {
		if c == from {
			idx.clusterOrder[i] = to
		}
	}
}

// Clone returns a deep copy of the index
func (idx *LinkageIndex) Clone() *LinkageIndex {
	clone := &LinkageIndex{
		clusterTFs:      make(map[string][]string, len(idx.clusterTFs)),
		clusterOrder:    append([]string(nil), idx.clusterOrder...),
		tfReceptors:     make(map[string][]string, len(idx.tfReceptors)),
		tfOrder:         append([]string(nil), idx.tfOrder...),
		receptorLigands: make(map[string][]string, len(idx.receptorLigands)),
		receptorOrder:   append([]string(nil), idx.receptorOrder...),
	}
	for k, v := range idx.clusterTFs {
		clone.clusterTFs[k] = append([]string(nil), v...)
	}
	for k, v := range idx.tfReceptors {
		clone.tfReceptors[k] = append([]string(nil), v...)
	}
	for k, v := range idx.receptorLigands {
		clone.receptorLigands[k] = append([]string(nil), v...)
	}
	return clone
}

// Collation is the deduplicated item sets for a group of clusters
type Collation struct {
	// Features is the subset of differentially-expressed transcription
	// factors with at least one linked receptor
	Features []string `json:"features"`
	// Receptors linked to those features
	Receptors []string `json:"receptors"`
	// Ligands for those receptors, filtered to the gene universe
	Ligands []string `json:"ligands"`
}

// Collate traverses the index for the given clusters and returns the
// deduplicated transcription factor, receptor, and ligand sets in
// first-seen order. Ligands absent from the gene universe are dropped.
// Transcription factors without any linked receptor are dropped from the
// feature set even though they were differentially expressed; only the
// connected subset is reported. An empty cluster set yields empty
// outputs, never an error.
func Collate(idx *LinkageIndex, clusters []string, universe GeneUniverse) Collation {
	var out Collation
	seenTF := make(map[string]struct{})
	seenRec := make(map[string]struct{})
	seenLig := make(map[string]struct{})

	// Union of differentially-expressed TFs across the cluster set
	var deTFs []string
	for _, cluster := range clusters {
		for _, tf := range idx.clusterTFs[cluster] {
			if _, dup := seenTF[tf]; dup {
				continue
			}
			seenTF[tf] = struct{}{}
			deTFs = append(deTFs, tf)
		}
	}

	for _, tf := range deTFs {
		receptors := idx.tfReceptors[tf]
		if len(receptors) == 0 {
			continue
		}
		out.Features = append(out.Features, tf)
		for _, rec := range receptors {
			if _, dup := seenRec[rec]; dup {
				continue
			}
			seenRec[rec] = struct{}{}
			out.Receptors = append(out.Receptors, rec)
		}
	}

	for _, rec := range out.Receptors {
		for _, lig := range idx.receptorLigands[rec] {
			if universe != nil && !universe.HasGene(lig) {
				continue
			}
			if _, dup := seenLig[lig]; dup {
				continue
			}
			seenLig[lig] = struct{}{}
			out.Ligands = append(out.Ligands, lig)
		}
	}

	return out
}
