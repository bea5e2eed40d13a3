package analysis

import (
	"sort"

	pkgerrors "crosstalk/pkg/errors"
)

// BuildInput carries the upstream data the network construction step
// consumes. Expression and Activities share the cell axis; Clusters
// assigns every cell a label; ReceptorLigands is the curated linkage
// database mapping receptor genes to their candidate ligands.
type BuildInput struct {
	Expression      *ExpressionMatrix
	Activities      *ExpressionMatrix
	Clusters        *ClusterAssignment
	ReceptorLigands map[string][]string
}

// BuildOptions holds the thresholds of the construction step
type BuildOptions struct {
	// MaxTFPValue is the rank-sum p-value below which a transcription
	// factor counts as differentially active in a cluster
	MaxTFPValue float64
	// MinCorrelation is the Spearman correlation a receptor must reach
	// against a transcription factor's activity to be linked
	MinCorrelation float64
	// MaxTFsPerCluster caps a cluster's transcription factor list,
	// best p-value first; 0 means no cap
	MaxTFsPerCluster int
	// MaxReceptorsPerTF caps a transcription factor's receptor list,
	// strongest correlation first; 0 means no cap
	MaxReceptorsPerTF int
}

// DefaultBuildOptions returns the conventional construction thresholds
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{
		MaxTFPValue:       0.05,
		MinCorrelation:    0.6,
		MaxTFsPerCluster:  25,
		MaxReceptorsPerTF: 25,
	}
}

// BuildResult is the immutable output of network construction. Missing
// gene lists are diagnostics only: database entries absent from the
// expression data are reported and skipped, never fatal.
type BuildResult struct {
	Matrix  *SignalingMatrix
	Linkage *LinkageIndex
	// LigandSums holds, per cluster, the summed per-cluster expression
	// of each candidate ligand; the gene-network builder sizes ligand
	// nodes from these
	LigandSums map[string]map[string]float64
	// Genes is the expression matrix row universe, kept for membership
	// tests after the expression data itself is gone
	Genes []string
	// MissingReceptors and MissingLigands list database genes absent
	// from the expression matrix, first-seen order
	MissingReceptors []string
	MissingLigands   []string
}

// BuildNetwork runs the network construction engine: per-cluster
// differential transcription-factor selection by rank-sum test,
// receptor linkage by Spearman correlation of receptor expression with
// transcription-factor activity, ligand candidates from the curated
// database, and aggregation into the cluster-by-cluster signaling
// matrix.
func BuildNetwork(in BuildInput, opts BuildOptions) (*BuildResult, error) {
	if in.Expression == nil || in.Activities == nil || in.Clusters == nil {
		return nil, pkgerrors.NewValidationError("expression, activities, and cluster assignment are required")
	}
	if len(in.ReceptorLigands) == 0 {
		return nil, pkgerrors.NewValidationError("receptor-ligand database is empty")
	}
	exprCells := in.Expression.Cells()
	actCells := in.Activities.Cells()
	if len(exprCells) != len(actCells) {
		return nil, pkgerrors.NewValidationError("expression and activity matrices must share the cell axis")
	}
	for i := range exprCells {
		if exprCells[i] != actCells[i] {
			return nil, pkgerrors.NewValidationError("expression and activity matrices must share the cell axis")
		}
	}
	if in.Clusters.Len() == 0 {
		return nil, pkgerrors.NewPreconditionError("no clusters available")
	}

	levels := in.Clusters.Levels()
	linkage := NewLinkageIndex()

	// Cluster membership mask per cell position, reused by both the
	// differential test and the matrix aggregation
	cellClusters := make([]string, len(exprCells))
	for i, cell := range exprCells {
		label, ok := in.Clusters.Cluster(cell)
		if !ok {
			return nil, pkgerrors.NewValidationError("cell has no cluster assignment: " + cell)
		}
		cellClusters[i] = label
	}

	// 1. Differentially active transcription factors per cluster
	type scoredTF struct {
		tf string
		p  float64
	}
	tfSelected := make(map[string]struct{})
	var tfOrder []string
	for _, cluster := range levels {
		var scored []scoredTF
		for _, tf := range in.Activities.Genes() {
			row, _ := in.Activities.Row(tf)
			var inGroup, outGroup []float64
			for i, v := range row {
				if cellClusters[i] == cluster {
					inGroup = append(inGroup, v)
				} else {
					outGroup = append(outGroup, v)
				}
			}
			p := RankSumPValue(inGroup, outGroup)
			if p <= opts.MaxTFPValue {
				scored = append(scored, scoredTF{tf: tf, p: p})
			}
		}
		sort.SliceStable(scored, func(a, b int) bool { return scored[a].p < scored[b].p })
		if opts.MaxTFsPerCluster > 0 && len(scored) > opts.MaxTFsPerCluster {
			scored = scored[:opts.MaxTFsPerCluster]
		}
		for _, s := range scored {
			linkage.LinkClusterTFs(cluster, s.tf)
			if _, dup := tfSelected[s.tf]; !dup {
				tfSelected[s.tf] = struct{}{}
				tfOrder = append(tfOrder, s.tf)
			}
		}
	}

	// Database receptors in sorted order for deterministic traversal
	dbReceptors := make([]string, 0, len(in.ReceptorLigands))
	for rec := range in.ReceptorLigands {
		dbReceptors = append(dbReceptors, rec)
	}
	sort.Strings(dbReceptors)

	result := &BuildResult{
		Linkage: linkage,
		Genes:   in.Expression.Genes(),
	}
	missingRec := make(map[string]struct{})
	missingLig := make(map[string]struct{})

	// 2. Receptor linkage by correlation with transcription-factor
	// activity
	type scoredRec struct {
		rec string
		rho float64
	}
	recLinked := make(map[string]struct{})
	var recOrder []string
	for _, tf := range tfOrder {
		activity, _ := in.Activities.Row(tf)
		var scored []scoredRec
		for _, rec := range dbReceptors {
			expr, ok := in.Expression.Row(rec)
			if !ok {
				if _, seen := missingRec[rec]; !seen {
					missingRec[rec] = struct{}{}
					result.MissingReceptors = append(result.MissingReceptors, rec)
				}
				continue
			}
			rho := SpearmanCorrelation(expr, activity)
			if rho >= opts.MinCorrelation {
				scored = append(scored, scoredRec{rec: rec, rho: rho})
			}
		}
		sort.SliceStable(scored, func(a, b int) bool { return scored[a].rho > scored[b].rho })
		if opts.MaxReceptorsPerTF > 0 && len(scored) > opts.MaxReceptorsPerTF {
			scored = scored[:opts.MaxReceptorsPerTF]
		}
		for _, s := range scored {
			linkage.LinkTFReceptors(tf, s.rec)
			if _, dup := recLinked[s.rec]; !dup {
				recLinked[s.rec] = struct{}{}
				recOrder = append(recOrder, s.rec)
			}
		}
	}

	// 3. Ligand candidates from the curated database. Ligands absent
	// from the expression data stay in the linkage (collation filters
	// by universe later) but are reported.
	for _, rec := range recOrder {
		for _, lig := range in.ReceptorLigands[rec] {
			linkage.LinkReceptorLigands(rec, lig)
			if !in.Expression.HasGene(lig) {
				if _, seen := missingLig[lig]; !seen {
					missingLig[lig] = struct{}{}
					result.MissingLigands = append(result.MissingLigands, lig)
				}
			}
		}
	}

	// 4. Signaling matrix: entry (R_c1, L_c2) sums, over the receptors
	// linked in c1, the mean expression in c2 of each receptor's
	// ligands
	matrix := NewSignalingMatrix(levels)
	clusterCells := make(map[string][]string, len(levels))
	for _, cluster := range levels {
		clusterCells[cluster] = in.Clusters.CellsIn(cluster)
	}
	ligandSums := make(map[string]map[string]float64, len(levels))

	for i, recCluster := range levels {
		receptors := clusterReceptors(linkage, recCluster)
		for j, ligCluster := range levels {
			var total float64
			for _, rec := range receptors {
				for _, lig := range linkage.LigandsFor(rec) {
					mean, ok := in.Expression.MeanIn(lig, clusterCells[ligCluster])
					if !ok {
						continue
					}
					total += mean
				}
			}
			matrix.Set(i, j, total)
		}
	}

	for _, cluster := range levels {
		sums := make(map[string]float64)
		for _, rec := range recOrder {
			for _, lig := range linkage.LigandsFor(rec) {
				if _, dup := sums[lig]; dup {
					continue
				}
				if sum, ok := in.Expression.SumIn(lig, clusterCells[cluster]); ok {
					sums[lig] = sum
				}
			}
		}
		ligandSums[cluster] = sums
	}

	result.Matrix = matrix
	result.LigandSums = ligandSums
	return result, nil
}

// clusterReceptors is the deduplicated union, in linkage order, of the
// receptors reachable from a cluster's transcription factors
func clusterReceptors(idx *LinkageIndex, cluster string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, tf := range idx.TFsFor(cluster) {
		for _, rec := range idx.ReceptorsFor(tf) {
			if _, dup := seen[rec]; dup {
				continue
			}
			seen[rec] = struct{}{}
			out = append(out, rec)
		}
	}
	return out
}
