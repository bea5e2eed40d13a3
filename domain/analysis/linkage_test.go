package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLinkage() *LinkageIndex {
	idx := NewLinkageIndex()
	idx.LinkClusterTFs("A", "tf1", "tf2")
	idx.LinkClusterTFs("B", "tf2", "tf3")
	idx.LinkTFReceptors("tf1", "rec1")
	idx.LinkTFReceptors("tf2", "rec1", "rec2")
	// tf3 has no receptors
	idx.LinkReceptorLigands("rec1", "lig1", "lig2")
	idx.LinkReceptorLigands("rec2", "lig2", "lig3")
	return idx
}

func TestCollate_DeduplicatesInFirstSeenOrder(t *testing.T) {
	idx := testLinkage()
	universe := NewGeneSet([]string{"lig1", "lig2", "lig3"})

	out := Collate(idx, []string{"A", "B"}, universe)

	// tf3 is differentially expressed but has no linked receptor, so it
	// is dropped from the feature set
	assert.Equal(t, []string{"tf1", "tf2"}, out.Features)
	assert.Equal(t, []string{"rec1", "rec2"}, out.Receptors)
	assert.Equal(t, []string{"lig1", "lig2", "lig3"}, out.Ligands)
}

func TestCollate_FiltersLigandsByUniverse(t *testing.T) {
	idx := testLinkage()
	// lig2 is in the curated database but absent from the expression data
	universe := NewGeneSet([]string{"lig1", "lig3"})

	out := Collate(idx, []string{"A", "B"}, universe)

	assert.Equal(t, []string{"lig1", "lig3"}, out.Ligands)
}

func TestCollate_SingleCluster(t *testing.T) {
	idx := testLinkage()
	universe := NewGeneSet([]string{"lig1", "lig2", "lig3"})

	out := Collate(idx, []string{"B"}, universe)

	// Cluster B links tf2 and tf3; only tf2 survives
	assert.Equal(t, []string{"tf2"}, out.Features)
	assert.Equal(t, []string{"rec1", "rec2"}, out.Receptors)
}

func TestCollate_EmptySelection(t *testing.T) {
	idx := testLinkage()

	out := Collate(idx, nil, NewGeneSet(nil))

	assert.Empty(t, out.Features)
	assert.Empty(t, out.Receptors)
	assert.Empty(t, out.Ligands)
}

func TestLinkageIndex_RenameCluster(t *testing.T) {
	idx := testLinkage()

	idx.RenameCluster("A", "alpha")

	assert.Equal(t, []string{"tf1", "tf2"}, idx.TFsFor("alpha"))
	assert.Empty(t, idx.TFsFor("A"))
	assert.Equal(t, []string{"alpha", "B"}, idx.Clusters())
}

func TestLinkageIndex_CloneIsIndependent(t *testing.T) {
	idx := testLinkage()

	clone := idx.Clone()
	clone.LinkClusterTFs("A", "tf9")

	require.Equal(t, []string{"tf1", "tf2"}, idx.TFsFor("A"))
	assert.Equal(t, []string{"tf1", "tf2", "tf9"}, clone.TFsFor("A"))
}
