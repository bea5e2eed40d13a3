package valueobjects

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClusterKey_Roles(t *testing.T) {
	rec := ReceptorKey("fibroblast")
	lig := LigandKey("fibroblast")

	assert.Equal(t, "fibroblast", rec.Cluster())
	assert.Equal(t, RoleReceptor, rec.Role())
	assert.Equal(t, RoleLigand, lig.Role())
	assert.Equal(t, "R_fibroblast", rec.String())
	assert.Equal(t, "L_fibroblast", lig.String())
	assert.False(t, rec.Equals(lig))
}

func TestParseClusterKey(t *testing.T) {
	k, err := ParseClusterKey("R_tcell")
	require.NoError(t, err)
	assert.Equal(t, ReceptorKey("tcell"), k)

	k, err = ParseClusterKey("L_tcell")
	require.NoError(t, err)
	assert.Equal(t, LigandKey("tcell"), k)

	_, err = ParseClusterKey("tcell")
	assert.Error(t, err)

	_, err = ParseClusterKey("X_tcell")
	assert.Error(t, err)
}

func TestParseClusterKey_UnderscoreInLabel(t *testing.T) {
	// Only the first prefix is structural; labels may contain underscores
	k, err := ParseClusterKey("R_cd8_t_cell")
	require.NoError(t, err)
	assert.Equal(t, "cd8_t_cell", k.Cluster())
}

func TestClusterKey_TextMarshalingAsMapKey(t *testing.T) {
	in := map[ClusterKey]float64{
		ReceptorKey("A"): 1.5,
		LigandKey("A"):   2.5,
	}

	raw, err := json.Marshal(in)
	require.NoError(t, err)

	var out map[ClusterKey]float64
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, in, out)
}

func TestClusterKey_ZeroAndWithCluster(t *testing.T) {
	var zero ClusterKey
	assert.True(t, zero.IsZero())
	assert.False(t, ReceptorKey("A").IsZero())

	renamed := ReceptorKey("A").WithCluster("B")
	assert.Equal(t, ReceptorKey("B"), renamed)
}
