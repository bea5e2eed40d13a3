package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type matrixDoc struct {
	Rows []string    `json:"rows"`
	Cols []string    `json:"cols"`
	Data [][]float64 `json:"data"`
}

func TestMarshalUnmarshal_RoundTrip(t *testing.T) {
	doc := matrixDoc{
		Rows: []string{"R_A"},
		Cols: []string{"L_A"},
		Data: [][]float64{{1.5}},
	}

	raw, err := Marshal(doc, CurrentMatrixVersion)
	require.NoError(t, err)

	payload, version, err := Unmarshal(raw)
	require.NoError(t, err)
	assert.Equal(t, CurrentMatrixVersion, version)

	var out matrixDoc
	require.NoError(t, json.Unmarshal(payload, &out))
	assert.Equal(t, doc, out)
}

func TestUnmarshal_BarePayloadIsVersionOne(t *testing.T) {
	raw := []byte(`{"rows":["A"],"cols":["A"],"data":[[2]]}`)

	payload, version, err := Unmarshal(raw)

	require.NoError(t, err)
	assert.Equal(t, 1, version)
	assert.JSONEq(t, string(raw), string(payload))
}

func TestDefaultMigrator_UpgradesBareMatrixKeys(t *testing.T) {
	legacy := []byte(`{"rows":["fibroblast","tcell"],"cols":["fibroblast","tcell"],"data":[[1,2],[3,4]]}`)

	upgraded, err := DefaultMigrator().Upgrade(DocumentMatrix, 1, legacy, CurrentMatrixVersion)

	require.NoError(t, err)
	var doc matrixDoc
	require.NoError(t, json.Unmarshal(upgraded, &doc))
	assert.Equal(t, []string{"R_fibroblast", "R_tcell"}, doc.Rows)
	assert.Equal(t, []string{"L_fibroblast", "L_tcell"}, doc.Cols)
	assert.Equal(t, [][]float64{{1, 2}, {3, 4}}, doc.Data)
}

func TestDefaultMigrator_AlreadyPrefixedKeysAreKept(t *testing.T) {
	legacy := []byte(`{"rows":["R_A"],"cols":["L_A"],"data":[[1]]}`)

	upgraded, err := DefaultMigrator().Upgrade(DocumentMatrix, 1, legacy, CurrentMatrixVersion)

	require.NoError(t, err)
	var doc matrixDoc
	require.NoError(t, json.Unmarshal(upgraded, &doc))
	assert.Equal(t, []string{"R_A"}, doc.Rows)
	assert.Equal(t, []string{"L_A"}, doc.Cols)
}

func TestMigrator_CurrentVersionIsUntouched(t *testing.T) {
	payload := json.RawMessage(`{"rows":["R_A"]}`)

	out, err := DefaultMigrator().Upgrade(DocumentMatrix, CurrentMatrixVersion, payload, CurrentMatrixVersion)

	require.NoError(t, err)
	assert.Equal(t, payload, out)
}

func TestMigrator_NewerVersionIsRejected(t *testing.T) {
	_, err := DefaultMigrator().Upgrade(DocumentMatrix, 3, json.RawMessage(`{}`), CurrentMatrixVersion)

	assert.Error(t, err)
}

func TestMigrator_MissingStepFails(t *testing.T) {
	m := NewMigrator()

	_, err := m.Upgrade(DocumentLinkage, 1, json.RawMessage(`{}`), 2)

	assert.Error(t, err)
}

func TestMigrator_RegisterRejectsDuplicates(t *testing.T) {
	m := NewMigrator()
	step := func(data json.RawMessage) (json.RawMessage, error) { return data, nil }

	require.NoError(t, m.Register(DocumentMatrix, 1, step))
	assert.Error(t, m.Register(DocumentMatrix, 1, step))
	assert.Error(t, m.Register(DocumentMatrix, 2, nil))
}
