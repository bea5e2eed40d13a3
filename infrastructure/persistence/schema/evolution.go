package schema

import (
	"encoding/json"
	"fmt"
)

// Stored documents carry a version marker so their shape can evolve
// without a table rebuild. Readers upgrade old payloads in place;
// writers always emit the current version.
const (
	DocumentMatrix  = "matrix"
	DocumentLinkage = "linkage"

	// Version 1 matrix documents stored bare cluster labels; version 2
	// prefixes rows with R_ and columns with L_.
	CurrentMatrixVersion  = 2
	CurrentLinkageVersion = 1
)

// envelope wraps a document payload with its schema version
type envelope struct {
	SchemaVersion int             `json:"_schema_version"`
	Data          json.RawMessage `json:"data"`
}

// Marshal wraps a document with its schema version
func Marshal(data interface{}, version int) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{SchemaVersion: version, Data: raw})
}

// Unmarshal unwraps a document and reports its schema version.
// Payloads written before versioning was introduced have no envelope
// and are treated as version 1.
func Unmarshal(data []byte) (json.RawMessage, int, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err == nil && env.SchemaVersion > 0 {
		return env.Data, env.SchemaVersion, nil
	}
	return json.RawMessage(data), 1, nil
}

// MigrationFunc upgrades a document payload by one version
type MigrationFunc func(data json.RawMessage) (json.RawMessage, error)

// Migrator upgrades stored documents to their current schema version
type Migrator struct {
	upgrades map[string]map[int]MigrationFunc
}

// NewMigrator creates an empty migrator
func NewMigrator() *Migrator {
	return &Migrator{upgrades: make(map[string]map[int]MigrationFunc)}
}

// Register adds an upgrade step from fromVersion to fromVersion+1
func (m *Migrator) Register(document string, fromVersion int, fn MigrationFunc) error {
	if fn == nil {
		return fmt.Errorf("nil migration for %s v%d", document, fromVersion)
	}
	if m.upgrades[document] == nil {
		m.upgrades[document] = make(map[int]MigrationFunc)
	}
	if _, exists := m.upgrades[document][fromVersion]; exists {
		return fmt.Errorf("migration for %s v%d already registered", document, fromVersion)
	}
	m.upgrades[document][fromVersion] = fn
	return nil
}

// Upgrade applies registered steps until the payload reaches target
func (m *Migrator) Upgrade(document string, version int, data json.RawMessage, target int) (json.RawMessage, error) {
	if version > target {
		return nil, fmt.Errorf("%s document v%d is newer than supported v%d", document, version, target)
	}
	for version < target {
		fn, ok := m.upgrades[document][version]
		if !ok {
			return nil, fmt.Errorf("no migration for %s from v%d", document, version)
		}
		upgraded, err := fn(data)
		if err != nil {
			return nil, fmt.Errorf("%s migration v%d->v%d failed: %w", document, version, version+1, err)
		}
		data = upgraded
		version++
	}
	return data, nil
}

// DefaultMigrator returns a migrator covering all known legacy shapes
func DefaultMigrator() *Migrator {
	m := NewMigrator()
	// v1 matrix documents predate role-prefixed cluster keys
	if err := m.Register(DocumentMatrix, 1, prefixMatrixKeys); err != nil {
		panic(err)
	}
	return m
}

// prefixMatrixKeys upgrades a v1 matrix document, whose rows and
// columns are bare cluster labels, to the prefixed v2 form
func prefixMatrixKeys(data json.RawMessage) (json.RawMessage, error) {
	var doc struct {
		Rows []string    `json:"rows"`
		Cols []string    `json:"cols"`
		Data [][]float64 `json:"data"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	for i, row := range doc.Rows {
		if len(row) < 2 || row[:2] != "R_" {
			doc.Rows[i] = "R_" + row
		}
	}
	for i, col := range doc.Cols {
		if len(col) < 2 || col[:2] != "L_" {
			doc.Cols[i] = "L_" + col
		}
	}
	return json.Marshal(doc)
}
