// Package model defines the canonical, engine-agnostic representation of a
// database schema. Every dialect adapter maps its raw catalog output into
// these shapes; the graph builder and renderer consume nothing else.
//
// The package is deliberately flat: all entity shapes live here, with no
// adapter-side extension, so adapters depend on the model and never the
// other way around.
package model

import "strings"

// Engine identifies a supported database engine.
type Engine string

const (
	EnginePostgres Engine = "postgresql"
	EngineMySQL    Engine = "mysql"
	EngineSQLite   Engine = "sqlite"
	EngineMSSQL    Engine = "mssql"
	EngineOracle   Engine = "oracle"
)

// ObjectKind identifies a category of database object for selection,
// capability reporting and rendering.
type ObjectKind string

const (
	KindTables     ObjectKind = "tables"
	KindViews      ObjectKind = "views"
	KindProcedures ObjectKind = "procedures"
	KindFunctions  ObjectKind = "functions"
	KindTriggers   ObjectKind = "triggers"
	KindTypes      ObjectKind = "types"
	KindSequences  ObjectKind = "sequences"
	KindSynonyms   ObjectKind = "synonyms"
	KindSecurity   ObjectKind = "security"
)

// AllKinds returns every object kind in rendering order.
func AllKinds() []ObjectKind {
	return []ObjectKind{
		KindTables, KindViews, KindProcedures, KindFunctions,
		KindTriggers, KindTypes, KindSequences, KindSynonyms, KindSecurity,
	}
}

// ParseKind maps a user-supplied object type name to an ObjectKind.
func ParseKind(s string) (ObjectKind, bool) {
	k := ObjectKind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllKinds() {
		if k == known {
			return k, true
		}
	}
	return "", false
}

// FoldFunc normalizes an identifier for cross-dialect matching. Each adapter
// supplies the folding rule of its engine (lowercase for engines that fold
// unquoted identifiers down, uppercase for Oracle).
type FoldFunc func(string) string

// Identifier is a schema-qualified object name plus a case-folded key used
// for matching. Two identifiers link to each other when their keys are
// equal, even if their display casing differs.
type Identifier struct {
	Schema string
	Name   string

	key string
}

// NewIdentifier builds an identifier whose matching key is derived with fold.
func NewIdentifier(schema, name string, fold FoldFunc) Identifier {
	if fold == nil {
		fold = strings.ToLower
	}
	return Identifier{
		Schema: schema,
		Name:   name,
		key:    fold(schema) + "." + fold(name),
	}
}

// Key returns the case-folded matching key.
func (id Identifier) Key() string { return id.key }

// String returns the display form "schema.name".
func (id Identifier) String() string {
	if id.Schema == "" {
		return id.Name
	}
	return id.Schema + "." + id.Name
}

// IsZero reports whether the identifier is unset.
func (id Identifier) IsZero() bool { return id.Schema == "" && id.Name == "" }
