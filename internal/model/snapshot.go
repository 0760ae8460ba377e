package model

import (
	"sort"
	"time"
)

// SchemaObjects groups every object belonging to one schema.
type SchemaObjects struct {
	Name       string
	Tables     []Table
	Views      []View
	Procedures []Routine
	Functions  []Routine
	Triggers   []Trigger
	Types      []UserDefinedType
	Sequences  []Sequence
	Synonyms   []Synonym
}

// Warning records a non-fatal problem met during extraction: a capability
// query that failed, an object skipped for violating a model invariant, or
// a reference whose target fell outside the retained set.
type Warning struct {
	Op      string
	Message string
}

// Snapshot is the complete, immutable extracted-and-linked representation
// of one database. It owns all descendant entities; nothing is mutated
// after Seal.
type Snapshot struct {
	DatabaseName string
	Engine       Engine
	Version      string
	Server       string
	GeneratedAt  time.Time

	Schemas    []*SchemaObjects
	Principals []SecurityPrincipal

	// NotApplicable lists capabilities the engine has no concept of, as
	// opposed to capabilities that were supported but returned nothing.
	// The renderer omits those sections entirely.
	NotApplicable []ObjectKind

	Graph    *Graph
	Warnings []Warning
}

// Seal sorts every collection into its canonical order. Extraction calls it
// once, after graph building; from then on the snapshot is read-only.
func (s *Snapshot) Seal() {
	sort.Slice(s.Schemas, func(i, j int) bool { return s.Schemas[i].Name < s.Schemas[j].Name })
	for _, sc := range s.Schemas {
		sort.Slice(sc.Tables, func(i, j int) bool { return sc.Tables[i].ID.Key() < sc.Tables[j].ID.Key() })
		sort.Slice(sc.Views, func(i, j int) bool { return sc.Views[i].ID.Key() < sc.Views[j].ID.Key() })
		sort.Slice(sc.Procedures, func(i, j int) bool { return sc.Procedures[i].ID.Key() < sc.Procedures[j].ID.Key() })
		sort.Slice(sc.Functions, func(i, j int) bool { return sc.Functions[i].ID.Key() < sc.Functions[j].ID.Key() })
		sort.Slice(sc.Triggers, func(i, j int) bool { return sc.Triggers[i].ID.Key() < sc.Triggers[j].ID.Key() })
		sort.Slice(sc.Types, func(i, j int) bool { return sc.Types[i].ID.Key() < sc.Types[j].ID.Key() })
		sort.Slice(sc.Sequences, func(i, j int) bool { return sc.Sequences[i].ID.Key() < sc.Sequences[j].ID.Key() })
		sort.Slice(sc.Synonyms, func(i, j int) bool { return sc.Synonyms[i].ID.Key() < sc.Synonyms[j].ID.Key() })
	}
	sort.Slice(s.Principals, func(i, j int) bool { return s.Principals[i].Name < s.Principals[j].Name })
	sort.Slice(s.NotApplicable, func(i, j int) bool { return s.NotApplicable[i] < s.NotApplicable[j] })
}

// Count returns the number of objects of the given kind across all schemas.
func (s *Snapshot) Count(kind ObjectKind) int {
	n := 0
	for _, sc := range s.Schemas {
		switch kind {
		case KindTables:
			n += len(sc.Tables)
		case KindViews:
			n += len(sc.Views)
		case KindProcedures:
			n += len(sc.Procedures)
		case KindFunctions:
			n += len(sc.Functions)
		case KindTriggers:
			n += len(sc.Triggers)
		case KindTypes:
			n += len(sc.Types)
		case KindSequences:
			n += len(sc.Sequences)
		case KindSynonyms:
			n += len(sc.Synonyms)
		}
	}
	if kind == KindSecurity {
		n = len(s.Principals)
	}
	return n
}

// Applicable reports whether the engine supports the given kind at all.
func (s *Snapshot) Applicable(kind ObjectKind) bool {
	for _, k := range s.NotApplicable {
		if k == kind {
			return false
		}
	}
	return true
}

// Tables returns every retained table across all schemas, in schema order.
func (s *Snapshot) Tables() []Table {
	var out []Table
	for _, sc := range s.Schemas {
		out = append(out, sc.Tables...)
	}
	return out
}

// Views returns every retained view across all schemas, in schema order.
func (s *Snapshot) Views() []View {
	var out []View
	for _, sc := range s.Schemas {
		out = append(out, sc.Views...)
	}
	return out
}

// Synonyms returns every retained synonym across all schemas.
func (s *Snapshot) Synonyms() []Synonym {
	var out []Synonym
	for _, sc := range s.Schemas {
		out = append(out, sc.Synonyms...)
	}
	return out
}
