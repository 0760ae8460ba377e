// Package filter narrows an extraction to chosen schemas and object kinds.
package filter

import (
	"fmt"

	"github.com/arvenshaw/schemadoc/internal/model"
)

// ConflictError reports a schema listed as both included and excluded.
type ConflictError struct {
	Schema string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("schema %q is both included and excluded", e.Schema)
}

// Selection is the user's choice of what to document. Empty IncludeSchemas
// means every schema except the exclusions; empty Kinds means every kind.
type Selection struct {
	IncludeSchemas []string
	ExcludeSchemas []string
	Kinds          []model.ObjectKind
}

// Validate rejects a schema named on both sides. Comparison folds with the
// engine's identifier rule.
func (s Selection) Validate(fold model.FoldFunc) error {
	excluded := make(map[string]bool, len(s.ExcludeSchemas))
	for _, name := range s.ExcludeSchemas {
		excluded[fold(name)] = true
	}
	for _, name := range s.IncludeSchemas {
		if excluded[fold(name)] {
			return &ConflictError{Schema: name}
		}
	}
	return nil
}

// Schemas compiles the schema predicate. With no include list, the
// engine's system schemas are excluded by default on top of any explicit
// exclusions, matching how each engine hides its own catalog.
func (s Selection) Schemas(fold model.FoldFunc, systemSchemas []string) func(string) bool {
	include := make(map[string]bool, len(s.IncludeSchemas))
	for _, name := range s.IncludeSchemas {
		include[fold(name)] = true
	}
	exclude := make(map[string]bool, len(s.ExcludeSchemas))
	for _, name := range s.ExcludeSchemas {
		exclude[fold(name)] = true
	}
	if len(include) == 0 {
		for _, name := range systemSchemas {
			exclude[fold(name)] = true
		}
	}
	return func(schema string) bool {
		key := fold(schema)
		if exclude[key] {
			return false
		}
		if len(include) > 0 {
			return include[key]
		}
		return true
	}
}

// KindSet compiles the object-kind predicate. An empty selection enables
// every kind.
func (s Selection) KindSet() map[model.ObjectKind]bool {
	set := make(map[model.ObjectKind]bool)
	if len(s.Kinds) == 0 {
		for _, kind := range model.AllKinds() {
			set[kind] = true
		}
		return set
	}
	for _, kind := range s.Kinds {
		set[kind] = true
	}
	return set
}
