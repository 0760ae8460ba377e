// Package catalog defines the boundary between the dialect-specific query
// layer and the normalization engine: the raw row shapes each engine's
// catalog queries produce, the Reader capability contract, and the errors
// the query layer may surface.
//
// Rows are raw in the sense that their fields carry the engine's own
// vocabulary (native type names, dialect spellings of referential actions
// and trigger timings, unparsed default expressions). Adapters translate
// them into the canonical model; nothing here is normalized.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/arvenshaw/schemadoc/internal/model"
)

// ErrNotApplicable marks a capability the engine has no concept of at all,
// as distinct from a supported capability that returned no rows. Readers
// return it wrapped or bare; callers test with errors.Is.
var ErrNotApplicable = errors.New("not applicable for this engine")

// NotApplicable reports whether err marks an unsupported capability.
func NotApplicable(err error) bool { return errors.Is(err, ErrNotApplicable) }

// QueryError wraps a failed catalog query with the object kind and dialect
// being fetched. Failures are per-capability: extraction continues past
// them unless the kind is schemas or tables.
type QueryError struct {
	Kind    model.ObjectKind
	Dialect model.Engine
	Err     error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s: listing %s failed: %v", e.Dialect, e.Kind, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// DatabaseInfo is the engine identity reported by the connection.
type DatabaseInfo struct {
	Name    string
	Version string
	Server  string
}

// Reader is the fixed capability contract one engine's query layer
// implements. Every method is a read-only catalog lookup returning raw
// rows; unsupported capabilities return ErrNotApplicable. Calls are issued
// sequentially on a single connection.
type Reader interface {
	Info(ctx context.Context) (DatabaseInfo, error)

	ListSchemas(ctx context.Context) ([]SchemaRow, error)
	ListTables(ctx context.Context) ([]TableRow, error)
	ListColumns(ctx context.Context) ([]ColumnRow, error)
	ListPrimaryKeys(ctx context.Context) ([]PrimaryKeyRow, error)
	ListForeignKeys(ctx context.Context) ([]ForeignKeyRow, error)
	ListChecks(ctx context.Context) ([]CheckRow, error)
	ListIndexes(ctx context.Context) ([]IndexRow, error)
	ListViews(ctx context.Context) ([]ViewRow, error)
	ListRoutines(ctx context.Context) ([]RoutineRow, error)
	ListTriggers(ctx context.Context) ([]TriggerRow, error)
	ListTypes(ctx context.Context) ([]TypeRow, error)
	ListSequences(ctx context.Context) ([]SequenceRow, error)
	ListSynonyms(ctx context.Context) ([]SynonymRow, error)
	ListSecurity(ctx context.Context) (*SecurityRows, error)

	Close() error
}
