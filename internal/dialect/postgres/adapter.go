// Package postgres maps the PostgreSQL catalog into the canonical model.
// The reader speaks information_schema plus the pg_catalog views that
// information_schema cannot cover (index methods, trigger bitmasks, enum
// labels, routine definitions); the adapter folds identifiers lowercase the
// way Postgres folds unquoted names.
package postgres

import (
	"strings"

	"github.com/arvenshaw/schemadoc/internal/catalog"
	"github.com/arvenshaw/schemadoc/internal/dialect"
	"github.com/arvenshaw/schemadoc/internal/model"
)

// Adapter normalizes PostgreSQL catalog vocabulary.
type Adapter struct {
	dialect.ANSI
}

// NewAdapter returns the PostgreSQL adapter.
func NewAdapter() Adapter {
	return Adapter{dialect.ANSI{FoldFn: strings.ToLower}}
}

func (Adapter) Engine() model.Engine { return model.EnginePostgres }

var supports = dialect.SupportSet{
	model.KindProcedures: true,
	model.KindFunctions:  true,
	model.KindTypes:      true,
	model.KindSequences:  true,
	model.KindSecurity:   true,
	// no synonyms in PostgreSQL
}

func (Adapter) Supports(kind model.ObjectKind) bool { return supports.Has(kind) }

func (Adapter) SystemSchemas() []string {
	return []string{"pg_catalog", "information_schema", "pg_toast"}
}

// Column shortens the verbose information_schema type names into the forms
// Postgres users actually write, and treats serial defaults as identity:
// is_identity covers GENERATED AS IDENTITY only, while serial columns show
// up as a nextval() default.
func (a Adapter) Column(row catalog.ColumnRow) model.Column {
	col := a.ANSI.Column(row)
	col.NativeType = displayType(row)
	col.DataType = model.NormalizeType(row.NativeType)
	if !col.Identity && row.Default != nil && strings.HasPrefix(*row.Default, "nextval(") {
		col.Identity = true
	}
	return col
}

func displayType(row catalog.ColumnRow) string {
	base := shortTypeName(row.NativeType, row.Extra)
	return dialect.DisplayType(base, row.MaxLength, row.Precision, row.Scale)
}

// shortTypeName maps information_schema spellings to the usual short
// forms. udt carries udt_name, needed for arrays and user-defined types.
func shortTypeName(dataType, udt string) string {
	switch dataType {
	case "timestamp with time zone":
		return "timestamptz"
	case "timestamp without time zone":
		return "timestamp"
	case "time with time zone":
		return "timetz"
	case "time without time zone":
		return "time"
	case "character varying":
		return "varchar"
	case "character":
		return "char"
	case "ARRAY":
		if strings.HasPrefix(udt, "_") {
			return shortUDTName(udt[1:]) + "[]"
		}
		return "array"
	case "USER-DEFINED":
		if udt != "" {
			return udt
		}
		return dataType
	default:
		return dataType
	}
}

// shortUDTName converts internal type names to readable forms.
func shortUDTName(udt string) string {
	switch udt {
	case "int2":
		return "smallint"
	case "int4":
		return "integer"
	case "int8":
		return "bigint"
	case "float4":
		return "real"
	case "float8":
		return "double precision"
	case "bool":
		return "boolean"
	default:
		return udt
	}
}

// TypeCategory maps pg_type.typtype letters.
func (Adapter) TypeCategory(raw string) model.TypeCategory {
	switch raw {
	case "e":
		return model.TypeEnum
	case "c":
		return model.TypeComposite
	case "d":
		return model.TypeDomain
	default:
		return model.TypeAlias
	}
}

// RoutineKind maps pg_proc.prokind letters as well as the spelled forms.
func (a Adapter) RoutineKind(raw string) (model.RoutineKind, bool) {
	switch raw {
	case "p":
		return model.RoutineProcedure, true
	case "f", "a", "w":
		return model.RoutineFunction, true
	}
	return a.ANSI.RoutineKind(raw)
}

// IndexMethod keeps the access method name as pg_am reports it.
func (Adapter) IndexMethod(raw string) string {
	if raw == "" {
		return "BTREE"
	}
	return strings.ToUpper(raw)
}

// FunctionTypeLabel classifies a pg_proc row the way the docs present it.
func FunctionTypeLabel(retset bool, prokind string) string {
	switch {
	case retset:
		return "TABLE"
	case prokind == "a":
		return "AGGREGATE"
	case prokind == "w":
		return "WINDOW"
	default:
		return "SCALAR"
	}
}

var _ dialect.Adapter = Adapter{}
