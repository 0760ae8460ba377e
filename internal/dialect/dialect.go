// Package dialect defines the contract every engine adapter implements:
// translating one engine's raw catalog rows into the canonical model
// without inferring anything the engine does not expose.
package dialect

import (
	"fmt"
	"strings"

	"github.com/arvenshaw/schemadoc/internal/catalog"
	"github.com/arvenshaw/schemadoc/internal/model"
)

// Adapter normalizes one engine's catalog vocabulary. Adapters are
// stateless values; all methods are pure.
//
// Structural metadata (names, types, cardinalities, actions, timings) is
// normalized; expression text (defaults, checks, computed columns, view and
// routine definitions) passes through untouched.
type Adapter interface {
	// Engine returns the engine this adapter speaks for.
	Engine() model.Engine

	// Fold maps an identifier to its case-normalized matching key,
	// following the engine's unquoted-identifier rules.
	Fold(name string) string

	// Supports reports whether the engine has the capability at all.
	// Unsupported kinds are rendered as absent sections, not empty ones.
	Supports(kind model.ObjectKind) bool

	// SystemSchemas lists the engine's built-in schemas excluded by
	// default when the caller supplies no schema filter.
	SystemSchemas() []string

	// Column maps a raw column row, normalizing the type into its bucket
	// and detecting identity/auto-increment the engine's way.
	Column(row catalog.ColumnRow) model.Column

	// Parameter maps a raw routine parameter row.
	Parameter(row catalog.ParameterRow) model.Parameter

	// ReferentialAction normalizes the engine's spelling of an on-delete
	// or on-update rule into the closed action set.
	ReferentialAction(rule string) model.RefAction

	// TriggerTiming normalizes the engine's trigger timing spelling.
	TriggerTiming(raw string) model.TriggerTiming

	// TypeCategory normalizes the engine's user-defined type category.
	TypeCategory(raw string) model.TypeCategory

	// RoutineKind normalizes the engine's routine kind spelling; ok is
	// false for routine kinds outside procedures and functions.
	RoutineKind(raw string) (kind model.RoutineKind, ok bool)

	// ParamDirection normalizes a parameter mode spelling.
	ParamDirection(raw string) model.ParamDirection

	// IndexMethod returns the display label for an access method.
	IndexMethod(raw string) string
}

// ANSI carries normalization shared by the engines that stay close to
// standard information_schema vocabulary. Engine adapters embed it and
// override what their catalog spells differently.
type ANSI struct {
	FoldFn model.FoldFunc
}

// Fold applies the engine's folding rule, lowercase when unset.
func (a ANSI) Fold(name string) string {
	if a.FoldFn == nil {
		return strings.ToLower(name)
	}
	return a.FoldFn(name)
}

// Column maps a raw column row generically: the native base type is
// composed with length or precision into its display form and bucketed
// through the shared type table.
func (a ANSI) Column(row catalog.ColumnRow) model.Column {
	return model.Column{
		Name:              row.Name,
		DataType:          model.NormalizeType(row.NativeType),
		NativeType:        DisplayType(row.NativeType, row.MaxLength, row.Precision, row.Scale),
		Nullable:          row.Nullable,
		Default:           row.Default,
		Identity:          row.Identity,
		IdentitySeed:      row.IdentitySeed,
		IdentityIncrement: row.IdentityIncrement,
		Computed:          row.Computed,
		Collation:         row.Collation,
		Description:       row.Description,
		Ordinal:           row.Ordinal,
	}
}

// Parameter maps a raw parameter row generically.
func (a ANSI) Parameter(row catalog.ParameterRow) model.Parameter {
	p := model.Parameter{
		Name:       row.Name,
		DataType:   model.NormalizeType(row.NativeType),
		NativeType: row.NativeType,
		Direction:  a.ParamDirection(row.Mode),
		Ordinal:    row.Ordinal,
	}
	if row.HasDefault {
		p.Default = row.Default
	}
	return p
}

// ReferentialAction understands the spellings shared by the standard
// information_schema engines.
func (ANSI) ReferentialAction(rule string) model.RefAction {
	switch strings.ToUpper(strings.TrimSpace(rule)) {
	case "CASCADE":
		return model.ActionCascade
	case "RESTRICT":
		return model.ActionRestrict
	case "SET NULL", "SET_NULL":
		return model.ActionSetNull
	case "SET DEFAULT", "SET_DEFAULT":
		return model.ActionSetDefault
	default:
		// "NO ACTION", "NOACTION", empty and anything unknown
		return model.ActionNoAction
	}
}

// TriggerTiming understands the common spellings.
func (ANSI) TriggerTiming(raw string) model.TriggerTiming {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "BEFORE":
		return model.TimingBefore
	case "INSTEAD OF", "INSTEAD_OF":
		return model.TimingInsteadOf
	default:
		return model.TimingAfter
	}
}

// TypeCategory understands the spelled-out category names.
func (ANSI) TypeCategory(raw string) model.TypeCategory {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "ENUM", "E":
		return model.TypeEnum
	case "COMPOSITE", "C":
		return model.TypeComposite
	case "DOMAIN", "D":
		return model.TypeDomain
	case "TABLE_TYPE", "TABLE TYPE", "TABLE":
		return model.TypeTableType
	default:
		return model.TypeAlias
	}
}

// RoutineKind understands "PROCEDURE" and "FUNCTION".
func (ANSI) RoutineKind(raw string) (model.RoutineKind, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "PROCEDURE":
		return model.RoutineProcedure, true
	case "FUNCTION":
		return model.RoutineFunction, true
	default:
		return "", false
	}
}

// ParamDirection understands IN, OUT, INOUT and Oracle's "IN/OUT".
func (ANSI) ParamDirection(raw string) model.ParamDirection {
	switch strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(raw), " ", "")) {
	case "OUT", "OUTPUT":
		return model.DirectionOut
	case "INOUT", "IN/OUT":
		return model.DirectionInOut
	default:
		return model.DirectionIn
	}
}

// IndexMethod upper-cases the label, defaulting to BTREE where the engine
// reports nothing.
func (ANSI) IndexMethod(raw string) string {
	m := strings.ToUpper(strings.TrimSpace(raw))
	if m == "" {
		return "BTREE"
	}
	return m
}

var lengthTypes = map[string]bool{
	"char": true, "nchar": true, "varchar": true, "nvarchar": true,
	"varchar2": true, "nvarchar2": true, "binary": true, "varbinary": true,
	"character varying": true, "character": true, "raw": true,
}

var precisionTypes = map[string]bool{
	"decimal": true, "numeric": true, "number": true,
}

// DisplayType builds the display form of a native type from its base name
// and the length or precision/scale the catalog reported. Length renders
// only for character/binary families (a max length of -1 renders as (max)),
// precision/scale only for exact numerics, so integer types never pick up
// their storage precision. Engines with other composition rules (SQL Server
// halving nvarchar byte lengths) compose their own before calling this.
func DisplayType(base string, maxLength, precision, scale *int64) string {
	lower := strings.ToLower(base)
	switch {
	case lengthTypes[lower] && maxLength != nil && *maxLength == -1:
		return base + "(max)"
	case lengthTypes[lower] && maxLength != nil && *maxLength > 0:
		return fmt.Sprintf("%s(%d)", base, *maxLength)
	case precisionTypes[lower] && precision != nil && *precision > 0:
		if scale != nil && *scale > 0 {
			return fmt.Sprintf("%s(%d,%d)", base, *precision, *scale)
		}
		return fmt.Sprintf("%s(%d)", base, *precision)
	default:
		return base
	}
}

// SupportSet is a convenience for adapters to declare their capability
// matrix.
type SupportSet map[model.ObjectKind]bool

// Has reports whether kind is in the set. Tables, views and triggers are
// universal and always supported.
func (s SupportSet) Has(kind model.ObjectKind) bool {
	switch kind {
	case model.KindTables, model.KindViews, model.KindTriggers:
		return true
	}
	return s[kind]
}
