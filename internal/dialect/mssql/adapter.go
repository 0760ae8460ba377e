// Package mssql adapts the SQL Server sys.* catalog. SQL Server is the
// richest engine here: every object kind exists, including synonyms and
// database principals.
package mssql

import (
	"fmt"
	"strings"

	"github.com/arvenshaw/schemadoc/internal/catalog"
	"github.com/arvenshaw/schemadoc/internal/dialect"
	"github.com/arvenshaw/schemadoc/internal/model"
)

// Adapter normalizes SQL Server catalog vocabulary.
type Adapter struct {
	dialect.ANSI
}

// NewAdapter builds the SQL Server adapter. Unquoted identifiers keep
// their case on disk but compare case-insensitively, so keys fold lower.
func NewAdapter() Adapter {
	return Adapter{ANSI: dialect.ANSI{FoldFn: strings.ToLower}}
}

func (Adapter) Engine() model.Engine { return model.EngineMSSQL }

var supported = dialect.SupportSet{
	model.KindProcedures: true,
	model.KindFunctions:  true,
	model.KindTypes:      true,
	model.KindSequences:  true,
	model.KindSynonyms:   true,
	model.KindSecurity:   true,
}

func (Adapter) Supports(kind model.ObjectKind) bool { return supported.Has(kind) }

func (Adapter) SystemSchemas() []string {
	return []string{"sys", "INFORMATION_SCHEMA", "guest"}
}

// Column composes the display type with SQL Server's byte-length quirk:
// sys.columns reports nchar/nvarchar lengths in bytes, double the
// character count.
func (a Adapter) Column(row catalog.ColumnRow) model.Column {
	c := a.ANSI.Column(row)
	c.NativeType = composeType(row.NativeType, row.MaxLength, row.Precision, row.Scale)
	return c
}

// Parameter applies the same type composition to routine parameters.
func (a Adapter) Parameter(row catalog.ParameterRow) model.Parameter {
	p := a.ANSI.Parameter(row)
	p.NativeType = composeType(row.NativeType, row.MaxLength, row.Precision, row.Scale)
	return p
}

var unicodeTypes = map[string]bool{
	"nchar": true, "nvarchar": true,
}

func composeType(base string, maxLength, precision, scale *int64) string {
	lower := strings.ToLower(base)
	if unicodeTypes[lower] && maxLength != nil && *maxLength > 0 {
		half := *maxLength / 2
		return fmt.Sprintf("%s(%d)", base, half)
	}
	return dialect.DisplayType(base, maxLength, precision, scale)
}

// ParseBaseObject splits a synonym's base object name into up to four
// bracket-quoted parts: server.database.schema.object.
func ParseBaseObject(name string) (server, database, schema, object string) {
	clean := strings.NewReplacer("[", "", "]", "").Replace(name)
	parts := strings.Split(clean, ".")
	switch len(parts) {
	case 1:
		object = parts[0]
	case 2:
		schema, object = parts[0], parts[1]
	case 3:
		database, schema, object = parts[0], parts[1], parts[2]
	default:
		server, database, schema, object = parts[0], parts[1], parts[2], parts[3]
	}
	return server, database, schema, object
}

var _ dialect.Adapter = Adapter{}
