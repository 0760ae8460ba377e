// Package mysql adapts the MySQL/MariaDB information_schema catalog.
package mysql

import (
	"strings"

	"github.com/arvenshaw/schemadoc/internal/catalog"
	"github.com/arvenshaw/schemadoc/internal/dialect"
	"github.com/arvenshaw/schemadoc/internal/model"
)

// Adapter normalizes MySQL catalog vocabulary. MySQL has no user-defined
// types, sequences or synonyms; on MySQL a "schema" is the database itself.
type Adapter struct {
	dialect.ANSI
}

// NewAdapter builds the MySQL adapter.
func NewAdapter() Adapter {
	return Adapter{ANSI: dialect.ANSI{FoldFn: strings.ToLower}}
}

func (Adapter) Engine() model.Engine { return model.EngineMySQL }

var supported = dialect.SupportSet{
	model.KindProcedures: true,
	model.KindFunctions:  true,
	model.KindSecurity:   true,
}

func (Adapter) Supports(kind model.ObjectKind) bool { return supported.Has(kind) }

func (Adapter) SystemSchemas() []string {
	return []string{"mysql", "information_schema", "performance_schema", "sys"}
}

// Column detects auto_increment via the EXTRA field and keeps the full
// column_type (enum('a','b'), int unsigned) as the native display type.
func (a Adapter) Column(row catalog.ColumnRow) model.Column {
	c := a.ANSI.Column(row)
	extra := strings.ToLower(row.Extra)
	if strings.Contains(extra, "auto_increment") {
		c.Identity = true
	}
	// column_type carries what data_type drops: display width, unsigned,
	// enum and set member lists.
	if ct := columnType(row); ct != "" {
		c.NativeType = ct
		c.DataType = model.NormalizeType(baseType(ct))
	}
	return c
}

// columnType pulls the full column_type out of Extra, where the reader
// stashes it behind the auto_increment marker.
func columnType(row catalog.ColumnRow) string {
	for _, part := range strings.Split(row.Extra, ";") {
		if t, ok := strings.CutPrefix(part, "type="); ok {
			return t
		}
	}
	return ""
}

func baseType(columnType string) string {
	base := columnType
	if i := strings.IndexAny(base, "( "); i >= 0 {
		base = base[:i]
	}
	return base
}

// EnumValues parses the member list out of an enum or set column_type,
// e.g. enum('small','medium','large').
func EnumValues(columnType string) []string {
	lower := strings.ToLower(columnType)
	if !strings.HasPrefix(lower, "enum(") && !strings.HasPrefix(lower, "set(") {
		return nil
	}
	open := strings.Index(columnType, "(")
	end := strings.LastIndex(columnType, ")")
	if open < 0 || end <= open {
		return nil
	}
	var values []string
	for _, part := range splitQuoted(columnType[open+1 : end]) {
		part = strings.TrimSpace(part)
		if len(part) >= 2 && part[0] == '\'' && part[len(part)-1] == '\'' {
			values = append(values, strings.ReplaceAll(part[1:len(part)-1], "''", "'"))
		}
	}
	return values
}

// splitQuoted splits on commas that sit outside single quotes.
func splitQuoted(s string) []string {
	var parts []string
	start := 0
	inQuote := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\'':
			inQuote = !inQuote
		case ',':
			if !inQuote {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

var _ dialect.Adapter = Adapter{}
