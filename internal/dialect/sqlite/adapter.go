// Package sqlite adapts the SQLite catalog, which is a single sqlite_master
// table plus PRAGMA results. Everything lives in the implicit "main" schema.
package sqlite

import (
	"strings"

	"github.com/arvenshaw/schemadoc/internal/catalog"
	"github.com/arvenshaw/schemadoc/internal/dialect"
	"github.com/arvenshaw/schemadoc/internal/model"
)

// MainSchema is the name every object is filed under.
const MainSchema = "main"

// Adapter normalizes SQLite catalog vocabulary. SQLite only has tables,
// views, indexes and triggers.
type Adapter struct {
	dialect.ANSI
}

// NewAdapter builds the SQLite adapter.
func NewAdapter() Adapter {
	return Adapter{ANSI: dialect.ANSI{FoldFn: strings.ToLower}}
}

func (Adapter) Engine() model.Engine { return model.EngineSQLite }

// Supports covers only the universal kinds.
func (Adapter) Supports(kind model.ObjectKind) bool {
	return dialect.SupportSet{}.Has(kind)
}

func (Adapter) SystemSchemas() []string { return nil }

// Column keeps the declared type as-is; SQLite stores whatever the CREATE
// TABLE said, including no type at all.
func (a Adapter) Column(row catalog.ColumnRow) model.Column {
	c := a.ANSI.Column(row)
	if row.NativeType == "" {
		c.NativeType = "blob"
		c.DataType = model.NormalizeType("blob")
	}
	// An INTEGER PRIMARY KEY column aliases the rowid and auto-assigns.
	if row.Extra == "rowid" {
		c.Identity = true
	}
	return c
}

var _ dialect.Adapter = Adapter{}
