package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arvenshaw/schemadoc/internal/catalog"
	"github.com/arvenshaw/schemadoc/internal/model"
)

func TestColumnRowidAlias(t *testing.T) {
	a := NewAdapter()
	c := a.Column(catalog.ColumnRow{
		Name:       "id",
		Ordinal:    1,
		NativeType: "INTEGER",
		Extra:      "rowid",
	})
	assert.True(t, c.Identity)
	assert.Equal(t, "INTEGER", c.NativeType)
	assert.Equal(t, model.BucketInteger, c.DataType)
}

func TestColumnUntypedDefaultsToBlob(t *testing.T) {
	a := NewAdapter()
	c := a.Column(catalog.ColumnRow{Name: "payload", Ordinal: 1})
	assert.Equal(t, "blob", c.NativeType)
	assert.Equal(t, model.BucketBinary, c.DataType)
}

func TestAdapterCapabilities(t *testing.T) {
	a := NewAdapter()
	assert.Equal(t, model.EngineSQLite, a.Engine())
	assert.True(t, a.Supports(model.KindTables))
	assert.True(t, a.Supports(model.KindViews))
	assert.True(t, a.Supports(model.KindTriggers))
	assert.False(t, a.Supports(model.KindProcedures))
	assert.False(t, a.Supports(model.KindFunctions))
	assert.False(t, a.Supports(model.KindTypes))
	assert.False(t, a.Supports(model.KindSequences))
	assert.False(t, a.Supports(model.KindSynonyms))
	assert.False(t, a.Supports(model.KindSecurity))
	assert.Empty(t, a.SystemSchemas())
}
