package mssql

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arvenshaw/schemadoc/internal/catalog"
	"github.com/arvenshaw/schemadoc/internal/model"
)

func i64(n int64) *int64 { return &n }

func TestColumnHalvesUnicodeByteLengths(t *testing.T) {
	a := NewAdapter()

	c := a.Column(catalog.ColumnRow{
		Name:       "title",
		Ordinal:    1,
		NativeType: "nvarchar",
		MaxLength:  i64(100), // bytes: 50 characters
	})
	assert.Equal(t, "nvarchar(50)", c.NativeType)

	plain := a.Column(catalog.ColumnRow{
		Name:       "code",
		Ordinal:    2,
		NativeType: "varchar",
		MaxLength:  i64(100),
	})
	assert.Equal(t, "varchar(100)", plain.NativeType)

	max := a.Column(catalog.ColumnRow{
		Name:       "body",
		Ordinal:    3,
		NativeType: "nvarchar",
		MaxLength:  i64(-1),
	})
	assert.Equal(t, "nvarchar(max)", max.NativeType)
}

func TestParameterTypeComposition(t *testing.T) {
	a := NewAdapter()
	p := a.Parameter(catalog.ParameterRow{
		Name:       "@name",
		Ordinal:    1,
		NativeType: "nchar",
		MaxLength:  i64(20),
		Mode:       "OUT",
	})
	assert.Equal(t, "nchar(10)", p.NativeType)
	assert.Equal(t, model.DirectionOut, p.Direction)
}

func TestParseBaseObject(t *testing.T) {
	tests := []struct {
		in                               string
		server, database, schema, object string
	}{
		{"orders", "", "", "", "orders"},
		{"dbo.orders", "", "", "dbo", "orders"},
		{"warehouse.dbo.stock", "", "warehouse", "dbo", "stock"},
		{"[srv1].[warehouse].[dbo].[stock]", "srv1", "warehouse", "dbo", "stock"},
	}
	for _, tt := range tests {
		server, database, schema, object := ParseBaseObject(tt.in)
		assert.Equal(t, tt.server, server, tt.in)
		assert.Equal(t, tt.database, database, tt.in)
		assert.Equal(t, tt.schema, schema, tt.in)
		assert.Equal(t, tt.object, object, tt.in)
	}
}

func TestAdapterCapabilities(t *testing.T) {
	a := NewAdapter()
	assert.Equal(t, model.EngineMSSQL, a.Engine())
	for _, kind := range model.AllKinds() {
		assert.True(t, a.Supports(kind), "SQL Server supports %s", kind)
	}
}
