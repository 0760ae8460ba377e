package mysql

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arvenshaw/schemadoc/internal/catalog"
	"github.com/arvenshaw/schemadoc/internal/model"
)

func TestColumnAutoIncrement(t *testing.T) {
	a := NewAdapter()
	c := a.Column(catalog.ColumnRow{
		Name:       "id",
		Ordinal:    1,
		NativeType: "int",
		Extra:      "auto_increment;type=int",
	})
	assert.True(t, c.Identity)
	assert.Equal(t, "int", c.NativeType)
	assert.Equal(t, model.BucketInteger, c.DataType)
}

func TestColumnKeepsFullColumnType(t *testing.T) {
	a := NewAdapter()

	c := a.Column(catalog.ColumnRow{
		Name:       "size",
		Ordinal:    2,
		NativeType: "enum",
		Extra:      ";type=enum('small','medium','large')",
	})
	assert.Equal(t, "enum('small','medium','large')", c.NativeType)
	assert.Equal(t, model.BucketEnum, c.DataType)
	assert.False(t, c.Identity)

	unsigned := a.Column(catalog.ColumnRow{
		Name:       "count",
		Ordinal:    3,
		NativeType: "int",
		Extra:      ";type=int unsigned",
	})
	assert.Equal(t, "int unsigned", unsigned.NativeType)
	assert.Equal(t, model.BucketInteger, unsigned.DataType)
}

func TestEnumValues(t *testing.T) {
	tests := []struct {
		name       string
		columnType string
		want       []string
	}{
		{"enum", "enum('small','medium','large')", []string{"small", "medium", "large"}},
		{"set", "set('a','b')", []string{"a", "b"}},
		{"escaped quote", "enum('it''s','plain')", []string{"it's", "plain"}},
		{"comma inside value", "enum('a,b','c')", []string{"a,b", "c"}},
		{"not an enum", "varchar(20)", nil},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EnumValues(tt.columnType))
		})
	}
}

func TestAdapterCapabilities(t *testing.T) {
	a := NewAdapter()
	assert.Equal(t, model.EngineMySQL, a.Engine())
	assert.True(t, a.Supports(model.KindTables))
	assert.True(t, a.Supports(model.KindProcedures))
	assert.True(t, a.Supports(model.KindSecurity))
	assert.False(t, a.Supports(model.KindSequences))
	assert.False(t, a.Supports(model.KindTypes))
	assert.False(t, a.Supports(model.KindSynonyms))
	assert.Contains(t, a.SystemSchemas(), "performance_schema")
}
