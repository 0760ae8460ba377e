package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arvenshaw/schemadoc/internal/catalog"
	"github.com/arvenshaw/schemadoc/internal/model"
)

func i64(n int64) *int64 { return &n }

func TestDisplayType(t *testing.T) {
	tests := []struct {
		name      string
		base      string
		maxLength *int64
		precision *int64
		scale     *int64
		want      string
	}{
		{"varchar with length", "varchar", i64(100), nil, nil, "varchar(100)"},
		{"varchar max", "varchar", i64(-1), nil, nil, "varchar(max)"},
		{"decimal with scale", "decimal", nil, i64(10), i64(2), "decimal(10,2)"},
		{"decimal without scale", "numeric", nil, i64(18), i64(0), "numeric(18)"},
		{"int ignores precision", "int", nil, i64(10), i64(0), "int"},
		{"bigint ignores length", "bigint", i64(8), nil, nil, "bigint"},
		{"bare text", "text", nil, nil, nil, "text"},
		{"oracle number", "NUMBER", nil, i64(10), i64(2), "NUMBER(10,2)"},
		{"oracle raw", "RAW", i64(16), nil, nil, "RAW(16)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayType(tt.base, tt.maxLength, tt.precision, tt.scale))
		})
	}
}

func TestANSIReferentialAction(t *testing.T) {
	var a ANSI
	assert.Equal(t, model.ActionCascade, a.ReferentialAction("CASCADE"))
	assert.Equal(t, model.ActionSetNull, a.ReferentialAction("SET NULL"))
	assert.Equal(t, model.ActionSetNull, a.ReferentialAction("SET_NULL"))
	assert.Equal(t, model.ActionSetDefault, a.ReferentialAction("set default"))
	assert.Equal(t, model.ActionRestrict, a.ReferentialAction("RESTRICT"))
	assert.Equal(t, model.ActionNoAction, a.ReferentialAction("NO ACTION"))
	assert.Equal(t, model.ActionNoAction, a.ReferentialAction(""))
}

func TestANSITriggerTiming(t *testing.T) {
	var a ANSI
	assert.Equal(t, model.TimingBefore, a.TriggerTiming("BEFORE"))
	assert.Equal(t, model.TimingInsteadOf, a.TriggerTiming("INSTEAD OF"))
	assert.Equal(t, model.TimingAfter, a.TriggerTiming("AFTER"))
	assert.Equal(t, model.TimingAfter, a.TriggerTiming(""))
}

func TestANSIParamDirection(t *testing.T) {
	var a ANSI
	assert.Equal(t, model.DirectionIn, a.ParamDirection("IN"))
	assert.Equal(t, model.DirectionOut, a.ParamDirection("OUT"))
	assert.Equal(t, model.DirectionInOut, a.ParamDirection("INOUT"))
	assert.Equal(t, model.DirectionInOut, a.ParamDirection("IN/OUT"))
	assert.Equal(t, model.DirectionIn, a.ParamDirection(""))
}

func TestANSIRoutineKind(t *testing.T) {
	var a ANSI
	kind, ok := a.RoutineKind("procedure")
	assert.True(t, ok)
	assert.Equal(t, model.RoutineProcedure, kind)

	kind, ok = a.RoutineKind("FUNCTION")
	assert.True(t, ok)
	assert.Equal(t, model.RoutineFunction, kind)

	_, ok = a.RoutineKind("AGGREGATE")
	assert.False(t, ok)
}

func TestANSIColumn(t *testing.T) {
	var a ANSI
	def := "0"
	c := a.Column(catalog.ColumnRow{
		Name:       "qty",
		Ordinal:    3,
		NativeType: "numeric",
		Precision:  i64(10),
		Scale:      i64(2),
		Nullable:   false,
		Default:    &def,
	})
	assert.Equal(t, "numeric(10,2)", c.NativeType)
	assert.Equal(t, model.BucketDecimal, c.DataType)
	assert.Equal(t, 3, c.Ordinal)
	assert.Equal(t, "0", *c.Default)
}

func TestSupportSetUniversalKinds(t *testing.T) {
	empty := SupportSet{}
	assert.True(t, empty.Has(model.KindTables))
	assert.True(t, empty.Has(model.KindViews))
	assert.True(t, empty.Has(model.KindTriggers))
	assert.False(t, empty.Has(model.KindProcedures))
	assert.False(t, empty.Has(model.KindSecurity))
}

func TestANSIIndexMethod(t *testing.T) {
	var a ANSI
	assert.Equal(t, "BTREE", a.IndexMethod(""))
	assert.Equal(t, "GIN", a.IndexMethod("gin"))
}
