package oracle

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arvenshaw/schemadoc/internal/model"
)

func TestFoldUppercase(t *testing.T) {
	a := NewAdapter()
	assert.Equal(t, "EMPLOYEES", a.Fold("employees"))
	assert.Equal(t, "HR", a.Fold("Hr"))
}

func TestTriggerTiming(t *testing.T) {
	a := NewAdapter()
	assert.Equal(t, model.TimingBefore, a.TriggerTiming("BEFORE EACH ROW"))
	assert.Equal(t, model.TimingBefore, a.TriggerTiming("BEFORE STATEMENT"))
	assert.Equal(t, model.TimingAfter, a.TriggerTiming("AFTER EACH ROW"))
	assert.Equal(t, model.TimingInsteadOf, a.TriggerTiming("INSTEAD OF"))
}

func TestTypeCategory(t *testing.T) {
	a := NewAdapter()
	assert.Equal(t, model.TypeComposite, a.TypeCategory("OBJECT"))
	assert.Equal(t, model.TypeAlias, a.TypeCategory("COLLECTION"))
}

func TestParamDirection(t *testing.T) {
	a := NewAdapter()
	assert.Equal(t, model.DirectionInOut, a.ParamDirection("IN/OUT"))
	assert.Equal(t, model.DirectionOut, a.ParamDirection("OUT"))
}

func TestAdapterCapabilities(t *testing.T) {
	a := NewAdapter()
	assert.Equal(t, model.EngineOracle, a.Engine())
	assert.True(t, a.Supports(model.KindSynonyms))
	assert.True(t, a.Supports(model.KindSequences))
	assert.True(t, a.Supports(model.KindTypes))
	assert.False(t, a.Supports(model.KindSecurity))
	assert.Contains(t, a.SystemSchemas(), "SYS")
}
