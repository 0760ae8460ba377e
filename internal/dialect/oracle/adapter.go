// Package oracle adapts the Oracle ALL_* data dictionary. Unquoted Oracle
// identifiers fold to upper case, the opposite of every other engine here.
package oracle

import (
	"strings"

	"github.com/arvenshaw/schemadoc/internal/dialect"
	"github.com/arvenshaw/schemadoc/internal/model"
)

// Adapter normalizes Oracle catalog vocabulary.
type Adapter struct {
	dialect.ANSI
}

// NewAdapter builds the Oracle adapter.
func NewAdapter() Adapter {
	return Adapter{ANSI: dialect.ANSI{FoldFn: strings.ToUpper}}
}

func (Adapter) Engine() model.Engine { return model.EngineOracle }

var supported = dialect.SupportSet{
	model.KindProcedures: true,
	model.KindFunctions:  true,
	model.KindTypes:      true,
	model.KindSequences:  true,
	model.KindSynonyms:   true,
}

func (Adapter) Supports(kind model.ObjectKind) bool { return supported.Has(kind) }

func (Adapter) SystemSchemas() []string {
	return []string{
		"SYS", "SYSTEM", "OUTLN", "DIP", "ORACLE_OCM", "DBSNMP",
		"APPQOSSYS", "WMSYS", "EXFSYS", "CTXSYS", "XDB", "ORDDATA",
		"ORDSYS", "MDSYS", "OLAPSYS", "ANONYMOUS", "FLOWS_FILES",
	}
}

// TriggerTiming handles the composite spellings of all_triggers, e.g.
// "BEFORE EACH ROW" or "INSTEAD OF".
func (Adapter) TriggerTiming(raw string) model.TriggerTiming {
	upper := strings.ToUpper(raw)
	switch {
	case strings.Contains(upper, "INSTEAD OF"):
		return model.TimingInsteadOf
	case strings.Contains(upper, "BEFORE"):
		return model.TimingBefore
	default:
		return model.TimingAfter
	}
}

// TypeCategory maps the all_types typecode values.
func (Adapter) TypeCategory(raw string) model.TypeCategory {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "OBJECT":
		return model.TypeComposite
	default:
		return model.TypeAlias
	}
}

var _ dialect.Adapter = Adapter{}
