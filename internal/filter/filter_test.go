package filter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arvenshaw/schemadoc/internal/model"
)

func TestValidateConflict(t *testing.T) {
	sel := Selection{
		IncludeSchemas: []string{"Sales"},
		ExcludeSchemas: []string{"sales"},
	}
	err := sel.Validate(strings.ToLower)
	var ce *ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "Sales", ce.Schema)

	require.NoError(t, Selection{
		IncludeSchemas: []string{"sales"},
		ExcludeSchemas: []string{"audit"},
	}.Validate(strings.ToLower))
}

func TestSchemasDefaultExcludesSystem(t *testing.T) {
	system := []string{"pg_catalog", "information_schema"}
	keep := Selection{}.Schemas(strings.ToLower, system)

	assert.True(t, keep("public"))
	assert.False(t, keep("pg_catalog"))
	assert.False(t, keep("INFORMATION_SCHEMA"))
}

func TestSchemasIncludeListWinsOverSystemDefault(t *testing.T) {
	system := []string{"pg_catalog"}
	keep := Selection{IncludeSchemas: []string{"pg_catalog"}}.Schemas(strings.ToLower, system)

	// an explicit include list turns the system default off
	assert.True(t, keep("pg_catalog"))
	assert.False(t, keep("public"))
}

func TestSchemasExcludeList(t *testing.T) {
	keep := Selection{ExcludeSchemas: []string{"Audit"}}.Schemas(strings.ToLower, nil)
	assert.False(t, keep("audit"))
	assert.True(t, keep("sales"))
}

func TestKindSet(t *testing.T) {
	all := Selection{}.KindSet()
	for _, kind := range model.AllKinds() {
		assert.True(t, all[kind], "empty selection enables %s", kind)
	}

	views := Selection{Kinds: []model.ObjectKind{model.KindViews}}.KindSet()
	assert.True(t, views[model.KindViews])
	assert.False(t, views[model.KindTables])
}
