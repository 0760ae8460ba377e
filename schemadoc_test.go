package schemadoc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arvenshaw/schemadoc/internal/model"
)

func TestDialects(t *testing.T) {
	assert.Equal(t, []string{"mssql", "mysql", "oracle", "postgresql", "sqlite"}, Dialects())
}

func TestExtractUnknownDialect(t *testing.T) {
	_, err := Extract(context.Background(), Options{Dialect: "db2"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown dialect "db2"`)
}

func TestExtractConflictingSchemas(t *testing.T) {
	_, err := Extract(context.Background(), Options{
		Dialect:        "postgresql",
		IncludeSchemas: []string{"sales"},
		ExcludeSchemas: []string{"Sales"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "both included and excluded")
}

func TestSelectionParsesObjectTypes(t *testing.T) {
	sel, err := selection(Options{ObjectTypes: []string{"tables", "Views"}})
	require.NoError(t, err)
	assert.Equal(t, []model.ObjectKind{model.KindTables, model.KindViews}, sel.Kinds)

	sel, err = selection(Options{ObjectTypes: []string{"all"}})
	require.NoError(t, err)
	assert.Nil(t, sel.Kinds)

	_, err = selection(Options{ObjectTypes: []string{"indexes"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown object type "indexes"`)
}
