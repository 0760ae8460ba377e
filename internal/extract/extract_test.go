package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arvenshaw/schemadoc/internal/catalog"
	"github.com/arvenshaw/schemadoc/internal/dialect"
	"github.com/arvenshaw/schemadoc/internal/filter"
	"github.com/arvenshaw/schemadoc/internal/model"
)

// fakeReader serves canned catalog rows. Any entry in errs overrides the
// corresponding capability with a failure.
type fakeReader struct {
	info       catalog.DatabaseInfo
	schemas    []catalog.SchemaRow
	tables     []catalog.TableRow
	columns    []catalog.ColumnRow
	pks        []catalog.PrimaryKeyRow
	fks        []catalog.ForeignKeyRow
	checks     []catalog.CheckRow
	indexes    []catalog.IndexRow
	views      []catalog.ViewRow
	routines   []catalog.RoutineRow
	triggers   []catalog.TriggerRow
	types      []catalog.TypeRow
	sequences  []catalog.SequenceRow
	synonyms   []catalog.SynonymRow
	security   *catalog.SecurityRows
	errs       map[string]error
}

func (f *fakeReader) err(op string) error { return f.errs[op] }

func (f *fakeReader) Info(context.Context) (catalog.DatabaseInfo, error) {
	return f.info, f.err("info")
}
func (f *fakeReader) ListSchemas(context.Context) ([]catalog.SchemaRow, error) {
	return f.schemas, f.err("schemas")
}
func (f *fakeReader) ListTables(context.Context) ([]catalog.TableRow, error) {
	return f.tables, f.err("tables")
}
func (f *fakeReader) ListColumns(context.Context) ([]catalog.ColumnRow, error) {
	return f.columns, f.err("columns")
}
func (f *fakeReader) ListPrimaryKeys(context.Context) ([]catalog.PrimaryKeyRow, error) {
	return f.pks, f.err("pks")
}
func (f *fakeReader) ListForeignKeys(context.Context) ([]catalog.ForeignKeyRow, error) {
	return f.fks, f.err("fks")
}
func (f *fakeReader) ListChecks(context.Context) ([]catalog.CheckRow, error) {
	return f.checks, f.err("checks")
}
func (f *fakeReader) ListIndexes(context.Context) ([]catalog.IndexRow, error) {
	return f.indexes, f.err("indexes")
}
func (f *fakeReader) ListViews(context.Context) ([]catalog.ViewRow, error) {
	return f.views, f.err("views")
}
func (f *fakeReader) ListRoutines(context.Context) ([]catalog.RoutineRow, error) {
	return f.routines, f.err("routines")
}
func (f *fakeReader) ListTriggers(context.Context) ([]catalog.TriggerRow, error) {
	return f.triggers, f.err("triggers")
}
func (f *fakeReader) ListTypes(context.Context) ([]catalog.TypeRow, error) {
	return f.types, f.err("types")
}
func (f *fakeReader) ListSequences(context.Context) ([]catalog.SequenceRow, error) {
	return f.sequences, f.err("sequences")
}
func (f *fakeReader) ListSynonyms(context.Context) ([]catalog.SynonymRow, error) {
	return f.synonyms, f.err("synonyms")
}
func (f *fakeReader) ListSecurity(context.Context) (*catalog.SecurityRows, error) {
	if err := f.err("security"); err != nil {
		return nil, err
	}
	if f.security == nil {
		return &catalog.SecurityRows{}, nil
	}
	return f.security, nil
}
func (f *fakeReader) Close() error { return nil }

var _ catalog.Reader = (*fakeReader)(nil)

// testAdapter supports everything and folds with a configurable rule.
type testAdapter struct {
	dialect.ANSI
	engine model.Engine
}

func (a testAdapter) Engine() model.Engine             { return a.engine }
func (testAdapter) Supports(model.ObjectKind) bool     { return true }
func (testAdapter) SystemSchemas() []string            { return []string{"sys_internal"} }

func newTestAdapter() testAdapter {
	return testAdapter{ANSI: dialect.ANSI{FoldFn: strings.ToLower}, engine: model.EnginePostgres}
}

func strp(s string) *string { return &s }

// customersReader holds a small shop catalog: customers and orders with a
// foreign key, a view over both, one function, a trigger, an enum type, a
// sequence and one principal.
func customersReader() *fakeReader {
	return &fakeReader{
		info: catalog.DatabaseInfo{Name: "shop", Version: "16.1", Server: "db.test"},
		schemas: []catalog.SchemaRow{
			{Name: "public"},
			{Name: "sys_internal"},
		},
		tables: []catalog.TableRow{
			{Schema: "public", Name: "customers", Description: "registered customers"},
			{Schema: "public", Name: "orders"},
			{Schema: "sys_internal", Name: "hidden"},
		},
		columns: []catalog.ColumnRow{
			{Schema: "public", Table: "customers", Name: "id", Ordinal: 1, NativeType: "integer", Identity: true},
			{Schema: "public", Table: "customers", Name: "email", Ordinal: 2, NativeType: "text", Nullable: false},
			{Schema: "public", Table: "orders", Name: "id", Ordinal: 1, NativeType: "integer", Identity: true},
			{Schema: "public", Table: "orders", Name: "customer_id", Ordinal: 2, NativeType: "integer"},
			{Schema: "public", Table: "orders", Name: "total", Ordinal: 3, NativeType: "numeric", Nullable: true},
			{Schema: "public", Table: "order_summary", Name: "customer_email", Ordinal: 1, NativeType: "text"},
		},
		pks: []catalog.PrimaryKeyRow{
			{Schema: "public", Table: "customers", Constraint: "customers_pkey", Column: "id", Ordinal: 1},
			{Schema: "public", Table: "orders", Constraint: "orders_pkey", Column: "id", Ordinal: 1},
		},
		fks: []catalog.ForeignKeyRow{
			{
				Schema: "public", Table: "orders", Constraint: "fk_orders_customer",
				Ordinal: 1, Column: "customer_id",
				RefSchema: "public", RefTable: "customers", RefColumn: "id",
				DeleteRule: "CASCADE", UpdateRule: "NO ACTION",
			},
		},
		checks: []catalog.CheckRow{
			{Schema: "public", Table: "orders", Name: "orders_total_check", Definition: "total >= 0"},
		},
		indexes: []catalog.IndexRow{
			{Schema: "public", Table: "orders", Name: "orders_pkey", Unique: true, Primary: true, Columns: []string{"id"}},
			{Schema: "public", Table: "orders", Name: "idx_orders_customer", Columns: []string{"customer_id"}, Method: "btree"},
		},
		views: []catalog.ViewRow{
			{Schema: "public", Name: "order_summary", Definition: "SELECT ...", BaseTables: []string{"public.customers", "public.orders"}},
		},
		routines: []catalog.RoutineRow{
			{
				Schema: "public", Name: "order_total", Kind: "FUNCTION", FunctionType: "SCALAR",
				ReturnType: "numeric", Language: "sql",
				Params: []catalog.ParameterRow{
					{Name: "order_id", Ordinal: 1, NativeType: "integer", Mode: "IN"},
				},
			},
			{Schema: "public", Name: "close_order", Kind: "PROCEDURE", Language: "plpgsql"},
		},
		triggers: []catalog.TriggerRow{
			{
				Schema: "public", Name: "orders_audit", ParentSchema: "public", ParentTable: "orders",
				Timing: "AFTER", Events: []string{"UPDATE"},
			},
		},
		types: []catalog.TypeRow{
			{Schema: "public", Name: "order_status", Category: "e", EnumValues: []string{"open", "shipped"}},
		},
		sequences: []catalog.SequenceRow{
			{Schema: "public", Name: "orders_id_seq", DataType: "bigint", Start: 1, Increment: 1, Min: "1", Max: "9223372036854775807"},
		},
		synonyms: []catalog.SynonymRow{},
		security: &catalog.SecurityRows{
			Principals: []catalog.PrincipalRow{
				{Name: "app_rw", Kind: "ROLE"},
				{Name: "reporter", Kind: "USER"},
			},
			Grants: []catalog.GrantRow{
				{Grantee: "reporter", Privilege: "SELECT", State: "GRANT", ObjectSchema: "public", ObjectName: "orders"},
			},
			Memberships: []catalog.MembershipRow{
				{Member: "reporter", Role: "app_rw"},
			},
		},
	}
}

func TestExtractFullCatalog(t *testing.T) {
	snap, err := Extract(context.Background(), customersReader(), newTestAdapter(), filter.Selection{})
	require.NoError(t, err)

	assert.Equal(t, "shop", snap.DatabaseName)
	assert.Equal(t, "16.1", snap.Version)
	assert.Equal(t, 2, snap.Count(model.KindTables), "system schema tables are excluded")
	assert.Equal(t, 1, snap.Count(model.KindViews))
	assert.Equal(t, 1, snap.Count(model.KindProcedures))
	assert.Equal(t, 1, snap.Count(model.KindFunctions))
	assert.Equal(t, 1, snap.Count(model.KindTriggers))
	assert.Equal(t, 1, snap.Count(model.KindTypes))
	assert.Equal(t, 1, snap.Count(model.KindSequences))
	assert.Equal(t, 2, snap.Count(model.KindSecurity))

	require.Len(t, snap.Schemas, 1)
	sc := snap.Schemas[0]
	assert.Equal(t, "public", sc.Name)

	orders := sc.Tables[1]
	assert.Equal(t, "orders", orders.ID.Name)
	require.NotNil(t, orders.PrimaryKey)
	assert.Equal(t, []string{"id"}, orders.PrimaryKey.Columns)
	require.Len(t, orders.ForeignKeys, 1)
	assert.Equal(t, model.ActionCascade, orders.ForeignKeys[0].OnDelete)
	assert.Equal(t, model.ActionNoAction, orders.ForeignKeys[0].OnUpdate)
	require.Len(t, orders.Checks, 1)
	assert.Equal(t, []string{"orders_audit"}, orders.Triggers)

	fn := sc.Functions[0]
	assert.Equal(t, "SCALAR", fn.FunctionType)
	assert.Equal(t, "numeric", fn.ReturnType)
	require.Len(t, fn.Parameters, 1)
	assert.Equal(t, model.DirectionIn, fn.Parameters[0].Direction)

	require.Len(t, snap.Graph.Edges(), 1)
	edge := snap.Graph.Edges()[0]
	assert.True(t, edge.Resolved)
	assert.Equal(t, "fk_orders_customer", edge.Via)

	assert.Empty(t, snap.Warnings)

	reporter := snap.Principals[1]
	assert.Equal(t, "reporter", reporter.Name)
	assert.Equal(t, model.PrincipalUser, reporter.Kind)
	require.Len(t, reporter.Grants, 1)
	assert.Equal(t, []string{"app_rw"}, reporter.Memberships)
}

func TestExtractViewsOnlySelection(t *testing.T) {
	reader := customersReader()
	reader.views = append(reader.views, catalog.ViewRow{Schema: "public", Name: "open_orders", Definition: "SELECT ..."})

	sel := filter.Selection{Kinds: []model.ObjectKind{model.KindViews}}
	snap, err := Extract(context.Background(), reader, newTestAdapter(), sel)
	require.NoError(t, err)

	assert.Equal(t, 2, snap.Count(model.KindViews))
	assert.Equal(t, 0, snap.Count(model.KindTables))
	assert.Equal(t, 0, snap.Count(model.KindFunctions))
	assert.Equal(t, 0, snap.Count(model.KindSequences))
	assert.Equal(t, 0, snap.Count(model.KindSecurity))
	assert.Empty(t, snap.Graph.Edges())
}

func TestExtractSchemaFilter(t *testing.T) {
	reader := customersReader()
	sel := filter.Selection{ExcludeSchemas: []string{"PUBLIC"}}
	snap, err := Extract(context.Background(), reader, newTestAdapter(), sel)
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Count(model.KindTables), "exclusion folds case")
}

func TestExtractConflictingSelection(t *testing.T) {
	sel := filter.Selection{
		IncludeSchemas: []string{"public"},
		ExcludeSchemas: []string{"public"},
	}
	_, err := Extract(context.Background(), customersReader(), newTestAdapter(), sel)
	var ce *filter.ConflictError
	require.ErrorAs(t, err, &ce)
}

func TestExtractStructuralFailuresAbort(t *testing.T) {
	for _, op := range []string{"info", "schemas", "tables", "columns"} {
		reader := customersReader()
		reader.errs = map[string]error{op: errors.New("permission denied")}
		_, err := Extract(context.Background(), reader, newTestAdapter(), filter.Selection{})
		require.Error(t, err, "failure of %s must abort", op)
	}
}

func TestExtractCapabilityFailuresDegrade(t *testing.T) {
	reader := customersReader()
	reader.errs = map[string]error{
		"indexes":  errors.New("no privilege on statistics"),
		"routines": errors.New("routines unavailable"),
	}
	snap, err := Extract(context.Background(), reader, newTestAdapter(), filter.Selection{})
	require.NoError(t, err)

	assert.Equal(t, 2, snap.Count(model.KindTables), "tables survive capability failures")
	assert.Equal(t, 0, snap.Count(model.KindFunctions))

	ops := make(map[string]bool)
	for _, w := range snap.Warnings {
		ops[w.Op] = true
	}
	assert.True(t, ops["tables"], "index failure warns under tables")
	assert.True(t, ops["procedures"])
	assert.True(t, ops["functions"])
}

func TestExtractNotApplicableCapability(t *testing.T) {
	reader := customersReader()
	reader.errs = map[string]error{"synonyms": catalog.ErrNotApplicable}

	snap, err := Extract(context.Background(), reader, newTestAdapter(), filter.Selection{})
	require.NoError(t, err)
	assert.False(t, snap.Applicable(model.KindSynonyms))
	assert.True(t, snap.Applicable(model.KindTables))
	for _, w := range snap.Warnings {
		assert.NotEqual(t, string(model.KindSynonyms), w.Op, "not-applicable is not a warning")
	}
}

func TestExtractSkipsInvalidTable(t *testing.T) {
	reader := customersReader()
	// a table the column listing never mentions
	reader.tables = append(reader.tables, catalog.TableRow{Schema: "public", Name: "broken"})

	snap, err := Extract(context.Background(), reader, newTestAdapter(), filter.Selection{})
	require.NoError(t, err)

	assert.Equal(t, 2, snap.Count(model.KindTables))
	found := false
	for _, w := range snap.Warnings {
		if strings.Contains(w.Message, "public.broken") {
			found = true
		}
	}
	assert.True(t, found, "skipped table must leave a warning")
}

func TestExtractUnresolvedReferenceWarns(t *testing.T) {
	reader := customersReader()
	reader.fks = append(reader.fks, catalog.ForeignKeyRow{
		Schema: "public", Table: "orders", Constraint: "fk_orders_region",
		Ordinal: 1, Column: "customer_id",
		RefSchema: "geo", RefTable: "regions", RefColumn: "id",
	})

	snap, err := Extract(context.Background(), reader, newTestAdapter(), filter.Selection{})
	require.NoError(t, err)

	var unresolved int
	for _, e := range snap.Graph.Edges() {
		if !e.Resolved {
			unresolved++
			assert.Equal(t, "geo.regions", e.Target.String())
		}
	}
	assert.Equal(t, 1, unresolved)

	found := false
	for _, w := range snap.Warnings {
		if w.Op == "graph" && strings.Contains(w.Message, "geo.regions") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestExtractDefaultActionNormalization(t *testing.T) {
	reader := customersReader()
	reader.fks[0].DeleteRule = ""
	reader.fks[0].UpdateRule = "NOACTION"

	snap, err := Extract(context.Background(), reader, newTestAdapter(), filter.Selection{})
	require.NoError(t, err)

	fk := snap.Schemas[0].Tables[1].ForeignKeys[0]
	assert.Equal(t, model.ActionNoAction, fk.OnDelete)
	assert.Equal(t, model.ActionNoAction, fk.OnUpdate)
}

// Two readers describing the same catalog in different engine spellings
// must normalize to structurally equivalent snapshots.
func TestExtractTwoDialectEquivalence(t *testing.T) {
	lower := customersReader()

	upper := customersReader()
	up := func(s string) string { return strings.ToUpper(s) }
	for i := range upper.schemas {
		upper.schemas[i].Name = up(upper.schemas[i].Name)
	}
	for i := range upper.tables {
		upper.tables[i].Schema = up(upper.tables[i].Schema)
		upper.tables[i].Name = up(upper.tables[i].Name)
	}
	for i := range upper.columns {
		upper.columns[i].Schema = up(upper.columns[i].Schema)
		upper.columns[i].Table = up(upper.columns[i].Table)
	}
	for i := range upper.pks {
		upper.pks[i].Schema = up(upper.pks[i].Schema)
		upper.pks[i].Table = up(upper.pks[i].Table)
	}
	for i := range upper.fks {
		upper.fks[i].Schema = up(upper.fks[i].Schema)
		upper.fks[i].Table = up(upper.fks[i].Table)
		upper.fks[i].RefSchema = up(upper.fks[i].RefSchema)
		upper.fks[i].RefTable = up(upper.fks[i].RefTable)
	}
	upper.checks = nil
	upper.indexes = nil
	upper.views = nil
	upper.routines = nil
	upper.triggers = nil
	upper.types = nil
	upper.sequences = nil
	upper.security = nil
	lower.checks = nil
	lower.indexes = nil
	lower.views = nil
	lower.routines = nil
	lower.triggers = nil
	lower.types = nil
	lower.sequences = nil
	lower.security = nil

	upperAdapter := testAdapter{ANSI: dialect.ANSI{FoldFn: strings.ToUpper}, engine: model.EngineOracle}

	a, err := Extract(context.Background(), lower, newTestAdapter(), filter.Selection{})
	require.NoError(t, err)
	b, err := Extract(context.Background(), upper, upperAdapter, filter.Selection{})
	require.NoError(t, err)

	assert.Equal(t, a.Count(model.KindTables), b.Count(model.KindTables))
	require.Equal(t, len(a.Graph.Edges()), len(b.Graph.Edges()))
	for i, ea := range a.Graph.Edges() {
		eb := b.Graph.Edges()[i]
		assert.Equal(t, ea.Resolved, eb.Resolved)
		assert.Equal(t, strings.ToUpper(ea.Via), strings.ToUpper(eb.Via))
		assert.Equal(t, strings.ToUpper(ea.Target.Name), strings.ToUpper(eb.Target.Name))
	}
}
