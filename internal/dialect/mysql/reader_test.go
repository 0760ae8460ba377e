package mysql

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arvenshaw/schemadoc/internal/catalog"
	"github.com/arvenshaw/schemadoc/internal/model"
)

func mockReader(t *testing.T) (*Reader, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &Reader{db: db, host: "db.test"}, mock
}

func TestInfo(t *testing.T) {
	r, mock := mockReader(t)
	mock.ExpectQuery(`SELECT DATABASE\(\), VERSION\(\)`).
		WillReturnRows(sqlmock.NewRows([]string{"db", "version"}).AddRow("shop", "8.0.36"))

	info, err := r.Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "shop", info.Name)
	assert.Equal(t, "8.0.36", info.Version)
	assert.Equal(t, "db.test", info.Server)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListTables(t *testing.T) {
	r, mock := mockReader(t)
	mock.ExpectQuery(`FROM information_schema\.tables`).
		WillReturnRows(sqlmock.NewRows(
			[]string{"table_schema", "table_name", "table_rows", "kb", "table_comment"}).
			AddRow("shop", "orders", 1200, 512, "customer orders").
			AddRow("shop", "users", 40, 16, nil))

	tables, err := r.ListTables(context.Background())
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, "orders", tables[0].Name)
	assert.Equal(t, int64(1200), *tables[0].RowCount)
	assert.Equal(t, int64(512), *tables[0].SpaceKB)
	assert.Equal(t, "customer orders", tables[0].Description)
	assert.Empty(t, tables[1].Description)
}

func TestListColumnsStashesColumnType(t *testing.T) {
	r, mock := mockReader(t)
	mock.ExpectQuery(`FROM information_schema\.columns`).
		WillReturnRows(sqlmock.NewRows([]string{
			"table_schema", "table_name", "column_name", "ordinal_position",
			"data_type", "column_type", "character_maximum_length",
			"numeric_precision", "numeric_scale",
			"nullable", "column_default", "extra",
			"generation_expression", "collation_name", "column_comment",
		}).
			AddRow("shop", "orders", "id", 1,
				"int", "int unsigned", nil, 10, 0,
				0, nil, "auto_increment",
				nil, nil, "").
			AddRow("shop", "orders", "total", 2,
				"decimal", "decimal(10,2)", nil, 10, 2,
				1, "0.00", "",
				"price * qty", "utf8mb4_general_ci", "line total"))

	cols, err := r.ListColumns(context.Background())
	require.NoError(t, err)
	require.Len(t, cols, 2)

	assert.Equal(t, "auto_increment;type=int unsigned", cols[0].Extra)
	assert.False(t, cols[0].Nullable)

	assert.True(t, cols[1].Nullable)
	require.NotNil(t, cols[1].Computed)
	assert.Equal(t, "price * qty", *cols[1].Computed)
	assert.Equal(t, "utf8mb4_general_ci", cols[1].Collation)
}

func TestListForeignKeys(t *testing.T) {
	r, mock := mockReader(t)
	mock.ExpectQuery(`FROM information_schema\.key_column_usage kcu`).
		WillReturnRows(sqlmock.NewRows([]string{
			"table_schema", "table_name", "constraint_name",
			"ordinal_position", "column_name",
			"referenced_table_schema", "referenced_table_name", "referenced_column_name",
			"delete_rule", "update_rule",
		}).AddRow("shop", "orders", "fk_orders_user", 1, "user_id",
			"shop", "users", "id", "CASCADE", "NO ACTION"))

	fks, err := r.ListForeignKeys(context.Background())
	require.NoError(t, err)
	require.Len(t, fks, 1)
	assert.Equal(t, "fk_orders_user", fks[0].Constraint)
	assert.Equal(t, "users", fks[0].RefTable)
	assert.Equal(t, "CASCADE", fks[0].DeleteRule)
}

func TestListIndexesGroupsColumns(t *testing.T) {
	r, mock := mockReader(t)
	mock.ExpectQuery(`FROM information_schema\.statistics`).
		WillReturnRows(sqlmock.NewRows([]string{
			"table_schema", "table_name", "index_name", "unique",
			"index_type", "column_name", "seq_in_index",
		}).
			AddRow("shop", "orders", "PRIMARY", 1, "BTREE", "id", 1).
			AddRow("shop", "orders", "idx_orders_user", 0, "BTREE", "user_id", 1).
			AddRow("shop", "orders", "idx_orders_user", 0, "BTREE", "created_at", 2))

	idx, err := r.ListIndexes(context.Background())
	require.NoError(t, err)
	require.Len(t, idx, 2)

	assert.True(t, idx[0].Primary)
	assert.Equal(t, "idx_orders_user", idx[1].Name)
	assert.Equal(t, []string{"user_id", "created_at"}, idx[1].Columns)
	assert.False(t, idx[1].Unique)
}

func TestListRoutinesAttachesParameters(t *testing.T) {
	r, mock := mockReader(t)
	mock.ExpectQuery(`FROM information_schema\.routines`).
		WillReturnRows(sqlmock.NewRows([]string{
			"routine_schema", "routine_name", "routine_type",
			"dtd_identifier", "routine_definition", "routine_comment",
		}).AddRow("shop", "order_total", "FUNCTION", "decimal(10,2)", "BEGIN ... END", ""))

	mock.ExpectQuery(`FROM information_schema\.parameters`).
		WillReturnRows(sqlmock.NewRows([]string{
			"specific_name", "parameter_name", "ordinal_position",
			"dtd_identifier", "parameter_mode",
		}).AddRow("order_total", "order_id", 1, "int", "IN"))

	routines, err := r.ListRoutines(context.Background())
	require.NoError(t, err)
	require.Len(t, routines, 1)
	assert.Equal(t, "FUNCTION", routines[0].Kind)
	assert.Equal(t, "decimal(10,2)", routines[0].ReturnType)
	require.Len(t, routines[0].Params, 1)
	assert.Equal(t, "order_id", routines[0].Params[0].Name)
	assert.Equal(t, "IN", routines[0].Params[0].Mode)
}

func TestUnsupportedCapabilities(t *testing.T) {
	r, _ := mockReader(t)
	ctx := context.Background()

	_, err := r.ListTypes(ctx)
	assert.True(t, catalog.NotApplicable(err))
	_, err = r.ListSequences(ctx)
	assert.True(t, catalog.NotApplicable(err))
	_, err = r.ListSynonyms(ctx)
	assert.True(t, catalog.NotApplicable(err))
}

func TestQueryFailureWrapsKind(t *testing.T) {
	r, mock := mockReader(t)
	mock.ExpectQuery(`FROM information_schema\.views`).
		WillReturnError(assert.AnError)

	_, err := r.ListViews(context.Background())
	var qe *catalog.QueryError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, model.KindViews, qe.Kind)
	assert.Equal(t, model.EngineMySQL, qe.Dialect)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestUnquoteGrantee(t *testing.T) {
	assert.Equal(t, "app@%", unquoteGrantee("'app'@'%'"))
	assert.Equal(t, "root@localhost", unquoteGrantee("'root'@'localhost'"))
}

func TestConfigDSN(t *testing.T) {
	cfg := Config{Host: "db.example.com", Database: "shop", User: "svc", Password: "secret"}
	assert.Equal(t, "svc:secret@tcp(db.example.com:3306)/shop?parseTime=true", cfg.dsn())
}
