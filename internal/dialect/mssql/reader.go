package mssql

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/microsoft/go-mssqldb"

	"github.com/arvenshaw/schemadoc/internal/catalog"
	"github.com/arvenshaw/schemadoc/internal/model"
)

// Config holds SQL Server connection settings.
type Config struct {
	URL      string
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

func (c Config) dsn() string {
	if c.URL != "" {
		return c.URL
	}
	port := c.Port
	if port == 0 {
		port = 1433
	}
	return fmt.Sprintf("sqlserver://%s:%s@%s:%d?database=%s",
		c.User, c.Password, c.Host, port, c.Database)
}

// Reader implements catalog.Reader against SQL Server. All queries are
// set-based over the sys.* catalog views; MS_Description extended
// properties ride along as object and column descriptions.
type Reader struct {
	db *sql.DB
}

// Open connects and pings the server.
func Open(ctx context.Context, cfg Config) (*Reader, error) {
	db, err := sql.Open("sqlserver", cfg.dsn())
	if err != nil {
		return nil, fmt.Errorf("failed to open SQL Server connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Reader{db: db}, nil
}

func (r *Reader) Close() error { return r.db.Close() }

func (r *Reader) fail(kind model.ObjectKind, err error) error {
	return &catalog.QueryError{Kind: kind, Dialect: model.EngineMSSQL, Err: err}
}

func (r *Reader) Info(ctx context.Context) (catalog.DatabaseInfo, error) {
	var info catalog.DatabaseInfo
	err := r.db.QueryRowContext(ctx, `
		SELECT DB_NAME(),
			CAST(SERVERPROPERTY('ProductVersion') AS NVARCHAR(128)),
			@@SERVERNAME
	`).Scan(&info.Name, &info.Version, &info.Server)
	if err != nil {
		return info, r.fail(model.KindTables, err)
	}
	return info, nil
}

func (r *Reader) ListSchemas(ctx context.Context) ([]catalog.SchemaRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.name, dp.name
		FROM sys.schemas s
		JOIN sys.database_principals dp ON s.principal_id = dp.principal_id
		WHERE s.schema_id < 16384
		AND s.name NOT IN ('sys', 'INFORMATION_SCHEMA', 'guest')
		ORDER BY s.name
	`)
	if err != nil {
		return nil, r.fail(model.KindTables, err)
	}
	defer rows.Close()

	var out []catalog.SchemaRow
	for rows.Next() {
		var s catalog.SchemaRow
		if err := rows.Scan(&s.Name, &s.Owner); err != nil {
			return nil, r.fail(model.KindTables, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListTables returns user tables with partition row counts and allocation
// sizes, index_id 0 or 1 being the heap or clustered index.
func (r *Reader) ListTables(ctx context.Context) ([]catalog.TableRow, error) {
	query := `
		SELECT
			s.name,
			t.name,
			stats.row_count,
			stats.total_space_kb,
			CAST(ep.value AS NVARCHAR(MAX))
		FROM sys.tables t
		JOIN sys.schemas s ON t.schema_id = s.schema_id
		OUTER APPLY (
			SELECT SUM(p.rows) AS row_count,
				SUM(a.total_pages) * 8 AS total_space_kb
			FROM sys.indexes i
			JOIN sys.partitions p ON i.object_id = p.object_id AND i.index_id = p.index_id
			JOIN sys.allocation_units a ON p.partition_id = a.container_id
			WHERE i.object_id = t.object_id AND i.index_id IN (0, 1)
		) stats
		LEFT JOIN sys.extended_properties ep
			ON ep.class = 1 AND ep.major_id = t.object_id AND ep.minor_id = 0
			AND ep.name = 'MS_Description'
		WHERE t.is_ms_shipped = 0
		ORDER BY s.name, t.name
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, r.fail(model.KindTables, err)
	}
	defer rows.Close()

	var out []catalog.TableRow
	for rows.Next() {
		var t catalog.TableRow
		var desc sql.NullString
		if err := rows.Scan(&t.Schema, &t.Name, &t.RowCount, &t.SpaceKB, &desc); err != nil {
			return nil, r.fail(model.KindTables, err)
		}
		t.Description = desc.String
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListColumns covers tables and views in one pass. max_length is in bytes;
// the adapter halves it for the unicode types.
func (r *Reader) ListColumns(ctx context.Context) ([]catalog.ColumnRow, error) {
	query := `
		SELECT
			s.name, o.name, c.name, c.column_id,
			t.name,
			CAST(c.max_length AS BIGINT),
			CAST(c.precision AS BIGINT),
			CAST(c.scale AS BIGINT),
			c.is_nullable,
			dc.definition,
			c.is_identity,
			CAST(ic.seed_value AS BIGINT),
			CAST(ic.increment_value AS BIGINT),
			cc.definition,
			c.collation_name,
			CAST(ep.value AS NVARCHAR(MAX))
		FROM sys.columns c
		JOIN sys.objects o ON c.object_id = o.object_id AND o.type IN ('U', 'V')
		JOIN sys.schemas s ON o.schema_id = s.schema_id
		JOIN sys.types t ON c.user_type_id = t.user_type_id
		LEFT JOIN sys.default_constraints dc ON c.default_object_id = dc.object_id
		LEFT JOIN sys.identity_columns ic
			ON c.object_id = ic.object_id AND c.column_id = ic.column_id
		LEFT JOIN sys.computed_columns cc
			ON c.object_id = cc.object_id AND c.column_id = cc.column_id
		LEFT JOIN sys.extended_properties ep
			ON ep.class = 1 AND ep.major_id = c.object_id AND ep.minor_id = c.column_id
			AND ep.name = 'MS_Description'
		WHERE o.is_ms_shipped = 0
		ORDER BY s.name, o.name, c.column_id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, r.fail(model.KindTables, err)
	}
	defer rows.Close()

	var out []catalog.ColumnRow
	for rows.Next() {
		var c catalog.ColumnRow
		var collation, desc sql.NullString
		if err := rows.Scan(
			&c.Schema, &c.Table, &c.Name, &c.Ordinal,
			&c.NativeType, &c.MaxLength, &c.Precision, &c.Scale,
			&c.Nullable, &c.Default, &c.Identity,
			&c.IdentitySeed, &c.IdentityIncrement,
			&c.Computed, &collation, &desc,
		); err != nil {
			return nil, r.fail(model.KindTables, err)
		}
		c.Collation = collation.String
		c.Description = desc.String
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Reader) ListPrimaryKeys(ctx context.Context) ([]catalog.PrimaryKeyRow, error) {
	query := `
		SELECT s.name, t.name, kc.name, c.name, ic.key_ordinal,
			CASE WHEN i.type_desc = 'CLUSTERED' THEN 1 ELSE 0 END
		FROM sys.key_constraints kc
		JOIN sys.tables t ON kc.parent_object_id = t.object_id
		JOIN sys.schemas s ON t.schema_id = s.schema_id
		JOIN sys.indexes i ON kc.parent_object_id = i.object_id AND kc.unique_index_id = i.index_id
		JOIN sys.index_columns ic ON i.object_id = ic.object_id AND i.index_id = ic.index_id
		JOIN sys.columns c ON ic.object_id = c.object_id AND ic.column_id = c.column_id
		WHERE kc.type = 'PK'
		ORDER BY s.name, t.name, ic.key_ordinal
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, r.fail(model.KindTables, err)
	}
	defer rows.Close()

	var out []catalog.PrimaryKeyRow
	for rows.Next() {
		var pk catalog.PrimaryKeyRow
		var clustered bool
		if err := rows.Scan(&pk.Schema, &pk.Table, &pk.Constraint, &pk.Column, &pk.Ordinal, &clustered); err != nil {
			return nil, r.fail(model.KindTables, err)
		}
		pk.Clustered = &clustered
		out = append(out, pk)
	}
	return out, rows.Err()
}

func (r *Reader) ListForeignKeys(ctx context.Context) ([]catalog.ForeignKeyRow, error) {
	query := `
		SELECT
			s.name, t.name, fk.name,
			fkc.constraint_column_id,
			pc.name,
			rs.name, rt.name, rc.name,
			fk.delete_referential_action_desc,
			fk.update_referential_action_desc
		FROM sys.foreign_keys fk
		JOIN sys.tables t ON fk.parent_object_id = t.object_id
		JOIN sys.schemas s ON t.schema_id = s.schema_id
		JOIN sys.tables rt ON fk.referenced_object_id = rt.object_id
		JOIN sys.schemas rs ON rt.schema_id = rs.schema_id
		JOIN sys.foreign_key_columns fkc ON fkc.constraint_object_id = fk.object_id
		JOIN sys.columns pc ON fkc.parent_object_id = pc.object_id
			AND fkc.parent_column_id = pc.column_id
		JOIN sys.columns rc ON fkc.referenced_object_id = rc.object_id
			AND fkc.referenced_column_id = rc.column_id
		ORDER BY s.name, t.name, fk.name, fkc.constraint_column_id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, r.fail(model.KindTables, err)
	}
	defer rows.Close()

	var out []catalog.ForeignKeyRow
	for rows.Next() {
		var fk catalog.ForeignKeyRow
		if err := rows.Scan(&fk.Schema, &fk.Table, &fk.Constraint,
			&fk.Ordinal, &fk.Column,
			&fk.RefSchema, &fk.RefTable, &fk.RefColumn,
			&fk.DeleteRule, &fk.UpdateRule); err != nil {
			return nil, r.fail(model.KindTables, err)
		}
		out = append(out, fk)
	}
	return out, rows.Err()
}

func (r *Reader) ListChecks(ctx context.Context) ([]catalog.CheckRow, error) {
	query := `
		SELECT s.name, t.name, cc.name, cc.definition
		FROM sys.check_constraints cc
		JOIN sys.tables t ON cc.parent_object_id = t.object_id
		JOIN sys.schemas s ON t.schema_id = s.schema_id
		ORDER BY s.name, t.name, cc.name
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, r.fail(model.KindTables, err)
	}
	defer rows.Close()

	var out []catalog.CheckRow
	for rows.Next() {
		var c catalog.CheckRow
		if err := rows.Scan(&c.Schema, &c.Table, &c.Name, &c.Definition); err != nil {
			return nil, r.fail(model.KindTables, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Reader) ListIndexes(ctx context.Context) ([]catalog.IndexRow, error) {
	query := `
		SELECT
			s.name, t.name, i.name,
			i.is_unique, i.is_primary_key, i.type_desc, i.filter_definition,
			c.name, ic.is_included_column, ic.key_ordinal, ic.index_column_id
		FROM sys.indexes i
		JOIN sys.tables t ON i.object_id = t.object_id
		JOIN sys.schemas s ON t.schema_id = s.schema_id
		JOIN sys.index_columns ic ON i.object_id = ic.object_id AND i.index_id = ic.index_id
		JOIN sys.columns c ON ic.object_id = c.object_id AND ic.column_id = c.column_id
		WHERE i.name IS NOT NULL
		ORDER BY s.name, t.name, i.index_id, ic.key_ordinal, ic.index_column_id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, r.fail(model.KindTables, err)
	}
	defer rows.Close()

	var out []catalog.IndexRow
	index := make(map[string]int)
	for rows.Next() {
		var schema, table, name, typeDesc, column string
		var unique, primary, included bool
		var filter sql.NullString
		var keyOrdinal, columnID int
		if err := rows.Scan(&schema, &table, &name, &unique, &primary, &typeDesc,
			&filter, &column, &included, &keyOrdinal, &columnID); err != nil {
			return nil, r.fail(model.KindTables, err)
		}
		key := schema + "\x00" + table + "\x00" + name
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			clustered := typeDesc == "CLUSTERED"
			out = append(out, catalog.IndexRow{
				Schema: schema, Table: table, Name: name,
				Unique: unique, Primary: primary,
				Clustered: &clustered, Method: typeDesc,
				Filter: filter.String,
			})
		}
		if included {
			out[i].Included = append(out[i].Included, column)
		} else {
			out[i].Columns = append(out[i].Columns, column)
		}
	}
	return out, rows.Err()
}

func (r *Reader) ListViews(ctx context.Context) ([]catalog.ViewRow, error) {
	query := `
		SELECT s.name, v.name, m.definition, CAST(ep.value AS NVARCHAR(MAX))
		FROM sys.views v
		JOIN sys.schemas s ON v.schema_id = s.schema_id
		LEFT JOIN sys.sql_modules m ON m.object_id = v.object_id
		LEFT JOIN sys.extended_properties ep
			ON ep.class = 1 AND ep.major_id = v.object_id AND ep.minor_id = 0
			AND ep.name = 'MS_Description'
		WHERE v.is_ms_shipped = 0
		ORDER BY s.name, v.name
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, r.fail(model.KindViews, err)
	}

	var out []catalog.ViewRow
	index := make(map[string]int)
	for rows.Next() {
		var v catalog.ViewRow
		var def, desc sql.NullString
		if err := rows.Scan(&v.Schema, &v.Name, &def, &desc); err != nil {
			rows.Close()
			return nil, r.fail(model.KindViews, err)
		}
		v.Definition = def.String
		v.Description = desc.String
		index[v.Schema+"."+v.Name] = len(out)
		out = append(out, v)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, r.fail(model.KindViews, err)
	}

	deps, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT s.name, v.name,
			SCHEMA_NAME(o.schema_id) + '.' + o.name
		FROM sys.sql_expression_dependencies d
		JOIN sys.views v ON d.referencing_id = v.object_id
		JOIN sys.schemas s ON v.schema_id = s.schema_id
		JOIN sys.objects o ON d.referenced_id = o.object_id
		WHERE o.type IN ('U', 'V')
		ORDER BY 1, 2, 3
	`)
	if err != nil {
		return nil, r.fail(model.KindViews, err)
	}
	defer deps.Close()
	for deps.Next() {
		var schema, view, base string
		if err := deps.Scan(&schema, &view, &base); err != nil {
			return nil, r.fail(model.KindViews, err)
		}
		if i, ok := index[schema+"."+view]; ok {
			out[i].BaseTables = append(out[i].BaseTables, base)
		}
	}
	return out, deps.Err()
}

// ListRoutines covers stored procedures and the three function flavors
// (scalar, inline table-valued, multi-statement table-valued).
func (r *Reader) ListRoutines(ctx context.Context) ([]catalog.RoutineRow, error) {
	query := `
		SELECT
			s.name, o.name,
			CASE WHEN o.type = 'P' THEN 'PROCEDURE' ELSE 'FUNCTION' END,
			CASE o.type
				WHEN 'FN' THEN 'SCALAR'
				WHEN 'IF' THEN 'INLINE_TABLE_VALUED'
				WHEN 'TF' THEN 'TABLE_VALUED'
				ELSE ''
			END,
			m.definition,
			CAST(ep.value AS NVARCHAR(MAX))
		FROM sys.objects o
		JOIN sys.schemas s ON o.schema_id = s.schema_id
		LEFT JOIN sys.sql_modules m ON m.object_id = o.object_id
		LEFT JOIN sys.extended_properties ep
			ON ep.class = 1 AND ep.major_id = o.object_id AND ep.minor_id = 0
			AND ep.name = 'MS_Description'
		WHERE o.type IN ('P', 'FN', 'IF', 'TF') AND o.is_ms_shipped = 0
		ORDER BY s.name, o.name
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, r.fail(model.KindProcedures, err)
	}

	var out []catalog.RoutineRow
	index := make(map[string]int)
	for rows.Next() {
		var rr catalog.RoutineRow
		var def, desc sql.NullString
		if err := rows.Scan(&rr.Schema, &rr.Name, &rr.Kind, &rr.FunctionType, &def, &desc); err != nil {
			rows.Close()
			return nil, r.fail(model.KindProcedures, err)
		}
		rr.Definition = def.String
		rr.Description = desc.String
		rr.Language = "T-SQL"
		index[rr.Schema+"."+rr.Name] = len(out)
		out = append(out, rr)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, r.fail(model.KindProcedures, err)
	}

	if err := r.attachParameters(ctx, out, index); err != nil {
		return nil, err
	}
	if err := r.attachReturns(ctx, out, index); err != nil {
		return nil, err
	}
	return out, nil
}

// attachParameters fills Params; parameter_id 0 is the scalar return
// value, which lands in ReturnType instead.
func (r *Reader) attachParameters(ctx context.Context, routines []catalog.RoutineRow, index map[string]int) error {
	query := `
		SELECT
			s.name, o.name, p.parameter_id, p.name,
			t.name,
			CAST(p.max_length AS BIGINT),
			CAST(p.precision AS BIGINT),
			CAST(p.scale AS BIGINT),
			p.is_output, p.has_default_value,
			CAST(p.default_value AS NVARCHAR(MAX))
		FROM sys.parameters p
		JOIN sys.objects o ON p.object_id = o.object_id
		JOIN sys.schemas s ON o.schema_id = s.schema_id
		JOIN sys.types t ON p.user_type_id = t.user_type_id
		WHERE o.type IN ('P', 'FN', 'IF', 'TF') AND o.is_ms_shipped = 0
		ORDER BY s.name, o.name, p.parameter_id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return r.fail(model.KindProcedures, err)
	}
	defer rows.Close()

	for rows.Next() {
		var schema, routine string
		var p catalog.ParameterRow
		var name sql.NullString
		var isOutput bool
		if err := rows.Scan(&schema, &routine, &p.Ordinal, &name,
			&p.NativeType, &p.MaxLength, &p.Precision, &p.Scale,
			&isOutput, &p.HasDefault, &p.Default); err != nil {
			return r.fail(model.KindProcedures, err)
		}
		i, ok := index[schema+"."+routine]
		if !ok {
			continue
		}
		if p.Ordinal == 0 {
			routines[i].ReturnType = composeType(p.NativeType, p.MaxLength, p.Precision, p.Scale)
			continue
		}
		p.Schema = schema
		p.Routine = routine
		p.Name = name.String
		if isOutput {
			p.Mode = "OUT"
		} else {
			p.Mode = "IN"
		}
		routines[i].Params = append(routines[i].Params, p)
	}
	return rows.Err()
}

// attachReturns fills the result-set columns of table-valued functions.
func (r *Reader) attachReturns(ctx context.Context, routines []catalog.RoutineRow, index map[string]int) error {
	query := `
		SELECT
			s.name, o.name, c.name, c.column_id,
			t.name,
			CAST(c.max_length AS BIGINT),
			CAST(c.precision AS BIGINT),
			CAST(c.scale AS BIGINT),
			c.is_nullable
		FROM sys.columns c
		JOIN sys.objects o ON c.object_id = o.object_id
		JOIN sys.schemas s ON o.schema_id = s.schema_id
		JOIN sys.types t ON c.user_type_id = t.user_type_id
		WHERE o.type IN ('IF', 'TF')
		ORDER BY s.name, o.name, c.column_id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return r.fail(model.KindFunctions, err)
	}
	defer rows.Close()

	for rows.Next() {
		var schema, routine string
		var c catalog.ColumnRow
		if err := rows.Scan(&schema, &routine, &c.Name, &c.Ordinal,
			&c.NativeType, &c.MaxLength, &c.Precision, &c.Scale, &c.Nullable); err != nil {
			return r.fail(model.KindFunctions, err)
		}
		if i, ok := index[schema+"."+routine]; ok {
			c.Schema = schema
			c.Table = routine
			routines[i].Returns = append(routines[i].Returns, c)
		}
	}
	return rows.Err()
}

func (r *Reader) ListTriggers(ctx context.Context) ([]catalog.TriggerRow, error) {
	query := `
		SELECT
			ps.name, tr.name, ps.name, pt.name,
			CASE WHEN tr.is_instead_of_trigger = 1 THEN 'INSTEAD OF' ELSE 'AFTER' END,
			CAST(OBJECTPROPERTY(tr.object_id, 'ExecIsInsertTrigger') AS BIT),
			CAST(OBJECTPROPERTY(tr.object_id, 'ExecIsUpdateTrigger') AS BIT),
			CAST(OBJECTPROPERTY(tr.object_id, 'ExecIsDeleteTrigger') AS BIT),
			tr.is_disabled,
			m.definition,
			CAST(ep.value AS NVARCHAR(MAX))
		FROM sys.triggers tr
		JOIN sys.tables pt ON tr.parent_id = pt.object_id
		JOIN sys.schemas ps ON pt.schema_id = ps.schema_id
		LEFT JOIN sys.sql_modules m ON m.object_id = tr.object_id
		LEFT JOIN sys.extended_properties ep
			ON ep.class = 1 AND ep.major_id = tr.object_id AND ep.minor_id = 0
			AND ep.name = 'MS_Description'
		WHERE tr.is_ms_shipped = 0 AND tr.parent_class = 1
		ORDER BY ps.name, tr.name
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, r.fail(model.KindTriggers, err)
	}
	defer rows.Close()

	var out []catalog.TriggerRow
	for rows.Next() {
		var t catalog.TriggerRow
		var isInsert, isUpdate, isDelete bool
		var def, desc sql.NullString
		if err := rows.Scan(&t.Schema, &t.Name, &t.ParentSchema, &t.ParentTable,
			&t.Timing, &isInsert, &isUpdate, &isDelete,
			&t.Disabled, &def, &desc); err != nil {
			return nil, r.fail(model.KindTriggers, err)
		}
		if isInsert {
			t.Events = append(t.Events, "INSERT")
		}
		if isUpdate {
			t.Events = append(t.Events, "UPDATE")
		}
		if isDelete {
			t.Events = append(t.Events, "DELETE")
		}
		t.Definition = def.String
		t.Description = desc.String
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListTypes returns alias and table types; table type member columns come
// from the hidden backing table.
func (r *Reader) ListTypes(ctx context.Context) ([]catalog.TypeRow, error) {
	query := `
		SELECT
			s.name, t.name,
			CASE
				WHEN t.is_table_type = 1 THEN 'TABLE_TYPE'
				ELSE 'ALIAS'
			END,
			ISNULL(bt.name, ''),
			t.is_nullable
		FROM sys.types t
		JOIN sys.schemas s ON t.schema_id = s.schema_id
		LEFT JOIN sys.types bt
			ON t.system_type_id = bt.user_type_id AND bt.is_user_defined = 0
		WHERE t.is_user_defined = 1
		ORDER BY s.name, t.name
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, r.fail(model.KindTypes, err)
	}

	var out []catalog.TypeRow
	index := make(map[string]int)
	for rows.Next() {
		var t catalog.TypeRow
		if err := rows.Scan(&t.Schema, &t.Name, &t.Category, &t.BaseType, &t.Nullable); err != nil {
			rows.Close()
			return nil, r.fail(model.KindTypes, err)
		}
		index[t.Schema+"."+t.Name] = len(out)
		out = append(out, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, r.fail(model.KindTypes, err)
	}

	cols, err := r.db.QueryContext(ctx, `
		SELECT
			s.name, tt.name, c.name, c.column_id,
			bt.name,
			CAST(c.max_length AS BIGINT),
			CAST(c.precision AS BIGINT),
			CAST(c.scale AS BIGINT),
			c.is_nullable
		FROM sys.table_types tt
		JOIN sys.schemas s ON tt.schema_id = s.schema_id
		JOIN sys.columns c ON tt.type_table_object_id = c.object_id
		JOIN sys.types bt ON c.user_type_id = bt.user_type_id
		ORDER BY s.name, tt.name, c.column_id
	`)
	if err != nil {
		return nil, r.fail(model.KindTypes, err)
	}
	defer cols.Close()
	for cols.Next() {
		var schema, typeName string
		var c catalog.ColumnRow
		if err := cols.Scan(&schema, &typeName, &c.Name, &c.Ordinal,
			&c.NativeType, &c.MaxLength, &c.Precision, &c.Scale, &c.Nullable); err != nil {
			return nil, r.fail(model.KindTypes, err)
		}
		if i, ok := index[schema+"."+typeName]; ok {
			c.Schema = schema
			c.Table = typeName
			out[i].Attributes = append(out[i].Attributes, c)
		}
	}
	return out, cols.Err()
}

func (r *Reader) ListSequences(ctx context.Context) ([]catalog.SequenceRow, error) {
	query := `
		SELECT
			s.name, seq.name, t.name,
			CAST(seq.start_value AS BIGINT),
			CAST(seq.increment AS BIGINT),
			CAST(seq.minimum_value AS NVARCHAR(40)),
			CAST(seq.maximum_value AS NVARCHAR(40)),
			seq.is_cycling,
			CAST(seq.cache_size AS BIGINT),
			CAST(seq.current_value AS NVARCHAR(40))
		FROM sys.sequences seq
		JOIN sys.schemas s ON seq.schema_id = s.schema_id
		JOIN sys.types t ON seq.user_type_id = t.user_type_id
		ORDER BY s.name, seq.name
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, r.fail(model.KindSequences, err)
	}
	defer rows.Close()

	var out []catalog.SequenceRow
	for rows.Next() {
		var s catalog.SequenceRow
		if err := rows.Scan(&s.Schema, &s.Name, &s.DataType,
			&s.Start, &s.Increment, &s.Min, &s.Max,
			&s.Cycling, &s.CacheSize, &s.Current); err != nil {
			return nil, r.fail(model.KindSequences, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Reader) ListSynonyms(ctx context.Context) ([]catalog.SynonymRow, error) {
	query := `
		SELECT s.name, syn.name, syn.base_object_name
		FROM sys.synonyms syn
		JOIN sys.schemas s ON syn.schema_id = s.schema_id
		ORDER BY s.name, syn.name
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, r.fail(model.KindSynonyms, err)
	}
	defer rows.Close()

	var out []catalog.SynonymRow
	for rows.Next() {
		var s catalog.SynonymRow
		if err := rows.Scan(&s.Schema, &s.Name, &s.BaseObject); err != nil {
			return nil, r.fail(model.KindSynonyms, err)
		}
		s.TargetServer, s.TargetDatabase, s.TargetSchema, s.TargetObject =
			ParseBaseObject(s.BaseObject)
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListSecurity returns database principals, object permissions and role
// memberships from sys.database_principals and friends.
func (r *Reader) ListSecurity(ctx context.Context) (*catalog.SecurityRows, error) {
	sec := &catalog.SecurityRows{}

	rows, err := r.db.QueryContext(ctx, `
		SELECT p.name, p.type, p.type_desc,
			CAST(ISNULL(p.is_disabled, 0) AS BIT),
			ISNULL(p.default_schema_name, '')
		FROM sys.database_principals p
		WHERE p.type IN ('S', 'U', 'G', 'E', 'R')
		AND p.is_fixed_role = 0 AND p.name <> 'public'
		ORDER BY p.name
	`)
	if err != nil {
		return nil, r.fail(model.KindSecurity, err)
	}
	for rows.Next() {
		var p catalog.PrincipalRow
		var typeCode string
		if err := rows.Scan(&p.Name, &typeCode, &p.AuthType, &p.Disabled, &p.DefaultSchema); err != nil {
			rows.Close()
			return nil, r.fail(model.KindSecurity, err)
		}
		if typeCode == "R" {
			p.Kind = "ROLE"
		} else {
			p.Kind = "USER"
		}
		sec.Principals = append(sec.Principals, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, r.fail(model.KindSecurity, err)
	}

	rows, err = r.db.QueryContext(ctx, `
		SELECT dp.name, p.permission_name, p.state_desc, s.name, o.name
		FROM sys.database_permissions p
		JOIN sys.database_principals dp ON p.grantee_principal_id = dp.principal_id
		JOIN sys.objects o ON p.major_id = o.object_id
		JOIN sys.schemas s ON o.schema_id = s.schema_id
		WHERE p.class = 1
		ORDER BY dp.name, s.name, o.name, p.permission_name
	`)
	if err != nil {
		return nil, r.fail(model.KindSecurity, err)
	}
	for rows.Next() {
		var g catalog.GrantRow
		if err := rows.Scan(&g.Grantee, &g.Privilege, &g.State, &g.ObjectSchema, &g.ObjectName); err != nil {
			rows.Close()
			return nil, r.fail(model.KindSecurity, err)
		}
		sec.Grants = append(sec.Grants, g)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, r.fail(model.KindSecurity, err)
	}

	rows, err = r.db.QueryContext(ctx, `
		SELECT m.name, roles.name
		FROM sys.database_role_members rm
		JOIN sys.database_principals roles ON rm.role_principal_id = roles.principal_id
		JOIN sys.database_principals m ON rm.member_principal_id = m.principal_id
		ORDER BY roles.name, m.name
	`)
	if err != nil {
		return nil, r.fail(model.KindSecurity, err)
	}
	defer rows.Close()
	for rows.Next() {
		var m catalog.MembershipRow
		if err := rows.Scan(&m.Member, &m.Role); err != nil {
			return nil, r.fail(model.KindSecurity, err)
		}
		sec.Memberships = append(sec.Memberships, m)
	}
	return sec, rows.Err()
}

var _ catalog.Reader = (*Reader)(nil)
