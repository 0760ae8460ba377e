package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/arvenshaw/schemadoc/internal/catalog"
	"github.com/arvenshaw/schemadoc/internal/model"
)

// Config holds PostgreSQL connection settings. URL, when set, wins over the
// discrete fields.
type Config struct {
	URL      string
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string
}

// DSN builds the connection string.
func (c Config) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	port := c.Port
	if port == 0 {
		port = 5432
	}
	ssl := c.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, port, c.Database, ssl)
}

// Reader implements catalog.Reader against a live PostgreSQL connection.
type Reader struct {
	conn *pgx.Conn
}

// Open connects and pings the database.
func Open(ctx context.Context, cfg Config) (*Reader, error) {
	conn, err := pgx.Connect(ctx, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Reader{conn: conn}, nil
}

// Close releases the connection.
func (r *Reader) Close() error {
	return r.conn.Close(context.Background())
}

func (r *Reader) fail(kind model.ObjectKind, err error) error {
	return &catalog.QueryError{Kind: kind, Dialect: model.EnginePostgres, Err: err}
}

// Info reports database name, server version and host.
func (r *Reader) Info(ctx context.Context) (catalog.DatabaseInfo, error) {
	var info catalog.DatabaseInfo
	err := r.conn.QueryRow(ctx,
		`SELECT current_database(), current_setting('server_version')`,
	).Scan(&info.Name, &info.Version)
	if err != nil {
		return info, r.fail(model.KindTables, err)
	}
	info.Server = r.conn.Config().Host
	return info, nil
}

const systemSchemas = `('pg_catalog', 'information_schema', 'pg_toast')`

// ListSchemas returns user schemas.
func (r *Reader) ListSchemas(ctx context.Context) ([]catalog.SchemaRow, error) {
	query := `
		SELECT schema_name, schema_owner
		FROM information_schema.schemata
		WHERE schema_name NOT IN ` + systemSchemas + `
		AND schema_name NOT LIKE 'pg_temp%'
		AND schema_name NOT LIKE 'pg_toast%'
		ORDER BY schema_name
	`
	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, r.fail("schemas", err)
	}
	defer rows.Close()

	var out []catalog.SchemaRow
	for rows.Next() {
		var s catalog.SchemaRow
		if err := rows.Scan(&s.Name, &s.Owner); err != nil {
			return nil, r.fail("schemas", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListTables returns base tables with best-effort statistics: reltuples is
// a planner estimate and can be -1 on never-analyzed tables.
func (r *Reader) ListTables(ctx context.Context) ([]catalog.TableRow, error) {
	query := `
		SELECT
			t.table_schema,
			t.table_name,
			c.reltuples::bigint,
			(pg_total_relation_size(c.oid) / 1024)::bigint,
			obj_description(c.oid)
		FROM information_schema.tables t
		JOIN pg_namespace n ON n.nspname = t.table_schema
		JOIN pg_class c ON c.relnamespace = n.oid AND c.relname = t.table_name
		WHERE t.table_type = 'BASE TABLE'
		AND t.table_schema NOT IN ` + systemSchemas + `
		ORDER BY t.table_schema, t.table_name
	`
	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, r.fail(model.KindTables, err)
	}
	defer rows.Close()

	var out []catalog.TableRow
	for rows.Next() {
		var t catalog.TableRow
		var desc *string
		if err := rows.Scan(&t.Schema, &t.Name, &t.RowCount, &t.SpaceKB, &desc); err != nil {
			return nil, r.fail(model.KindTables, err)
		}
		if desc != nil {
			t.Description = *desc
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListColumns returns columns of every table and view. The udt_name rides
// along in Extra so the adapter can resolve arrays and user-defined types.
func (r *Reader) ListColumns(ctx context.Context) ([]catalog.ColumnRow, error) {
	query := `
		SELECT
			c.table_schema,
			c.table_name,
			c.column_name,
			c.ordinal_position,
			c.data_type,
			c.udt_name,
			c.character_maximum_length::bigint,
			c.numeric_precision::bigint,
			c.numeric_scale::bigint,
			c.is_nullable = 'YES',
			c.column_default,
			c.is_identity = 'YES',
			CASE WHEN c.is_generated = 'ALWAYS' THEN c.generation_expression END,
			c.collation_name,
			col_description(pc.oid, c.ordinal_position)
		FROM information_schema.columns c
		JOIN pg_namespace pn ON pn.nspname = c.table_schema
		JOIN pg_class pc ON pc.relnamespace = pn.oid AND pc.relname = c.table_name
		WHERE c.table_schema NOT IN ` + systemSchemas + `
		ORDER BY c.table_schema, c.table_name, c.ordinal_position
	`
	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, r.fail(model.KindTables, err)
	}
	defer rows.Close()

	var out []catalog.ColumnRow
	for rows.Next() {
		var c catalog.ColumnRow
		var collation, desc *string
		if err := rows.Scan(
			&c.Schema, &c.Table, &c.Name, &c.Ordinal,
			&c.NativeType, &c.Extra, &c.MaxLength, &c.Precision, &c.Scale,
			&c.Nullable, &c.Default, &c.Identity, &c.Computed,
			&collation, &desc,
		); err != nil {
			return nil, r.fail(model.KindTables, err)
		}
		if collation != nil {
			c.Collation = *collation
		}
		if desc != nil {
			c.Description = *desc
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListPrimaryKeys returns primary key columns. Postgres has no clustered
// index concept, so Clustered stays nil.
func (r *Reader) ListPrimaryKeys(ctx context.Context) ([]catalog.PrimaryKeyRow, error) {
	query := `
		SELECT tc.table_schema, tc.table_name, tc.constraint_name,
			kcu.column_name, kcu.ordinal_position
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		WHERE tc.constraint_type = 'PRIMARY KEY'
		AND tc.table_schema NOT IN ` + systemSchemas + `
		ORDER BY tc.table_schema, tc.table_name, kcu.ordinal_position
	`
	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, r.fail(model.KindTables, err)
	}
	defer rows.Close()

	var out []catalog.PrimaryKeyRow
	for rows.Next() {
		var pk catalog.PrimaryKeyRow
		if err := rows.Scan(&pk.Schema, &pk.Table, &pk.Constraint, &pk.Column, &pk.Ordinal); err != nil {
			return nil, r.fail(model.KindTables, err)
		}
		out = append(out, pk)
	}
	return out, rows.Err()
}

// ListForeignKeys returns one row per column pair of every foreign key.
func (r *Reader) ListForeignKeys(ctx context.Context) ([]catalog.ForeignKeyRow, error) {
	query := `
		SELECT
			tc.table_schema,
			tc.table_name,
			tc.constraint_name,
			array_agg(kcu.column_name ORDER BY kcu.ordinal_position),
			ccu.table_schema,
			ccu.table_name,
			array_agg(ccu.column_name ORDER BY kcu.ordinal_position),
			rc.delete_rule,
			rc.update_rule
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema
		JOIN information_schema.constraint_column_usage ccu
			ON tc.constraint_name = ccu.constraint_name AND tc.table_schema = ccu.table_schema
		JOIN information_schema.referential_constraints rc
			ON tc.constraint_name = rc.constraint_name AND tc.table_schema = rc.constraint_schema
		WHERE tc.constraint_type = 'FOREIGN KEY'
		AND tc.table_schema NOT IN ` + systemSchemas + `
		GROUP BY tc.table_schema, tc.table_name, tc.constraint_name,
			ccu.table_schema, ccu.table_name, rc.delete_rule, rc.update_rule
		ORDER BY tc.table_schema, tc.table_name, tc.constraint_name
	`
	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, r.fail(model.KindTables, err)
	}
	defer rows.Close()

	var out []catalog.ForeignKeyRow
	for rows.Next() {
		var schema, table, name, refSchema, refTable, delRule, updRule string
		var cols, refCols []string
		if err := rows.Scan(&schema, &table, &name, &cols, &refSchema, &refTable, &refCols, &delRule, &updRule); err != nil {
			return nil, r.fail(model.KindTables, err)
		}
		for i, col := range cols {
			refCol := ""
			if i < len(refCols) {
				refCol = refCols[i]
			}
			out = append(out, catalog.ForeignKeyRow{
				Schema: schema, Table: table, Constraint: name,
				Ordinal: i + 1, Column: col,
				RefSchema: refSchema, RefTable: refTable, RefColumn: refCol,
				DeleteRule: delRule, UpdateRule: updRule,
			})
		}
	}
	return out, rows.Err()
}

// ListChecks returns check constraints, skipping the synthetic NOT NULL
// checks information_schema manufactures.
func (r *Reader) ListChecks(ctx context.Context) ([]catalog.CheckRow, error) {
	query := `
		SELECT tc.table_schema, tc.table_name, tc.constraint_name, cc.check_clause
		FROM information_schema.table_constraints tc
		JOIN information_schema.check_constraints cc
			ON tc.constraint_name = cc.constraint_name
			AND tc.constraint_schema = cc.constraint_schema
		WHERE tc.constraint_type = 'CHECK'
		AND tc.table_schema NOT IN ` + systemSchemas + `
		AND tc.constraint_name NOT LIKE '%_not_null'
		ORDER BY tc.table_schema, tc.table_name, tc.constraint_name
	`
	rows, err := r.conn.Query(ctx, query)
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

// ListIndexes returns secondary and primary indexes with their access
// method and partial-index predicate.
func (r *Reader) ListIndexes(ctx context.Context) ([]catalog.IndexRow, error) {
	query := `
		SELECT
			n.nspname,
			t.relname,
			i.relname,
			ix.indisunique,
			ix.indisprimary,
			am.amname,
			array_agg(a.attname ORDER BY array_position(ix.indkey, a.attnum)),
			pg_get_expr(ix.indpred, ix.indrelid)
		FROM pg_index ix
		JOIN pg_class i ON i.oid = ix.indexrelid
		JOIN pg_class t ON t.oid = ix.indrelid
		JOIN pg_namespace n ON n.oid = t.relnamespace
		JOIN pg_am am ON am.oid = i.relam
		JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = ANY(ix.indkey)
		WHERE t.relkind IN ('r', 'm', 'p')
		AND n.nspname NOT IN ` + systemSchemas + `
		GROUP BY n.nspname, t.relname, i.relname, ix.indisunique, ix.indisprimary,
			am.amname, ix.indpred, ix.indrelid
		ORDER BY n.nspname, t.relname, i.relname
	`
	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, r.fail(model.KindTables, err)
	}
	defer rows.Close()

	var out []catalog.IndexRow
	for rows.Next() {
		var ix catalog.IndexRow
		var filter *string
		if err := rows.Scan(&ix.Schema, &ix.Table, &ix.Name, &ix.Unique, &ix.Primary,
			&ix.Method, &ix.Columns, &filter); err != nil {
			return nil, r.fail(model.KindTables, err)
		}
		if filter != nil {
			ix.Filter = *filter
		}
		out = append(out, ix)
	}
	return out, rows.Err()
}

// ListViews returns plain and materialized views with definitions, plus
// base tables from the dependency catalog.
func (r *Reader) ListViews(ctx context.Context) ([]catalog.ViewRow, error) {
	query := `
		SELECT v.schemaname, v.viewname, v.definition, FALSE,
			obj_description(c.oid)
		FROM pg_views v
		JOIN pg_namespace n ON n.nspname = v.schemaname
		JOIN pg_class c ON c.relnamespace = n.oid AND c.relname = v.viewname
		WHERE v.schemaname NOT IN ` + systemSchemas + `
		UNION ALL
		SELECT m.schemaname, m.matviewname, m.definition, TRUE,
			obj_description(c.oid)
		FROM pg_matviews m
		JOIN pg_namespace n ON n.nspname = m.schemaname
		JOIN pg_class c ON c.relnamespace = n.oid AND c.relname = m.matviewname
		WHERE m.schemaname NOT IN ` + systemSchemas + `
		ORDER BY 1, 2
	`
	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, r.fail(model.KindViews, err)
	}

	var out []catalog.ViewRow
	for rows.Next() {
		var v catalog.ViewRow
		var desc *string
		if err := rows.Scan(&v.Schema, &v.Name, &v.Definition, &v.Materialized, &desc); err != nil {
			rows.Close()
			return nil, r.fail(model.KindViews, err)
		}
		if desc != nil {
			v.Description = *desc
		}
		out = append(out, v)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, r.fail(model.KindViews, err)
	}

	deps, err := r.viewBaseTables(ctx)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].BaseTables = deps[out[i].Schema+"."+out[i].Name]
	}
	return out, nil
}

func (r *Reader) viewBaseTables(ctx context.Context) (map[string][]string, error) {
	query := `
		SELECT DISTINCT view_schema, view_name, table_schema || '.' || table_name
		FROM information_schema.view_table_usage
		WHERE view_schema NOT IN ` + systemSchemas + `
		ORDER BY 1, 2, 3
	`
	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, r.fail(model.KindViews, err)
	}
	defer rows.Close()

	deps := make(map[string][]string)
	for rows.Next() {
		var schema, view, base string
		if err := rows.Scan(&schema, &view, &base); err != nil {
			return nil, r.fail(model.KindViews, err)
		}
		key := schema + "." + view
		deps[key] = append(deps[key], base)
	}
	return deps, rows.Err()
}

// ListRoutines returns procedures and functions with parameters decoded
// from the pg_proc argument arrays.
func (r *Reader) ListRoutines(ctx context.Context) ([]catalog.RoutineRow, error) {
	query := `
		SELECT
			n.nspname,
			p.proname,
			p.prokind::text,
			p.proretset,
			l.lanname,
			pg_get_function_result(p.oid),
			CASE WHEN p.prokind IN ('f', 'p') THEN pg_get_functiondef(p.oid) END,
			obj_description(p.oid),
			p.proargnames,
			p.proargmodes::text[],
			(SELECT array_agg(format_type(tt.t, NULL) ORDER BY tt.ord)
			 FROM unnest(COALESCE(p.proallargtypes, p.proargtypes::oid[]))
				WITH ORDINALITY AS tt(t, ord))
		FROM pg_proc p
		JOIN pg_namespace n ON p.pronamespace = n.oid
		JOIN pg_language l ON p.prolang = l.oid
		WHERE p.prokind IN ('f', 'p', 'a', 'w')
		AND n.nspname NOT IN ` + systemSchemas + `
		ORDER BY n.nspname, p.proname
	`
	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, r.fail(model.KindProcedures, err)
	}
	defer rows.Close()

	var out []catalog.RoutineRow
	for rows.Next() {
		var rr catalog.RoutineRow
		var retset bool
		var retType, def, desc *string
		var argNames, argModes, argTypes []string
		if err := rows.Scan(&rr.Schema, &rr.Name, &rr.Kind, &retset, &rr.Language,
			&retType, &def, &desc, &argNames, &argModes, &argTypes); err != nil {
			return nil, r.fail(model.KindProcedures, err)
		}
		if retType != nil {
			rr.ReturnType = *retType
		}
		if def != nil {
			rr.Definition = *def
		}
		if desc != nil {
			rr.Description = *desc
		}
		rr.FunctionType = FunctionTypeLabel(retset, rr.Kind)
		rr.Params = decodeArgs(argNames, argModes, argTypes)
		out = append(out, rr)
	}
	return out, rows.Err()
}

// decodeArgs pairs up the pg_proc argument arrays. Modes are nil when all
// arguments are plain inputs; table-function output columns ('t') are
// dropped since pg_get_function_result already carries them.
func decodeArgs(names, modes, types []string) []catalog.ParameterRow {
	var params []catalog.ParameterRow
	for i, typ := range types {
		mode := "i"
		if i < len(modes) {
			mode = modes[i]
		}
		if mode == "t" {
			continue
		}
		name := ""
		if i < len(names) {
			name = names[i]
		}
		if name == "" {
			name = fmt.Sprintf("param%d", i+1)
		}
		spelled := map[string]string{"i": "IN", "o": "OUT", "b": "INOUT", "v": "IN"}[mode]
		params = append(params, catalog.ParameterRow{
			Name:       name,
			Ordinal:    len(params) + 1,
			NativeType: typ,
			Mode:       spelled,
		})
	}
	return params
}

// ListTriggers decodes the pg_trigger type bitmask into timing and events.
func (r *Reader) ListTriggers(ctx context.Context) ([]catalog.TriggerRow, error) {
	query := `
		SELECT
			n.nspname,
			t.tgname,
			c.relname,
			CASE
				WHEN t.tgtype & 2 = 2 THEN 'BEFORE'
				WHEN t.tgtype & 64 = 64 THEN 'INSTEAD OF'
				ELSE 'AFTER'
			END,
			t.tgtype & 4 = 4,
			t.tgtype & 8 = 8,
			t.tgtype & 16 = 16,
			t.tgenabled = 'D',
			pg_get_triggerdef(t.oid),
			obj_description(t.oid)
		FROM pg_trigger t
		JOIN pg_class c ON t.tgrelid = c.oid
		JOIN pg_namespace n ON c.relnamespace = n.oid
		WHERE NOT t.tgisinternal
		AND n.nspname NOT IN ` + systemSchemas + `
		ORDER BY n.nspname, t.tgname
	`
	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, r.fail(model.KindTriggers, err)
	}
	defer rows.Close()

	var out []catalog.TriggerRow
	for rows.Next() {
		var tr catalog.TriggerRow
		var isInsert, isDelete, isUpdate bool
		var desc *string
		if err := rows.Scan(&tr.Schema, &tr.Name, &tr.ParentTable, &tr.Timing,
			&isInsert, &isDelete, &isUpdate, &tr.Disabled, &tr.Definition, &desc); err != nil {
			return nil, r.fail(model.KindTriggers, err)
		}
		tr.ParentSchema = tr.Schema
		if isInsert {
			tr.Events = append(tr.Events, "INSERT")
		}
		if isUpdate {
			tr.Events = append(tr.Events, "UPDATE")
		}
		if isDelete {
			tr.Events = append(tr.Events, "DELETE")
		}
		if desc != nil {
			tr.Description = *desc
		}
		out = append(out, tr)
	}
	return out, rows.Err()
}

// ListTypes returns enum, composite and domain types with their members.
func (r *Reader) ListTypes(ctx context.Context) ([]catalog.TypeRow, error) {
	query := `
		SELECT
			n.nspname,
			t.typname,
			t.typtype::text,
			CASE WHEN t.typtype = 'd' THEN format_type(t.typbasetype, t.typtypmod) END,
			NOT t.typnotnull,
			obj_description(t.oid)
		FROM pg_type t
		JOIN pg_namespace n ON n.oid = t.typnamespace
		LEFT JOIN pg_class c ON c.oid = t.typrelid
		WHERE (t.typtype IN ('e', 'd') OR (t.typtype = 'c' AND c.relkind = 'c'))
		AND n.nspname NOT IN ` + systemSchemas + `
		ORDER BY n.nspname, t.typname
	`
	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, r.fail(model.KindTypes, err)
	}

	var out []catalog.TypeRow
	index := make(map[string]int)
	for rows.Next() {
		var t catalog.TypeRow
		var base, desc *string
		if err := rows.Scan(&t.Schema, &t.Name, &t.Category, &base, &t.Nullable, &desc); err != nil {
			rows.Close()
			return nil, r.fail(model.KindTypes, err)
		}
		if base != nil {
			t.BaseType = *base
		}
		if desc != nil {
			t.Description = *desc
		}
		index[t.Schema+"."+t.Name] = len(out)
		out = append(out, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, r.fail(model.KindTypes, err)
	}

	if err := r.attachEnumValues(ctx, out, index); err != nil {
		return nil, err
	}
	if err := r.attachTypeAttributes(ctx, out, index); err != nil {
		return nil, err
	}
	if err := r.attachDomainChecks(ctx, out, index); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Reader) attachEnumValues(ctx context.Context, types []catalog.TypeRow, index map[string]int) error {
	query := `
		SELECT n.nspname, t.typname, e.enumlabel
		FROM pg_enum e
		JOIN pg_type t ON t.oid = e.enumtypid
		JOIN pg_namespace n ON n.oid = t.typnamespace
		WHERE n.nspname NOT IN ` + systemSchemas + `
		ORDER BY n.nspname, t.typname, e.enumsortorder
	`
	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return r.fail(model.KindTypes, err)
	}
	defer rows.Close()

	for rows.Next() {
		var schema, name, label string
		if err := rows.Scan(&schema, &name, &label); err != nil {
			return r.fail(model.KindTypes, err)
		}
		if i, ok := index[schema+"."+name]; ok {
			types[i].EnumValues = append(types[i].EnumValues, label)
		}
	}
	return rows.Err()
}

func (r *Reader) attachTypeAttributes(ctx context.Context, types []catalog.TypeRow, index map[string]int) error {
	query := `
		SELECT n.nspname, t.typname, a.attname, a.attnum,
			format_type(a.atttypid, a.atttypmod), NOT a.attnotnull
		FROM pg_attribute a
		JOIN pg_class c ON a.attrelid = c.oid AND c.relkind = 'c'
		JOIN pg_type t ON t.typrelid = c.oid
		JOIN pg_namespace n ON n.oid = t.typnamespace
		WHERE a.attnum > 0 AND NOT a.attisdropped
		AND n.nspname NOT IN ` + systemSchemas + `
		ORDER BY n.nspname, t.typname, a.attnum
	`
	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return r.fail(model.KindTypes, err)
	}
	defer rows.Close()

	for rows.Next() {
		var schema, name string
		var attr catalog.ColumnRow
		if err := rows.Scan(&schema, &name, &attr.Name, &attr.Ordinal, &attr.NativeType, &attr.Nullable); err != nil {
			return r.fail(model.KindTypes, err)
		}
		if i, ok := index[schema+"."+name]; ok {
			attr.Schema = schema
			attr.Table = name
			types[i].Attributes = append(types[i].Attributes, attr)
		}
	}
	return rows.Err()
}

func (r *Reader) attachDomainChecks(ctx context.Context, types []catalog.TypeRow, index map[string]int) error {
	query := `
		SELECT n.nspname, t.typname, pg_get_constraintdef(con.oid)
		FROM pg_constraint con
		JOIN pg_type t ON con.contypid = t.oid
		JOIN pg_namespace n ON n.oid = t.typnamespace
		WHERE con.contype = 'c'
		AND n.nspname NOT IN ` + systemSchemas + `
		ORDER BY n.nspname, t.typname, con.conname
	`
	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return r.fail(model.KindTypes, err)
	}
	defer rows.Close()

	for rows.Next() {
		var schema, name, def string
		if err := rows.Scan(&schema, &name, &def); err != nil {
			return r.fail(model.KindTypes, err)
		}
		if i, ok := index[schema+"."+name]; ok {
			if types[i].Check != "" {
				types[i].Check += "\n"
			}
			types[i].Check += def
		}
	}
	return rows.Err()
}

// ListSequences reads pg_sequences; last_value is NULL until first use.
func (r *Reader) ListSequences(ctx context.Context) ([]catalog.SequenceRow, error) {
	query := `
		SELECT
			schemaname,
			sequencename,
			data_type::text,
			start_value,
			increment_by,
			min_value::text,
			max_value::text,
			cycle,
			cache_size,
			last_value::text
		FROM pg_sequences
		WHERE schemaname NOT IN ` + systemSchemas + `
		ORDER BY schemaname, sequencename
	`
	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, r.fail(model.KindSequences, err)
	}
	defer rows.Close()

	var out []catalog.SequenceRow
	for rows.Next() {
		var s catalog.SequenceRow
		if err := rows.Scan(&s.Schema, &s.Name, &s.DataType, &s.Start, &s.Increment,
			&s.Min, &s.Max, &s.Cycling, &s.CacheSize, &s.Current); err != nil {
			return nil, r.fail(model.KindSequences, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListSynonyms: PostgreSQL has no synonyms.
func (r *Reader) ListSynonyms(ctx context.Context) ([]catalog.SynonymRow, error) {
	return nil, catalog.ErrNotApplicable
}

// ListSecurity returns roles, table grants and role memberships, skipping
// the built-in pg_ roles.
func (r *Reader) ListSecurity(ctx context.Context) (*catalog.SecurityRows, error) {
	sec := &catalog.SecurityRows{}

	rows, err := r.conn.Query(ctx, `
		SELECT rolname, rolcanlogin
		FROM pg_roles
		WHERE rolname NOT LIKE 'pg\_%'
		ORDER BY rolname
	`)
	if err != nil {
		return nil, r.fail(model.KindSecurity, err)
	}
	for rows.Next() {
		var name string
		var canLogin bool
		if err := rows.Scan(&name, &canLogin); err != nil {
			rows.Close()
			return nil, r.fail(model.KindSecurity, err)
		}
		kind := "ROLE"
		if canLogin {
			kind = "USER"
		}
		sec.Principals = append(sec.Principals, catalog.PrincipalRow{Name: name, Kind: kind})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, r.fail(model.KindSecurity, err)
	}

	rows, err = r.conn.Query(ctx, `
		SELECT grantee, privilege_type, table_schema, table_name
		FROM information_schema.role_table_grants
		WHERE table_schema NOT IN `+systemSchemas+`
		ORDER BY grantee, table_schema, table_name, privilege_type
	`)
	if err != nil {
		return nil, r.fail(model.KindSecurity, err)
	}
	for rows.Next() {
		var g catalog.GrantRow
		if err := rows.Scan(&g.Grantee, &g.Privilege, &g.ObjectSchema, &g.ObjectName); err != nil {
			rows.Close()
			return nil, r.fail(model.KindSecurity, err)
		}
		g.State = "GRANT"
		sec.Grants = append(sec.Grants, g)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, r.fail(model.KindSecurity, err)
	}

	rows, err = r.conn.Query(ctx, `
		SELECT m.rolname, g.rolname
		FROM pg_auth_members am
		JOIN pg_roles g ON g.oid = am.roleid
		JOIN pg_roles m ON m.oid = am.member
		WHERE g.rolname NOT LIKE 'pg\_%'
		ORDER BY g.rolname, m.rolname
	`)
	if err != nil {
		return nil, r.fail(model.KindSecurity, err)
	}
	for rows.Next() {
		var m catalog.MembershipRow
		if err := rows.Scan(&m.Member, &m.Role); err != nil {
			rows.Close()
			return nil, r.fail(model.KindSecurity, err)
		}
		sec.Memberships = append(sec.Memberships, m)
	}
	rows.Close()
	return sec, rows.Err()
}

var _ catalog.Reader = (*Reader)(nil)
