package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"

	"github.com/arvenshaw/schemadoc/internal/catalog"
	"github.com/arvenshaw/schemadoc/internal/model"
)

// Config holds MySQL connection settings.
type Config struct {
	DSN      string
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

func (c Config) dsn() string {
	if c.DSN != "" {
		return c.DSN
	}
	port := c.Port
	if port == 0 {
		port = 3306
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		c.User, c.Password, c.Host, port, c.Database)
}

// Reader implements catalog.Reader against a MySQL or MariaDB server.
// MySQL has no schema level below the database, so every object reports
// the current database as its schema.
type Reader struct {
	db   *sql.DB
	host string
}

// Open connects and pings the server.
func Open(ctx context.Context, cfg Config) (*Reader, error) {
	db, err := sql.Open("mysql", cfg.dsn())
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Reader{db: db, host: cfg.Host}, nil
}

func (r *Reader) Close() error { return r.db.Close() }

func (r *Reader) fail(kind model.ObjectKind, err error) error {
	return &catalog.QueryError{Kind: kind, Dialect: model.EngineMySQL, Err: err}
}

func (r *Reader) Info(ctx context.Context) (catalog.DatabaseInfo, error) {
	var info catalog.DatabaseInfo
	err := r.db.QueryRowContext(ctx, `SELECT DATABASE(), VERSION()`).
		Scan(&info.Name, &info.Version)
	if err != nil {
		return info, r.fail(model.KindTables, err)
	}
	info.Server = r.host
	return info, nil
}

// ListSchemas returns the connected database as the single schema.
func (r *Reader) ListSchemas(ctx context.Context) ([]catalog.SchemaRow, error) {
	var name string
	if err := r.db.QueryRowContext(ctx, `SELECT DATABASE()`).Scan(&name); err != nil {
		return nil, r.fail(model.KindTables, err)
	}
	return []catalog.SchemaRow{{Name: name}}, nil
}

func (r *Reader) ListTables(ctx context.Context) ([]catalog.TableRow, error) {
	query := `
		SELECT table_schema, table_name, table_rows,
			(data_length + index_length) DIV 1024,
			table_comment
		FROM information_schema.tables
		WHERE table_schema = DATABASE() AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, r.fail(model.KindTables, err)
	}
	defer rows.Close()

	var out []catalog.TableRow
	for rows.Next() {
		var t catalog.TableRow
		var comment sql.NullString
		if err := rows.Scan(&t.Schema, &t.Name, &t.RowCount, &t.SpaceKB, &comment); err != nil {
			return nil, r.fail(model.KindTables, err)
		}
		t.Description = comment.String
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *Reader) ListColumns(ctx context.Context) ([]catalog.ColumnRow, error) {
	query := `
		SELECT table_schema, table_name, column_name, ordinal_position,
			data_type, column_type, character_maximum_length,
			numeric_precision, numeric_scale,
			is_nullable = 'YES', column_default, extra,
			generation_expression, collation_name, column_comment
		FROM information_schema.columns
		WHERE table_schema = DATABASE()
		ORDER BY table_name, ordinal_position
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, r.fail(model.KindTables, err)
	}
	defer rows.Close()

	var out []catalog.ColumnRow
	for rows.Next() {
		var c catalog.ColumnRow
		var columnType, extra string
		var genExpr, collation sql.NullString
		if err := rows.Scan(
			&c.Schema, &c.Table, &c.Name, &c.Ordinal,
			&c.NativeType, &columnType, &c.MaxLength, &c.Precision, &c.Scale,
			&c.Nullable, &c.Default, &extra,
			&genExpr, &collation, &c.Description,
		); err != nil {
			return nil, r.fail(model.KindTables, err)
		}
		// Preserve both the EXTRA flags and the full column_type; the
		// adapter splits them back apart.
		c.Extra = extra + ";type=" + columnType
		if genExpr.Valid && genExpr.String != "" {
			expr := genExpr.String
			c.Computed = &expr
		}
		c.Collation = collation.String
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Reader) ListPrimaryKeys(ctx context.Context) ([]catalog.PrimaryKeyRow, error) {
	query := `
		SELECT table_schema, table_name, constraint_name, column_name, ordinal_position
		FROM information_schema.key_column_usage
		WHERE table_schema = DATABASE() AND constraint_name = 'PRIMARY'
		ORDER BY table_name, ordinal_position
	`
	rows, err := r.db.QueryContext(ctx, query)
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

func (r *Reader) ListForeignKeys(ctx context.Context) ([]catalog.ForeignKeyRow, error) {
	query := `
		SELECT kcu.table_schema, kcu.table_name, kcu.constraint_name,
			kcu.ordinal_position, kcu.column_name,
			kcu.referenced_table_schema, kcu.referenced_table_name,
			kcu.referenced_column_name,
			rc.delete_rule, rc.update_rule
		FROM information_schema.key_column_usage kcu
		JOIN information_schema.referential_constraints rc
			ON rc.constraint_schema = kcu.table_schema
			AND rc.constraint_name = kcu.constraint_name
		WHERE kcu.table_schema = DATABASE()
		AND kcu.referenced_table_name IS NOT NULL
		ORDER BY kcu.table_name, kcu.constraint_name, kcu.ordinal_position
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

// ListChecks needs MySQL 8.0.16 or MariaDB 10.2; older servers fail here
// and the caller degrades the failure to a warning.
func (r *Reader) ListChecks(ctx context.Context) ([]catalog.CheckRow, error) {
	query := `
		SELECT tc.table_schema, tc.table_name, cc.constraint_name, cc.check_clause
		FROM information_schema.table_constraints tc
		JOIN information_schema.check_constraints cc
			ON cc.constraint_schema = tc.table_schema
			AND cc.constraint_name = tc.constraint_name
		WHERE tc.table_schema = DATABASE() AND tc.constraint_type = 'CHECK'
		ORDER BY tc.table_name, cc.constraint_name
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
		SELECT table_schema, table_name, index_name, non_unique = 0,
			index_type, column_name, seq_in_index
		FROM information_schema.statistics
		WHERE table_schema = DATABASE()
		ORDER BY table_name, index_name, seq_in_index
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, r.fail(model.KindTables, err)
	}
	defer rows.Close()

	var out []catalog.IndexRow
	index := make(map[string]int)
	for rows.Next() {
		var schema, table, name, method string
		var unique bool
		var column sql.NullString
		var seq int
		if err := rows.Scan(&schema, &table, &name, &unique, &method, &column, &seq); err != nil {
			return nil, r.fail(model.KindTables, err)
		}
		key := table + "\x00" + name
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, catalog.IndexRow{
				Schema: schema, Table: table, Name: name,
				Unique: unique, Primary: name == "PRIMARY", Method: method,
			})
		}
		if column.Valid {
			out[i].Columns = append(out[i].Columns, column.String)
		}
	}
	return out, rows.Err()
}

func (r *Reader) ListViews(ctx context.Context) ([]catalog.ViewRow, error) {
	query := `
		SELECT table_schema, table_name, view_definition
		FROM information_schema.views
		WHERE table_schema = DATABASE()
		ORDER BY table_name
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, r.fail(model.KindViews, err)
	}
	defer rows.Close()

	var out []catalog.ViewRow
	for rows.Next() {
		var v catalog.ViewRow
		var def sql.NullString
		if err := rows.Scan(&v.Schema, &v.Name, &def); err != nil {
			return nil, r.fail(model.KindViews, err)
		}
		v.Definition = def.String
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *Reader) ListRoutines(ctx context.Context) ([]catalog.RoutineRow, error) {
	query := `
		SELECT routine_schema, routine_name, routine_type,
			dtd_identifier, routine_definition, routine_comment
		FROM information_schema.routines
		WHERE routine_schema = DATABASE()
		ORDER BY routine_name
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, r.fail(model.KindProcedures, err)
	}

	var out []catalog.RoutineRow
	index := make(map[string]int)
	for rows.Next() {
		var rr catalog.RoutineRow
		var retType, def, comment sql.NullString
		if err := rows.Scan(&rr.Schema, &rr.Name, &rr.Kind, &retType, &def, &comment); err != nil {
			rows.Close()
			return nil, r.fail(model.KindProcedures, err)
		}
		rr.ReturnType = retType.String
		rr.Definition = def.String
		rr.Description = comment.String
		rr.Language = "SQL"
		index[rr.Name] = len(out)
		out = append(out, rr)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, r.fail(model.KindProcedures, err)
	}

	// Ordinal 0 is the function return value, already captured above.
	params, err := r.db.QueryContext(ctx, `
		SELECT specific_name, parameter_name, ordinal_position,
			dtd_identifier, parameter_mode
		FROM information_schema.parameters
		WHERE specific_schema = DATABASE() AND ordinal_position > 0
		ORDER BY specific_name, ordinal_position
	`)
	if err != nil {
		return nil, r.fail(model.KindProcedures, err)
	}
	defer params.Close()

	for params.Next() {
		var routine string
		var p catalog.ParameterRow
		var name, mode sql.NullString
		if err := params.Scan(&routine, &name, &p.Ordinal, &p.NativeType, &mode); err != nil {
			return nil, r.fail(model.KindProcedures, err)
		}
		p.Name = name.String
		p.Mode = mode.String
		p.Routine = routine
		if i, ok := index[routine]; ok {
			out[i].Params = append(out[i].Params, p)
		}
	}
	return out, params.Err()
}

func (r *Reader) ListTriggers(ctx context.Context) ([]catalog.TriggerRow, error) {
	query := `
		SELECT trigger_schema, trigger_name, event_object_schema,
			event_object_table, action_timing, event_manipulation,
			action_statement
		FROM information_schema.triggers
		WHERE trigger_schema = DATABASE()
		ORDER BY trigger_name
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, r.fail(model.KindTriggers, err)
	}
	defer rows.Close()

	var out []catalog.TriggerRow
	for rows.Next() {
		var t catalog.TriggerRow
		var event string
		if err := rows.Scan(&t.Schema, &t.Name, &t.ParentSchema, &t.ParentTable,
			&t.Timing, &event, &t.Definition); err != nil {
			return nil, r.fail(model.KindTriggers, err)
		}
		t.Events = []string{event}
		out = append(out, t)
	}
	return out, rows.Err()
}

// MySQL has no user-defined types, sequences or synonyms.

func (r *Reader) ListTypes(ctx context.Context) ([]catalog.TypeRow, error) {
	return nil, catalog.ErrNotApplicable
}

func (r *Reader) ListSequences(ctx context.Context) ([]catalog.SequenceRow, error) {
	return nil, catalog.ErrNotApplicable
}

func (r *Reader) ListSynonyms(ctx context.Context) ([]catalog.SynonymRow, error) {
	return nil, catalog.ErrNotApplicable
}

// ListSecurity reads account and table grants from information_schema.
// Grantees come back quoted as 'user'@'host'.
func (r *Reader) ListSecurity(ctx context.Context) (*catalog.SecurityRows, error) {
	sec := &catalog.SecurityRows{}

	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT grantee FROM information_schema.user_privileges
		ORDER BY grantee
	`)
	if err != nil {
		return nil, r.fail(model.KindSecurity, err)
	}
	for rows.Next() {
		var grantee string
		if err := rows.Scan(&grantee); err != nil {
			rows.Close()
			return nil, r.fail(model.KindSecurity, err)
		}
		sec.Principals = append(sec.Principals, catalog.PrincipalRow{
			Name: unquoteGrantee(grantee), Kind: "USER",
		})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, r.fail(model.KindSecurity, err)
	}

	rows, err = r.db.QueryContext(ctx, `
		SELECT grantee, privilege_type, table_schema, table_name
		FROM information_schema.table_privileges
		WHERE table_schema = DATABASE()
		ORDER BY grantee, table_name, privilege_type
	`)
	if err != nil {
		return nil, r.fail(model.KindSecurity, err)
	}
	defer rows.Close()
	for rows.Next() {
		var g catalog.GrantRow
		if err := rows.Scan(&g.Grantee, &g.Privilege, &g.ObjectSchema, &g.ObjectName); err != nil {
			return nil, r.fail(model.KindSecurity, err)
		}
		g.Grantee = unquoteGrantee(g.Grantee)
		g.State = "GRANT"
		sec.Grants = append(sec.Grants, g)
	}
	return sec, rows.Err()
}

// unquoteGrantee strips the quoting from 'user'@'host' account names.
func unquoteGrantee(grantee string) string {
	return strings.ReplaceAll(grantee, "'", "")
}

var _ catalog.Reader = (*Reader)(nil)
