package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/arvenshaw/schemadoc/internal/catalog"
	"github.com/arvenshaw/schemadoc/internal/model"
)

// Reader implements catalog.Reader for a SQLite database file. Most of the
// catalog comes from per-table PRAGMA calls, so the listing methods walk
// sqlite_master first.
type Reader struct {
	db   *sql.DB
	path string
}

// Open opens the database file read-only.
func Open(ctx context.Context, path string) (*Reader, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return &Reader{db: db, path: path}, nil
}

func (r *Reader) Close() error { return r.db.Close() }

func (r *Reader) fail(kind model.ObjectKind, err error) error {
	return &catalog.QueryError{Kind: kind, Dialect: model.EngineSQLite, Err: err}
}

func (r *Reader) Info(ctx context.Context) (catalog.DatabaseInfo, error) {
	var version string
	if err := r.db.QueryRowContext(ctx, `SELECT sqlite_version()`).Scan(&version); err != nil {
		return catalog.DatabaseInfo{}, r.fail(model.KindTables, err)
	}
	name := strings.TrimSuffix(filepath.Base(r.path), filepath.Ext(r.path))
	return catalog.DatabaseInfo{Name: name, Version: version, Server: r.path}, nil
}

func (r *Reader) ListSchemas(ctx context.Context) ([]catalog.SchemaRow, error) {
	return []catalog.SchemaRow{{Name: MainSchema}}, nil
}

func (r *Reader) tableNames(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (r *Reader) ListTables(ctx context.Context) ([]catalog.TableRow, error) {
	names, err := r.tableNames(ctx)
	if err != nil {
		return nil, r.fail(model.KindTables, err)
	}

	var out []catalog.TableRow
	for _, name := range names {
		var count int64
		err := r.db.QueryRowContext(ctx,
			fmt.Sprintf(`SELECT COUNT(*) FROM %q`, name)).Scan(&count)
		if err != nil {
			return nil, r.fail(model.KindTables, err)
		}
		out = append(out, catalog.TableRow{
			Schema: MainSchema, Name: name, RowCount: &count,
		})
	}
	return out, nil
}

func (r *Reader) ListColumns(ctx context.Context) ([]catalog.ColumnRow, error) {
	names, err := r.tableNames(ctx)
	if err != nil {
		return nil, r.fail(model.KindTables, err)
	}
	viewNames, err := r.objectNames(ctx, "view")
	if err != nil {
		return nil, r.fail(model.KindViews, err)
	}

	var out []catalog.ColumnRow
	for _, name := range append(names, viewNames...) {
		cols, err := r.tableColumns(ctx, name)
		if err != nil {
			return nil, r.fail(model.KindTables, err)
		}
		out = append(out, cols...)
	}
	return out, nil
}

// tableColumns reads PRAGMA table_info. The pk column is the 1-based
// position within the primary key, 0 for non-key columns. A single-column
// INTEGER primary key aliases the rowid, flagged through Extra.
func (r *Reader) tableColumns(ctx context.Context, table string) ([]catalog.ColumnRow, error) {
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%q)`, table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []catalog.ColumnRow
	pkCount := 0
	for rows.Next() {
		var cid, notNull, pk int
		var name, declType string
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &declType, &notNull, &dflt, &pk); err != nil {
			return nil, err
		}
		c := catalog.ColumnRow{
			Schema:     MainSchema,
			Table:      table,
			Name:       name,
			Ordinal:    cid + 1,
			NativeType: declType,
			Nullable:   notNull == 0,
		}
		if dflt.Valid {
			v := dflt.String
			c.Default = &v
		}
		if pk > 0 {
			pkCount++
			if strings.EqualFold(declType, "integer") {
				c.Extra = "rowid"
			}
		}
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if pkCount != 1 {
		// Composite keys never alias the rowid.
		for i := range cols {
			if cols[i].Extra == "rowid" {
				cols[i].Extra = ""
			}
		}
	}
	return cols, nil
}

func (r *Reader) ListPrimaryKeys(ctx context.Context) ([]catalog.PrimaryKeyRow, error) {
	names, err := r.tableNames(ctx)
	if err != nil {
		return nil, r.fail(model.KindTables, err)
	}

	var out []catalog.PrimaryKeyRow
	for _, table := range names {
		rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%q)`, table))
		if err != nil {
			return nil, r.fail(model.KindTables, err)
		}
		for rows.Next() {
			var cid, notNull, pk int
			var name, declType string
			var dflt sql.NullString
			if err := rows.Scan(&cid, &name, &declType, &notNull, &dflt, &pk); err != nil {
				rows.Close()
				return nil, r.fail(model.KindTables, err)
			}
			if pk > 0 {
				out = append(out, catalog.PrimaryKeyRow{
					Schema: MainSchema, Table: table,
					Constraint: "pk_" + table,
					Column:     name, Ordinal: pk,
				})
			}
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, r.fail(model.KindTables, err)
		}
	}
	return out, nil
}

func (r *Reader) ListForeignKeys(ctx context.Context) ([]catalog.ForeignKeyRow, error) {
	names, err := r.tableNames(ctx)
	if err != nil {
		return nil, r.fail(model.KindTables, err)
	}

	var out []catalog.ForeignKeyRow
	for _, table := range names {
		rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`PRAGMA foreign_key_list(%q)`, table))
		if err != nil {
			return nil, r.fail(model.KindTables, err)
		}
		for rows.Next() {
			var id, seq int
			var refTable, from, onUpdate, onDelete, match string
			var to sql.NullString
			if err := rows.Scan(&id, &seq, &refTable, &from, &to, &onUpdate, &onDelete, &match); err != nil {
				rows.Close()
				return nil, r.fail(model.KindTables, err)
			}
			out = append(out, catalog.ForeignKeyRow{
				Schema: MainSchema, Table: table,
				Constraint: fmt.Sprintf("fk_%s_%d", table, id),
				Ordinal:    seq + 1,
				Column:     from,
				RefSchema:  MainSchema, RefTable: refTable, RefColumn: to.String,
				DeleteRule: onDelete, UpdateRule: onUpdate,
			})
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, r.fail(model.KindTables, err)
		}
	}
	return out, nil
}

// ListChecks returns nothing: SQLite keeps check constraints only inside
// the original CREATE TABLE text.
func (r *Reader) ListChecks(ctx context.Context) ([]catalog.CheckRow, error) {
	return nil, nil
}

func (r *Reader) ListIndexes(ctx context.Context) ([]catalog.IndexRow, error) {
	names, err := r.tableNames(ctx)
	if err != nil {
		return nil, r.fail(model.KindTables, err)
	}

	var out []catalog.IndexRow
	for _, table := range names {
		rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`PRAGMA index_list(%q)`, table))
		if err != nil {
			return nil, r.fail(model.KindTables, err)
		}
		type idx struct {
			name    string
			unique  bool
			primary bool
		}
		var indexes []idx
		for rows.Next() {
			var seq, unique, partial int
			var name, origin string
			if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
				rows.Close()
				return nil, r.fail(model.KindTables, err)
			}
			indexes = append(indexes, idx{name: name, unique: unique == 1, primary: origin == "pk"})
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, r.fail(model.KindTables, err)
		}

		for _, ix := range indexes {
			cols, err := r.indexColumns(ctx, ix.name)
			if err != nil {
				return nil, r.fail(model.KindTables, err)
			}
			out = append(out, catalog.IndexRow{
				Schema: MainSchema, Table: table, Name: ix.name,
				Unique: ix.unique, Primary: ix.primary,
				Columns: cols, Method: "BTREE",
			})
		}
	}
	return out, nil
}

func (r *Reader) indexColumns(ctx context.Context, index string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`PRAGMA index_info(%q)`, index))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var seqno, cid int
		var name sql.NullString
		if err := rows.Scan(&seqno, &cid, &name); err != nil {
			return nil, err
		}
		if name.Valid {
			cols = append(cols, name.String)
		}
	}
	return cols, rows.Err()
}

func (r *Reader) objectNames(ctx context.Context, kind string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT name FROM sqlite_master WHERE type = ? ORDER BY name
	`, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (r *Reader) ListViews(ctx context.Context) ([]catalog.ViewRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT name, sql FROM sqlite_master WHERE type = 'view' ORDER BY name
	`)
	if err != nil {
		return nil, r.fail(model.KindViews, err)
	}
	defer rows.Close()

	var out []catalog.ViewRow
	for rows.Next() {
		var v catalog.ViewRow
		var def sql.NullString
		if err := rows.Scan(&v.Name, &def); err != nil {
			return nil, r.fail(model.KindViews, err)
		}
		v.Schema = MainSchema
		v.Definition = def.String
		out = append(out, v)
	}
	return out, rows.Err()
}

var triggerClause = regexp.MustCompile(
	`(?is)\b(BEFORE|AFTER|INSTEAD\s+OF)\s+(INSERT|UPDATE|DELETE)\b`)

// ListTriggers recovers timing and event from the stored CREATE TRIGGER
// text, the only place SQLite keeps them.
func (r *Reader) ListTriggers(ctx context.Context) ([]catalog.TriggerRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT name, tbl_name, sql FROM sqlite_master
		WHERE type = 'trigger' ORDER BY name
	`)
	if err != nil {
		return nil, r.fail(model.KindTriggers, err)
	}
	defer rows.Close()

	var out []catalog.TriggerRow
	for rows.Next() {
		var t catalog.TriggerRow
		var def sql.NullString
		if err := rows.Scan(&t.Name, &t.ParentTable, &def); err != nil {
			return nil, r.fail(model.KindTriggers, err)
		}
		t.Schema = MainSchema
		t.ParentSchema = MainSchema
		t.Definition = def.String
		if m := triggerClause.FindStringSubmatch(t.Definition); m != nil {
			t.Timing = strings.ToUpper(strings.Join(strings.Fields(m[1]), " "))
			t.Events = []string{strings.ToUpper(m[2])}
		} else {
			t.Timing = "AFTER"
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// SQLite has no routines, user-defined types, sequences, synonyms or
// principals.

func (r *Reader) ListRoutines(ctx context.Context) ([]catalog.RoutineRow, error) {
	return nil, catalog.ErrNotApplicable
}

func (r *Reader) ListTypes(ctx context.Context) ([]catalog.TypeRow, error) {
	return nil, catalog.ErrNotApplicable
}

func (r *Reader) ListSequences(ctx context.Context) ([]catalog.SequenceRow, error) {
	return nil, catalog.ErrNotApplicable
}

func (r *Reader) ListSynonyms(ctx context.Context) ([]catalog.SynonymRow, error) {
	return nil, catalog.ErrNotApplicable
}

func (r *Reader) ListSecurity(ctx context.Context) (*catalog.SecurityRows, error) {
	return nil, catalog.ErrNotApplicable
}

var _ catalog.Reader = (*Reader)(nil)
