package oracle

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/sijms/go-ora/v2"

	"github.com/arvenshaw/schemadoc/internal/catalog"
	"github.com/arvenshaw/schemadoc/internal/model"
)

// Config holds Oracle connection settings. Service is the service name or
// SID to connect to.
type Config struct {
	URL      string
	Host     string
	Port     int
	Service  string
	User     string
	Password string
}

func (c Config) dsn() string {
	if c.URL != "" {
		return c.URL
	}
	port := c.Port
	if port == 0 {
		port = 1521
	}
	return fmt.Sprintf("oracle://%s:%s@%s:%d/%s",
		c.User, c.Password, c.Host, port, c.Service)
}

// ownerFilter excludes the Oracle-shipped schemas from every dictionary
// query. Kept inline because the ALL_* views have no other way to tell
// vendor objects from user objects.
const ownerFilter = `('SYS', 'SYSTEM', 'OUTLN', 'DIP', 'ORACLE_OCM', 'DBSNMP',
	'APPQOSSYS', 'WMSYS', 'EXFSYS', 'CTXSYS', 'XDB', 'ORDDATA',
	'ORDSYS', 'MDSYS', 'OLAPSYS', 'ANONYMOUS', 'FLOWS_FILES')`

// Reader implements catalog.Reader against the Oracle data dictionary.
type Reader struct {
	db   *sql.DB
	host string
}

// Open connects and pings the database.
func Open(ctx context.Context, cfg Config) (*Reader, error) {
	db, err := sql.Open("oracle", cfg.dsn())
	if err != nil {
		return nil, fmt.Errorf("failed to open Oracle connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Reader{db: db, host: cfg.Host}, nil
}

func (r *Reader) Close() error { return r.db.Close() }

func (r *Reader) fail(kind model.ObjectKind, err error) error {
	return &catalog.QueryError{Kind: kind, Dialect: model.EngineOracle, Err: err}
}

func (r *Reader) Info(ctx context.Context) (catalog.DatabaseInfo, error) {
	var info catalog.DatabaseInfo
	err := r.db.QueryRowContext(ctx, `
		SELECT SYS_CONTEXT('USERENV', 'DB_NAME'), version FROM product_component_version
		WHERE product LIKE 'Oracle%' AND ROWNUM = 1
	`).Scan(&info.Name, &info.Version)
	if err != nil {
		return info, r.fail(model.KindTables, err)
	}
	info.Server = r.host
	return info, nil
}

func (r *Reader) ListSchemas(ctx context.Context) ([]catalog.SchemaRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT username FROM all_users
		WHERE username NOT IN `+ownerFilter+`
		ORDER BY username
	`)
	if err != nil {
		return nil, r.fail(model.KindTables, err)
	}
	defer rows.Close()

	var out []catalog.SchemaRow
	for rows.Next() {
		var s catalog.SchemaRow
		if err := rows.Scan(&s.Name); err != nil {
			return nil, r.fail(model.KindTables, err)
		}
		s.Owner = s.Name
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListTables reads all_tables; num_rows and blocks are statistics gathered
// at last ANALYZE and may be stale or NULL.
func (r *Reader) ListTables(ctx context.Context) ([]catalog.TableRow, error) {
	query := `
		SELECT t.owner, t.table_name, t.num_rows, t.blocks * 8, c.comments
		FROM all_tables t
		LEFT JOIN all_tab_comments c
			ON c.owner = t.owner AND c.table_name = t.table_name
		WHERE t.owner NOT IN ` + ownerFilter + `
		ORDER BY t.owner, t.table_name
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

// ListColumns covers tables and views; a virtual column's expression comes
// back through data_default.
func (r *Reader) ListColumns(ctx context.Context) ([]catalog.ColumnRow, error) {
	query := `
		SELECT
			c.owner, c.table_name, c.column_name, c.column_id,
			c.data_type, c.data_length, c.data_precision, c.data_scale,
			c.nullable, c.data_default, c.virtual_column, c.identity_column,
			cc.comments
		FROM all_tab_cols c
		LEFT JOIN all_col_comments cc
			ON cc.owner = c.owner AND cc.table_name = c.table_name
			AND cc.column_name = c.column_name
		WHERE c.owner NOT IN ` + ownerFilter + `
		AND c.hidden_column = 'NO'
		ORDER BY c.owner, c.table_name, c.column_id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, r.fail(model.KindTables, err)
	}
	defer rows.Close()

	var out []catalog.ColumnRow
	for rows.Next() {
		var c catalog.ColumnRow
		var nullable, virtual, identity string
		var dflt, desc sql.NullString
		if err := rows.Scan(
			&c.Schema, &c.Table, &c.Name, &c.Ordinal,
			&c.NativeType, &c.MaxLength, &c.Precision, &c.Scale,
			&nullable, &dflt, &virtual, &identity, &desc,
		); err != nil {
			return nil, r.fail(model.KindTables, err)
		}
		c.Nullable = nullable == "Y"
		c.Identity = identity == "YES"
		c.Description = desc.String
		if dflt.Valid {
			expr := strings.TrimSpace(dflt.String)
			if virtual == "YES" {
				c.Computed = &expr
			} else {
				c.Default = &expr
			}
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Reader) ListPrimaryKeys(ctx context.Context) ([]catalog.PrimaryKeyRow, error) {
	query := `
		SELECT c.owner, c.table_name, c.constraint_name, cc.column_name, cc.position
		FROM all_constraints c
		JOIN all_cons_columns cc
			ON cc.owner = c.owner AND cc.constraint_name = c.constraint_name
		WHERE c.constraint_type = 'P'
		AND c.owner NOT IN ` + ownerFilter + `
		ORDER BY c.owner, c.table_name, cc.position
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

// ListForeignKeys joins each R constraint to the constraint it references.
// Oracle has no ON UPDATE clause, so UpdateRule stays empty.
func (r *Reader) ListForeignKeys(ctx context.Context) ([]catalog.ForeignKeyRow, error) {
	query := `
		SELECT
			c.owner, c.table_name, c.constraint_name,
			cc.position, cc.column_name,
			rc.owner, rc.table_name, rcc.column_name,
			c.delete_rule
		FROM all_constraints c
		JOIN all_constraints rc
			ON rc.owner = c.r_owner AND rc.constraint_name = c.r_constraint_name
		JOIN all_cons_columns cc
			ON cc.owner = c.owner AND cc.constraint_name = c.constraint_name
		JOIN all_cons_columns rcc
			ON rcc.owner = rc.owner AND rcc.constraint_name = rc.constraint_name
			AND rcc.position = cc.position
		WHERE c.constraint_type = 'R'
		AND c.owner NOT IN ` + ownerFilter + `
		ORDER BY c.owner, c.table_name, c.constraint_name, cc.position
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, r.fail(model.KindTables, err)
	}
	defer rows.Close()

	var out []catalog.ForeignKeyRow
	for rows.Next() {
		var fk catalog.ForeignKeyRow
		var deleteRule sql.NullString
		if err := rows.Scan(&fk.Schema, &fk.Table, &fk.Constraint,
			&fk.Ordinal, &fk.Column,
			&fk.RefSchema, &fk.RefTable, &fk.RefColumn,
			&deleteRule); err != nil {
			return nil, r.fail(model.KindTables, err)
		}
		fk.DeleteRule = deleteRule.String
		out = append(out, fk)
	}
	return out, rows.Err()
}

// ListChecks reads C constraints; the implicit NOT NULL checks Oracle
// generates are filtered out by their condition text, since search_condition
// is a LONG and cannot be filtered in SQL.
func (r *Reader) ListChecks(ctx context.Context) ([]catalog.CheckRow, error) {
	query := `
		SELECT owner, table_name, constraint_name, search_condition
		FROM all_constraints
		WHERE constraint_type = 'C'
		AND owner NOT IN ` + ownerFilter + `
		ORDER BY owner, table_name, constraint_name
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, r.fail(model.KindTables, err)
	}
	defer rows.Close()

	var out []catalog.CheckRow
	for rows.Next() {
		var c catalog.CheckRow
		var cond sql.NullString
		if err := rows.Scan(&c.Schema, &c.Table, &c.Name, &cond); err != nil {
			return nil, r.fail(model.KindTables, err)
		}
		c.Definition = cond.String
		if strings.HasSuffix(strings.ToUpper(strings.TrimSpace(c.Definition)), "IS NOT NULL") {
			continue
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Reader) ListIndexes(ctx context.Context) ([]catalog.IndexRow, error) {
	query := `
		SELECT
			i.owner, i.table_name, i.index_name,
			i.uniqueness, i.index_type,
			CASE WHEN c.constraint_name IS NOT NULL THEN 1 ELSE 0 END,
			ic.column_name, ic.column_position
		FROM all_indexes i
		JOIN all_ind_columns ic
			ON ic.index_owner = i.owner AND ic.index_name = i.index_name
		LEFT JOIN all_constraints c
			ON c.owner = i.owner AND c.index_name = i.index_name
			AND c.constraint_type = 'P'
		WHERE i.owner NOT IN ` + ownerFilter + `
		ORDER BY i.owner, i.table_name, i.index_name, ic.column_position
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, r.fail(model.KindTables, err)
	}
	defer rows.Close()

	var out []catalog.IndexRow
	index := make(map[string]int)
	for rows.Next() {
		var schema, table, name, uniqueness, indexType, column string
		var primary, position int
		if err := rows.Scan(&schema, &table, &name, &uniqueness, &indexType,
			&primary, &column, &position); err != nil {
			return nil, r.fail(model.KindTables, err)
		}
		key := schema + "\x00" + name
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, catalog.IndexRow{
				Schema: schema, Table: table, Name: name,
				Unique:  uniqueness == "UNIQUE",
				Primary: primary == 1,
				Method:  indexType,
			})
		}
		out[i].Columns = append(out[i].Columns, column)
	}
	return out, rows.Err()
}

func (r *Reader) ListViews(ctx context.Context) ([]catalog.ViewRow, error) {
	query := `
		SELECT v.owner, v.view_name, v.text, c.comments
		FROM all_views v
		LEFT JOIN all_tab_comments c
			ON c.owner = v.owner AND c.table_name = v.view_name
		WHERE v.owner NOT IN ` + ownerFilter + `
		ORDER BY v.owner, v.view_name
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, r.fail(model.KindViews, err)
	}
	defer rows.Close()

	var out []catalog.ViewRow
	for rows.Next() {
		var v catalog.ViewRow
		var text, desc sql.NullString
		if err := rows.Scan(&v.Schema, &v.Name, &text, &desc); err != nil {
			return nil, r.fail(model.KindViews, err)
		}
		v.Definition = text.String
		v.Description = desc.String
		out = append(out, v)
	}
	return out, rows.Err()
}

// ListRoutines reads standalone procedures and functions. Definitions come
// from all_source aggregated line by line; argument position 0 is the
// function return value.
func (r *Reader) ListRoutines(ctx context.Context) ([]catalog.RoutineRow, error) {
	query := `
		SELECT p.owner, p.object_name, p.object_type,
			(SELECT LISTAGG(s.text, '') WITHIN GROUP (ORDER BY s.line)
			 FROM all_source s
			 WHERE s.owner = p.owner AND s.name = p.object_name
			 AND s.type = p.object_type)
		FROM all_procedures p
		WHERE p.object_type IN ('PROCEDURE', 'FUNCTION')
		AND p.owner NOT IN ` + ownerFilter + `
		ORDER BY p.owner, p.object_name
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, r.fail(model.KindProcedures, err)
	}

	var out []catalog.RoutineRow
	index := make(map[string]int)
	for rows.Next() {
		var rr catalog.RoutineRow
		var def sql.NullString
		if err := rows.Scan(&rr.Schema, &rr.Name, &rr.Kind, &def); err != nil {
			rows.Close()
			return nil, r.fail(model.KindProcedures, err)
		}
		rr.Definition = def.String
		rr.Language = "PL/SQL"
		if rr.Kind == "FUNCTION" {
			rr.FunctionType = "SCALAR"
		}
		index[rr.Schema+"."+rr.Name] = len(out)
		out = append(out, rr)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, r.fail(model.KindProcedures, err)
	}

	args, err := r.db.QueryContext(ctx, `
		SELECT owner, object_name, argument_name, position,
			data_type, data_length, data_precision, data_scale,
			in_out, defaulted
		FROM all_arguments
		WHERE owner NOT IN `+ownerFilter+`
		AND data_level = 0
		ORDER BY owner, object_name, position
	`)
	if err != nil {
		return nil, r.fail(model.KindProcedures, err)
	}
	defer args.Close()

	for args.Next() {
		var schema, routine, inOut, defaulted string
		var name, dataType sql.NullString
		var p catalog.ParameterRow
		if err := args.Scan(&schema, &routine, &name, &p.Ordinal,
			&dataType, &p.MaxLength, &p.Precision, &p.Scale,
			&inOut, &defaulted); err != nil {
			return nil, r.fail(model.KindProcedures, err)
		}
		i, ok := index[schema+"."+routine]
		if !ok {
			continue
		}
		if p.Ordinal == 0 {
			// The unnamed position-0 argument is the return value.
			out[i].ReturnType = dataType.String
			continue
		}
		if !name.Valid {
			continue
		}
		p.Schema = schema
		p.Routine = routine
		p.Name = name.String
		p.NativeType = dataType.String
		p.Mode = inOut
		p.HasDefault = defaulted == "Y"
		out[i].Params = append(out[i].Params, p)
	}
	return out, args.Err()
}

// ListTriggers reads all_triggers; triggering_event lists events joined
// with " OR ".
func (r *Reader) ListTriggers(ctx context.Context) ([]catalog.TriggerRow, error) {
	query := `
		SELECT owner, trigger_name, table_owner, table_name,
			trigger_type, triggering_event, status, trigger_body
		FROM all_triggers
		WHERE owner NOT IN ` + ownerFilter + `
		ORDER BY owner, trigger_name
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, r.fail(model.KindTriggers, err)
	}
	defer rows.Close()

	var out []catalog.TriggerRow
	for rows.Next() {
		var t catalog.TriggerRow
		var events, status string
		var body sql.NullString
		if err := rows.Scan(&t.Schema, &t.Name, &t.ParentSchema, &t.ParentTable,
			&t.Timing, &events, &status, &body); err != nil {
			return nil, r.fail(model.KindTriggers, err)
		}
		for _, e := range strings.Split(strings.ToUpper(events), " OR ") {
			if e = strings.TrimSpace(e); e != "" {
				t.Events = append(t.Events, e)
			}
		}
		t.Disabled = status == "DISABLED"
		t.Definition = body.String
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *Reader) ListTypes(ctx context.Context) ([]catalog.TypeRow, error) {
	query := `
		SELECT owner, type_name, typecode
		FROM all_types
		WHERE owner NOT IN ` + ownerFilter + `
		ORDER BY owner, type_name
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, r.fail(model.KindTypes, err)
	}

	var out []catalog.TypeRow
	index := make(map[string]int)
	for rows.Next() {
		var t catalog.TypeRow
		if err := rows.Scan(&t.Schema, &t.Name, &t.Category); err != nil {
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

	attrs, err := r.db.QueryContext(ctx, `
		SELECT owner, type_name, attr_name, attr_no,
			attr_type_name, length, precision, scale
		FROM all_type_attrs
		WHERE owner NOT IN `+ownerFilter+`
		ORDER BY owner, type_name, attr_no
	`)
	if err != nil {
		return nil, r.fail(model.KindTypes, err)
	}
	defer attrs.Close()
	for attrs.Next() {
		var schema, typeName string
		var a catalog.ColumnRow
		if err := attrs.Scan(&schema, &typeName, &a.Name, &a.Ordinal,
			&a.NativeType, &a.MaxLength, &a.Precision, &a.Scale); err != nil {
			return nil, r.fail(model.KindTypes, err)
		}
		if i, ok := index[schema+"."+typeName]; ok {
			a.Schema = schema
			a.Table = typeName
			a.Nullable = true
			out[i].Attributes = append(out[i].Attributes, a)
		}
	}
	return out, attrs.Err()
}

// ListSequences keeps the NUMBER(28) bounds as decimal strings; last_number
// is the next value not yet handed out.
func (r *Reader) ListSequences(ctx context.Context) ([]catalog.SequenceRow, error) {
	query := `
		SELECT sequence_owner, sequence_name,
			TO_CHAR(min_value), TO_CHAR(max_value),
			increment_by, cycle_flag, cache_size, TO_CHAR(last_number)
		FROM all_sequences
		WHERE sequence_owner NOT IN ` + ownerFilter + `
		ORDER BY sequence_owner, sequence_name
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, r.fail(model.KindSequences, err)
	}
	defer rows.Close()

	var out []catalog.SequenceRow
	for rows.Next() {
		var s catalog.SequenceRow
		var cycleFlag string
		if err := rows.Scan(&s.Schema, &s.Name, &s.Min, &s.Max,
			&s.Increment, &cycleFlag, &s.CacheSize, &s.Current); err != nil {
			return nil, r.fail(model.KindSequences, err)
		}
		s.DataType = "NUMBER"
		s.Cycling = cycleFlag == "Y"
		// The dictionary has no start value; the minimum is the closest
		// stand-in when it fits.
		if v, err := strconv.ParseInt(s.Min, 10, 64); err == nil {
			s.Start = v
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Reader) ListSynonyms(ctx context.Context) ([]catalog.SynonymRow, error) {
	query := `
		SELECT owner, synonym_name, table_owner, table_name, db_link
		FROM all_synonyms
		WHERE owner NOT IN ` + ownerFilter + ` AND owner <> 'PUBLIC'
		ORDER BY owner, synonym_name
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, r.fail(model.KindSynonyms, err)
	}
	defer rows.Close()

	var out []catalog.SynonymRow
	for rows.Next() {
		var s catalog.SynonymRow
		var targetSchema, targetObject, dbLink sql.NullString
		if err := rows.Scan(&s.Schema, &s.Name, &targetSchema, &targetObject, &dbLink); err != nil {
			return nil, r.fail(model.KindSynonyms, err)
		}
		s.TargetSchema = targetSchema.String
		s.TargetObject = targetObject.String
		s.TargetDatabase = dbLink.String
		s.BaseObject = s.TargetSchema + "." + s.TargetObject
		out = append(out, s)
	}
	return out, rows.Err()
}

// Oracle grants live at the account level, outside the scope of a single
// database's documentation.
func (r *Reader) ListSecurity(ctx context.Context) (*catalog.SecurityRows, error) {
	return nil, catalog.ErrNotApplicable
}

var _ catalog.Reader = (*Reader)(nil)
