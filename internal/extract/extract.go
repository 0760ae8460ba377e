// Package extract orchestrates one snapshot: it drives a dialect's catalog
// reader, pushes the raw rows through the adapter, applies the selection,
// builds the relationship graph and seals the result.
package extract

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/arvenshaw/schemadoc/internal/catalog"
	"github.com/arvenshaw/schemadoc/internal/dialect"
	"github.com/arvenshaw/schemadoc/internal/filter"
	"github.com/arvenshaw/schemadoc/internal/graph"
	"github.com/arvenshaw/schemadoc/internal/model"
)

// Extract runs the full pipeline against one open reader. Connection
// identity, schema and table listing failures abort; any other capability
// failure degrades to a snapshot warning, as does every object skipped for
// violating a model invariant. The reader is not closed here.
func Extract(ctx context.Context, reader catalog.Reader, ad dialect.Adapter, sel filter.Selection) (*model.Snapshot, error) {
	if err := sel.Validate(ad.Fold); err != nil {
		return nil, err
	}

	info, err := reader.Info(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading database info: %w", err)
	}

	e := &extraction{
		reader: reader,
		ad:     ad,
		keep:   sel.Schemas(ad.Fold, ad.SystemSchemas()),
		kinds:  sel.KindSet(),
		snap: &model.Snapshot{
			DatabaseName: info.Name,
			Engine:       ad.Engine(),
			Version:      info.Version,
			Server:       info.Server,
			GeneratedAt:  time.Now().UTC(),
		},
		schemas: make(map[string]*model.SchemaObjects),
		tables:  make(map[string]*model.Table),
		views:   make(map[string]*model.View),
	}

	if err := e.run(ctx); err != nil {
		return nil, err
	}

	e.snap.Graph = graph.Build(e.snap)
	for _, edge := range e.snap.Graph.Edges() {
		if !edge.Resolved {
			e.warnf("graph", "%s %q on %s references %s outside the documented set",
				edge.Kind, edge.Via, edge.Source.String(), edge.Target.String())
		}
	}
	e.snap.Seal()
	return e.snap, nil
}

type extraction struct {
	reader catalog.Reader
	ad     dialect.Adapter
	keep   func(string) bool
	kinds  map[model.ObjectKind]bool
	snap   *model.Snapshot

	schemas map[string]*model.SchemaObjects
	tables  map[string]*model.Table
	views   map[string]*model.View
}

func (e *extraction) run(ctx context.Context) error {
	if err := e.loadSchemas(ctx); err != nil {
		return err
	}
	if err := e.loadTables(ctx); err != nil {
		return err
	}
	e.loadViews(ctx)
	if err := e.loadColumns(ctx); err != nil {
		return err
	}
	e.loadPrimaryKeys(ctx)
	e.loadForeignKeys(ctx)
	e.loadChecks(ctx)
	e.loadIndexes(ctx)
	e.validateTables()
	e.loadRoutines(ctx)
	e.loadTriggers(ctx)
	e.loadTypes(ctx)
	e.loadSequences(ctx)
	e.loadSynonyms(ctx)
	e.loadSecurity(ctx)
	return nil
}

func (e *extraction) warnf(op, format string, args ...any) {
	e.snap.Warnings = append(e.snap.Warnings, model.Warning{
		Op:      op,
		Message: fmt.Sprintf(format, args...),
	})
}

// degrade records a capability failure as a warning; not-applicable marks
// are recorded on the snapshot instead.
func (e *extraction) degrade(kinds []model.ObjectKind, err error) {
	if catalog.NotApplicable(err) {
		e.snap.NotApplicable = append(e.snap.NotApplicable, kinds...)
		return
	}
	for _, kind := range kinds {
		e.warnf(string(kind), "%v", err)
	}
}

func (e *extraction) schema(name string) *model.SchemaObjects {
	sc, ok := e.schemas[name]
	if !ok {
		sc = &model.SchemaObjects{Name: name}
		e.schemas[name] = sc
		e.snap.Schemas = append(e.snap.Schemas, sc)
	}
	return sc
}

func objKey(schema, name string) string { return schema + "\x00" + name }

func (e *extraction) id(schema, name string) model.Identifier {
	return model.NewIdentifier(schema, name, e.ad.Fold)
}

func (e *extraction) loadSchemas(ctx context.Context) error {
	rows, err := e.reader.ListSchemas(ctx)
	if err != nil {
		return fmt.Errorf("listing schemas: %w", err)
	}
	for _, row := range rows {
		if e.keep(row.Name) {
			e.schema(row.Name)
		}
	}
	return nil
}

func (e *extraction) loadTables(ctx context.Context) error {
	if !e.kinds[model.KindTables] {
		return nil
	}
	rows, err := e.reader.ListTables(ctx)
	if err != nil {
		return fmt.Errorf("listing tables: %w", err)
	}
	for _, row := range rows {
		if !e.keep(row.Schema) {
			continue
		}
		t := &model.Table{
			ID:          e.id(row.Schema, row.Name),
			RowCount:    row.RowCount,
			SpaceKB:     row.SpaceKB,
			Description: row.Description,
		}
		e.tables[objKey(row.Schema, row.Name)] = t
	}
	return nil
}

func (e *extraction) loadViews(ctx context.Context) {
	if !e.kinds[model.KindViews] {
		return
	}
	rows, err := e.reader.ListViews(ctx)
	if err != nil {
		e.degrade([]model.ObjectKind{model.KindViews}, err)
		return
	}
	for _, row := range rows {
		if !e.keep(row.Schema) {
			continue
		}
		v := &model.View{
			ID:           e.id(row.Schema, row.Name),
			Definition:   row.Definition,
			BaseTables:   row.BaseTables,
			Materialized: row.Materialized,
			Description:  row.Description,
		}
		e.views[objKey(row.Schema, row.Name)] = v
	}
}

// loadColumns attaches columns to both tables and views. A failure here is
// fatal: tables without columns cannot satisfy the model invariants.
func (e *extraction) loadColumns(ctx context.Context) error {
	if len(e.tables) == 0 && len(e.views) == 0 {
		return nil
	}
	rows, err := e.reader.ListColumns(ctx)
	if err != nil {
		return fmt.Errorf("listing columns: %w", err)
	}
	for _, row := range rows {
		key := objKey(row.Schema, row.Table)
		col := e.ad.Column(row)
		if t, ok := e.tables[key]; ok {
			t.Columns = append(t.Columns, col)
		} else if v, ok := e.views[key]; ok {
			v.Columns = append(v.Columns, col)
		}
	}
	return nil
}

func (e *extraction) loadPrimaryKeys(ctx context.Context) {
	if len(e.tables) == 0 {
		return
	}
	rows, err := e.reader.ListPrimaryKeys(ctx)
	if err != nil {
		e.degrade([]model.ObjectKind{model.KindTables}, err)
		return
	}
	type pkAgg struct {
		row  catalog.PrimaryKeyRow
		cols []catalog.PrimaryKeyRow
	}
	agg := make(map[string]*pkAgg)
	var order []string
	for _, row := range rows {
		key := objKey(row.Schema, row.Table)
		if _, ok := e.tables[key]; !ok {
			continue
		}
		a, ok := agg[key]
		if !ok {
			a = &pkAgg{row: row}
			agg[key] = a
			order = append(order, key)
		}
		a.cols = append(a.cols, row)
	}
	for _, key := range order {
		a := agg[key]
		sort.Slice(a.cols, func(i, j int) bool { return a.cols[i].Ordinal < a.cols[j].Ordinal })
		pk := &model.PrimaryKey{
			Name:      a.row.Constraint,
			Clustered: a.row.Clustered,
		}
		for _, c := range a.cols {
			pk.Columns = append(pk.Columns, c.Column)
		}
		e.tables[key].PrimaryKey = pk
	}
}

func (e *extraction) loadForeignKeys(ctx context.Context) {
	if len(e.tables) == 0 {
		return
	}
	rows, err := e.reader.ListForeignKeys(ctx)
	if err != nil {
		e.degrade([]model.ObjectKind{model.KindTables}, err)
		return
	}
	type fkAgg struct {
		table string
		rows  []catalog.ForeignKeyRow
	}
	agg := make(map[string]*fkAgg)
	var order []string
	for _, row := range rows {
		tableKey := objKey(row.Schema, row.Table)
		if _, ok := e.tables[tableKey]; !ok {
			continue
		}
		key := tableKey + "\x00" + row.Constraint
		a, ok := agg[key]
		if !ok {
			a = &fkAgg{table: tableKey}
			agg[key] = a
			order = append(order, key)
		}
		a.rows = append(a.rows, row)
	}
	for _, key := range order {
		a := agg[key]
		sort.Slice(a.rows, func(i, j int) bool { return a.rows[i].Ordinal < a.rows[j].Ordinal })
		first := a.rows[0]
		var cols, refCols []string
		for _, row := range a.rows {
			cols = append(cols, row.Column)
			refCols = append(refCols, row.RefColumn)
		}
		fk, err := model.NewForeignKey(
			first.Constraint,
			cols,
			e.id(first.RefSchema, first.RefTable),
			refCols,
			e.ad.ReferentialAction(first.DeleteRule),
			e.ad.ReferentialAction(first.UpdateRule),
		)
		if err != nil {
			e.warnf(string(model.KindTables), "%v", err)
			continue
		}
		t := e.tables[a.table]
		t.ForeignKeys = append(t.ForeignKeys, fk)
	}
}

func (e *extraction) loadChecks(ctx context.Context) {
	if len(e.tables) == 0 {
		return
	}
	rows, err := e.reader.ListChecks(ctx)
	if err != nil {
		e.degrade([]model.ObjectKind{model.KindTables}, err)
		return
	}
	for _, row := range rows {
		if t, ok := e.tables[objKey(row.Schema, row.Table)]; ok {
			t.Checks = append(t.Checks, model.CheckConstraint{
				Name:       row.Name,
				Definition: row.Definition,
			})
		}
	}
}

func (e *extraction) loadIndexes(ctx context.Context) {
	if len(e.tables) == 0 {
		return
	}
	rows, err := e.reader.ListIndexes(ctx)
	if err != nil {
		e.degrade([]model.ObjectKind{model.KindTables}, err)
		return
	}
	for _, row := range rows {
		if t, ok := e.tables[objKey(row.Schema, row.Table)]; ok {
			t.Indexes = append(t.Indexes, model.Index{
				Name:      row.Name,
				Unique:    row.Unique,
				Primary:   row.Primary,
				Columns:   row.Columns,
				Included:  row.Included,
				Clustered: row.Clustered,
				Method:    e.ad.IndexMethod(row.Method),
				Filter:    row.Filter,
			})
		}
	}
}

// validateTables enforces the table invariants, dropping violators with a
// warning, and files survivors under their schema.
func (e *extraction) validateTables() {
	for _, t := range e.tables {
		if err := model.ValidateTable(t); err != nil {
			e.warnf(string(model.KindTables), "skipping %s: %v", t.ID.String(), err)
			delete(e.tables, objKey(t.ID.Schema, t.ID.Name))
			continue
		}
		sc := e.schema(t.ID.Schema)
		sc.Tables = append(sc.Tables, *t)
	}
	for _, v := range e.views {
		sc := e.schema(v.ID.Schema)
		sc.Views = append(sc.Views, *v)
	}
}

func (e *extraction) loadRoutines(ctx context.Context) {
	wantProcs := e.kinds[model.KindProcedures] && e.ad.Supports(model.KindProcedures)
	wantFuncs := e.kinds[model.KindFunctions] && e.ad.Supports(model.KindFunctions)
	if !e.ad.Supports(model.KindProcedures) {
		e.snap.NotApplicable = append(e.snap.NotApplicable, model.KindProcedures)
	}
	if !e.ad.Supports(model.KindFunctions) {
		e.snap.NotApplicable = append(e.snap.NotApplicable, model.KindFunctions)
	}
	if !wantProcs && !wantFuncs {
		return
	}
	rows, err := e.reader.ListRoutines(ctx)
	if err != nil {
		e.degrade([]model.ObjectKind{model.KindProcedures, model.KindFunctions}, err)
		return
	}
	for _, row := range rows {
		if !e.keep(row.Schema) {
			continue
		}
		kind, ok := e.ad.RoutineKind(row.Kind)
		if !ok {
			continue
		}
		if kind == model.RoutineProcedure && !wantProcs {
			continue
		}
		if kind == model.RoutineFunction && !wantFuncs {
			continue
		}
		r := model.Routine{
			ID:           e.id(row.Schema, row.Name),
			Kind:         kind,
			FunctionType: row.FunctionType,
			ReturnType:   row.ReturnType,
			Language:     row.Language,
			Definition:   row.Definition,
			Description:  row.Description,
		}
		for _, p := range row.Params {
			r.Parameters = append(r.Parameters, e.ad.Parameter(p))
		}
		for _, c := range row.Returns {
			r.ReturnColumns = append(r.ReturnColumns, e.ad.Column(c))
		}
		sc := e.schema(row.Schema)
		if kind == model.RoutineProcedure {
			sc.Procedures = append(sc.Procedures, r)
		} else {
			sc.Functions = append(sc.Functions, r)
		}
	}
}

func (e *extraction) loadTriggers(ctx context.Context) {
	if !e.kinds[model.KindTriggers] {
		return
	}
	rows, err := e.reader.ListTriggers(ctx)
	if err != nil {
		e.degrade([]model.ObjectKind{model.KindTriggers}, err)
		return
	}
	for _, row := range rows {
		if !e.keep(row.Schema) {
			continue
		}
		t := model.Trigger{
			ID:          e.id(row.Schema, row.Name),
			Parent:      e.id(row.ParentSchema, row.ParentTable),
			Timing:      e.ad.TriggerTiming(row.Timing),
			Events:      row.Events,
			Disabled:    row.Disabled,
			Definition:  row.Definition,
			Description: row.Description,
		}
		sc := e.schema(row.Schema)
		sc.Triggers = append(sc.Triggers, t)
		if parent, ok := e.tables[objKey(row.ParentSchema, row.ParentTable)]; ok {
			e.attachTriggerName(parent.ID, row.Name)
		}
	}
}

// attachTriggerName mirrors a trigger name onto the already-filed copy of
// its parent table.
func (e *extraction) attachTriggerName(parent model.Identifier, trigger string) {
	sc, ok := e.schemas[parent.Schema]
	if !ok {
		return
	}
	for i := range sc.Tables {
		if sc.Tables[i].ID.Key() == parent.Key() {
			sc.Tables[i].Triggers = append(sc.Tables[i].Triggers, trigger)
			return
		}
	}
}

func (e *extraction) loadTypes(ctx context.Context) {
	if !e.ad.Supports(model.KindTypes) {
		e.snap.NotApplicable = append(e.snap.NotApplicable, model.KindTypes)
		return
	}
	if !e.kinds[model.KindTypes] {
		return
	}
	rows, err := e.reader.ListTypes(ctx)
	if err != nil {
		e.degrade([]model.ObjectKind{model.KindTypes}, err)
		return
	}
	for _, row := range rows {
		if !e.keep(row.Schema) {
			continue
		}
		udt := model.UserDefinedType{
			ID:          e.id(row.Schema, row.Name),
			Category:    e.ad.TypeCategory(row.Category),
			BaseType:    row.BaseType,
			Nullable:    row.Nullable,
			EnumValues:  row.EnumValues,
			Check:       row.Check,
			Description: row.Description,
		}
		for _, attr := range row.Attributes {
			udt.Columns = append(udt.Columns, e.ad.Column(attr))
		}
		sc := e.schema(row.Schema)
		sc.Types = append(sc.Types, udt)
	}
}

func (e *extraction) loadSequences(ctx context.Context) {
	if !e.ad.Supports(model.KindSequences) {
		e.snap.NotApplicable = append(e.snap.NotApplicable, model.KindSequences)
		return
	}
	if !e.kinds[model.KindSequences] {
		return
	}
	rows, err := e.reader.ListSequences(ctx)
	if err != nil {
		e.degrade([]model.ObjectKind{model.KindSequences}, err)
		return
	}
	for _, row := range rows {
		if !e.keep(row.Schema) {
			continue
		}
		sc := e.schema(row.Schema)
		sc.Sequences = append(sc.Sequences, model.Sequence{
			ID:          e.id(row.Schema, row.Name),
			DataType:    row.DataType,
			Start:       row.Start,
			Increment:   row.Increment,
			Min:         row.Min,
			Max:         row.Max,
			Cycling:     row.Cycling,
			CacheSize:   row.CacheSize,
			Current:     row.Current,
			Description: row.Description,
		})
	}
}

func (e *extraction) loadSynonyms(ctx context.Context) {
	if !e.ad.Supports(model.KindSynonyms) {
		e.snap.NotApplicable = append(e.snap.NotApplicable, model.KindSynonyms)
		return
	}
	if !e.kinds[model.KindSynonyms] {
		return
	}
	rows, err := e.reader.ListSynonyms(ctx)
	if err != nil {
		e.degrade([]model.ObjectKind{model.KindSynonyms}, err)
		return
	}
	for _, row := range rows {
		if !e.keep(row.Schema) {
			continue
		}
		sc := e.schema(row.Schema)
		sc.Synonyms = append(sc.Synonyms, model.Synonym{
			ID:             e.id(row.Schema, row.Name),
			Target:         e.id(row.TargetSchema, row.TargetObject),
			TargetServer:   row.TargetServer,
			TargetDatabase: row.TargetDatabase,
			Description:    row.Description,
		})
	}
}

func (e *extraction) loadSecurity(ctx context.Context) {
	if !e.ad.Supports(model.KindSecurity) {
		e.snap.NotApplicable = append(e.snap.NotApplicable, model.KindSecurity)
		return
	}
	if !e.kinds[model.KindSecurity] {
		return
	}
	sec, err := e.reader.ListSecurity(ctx)
	if err != nil {
		e.degrade([]model.ObjectKind{model.KindSecurity}, err)
		return
	}
	principals := make(map[string]*model.SecurityPrincipal)
	var order []string
	for _, row := range sec.Principals {
		kind := model.PrincipalUser
		if row.Kind == "ROLE" {
			kind = model.PrincipalRole
		}
		principals[row.Name] = &model.SecurityPrincipal{
			Name:          row.Name,
			Kind:          kind,
			AuthType:      row.AuthType,
			Disabled:      row.Disabled,
			DefaultSchema: row.DefaultSchema,
		}
		order = append(order, row.Name)
	}
	for _, g := range sec.Grants {
		p, ok := principals[g.Grantee]
		if !ok {
			continue
		}
		if !e.keep(g.ObjectSchema) {
			continue
		}
		p.Grants = append(p.Grants, model.Grant{
			Privilege: g.Privilege,
			State:     g.State,
			Object:    e.id(g.ObjectSchema, g.ObjectName),
		})
	}
	for _, m := range sec.Memberships {
		if p, ok := principals[m.Member]; ok {
			p.Memberships = append(p.Memberships, m.Role)
		}
	}
	for _, name := range order {
		e.snap.Principals = append(e.snap.Principals, *principals[name])
	}
}
