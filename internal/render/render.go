// Package render turns a sealed snapshot into a deterministic set of
// cross-linked markdown documents. It performs no I/O and has no dialect
// awareness; identical snapshots always produce byte-identical output.
package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/arvenshaw/schemadoc/internal/model"
)

// Document is one logical output file: a slash-separated path relative to
// the output root, and its full text content.
type Document struct {
	Path    string
	Content string
}

// Render produces the complete document set for a snapshot: a root README,
// one directory per applicable object category (index plus one file per
// object), and per-schema overviews. Categories the engine reported
// not-applicable are omitted entirely; supported-but-empty categories get
// an index with zero counts.
func Render(snap *model.Snapshot) []Document {
	r := renderer{snap: snap}
	var docs []Document
	docs = append(docs, r.databaseReadme())

	if snap.Applicable(model.KindTables) {
		docs = append(docs, r.tableDocs()...)
	}
	if snap.Applicable(model.KindViews) {
		docs = append(docs, r.viewDocs()...)
	}
	if snap.Applicable(model.KindProcedures) {
		docs = append(docs, r.procedureDocs()...)
	}
	if snap.Applicable(model.KindFunctions) {
		docs = append(docs, r.functionDocs()...)
	}
	if snap.Applicable(model.KindTriggers) {
		docs = append(docs, r.triggerDocs()...)
	}
	if snap.Applicable(model.KindTypes) {
		docs = append(docs, r.typeDocs()...)
	}
	if snap.Applicable(model.KindSequences) {
		docs = append(docs, r.sequenceDocs()...)
	}
	if snap.Applicable(model.KindSynonyms) {
		docs = append(docs, r.synonymDocs()...)
	}
	if snap.Applicable(model.KindSecurity) {
		docs = append(docs, r.securityDocs()...)
	}
	docs = append(docs, r.schemaDocs()...)
	return docs
}

type renderer struct {
	snap *model.Snapshot
}

// doc accumulates lines the way the output is diffed: one line at a time,
// joined with "\n".
type doc struct {
	lines []string
}

func (d *doc) line(s string)                              { d.lines = append(d.lines, s) }
func (d *doc) linef(format string, args ...any)           { d.lines = append(d.lines, fmt.Sprintf(format, args...)) }
func (d *doc) blank()                                     { d.lines = append(d.lines, "") }
func (d *doc) sqlBlock(text string)                       { d.lines = append(d.lines, "```sql", text, "```", "") }
func (d *doc) build(path string) Document                 { return Document{Path: path, Content: strings.Join(d.lines, "\n")} }

func (r *renderer) databaseReadme() Document {
	snap := r.snap
	var d doc
	d.linef("# %s Database Schema", snap.DatabaseName)
	d.blank()
	d.linef("*Generated on %s*", snap.GeneratedAt.Format("2006-01-02 15:04:05"))
	d.blank()
	d.linef("**Database Type:** %s", snap.Engine)
	if snap.Server != "" {
		d.linef("**Server:** %s", snap.Server)
	}
	if snap.Version != "" {
		d.linef("**Version:** %s", snap.Version)
	}
	d.blank()

	d.line("## Summary")
	d.blank()
	d.line("| Object Type | Count |")
	d.line("|-------------|-------|")
	for _, kind := range model.AllKinds() {
		if !snap.Applicable(kind) {
			continue
		}
		d.linef("| %s | %d |", kindTitle(kind), snap.Count(kind))
	}
	d.blank()

	if len(snap.Schemas) > 0 {
		d.line("## Schemas")
		d.blank()
		for _, sc := range snap.Schemas {
			d.linef("- [%s](schemas/%s.md)", sc.Name, sc.Name)
		}
		d.blank()
	}

	d.line("## Object Directories")
	d.blank()
	for _, kind := range model.AllKinds() {
		if !snap.Applicable(kind) {
			continue
		}
		d.linef("- [%s](%s/README.md)", kindTitle(kind), kind)
	}
	d.blank()

	return d.build("README.md")
}

func kindTitle(kind model.ObjectKind) string {
	switch kind {
	case model.KindTables:
		return "Tables"
	case model.KindViews:
		return "Views"
	case model.KindProcedures:
		return "Stored Procedures"
	case model.KindFunctions:
		return "Functions"
	case model.KindTriggers:
		return "Triggers"
	case model.KindTypes:
		return "User-Defined Types"
	case model.KindSequences:
		return "Sequences"
	case model.KindSynonyms:
		return "Synonyms"
	case model.KindSecurity:
		return "Security Principals"
	}
	return string(kind)
}

// ---- tables ----

func (r *renderer) tableDocs() []Document {
	tables := r.snap.Tables()
	var d doc
	d.line("# Tables")
	d.blank()
	d.linef("Total: %d tables", len(tables))
	d.blank()
	d.line("| Schema | Table | Rows | Description |")
	d.line("|--------|-------|------|-------------|")
	for _, t := range tables {
		d.linef("| %s | [%s](%s.%s.md) | %s | %s |",
			t.ID.Schema, t.ID.Name, t.ID.Schema, t.ID.Name,
			optComma(t.RowCount), truncate(t.Description, 50))
	}

	docs := []Document{d.build("tables/README.md")}
	for _, t := range tables {
		docs = append(docs, r.tableFile(t))
	}
	return docs
}

func (r *renderer) tableFile(t model.Table) Document {
	var d doc
	d.linef("# %s", t.ID)
	d.blank()
	if t.Description != "" {
		d.line(t.Description)
		d.blank()
	}

	if t.RowCount != nil || t.SpaceKB != nil {
		d.line("## Statistics")
		d.blank()
		if t.RowCount != nil {
			d.linef("- **Rows:** %s", comma(*t.RowCount))
		}
		if t.SpaceKB != nil {
			d.linef("- **Total Space:** %s KB", comma(*t.SpaceKB))
		}
		d.blank()
	}

	d.line("## Columns")
	d.blank()
	d.line("| Column | Type | Nullable | Default | Description |")
	d.line("|--------|------|----------|---------|-------------|")
	for _, col := range t.Columns {
		d.linef("| %s | %s | %s | %s | %s |",
			col.Name, col.NativeType, yesNo(col.Nullable), columnDefault(col), col.Description)
	}
	d.blank()

	if t.PrimaryKey != nil {
		pk := t.PrimaryKey
		d.line("## Primary Key")
		d.blank()
		if pk.Clustered != nil {
			d.linef("**%s** (%s)", pk.Name, clusteredLabel(*pk.Clustered))
		} else {
			d.linef("**%s**", pk.Name)
		}
		d.blank()
		d.line("Columns: " + backtickList(pk.Columns))
		d.blank()
	}

	if len(t.ForeignKeys) > 0 {
		d.line("## Foreign Keys")
		d.blank()
		d.line("| Name | Columns | References | On Delete | On Update |")
		d.line("|------|---------|------------|-----------|-----------|")
		for _, fk := range t.ForeignKeys {
			ref := fmt.Sprintf("%s(%s)", fk.Target, strings.Join(fk.TargetColumns, ", "))
			d.linef("| %s | %s | %s | %s | %s |",
				fk.Name, strings.Join(fk.Columns, ", "), ref, fk.OnDelete, fk.OnUpdate)
		}
		d.blank()
	}

	var secondary []model.Index
	for _, idx := range t.Indexes {
		if !idx.Primary {
			secondary = append(secondary, idx)
		}
	}
	if len(secondary) > 0 {
		d.line("## Indexes")
		d.blank()
		d.line("| Name | Type | Columns | Filter |")
		d.line("|------|------|---------|--------|")
		for _, idx := range secondary {
			kind := idx.Method
			if idx.Unique {
				kind = "UNIQUE " + kind
			}
			d.linef("| %s | %s | %s | %s |",
				idx.Name, strings.TrimSpace(kind), strings.Join(idx.Columns, ", "), idx.Filter)
		}
		d.blank()
	}

	if len(t.Checks) > 0 {
		d.line("## Check Constraints")
		d.blank()
		for _, cc := range t.Checks {
			d.linef("### %s", cc.Name)
			d.blank()
			d.sqlBlock(cc.Definition)
		}
	}

	outgoing := r.snap.Graph.Outgoing(t.ID)
	incoming := r.snap.Graph.Incoming(t.ID)
	if len(outgoing) > 0 || len(incoming) > 0 {
		d.line("## Relationships")
		d.blank()
		if len(outgoing) > 0 {
			d.line("### References (this table → other tables)")
			d.blank()
			for _, e := range outgoing {
				d.linef("- → %s via `%s`", edgeTarget(e), e.Via)
			}
			d.blank()
		}
		if len(incoming) > 0 {
			d.line("### Referenced By (other objects → this table)")
			d.blank()
			for _, e := range incoming {
				d.linef("- ← %s via `%s`", edgeSource(e), e.Via)
			}
			d.blank()
		}
	}

	return d.build(fmt.Sprintf("tables/%s.%s.md", t.ID.Schema, t.ID.Name))
}

// edgeTarget renders an edge's target as seen from a document inside the
// tables directory. Resolved targets are linked; unresolved ones are marked
// and left unlinked.
func edgeTarget(e model.RelationshipEdge) string {
	if !e.Resolved {
		return fmt.Sprintf("%s (unresolved)", e.Target)
	}
	return fmt.Sprintf("[%s](%s.%s.md)", e.Target, e.Target.Schema, e.Target.Name)
}

// edgeSource renders an edge's source for a "Referenced By" entry. Synonym
// edges originate from the synonyms directory rather than a sibling table.
func edgeSource(e model.RelationshipEdge) string {
	if e.Kind == model.EdgeSynonym {
		return fmt.Sprintf("[%s](../synonyms/%s.%s.md)", e.Source, e.Source.Schema, e.Source.Name)
	}
	return fmt.Sprintf("[%s](%s.%s.md)", e.Source, e.Source.Schema, e.Source.Name)
}

// ---- views ----

func (r *renderer) viewDocs() []Document {
	views := r.snap.Views()
	var d doc
	d.line("# Views")
	d.blank()
	d.linef("Total: %d views", len(views))
	d.blank()
	d.line("| Schema | View | Materialized | Description |")
	d.line("|--------|------|--------------|-------------|")
	for _, v := range views {
		d.linef("| %s | [%s](%s.%s.md) | %s | %s |",
			v.ID.Schema, v.ID.Name, v.ID.Schema, v.ID.Name,
			yesNoWord(v.Materialized), truncate(v.Description, 50))
	}

	docs := []Document{d.build("views/README.md")}
	for _, v := range views {
		docs = append(docs, r.viewFile(v))
	}
	return docs
}

func (r *renderer) viewFile(v model.View) Document {
	var d doc
	d.linef("# %s", v.ID)
	d.blank()
	if v.Description != "" {
		d.line(v.Description)
		d.blank()
	}
	if v.Materialized {
		d.line("*This is a materialized view.*")
		d.blank()
	}

	d.line("## Columns")
	d.blank()
	d.line("| Column | Type | Nullable | Description |")
	d.line("|--------|------|----------|-------------|")
	for _, col := range v.Columns {
		d.linef("| %s | %s | %s | %s |", col.Name, col.NativeType, yesNo(col.Nullable), col.Description)
	}
	d.blank()

	if len(v.BaseTables) > 0 {
		d.line("## Base Tables")
		d.blank()
		for _, bt := range v.BaseTables {
			d.linef("- %s", bt)
		}
		d.blank()
	}

	if v.Definition != "" {
		d.line("## Definition")
		d.blank()
		d.sqlBlock(v.Definition)
	}

	return d.build(fmt.Sprintf("views/%s.%s.md", v.ID.Schema, v.ID.Name))
}

// ---- procedures ----

func (r *renderer) procedureDocs() []Document {
	var procs []model.Routine
	for _, sc := range r.snap.Schemas {
		procs = append(procs, sc.Procedures...)
	}

	var d doc
	d.line("# Stored Procedures")
	d.blank()
	d.linef("Total: %d stored procedures", len(procs))
	d.blank()
	d.line("| Schema | Procedure | Parameters | Language |")
	d.line("|--------|-----------|------------|----------|")
	for _, p := range procs {
		d.linef("| %s | [%s](%s.%s.md) | %d | %s |",
			p.ID.Schema, p.ID.Name, p.ID.Schema, p.ID.Name, len(p.Parameters), p.Language)
	}

	docs := []Document{d.build("procedures/README.md")}
	for _, p := range procs {
		docs = append(docs, r.procedureFile(p))
	}
	return docs
}

func (r *renderer) procedureFile(p model.Routine) Document {
	var d doc
	d.linef("# %s", p.ID)
	d.blank()
	d.linef("**Language:** %s", p.Language)
	d.blank()
	if p.Description != "" {
		d.line(p.Description)
		d.blank()
	}

	if len(p.Parameters) > 0 {
		d.line("## Parameters")
		d.blank()
		d.line("| Name | Type | Direction | Default |")
		d.line("|------|------|-----------|---------|")
		for _, param := range p.Parameters {
			direction := "INPUT"
			if param.Direction != model.DirectionIn {
				direction = "OUTPUT"
			}
			d.linef("| %s | %s | %s | %s |", param.Name, param.NativeType, direction, optString(param.Default))
		}
		d.blank()
	} else {
		d.line("*No parameters*")
		d.blank()
	}

	if p.Definition != "" {
		d.line("## Definition")
		d.blank()
		d.sqlBlock(p.Definition)
	}

	return d.build(fmt.Sprintf("procedures/%s.%s.md", p.ID.Schema, p.ID.Name))
}

// ---- functions ----

func (r *renderer) functionDocs() []Document {
	var funcs []model.Routine
	for _, sc := range r.snap.Schemas {
		funcs = append(funcs, sc.Functions...)
	}

	var d doc
	d.line("# User-Defined Functions")
	d.blank()
	d.linef("Total: %d functions", len(funcs))
	d.blank()
	d.line("| Schema | Function | Type | Parameters | Language |")
	d.line("|--------|----------|------|------------|----------|")
	for _, f := range funcs {
		d.linef("| %s | [%s](%s.%s.md) | %s | %d | %s |",
			f.ID.Schema, f.ID.Name, f.ID.Schema, f.ID.Name,
			titleLabel(f.FunctionType), len(f.Parameters), f.Language)
	}

	docs := []Document{d.build("functions/README.md")}
	for _, f := range funcs {
		docs = append(docs, r.functionFile(f))
	}
	return docs
}

func (r *renderer) functionFile(f model.Routine) Document {
	var d doc
	d.linef("# %s", f.ID)
	d.blank()
	d.linef("**Type:** %s", titleLabel(f.FunctionType))
	d.linef("**Language:** %s", f.Language)
	d.blank()
	if f.Description != "" {
		d.line(f.Description)
		d.blank()
	}

	if len(f.Parameters) > 0 {
		d.line("## Parameters")
		d.blank()
		d.line("| Name | Type | Default |")
		d.line("|------|------|---------|")
		for _, param := range f.Parameters {
			d.linef("| %s | %s | %s |", param.Name, param.NativeType, optString(param.Default))
		}
		d.blank()
	}

	if len(f.ReturnColumns) > 0 {
		d.line("## Return Columns")
		d.blank()
		d.line("| Column | Type | Nullable |")
		d.line("|--------|------|----------|")
		for _, col := range f.ReturnColumns {
			d.linef("| %s | %s | %s |", col.Name, col.NativeType, yesNo(col.Nullable))
		}
		d.blank()
	} else if f.ReturnType != "" {
		d.line("## Returns")
		d.blank()
		d.linef("`%s`", f.ReturnType)
		d.blank()
	}

	if f.Definition != "" {
		d.line("## Definition")
		d.blank()
		d.sqlBlock(f.Definition)
	}

	return d.build(fmt.Sprintf("functions/%s.%s.md", f.ID.Schema, f.ID.Name))
}

// ---- triggers ----

func (r *renderer) triggerDocs() []Document {
	var triggers []model.Trigger
	for _, sc := range r.snap.Schemas {
		triggers = append(triggers, sc.Triggers...)
	}

	var d doc
	d.line("# Triggers")
	d.blank()
	d.linef("Total: %d triggers", len(triggers))
	d.blank()
	d.line("| Schema | Trigger | Table | Type | Events | Disabled |")
	d.line("|--------|---------|-------|------|--------|----------|")
	for _, t := range triggers {
		d.linef("| %s | [%s](%s.%s.md) | %s | %s | %s | %s |",
			t.ID.Schema, t.ID.Name, t.ID.Schema, t.ID.Name,
			t.Parent.Name, timingLabel(t.Timing), strings.Join(t.Events, ", "), yesNoWord(t.Disabled))
	}

	docs := []Document{d.build("triggers/README.md")}
	for _, t := range triggers {
		docs = append(docs, r.triggerFile(t))
	}
	return docs
}

func (r *renderer) triggerFile(t model.Trigger) Document {
	var d doc
	d.linef("# %s", t.ID)
	d.blank()
	d.linef("**Table:** [%s](../tables/%s.%s.md)", t.Parent, t.Parent.Schema, t.Parent.Name)
	d.blank()
	d.linef("**Type:** %s", timingLabel(t.Timing))
	d.blank()
	d.linef("**Events:** %s", strings.Join(t.Events, ", "))
	d.blank()
	if t.Disabled {
		d.line("*This trigger is disabled.*")
		d.blank()
	}
	if t.Description != "" {
		d.line(t.Description)
		d.blank()
	}
	if t.Definition != "" {
		d.line("## Definition")
		d.blank()
		d.sqlBlock(t.Definition)
	}

	return d.build(fmt.Sprintf("triggers/%s.%s.md", t.ID.Schema, t.ID.Name))
}

func timingLabel(t model.TriggerTiming) string {
	return strings.ReplaceAll(string(t), "_", " ")
}

// ---- types ----

func (r *renderer) typeDocs() []Document {
	var types []model.UserDefinedType
	for _, sc := range r.snap.Schemas {
		types = append(types, sc.Types...)
	}

	var d doc
	d.line("# User-Defined Types")
	d.blank()
	d.linef("Total: %d types", len(types))
	d.blank()
	d.line("| Schema | Type | Category | Base Type |")
	d.line("|--------|------|----------|-----------|")
	for _, udt := range types {
		base := udt.BaseType
		if base == "" {
			base = "-"
		}
		d.linef("| %s | [%s](%s.%s.md) | %s | %s |",
			udt.ID.Schema, udt.ID.Name, udt.ID.Schema, udt.ID.Name,
			titleLabel(string(udt.Category)), base)
	}

	docs := []Document{d.build("types/README.md")}
	for _, udt := range types {
		docs = append(docs, r.typeFile(udt))
	}
	return docs
}

func (r *renderer) typeFile(udt model.UserDefinedType) Document {
	var d doc
	d.linef("# %s", udt.ID)
	d.blank()
	d.linef("**Category:** %s", titleLabel(string(udt.Category)))
	d.blank()
	if udt.Description != "" {
		d.line(udt.Description)
		d.blank()
	}

	if udt.BaseType != "" {
		nullable := "NOT NULL"
		if udt.Nullable {
			nullable = "NULL"
		}
		d.line("## Definition")
		d.blank()
		d.linef("Base type: `%s` %s", udt.BaseType, nullable)
		d.blank()
	}

	if len(udt.Columns) > 0 {
		d.line("## Columns")
		d.blank()
		d.line("| Column | Type | Nullable |")
		d.line("|--------|------|----------|")
		for _, col := range udt.Columns {
			d.linef("| %s | %s | %s |", col.Name, col.NativeType, yesNo(col.Nullable))
		}
		d.blank()
	}

	if len(udt.EnumValues) > 0 {
		d.line("## Values")
		d.blank()
		for _, val := range udt.EnumValues {
			d.linef("- `%s`", val)
		}
		d.blank()
	}

	if udt.Check != "" {
		d.line("## Check Constraint")
		d.blank()
		d.sqlBlock(udt.Check)
	}

	return d.build(fmt.Sprintf("types/%s.%s.md", udt.ID.Schema, udt.ID.Name))
}

// ---- sequences ----

func (r *renderer) sequenceDocs() []Document {
	var seqs []model.Sequence
	for _, sc := range r.snap.Schemas {
		seqs = append(seqs, sc.Sequences...)
	}

	var d doc
	d.line("# Sequences")
	d.blank()
	d.linef("Total: %d sequences", len(seqs))
	d.blank()
	d.line("| Schema | Sequence | Type | Start | Increment | Current | Cycling |")
	d.line("|--------|----------|------|-------|-----------|---------|---------|")
	for _, seq := range seqs {
		current := "-"
		if seq.Current != nil {
			current = *seq.Current
		}
		d.linef("| %s | [%s](%s.%s.md) | %s | %d | %d | %s | %s |",
			seq.ID.Schema, seq.ID.Name, seq.ID.Schema, seq.ID.Name,
			seq.DataType, seq.Start, seq.Increment, current, yesNoWord(seq.Cycling))
	}

	docs := []Document{d.build("sequences/README.md")}
	for _, seq := range seqs {
		docs = append(docs, r.sequenceFile(seq))
	}
	return docs
}

func (r *renderer) sequenceFile(seq model.Sequence) Document {
	var d doc
	d.linef("# %s", seq.ID)
	d.blank()
	if seq.Description != "" {
		d.line(seq.Description)
		d.blank()
	}

	cache := "No cache"
	if seq.CacheSize != nil && *seq.CacheSize > 0 {
		cache = fmt.Sprintf("%d", *seq.CacheSize)
	}
	current := "-"
	if seq.Current != nil {
		current = *seq.Current
	}

	d.line("## Properties")
	d.blank()
	d.linef("- **Data Type:** %s", seq.DataType)
	d.linef("- **Start Value:** %d", seq.Start)
	d.linef("- **Increment:** %d", seq.Increment)
	d.linef("- **Minimum Value:** %s", seq.Min)
	d.linef("- **Maximum Value:** %s", seq.Max)
	d.linef("- **Current Value:** %s", current)
	d.linef("- **Cycling:** %s", yesNoWord(seq.Cycling))
	d.linef("- **Cache:** %s", cache)
	d.blank()

	return d.build(fmt.Sprintf("sequences/%s.%s.md", seq.ID.Schema, seq.ID.Name))
}

// ---- synonyms ----

func (r *renderer) synonymDocs() []Document {
	syns := r.snap.Synonyms()

	var d doc
	d.line("# Synonyms")
	d.blank()
	d.linef("Total: %d synonyms", len(syns))
	d.blank()
	d.line("| Schema | Synonym | Target |")
	d.line("|--------|---------|--------|")
	for _, syn := range syns {
		d.linef("| %s | [%s](%s.%s.md) | %s |",
			syn.ID.Schema, syn.ID.Name, syn.ID.Schema, syn.ID.Name, synonymTarget(syn))
	}

	docs := []Document{d.build("synonyms/README.md")}
	for _, syn := range syns {
		docs = append(docs, r.synonymFile(syn))
	}
	return docs
}

// synonymTarget renders the synonym's full base object reference, including
// linked-server and database qualifiers when present.
func synonymTarget(syn model.Synonym) string {
	var parts []string
	if syn.TargetServer != "" {
		parts = append(parts, syn.TargetServer)
	}
	if syn.TargetDatabase != "" {
		parts = append(parts, syn.TargetDatabase)
	}
	parts = append(parts, syn.Target.String())
	return strings.Join(parts, ".")
}

func (r *renderer) synonymFile(syn model.Synonym) Document {
	var d doc
	d.linef("# %s", syn.ID)
	d.blank()
	if syn.Description != "" {
		d.line(syn.Description)
		d.blank()
	}

	d.line("## Target")
	d.blank()
	d.linef("**Base Object:** `%s`", synonymTarget(syn))
	d.blank()

	if syn.TargetServer != "" || syn.TargetDatabase != "" {
		d.line("### Parsed Reference")
		d.blank()
		if syn.TargetServer != "" {
			d.linef("- **Server:** %s", syn.TargetServer)
		}
		if syn.TargetDatabase != "" {
			d.linef("- **Database:** %s", syn.TargetDatabase)
		}
		if syn.Target.Schema != "" {
			d.linef("- **Schema:** %s", syn.Target.Schema)
		}
		if syn.Target.Name != "" {
			d.linef("- **Object:** %s", syn.Target.Name)
		}
		d.blank()
	}

	return d.build(fmt.Sprintf("synonyms/%s.%s.md", syn.ID.Schema, syn.ID.Name))
}

// ---- security ----

func (r *renderer) securityDocs() []Document {
	principals := r.snap.Principals

	var d doc
	d.line("# Security Principals")
	d.blank()
	d.linef("Total: %d principals", len(principals))
	d.blank()
	d.line("| Principal | Kind | Authentication | Default Schema | Disabled |")
	d.line("|-----------|------|----------------|----------------|----------|")
	for _, p := range principals {
		d.linef("| [%s](%s.md) | %s | %s | %s | %s |",
			p.Name, p.Name, p.Kind, p.AuthType, p.DefaultSchema, yesNoWord(p.Disabled))
	}

	docs := []Document{d.build("security/README.md")}
	for _, p := range principals {
		docs = append(docs, r.principalFile(p))
	}
	return docs
}

func (r *renderer) principalFile(p model.SecurityPrincipal) Document {
	var d doc
	d.linef("# %s", p.Name)
	d.blank()
	d.linef("**Kind:** %s", p.Kind)
	if p.AuthType != "" {
		d.linef("**Authentication:** %s", p.AuthType)
	}
	if p.DefaultSchema != "" {
		d.linef("**Default Schema:** %s", p.DefaultSchema)
	}
	d.blank()
	if p.Disabled {
		d.line("*This principal is disabled.*")
		d.blank()
	}

	if len(p.Memberships) > 0 {
		d.line("## Role Memberships")
		d.blank()
		for _, role := range p.Memberships {
			d.linef("- %s", role)
		}
		d.blank()
	}

	if len(p.Grants) > 0 {
		d.line("## Grants")
		d.blank()
		d.line("| Privilege | State | Object |")
		d.line("|-----------|-------|--------|")
		for _, g := range p.Grants {
			d.linef("| %s | %s | %s |", g.Privilege, g.State, g.Object)
		}
		d.blank()
	}

	return d.build(fmt.Sprintf("security/%s.md", p.Name))
}

// ---- schemas ----

func (r *renderer) schemaDocs() []Document {
	schemas := r.snap.Schemas

	var d doc
	d.line("# Schemas")
	d.blank()
	d.linef("Total: %d schemas", len(schemas))
	d.blank()
	d.line("| Schema | Tables | Views | Procedures | Functions |")
	d.line("|--------|--------|-------|------------|-----------|")
	for _, sc := range schemas {
		d.linef("| [%s](%s.md) | %d | %d | %d | %d |",
			sc.Name, sc.Name, len(sc.Tables), len(sc.Views), len(sc.Procedures), len(sc.Functions))
	}

	docs := []Document{d.build("schemas/README.md")}
	for _, sc := range schemas {
		docs = append(docs, r.schemaFile(sc))
	}
	return docs
}

func (r *renderer) schemaFile(sc *model.SchemaObjects) Document {
	var d doc
	d.linef("# Schema: %s", sc.Name)
	d.blank()

	section := func(title, dir string, names []string) {
		if len(names) == 0 {
			return
		}
		sorted := make([]string, len(names))
		copy(sorted, names)
		sort.Strings(sorted)
		d.linef("## %s", title)
		d.blank()
		for _, name := range sorted {
			d.linef("- [%s](../%s/%s.%s.md)", name, dir, sc.Name, name)
		}
		d.blank()
	}

	section("Tables", "tables", objectNames(len(sc.Tables), func(i int) string { return sc.Tables[i].ID.Name }))
	section("Views", "views", objectNames(len(sc.Views), func(i int) string { return sc.Views[i].ID.Name }))
	section("Stored Procedures", "procedures", objectNames(len(sc.Procedures), func(i int) string { return sc.Procedures[i].ID.Name }))
	section("Functions", "functions", objectNames(len(sc.Functions), func(i int) string { return sc.Functions[i].ID.Name }))
	section("Triggers", "triggers", objectNames(len(sc.Triggers), func(i int) string { return sc.Triggers[i].ID.Name }))
	section("User-Defined Types", "types", objectNames(len(sc.Types), func(i int) string { return sc.Types[i].ID.Name }))
	section("Sequences", "sequences", objectNames(len(sc.Sequences), func(i int) string { return sc.Sequences[i].ID.Name }))
	section("Synonyms", "synonyms", objectNames(len(sc.Synonyms), func(i int) string { return sc.Synonyms[i].ID.Name }))

	return d.build(fmt.Sprintf("schemas/%s.md", sc.Name))
}

func objectNames(n int, name func(int) string) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = name(i)
	}
	return out
}

// ---- small formatting helpers ----

func backtickList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = "`" + s + "`"
	}
	return strings.Join(quoted, ", ")
}

func yesNo(b bool) string {
	if b {
		return "YES"
	}
	return "NO"
}

func yesNoWord(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func clusteredLabel(clustered bool) string {
	if clustered {
		return "CLUSTERED"
	}
	return "NONCLUSTERED"
}

func columnDefault(col model.Column) string {
	switch {
	case col.Computed != nil:
		return "COMPUTED: " + *col.Computed
	case col.Identity:
		seed, inc := int64(1), int64(1)
		if col.IdentitySeed != nil {
			seed = *col.IdentitySeed
		}
		if col.IdentityIncrement != nil {
			inc = *col.IdentityIncrement
		}
		return fmt.Sprintf("IDENTITY(%d,%d)", seed, inc)
	case col.Default != nil:
		return *col.Default
	}
	return ""
}

func optString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optComma(n *int64) string {
	if n == nil {
		return "-"
	}
	return comma(*n)
}

// comma formats an integer with thousands separators.
func comma(n int64) string {
	s := fmt.Sprintf("%d", n)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ",")
	if neg {
		out = "-" + out
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// titleLabel turns an uppercase label like TABLE_VALUED into Table Valued.
func titleLabel(s string) string {
	words := strings.Split(strings.ReplaceAll(s, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
