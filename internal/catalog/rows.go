package catalog

// SchemaRow is one schema (owner) in the database.
type SchemaRow struct {
	Name  string
	Owner string
}

// TableRow is one base table. Statistics are best-effort and may be absent
// or stale; RowCount in particular comes from planner estimates on some
// engines and can be negative.
type TableRow struct {
	Schema      string
	Name        string
	RowCount    *int64
	SpaceKB     *int64
	Description string
}

// ColumnRow is one column of a table, view, composite type or table type.
// NativeType is the engine's composed display type ("nvarchar(50)",
// "NUMBER(10,2)"); Default and Computed are opaque expression text.
type ColumnRow struct {
	Schema     string
	Table      string
	Name       string
	Ordinal    int
	NativeType string
	MaxLength  *int64
	Precision  *int64
	Scale      *int64
	Nullable   bool
	Default    *string

	Identity          bool
	IdentitySeed      *int64
	IdentityIncrement *int64

	Computed    *string
	Collation   string
	Description string

	// Extra carries engine-specific column metadata that does not fit a
	// shared field (MySQL's EXTRA, the full column_type for enums).
	Extra string
}

// PrimaryKeyRow is one column of a primary key constraint.
type PrimaryKeyRow struct {
	Schema     string
	Table      string
	Constraint string
	Column     string
	Ordinal    int
	Clustered  *bool
}

// ForeignKeyRow is one column pair of a foreign key constraint. DeleteRule
// and UpdateRule carry the engine's own spelling.
type ForeignKeyRow struct {
	Schema     string
	Table      string
	Constraint string
	Ordinal    int
	Column     string
	RefSchema  string
	RefTable   string
	RefColumn  string
	DeleteRule string
	UpdateRule string
}

// CheckRow is one check constraint with its unparsed definition.
type CheckRow struct {
	Schema     string
	Table      string
	Name       string
	Definition string
}

// IndexRow is one index with its key and included columns already ordered.
type IndexRow struct {
	Schema    string
	Table     string
	Name      string
	Unique    bool
	Primary   bool
	Columns   []string
	Included  []string
	Clustered *bool
	Method    string
	Filter    string
}

// ViewRow is one view with its full query text. BaseTables is best-effort:
// populated from the engine's dependency catalog when one exists, empty
// otherwise.
type ViewRow struct {
	Schema       string
	Name         string
	Definition   string
	Materialized bool
	BaseTables   []string
	Description  string
}

// RoutineRow is one stored procedure or function. Kind carries the engine's
// spelling ("PROCEDURE", "FUNCTION", mssql type_desc values); FunctionType
// distinguishes scalar from table-valued where the engine reports it.
// Params and Returns are grouped under their routine because every engine's
// catalog keys them that way.
type RoutineRow struct {
	Schema       string
	Name         string
	Kind         string
	FunctionType string
	ReturnType   string
	Language     string
	Definition   string
	Description  string
	Params       []ParameterRow
	Returns      []ColumnRow
}

// ParameterRow is one routine parameter. Mode carries the engine spelling
// ("IN", "OUT", "INOUT", "IN/OUT").
type ParameterRow struct {
	Schema     string
	Routine    string
	Name       string
	Ordinal    int
	NativeType string
	MaxLength  *int64
	Precision  *int64
	Scale      *int64
	Mode       string
	HasDefault bool
	Default    *string
}

// TriggerRow is one DML trigger. Timing and Events carry engine spellings;
// for SQLite the timing and events may need recovering from Definition.
type TriggerRow struct {
	Schema       string
	Name         string
	ParentSchema string
	ParentTable  string
	Timing       string
	Events       []string
	Disabled     bool
	Definition   string
	Description  string
}

// TypeRow is one user-defined type. Category carries the engine spelling
// ("e"/"c"/"d" for Postgres, "TABLE_TYPE" for SQL Server).
type TypeRow struct {
	Schema      string
	Name        string
	Category    string
	BaseType    string
	Nullable    bool
	Check       string
	Description string

	// Attributes holds member columns for composite and table types;
	// EnumValues holds labels in sort order for enum types.
	Attributes []ColumnRow
	EnumValues []string
}

// SequenceRow is one sequence. Min, Max and Current are exact decimal
// strings; Oracle bounds exceed int64.
type SequenceRow struct {
	Schema      string
	Name        string
	DataType    string
	Start       int64
	Increment   int64
	Min         string
	Max         string
	Cycling     bool
	CacheSize   *int64
	Current     *string
	Description string
}

// SynonymRow is one synonym. Target fields are already split when the
// engine stores them split, otherwise left for the adapter to parse from
// BaseObject.
type SynonymRow struct {
	Schema         string
	Name           string
	BaseObject     string
	TargetServer   string
	TargetDatabase string
	TargetSchema   string
	TargetObject   string
	Description    string
}

// PrincipalRow is one database user or role.
type PrincipalRow struct {
	Name          string
	Kind          string
	AuthType      string
	Disabled      bool
	DefaultSchema string
}

// GrantRow is one object-level permission.
type GrantRow struct {
	Grantee      string
	Privilege    string
	State        string
	ObjectSchema string
	ObjectName   string
}

// MembershipRow is one role membership.
type MembershipRow struct {
	Member string
	Role   string
}

// SecurityRows bundles the three security row sets one ListSecurity call
// produces.
type SecurityRows struct {
	Principals  []PrincipalRow
	Grants      []GrantRow
	Memberships []MembershipRow
}
