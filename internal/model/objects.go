package model

// RefAction is a referential action normalized to a closed set. Engines
// spell these differently ("NO ACTION", "NOACTION", single letters in the
// Postgres catalog); adapters map them here.
type RefAction string

const (
	ActionNoAction   RefAction = "NO_ACTION"
	ActionCascade    RefAction = "CASCADE"
	ActionRestrict   RefAction = "RESTRICT"
	ActionSetNull    RefAction = "SET_NULL"
	ActionSetDefault RefAction = "SET_DEFAULT"
)

// Column is a table, view or type member column. NativeType is the engine's
// own display string (already composed with length/precision); DataType is
// the normalized bucket used for cross-dialect comparison. Both are kept.
type Column struct {
	Name       string
	DataType   string
	NativeType string
	Nullable   bool
	Default    *string

	// Identity covers identity columns and auto-increment alike. Seed and
	// increment are only set when the engine exposes them.
	Identity          bool
	IdentitySeed      *int64
	IdentityIncrement *int64

	// Computed holds the generation expression for computed columns,
	// carried as opaque text.
	Computed *string

	Collation   string
	Description string
	Ordinal     int
}

// PrimaryKey describes a table's primary key. Clustered is nil for engines
// without a clustering concept.
type PrimaryKey struct {
	Name      string
	Columns   []string
	Clustered *bool
}

// ForeignKey is a normalized foreign key constraint. Target identifies the
// referenced table; Columns and TargetColumns are positionally paired.
type ForeignKey struct {
	Name          string
	Columns       []string
	Target        Identifier
	TargetColumns []string
	OnDelete      RefAction
	OnUpdate      RefAction
}

// Index describes a secondary index. Method is a display label (BTREE,
// HASH, ...) since access methods do not normalize across engines.
// Clustered is nil when the engine has no such concept.
type Index struct {
	Name      string
	Unique    bool
	Primary   bool
	Columns   []string
	Included  []string
	Clustered *bool
	Method    string
	Filter    string
}

// CheckConstraint carries the constraint expression as opaque text.
type CheckConstraint struct {
	Name       string
	Definition string
}

// Table is a base table with everything attached to it. Statistics are
// best-effort: nil when the engine cannot provide them, and possibly stale
// or approximate when it can.
type Table struct {
	ID          Identifier
	Columns     []Column
	PrimaryKey  *PrimaryKey
	ForeignKeys []ForeignKey
	Indexes     []Index
	Checks      []CheckConstraint
	Triggers    []string
	RowCount    *int64
	SpaceKB     *int64
	Description string
}

// View is a (possibly materialized) view with its full query text and the
// base tables it references, when the catalog can report them.
type View struct {
	ID           Identifier
	Columns      []Column
	Definition   string
	BaseTables   []string
	Materialized bool
	Description  string
}

// ParamDirection is a routine parameter direction.
type ParamDirection string

const (
	DirectionIn    ParamDirection = "IN"
	DirectionOut   ParamDirection = "OUT"
	DirectionInOut ParamDirection = "INOUT"
)

// Parameter is a routine parameter.
type Parameter struct {
	Name       string
	DataType   string
	NativeType string
	Direction  ParamDirection
	Default    *string
	Ordinal    int
}

// RoutineKind distinguishes procedures from functions.
type RoutineKind string

const (
	RoutineProcedure RoutineKind = "PROCEDURE"
	RoutineFunction  RoutineKind = "FUNCTION"
)

// Routine is a stored procedure or user-defined function. Scalar functions
// set ReturnType; table-valued functions set ReturnColumns. FunctionType is
// a display label (SCALAR, TABLE_VALUED, WINDOW, ...) and is empty for
// procedures.
type Routine struct {
	ID            Identifier
	Kind          RoutineKind
	FunctionType  string
	Parameters    []Parameter
	ReturnType    string
	ReturnColumns []Column
	Language      string
	Definition    string
	Description   string
}

// TriggerTiming is a trigger firing time normalized to a closed set.
type TriggerTiming string

const (
	TimingBefore    TriggerTiming = "BEFORE"
	TimingAfter     TriggerTiming = "AFTER"
	TimingInsteadOf TriggerTiming = "INSTEAD_OF"
)

// Trigger is a DML trigger attached to a table or view.
type Trigger struct {
	ID          Identifier
	Parent      Identifier
	Timing      TriggerTiming
	Events      []string
	Disabled    bool
	Definition  string
	Description string
}

// TypeCategory classifies a user-defined type.
type TypeCategory string

const (
	TypeEnum      TypeCategory = "ENUM"
	TypeComposite TypeCategory = "COMPOSITE"
	TypeDomain    TypeCategory = "DOMAIN"
	TypeTableType TypeCategory = "TABLE_TYPE"
	TypeAlias     TypeCategory = "ALIAS"
)

// UserDefinedType covers enum, composite, domain, table and alias types.
// Only the fields relevant to the category are populated.
type UserDefinedType struct {
	ID          Identifier
	Category    TypeCategory
	BaseType    string
	Nullable    bool
	Columns     []Column
	EnumValues  []string
	Check       string
	Description string
}

// Sequence is a sequence generator. Min, Max and Current are kept as exact
// decimal strings: Oracle sequence bounds exceed int64 and documentation
// fidelity matters more than arithmetic here.
type Sequence struct {
	ID          Identifier
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

// Synonym aliases another object, possibly on a different server or
// database (SQL Server linked servers, Oracle database links).
type Synonym struct {
	ID             Identifier
	Target         Identifier
	TargetServer   string
	TargetDatabase string
	Description    string
}

// PrincipalKind distinguishes users from roles.
type PrincipalKind string

const (
	PrincipalUser PrincipalKind = "USER"
	PrincipalRole PrincipalKind = "ROLE"
)

// Grant is one permission granted to a principal on an object.
type Grant struct {
	Privilege string
	State     string
	Object    Identifier
}

// SecurityPrincipal is a database user or role with its grants and role
// memberships. Principals are database-level, not schema-level.
type SecurityPrincipal struct {
	Name          string
	Kind          PrincipalKind
	AuthType      string
	Disabled      bool
	DefaultSchema string
	Grants        []Grant
	Memberships   []string
}
