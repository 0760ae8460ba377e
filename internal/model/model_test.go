package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentifierKeyFolding(t *testing.T) {
	lower := NewIdentifier("Sales", "Orders", strings.ToLower)
	upper := NewIdentifier("SALES", "ORDERS", strings.ToLower)

	assert.Equal(t, "sales.orders", lower.Key())
	assert.Equal(t, lower.Key(), upper.Key(), "differently cased identifiers must match")
	assert.Equal(t, "Sales.Orders", lower.String())
}

func TestIdentifierOracleFolding(t *testing.T) {
	id := NewIdentifier("hr", "employees", strings.ToUpper)
	assert.Equal(t, "HR.EMPLOYEES", id.Key())
}

func TestIdentifierDefaultsToLower(t *testing.T) {
	id := NewIdentifier("Main", "Users", nil)
	assert.Equal(t, "main.users", id.Key())
}

func TestIdentifierString(t *testing.T) {
	assert.Equal(t, "users", NewIdentifier("", "users", nil).String())
	assert.True(t, Identifier{}.IsZero())
	assert.False(t, NewIdentifier("main", "users", nil).IsZero())
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want ObjectKind
		ok   bool
	}{
		{"tables", KindTables, true},
		{"Views", KindViews, true},
		{"  SEQUENCES ", KindSequences, true},
		{"security", KindSecurity, true},
		{"indexes", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseKind(tt.in)
		assert.Equal(t, tt.ok, ok, "ParseKind(%q)", tt.in)
		assert.Equal(t, tt.want, got, "ParseKind(%q)", tt.in)
	}
}

func TestNormalizeType(t *testing.T) {
	tests := []struct {
		native string
		want   string
	}{
		{"varchar(100)", BucketString},
		{"NVARCHAR2(50)", BucketString},
		{"character varying(255)", BucketString},
		{"int", BucketInteger},
		{"BIGINT", BucketInteger},
		{"serial", BucketInteger},
		{"NUMBER(10,2)", BucketDecimal},
		{"numeric", BucketDecimal},
		{"double precision", BucketFloat},
		{"BINARY_DOUBLE", BucketFloat},
		{"boolean", BucketBoolean},
		{"bit", BucketBoolean},
		{"timestamp with time zone", BucketDateTime},
		{"timestamp(6) with local time zone", BucketDateTime},
		{"datetime2(7)", BucketDateTime},
		{"date", BucketDate},
		{"time without time zone", BucketTime},
		{"varbinary(max)", BucketBinary},
		{"bytea", BucketBinary},
		{"uniqueidentifier", BucketUUID},
		{"jsonb", BucketJSON},
		{"XMLTYPE", BucketXML},
		{"enum('a','b')", BucketEnum},
		{"text[]", BucketString},
		{"geography", BucketOther},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeType(tt.native), "NormalizeType(%q)", tt.native)
	}
}

func TestNewForeignKey(t *testing.T) {
	target := NewIdentifier("public", "orders", nil)

	fk, err := NewForeignKey("fk_items_order", []string{"order_id"}, target, []string{"id"}, "", "")
	require.NoError(t, err)
	assert.Equal(t, ActionNoAction, fk.OnDelete, "empty action defaults to NO_ACTION")
	assert.Equal(t, ActionNoAction, fk.OnUpdate)

	_, err = NewForeignKey("fk_bad", nil, target, nil, ActionCascade, ActionCascade)
	var ie *IntegrityError
	require.ErrorAs(t, err, &ie)

	_, err = NewForeignKey("fk_mismatch", []string{"a", "b"}, target, []string{"id"}, "", "")
	require.ErrorAs(t, err, &ie)
	assert.Contains(t, ie.Reason, "2 local columns with 1 target columns")
}

func TestValidateTable(t *testing.T) {
	id := NewIdentifier("public", "users", nil)

	valid := &Table{
		ID: id,
		Columns: []Column{
			{Name: "id", Ordinal: 1},
			{Name: "email", Ordinal: 2},
		},
		PrimaryKey: &PrimaryKey{Name: "users_pkey", Columns: []string{"id"}},
	}
	require.NoError(t, ValidateTable(valid))

	var ie *IntegrityError

	empty := &Table{ID: id}
	require.ErrorAs(t, ValidateTable(empty), &ie)

	gap := &Table{ID: id, Columns: []Column{
		{Name: "id", Ordinal: 1},
		{Name: "email", Ordinal: 3},
	}}
	require.ErrorAs(t, ValidateTable(gap), &ie)
	assert.Contains(t, ie.Reason, `ordinal 3, want 2`)

	phantomPK := &Table{
		ID:         id,
		Columns:    []Column{{Name: "id", Ordinal: 1}},
		PrimaryKey: &PrimaryKey{Name: "users_pkey", Columns: []string{"uuid"}},
	}
	require.ErrorAs(t, ValidateTable(phantomPK), &ie)
	assert.Contains(t, ie.Reason, `"uuid"`)
}
