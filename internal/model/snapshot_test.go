package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func snapshotFixture() *Snapshot {
	return &Snapshot{
		DatabaseName: "shop",
		Engine:       EnginePostgres,
		Schemas: []*SchemaObjects{
			{
				Name: "sales",
				Tables: []Table{
					{ID: NewIdentifier("sales", "orders", nil)},
				},
			},
			{
				Name: "public",
				Tables: []Table{
					{ID: NewIdentifier("public", "users", nil)},
					{ID: NewIdentifier("public", "accounts", nil)},
				},
				Views: []View{
					{ID: NewIdentifier("public", "active_users", nil)},
				},
			},
		},
		NotApplicable: []ObjectKind{KindSynonyms},
	}
}

func TestSealOrdersEverything(t *testing.T) {
	snap := snapshotFixture()
	snap.Seal()

	assert.Equal(t, "public", snap.Schemas[0].Name)
	assert.Equal(t, "sales", snap.Schemas[1].Name)
	assert.Equal(t, "accounts", snap.Schemas[0].Tables[0].ID.Name)
	assert.Equal(t, "users", snap.Schemas[0].Tables[1].ID.Name)
}

func TestSnapshotCount(t *testing.T) {
	snap := snapshotFixture()
	assert.Equal(t, 3, snap.Count(KindTables))
	assert.Equal(t, 1, snap.Count(KindViews))
	assert.Equal(t, 0, snap.Count(KindSequences))
	assert.Equal(t, 0, snap.Count(KindSecurity))
}

func TestSnapshotApplicable(t *testing.T) {
	snap := snapshotFixture()
	assert.True(t, snap.Applicable(KindTables))
	assert.False(t, snap.Applicable(KindSynonyms))
}

func TestGraphSymmetry(t *testing.T) {
	orders := NewIdentifier("public", "orders", nil)
	users := NewIdentifier("public", "users", nil)
	items := NewIdentifier("public", "order_items", nil)

	g := NewGraph([]RelationshipEdge{
		{Source: orders, Target: users, Via: "fk_orders_user", Kind: EdgeForeignKey, Resolved: true},
		{Source: items, Target: orders, Via: "fk_items_order", Kind: EdgeForeignKey, Resolved: true},
	})

	// every edge appears exactly once forward and once backward
	for _, e := range g.Edges() {
		assert.Contains(t, g.Outgoing(e.Source), e)
		assert.Contains(t, g.Incoming(e.Target), e)
	}

	assert.Len(t, g.Incoming(orders), 1)
	assert.Len(t, g.Outgoing(orders), 1)
	assert.Empty(t, g.Outgoing(users))
}

func TestGraphCanonicalOrder(t *testing.T) {
	a := NewIdentifier("public", "a", nil)
	b := NewIdentifier("public", "b", nil)
	c := NewIdentifier("public", "c", nil)

	g := NewGraph([]RelationshipEdge{
		{Source: b, Target: c, Via: "fk_2"},
		{Source: a, Target: c, Via: "fk_9"},
		{Source: a, Target: b, Via: "fk_1"},
	})

	edges := g.Edges()
	assert.Equal(t, "fk_1", edges[0].Via)
	assert.Equal(t, "fk_9", edges[1].Via)
	assert.Equal(t, "fk_2", edges[2].Via)
}
