package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arvenshaw/schemadoc/internal/model"
)

func id(schema, name string) model.Identifier {
	return model.NewIdentifier(schema, name, nil)
}

// orderItemsSnapshot models a small shop: order_items references orders
// and products, orders references users (which is not retained).
func orderItemsSnapshot() *model.Snapshot {
	return &model.Snapshot{
		Schemas: []*model.SchemaObjects{{
			Name: "public",
			Tables: []model.Table{
				{
					ID: id("public", "order_items"),
					ForeignKeys: []model.ForeignKey{
						{
							Name: "fk_items_order", Columns: []string{"order_id"},
							Target: id("public", "orders"), TargetColumns: []string{"id"},
							OnDelete: model.ActionCascade, OnUpdate: model.ActionNoAction,
						},
						{
							Name: "fk_items_product", Columns: []string{"product_id"},
							Target: id("public", "products"), TargetColumns: []string{"id"},
							OnDelete: model.ActionRestrict, OnUpdate: model.ActionNoAction,
						},
					},
				},
				{
					ID: id("public", "orders"),
					ForeignKeys: []model.ForeignKey{
						{
							Name: "fk_orders_user", Columns: []string{"user_id"},
							Target: id("public", "users"), TargetColumns: []string{"id"},
							OnDelete: model.ActionSetNull, OnUpdate: model.ActionNoAction,
						},
					},
				},
				{ID: id("public", "products")},
			},
		}},
	}
}

func TestBuildOneEdgePerForeignKey(t *testing.T) {
	g := Build(orderItemsSnapshot())
	require.Len(t, g.Edges(), 3)

	items := id("public", "order_items")
	out := g.Outgoing(items)
	require.Len(t, out, 2)
	assert.Equal(t, "fk_items_order", out[0].Via)
	assert.Equal(t, "fk_items_product", out[1].Via)
	assert.True(t, out[0].Resolved)
	assert.True(t, out[1].Resolved)

	in := g.Incoming(id("public", "products"))
	require.Len(t, in, 1)
	assert.Equal(t, items.Key(), in[0].Source.Key())
}

func TestBuildUnresolvedTarget(t *testing.T) {
	g := Build(orderItemsSnapshot())

	out := g.Outgoing(id("public", "orders"))
	require.Len(t, out, 1)
	assert.False(t, out[0].Resolved, "users is outside the retained set")
	assert.Equal(t, "public.users", out[0].Target.String())
}

func TestBuildSymmetry(t *testing.T) {
	g := Build(orderItemsSnapshot())
	for _, e := range g.Edges() {
		assert.Contains(t, g.Outgoing(e.Source), e)
		assert.Contains(t, g.Incoming(e.Target), e)
	}
}

func TestBuildCaseInsensitiveMatching(t *testing.T) {
	snap := &model.Snapshot{
		Schemas: []*model.SchemaObjects{{
			Name: "dbo",
			Tables: []model.Table{
				{
					ID: id("dbo", "Invoices"),
					ForeignKeys: []model.ForeignKey{{
						Name: "FK_Invoices_Customers", Columns: []string{"CustomerID"},
						Target: id("DBO", "CUSTOMERS"), TargetColumns: []string{"ID"},
					}},
				},
				{ID: id("dbo", "Customers")},
			},
		}},
	}
	g := Build(snap)
	require.Len(t, g.Edges(), 1)
	assert.True(t, g.Edges()[0].Resolved, "folded keys must match across casing")
}

func TestBuildSynonymEdges(t *testing.T) {
	snap := &model.Snapshot{
		Schemas: []*model.SchemaObjects{{
			Name: "dbo",
			Tables: []model.Table{
				{ID: id("dbo", "orders")},
			},
			Synonyms: []model.Synonym{
				{ID: id("dbo", "all_orders"), Target: id("dbo", "orders")},
				{ID: id("dbo", "remote_stock"), Target: id("dbo", "stock"), TargetDatabase: "warehouse"},
				{ID: id("dbo", "dangling")},
			},
		}},
	}
	g := Build(snap)
	require.Len(t, g.Edges(), 2, "a synonym without a target yields no edge")

	local := g.Outgoing(id("dbo", "all_orders"))
	require.Len(t, local, 1)
	assert.Equal(t, model.EdgeSynonym, local[0].Kind)
	assert.True(t, local[0].Resolved)

	remote := g.Outgoing(id("dbo", "remote_stock"))
	require.Len(t, remote, 1)
	assert.False(t, remote[0].Resolved, "cross-database targets never resolve locally")
}
