package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// SyncVersionRow holds the schema definition for one (account, data
// category) sync-version counter (spec.md §3 "SyncVersion").
type SyncVersionRow struct {
	ent.Schema
}

// Fields of the SyncVersionRow.
func (SyncVersionRow) Fields() []ent.Field {
	return []ent.Field{
		field.Int("account_id").
			Comment("internal AccountIdInternal of the owning account").
			Immutable(),
		field.String("category").
			Immutable(),
		field.Uint32("version").
			Default(0),
	}
}

// Edges of the SyncVersionRow.
func (SyncVersionRow) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("account", Account.Type).
			Ref("sync_versions").
			Field("account_id").
			Unique().
			Required().
			Immutable(),
	}
}

// Indexes of the SyncVersionRow.
func (SyncVersionRow) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("account_id", "category").
			Unique(),
	}
}
