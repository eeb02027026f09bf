package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
)

// Profile holds the schema definition for the Profile entity: the mutable
// content record searched by the location index.
type Profile struct {
	ent.Schema
}

// Fields of the Profile.
func (Profile) Fields() []ent.Field {
	return []ent.Field{
		field.Int("account_id").
			Comment("internal AccountIdInternal of the owning account").
			Immutable(),
		field.String("name").
			Default(""),
		field.String("text").
			Default(""),
		field.Int32("age"),
		field.String("attributes_json").
			Default("[]").
			Comment("serialized []model.ProfileAttributeValue"),
		field.String("filters_json").
			Default("{}").
			Comment("serialized model.SearchFilters"),
		field.Float("latitude").
			Default(0),
		field.Float("longitude").
			Default(0),
		field.String("version").
			Comment("UUID, changes on every content update"),
		field.Enum("visibility").
			Values("public", "private", "pending_public", "pending_private").
			Default("pending_public"),
	}
}

// Edges of the Profile.
func (Profile) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("account", Account.Type).
			Ref("profile").
			Field("account_id").
			Unique().
			Required().
			Immutable(),
	}
}
