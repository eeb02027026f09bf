package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// MediaContent holds the schema definition for the MediaContent entity.
// Rows are inserted only once the content pipeline worker (internal/content)
// transitions a slot to Completed; in-flight processing state lives only in
// the in-memory queue (spec.md §4.D).
type MediaContent struct {
	ent.Schema
}

// Fields of the MediaContent.
func (MediaContent) Fields() []ent.Field {
	return []ent.Field{
		field.String("content_id").
			Unique().
			Immutable(),
		field.Int("owner_account_id").
			Comment("internal AccountIdInternal of the owning account").
			Immutable(),
		field.Int8("slot").
			Immutable(),
		field.Enum("state").
			Values("in_moderation", "moderated_accepted", "moderated_rejected").
			Default("in_moderation"),
		field.Bool("security_flag").
			Default(false),
		field.Bool("face_detected").
			Default(false),
		field.Bool("is_profile_content").
			Default(false),
		field.Bool("is_security_content").
			Default(false),
		field.Bool("initial_content").
			Default(false).
			Comment("true if uploaded before first moderation pass; gates pending visibility"),
		field.Time("created_at").
			Immutable(),
	}
}

// Edges of the MediaContent.
func (MediaContent) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("account", Account.Type).
			Ref("media_content").
			Field("owner_account_id").
			Unique().
			Required().
			Immutable(),
	}
}

// Indexes of the MediaContent.
func (MediaContent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("owner_account_id", "slot"),
	}
}
