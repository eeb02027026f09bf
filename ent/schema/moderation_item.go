package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// ModerationItem holds the schema definition for one pending-moderation
// queue entry. content_type distinguishes the media-content queue from the
// two profile-string queues (name, text) per spec.md §4.G.
type ModerationItem struct {
	ent.Schema
}

// Fields of the ModerationItem.
func (ModerationItem) Fields() []ent.Field {
	return []ent.Field{
		field.String("account_id").
			Immutable(),
		field.Enum("content_type").
			Values("media_content", "profile_name", "profile_text").
			Immutable(),
		field.String("reference_id").
			Immutable().
			Comment("content_id for media_content, empty for profile strings"),
		field.String("text_value").
			Optional().
			Nillable().
			Comment("the string under moderation, for profile_name/profile_text"),
		field.Bool("is_initial").
			Default(false).
			Comment("first-time content moderation vs. a resubmission"),
		field.Enum("status").
			Values("pending", "escalated", "accepted", "rejected").
			Default("pending"),
		field.String("rejection_reason").
			Optional().
			Nillable(),
		field.Time("created_at").
			Immutable(),
	}
}

// Indexes of the ModerationItem.
func (ModerationItem) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("content_type", "status", "created_at"),
	}
}
