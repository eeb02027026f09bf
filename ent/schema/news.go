package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
)

// News holds the schema definition for an admin-authored announcement.
// Publishing a row bumps every account's NewsChanged sync category and
// sets the NewsChanged pending-notification flag (supplemented from
// original_source/crates/server_api_account/src/account_admin/news.rs,
// dropped from spec.md's distillation but not excluded by its Non-goals).
type News struct {
	ent.Schema
}

// Fields of the News.
func (News) Fields() []ent.Field {
	return []ent.Field{
		field.String("title"),
		field.String("body"),
		field.Bool("published").
			Default(false),
		field.Time("created_at").
			Immutable(),
	}
}
