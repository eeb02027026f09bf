package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Account holds the schema definition for the Account entity.
// AccountIdInternal (the ent integer id) is the durable-store primary key;
// the external AccountId (a UUID) is immutable and never reused.
type Account struct {
	ent.Schema
}

// Fields of the Account.
func (Account) Fields() []ent.Field {
	return []ent.Field{
		field.String("account_id").
			Comment("External AccountId, UUID string form").
			Unique().
			Immutable(),
		field.Enum("state").
			Values("initial_setup", "normal", "banned", "pending_deletion").
			Default("initial_setup"),
		field.String("access_token").
			Optional().
			Nillable().
			Comment("nil when no session is currently valid"),
		field.String("refresh_token_hash").
			Optional().
			Nillable().
			Comment("SHA-256 of the refresh token; never store the raw token"),
		field.Time("created_at").
			Immutable(),
		field.Time("pending_deletion_at").
			Optional().
			Nillable().
			Comment("set when entering PendingDeletion, used for grace-period cancellation"),
		field.Int32("apns_key_version").
			Default(0),
		field.Bytes("apns_symmetric_key").
			Optional().
			Nillable().
			Comment("AES-128 key for this account's APNs payload encryption"),
	}
}

// Edges of the Account.
func (Account) Edges() []ent.Edge {
	return []ent.Edge{
		edge.To("profile", Profile.Type).
			Unique(),
		edge.To("media_content", MediaContent.Type),
		edge.To("sync_versions", SyncVersionRow.Type),
		edge.To("device_tokens", DeviceToken.Type),
	}
}

// Indexes of the Account.
func (Account) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("access_token").
			Unique(),
	}
}
