package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// DeviceToken holds the schema definition for a push-notification device
// registration. One account may hold at most one token per provider.
type DeviceToken struct {
	ent.Schema
}

// Fields of the DeviceToken.
func (DeviceToken) Fields() []ent.Field {
	return []ent.Field{
		field.Int("account_id").
			Comment("internal AccountIdInternal of the owning account").
			Immutable(),
		field.Enum("provider").
			Values("apns", "fcm", "web_push"),
		field.String("token").
			Comment("opaque device/registration identifier for this provider"),
		field.String("web_push_p256dh").
			Optional().
			Nillable(),
		field.String("web_push_auth").
			Optional().
			Nillable(),
		field.Time("registered_at").
			Immutable(),
	}
}

// Edges of the DeviceToken.
func (DeviceToken) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("account", Account.Type).
			Ref("device_tokens").
			Field("account_id").
			Unique().
			Required().
			Immutable(),
	}
}

// Indexes of the DeviceToken.
func (DeviceToken) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("account_id", "provider").
			Unique(),
	}
}
