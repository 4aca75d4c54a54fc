package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
)

// KV is the device-local key/value store. It holds the local progress
// snapshot, the signed-in user, the device ID and the last visited item.
type KV struct {
	ent.Schema
}

func (KV) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("key").
			MaxLen(255).
			NotEmpty().
			Immutable().
			Comment("Namespaced key, e.g. progress:data"),
		field.Text("value").
			Comment("Raw value; snapshots are JSON"),
		field.Time("updated_at").
			Default(time.Now).
			UpdateDefault(time.Now),
	}
}
