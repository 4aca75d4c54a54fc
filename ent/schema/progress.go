package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
)

// Progress is one learner's account snapshot in the remote store.
type Progress struct {
	ent.Schema
}

func (Progress) Mixin() []ent.Mixin {
	return []ent.Mixin{
		TimeMixin{},
	}
}

func (Progress) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("user_id").
			MaxLen(255).
			NotEmpty().
			Immutable().
			Comment("Account user ID"),
		field.Int("xp").
			Default(0).
			NonNegative().
			Comment("Denormalized XP total for leaderboards and support queries"),
		field.Text("data").
			Comment("Snapshot JSON: completed items and quiz records"),
	}
}
