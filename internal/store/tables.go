package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	// KVColumns holds the columns for the "kv" table.
	KVColumns = []*schema.Column{
		{Name: "key", Type: field.TypeString, Size: 255},
		{Name: "value", Type: field.TypeString, Size: 2147483647},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// KVTable holds the schema information for the "kv" table.
	KVTable = &schema.Table{
		Name:       "kv",
		Columns:    KVColumns,
		PrimaryKey: []*schema.Column{KVColumns[0]},
	}

	// ProgressColumns holds the columns for the "progress" table.
	ProgressColumns = []*schema.Column{
		{Name: "user_id", Type: field.TypeString, Size: 255},
		{Name: "xp", Type: field.TypeInt, Default: 0},
		{Name: "data", Type: field.TypeString, Size: 2147483647},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// ProgressTable holds the schema information for the "progress" table.
	ProgressTable = &schema.Table{
		Name:       "progress",
		Columns:    ProgressColumns,
		PrimaryKey: []*schema.Column{ProgressColumns[0]},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		KVTable,
		ProgressTable,
	}
)
