package store

import (
	"testing"

	"entgo.io/ent"
	entschema "entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"

	"github.com/abhisek/mlmathr/ent/schema"
)

// columnsOf flattens an ent schema, mixins first, into storage column
// names and types.
func columnsOf(s ent.Interface) map[string]field.Type {
	cols := make(map[string]field.Type)
	add := func(fields []ent.Field) {
		for _, f := range fields {
			d := f.Descriptor()
			name := d.Name
			if d.StorageKey != "" {
				name = d.StorageKey
			}
			cols[name] = d.Info.Type
		}
	}
	for _, m := range s.Mixin() {
		add(m.Fields())
	}
	add(s.Fields())
	return cols
}

func TestTablesMatchEntSchema(t *testing.T) {
	tests := []struct {
		table  *entschema.Table
		schema ent.Interface
	}{
		{table: KVTable, schema: schema.KV{}},
		{table: ProgressTable, schema: schema.Progress{}},
	}

	for _, tt := range tests {
		t.Run(tt.table.Name, func(t *testing.T) {
			want := columnsOf(tt.schema)
			if len(want) != len(tt.table.Columns) {
				t.Errorf("schema has %d columns, table has %d", len(want), len(tt.table.Columns))
			}
			for _, c := range tt.table.Columns {
				typ, ok := want[c.Name]
				if !ok {
					t.Errorf("column %q missing from ent schema", c.Name)
					continue
				}
				if typ != c.Type {
					t.Errorf("column %q type = %v, ent schema has %v", c.Name, c.Type, typ)
				}
			}
		})
	}
}
