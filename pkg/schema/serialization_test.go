package schema_test

import (
	"encoding/json"
	"testing"

	"github.com/strandkit/strand/pkg/schema"
)

func TestField_JSONRoundTrip(t *testing.T) {
	original := schema.Fields{
		schema.NewField("prompt", schema.String()),
		schema.NewField("payload", schema.Bytes()).Hidden(),
		schema.NewField("api_key", schema.String()).AsSecret(),
		schema.NewField("limit", schema.Integer()).WithDefault(10),
		schema.NewField("tags", schema.Array(schema.String())),
		schema.NewField("extra", schema.Object(schema.Number())),
		schema.NewField("id", schema.OneOf(schema.String(), schema.Integer())),
	}

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var restored schema.Fields
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(restored) != len(original) {
		t.Fatalf("restored %d fields, want %d", len(restored), len(original))
	}

	for i, f := range restored {
		want := original[i]
		if f.Name != want.Name {
			t.Errorf("field %d: Name = %q, want %q", i, f.Name, want.Name)
		}
		if f.Type.Name() != want.Type.Name() {
			t.Errorf("field %q: Type = %q, want %q", f.Name, f.Type.Name(), want.Type.Name())
		}
		if f.Required != want.Required || f.Password != want.Password || f.Visible != want.Visible {
			t.Errorf("field %q: flags differ after round trip", f.Name)
		}
		if f.Default != want.Default {
			t.Errorf("field %q: Default = %q, want %q", f.Name, f.Default, want.Default)
		}
	}
}

func TestFieldFromMap_ByteFormat(t *testing.T) {
	f, err := schema.FieldFromMap(map[string]any{
		"name": "blob", "type": "string", "format": "byte",
	})
	if err != nil {
		t.Fatalf("FieldFromMap() error = %v", err)
	}
	st, ok := f.Type.(*schema.StringType)
	if !ok || st.Format != "byte" {
		t.Errorf("Type = %#v, want byte-format string", f.Type)
	}
}

func TestFieldFromMap_UnknownType(t *testing.T) {
	if _, err := schema.FieldFromMap(map[string]any{"name": "x", "type": "quaternion"}); err == nil {
		t.Error("FieldFromMap() accepted an unknown type")
	}
}
