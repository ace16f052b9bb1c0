package schema_test

import (
	"errors"
	"testing"

	"github.com/strandkit/strand/pkg/schema"
)

func TestTypeValidate(t *testing.T) {
	tests := []struct {
		name    string
		typ     schema.Type
		value   any
		wantErr bool
	}{
		{"String OK", schema.String(), "hello", false},
		{"String Rejects Int", schema.String(), 42, true},
		{"Integer OK", schema.Integer(), 42, false},
		{"Integer Accepts Whole Float", schema.Integer(), float64(3), false},
		{"Integer Rejects Fraction", schema.Integer(), 3.5, true},
		{"Number Accepts Int", schema.Number(), 42, false},
		{"Number Accepts Float", schema.Number(), 1.5, false},
		{"Number Rejects String", schema.Number(), "1.5", true},
		{"Bool OK", schema.Bool(), true, false},
		{"Bool Rejects Int", schema.Bool(), 1, true},
		{"Array Homogeneous OK", schema.Array(schema.String()), []any{"a", "b"}, false},
		{"Array Element Mismatch", schema.Array(schema.String()), []any{"a", 1}, true},
		{"Array Rejects Scalar", schema.Array(schema.String()), "a", true},
		{"Tuple OK", schema.Tuple(schema.String(), schema.Integer()), []any{"a", 1}, false},
		{"Tuple Wrong Length", schema.Tuple(schema.String(), schema.Integer()), []any{"a"}, true},
		{"Tuple Positional Mismatch", schema.Tuple(schema.String(), schema.Integer()), []any{1, "a"}, true},
		{"Object OK", schema.Object(schema.Integer()), map[string]any{"a": 1}, false},
		{"Object Value Mismatch", schema.Object(schema.Integer()), map[string]any{"a": "x"}, true},
		{"Free Object Accepts Anything", schema.FreeObject(), map[string]any{"a": make(chan int)}, false},
		{"OneOf Matches Second", schema.OneOf(schema.Integer(), schema.String()), "x", false},
		{"OneOf Matches None", schema.OneOf(schema.Integer(), schema.String()), true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.typ.Validate(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestTypeFor(t *testing.T) {
	t.Run("Scalars", func(t *testing.T) {
		cases := []struct {
			got  func() (schema.Type, error)
			want string
		}{
			{schema.TypeFor[string], "string"},
			{schema.TypeFor[int], "integer"},
			{schema.TypeFor[int64], "integer"},
			{schema.TypeFor[float64], "number"},
			{schema.TypeFor[bool], "boolean"},
			{schema.TypeFor[[]string], "array[string]"},
			{schema.TypeFor[map[string]int], "object"},
			{schema.TypeFor[*string], "string"},
		}
		for _, c := range cases {
			typ, err := c.got()
			if err != nil {
				t.Fatalf("TypeFor error = %v", err)
			}
			if typ.Name() != c.want {
				t.Errorf("TypeFor = %q, want %q", typ.Name(), c.want)
			}
		}
	})

	t.Run("Bytes", func(t *testing.T) {
		typ, err := schema.TypeFor[[]byte]()
		if err != nil {
			t.Fatalf("TypeFor[[]byte] error = %v", err)
		}
		st, ok := typ.(*schema.StringType)
		if !ok || st.Format != "byte" {
			t.Errorf("TypeFor[[]byte] = %#v, want string with byte format", typ)
		}
	})

	t.Run("Unsupported", func(t *testing.T) {
		if _, err := schema.TypeFor[func()](); !errors.Is(err, schema.ErrUnsupportedType) {
			t.Errorf("TypeFor[func()] error = %v, want ErrUnsupportedType", err)
		}
		if _, err := schema.TypeFor[chan int](); !errors.Is(err, schema.ErrUnsupportedType) {
			t.Errorf("TypeFor[chan int] error = %v, want ErrUnsupportedType", err)
		}
	})
}
