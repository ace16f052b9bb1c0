package schema

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrUnsupportedType is returned when a Go type has no descriptor mapping.
// Callers must catch this at registration time; it is never silently
// downgraded to a string descriptor.
var ErrUnsupportedType = errors.New("unsupported type")

// Type defines the contract for field validation.
// Implementations determine how values are validated against a type.
type Type interface {
	// Name returns the human-readable name of the type (e.g., "string", "integer").
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
	// toMap returns the canonical mapping form used for storage/transport.
	toMap() map[string]any
}

// --- Built-in Type Implementations ---

// StringType validates string values. Format may be "byte" for
// byte-payload strings.
type StringType struct {
	Format string
}

func (t *StringType) Name() string { return "string" }

func (t *StringType) Validate(value any) error {
	_, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	return nil
}

func (t *StringType) toMap() map[string]any {
	m := map[string]any{"type": "string"}
	if t.Format != "" {
		m["format"] = t.Format
	}
	return m
}

// IntegerType validates integer values.
type IntegerType struct{}

func (t *IntegerType) Name() string { return "integer" }

func (t *IntegerType) Validate(value any) error {
	switch v := value.(type) {
	case int, int8, int16, int32, int64:
		return nil
	case float64:
		// Accept floats that are whole numbers (from JSON unmarshaling)
		if v == float64(int64(v)) {
			return nil
		}
		return fmt.Errorf("expected integer, got float (not a whole number)")
	default:
		return fmt.Errorf("expected integer, got %T", value)
	}
}

func (t *IntegerType) toMap() map[string]any { return map[string]any{"type": "integer"} }

// NumberType validates floating-point values.
type NumberType struct{}

func (t *NumberType) Name() string { return "number" }

func (t *NumberType) Validate(value any) error {
	switch value.(type) {
	case float32, float64, int, int8, int16, int32, int64:
		return nil
	default:
		return fmt.Errorf("expected number, got %T", value)
	}
}

func (t *NumberType) toMap() map[string]any { return map[string]any{"type": "number"} }

// BoolType validates boolean values.
type BoolType struct{}

func (t *BoolType) Name() string { return "boolean" }

func (t *BoolType) Validate(value any) error {
	_, ok := value.(bool)
	if !ok {
		return fmt.Errorf("expected boolean, got %T", value)
	}
	return nil
}

func (t *BoolType) toMap() map[string]any { return map[string]any{"type": "boolean"} }

// ArrayType validates sequences. With a single item descriptor every
// element is validated against it; with several, the value is treated
// as a tuple and validated positionally.
type ArrayType struct {
	Items []Type
}

func (t *ArrayType) Name() string {
	if len(t.Items) == 1 {
		return fmt.Sprintf("array[%s]", t.Items[0].Name())
	}
	return "array"
}

func (t *ArrayType) Validate(value any) error {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Errorf("expected array, got %T", value)
	}

	if len(t.Items) == 1 {
		for i := 0; i < rv.Len(); i++ {
			if err := t.Items[0].Validate(rv.Index(i).Interface()); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
		}
		return nil
	}

	// Tuple semantics: fixed length, positional item types.
	if rv.Len() != len(t.Items) {
		return fmt.Errorf("expected tuple of %d elements, got %d", len(t.Items), rv.Len())
	}
	for i, item := range t.Items {
		if err := item.Validate(rv.Index(i).Interface()); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

func (t *ArrayType) toMap() map[string]any {
	items := make([]any, len(t.Items))
	for i, it := range t.Items {
		items[i] = it.toMap()
	}
	return map[string]any{"type": "array", "items": items}
}

// ObjectType validates string-keyed mappings whose values all conform
// to AdditionalProperties.
type ObjectType struct {
	AdditionalProperties Type
}

func (t *ObjectType) Name() string { return "object" }

func (t *ObjectType) Validate(value any) error {
	m, ok := value.(map[string]any)
	if !ok {
		return fmt.Errorf("expected object, got %T", value)
	}
	if t.AdditionalProperties == nil {
		return nil
	}
	for k, v := range m {
		if err := t.AdditionalProperties.Validate(v); err != nil {
			return fmt.Errorf("key %q: %w", k, err)
		}
	}
	return nil
}

func (t *ObjectType) toMap() map[string]any {
	m := map[string]any{"type": "object"}
	if t.AdditionalProperties != nil {
		m["additionalProperties"] = t.AdditionalProperties.toMap()
	}
	return m
}

// OneOfType validates against a closed union of alternatives.
type OneOfType struct {
	Alternatives []Type
}

func (t *OneOfType) Name() string { return "one-of" }

func (t *OneOfType) Validate(value any) error {
	for _, alt := range t.Alternatives {
		if alt.Validate(value) == nil {
			return nil
		}
	}
	names := make([]string, len(t.Alternatives))
	for i, alt := range t.Alternatives {
		names[i] = alt.Name()
	}
	return fmt.Errorf("value %T matches none of %v", value, names)
}

func (t *OneOfType) toMap() map[string]any {
	alts := make([]any, len(t.Alternatives))
	for i, alt := range t.Alternatives {
		alts[i] = alt.toMap()
	}
	return map[string]any{"type": alts}
}

// --- Factory Functions ---

// String creates a string type descriptor.
func String() Type { return &StringType{} }

// Bytes creates a string descriptor carrying a byte payload.
func Bytes() Type { return &StringType{Format: "byte"} }

// Integer creates an integer type descriptor.
func Integer() Type { return &IntegerType{} }

// Number creates a floating-point type descriptor.
func Number() Type { return &NumberType{} }

// Bool creates a boolean type descriptor.
func Bool() Type { return &BoolType{} }

// Array creates a homogeneous array descriptor.
func Array(item Type) Type { return &ArrayType{Items: []Type{item}} }

// Tuple creates a fixed-length array descriptor with positional item types.
func Tuple(items ...Type) Type { return &ArrayType{Items: items} }

// Object creates a string-keyed object descriptor whose values conform
// to the given type.
func Object(value Type) Type { return &ObjectType{AdditionalProperties: value} }

// OneOf creates a closed union descriptor over the given alternatives.
// A single alternative collapses to that alternative.
func OneOf(alternatives ...Type) Type {
	if len(alternatives) == 1 {
		return alternatives[0]
	}
	return &OneOfType{Alternatives: alternatives}
}

// Secret is a marker type for secret-valued parameters. TypeFor maps it
// to a string descriptor, and FieldFor flags the field as a password.
type Secret string

var secretType = reflect.TypeOf(Secret(""))

// TypeFor maps a Go type to its field descriptor:
//
//	string          -> string
//	int family      -> integer
//	float family    -> number
//	bool            -> boolean
//	[]byte          -> string (format byte)
//	Secret          -> string
//	[]T             -> array of TypeFor[T]
//	map[string]T    -> object with additionalProperties TypeFor[T]
//	*T              -> TypeFor[T] (optional collapses to its element)
//
// Any other Go type fails with ErrUnsupportedType.
func TypeFor[T any]() (Type, error) {
	return typeOf(reflect.TypeOf((*T)(nil)).Elem())
}

func typeOf(t reflect.Type) (Type, error) {
	if t == secretType {
		return String(), nil
	}
	switch t.Kind() {
	case reflect.String:
		return String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Integer(), nil
	case reflect.Float32, reflect.Float64:
		return Number(), nil
	case reflect.Bool:
		return Bool(), nil
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return Bytes(), nil
		}
		elem, err := typeOf(t.Elem())
		if err != nil {
			return nil, err
		}
		return Array(elem), nil
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return nil, fmt.Errorf("%w: map key must be string, got %s", ErrUnsupportedType, t.Key())
		}
		if t.Elem().Kind() == reflect.Interface {
			return Object(nil), nil
		}
		elem, err := typeOf(t.Elem())
		if err != nil {
			return nil, err
		}
		return Object(elem), nil
	case reflect.Pointer:
		return typeOf(t.Elem())
	case reflect.Interface:
		// interface{} values carry no type information to map.
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
}

// FreeObject creates an object descriptor that accepts any string-keyed
// map without constraining its values.
func FreeObject() Type { return &ObjectType{} }
