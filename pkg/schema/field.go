package schema

import (
	"fmt"
	"reflect"
	"strings"
)

// Field describes one named input/output slot of an action or model.
// Fields are computed once at registration and are immutable afterwards;
// builder methods return modified copies.
type Field struct {
	Name     string
	Type     Type
	Required bool
	Default  string
	Password bool
	Visible  bool
}

// NewField creates a field descriptor for the given name and type.
// A field is required until a default is attached, and hidden when its
// name follows the underscore "private" convention.
func NewField(name string, typ Type) Field {
	return Field{
		Name:     name,
		Type:     typ,
		Required: true,
		Visible:  !strings.HasPrefix(name, "_"),
	}
}

// FieldFor creates a field descriptor from a Go type parameter, applying
// the TypeFor mapping. Secret parameters are flagged as passwords.
func FieldFor[T any](name string) (Field, error) {
	typ, err := TypeFor[T]()
	if err != nil {
		return Field{}, fmt.Errorf("field %q: %w", name, err)
	}
	f := NewField(name, typ)
	if reflect.TypeOf((*T)(nil)).Elem() == secretType {
		f.Password = true
	}
	return f, nil
}

// MustFieldFor is FieldFor, panicking on unsupported types. Intended for
// static registration tables where the type set is known at compile time.
func MustFieldFor[T any](name string) Field {
	f, err := FieldFor[T](name)
	if err != nil {
		panic(err)
	}
	return f
}

// WithDefault attaches a stringified default value and clears the
// required flag.
func (f Field) WithDefault(value any) Field {
	f.Default = fmt.Sprint(value)
	f.Required = false
	return f
}

// AsSecret marks the field as secret-valued. Secret fields are never
// logged or echoed in plain form.
func (f Field) AsSecret() Field {
	f.Password = true
	return f
}

// Hidden marks the field as not user-visible.
func (f Field) Hidden() Field {
	f.Visible = false
	return f
}

// Fields is an ordered set of field descriptors.
type Fields []Field

// Names returns the field names in declaration order.
func (fs Fields) Names() []string {
	names := make([]string, len(fs))
	for i, f := range fs {
		names[i] = f.Name
	}
	return names
}

// Get returns the field with the given name.
func (fs Fields) Get(name string) (Field, bool) {
	for _, f := range fs {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Validate checks data against the descriptors. Required fields must be
// present; present values must conform to their type. All failures are
// reported together.
func (fs Fields) Validate(data map[string]any) error {
	var errs []*FieldError

	for _, f := range fs {
		value, ok := data[f.Name]
		if !ok {
			if f.Required {
				errs = append(errs, &FieldError{Field: f.Name, Reason: "required"})
			}
			continue
		}
		if err := f.Type.Validate(value); err != nil {
			errs = append(errs, &FieldError{Field: f.Name, Reason: err.Error(), Value: value})
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
