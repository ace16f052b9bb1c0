package schema

import (
	"encoding/json"
	"fmt"
)

// ToMap returns the canonical mapping form of the field for storage and
// transport. The form is stable: marshaling it with encoding/json yields
// iteration-order independent bytes.
func (f Field) ToMap() map[string]any {
	m := f.Type.toMap()
	m["name"] = f.Name
	if f.Required {
		m["required"] = true
	}
	if f.Default != "" {
		m["default"] = f.Default
	}
	if f.Password {
		m["password"] = true
	}
	if f.Visible {
		m["show"] = true
	}
	return m
}

// MarshalJSON serializes the field via its canonical mapping form.
func (f Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.ToMap())
}

// UnmarshalJSON reconstructs the field from its canonical mapping form.
func (f *Field) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := FieldFromMap(raw)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// FieldFromMap reconstructs a field descriptor from its canonical
// mapping form.
func FieldFromMap(m map[string]any) (Field, error) {
	typ, err := typeFromMap(m)
	if err != nil {
		return Field{}, err
	}
	f := Field{Type: typ}
	if name, ok := m["name"].(string); ok {
		f.Name = name
	}
	if req, ok := m["required"].(bool); ok {
		f.Required = req
	}
	if def, ok := m["default"].(string); ok {
		f.Default = def
	}
	if pw, ok := m["password"].(bool); ok {
		f.Password = pw
	}
	if show, ok := m["show"].(bool); ok {
		f.Visible = show
	}
	return f, nil
}

// FieldsFromMaps reconstructs an ordered field list.
func FieldsFromMaps(ms []any) (Fields, error) {
	fields := make(Fields, 0, len(ms))
	for i, raw := range ms {
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("field %d: expected mapping, got %T", i, raw)
		}
		f, err := FieldFromMap(m)
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}
		fields = append(fields, f)
	}
	return fields, nil
}

// ToMaps returns the canonical mapping form of every field, in order.
func (fs Fields) ToMaps() []any {
	out := make([]any, len(fs))
	for i, f := range fs {
		out[i] = f.ToMap()
	}
	return out
}

func typeFromMap(m map[string]any) (Type, error) {
	switch t := m["type"].(type) {
	case string:
		switch t {
		case "string":
			if format, _ := m["format"].(string); format == "byte" {
				return Bytes(), nil
			}
			return String(), nil
		case "integer":
			return Integer(), nil
		case "number":
			return Number(), nil
		case "boolean":
			return Bool(), nil
		case "array":
			rawItems, _ := m["items"].([]any)
			items := make([]Type, 0, len(rawItems))
			for i, raw := range rawItems {
				im, ok := raw.(map[string]any)
				if !ok {
					return nil, fmt.Errorf("array item %d: expected mapping, got %T", i, raw)
				}
				it, err := typeFromMap(im)
				if err != nil {
					return nil, err
				}
				items = append(items, it)
			}
			if len(items) == 0 {
				items = append(items, String())
			}
			return &ArrayType{Items: items}, nil
		case "object":
			if raw, ok := m["additionalProperties"].(map[string]any); ok {
				ap, err := typeFromMap(raw)
				if err != nil {
					return nil, err
				}
				return Object(ap), nil
			}
			return FreeObject(), nil
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, t)
		}
	case []any:
		// Closed union: a list of alternative descriptors.
		alts := make([]Type, 0, len(t))
		for i, raw := range t {
			am, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("alternative %d: expected mapping, got %T", i, raw)
			}
			alt, err := typeFromMap(am)
			if err != nil {
				return nil, err
			}
			alts = append(alts, alt)
		}
		return OneOf(alts...), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, t)
	}
}
