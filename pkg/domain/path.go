package domain

import "fmt"

// Loc is an extraction path into an arbitrarily nested structure: an
// ordered sequence of string keys (for maps) and integer indices (for
// slices). A negative index counts from the end.
type Loc []any

// GetByLoc follows the path into value and returns what it finds.
func GetByLoc(value any, loc Loc) (any, error) {
	cur := value
	for _, step := range loc {
		switch key := step.(type) {
		case string:
			m, ok := cur.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("loc %v: expected object at %q, got %T", loc, key, cur)
			}
			v, ok := m[key]
			if !ok {
				return nil, fmt.Errorf("loc %v: key %q not present", loc, key)
			}
			cur = v
		case int:
			s, ok := cur.([]any)
			if !ok {
				return nil, fmt.Errorf("loc %v: expected array at index %d, got %T", loc, key, cur)
			}
			idx := key
			if idx < 0 {
				idx += len(s)
			}
			if idx < 0 || idx >= len(s) {
				return nil, fmt.Errorf("loc %v: index %d out of range (len %d)", loc, key, len(s))
			}
			cur = s[idx]
		default:
			return nil, fmt.Errorf("loc %v: unsupported step %T", loc, step)
		}
	}
	return cur, nil
}

// PutByLoc writes value at the path inside root, which must already
// contain the enclosing containers.
func PutByLoc(root any, loc Loc, value any) error {
	if len(loc) == 0 {
		return fmt.Errorf("empty loc")
	}
	parent, err := GetByLoc(root, loc[:len(loc)-1])
	if err != nil {
		return err
	}
	last := loc[len(loc)-1]
	switch key := last.(type) {
	case string:
		m, ok := parent.(map[string]any)
		if !ok {
			return fmt.Errorf("loc %v: expected object at %q, got %T", loc, key, parent)
		}
		m[key] = value
	case int:
		s, ok := parent.([]any)
		if !ok {
			return fmt.Errorf("loc %v: expected array at index %d, got %T", loc, key, parent)
		}
		idx := key
		if idx < 0 {
			idx += len(s)
		}
		if idx < 0 || idx >= len(s) {
			return fmt.Errorf("loc %v: index %d out of range (len %d)", loc, key, len(s))
		}
		s[idx] = value
	default:
		return fmt.Errorf("loc %v: unsupported step %T", loc, last)
	}
	return nil
}
