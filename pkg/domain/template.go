package domain

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mohae/deepcopy"
)

var placeholderRe = regexp.MustCompile(`\{\{\s*([a-zA-Z_][a-zA-Z0-9_]*)\s*\}\}`)

// templateSlot records one embedded-expression value inside the template
// source: where it lives and which variables it references.
type templateSlot struct {
	loc  Loc
	text string
	vars []string
}

// Template is a preprocessor built from an arbitrarily nested structure
// with embedded "{{ name }}" placeholder expressions. Placeholder
// locations are indexed once at construction; rendering substitutes each
// occurrence independently into a deep copy of the source, leaving all
// other structure untouched.
type Template struct {
	source any
	slots  []templateSlot
}

// NewTemplate indexes the placeholder slots of source.
func NewTemplate(source any) (*Template, error) {
	t := &Template{source: source}
	if err := t.index(source, nil); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Template) index(value any, loc Loc) error {
	switch v := value.(type) {
	case string:
		matches := placeholderRe.FindAllStringSubmatch(v, -1)
		if len(matches) == 0 {
			return nil
		}
		vars := make([]string, 0, len(matches))
		seen := make(map[string]bool)
		for _, m := range matches {
			if !seen[m[1]] {
				seen[m[1]] = true
				vars = append(vars, m[1])
			}
		}
		t.slots = append(t.slots, templateSlot{
			loc:  append(Loc(nil), loc...),
			text: v,
			vars: vars,
		})
	case map[string]any:
		for k, child := range v {
			if err := t.index(child, append(loc, k)); err != nil {
				return err
			}
		}
	case []any:
		for i, child := range v {
			if err := t.index(child, append(loc, i)); err != nil {
				return err
			}
		}
	case nil, bool, int, int64, float64:
		// Non-string scalars carry no placeholders.
	default:
		return fmt.Errorf("template: unsupported value %T at %v", value, loc)
	}
	return nil
}

// Vars returns the distinct variable names referenced across every slot.
func (t *Template) Vars() []string {
	var names []string
	seen := make(map[string]bool)
	for _, slot := range t.slots {
		for _, v := range slot.vars {
			if !seen[v] {
				seen[v] = true
				names = append(names, v)
			}
		}
	}
	return names
}

// Render substitutes data into every indexed slot and returns a deep
// copy of the source with the rendered values written back in place.
func (t *Template) Render(data map[string]any) (any, error) {
	out := deepcopy.Copy(t.source)
	for _, slot := range t.slots {
		rendered := placeholderRe.ReplaceAllStringFunc(slot.text, func(m string) string {
			name := strings.TrimSpace(strings.Trim(m, "{}"))
			if v, ok := data[name]; ok {
				return fmt.Sprint(v)
			}
			return ""
		})
		if len(slot.loc) == 0 {
			// The whole template is a single expression string.
			return rendered, nil
		}
		if err := PutByLoc(out, slot.loc, rendered); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Source returns the raw template structure.
func (t *Template) Source() any { return t.source }
