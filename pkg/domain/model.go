package domain

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/strandkit/strand/pkg/schema"
)

// ModelFunc is the callable wrapped by a Model. It receives the merged
// call parameters and returns the raw model output.
type ModelFunc func(ctx context.Context, params map[string]any) (any, error)

// Model wraps a callable plus the field descriptors of its parameters.
// Once registered, a model is owned exclusively by the model registry.
type Model struct {
	ID          string
	Description string
	Fields      schema.Fields
	Tags        []string
	Fn          ModelFunc
}

// Call invokes the wrapped callable. It never panics: failures,
// including panics inside the callable, are returned as a value/error
// pair with the captured trace.
func (m *Model) Call(ctx context.Context, params map[string]any) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = &CallError{
				Trace: string(debug.Stack()),
				Err:   fmt.Errorf("model %q panicked: %v", m.ID, r),
			}
		}
	}()

	if m.Fn == nil {
		return nil, &CallError{Err: fmt.Errorf("model %q has no callable", m.ID)}
	}

	out, err = m.Fn(ctx, params)
	if err != nil {
		return nil, &CallError{Err: fmt.Errorf("model %q: %w", m.ID, err)}
	}
	return out, nil
}

// Clone returns an independent copy of the model. The callable reference
// is shared; descriptor and tag slices are not.
func (m *Model) Clone() *Model {
	if m == nil {
		return nil
	}
	c := *m
	c.Fields = append(schema.Fields(nil), m.Fields...)
	c.Tags = append([]string(nil), m.Tags...)
	return &c
}

// ToMap returns the canonical mapping form of the model for storage and
// transport. The callable itself is not serializable and is omitted.
func (m *Model) ToMap() map[string]any {
	return map[string]any{
		"id":          m.ID,
		"description": m.Description,
		"fields":      m.Fields.ToMaps(),
		"tags":        append([]string{}, m.Tags...),
	}
}
