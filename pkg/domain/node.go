package domain

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/mohae/deepcopy"

	"github.com/strandkit/strand/pkg/schema"
)

// Kind discriminates the two node variants.
type Kind string

const (
	// KindProgrammatic nodes wrap a direct callable.
	KindProgrammatic Kind = "programmatic"
	// KindAI nodes wrap a model behind a pre-processing stage.
	KindAI Kind = "ai"
)

// ActionFunc is the callable behind a programmatic node.
type ActionFunc func(ctx context.Context, args map[string]any) (any, error)

// Output declares how one named output is pulled out of a node's raw
// result. An empty Loc selects the raw result itself.
type Output struct {
	Name string
	Loc  Loc
}

// Node is the unit of graph execution: a polymorphic wrapper over the
// programmatic and AI variants. Exactly one of Fn and AI is set,
// according to Kind.
type Node struct {
	ID          string
	Kind        Kind
	Description string
	Fields      schema.Fields
	Outputs     []Output
	Tags        []string

	Fn ActionFunc
	AI *AIAction
}

// NewProgrammaticNode wraps a direct callable. Outputs default to a
// single "out" selecting the raw result.
func NewProgrammaticNode(id, description string, fn ActionFunc, fields schema.Fields, outputs []Output, tags ...string) (*Node, error) {
	if fn == nil {
		return nil, fmt.Errorf("node %q: callable is required", id)
	}
	if len(outputs) == 0 {
		outputs = []Output{{Name: "out"}}
	}
	return &Node{
		ID:          id,
		Kind:        KindProgrammatic,
		Description: description,
		Fields:      fields,
		Outputs:     outputs,
		Tags:        tags,
		Fn:          fn,
	}, nil
}

// NewAINode wraps an AI action. The node's input descriptors are the
// pre-processing fields followed by the model's own fields; outputs
// default to a single "model_output" selecting the raw model result.
func NewAINode(id, description string, ai *AIAction, outputs []Output, tags ...string) *Node {
	if len(outputs) == 0 {
		outputs = []Output{{Name: "model_output"}}
	}
	fields := append(schema.Fields(nil), ai.Fields...)
	fields = append(fields, ai.Model.Fields...)
	return &Node{
		ID:          id,
		Kind:        KindAI,
		Description: description,
		Fields:      fields,
		Outputs:     outputs,
		Tags:        tags,
		AI:          ai,
	}
}

// Call invokes the node with a map of named inputs and extracts its
// declared outputs from the raw result. Failures are returned as data;
// Call never panics.
func (n *Node) Call(ctx context.Context, data map[string]any) (map[string]any, error) {
	var raw any
	var err error

	switch n.Kind {
	case KindAI:
		raw, err = n.AI.Call(ctx, data)
	case KindProgrammatic:
		for _, f := range n.Fields {
			if f.Required {
				if _, ok := data[f.Name]; !ok {
					return nil, &MissingFieldError{Field: f.Name, NodeID: n.ID}
				}
			}
		}
		raw, err = n.callFn(ctx, data)
	default:
		return nil, fmt.Errorf("node %q: unknown kind %q", n.ID, n.Kind)
	}
	if err != nil {
		return nil, err
	}

	outputs := make(map[string]any, len(n.Outputs))
	for _, o := range n.Outputs {
		v, err := GetByLoc(raw, o.Loc)
		if err != nil {
			return nil, &CallError{NodeID: n.ID, Err: fmt.Errorf("output %q: %w", o.Name, err)}
		}
		outputs[o.Name] = v
	}
	return outputs, nil
}

func (n *Node) callFn(ctx context.Context, data map[string]any) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = &CallError{
				NodeID: n.ID,
				Trace:  string(debug.Stack()),
				Err:    fmt.Errorf("action panicked: %v", r),
			}
		}
	}()
	out, err = n.Fn(ctx, data)
	if err != nil {
		return nil, &CallError{NodeID: n.ID, Err: err}
	}
	return out, nil
}

// Clone returns a deep copy of the node. Registries hand out clones so
// the master registration is never mutated by a caller.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	c.Fields = append(schema.Fields(nil), n.Fields...)
	c.Outputs = make([]Output, len(n.Outputs))
	for i, o := range n.Outputs {
		c.Outputs[i] = Output{Name: o.Name, Loc: append(Loc(nil), o.Loc...)}
	}
	c.Tags = append([]string(nil), n.Tags...)
	c.AI = n.AI.Clone()
	return &c
}

// WithID returns a clone carrying a different node id, used when a
// registered action is instantiated into a chain under a local id.
func (n *Node) WithID(id string) *Node {
	c := n.Clone()
	c.ID = id
	if c.AI != nil {
		c.AI.NodeID = id
	}
	return c
}

// ToMap returns the canonical mapping form of the node. Callables are
// not serializable and are omitted.
func (n *Node) ToMap() map[string]any {
	outputs := make([]any, len(n.Outputs))
	for i, o := range n.Outputs {
		outputs[i] = map[string]any{"name": o.Name, "loc": []any(o.Loc)}
	}
	m := map[string]any{
		"id":          n.ID,
		"kind":        string(n.Kind),
		"description": n.Description,
		"fields":      n.Fields.ToMaps(),
		"outputs":     outputs,
		"tags":        append([]string{}, n.Tags...),
	}
	if n.AI != nil {
		m["model"] = n.AI.Model.ToMap()
		m["model_params"] = deepcopy.Copy(n.AI.ModelParams)
	}
	return m
}
