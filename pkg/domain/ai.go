package domain

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/mohae/deepcopy"

	"github.com/strandkit/strand/pkg/schema"
)

// PreprocessorFunc transforms a node's partitioned inputs into model
// call parameters. It must return a string-keyed map; anything else
// violates the preprocessor contract.
type PreprocessorFunc func(data map[string]any) (any, error)

// Preprocessor is the pre-processing stage of an AI action: either a
// callable or a nested template, never both.
type Preprocessor struct {
	Fn       PreprocessorFunc
	Template *Template
	// fields declared by a callable preprocessor; template fields are
	// derived from the placeholder variables.
	fields schema.Fields
}

// FuncPreprocessor wraps a callable preprocessor together with the field
// descriptors of its parameters.
func FuncPreprocessor(fn PreprocessorFunc, fields ...schema.Field) Preprocessor {
	return Preprocessor{Fn: fn, fields: fields}
}

// TemplatePreprocessor builds a template preprocessor from a nested
// structure with embedded "{{ name }}" placeholders.
func TemplatePreprocessor(source any) (Preprocessor, error) {
	tpl, err := NewTemplate(source)
	if err != nil {
		return Preprocessor{}, err
	}
	return Preprocessor{Template: tpl}, nil
}

// Fields returns the input descriptors the pre-processing stage needs.
// Every template variable becomes a required string field.
func (p Preprocessor) Fields() schema.Fields {
	if p.Template != nil {
		vars := p.Template.Vars()
		fields := make(schema.Fields, 0, len(vars))
		for _, v := range vars {
			fields = append(fields, schema.NewField(v, schema.String()))
		}
		return fields
	}
	return p.fields
}

// AIAction couples a model with a pre-processing stage and static model
// parameters. It is the processing engine behind AI nodes.
type AIAction struct {
	NodeID      string
	Model       *Model
	ModelParams map[string]any
	Pre         Preprocessor
	Fields      schema.Fields
}

// NewAIAction validates that modelParams names form a subset of the
// model's declared fields before anything else; violation fails the
// construction immediately.
func NewAIAction(nodeID string, model *Model, modelParams map[string]any, pre Preprocessor) (*AIAction, error) {
	if model == nil {
		return nil, fmt.Errorf("ai action %q: model is required", nodeID)
	}
	declared := make(map[string]bool, len(model.Fields))
	for _, f := range model.Fields {
		declared[f.Name] = true
	}
	for name := range modelParams {
		if !declared[name] {
			return nil, fmt.Errorf("ai action %q: param %q: %w (model %q declares %v)",
				nodeID, name, ErrInvalidParams, model.ID, model.Fields.Names())
		}
	}

	return &AIAction{
		NodeID:      nodeID,
		Model:       model,
		ModelParams: modelParams,
		Pre:         pre,
		Fields:      pre.Fields(),
	}, nil
}

// Call runs the full AI invocation protocol:
//
//  1. Partition inputs: fields declared by the pre-processing stage are
//     pulled into a local subset; a required field missing from the
//     input map fails with MissingFieldError before anything runs.
//     Remaining inputs pass through untouched.
//  2. Run the pre-processing stage on the subset. Callable failures are
//     caught and returned as the node's failure, never propagated.
//  3. Merge model params, then passthrough inputs, then the
//     pre-processing output, each layer overriding the previous by key.
//     The pre-processing stage has final say over what it computed.
//  4. Invoke the model with the merged parameters; a model error aborts
//     with that error.
func (a *AIAction) Call(ctx context.Context, data map[string]any) (any, error) {
	sub := make(map[string]any)
	rest := make(map[string]any, len(data))
	for k, v := range data {
		rest[k] = v
	}
	for _, f := range a.Fields {
		v, ok := rest[f.Name]
		if !ok {
			if f.Required {
				return nil, &MissingFieldError{Field: f.Name, NodeID: a.NodeID}
			}
			continue
		}
		sub[f.Name] = v
		delete(rest, f.Name)
	}

	preOut, err := a.preprocess(sub)
	if err != nil {
		return nil, err
	}

	merged := make(map[string]any, len(a.ModelParams)+len(rest)+len(preOut))
	for k, v := range a.ModelParams {
		merged[k] = v
	}
	for k, v := range rest {
		merged[k] = v
	}
	for k, v := range preOut {
		merged[k] = v
	}

	return a.Model.Call(ctx, merged)
}

func (a *AIAction) preprocess(sub map[string]any) (map[string]any, error) {
	var out any
	var err error

	switch {
	case a.Pre.Fn != nil:
		out, err = a.callFunc(sub)
	case a.Pre.Template != nil:
		out, err = a.Pre.Template.Render(sub)
	default:
		// No pre-processing stage: the subset passes through as-is.
		return sub, nil
	}
	if err != nil {
		return nil, err
	}

	m, ok := out.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("node %q: %w, got %T", a.NodeID, ErrPreprocessorContract, out)
	}
	return m, nil
}

func (a *AIAction) callFunc(sub map[string]any) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = &CallError{
				NodeID: a.NodeID,
				Trace:  string(debug.Stack()),
				Err:    fmt.Errorf("preprocessor panicked: %v", r),
			}
		}
	}()
	out, err = a.Pre.Fn(sub)
	if err != nil {
		return nil, &CallError{NodeID: a.NodeID, Err: fmt.Errorf("preprocessor: %w", err)}
	}
	return out, nil
}

// Clone returns an independent copy. The preprocessor callable and
// template are shared; the model and params are deep-copied.
func (a *AIAction) Clone() *AIAction {
	if a == nil {
		return nil
	}
	c := *a
	c.Model = a.Model.Clone()
	if a.ModelParams != nil {
		c.ModelParams = deepcopy.Copy(a.ModelParams).(map[string]any)
	}
	c.Fields = append(schema.Fields(nil), a.Fields...)
	return &c
}
