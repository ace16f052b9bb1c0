package registry

import (
	"fmt"
	"sort"

	"github.com/strandkit/strand/pkg/domain"
	"github.com/strandkit/strand/pkg/schema"
)

// Set bundles the three registries a host process owns. It is passed by
// reference to every component that needs lookups; there is no global
// state and no teardown, since registrations represent compiled-in
// capabilities that live for the process lifetime.
type Set struct {
	Models  *ModelRegistry
	Actions *ActionRegistry
	AI      *AIActionRegistry
}

// NewSet creates an empty registry set.
func NewSet() *Set {
	return &Set{
		Models:  NewModelRegistry(),
		Actions: NewActionRegistry(),
		AI:      NewAIActionRegistry(),
	}
}

// RegisterModel constructs a model from a callable and its field
// descriptors and stores it. Returns the constructed model.
func (s *Set) RegisterModel(id, description string, fn domain.ModelFunc, fields schema.Fields, tags ...string) (*domain.Model, error) {
	m := &domain.Model{
		ID:          id,
		Description: description,
		Fields:      fields,
		Tags:        tags,
		Fn:          fn,
	}
	if err := s.Models.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// RegisterAction constructs a programmatic node and stores it. Returns
// the constructed node.
func (s *Set) RegisterAction(id, description string, fn domain.ActionFunc, fields schema.Fields, outputs []domain.Output, tags ...string) (*domain.Node, error) {
	n, err := domain.NewProgrammaticNode(id, description, fn, fields, outputs, tags...)
	if err != nil {
		return nil, err
	}
	if err := s.Actions.Register(n); err != nil {
		return nil, err
	}
	return n, nil
}

// AIActionSpec describes an AI action registration.
type AIActionSpec struct {
	ID          string
	ModelID     string
	ModelParams map[string]any
	// Preprocessor is either a callable (with its declared fields) or a
	// template source structure. Exactly one of Fn/Template is used.
	Fn       domain.PreprocessorFunc
	FnFields schema.Fields
	Template any
	// Outputs maps output names to extraction paths into the raw model
	// result. Empty means a single "model_output" selecting the whole
	// result.
	Outputs     map[string]domain.Loc
	Description string
	Tags        []string
}

// RegisterAIAction resolves the referenced model, constructs the AI
// action (validating model params against the model's fields), and
// stores the resulting node. The ExternalRegister sentinel id builds
// the node without storing it.
func (s *Set) RegisterAIAction(spec AIActionSpec) (*domain.Node, error) {
	model, err := s.Models.Get(spec.ModelID)
	if err != nil {
		return nil, err
	}

	var pre domain.Preprocessor
	switch {
	case spec.Fn != nil:
		pre = domain.FuncPreprocessor(spec.Fn, spec.FnFields...)
	case spec.Template != nil:
		pre, err = domain.TemplatePreprocessor(spec.Template)
		if err != nil {
			return nil, fmt.Errorf("ai action %q: %w", spec.ID, err)
		}
	}

	action, err := domain.NewAIAction(spec.ID, model, spec.ModelParams, pre)
	if err != nil {
		return nil, err
	}

	// Map iteration order is randomized; keep the slice sorted so the
	// node serializes, and hashes, the same way on every registration.
	names := make([]string, 0, len(spec.Outputs))
	for name := range spec.Outputs {
		names = append(names, name)
	}
	sort.Strings(names)
	outputs := make([]domain.Output, 0, len(names))
	for _, name := range names {
		outputs = append(outputs, domain.Output{Name: name, Loc: spec.Outputs[name]})
	}

	node := domain.NewAINode(spec.ID, spec.Description, action, outputs, spec.Tags...)
	if err := s.AI.Register(node); err != nil {
		return nil, err
	}
	return node, nil
}
