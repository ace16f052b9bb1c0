// Package compiler turns persisted chain descriptions into executable
// chains. A description is the serializable dag form produced by an
// editor or stored in a ChainStore: nodes carrying an external id plus
// an action reference, edges with port handles, a sample input, and the
// main input/output bindings. Building resolves every reference against
// the live registry set.
package compiler

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/strandkit/strand/pkg/domain"
	"github.com/strandkit/strand/pkg/registry"
)

// DagNode is one node of a chain description. Anything beyond the id
// and the action reference (editor positions, labels) is free-form
// metadata irrelevant to execution and collected into Meta.
type DagNode struct {
	ID   string         `mapstructure:"id"`
	Ref  string         `mapstructure:"ref"`
	Meta map[string]any `mapstructure:",remain"`
}

// DagEdge connects a source node's output port to a target node's input
// port.
type DagEdge struct {
	Source     string `mapstructure:"source"`
	Target     string `mapstructure:"target"`
	SourcePort string `mapstructure:"source_port"`
	TargetPort string `mapstructure:"target_port"`
}

// Dag is a full chain description.
type Dag struct {
	Nodes   []DagNode      `mapstructure:"nodes"`
	Edges   []DagEdge      `mapstructure:"edges"`
	Sample  map[string]any `mapstructure:"sample"`
	MainIn  string         `mapstructure:"main_in"`
	MainOut string         `mapstructure:"main_out"`
}

// Parse decodes a YAML or JSON chain description.
func Parse(data []byte) (*Dag, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse chain description: %w", err)
	}
	return FromMap(raw)
}

// FromMap decodes a chain description from its mapping form.
func FromMap(raw map[string]any) (*Dag, error) {
	var dag Dag
	if err := mapstructure.Decode(raw, &dag); err != nil {
		return nil, fmt.Errorf("decode chain description: %w", err)
	}
	return &dag, nil
}

// Builder resolves chain descriptions against a registry set.
type Builder struct {
	set *registry.Set
}

// NewBuilder creates a builder over the given registries.
func NewBuilder(set *registry.Set) *Builder {
	return &Builder{set: set}
}

// Build materializes a chain: every declared node reference is resolved
// (models first, then AI actions, then programmatic actions) into a
// registry copy instantiated under the node's local id, and the edge
// list is validated structurally. Resolution failures abort the build
// with ErrUnresolvedAction before anything executes.
func (b *Builder) Build(dag *Dag) (*domain.Chain, error) {
	nodes := make([]*domain.Node, 0, len(dag.Nodes))
	for _, dn := range dag.Nodes {
		if dn.ID == "" {
			return nil, fmt.Errorf("chain node without id")
		}
		ref := dn.Ref
		if ref == "" {
			ref = dn.ID
		}
		node, err := b.resolve(ref)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", dn.ID, err)
		}
		nodes = append(nodes, node.WithID(dn.ID))
	}

	edges := make([]domain.Edge, 0, len(dag.Edges))
	for _, de := range dag.Edges {
		edges = append(edges, domain.Edge{
			Source:     de.Source,
			Target:     de.Target,
			SourcePort: de.SourcePort,
			TargetPort: de.TargetPort,
		})
	}

	return domain.NewChain(nodes, edges, dag.Sample, dag.MainIn, dag.MainOut)
}

func (b *Builder) resolve(ref string) (*domain.Node, error) {
	if b.set.Models.Has(ref) {
		model, err := b.set.Models.Get(ref)
		if err != nil {
			return nil, err
		}
		return nodeFromModel(model)
	}
	if node, err := b.set.AI.Get(ref); err == nil {
		return node, nil
	}
	if node, err := b.set.Actions.Get(ref); err == nil {
		return node, nil
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnresolvedAction, ref)
}

// nodeFromModel materializes a bare model reference as a passthrough AI
// node: no pre-processing stage, no static params.
func nodeFromModel(model *domain.Model) (*domain.Node, error) {
	action, err := domain.NewAIAction(model.ID, model, nil, domain.Preprocessor{})
	if err != nil {
		return nil, err
	}
	return domain.NewAINode(model.ID, model.Description, action, nil, model.Tags...), nil
}
