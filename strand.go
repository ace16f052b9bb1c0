package strand

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/strandkit/strand/internal/compiler"
	"github.com/strandkit/strand/internal/logging"
	"github.com/strandkit/strand/internal/presentation/graph"
	"github.com/strandkit/strand/internal/runtime"
	"github.com/strandkit/strand/pkg/adapters/memory"
	"github.com/strandkit/strand/pkg/domain"
	"github.com/strandkit/strand/pkg/observability"
	"github.com/strandkit/strand/pkg/ports"
	"github.com/strandkit/strand/pkg/registry"
	"github.com/strandkit/strand/pkg/schema"
)

// Engine is the high-level entry point for the Strand library.
// It wraps the internal compiler and runtime and provides a simplified
// API for consumers: register components, build chains, run them.
type Engine struct {
	set     *registry.Set
	store   ports.ChainStore
	builder *compiler.Builder
	driver  *runtime.Driver
	metrics *observability.Metrics
	logger  *slog.Logger
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithStore injects a chain store, replacing the default in-memory one.
func WithStore(store ports.ChainStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithRegistries injects a pre-populated registry set.
func WithRegistries(set *registry.Set) Option {
	return func(e *Engine) {
		e.set = set
	}
}

// WithMetrics records run and step counters into the given metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// New initializes a new Strand Engine. Without options it starts with
// empty registries and an in-memory chain store.
func New(opts ...Option) *Engine {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.set == nil {
		eng.set = registry.NewSet()
	}
	if eng.store == nil {
		eng.store = memory.New()
	}
	// Don't pass nil to the driver, which would overwrite its default.
	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}

	driverOpts := []runtime.Option{runtime.WithLogger(eng.logger)}
	if eng.metrics != nil {
		driverOpts = append(driverOpts, runtime.WithStepHook(eng.metrics.StepHook()))
	}

	eng.builder = compiler.NewBuilder(eng.set)
	eng.driver = runtime.New(driverOpts...)
	return eng
}

// Registries returns the underlying registry set.
func (e *Engine) Registries() *registry.Set {
	return e.set
}

// Store returns the underlying chain store.
func (e *Engine) Store() ports.ChainStore {
	return e.store
}

// RegisterModel registers a model under the given identifier.
func (e *Engine) RegisterModel(id, description string, fn domain.ModelFunc, fields schema.Fields, tags ...string) (*domain.Model, error) {
	return e.set.RegisterModel(id, description, fn, fields, tags...)
}

// RegisterAction registers a programmatic action node.
func (e *Engine) RegisterAction(id, description string, fn domain.ActionFunc, fields schema.Fields, outputs []domain.Output, tags ...string) (*domain.Node, error) {
	return e.set.RegisterAction(id, description, fn, fields, outputs, tags...)
}

// RegisterAIAction builds an AI action node from the spec and registers it.
func (e *Engine) RegisterAIAction(spec registry.AIActionSpec) (*domain.Node, error) {
	return e.set.RegisterAIAction(spec)
}

// UnregisterAIAction removes an AI action by id.
func (e *Engine) UnregisterAIAction(id string) error {
	return e.set.AI.Unregister(id)
}

// ParseChain parses a YAML or JSON chain definition and resolves its
// node references against the registries.
func (e *Engine) ParseChain(data []byte) (*domain.Chain, error) {
	dag, err := compiler.Parse(data)
	if err != nil {
		return nil, err
	}
	return e.builder.Build(dag)
}

// BuildChain resolves an already-decoded definition into a chain.
func (e *Engine) BuildChain(dag *compiler.Dag) (*domain.Chain, error) {
	return e.builder.Build(dag)
}

// Run executes a chain. The callback, when non-nil, fires after each
// node completes. It returns the value addressed by the chain's main
// output and the full trail of node outputs.
func (e *Engine) Run(ctx context.Context, chain *domain.Chain, input any, callback domain.StepCallback) (any, domain.Trail, error) {
	start := time.Now()
	out, trail, err := e.driver.Run(ctx, chain, input, callback)
	if e.metrics != nil {
		e.metrics.ObserveRun(err, time.Since(start))
	}
	return out, trail, err
}

// SaveChain persists a chain definition. The document's Definition
// holds node references, not resolved nodes; chains are re-resolved
// against the registries of whichever engine loads them.
func (e *Engine) SaveChain(ctx context.Context, doc ports.ChainDocument) error {
	if _, err := compiler.FromMap(doc.Definition); err != nil {
		return fmt.Errorf("chain %q: %w", doc.ID, err)
	}
	return e.store.Save(ctx, &doc)
}

// LoadChain loads a stored definition and resolves it into a runnable chain.
func (e *Engine) LoadChain(ctx context.Context, id string) (*domain.Chain, error) {
	doc, err := e.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	dag, err := compiler.FromMap(doc.Definition)
	if err != nil {
		return nil, fmt.Errorf("chain %q: %w", id, err)
	}
	return e.builder.Build(dag)
}

// RunStored loads a chain by id and executes it.
func (e *Engine) RunStored(ctx context.Context, id string, input any, callback domain.StepCallback) (any, domain.Trail, error) {
	chain, err := e.LoadChain(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return e.Run(ctx, chain, input, callback)
}

// Mermaid renders the chain as a Mermaid flowchart. The trail, when
// non-nil, highlights visited nodes.
func (e *Engine) Mermaid(chain *domain.Chain, trail domain.Trail) string {
	var overlay *graph.Overlay
	if trail != nil {
		overlay = &graph.Overlay{}
		for _, node := range chain.Nodes {
			if _, ok := trail[node.ID]; ok {
				overlay.VisitedNodes = append(overlay.VisitedNodes, node.ID)
			}
		}
	}
	return graph.GenerateMermaid(chain, overlay)
}
