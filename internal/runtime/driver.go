// Package runtime contains the chain execution driver: the single-pass,
// synchronous walk over a chain's topological order.
package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/strandkit/strand/pkg/domain"
)

// Driver executes chains. Execution is deliberately single-threaded:
// nodes run strictly in topological order with no parallel fan-out,
// even when the dependency graph would permit it.
type Driver struct {
	logger *slog.Logger
	// onStep is an internal hook fired after every completed node, used
	// for metrics. The caller-supplied callback is separate.
	onStep func(nodeID string, err error)
}

// Option configures a Driver.
type Option func(*Driver)

// WithLogger sets a structured logger for the driver.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Driver) {
		d.logger = logger
	}
}

// WithStepHook registers an internal observer fired after every node
// call, successful or not.
func WithStepHook(hook func(nodeID string, err error)) Option {
	return func(d *Driver) {
		d.onStep = hook
	}
}

// New creates a driver.
func New(opts ...Option) *Driver {
	d := &Driver{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run walks the chain in topological order. Each node's input map is
// merged from the initial input (bound to the chain's main-in port) and
// prior outputs addressed to it via the edge list. On a node failure
// the run aborts, surfacing the error with the partial trail. The
// caller-supplied callback receives every intermediate result; if it
// panics, that propagates to the caller, since the callback is
// caller-owned.
func (d *Driver) Run(ctx context.Context, chain *domain.Chain, input any, callback domain.StepCallback) (any, domain.Trail, error) {
	order, err := chain.TopologicalOrder()
	if err != nil {
		return nil, nil, err
	}

	mainInNode, mainInPort := splitPort(chain.MainIn)
	mainOutNode, mainOutPort := splitPort(chain.MainOut)

	trail := make(domain.Trail, len(order))
	d.logger.Debug("chain run starting", "nodes", len(order), "main_in", chain.MainIn, "main_out", chain.MainOut)

	for _, id := range order {
		node, ok := chain.Node(id)
		if !ok {
			return nil, trail, fmt.Errorf("ordered node %q not declared in chain", id)
		}

		inputs := make(map[string]any)
		if id == mainInNode && mainInPort != "" {
			inputs[mainInPort] = input
		}
		for _, e := range chain.Edges {
			if e.Target != id {
				continue
			}
			prior, ok := trail[e.Source]
			if !ok {
				continue
			}
			if v, ok := prior[e.SourcePort]; ok {
				inputs[e.TargetPort] = v
			}
		}

		start := time.Now()
		outputs, err := node.Call(ctx, inputs)
		elapsed := time.Since(start)
		if d.onStep != nil {
			d.onStep(id, err)
		}
		if err != nil {
			d.logger.Error("node failed", "node_id", id, "err", err, "elapsed", elapsed)
			return nil, trail, err
		}

		trail[id] = outputs
		d.logger.Debug("node completed", "node_id", id, "elapsed", elapsed)
		if callback != nil {
			callback(domain.StepEvent{NodeID: id, Outputs: outputs, Elapsed: elapsed})
		}
	}

	outputs, ok := trail[mainOutNode]
	if !ok {
		return nil, trail, fmt.Errorf("main output node %q produced no outputs", mainOutNode)
	}
	result, ok := outputs[mainOutPort]
	if !ok {
		return nil, trail, fmt.Errorf("main output port %q not produced by node %q", mainOutPort, mainOutNode)
	}
	return result, trail, nil
}

// splitPort splits a "<node-id>/<port>" binding on the last slash, so
// node ids may themselves contain slashes.
func splitPort(binding string) (node, port string) {
	idx := strings.LastIndex(binding, "/")
	if idx < 0 {
		return binding, ""
	}
	return binding[:idx], binding[idx+1:]
}
