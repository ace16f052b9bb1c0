package ports

import (
	"context"

	"github.com/strandkit/strand/pkg/domain"
)

// ChainRunner defines the execution interface used by adapters (HTTP,
// MCP, CLI) to run a built chain.
type ChainRunner interface {
	// Run executes the chain in topological order, threading outputs
	// forward. It returns the main output value and the full per-node
	// trail; on failure the partial trail accompanies the error.
	Run(ctx context.Context, chain *domain.Chain, input any, callback domain.StepCallback) (any, domain.Trail, error)
}
