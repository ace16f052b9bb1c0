package domain

import "time"

// StepEvent reports one node's intermediate result during a chain run.
type StepEvent struct {
	NodeID  string         `json:"node_id"`
	Outputs map[string]any `json:"outputs,omitempty"`
	Elapsed time.Duration  `json:"elapsed"`
}

// StepCallback receives intermediate results as the driver walks the
// chain. The callback is caller-owned: failures inside it propagate to
// the caller of the driver, not to the chain.
type StepCallback func(StepEvent)

// Trail is the full per-node output record of one run: node id to named
// outputs. It is always returned alongside the chain result, including
// partially on failure, for observability.
type Trail map[string]map[string]any
