package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/mohae/deepcopy"
)

// Edge is a directed connection between two nodes, carrying the source
// output port and the target input port.
type Edge struct {
	Source     string `json:"source" yaml:"source"`
	Target     string `json:"target" yaml:"target"`
	SourcePort string `json:"source_port" yaml:"source_port"`
	TargetPort string `json:"target_port" yaml:"target_port"`
}

// Chain is an ordered collection of nodes and directed edges between
// them: one executable workflow.
type Chain struct {
	Nodes   []*Node
	Edges   []Edge
	Sample  map[string]any
	MainIn  string // "<node-id>/<port>" binding for the initial input
	MainOut string // "<node-id>/<port>" whose value is the chain result
}

// NewChain validates the structure: every edge endpoint must reference a
// declared node and both ports must be non-empty.
func NewChain(nodes []*Node, edges []Edge, sample map[string]any, mainIn, mainOut string) (*Chain, error) {
	known := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		known[n.ID] = true
	}
	for _, e := range edges {
		if e.SourcePort == "" || e.TargetPort == "" {
			return nil, fmt.Errorf("%w: %s -> %s: ports must be non-empty", ErrInvalidEdge, e.Source, e.Target)
		}
		if !known[e.Source] {
			return nil, fmt.Errorf("%w: source node %q not declared", ErrInvalidEdge, e.Source)
		}
		if !known[e.Target] {
			return nil, fmt.Errorf("%w: target node %q not declared", ErrInvalidEdge, e.Target)
		}
	}
	return &Chain{Nodes: nodes, Edges: edges, Sample: sample, MainIn: mainIn, MainOut: mainOut}, nil
}

// Node returns the declared node with the given id.
func (c *Chain) Node(id string) (*Node, bool) {
	for _, n := range c.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return nil, false
}

// TopologicalOrder returns an execution order consistent with every
// edge (Kahn's algorithm), or ErrCycle without any partial order.
// Declared nodes with no outgoing edges are seeded as zero-edge
// sources, so isolated nodes appear in the order exactly once.
func (c *Chain) TopologicalOrder() ([]string, error) {
	adjacency := make(map[string][]string, len(c.Nodes))
	inDegree := make(map[string]int)
	for _, e := range c.Edges {
		adjacency[e.Source] = append(adjacency[e.Source], e.Target)
		inDegree[e.Target]++
	}
	for _, n := range c.Nodes {
		if _, ok := adjacency[n.ID]; !ok {
			adjacency[n.ID] = nil
		}
	}

	// Seed with zero in-degree nodes, in declaration order for
	// deterministic output.
	var queue []string
	seeded := make(map[string]bool)
	for _, n := range c.Nodes {
		if inDegree[n.ID] == 0 {
			queue = append(queue, n.ID)
			seeded[n.ID] = true
		}
	}
	for src := range adjacency {
		if inDegree[src] == 0 && !seeded[src] {
			queue = append(queue, src)
		}
	}

	var order []string
	sinks := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)

		successors := adjacency[id]
		if len(successors) == 0 {
			sinks++
		}
		for _, next := range successors {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	withOutgoing := 0
	for _, successors := range adjacency {
		if len(successors) > 0 {
			withOutgoing++
		}
	}
	if len(order) != withOutgoing+sinks {
		return nil, fmt.Errorf("%w: ordered %d of %d nodes", ErrCycle, len(order), len(adjacency))
	}
	return order, nil
}

// ToMap returns the canonical mapping form of the chain.
func (c *Chain) ToMap() map[string]any {
	nodes := make([]any, len(c.Nodes))
	for i, n := range c.Nodes {
		nodes[i] = n.ToMap()
	}
	edges := make([]any, len(c.Edges))
	for i, e := range c.Edges {
		edges[i] = map[string]any{
			"source":      e.Source,
			"target":      e.Target,
			"source_port": e.SourcePort,
			"target_port": e.TargetPort,
		}
	}
	return map[string]any{
		"nodes":    nodes,
		"edges":    edges,
		"sample":   deepcopy.Copy(c.Sample),
		"main_in":  c.MainIn,
		"main_out": c.MainOut,
	}
}

// Hash returns the content address of the chain: a sha256 over the
// canonical serialized bytes. encoding/json sorts map keys, so the hash
// is independent of in-memory iteration order.
func (c *Chain) Hash() (string, error) {
	data, err := json.Marshal(c.ToMap())
	if err != nil {
		return "", fmt.Errorf("chain hash: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
