// Package ports defines the driven-side interfaces of the engine:
// chain persistence (ChainStore) and chain execution (ChainRunner).
// Adapters under pkg/adapters implement them; the shared contract
// runner verifies any ChainStore implementation against the same
// behavioral suite.
package ports
