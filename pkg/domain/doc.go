/*
Package domain contains the core entities of the chain execution engine.

It defines Models (wrapped callables that return value/error pairs
instead of panicking), Nodes (the programmatic and AI variants of an
executable action), Edges and Chains (the directed graph of one
workflow, with topological ordering and content hashing), and the error
taxonomy shared across the engine. This package is kept pure and free
of I/O or persistence concerns, following hexagonal architecture
principles.

# Key Entities

  - Model: a callable plus the field descriptors of its parameters.
  - Node: an instantiated action placed into a Chain, with a local id.
  - AIAction: a model call behind a template or callable pre-processing
    stage, with static model parameters.
  - Chain: nodes plus directed edges; computes a topological execution
    order or rejects cycles.
  - Output: a named extraction path into a raw result structure.
*/
package domain
