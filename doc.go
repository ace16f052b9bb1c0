/*
Package strand is an engine for composing and executing chains: directed
acyclic graphs of actions whose outputs feed the inputs of their
successors.

It separates the chain definition (nodes, edges, port wiring) from the
components that give nodes behavior (models, programmatic actions, AI
actions), and from the adapters that store and serve chains. This
Hexagonal Architecture allows Strand to be embedded in any interface:
CLI, HTTP Server, or AI Agent infrastructure.

# Concept

A chain wires nodes together by ports. Each node validates its inputs
against declared field descriptors, invokes its action, and exposes
named outputs extracted from the raw result. The engine toposorts the
graph, executes nodes in dependency order, and threads data along the
edges. Cycles are rejected up front, before any node runs.

Components live in registries. A model is a callable with typed
parameters; an AI action pairs a model with a preprocessor that shapes
incoming data into model parameters; a programmatic action is a plain
function. Chain definitions reference components by identifier and are
resolved against the registries at build time.

# Usage

Create an engine, register components, then parse and run a chain:

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/strandkit/strand"
		"github.com/strandkit/strand/pkg/components"
	)

	func main() {
		eng := strand.New()
		if err := components.Install(eng.Registries()); err != nil {
			log.Fatal(err)
		}

		chain, err := eng.ParseChain([]byte(`
	nodes:
	  - id: shout
	    ref: uppercase
	main_in: shout/text
	main_out: shout/out
	`))
		if err != nil {
			log.Fatal(err)
		}

		out, _, err := eng.Run(context.Background(), chain, "hello", nil)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(out) // HELLO
	}
*/
package strand
