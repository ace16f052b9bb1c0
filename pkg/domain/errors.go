package domain

import (
	"errors"
	"fmt"
)

// Structural errors. Registration-time failures are fatal to that call
// and never partially register an entity; graph-level failures are fatal
// to the run and raised before any node executes.
var (
	// ErrDuplicateID is returned when registering an identifier that
	// already exists in a registry.
	ErrDuplicateID = errors.New("identifier already registered")

	// ErrNotFound is returned when a registry lookup misses.
	ErrNotFound = errors.New("not found")

	// ErrUnresolvedAction is returned when a chain node reference does
	// not resolve against any registry.
	ErrUnresolvedAction = errors.New("action reference does not resolve")

	// ErrInvalidEdge is returned when an edge names a missing node or an
	// empty port.
	ErrInvalidEdge = errors.New("invalid edge")

	// ErrInvalidParams is returned when an AI action's model params are
	// not a subset of the model's declared fields.
	ErrInvalidParams = errors.New("model params not a subset of model fields")

	// ErrCycle is returned when the edge set contains a directed cycle.
	// No partial order is ever produced alongside it.
	ErrCycle = errors.New("cycle detected in chain")

	// ErrPreprocessorContract is returned when a callable preprocessor
	// returns something other than a string-keyed map.
	ErrPreprocessorContract = errors.New("preprocessor must return a map")
)

// MissingFieldError reports a required input field absent from the
// supplied input map, before any underlying callable runs.
type MissingFieldError struct {
	Field  string
	NodeID string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("field %q is required by node %q but not present", e.Field, e.NodeID)
}

// CallError wraps a failure raised inside a wrapped callable, carrying
// the captured trace. Node invocation returns it as data; it never
// unwinds the execution driver.
type CallError struct {
	NodeID string
	Trace  string
	Err    error
}

func (e *CallError) Error() string {
	if e.NodeID != "" {
		return fmt.Sprintf("node %q: %v", e.NodeID, e.Err)
	}
	return e.Err.Error()
}

func (e *CallError) Unwrap() error { return e.Err }
