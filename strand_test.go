package strand_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strandkit/strand"
	"github.com/strandkit/strand/pkg/components"
	"github.com/strandkit/strand/pkg/domain"
	"github.com/strandkit/strand/pkg/ports"
	"github.com/strandkit/strand/pkg/registry"
	"github.com/strandkit/strand/pkg/schema"
)

func newTestEngine(t *testing.T) *strand.Engine {
	t.Helper()
	eng := strand.New()
	require.NoError(t, components.Install(eng.Registries()))
	return eng
}

func TestEngine_EndToEnd(t *testing.T) {
	eng := newTestEngine(t)

	// A custom AI action feeding a stock programmatic action.
	_, err := eng.RegisterAIAction(registry.AIActionSpec{
		ID:       "greeter",
		ModelID:  "echo",
		Template: map[string]any{"prompt": "hello {{ name }}"},
		Outputs:  map[string]domain.Loc{"greeting": {"text"}},
	})
	require.NoError(t, err)

	chain, err := eng.ParseChain([]byte(`
nodes:
  - id: greet
    ref: greeter
  - id: shout
    ref: uppercase
edges:
  - source: greet
    target: shout
    source_port: greeting
    target_port: text
main_in: greet/name
main_out: shout/out
`))
	require.NoError(t, err)

	var steps []string
	out, trail, err := eng.Run(context.Background(), chain, "world", func(ev domain.StepEvent) {
		steps = append(steps, ev.NodeID)
	})
	require.NoError(t, err)

	assert.Equal(t, "HELLO WORLD", out)
	assert.Equal(t, []string{"greet", "shout"}, steps)
	assert.Equal(t, "hello world", trail["greet"]["greeting"])
}

func TestEngine_SaveLoadRun(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	err := eng.SaveChain(ctx, ports.ChainDocument{
		ID:   "shouter",
		Name: "uppercases its input",
		Definition: map[string]any{
			"nodes":    []any{map[string]any{"id": "up", "ref": "uppercase"}},
			"main_in":  "up/text",
			"main_out": "up/out",
		},
	})
	require.NoError(t, err)

	out, _, err := eng.RunStored(ctx, "shouter", "quiet", nil)
	require.NoError(t, err)
	assert.Equal(t, "QUIET", out)

	_, _, err = eng.RunStored(ctx, "missing", "x", nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEngine_StoredChainResolvesAgainstLoader(t *testing.T) {
	// Definitions persist references, not behavior: an engine without
	// the referenced component cannot load the chain.
	ctx := context.Background()

	rich := newTestEngine(t)
	require.NoError(t, rich.SaveChain(ctx, ports.ChainDocument{
		ID: "c",
		Definition: map[string]any{
			"nodes":    []any{map[string]any{"id": "up", "ref": "uppercase"}},
			"main_in":  "up/text",
			"main_out": "up/out",
		},
	}))

	bare := strand.New(strand.WithStore(rich.Store()))
	_, err := bare.LoadChain(ctx, "c")
	assert.ErrorIs(t, err, domain.ErrUnresolvedAction)
}

func TestEngine_ModelFailureAbortsRun(t *testing.T) {
	eng := newTestEngine(t)

	_, err := eng.RegisterModel("flaky", "always fails", func(_ context.Context, _ map[string]any) (any, error) {
		return nil, fmt.Errorf("quota exhausted")
	}, schema.Fields{schema.NewField("prompt", schema.String())})
	require.NoError(t, err)

	chain, err := eng.ParseChain([]byte(`
nodes:
  - id: a
    ref: flaky
main_in: a/prompt
main_out: a/model_output
`))
	require.NoError(t, err)

	_, trail, err := eng.Run(context.Background(), chain, "x", nil)
	require.Error(t, err)
	var callErr *domain.CallError
	assert.True(t, errors.As(err, &callErr))
	assert.Empty(t, trail)
}

func TestEngine_UnregisterAIAction(t *testing.T) {
	eng := newTestEngine(t)

	_, err := eng.RegisterAIAction(registry.AIActionSpec{
		ID:       "temp",
		ModelID:  "echo",
		Template: map[string]any{"prompt": "{{ text }}"},
	})
	require.NoError(t, err)

	require.NoError(t, eng.UnregisterAIAction("temp"))

	_, err = eng.ParseChain([]byte(`
nodes:
  - id: t
    ref: temp
main_in: t/text
main_out: t/model_output
`))
	assert.ErrorIs(t, err, domain.ErrUnresolvedAction)
}

func TestEngine_Mermaid(t *testing.T) {
	eng := newTestEngine(t)

	chain, err := eng.ParseChain([]byte(`
nodes:
  - id: up
    ref: uppercase
main_in: up/text
main_out: up/out
`))
	require.NoError(t, err)

	diagram := eng.Mermaid(chain, nil)
	assert.Contains(t, diagram, "graph TD")
	assert.Contains(t, diagram, "up")

	_, trail, err := eng.Run(context.Background(), chain, "x", nil)
	require.NoError(t, err)
	highlighted := eng.Mermaid(chain, trail)
	assert.Contains(t, highlighted, "class up visited;")
}

func TestEngine_SaveChainRejectsMalformedDefinition(t *testing.T) {
	eng := newTestEngine(t)

	err := eng.SaveChain(context.Background(), ports.ChainDocument{
		ID: "broken",
		Definition: map[string]any{
			"nodes": "not a list",
		},
	})
	assert.Error(t, err)
}
