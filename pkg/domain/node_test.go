package domain_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strandkit/strand/pkg/domain"
	"github.com/strandkit/strand/pkg/schema"
)

func echoModel(t *testing.T) *domain.Model {
	t.Helper()
	return &domain.Model{
		ID:     "echo",
		Fields: schema.Fields{schema.NewField("prompt", schema.String())},
		Fn: func(_ context.Context, params map[string]any) (any, error) {
			return map[string]any{"text": params["prompt"]}, nil
		},
	}
}

func TestAINode_TemplateRoundTrip(t *testing.T) {
	// Template preprocessor feeds the prompt, the model answers with a
	// {"text": ...} envelope, and the output descriptor unwraps it.
	pre, err := domain.TemplatePreprocessor(map[string]any{"prompt": "{{ message }}"})
	require.NoError(t, err)

	action, err := domain.NewAIAction("greet", echoModel(t), nil, pre)
	require.NoError(t, err)

	node := domain.NewAINode("greet", "", action, []domain.Output{
		{Name: "model_output", Loc: domain.Loc{"text"}},
	})

	outputs, err := node.Call(context.Background(), map[string]any{"message": "hi"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"model_output": "hi"}, outputs)
}

func TestAINode_MissingRequiredField(t *testing.T) {
	pre, err := domain.TemplatePreprocessor(map[string]any{"prompt": "{{ message }}"})
	require.NoError(t, err)

	var called bool
	model := &domain.Model{
		ID: "probe",
		Fn: func(_ context.Context, params map[string]any) (any, error) {
			called = true
			return params, nil
		},
	}
	action, err := domain.NewAIAction("greet", model, nil, pre)
	require.NoError(t, err)
	node := domain.NewAINode("greet", "", action, nil)

	_, err = node.Call(context.Background(), map[string]any{"unrelated": 1})
	var missing *domain.MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "message", missing.Field)
	assert.Equal(t, "greet", missing.NodeID)
	assert.False(t, called, "model must not run when a required field is absent")
}

func TestAINode_MergePrecedence(t *testing.T) {
	// Static params lose to passthrough inputs, passthrough inputs lose
	// to what the preprocessor computed.
	var got map[string]any
	model := &domain.Model{
		ID: "capture",
		Fields: schema.Fields{
			schema.NewField("temperature", schema.Number()),
			schema.NewField("prompt", schema.String()),
		},
		Fn: func(_ context.Context, params map[string]any) (any, error) {
			got = params
			return "ok", nil
		},
	}

	pre := domain.FuncPreprocessor(func(data map[string]any) (any, error) {
		return map[string]any{"prompt": "computed"}, nil
	}, schema.NewField("seed", schema.String()))

	action, err := domain.NewAIAction("n", model, map[string]any{"temperature": 0.1, "prompt": "static"}, pre)
	require.NoError(t, err)
	node := domain.NewAINode("n", "", action, nil)

	_, err = node.Call(context.Background(), map[string]any{
		"seed":        "s",
		"temperature": 0.9,
	})
	require.NoError(t, err)

	assert.Equal(t, 0.9, got["temperature"], "passthrough input overrides static param")
	assert.Equal(t, "computed", got["prompt"], "preprocessor output has final say")
	assert.NotContains(t, got, "seed", "preprocessor fields are consumed, not passed through")
}

func TestAINode_PreprocessorContract(t *testing.T) {
	pre := domain.FuncPreprocessor(func(data map[string]any) (any, error) {
		return []string{"not", "a", "map"}, nil
	})
	action, err := domain.NewAIAction("bad", echoModel(t), nil, pre)
	require.NoError(t, err)
	node := domain.NewAINode("bad", "", action, nil)

	_, err = node.Call(context.Background(), map[string]any{"prompt": "x"})
	assert.ErrorIs(t, err, domain.ErrPreprocessorContract)
}

func TestAINode_PreprocessorFailure(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		pre := domain.FuncPreprocessor(func(data map[string]any) (any, error) {
			return nil, fmt.Errorf("boom")
		})
		action, err := domain.NewAIAction("n", echoModel(t), nil, pre)
		require.NoError(t, err)
		node := domain.NewAINode("n", "", action, nil)

		_, err = node.Call(context.Background(), map[string]any{"prompt": "x"})
		var callErr *domain.CallError
		require.ErrorAs(t, err, &callErr)
		assert.Equal(t, "n", callErr.NodeID)
	})

	t.Run("Panic", func(t *testing.T) {
		pre := domain.FuncPreprocessor(func(data map[string]any) (any, error) {
			panic("kaboom")
		})
		action, err := domain.NewAIAction("n", echoModel(t), nil, pre)
		require.NoError(t, err)
		node := domain.NewAINode("n", "", action, nil)

		_, err = node.Call(context.Background(), map[string]any{"prompt": "x"})
		var callErr *domain.CallError
		require.ErrorAs(t, err, &callErr)
		assert.NotEmpty(t, callErr.Trace, "panic must carry the captured trace")
	})
}

func TestNewAIAction_InvalidParams(t *testing.T) {
	_, err := domain.NewAIAction("n", echoModel(t), map[string]any{"undeclared": 1}, domain.Preprocessor{})
	assert.ErrorIs(t, err, domain.ErrInvalidParams)
}

func TestModel_Call(t *testing.T) {
	t.Run("Error Wrapped", func(t *testing.T) {
		m := &domain.Model{
			ID: "failing",
			Fn: func(_ context.Context, _ map[string]any) (any, error) {
				return nil, errors.New("upstream rejected")
			},
		}
		_, err := m.Call(context.Background(), nil)
		var callErr *domain.CallError
		require.ErrorAs(t, err, &callErr)
		assert.Contains(t, callErr.Error(), "upstream rejected")
	})

	t.Run("Panic Recovered", func(t *testing.T) {
		m := &domain.Model{
			ID: "panicking",
			Fn: func(_ context.Context, _ map[string]any) (any, error) {
				panic("model blew up")
			},
		}
		_, err := m.Call(context.Background(), nil)
		var callErr *domain.CallError
		require.ErrorAs(t, err, &callErr)
		assert.NotEmpty(t, callErr.Trace)
	})
}

func TestProgrammaticNode_Call(t *testing.T) {
	t.Run("Required Field Checked First", func(t *testing.T) {
		var called bool
		node, err := domain.NewProgrammaticNode("p", "", func(_ context.Context, args map[string]any) (any, error) {
			called = true
			return args, nil
		}, schema.Fields{schema.NewField("text", schema.String())}, nil)
		require.NoError(t, err)

		_, err = node.Call(context.Background(), map[string]any{})
		var missing *domain.MissingFieldError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, "text", missing.Field)
		assert.False(t, called)
	})

	t.Run("Panic Recovered", func(t *testing.T) {
		node, err := domain.NewProgrammaticNode("p", "", func(_ context.Context, _ map[string]any) (any, error) {
			panic("action blew up")
		}, nil, nil)
		require.NoError(t, err)

		_, err = node.Call(context.Background(), nil)
		var callErr *domain.CallError
		require.ErrorAs(t, err, &callErr)
		assert.Equal(t, "p", callErr.NodeID)
	})

	t.Run("Default Output Selects Raw Result", func(t *testing.T) {
		node, err := domain.NewProgrammaticNode("p", "", func(_ context.Context, _ map[string]any) (any, error) {
			return "raw", nil
		}, nil, nil)
		require.NoError(t, err)

		outputs, err := node.Call(context.Background(), nil)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"out": "raw"}, outputs)
	})

	t.Run("Output Extraction", func(t *testing.T) {
		node, err := domain.NewProgrammaticNode("p", "", func(_ context.Context, _ map[string]any) (any, error) {
			return map[string]any{"nested": map[string]any{"value": 42}}, nil
		}, nil, []domain.Output{
			{Name: "answer", Loc: domain.Loc{"nested", "value"}},
		})
		require.NoError(t, err)

		outputs, err := node.Call(context.Background(), nil)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"answer": 42}, outputs)
	})

	t.Run("Bad Output Path", func(t *testing.T) {
		node, err := domain.NewProgrammaticNode("p", "", func(_ context.Context, _ map[string]any) (any, error) {
			return map[string]any{}, nil
		}, nil, []domain.Output{
			{Name: "answer", Loc: domain.Loc{"missing"}},
		})
		require.NoError(t, err)

		_, err = node.Call(context.Background(), nil)
		var callErr *domain.CallError
		assert.ErrorAs(t, err, &callErr)
	})
}

func TestNode_WithID(t *testing.T) {
	pre, err := domain.TemplatePreprocessor(map[string]any{"prompt": "{{ message }}"})
	require.NoError(t, err)
	action, err := domain.NewAIAction("original", echoModel(t), nil, pre)
	require.NoError(t, err)
	node := domain.NewAINode("original", "", action, nil)

	renamed := node.WithID("instance-1")
	assert.Equal(t, "instance-1", renamed.ID)
	assert.Equal(t, "instance-1", renamed.AI.NodeID)
	assert.Equal(t, "original", node.ID, "source node must stay untouched")
	assert.Equal(t, "original", node.AI.NodeID)
}
