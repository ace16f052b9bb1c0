// Package components ships a small library of ready-made models and
// actions. Hosts call Install on a registry set to make them available
// to chain definitions.
package components

import (
	"context"
	"fmt"
	"strings"

	"github.com/strandkit/strand/pkg/domain"
	"github.com/strandkit/strand/pkg/schema"
)

// Install registers the stock components into the given set. It fails
// on the first registration error, which in practice only happens when
// the host already claimed one of the stock identifiers.
func Install(set componentSet) error {
	installers := []func(componentSet) error{
		installEcho,
		installConcat,
		installUppercase,
		installLowercase,
		installPick,
	}
	for _, install := range installers {
		if err := install(set); err != nil {
			return err
		}
	}
	return nil
}

// componentSet is the slice of the registry set Install needs.
type componentSet interface {
	RegisterModel(id, description string, fn domain.ModelFunc, fields schema.Fields, tags ...string) (*domain.Model, error)
	RegisterAction(id, description string, fn domain.ActionFunc, fields schema.Fields, outputs []domain.Output, tags ...string) (*domain.Node, error)
}

// installEcho registers a model that reflects its prompt back. It is
// the model of choice for wiring and testing chains without network
// credentials.
func installEcho(set componentSet) error {
	fields := schema.Fields{
		schema.MustFieldFor[string]("prompt"),
		schema.MustFieldFor[string]("prefix").WithDefault(""),
	}
	fn := func(_ context.Context, params map[string]any) (any, error) {
		prompt, ok := params["prompt"].(string)
		if !ok {
			return nil, fmt.Errorf("prompt: expected string, got %T", params["prompt"])
		}
		prefix, _ := params["prefix"].(string)
		return map[string]any{"text": prefix + prompt}, nil
	}
	_, err := set.RegisterModel("echo", "Returns the prompt unchanged.", fn, fields, "builtin", "offline")
	return err
}

func installConcat(set componentSet) error {
	fields := schema.Fields{
		schema.MustFieldFor[string]("left"),
		schema.MustFieldFor[string]("right"),
		schema.MustFieldFor[string]("separator").WithDefault(""),
	}
	fn := func(_ context.Context, args map[string]any) (any, error) {
		sep, _ := args["separator"].(string)
		return fmt.Sprint(args["left"]) + sep + fmt.Sprint(args["right"]), nil
	}
	_, err := set.RegisterAction("concat", "Joins two strings with an optional separator.", fn, fields, nil, "builtin", "text")
	return err
}

func installUppercase(set componentSet) error {
	_, err := set.RegisterAction("uppercase", "Uppercases the input text.",
		transform(strings.ToUpper),
		schema.Fields{schema.MustFieldFor[string]("text")}, nil, "builtin", "text")
	return err
}

func installLowercase(set componentSet) error {
	_, err := set.RegisterAction("lowercase", "Lowercases the input text.",
		transform(strings.ToLower),
		schema.Fields{schema.MustFieldFor[string]("text")}, nil, "builtin", "text")
	return err
}

// installPick registers an action that extracts a dotted path from a
// structured value, mirroring how output descriptors address model
// results.
func installPick(set componentSet) error {
	fields := schema.Fields{
		schema.Field{Name: "value", Type: schema.FreeObject(), Required: true, Visible: true},
		schema.MustFieldFor[string]("path"),
	}
	fn := func(_ context.Context, args map[string]any) (any, error) {
		path, ok := args["path"].(string)
		if !ok {
			return nil, fmt.Errorf("path: expected string, got %T", args["path"])
		}
		loc := make(domain.Loc, 0, 4)
		for _, part := range strings.Split(path, ".") {
			loc = append(loc, part)
		}
		return domain.GetByLoc(args["value"], loc)
	}
	_, err := set.RegisterAction("pick", "Extracts a dotted path from a structured value.", fn, fields, nil, "builtin")
	return err
}

func transform(fn func(string) string) domain.ActionFunc {
	return func(_ context.Context, args map[string]any) (any, error) {
		text, ok := args["text"].(string)
		if !ok {
			return nil, fmt.Errorf("text: expected string, got %T", args["text"])
		}
		return fn(text), nil
	}
}
