package schema_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/strandkit/strand/pkg/schema"
)

func TestNewField(t *testing.T) {
	f := schema.NewField("prompt", schema.String())
	if !f.Required {
		t.Error("fields are required by default")
	}
	if !f.Visible {
		t.Error("fields are visible by default")
	}

	internal := schema.NewField("_state", schema.String())
	if internal.Visible {
		t.Error("underscore-prefixed fields must be hidden")
	}
}

func TestFieldBuilders(t *testing.T) {
	t.Run("WithDefault Makes Optional", func(t *testing.T) {
		f := schema.NewField("limit", schema.Integer()).WithDefault(10)
		if f.Required {
			t.Error("a field with a default is no longer required")
		}
		if f.Default != "10" {
			t.Errorf("Default = %q, want rendered %q", f.Default, "10")
		}
	})

	t.Run("AsSecret", func(t *testing.T) {
		f := schema.NewField("api_key", schema.String()).AsSecret()
		if !f.Password {
			t.Error("AsSecret must mark the field as a password")
		}
	})

	t.Run("Hidden", func(t *testing.T) {
		f := schema.NewField("trace", schema.String()).Hidden()
		if f.Visible {
			t.Error("Hidden must clear visibility")
		}
	})
}

func TestFieldFor(t *testing.T) {
	f, err := schema.FieldFor[string]("prompt")
	if err != nil {
		t.Fatalf("FieldFor[string] error = %v", err)
	}
	if f.Type.Name() != "string" {
		t.Errorf("Type = %q", f.Type.Name())
	}

	secret, err := schema.FieldFor[schema.Secret]("token")
	if err != nil {
		t.Fatalf("FieldFor[Secret] error = %v", err)
	}
	if !secret.Password {
		t.Error("Secret-typed fields must be marked password")
	}

	if _, err := schema.FieldFor[func()]("bad"); err == nil {
		t.Error("FieldFor[func()] must fail")
	}
}

func TestFieldsValidate(t *testing.T) {
	fields := schema.Fields{
		schema.NewField("prompt", schema.String()),
		schema.NewField("limit", schema.Integer()).WithDefault(10),
		schema.NewField("strict", schema.Bool()),
	}

	t.Run("Valid", func(t *testing.T) {
		err := fields.Validate(map[string]any{"prompt": "hi", "strict": true})
		if err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})

	t.Run("All Failures Reported", func(t *testing.T) {
		err := fields.Validate(map[string]any{"limit": "ten", "strict": 1})
		if err == nil {
			t.Fatal("Validate() = nil, want aggregate failure")
		}
		// Missing required prompt + bad limit + bad strict.
		errs := schema.ValidationErrors(err)
		if len(errs) != 3 {
			t.Errorf("got %d validation errors, want 3: %v", len(errs), err)
		}
	})

	t.Run("Failures Survive Wrapping", func(t *testing.T) {
		err := fields.Validate(map[string]any{"limit": "ten"})
		wrapped := fmt.Errorf("register action: %w", err)

		errs := schema.ValidationErrors(wrapped)
		if len(errs) != 2 {
			t.Fatalf("got %d validation errors through wrapping, want 2: %v", len(errs), wrapped)
		}
		var fe *schema.FieldError
		if !errors.As(wrapped, &fe) {
			t.Fatal("errors.As found no FieldError in wrapped validation failure")
		}
	})

	t.Run("Optional May Be Absent", func(t *testing.T) {
		err := fields.Validate(map[string]any{"prompt": "hi", "strict": false})
		if err != nil {
			t.Errorf("Validate() error = %v, optional field absence must pass", err)
		}
	})
}
