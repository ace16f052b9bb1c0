package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/strandkit/strand/pkg/schema"
)

func TestLogger_ErrorKeyStandardized(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, slog.LevelInfo)

	logger.Error("boom", "error", errors.New("kaput"))

	assert.Contains(t, buf.String(), "err=kaput")
	assert.NotContains(t, buf.String(), "error=kaput")
}

func TestLogger_SecretsRedacted(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, slog.LevelInfo)

	logger.Info("connecting", "addr", "localhost:6379", "password", schema.Secret("hunter2"))

	out := buf.String()
	assert.Contains(t, out, "addr=localhost:6379")
	assert.Contains(t, out, "redacted")
	assert.NotContains(t, out, "hunter2")
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, slog.LevelInfo)

	logger.Debug("noise")
	assert.Empty(t, buf.String())
}
