// SPDX-License-Identifier: MIT

package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/katalvlaran/vaxsim/logging"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]slog.Level{
		"info":    slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		" trace ": logging.LevelTrace,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, logging.ParseLevel(in), in)
	}
}

func TestNewLogger_TraceLabel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := logging.NewLogger("trace", &buf)
	logging.Trace(l, "kernel event", "t", 1.5)
	assert.Contains(t, buf.String(), "level=TRACE")
	assert.Contains(t, buf.String(), "t=1.5")

	buf.Reset()
	l = logging.NewLogger("info", &buf)
	l.Debug("hidden")
	assert.Empty(t, buf.String())
}

func TestDiscard(t *testing.T) {
	t.Parallel()

	l := logging.Discard()
	l.Error("dropped")
	assert.False(t, l.Enabled(context.Background(), slog.LevelError))
	assert.Equal(t, slog.DiscardHandler, l.Handler())
	assert.Equal(t, slog.DiscardHandler, l.With("k", "v").Handler())
}
