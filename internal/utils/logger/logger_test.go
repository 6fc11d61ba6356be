package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"golang.org/x/exp/slog"

	"eventkeeper/internal/app/server/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name          string
		env           string
		expectedLevel slog.Level
	}{
		{
			name:          "local environment",
			env:           config.EnvLocal,
			expectedLevel: slog.LevelDebug,
		},
		{
			name:          "dev environment",
			env:           config.EnvDev,
			expectedLevel: slog.LevelDebug,
		},
		{
			name:          "prod environment",
			env:           config.EnvProd,
			expectedLevel: slog.LevelInfo,
		},
		{
			name:          "unknown environment",
			env:           "staging",
			expectedLevel: slog.LevelInfo,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := New(tt.env)
			require.NotNil(t, logger)
			ctx := context.Background()
			assert.Equal(t, tt.expectedLevel <= slog.LevelDebug, logger.Enabled(ctx, slog.LevelDebug))
			assert.True(t, logger.Enabled(ctx, slog.LevelInfo))
		})
	}
}

func TestSetupPrettySlog(t *testing.T) {
	logger := setupPrettySlog()
	require.NotNil(t, logger)

	ctx := context.Background()
	assert.True(t, logger.Enabled(ctx, slog.LevelDebug))
}

func TestNewCLI(t *testing.T) {
	ctx := context.Background()

	quiet := NewCLI(false)
	assert.False(t, quiet.Enabled(ctx, slog.LevelInfo))
	assert.True(t, quiet.Enabled(ctx, slog.LevelWarn))

	verbose := NewCLI(true)
	assert.True(t, verbose.Enabled(ctx, slog.LevelDebug))
}

func TestPrettyHandler_WritesMessageAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	opts := PrettyHandlerOptions{SlogOpts: &slog.HandlerOptions{Level: slog.LevelDebug}}
	logger := slog.New(opts.NewPrettyHandler(&buf)).With("component", "queue")

	logger.Warn("operation queued", "id", "42", "error", errors.New("offline"))

	out := buf.String()
	assert.Contains(t, out, "operation queued")
	assert.Contains(t, out, `"component": "queue"`)
	assert.Contains(t, out, `"id": "42"`)
	assert.Contains(t, out, `"error": "offline"`)
}

func TestNewWithLevel(t *testing.T) {
	ctx := context.Background()

	warnOnly := NewWithLevel(config.EnvProd, "warn")
	assert.False(t, warnOnly.Enabled(ctx, slog.LevelInfo))
	assert.True(t, warnOnly.Enabled(ctx, slog.LevelWarn))

	localDebug := NewWithLevel(config.EnvLocal, "DEBUG")
	assert.True(t, localDebug.Enabled(ctx, slog.LevelDebug))

	fallback := NewWithLevel(config.EnvProd, "loud")
	assert.False(t, fallback.Enabled(ctx, slog.LevelDebug))
	assert.True(t, fallback.Enabled(ctx, slog.LevelInfo))
}
