package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	require.Error(t, err)
}

func TestMustFallsBackToNop(t *testing.T) {
	logger := Must(Config{Level: "loud"})
	require.NotNil(t, logger)
	// Safe to use even though construction failed.
	logger.Info("dropped")
}

func TestNewWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	logger, err := New(Config{Level: "info", OutputPaths: []string{path}})
	require.NoError(t, err)

	logger.Info("booted", zap.String("component", "test"))
	logger.Debug("hidden below the configured level")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `"message":"booted"`)
	assert.Contains(t, out, `"level":"info"`)
	assert.Contains(t, out, `"component":"test"`)
	assert.NotContains(t, out, "hidden below")
}

func TestWithRequestCarriesCorrelationID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := &Logger{Logger: zap.New(core)}

	logger.WithRequest("req_123").Info("calling backend")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "calling backend", entries[0].Message)
	assert.Equal(t, "req_123", entries[0].ContextMap()["request_id"])
}

func TestNamed(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := &Logger{Logger: zap.New(core)}

	logger.Named("sweeper").Info("tick")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "sweeper", entries[0].LoggerName)
}

func TestNopDiscards(t *testing.T) {
	logger := Nop()
	logger.Error("nobody hears this")
	require.NoError(t, logger.Sync())
}
