package telemetry_test

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/victornm/quli/internal/telemetry"
)

func TestSetupLogger_File(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	path := filepath.Join(t.TempDir(), "quli.log")
	closer, err := telemetry.SetupLogger(telemetry.LogConfig{Level: "debug", File: path, MaxSizeMB: 1})
	require.NoError(t, err)

	slog.Debug("telemetry: hello", "quiz_id", "q1")
	require.NoError(t, closer.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"msg":"telemetry: hello"`)
	assert.Contains(t, string(b), `"quiz_id":"q1"`)
}

func TestSetupLogger_InvalidLevel(t *testing.T) {
	_, err := telemetry.SetupLogger(telemetry.LogConfig{Level: "chatty"})
	require.Error(t, err)
}

func TestNewLogHandler(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(telemetry.NewLogHandler(&buf, "text", slog.LevelWarn))

	l.Info("dropped")
	l.Warn("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "msg=kept")
}
