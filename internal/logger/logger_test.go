package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigure_FileOutputJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dittodav.log")

	require.NoError(t, Configure(Config{Level: "debug", Format: "json", Output: path}))
	defer func() { _ = Configure(Config{Level: "INFO", Format: "text", Output: "stdout"}) }()

	Debug("resolved %s", "/a/b")
	Info("created %d nodes", 2)
	require.NoError(t, Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"level":"DEBUG"`)
	assert.Contains(t, lines[0], "resolved /a/b")
	assert.Contains(t, lines[1], "created 2 nodes")
}

func TestSetLevel_FiltersBelowThreshold(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filtered.log")

	require.NoError(t, Configure(Config{Level: "WARN", Format: "text", Output: path}))
	defer func() { _ = Configure(Config{Level: "INFO", Format: "text", Output: "stdout"}) }()

	Info("hidden")
	Warn("shown")
	require.NoError(t, Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestConfigure_UnknownFormat(t *testing.T) {
	assert.Error(t, Configure(Config{Format: "xml"}))
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "UNKNOWN", Level(42).String())
}
