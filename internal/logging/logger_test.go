package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"codetree/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetLogging(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		_ = Configure("", config.LoggingConfig{})
	})
}

func readLogs(t *testing.T, dir string) string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var sb strings.Builder
	for _, e := range entries {
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		require.NoError(t, err)
		sb.Write(data)
	}
	return sb.String()
}

func TestConfigure_DisabledWritesNothing(t *testing.T) {
	resetLogging(t)
	ws := t.TempDir()

	require.NoError(t, Configure(ws, config.LoggingConfig{Level: "debug"}))
	assert.False(t, IsDebugMode())

	Tree("should not be written")
	CloseAll()

	_, err := os.Stat(filepath.Join(ws, config.DirName, "logs"))
	assert.True(t, os.IsNotExist(err), "logs dir must not exist when debug_mode is off")
}

func TestConfigure_CategoryFiles(t *testing.T) {
	resetLogging(t)
	ws := t.TempDir()

	require.NoError(t, Configure(ws, config.LoggingConfig{
		Level:     "debug",
		DebugMode: true,
		Categories: map[string]bool{
			"view": false,
		},
	}))

	Tree("assembled %d nodes", 12)
	MutationDebug("relabel %s", "0.1")
	ViewDebug("suppressed")
	CloseAll()

	logsDir := filepath.Join(ws, config.DirName, "logs")
	date := time.Now().Format("2006-01-02")
	assert.FileExists(t, filepath.Join(logsDir, date+"_tree.log"))
	assert.FileExists(t, filepath.Join(logsDir, date+"_mutation.log"))
	assert.NoFileExists(t, filepath.Join(logsDir, date+"_view.log"))

	all := readLogs(t, logsDir)
	assert.Contains(t, all, "assembled 12 nodes")
	assert.Contains(t, all, "relabel 0.1")
	assert.NotContains(t, all, "suppressed")
}

func TestLevelFiltering(t *testing.T) {
	resetLogging(t)
	ws := t.TempDir()

	require.NoError(t, Configure(ws, config.LoggingConfig{Level: "warn", DebugMode: true}))
	TreeDebug("debug-line")
	TreeWarn("warn-line")
	CloseAll()

	all := readLogs(t, filepath.Join(ws, config.DirName, "logs"))
	assert.NotContains(t, all, "debug-line")
	assert.Contains(t, all, "warn-line")
}

func TestWithRequestID(t *testing.T) {
	resetLogging(t)
	ws := t.TempDir()

	require.NoError(t, Configure(ws, config.LoggingConfig{Level: "info", DebugMode: true, Format: "json"}))
	rl := WithRequestID(CategoryTools, "req-123").WithField("tool", "expand")
	assert.Equal(t, "req-123", rl.RequestID())
	rl.Info("executed")
	CloseAll()

	all := readLogs(t, filepath.Join(ws, config.DirName, "logs"))
	assert.Contains(t, all, `"req":"req-123"`)
	assert.Contains(t, all, `"tool":"expand"`)
}

func TestTimer(t *testing.T) {
	timer := StartTimer(CategoryTree, "noop")
	assert.GreaterOrEqual(t, timer.Stop(), time.Duration(0))
}
