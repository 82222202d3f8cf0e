package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// UNIFIED CONFIG TESTS
// =============================================================================

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "codetree", cfg.Name)
	assert.Equal(t, 2, cfg.View.ShallowDepth)
	assert.Equal(t, 25, cfg.View.SmallSubtreeLines)
	assert.Contains(t, cfg.World.SourceExtensions, ".py")
	assert.Contains(t, cfg.World.IgnorePatterns, "__pycache__")
	assert.NotContains(t, cfg.World.IgnorePatterns, "build")
	assert.NotContains(t, cfg.World.IgnorePatterns, "dist")
	assert.False(t, cfg.Logging.DebugMode)
	require.NoError(t, cfg.Validate())
}

func TestConfig_SaveLoad(t *testing.T) {
	t.Setenv("CODETREE_DEBUG", "")
	t.Setenv("CODETREE_LOG_LEVEL", "")
	t.Setenv("CODETREE_MAX_FILE_BYTES", "")

	path := filepath.Join(t.TempDir(), DirName, "config.yaml")

	cfg := DefaultConfig()
	cfg.View.SmallSubtreeLines = 40
	cfg.World.SourceExtensions = []string{".py"}
	cfg.Logging.DebugMode = true

	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 40, loaded.View.SmallSubtreeLines)
	assert.Equal(t, []string{".py"}, loaded.World.SourceExtensions)
	assert.True(t, loaded.Logging.DebugMode)
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("CODETREE_DEBUG", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().View, cfg.View)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("view: [unterminated"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestConfig_EnvOverrides(t *testing.T) {
	t.Setenv("CODETREE_DEBUG", "true")
	t.Setenv("CODETREE_LOG_LEVEL", "debug")
	t.Setenv("CODETREE_MAX_FILE_BYTES", "1024")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.True(t, cfg.Logging.DebugMode)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, int64(1024), cfg.World.MaxFileBytes)
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.View.ShallowDepth = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.World.SourceExtensions = nil
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Logging.Level = "verbose"
	assert.Error(t, cfg.Validate())
}

func TestLoggingConfig_IsCategoryEnabled(t *testing.T) {
	lc := LoggingConfig{}
	assert.False(t, lc.IsCategoryEnabled("tree"))

	lc.DebugMode = true
	assert.True(t, lc.IsCategoryEnabled("tree"))

	lc.Categories = map[string]bool{"tree": false}
	assert.False(t, lc.IsCategoryEnabled("tree"))
	assert.True(t, lc.IsCategoryEnabled("view"))
}

func TestFindWorkspaceRoot_PrefersCodetreeDir(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, DirName), 0755))
	nested := filepath.Join(root, "pkg", "sub")
	require.NoError(t, os.MkdirAll(nested, 0755))

	got, err := FindWorkspaceRoot(nested)
	require.NoError(t, err)
	assert.Equal(t, root, got)
}

func TestFindWorkspaceRoot_FallsBackToPyproject(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "pyproject.toml"), []byte("[project]\n"), 0644))
	nested := filepath.Join(root, "src")
	require.NoError(t, os.MkdirAll(nested, 0755))

	got, err := FindWorkspaceRoot(nested)
	require.NoError(t, err)
	assert.Equal(t, root, got)
}
