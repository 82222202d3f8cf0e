package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DirName is the per-project directory holding configuration and logs.
const DirName = ".codetree"

// Config holds all codetree configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Filesystem walk and parsing
	World WorldConfig `yaml:"world"`

	// Windowed view rendering
	View ViewConfig `yaml:"view"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "codetree",
		Version: "0.3.0",
		World:   DefaultWorldConfig(),
		View:    DefaultViewConfig(),
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return defaults if config file doesn't exist
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Override with environment variables
	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("CODETREE_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Logging.DebugMode = b
		}
	}
	if v := os.Getenv("CODETREE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("CODETREE_MAX_FILE_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			c.World.MaxFileBytes = n
		}
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if len(c.World.SourceExtensions) == 0 {
		return fmt.Errorf("world.source_extensions must not be empty")
	}
	if c.View.ShallowDepth < 1 {
		return fmt.Errorf("view.shallow_depth must be at least 1, got %d", c.View.ShallowDepth)
	}
	if c.View.SmallSubtreeLines < 0 {
		return fmt.Errorf("view.small_subtree_lines must not be negative, got %d", c.View.SmallSubtreeLines)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level: %s (valid: debug, info, warn, error)", c.Logging.Level)
	}
	return nil
}

// DefaultConfigPath returns the config file location for a workspace.
func DefaultConfigPath(workspace string) string {
	return filepath.Join(workspace, DirName, "config.yaml")
}

// FindWorkspaceRoot walks up from dir looking for a .codetree directory,
// then for a VCS or Python project marker. Falls back to dir itself.
func FindWorkspaceRoot(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	markers := []string{DirName, ".git", "pyproject.toml", "setup.py"}
	for _, marker := range markers {
		cur := abs
		for {
			if _, err := os.Stat(filepath.Join(cur, marker)); err == nil {
				return cur, nil
			}
			parent := filepath.Dir(cur)
			if parent == cur {
				break
			}
			cur = parent
		}
	}

	return abs, nil
}
