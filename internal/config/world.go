package config

// WorldConfig controls the filesystem walk and which files are parsed.
type WorldConfig struct {
	// IgnorePatterns names cache-style directories that are never represented.
	// Supports simple dir names (e.g., "__pycache__") and glob patterns (e.g., "*.egg-info").
	IgnorePatterns []string `yaml:"ignore_patterns" json:"ignore_patterns,omitempty"`
	// SourceExtensions lists the file extensions handed to the parser.
	SourceExtensions []string `yaml:"source_extensions" json:"source_extensions,omitempty"`
	// MaxFileBytes leaves larger source files as inert leaves.
	MaxFileBytes int64 `yaml:"max_file_bytes" json:"max_file_bytes,omitempty"`
}

// DefaultWorldConfig returns defaults for scanning Python projects.
func DefaultWorldConfig() WorldConfig {
	return WorldConfig{
		IgnorePatterns: []string{
			"__pycache__",
			".git",
			DirName,
			"node_modules",
			".venv",
			"venv",
			".mypy_cache",
			".pytest_cache",
			".ruff_cache",
			".tox",
			"*.egg-info",
		},
		SourceExtensions: []string{".py", ".pyi"},
		MaxFileBytes:     2 * 1024 * 1024,
	}
}
