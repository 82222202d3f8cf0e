package world

import (
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"codetree/internal/config"
)

// EntryPolicy says how the tree assembler treats one directory entry.
type EntryPolicy int

const (
	// EntrySkip entries are not represented at all (hidden files, caches).
	EntrySkip EntryPolicy = iota
	// EntryOpaque directories are represented but never descended into.
	EntryOpaque
	// EntryDirectory directories are descended into.
	EntryDirectory
	// EntrySource files are handed to the parser.
	EntrySource
	// EntryInert files are represented as leaves without parsing.
	EntryInert
)

func (p EntryPolicy) String() string {
	switch p {
	case EntrySkip:
		return "skip"
	case EntryOpaque:
		return "opaque"
	case EntryDirectory:
		return "directory"
	case EntrySource:
		return "source"
	case EntryInert:
		return "inert"
	}
	return "unknown"
}

// Scanner decides which filesystem entries become tree nodes.
type Scanner struct {
	root     string
	patterns []string
	exts     map[string]bool
	maxBytes int64
}

// NewScanner creates a scanner for the workspace rooted at root.
func NewScanner(root string, cfg config.WorldConfig) *Scanner {
	exts := make(map[string]bool, len(cfg.SourceExtensions))
	for _, ext := range cfg.SourceExtensions {
		exts[normalizeExtension(ext)] = true
	}
	return &Scanner{
		root:     root,
		patterns: cfg.IgnorePatterns,
		exts:     exts,
		maxBytes: cfg.MaxFileBytes,
	}
}

// IsSourcePath reports whether a file name carries a parsed extension.
func (s *Scanner) IsSourcePath(name string) bool {
	return s.exts[normalizeExtension(filepath.Ext(name))]
}

// Classify returns the policy for the entry at absPath. info must describe
// the entry itself (not a symlink target); symlinks are inert leaves.
func (s *Scanner) Classify(absPath string, info fs.FileInfo) EntryPolicy {
	name := info.Name()
	rel, err := filepath.Rel(s.root, absPath)
	if err != nil {
		rel = name
	}

	if isIgnoredRel(rel, name, s.patterns) {
		return EntrySkip
	}

	hidden := strings.HasPrefix(name, ".") && name != "." && name != ".."
	if info.IsDir() {
		if hidden {
			return EntryOpaque
		}
		return EntryDirectory
	}
	if hidden {
		return EntrySkip
	}
	if info.Mode()&fs.ModeSymlink != 0 {
		return EntryInert
	}
	if !info.Mode().IsRegular() {
		return EntrySkip
	}
	if !s.IsSourcePath(name) {
		return EntryInert
	}
	if s.maxBytes > 0 && info.Size() > s.maxBytes {
		return EntryInert
	}
	return EntrySource
}

func normalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

func normalizePattern(p string) string {
	p = strings.TrimSpace(p)
	p = strings.TrimSuffix(p, "/")
	p = strings.TrimSuffix(p, "\\")
	return filepath.ToSlash(p)
}

// isIgnoredRel reports whether a relative path should be ignored.
func isIgnoredRel(rel, name string, patterns []string) bool {
	rel = filepath.ToSlash(rel)
	for _, raw := range patterns {
		p := normalizePattern(raw)
		if p == "" {
			continue
		}
		// Glob pattern
		if strings.ContainsAny(p, "*?[]") {
			if ok, _ := path.Match(p, name); ok {
				return true
			}
			if ok, _ := path.Match(p, rel); ok {
				return true
			}
			// Handle directory globs like "vendor/*"
			if strings.HasSuffix(p, "/*") {
				prefix := strings.TrimSuffix(p, "/*")
				if strings.HasPrefix(rel, prefix+"/") {
					return true
				}
			}
			continue
		}
		// Simple dir/file name
		if name == p {
			return true
		}
		// Prefix match for nested paths
		if rel == p || strings.HasPrefix(rel, p+"/") {
			return true
		}
	}
	return false
}
