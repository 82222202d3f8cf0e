package codetree

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeTree creates files (relative path -> content) under a fresh temp dir.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

func openProject(t *testing.T, files map[string]string) (*Project, string) {
	t.Helper()
	root := writeTree(t, files)
	p, err := Open(context.Background(), root, nil)
	require.NoError(t, err)
	t.Cleanup(p.Close)
	return p, root
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func mustNode(t *testing.T, p *Project, label string) *Node {
	t.Helper()
	n, err := p.GetNode(label)
	require.NoError(t, err)
	return n
}

func mustSource(t *testing.T, p *Project, label string) string {
	t.Helper()
	src, err := p.Source(label)
	require.NoError(t, err)
	return src
}
