package codedom

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"codetree/internal/codetree"
	"codetree/internal/tools"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, files map[string]string) (*tools.Registry, string) {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	p, err := codetree.Open(context.Background(), root, nil)
	require.NoError(t, err)
	t.Cleanup(p.Close)

	registry := tools.NewRegistry()
	require.NoError(t, RegisterAll(registry, p))
	return registry, root
}

func run(t *testing.T, r *tools.Registry, name string, args map[string]any) (string, error) {
	t.Helper()
	res, err := r.Execute(context.Background(), name, args)
	if res != nil && err == nil {
		return res.Result, nil
	}
	return "", err
}

func TestTools_EditSession(t *testing.T) {
	t.Parallel()
	r, root := setup(t, map[string]string{"app.py": "def f():\n    return 1\n"})

	out, err := run(t, r, "expand", map[string]any{"label": "0.0"})
	require.NoError(t, err)
	assert.Equal(t, "0.0 app.py\n  0.0.0 def f():\n    0.0.0.0 return 1", out)

	out, err = run(t, r, "update_node", map[string]any{"label": "0.0.0", "code": "def f():\n    return 2"})
	require.NoError(t, err)
	assert.Equal(t, "Updated node with label 0.0.0.", out)

	out, err = run(t, r, "insert_child", map[string]any{"label": "0.0", "code": "print(f())"})
	require.NoError(t, err)
	assert.Equal(t, "Inserted new node with label 0.0.1.", out)

	out, err = run(t, r, "write_changes", map[string]any{"dry_run": true})
	require.NoError(t, err)
	assert.Contains(t, out, "1 file(s) pending:")
	assert.Contains(t, out, "def f():\n    return 2\nprint(f())\n")

	out, err = run(t, r, "write_changes", nil)
	require.NoError(t, err)
	assert.Equal(t, "Wrote 1 file(s).", out)

	data, err := os.ReadFile(filepath.Join(root, "app.py"))
	require.NoError(t, err)
	assert.Equal(t, "def f():\n    return 2\nprint(f())\n", string(data))

	out, err = run(t, r, "write_changes", map[string]any{"dry_run": true})
	require.NoError(t, err)
	assert.Equal(t, "No pending changes.", out)
}

func TestTools_CreateAndDeleteFile(t *testing.T) {
	t.Parallel()
	r, root := setup(t, map[string]string{"a.py": "x = 1\n"})

	out, err := run(t, r, "insert_child", map[string]any{"label": "0", "code": "y = 2\n", "filename": "b.py"})
	require.NoError(t, err)
	assert.Equal(t, "Created file b.py with label 0.1.", out)
	assert.FileExists(t, filepath.Join(root, "b.py"))

	out, err = run(t, r, "delete_node", map[string]any{"label": "0.1"})
	require.NoError(t, err)
	assert.Equal(t, "Deleted node with label 0.1.", out)
	assert.NoFileExists(t, filepath.Join(root, "b.py"))

	_, err = run(t, r, "delete_node", map[string]any{"label": 0})
	assert.True(t, errors.Is(err, codetree.ErrRootDelete))
}

func TestTools_BrowseHelpers(t *testing.T) {
	t.Parallel()
	r, root := setup(t, map[string]string{"pkg/m.py": "class K:\n    pass\n"})

	out, err := run(t, r, "get_node", map[string]any{"label": "0.0.0"})
	require.NoError(t, err)
	assert.Contains(t, out, "kind: file")
	assert.Contains(t, out, "path: "+filepath.Join(root, "pkg", "m.py"))
	assert.Contains(t, out, "modified: false")
	assert.Contains(t, out, "lines: 3")

	out, err = run(t, r, "show_source", map[string]any{"label": "0.0.0.0"})
	require.NoError(t, err)
	assert.Equal(t, "class K:\n    pass", out)

	out, err = run(t, r, "view_full_tree", nil)
	require.NoError(t, err)
	assert.Contains(t, out, "        0.0.0.0.0 pass")
}

func TestTools_FindNodes(t *testing.T) {
	t.Parallel()
	r, _ := setup(t, map[string]string{
		"a.py": "def load_config():\n    pass\n\n\nclass Loader:\n    def load(self):\n        pass\n",
	})

	out, err := run(t, r, "find_nodes", map[string]any{"pattern": "load", "kind": "function"})
	require.NoError(t, err)
	assert.Equal(t, "0.0.0 function: def load_config():\n0.0.1.0 function: def load(self):", out)

	out, err = run(t, r, "find_nodes", map[string]any{"pattern": "^class LOADER", "ignore_case": true})
	require.NoError(t, err)
	assert.Equal(t, "0.0.1 class: class Loader:", out)

	out, err = run(t, r, "find_nodes", map[string]any{"pattern": "load", "label": "0.0.1", "ignore_case": true, "max_results": float64(1)})
	require.NoError(t, err)
	assert.Equal(t, "0.0.1 class: class Loader:", out)

	out, err = run(t, r, "find_nodes", map[string]any{"pattern": "nothing here"})
	require.NoError(t, err)
	assert.Equal(t, "No matches.", out)

	_, err = run(t, r, "find_nodes", map[string]any{"pattern": "("})
	assert.ErrorIs(t, err, tools.ErrInvalidArgType)

	_, err = run(t, r, "find_nodes", map[string]any{"pattern": "x", "kind": "lambda"})
	assert.ErrorIs(t, err, codetree.ErrUnsupported)
}

func TestTools_ArgumentErrors(t *testing.T) {
	t.Parallel()
	r, _ := setup(t, map[string]string{"a.py": "x = 1\n"})

	_, err := run(t, r, "expand", map[string]any{})
	assert.ErrorIs(t, err, tools.ErrMissingRequiredArg)

	_, err = run(t, r, "expand", map[string]any{"label": "  "})
	assert.ErrorIs(t, err, tools.ErrInvalidArgType)

	_, err = run(t, r, "update_node", map[string]any{"label": "0.9", "code": "x = 2"})
	assert.ErrorIs(t, err, codetree.ErrNotFound)

	_, err = run(t, r, "update_node", map[string]any{"label": "0.0.0", "code": "x = ("})
	assert.ErrorIs(t, err, codetree.ErrParse)
}
