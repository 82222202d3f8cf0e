package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"codetree/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newWorkspace(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	editCode, editCodeFile, newFilename, toolCategory = "", "", "", ""
	dryRun, verbose = false, false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestUpdateCommand_WritesFile(t *testing.T) {
	ws := newWorkspace(t, map[string]string{"a.py": "def f():\n    return 1\n"})

	out, err := execute(t, "-w", ws, "update", "0.0.0", "--code", "def f():\n    return 2")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated node with label 0.0.0.")
	assert.Contains(t, out, "Wrote 1 file(s).")

	data, err := os.ReadFile(filepath.Join(ws, "a.py"))
	require.NoError(t, err)
	assert.Equal(t, "def f():\n    return 2\n", string(data))
}

func TestInsertCommand_DryRun(t *testing.T) {
	ws := newWorkspace(t, map[string]string{"a.py": "x = 1\n"})

	out, err := execute(t, "-w", ws, "--dry-run", "insert", "0.0", "--code", "y = 2")
	require.NoError(t, err)
	assert.Contains(t, out, "Inserted new node with label 0.0.1.")
	assert.Contains(t, out, "1 file(s) pending:")
	assert.Contains(t, out, "x = 1\ny = 2\n")

	data, err := os.ReadFile(filepath.Join(ws, "a.py"))
	require.NoError(t, err)
	assert.Equal(t, "x = 1\n", string(data))
}

func TestInsertCommand_CreatesFile(t *testing.T) {
	ws := newWorkspace(t, map[string]string{"a.py": "x = 1\n"})

	out, err := execute(t, "-w", ws, "insert", "0", "--filename", "b.py", "--code", "y = 2")
	require.NoError(t, err)
	assert.Contains(t, out, "Created file b.py with label 0.1.")
	assert.FileExists(t, filepath.Join(ws, "b.py"))
}

func TestViewAndExpandCommands(t *testing.T) {
	ws := newWorkspace(t, map[string]string{"pkg/m.py": "def f():\n    pass\n"})

	out, err := execute(t, "-w", ws, "view")
	require.NoError(t, err)
	assert.Equal(t, "0 "+filepath.Base(ws)+"/\n  0.0 pkg/ ...\n", out)

	out, err = execute(t, "-w", ws, "expand", "0.0")
	require.NoError(t, err)
	assert.Contains(t, out, "      0.0.0.0.0 pass")

	out, err = execute(t, "-w", ws, "source", "0.0.0.0")
	require.NoError(t, err)
	assert.Equal(t, "def f():\n    pass\n", out)
}

func TestDeleteCommand_Root(t *testing.T) {
	ws := newWorkspace(t, map[string]string{"a.py": "x = 1\n"})

	_, err := execute(t, "-w", ws, "delete", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot delete root")
}

func TestServeSession(t *testing.T) {
	ws := newWorkspace(t, map[string]string{"a.py": "a = 1\nb = 2\n"})
	logger = zap.NewNop()
	wsRoot = ws
	cfg = config.DefaultConfig()

	p, registry, err := openProject(context.Background())
	require.NoError(t, err)
	defer p.Close()

	in := strings.Join([]string{
		`{"id": 1, "tool": "expand", "args": {"label": "0.0"}}`,
		`{"id": 2, "tool": "delete_node", "args": {"label": "0.0.0"}}`,
		``,
		`{"id": 3, "tool": "delete_node", "args": {"label": "0"}}`,
		`not json`,
		`{"id": "w", "tool": "write_changes"}`,
		`{"id": 5, "tool": "list_tools"}`,
		`{"id": 6, "tool": "nope"}`,
		`{"id": 7, "tool": "list_tools", "args": {"category": "/edit"}}`,
	}, "\n")

	var out bytes.Buffer
	require.NoError(t, serveSession(context.Background(), p, registry, strings.NewReader(in), &out))

	var responses []sessionResponse
	sc := bufio.NewScanner(&out)
	sc.Buffer(make([]byte, 64*1024), maxRequestBytes)
	for sc.Scan() {
		var r sessionResponse
		require.NoError(t, json.Unmarshal(sc.Bytes(), &r))
		responses = append(responses, r)
	}
	require.Len(t, responses, 8)

	assert.True(t, responses[0].OK)
	assert.Equal(t, "0.0 a.py\n  0.0.0 a = 1\n  0.0.1 b = 2", responses[0].Result)
	assert.Equal(t, float64(1), responses[0].ID)
	assert.NotEmpty(t, responses[0].RequestID)

	assert.Equal(t, "Deleted node with label 0.0.0.", responses[1].Result)

	assert.False(t, responses[2].OK)
	assert.Contains(t, responses[2].Error, "cannot delete root")

	assert.False(t, responses[3].OK)
	assert.Contains(t, responses[3].Error, "invalid request")

	assert.Equal(t, "w", responses[4].ID)
	assert.Equal(t, "Wrote 1 file(s).", responses[4].Result)

	var listed []toolInfo
	require.NoError(t, json.Unmarshal([]byte(responses[5].Result), &listed))
	require.Len(t, listed, 9)
	assert.Equal(t, "delete_node", listed[0].Name)
	assert.True(t, listed[0].Mutates)

	assert.False(t, responses[6].OK)
	assert.Contains(t, responses[6].Error, "tool not found")

	var edits []toolInfo
	require.NoError(t, json.Unmarshal([]byte(responses[7].Result), &edits))
	var names []string
	for _, info := range edits {
		assert.Equal(t, "/edit", info.Category)
		names = append(names, info.Name)
	}
	assert.Equal(t, []string{"delete_node", "insert_child", "update_node", "write_changes"}, names)

	data, err := os.ReadFile(filepath.Join(ws, "a.py"))
	require.NoError(t, err)
	assert.Equal(t, "b = 2\n", string(data))
}

func TestToolsCommand_Category(t *testing.T) {
	ws := newWorkspace(t, map[string]string{"a.py": "x = 1\n"})

	out, err := execute(t, "-w", ws, "tools", "--category", "/browse")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "expand "))
	assert.NotContains(t, out, "update_node")
	assert.NotContains(t, out, "(mutates)")

	out, err = execute(t, "-w", ws, "tools")
	require.NoError(t, err)
	assert.Contains(t, out, "write_changes")
	assert.Contains(t, out, "(mutates)")
}
