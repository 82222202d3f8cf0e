package codetree

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteChanges_Idempotent(t *testing.T) {
	p, root := openProject(t, map[string]string{"a.py": "x = 1\n", "b.py": "y = 2\n"})

	_, err := p.UpdateNode(context.Background(), "0.0.0", "x = 10")
	require.NoError(t, err)

	n, err := p.Tree().WriteChanges()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "x = 10\n", readFile(t, filepath.Join(root, "a.py")))

	info, err := os.Stat(filepath.Join(root, "a.py"))
	require.NoError(t, err)

	n, err = p.Tree().WriteChanges()
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	after, err := os.Stat(filepath.Join(root, "a.py"))
	require.NoError(t, err)
	assert.Equal(t, info.ModTime(), after.ModTime())
}

func TestWriteChanges_SkipsUnchangedContent(t *testing.T) {
	p, _ := openProject(t, map[string]string{"a.py": "x = 1\n"})

	_, err := p.UpdateNode(context.Background(), "0.0.0", "x = 1")
	require.NoError(t, err)
	assert.True(t, mustNode(t, p, "0.0").Dirty())
	assert.Empty(t, p.Pending())

	status, err := p.WriteChanges()
	require.NoError(t, err)
	assert.Equal(t, "Wrote 0 file(s).", status)
	assert.False(t, mustNode(t, p, "0.0").Dirty())
}

func TestWriteChanges_PreservesStringLiterals(t *testing.T) {
	src := `"""Module doc
    keeps   its spacing.
"""


class A:
    r'''Raw   doc.

        Indented detail.
    '''

    NAME = 'single'

    def m(self):
        return "x" 'y'
`
	p, root := openProject(t, map[string]string{"a.py": src})

	// Dirty the file through an unrelated node.
	_, err := p.UpdateNode(context.Background(), "0.0.1.1", "NAME = 'double'")
	require.NoError(t, err)

	_, err = p.WriteChanges()
	require.NoError(t, err)

	got := readFile(t, filepath.Join(root, "a.py"))
	assert.Contains(t, got, "\"\"\"Module doc\n    keeps   its spacing.\n\"\"\"")
	assert.Contains(t, got, "    r'''Raw   doc.\n\n        Indented detail.\n    '''")
	assert.Contains(t, got, "NAME = 'double'")
	assert.Equal(t, `"""Module doc
    keeps   its spacing.
"""`, mustSource(t, p, "0.0.0"))
}

func TestWriteChanges_KeepsCommentsBetweenClauses(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"before else", "if x:\n    a()\n# keep me\nelse:\n    b()\n"},
		{"before elif", "if x:\n    a()\n# other case\nelif y:\n    b()\n"},
		{"before except", "try:\n    a()\n\n# note\n\nexcept E:\n    b()\n"},
		{"before finally", "try:\n    a()\nexcept E:\n    b()\n# before finally\nfinally:\n    c()\n"},
		{"before for else", "for i in y:\n    a()\n# c\nelse:\n    b()\n"},
		{"inside body", "while go():\n    a()\n    # still body\nelse:\n    b()\n"},
		{"nested clause", "def f():\n    if x:\n        a()\n    # keep\n    else:\n        b()\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, root := openProject(t, map[string]string{"a.py": "x = 1\n" + tt.body})

			_, err := p.UpdateNode(context.Background(), "0.0.0", "x = 2")
			require.NoError(t, err)
			_, err = p.WriteChanges()
			require.NoError(t, err)
			assert.Equal(t, "x = 2\n"+tt.body, readFile(t, filepath.Join(root, "a.py")))
		})
	}
}

func TestNode_DescriptionSkipsLeadingComment(t *testing.T) {
	p, _ := openProject(t, map[string]string{"a.py": "if x:\n    a()\n# keep me\nelse:\n    b()\n"})
	assert.Equal(t, "else:", mustNode(t, p, "0.0.0.1").Description(0))
}

func TestWriteChanges_RoundTripsFormattedFile(t *testing.T) {
	src := "import os\n\n\nclass A:\n    '''Doc.'''\n\n    @property\n    def m(self):\n        if self.x:\n            return 1\n        elif self.y:\n            return 2\n        else:\n            return [i for i in os.listdir()]\n"
	p, _ := openProject(t, map[string]string{"a.py": src})

	assert.Equal(t, src, mustSource(t, p, "0.0"))
}

func TestWriteChanges_FailureLeavesDirty(t *testing.T) {
	p, root := openProject(t, map[string]string{"pkg/a.py": "x = 1\n", "b.py": "y = 2\n"})
	ctx := context.Background()

	_, err := p.UpdateNode(ctx, "0.1.0.0", "x = 2")
	require.NoError(t, err)
	_, err = p.UpdateNode(ctx, "0.0.0", "y = 3")
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(filepath.Join(root, "pkg")))

	status, err := p.WriteChanges()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIO)
	assert.Equal(t, "Wrote 1 file(s).", status)

	assert.True(t, mustNode(t, p, "0.1.0").Dirty(), "failed file stays dirty for retry")
	assert.False(t, mustNode(t, p, "0.0").Dirty())
	assert.Equal(t, "y = 3\n", readFile(t, filepath.Join(root, "b.py")))
}

func TestPending(t *testing.T) {
	p, root := openProject(t, map[string]string{"a.py": "x = 1\n"})

	_, err := p.InsertChild(context.Background(), "0.0", "y = 2", "")
	require.NoError(t, err)

	pending := p.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, "0.0", pending[0].Label)
	assert.Equal(t, filepath.Join(root, "a.py"), pending[0].Path)
	assert.Equal(t, "x = 1\ny = 2\n", pending[0].Content)
	assert.Equal(t, "x = 1\n", readFile(t, filepath.Join(root, "a.py")))
}

// =============================================================================
// REFRESH
// =============================================================================

func TestRefresh_ReparsesExternalEdit(t *testing.T) {
	p, root := openProject(t, map[string]string{"a.py": "x = 1\n"})
	path := filepath.Join(root, "a.py")
	require.NoError(t, os.WriteFile(path, []byte("x = 1\ny = 2\n"), 0o644))

	n, changed, err := p.Refresh(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "0.0", n.Label())
	assert.Equal(t, "y = 2", mustSource(t, p, "0.0.1"))
}

func TestRefresh_KeepsDirtyFile(t *testing.T) {
	p, root := openProject(t, map[string]string{"a.py": "x = 1\n"})
	ctx := context.Background()
	_, err := p.UpdateNode(ctx, "0.0.0", "x = 5")
	require.NoError(t, err)

	path := filepath.Join(root, "a.py")
	require.NoError(t, os.WriteFile(path, []byte("z = 0\n"), 0o644))

	_, changed, err := p.Refresh(ctx, path)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, "x = 5", mustSource(t, p, "0.0.0"))
}

func TestRefresh_AddsAndDropsEntries(t *testing.T) {
	p, root := openProject(t, map[string]string{"b.py": "x = 1\n"})
	ctx := context.Background()

	added := filepath.Join(root, "a.py")
	require.NoError(t, os.WriteFile(added, []byte("def f():\n    pass\n"), 0o644))
	n, changed, err := p.Refresh(ctx, added)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "0.0", n.Label())
	assert.Equal(t, "b.py", mustNode(t, p, "0.1").Description(0))

	require.NoError(t, os.Remove(added))
	n, changed, err = p.Refresh(ctx, added)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Nil(t, n)
	assert.Equal(t, "b.py", mustNode(t, p, "0.0").Description(0))

	_, changed, err = p.Refresh(ctx, filepath.Join(root, "__pycache__"))
	require.NoError(t, err)
	assert.False(t, changed)
}
