package codetree

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestWatcher_RefreshesOnCreate(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	p, root := openProject(t, map[string]string{"a.py": "x = 1\n"})
	w, err := NewWatcher(p)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	changed := make(chan string, 16)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(path string) { changed <- path })
	}()

	path := filepath.Join(root, "b.py")
	require.NoError(t, os.WriteFile(path, []byte("y = 2\n"), 0o644))

	select {
	case got := <-changed:
		assert.Equal(t, path, got)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}

	n := mustNode(t, p, "0.1")
	assert.Equal(t, path, n.Path())
}

func TestWatcher_StopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	p, _ := openProject(t, map[string]string{"pkg/a.py": "x = 1\n"})
	w, err := NewWatcher(p)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, w.Run(ctx, nil))
}
