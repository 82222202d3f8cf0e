package codetree

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"codetree/internal/logging"
	"codetree/internal/types"
)

// PendingFile is the regenerated content of a dirty file.
type PendingFile struct {
	Label   string
	Path    string
	Content string
}

// dirtyFiles returns the dirty File nodes in depth-first order.
func (t *Tree) dirtyFiles() []*Node {
	var out []*Node
	t.walk(t.root, func(n *Node) {
		if n.kind == types.KindFile && n.dirty {
			out = append(out, n)
		}
	})
	return out
}

// Pending returns what WriteChanges would write, without touching disk.
func (t *Tree) Pending() []PendingFile {
	var out []PendingFile
	for _, f := range t.dirtyFiles() {
		content := t.fileContent(f)
		if content == f.content {
			continue
		}
		out = append(out, PendingFile{Label: f.label, Path: f.path, Content: content})
	}
	return out
}

// WriteChanges regenerates every dirty file and writes those whose content
// differs from disk. It returns the number of files written. A file that
// fails to write stays dirty; failures are joined into the returned error.
func (t *Tree) WriteChanges() (int, error) {
	written := 0
	var errs []error
	for _, f := range t.dirtyFiles() {
		content := t.fileContent(f)
		if content == f.content {
			f.dirty = false
			continue
		}
		mode := os.FileMode(0o644)
		if info, err := os.Stat(f.path); err == nil {
			mode = info.Mode().Perm()
		}
		if err := os.WriteFile(f.path, []byte(content), mode); err != nil {
			logging.WritebackError("WriteChanges: %s: %v", f.path, err)
			errs = append(errs, fmt.Errorf("%w: write %s: %v", ErrIO, f.path, err))
			continue
		}
		f.content = content
		f.dirty = false
		written++
		logging.Writeback("WriteChanges: wrote %s (%d bytes)", f.path, len(content))
	}
	return written, errors.Join(errs...)
}

// Refresh brings the node for path back in line with disk after an
// external change. Dirty files are left alone so unwritten edits survive.
// It returns the affected node (nil when it was removed) and whether the
// tree changed.
func (t *Tree) Refresh(ctx context.Context, path string) (*Node, bool, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrIO, err)
	}
	n := t.findPath(abs)
	info, statErr := os.Lstat(abs)

	switch {
	case n != nil && statErr != nil:
		if n.id == t.root {
			return n, false, fmt.Errorf("%w: project root %s: %v", ErrIO, abs, statErr)
		}
		if n.dirty {
			logging.TreeWarn("Refresh: %s removed on disk but has unwritten changes", abs)
			return n, false, nil
		}
		parent := t.nodes[n.parent]
		t.detach(n.id)
		t.relabel(parent.id)
		logging.TreeDebug("Refresh: dropped %s", abs)
		return nil, true, nil

	case n != nil:
		if n.kind != types.KindFile || n.inert || n.dirty || !info.Mode().IsRegular() {
			return n, false, nil
		}
		data, err := os.ReadFile(abs)
		if err != nil {
			return n, false, fmt.Errorf("%w: %v", ErrIO, err)
		}
		if string(data) == n.content {
			return n, false, nil
		}
		t.parseFile(ctx, n, data)
		t.relabel(n.id)
		logging.TreeDebug("Refresh: reparsed %s", abs)
		return n, true, nil

	case statErr == nil:
		dir := t.findPath(filepath.Dir(abs))
		if dir == nil || dir.kind != types.KindDirectory || dir.opaque {
			return nil, false, nil
		}
		added := t.buildEntry(ctx, dir, abs, t.sortedPos(dir, info.Name()))
		if added == nil {
			return nil, false, nil
		}
		t.relabel(dir.id)
		logging.TreeDebug("Refresh: added %s as %s", abs, added.label)
		return added, true, nil
	}
	return nil, false, nil
}
