package codetree

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"codetree/internal/logging"
	"codetree/internal/types"
	"codetree/internal/world"
)

// build assembles the whole tree from the directory at abs.
func (t *Tree) build(ctx context.Context, abs string) error {
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrIO, abs)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}

	root := t.newNode(types.KindDirectory, noParent)
	root.path = abs
	root.label = types.RootLabel
	t.root = root.id

	for _, e := range entries {
		t.buildEntry(ctx, root, filepath.Join(abs, e.Name()), -1)
	}
	t.relabel(root.id)
	return nil
}

// buildEntry assembles the filesystem entry at abs beneath parent. It returns
// nil when the entry is excluded from the tree. Read failures become Error
// nodes in the entry's slot.
func (t *Tree) buildEntry(ctx context.Context, parent *Node, abs string, pos int) *Node {
	info, err := os.Lstat(abs)
	if err != nil {
		return t.addError(parent, abs, err, pos)
	}

	switch policy := t.scanner.Classify(abs, info); policy {
	case world.EntrySkip:
		return nil

	case world.EntryOpaque:
		n := t.newNode(types.KindDirectory, parent.id)
		n.path = abs
		n.opaque = true
		t.attach(parent, n, pos)
		return n

	case world.EntryDirectory:
		entries, err := os.ReadDir(abs)
		if err != nil {
			return t.addError(parent, abs, err, pos)
		}
		n := t.newNode(types.KindDirectory, parent.id)
		n.path = abs
		t.attach(parent, n, pos)
		for _, e := range entries {
			t.buildEntry(ctx, n, filepath.Join(abs, e.Name()), -1)
		}
		return n

	default:
		n := t.newNode(types.KindFile, parent.id)
		n.path = abs
		n.unit = defaultUnit
		n.inert = policy == world.EntryInert || !t.parsers.HasParser(abs)
		if n.inert {
			t.attach(parent, n, pos)
			return n
		}
		data, err := os.ReadFile(abs)
		if err != nil {
			delete(t.nodes, n.id)
			return t.addError(parent, abs, err, pos)
		}
		t.attach(parent, n, pos)
		t.parseFile(ctx, n, data)
		return n
	}
}

func (t *Tree) addError(parent *Node, abs string, cause error, pos int) *Node {
	logging.TreeWarn("Assembler: %s: %v", abs, cause)
	n := t.newNode(types.KindError, parent.id)
	n.path = abs
	n.message = cause.Error()
	t.attach(parent, n, pos)
	return n
}

// parseFile replaces the children of f with the constructs parsed from data.
// A file that does not parse holds a single Error child.
func (t *Tree) parseFile(ctx context.Context, f *Node, data []byte) {
	t.clearChildren(f)
	f.content = string(data)
	f.dirty = false

	cs, err := t.parsers.Parse(ctx, f.path, data)
	if err != nil {
		logging.ParseWarn("Assembler: %s: %v", f.path, err)
		e := t.newNode(types.KindError, f.id)
		e.message = err.Error()
		t.attach(f, e, -1)
		return
	}
	if unit := detectUnit(cs); unit != "" {
		f.unit = unit
	}
	t.addConstructs(f, cs)
}

// hasError reports whether a File holds the Error placeholder of a failed parse.
func (t *Tree) hasError(f *Node) bool {
	for _, c := range f.children {
		if t.nodes[c].kind == types.KindError {
			return true
		}
	}
	return false
}

// detectUnit returns the indentation step of the first nested block in cs,
// or "" when cs has no indented block.
func detectUnit(cs []*world.Construct) string {
	for _, c := range cs {
		if !c.Kind.IsCompound() {
			continue
		}
		for _, child := range c.Children {
			if child.Kind.IsSatellite() {
				continue
			}
			if len(child.Indent) > len(c.Indent) && strings.HasPrefix(child.Indent, c.Indent) {
				return child.Indent[len(c.Indent):]
			}
			break
		}
		if unit := detectUnit(c.Children); unit != "" {
			return unit
		}
	}
	return ""
}

// sortedPos returns the index at which an entry named name keeps dir's
// children in name order.
func (t *Tree) sortedPos(dir *Node, name string) int {
	for i, c := range dir.children {
		if filepath.Base(t.nodes[c].path) > name {
			return i
		}
	}
	return -1
}
