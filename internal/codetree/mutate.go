package codetree

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"codetree/internal/logging"
	"codetree/internal/types"
	"codetree/internal/world"
)

// Update replaces the payload and children of the node at label with the
// construct parsed from code. The node keeps its id, label and parent.
// A File accepts any number of constructs and replaces all of its children.
// Validation happens before any change, so a failed call leaves the tree as
// it was.
func (t *Tree) Update(ctx context.Context, label, code string) (*Node, error) {
	n, err := t.Lookup(label)
	if err != nil {
		return nil, err
	}

	switch n.kind {
	case types.KindDirectory:
		return nil, fmt.Errorf("%w: cannot update directory %s", ErrUnsupported, n.label)
	case types.KindError:
		return nil, fmt.Errorf("%w: %s is an error placeholder; update the enclosing file instead", ErrUnsupported, n.label)
	case types.KindFile:
		return n, t.updateFile(ctx, n, code)
	}

	cs, err := t.parseFragment(ctx, n, code, n.kind)
	if err != nil {
		return nil, err
	}
	if len(cs) != 1 {
		return nil, fmt.Errorf("%w: %s %s accepts exactly one construct, got %d",
			ErrCardinality, n.kind, n.label, len(cs))
	}
	c := cs[0]
	if !accepts(n.kind, c.Kind) {
		return nil, fmt.Errorf("%w: cannot replace %s %s with %s", ErrKindMismatch, n.kind, n.label, c.Kind)
	}

	t.clearChildren(n)
	n.setPayload(c)
	t.addConstructs(n, c.Children)
	t.anchorStrings(n, t.emitIndent(n), t.unitOf(n))
	t.relabel(n.id)
	t.markDirty(n.id)

	logging.MutationDebug("Update: %s now %s (%d children)", n.label, n.kind, len(n.children))
	return n, nil
}

// accepts reports whether a construct of kind got may take the place of a
// node of kind target.
func accepts(target, got types.NodeKind) bool {
	switch {
	case target.IsLeafConstruct():
		return !got.IsSatellite() && got != types.KindCase
	case target.IsFunction():
		return got.IsFunction()
	default:
		return got == target
	}
}

func (t *Tree) updateFile(ctx context.Context, f *Node, code string) error {
	if f.inert {
		return fmt.Errorf("%w: %s is not a parsed source file", ErrUnsupported, f.label)
	}
	cs, err := t.parseFragment(ctx, f, code, types.KindFile)
	if err != nil {
		return err
	}

	t.clearChildren(f)
	if unit := detectUnit(cs); unit != "" {
		f.unit = unit
	}
	t.addConstructs(f, cs)
	for _, c := range f.children {
		t.anchorStrings(t.nodes[c], "", f.unit)
	}
	t.relabel(f.id)
	f.dirty = true

	logging.MutationDebug("Update: file %s replaced with %d constructs", f.label, len(cs))
	return nil
}

// Insert parses code as exactly one construct and appends it as the last
// child of the node at label. Under a ControlFlow node it still renders in
// the body, above any satellite clause; a Match node only takes case clauses.
// Into a Directory, filename is required and a new file holding code is
// created on disk.
func (t *Tree) Insert(ctx context.Context, label, code, filename string) (*Node, error) {
	parent, err := t.Lookup(label)
	if err != nil {
		return nil, err
	}

	switch {
	case parent.kind == types.KindDirectory:
		return t.createFile(ctx, parent, filename, code)
	case filename != "":
		return nil, fmt.Errorf("%w: a filename only applies when inserting into a directory", ErrUnsupported)
	case parent.kind == types.KindError:
		return nil, fmt.Errorf("%w: cannot insert into error placeholder %s", ErrUnsupported, parent.label)
	case parent.kind == types.KindFile && parent.inert:
		return nil, fmt.Errorf("%w: %s is not a parsed source file", ErrUnsupported, parent.label)
	case parent.kind == types.KindFile && t.hasError(parent):
		return nil, fmt.Errorf("%w: %s has syntax errors; update the file node to repair it", ErrUnsupported, parent.label)
	case parent.kind.IsLeafConstruct():
		return nil, fmt.Errorf("%w: %s %s cannot hold children", ErrUnsupported, parent.kind, parent.label)
	}

	want := types.KindStatement
	if parent.kind == types.KindMatch {
		want = types.KindCase
	}
	cs, err := t.parseFragment(ctx, parent, code, want)
	if err != nil {
		return nil, err
	}
	if len(cs) != 1 {
		return nil, fmt.Errorf("%w: insert takes exactly one construct, got %d", ErrCardinality, len(cs))
	}
	c := cs[0]
	if (parent.kind == types.KindMatch) != (c.Kind == types.KindCase) {
		return nil, fmt.Errorf("%w: cannot insert %s into %s %s", ErrKindMismatch, c.Kind, parent.kind, parent.label)
	}

	child := t.addConstruct(parent, c, -1)
	child.gap = insertGap(parent.kind, c.Kind)
	t.anchorStrings(child, t.emitIndent(child), t.unitOf(child))
	t.relabel(parent.id)
	t.markDirty(parent.id)

	logging.MutationDebug("Insert: %s %s under %s", child.kind, child.label, parent.label)
	return child, nil
}

// insertGap is the number of blank lines placed before an inserted construct.
func insertGap(parent, kind types.NodeKind) int {
	if !kind.IsFunction() && kind != types.KindClass {
		return 0
	}
	if parent == types.KindFile {
		return 2
	}
	return 1
}

// createFile writes a new file into dir and attaches it in name order.
func (t *Tree) createFile(ctx context.Context, dir *Node, filename, code string) (*Node, error) {
	if filename == "" {
		return nil, fmt.Errorf("%w: inserting into directory %s requires a filename", ErrUnsupported, dir.label)
	}
	if dir.opaque {
		return nil, fmt.Errorf("%w: hidden directory %s is not part of the tree", ErrUnsupported, dir.label)
	}
	if filename != filepath.Base(filename) || filename == "." || filename == ".." || strings.ContainsAny(filename, `/\`) {
		return nil, fmt.Errorf("%w: invalid filename %q", ErrUnsupported, filename)
	}

	abs := filepath.Join(dir.path, filename)
	if _, err := os.Lstat(abs); err == nil {
		return nil, fmt.Errorf("%w: %s already exists", ErrIO, abs)
	}

	if code != "" && !strings.HasSuffix(code, "\n") {
		code += "\n"
	}
	if t.scanner.IsSourcePath(filename) {
		if p := t.parsers.GetParser(filename); p != nil {
			if _, err := p.Parse(ctx, []byte(code)); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrParse, err)
			}
		}
	}

	if err := os.WriteFile(abs, []byte(code), 0o644); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	n := t.buildEntry(ctx, dir, abs, t.sortedPos(dir, filename))
	if n == nil {
		_ = os.Remove(abs)
		return nil, fmt.Errorf("%w: %s is excluded from the tree", ErrUnsupported, filename)
	}
	t.relabel(dir.id)

	logging.Mutation("Insert: created %s as %s", abs, n.label)
	return n, nil
}

// Delete removes the node at label and relabels its former siblings. File
// and Directory nodes are removed from disk first, a directory with all of
// its contents; if that fails the tree is left unchanged.
func (t *Tree) Delete(label string) (*Node, error) {
	n, err := t.Lookup(label)
	if err != nil {
		return nil, err
	}
	if n.id == t.root {
		return nil, ErrRootDelete
	}
	parent := t.nodes[n.parent]

	switch n.kind {
	case types.KindFile:
		if err := removePath(n.path); err != nil {
			return nil, err
		}
	case types.KindDirectory:
		if err := removeAll(n.path); err != nil {
			return nil, err
		}
	case types.KindError:
		if parent.kind == types.KindFile {
			return nil, fmt.Errorf("%w: %s is an error placeholder; update the enclosing file instead", ErrUnsupported, n.label)
		}
	}

	removed := *n
	t.detach(n.id)
	if removed.kind != types.KindFile && removed.kind != types.KindDirectory {
		t.markDirty(parent.id)
	}
	t.relabel(parent.id)

	logging.MutationDebug("Delete: %s %s removed from %s", removed.kind, removed.label, parent.label)
	return &removed, nil
}

func removePath(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}

// removeAll deletes a directory tree. os.RemoveAll already treats a missing
// path as success.
func removeAll(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}

// parseFragment parses code with the parser of the file that owns n.
func (t *Tree) parseFragment(ctx context.Context, n *Node, code string, target types.NodeKind) ([]*world.Construct, error) {
	f := t.owningFile(n.id)
	if f == nil {
		return nil, fmt.Errorf("%w: %s is not inside a file", ErrUnsupported, n.label)
	}
	p := t.parsers.GetParser(f.path)
	if p == nil {
		return nil, fmt.Errorf("%w: no parser for %s", ErrUnsupported, filepath.Base(f.path))
	}
	cs, err := world.ParseFragment(ctx, p, code, target)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return cs, nil
}
