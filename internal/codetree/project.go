// Package codetree holds the addressable structural view of a source
// project: a tree of directories, files and parsed constructs, each
// addressed by a dotted label such as "0.2.1".
//
// A Project is built once from disk with Open. Callers browse it with
// Expand and ViewFullTree, edit it with UpdateNode, InsertChild and Delete,
// and flush edited files with WriteChanges. Labels are recomputed after
// every structural edit, so a label obtained before a mutating call must be
// resolved again afterwards.
package codetree

import (
	"context"
	"fmt"
	"path/filepath"

	"codetree/internal/config"
	"codetree/internal/logging"
	"codetree/internal/types"
	"codetree/internal/world"
)

// Project is one opened source tree. It is meant for a single caller; no
// operation is safe for concurrent use.
type Project struct {
	tree    *Tree
	parsers *world.ParserFactory
	cfg     *config.Config
}

// Open assembles the project rooted at the directory root. A nil cfg uses
// the defaults.
func Open(ctx context.Context, root string, cfg *config.Config) (*Project, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}

	timer := logging.StartTimer(logging.CategoryTree, "Open")
	defer timer.Stop()

	parsers := world.NewDefaultParserFactory()
	tree := newTree(world.NewScanner(abs, cfg.World), parsers, cfg.View)
	if err := tree.build(ctx, abs); err != nil {
		parsers.Close()
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		parsers.Close()
		return nil, err
	}

	logging.Tree("Opened %s: %d nodes", abs, tree.Len())
	return &Project{tree: tree, parsers: parsers, cfg: cfg}, nil
}

// Close releases parser resources. The project must not be used afterwards.
func (p *Project) Close() {
	p.parsers.Close()
}

// Tree exposes the underlying node arena.
func (p *Project) Tree() *Tree { return p.tree }

// RootPath returns the absolute path of the project root.
func (p *Project) RootPath() string { return p.tree.Root().path }

// GetNode resolves a label.
func (p *Project) GetNode(label string) (*Node, error) {
	return p.tree.Lookup(label)
}

// Expand renders a windowed view of the subtree at label. Small subtrees are
// shown in full; larger ones show one level below label.
func (p *Project) Expand(label string) (string, error) {
	expanded, err := p.tree.ExpansionFor(label)
	if err != nil {
		return "", err
	}
	logging.ViewDebug("Expand: %s seeds %d labels", label, len(expanded))
	return p.tree.Render(label, expanded)
}

// View renders the subtree at label without expanding anything.
func (p *Project) View(label string) (string, error) {
	return p.tree.Render(label, nil)
}

// ViewFullTree renders every node of the project.
func (p *Project) ViewFullTree() string {
	out, _ := p.tree.RenderAll(types.RootLabel)
	return out
}

// Source returns the regenerated source of the node at label: full content
// for a File, dedented text for a construct.
func (p *Project) Source(label string) (string, error) {
	n, err := p.tree.Lookup(label)
	if err != nil {
		return "", err
	}
	switch {
	case n.kind == types.KindDirectory:
		return "", fmt.Errorf("%w: %s is a directory", ErrUnsupported, n.label)
	case n.kind == types.KindError:
		return "", fmt.Errorf("%w: %s: %s", ErrUnsupported, n.label, n.message)
	case n.kind == types.KindFile && n.inert:
		return "", fmt.Errorf("%w: %s is not a parsed source file", ErrUnsupported, n.label)
	}
	return p.tree.Reconstruct(n.id, ""), nil
}

// UpdateNode replaces the node at label with the construct parsed from code.
func (p *Project) UpdateNode(ctx context.Context, label, code string) (string, error) {
	n, err := p.tree.Update(ctx, label, code)
	if err != nil {
		logging.MutationWarn("UpdateNode %s: %v", label, err)
		return "", err
	}
	logging.Mutation("Updated %s (%s)", n.label, n.kind)
	return fmt.Sprintf("Updated node with label %s.", n.label), nil
}

// InsertChild appends the construct parsed from code to the node at label.
// When label is a directory, filename names a new file created with code.
func (p *Project) InsertChild(ctx context.Context, label, code, filename string) (string, error) {
	n, err := p.tree.Insert(ctx, label, code, filename)
	if err != nil {
		logging.MutationWarn("InsertChild %s: %v", label, err)
		return "", err
	}
	if n.kind == types.KindFile || n.kind == types.KindError {
		return fmt.Sprintf("Created file %s with label %s.", filepath.Base(n.path), n.label), nil
	}
	logging.Mutation("Inserted %s (%s)", n.label, n.kind)
	return fmt.Sprintf("Inserted new node with label %s.", n.label), nil
}

// Delete removes the node at label. The root cannot be deleted.
func (p *Project) Delete(label string) (string, error) {
	n, err := p.tree.Delete(label)
	if err != nil {
		logging.MutationWarn("Delete %s: %v", label, err)
		return "", err
	}
	logging.Mutation("Deleted %s (%s)", n.label, n.kind)
	return fmt.Sprintf("Deleted node with label %s.", n.label), nil
}

// WriteChanges flushes every dirty file to disk.
func (p *Project) WriteChanges() (string, error) {
	n, err := p.tree.WriteChanges()
	status := fmt.Sprintf("Wrote %d file(s).", n)
	if err != nil {
		return status, err
	}
	return status, nil
}

// Pending returns the regenerated content of every dirty file.
func (p *Project) Pending() []PendingFile {
	return p.tree.Pending()
}

// Refresh re-reads path from disk. See Tree.Refresh.
func (p *Project) Refresh(ctx context.Context, path string) (*Node, bool, error) {
	return p.tree.Refresh(ctx, path)
}
