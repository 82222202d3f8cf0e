package codetree

import (
	"fmt"
	"strings"

	"codetree/internal/config"
	"codetree/internal/types"
	"codetree/internal/world"
)

// Tree is the node arena. Nodes refer to each other by id; labels are a
// view over the arena rebuilt after every structural edit.
//
// A Tree is not safe for concurrent use. Labels obtained before a mutating
// call may address a different node afterwards.
type Tree struct {
	nodes map[NodeID]*Node
	root  NodeID
	next  NodeID

	scanner *world.Scanner
	parsers *world.ParserFactory
	view    config.ViewConfig
}

func newTree(scanner *world.Scanner, parsers *world.ParserFactory, view config.ViewConfig) *Tree {
	return &Tree{
		nodes:   make(map[NodeID]*Node),
		root:    noParent,
		scanner: scanner,
		parsers: parsers,
		view:    view,
	}
}

// Root returns the root Directory node.
func (t *Tree) Root() *Node { return t.nodes[t.root] }

// Node returns the node with the given id, or nil.
func (t *Tree) Node(id NodeID) *Node { return t.nodes[id] }

// Len returns the number of nodes in the arena.
func (t *Tree) Len() int { return len(t.nodes) }

func (t *Tree) newNode(kind types.NodeKind, parent NodeID) *Node {
	n := &Node{id: t.next, kind: kind, parent: parent}
	t.nodes[n.id] = n
	t.next++
	return n
}

// attach appends child to parent, or inserts it at pos when pos is in range.
func (t *Tree) attach(parent, child *Node, pos int) int {
	child.parent = parent.id
	if pos < 0 || pos >= len(parent.children) {
		parent.children = append(parent.children, child.id)
		return len(parent.children) - 1
	}
	parent.children = append(parent.children, 0)
	copy(parent.children[pos+1:], parent.children[pos:])
	parent.children[pos] = child.id
	return pos
}

// detach removes id from its parent's children and drops its subtree from the arena.
func (t *Tree) detach(id NodeID) {
	n := t.nodes[id]
	if n == nil {
		return
	}
	if p := t.nodes[n.parent]; p != nil {
		for i, c := range p.children {
			if c == id {
				p.children = append(p.children[:i], p.children[i+1:]...)
				break
			}
		}
	}
	t.discard(id)
}

// discard removes a subtree from the arena without touching its parent.
func (t *Tree) discard(id NodeID) {
	n := t.nodes[id]
	if n == nil {
		return
	}
	for _, c := range n.children {
		t.discard(c)
	}
	delete(t.nodes, id)
}

// clearChildren discards every child of n.
func (t *Tree) clearChildren(n *Node) {
	for _, c := range n.children {
		t.discard(c)
	}
	n.children = nil
}

// addConstructs builds nodes for cs beneath parent.
func (t *Tree) addConstructs(parent *Node, cs []*world.Construct) {
	for _, c := range cs {
		t.addConstruct(parent, c, -1)
	}
}

func (t *Tree) addConstruct(parent *Node, c *world.Construct, pos int) *Node {
	n := t.newNode(c.Kind, parent.id)
	n.setPayload(c)
	n.gap = c.Gap
	t.attach(parent, n, pos)
	t.addConstructs(n, c.Children)
	return n
}

// relabel reassigns labels to every descendant of id, in order.
func (t *Tree) relabel(id NodeID) {
	n := t.nodes[id]
	for i, c := range n.children {
		child := t.nodes[c]
		child.label = types.ChildLabel(n.label, i)
		t.relabel(c)
	}
}

// Lookup resolves a label by descending from the root one position at a time.
func (t *Tree) Lookup(label string) (*Node, error) {
	path, err := types.ParseLabel(strings.TrimSpace(label))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	n := t.nodes[t.root]
	for _, pos := range path {
		if pos >= len(n.children) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, label)
		}
		n = t.nodes[n.children[pos]]
	}
	return n, nil
}

// owningFile walks up from id to the nearest File node.
func (t *Tree) owningFile(id NodeID) *Node {
	for n := t.nodes[id]; n != nil; n = t.nodes[n.parent] {
		if n.kind == types.KindFile {
			return n
		}
	}
	return nil
}

// markDirty flags the nearest File ancestor of id as needing write-back.
func (t *Tree) markDirty(id NodeID) *Node {
	f := t.owningFile(id)
	if f != nil {
		f.dirty = true
	}
	return f
}

// findPath returns the Directory or File node for an absolute path.
func (t *Tree) findPath(path string) *Node {
	var found *Node
	var visit func(id NodeID)
	visit = func(id NodeID) {
		n := t.nodes[id]
		if found != nil || n == nil {
			return
		}
		if n.path == path {
			found = n
			return
		}
		if n.kind != types.KindDirectory {
			return
		}
		if !strings.HasPrefix(path, n.path) {
			return
		}
		for _, c := range n.children {
			visit(c)
		}
	}
	visit(t.root)
	return found
}

// walk visits every node beneath and including id in pre-order.
func (t *Tree) walk(id NodeID, fn func(*Node)) {
	n := t.nodes[id]
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.children {
		t.walk(c, fn)
	}
}
