package codetree

import (
	"path/filepath"
	"strings"

	"codetree/internal/types"
	"codetree/internal/world"
)

// NodeID identifies a node for the lifetime of a Tree. Unlike labels, ids
// never change when siblings are inserted or deleted.
type NodeID int

// noParent is the parent id of the root.
const noParent NodeID = -1

// Node is one addressable unit of the tree: a directory, a file, or a parsed
// construct. Nodes are owned by their Tree and linked by id.
type Node struct {
	id       NodeID
	kind     types.NodeKind
	label    string
	parent   NodeID
	children []NodeID

	// Construct payload.
	name   string
	header string // compound kinds only
	text   string // leaf kinds only
	indent string // first-line indentation the header/text was parsed with
	gap    int    // blank lines emitted before this node among its siblings

	// Directory and File payload.
	path    string
	content string // last-known file content on disk
	dirty   bool
	inert   bool   // file is represented but not parsed
	opaque  bool   // directory is represented but not descended into
	unit    string // indentation unit of a File

	// Error payload.
	message string
}

func (n *Node) ID() NodeID           { return n.id }
func (n *Node) Kind() types.NodeKind { return n.kind }
func (n *Node) Label() string        { return n.label }
func (n *Node) Name() string         { return n.name }

// Path returns the absolute filesystem path of a Directory or File node.
// Construct nodes return "".
func (n *Node) Path() string { return n.path }

// Dirty reports whether a File node has in-memory changes not yet written.
func (n *Node) Dirty() bool { return n.dirty }

// Inert reports whether a File node is represented without being parsed.
func (n *Node) Inert() bool { return n.inert }

// Parent returns the id of the parent node and false for the root.
func (n *Node) Parent() (NodeID, bool) {
	return n.parent, n.parent != noParent
}

// Children returns a copy of the child ids in order.
func (n *Node) Children() []NodeID {
	out := make([]NodeID, len(n.children))
	copy(out, n.children)
	return out
}

// Description is the one-line summary shown next to the label in views.
func (n *Node) Description(width int) string {
	var desc string
	switch n.kind {
	case types.KindDirectory:
		desc = filepath.Base(n.path) + "/"
		if n.opaque {
			desc += " (hidden)"
		}
	case types.KindFile:
		desc = filepath.Base(n.path)
		if n.inert {
			desc += " (not parsed)"
		}
		if n.dirty {
			desc += " [modified]"
		}
	case types.KindError:
		desc = "error: " + n.message
	case types.KindString, types.KindStatement, types.KindComprehension:
		desc = collapse(firstLine(n.text))
		if strings.Contains(n.text, "\n") {
			desc += " …"
		}
	default:
		desc = collapse(signature(n.header))
	}
	return truncate(desc, width)
}

// signature drops decorator, comment and blank lines leading a compound header.
func signature(header string) string {
	lines := strings.Split(header, "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "@") && !strings.HasPrefix(line, "#") {
			return strings.Join(lines[i:], " ")
		}
	}
	return header
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}

// setPayload copies the construct-level fields of c onto n.
func (n *Node) setPayload(c *world.Construct) {
	n.kind = c.Kind
	n.name = c.Name
	n.header = c.Header
	n.indent = c.Indent
	n.text = ""
	if !c.Kind.IsCompound() {
		n.text = c.Text
	}
}
