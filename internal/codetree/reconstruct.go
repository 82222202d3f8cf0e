package codetree

import (
	"strings"

	"codetree/internal/types"
)

const defaultUnit = "    "

// Reconstruct regenerates the source text of a node with its first line
// indented by at. String nodes keep their original text; other constructs
// are regenerated from their payload. A File yields its full content and a
// Directory or Error node yields "".
func (t *Tree) Reconstruct(id NodeID, at string) string {
	n := t.nodes[id]
	if n == nil {
		return ""
	}
	switch n.kind {
	case types.KindFile:
		return t.fileContent(n)
	case types.KindDirectory, types.KindError:
		return ""
	}
	var b strings.Builder
	t.emit(&b, n, at, t.unitOf(n))
	return b.String()
}

func (t *Tree) unitOf(n *Node) string {
	if f := t.owningFile(n.id); f != nil && f.unit != "" {
		return f.unit
	}
	return defaultUnit
}

// emitIndent returns the indentation n is written at inside its file: one
// unit per enclosing body, satellites sharing their owner's level.
func (t *Tree) emitIndent(n *Node) string {
	depth := 0
	for cur := n; ; {
		parent := t.nodes[cur.parent]
		if parent == nil || parent.kind == types.KindFile || parent.kind == types.KindDirectory {
			break
		}
		if !cur.kind.IsSatellite() {
			depth++
		}
		cur = parent
	}
	return strings.Repeat(t.unitOf(n), depth)
}

// anchorStrings moves the continuation lines of every String in the subtree
// at n, which is written at indentation at, to sit under their first line.
// String text is otherwise emitted verbatim.
func (t *Tree) anchorStrings(n *Node, at, unit string) {
	if n.kind == types.KindString && n.indent != at {
		n.text = strings.TrimPrefix(reindent(n.text, n.indent, at), at)
		n.indent = at
	}
	for _, c := range n.children {
		child := t.nodes[c]
		if child.kind.IsSatellite() {
			t.anchorStrings(child, at, unit)
		} else {
			t.anchorStrings(child, at+unit, unit)
		}
	}
}

// fileContent regenerates the content of a File. Files that were never
// parsed, or failed to parse, keep their last-known content.
func (t *Tree) fileContent(f *Node) string {
	if f.inert || t.hasError(f) {
		return f.content
	}
	var b strings.Builder
	t.emitSiblings(&b, f.children, "", f.unit)
	if b.Len() > 0 {
		b.WriteByte('\n')
	}
	return b.String()
}

func (t *Tree) emitSiblings(b *strings.Builder, ids []NodeID, at, unit string) {
	first := true
	for _, id := range ids {
		n := t.nodes[id]
		if n.kind == types.KindError {
			continue
		}
		if !first {
			b.WriteByte('\n')
			b.WriteString(strings.Repeat("\n", n.gap))
		}
		first = false
		t.emit(b, n, at, unit)
	}
}

func (t *Tree) emit(b *strings.Builder, n *Node, at, unit string) {
	switch {
	case n.kind == types.KindString:
		b.WriteString(at)
		b.WriteString(n.text)
	case n.kind.IsLeafConstruct():
		b.WriteString(reindent(n.text, n.indent, at))
	default:
		t.emitCompound(b, n, at, unit)
	}
}

// emitCompound writes the header, the body one unit deeper, then any
// satellite clauses at the header's own indentation.
func (t *Tree) emitCompound(b *strings.Builder, n *Node, at, unit string) {
	b.WriteString(reindent(n.header, n.indent, at))

	var body, satellites []NodeID
	for _, c := range n.children {
		if t.nodes[c].kind.IsSatellite() {
			satellites = append(satellites, c)
		} else {
			body = append(body, c)
		}
	}

	b.WriteByte('\n')
	if len(body) == 0 {
		b.WriteString(at + unit + "pass")
	} else {
		t.emitSiblings(b, body, at+unit, unit)
	}

	for _, id := range satellites {
		s := t.nodes[id]
		b.WriteByte('\n')
		b.WriteString(strings.Repeat("\n", s.gap))
		t.emit(b, s, at, unit)
	}
}

// reindent moves text parsed at indentation from to indentation at.
// Continuation lines that do not start with from are left untouched.
func reindent(text, from, at string) string {
	if from == at {
		return at + text
	}
	lines := strings.Split(text, "\n")
	lines[0] = at + lines[0]
	for i := 1; i < len(lines); i++ {
		if lines[i] != "" && strings.HasPrefix(lines[i], from) {
			lines[i] = at + lines[i][len(from):]
		}
	}
	return strings.Join(lines, "\n")
}
