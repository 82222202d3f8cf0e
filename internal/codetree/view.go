package codetree

import (
	"strings"
)

// collapsedMarker trails a node whose children are hidden.
const collapsedMarker = " ..."

// LineCount returns the number of display lines of the subtree at id when
// fully expanded: one for the node plus the counts of its children.
func (t *Tree) LineCount(id NodeID) int {
	n := t.nodes[id]
	if n == nil {
		return 0
	}
	count := 1
	for _, c := range n.children {
		count += t.LineCount(c)
	}
	return count
}

func (t *Tree) countLines(id NodeID, counts map[NodeID]int) int {
	n := t.nodes[id]
	count := 1
	for _, c := range n.children {
		count += t.countLines(c, counts)
	}
	counts[id] = count
	return count
}

// ExpansionFor returns the expansion set used to show the subtree at label:
// the label itself, plus every descendant when the subtree is small.
func (t *Tree) ExpansionFor(label string) (map[string]bool, error) {
	n, err := t.Lookup(label)
	if err != nil {
		return nil, err
	}
	expanded := map[string]bool{n.label: true}
	if t.LineCount(n.id) <= t.view.SmallSubtreeLines {
		t.walk(n.id, func(d *Node) { expanded[d.label] = true })
	}
	return expanded, nil
}

// Render draws the subtree at label, one "label description" line per
// visible node. A node's children are visible when its label is in
// expanded, when they are within the shallow depth of the rendered root,
// or when the subtree is small and holds an expanded descendant.
func (t *Tree) Render(label string, expanded map[string]bool) (string, error) {
	n, err := t.Lookup(label)
	if err != nil {
		return "", err
	}
	return t.render(n, expanded, false), nil
}

// RenderAll draws the subtree at label with every node expanded.
func (t *Tree) RenderAll(label string) (string, error) {
	n, err := t.Lookup(label)
	if err != nil {
		return "", err
	}
	return t.render(n, nil, true), nil
}

func (t *Tree) render(n *Node, expanded map[string]bool, full bool) string {
	counts := make(map[NodeID]int)
	t.countLines(n.id, counts)

	var b strings.Builder
	t.renderNode(&b, n, 0, expanded, counts, full)
	return strings.TrimSuffix(b.String(), "\n")
}

func (t *Tree) renderNode(b *strings.Builder, n *Node, depth int, expanded map[string]bool, counts map[NodeID]int, full bool) {
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(n.label)
	if desc := n.Description(t.view.DescriptionWidth); desc != "" {
		b.WriteByte(' ')
		b.WriteString(desc)
	}
	if len(n.children) == 0 {
		b.WriteByte('\n')
		return
	}
	if !full && !t.showChildren(n, depth, expanded, counts) {
		b.WriteString(collapsedMarker)
		b.WriteByte('\n')
		return
	}
	b.WriteByte('\n')
	for _, c := range n.children {
		t.renderNode(b, t.nodes[c], depth+1, expanded, counts, full)
	}
}

func (t *Tree) showChildren(n *Node, depth int, expanded map[string]bool, counts map[NodeID]int) bool {
	if expanded[n.label] {
		return true
	}
	if depth+1 < t.view.ShallowDepth {
		return true
	}
	return counts[n.id] <= t.view.SmallSubtreeLines && hasExpandedBelow(n.label, expanded)
}

func hasExpandedBelow(label string, expanded map[string]bool) bool {
	prefix := label + "."
	for l, ok := range expanded {
		if ok && strings.HasPrefix(l, prefix) {
			return true
		}
	}
	return false
}
