package world

import (
	"context"
	"strings"

	"codetree/internal/types"
)

// Dedent removes the whitespace prefix shared by every non-blank line, so a
// fragment copied from inside a class body parses as top-level code.
func Dedent(code string) string {
	code = strings.ReplaceAll(code, "\r\n", "\n")
	lines := strings.Split(code, "\n")

	prefix := ""
	first := true
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lead := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		if first {
			prefix = lead
			first = false
			continue
		}
		prefix = commonPrefix(prefix, lead)
		if prefix == "" {
			break
		}
	}
	if prefix == "" {
		return code
	}

	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			lines[i] = ""
			continue
		}
		lines[i] = strings.TrimPrefix(line, prefix)
	}
	return strings.Join(lines, "\n")
}

func commonPrefix(a, b string) string {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return a[:i]
}

// IndentLines prefixes every non-blank line of s with indent.
func IndentLines(s, indent string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			lines[i] = indent + line
		}
	}
	return strings.Join(lines, "\n")
}

// ParseFragment parses a snippet independently of its surrounding file.
// Clause kinds (except/else/elif/finally/case) cannot stand alone, so when
// target is one of them the snippet is wrapped in a minimal owner and the
// owner's clauses are returned instead of the owner itself.
func ParseFragment(ctx context.Context, p SourceParser, code string, target types.NodeKind) ([]*Construct, error) {
	code = Dedent(code)
	if strings.TrimSpace(code) == "" {
		return nil, nil
	}

	var wrapped string
	switch target {
	case types.KindExcept, types.KindFinally:
		wrapped = "try:\n    pass\n" + code
	case types.KindElse, types.KindElif:
		wrapped = "if True:\n    pass\n" + code
	case types.KindCase:
		wrapped = "match _:\n" + IndentLines(code, "    ")
	default:
		return p.Parse(ctx, []byte(code))
	}

	constructs, err := p.Parse(ctx, []byte(wrapped))
	if err != nil {
		return nil, err
	}
	if len(constructs) == 0 {
		return nil, nil
	}
	// Anything after the clause lands outside the owner and is returned as-is.
	return append(ownerClauses(constructs[0], target), constructs[1:]...), nil
}

// ownerClauses returns what the fragment contributed to the synthetic owner:
// satellites for try/if wrappers, every body construct for the match wrapper.
func ownerClauses(owner *Construct, target types.NodeKind) []*Construct {
	if target == types.KindCase {
		return owner.Children
	}
	var out []*Construct
	for _, child := range owner.Children {
		if child.Kind.IsSatellite() {
			out = append(out, child)
		}
	}
	return out
}
