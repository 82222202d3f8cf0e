package codetree

import (
	"fmt"
	"regexp"

	"codetree/internal/logging"
	"codetree/internal/types"
)

// Find returns the nodes beneath and including label whose untruncated
// description matches re, in pre-order. A non-empty kind restricts matches
// to that kind name ("function", "class", ...). limit <= 0 means no limit.
func (p *Project) Find(label string, re *regexp.Regexp, kind string, limit int) ([]*Node, error) {
	start, err := p.tree.Lookup(label)
	if err != nil {
		return nil, err
	}
	if kind != "" {
		if _, ok := types.ParseKind(kind); !ok {
			return nil, fmt.Errorf("%w: unknown kind %q", ErrUnsupported, kind)
		}
	}

	var found []*Node
	p.tree.walk(start.id, func(n *Node) {
		if limit > 0 && len(found) >= limit {
			return
		}
		if kind != "" && n.kind.String() != kind {
			return
		}
		if re.MatchString(n.Description(0)) {
			found = append(found, n)
		}
	})
	logging.ViewDebug("Find: %s under %s matched %d node(s)", re, label, len(found))
	return found, nil
}
