package types

import (
	"fmt"
	"strconv"
	"strings"
)

// RootLabel addresses the project root.
const RootLabel = "0"

// ChildLabel returns the label of the child at position under parent.
func ChildLabel(parent string, position int) string {
	return parent + "." + strconv.Itoa(position)
}

// ParseLabel splits a dotted-integer label into child positions below the
// root. "0" yields an empty path; "0.2.1" yields [2 1].
func ParseLabel(label string) ([]int, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, fmt.Errorf("empty label")
	}
	parts := strings.Split(label, ".")
	if parts[0] != RootLabel {
		return nil, fmt.Errorf("label %q does not start at root %q", label, RootLabel)
	}
	path := make([]int, 0, len(parts)-1)
	for _, p := range parts[1:] {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("label %q has invalid segment %q", label, p)
		}
		path = append(path, n)
	}
	return path, nil
}
