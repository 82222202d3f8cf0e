// Package types provides shared type definitions used across codetree packages.
// This package exists to break import cycles between world, codetree and tools.
// Types in this package should be foundational data structures with no complex dependencies.
package types

// =============================================================================
// STRUCTURAL NODE KINDS
// =============================================================================

// NodeKind classifies a structural node. The set is closed; every construct
// the parser cannot place falls back to KindStatement.
type NodeKind int

const (
	KindDirectory NodeKind = iota
	KindFile
	KindError
	KindStatement
	KindString
	KindFunction
	KindAsyncFunction
	KindClass
	KindControlFlow
	KindElif
	KindExcept
	KindElse
	KindFinally
	KindMatch
	KindCase
	KindComprehension
)

var kindNames = [...]string{
	KindDirectory:     "directory",
	KindFile:          "file",
	KindError:         "error",
	KindStatement:     "statement",
	KindString:        "string",
	KindFunction:      "function",
	KindAsyncFunction: "async_function",
	KindClass:         "class",
	KindControlFlow:   "control_flow",
	KindElif:          "elif",
	KindExcept:        "except",
	KindElse:          "else",
	KindFinally:       "finally",
	KindMatch:         "match",
	KindCase:          "case",
	KindComprehension: "comprehension",
}

func (k NodeKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// ParseKind returns the kind with the given String name.
func ParseKind(name string) (NodeKind, bool) {
	for k, n := range kindNames {
		if n == name {
			return NodeKind(k), true
		}
	}
	return 0, false
}

// IsSatellite reports whether the kind is a clause that belongs to a
// ControlFlow owner and is laid out at the owner's indentation.
func (k NodeKind) IsSatellite() bool {
	switch k {
	case KindElif, KindExcept, KindElse, KindFinally:
		return true
	}
	return false
}

// IsFunction reports whether the kind is one of the function pair.
func (k NodeKind) IsFunction() bool {
	return k == KindFunction || k == KindAsyncFunction
}

// IsCompound reports whether the kind owns a header and an indented body.
func (k NodeKind) IsCompound() bool {
	switch k {
	case KindFunction, KindAsyncFunction, KindClass, KindControlFlow, KindMatch, KindCase:
		return true
	}
	return k.IsSatellite()
}

// IsLeafConstruct reports whether the kind is a parsed construct without children.
func (k NodeKind) IsLeafConstruct() bool {
	switch k {
	case KindStatement, KindString, KindComprehension:
		return true
	}
	return false
}
