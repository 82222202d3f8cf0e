package world

import (
	"errors"
	"fmt"

	"codetree/internal/types"
)

// ErrSyntax is returned (wrapped in *SyntaxError) when source text does not parse.
var ErrSyntax = errors.New("syntax error")

// SyntaxError reports the first position where the parser gave up.
type SyntaxError struct {
	Line   int // 1-based
	Column int // 1-based
	Near   string
}

func (e *SyntaxError) Error() string {
	if e.Near == "" {
		return fmt.Sprintf("syntax error at line %d, column %d", e.Line, e.Column)
	}
	return fmt.Sprintf("syntax error at line %d, column %d near %q", e.Line, e.Column, e.Near)
}

// Unwrap lets callers match with errors.Is(err, ErrSyntax).
func (e *SyntaxError) Unwrap() error {
	return ErrSyntax
}

// Construct is one classified piece of source with the exact text it was
// parsed from. Compound constructs keep their header separately from the
// body; the body is represented by Children.
type Construct struct {
	Kind types.NodeKind
	Name string

	// Header is the verbatim text from the first decorator or keyword up to
	// and including the ':' that opens the body. Empty for leaves.
	Header string

	// Text is the verbatim span of the whole construct.
	Text string

	// Indent is the leading whitespace of the construct's first line.
	// Continuation lines of Header and Text still carry their original
	// absolute indentation.
	Indent string

	// Gap is the number of blank lines directly above the construct (max 2).
	Gap int

	StartLine int // 1-based, inclusive
	EndLine   int // 1-based, inclusive

	Children []*Construct
}

// Walk visits c and every descendant in pre-order.
func (c *Construct) Walk(fn func(*Construct)) {
	fn(c)
	for _, child := range c.Children {
		child.Walk(fn)
	}
}
