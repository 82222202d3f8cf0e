package world

import "context"

// SourceParser turns file text into ordered top-level constructs with their
// source spans. Implementations are not required to be safe for concurrent use.
type SourceParser interface {
	// Parse returns the module's top-level constructs in source order, or an
	// error wrapping ErrSyntax when the text is malformed.
	Parse(ctx context.Context, content []byte) ([]*Construct, error)

	// SupportedExtensions returns the file extensions this parser handles.
	// Extensions include the leading dot (e.g., ".py").
	SupportedExtensions() []string

	// Language returns a short lowercase identifier (e.g., "py").
	Language() string
}
