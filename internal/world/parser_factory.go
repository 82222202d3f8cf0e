package world

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"codetree/internal/logging"
)

// ParserFactory routes parse requests to a SourceParser by file extension.
type ParserFactory struct {
	parsers map[string]SourceParser // extension -> parser (e.g., ".py" -> PythonParser)
}

// NewParserFactory creates an empty factory.
func NewParserFactory() *ParserFactory {
	return &ParserFactory{parsers: make(map[string]SourceParser)}
}

// NewDefaultParserFactory returns a factory with the Python parser registered.
func NewDefaultParserFactory() *ParserFactory {
	f := NewParserFactory()
	f.Register(NewPythonParser())
	return f
}

// Register adds a parser for its supported extensions.
// If a parser is already registered for an extension, it is replaced.
func (f *ParserFactory) Register(parser SourceParser) {
	for _, ext := range parser.SupportedExtensions() {
		ext = normalizeExtension(ext)
		logging.ParseDebug("ParserFactory: registering %s parser for extension %s", parser.Language(), ext)
		f.parsers[ext] = parser
	}
}

// GetParser returns the parser for a given file path, or nil.
func (f *ParserFactory) GetParser(path string) SourceParser {
	return f.parsers[normalizeExtension(filepath.Ext(path))]
}

// HasParser returns true if a parser exists for the given file path.
func (f *ParserFactory) HasParser(path string) bool {
	return f.GetParser(path) != nil
}

// Parse parses content with the parser registered for path.
func (f *ParserFactory) Parse(ctx context.Context, path string, content []byte) ([]*Construct, error) {
	parser := f.GetParser(path)
	if parser == nil {
		return nil, fmt.Errorf("no parser registered for extension: %s", filepath.Ext(path))
	}
	return parser.Parse(ctx, content)
}

// SupportedExtensions returns all registered file extensions, sorted.
func (f *ParserFactory) SupportedExtensions() []string {
	exts := make([]string, 0, len(f.parsers))
	for ext := range f.parsers {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Close releases parsers that hold native resources.
func (f *ParserFactory) Close() {
	seen := make(map[SourceParser]bool)
	for _, p := range f.parsers {
		if seen[p] {
			continue
		}
		seen[p] = true
		if c, ok := p.(interface{ Close() }); ok {
			c.Close()
		}
	}
}
