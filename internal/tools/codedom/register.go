package codedom

import (
	"codetree/internal/codetree"
	"codetree/internal/tools"
)

// RegisterAll registers all codetree tools bound to p with the given registry.
func RegisterAll(registry *tools.Registry, p *codetree.Project) error {
	allTools := []*tools.Tool{
		// Browsing
		ExpandTool(p),
		ViewFullTreeTool(p),
		GetNodeTool(p),
		ShowSourceTool(p),
		FindNodesTool(p),

		// Editing
		InsertChildTool(p),
		UpdateNodeTool(p),
		DeleteNodeTool(p),
		WriteChangesTool(p),
	}

	for _, tool := range allTools {
		if err := registry.Register(tool); err != nil {
			return err
		}
	}

	return nil
}
