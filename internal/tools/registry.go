package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"codetree/internal/logging"
)

// Registry holds all available tools and provides lookup functionality.
// It is safe for concurrent lookup and registration.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*Tool

	// byCategory provides fast lookup by category.
	byCategory map[ToolCategory][]*Tool
}

// NewRegistry creates a new empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools:      make(map[string]*Tool),
		byCategory: make(map[ToolCategory][]*Tool),
	}
}

// Register adds a tool to the registry.
// Returns an error if a tool with the same name already exists.
func (r *Registry) Register(tool *Tool) error {
	if err := tool.Validate(); err != nil {
		return fmt.Errorf("invalid tool: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[tool.Name]; exists {
		return fmt.Errorf("%w: %s", ErrToolAlreadyRegistered, tool.Name)
	}

	// Set default priority if not specified
	if tool.Priority == 0 {
		tool.Priority = 50
	}

	r.tools[tool.Name] = tool
	r.byCategory[tool.Category] = append(r.byCategory[tool.Category], tool)

	logging.ToolsDebug("Registered tool: %s (category=%s, priority=%d)", tool.Name, tool.Category, tool.Priority)
	return nil
}

// Get returns a tool by name, or nil if not found.
func (r *Registry) Get(name string) *Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tools[name]
}

// ByCategory returns the tools of a category, highest priority first. An
// empty category selects every tool. Ties are ordered by name.
func (r *Registry) ByCategory(category ToolCategory) []*Tool {
	r.mu.RLock()
	var result []*Tool
	if category == "" {
		result = make([]*Tool, 0, len(r.tools))
		for _, tool := range r.tools {
			result = append(result, tool)
		}
	} else {
		result = append(result, r.byCategory[category]...)
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].Priority != result[j].Priority {
			return result[i].Priority > result[j].Priority
		}
		return result[i].Name < result[j].Name
	})
	return result
}

// All returns every registered tool sorted by name.
func (r *Registry) All() []*Tool {
	all := r.ByCategory("")
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all
}

// Execute runs a tool by name with the given arguments.
// Returns ErrToolNotFound if the tool doesn't exist.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (*ToolResult, error) {
	tool := r.Get(name)
	if tool == nil {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}

	return r.ExecuteTool(ctx, tool, args)
}

// ExecuteTool runs a specific tool with the given arguments. Each call gets
// a request id (reused from ctx when present) that tags its log lines.
func (r *Registry) ExecuteTool(ctx context.Context, tool *Tool, args map[string]any) (*ToolResult, error) {
	start := time.Now()

	ctx, reqID := ensureRequestID(ctx)
	reqLog := logging.WithRequestID(logging.CategoryTools, reqID).WithField("tool", tool.Name)

	// Validate required arguments
	if err := r.validateArgs(tool, args); err != nil {
		reqLog.Warn("rejected: %v", err)
		return &ToolResult{
			ToolName:   tool.Name,
			RequestID:  reqID,
			Error:      err,
			DurationMs: time.Since(start).Milliseconds(),
		}, err
	}

	// Execute the tool
	reqLog.Debug("executing")
	result, err := tool.Execute(ctx, args)

	duration := time.Since(start)
	if err != nil {
		reqLog.Warn("failed after %v: %v", duration, err)
	} else {
		reqLog.Debug("completed in %v", duration)
	}

	return &ToolResult{
		ToolName:   tool.Name,
		RequestID:  reqID,
		Result:     result,
		Error:      err,
		DurationMs: duration.Milliseconds(),
	}, err
}

// validateArgs checks that all required arguments are present.
func (r *Registry) validateArgs(tool *Tool, args map[string]any) error {
	for _, required := range tool.Schema.Required {
		if _, ok := args[required]; !ok {
			return fmt.Errorf("%w: %s", ErrMissingRequiredArg, required)
		}
	}
	return nil
}
