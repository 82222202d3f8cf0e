// Package tools provides the named-tool surface an agent uses to drive a
// codetree project. Each tool is a standalone ExecuteFunc with a JSON
// schema; the Registry looks tools up by name and validates arguments.
//
// Architecture:
//
//	request {tool, args} → Registry.Execute() → Tool.Execute() → status text
package tools

import (
	"context"
)

// ToolCategory groups tools for listing; see Registry.ByCategory.
type ToolCategory string

const (
	// CategoryBrowse covers read-only views of the tree.
	CategoryBrowse ToolCategory = "/browse"

	// CategoryEdit covers insert, update, delete and write-back.
	CategoryEdit ToolCategory = "/edit"

	// CategoryGeneral is for tools usable by any intent.
	CategoryGeneral ToolCategory = "/general"
)

// Property describes a single parameter property for JSON schema.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Default     any    `json:"default,omitempty"`
}

// ToolSchema defines the JSON schema for tool arguments.
// This enables LLM tool calling with proper validation.
type ToolSchema struct {
	// Required lists parameters that must be provided.
	Required []string `json:"required"`

	// Properties describes each parameter.
	Properties map[string]Property `json:"properties"`
}

// ExecuteFunc is the signature for tool execution.
// Returns the status text and any error.
type ExecuteFunc func(ctx context.Context, args map[string]any) (string, error)

// Tool defines a named operation an agent can call.
type Tool struct {
	// Name is the unique identifier for the tool.
	Name string

	// Description explains what the tool does.
	Description string

	// Category groups the tool for listing.
	Category ToolCategory

	// Execute runs the tool with the given arguments.
	Execute ExecuteFunc

	// Schema defines the expected arguments.
	Schema ToolSchema

	// Priority is used when multiple tools match.
	// Higher priority tools are preferred (default 50).
	Priority int

	// Mutates marks tools that change the tree or the disk.
	Mutates bool
}

// Validate checks if the tool definition is valid.
func (t *Tool) Validate() error {
	if t.Name == "" {
		return ErrToolNameEmpty
	}
	if t.Execute == nil {
		return ErrToolExecuteNil
	}
	return nil
}

// ToolResult wraps the result of tool execution with metadata.
type ToolResult struct {
	// ToolName identifies which tool was executed.
	ToolName string

	// RequestID correlates the call with its log lines.
	RequestID string

	// Result is the status text returned by the tool.
	Result string

	// Error is set if the tool failed.
	Error error

	// DurationMs is how long execution took.
	DurationMs int64
}
