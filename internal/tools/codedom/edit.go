package codedom

import (
	"context"
	"fmt"
	"strings"

	"codetree/internal/codetree"
	"codetree/internal/logging"
	"codetree/internal/tools"
	"codetree/internal/types"
)

// InsertChildTool returns a tool that appends a construct to a node, or
// creates a new file when the target is a directory.
func InsertChildTool(p *codetree.Project) *tools.Tool {
	return &tools.Tool{
		Name:        "insert_child",
		Description: "Append one construct as the last child of the node at a label. For a directory, give a filename to create a new file containing the code",
		Category:    tools.CategoryEdit,
		Priority:    80,
		Mutates:     true,
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			label, err := labelArg(args)
			if err != nil {
				return "", err
			}
			code := types.ArgString(args, "code")
			filename := types.ArgString(args, "filename")

			reqLog := logging.WithRequestID(logging.CategoryMutation, tools.RequestID(ctx))
			reqLog.Debug("insert_child: label=%s, filename=%q, %d bytes", label, filename, len(code))
			return p.InsertChild(ctx, label, code, filename)
		},
		Schema: tools.ToolSchema{
			Required: []string{"label", "code"},
			Properties: map[string]tools.Property{
				"label": labelProperty,
				"code": {
					Type:        "string",
					Description: "Source for exactly one construct (or the whole file content when creating a file)",
				},
				"filename": {
					Type:        "string",
					Description: "Name of the file to create; only valid when label is a directory",
				},
			},
		},
	}
}

// UpdateNodeTool returns a tool that replaces a node with a parsed fragment.
func UpdateNodeTool(p *codetree.Project) *tools.Tool {
	return &tools.Tool{
		Name:        "update_node",
		Description: "Replace the node at a label with code of the same kind; a file label replaces the whole file",
		Category:    tools.CategoryEdit,
		Priority:    90,
		Mutates:     true,
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			label, err := labelArg(args)
			if err != nil {
				return "", err
			}
			code := types.ArgString(args, "code")

			reqLog := logging.WithRequestID(logging.CategoryMutation, tools.RequestID(ctx))
			reqLog.Debug("update_node: label=%s, %d bytes", label, len(code))
			return p.UpdateNode(ctx, label, code)
		},
		Schema: tools.ToolSchema{
			Required: []string{"label", "code"},
			Properties: map[string]tools.Property{
				"label": labelProperty,
				"code": {
					Type:        "string",
					Description: "Replacement source; indentation is normalized",
				},
			},
		},
	}
}

// DeleteNodeTool returns a tool that removes a node.
func DeleteNodeTool(p *codetree.Project) *tools.Tool {
	return &tools.Tool{
		Name:        "delete_node",
		Description: "Delete the node at a label. Deleting a file node removes the file from disk. Labels of later siblings shift down",
		Category:    tools.CategoryEdit,
		Priority:    70,
		Mutates:     true,
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			label, err := labelArg(args)
			if err != nil {
				return "", err
			}
			logging.WithRequestID(logging.CategoryMutation, tools.RequestID(ctx)).Debug("delete_node: label=%s", label)
			return p.Delete(label)
		},
		Schema: tools.ToolSchema{
			Required:   []string{"label"},
			Properties: map[string]tools.Property{"label": labelProperty},
		},
	}
}

// WriteChangesTool returns a tool that flushes modified files. With
// dry_run set it reports the pending content instead of writing.
func WriteChangesTool(p *codetree.Project) *tools.Tool {
	return &tools.Tool{
		Name:        "write_changes",
		Description: "Write every modified file to disk",
		Category:    tools.CategoryEdit,
		Priority:    60,
		Mutates:     true,
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			if types.ArgBool(args, "dry_run") {
				return formatPending(p.Pending()), nil
			}
			return p.WriteChanges()
		},
		Schema: tools.ToolSchema{
			Properties: map[string]tools.Property{
				"dry_run": {
					Type:        "boolean",
					Description: "Show what would be written without touching disk",
					Default:     false,
				},
			},
		},
	}
}

func formatPending(pending []codetree.PendingFile) string {
	if len(pending) == 0 {
		return "No pending changes."
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d file(s) pending:", len(pending))
	for _, f := range pending {
		fmt.Fprintf(&sb, "\n--- %s (%s)\n%s", f.Path, f.Label, f.Content)
	}
	return sb.String()
}
