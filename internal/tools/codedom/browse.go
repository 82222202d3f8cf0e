package codedom

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"codetree/internal/codetree"
	"codetree/internal/logging"
	"codetree/internal/tools"
	"codetree/internal/types"
)

var labelProperty = tools.Property{
	Type:        "string",
	Description: `Dotted node label, e.g. "0.2.1". "0" is the project root.`,
}

// ExpandTool returns a tool that renders a windowed view of a subtree.
func ExpandTool(p *codetree.Project) *tools.Tool {
	return &tools.Tool{
		Name:        "expand",
		Description: "Show the subtree at a label; small subtrees are shown in full, large ones one level deep",
		Category:    tools.CategoryBrowse,
		Priority:    90,
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			label, err := labelArg(args)
			if err != nil {
				return "", err
			}
			logging.WithRequestID(logging.CategoryView, tools.RequestID(ctx)).Debug("expand: label=%s", label)
			return p.Expand(label)
		},
		Schema: tools.ToolSchema{
			Required:   []string{"label"},
			Properties: map[string]tools.Property{"label": labelProperty},
		},
	}
}

// ViewFullTreeTool returns a tool that renders every node of the project.
func ViewFullTreeTool(p *codetree.Project) *tools.Tool {
	return &tools.Tool{
		Name:        "view_full_tree",
		Description: "Show every node of the project (output is unbounded)",
		Category:    tools.CategoryBrowse,
		Priority:    40,
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			return p.ViewFullTree(), nil
		},
	}
}

// GetNodeTool returns a tool that describes a single node.
func GetNodeTool(p *codetree.Project) *tools.Tool {
	return &tools.Tool{
		Name:        "get_node",
		Description: "Describe the node at a label: kind, description, children, file state",
		Category:    tools.CategoryBrowse,
		Priority:    70,
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			label, err := labelArg(args)
			if err != nil {
				return "", err
			}
			n, err := p.GetNode(label)
			if err != nil {
				return "", err
			}
			return describeNode(p, n), nil
		},
		Schema: tools.ToolSchema{
			Required:   []string{"label"},
			Properties: map[string]tools.Property{"label": labelProperty},
		},
	}
}

// ShowSourceTool returns a tool that prints the regenerated source of a node.
func ShowSourceTool(p *codetree.Project) *tools.Tool {
	return &tools.Tool{
		Name:        "show_source",
		Description: "Show the source code of the node at a label as it would be written to disk",
		Category:    tools.CategoryBrowse,
		Priority:    80,
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			label, err := labelArg(args)
			if err != nil {
				return "", err
			}
			return p.Source(label)
		},
		Schema: tools.ToolSchema{
			Required:   []string{"label"},
			Properties: map[string]tools.Property{"label": labelProperty},
		},
	}
}

func describeNode(p *codetree.Project, n *codetree.Node) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "label: %s\n", n.Label())
	fmt.Fprintf(&sb, "kind: %s\n", n.Kind())
	fmt.Fprintf(&sb, "description: %s\n", n.Description(0))
	if n.Path() != "" {
		fmt.Fprintf(&sb, "path: %s\n", n.Path())
	}
	if n.Kind() == types.KindFile {
		fmt.Fprintf(&sb, "modified: %t\n", n.Dirty())
	}
	fmt.Fprintf(&sb, "children: %d\n", len(n.Children()))
	fmt.Fprintf(&sb, "lines: %d", p.Tree().LineCount(n.ID()))
	return sb.String()
}

// FindNodesTool returns a tool that searches node descriptions by pattern.
func FindNodesTool(p *codetree.Project) *tools.Tool {
	return &tools.Tool{
		Name:        "find_nodes",
		Description: "Find nodes whose one-line description (signature, statement, file name) matches a regular expression",
		Category:    tools.CategoryBrowse,
		Priority:    80,
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			pattern := types.ArgString(args, "pattern")
			if pattern == "" {
				return "", fmt.Errorf("%w: pattern", tools.ErrMissingRequiredArg)
			}
			if types.ArgBool(args, "ignore_case") {
				pattern = "(?i)" + pattern
			}
			re, err := regexp.Compile(pattern)
			if err != nil {
				return "", fmt.Errorf("%w: invalid regex pattern: %v", tools.ErrInvalidArgType, err)
			}

			label := types.RootLabel
			if _, ok := args["label"]; ok {
				if label, err = labelArg(args); err != nil {
					return "", err
				}
			}
			maxResults := 50
			if mr, ok := types.ExtractInt64(args["max_results"]); ok && mr > 0 {
				maxResults = int(mr)
			}

			found, err := p.Find(label, re, types.ArgString(args, "kind"), maxResults)
			if err != nil {
				return "", err
			}
			if len(found) == 0 {
				return "No matches.", nil
			}
			var sb strings.Builder
			for i, n := range found {
				if i > 0 {
					sb.WriteByte('\n')
				}
				fmt.Fprintf(&sb, "%s %s: %s", n.Label(), n.Kind(), n.Description(0))
			}
			return sb.String(), nil
		},
		Schema: tools.ToolSchema{
			Required: []string{"pattern"},
			Properties: map[string]tools.Property{
				"pattern": {
					Type:        "string",
					Description: "Regular expression matched against node descriptions",
				},
				"label": {
					Type:        "string",
					Description: "Subtree to search (default: 0)",
				},
				"kind": {
					Type:        "string",
					Description: "Only match nodes of this kind (function, class, file, ...)",
				},
				"max_results": {
					Type:        "integer",
					Description: "Maximum number of matches (default: 50)",
					Default:     50,
				},
				"ignore_case": {
					Type:        "boolean",
					Description: "Case insensitive search (default: false)",
					Default:     false,
				},
			},
		},
	}
}

// labelArg extracts the label argument. JSON callers may send "0" as a number.
func labelArg(args map[string]any) (string, error) {
	raw, ok := args["label"]
	if !ok {
		return "", fmt.Errorf("%w: label", tools.ErrMissingRequiredArg)
	}
	label := strings.TrimSpace(types.ExtractString(raw))
	if label == "" {
		return "", fmt.Errorf("%w: label must be a non-empty string", tools.ErrInvalidArgType)
	}
	return label, nil
}
