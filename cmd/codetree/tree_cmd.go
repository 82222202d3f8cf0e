package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"codetree/internal/codetree"
	"codetree/internal/tools"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	editCode     string
	editCodeFile string
	newFilename  string
)

// viewCmd prints the default bounded view of a subtree.
var viewCmd = &cobra.Command{
	Use:   "view [label]",
	Short: "Show a subtree without expanding anything (default: project root)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		label := "0"
		if len(args) == 1 {
			label = args[0]
		}
		return withProject(cmd, func(ctx context.Context, p *codetree.Project, _ *tools.Registry) error {
			out, err := p.View(label)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		})
	},
}

var expandCmd = &cobra.Command{
	Use:   "expand <label>",
	Short: "Show a windowed view of the subtree at label",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool(cmd, "expand", map[string]any{"label": args[0]})
	},
}

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Show every node of the project",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool(cmd, "view_full_tree", nil)
	},
}

var sourceCmd = &cobra.Command{
	Use:   "source <label>",
	Short: "Print the source of the node at label",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool(cmd, "show_source", map[string]any{"label": args[0]})
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <label>",
	Short: "Replace the node at label and write the file",
	Long: `Replaces the node at label with the code given by --code, --code-file,
or standard input, then writes the modified file (or prints it with --dry-run).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		code, err := readCode(cmd.InOrStdin())
		if err != nil {
			return err
		}
		return runEdit(cmd, "update_node", map[string]any{"label": args[0], "code": code})
	},
}

var insertCmd = &cobra.Command{
	Use:   "insert <label>",
	Short: "Append a construct to the node at label and write the file",
	Long: `Appends the code given by --code, --code-file or standard input as the
last child of the node at label. When label is a directory, --filename names
a new file that is created with the code.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		code, err := readCode(cmd.InOrStdin())
		if err != nil {
			return err
		}
		toolArgs := map[string]any{"label": args[0], "code": code}
		if newFilename != "" {
			toolArgs["filename"] = newFilename
		}
		return runEdit(cmd, "insert_child", toolArgs)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <label>",
	Short: "Delete the node at label and write the file",
	Long: `Deletes the node at label. Deleting a file or directory node removes it
from disk immediately, even with --dry-run.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEdit(cmd, "delete_node", map[string]any{"label": args[0]})
	},
}

func init() {
	for _, c := range []*cobra.Command{updateCmd, insertCmd} {
		c.Flags().StringVar(&editCode, "code", "", "Replacement code")
		c.Flags().StringVar(&editCodeFile, "code-file", "", "Read code from file (use - for stdin)")
	}
	insertCmd.Flags().StringVar(&newFilename, "filename", "", "Create a new file with this name (directory labels only)")
}

// withProject runs fn with a timeout-bound context and an opened project.
func withProject(cmd *cobra.Command, fn func(ctx context.Context, p *codetree.Project, r *tools.Registry) error) error {
	ctx, cancel := context.WithTimeout(commandContext(cmd), timeout)
	defer cancel()
	p, registry, err := openProject(ctx)
	if err != nil {
		return err
	}
	defer p.Close()
	return fn(ctx, p, registry)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// runTool executes a read-only tool and prints its result.
func runTool(cmd *cobra.Command, name string, args map[string]any) error {
	return withProject(cmd, func(ctx context.Context, _ *codetree.Project, r *tools.Registry) error {
		res, err := r.Execute(ctx, name, args)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.Result)
		return nil
	})
}

// runEdit executes a mutating tool, then writes the result or, with
// --dry-run, prints what would be written.
func runEdit(cmd *cobra.Command, name string, args map[string]any) error {
	return withProject(cmd, func(ctx context.Context, _ *codetree.Project, r *tools.Registry) error {
		res, err := r.Execute(ctx, name, args)
		if err != nil {
			return err
		}
		logger.Info("edit applied",
			zap.String("tool", name),
			zap.String("request_id", res.RequestID),
			zap.String("status", res.Result))
		fmt.Fprintln(cmd.OutOrStdout(), res.Result)

		flush, err := r.Execute(ctx, "write_changes", map[string]any{"dry_run": dryRun})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), flush.Result)
		return nil
	})
}

// readCode resolves the code for an edit from --code, --code-file or stdin.
func readCode(stdin io.Reader) (string, error) {
	switch {
	case editCode != "":
		return editCode, nil
	case editCodeFile == "-" || editCodeFile == "":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read code from stdin: %w", err)
		}
		return string(data), nil
	default:
		data, err := os.ReadFile(editCodeFile)
		if err != nil {
			return "", fmt.Errorf("failed to read code file: %w", err)
		}
		return string(data), nil
	}
}
