package main

import (
	"context"
	"fmt"

	"codetree/internal/codetree"
	"codetree/internal/tools"

	"github.com/spf13/cobra"
)

var toolCategory string

// toolsCmd lists the tools a session serves.
var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tools served by session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withProject(cmd, func(_ context.Context, _ *codetree.Project, r *tools.Registry) error {
			out := cmd.OutOrStdout()
			for _, info := range listTools(r, tools.ToolCategory(toolCategory)) {
				mark := ""
				if info.Mutates {
					mark = " (mutates)"
				}
				fmt.Fprintf(out, "%-15s %-8s %s%s\n", info.Name, info.Category, info.Description, mark)
			}
			return nil
		})
	},
}

func init() {
	toolsCmd.Flags().StringVar(&toolCategory, "category", "", "Only list tools of this category (/browse or /edit)")
}
