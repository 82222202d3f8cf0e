package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"codetree/internal/codetree"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// watchCmd keeps the tree in sync with external edits and reprints the
// root view after each change.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the project and print the tree when files change",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		p, _, err := openProject(ctx)
		if err != nil {
			return err
		}
		defer p.Close()

		w, err := codetree.NewWatcher(p)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if view, err := p.View("0"); err == nil {
			fmt.Fprintln(out, view)
		}
		logger.Info("watching", zap.String("root", p.RootPath()))

		return w.Run(ctx, func(path string) {
			logger.Debug("tree refreshed", zap.String("path", path))
			view, err := p.View("0")
			if err != nil {
				logger.Warn("render failed", zap.Error(err))
				return
			}
			fmt.Fprintf(out, "\n# changed: %s\n%s\n", path, view)
		})
	},
}
