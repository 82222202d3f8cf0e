// Command codetree browses and edits a Python project by structural label.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"codetree/internal/codetree"
	"codetree/internal/config"
	"codetree/internal/logging"
	"codetree/internal/tools"
	"codetree/internal/tools/codedom"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose   bool
	workspace string
	timeout   time.Duration
	dryRun    bool

	// Logger
	logger *zap.Logger

	// Loaded in PersistentPreRunE
	cfg    *config.Config
	wsRoot string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "codetree",
	Short: "Browse and edit source code by structural label",
	Long: `codetree parses a Python project into a tree of directories, files and
constructs (functions, classes, control-flow blocks, literals) and gives every
node a dotted label such as 0.2.1.

Labels are recomputed after every insert or delete, so re-read a view before
reusing a label from an earlier one.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logger
		zc := zap.NewProductionConfig()
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		start := workspace
		if start == "" {
			if start, err = os.Getwd(); err != nil {
				return err
			}
		}
		if wsRoot, err = config.FindWorkspaceRoot(start); err != nil {
			return fmt.Errorf("failed to resolve workspace: %w", err)
		}
		if workspace != "" {
			// An explicit workspace is the project root even without markers.
			if wsRoot, err = filepath.Abs(workspace); err != nil {
				return err
			}
		}

		if cfg, err = config.Load(config.DefaultConfigPath(wsRoot)); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		if err := logging.Configure(wsRoot, cfg.Logging); err != nil {
			logger.Warn("category logging disabled", zap.Error(err))
		}
		logger.Debug("workspace resolved", zap.String("root", wsRoot))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Project root (default: nearest directory with .codetree, .git or pyproject.toml)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Operation timeout")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Print regenerated files instead of writing them")

	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(expandCmd)
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(sourceCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(insertCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(toolsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openProject assembles the workspace and binds the tool registry to it.
func openProject(ctx context.Context) (*codetree.Project, *tools.Registry, error) {
	p, err := codetree.Open(ctx, wsRoot, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", wsRoot, err)
	}
	registry := tools.NewRegistry()
	if err := codedom.RegisterAll(registry, p); err != nil {
		p.Close()
		return nil, nil, err
	}
	logger.Debug("project opened",
		zap.String("root", p.RootPath()),
		zap.Int("nodes", p.Tree().Len()))
	return p, registry, nil
}
