package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agenthands/routegraph/internal/config"
	"github.com/agenthands/routegraph/internal/core"
	"github.com/agenthands/routegraph/internal/logging"
)

// app carries what the commands share once the root command has loaded the
// configuration.
type app struct {
	configPath string
	mode       string

	cfg       *config.Config
	log       *zap.Logger
	newRunner func(*zap.Logger) *core.Runner
}

func newApp() *app {
	return &app{newRunner: core.NewRunner}
}

func Execute(ctx context.Context, a *app) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return newRootCmd(a).ExecuteContext(ctx)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "routegraph",
		Short: "Look up data center interface addresses in a Neo4j network graph",
		Long: `routegraph queries a Neo4j graph of
(DataCenter)-[:CONTAINS]->(Router)-[:ROUTES]->(Interface) and prints the
address of every interface routed in a data center.`,
		PersistentPreRunE: a.load,
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to config TOML (default $CONFIG_PATH or built-in defaults)")
	root.PersistentFlags().StringVar(&a.mode, "mode", "", `driver adapter: "query" or "session"`)

	root.AddCommand(newLookupCmd(a), newSeedCmd(a), newIndicesCmd(a))
	return root
}

func (a *app) load(cmd *cobra.Command, args []string) error {
	cfg, err := config.Resolve(a.configPath)
	if err != nil {
		return &configError{err: err}
	}
	if a.mode != "" {
		cfg.Graph.Mode = a.mode
		if err := cfg.Validate(); err != nil {
			return &configError{err: err}
		}
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return &configError{err: err}
	}

	a.cfg = cfg
	a.log = logger
	return nil
}

func (a *app) runner() *core.Runner {
	return a.newRunner(a.log)
}
