package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/zero-day-ai/graphqa/cmd/graphqa/internal"
	"github.com/zero-day-ai/graphqa/internal/app"
	"github.com/zero-day-ai/graphqa/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "graphqa",
	Short: "graphqa - question answering over a Neo4j knowledge graph",
	Long: `graphqa answers natural-language questions against a Neo4j graph.

Questions are grounded by a retrieval strategy (generated Cypher, vector
search, vector search joined with graph data, or subgraph expansion) and
answered by a hosted language model.`,
	PersistentPreRunE: loadConfig,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// cfg is the configuration loaded by loadConfig for the running command.
var cfg *config.Config

// appOptions lets tests substitute the graph, models and embedder.
var appOptions app.Options

// Execute runs the root command with signal handling
func Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return rootCmd.ExecuteContext(ctx)
}

// loadConfig is called before any command runs to load configuration
func loadConfig(cmd *cobra.Command, args []string) error {
	flags, err := ParseGlobalFlags(cmd)
	if err != nil {
		return err
	}

	if cmd.Name() == "version" || cmd.Name() == "help" {
		return nil
	}

	homeDir := flags.HomeDir
	if homeDir == "" {
		homeDir = os.Getenv("GRAPHQA_HOME")
	}
	if homeDir == "" {
		homeDir = config.DefaultHomeDir()
	}

	configFile := flags.ConfigFile
	if configFile == "" {
		configFile = config.DefaultConfigPath(homeDir)
	}

	loaded, err := config.NewConfigLoader(config.NewValidator()).LoadWithDefaults(configFile)
	if err != nil {
		return err
	}

	switch {
	case flags.IsVerbose():
		loaded.Logging.Level = "debug"
	case flags.IsQuiet():
		loaded.Logging.Level = "warn"
	}
	cfg = loaded
	return nil
}

// openApp builds the application for commands that talk to the graph.
func openApp(cmd *cobra.Command) (*app.App, error) {
	opts := appOptions
	if opts.LogOutput == nil {
		opts.LogOutput = cmd.ErrOrStderr()
	}
	if opts.PromptsFile == "" {
		opts.PromptsFile = globalFlags.PromptsFile
	}
	return app.New(cmd.Context(), cfg, opts)
}

// closeApp releases a with a bounded deadline that survives cancellation of
// the command context.
func closeApp(cmd *cobra.Command, a *app.App) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(cmd.Context()), 10*time.Second)
	defer cancel()
	if err := a.Close(ctx); err != nil {
		a.Logger.Warn("shutdown incomplete", "error", err)
	}
}

func formatter(cmd *cobra.Command) internal.Formatter {
	return internal.NewFormatter(globalFlags.GetOutputFormat(), cmd.OutOrStdout())
}

func init() {
	RegisterGlobalFlags(rootCmd)

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(versionCmd)
}
