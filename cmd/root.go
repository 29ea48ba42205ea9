// Package cmd defines the auditconsole command tree.
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seenbyai/audit-console/internal/backend"
	"github.com/seenbyai/audit-console/internal/config"
	"github.com/seenbyai/audit-console/internal/logging"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auditconsole",
		Short: "Front-end console for the AI visibility audit service.",
		Long: `auditconsole fronts the AI visibility audit backend. It serves the
status view the web UI polls, owns the progressive four-step display, and
can follow an audit from the terminal.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newWatchCmd())
	cmd.AddCommand(newAuditCmd())
	return cmd
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads configuration and builds the shared logger and backend client.
func setup() (config.Config, *zap.Logger, *backend.Client, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return config.Config{}, nil, nil, fmt.Errorf("init logger: %w", err)
	}
	client, err := backend.New(backend.Config{
		BaseURL: cfg.Backend.BaseURL,
		Timeout: time.Duration(cfg.Backend.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		return config.Config{}, nil, nil, fmt.Errorf("init backend client: %w", err)
	}
	return cfg, logger, client, nil
}
