package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/blakemcanally/pr-status-watcher/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "prwatch",
		Short:         "Watch the CI and review status of your open pull requests",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	v := config.Init(root)

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Poll GitHub in the background and serve the JSON API (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), v)
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Run one fetch cycle and print both lists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd.Context(), v, cmd.OutOrStdout())
		},
	}
	config.BindOutputFlag(status, v)

	root.RunE = serve.RunE
	root.AddCommand(serve, status)
	return root
}

// loadConfig loads configuration and installs the process-wide logger.
func loadConfig(v *viper.Viper) (*config.Config, *slog.Logger, func(), error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, nil, nil, err
	}

	logger, flush, err := newLogger(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	slog.SetDefault(logger)
	return cfg, logger, flush, nil
}
