// Defaultdesk - Loan defaulter dashboard and risk rule editor.
// Copyright (c) 2025 opensource.finance
// Licensed under the Apache License 2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/opensource-finance/defaultdesk/internal/config"
	"github.com/opensource-finance/defaultdesk/internal/domain"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version information (set via ldflags)
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

var (
	cfgFile string
	envFile string

	// cfg is loaded by initConfig before any subcommand runs.
	cfg *domain.Config

	rootCmd = &cobra.Command{
		Use:   "defaultdesk",
		Short: "Loan defaulter dashboard and risk rule editor",
		Long: `defaultdesk serves the defaulter list view and the risk rule editor over HTTP,
and renders the same views in the terminal.`,
		SilenceUsage:      true,
		PersistentPreRunE: initConfig,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./defaultdesk.yaml or $HOME/.config/defaultdesk/defaultdesk.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the environment is read")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "json", "log format (text, json)")

	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(summaryCmd())
	rootCmd.AddCommand(categoriesCmd())
	rootCmd.AddCommand(versionCmd())
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	err := rootCmd.ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig(_ *cobra.Command, _ []string) error {
	loaded, err := config.Load(viper.GetViper(), config.Options{
		ConfigFile: cfgFile,
		EnvFile:    envFile,
	})
	if err != nil {
		return err
	}
	cfg = loaded

	if err := setupLogging(cfg.Logging); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	return nil
}

func setupLogging(lc domain.LoggingConfig) error {
	var level slog.Level
	switch lc.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level: %s", lc.Level)
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch lc.Format {
	case "text":
		handler = slog.NewTextHandler(os.Stderr, opts)
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		return fmt.Errorf("invalid log format: %s", lc.Format)
	}

	slog.SetDefault(slog.New(handler))
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "defaultdesk %s (commit %s, built %s)\n", Version, Commit, BuildDate)
		},
	}
}
