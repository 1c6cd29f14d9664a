// Copyright 2024-2026 Aiku AI

// Command slack-irc bridges a set of mapped IRC and Slack channels,
// relaying messages in both directions. Channel mapping, mute lists and
// the post-join quiet period are configured in a YAML file; see the
// embedded example config.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.mau.fi/util/exzerolog"

	"github.com/aiku/slack-irc/pkg/bridge"
)

// These are filled at build time with -ldflags.
var (
	Tag       = "unknown"
	Commit    = "unknown"
	BuildTime = "unknown"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:     "slack-irc",
	Short:   "Relay messages between mapped IRC and Slack channels",
	Version: fmt.Sprintf("%s (%s, built %s)", Tag, Commit, BuildTime),
	RunE:    run,

	SilenceUsage: true,
}

var exampleConfigCmd = &cobra.Command{
	Use:   "example-config",
	Short: "Print an example configuration file",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Print(bridge.ExampleConfig)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "minimum log level")
	rootCmd.AddCommand(exampleConfigCmd)
}

func run(_ *cobra.Command, _ []string) error {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
		With().Timestamp().Logger()
	exzerolog.SetupDefaults(&log)
	if level, err := zerolog.ParseLevel(logLevel); err == nil {
		log = log.Level(level)
	} else {
		log.Warn().Str("log_level", logLevel).Msg("Unknown log level, using info")
	}

	cfg, err := bridge.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slackConn := bridge.NewSlackConn(cfg.Token, log)
	ircConn := bridge.NewIRCConn(cfg, log)

	b, err := bridge.New(cfg, ircConn, slackConn, slackConn, log)
	if err != nil {
		return err
	}

	slackConn.Start(ctx, b.Dispatch)
	if err := ircConn.Start(b.Dispatch); err != nil {
		return fmt.Errorf("failed to connect to IRC: %w", err)
	}
	defer ircConn.Quit()

	if err := b.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	log.Info().Msg("Shutting down")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
