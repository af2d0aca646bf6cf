// Copyright 2026 The Warview Authors
// SPDX-License-Identifier: Apache-2.0

// warview is a live terminal dashboard for attack-defense CTF
// competitions. It fetches the roster from the game server's REST API,
// follows the WebSocket event stream, and renders the attack grid,
// execution log, and aggregate statistics in real time.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/warview-project/warview/lib/clock"
	"github.com/warview-project/warview/lib/config"
	"github.com/warview-project/warview/lib/dashui"
	"github.com/warview-project/warview/lib/feed"
	"github.com/warview-project/warview/lib/roster"
	"github.com/warview-project/warview/lib/state"
	"github.com/warview-project/warview/lib/version"
)

// rosterFetchTimeout bounds the startup REST calls. A game server that
// cannot answer within this window is not going to feed a dashboard.
const rosterFetchTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	var serverURL string
	var feedURL string
	var logOutput string

	flagSet := pflag.NewFlagSet("warview", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to warview.yaml (default: $WARVIEW_CONFIG)")
	flagSet.StringVar(&serverURL, "server-url", "", "game server REST API base URL")
	flagSet.StringVar(&feedURL, "feed-url", "", "event stream WebSocket URL")
	flagSet.StringVar(&logOutput, "log-output", "", "write JSON log records to this file")
	flagSet.BoolP("help", "h", false, "show help")

	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("warview %s\n", version.Info())
		return nil
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if serverURL != "" {
		cfg.Server.URL = serverURL
	}
	if feedURL != "" {
		cfg.Feed.URL = feedURL
	}
	if logOutput != "" {
		cfg.Log.Output = logOutput
	}

	logger, closeLogger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer closeLogger()

	client, err := roster.NewClient(roster.ClientConfig{
		BaseURL: cfg.Server.URL,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), rosterFetchTimeout)
	defer cancel()

	serverConfig, err := client.ServerConfig(ctx)
	if err != nil {
		return fmt.Errorf("fetching server configuration: %w", err)
	}
	competitionStart, err := serverConfig.Competition.StartTime()
	if err != nil {
		return err
	}

	teams, err := client.Teams(ctx)
	if err != nil {
		return fmt.Errorf("fetching teams: %w", err)
	}
	services, err := client.Services(ctx)
	if err != nil {
		return fmt.Errorf("fetching services: %w", err)
	}
	exploits, err := client.Exploits(ctx)
	if err != nil {
		return fmt.Errorf("fetching exploits: %w", err)
	}
	lookup := roster.NewLookup(teams, services, exploits)

	competitionState := state.New(logger)
	competitionState.SetParams(state.Params{
		Start:        competitionStart,
		TickDuration: serverConfig.Competition.TickDuration(),
		FlagValidity: serverConfig.Competition.FlagValidity,
	})
	competitionState.SetResolver(lookup)

	streamURL, err := cfg.FeedURL()
	if err != nil {
		return err
	}

	// On every (re)connection the stream is asked to replay events from
	// the start of the window that could still hold live flags: one
	// validity span plus the current tick.
	wallClock := clock.Real()
	backfillWindow := time.Duration(serverConfig.Competition.FlagValidity+1) * serverConfig.Competition.TickDuration()
	eventFeed, err := feed.New(feed.Config{
		URL: streamURL,
		FromProvider: func() int64 {
			return wallClock.Now().Add(-backfillWindow).UnixMilli()
		},
		Handler: competitionState.Handle,
		Clock:   wallClock,
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	defer eventFeed.Close()

	logger.Info("starting dashboard",
		"server_url", cfg.Server.URL,
		"feed_url", streamURL,
		"teams", len(teams),
		"services", len(services),
		"exploits", len(exploits),
	)

	model := dashui.NewModel(dashui.Config{
		State:     competitionState,
		Lookup:    lookup,
		Connected: eventFeed.Connected,
		Executor:  client.ExecuteExploit,
	})
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()
	return err
}

// loadConfig loads the YAML config from the --config flag when given,
// otherwise from WARVIEW_CONFIG (or defaults).
func loadConfig(configPath string) (*config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	return config.Load()
}

// newLogger builds the JSONL file logger. The dashboard owns the
// terminal, so without a configured output the logs are discarded.
func newLogger(logConfig config.LogConfig) (*slog.Logger, func(), error) {
	if logConfig.Output == "" {
		return slog.New(slog.NewJSONHandler(io.Discard, nil)), func() {}, nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(logConfig.Level)); err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", logConfig.Level, err)
	}

	file, err := os.Create(logConfig.Output)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open log file %s: %w", logConfig.Output, err)
	}
	handler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level})
	return slog.New(handler), func() { file.Close() }, nil
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `warview: live terminal dashboard for attack-defense CTFs.

Fetches the roster from the game server's REST API, follows the
WebSocket event stream, and renders three tabs: the attack grid
(teams by services), the execution log, and aggregate statistics.

Configuration is read from the file named by --config or the
WARVIEW_CONFIG environment variable; flags override file values.

Usage:
  warview [flags]

Examples:
  # Connect to a game server on localhost
  warview

  # Connect to a remote game server
  warview --server-url https://game.example.org/api

  # Keep a debug log for post-mortem analysis
  warview --log-output /tmp/warview.jsonl

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}
