package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sadopc/tasktime/internal/cli"
	"github.com/sadopc/tasktime/internal/config"
	"github.com/sadopc/tasktime/internal/logging"
	"github.com/sadopc/tasktime/internal/store"
	"github.com/sadopc/tasktime/internal/tracking"
)

// version is set at build time using -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := os.Getenv(config.EnvPrefix + "_CONFIG")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	// The TUI owns the terminal, so only shell commands log to stderr.
	logOpts := logging.Options{Level: cfg.LogLevel}
	if len(os.Args) == 1 {
		logOpts.File = cfg.LogFile
	}
	logger, closer, err := logging.New(logOpts)
	if err != nil {
		return err
	}
	defer closer.Close()

	s, err := store.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer s.Close()

	logger.Debug().Str("db", cfg.DBPath).Str("version", version).Msg("starting")

	app := &cli.App{
		Config:     cfg,
		ConfigPath: cfgPath,
		Store:      s,
		Timer:      tracking.NewController(s, tracking.WithLogger(logger)),
		Log:        logger,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cli.NewRootCommand(app, version).ExecuteContext(ctx)
}
