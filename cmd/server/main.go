// Command server runs the model-driven GraphQL server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"model-graphql/internal/config"
	"model-graphql/internal/serverapp"
)

// Version and Commit are stamped at build time via -ldflags.
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if showVersion, _ := pflag.CommandLine.GetBool("version"); showVersion {
		fmt.Printf("model-graphql %s (%s)\n", Version, Commit)
		return nil
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	serverapp.Version = Version
	logger, loggerProvider, err := serverapp.InitLogger(cfg)
	if err != nil {
		return err
	}

	logger.Info("starting model-graphql",
		"version", Version,
		"commit", Commit,
	)

	app, err := serverapp.New(cfg, logger)
	if err != nil {
		return err
	}
	app.AttachLoggerProvider(loggerProvider)

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := app.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown finished with errors", "error", err.Error())
		}
	}()

	if err := app.Init(context.Background()); err != nil {
		return err
	}

	serverErrors, err := app.Start()
	if err != nil {
		return err
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	return app.WaitForStop(stop, serverErrors)
}
