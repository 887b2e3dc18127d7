// Package main provides the entry point for the veogen CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/maauso/veogen/internal/bootstrap"
	"github.com/maauso/veogen/internal/cli"
	"github.com/maauso/veogen/internal/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Create structured logger
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting veogen",
		slog.String("project", cfg.ProjectID),
		slog.String("location", cfg.Location),
		slog.String("model", cfg.ModelID),
		slog.Duration("poll_interval", cfg.PollInterval),
		slog.Duration("max_wait", cfg.MaxWait),
		slog.Bool("bucket_enabled", cfg.BucketEnabled()),
	)

	// An interrupt stops the run between poll iterations; the remote
	// operation is left running.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize dependencies using bootstrap
	deps, err := bootstrap.NewDependencies(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize dependencies: %w", err)
	}

	// Collect the request interactively
	prompter := cli.NewPrompter(os.Stdin, os.Stdout)
	req, err := prompter.Request(os.Args[1:])
	if err != nil {
		return fmt.Errorf("collect request: %w", err)
	}

	fmt.Println("Starting video generation... This may take several minutes.")

	outcome, jobOutcome := deps.Runner.Run(ctx, req)
	if !jobOutcome.Succeeded {
		return fmt.Errorf("generation failed during %s: %s", jobOutcome.Phase, jobOutcome.Message)
	}

	if outcome.Saved() {
		fmt.Printf("Video generation completed. Saved to: %s\n", outcome.Path)
	} else {
		fmt.Printf("Video generation completed, but no file was saved: %s\n", outcome.Reason)
	}

	return nil
}
