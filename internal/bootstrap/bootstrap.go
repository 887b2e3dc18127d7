// Package bootstrap provides dependency initialization for the veogen CLI.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/maauso/veogen/internal/artifact"
	"github.com/maauso/veogen/internal/config"
	"github.com/maauso/veogen/internal/generate"
	"github.com/maauso/veogen/internal/job"
	"github.com/maauso/veogen/internal/veo"
)

// Dependencies holds all initialized dependencies for a generation run.
type Dependencies struct {
	Runner *generate.Runner
}

// NewDependencies creates and initializes all dependencies from the loaded
// configuration. The configuration is the only place ambient process state is
// read; everything below receives explicit values.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	client, err := veo.NewClient(cfg.ProjectID, cfg.Location, cfg.ModelID,
		veo.WithAccessToken(cfg.AccessToken),
	)
	if err != nil {
		return nil, fmt.Errorf("create generation client: %w", err)
	}

	store, err := initStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	pollOpts := []job.PollerOption{
		job.WithMaxWait(cfg.MaxWait),
		job.WithLogger(logger),
	}
	if cfg.PollBackoff {
		// Cap the backed-off interval so progress checks never stop entirely.
		pollOpts = append(pollOpts, job.WithBackoff(cfg.PollInterval*8))
	}
	poller := job.NewPoller(cfg.PollInterval, pollOpts...)

	runner := generate.NewRunner(client, poller, store, logger,
		generate.WithOutputDir(cfg.OutputDir),
		generate.WithOutputStorageURI(cfg.OutputStorageURI()),
	)

	return &Dependencies{Runner: runner}, nil
}

// initStore creates the artifact store, with an object-store fetcher when one
// is configured.
func initStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*artifact.Store, error) {
	if !cfg.BucketEnabled() {
		logger.Info("no output bucket configured, expecting inline results")
		return artifact.NewStore(nil, logger), nil
	}

	fetcher, err := artifact.NewS3Fetcher(ctx, artifact.S3Config{
		Region:          cfg.OutputRegion,
		Endpoint:        cfg.StorageEndpoint,
		AccessKeyID:     cfg.AWSAccessKeyID,
		SecretAccessKey: cfg.AWSSecretAccessKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create object store fetcher: %w", err)
	}

	logger.Info("object store configured",
		slog.String("bucket", cfg.OutputBucket),
		slog.String("region", cfg.OutputRegion),
	)
	return artifact.NewStore(fetcher, logger), nil
}
