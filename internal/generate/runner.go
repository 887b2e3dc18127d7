// Package generate orchestrates one video generation run: submit the
// request, poll the remote operation to completion, normalize the result
// payload, and materialize the artifact to local disk.
package generate

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/maauso/veogen/internal/artifact"
	"github.com/maauso/veogen/internal/job"
	"github.com/maauso/veogen/internal/naming"
	"github.com/maauso/veogen/internal/request"
	"github.com/maauso/veogen/internal/result"
	"github.com/maauso/veogen/internal/veo"
)

// Phase names the stage of a run where a failure happened.
type Phase string

const (
	// PhaseSubmit covers request validation and operation submission.
	PhaseSubmit Phase = "submit"
	// PhasePoll covers waiting for the remote operation.
	PhasePoll Phase = "poll"
	// PhaseClassify covers result-payload normalization.
	PhaseClassify Phase = "classify"
)

// JobOutcome is the structured end state of a run. Failures always name the
// phase that failed; materialization problems never appear here because a
// failed download does not undo a successful generation.
type JobOutcome struct {
	Succeeded     bool
	Phase         Phase  // Failing phase, empty on success
	Message       string // Failure detail, empty on success
	OperationName string // Remote operation handle, when submission succeeded
}

func succeeded(operationName string) JobOutcome {
	return JobOutcome{Succeeded: true, OperationName: operationName}
}

func failed(phase Phase, operationName, format string, args ...any) JobOutcome {
	return JobOutcome{
		Phase:         phase,
		Message:       fmt.Sprintf(format, args...),
		OperationName: operationName,
	}
}

// Runner composes the generation client, the poller, and the artifact store
// into the single Run entry point. Nothing escapes Run as a raised error:
// every failure is converted into a JobOutcome naming the failing phase.
type Runner struct {
	client     veo.Client
	poller     *job.Poller
	store      *artifact.Store
	outputDir  string
	storageURI string
	logger     *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithOutputDir sets the directory where artifacts are written.
func WithOutputDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.outputDir = dir
	}
}

// WithOutputStorageURI sets the object-store output hint passed on
// submission. Empty means the service is expected to return inline results.
func WithOutputStorageURI(uri string) RunnerOption {
	return func(r *Runner) {
		r.storageURI = uri
	}
}

// NewRunner creates a Runner.
func NewRunner(client veo.Client, poller *job.Poller, store *artifact.Store, logger *slog.Logger, opts ...RunnerOption) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Runner{
		client:    client,
		poller:    poller,
		store:     store,
		outputDir: ".",
		logger:    logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes one generation end to end and reports both the
// materialization outcome and the job outcome. Text-to-video and
// image-to-video share the whole result-handling path; the modes differ only
// in how the submission is built.
func (r *Runner) Run(ctx context.Context, req request.Request) (artifact.Outcome, JobOutcome) {
	if err := req.Validate(); err != nil {
		return artifact.Skipped("request rejected"), failed(PhaseSubmit, "", "invalid request: %v", err)
	}

	sub, err := r.buildSubmitRequest(&req)
	if err != nil {
		return artifact.Skipped("request rejected"), failed(PhaseSubmit, "", "%v", err)
	}

	r.logger.Info("submitting generation request",
		slog.String("mode", string(req.Mode)),
		slog.Int("duration_seconds", req.Params.DurationSeconds),
		slog.String("aspect_ratio", req.Params.AspectRatio),
		slog.Bool("output_bucket_configured", r.storageURI != ""),
	)

	operationName, err := r.client.Submit(ctx, sub)
	if err != nil {
		return artifact.Skipped("generation did not start"), failed(PhaseSubmit, "", "submit: %v", err)
	}

	j := job.New(operationName)
	r.logger.Info("operation submitted, waiting for completion",
		slog.String("operation", operationName),
	)

	if err := r.poller.WaitUntilDone(ctx, j, r.fetchOperationState); err != nil {
		return artifact.Skipped("generation did not complete"), failed(PhasePoll, operationName, "%v", err)
	}

	if j.GetStatus() == job.StatusFailed {
		return artifact.Skipped("generation failed"), failed(PhasePoll, operationName, "operation failed: %s", j.GetError())
	}

	response := j.GetResponse()
	if len(response) == 0 {
		return artifact.Skipped("no response"), failed(PhasePoll, operationName, "operation completed without a response object")
	}

	res, err := result.Classify(response)
	if err != nil {
		return artifact.Skipped("result unusable"), failed(PhaseClassify, operationName, "classify result: %v", err)
	}

	outcome := r.materialize(ctx, &req, res)
	return outcome, succeeded(operationName)
}

// buildSubmitRequest translates the validated request into the provider's
// submission shape. Image-to-video inlines the source image as base64.
func (r *Runner) buildSubmitRequest(req *request.Request) (veo.SubmitRequest, error) {
	sub := veo.SubmitRequest{
		Prompt:           req.Prompt,
		DurationSeconds:  req.Params.DurationSeconds,
		AspectRatio:      req.Params.AspectRatio,
		NegativePrompt:   req.Params.NegativePrompt,
		EnhancePrompt:    req.Params.EnhancePrompt,
		OutputStorageURI: r.storageURI,
	}

	if req.Mode == request.ModeImageToVideo {
		data, err := os.ReadFile(req.ImagePath)
		if err != nil {
			return veo.SubmitRequest{}, fmt.Errorf("read source image: %w", err)
		}
		sub.ImageBase64 = base64.StdEncoding.EncodeToString(data)
		sub.ImageMIMEType = req.ImageMIMEType
	}

	return sub, nil
}

// fetchOperationState re-fetches the remote operation and applies its state
// to the job. Used as the poller's FetchFunc.
func (r *Runner) fetchOperationState(ctx context.Context, j *job.Job) error {
	op, err := r.client.FetchOperation(ctx, j.OperationName)
	if err != nil {
		return err
	}
	if !op.Done {
		return nil
	}
	if op.Error != "" {
		return j.Fail(op.Error)
	}
	return j.Complete(op.Response)
}

// materialize dispatches on the canonical result variant. An empty result is
// a success with nothing to write.
func (r *Runner) materialize(ctx context.Context, req *request.Request, res result.Result) artifact.Outcome {
	seed := req.Prompt
	if req.Mode == request.ModeImageToVideo {
		seed = "image_to_video_" + req.Prompt
	}
	path := filepath.Join(r.outputDir, naming.FilenameNow(seed, "mp4"))

	switch res.Kind {
	case result.KindInline, result.KindEncoded:
		return r.store.SaveBytes(res.Data, path)
	case result.KindRemote:
		return r.store.FetchRemoteToLocal(ctx, res.URI, path)
	default:
		r.logger.Warn("generation succeeded but no artifact was retrievable")
		return artifact.Skipped("no retrievable artifact in response")
	}
}
