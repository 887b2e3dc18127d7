package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrWaitTimeout is returned when an operation does not reach a terminal
// state within the poller's maximum wait.
var ErrWaitTimeout = errors.New("job: timed out waiting for operation to complete")

// FetchFunc re-fetches the remote operation state and applies it to the job,
// transitioning it to Done or Failed when the service reports a terminal
// state. A fetch error leaves the job in Pending.
type FetchFunc func(ctx context.Context, j *Job) error

// Poller drives a submitted job to completion with bounded-interval polling.
// One fetch per interval, in sequence; the wait is bounded by MaxWait so a
// wedged remote operation cannot hold the caller forever.
type Poller struct {
	interval    time.Duration
	maxInterval time.Duration
	maxWait     time.Duration
	backoff     bool
	logger      *slog.Logger
}

// PollerOption configures a Poller.
type PollerOption func(*Poller)

// WithMaxWait bounds the total time spent waiting. Zero disables the bound.
func WithMaxWait(d time.Duration) PollerOption {
	return func(p *Poller) {
		p.maxWait = d
	}
}

// WithBackoff doubles the poll interval after each fetch, capped at max.
func WithBackoff(max time.Duration) PollerOption {
	return func(p *Poller) {
		p.backoff = true
		p.maxInterval = max
	}
}

// WithLogger sets the logger used for progress narration.
func WithLogger(logger *slog.Logger) PollerOption {
	return func(p *Poller) {
		p.logger = logger
	}
}

// NewPoller creates a Poller with the given base interval.
func NewPoller(interval time.Duration, opts ...PollerOption) *Poller {
	p := &Poller{
		interval: interval,
		maxWait:  30 * time.Minute,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// WaitUntilDone blocks until the job reaches a terminal state, the context
// is cancelled, or the maximum wait elapses. Cancellation is honored at every
// iteration boundary; the remote operation is left running (no cancel request
// is sent upstream). A fetch error is terminal and propagates immediately,
// leaving the job in Pending — remote-state inconsistency is never silently
// masked by retrying the fetch.
func (p *Poller) WaitUntilDone(ctx context.Context, j *Job, fetch FetchFunc) error {
	var timeout <-chan time.Time
	if p.maxWait > 0 {
		timer := time.NewTimer(p.maxWait)
		defer timer.Stop()
		timeout = timer.C
	}

	wait := p.interval
	for !j.IsTerminal() {
		select {
		case <-ctx.Done():
			return fmt.Errorf("job: wait cancelled: %w", ctx.Err())
		case <-timeout:
			return fmt.Errorf("%w after %s", ErrWaitTimeout, p.maxWait)
		case <-time.After(wait):
		}

		if err := fetch(ctx, j); err != nil {
			return fmt.Errorf("job: fetch operation state: %w", err)
		}

		if !j.IsTerminal() {
			p.logger.Debug("still waiting for operation",
				slog.String("operation", j.OperationName),
				slog.Duration("interval", wait),
			)
		}

		if p.backoff {
			wait *= 2
			if p.maxInterval > 0 && wait > p.maxInterval {
				wait = p.maxInterval
			}
		}
	}

	return nil
}
