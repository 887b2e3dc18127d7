// Package job provides the Job aggregate for one submitted long-running
// generation operation, together with the poller that drives it to a
// terminal state.
package job

import (
	"encoding/json"
	"errors"
	"sync"
	"time"
)

// Status represents the current state of a Job.
type Status string

const (
	// StatusPending indicates the remote operation has not finished yet.
	StatusPending Status = "PENDING"
	// StatusDone indicates the remote operation completed successfully.
	StatusDone Status = "DONE"
	// StatusFailed indicates the remote operation reported an error.
	StatusFailed Status = "FAILED"
)

// ErrInvalidTransition is returned when an invalid state transition is attempted.
var ErrInvalidTransition = errors.New("job: invalid state transition")

// validTransitions defines which state transitions are allowed. Terminal
// states have no outgoing transitions: a job is never mutated after it
// reaches Done or Failed.
var validTransitions = map[Status][]Status{
	StatusPending: {StatusDone, StatusFailed},
	StatusDone:    {},
	StatusFailed:  {},
}

func canTransition(from, to Status) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// Job tracks one submitted remote generation operation. The operation itself
// is owned by the remote service; the job holds only its opaque name, the
// tracked status, and — once done — the raw result payload, whose internal
// shape is not controlled by this program.
type Job struct {
	mu sync.RWMutex

	// OperationName is the opaque handle assigned by the remote service.
	OperationName string
	// Status is the tracked state of the remote operation.
	Status Status
	// Response is the raw result payload. Set only when Status is Done,
	// and may still be empty if the service returned no response object.
	Response json.RawMessage
	// Error is the service-reported failure message when Status is Failed.
	Error string

	// CreatedAt is when the operation was submitted.
	CreatedAt time.Time
	// CompletedAt is when the job reached a terminal state.
	CompletedAt time.Time
}

// New creates a Job for a freshly submitted operation in Pending state.
func New(operationName string) *Job {
	return &Job{
		OperationName: operationName,
		Status:        StatusPending,
		CreatedAt:     time.Now(),
	}
}

// Complete transitions the job to Done and attaches the raw result payload.
// Returns ErrInvalidTransition if the job is already terminal.
func (j *Job) Complete(response json.RawMessage) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !canTransition(j.Status, StatusDone) {
		return ErrInvalidTransition
	}
	j.Status = StatusDone
	j.Response = response
	j.CompletedAt = time.Now()
	return nil
}

// Fail transitions the job to Failed with the service-reported message.
// Returns ErrInvalidTransition if the job is already terminal.
func (j *Job) Fail(errMsg string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !canTransition(j.Status, StatusFailed) {
		return ErrInvalidTransition
	}
	j.Status = StatusFailed
	j.Error = errMsg
	j.CompletedAt = time.Now()
	return nil
}

// GetStatus returns the current job status (thread-safe).
func (j *Job) GetStatus() Status {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.Status
}

// GetResponse returns the raw result payload (thread-safe).
func (j *Job) GetResponse() json.RawMessage {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.Response
}

// GetError returns the service-reported failure message (thread-safe).
func (j *Job) GetError() string {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.Error
}

// IsTerminal returns true if the job reached Done or Failed.
func (j *Job) IsTerminal() bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.Status == StatusDone || j.Status == StatusFailed
}
