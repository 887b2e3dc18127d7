// Package artifact materializes generation results to local storage, either
// by writing inline bytes or by fetching the object the service left in the
// remote store. Materialization failures are reported as skipped outcomes,
// never as job failures: the generation itself already succeeded.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Static errors for object URI parsing.
var (
	// ErrEmptyURI is returned when the object URI is empty.
	ErrEmptyURI = errors.New("artifact: object URI is empty")
	// ErrMalformedURI is returned when the URI is not of the form scheme://bucket/key.
	ErrMalformedURI = errors.New("artifact: malformed object URI")
	// ErrNoFetcher is returned when a remote fetch is attempted without a configured store.
	ErrNoFetcher = errors.New("artifact: no object store configured")
)

// State tells whether an artifact reached local disk.
type State string

const (
	// StateSaved means the artifact was written to the reported path.
	StateSaved State = "SAVED"
	// StateSkipped means no file was produced; Reason says why.
	StateSkipped State = "SKIPPED"
)

// Outcome is the result of one materialization attempt.
type Outcome struct {
	State  State
	Path   string // Destination path, set when State is Saved
	Reason string // Human-readable explanation, set when State is Skipped
}

// SavedAt builds a saved outcome for the given path.
func SavedAt(path string) Outcome {
	return Outcome{State: StateSaved, Path: path}
}

// Skipped builds a skipped outcome with the given reason.
func Skipped(reason string) Outcome {
	return Outcome{State: StateSkipped, Reason: reason}
}

// Saved returns true if the artifact was written to disk.
func (o Outcome) Saved() bool {
	return o.State == StateSaved
}

// ObjectFetcher streams an object out of bucket/key-addressed remote storage.
type ObjectFetcher interface {
	Fetch(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}

// ParseObjectURI splits a scheme://bucket/key URI into bucket and key. The
// first slash after the bucket segment is the separator; the rest of the path
// is the key verbatim, further slashes included. No network access happens
// here, so malformed URIs fail before any fetch is attempted.
func ParseObjectURI(uri string) (bucket, key string, err error) {
	if uri == "" {
		return "", "", ErrEmptyURI
	}

	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok || scheme == "" {
		return "", "", fmt.Errorf("%w: %q", ErrMalformedURI, uri)
	}

	bucket, key, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("%w: %q", ErrMalformedURI, uri)
	}

	return bucket, key, nil
}

// Store writes artifacts to local disk, fetching them from remote object
// storage first when needed.
type Store struct {
	fetcher ObjectFetcher
	logger  *slog.Logger
}

// NewStore creates a Store. The fetcher may be nil when no object store is
// configured; remote fetches are then skipped with a clear reason.
func NewStore(fetcher ObjectFetcher, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{fetcher: fetcher, logger: logger}
}

// SaveBytes writes data to path, overwriting any existing file. The
// destination is closed on every exit path. Write errors are reported as
// skipped outcomes; no partial-file cleanup is performed.
func (s *Store) SaveBytes(data []byte, path string) Outcome {
	f, err := os.Create(path) // #nosec G304 - path is derived from the prompt by the caller
	if err != nil {
		s.logger.Error("create artifact file", slog.String("path", path), slog.String("error", err.Error()))
		return Skipped(fmt.Sprintf("create %s: %v", path, err))
	}

	_, werr := f.Write(data)
	cerr := f.Close()
	if werr != nil {
		return Skipped(fmt.Sprintf("write %s: %v", path, werr))
	}
	if cerr != nil {
		return Skipped(fmt.Sprintf("close %s: %v", path, cerr))
	}

	s.logger.Info("artifact saved",
		slog.String("path", path),
		slog.Int("bytes", len(data)),
	)
	return SavedAt(path)
}

// FetchRemoteToLocal resolves uri into bucket and key, streams the object to
// path, and reports the outcome. Malformed URIs fail fast without touching
// the network. Fetch and write errors are skipped outcomes, not job failures.
func (s *Store) FetchRemoteToLocal(ctx context.Context, uri, path string) Outcome {
	bucket, key, err := ParseObjectURI(uri)
	if err != nil {
		return Skipped(fmt.Sprintf("invalid object URI: %v", err))
	}

	if s.fetcher == nil {
		return Skipped(fmt.Sprintf("fetch error: %v", ErrNoFetcher))
	}

	s.logger.Info("downloading artifact",
		slog.String("bucket", bucket),
		slog.String("key", key),
	)

	body, err := s.fetcher.Fetch(ctx, bucket, key)
	if err != nil {
		s.logger.Error("fetch artifact", slog.String("uri", uri), slog.String("error", err.Error()))
		return Skipped(fmt.Sprintf("fetch error: %v", err))
	}
	defer func() { _ = body.Close() }()

	f, err := os.Create(path) // #nosec G304 - path is derived from the prompt by the caller
	if err != nil {
		return Skipped(fmt.Sprintf("create %s: %v", path, err))
	}

	_, werr := io.Copy(f, body)
	cerr := f.Close()
	if werr != nil {
		return Skipped(fmt.Sprintf("write %s: %v", path, werr))
	}
	if cerr != nil {
		return Skipped(fmt.Sprintf("close %s: %v", path, cerr))
	}

	s.logger.Info("artifact saved", slog.String("path", path))
	return SavedAt(path)
}
