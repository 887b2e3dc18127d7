package veo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Static errors for Veo client operations.
var (
	// ErrProjectRequired is returned when the project ID is not provided.
	ErrProjectRequired = errors.New("veo: project ID is required")
	// ErrModelRequired is returned when the model ID is not provided.
	ErrModelRequired = errors.New("veo: model ID is required")
	// ErrAccessTokenRequired is returned when no access token is configured.
	ErrAccessTokenRequired = errors.New("veo: access token is required")
	// ErrOperationNameRequired is returned when the operation name is not provided.
	ErrOperationNameRequired = errors.New("veo: operation name is required")
	// ErrNoOperationReturned is returned when the submit response carries no operation name.
	ErrNoOperationReturned = errors.New("veo: submit failed: no operation name returned")
	// ErrServerError is returned when the server returns a 5xx status code.
	ErrServerError = errors.New("veo: server error")
	// ErrRateLimited is returned when the server returns a 429 status code.
	ErrRateLimited = errors.New("veo: rate limited")
	// ErrRequestFailed is returned when the request fails with a non-2xx status code.
	ErrRequestFailed = errors.New("veo: request failed")
)

// Client defines the interface for interacting with the generation service.
type Client interface {
	// Submit starts a long-running generation operation and returns its name.
	Submit(ctx context.Context, req SubmitRequest) (operationName string, err error)

	// FetchOperation re-fetches the state of a previously submitted operation.
	FetchOperation(ctx context.Context, operationName string) (Operation, error)
}

// HTTPClient is the HTTP implementation of the Client interface.
type HTTPClient struct {
	project     string
	location    string
	model       string
	accessToken string
	baseURL     string
	httpClient  *http.Client
	maxRetries  int
	baseBackoff time.Duration
}

// ClientOption is a function that configures an HTTPClient.
type ClientOption func(*HTTPClient)

// WithAccessToken sets the bearer token for authentication.
func WithAccessToken(token string) ClientOption {
	return func(hc *HTTPClient) {
		hc.accessToken = token
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(hc *HTTPClient) {
		hc.httpClient = c
	}
}

// WithBaseURL sets a custom base URL for the generation API.
func WithBaseURL(url string) ClientOption {
	return func(hc *HTTPClient) {
		hc.baseURL = url
	}
}

// WithMaxRetries sets the maximum number of retries for transient failures.
func WithMaxRetries(n int) ClientOption {
	return func(hc *HTTPClient) {
		hc.maxRetries = n
	}
}

// WithBaseBackoff sets the initial backoff duration for retries.
func WithBaseBackoff(d time.Duration) ClientOption {
	return func(hc *HTTPClient) {
		hc.baseBackoff = d
	}
}

// NewClient creates a new generation service HTTP client. The project and
// model identify the publisher model to invoke; credential acquisition is the
// caller's concern and the resolved token arrives via WithAccessToken.
func NewClient(project, location, model string, opts ...ClientOption) (*HTTPClient, error) {
	if project == "" {
		return nil, ErrProjectRequired
	}
	if model == "" {
		return nil, ErrModelRequired
	}
	if location == "" {
		location = "us-central1"
	}

	c := &HTTPClient{
		project:     project,
		location:    location,
		model:       model,
		baseURL:     fmt.Sprintf("https://%s-aiplatform.googleapis.com/v1", location),
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		maxRetries:  3,
		baseBackoff: 1 * time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.accessToken == "" {
		return nil, ErrAccessTokenRequired
	}

	return c, nil
}

// modelPath returns the publisher model resource path.
func (c *HTTPClient) modelPath() string {
	return fmt.Sprintf("projects/%s/locations/%s/publishers/google/models/%s",
		c.project, c.location, c.model)
}

// Submit starts a long-running generation operation and returns its name.
func (c *HTTPClient) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	instance := predictInstance{Prompt: req.Prompt}
	if req.ImageBase64 != "" {
		instance.Image = &imagePayload{
			BytesBase64Encoded: req.ImageBase64,
			MimeType:           req.ImageMIMEType,
		}
	}

	reqBody := predictRequest{
		Instances: []predictInstance{instance},
		Parameters: predictParameters{
			DurationSeconds: req.DurationSeconds,
			AspectRatio:     req.AspectRatio,
			NegativePrompt:  req.NegativePrompt,
			EnhancePrompt:   req.EnhancePrompt,
			SampleCount:     1,
			StorageURI:      req.OutputStorageURI,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("veo: marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:predictLongRunning", c.baseURL, c.modelPath())

	var resp operationResponse
	if err := c.doRequestWithRetry(ctx, url, bodyBytes, &resp); err != nil {
		return "", err
	}

	if resp.Name == "" {
		if resp.Error != nil {
			return "", fmt.Errorf("veo: submit rejected: %s", resp.Error.Message)
		}
		return "", ErrNoOperationReturned
	}

	return resp.Name, nil
}

// FetchOperation re-fetches the state of a previously submitted operation.
func (c *HTTPClient) FetchOperation(ctx context.Context, operationName string) (Operation, error) {
	if operationName == "" {
		return Operation{}, ErrOperationNameRequired
	}

	bodyBytes, err := json.Marshal(fetchRequest{OperationName: operationName})
	if err != nil {
		return Operation{}, fmt.Errorf("veo: marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:fetchPredictOperation", c.baseURL, c.modelPath())

	var resp operationResponse
	if err := c.doRequestWithRetry(ctx, url, bodyBytes, &resp); err != nil {
		return Operation{}, err
	}

	op := Operation{
		Name:     resp.Name,
		Done:     resp.Done,
		Response: resp.Response,
	}
	if resp.Error != nil {
		op.Error = resp.Error.Message
	}

	return op, nil
}

// doRequestWithRetry performs an HTTP request with exponential backoff retry.
func (c *HTTPClient) doRequestWithRetry(ctx context.Context, url string, body []byte, result interface{}) error {
	var lastErr error
	backoff := c.baseBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("veo: context cancelled: %w", ctx.Err())
			case <-time.After(backoff):
				backoff *= 2
			}
		}

		err := c.doRequest(ctx, url, body, result)
		if err == nil {
			return nil
		}

		if !isRetryable(err) {
			return err
		}

		lastErr = err
	}

	return fmt.Errorf("veo: max retries exceeded: %w", lastErr)
}

// doRequest performs a single HTTP request.
func (c *HTTPClient) doRequest(ctx context.Context, url string, body []byte, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("veo: create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &retryableError{err: fmt.Errorf("veo: request failed: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &retryableError{err: fmt.Errorf("veo: read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode >= 500 {
			return &retryableError{err: fmt.Errorf("%w %d: %s", ErrServerError, resp.StatusCode, string(respBody))}
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			return &retryableError{err: fmt.Errorf("%w: %s", ErrRateLimited, string(respBody))}
		}
		return fmt.Errorf("%w with status %d: %s", ErrRequestFailed, resp.StatusCode, string(respBody))
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("veo: unmarshal response: %w", err)
		}
	}

	return nil
}

// retryableError wraps errors that should be retried.
type retryableError struct {
	err error
}

func (e *retryableError) Error() string {
	return e.err.Error()
}

func (e *retryableError) Unwrap() error {
	return e.err
}

// isRetryable returns true if the error should be retried.
func isRetryable(err error) bool {
	var re *retryableError
	return errors.As(err, &re)
}

// Compile-time check that HTTPClient implements Client.
var _ Client = (*HTTPClient)(nil)
