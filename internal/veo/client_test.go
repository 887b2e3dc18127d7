package veo

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(t *testing.T, baseURL string) *HTTPClient {
	t.Helper()
	client, err := NewClient("test-project", "us-central1", "veo-3.0-generate-preview",
		WithAccessToken("test-token"),
		WithBaseURL(baseURL),
		WithMaxRetries(1),
		WithBaseBackoff(time.Millisecond),
	)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client
}

func TestNewClient_MissingProject(t *testing.T) {
	_, err := NewClient("", "us-central1", "veo-3.0-generate-preview", WithAccessToken("tok"))
	if !errors.Is(err, ErrProjectRequired) {
		t.Errorf("expected ErrProjectRequired, got %v", err)
	}
}

func TestNewClient_MissingModel(t *testing.T) {
	_, err := NewClient("proj", "us-central1", "", WithAccessToken("tok"))
	if !errors.Is(err, ErrModelRequired) {
		t.Errorf("expected ErrModelRequired, got %v", err)
	}
}

func TestNewClient_MissingAccessToken(t *testing.T) {
	_, err := NewClient("proj", "us-central1", "veo-3.0-generate-preview")
	if !errors.Is(err, ErrAccessTokenRequired) {
		t.Errorf("expected ErrAccessTokenRequired, got %v", err)
	}
}

func TestNewClient_DefaultLocation(t *testing.T) {
	client, err := NewClient("proj", "", "veo-3.0-generate-preview", WithAccessToken("tok"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.location != "us-central1" {
		t.Errorf("expected default location us-central1, got %q", client.location)
	}
}

func TestHTTPClient_Submit(t *testing.T) {
	var gotBody predictRequest
	var gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, ":predictLongRunning") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"name": "projects/test-project/operations/op-1",
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	name, err := client.Submit(context.Background(), SubmitRequest{
		Prompt:           "a cat chasing a ball",
		DurationSeconds:  5,
		AspectRatio:      "16:9",
		EnhancePrompt:    true,
		OutputStorageURI: "s3://out-bucket/videos/",
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if name != "projects/test-project/operations/op-1" {
		t.Errorf("unexpected operation name: %q", name)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("unexpected auth header: %q", gotAuth)
	}
	if len(gotBody.Instances) != 1 || gotBody.Instances[0].Prompt != "a cat chasing a ball" {
		t.Errorf("unexpected instances: %+v", gotBody.Instances)
	}
	if gotBody.Instances[0].Image != nil {
		t.Error("text-to-video request must not carry an image")
	}
	if gotBody.Parameters.DurationSeconds != 5 ||
		gotBody.Parameters.AspectRatio != "16:9" ||
		gotBody.Parameters.SampleCount != 1 ||
		gotBody.Parameters.StorageURI != "s3://out-bucket/videos/" {
		t.Errorf("unexpected parameters: %+v", gotBody.Parameters)
	}
}

func TestHTTPClient_Submit_WithImage(t *testing.T) {
	var gotBody predictRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{"name": "operations/op-2"})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.Submit(context.Background(), SubmitRequest{
		Prompt:          "animate this",
		ImageBase64:     "aW1hZ2U=",
		ImageMIMEType:   "image/png",
		DurationSeconds: 6,
		AspectRatio:     "9:16",
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	img := gotBody.Instances[0].Image
	if img == nil || img.BytesBase64Encoded != "aW1hZ2U=" || img.MimeType != "image/png" {
		t.Errorf("unexpected image payload: %+v", img)
	}
}

func TestHTTPClient_Submit_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": 3, "message": "duration out of range"},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.Submit(context.Background(), SubmitRequest{Prompt: "x"})
	if err == nil || !strings.Contains(err.Error(), "duration out of range") {
		t.Errorf("expected rejection error, got %v", err)
	}
}

func TestHTTPClient_Submit_NoOperationName(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.Submit(context.Background(), SubmitRequest{Prompt: "x"})
	if !errors.Is(err, ErrNoOperationReturned) {
		t.Errorf("expected ErrNoOperationReturned, got %v", err)
	}
}

func TestHTTPClient_FetchOperation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, ":fetchPredictOperation") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var body fetchRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.OperationName != "operations/op-3" {
			t.Errorf("unexpected operation name in body: %q", body.OperationName)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"name":     "operations/op-3",
			"done":     true,
			"response": map[string]any{"videos": []any{map[string]any{"uri": "s3://b/k.mp4"}}},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	op, err := client.FetchOperation(context.Background(), "operations/op-3")
	if err != nil {
		t.Fatalf("FetchOperation() error = %v", err)
	}
	if !op.Done {
		t.Error("expected done operation")
	}
	if len(op.Response) == 0 {
		t.Error("expected raw response payload")
	}
}

func TestHTTPClient_FetchOperation_EmptyName(t *testing.T) {
	client := newTestClient(t, "http://unused")

	_, err := client.FetchOperation(context.Background(), "")
	if !errors.Is(err, ErrOperationNameRequired) {
		t.Errorf("expected ErrOperationNameRequired, got %v", err)
	}
}

func TestHTTPClient_FetchOperation_ServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"name":  "operations/op-4",
			"done":  true,
			"error": map[string]any{"code": 8, "message": "quota exceeded"},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	op, err := client.FetchOperation(context.Background(), "operations/op-4")
	if err != nil {
		t.Fatalf("FetchOperation() error = %v", err)
	}
	if op.Error != "quota exceeded" {
		t.Errorf("expected service error message, got %q", op.Error)
	}
}

func TestHTTPClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"name": "operations/op-5"})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	name, err := client.Submit(context.Background(), SubmitRequest{Prompt: "x"})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if name != "operations/op-5" {
		t.Errorf("unexpected operation name: %q", name)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 calls, got %d", calls.Load())
	}
}

func TestHTTPClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.Submit(context.Background(), SubmitRequest{Prompt: "x"})
	if !errors.Is(err, ErrRequestFailed) {
		t.Errorf("expected ErrRequestFailed, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 call, got %d", calls.Load())
	}
}
