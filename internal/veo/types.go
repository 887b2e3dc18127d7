// Package veo provides an HTTP client for the Veo long-running video
// generation API.
package veo

import "encoding/json"

// SubmitRequest carries the provider-specific submission parameters built
// from a validated generation request.
type SubmitRequest struct {
	Prompt           string // Text prompt for generation
	ImageBase64      string // Base64-encoded source image (image-to-video only)
	ImageMIMEType    string // MIME type of the source image
	DurationSeconds  int    // Clip length in seconds (5-8)
	AspectRatio      string // "16:9" or "9:16"
	NegativePrompt   string // Content to avoid (optional)
	EnhancePrompt    bool   // Let the service rewrite the prompt
	OutputStorageURI string // Object-store output hint; empty to let the service return inline results
}

// Operation is the fetched state of a remote long-running operation.
type Operation struct {
	Name     string          // Opaque operation handle owned by the service
	Done     bool            // True once the operation reached a terminal state
	Response json.RawMessage // Raw result payload; shape is not stable across service versions
	Error    string          // Service-reported failure message
}

// predictRequest is the request body for the :predictLongRunning endpoint.
type predictRequest struct {
	Instances  []predictInstance `json:"instances"`
	Parameters predictParameters `json:"parameters"`
}

// predictInstance is a single generation instance.
type predictInstance struct {
	Prompt string        `json:"prompt"`
	Image  *imagePayload `json:"image,omitempty"`
}

// imagePayload is the inline source image for image-to-video.
type imagePayload struct {
	BytesBase64Encoded string `json:"bytesBase64Encoded"`
	MimeType           string `json:"mimeType"`
}

// predictParameters mirror the service's generation parameters.
type predictParameters struct {
	DurationSeconds int    `json:"durationSeconds"`
	AspectRatio     string `json:"aspectRatio"`
	NegativePrompt  string `json:"negativePrompt,omitempty"`
	EnhancePrompt   bool   `json:"enhancePrompt"`
	SampleCount     int    `json:"sampleCount"`
	StorageURI      string `json:"storageUri,omitempty"`
}

// operationResponse is the wire shape shared by :predictLongRunning and
// :fetchPredictOperation responses.
type operationResponse struct {
	Name     string          `json:"name"`
	Done     bool            `json:"done"`
	Response json.RawMessage `json:"response,omitempty"`
	Error    *operationError `json:"error,omitempty"`
}

// operationError is the service's structured error object.
type operationError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// fetchRequest is the request body for the :fetchPredictOperation endpoint.
type fetchRequest struct {
	OperationName string `json:"operationName"`
}
