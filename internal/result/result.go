// Package result normalizes the generation service's completed-operation
// payload into a canonical result. The service does not commit to a single
// response schema: inline bytes, base64 text, and object-store URIs have all
// been observed, under several field spellings. Classification inspects an
// untyped tree and matches known shapes in a fixed precedence order instead
// of probing attributes ad hoc.
package result

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// Static errors for classification.
var (
	// ErrMalformedPayload is returned when the raw payload is not a JSON object.
	ErrMalformedPayload = errors.New("result: malformed payload")
	// ErrBadEncoding is returned when textual video data is not valid base64.
	// This indicates payload corruption, not an unsupported shape, so it is
	// never downgraded to an empty result.
	ErrBadEncoding = errors.New("result: video data is not valid base64")
)

// Kind identifies which canonical variant a completed operation produced.
type Kind string

const (
	// KindInline means the video bytes were delivered directly.
	KindInline Kind = "inline"
	// KindRemote means the video must be fetched from the object store.
	KindRemote Kind = "remote"
	// KindEncoded means the video arrived as base64 text.
	KindEncoded Kind = "encoded"
	// KindEmpty means the operation succeeded but no artifact is retrievable.
	KindEmpty Kind = "empty"
)

// Result is the canonical, shape-independent outcome of a completed
// operation. Exactly one variant is active, selected by Kind.
type Result struct {
	Kind Kind

	// Data holds the video bytes for KindInline and KindEncoded
	// (already decoded for the latter).
	Data []byte

	// Payload is the original base64 text for KindEncoded.
	Payload string

	// URI is the object-store location for KindRemote.
	URI string
}

// Classify parses a raw JSON payload and normalizes it. See ClassifyTree for
// the matching rules.
func Classify(raw json.RawMessage) (Result, error) {
	var tree map[string]any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return ClassifyTree(tree)
}

// ClassifyTree normalizes a decoded payload tree. Matching precedence, first
// match wins:
//
//  1. A non-empty generated-videos list: inspect the first item. Inline bytes
//     on its video sub-object win over a URI; failing both, a per-item
//     video_data field is tried; a video sub-object with neither form is an
//     empty result.
//  2. A top-level video_data field (base64 text or raw bytes).
//  3. A non-empty generic videos list: gcsUri-style field preferred over a
//     generic uri field.
//  4. Empty.
//
// The order matters: a payload can carry several of these shapes at once and
// the generated-videos list is the most authoritative. Both snake_case and
// camelCase field spellings are accepted. Classification is pure; it never
// performs I/O.
func ClassifyTree(tree map[string]any) (Result, error) {
	if tree == nil {
		return Result{}, ErrMalformedPayload
	}

	// Shape 1: generated-videos list.
	if items := listField(tree, "generated_videos", "generatedVideos"); len(items) > 0 {
		item, ok := items[0].(map[string]any)
		if !ok {
			return Result{}, fmt.Errorf("%w: generated video item is not an object", ErrMalformedPayload)
		}
		return classifyGeneratedItem(item)
	}

	// Shape 2: top-level video data.
	if v, ok := anyField(tree, "video_data", "videoData"); ok {
		return classifyVideoData(v)
	}

	// Shape 3: generic videos list.
	if items := listField(tree, "videos"); len(items) > 0 {
		if item, ok := items[0].(map[string]any); ok {
			if uri := stringField(item, "gcs_uri", "gcsUri"); uri != "" {
				return Result{Kind: KindRemote, URI: uri}, nil
			}
			if uri := stringField(item, "uri"); uri != "" {
				return Result{Kind: KindRemote, URI: uri}, nil
			}
		}
	}

	return Result{Kind: KindEmpty}, nil
}

// classifyGeneratedItem applies rules 1a-1d to the first generated item.
func classifyGeneratedItem(item map[string]any) (Result, error) {
	if video, ok := mapField(item, "video"); ok {
		if v, present := anyField(video, "video_bytes", "videoBytes", "bytesBase64Encoded"); present {
			switch data := v.(type) {
			case []byte:
				if len(data) > 0 {
					return Result{Kind: KindInline, Data: data}, nil
				}
			case string:
				if data != "" {
					decoded, err := base64.StdEncoding.DecodeString(data)
					if err != nil {
						return Result{}, fmt.Errorf("%w: %v", ErrBadEncoding, err)
					}
					return Result{Kind: KindInline, Data: decoded}, nil
				}
			}
		}
		if uri := stringField(video, "uri", "gcs_uri", "gcsUri"); uri != "" {
			return Result{Kind: KindRemote, URI: uri}, nil
		}
		// Video sub-object present but neither bytes nor URI are usable.
		return Result{Kind: KindEmpty}, nil
	}

	if v, ok := anyField(item, "video_data", "videoData"); ok {
		return classifyVideoData(v)
	}

	return Result{Kind: KindEmpty}, nil
}

// classifyVideoData handles the video_data form: textual values are base64
// and must decode cleanly; raw bytes pass through verbatim.
func classifyVideoData(v any) (Result, error) {
	switch data := v.(type) {
	case string:
		if data == "" {
			return Result{Kind: KindEmpty}, nil
		}
		decoded, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			return Result{}, fmt.Errorf("%w: %v", ErrBadEncoding, err)
		}
		return Result{Kind: KindEncoded, Data: decoded, Payload: data}, nil
	case []byte:
		if len(data) == 0 {
			return Result{Kind: KindEmpty}, nil
		}
		return Result{Kind: KindInline, Data: data}, nil
	default:
		return Result{Kind: KindEmpty}, nil
	}
}

// anyField returns the first present key under any of the given spellings.
func anyField(m map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// stringField returns the first non-empty string value under the given keys.
func stringField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// mapField returns the first object value under the given keys.
func mapField(m map[string]any, keys ...string) (map[string]any, bool) {
	for _, k := range keys {
		if sub, ok := m[k].(map[string]any); ok {
			return sub, true
		}
	}
	return nil, false
}

// listField returns the first list value under the given keys.
func listField(m map[string]any, keys ...string) []any {
	for _, k := range keys {
		if items, ok := m[k].([]any); ok {
			return items
		}
	}
	return nil
}
