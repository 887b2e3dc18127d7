// Package request defines the validated generation request handed to the
// generation client. Requests are fully validated here so downstream
// components never see out-of-range parameters.
package request

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Static errors for request validation.
var (
	// ErrImageRequired is returned when image-to-video mode has no image path.
	ErrImageRequired = errors.New("request: image-to-video requires an image path")
	// ErrImageNotFound is returned when the referenced image does not exist.
	ErrImageNotFound = errors.New("request: image file not found")
)

// Mode selects the generation flow.
type Mode string

const (
	// ModeTextToVideo generates a video from a text prompt alone.
	ModeTextToVideo Mode = "text_to_video"
	// ModeImageToVideo animates a source image guided by a text prompt.
	ModeImageToVideo Mode = "image_to_video"
)

// IsValid returns true if the mode is one of the supported flows.
func (m Mode) IsValid() bool {
	return m == ModeTextToVideo || m == ModeImageToVideo
}

// Params holds the tunable generation parameters.
type Params struct {
	// DurationSeconds is the clip length; the service accepts 5-8 seconds.
	DurationSeconds int `validate:"min=5,max=8"`
	// AspectRatio is either landscape 16:9 or portrait 9:16.
	AspectRatio string `validate:"oneof=16:9 9:16"`
	// NegativePrompt describes content to avoid. Optional.
	NegativePrompt string
	// EnhancePrompt lets the service rewrite the prompt for quality.
	EnhancePrompt bool
}

// DefaultParams returns the parameter defaults.
func DefaultParams() Params {
	return Params{
		DurationSeconds: 5,
		AspectRatio:     "16:9",
		EnhancePrompt:   true,
	}
}

// Request is an immutable generation request.
type Request struct {
	Prompt string `validate:"required"`
	Mode   Mode   `validate:"oneof=text_to_video image_to_video"`
	Params Params

	// ImagePath and ImageMIMEType are set for image-to-video only.
	ImagePath     string
	ImageMIMEType string
}

var validate = validator.New()

// Validate checks the request against the service's accepted ranges.
// For image-to-video it also requires that the source image exists on disk
// and resolves its MIME type from the file extension.
func (r *Request) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("request: %w", err)
	}
	if err := validate.Struct(r.Params); err != nil {
		return fmt.Errorf("request: %w", err)
	}

	if r.Mode == ModeImageToVideo {
		if r.ImagePath == "" {
			return ErrImageRequired
		}
		if _, err := os.Stat(r.ImagePath); err != nil {
			return fmt.Errorf("%w: %s", ErrImageNotFound, r.ImagePath)
		}
		if r.ImageMIMEType == "" {
			r.ImageMIMEType = MIMETypeForImage(r.ImagePath)
		}
	}

	return nil
}

// MIMETypeForImage resolves the image MIME type from the file extension.
// PNG is detected explicitly; everything else is treated as JPEG.
func MIMETypeForImage(path string) string {
	if strings.HasSuffix(strings.ToLower(path), ".png") {
		return "image/png"
	}
	return "image/jpeg"
}
