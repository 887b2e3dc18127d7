package request

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	assert.Equal(t, 5, p.DurationSeconds)
	assert.Equal(t, "16:9", p.AspectRatio)
	assert.True(t, p.EnhancePrompt)
	assert.Empty(t, p.NegativePrompt)
}

func TestMode_IsValid(t *testing.T) {
	assert.True(t, ModeTextToVideo.IsValid())
	assert.True(t, ModeImageToVideo.IsValid())
	assert.False(t, Mode("audio_to_video").IsValid())
	assert.False(t, Mode("").IsValid())
}

func TestRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr bool
	}{
		{
			name: "valid text-to-video",
			req:  Request{Prompt: "a cat", Mode: ModeTextToVideo, Params: DefaultParams()},
		},
		{
			name:    "empty prompt",
			req:     Request{Prompt: "", Mode: ModeTextToVideo, Params: DefaultParams()},
			wantErr: true,
		},
		{
			name: "duration below range",
			req: Request{Prompt: "a cat", Mode: ModeTextToVideo, Params: Params{
				DurationSeconds: 4, AspectRatio: "16:9",
			}},
			wantErr: true,
		},
		{
			name: "duration above range",
			req: Request{Prompt: "a cat", Mode: ModeTextToVideo, Params: Params{
				DurationSeconds: 9, AspectRatio: "16:9",
			}},
			wantErr: true,
		},
		{
			name: "bad aspect ratio",
			req: Request{Prompt: "a cat", Mode: ModeTextToVideo, Params: Params{
				DurationSeconds: 5, AspectRatio: "4:3",
			}},
			wantErr: true,
		},
		{
			name:    "unknown mode",
			req:     Request{Prompt: "a cat", Mode: Mode("audio_to_video"), Params: DefaultParams()},
			wantErr: true,
		},
		{
			name: "portrait aspect ratio",
			req: Request{Prompt: "a cat", Mode: ModeTextToVideo, Params: Params{
				DurationSeconds: 8, AspectRatio: "9:16", EnhancePrompt: true,
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRequest_Validate_ImageToVideo(t *testing.T) {
	t.Run("missing image path", func(t *testing.T) {
		req := Request{Prompt: "animate", Mode: ModeImageToVideo, Params: DefaultParams()}
		err := req.Validate()
		assert.ErrorIs(t, err, ErrImageRequired)
	})

	t.Run("image does not exist", func(t *testing.T) {
		req := Request{
			Prompt:    "animate",
			Mode:      ModeImageToVideo,
			Params:    DefaultParams(),
			ImagePath: "/does/not/exist.png",
		}
		err := req.Validate()
		assert.ErrorIs(t, err, ErrImageNotFound)
	})

	t.Run("existing image resolves MIME type", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "frame.png")
		require.NoError(t, os.WriteFile(path, []byte("png"), 0600))

		req := Request{
			Prompt:    "animate",
			Mode:      ModeImageToVideo,
			Params:    DefaultParams(),
			ImagePath: path,
		}
		require.NoError(t, req.Validate())
		assert.Equal(t, "image/png", req.ImageMIMEType)
	})
}

func TestMIMETypeForImage(t *testing.T) {
	assert.Equal(t, "image/png", MIMETypeForImage("shot.PNG"))
	assert.Equal(t, "image/jpeg", MIMETypeForImage("shot.jpg"))
	assert.Equal(t, "image/jpeg", MIMETypeForImage("shot.webp"))
}
