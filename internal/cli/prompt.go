// Package cli collects a generation request interactively. It is a thin I/O
// boundary: every value it produces is validated before it reaches the
// generation client.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/maauso/veogen/internal/request"
)

// Prompter reads request fields from an input stream, narrating on an output
// stream. Defaults follow the service's accepted ranges.
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

// NewPrompter creates a Prompter reading from in and writing to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		in:  bufio.NewScanner(in),
		out: out,
	}
}

// Request walks the user through mode, prompt, parameters and, for
// image-to-video, the source image. When args carries a path, the prompt
// text is read from that file instead of being typed.
func (p *Prompter) Request(args []string) (request.Request, error) {
	mode, err := p.Mode()
	if err != nil {
		return request.Request{}, err
	}

	params, err := p.Params()
	if err != nil {
		return request.Request{}, err
	}

	req := request.Request{Mode: mode, Params: params}

	if mode == request.ModeImageToVideo {
		imagePath, err := p.ImagePath()
		if err != nil {
			return request.Request{}, err
		}
		req.ImagePath = imagePath
		req.ImageMIMEType = request.MIMETypeForImage(imagePath)
	}

	prompt, err := p.PromptText(args)
	if err != nil {
		return request.Request{}, err
	}
	req.Prompt = prompt

	return req, nil
}

// Mode asks for the generation flow until a valid choice is entered.
func (p *Prompter) Mode() (request.Mode, error) {
	fmt.Fprintln(p.out, "Choose your video generation method:")
	fmt.Fprintln(p.out, "1. Text-to-Video (generate video from a text prompt)")
	fmt.Fprintln(p.out, "2. Image-to-Video (animate an image guided by text)")

	for {
		fmt.Fprint(p.out, "Enter your choice (1 or 2): ")
		choice, err := p.readLine()
		if err != nil {
			return "", err
		}
		switch choice {
		case "1":
			return request.ModeTextToVideo, nil
		case "2":
			return request.ModeImageToVideo, nil
		}
		fmt.Fprintln(p.out, "Invalid choice. Please enter 1 or 2.")
	}
}

// PromptText reads the prompt, from a file when args names one, otherwise
// interactively until non-empty.
func (p *Prompter) PromptText(args []string) (string, error) {
	if len(args) > 0 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("read prompt file: %w", err)
		}
		prompt := strings.TrimSpace(string(data))
		fmt.Fprintf(p.out, "Prompt: %s\n", prompt)
		return prompt, nil
	}

	for {
		fmt.Fprint(p.out, "Prompt: ")
		prompt, err := p.readLine()
		if err != nil {
			return "", err
		}
		if prompt != "" {
			return prompt, nil
		}
		fmt.Fprintln(p.out, "Please enter a valid prompt.")
	}
}

// ImagePath reads the source image path until it points at an existing file.
func (p *Prompter) ImagePath() (string, error) {
	fmt.Fprint(p.out, "Image path: ")
	for {
		path, err := p.readLine()
		if err != nil {
			return "", err
		}
		if _, statErr := os.Stat(path); statErr == nil && path != "" {
			return path, nil
		}
		fmt.Fprintf(p.out, "File not found: %s\n", path)
		fmt.Fprint(p.out, "Please enter a valid image path: ")
	}
}

// Params reads the optional generation parameters, substituting defaults for
// blank or out-of-range answers rather than re-prompting.
func (p *Prompter) Params() (request.Params, error) {
	params := request.DefaultParams()

	fmt.Fprint(p.out, "Video duration in seconds (5-8, default: 5): ")
	durationStr, err := p.readLine()
	if err != nil {
		return params, err
	}
	if durationStr != "" {
		duration, convErr := strconv.Atoi(durationStr)
		if convErr != nil || duration < 5 || duration > 8 {
			fmt.Fprintln(p.out, "Duration must be between 5-8 seconds. Using default: 5")
		} else {
			params.DurationSeconds = duration
		}
	}

	fmt.Fprint(p.out, "Aspect ratio (16:9 or 9:16, default: 16:9): ")
	aspectRatio, err := p.readLine()
	if err != nil {
		return params, err
	}
	if aspectRatio == "16:9" || aspectRatio == "9:16" {
		params.AspectRatio = aspectRatio
	}

	fmt.Fprint(p.out, "Negative prompt (what to avoid): ")
	negative, err := p.readLine()
	if err != nil {
		return params, err
	}
	params.NegativePrompt = negative

	fmt.Fprint(p.out, "Use enhanced prompts? (y/n, default: y): ")
	enhance, err := p.readLine()
	if err != nil {
		return params, err
	}
	params.EnhancePrompt = strings.ToLower(enhance) != "n"

	return params, nil
}

// readLine reads one trimmed line, reporting io.EOF when input runs out.
func (p *Prompter) readLine() (string, error) {
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(p.in.Text()), nil
}
