// Package imagegen wraps the external text-to-image models the generateImage
// tool delegates to.
package imagegen

import (
	"context"

	"github.com/cockroachdb/errors"
)

// ErrNotConfigured is returned by Unconfigured.
var ErrNotConfigured = errors.New("image generation is not configured")

type Request struct {
	Prompt string
	// Steps is the number of diffusion steps. Providers without the notion
	// ignore it.
	Steps int
}

// Image is a generated image, base64 encoded.
type Image struct {
	Data     string
	MIMEType string
}

type Generator interface {
	Generate(ctx context.Context, req Request) (Image, error)
}

// Unconfigured is the Generator used when no provider is set up.
type Unconfigured struct{}

func (Unconfigured) Generate(context.Context, Request) (Image, error) {
	return Image{}, ErrNotConfigured
}
