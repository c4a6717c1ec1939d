// Package llm provides the completion collaborator: the assembled context
// parts go in, the model's text comes back. Any failure is terminal for the
// turn; retries are the caller's business.
package llm

import "context"

// Part is one entry of an ordered prompt context: either text or an inline
// image. Exactly one of Text and ImageData is set.
type Part struct {
	Text      string
	ImageData []byte
	ImageMIME string
}

// TextPart wraps text as a Part.
func TextPart(text string) Part {
	return Part{Text: text}
}

// ImagePart wraps raw image bytes as a Part.
func ImagePart(data []byte, mime string) Part {
	return Part{ImageData: data, ImageMIME: mime}
}

// IsImage reports whether the part carries image bytes.
func (p Part) IsImage() bool { return len(p.ImageData) > 0 }

// Completer sends ordered content parts to the model and returns its reply.
type Completer interface {
	Complete(ctx context.Context, parts []Part) (string, error)
}
