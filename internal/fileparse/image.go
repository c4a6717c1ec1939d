// Package fileparse implements the upload collaborators: validate and parse
// for the three artifact kinds. Callers hand in already-saved file paths and
// get metadata or extracted content back; all state stays with the caller.
package fileparse

import (
	"fmt"
	"image"
	"os"

	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"

	"github.com/dat2003as/ragAIFullStack/internal/domain"
)

// ImageMeta is the result of validating an uploaded image.
type ImageMeta struct {
	Format    string
	Width     int
	Height    int
	SizeBytes int64
}

// ImageParser validates and downsizes uploaded images.
type ImageParser struct {
	MaxSizeMB    int
	MaxDimension int
	JPEGQuality  int
}

// NewImageParser returns a parser with the given limits.
func NewImageParser(maxSizeMB, maxDimension, jpegQuality int) *ImageParser {
	return &ImageParser{MaxSizeMB: maxSizeMB, MaxDimension: maxDimension, JPEGQuality: jpegQuality}
}

// Validate checks size and decodability and returns the image metadata.
func (p *ImageParser) Validate(path string) (ImageMeta, error) {
	info, err := os.Stat(path)
	if err != nil {
		return ImageMeta{}, fmt.Errorf("stat image: %w", err)
	}
	if p.MaxSizeMB > 0 && info.Size() > int64(p.MaxSizeMB)<<20 {
		return ImageMeta{}, fmt.Errorf("%w: image is %.2fMB, max %dMB",
			domain.ErrValidation, float64(info.Size())/(1<<20), p.MaxSizeMB)
	}

	f, err := os.Open(path)
	if err != nil {
		return ImageMeta{}, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return ImageMeta{}, fmt.Errorf("%w: not a decodable image: %v", domain.ErrValidation, err)
	}
	return ImageMeta{
		Format:    format,
		Width:     cfg.Width,
		Height:    cfg.Height,
		SizeBytes: info.Size(),
	}, nil
}

// ResizeIfNeeded writes a JPEG sibling (path + ".resized.jpg") capped at
// MaxDimension on the longer side and returns its path. Images already
// within bounds return "".
func (p *ImageParser) ResizeIfNeeded(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	img, _, err := image.Decode(f)
	f.Close()
	if err != nil {
		return "", fmt.Errorf("%w: decode image: %v", domain.ErrValidation, err)
	}

	bounds := img.Bounds()
	if p.MaxDimension <= 0 || (bounds.Dx() <= p.MaxDimension && bounds.Dy() <= p.MaxDimension) {
		return "", nil
	}

	small := resize.Thumbnail(uint(p.MaxDimension), uint(p.MaxDimension), img, resize.Lanczos3)

	out := path + ".resized.jpg"
	dst, err := os.Create(out)
	if err != nil {
		return "", fmt.Errorf("create resized image: %w", err)
	}
	defer dst.Close()

	quality := p.JPEGQuality
	if quality <= 0 {
		quality = 85
	}
	if err := jpeg.Encode(dst, small, &jpeg.Options{Quality: quality}); err != nil {
		os.Remove(out)
		return "", fmt.Errorf("encode resized image: %w", err)
	}
	return out, nil
}
