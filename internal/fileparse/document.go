package fileparse

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/dat2003as/ragAIFullStack/internal/domain"
)

// AllowedDocumentExtensions lists the document formats accepted for upload.
var AllowedDocumentExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".txt":  true,
	".md":   true,
}

// DocMeta is the result of validating an uploaded document.
type DocMeta struct {
	Extension string  `json:"extension"`
	SizeMB    float64 `json:"size_mb"`
	Name      string  `json:"name"`
}

// DocumentParser validates documents and extracts their text.
type DocumentParser struct {
	MaxSizeMB int
}

// NewDocumentParser returns a parser capped at maxSizeMB per file.
func NewDocumentParser(maxSizeMB int) *DocumentParser {
	return &DocumentParser{MaxSizeMB: maxSizeMB}
}

// Validate checks extension and size.
func (p *DocumentParser) Validate(path string) (DocMeta, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !AllowedDocumentExtensions[ext] {
		return DocMeta{}, fmt.Errorf("%w: unsupported format %q", domain.ErrValidation, ext)
	}
	info, err := os.Stat(path)
	if err != nil {
		return DocMeta{}, fmt.Errorf("stat document: %w", err)
	}
	sizeMB := float64(info.Size()) / (1 << 20)
	if p.MaxSizeMB > 0 && sizeMB > float64(p.MaxSizeMB) {
		return DocMeta{}, fmt.Errorf("%w: document is %.2fMB, max %dMB", domain.ErrValidation, sizeMB, p.MaxSizeMB)
	}
	return DocMeta{Extension: ext, SizeMB: sizeMB, Name: filepath.Base(path)}, nil
}

// Parse extracts plain text from the document, dispatching on extension.
func (p *DocumentParser) Parse(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return parsePDF(path)
	case ".docx":
		return parseDOCX(path)
	case ".txt", ".md":
		return parseText(path)
	}
	return "", fmt.Errorf("%w: unsupported format %q", domain.ErrValidation, filepath.Ext(path))
}

func parseText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func parsePDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: open pdf: %v", domain.ErrValidation, err)
	}
	defer f.Close()

	body, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: extract pdf text: %v", domain.ErrValidation, err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(body); err != nil {
		return "", fmt.Errorf("%w: extract pdf text: %v", domain.ErrValidation, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// parseDOCX pulls paragraph text out of the word/document.xml entry. DOCX is
// a zip of XML; only w:t runs carry visible text, paragraph ends map to
// blank lines.
func parseDOCX(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("%w: open docx: %v", domain.ErrValidation, err)
	}
	defer zr.Close()

	var doc io.ReadCloser
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc, err = f.Open()
			if err != nil {
				return "", fmt.Errorf("%w: open docx body: %v", domain.ErrValidation, err)
			}
			break
		}
	}
	if doc == nil {
		return "", fmt.Errorf("%w: docx has no document body", domain.ErrValidation)
	}
	defer doc.Close()

	decoder := xml.NewDecoder(doc)
	var paragraphs []string
	var current strings.Builder
	inText := false
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: parse docx xml: %v", domain.ErrValidation, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if s := strings.TrimSpace(current.String()); s != "" {
					paragraphs = append(paragraphs, s)
				}
				current.Reset()
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		paragraphs = append(paragraphs, s)
	}
	return strings.Join(paragraphs, "\n\n"), nil
}
