package domain

import (
	"time"

	"github.com/dat2003as/ragAIFullStack/internal/tabular"
)

// ArtifactKind identifies one of the three per-session artifact mappings.
type ArtifactKind string

const (
	KindImage    ArtifactKind = "images"
	KindCSV      ArtifactKind = "csvs"
	KindDocument ArtifactKind = "documents"
)

// Valid reports whether k is one of the three known kinds.
func (k ArtifactKind) Valid() bool {
	switch k {
	case KindImage, KindCSV, KindDocument:
		return true
	}
	return false
}

// ArtifactRecord describes one uploaded file attached to a session. The
// record is a variant over the three kinds: the common fields are always
// set, the kind-specific ones only for the matching kind.
type ArtifactRecord struct {
	Kind        ArtifactKind `json:"kind"`
	Filename    string       `json:"filename"`
	StoragePath string       `json:"-"`
	UploadedAt  time.Time    `json:"uploaded_at"`

	// Image fields.
	ResizedPath string `json:"-"`
	Format      string `json:"format,omitempty"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
	SizeBytes   int64  `json:"size_bytes,omitempty"`

	// Tabular fields. Table is the parsed handle; SourceURL is set instead
	// of StoragePath for tables loaded directly from a URL.
	RowCount    int            `json:"rows,omitempty"`
	ColumnNames []string       `json:"columns,omitempty"`
	Table       *tabular.Table `json:"-"`
	SourceURL   string         `json:"source_url,omitempty"`

	// Document fields.
	ExtractedText string `json:"-"`
	CharCount     int    `json:"char_count,omitempty"`
	WordCount     int    `json:"word_count,omitempty"`
}

// BackingPaths returns the on-disk paths exclusively owned by the record,
// in the order they should be released.
func (r ArtifactRecord) BackingPaths() []string {
	var paths []string
	if r.StoragePath != "" {
		paths = append(paths, r.StoragePath)
	}
	if r.ResizedPath != "" {
		paths = append(paths, r.ResizedPath)
	}
	return paths
}

// FileRef is one entry of the chronologically ordered artifact index that
// the context assembler renders for a chat turn.
type FileRef struct {
	Kind       ArtifactKind `json:"type"`
	FileID     string       `json:"file_id"`
	Filename   string       `json:"filename"`
	UploadedAt time.Time    `json:"uploaded_at"`
}
