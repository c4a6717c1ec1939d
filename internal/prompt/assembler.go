// Package prompt turns a session's artifacts and history into the bounded,
// ordered content parts of a completion call.
package prompt

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/dat2003as/ragAIFullStack/internal/adapter/llm"
	"github.com/dat2003as/ragAIFullStack/internal/domain"
)

// Truncation budgets for document text.
const (
	DefaultPerDocLimit   = 15000
	DefaultTotalDocLimit = 50000

	// A partial document below this many characters is not worth sending.
	minPartialDoc = 1000

	docTruncatedMarker       = "\n\n[Document truncated...]"
	remainingTruncatedMarker = "\n\n[Remaining documents truncated...]"
)

// How many CSV rows to preview per table.
const csvPreviewRows = 5

// Assembler builds prompt contexts. The zero limits mean the defaults.
type Assembler struct {
	PerDocLimit   int
	TotalDocLimit int
}

// New returns an Assembler with the default budgets.
func New() *Assembler {
	return &Assembler{PerDocLimit: DefaultPerDocLimit, TotalDocLimit: DefaultTotalDocLimit}
}

type entry struct {
	id  string
	rec domain.ArtifactRecord
}

// Assemble produces the ordered content parts for one turn, plus the
// chronological file index used for response metadata. history should be the
// recent window including the in-flight user message; message is that
// in-flight text. Missing image files degrade to placeholders, never abort.
func (a *Assembler) Assemble(sess *domain.Session, history []domain.Turn, message string) ([]llm.Part, []domain.FileRef) {
	ordered := orderedEntries(sess)

	refs := make([]domain.FileRef, 0, len(ordered))
	for _, e := range ordered {
		refs = append(refs, domain.FileRef{
			Kind:       e.rec.Kind,
			FileID:     e.id,
			Filename:   e.rec.Filename,
			UploadedAt: e.rec.UploadedAt,
		})
	}

	var parts []llm.Part

	if text := historyText(history); text != "" {
		parts = append(parts, llm.TextPart("Previous conversation:\n"+text+"\n"))
	}

	if len(refs) > 0 {
		parts = append(parts, llm.TextPart(
			"File upload order (earliest first):\n"+indexText(refs)+"\n"+
				"Please refer to files in this order when answering.\n"))
	}

	if text := a.csvText(ordered); text != "" {
		parts = append(parts, llm.TextPart(text))
	}
	if text := a.documentText(ordered); text != "" {
		parts = append(parts, llm.TextPart(text))
	}
	parts = append(parts, a.imageParts(ordered)...)

	parts = append(parts, llm.TextPart("\nUser question: "+message))
	return parts, refs
}

// orderedEntries flattens all three mappings and sorts by upload time,
// breaking ties by artifact id so the result is deterministic regardless of
// map iteration order.
func orderedEntries(sess *domain.Session) []entry {
	var out []entry
	for _, m := range []map[string]domain.ArtifactRecord{sess.Images, sess.CSVs, sess.Documents} {
		for id, rec := range m {
			out = append(out, entry{id: id, rec: rec})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].rec.UploadedAt.Equal(out[j].rec.UploadedAt) {
			return out[i].rec.UploadedAt.Before(out[j].rec.UploadedAt)
		}
		return out[i].id < out[j].id
	})
	return out
}

// historyText renders every turn but the in-flight last one as "role:
// content" lines.
func historyText(history []domain.Turn) string {
	if len(history) <= 1 {
		return ""
	}
	lines := make([]string, 0, len(history)-1)
	for _, t := range history[:len(history)-1] {
		lines = append(lines, t.Role+": "+t.Content)
	}
	return strings.Join(lines, "\n")
}

func indexText(refs []domain.FileRef) string {
	lines := make([]string, 0, len(refs))
	for i, r := range refs {
		lines = append(lines, fmt.Sprintf("[%d] %s → %s", i+1, strings.ToUpper(string(r.Kind)), r.Filename))
	}
	return strings.Join(lines, "\n")
}

// csvText renders every table in upload order: header, shape, columns,
// preview and summary statistics. Tabular content is assumed small relative
// to documents and is not budgeted.
func (a *Assembler) csvText(ordered []entry) string {
	lines := []string{"CSV Data Context:"}
	found := false
	for _, e := range ordered {
		if e.rec.Kind != domain.KindCSV || e.rec.Table == nil {
			continue
		}
		found = true
		t := e.rec.Table
		lines = append(lines,
			fmt.Sprintf("\n--- CSV File: %s (file_id: %s) ---", e.rec.Filename, e.id),
			fmt.Sprintf("Shape: %d rows, %d columns", t.RowCount(), len(t.Columns)),
			"Columns: "+strings.Join(t.Columns, ", "),
			fmt.Sprintf("\nFirst %d rows:\n%s", csvPreviewRows, t.HeadString(csvPreviewRows)),
		)
		if stats := t.Describe(); stats != "" {
			lines = append(lines, "\nSummary statistics:\n"+stats)
		}
	}
	if !found {
		return ""
	}
	return strings.Join(lines, "\n")
}

// documentText renders document text under the per-document and global
// budgets. Documents run in upload order; once the global budget is spent a
// trailing marker tells the model the context is incomplete.
func (a *Assembler) documentText(ordered []entry) string {
	perDoc := a.PerDocLimit
	if perDoc <= 0 {
		perDoc = DefaultPerDocLimit
	}
	total := a.TotalDocLimit
	if total <= 0 {
		total = DefaultTotalDocLimit
	}

	lines := []string{"Document Context:"}
	found := false
	used := 0
	for _, e := range ordered {
		if e.rec.Kind != domain.KindDocument {
			continue
		}
		found = true
		text := e.rec.ExtractedText
		if utf8.RuneCountInString(text) > perDoc {
			text = firstRunes(text, perDoc) + docTruncatedMarker
		}
		size := utf8.RuneCountInString(text)
		if used+size > total {
			if remaining := total - used; remaining > minPartialDoc {
				lines = append(lines,
					fmt.Sprintf("\n--- Document: %s (file_id: %s) ---", e.rec.Filename, e.id),
					firstRunes(text, remaining)+remainingTruncatedMarker,
				)
			} else {
				lines = append(lines, remainingTruncatedMarker)
			}
			break
		}
		lines = append(lines,
			fmt.Sprintf("\n--- Document: %s (file_id: %s) ---", e.rec.Filename, e.id),
			text,
		)
		used += size
	}
	if !found {
		return ""
	}
	return strings.Join(lines, "\n")
}

// firstRunes returns the first n characters of s. The budgets count
// characters, so slicing bytes could split a multi-byte rune.
func firstRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	seen := 0
	for i := range s {
		if seen == n {
			return s[:i]
		}
		seen++
	}
	return s
}

// imageParts loads each image (preferring the resized variant) as an inline
// part followed by a caption. An unreadable file becomes a placeholder text
// entry so the turn still completes.
func (a *Assembler) imageParts(ordered []entry) []llm.Part {
	var parts []llm.Part
	images := 0
	for _, e := range ordered {
		if e.rec.Kind != domain.KindImage {
			continue
		}
		images++
		path := e.rec.StoragePath
		mimeType := "image/" + strings.ToLower(e.rec.Format)
		if e.rec.ResizedPath != "" {
			path = e.rec.ResizedPath
			mimeType = "image/jpeg"
		}
		data, err := os.ReadFile(path)
		if err != nil {
			parts = append(parts, llm.TextPart(fmt.Sprintf("[failed to load image: %s]", e.rec.Filename)))
			continue
		}
		parts = append(parts,
			llm.ImagePart(data, mimeType),
			llm.TextPart(fmt.Sprintf("[Image: %s (file_id: %s)]", e.rec.Filename, e.id)),
		)
	}
	if images > 1 {
		parts = append(parts, llm.TextPart(fmt.Sprintf(
			"\nNote: %d images have been uploaded. Please refer to them by filename when answering.", images)))
	}
	return parts
}
