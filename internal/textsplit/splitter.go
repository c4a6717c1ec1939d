// Package textsplit splits text into bounded, optionally overlapping chunks
// by descending through a precedence list of separators.
package textsplit

import (
	"strings"
	"unicode/utf8"
)

// DefaultSeparators is the coarse-to-fine precedence used for prose:
// paragraph break, line break, sentence boundary, word boundary.
var DefaultSeparators = []string{"\n\n", "\n", ". ", " "}

// Splitter carries the chunking parameters. The zero value is not useful;
// construct with New.
type Splitter struct {
	ChunkSize  int
	Overlap    int
	Separators []string
}

// New returns a Splitter with the given size and overlap and the default
// separator precedence.
func New(chunkSize, overlap int) *Splitter {
	return &Splitter{
		ChunkSize:  chunkSize,
		Overlap:    overlap,
		Separators: DefaultSeparators,
	}
}

// Split chunks text with the splitter's parameters.
func (s *Splitter) Split(text string) []string {
	return Split(text, s.ChunkSize, s.Overlap, s.Separators)
}

// Split divides text into chunks of at most chunkSize characters, retaining
// the last overlap characters of each emitted chunk as the seed of the next.
// Pieces longer than chunkSize are recursed into with the remaining, finer
// separators; when none remain the piece is emitted as-is. Empty and
// whitespace-only chunks are dropped.
func Split(text string, chunkSize, overlap int, separators []string) []string {
	chunks := split(text, chunkSize, overlap, separators)
	out := chunks[:0]
	for _, c := range chunks {
		c = strings.TrimSpace(c)
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

func split(text string, chunkSize, overlap int, separators []string) []string {
	if utf8.RuneCountInString(text) <= chunkSize {
		if text == "" {
			return nil
		}
		return []string{text}
	}
	if len(separators) == 0 {
		// No finer structure to exploit; the atom stays whole.
		return []string{text}
	}

	sep := separators[0]
	pieces := strings.Split(text, sep)

	var chunks []string
	current := ""
	flush := func() {
		if current == "" {
			return
		}
		chunks = append(chunks, current)
		current = tail(current, overlap)
	}

	for _, piece := range pieces {
		if utf8.RuneCountInString(piece) > chunkSize {
			flush()
			current = ""
			chunks = append(chunks, split(piece, chunkSize, overlap, separators[1:])...)
			continue
		}

		candidate := piece
		if current != "" {
			candidate = current + sep + piece
		}
		if utf8.RuneCountInString(candidate) > chunkSize {
			flush()
			if current != "" {
				current += sep + piece
			} else {
				current = piece
			}
			// The overlap seed plus the piece can itself run over; emit
			// the piece alone in that case.
			if utf8.RuneCountInString(current) > chunkSize {
				current = piece
			}
		} else {
			current = candidate
		}
	}
	if current != "" {
		chunks = append(chunks, current)
	}
	return chunks
}

// tail returns the last n characters of s, or all of s when shorter.
func tail(s string, n int) string {
	if n <= 0 {
		return ""
	}
	skip := utf8.RuneCountInString(s) - n
	if skip <= 0 {
		return s
	}
	for i := range s {
		if skip == 0 {
			return s[i:]
		}
		skip--
	}
	return s
}
