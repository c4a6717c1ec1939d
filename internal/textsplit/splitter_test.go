package textsplit

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitShortTextSingleChunk(t *testing.T) {
	chunks := Split("hello world", 100, 0, DefaultSeparators)
	if len(chunks) != 1 || chunks[0] != "hello world" {
		t.Fatalf("unexpected chunks: %v", chunks)
	}
}

func TestSplitEmptyInput(t *testing.T) {
	if chunks := Split("", 100, 0, DefaultSeparators); len(chunks) != 0 {
		t.Fatalf("expected no chunks, got %v", chunks)
	}
	if chunks := Split("   \n\n  ", 3, 0, DefaultSeparators); len(chunks) != 0 {
		t.Fatalf("whitespace-only chunks should be dropped, got %v", chunks)
	}
}

func TestSplitRespectsChunkSize(t *testing.T) {
	text := strings.Repeat("alpha beta gamma delta. ", 50)
	for _, c := range Split(text, 80, 0, DefaultSeparators) {
		if len(c) > 80 {
			t.Fatalf("chunk exceeds size %d: %q", len(c), c)
		}
	}
}

func TestSplitRoundTripNoOverlap(t *testing.T) {
	text := "one two three\nfour five six\n\nseven eight nine ten eleven twelve"
	chunks := Split(text, 20, 0, DefaultSeparators)

	var joined []string
	for _, c := range chunks {
		joined = append(joined, strings.Fields(c)...)
	}
	want := strings.Fields(text)
	if len(joined) != len(want) {
		t.Fatalf("word count mismatch: got %d want %d (%v)", len(joined), len(want), chunks)
	}
	for i := range want {
		if joined[i] != want[i] {
			t.Fatalf("word %d: got %q want %q", i, joined[i], want[i])
		}
	}
}

func TestSplitOverlapSeedsNextChunk(t *testing.T) {
	text := strings.Repeat("aaaa bbbb cccc dddd ", 10)
	chunks := Split(text, 40, 10, DefaultSeparators)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %v", chunks)
	}
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1]
		seed := prev[len(prev)-min(10, len(prev)):]
		if !strings.HasPrefix(chunks[i], strings.TrimSpace(seed)) {
			// Oversized-atom recursion may legitimately drop the seed, but
			// plain accumulation must carry it.
			t.Fatalf("chunk %d does not start with overlap seed %q: %q", i, seed, chunks[i])
		}
	}
}

func TestSplitOversizedAtomEmittedWhole(t *testing.T) {
	atom := strings.Repeat("x", 50)
	chunks := Split(atom, 10, 0, DefaultSeparators)
	if len(chunks) != 1 || chunks[0] != atom {
		t.Fatalf("atom without separators should survive whole, got %v", chunks)
	}
}

func TestSplitRecursesIntoFinerSeparators(t *testing.T) {
	// One huge paragraph: the paragraph separator cannot help, so the
	// splitter must descend to line and word boundaries.
	text := strings.Repeat("word ", 100)
	chunks := Split(text, 30, 0, DefaultSeparators)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for _, c := range chunks {
		if len(c) > 30 {
			t.Fatalf("chunk exceeds size: %q", c)
		}
	}
}

func TestSplitMultibyteRuneBoundaries(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("héllo wörld ", 40))
	for _, c := range Split(text, 20, 5, DefaultSeparators) {
		if !utf8.ValidString(c) {
			t.Fatalf("chunk is not valid UTF-8: %q", c)
		}
		if n := utf8.RuneCountInString(c); n > 20 {
			t.Fatalf("chunk is %d characters, want <= 20: %q", n, c)
		}
	}
}
