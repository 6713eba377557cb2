package chunker

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestThreePageDocumentMakesFourChunks(t *testing.T) {
	paras := []string{
		strings.Repeat("a", 624) + ".",
		strings.Repeat("b", 622) + ".",
		strings.Repeat("c", 622) + ".",
		strings.Repeat("d", 622) + ".",
	}
	text := strings.Join(paras, "\n\n")
	if utf8.RuneCountInString(text) != 2500 {
		t.Fatalf("fixture length = %d", utf8.RuneCountInString(text))
	}

	chunks := New(1000, 200).Split(text)
	if len(chunks) != 4 {
		t.Fatalf("expected 4 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if utf8.RuneCountInString(c) > 1000 {
			t.Fatalf("chunk %d too long: %d", i, utf8.RuneCountInString(c))
		}
		if c != paras[i] {
			t.Fatalf("chunk %d does not follow the paragraph boundary", i)
		}
	}
}

func TestWordsOverlapBetweenWindows(t *testing.T) {
	words := make([]string, 400)
	for i := range words {
		words[i] = fmt.Sprintf("w%04d", i)
	}
	text := strings.Join(words, " ")

	chunks := New(1000, 200).Split(text)
	if len(chunks) < 3 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if utf8.RuneCountInString(c) > 1000 {
			t.Fatalf("chunk %d too long", i)
		}
		if i == 0 {
			continue
		}
		prev := strings.Fields(chunks[i-1])
		first := strings.Fields(c)[0]
		shared := 0
		for j := len(prev) - 1; j >= 0 && prev[j] != first; j-- {
			shared++
		}
		if shared == len(prev) {
			t.Fatalf("chunk %d shares nothing with chunk %d", i, i-1)
		}
		overlap := strings.Join(prev[len(prev)-shared-1:], " ")
		if utf8.RuneCountInString(overlap) > 200 {
			t.Fatalf("overlap between %d and %d is %d chars", i-1, i, utf8.RuneCountInString(overlap))
		}
	}
}

func TestHardCutWithoutBoundaries(t *testing.T) {
	text := strings.Repeat("x", 2500)
	chunks := New(1000, 200).Split(text)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if utf8.RuneCountInString(c) > 1000 {
			t.Fatalf("chunk %d too long", i)
		}
	}
	if got := utf8.RuneCountInString(chunks[0]); got != 1000 {
		t.Fatalf("first chunk = %d", got)
	}
}

func TestEmptyInputYieldsNothing(t *testing.T) {
	s := New(1000, 200)
	for _, in := range []string{"", "   ", "\n\n\n"} {
		if got := s.Split(in); len(got) != 0 {
			t.Fatalf("Split(%q) = %v", in, got)
		}
	}
}

func TestDeterministicAndRuneAware(t *testing.T) {
	text := strings.Repeat("ação é ótima ", 200)
	a := New(100, 20).Split(text)
	b := New(100, 20).Split(text)
	if strings.Join(a, "|") != strings.Join(b, "|") {
		t.Fatalf("split is not deterministic")
	}
	for i, c := range a {
		if !utf8.ValidString(c) || utf8.RuneCountInString(c) > 100 {
			t.Fatalf("chunk %d invalid: %q", i, c)
		}
	}
}

func TestNewFallsBackOnBadConfig(t *testing.T) {
	s := New(0, -1)
	if s.Size != DefaultChunkSize || s.Overlap != DefaultChunkOverlap {
		t.Fatalf("unexpected defaults: %+v", s)
	}
	if s := New(100, 500); s.Overlap >= s.Size {
		t.Fatalf("overlap %d not below size %d", s.Overlap, s.Size)
	}
}
