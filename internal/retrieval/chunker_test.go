package retrieval

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestChunker_Split(t *testing.T) {
	c := NewChunker()

	if got := c.Split("   \n\n "); got != nil {
		t.Fatalf("blank input: got %d chunks, want none", len(got))
	}

	short := "Photosynthesis converts light into chemical energy."
	if got := c.Split(short); len(got) != 1 || got[0] != short {
		t.Fatalf("short input: got %q", got)
	}

	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString("Chlorophyll absorbs red and blue light in the thylakoid membranes. ")
		if i%5 == 4 {
			b.WriteString("\n\n")
		}
	}
	chunks := c.Split(b.String())
	if len(chunks) < 5 {
		t.Fatalf("got %d chunks, want at least 5", len(chunks))
	}
	for i, ch := range chunks {
		if n := utf8.RuneCountInString(ch); n > DefaultChunkSize {
			t.Errorf("chunk %d has %d chars, limit %d", i, n, DefaultChunkSize)
		}
		if strings.TrimSpace(ch) != ch {
			t.Errorf("chunk %d is not trimmed", i)
		}
	}
}

func TestChunker_Overlap(t *testing.T) {
	c := Chunker{Size: 40, Overlap: 15, Separators: []string{" "}}
	chunks := c.Split("alpha beta gamma delta epsilon zeta eta theta iota kappa lambda mu nu xi omicron pi")
	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want several", len(chunks))
	}
	for i := 1; i < len(chunks); i++ {
		prev := strings.Fields(chunks[i-1])
		last := prev[len(prev)-1]
		if !strings.HasPrefix(chunks[i], last) && !strings.Contains(chunks[i], last+" ") {
			t.Errorf("chunk %d %q does not carry over %q from the previous chunk", i, chunks[i], last)
		}
	}
}

func TestChunker_HardSplit(t *testing.T) {
	c := Chunker{Size: 10, Overlap: 2, Separators: []string{" "}}
	chunks := c.Split(strings.Repeat("é", 25))
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	if n := utf8.RuneCountInString(chunks[2]); n != 5 {
		t.Errorf("last chunk has %d runes, want 5", n)
	}
	for _, ch := range chunks {
		if !utf8.ValidString(ch) {
			t.Errorf("chunk %q is not valid UTF-8", ch)
		}
	}
}

func TestJoinPassages(t *testing.T) {
	ps := []Passage{{Text: "one"}, {Text: "two"}, {Text: "three"}}
	if got := JoinPassages(ps, 4000); got != "one\n\ntwo\n\nthree" {
		t.Errorf("JoinPassages = %q", got)
	}
	if got := JoinPassages(ps, 7); got != "one\n\ntw" {
		t.Errorf("capped JoinPassages = %q", got)
	}
	if got := JoinPassages(nil, 10); got != "" {
		t.Errorf("empty JoinPassages = %q", got)
	}
}
