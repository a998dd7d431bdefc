package retrieval

import (
	"strings"
	"unicode/utf8"
)

// Default chunking parameters.
const (
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 50
)

// DefaultSeparators are tried in order, coarsest first.
var DefaultSeparators = []string{"\n\n", "\n", ". ", " "}

// Chunker splits text into overlapping chunks of at most Size characters,
// preferring to break on the coarsest separator that fits.
type Chunker struct {
	Size       int
	Overlap    int
	Separators []string
}

// NewChunker returns a chunker with the default parameters.
func NewChunker() Chunker {
	return Chunker{Size: DefaultChunkSize, Overlap: DefaultChunkOverlap, Separators: DefaultSeparators}
}

// Split returns the chunks of text. Blank input yields no chunks.
func (c Chunker) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return c.merge(c.pieces(text, 0))
}

// pieces breaks text into fragments no longer than Size, keeping each
// separator attached to the fragment before it.
func (c Chunker) pieces(text string, level int) []string {
	if runeLen(text) <= c.Size {
		return []string{text}
	}
	if level >= len(c.Separators) {
		return hardSplit(text, c.Size)
	}
	parts := strings.SplitAfter(text, c.Separators[level])
	if len(parts) == 1 {
		return c.pieces(text, level+1)
	}
	var out []string
	for _, p := range parts {
		if p == "" {
			continue
		}
		out = append(out, c.pieces(p, level+1)...)
	}
	return out
}

// merge packs fragments into chunks, carrying up to Overlap characters of
// trailing fragments into the next chunk.
func (c Chunker) merge(pieces []string) []string {
	var (
		chunks []string
		window []string
		size   int
	)
	emit := func() {
		if s := strings.TrimSpace(strings.Join(window, "")); s != "" {
			chunks = append(chunks, s)
		}
	}
	for _, p := range pieces {
		n := runeLen(p)
		if size+n > c.Size && len(window) > 0 {
			emit()
			for len(window) > 0 && (size > c.Overlap || size+n > c.Size) {
				size -= runeLen(window[0])
				window = window[1:]
			}
		}
		window = append(window, p)
		size += n
	}
	if len(window) > 0 {
		emit()
	}
	return chunks
}

func hardSplit(text string, size int) []string {
	var out []string
	for text != "" {
		cut := len(text)
		n := 0
		for i := range text {
			if n == size {
				cut = i
				break
			}
			n++
		}
		out = append(out, text[:cut])
		text = text[cut:]
	}
	return out
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
