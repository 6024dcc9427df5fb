package chunker

import (
	"fmt"
	"strings"

	"github.com/akolanti/DocQA/internal/domain/commonModels"
)

// Separators ordered from "best" to "worst" for semantic meaning.
// Paragraph break first, then sentence enders, then plain whitespace.
var separators = [][]string{
	{"\n\n"},
	{". ", "! ", "? ", "\n"},
	{" "},
}

// Splitter walks a text left to right and hands out overlapping chunk
// drafts one at a time. Each chunk repeats the last `overlap` runes of
// the previous chunk, so stripping that prefix from every chunk after
// the first reconstructs the input exactly.
type Splitter struct {
	text     []rune
	size     int
	overlap  int
	lookback int
	pos      int //end of the previous chunk body
	seq      int
}

// New validates the chunking parameters. overlap must be strictly
// smaller than size or every step would re-emit the same text.
func New(text string, size, overlap, lookback int) (*Splitter, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk size %d must be positive", commonModels.ErrInvalidConfig, size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: overlap %d must be in [0, %d)", commonModels.ErrInvalidConfig, overlap, size)
	}
	if lookback < 0 {
		lookback = 0
	}
	return &Splitter{text: []rune(text), size: size, overlap: overlap, lookback: lookback}, nil
}

// Next returns the next chunk draft (text and sequence index only; ids
// are assigned at indexing time). ok is false once the text is consumed.
func (s *Splitter) Next() (chunk commonModels.Chunk, ok bool) {
	if s.pos >= len(s.text) {
		return commonModels.Chunk{}, false
	}

	start := s.pos - s.overlap
	if start < 0 {
		start = 0
	}

	end := start + s.size
	if end >= len(s.text) {
		end = len(s.text)
	} else {
		end = s.adjustToBoundary(start, end)
	}

	chunk = commonModels.Chunk{
		Text:          string(s.text[start:end]),
		SequenceIndex: s.seq,
	}
	s.pos = end
	s.seq++
	return chunk, true
}

// adjustToBoundary pulls a hard cut back to the nearest paragraph or
// sentence break inside the lookback window. The separator stays with
// the left chunk. The cut never moves at or before the previous chunk
// end, so the splitter always makes progress.
func (s *Splitter) adjustToBoundary(start, end int) int {
	lo := end - s.lookback
	if lo <= s.pos {
		lo = s.pos + 1
	}
	if lo >= end {
		return end
	}
	window := string(s.text[lo:end])

	for _, group := range separators {
		best := -1
		for _, sep := range group {
			idx := strings.LastIndex(window, sep)
			if idx < 0 {
				continue
			}
			cut := lo + len([]rune(window[:idx])) + len([]rune(sep))
			if cut > s.pos && cut > best {
				best = cut
			}
		}
		if best > 0 {
			return best
		}
	}
	return end
}

// Split consumes the whole text eagerly. Empty input yields zero
// chunks, not an error.
func Split(text string, size, overlap, lookback int) ([]commonModels.Chunk, error) {
	s, err := New(text, size, overlap, lookback)
	if err != nil {
		return nil, err
	}
	var chunks []commonModels.Chunk
	for {
		c, ok := s.Next()
		if !ok {
			return chunks, nil
		}
		chunks = append(chunks, c)
	}
}
