package services

import (
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"

	"archivechat/models"
)

// Splitter cuts page text into overlapping chunks, preferring paragraph and
// sentence boundaries before falling back to character boundaries, and
// records each chunk's start offset within its page.
type Splitter struct {
	inner textsplitter.RecursiveCharacter
}

func NewSplitter(chunkSize, chunkOverlap int) *Splitter {
	return &Splitter{
		inner: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(chunkOverlap),
		),
	}
}

// Split chunks one page. Every emitted chunk carries the page's source and
// page number; chunk order follows document order so overlap stitching
// stays meaningful downstream.
func (s *Splitter) Split(page models.PageText) ([]models.Chunk, error) {
	pieces, err := s.inner.SplitText(page.Text)
	if err != nil {
		return nil, fmt.Errorf("failed to split text from %s page %d: %w", page.Source, page.Page, err)
	}

	chunks := make([]models.Chunk, 0, len(pieces))
	cursor := 0
	for _, piece := range pieces {
		if strings.TrimSpace(piece) == "" {
			continue
		}
		// The splitter trims whitespace, so locate each piece in the page
		// starting from the previous chunk's start to get its offset.
		start := cursor
		if idx := strings.Index(page.Text[cursor:], piece); idx >= 0 {
			start = cursor + idx
		}
		chunks = append(chunks, models.Chunk{
			Text:       piece,
			Source:     page.Source,
			Page:       page.Page,
			StartIndex: start,
		})
		cursor = start + 1
	}
	return chunks, nil
}
