package services

import (
	"fmt"
	"strings"

	"archivechat/models"
)

// EvidenceAssembler turns ranked candidates into the citation list shown to
// the user and the context block fed to answer generation. Citations are
// returned as part of the result, never through shared state, so a prior
// turn's evidence can never leak into the current one.
type EvidenceAssembler struct {
	titles        map[string]string
	contextChunks int
}

// NewEvidenceAssembler takes the static filename-to-title lookup table and
// the cap on how many chunks are folded into the context block.
func NewEvidenceAssembler(titles map[string]string, contextChunks int) *EvidenceAssembler {
	if contextChunks <= 0 {
		contextChunks = 6
	}
	return &EvidenceAssembler{titles: titles, contextChunks: contextChunks}
}

// ResolveTitle maps a raw source filename to its display title. Unknown
// filenames pass through unchanged.
func (a *EvidenceAssembler) ResolveTitle(source string) string {
	if title, ok := a.titles[source]; ok && title != "" {
		return title
	}
	return source
}

// Assemble builds the evidence for one turn from the ranked candidate list.
// Only the top candidates (bounded by the context cap) contribute, and the
// citation list and context block are built from the same set, so every
// (title, page) pair in one appears in the other. Pages are displayed
// 1-indexed. An empty candidate list yields Evidence.Empty() == true.
func (a *EvidenceAssembler) Assemble(candidates []models.Candidate) models.Evidence {
	var evidence models.Evidence
	seen := make(map[models.EvidenceItem]bool)
	var block strings.Builder

	folded := 0
	for _, candidate := range candidates {
		if folded >= a.contextChunks {
			break
		}
		folded++

		title := a.ResolveTitle(candidate.Chunk.Source)
		item := models.EvidenceItem{Title: title, Page: candidate.Chunk.Page + 1}

		// Tag each chunk inline so the answer model can ground itself, even
		// though the UI renders citations separately.
		fmt.Fprintf(&block, "[Source: %s, Page %d]\n%s\n\n", item.Title, item.Page, strings.TrimSpace(candidate.Chunk.Text))

		if !seen[item] {
			seen[item] = true
			evidence.Items = append(evidence.Items, item)
		}
	}

	evidence.Context = block.String()
	return evidence
}
