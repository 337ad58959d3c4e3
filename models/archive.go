package models

// PageText is one page (or CSV row) of raw text pulled out of a corpus
// file, before splitting. Page is 0-indexed as extracted.
type PageText struct {
	Source string
	Page   int
	Text   string
}

// Chunk is a bounded span of document text with enough provenance to
// reconstruct a citation without re-reading the source file.
type Chunk struct {
	Text       string `json:"text"`
	Source     string `json:"source"`      // base filename of the corpus file
	Page       int    `json:"page"`        // 0-indexed as extracted
	StartIndex int    `json:"start_index"` // byte offset within the page text
}

// Key identifies the chunk for candidate deduplication. Two chunks from
// different expanded-query searches that share a key are the same chunk.
type ChunkKey struct {
	Source     string
	Page       int
	StartIndex int
}

func (c Chunk) Key() ChunkKey {
	return ChunkKey{Source: c.Source, Page: c.Page, StartIndex: c.StartIndex}
}

// SearchHit is one nearest-neighbour result from a single vector search.
type SearchHit struct {
	Chunk Chunk
	Score float64
}

// Candidate is a retrieved chunk with its best similarity score and a flag
// recording whether the unexpanded query found it (used as a rank tiebreak).
type Candidate struct {
	Chunk        Chunk   `json:"chunk"`
	Score        float64 `json:"score"`
	FromOriginal bool    `json:"from_original"`
}

// EvidenceItem is one user-facing citation. Pages are displayed 1-indexed.
type EvidenceItem struct {
	Title string `json:"title"`
	Page  int    `json:"page"`
}

// Evidence is the assembled output of a retrieval turn: the citation list
// in rank order and the context block fed to the answer model. Empty
// reports whether the archive had nothing for this query; callers must
// check it rather than inspecting Context.
type Evidence struct {
	Items   []EvidenceItem `json:"items"`
	Context string         `json:"-"`
}

func (e Evidence) Empty() bool {
	return len(e.Items) == 0
}
