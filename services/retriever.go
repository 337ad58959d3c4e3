package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"archivechat/models"
	"archivechat/pkg/log"
)

// ErrSearchUnavailable signals that the vector index could not be searched
// for this turn. It is distinct from a successful search with no matches.
var ErrSearchUnavailable = errors.New("archive search unavailable")

// Retriever runs one top-K vector search per expanded query and merges the
// result lists into a single deduplicated, deterministically ranked
// candidate set.
type Retriever struct {
	embedder Embedder
	index    VectorIndex
	topK     int
}

func NewRetriever(embedder Embedder, index VectorIndex, topK int) *Retriever {
	return &Retriever{embedder: embedder, index: index, topK: topK}
}

// Retrieve searches for every query in the expanded set. queries[0] must be
// the original user query: a failure on it is fatal for the turn, while a
// failed expansion search is skipped with a warning. Searches run
// concurrently but results are merged by slot, so completion order never
// affects the outcome.
func (r *Retriever) Retrieve(ctx context.Context, queries []string) ([]models.Candidate, error) {
	if len(queries) == 0 {
		return nil, fmt.Errorf("%w: no queries to search", ErrSearchUnavailable)
	}

	perQuery := make([][]models.SearchHit, len(queries))
	errs := make([]error, len(queries))

	var wg sync.WaitGroup
	for i, q := range queries {
		wg.Add(1)
		go func(slot int, query string) {
			defer wg.Done()
			vector, err := r.embedder.Embed(ctx, query)
			if err != nil {
				errs[slot] = fmt.Errorf("failed to embed query: %w", err)
				return
			}
			hits, err := r.index.Search(ctx, vector, r.topK)
			if err != nil {
				errs[slot] = err
				return
			}
			perQuery[slot] = hits
		}(i, q)
	}
	wg.Wait()

	if errs[0] != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchUnavailable, errs[0])
	}
	for i := 1; i < len(errs); i++ {
		if errs[i] != nil {
			log.Warnf("search for expanded query %q failed, skipping its results: %v", queries[i], errs[i])
			perQuery[i] = nil
		}
	}

	return mergeCandidates(perQuery), nil
}

// mergeCandidates folds per-query hit lists into one ranked candidate set.
// Hits that reference the same chunk keep the best score observed across
// all queries. Ranking is by score descending; ties go to chunks the
// original (slot 0) query found.
func mergeCandidates(perQuery [][]models.SearchHit) []models.Candidate {
	byKey := make(map[models.ChunkKey]int)
	var merged []models.Candidate

	for slot, hits := range perQuery {
		fromOriginal := slot == 0
		for _, hit := range hits {
			key := hit.Chunk.Key()
			if idx, ok := byKey[key]; ok {
				if hit.Score > merged[idx].Score {
					merged[idx].Score = hit.Score
				}
				if fromOriginal {
					merged[idx].FromOriginal = true
				}
				continue
			}
			byKey[key] = len(merged)
			merged = append(merged, models.Candidate{
				Chunk:        hit.Chunk,
				Score:        hit.Score,
				FromOriginal: fromOriginal,
			})
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Score != merged[j].Score {
			return merged[i].Score > merged[j].Score
		}
		return merged[i].FromOriginal && !merged[j].FromOriginal
	})
	return merged
}
