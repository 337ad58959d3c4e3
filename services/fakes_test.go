package services

import (
	"context"
	"fmt"

	"archivechat/models"
)

// fakeEmbedder returns canned vectors per input text.
type fakeEmbedder struct {
	vecs   map[string][]float32
	errFor map[string]error
	err    error
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	if err, ok := f.errFor[text]; ok {
		return nil, err
	}
	if vec, ok := f.vecs[text]; ok {
		return vec, nil
	}
	return []float32{0}, nil
}

func vecKey(vec []float32) string { return fmt.Sprint(vec) }

// fakeIndex serves canned hits keyed by the query vector and records writes.
type fakeIndex struct {
	hits      map[string][]models.SearchHit
	searchErr error
	added     []models.Chunk
	addErr    error
	resets    int
	resetErr  error
	count     int
	countErr  error
}

func (f *fakeIndex) Search(_ context.Context, vector []float32, _ int) ([]models.SearchHit, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.hits[vecKey(vector)], nil
}

func (f *fakeIndex) Add(_ context.Context, chunks []models.Chunk, _ [][]float32) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.added = append(f.added, chunks...)
	return nil
}

func (f *fakeIndex) Count(_ context.Context) (int, error) {
	return f.count, f.countErr
}

func (f *fakeIndex) Reset(_ context.Context) error {
	if f.resetErr != nil {
		return f.resetErr
	}
	f.resets++
	f.added = nil
	return nil
}

// fakeExpanderClient stands in for the expansion LLM collaborator.
type fakeExpanderClient struct {
	alts []string
	err  error
}

func (f *fakeExpanderClient) ExpandOne(_ context.Context, _ string) ([]string, error) {
	return f.alts, f.err
}

// fakeExpansion stands in for the whole expansion stage in chat tests.
type fakeExpansion struct {
	queries []string
}

func (f *fakeExpansion) Expand(_ context.Context, query string) []string {
	if f.queries != nil {
		return f.queries
	}
	return []string{query}
}

// fakeRetriever records calls and serves canned candidates.
type fakeRetriever struct {
	candidates []models.Candidate
	err        error
	calls      int
}

func (f *fakeRetriever) Retrieve(_ context.Context, _ []string) ([]models.Candidate, error) {
	f.calls++
	return f.candidates, f.err
}

// fakeAnswerer records what it was asked to generate.
type fakeAnswerer struct {
	answer     string
	err        error
	calls      int
	gotQuery   string
	gotContext string
	gotPersona string
}

func (f *fakeAnswerer) Generate(_ context.Context, query, contextBlock, persona string) (string, error) {
	f.calls++
	f.gotQuery = query
	f.gotContext = contextBlock
	f.gotPersona = persona
	return f.answer, f.err
}
