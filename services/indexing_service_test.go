package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func corpusWithCSV(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	content := "name,testimony\nAda Hartley,Worked fourteen hours in the mill\nThomas Crane,Kept the overseer's schedule\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "census.csv"), []byte(content), 0o644))
	return dir
}

func newTestIngestion(embedder Embedder, index VectorIndex) *IngestionService {
	return NewIngestionService(embedder, index, NewSplitter(1000, 150))
}

func TestIngestEmptyCorpusIsFatal(t *testing.T) {
	index := &fakeIndex{}
	s := newTestIngestion(&fakeEmbedder{}, index)

	_, err := s.IngestCorpus(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, ErrEmptyCorpus)
	assert.Equal(t, 0, index.resets) // no zero-chunk index is ever committed
}

func TestIngestMissingCorpusDirIsFatal(t *testing.T) {
	s := newTestIngestion(&fakeEmbedder{}, &fakeIndex{})
	_, err := s.IngestCorpus(context.Background(), filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrEmptyCorpus)
}

func TestIngestWritesChunksWithProvenance(t *testing.T) {
	index := &fakeIndex{}
	s := newTestIngestion(&fakeEmbedder{}, index)

	count, err := s.IngestCorpus(context.Background(), corpusWithCSV(t))
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.Len(t, index.added, 2)
	assert.Equal(t, 1, index.resets)
	for _, chunk := range index.added {
		assert.Equal(t, "census.csv", chunk.Source)
		assert.NotEmpty(t, chunk.Text)
	}
	assert.Equal(t, 0, index.added[0].Page)
	assert.Equal(t, 1, index.added[1].Page)
}

func TestIngestEmbeddingFailureAbortsBeforeAnyWrite(t *testing.T) {
	index := &fakeIndex{}
	s := newTestIngestion(&fakeEmbedder{err: errors.New("embedding api down")}, index)

	_, err := s.IngestCorpus(context.Background(), corpusWithCSV(t))
	require.Error(t, err)
	assert.Equal(t, 0, index.resets)
	assert.Empty(t, index.added)
}

func TestIngestWriteFailureClearsPartialIndex(t *testing.T) {
	index := &fakeIndex{addErr: errors.New("disk full")}
	s := newTestIngestion(&fakeEmbedder{}, index)

	_, err := s.IngestCorpus(context.Background(), corpusWithCSV(t))
	require.Error(t, err)
	assert.Equal(t, 2, index.resets) // once before the write, once to clear it
	assert.Contains(t, err.Error(), "needs re-ingestion")
}

func TestIngestRejectsMultipleCSVFiles(t *testing.T) {
	dir := corpusWithCSV(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "extra.csv"), []byte("a,b\n1,2\n"), 0o644))

	s := newTestIngestion(&fakeEmbedder{}, &fakeIndex{})
	_, err := s.IngestCorpus(context.Background(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at most one CSV")
}
