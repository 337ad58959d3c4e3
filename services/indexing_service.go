package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fsnotify/fsnotify"

	"archivechat/models"
	"archivechat/pkg/log"
)

// ErrEmptyCorpus is returned when the corpus directory holds no ingestible
// documents. An empty index is indistinguishable from "no evidence exists"
// at query time, so ingestion refuses to produce one silently.
var ErrEmptyCorpus = errors.New("corpus directory contains no ingestible documents")

// IngestionService rebuilds the vector index from a corpus directory of
// PDFs plus at most one CSV of structured records.
type IngestionService struct {
	embedder Embedder
	index    VectorIndex
	splitter *Splitter
}

func NewIngestionService(embedder Embedder, index VectorIndex, splitter *Splitter) *IngestionService {
	return &IngestionService{embedder: embedder, index: index, splitter: splitter}
}

// IngestCorpus loads, splits, and embeds every supported file under
// dirPath, then replaces the index contents with the result. All embedding
// happens before the first write, so an unreachable embedding collaborator
// aborts before any prior index is touched; a failed write triggers a reset
// so no partial index survives. The reset leaves the collection empty, not
// restored: the previous contents are gone once the write phase starts, and
// the returned error says so. Returns the number of chunks indexed.
func (s *IngestionService) IngestCorpus(ctx context.Context, dirPath string) (int, error) {
	files, err := collectCorpusFiles(dirPath)
	if err != nil {
		return 0, err
	}
	log.Infow("starting corpus ingestion", "dir", dirPath, "files", len(files))

	var chunks []models.Chunk
	for _, path := range files {
		pages, err := LoadCorpusFile(path)
		if err != nil {
			return 0, fmt.Errorf("failed to load %s: %w", path, err)
		}
		fileChunks := 0
		for _, page := range pages {
			split, err := s.splitter.Split(page)
			if err != nil {
				return 0, err
			}
			chunks = append(chunks, split...)
			fileChunks += len(split)
		}
		log.Infow("loaded corpus file", "file", filepath.Base(path), "pages", len(pages), "chunks", fileChunks)
	}
	if len(chunks) == 0 {
		return 0, ErrEmptyCorpus
	}

	vectors := make([][]float32, len(chunks))
	for i, chunk := range chunks {
		vector, err := s.embedder.Embed(ctx, chunk.Text)
		if err != nil {
			return 0, fmt.Errorf("failed to embed chunk %d of %s: %w", i, chunk.Source, err)
		}
		vectors[i] = vector
	}

	if err := s.index.Reset(ctx); err != nil {
		return 0, fmt.Errorf("failed to reset index: %w", err)
	}
	if err := s.index.Add(ctx, chunks, vectors); err != nil {
		if resetErr := s.index.Reset(ctx); resetErr != nil {
			log.Error("failed to clear partial index after write failure", resetErr)
		}
		return 0, fmt.Errorf("failed to write index, collection is now empty and needs re-ingestion: %w", err)
	}

	log.Infow("corpus ingestion complete", "chunks", len(chunks))
	return len(chunks), nil
}

// collectCorpusFiles gathers supported files in deterministic order and
// enforces the at-most-one-CSV contract.
func collectCorpusFiles(dirPath string) ([]string, error) {
	info, err := os.Stat(dirPath)
	if err != nil {
		return nil, fmt.Errorf("corpus directory unreadable: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("corpus path %s is not a directory", dirPath)
	}

	var files []string
	csvCount := 0
	err = filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !isSupportedFile(path) {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".csv") {
			csvCount++
			if csvCount > 1 {
				return fmt.Errorf("corpus may contain at most one CSV file, found another: %s", path)
			}
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrEmptyCorpus
	}
	sort.Strings(files)
	return files, nil
}

// Watch re-runs a full ingestion whenever a supported corpus file changes.
// It blocks until the context is cancelled. Queries must not be served from
// the same index location while a watch-triggered rebuild is running.
func (s *IngestionService) Watch(ctx context.Context, dirPath string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create corpus watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dirPath); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dirPath, err)
	}
	log.Infow("watching corpus directory", "dir", dirPath)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isSupportedFile(event.Name) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				log.Infow("corpus change detected, rebuilding index", "file", event.Name, "op", event.Op.String())
				if _, err := s.IngestCorpus(ctx, dirPath); err != nil {
					log.Error("watch-triggered ingestion failed", err)
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error("corpus watcher error", err)
		case <-ctx.Done():
			log.Info("corpus watcher shutting down")
			return ctx.Err()
		}
	}
}
