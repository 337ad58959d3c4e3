package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"
	"github.com/google/uuid"

	"archivechat/models"
	"archivechat/pkg/log"
)

// VectorIndex is the persisted store of (chunk text, vector, metadata)
// triples. It is write-only during ingestion and read-only while serving
// queries; the two must not run concurrently against the same location.
type VectorIndex interface {
	Add(ctx context.Context, chunks []models.Chunk, vectors [][]float32) error
	Search(ctx context.Context, vector []float32, k int) ([]models.SearchHit, error)
	Count(ctx context.Context) (int, error)
	Reset(ctx context.Context) error
}

type chromaIndex struct {
	client     chromago.Client
	collection chromago.Collection
	name       string
	timeout    time.Duration
}

// NewChromaIndex connects to a Chroma server and opens (or creates) the
// named collection. Every request to the server is bounded by timeout.
func NewChromaIndex(ctx context.Context, url, name string, timeout time.Duration) (VectorIndex, error) {
	client, err := chromago.NewHTTPClient(chromago.WithBaseURL(url))
	if err != nil {
		return nil, fmt.Errorf("failed to create chroma client: %w", err)
	}
	x := &chromaIndex{client: client, name: name, timeout: timeout}

	opCtx, cancel := x.opCtx(ctx)
	defer cancel()
	collection, err := openCollection(opCtx, client, name)
	if err != nil {
		return nil, err
	}
	x.collection = collection
	return x, nil
}

// opCtx bounds one server request. chroma-go's own WithTimeout option sets
// a field the v0.2.3 request path never reads, so the deadline has to come
// in through the context.
func (x *chromaIndex) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, x.timeout)
}

func openCollection(ctx context.Context, client chromago.Client, name string) (chromago.Collection, error) {
	collection, err := client.GetOrCreateCollection(
		ctx,
		name,
		chromago.WithCollectionMetadataCreate(
			chromago.NewMetadata(
				chromago.NewStringAttribute("description", "archival corpus chunks"),
			),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create collection %q: %w", name, err)
	}
	return collection, nil
}

func (x *chromaIndex) Add(ctx context.Context, chunks []models.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunks and vectors length mismatch: %d vs %d", len(chunks), len(vectors))
	}
	for i, chunk := range chunks {
		metadata := chromago.NewDocumentMetadata(
			chromago.NewStringAttribute("source", chunk.Source),
			chromago.NewIntAttribute("page", int64(chunk.Page)),
			chromago.NewIntAttribute("start_index", int64(chunk.StartIndex)),
		)
		docID := chromago.DocumentID(fmt.Sprintf("%s-chunk%d", uuid.New().String(), i))
		opCtx, cancel := x.opCtx(ctx)
		err := x.collection.Add(opCtx,
			chromago.WithIDs(docID),
			chromago.WithTexts(chunk.Text),
			chromago.WithEmbeddings(embeddings.NewEmbeddingFromFloat32(vectors[i])),
			chromago.WithMetadatas(metadata),
		)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to add chunk %d (%s p.%d) to chroma: %w", i, chunk.Source, chunk.Page, err)
		}
	}
	return nil
}

func (x *chromaIndex) Search(ctx context.Context, vector []float32, k int) ([]models.SearchHit, error) {
	opCtx, cancel := x.opCtx(ctx)
	defer cancel()
	results, err := x.collection.Query(
		opCtx,
		chromago.WithQueryEmbeddings(embeddings.NewEmbeddingFromFloat32(vector)),
		chromago.WithNResults(k),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chroma: %w", err)
	}

	documentGroups := results.GetDocumentsGroups()
	metadataGroups := results.GetMetadatasGroups()
	distanceGroups := results.GetDistancesGroups()
	if len(documentGroups) == 0 {
		return nil, nil
	}

	hits := make([]models.SearchHit, 0, len(documentGroups[0]))
	for i, doc := range documentGroups[0] {
		if doc.ContentString() == "" {
			continue
		}
		chunk := models.Chunk{Text: doc.ContentString()}
		if len(metadataGroups) > 0 && i < len(metadataGroups[0]) {
			applyMetadata(&chunk, metadataGroups[0][i])
		}
		// Chroma reports distances; invert so higher is better.
		score := 0.0
		if len(distanceGroups) > 0 && i < len(distanceGroups[0]) {
			score = 1 - float64(distanceGroups[0][i])
		}
		hits = append(hits, models.SearchHit{Chunk: chunk, Score: score})
	}
	return hits, nil
}

// applyMetadata copies provenance out of a Chroma DocumentMetadata. The
// struct has no public accessor for its values, so round-trip through JSON.
func applyMetadata(chunk *models.Chunk, metadata chromago.DocumentMetadata) {
	if metadata == nil {
		return
	}
	jsonBytes, err := json.Marshal(metadata)
	if err != nil {
		log.Warnf("could not marshal chunk metadata: %v", err)
		return
	}
	var metaMap map[string]interface{}
	if err := json.Unmarshal(jsonBytes, &metaMap); err != nil {
		log.Warnf("could not unmarshal chunk metadata: %v", err)
		return
	}
	if source, ok := metaMap["source"].(string); ok {
		chunk.Source = source
	}
	if page, ok := metaMap["page"].(float64); ok {
		chunk.Page = int(page)
	}
	if start, ok := metaMap["start_index"].(float64); ok {
		chunk.StartIndex = int(start)
	}
}

func (x *chromaIndex) Count(ctx context.Context) (int, error) {
	opCtx, cancel := x.opCtx(ctx)
	defer cancel()
	count, err := x.collection.Count(opCtx)
	if err != nil {
		return 0, fmt.Errorf("failed to count items in collection: %w", err)
	}
	return int(count), nil
}

// Reset drops and recreates the collection so a rebuild never leaves stale
// chunks behind.
func (x *chromaIndex) Reset(ctx context.Context) error {
	delCtx, cancel := x.opCtx(ctx)
	err := x.client.DeleteCollection(delCtx, x.name)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to delete collection %q: %w", x.name, err)
	}
	openCtx, cancel := x.opCtx(ctx)
	defer cancel()
	collection, err := openCollection(openCtx, x.client, x.name)
	if err != nil {
		return err
	}
	x.collection = collection
	return nil
}
