package directory

import (
	"context"
	"fmt"
	"time"

	"mindline/internal/observability"
)

// DefaultTopK is how many service records a query retrieves.
const DefaultTopK = 3

// Retriever answers natural-language queries with the closest service
// records from the directory store.
type Retriever struct {
	store    *Store
	embedder EmbeddingProvider
	topK     int
}

// NewRetriever creates a retriever over the given store and embedder.
func NewRetriever(store *Store, embedder EmbeddingProvider, topK int) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{
		store:    store,
		embedder: embedder,
		topK:     topK,
	}
}

// Retrieve embeds the query and returns up to topK closest records.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]Document, error) {
	if query == "" {
		return nil, fmt.Errorf("empty query")
	}

	start := time.Now()
	defer func() {
		observability.RecordRetrieval(time.Since(start))
	}()

	embedding, err := r.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	docs, err := r.store.TopK(ctx, embedding, r.topK)
	if err != nil {
		return nil, fmt.Errorf("failed to search directory: %w", err)
	}
	return docs, nil
}
