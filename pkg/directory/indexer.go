package directory

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// embedBatchSize bounds how many records go to the embeddings API per call.
const embedBatchSize = 64

// Indexer loads a services dataset, validates it, and writes records plus
// embeddings into the store.
type Indexer struct {
	store    *Store
	embedder EmbeddingProvider
}

// NewIndexer creates an indexer.
func NewIndexer(store *Store, embedder EmbeddingProvider) *Indexer {
	return &Indexer{store: store, embedder: embedder}
}

// IndexFile ingests a JSON dataset file (an array of service records).
// Invalid records are logged and skipped; the rest are indexed. Returns how
// many records were indexed.
func (ix *Indexer) IndexFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read dataset: %w", err)
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return 0, fmt.Errorf("failed to parse dataset: %w", err)
	}

	var docs []Document
	var contents []string
	skipped := 0
	for i, raw := range raws {
		if err := ValidateRecord(raw); err != nil {
			skipped++
			log.Warn().Int("record", i).Err(err).Msg("Skipping invalid record")
			continue
		}

		doc, err := decodeRecord(raw)
		if err != nil {
			skipped++
			log.Warn().Int("record", i).Err(err).Msg("Skipping undecodable record")
			continue
		}

		docs = append(docs, doc)
		contents = append(contents, buildContent(doc))
	}

	indexed := 0
	for start := 0; start < len(docs); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(docs) {
			end = len(docs)
		}

		embeddings, err := ix.embedder.GenerateEmbeddings(ctx, contents[start:end])
		if err != nil {
			return indexed, fmt.Errorf("failed to embed batch: %w", err)
		}

		for i, doc := range docs[start:end] {
			hash := contentHash(contents[start+i])
			if err := ix.store.Upsert(ctx, doc, hash, embeddings[i]); err != nil {
				return indexed, fmt.Errorf("failed to store record: %w", err)
			}
			indexed++
		}
	}

	log.Info().
		Str("dataset", path).
		Int("indexed", indexed).
		Int("skipped", skipped).
		Msg("Dataset indexed")

	return indexed, nil
}

// decodeRecord flattens a validated record into a field map. Scalar values
// are stringified so retrieval output has one shape.
func decodeRecord(raw json.RawMessage) (Document, error) {
	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}

	doc := make(Document, len(fields))
	for key, value := range fields {
		if value == nil {
			continue
		}
		doc[key] = fmt.Sprintf("%v", value)
	}
	return doc, nil
}

// buildContent produces the text that gets embedded for a record: name and
// description first, remaining fields in stable order.
func buildContent(doc Document) string {
	var sb strings.Builder
	sb.WriteString(doc["name"])
	sb.WriteString("\n")
	sb.WriteString(doc["description"])

	keys := make([]string, 0, len(doc))
	for key := range doc {
		if key == "name" || key == "description" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		sb.WriteString("\n")
		sb.WriteString(key)
		sb.WriteString(": ")
		sb.WriteString(doc[key])
	}
	return sb.String()
}

func contentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
