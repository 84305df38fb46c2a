package vector

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"github.com/lexquery/lexquery/pkg/types"
)

const chunkKeyPrefix = "chunk:"

// Hit is one scored chunk returned by a similarity query.
type Hit struct {
	Chunk types.Chunk `json:"chunk"`
	Score float64     `json:"score"`
}

// storedChunk is the on-disk value: the chunk plus its embedding.
type storedChunk struct {
	Chunk     types.Chunk `json:"chunk"`
	Embedding []float32   `json:"embedding"`
}

// Store is a BadgerDB-backed chunk/embedding index scored by cosine
// similarity. It is safe for concurrent use; all query-time access is
// read-only.
type Store struct {
	db         *badger.DB
	dimensions int
}

// Open opens (or creates) a store at path. dimensions fixes the
// embedding width; upserts and queries with a different width are
// rejected.
func Open(path string, dimensions int) (*Store, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("vector store dimensions must be positive, got %d", dimensions)
	}

	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector store at %s: %w", path, err)
	}

	return &Store{db: db, dimensions: dimensions}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Dimensions returns the embedding width the store was opened with.
func (s *Store) Dimensions() int {
	return s.dimensions
}

func chunkKey(id string) []byte {
	return []byte(chunkKeyPrefix + id)
}

// Upsert writes chunks with their embeddings. Writing an existing
// chunk id replaces the previous record. Used only by ingestion; the
// query path never mutates the store.
func (s *Store) Upsert(ctx context.Context, chunks []types.Chunk, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("chunk/embedding count mismatch: %d vs %d", len(chunks), len(embeddings))
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}
		if chunk.ID == "" {
			return fmt.Errorf("chunk %d has an empty id", i)
		}
		if len(embeddings[i]) != s.dimensions {
			return fmt.Errorf("chunk %s: embedding has %d dimensions, store expects %d",
				chunk.ID, len(embeddings[i]), s.dimensions)
		}

		value, err := json.Marshal(storedChunk{Chunk: chunk, Embedding: embeddings[i]})
		if err != nil {
			return fmt.Errorf("failed to marshal chunk %s: %w", chunk.ID, err)
		}
		if err := wb.Set(chunkKey(chunk.ID), value); err != nil {
			return fmt.Errorf("failed to stage chunk %s: %w", chunk.ID, err)
		}
	}

	if err := wb.Flush(); err != nil {
		return fmt.Errorf("failed to write chunks: %w", err)
	}
	return nil
}

// Count returns the number of indexed chunks.
func (s *Store) Count(ctx context.Context) (int, error) {
	count := 0
	err := s.db.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(chunkKeyPrefix)

		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	return count, err
}

// Query returns up to k chunks ranked by cosine similarity to the
// query embedding, highest first, ties broken by chunk id ascending.
// The predicate is applied as a hard filter before ranking.
func (s *Store) Query(ctx context.Context, embedding []float32, k int, pred *Predicate) ([]Hit, error) {
	if len(embedding) != s.dimensions {
		return nil, fmt.Errorf("query embedding has %d dimensions, store expects %d",
			len(embedding), s.dimensions)
	}
	if k < 1 {
		return nil, fmt.Errorf("k must be at least 1, got %d", k)
	}

	var hits []Hit
	err := s.db.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkKeyPrefix)

		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var stored storedChunk
			if err := iter.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &stored)
			}); err != nil {
				return fmt.Errorf("corrupt chunk record %s: %w", iter.Item().Key(), err)
			}

			if !pred.Matches(stored.Chunk.Metadata) {
				continue
			}

			hits = append(hits, Hit{
				Chunk: stored.Chunk,
				Score: cosineSimilarity(embedding, stored.Embedding),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Chunk.ID < hits[j].Chunk.ID
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// cosineSimilarity computes the cosine of the angle between two
// vectors, 0 for zero-length input.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
