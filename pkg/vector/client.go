package vector

import (
	"context"
	"fmt"
	"strings"

	"github.com/lexquery/lexquery/pkg/embedder"
	"github.com/lexquery/lexquery/pkg/types"
)

// Index is the store surface the client needs. *Store satisfies it.
type Index interface {
	Query(ctx context.Context, embedding []float32, k int, pred *Predicate) ([]Hit, error)
	Dimensions() int
}

// Client is the vector search backend: it embeds query text and ranks
// indexed chunks against it.
type Client struct {
	index    Index
	embedder embedder.Client
}

// NewClient wires an index to an embedding client. The two must agree
// on vector width; a mismatch here would otherwise surface as garbage
// similarity scores at query time.
func NewClient(index Index, emb embedder.Client) (*Client, error) {
	if index.Dimensions() != emb.Dimensions() {
		return nil, fmt.Errorf("index expects %d dimensions but embedder produces %d",
			index.Dimensions(), emb.Dimensions())
	}
	return &Client{index: index, embedder: emb}, nil
}

// Search embeds the query text and returns up to k hits passing the
// predicate. An embedding provider failure is reported as an
// EmbeddingError; a store failure as a vector BackendUnavailableError.
func (c *Client) Search(ctx context.Context, text string, k int, pred *Predicate) ([]Hit, error) {
	text = strings.ReplaceAll(text, "\n", " ")

	embedding, err := c.embedder.EmbedSingle(ctx, text)
	if err != nil {
		return nil, &types.EmbeddingError{Err: err}
	}

	hits, err := c.index.Query(ctx, embedding, k, pred)
	if err != nil {
		return nil, types.NewBackendUnavailableError(types.BackendVector, err)
	}
	return hits, nil
}
