package embedder

import "context"

// Client is the interface implemented by all embedding providers.
type Client interface {
	// Embed generates embeddings for a batch of texts, one vector per
	// input, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedSingle generates an embedding for a single text.
	EmbedSingle(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the width of the vectors this client produces.
	Dimensions() int

	// Close cleans up any resources.
	Close() error
}

// Config holds provider-independent embedding settings.
type Config struct {
	// Model is the embedding model name.
	Model string

	// BaseURL overrides the provider endpoint, for proxies and
	// OpenAI-compatible servers.
	BaseURL string

	// BatchSize caps how many texts go into one provider request.
	BatchSize int

	// Dimensions is the expected vector width. Zero means use the
	// model's default.
	Dimensions int
}

// modelDimensions maps known model names to their vector widths.
var modelDimensions = map[string]int{
	"text-embedding-ada-002": 1536,
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"all-MiniLM-L6-v2":       384,
}

// resolveDimensions returns the configured width, falling back to the
// model's known default.
func (c Config) resolveDimensions() int {
	if c.Dimensions > 0 {
		return c.Dimensions
	}
	if d, ok := modelDimensions[c.Model]; ok {
		return d
	}
	return 1536
}
