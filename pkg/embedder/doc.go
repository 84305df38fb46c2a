// Package embedder provides text embedding clients for vector representations.
//
// This package defines the Client interface and provides implementations for
// various embedding providers.
//
// # Supported Providers
//
//   - OpenAI: text-embedding-3-small, text-embedding-3-large, and any
//     OpenAI-compatible endpoint via BaseURL
//   - Local: in-process models via go-embedeverything, no API required
//
// # Usage
//
//	// Create an OpenAI embedder
//	client := embedder.NewOpenAIEmbedder(apiKey, embedder.Config{
//	    Model:     "text-embedding-3-small",
//	    BatchSize: 100,
//	})
//
//	// Embed text
//	embeddings, err := client.Embed(ctx, []string{"breach of contract damages"})
//
// # Batch Processing
//
// The Client interface supports batch embedding for efficiency:
//   - Embed(): Embed multiple texts in a single request
//   - EmbedSingle(): Convenience method for single text
//
// Implementations handle batching internally based on provider limits.
//
// # Circuit Breaking
//
// Any Client can be wrapped with NewCircuitBreakerClient, which stops
// calling a failing provider and notifies an alerter when the breaker
// trips.
package embedder
