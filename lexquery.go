package lexquery

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lexquery/lexquery/pkg/alert"
	"github.com/lexquery/lexquery/pkg/config"
	"github.com/lexquery/lexquery/pkg/embedder"
	"github.com/lexquery/lexquery/pkg/graph"
	"github.com/lexquery/lexquery/pkg/ingest"
	"github.com/lexquery/lexquery/pkg/logger"
	"github.com/lexquery/lexquery/pkg/search"
	"github.com/lexquery/lexquery/pkg/telemetry"
	"github.com/lexquery/lexquery/pkg/vector"
)

// Client is the assembled retrieval system: the two stores, the
// embedding provider, and the hybrid engine on top of them. One Client
// serves any number of concurrent queries.
type Client struct {
	cfg       *config.Config
	logger    *slog.Logger
	store     *vector.Store
	graph     *graph.Store
	embedder  embedder.Client
	engine    *search.Engine
	telemetry *telemetry.Recorder
}

// New builds a Client from configuration. The embedding provider and
// the vector index must agree on vector width; a mismatch fails here,
// at startup, not per query.
func New(cfg *config.Config, log *slog.Logger) (*Client, error) {
	if log == nil {
		log = logger.New(cfg.Log.Level, cfg.Log.Format)
	}

	emb, err := buildEmbedder(cfg)
	if err != nil {
		return nil, err
	}

	dims := cfg.Vector.Dimensions
	if dims <= 0 {
		dims = emb.Dimensions()
	}
	store, err := vector.Open(cfg.Vector.Path, dims)
	if err != nil {
		emb.Close()
		return nil, err
	}

	vectorClient, err := vector.NewClient(store, emb)
	if err != nil {
		store.Close()
		emb.Close()
		return nil, err
	}

	graphStore, err := graph.NewStore(cfg.Graph.URI, cfg.Graph.Username, cfg.Graph.Password, cfg.Graph.Database)
	if err != nil {
		store.Close()
		emb.Close()
		return nil, err
	}

	var recorder *telemetry.Recorder
	if cfg.Telemetry.ParquetPath != "" {
		recorder, err = telemetry.NewRecorder(cfg.Telemetry.ParquetPath)
		if err != nil {
			log.Warn("telemetry disabled", "error", err)
		}
	}

	engine := search.NewEngine(
		vectorClient,
		graphStore,
		time.Duration(cfg.Search.Timeout)*time.Second,
		log,
	)

	return &Client{
		cfg:       cfg,
		logger:    log,
		store:     store,
		graph:     graphStore,
		embedder:  emb,
		engine:    engine,
		telemetry: recorder,
	}, nil
}

// buildEmbedder selects the embedding provider and wraps it in a
// circuit breaker when configured.
func buildEmbedder(cfg *config.Config) (embedder.Client, error) {
	embCfg := embedder.Config{
		Model:      cfg.Embedding.Model,
		BaseURL:    cfg.Embedding.BaseURL,
		Dimensions: cfg.Embedding.Dimensions,
	}

	var emb embedder.Client
	switch cfg.Embedding.Provider {
	case "openai":
		emb = embedder.NewOpenAIEmbedder(cfg.Embedding.APIKey, embCfg)
	case "local", "":
		local, err := embedder.NewEmbedEverythingClient(embCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to start local embedder: %w", err)
		}
		emb = local
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Embedding.Provider)
	}

	if cfg.CircuitBreaker.Enabled {
		var alerter alert.Alerter = &alert.NoOpAlerter{}
		if cfg.Alert.Enabled {
			alerter = alert.NewEmailAlerter(cfg.Alert)
		}
		emb = embedder.NewCircuitBreakerClient(emb, cfg.CircuitBreaker, alerter, "embedding")
	}

	return emb, nil
}

// Loader returns a corpus loader sharing the client's stores.
func (c *Client) Loader() *ingest.Loader {
	return ingest.NewLoader(c.store, c.graph, c.embedder, c.logger)
}

// CreateIndices creates the graph constraints and indexes the search
// path relies on.
func (c *Client) CreateIndices(ctx context.Context) error {
	return c.graph.CreateIndices(ctx)
}

// VerifyConnectivity checks that the graph store is reachable.
func (c *Client) VerifyConnectivity(ctx context.Context) error {
	return c.graph.VerifyConnectivity(ctx)
}

// ChunkCount returns the number of chunks in the vector index.
func (c *Client) ChunkCount(ctx context.Context) (int, error) {
	return c.store.Count(ctx)
}

// Close releases every backend handle. The Client is unusable after.
func (c *Client) Close(ctx context.Context) error {
	var firstErr error
	if c.telemetry != nil {
		if err := c.telemetry.Close(); err != nil {
			firstErr = err
		}
	}
	if err := c.graph.Close(ctx); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := c.store.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := c.embedder.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
