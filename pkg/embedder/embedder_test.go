package embedder_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexquery/lexquery/pkg/config"
	"github.com/lexquery/lexquery/pkg/embedder"
)

func TestNewOpenAIEmbedder(t *testing.T) {
	tests := []struct {
		name     string
		apiKey   string
		config   embedder.Config
		wantDims int
	}{
		{
			name:     "known model dimensions",
			apiKey:   "test-api-key",
			config:   embedder.Config{Model: "text-embedding-3-large"},
			wantDims: 3072,
		},
		{
			name:     "custom base URL",
			apiKey:   "test-api-key",
			config:   embedder.Config{Model: "text-embedding-3-small", BaseURL: "https://api.example.com"},
			wantDims: 1536,
		},
		{
			name:     "empty model uses default",
			apiKey:   "test-api-key",
			config:   embedder.Config{},
			wantDims: 1536,
		},
		{
			name:     "explicit dimensions win",
			apiKey:   "test-api-key",
			config:   embedder.Config{Model: "text-embedding-3-large", Dimensions: 256},
			wantDims: 256,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := embedder.NewOpenAIEmbedder(tt.apiKey, tt.config)
			require.NotNil(t, client)
			assert.Equal(t, tt.wantDims, client.Dimensions())
		})
	}
}

func TestEmbedderInterface(t *testing.T) {
	var _ embedder.Client = (*embedder.OpenAIEmbedder)(nil)
	var _ embedder.Client = (*embedder.EmbedEverythingClient)(nil)
	var _ embedder.Client = (*embedder.CircuitBreakerClient)(nil)
}

func TestOpenAIEmbedderEmptyInput(t *testing.T) {
	client := embedder.NewOpenAIEmbedder("test-key", embedder.Config{})

	embeddings, err := client.Embed(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, embeddings)
}

// stubClient is a Client whose behavior is scripted per call.
type stubClient struct {
	dims  int
	fail  bool
	calls int
}

func (s *stubClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	s.calls++
	if s.fail {
		return nil, errors.New("provider down")
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, s.dims)
	}
	return out, nil
}

func (s *stubClient) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	vecs, err := s.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (s *stubClient) Dimensions() int { return s.dims }
func (s *stubClient) Close() error    { return nil }

func TestCircuitBreakerPassesThrough(t *testing.T) {
	stub := &stubClient{dims: 4}
	cb := embedder.NewCircuitBreakerClient(stub, config.CircuitBreakerConfig{
		MaxRequests:      1,
		Interval:         60,
		Timeout:          30,
		ReadyToTripRatio: 0.6,
	}, nil, "test")

	vec, err := cb.EmbedSingle(context.Background(), "hello")
	require.NoError(t, err)
	assert.Len(t, vec, 4)
	assert.Equal(t, 4, cb.Dimensions())
}

func TestCircuitBreakerTripsAfterFailures(t *testing.T) {
	stub := &stubClient{dims: 4, fail: true}
	cb := embedder.NewCircuitBreakerClient(stub, config.CircuitBreakerConfig{
		MaxRequests:      1,
		Interval:         60,
		Timeout:          30,
		ReadyToTripRatio: 0.6,
	}, nil, "test")

	for i := 0; i < 5; i++ {
		_, err := cb.EmbedSingle(context.Background(), "hello")
		require.Error(t, err)
	}

	// The breaker is open now: the underlying client no longer sees calls.
	before := stub.calls
	_, err := cb.EmbedSingle(context.Background(), "hello")
	require.Error(t, err)
	assert.Equal(t, before, stub.calls)
}
