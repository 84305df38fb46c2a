package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lexquery/lexquery/pkg/graph"
	"github.com/lexquery/lexquery/pkg/types"
	"github.com/lexquery/lexquery/pkg/vector"
)

const defaultTimeout = 15 * time.Second

// VectorSearcher is the vector backend surface the engine needs.
// *vector.Client satisfies it.
type VectorSearcher interface {
	Search(ctx context.Context, text string, k int, pred *vector.Predicate) ([]vector.Hit, error)
}

// GraphSearcher is the graph backend surface the engine needs.
// *graph.Store satisfies it.
type GraphSearcher interface {
	SearchCases(ctx context.Context, pred *graph.CasePredicate, limit int) ([]types.CaseRecord, error)
}

// Response is the answer to one query.
type Response struct {
	Results []types.ScoredResult `json:"results"`

	// Partial is true when exactly one backend failed and the results
	// cover only the surviving backend.
	Partial bool `json:"partial"`

	// Failures names the degraded backends on a partial response.
	Failures []types.BackendFailure `json:"failures,omitempty"`
}

// Engine is the hybrid query orchestrator: it validates a query, fans
// out to both backends concurrently under one shared deadline, and
// reconciles whatever completes. It is stateless between queries and
// safe for concurrent use.
type Engine struct {
	vector  VectorSearcher
	graph   GraphSearcher
	timeout time.Duration
	logger  *slog.Logger
}

// NewEngine wires the two backend clients into an engine. A zero
// timeout falls back to 15 seconds.
func NewEngine(v VectorSearcher, g GraphSearcher, timeout time.Duration, logger *slog.Logger) *Engine {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		vector:  v,
		graph:   g,
		timeout: timeout,
		logger:  logger,
	}
}

// backendOutcome carries one backend's result across the fan-out.
type backendOutcome struct {
	backend string
	hits    []vector.Hit
	cases   []types.CaseRecord
	err     error
}

// Search runs one hybrid query. Validation failures return a
// ValidationError with no backend call made. If exactly one backend
// fails, the response is marked partial; if both fail, the error is a
// BackendUnavailableError wrapping both causes.
func (e *Engine) Search(ctx context.Context, q types.Query) (*Response, error) {
	if err := validateQuery(q); err != nil {
		return nil, err
	}

	vectorPred, graphPred, err := Filters{
		Court:     q.Court,
		StartDate: q.StartDate,
		EndDate:   q.EndDate,
	}.Translate()
	if err != nil {
		return nil, err
	}

	if graphPred == nil {
		graphPred = &graph.CasePredicate{}
	}
	graphPred.Text = q.Text

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	outcomes := make(chan backendOutcome, 2)
	go func() {
		hits, err := e.vector.Search(ctx, q.Text, q.K, vectorPred)
		outcomes <- backendOutcome{backend: types.BackendVector, hits: hits, err: err}
	}()
	go func() {
		cases, err := e.graph.SearchCases(ctx, graphPred, q.K)
		outcomes <- backendOutcome{backend: types.BackendGraph, cases: cases, err: err}
	}()

	var (
		hits     []vector.Hit
		cases    []types.CaseRecord
		failures []types.BackendFailure
		errs     []error
	)
	for i := 0; i < 2; i++ {
		out := <-outcomes
		if out.err != nil {
			e.logger.Warn("backend failed", "backend", out.backend, "error", out.err)
			failures = append(failures, types.BackendFailure{
				Backend: out.backend,
				Reason:  out.err.Error(),
			})
			errs = append(errs, out.err)
			continue
		}
		if out.backend == types.BackendVector {
			hits = out.hits
		} else {
			cases = out.cases
		}
	}

	if len(errs) == 2 {
		return nil, types.NewBackendUnavailableError("vector and graph", errors.Join(errs...))
	}

	results := Merge(hits, cases, q.K)
	e.logger.Debug("query reconciled",
		"vector_hits", len(hits),
		"graph_cases", len(cases),
		"merged", len(results),
		"partial", len(failures) > 0)

	return &Response{
		Results:  results,
		Partial:  len(failures) > 0,
		Failures: failures,
	}, nil
}

// validateQuery enforces the query invariants that do not depend on
// either backend. Date checks live in Filters.Translate.
func validateQuery(q types.Query) error {
	if strings.TrimSpace(q.Text) == "" {
		return types.NewValidationError("query", "free-text query must not be empty")
	}
	if q.K < 1 {
		return types.NewValidationError("k", fmt.Sprintf("must be at least 1, got %d", q.K))
	}
	return nil
}
