package search

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexquery/lexquery/pkg/graph"
	"github.com/lexquery/lexquery/pkg/types"
	"github.com/lexquery/lexquery/pkg/vector"
)

type mockVector struct {
	hits     []vector.Hit
	err      error
	delay    time.Duration
	calls    atomic.Int32
	lastPred *vector.Predicate
}

func (m *mockVector) Search(ctx context.Context, text string, k int, pred *vector.Predicate) ([]vector.Hit, error) {
	m.calls.Add(1)
	m.lastPred = pred
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, types.NewBackendUnavailableError(types.BackendVector, ctx.Err())
		}
	}
	return m.hits, m.err
}

type mockGraph struct {
	cases    []types.CaseRecord
	err      error
	delay    time.Duration
	calls    atomic.Int32
	lastPred *graph.CasePredicate
}

func (m *mockGraph) SearchCases(ctx context.Context, pred *graph.CasePredicate, limit int) ([]types.CaseRecord, error) {
	m.calls.Add(1)
	m.lastPred = pred
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, types.NewBackendUnavailableError(types.BackendGraph, ctx.Err())
		}
	}
	return m.cases, m.err
}

func validQuery() types.Query {
	return types.Query{Text: "divorce appeal", K: 3}
}

func TestSearchValidationRejectsBeforeBackends(t *testing.T) {
	tests := []struct {
		name  string
		query types.Query
	}{
		{"empty text", types.Query{Text: "  ", K: 3}},
		{"zero k", types.Query{Text: "divorce appeal", K: 0}},
		{"negative k", types.Query{Text: "divorce appeal", K: -1}},
		{"bad start date", types.Query{Text: "divorce appeal", K: 3, StartDate: "05/01/2020"}},
		{"inverted range", types.Query{Text: "divorce appeal", K: 3, StartDate: "2020-05-01", EndDate: "2019-01-01"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &mockVector{}
			g := &mockGraph{}
			engine := NewEngine(v, g, time.Second, nil)

			_, err := engine.Search(context.Background(), tt.query)
			require.Error(t, err)

			var verr *types.ValidationError
			assert.True(t, errors.As(err, &verr))
			assert.Equal(t, int32(0), v.calls.Load())
			assert.Equal(t, int32(0), g.calls.Load())
		})
	}
}

func TestSearchPassesQueryTextToGraphPredicate(t *testing.T) {
	v := &mockVector{}
	g := &mockGraph{}
	engine := NewEngine(v, g, time.Second, nil)

	_, err := engine.Search(context.Background(), validQuery())
	require.NoError(t, err)

	require.NotNil(t, g.lastPred)
	assert.Equal(t, "divorce appeal", g.lastPred.Text)
	assert.Nil(t, v.lastPred)
}

func TestSearchMergesBothBackends(t *testing.T) {
	v := &mockVector{hits: []vector.Hit{hit("a__chunk_0", "CA-1", 0.9)}}
	g := &mockGraph{cases: []types.CaseRecord{caseRec("CA-1", "2020-01-01"), caseRec("CA-2", "2019-01-01")}}
	engine := NewEngine(v, g, time.Second, nil)

	resp, err := engine.Search(context.Background(), validQuery())
	require.NoError(t, err)
	assert.False(t, resp.Partial)
	assert.Empty(t, resp.Failures)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, types.OriginBoth, resp.Results[0].Origin)
	assert.Equal(t, types.OriginGraph, resp.Results[1].Origin)
}

func TestSearchGraphDownYieldsPartialVectorRanking(t *testing.T) {
	v := &mockVector{hits: []vector.Hit{
		hit("a__chunk_0", "CA-1", 0.9),
		hit("b__chunk_0", "CA-2", 0.7),
	}}
	g := &mockGraph{err: types.NewBackendUnavailableError(types.BackendGraph, errors.New("connection refused"))}
	engine := NewEngine(v, g, time.Second, nil)

	resp, err := engine.Search(context.Background(), validQuery())
	require.NoError(t, err)
	assert.True(t, resp.Partial)
	require.Len(t, resp.Failures, 1)
	assert.Equal(t, types.BackendGraph, resp.Failures[0].Backend)

	require.Len(t, resp.Results, 2)
	assert.Equal(t, "CA-1", resp.Results[0].CaseNumber)
	assert.Equal(t, types.OriginVector, resp.Results[0].Origin)
}

func TestSearchVectorDownYieldsPartialGraphRanking(t *testing.T) {
	v := &mockVector{err: &types.EmbeddingError{Err: errors.New("provider down")}}
	g := &mockGraph{cases: []types.CaseRecord{
		caseRec("CA-2", "2021-01-01"),
		caseRec("CA-1", "2019-01-01"),
	}}
	engine := NewEngine(v, g, time.Second, nil)

	resp, err := engine.Search(context.Background(), validQuery())
	require.NoError(t, err)
	assert.True(t, resp.Partial)
	require.Len(t, resp.Failures, 1)
	assert.Equal(t, types.BackendVector, resp.Failures[0].Backend)

	require.Len(t, resp.Results, 2)
	assert.Equal(t, "CA-2", resp.Results[0].CaseNumber)
	assert.Equal(t, types.OriginGraph, resp.Results[0].Origin)
}

func TestSearchBothDownFailsHard(t *testing.T) {
	v := &mockVector{err: types.NewBackendUnavailableError(types.BackendVector, errors.New("index gone"))}
	g := &mockGraph{err: types.NewBackendUnavailableError(types.BackendGraph, errors.New("connection refused"))}
	engine := NewEngine(v, g, time.Second, nil)

	_, err := engine.Search(context.Background(), validQuery())
	require.Error(t, err)

	var berr *types.BackendUnavailableError
	assert.True(t, errors.As(err, &berr))
}

func TestSearchSlowBackendDegradesNotBlocks(t *testing.T) {
	v := &mockVector{hits: []vector.Hit{hit("a__chunk_0", "CA-1", 0.9)}}
	g := &mockGraph{delay: 5 * time.Second}
	engine := NewEngine(v, g, 50*time.Millisecond, nil)

	start := time.Now()
	resp, err := engine.Search(context.Background(), validQuery())
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)

	assert.True(t, resp.Partial)
	require.Len(t, resp.Failures, 1)
	assert.Equal(t, types.BackendGraph, resp.Failures[0].Backend)
	require.Len(t, resp.Results, 1)
}

// End-to-end over a five-case fixture corpus: three cases satisfy the
// court and date filters, two do not. Only the matching three come
// back, regardless of text similarity of the others.
func TestSearchFixtureCorpusHonorsFilters(t *testing.T) {
	corpus := []struct {
		caseNumber string
		court      string
		date       string
		score      float64
	}{
		{"MATCH-1", "Bombay High Court", "2016-03-10", 0.91},
		{"MATCH-2", "Bombay High Court", "2018-07-22", 0.85},
		{"MATCH-3", "Bombay High Court", "2020-11-05", 0.72},
		{"WRONG-COURT", "Delhi High Court", "2017-01-01", 0.99},
		{"WRONG-DATE", "Bombay High Court", "2013-01-01", 0.98},
	}

	query := types.Query{
		Text:      "divorce appeal",
		Court:     "Bombay High Court",
		StartDate: "2015-01-01",
		EndDate:   "2020-12-31",
		K:         3,
	}

	vp, _, err := Filters{Court: query.Court, StartDate: query.StartDate, EndDate: query.EndDate}.Translate()
	require.NoError(t, err)

	// Both backends honor the predicate the way the real clients do:
	// the filter is hard, applied before ranking.
	var hits []vector.Hit
	var cases []types.CaseRecord
	for _, c := range corpus {
		meta := types.ChunkMetadata{CaseNumber: c.caseNumber, Court: c.court, Date: c.date}
		if vp.Matches(meta) {
			hits = append(hits, vector.Hit{
				Chunk: types.Chunk{ID: c.caseNumber + "__chunk_0", Metadata: meta},
				Score: c.score,
			})
			cases = append(cases, types.CaseRecord{
				CaseNumber:     c.caseNumber,
				CourtName:      c.court,
				DateOfJudgment: c.date,
			})
		}
	}

	engine := NewEngine(&mockVector{hits: hits}, &mockGraph{cases: cases}, time.Second, nil)
	resp, err := engine.Search(context.Background(), query)
	require.NoError(t, err)
	require.Len(t, resp.Results, 3)

	got := make([]string, 3)
	for i, r := range resp.Results {
		got[i] = r.CaseNumber
		assert.Equal(t, types.OriginBoth, r.Origin)
		assert.GreaterOrEqual(t, r.Date, query.StartDate)
		assert.LessOrEqual(t, r.Date, query.EndDate)
	}
	assert.Equal(t, []string{"MATCH-1", "MATCH-2", "MATCH-3"}, got)
	assert.NotContains(t, got, "WRONG-COURT")
	assert.NotContains(t, got, "WRONG-DATE")
}
