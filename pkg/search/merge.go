package search

import (
	"sort"

	"github.com/lexquery/lexquery/pkg/types"
	"github.com/lexquery/lexquery/pkg/vector"
)

const snippetLength = 240

// Merge reconciles the two backend result sets into one ranked,
// deduplicated answer of at most k results, keyed by case number.
//
// A case found by both backends keeps its vector similarity score and
// is tagged "both"; the graph contributes recency only as a secondary
// tie-break, never a blended score. The final order is: "both" results
// by score descending, then vector-only by score descending, then
// graph-only by judgment date descending. Agreement between the two
// independent signals outranks either signal alone, without forcing
// the two incomparable score types onto one numeric scale.
func Merge(vectorHits []vector.Hit, graphCases []types.CaseRecord, k int) []types.ScoredResult {
	if k < 1 {
		return nil
	}

	// Collapse chunks onto cases. Hits arrive ordered by score
	// descending then chunk id ascending, so the first chunk seen for
	// a case is the one to keep. A chunk with no case number cannot be
	// reconciled against the graph and stands as its own result.
	byCase := make(map[string]*types.ScoredResult)
	var order []string
	for _, hit := range vectorHits {
		key := hit.Chunk.Metadata.CaseNumber
		if key == "" {
			key = hit.Chunk.ID
		}
		if _, seen := byCase[key]; seen {
			continue
		}
		byCase[key] = &types.ScoredResult{
			CaseNumber: hit.Chunk.Metadata.CaseNumber,
			ChunkID:    hit.Chunk.ID,
			Score:      hit.Score,
			Origin:     types.OriginVector,
			Title:      hit.Chunk.Metadata.CaseTitle,
			Court:      hit.Chunk.Metadata.Court,
			Date:       hit.Chunk.Metadata.Date,
			Outcome:    hit.Chunk.Metadata.Outcome,
			LocalPath:  hit.Chunk.Metadata.LocalPath,
			Snippet:    types.Snippet(hit.Chunk.Text, snippetLength),
		}
		order = append(order, key)
	}

	var graphOnly []types.ScoredResult
	for _, c := range graphCases {
		if merged, ok := byCase[c.CaseNumber]; ok && c.CaseNumber != "" {
			merged.Origin = types.OriginBoth
			fillFromCase(merged, c)
			continue
		}
		graphOnly = append(graphOnly, types.ScoredResult{
			CaseNumber: c.CaseNumber,
			Origin:     types.OriginGraph,
			Title:      c.Title,
			Court:      c.CourtName,
			Date:       c.DateOfJudgment,
			Outcome:    c.Outcome,
			Snippet:    types.Snippet(c.DecisionSummary, snippetLength),
		})
	}

	var both, vectorOnly []types.ScoredResult
	for _, key := range order {
		r := *byCase[key]
		if r.Origin == types.OriginBoth {
			both = append(both, r)
		} else {
			vectorOnly = append(vectorOnly, r)
		}
	}

	// Within "both", equal scores fall back to graph recency.
	sort.SliceStable(both, func(i, j int) bool {
		if both[i].Score != both[j].Score {
			return both[i].Score > both[j].Score
		}
		return both[i].Date > both[j].Date
	})
	sort.SliceStable(vectorOnly, func(i, j int) bool {
		if vectorOnly[i].Score != vectorOnly[j].Score {
			return vectorOnly[i].Score > vectorOnly[j].Score
		}
		return vectorOnly[i].ChunkID < vectorOnly[j].ChunkID
	})
	sort.SliceStable(graphOnly, func(i, j int) bool {
		if graphOnly[i].Date != graphOnly[j].Date {
			return graphOnly[i].Date > graphOnly[j].Date
		}
		return graphOnly[i].CaseNumber < graphOnly[j].CaseNumber
	})

	merged := make([]types.ScoredResult, 0, len(both)+len(vectorOnly)+len(graphOnly))
	merged = append(merged, both...)
	merged = append(merged, vectorOnly...)
	merged = append(merged, graphOnly...)

	if len(merged) > k {
		merged = merged[:k]
	}
	return merged
}

// fillFromCase backfills display fields the chunk metadata left empty.
// The vector copy of the metadata wins where both have a value.
func fillFromCase(r *types.ScoredResult, c types.CaseRecord) {
	if r.Title == "" {
		r.Title = c.Title
	}
	if r.Court == "" {
		r.Court = c.CourtName
	}
	if r.Date == "" {
		r.Date = c.DateOfJudgment
	}
	if r.Outcome == "" {
		r.Outcome = c.Outcome
	}
	if r.Snippet == "" {
		r.Snippet = types.Snippet(c.DecisionSummary, snippetLength)
	}
}
