package graph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCaseSearchQueryNoFilters(t *testing.T) {
	query, params := BuildCaseSearchQuery(nil, 3)

	assert.NotContains(t, query, "WHERE")
	assert.Contains(t, query, "MATCH (c:Case)-[:HEARD_IN]->(court:Court)")
	assert.Contains(t, query, "ORDER BY c.date_of_judgment DESC")
	assert.Contains(t, query, "LIMIT $limit")
	assert.Equal(t, map[string]any{"limit": 3}, params)
}

func TestBuildCaseSearchQueryAllFilters(t *testing.T) {
	pred := &CasePredicate{
		Text:     "Negligence",
		Court:    "High Court",
		DateFrom: "2019-01-01",
		DateTo:   "2021-12-31",
	}
	query, params := BuildCaseSearchQuery(pred, 5)

	assert.Contains(t, query, "WHERE")
	assert.Contains(t, query, "toLower(court.name) = toLower($court)")
	assert.Contains(t, query, "c.date_of_judgment >= $date_from")
	assert.Contains(t, query, "c.date_of_judgment <= $date_to")
	assert.Contains(t, query, "toLower(c.decision_summary) CONTAINS toLower($text)")
	assert.Contains(t, query, "toLower(c.outcome) CONTAINS toLower($text)")
	assert.Contains(t, query, "toLower(c.citations) CONTAINS toLower($text)")
	assert.Contains(t, query, "toLower(c.title) CONTAINS toLower($text)")

	assert.Equal(t, map[string]any{
		"limit":     5,
		"text":      "Negligence",
		"court":     "High Court",
		"date_from": "2019-01-01",
		"date_to":   "2021-12-31",
	}, params)
}

func TestBuildCaseSearchQueryOmitsUnsetClauses(t *testing.T) {
	query, params := BuildCaseSearchQuery(&CasePredicate{Court: "Supreme Court"}, 3)

	assert.Contains(t, query, "toLower(court.name) = toLower($court)")
	assert.NotContains(t, query, "$date_from")
	assert.NotContains(t, query, "$date_to")
	assert.NotContains(t, query, "$text")

	_, hasCourt := params["court"]
	assert.True(t, hasCourt)
	for _, key := range []string{"date_from", "date_to", "text"} {
		_, present := params[key]
		assert.False(t, present, "unset field %q must not be bound", key)
	}
}

func TestBuildCaseSearchQueryNeverSplicesValues(t *testing.T) {
	hostile := `" OR 1=1 //`
	query, params := BuildCaseSearchQuery(&CasePredicate{Text: hostile}, 3)

	assert.NotContains(t, query, hostile)
	assert.Equal(t, hostile, params["text"])
}

func TestSanitizeList(t *testing.T) {
	out := sanitizeList([]string{" Justice Rao ", "", "  ", "Justice Mehta"})
	assert.Equal(t, []string{"Justice Rao", "Justice Mehta"}, out)
}

func TestValidateCaseKey(t *testing.T) {
	require.Error(t, validateCaseKey(""))
	require.Error(t, validateCaseKey("   "))
	require.NoError(t, validateCaseKey("CA 123/2020"))
}

func TestUpsertCaseQueryMergesByNaturalKey(t *testing.T) {
	assert.True(t, strings.Contains(upsertCaseQuery, "MERGE (c:Case {case_number: $case_number})"))
	assert.True(t, strings.Contains(upsertCaseQuery, "MERGE (c)-[:HEARD_IN]->(court)"))
	assert.True(t, strings.Contains(upsertCaseQuery, "MERGE (c)-[:JUDGED_BY]->(j)"))
	assert.True(t, strings.Contains(upsertCaseQuery, "MERGE (c)-[:FILED_BY]->(p)"))
	assert.True(t, strings.Contains(upsertCaseQuery, "MERGE (c)-[:AGAINST]->(r)"))
	assert.True(t, strings.Contains(upsertCaseQuery, "MERGE (c)-[:ABOUT]->(i)"))
}

func TestUpsertCaseQuerySurvivesEmptyEntityLists(t *testing.T) {
	// UNWIND over an empty list produces zero rows and skips every
	// clause after it, so a case with no judges would lose its party
	// and issue relationships. The entity writes must use FOREACH.
	assert.NotContains(t, upsertCaseQuery, "UNWIND")
	assert.Equal(t, 5, strings.Count(upsertCaseQuery, "FOREACH"))
	for _, param := range []string{"$judges", "$petitioners", "$respondents"} {
		assert.Contains(t, upsertCaseQuery, "FOREACH (name IN "+param, param)
	}
	assert.Contains(t, upsertCaseQuery, "FOREACH (description IN $legal_issues")
}

func TestUpsertCaseQuerySkipsEmptyCourt(t *testing.T) {
	assert.Contains(t, upsertCaseQuery,
		"CASE WHEN $court_name <> '' THEN [$court_name] ELSE [] END")
}

func TestUpsertCaseQueryKeysLegalIssueOnDescription(t *testing.T) {
	assert.Contains(t, upsertCaseQuery, "MERGE (i:LegalIssue {description: description})")
	assert.NotContains(t, upsertCaseQuery, "LegalIssue {name")
}
