package graph

import (
	"fmt"
	"strings"
)

// CasePredicate holds the optional constraints of one case search.
// Zero-valued fields contribute no clause at all.
type CasePredicate struct {
	// Text is matched case-insensitively as a substring of the decision
	// summary, outcome, citations, and title. Empty text matches every
	// case.
	Text string

	// Court is matched case-insensitively against the court name.
	Court string

	// DateFrom and DateTo bound date_of_judgment inclusively, as
	// YYYY-MM-DD strings.
	DateFrom string
	DateTo   string
}

// searchClauses maps each predicate field to its WHERE fragment. Every
// user value enters the query as a bound parameter; nothing is spliced
// into the Cypher text.
var searchClauses = []struct {
	param  string
	clause string
	value  func(p *CasePredicate) string
}{
	{
		param:  "court",
		clause: "toLower(court.name) = toLower($court)",
		value:  func(p *CasePredicate) string { return p.Court },
	},
	{
		param:  "date_from",
		clause: "c.date_of_judgment >= $date_from",
		value:  func(p *CasePredicate) string { return p.DateFrom },
	},
	{
		param:  "date_to",
		clause: "c.date_of_judgment <= $date_to",
		value:  func(p *CasePredicate) string { return p.DateTo },
	},
	{
		param: "text",
		clause: "(toLower(c.decision_summary) CONTAINS toLower($text)" +
			" OR toLower(c.outcome) CONTAINS toLower($text)" +
			" OR toLower(c.citations) CONTAINS toLower($text)" +
			" OR toLower(c.title) CONTAINS toLower($text))",
		value: func(p *CasePredicate) string { return p.Text },
	},
}

// BuildCaseSearchQuery assembles the Cypher for a case search. Clauses
// for unset predicate fields are omitted rather than bound to null, so
// an absent filter never excludes cases with missing properties.
func BuildCaseSearchQuery(pred *CasePredicate, limit int) (string, map[string]any) {
	var sb strings.Builder
	sb.WriteString("MATCH (c:Case)-[:HEARD_IN]->(court:Court)\n")

	params := map[string]any{"limit": limit}

	var conditions []string
	if pred != nil {
		for _, sc := range searchClauses {
			if v := sc.value(pred); v != "" {
				conditions = append(conditions, sc.clause)
				params[sc.param] = v
			}
		}
	}
	if len(conditions) > 0 {
		sb.WriteString("WHERE ")
		sb.WriteString(strings.Join(conditions, "\n  AND "))
		sb.WriteString("\n")
	}

	sb.WriteString("OPTIONAL MATCH (c)-[:JUDGED_BY]->(j:Judge)\n")
	sb.WriteString("RETURN c, court.name AS court_name, collect(DISTINCT j.name) AS judges\n")
	sb.WriteString("ORDER BY c.date_of_judgment DESC\n")
	sb.WriteString("LIMIT $limit")

	return sb.String(), params
}

// upsertCaseQuery merges a case and its related nodes by natural key.
// Re-ingesting a document updates properties in place instead of
// duplicating nodes. Entity lists are written with FOREACH, not UNWIND:
// UNWIND over an empty list yields zero rows and would skip every
// clause after it, so a case with no judges would silently lose its
// party and issue relationships. The court merge is guarded the same
// way so an empty court name never creates a blank Court node.
const upsertCaseQuery = `
MERGE (c:Case {case_number: $case_number})
SET c.title = $title,
    c.date_of_judgment = $date_of_judgment,
    c.file_name = $file_name,
    c.decision_summary = $decision_summary,
    c.outcome = $outcome,
    c.citations = $citations
FOREACH (name IN CASE WHEN $court_name <> '' THEN [$court_name] ELSE [] END |
  MERGE (court:Court {name: name})
  MERGE (c)-[:HEARD_IN]->(court))
FOREACH (name IN $judges |
  MERGE (j:Judge {name: name})
  MERGE (c)-[:JUDGED_BY]->(j))
FOREACH (name IN $petitioners |
  MERGE (p:Party {name: name})
  MERGE (c)-[:FILED_BY]->(p))
FOREACH (name IN $respondents |
  MERGE (r:Party {name: name})
  MERGE (c)-[:AGAINST]->(r))
FOREACH (description IN $legal_issues |
  MERGE (i:LegalIssue {description: description})
  MERGE (c)-[:ABOUT]->(i))
RETURN c.case_number
`

// indexQueries are run once at setup. The case number constraint backs
// the MERGE key; the rest serve the search clause table.
var indexQueries = []string{
	"CREATE CONSTRAINT case_number_unique IF NOT EXISTS FOR (c:Case) REQUIRE c.case_number IS UNIQUE",
	"CREATE CONSTRAINT court_name_unique IF NOT EXISTS FOR (c:Court) REQUIRE c.name IS UNIQUE",
	"CREATE CONSTRAINT judge_name_unique IF NOT EXISTS FOR (j:Judge) REQUIRE j.name IS UNIQUE",
	"CREATE INDEX case_date IF NOT EXISTS FOR (c:Case) ON (c.date_of_judgment)",
}

// sanitizeList drops empty entries so FOREACH never merges a blank node.
func sanitizeList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func validateCaseKey(caseNumber string) error {
	if strings.TrimSpace(caseNumber) == "" {
		return fmt.Errorf("case number must not be empty")
	}
	return nil
}
