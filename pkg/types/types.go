package types

import "strings"

// Origin identifies which backend (or backends) produced a result.
type Origin string

const (
	OriginVector Origin = "vector"
	OriginGraph  Origin = "graph"
	OriginBoth   Origin = "both"
)

// Backend names used in error reporting and degraded-response notes.
const (
	BackendVector = "vector"
	BackendGraph  = "graph"
)

// ChunkMetadata is the case-level metadata duplicated onto every chunk
// at ingestion time, so a search hit can be displayed without a second
// fetch. Date, when present, is a canonical YYYY-MM-DD string: lexical
// order equals chronological order.
type ChunkMetadata struct {
	FileName    string `json:"file_name"`
	CaseTitle   string `json:"case_title"`
	Court       string `json:"court"`
	CaseNumber  string `json:"case_number"`
	Date        string `json:"date"`
	Judges      string `json:"judges"`
	Petitioner  string `json:"petitioner"`
	Respondent  string `json:"respondent"`
	LegalIssues string `json:"legal_issues"`
	Outcome     string `json:"outcome"`
	Citations   string `json:"citations"`
	LocalPath   string `json:"local_path"`
}

// Chunk is a contiguous slice of a case document, the unit indexed for
// similarity search. ID has the form "<fileID>__chunk_<n>" and is
// unique within the vector store.
type Chunk struct {
	ID       string        `json:"id"`
	Text     string        `json:"text"`
	Metadata ChunkMetadata `json:"metadata"`
}

// CaseRecord is a case as stored in the graph, keyed by case number.
type CaseRecord struct {
	CaseNumber      string   `json:"case_number"`
	Title           string   `json:"title"`
	CourtName       string   `json:"court_name"`
	DateOfJudgment  string   `json:"date_of_judgment"`
	FileName        string   `json:"file_name"`
	Judges          []string `json:"judges,omitempty"`
	Petitioners     []string `json:"petitioners,omitempty"`
	Respondents     []string `json:"respondents,omitempty"`
	LegalIssues     []string `json:"legal_issues,omitempty"`
	DecisionSummary string   `json:"decision_summary"`
	Outcome         string   `json:"outcome"`
	Citations       string   `json:"citations"`
}

// Query is a single logical retrieval request.
type Query struct {
	Text      string `json:"query"`
	Court     string `json:"court,omitempty"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
	K         int    `json:"k"`
}

// ScoredResult is one retrieval hit in the merged answer set.
//
// Score carries the vector similarity for origins "vector" and "both";
// for graph-only hits it is zero and ordering comes from Date. ChunkID
// is set when a vector chunk contributed the hit.
type ScoredResult struct {
	CaseNumber string  `json:"case_number"`
	ChunkID    string  `json:"chunk_id,omitempty"`
	Score      float64 `json:"score"`
	Origin     Origin  `json:"origin"`
	Title      string  `json:"title"`
	Court      string  `json:"court"`
	Date       string  `json:"date"`
	Outcome    string  `json:"outcome,omitempty"`
	LocalPath  string  `json:"local_path,omitempty"`
	Snippet    string  `json:"snippet,omitempty"`
}

// BackendFailure notes which backend degraded a partial response and why.
type BackendFailure struct {
	Backend string `json:"backend"`
	Reason  string `json:"reason"`
}

// Snippet truncates text for display, in runes, appending an ellipsis
// when trimmed.
func Snippet(text string, max int) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return strings.TrimSpace(string(runes[:max])) + " ..."
}
