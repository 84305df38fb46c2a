// Package extract pulls structured case fields out of raw judgment
// text with an LLM, for the ingestion pipeline.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	jsonrepair "github.com/kaptinlin/jsonrepair"
	openai "github.com/sashabaranov/go-openai"
)

// CaseFields is the structured record extracted from one judgment.
// Every field is a string as returned by the model; list-valued fields
// are semicolon separated.
type CaseFields struct {
	CaseTitle       string `json:"case_title"`
	Court           string `json:"court"`
	CaseNumber      string `json:"case_number"`
	Date            string `json:"date"`
	Judges          string `json:"judges"`
	Petitioner      string `json:"petitioner"`
	Respondent      string `json:"respondent"`
	LegalIssues     string `json:"legal_issues"`
	DecisionSummary string `json:"decision_summary"`
	Outcome         string `json:"outcome"`
	Citations       string `json:"citations"`
}

// TerminalError reports that extraction failed after exhausting its
// retry budget. It is distinguishable from a transient failure so
// callers never mistake it for an empty-but-successful extraction.
type TerminalError struct {
	Attempts int
	Err      error
}

func (e *TerminalError) Error() string {
	return fmt.Sprintf("extraction failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *TerminalError) Unwrap() error { return e.Err }

const systemPrompt = `You are a legal document analyst. Extract the requested fields from the court judgment text and answer with a single JSON object containing exactly these keys:
case_title, court, case_number, date, judges, petitioner, respondent, legal_issues, decision_summary, outcome, citations.
Dates must be in YYYY-MM-DD form. Use a semicolon to separate multiple judges, parties, issues, or citations. Use an empty string for anything the text does not state. Answer with JSON only, no commentary.`

// Config holds extractor settings.
type Config struct {
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float32
	MaxRetries  int
}

// Extractor calls a chat model and parses its JSON answer.
type Extractor struct {
	client *openai.Client
	config Config
	logger *slog.Logger
}

// New creates an extractor.
func New(cfg Config, logger *slog.Logger) *Extractor {
	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if logger == nil {
		logger = slog.Default()
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &Extractor{
		client: openai.NewClientWithConfig(clientConfig),
		config: cfg,
		logger: logger,
	}
}

// maxInputWords bounds how much of a judgment goes into one request.
// Longer documents are split and their answers merged, first non-empty
// value per field winning; the header fields all sit in the opening
// pages anyway.
const maxInputWords = 6000

// Extract pulls the case fields out of one judgment. Long documents
// are split into pieces and extracted piecewise.
func (e *Extractor) Extract(ctx context.Context, documentText string) (*CaseFields, error) {
	pieces := splitWords(documentText, maxInputWords)
	if len(pieces) == 0 {
		return nil, fmt.Errorf("document is empty")
	}

	var merged *CaseFields
	for _, piece := range pieces {
		fields, err := e.extractWithRetry(ctx, piece)
		if err != nil {
			return nil, err
		}
		if merged == nil {
			merged = fields
		} else {
			mergeFields(merged, fields)
		}
	}
	return merged, nil
}

// extractWithRetry runs one extraction request with bounded retries.
// Transient provider failures and unparseable answers are retried with
// exponential backoff and jitter; exhausting the budget returns a
// TerminalError.
func (e *Extractor) extractWithRetry(ctx context.Context, documentText string) (*CaseFields, error) {
	var lastErr error

	for attempt := 0; attempt <= e.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := backoffDelay(attempt) + time.Duration(rand.Intn(500))*time.Millisecond
			e.logger.Warn("retrying extraction", "attempt", attempt+1, "backoff", backoff, "error", lastErr)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		fields, err := e.extractOnce(ctx, documentText)
		if err == nil {
			return fields, nil
		}
		lastErr = err

		if !isRetriable(err) {
			break
		}
	}

	return nil, &TerminalError{Attempts: e.config.MaxRetries + 1, Err: lastErr}
}

func (e *Extractor) extractOnce(ctx context.Context, documentText string) (*CaseFields, error) {
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.config.Model,
		Temperature: e.config.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: documentText},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	return ParseFields(resp.Choices[0].Message.Content)
}

// ParseFields parses a model answer into CaseFields. Markdown code
// fences are stripped and near-JSON is repaired before parsing; models
// routinely emit trailing commas or fenced output.
func ParseFields(content string) (*CaseFields, error) {
	content = StripCodeFence(content)

	if repaired, err := jsonrepair.JSONRepair(content); err == nil {
		content = repaired
	}

	var fields CaseFields
	if err := json.Unmarshal([]byte(content), &fields); err != nil {
		return nil, fmt.Errorf("model answer is not valid JSON: %w", err)
	}
	return &fields, nil
}

// StripCodeFence removes a surrounding markdown code fence, with or
// without a language tag.
func StripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}

	content = strings.TrimPrefix(content, "```")
	if idx := strings.Index(content, "\n"); idx >= 0 {
		first := strings.TrimSpace(content[:idx])
		// A language tag like "json" sits on the opening fence line.
		if first != "" && !strings.ContainsAny(first, "{[") {
			content = content[idx+1:]
		}
	}
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}

const baseBackoff = time.Second

// backoffDelay returns the delay before retry attempt n, doubling each
// attempt. Jitter is added by the caller.
func backoffDelay(attempt int) time.Duration {
	return baseBackoff << (attempt - 1)
}

func isRetriable(err error) bool {
	errStr := strings.ToLower(err.Error())
	retriable := []string{
		"timeout",
		"connection",
		"rate limit",
		"rate_limit",
		"internal server error",
		"service unavailable",
		"bad gateway",
		"gateway timeout",
		"not valid json",
	}
	for _, s := range retriable {
		if strings.Contains(errStr, s) {
			return true
		}
	}
	return false
}

// splitWords breaks text into pieces of at most maxWords words.
func splitWords(text string, maxWords int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var pieces []string
	for start := 0; start < len(words); start += maxWords {
		end := start + maxWords
		if end > len(words) {
			end = len(words)
		}
		pieces = append(pieces, strings.Join(words[start:end], " "))
	}
	return pieces
}

// mergeFields fills dst's empty fields from src.
func mergeFields(dst, src *CaseFields) {
	fill := func(d *string, s string) {
		if strings.TrimSpace(*d) == "" {
			*d = s
		}
	}
	fill(&dst.CaseTitle, src.CaseTitle)
	fill(&dst.Court, src.Court)
	fill(&dst.CaseNumber, src.CaseNumber)
	fill(&dst.Date, src.Date)
	fill(&dst.Judges, src.Judges)
	fill(&dst.Petitioner, src.Petitioner)
	fill(&dst.Respondent, src.Respondent)
	fill(&dst.LegalIssues, src.LegalIssues)
	fill(&dst.DecisionSummary, src.DecisionSummary)
	fill(&dst.Outcome, src.Outcome)
	fill(&dst.Citations, src.Citations)
}

// SplitList splits a semicolon-separated field into trimmed entries.
func SplitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
