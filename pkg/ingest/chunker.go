// Package ingest loads a cleaned case corpus into the two stores: the
// vector index from chunked JSONL, the graph from the extracted case
// table. It is a one-shot batch pipeline; the query path never writes.
package ingest

import (
	"fmt"
	"strings"
	"time"

	"github.com/lexquery/lexquery/pkg/types"
)

const (
	defaultChunkTokens   = 700
	defaultOverlapTokens = 120
)

// Chunker splits document text into overlapping chunks sized in
// estimated tokens. Estimation assumes roughly 4 words per 3 tokens,
// close enough for sizing an index unit.
type Chunker struct {
	ChunkTokens   int
	OverlapTokens int
}

// NewChunker returns a chunker with the corpus defaults.
func NewChunker() *Chunker {
	return &Chunker{
		ChunkTokens:   defaultChunkTokens,
		OverlapTokens: defaultOverlapTokens,
	}
}

// Split breaks text into chunks by word accumulation. Consecutive
// chunks overlap so a sentence cut at a boundary still appears whole
// in one of them.
func (c *Chunker) Split(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	targetWords := c.ChunkTokens * 3 / 4
	overlapWords := c.OverlapTokens * 3 / 4
	if targetWords < 1 {
		targetWords = 1
	}
	if overlapWords >= targetWords {
		overlapWords = targetWords - 1
	}

	var chunks []string
	for start := 0; start < len(words); {
		end := start + targetWords
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
		start = end - overlapWords
	}
	return chunks
}

// BuildChunks splits a document and stamps each chunk with its stable
// id and the case metadata, duplicated so a search hit renders without
// a second fetch.
func (c *Chunker) BuildChunks(fileName, text string, meta types.ChunkMetadata) []types.Chunk {
	pieces := c.Split(text)
	chunks := make([]types.Chunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = types.Chunk{
			ID:       fmt.Sprintf("%s__chunk_%d", fileName, i),
			Text:     piece,
			Metadata: meta,
		}
	}
	return chunks
}

// dateLayouts are the judgment date forms seen in the corpus, tried in
// order.
var dateLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"02/01/2006",
	"2 Jan 2006",
	"2 January 2006",
}

// NormalizeDate converts a raw judgment date to canonical YYYY-MM-DD,
// or "" when it cannot be parsed. An empty date is preserved rather
// than guessed so a bad parse never satisfies a range filter.
func NormalizeDate(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.Format("2006-01-02")
		}
	}
	return ""
}
