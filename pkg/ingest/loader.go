package ingest

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lexquery/lexquery/pkg/embedder"
	"github.com/lexquery/lexquery/pkg/extract"
	"github.com/lexquery/lexquery/pkg/types"
)

const embedBatchSize = 64

// VectorWriter is the vector store surface the loader needs.
// *vector.Store satisfies it.
type VectorWriter interface {
	Upsert(ctx context.Context, chunks []types.Chunk, embeddings [][]float32) error
}

// GraphWriter is the graph store surface the loader needs.
// *graph.Store satisfies it.
type GraphWriter interface {
	UpsertCase(ctx context.Context, rec types.CaseRecord) error
}

// Loader pushes a prepared corpus into the stores.
type Loader struct {
	vector   VectorWriter
	graph    GraphWriter
	embedder embedder.Client
	logger   *slog.Logger
}

// NewLoader wires the loader's collaborators. Any of them may be nil
// when only the other store is being loaded.
func NewLoader(v VectorWriter, g GraphWriter, emb embedder.Client, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{vector: v, graph: g, embedder: emb, logger: logger}
}

// LoadChunksJSONL reads one chunk per line, embeds them in batches,
// and upserts them into the vector store. Returns the number of chunks
// loaded.
func (l *Loader) LoadChunksJSONL(ctx context.Context, path string) (int, error) {
	if l.vector == nil || l.embedder == nil {
		return 0, fmt.Errorf("vector store and embedder are required to load chunks")
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open chunk file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)

	var batch []types.Chunk
	total := 0
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}

		var chunk types.Chunk
		if err := json.Unmarshal([]byte(raw), &chunk); err != nil {
			return total, fmt.Errorf("line %d: malformed chunk record: %w", line, err)
		}
		if chunk.ID == "" {
			return total, fmt.Errorf("line %d: chunk has no id", line)
		}

		batch = append(batch, chunk)
		if len(batch) >= embedBatchSize {
			if err := l.flushChunks(ctx, batch); err != nil {
				return total, err
			}
			total += len(batch)
			batch = batch[:0]
		}
	}
	if err := scanner.Err(); err != nil {
		return total, fmt.Errorf("failed to read chunk file: %w", err)
	}

	if len(batch) > 0 {
		if err := l.flushChunks(ctx, batch); err != nil {
			return total, err
		}
		total += len(batch)
	}

	l.logger.Info("chunks loaded", "path", path, "count", total)
	return total, nil
}

func (l *Loader) flushChunks(ctx context.Context, chunks []types.Chunk) error {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	embeddings, err := l.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed chunk batch: %w", err)
	}
	if err := l.vector.Upsert(ctx, chunks, embeddings); err != nil {
		return fmt.Errorf("failed to upsert chunk batch: %w", err)
	}
	return nil
}

// LoadCasesCSV reads the extracted case table and merges one Case node
// per case number into the graph. Rows without a case number are
// skipped and counted, not fatal; one unextractable document should
// not abort a corpus load.
func (l *Loader) LoadCasesCSV(ctx context.Context, path string) (int, error) {
	if l.graph == nil {
		return 0, fmt.Errorf("graph store is required to load cases")
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open case file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("failed to read case file header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	field := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	loaded, skipped := 0, 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return loaded, fmt.Errorf("failed to read case row: %w", err)
		}

		rec := types.CaseRecord{
			CaseNumber:      field(row, "Case Number"),
			Title:           field(row, "Case Title"),
			CourtName:       field(row, "Court Name"),
			DateOfJudgment:  NormalizeDate(field(row, "Date of Judgment")),
			FileName:        field(row, "File Name"),
			Judges:          extract.SplitList(field(row, "Judges")),
			Petitioners:     extract.SplitList(field(row, "Petitioner(s)")),
			Respondents:     extract.SplitList(field(row, "Respondent(s)")),
			LegalIssues:     extract.SplitList(field(row, "Legal Issues")),
			DecisionSummary: field(row, "Decision Summary"),
			Outcome:         field(row, "Outcome"),
			Citations:       field(row, "Citations"),
		}
		if rec.CaseNumber == "" {
			skipped++
			continue
		}

		if err := l.graph.UpsertCase(ctx, rec); err != nil {
			return loaded, err
		}
		loaded++
	}

	l.logger.Info("cases loaded", "path", path, "count", loaded, "skipped", skipped)
	return loaded, nil
}
