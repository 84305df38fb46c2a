package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexquery/lexquery/pkg/types"
)

type captureVector struct {
	chunks     []types.Chunk
	embeddings [][]float32
	batches    int
}

func (c *captureVector) Upsert(ctx context.Context, chunks []types.Chunk, embeddings [][]float32) error {
	c.chunks = append(c.chunks, chunks...)
	c.embeddings = append(c.embeddings, embeddings...)
	c.batches++
	return nil
}

type captureGraph struct {
	cases []types.CaseRecord
}

func (c *captureGraph) UpsertCase(ctx context.Context, rec types.CaseRecord) error {
	c.cases = append(c.cases, rec)
	return nil
}

type countingEmbedder struct {
	dims  int
	calls int
}

func (e *countingEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	e.calls++
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, e.dims)
	}
	return out, nil
}

func (e *countingEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (e *countingEmbedder) Dimensions() int { return e.dims }
func (e *countingEmbedder) Close() error    { return nil }

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadChunksJSONL(t *testing.T) {
	content := `{"id":"a__chunk_0","text":"first chunk","metadata":{"case_number":"CA-1","court":"Bombay High Court"}}
{"id":"a__chunk_1","text":"second chunk","metadata":{"case_number":"CA-1","court":"Bombay High Court"}}

{"id":"b__chunk_0","text":"third chunk","metadata":{"case_number":"CA-2"}}
`
	path := writeFile(t, "chunks.jsonl", content)

	vec := &captureVector{}
	emb := &countingEmbedder{dims: 4}
	loader := NewLoader(vec, nil, emb, nil)

	count, err := loader.LoadChunksJSONL(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	require.Len(t, vec.chunks, 3)
	assert.Equal(t, "a__chunk_0", vec.chunks[0].ID)
	assert.Equal(t, "CA-2", vec.chunks[2].Metadata.CaseNumber)
	assert.Len(t, vec.embeddings, 3)
}

func TestLoadChunksJSONLRejectsMalformedLine(t *testing.T) {
	path := writeFile(t, "chunks.jsonl", "{not json}\n")

	loader := NewLoader(&captureVector{}, nil, &countingEmbedder{dims: 4}, nil)
	_, err := loader.LoadChunksJSONL(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
}

func TestLoadChunksJSONLRequiresCollaborators(t *testing.T) {
	loader := NewLoader(nil, &captureGraph{}, nil, nil)
	_, err := loader.LoadChunksJSONL(context.Background(), "whatever.jsonl")
	require.Error(t, err)
}

func TestLoadCasesCSV(t *testing.T) {
	content := `Case Title,File Name,Case Number,Court Name,Date of Judgment,Judges,Petitioner(s),Respondent(s),Legal Issues,Decision Summary,Outcome,Citations
A v. B,case_001.txt,CA 1/2019,Bombay High Court,01-06-2019,Justice Rao; Justice Mehta,A,B,divorce; maintenance,Appeal allowed.,allowed,AIR 2019 BOM 1
,case_002.txt,,Delhi High Court,2020-01-01,,,,,No case number.,,
C v. D,case_003.txt,CA 2/2020,Delhi High Court,2020-03-15,Justice Singh,C,D,contract,Suit dismissed.,dismissed,
`
	path := writeFile(t, "cases.csv", content)

	g := &captureGraph{}
	loader := NewLoader(nil, g, nil, nil)

	count, err := loader.LoadCasesCSV(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	require.Len(t, g.cases, 2)

	first := g.cases[0]
	assert.Equal(t, "CA 1/2019", first.CaseNumber)
	assert.Equal(t, "2019-06-01", first.DateOfJudgment)
	assert.Equal(t, []string{"Justice Rao", "Justice Mehta"}, first.Judges)
	assert.Equal(t, []string{"divorce", "maintenance"}, first.LegalIssues)
	assert.Equal(t, "Appeal allowed.", first.DecisionSummary)

	assert.Equal(t, "CA 2/2020", g.cases[1].CaseNumber)
}
