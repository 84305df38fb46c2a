// Package telemetry records per-query telemetry to Parquet files for
// offline analysis of retrieval quality and backend health.
package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"
)

// QueryRecord is one executed query as stored in Parquet.
type QueryRecord struct {
	ID             string    `parquet:"id"`
	Timestamp      time.Time `parquet:"timestamp"`
	QueryText      string    `parquet:"query_text"`
	Court          string    `parquet:"court"`
	StartDate      string    `parquet:"start_date"`
	EndDate        string    `parquet:"end_date"`
	K              int       `parquet:"k"`
	ResultCount    int       `parquet:"result_count"`
	Partial        bool      `parquet:"partial"`
	FailedBackends string    `parquet:"failed_backends"` // comma separated
	DurationMillis int64     `parquet:"duration_millis"`
	Error          string    `parquet:"error"`
}

// Recorder buffers query records and writes them to timestamped
// Parquet files. Safe for concurrent use.
type Recorder struct {
	outputDir string
	batchSize int
	mu        sync.Mutex
	buffer    []QueryRecord
}

// NewRecorder creates a recorder writing under outputDir.
func NewRecorder(outputDir string) (*Recorder, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create telemetry directory: %w", err)
	}

	return &Recorder{
		outputDir: outputDir,
		batchSize: 100,
		buffer:    make([]QueryRecord, 0, 100),
	}, nil
}

// Record buffers one query record, assigning it an id and timestamp.
// The buffer flushes once it reaches the batch size.
func (r *Recorder) Record(rec QueryRecord) error {
	rec.ID = uuid.New().String()
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.buffer = append(r.buffer, rec)
	if len(r.buffer) >= r.batchSize {
		return r.flush()
	}
	return nil
}

// Flush writes any buffered records out immediately.
func (r *Recorder) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flush()
}

// Close flushes and stops the recorder.
func (r *Recorder) Close() error {
	return r.Flush()
}

// flush writes the buffer to a new Parquet file. Caller holds the lock.
func (r *Recorder) flush() error {
	if len(r.buffer) == 0 {
		return nil
	}

	filename := fmt.Sprintf("queries_%s_%d.parquet", time.Now().Format("20060102_150405"), time.Now().UnixNano())
	path := filepath.Join(r.outputDir, filename)

	if err := parquet.WriteFile(path, r.buffer); err != nil {
		return fmt.Errorf("failed to write telemetry file %s: %w", path, err)
	}

	r.buffer = r.buffer[:0]
	return nil
}

// JoinBackends renders a failed-backend list for storage.
func JoinBackends(backends []string) string {
	return strings.Join(backends, ",")
}
