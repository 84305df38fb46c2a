package lexquery

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lexquery/lexquery/pkg/config"
	"github.com/lexquery/lexquery/pkg/extract"
	"github.com/lexquery/lexquery/pkg/ingest"
	"github.com/lexquery/lexquery/pkg/logger"
	"github.com/lexquery/lexquery/pkg/types"
)

var (
	extractInputDir   string
	extractCasesPath  string
	extractChunksPath string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract case fields and chunks from raw judgment text",
	Long: `Read raw judgment text files (one case per .txt file), extract the
structured case fields with an LLM, and write the case table (CSV) and
the chunked corpus (JSONL) that the ingest command loads. A document
that fails extraction is reported and skipped; the run continues.`,
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVar(&extractInputDir, "input", "", "Directory of raw judgment .txt files")
	extractCmd.Flags().StringVar(&extractCasesPath, "cases", "cases.csv", "Output case table (CSV)")
	extractCmd.Flags().StringVar(&extractChunksPath, "chunks", "cases_chunks.jsonl", "Output chunked corpus (JSONL)")
	extractCmd.MarkFlagRequired("input")
}

var caseCSVHeader = []string{
	"Case Title", "File Name", "Case Number", "Court Name",
	"Date of Judgment", "Judges", "Petitioner(s)", "Respondent(s)",
	"Legal Issues", "Decision Summary", "Outcome", "Citations",
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	extractor := extract.New(extract.Config{
		Model:       cfg.Extraction.Model,
		APIKey:      cfg.Extraction.APIKey,
		BaseURL:     cfg.Extraction.BaseURL,
		Temperature: cfg.Extraction.Temperature,
		MaxRetries:  cfg.Extraction.MaxRetries,
	}, log)
	chunker := ingest.NewChunker()

	entries, err := os.ReadDir(extractInputDir)
	if err != nil {
		return fmt.Errorf("failed to read input directory: %w", err)
	}

	casesFile, err := os.Create(extractCasesPath)
	if err != nil {
		return fmt.Errorf("failed to create case table: %w", err)
	}
	defer casesFile.Close()
	chunksFile, err := os.Create(extractChunksPath)
	if err != nil {
		return fmt.Errorf("failed to create chunk file: %w", err)
	}
	defer chunksFile.Close()

	writer := csv.NewWriter(casesFile)
	defer writer.Flush()
	if err := writer.Write(caseCSVHeader); err != nil {
		return err
	}
	encoder := json.NewEncoder(chunksFile)

	ctx := cmd.Context()
	extracted, failed := 0, 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}

		path := filepath.Join(extractInputDir, entry.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		fields, err := extractor.Extract(ctx, string(raw))
		if err != nil {
			log.Error("extraction failed, skipping document", "file", entry.Name(), "error", err)
			failed++
			continue
		}

		date := ingest.NormalizeDate(fields.Date)
		if err := writer.Write([]string{
			fields.CaseTitle, entry.Name(), fields.CaseNumber, fields.Court,
			date, fields.Judges, fields.Petitioner, fields.Respondent,
			fields.LegalIssues, fields.DecisionSummary, fields.Outcome, fields.Citations,
		}); err != nil {
			return err
		}

		meta := types.ChunkMetadata{
			FileName:    entry.Name(),
			CaseTitle:   fields.CaseTitle,
			Court:       fields.Court,
			CaseNumber:  fields.CaseNumber,
			Date:        date,
			Judges:      fields.Judges,
			Petitioner:  fields.Petitioner,
			Respondent:  fields.Respondent,
			LegalIssues: fields.LegalIssues,
			Outcome:     fields.Outcome,
			Citations:   fields.Citations,
			LocalPath:   path,
		}
		for _, chunk := range chunker.BuildChunks(entry.Name(), string(raw), meta) {
			if err := encoder.Encode(chunk); err != nil {
				return fmt.Errorf("failed to write chunk: %w", err)
			}
		}
		extracted++
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Extracted %d cases (%d failed) into %s and %s.\n",
		extracted, failed, extractCasesPath, extractChunksPath)
	return nil
}
