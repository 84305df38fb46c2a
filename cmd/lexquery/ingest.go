package lexquery

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	root "github.com/lexquery/lexquery"
	"github.com/lexquery/lexquery/pkg/config"
)

var (
	ingestChunksPath string
	ingestCasesPath  string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load a prepared corpus into the stores",
	Long: `Load a prepared corpus: chunked documents (JSONL, one chunk per
line) into the vector index, and the extracted case table (CSV) into
the graph. Either input may be given alone. Loading is idempotent;
re-running updates existing records instead of duplicating them.`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVar(&ingestChunksPath, "chunks", "", "Path to chunked corpus (JSONL)")
	ingestCmd.Flags().StringVar(&ingestCasesPath, "cases", "", "Path to extracted case table (CSV)")
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestChunksPath == "" && ingestCasesPath == "" {
		return fmt.Errorf("nothing to do: provide --chunks and/or --cases")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	client, err := root.New(cfg, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	ctx := cmd.Context()
	defer client.Close(context.WithoutCancel(ctx))

	loader := client.Loader()

	if ingestCasesPath != "" {
		count, err := loader.LoadCasesCSV(ctx, ingestCasesPath)
		if err != nil {
			return fmt.Errorf("case load failed after %d cases: %w", count, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d cases into the graph.\n", count)
	}

	if ingestChunksPath != "" {
		count, err := loader.LoadChunksJSONL(ctx, ingestChunksPath)
		if err != nil {
			return fmt.Errorf("chunk load failed after %d chunks: %w", count, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d chunks into the vector index.\n", count)
	}

	return nil
}
