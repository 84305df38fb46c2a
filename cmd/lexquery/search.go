package lexquery

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	root "github.com/lexquery/lexquery"
	"github.com/lexquery/lexquery/pkg/config"
	"github.com/lexquery/lexquery/pkg/types"
)

var (
	searchCourt     string
	searchStartDate string
	searchEndDate   string
	searchK         int
)

var searchCmd = &cobra.Command{
	Use:   "search <query text>",
	Short: "Run a hybrid query against both backends",
	Long: `Run one hybrid query: the free text is matched semantically against
the vector index and as a substring against case fields in the graph.
Optional court and date filters apply to both backends.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringVar(&searchCourt, "court", "", "Court name filter")
	searchCmd.Flags().StringVar(&searchStartDate, "start-date", "", "Inclusive start date (YYYY-MM-DD)")
	searchCmd.Flags().StringVar(&searchEndDate, "end-date", "", "Inclusive end date (YYYY-MM-DD)")
	searchCmd.Flags().IntVar(&searchK, "k", 3, "Number of results")
}

func runSearch(cmd *cobra.Command, args []string) error {
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

	resp, err := client.Search(ctx, types.Query{
		Text:      strings.Join(args, " "),
		Court:     searchCourt,
		StartDate: searchStartDate,
		EndDate:   searchEndDate,
		K:         searchK,
	})
	if err != nil {
		return err
	}

	printResults(cmd, resp.Results)

	if resp.Partial {
		for _, f := range resp.Failures {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s backend degraded: %s\n", f.Backend, f.Reason)
		}
	}
	return nil
}

func printResults(cmd *cobra.Command, results []types.ScoredResult) {
	out := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintln(out, "No matching cases.")
		return
	}

	for i, r := range results {
		fmt.Fprintf(out, "%d. [%s] %s\n", i+1, r.Origin, displayTitle(r))
		if r.Court != "" || r.Date != "" {
			fmt.Fprintf(out, "   %s  %s\n", r.Court, r.Date)
		}
		if r.Origin != types.OriginGraph {
			fmt.Fprintf(out, "   score: %.4f\n", r.Score)
		}
		if r.Outcome != "" {
			fmt.Fprintf(out, "   outcome: %s\n", r.Outcome)
		}
		if r.Snippet != "" {
			fmt.Fprintf(out, "   %s\n", r.Snippet)
		}
	}
}

func displayTitle(r types.ScoredResult) string {
	switch {
	case r.Title != "" && r.CaseNumber != "":
		return fmt.Sprintf("%s (%s)", r.Title, r.CaseNumber)
	case r.Title != "":
		return r.Title
	case r.CaseNumber != "":
		return r.CaseNumber
	default:
		return r.ChunkID
	}
}
