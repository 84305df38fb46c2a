package lexquery

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	root "github.com/lexquery/lexquery"
	"github.com/lexquery/lexquery/pkg/config"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Create graph constraints and indexes",
	Long: `Create the graph constraints and indexes the search path relies on:
a uniqueness constraint on case numbers (backing idempotent ingestion)
and indexes on judgment dates and court names. Safe to run repeatedly.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
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

	if err := client.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("graph store unreachable: %w", err)
	}
	if err := client.CreateIndices(ctx); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Graph constraints and indexes created.")
	return nil
}
