package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Ramsey-B/sage/pkg/models"
	"github.com/Ramsey-B/sage/pkg/resolver"
)

func resolveCmd() *cobra.Command {
	var tableName string
	var offset int

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve unresolved ingredient references against the vocabulary",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			db, err := connectDatabase(ctx, logger)
			if err != nil {
				return fmt.Errorf("resolve: connecting to database: %w", err)
			}
			defer db.Close()

			r := resolver.NewResolver(
				newItemRepository(db, logger),
				newRefRepository(db, logger),
				logger,
				cfg.ResolvePageSize,
				cfg.FuzzyThreshold,
			)

			tables := models.ReferenceTables()
			if tableName != "" {
				table, ok := models.ReferenceTableByName(tableName)
				if !ok {
					return fmt.Errorf("resolve: unknown reference table %q", tableName)
				}
				tables = []models.ReferenceTable{table}
			}

			for _, table := range tables {
				stats, err := r.Resolve(ctx, table, offset)
				if stats != nil {
					printStats(stats)
				}
				if err != nil {
					return fmt.Errorf("resolve: %s: %w", table.Name, err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&tableName, "table", "", "resolve only this reference table (default: all)")
	cmd.Flags().IntVar(&offset, "offset", 0, "offset into the unresolved window to resume from")
	return cmd
}

func printStats(stats *models.ResolveStats) {
	fmt.Printf(
		"%s: %d processed, %d matched (avg confidence %.3f), %d unmatched, %d updated, %d failed",
		stats.Table, stats.Total, stats.Matched, stats.AvgConfidence, stats.Unmatched, stats.Updated, stats.Failed,
	)
	if !stats.Completed {
		fmt.Printf(", aborted at offset %d", stats.NextOffset)
	}
	fmt.Println()
}
