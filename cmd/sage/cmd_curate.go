package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Ramsey-B/sage/pkg/curator"
	"github.com/Ramsey-B/sage/pkg/events"
)

func curateCmd() *cobra.Command {
	var planFile string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "curate",
		Short: "Apply a reviewed vocabulary curation plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			plan, err := curator.LoadPlan(planFile)
			if err != nil {
				return fmt.Errorf("curate: %w", err)
			}

			db, err := connectDatabase(ctx, logger)
			if err != nil {
				return fmt.Errorf("curate: connecting to database: %w", err)
			}
			defer db.Close()

			publisher := newPublisher(logger)
			if producer, ok := publisher.(*events.Producer); ok {
				defer producer.Close()
			}

			items := newItemRepository(db, logger)
			c := curator.NewCurator(items, newRefRepository(db, logger), publisher, logger)

			summary, err := c.Apply(ctx, *plan, dryRun)
			if err != nil {
				return fmt.Errorf("curate: %w", err)
			}

			verb := "Applied"
			if dryRun {
				verb = "Would apply"
			}
			fmt.Printf(
				"%s %d updates, %d merges (%d references repointed), %d deletes (%d references released), %d items created\n",
				verb, summary.Updated, summary.Merged, summary.Repointed, summary.Deleted, summary.Cleared, summary.Created,
			)
			if summary.Skipped > 0 {
				fmt.Printf("Skipped %d actions whose items were already removed\n", summary.Skipped)
			}
			for _, failure := range summary.Failures {
				fmt.Printf("FAILED %s %s: %s\n", failure.Type, failure.ItemID, failure.Reason)
			}

			fmt.Printf("Vocabulary size: %d\n", summary.VocabularySize)
			counts, err := items.CountByCategory(ctx)
			if err == nil {
				for _, count := range counts {
					fmt.Printf("  %s: %d\n", count.Category, count.Count)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&planFile, "plan", "", "path to the curation plan JSON file")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what the plan would touch without writing")
	_ = cmd.MarkFlagRequired("plan")
	return cmd
}
