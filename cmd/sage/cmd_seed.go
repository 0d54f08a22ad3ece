package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Ramsey-B/sage/pkg/vocabulary"
)

func seedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a seed vocabulary from a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			db, err := connectDatabase(ctx, logger)
			if err != nil {
				return fmt.Errorf("seed: connecting to database: %w", err)
			}
			defer db.Close()

			seeder := vocabulary.NewSeeder(newItemRepository(db, logger), logger)
			result, err := seeder.SeedFromFile(ctx, file)
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}

			fmt.Printf("Seeded vocabulary: %d created, %d skipped, %d failed\n", result.Created, result.Skipped, result.Failed)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "seed/vocabulary.json", "path to the seed vocabulary JSON file")
	return cmd
}
