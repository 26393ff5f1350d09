package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/issuepilot/issuepilot/internal/vector"
)

var (
	reindexWindow      int
	reindexConcurrency int
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the embedding index from stored issues",
	Long: `Embed every stored issue in the window and upsert it into the index.
Issues whose text has not changed keep their existing embedding, so
re-running is cheap.

Example:
  issuepilot reindex
  issuepilot reindex --window 90 --concurrency 8`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		index, err := newIndex()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: embedding index unavailable: %v\n", err)
			os.Exit(1)
		}
		defer index.Close()

		indexer, err := vector.NewIndexer(index)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		window := reindexWindow
		if window <= 0 {
			window = cfg.WindowDays
		}
		issues, err := store.ListIssues(ctx, window)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to list issues: %v\n", err)
			os.Exit(1)
		}

		indexed, failed, err := indexer.Backfill(ctx, issues, reindexConcurrency)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		green := color.New(color.FgGreen).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()
		fmt.Printf("%s Indexed %d issue(s)\n", green("✓"), indexed)
		if failed > 0 {
			fmt.Printf("%s %d issue(s) failed to index\n", yellow("⚠"), failed)
		}
	},
}

func init() {
	reindexCmd.Flags().IntVar(&reindexWindow, "window", 0, "Issue window in days (default from config)")
	reindexCmd.Flags().IntVar(&reindexConcurrency, "concurrency", 4, "Concurrent embedding requests")
	rootCmd.AddCommand(reindexCmd)
}
