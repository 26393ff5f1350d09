package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/issuepilot/issuepilot/internal/dedup"
	"github.com/issuepilot/issuepilot/internal/types"
)

var (
	duplicatesIssue     string
	duplicatesThreshold float64
	duplicatesRelated   bool
	duplicatesWindow    int
)

var duplicatesCmd = &cobra.Command{
	Use:   "duplicates",
	Short: "Scan for near-duplicate issues",
	Long: `Scan stored issues for near-duplicates via the embedding index.

By default every active issue in the window is scanned. Pass --issue to
check a single issue against the corpus, or --related to use the lower
related-issue threshold.

Example:
  issuepilot duplicates
  issuepilot duplicates --issue ENG-142
  issuepilot duplicates --related --threshold 0.7`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		index, err := newIndex()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: embedding index unavailable: %v\n", err)
			os.Exit(1)
		}
		defer index.Close()

		detector, err := newDetector(index)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		threshold := duplicatesThreshold
		if threshold <= 0 && duplicatesRelated {
			threshold = dedup.DefaultRelatedThreshold
		}

		var pairs []types.DuplicatePair
		if duplicatesIssue != "" {
			pairs, err = detector.CheckOne(ctx, duplicatesIssue, threshold)
		} else {
			window := duplicatesWindow
			if window <= 0 {
				window = cfg.WindowDays
			}
			issues, listErr := store.ListIssues(ctx, window)
			if listErr != nil {
				fmt.Fprintf(os.Stderr, "Error: failed to list issues: %v\n", listErr)
				os.Exit(1)
			}
			pairs, err = detector.Scan(ctx, issues, threshold)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		gray := color.New(color.FgHiBlack).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()

		if len(pairs) == 0 {
			fmt.Printf("%s\n", gray("No duplicate candidates found"))
			return
		}

		for _, p := range pairs {
			fmt.Printf("%s / %s  %s\n", p.IssueA, p.IssueB, yellow(fmt.Sprintf("%.0f%%", p.Similarity*100)))
			fmt.Printf("  %s\n", gray(p.Suggestion))
		}
	},
}

func init() {
	duplicatesCmd.Flags().StringVar(&duplicatesIssue, "issue", "", "Check a single issue instead of scanning")
	duplicatesCmd.Flags().Float64Var(&duplicatesThreshold, "threshold", 0, "Similarity threshold (default 0.85)")
	duplicatesCmd.Flags().BoolVar(&duplicatesRelated, "related", false, "Use the related-issue threshold (0.6)")
	duplicatesCmd.Flags().IntVar(&duplicatesWindow, "window", 0, "Issue window in days for full scans")
	rootCmd.AddCommand(duplicatesCmd)
}
