package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/issuepilot/issuepilot/internal/engagement"
)

var engagementLimit int

var engagementCmd = &cobra.Command{
	Use:   "engagement",
	Short: "Show engagement stats and top issues",
	Long: `Show how much you have interacted with tracked issues: totals, the
mean per issue, and the issues you engage with most.

Example:
  issuepilot engagement
  issuepilot engagement --limit 20`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		user := requireUser()

		tracker, err := engagement.NewTracker(store)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		stats, err := tracker.GetStats(ctx, user)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		fmt.Printf("\n%s\n\n", cyan(fmt.Sprintf("=== Engagement for %s ===", user)))
		fmt.Printf("  Interactions:   %d\n", stats.TotalInteractions)
		fmt.Printf("  Distinct issues: %d\n", stats.DistinctIssues)
		fmt.Printf("  Mean per issue:  %.1f\n", stats.MeanPerIssue)

		records, err := tracker.TopEngaged(ctx, user, engagementLimit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if len(records) == 0 {
			fmt.Printf("\n  %s\n\n", gray("No interactions recorded yet"))
			return
		}

		fmt.Printf("\n%s\n", yellow("Top issues:"))
		for _, r := range records {
			fmt.Printf("  %s  score %.2f  %s\n", r.IssueID, r.Score,
				gray(fmt.Sprintf("(%d interactions, last %s)", r.InteractionCount, r.LastInteraction.Format("2006-01-02"))))
		}
		fmt.Println()
	},
}

func init() {
	engagementCmd.Flags().IntVar(&engagementLimit, "limit", 10, "Number of top issues to show")
	rootCmd.AddCommand(engagementCmd)
}
