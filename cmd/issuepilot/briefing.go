package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/issuepilot/issuepilot/internal/ai"
	"github.com/issuepilot/issuepilot/internal/briefing"
	"github.com/issuepilot/issuepilot/internal/dedup"
)

var (
	briefingWindow    int
	briefingLimit     int
	briefingSummarize bool
	briefingNoDedup   bool
)

var briefingCmd = &cobra.Command{
	Use:   "briefing",
	Short: "Generate a personalized issue briefing",
	Long: `Generate a briefing: recent issues analyzed for urgency, ranked by
your learned preferences and engagement, and annotated with likely
duplicates and related issues.

Example:
  issuepilot briefing
  issuepilot briefing --window 7 --limit 5
  issuepilot briefing --summarize`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		user := requireUser()

		ranker, err := newRanker()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		// The detector needs the embedding index; without an OpenAI key
		// the briefing still works, just without duplicate annotations.
		var detector dedup.Detector
		if !briefingNoDedup {
			if index, err := newIndex(); err == nil {
				defer index.Close()
				if d, err := newDetector(index); err == nil {
					detector = d
				}
			}
		}

		var summarizer briefing.Summarizer
		if briefingSummarize || cfg.Summarize {
			s, err := ai.NewSummarizer(&ai.Config{})
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: summarization unavailable: %v\n", err)
			} else {
				summarizer = s
			}
		}

		builder, err := briefing.NewBuilder(store, ranker, detector, summarizer)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		window := briefingWindow
		if window <= 0 {
			window = cfg.WindowDays
		}
		limit := briefingLimit
		if limit <= 0 {
			limit = cfg.BriefingLimit
		}

		b, err := builder.Build(ctx, user, window, limit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		printBriefing(b)
	},
}

func printBriefing(b *briefing.Briefing) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	fmt.Printf("\n%s\n\n", cyan(fmt.Sprintf("=== Briefing for %s ===", b.UserID)))

	if b.Summary != "" {
		fmt.Printf("%s\n\n", b.Summary)
	}

	if len(b.Items) == 0 {
		fmt.Printf("  %s\n\n", gray("No recent issues"))
		return
	}

	for i, item := range b.Items {
		issue := item.Issue
		fmt.Printf("%2d. [%s] %s %s\n", i+1, issue.ID, issue.Title, gray("("+issue.State+")"))
		fmt.Printf("    priority %.1f", item.Personalized)
		if item.Analysis != nil {
			if item.Analysis.IsStagnant {
				fmt.Printf("  %s", yellow("stagnant"))
			}
			if item.Analysis.IsBlocked {
				fmt.Printf("  %s", red("blocked"))
			}
		}
		fmt.Println()
		if item.Analysis != nil {
			for _, insight := range item.Analysis.Insights {
				fmt.Printf("    %s\n", gray(insight))
			}
		}
	}

	if len(b.Duplicates) > 0 {
		fmt.Printf("\n%s\n", yellow("Likely duplicates:"))
		for _, p := range b.Duplicates {
			fmt.Printf("  %s / %s (%.0f%%): %s\n", p.IssueA, p.IssueB, p.Similarity*100, p.Suggestion)
		}
	}
	if len(b.Related) > 0 {
		fmt.Printf("\n%s\n", yellow("Related issues:"))
		for _, p := range b.Related {
			fmt.Printf("  %s / %s (%.0f%%)\n", p.IssueA, p.IssueB, p.Similarity*100)
		}
	}
	fmt.Println()
}

func init() {
	briefingCmd.Flags().IntVar(&briefingWindow, "window", 0, "Issue window in days (default from config)")
	briefingCmd.Flags().IntVar(&briefingLimit, "limit", 0, "Maximum issues in the briefing (default from config)")
	briefingCmd.Flags().BoolVar(&briefingSummarize, "summarize", false, "Render an LLM summary of the briefing")
	briefingCmd.Flags().BoolVar(&briefingNoDedup, "no-dedup", false, "Skip duplicate annotations")
	rootCmd.AddCommand(briefingCmd)
}
