package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/issuepilot/issuepilot/internal/semsearch"
)

var (
	similarText   string
	similarLimit  int
	similarMinSim float64
	similarTeam   string
	similarState  string
)

var similarCmd = &cobra.Command{
	Use:   "similar [issue-id]",
	Short: "Find issues similar to an issue or a text query",
	Long: `Find semantically similar issues via the embedding index.

Give an issue id to search near that issue, or --text for a free-text
query. Filters restrict free-text results by index metadata.

Example:
  issuepilot similar ENG-142
  issuepilot similar --text "oauth login loop" --limit 5
  issuepilot similar --text "flaky tests" --team Platform`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		if len(args) == 0 && similarText == "" {
			fmt.Fprintln(os.Stderr, "Error: give an issue id or --text")
			os.Exit(1)
		}

		index, err := newIndex()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: embedding index unavailable: %v\n", err)
			os.Exit(1)
		}
		defer index.Close()

		svc, err := semsearch.NewService(index, store, nil, cfg.CacheTTL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		var results []semsearch.Result
		if len(args) == 1 {
			results, err = svc.FindSimilar(ctx, args[0], similarLimit, similarMinSim)
		} else {
			filters := map[string]string{}
			if similarTeam != "" {
				filters["team"] = similarTeam
			}
			if similarState != "" {
				filters["state"] = similarState
			}
			if len(filters) == 0 {
				filters = nil
			}
			results, err = svc.SearchByText(ctx, similarText, similarLimit, similarMinSim, filters)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		gray := color.New(color.FgHiBlack).SprintFunc()
		cyan := color.New(color.FgCyan).SprintFunc()

		if len(results) == 0 {
			fmt.Printf("%s\n", gray("No similar issues found"))
			return
		}

		for _, r := range results {
			title := strings.SplitN(r.Document, "\n", 2)[0]
			fmt.Printf("%s  %s  %s\n", cyan(r.ID), fmt.Sprintf("%.0f%%", r.Similarity*100), title)
		}
	},
}

func init() {
	similarCmd.Flags().StringVar(&similarText, "text", "", "Free-text query instead of an issue id")
	similarCmd.Flags().IntVar(&similarLimit, "limit", 10, "Maximum results")
	similarCmd.Flags().Float64Var(&similarMinSim, "min-similarity", 0, "Drop results below this similarity")
	similarCmd.Flags().StringVar(&similarTeam, "team", "", "Filter free-text results by team")
	similarCmd.Flags().StringVar(&similarState, "state", "", "Filter free-text results by state")
	rootCmd.AddCommand(similarCmd)
}
