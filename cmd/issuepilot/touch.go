package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/issuepilot/issuepilot/internal/engagement"
	"github.com/issuepilot/issuepilot/internal/types"
)

var (
	touchKind    string
	touchContext string
)

var touchCmd = &cobra.Command{
	Use:   "touch <issue-id>",
	Short: "Record an interaction with an issue",
	Long: `Record that you interacted with an issue. Interactions drive the
engagement score used in ranking: frequency and recency both count.

Kinds: view (default), query, mention.

Example:
  issuepilot touch ENG-142
  issuepilot touch ENG-142 --kind query --context "searched for oauth"`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		user := requireUser()
		issueID := args[0]

		tracker, err := engagement.NewTracker(store)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		record, err := tracker.RecordInteraction(ctx, user, issueID, types.InteractionKind(touchKind), touchContext)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to record interaction: %v\n", err)
			os.Exit(1)
		}

		green := color.New(color.FgGreen).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()
		fmt.Printf("%s Recorded %s on %s %s\n", green("✓"), touchKind, issueID,
			gray(fmt.Sprintf("(interactions: %d, score: %.2f)", record.InteractionCount, record.Score)))
	},
}

func init() {
	touchCmd.Flags().StringVar(&touchKind, "kind", string(types.InteractionView), "Interaction kind: view, query, or mention")
	touchCmd.Flags().StringVar(&touchContext, "context", "", "Short context for the interaction")
	rootCmd.AddCommand(touchCmd)
}
