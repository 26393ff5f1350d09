package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/issuepilot/issuepilot/internal/preferences"
	"github.com/issuepilot/issuepilot/internal/types"
)

var (
	feedbackNegative bool
	feedbackNote     string
	feedbackNoLearn  bool
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback <issue-id>",
	Short: "Record positive or negative feedback on an issue",
	Long: `Record feedback on an issue. Feedback is positive by default; pass
--negative to record dislike. Each feedback pass re-learns your
preference profile unless --no-learn is given.

Example:
  issuepilot feedback ENG-142
  issuepilot feedback ENG-142 --negative --note "not my area"`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		user := requireUser()
		issueID := args[0]

		kind := types.FeedbackPositive
		if feedbackNegative {
			kind = types.FeedbackNegative
		}

		event := &types.FeedbackEvent{
			UserID:    user,
			Kind:      kind,
			Metadata:  map[string]string{"issue_id": issueID},
			CreatedAt: time.Now().UTC(),
		}
		if feedbackNote != "" {
			event.Metadata["note"] = feedbackNote
		}

		if err := store.AppendFeedback(ctx, event); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to record feedback: %v\n", err)
			os.Exit(1)
		}

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Recorded %s feedback on %s\n", green("✓"), kind, issueID)

		if feedbackNoLearn {
			return
		}

		learner, err := preferences.NewLearner(store)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		lookup, err := issueLookup()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		bundle, err := learner.LearnAndPersist(ctx, user, cfg.WindowDays, lookup)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: preference learning failed: %v\n", err)
			return
		}
		if len(bundle.PreferredTopics) > 0 {
			fmt.Printf("  Preferred topics: %v\n", bundle.PreferredTopics)
		}
	},
}

func init() {
	feedbackCmd.Flags().BoolVar(&feedbackNegative, "negative", false, "Record negative feedback")
	feedbackCmd.Flags().StringVar(&feedbackNote, "note", "", "Optional note stored with the feedback")
	feedbackCmd.Flags().BoolVar(&feedbackNoLearn, "no-learn", false, "Skip re-learning preferences after recording")
	rootCmd.AddCommand(feedbackCmd)
}
