package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/issuepilot/issuepilot/internal/preferences"
	"github.com/issuepilot/issuepilot/internal/types"
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show or manage learned preferences",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var prefsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the learned preference profile",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		user := requireUser()

		learner, err := preferences.NewLearner(store)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		bundle, err := learner.Load(ctx, user)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		fmt.Printf("\n%s\n\n", cyan(fmt.Sprintf("=== Preferences for %s ===", user)))
		if len(bundle.TopicScores)+len(bundle.TeamScores)+len(bundle.LabelScores) == 0 {
			fmt.Printf("  %s\n\n", gray("No preferences learned yet (record some feedback first)"))
			return
		}

		printScores("Topics", bundle.TopicScores)
		printScores("Teams", bundle.TeamScores)
		printScores("Labels", bundle.LabelScores)
		fmt.Printf("  Confidence: %.2f %s\n\n", bundle.Confidence,
			gray(fmt.Sprintf("(%d feedback events)", bundle.FeedbackCount)))
	},
}

var (
	prefsResetType string
	prefsResetKey  string
)

var prefsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete learned preferences",
	Long: `Delete learned preferences. Without flags everything for the user is
removed; --type and --key narrow the deletion.

Example:
  issuepilot prefs reset
  issuepilot prefs reset --type topic
  issuepilot prefs reset --type topic --key backend`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		user := requireUser()

		var prefType *types.PreferenceType
		if prefsResetType != "" {
			pt := types.PreferenceType(prefsResetType)
			if !pt.IsValid() {
				fmt.Fprintf(os.Stderr, "Error: invalid preference type %q (topic, team, or label)\n", prefsResetType)
				os.Exit(1)
			}
			prefType = &pt
		}
		var key *string
		if prefsResetKey != "" {
			key = &prefsResetKey
		}

		count, err := store.DeletePreferences(ctx, user, prefType, key)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Deleted %d preference record(s)\n", green("✓"), count)
	},
}

// printScores renders one score map sorted by score descending.
func printScores(heading string, scores map[string]float64) {
	if len(scores) == 0 {
		return
	}

	yellow := color.New(color.FgYellow).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	keys := make([]string, 0, len(scores))
	for k := range scores {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if scores[keys[i]] != scores[keys[j]] {
			return scores[keys[i]] > scores[keys[j]]
		}
		return keys[i] < keys[j]
	})

	fmt.Printf("%s\n", yellow(heading+":"))
	for _, k := range keys {
		score := scores[k]
		marker := gray("neutral")
		if score >= preferences.PreferredThreshold {
			marker = green("preferred")
		} else if score <= preferences.DislikedThreshold {
			marker = red("disliked")
		}
		fmt.Printf("  %-20s %.2f  %s\n", k, score, marker)
	}
	fmt.Println()
}

func init() {
	prefsResetCmd.Flags().StringVar(&prefsResetType, "type", "", "Preference type to delete: topic, team, or label")
	prefsResetCmd.Flags().StringVar(&prefsResetKey, "key", "", "Specific key to delete (requires --type)")
	prefsCmd.AddCommand(prefsShowCmd)
	prefsCmd.AddCommand(prefsResetCmd)
	rootCmd.AddCommand(prefsCmd)
}
