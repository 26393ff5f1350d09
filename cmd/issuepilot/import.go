package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/issuepilot/issuepilot/internal/tracker"
	"github.com/issuepilot/issuepilot/internal/vector"
)

var importNoIndex bool

var importCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Import issues from a tracker export",
	Long: `Import issues from a JSON export: an array of issue objects in the
tracker wire shape. Each issue is converted to a snapshot, saved, and
embedded into the index.

Example:
  issuepilot import issues.json
  issuepilot import issues.json --no-index`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		data, err := os.ReadFile(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		var wires []*tracker.WireIssue
		if err := json.Unmarshal(data, &wires); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to parse export: %v\n", err)
			os.Exit(1)
		}

		var indexer *vector.Indexer
		if !importNoIndex {
			index, err := newIndex()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: embedding index unavailable, importing without indexing: %v\n", err)
			} else {
				defer index.Close()
				indexer, _ = vector.NewIndexer(index)
			}
		}

		now := time.Now().UTC()
		imported, skipped := 0, 0
		for _, wire := range wires {
			snapshot, err := tracker.FromWire(wire, now)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: skipping issue: %v\n", err)
				skipped++
				continue
			}
			if err := store.SaveIssue(ctx, snapshot); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to save %s: %v\n", snapshot.ID, err)
				skipped++
				continue
			}
			if indexer != nil {
				if err := indexer.IndexIssue(ctx, snapshot); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to index %s: %v\n", snapshot.ID, err)
				}
			}
			imported++
		}

		green := color.New(color.FgGreen).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()
		fmt.Printf("%s Imported %d issue(s)\n", green("✓"), imported)
		if skipped > 0 {
			fmt.Printf("%s Skipped %d invalid issue(s)\n", yellow("⚠"), skipped)
		}
	},
}

func init() {
	importCmd.Flags().BoolVar(&importNoIndex, "no-index", false, "Skip embedding imported issues")
	rootCmd.AddCommand(importCmd)
}
