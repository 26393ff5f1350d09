package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/issuepilot/issuepilot/internal/config"
	"github.com/issuepilot/issuepilot/internal/dedup"
	"github.com/issuepilot/issuepilot/internal/engagement"
	"github.com/issuepilot/issuepilot/internal/preferences"
	"github.com/issuepilot/issuepilot/internal/ranking"
	"github.com/issuepilot/issuepilot/internal/storage"
	"github.com/issuepilot/issuepilot/internal/tracker"
	"github.com/issuepilot/issuepilot/internal/vector"
)

// Shared state initialized in PersistentPreRunE and used by all commands
var (
	cfg   *config.Config
	store storage.Storage

	flagUser string
	flagDir  string
)

var rootCmd = &cobra.Command{
	Use:   "issuepilot",
	Short: "Personalized issue briefings, duplicate detection, and semantic search",
	Long: `issuepilot watches your issue tracker and tells you what matters.

It ranks issues by urgency and your learned preferences, surfaces
near-duplicates via embeddings, and records the feedback that drives
the personalization.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		root := flagDir
		if root == "" {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get current directory: %w", err)
			}
			root = cwd
		}

		var err error
		cfg, err = config.Load(root)
		if err != nil {
			return err
		}
		if flagUser != "" {
			cfg.User = flagUser
		}

		store, err = storage.NewStorage(cmd.Context(), &storage.Config{Path: cfg.DBPath})
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if store != nil {
			_ = store.Close()
		}
	},
}

// requireUser returns the effective user id or exits with guidance.
func requireUser() string {
	if cfg.User == "" {
		fmt.Fprintln(os.Stderr, "Error: no user configured (use --user or set 'user' in .issuepilot/config.yaml)")
		os.Exit(1)
	}
	return cfg.User
}

// newIndex opens the embedding index with an OpenAI-backed embedder.
func newIndex() (*vector.SQLiteIndex, error) {
	embedder, err := vector.NewOpenAIEmbedder(vector.EmbedderConfig{
		Model:             cfg.EmbeddingModel,
		RequestsPerMinute: cfg.RequestsPerMinute,
	})
	if err != nil {
		return nil, err
	}
	return vector.NewSQLiteIndex(cfg.IndexPath, embedder)
}

// newDetector builds a duplicate detector over the embedding index,
// resolving issues through the staleness-aware cache.
func newDetector(index vector.Index) (dedup.Detector, error) {
	detectorCfg, err := dedup.ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	cache, err := tracker.NewCache(store, nil)
	if err != nil {
		return nil, err
	}
	return dedup.NewVectorDetector(index, cache.Lookup(cfg.CacheTTL), detectorCfg)
}

// newRanker wires the learner and engagement tracker into a ranker.
func newRanker() (*ranking.Ranker, error) {
	learner, err := preferences.NewLearner(store)
	if err != nil {
		return nil, err
	}
	engagementTracker, err := engagement.NewTracker(store)
	if err != nil {
		return nil, err
	}
	return ranking.NewRanker(learner, engagementTracker)
}

// issueLookup resolves issue ids through the local store with the
// configured cache TTL.
func issueLookup() (preferences.IssueLookup, error) {
	cache, err := tracker.NewCache(store, nil)
	if err != nil {
		return nil, err
	}
	return cache.Lookup(cfg.CacheTTL), nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagUser, "user", "", "User id for briefings, feedback, and engagement")
	rootCmd.PersistentFlags().StringVar(&flagDir, "dir", "", "Project root (default: current directory)")
}
