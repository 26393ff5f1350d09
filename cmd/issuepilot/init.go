package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/issuepilot/issuepilot/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize issuepilot in the current directory",
	Long: `Initialize issuepilot by creating a .issuepilot/ directory.

This creates:
  - .issuepilot/ directory
  - .issuepilot/issuepilot.db (SQLite database)
  - .issuepilot/config.yaml (starter configuration)

Example:
  cd ~/myproject
  issuepilot init
  issuepilot init --user alice`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		// The database was already created by the root pre-run. Write a
		// starter config if none exists yet.
		dir := filepath.Dir(cfg.DBPath)
		configPath := filepath.Join(dir, "config.yaml")

		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			starter := fmt.Sprintf("user: %s\nbriefing:\n  window_days: %d\n  limit: %d\n  summarize: false\n",
				cfg.User, cfg.WindowDays, cfg.BriefingLimit)
			if err := os.WriteFile(configPath, []byte(starter), 0o644); err != nil {
				fmt.Fprintf(os.Stderr, "Error: failed to write config: %v\n", err)
				os.Exit(1)
			}
		}

		green := color.New(color.FgGreen).SprintFunc()
		cyan := color.New(color.FgCyan).SprintFunc()

		fmt.Printf("\n%s Initialized issuepilot\n\n", green("✓"))
		fmt.Printf("  Database: %s\n", cyan(cfg.DBPath))
		fmt.Printf("  Config:   %s\n", cyan(configPath))
		if cfg.User == "" {
			fmt.Printf("\n  Set a user in %s or pass --user to personalize briefings.\n", cyan(config.ConfigDir+"/config.yaml"))
		}
		fmt.Println()
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
