// Package cmd defines the ripasso command line interface. The bare
// command opens the interactive drill TUI; subcommands expose stats,
// pack listing and history transfer for scripting.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jtoivan/ripasso/internal/app"
	"github.com/jtoivan/ripasso/internal/store"
)

var dbPath string

var rootCmd = &cobra.Command{
	Use:   "ripasso",
	Short: "Italian vocabulary and verb drills with spaced repetition",
	Long: `Ripasso drills Italian vocabulary and verb conjugations from JSON
word packs, schedules reviews with spaced repetition and keeps your
history in a local SQLite database.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()
		return app.Run(st)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to the history database (default: $RIPASSO_DB or XDG data dir)")
}

// openStore opens the history database at the --db path, falling back to
// the environment and XDG resolution.
func openStore() (*store.Store, error) {
	path := dbPath
	if path == "" {
		resolved, err := store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve database path: %w", err)
		}
		path = resolved
	} else if err := store.EnsureDir(path); err != nil {
		return nil, fmt.Errorf("create database dir: %w", err)
	}

	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
