package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jtoivan/ripasso/internal/pack"
)

var packsCmd = &cobra.Command{
	Use:   "packs",
	Short: "List available word packs (built-in and user-provided)",
	RunE: func(cmd *cobra.Command, args []string) error {
		userDir, err := pack.UserPackDir()
		if err != nil {
			return err
		}
		metas, err := pack.Available(userDir)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, m := range metas {
			fmt.Fprintf(out, "  %-24s %-6s %s\n", m.ID, m.Kind, m.Title)
		}
		fmt.Fprintf(out, "\nUser packs are read from %s\n", userDir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(packsCmd)
}
