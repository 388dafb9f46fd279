package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jtoivan/ripasso/internal/history"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace review history with a previously exported JSON document",
	Long: `Import validates the whole document before touching the database and
then replaces all stored cards and events in one transaction. A document
that fails validation leaves the existing history untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}
		doc, err := history.ParseExport(raw)
		if err != nil {
			return fmt.Errorf("invalid history document: %w", err)
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.ImportHistory(context.Background(), doc); err != nil {
			return fmt.Errorf("import history: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d cards and %d events\n",
			len(doc.Cards), len(doc.Events))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
