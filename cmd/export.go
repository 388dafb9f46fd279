package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jtoivan/ripasso/internal/history"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export review history as versioned JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := context.Background()
		cards, err := st.AllCards(ctx)
		if err != nil {
			return fmt.Errorf("load cards: %w", err)
		}
		events, err := st.AllEvents(ctx)
		if err != nil {
			return fmt.Errorf("load events: %w", err)
		}

		doc := history.NewExport(cards, events, time.Now().UnixMilli())
		raw, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("encode history: %w", err)
		}
		raw = append(raw, '\n')

		if exportOut == "" || exportOut == "-" {
			_, err = cmd.OutOrStdout().Write(raw)
			return err
		}
		if err := os.WriteFile(exportOut, raw, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", exportOut, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d cards and %d events to %s\n",
			len(doc.Cards), len(doc.Events), exportOut)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "output", "o", "", "write to file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}
