package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jtoivan/ripasso/internal/history"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show overall review totals and per-pack accuracy",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := context.Background()
		events, err := st.AllEvents(ctx)
		if err != nil {
			return fmt.Errorf("load events: %w", err)
		}
		cards, err := st.AllCards(ctx)
		if err != nil {
			return fmt.Errorf("load cards: %w", err)
		}

		summary := history.BuildSummary(events, cards)
		out := cmd.OutOrStdout()

		if summary.TotalAttempts == 0 {
			fmt.Fprintln(out, "No reviews yet.")
			return nil
		}

		fmt.Fprintf(out, "Attempts:   %d\n", summary.TotalAttempts)
		fmt.Fprintf(out, "Correct:    %d\n", summary.Correct)
		fmt.Fprintf(out, "Missed:     %d\n", summary.Incorrect)
		fmt.Fprintf(out, "Accuracy:   %d%%\n", summary.Accuracy)
		fmt.Fprintf(out, "Words seen: %d\n", summary.UniqueItems)
		fmt.Fprintf(out, "Since:      %s\n", time.UnixMilli(summary.FirstReviewedAt).Format("2 Jan 2006"))
		fmt.Fprintf(out, "Last:       %s\n", time.UnixMilli(summary.LastReviewedAt).Format("2 Jan 2006"))

		packs := history.BuildPackSummaries(events)
		if len(packs) > 0 {
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Per pack:")
			for _, p := range packs {
				fmt.Fprintf(out, "  %-28s %5d attempts  %3d%%\n", p.PackID, p.Attempts, p.Accuracy)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
