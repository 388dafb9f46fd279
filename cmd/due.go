package cmd

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"
)

var dueCmd = &cobra.Command{
	Use:   "due",
	Short: "Show how many cards are due for review per pack",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		cards, err := st.AllCards(context.Background())
		if err != nil {
			return fmt.Errorf("load cards: %w", err)
		}

		now := time.Now().UnixMilli()
		duePerPack := make(map[string]int)
		total := 0
		for _, card := range cards {
			if card.Attempts > 0 && card.IsDue(now) {
				duePerPack[card.PackID]++
				total++
			}
		}

		out := cmd.OutOrStdout()
		if total == 0 {
			fmt.Fprintln(out, "Nothing due. Well done!")
			return nil
		}

		packIDs := make([]string, 0, len(duePerPack))
		for id := range duePerPack {
			packIDs = append(packIDs, id)
		}
		sort.Strings(packIDs)

		for _, id := range packIDs {
			fmt.Fprintf(out, "  %-28s %d due\n", id, duePerPack[id])
		}
		fmt.Fprintf(out, "Total: %d\n", total)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dueCmd)
}
