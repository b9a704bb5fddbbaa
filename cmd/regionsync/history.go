package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/minecart-tools/regionsync/internal/sdk"
)

func init() {
	rootCmd.AddCommand(newHistoryCmd())
}

func newHistoryCmd() *cobra.Command {
	var all bool
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show sync batch outcomes",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			client := newSDK()

			if !all {
				resp, err := client.Sync.History(cmd.Context())
				if err != nil {
					exitError(err)
				}
				if resp.Count == 0 {
					fmt.Println(gray.Render("no batch run yet"))
					return
				}
				fmt.Println(cyan.Render(fmt.Sprintf("last batch, %d regions", resp.Count)))
				printOutcomes(resp.Outcomes)
				return
			}

			resp, err := client.Sync.Batches(cmd.Context(), limit)
			if err != nil {
				exitError(err)
			}
			if resp.Count == 0 {
				fmt.Println(gray.Render("journal is empty"))
				return
			}
			for _, batch := range resp.Batches {
				ok, failed := countOutcomes(batch.Outcomes)
				fmt.Printf("%s %s by %s: %s, %s\n",
					batch.StartedAt.Local().Format(time.DateTime),
					gray.Render(shortID(batch.ID)),
					batch.Requester,
					green.Render(fmt.Sprintf("%d ok", ok)),
					red.Render(fmt.Sprintf("%d failed", failed)),
				)
				printOutcomes(batch.Outcomes)
			}
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "show journaled batches, not just the last one")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "max batches with --all")

	return cmd
}

func printOutcomes(outcomes []sdk.Outcome) {
	for _, o := range outcomes {
		if o.OK {
			fmt.Printf("  %s %s\n", green.Render("ok"), o.Region)
			continue
		}
		fmt.Printf("  %s %s: %s\n", red.Render("failed"), o.Region, o.Detail)
	}
}

func countOutcomes(outcomes []sdk.Outcome) (ok, failed int) {
	for _, o := range outcomes {
		if o.OK {
			ok++
		} else {
			failed++
		}
	}
	return ok, failed
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
