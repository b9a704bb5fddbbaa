package main

import (
	"bufio"
	"fmt"
	"os"
	"os/user"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newUpdateCmd())
}

func newUpdateCmd() *cobra.Command {
	var requester string
	var yes bool

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Run a sync batch: countdown, service restart, region transfer",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			client := newSDK()

			pending, err := client.Regions.Pending(cmd.Context())
			if err != nil {
				exitError(err)
			}

			if !yes {
				fmt.Printf("This restarts the service and syncs %s.\n",
					cyan.Render(fmt.Sprintf("%d regions", pending.Count)))
				fmt.Print("Continue? [y/N] ")
				line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
				if answer := strings.ToLower(strings.TrimSpace(line)); answer != "y" && answer != "yes" {
					fmt.Println(gray.Render("aborted"))
					return
				}
			}

			if requester == "" {
				requester = "cli"
				if u, err := user.Current(); err == nil && u.Username != "" {
					requester = u.Username
				}
			}

			if err := client.Sync.Update(cmd.Context(), requester); err != nil {
				exitError(err)
			}
			fmt.Printf("%s batch accepted, follow it with %s\n",
				green.Render("OK"), cyan.Render("regionsync watch"))
		},
	}

	cmd.Flags().StringVarP(&requester, "requester", "r", "", "name recorded in the batch journal")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}
