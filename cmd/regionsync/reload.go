package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newReloadCmd())
}

func newReloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Ask the daemon to re-read its config file",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if err := newSDK().Sync.ReloadConfig(cmd.Context()); err != nil {
				exitError(err)
			}
			fmt.Printf("%s config reloaded\n", green.Render("OK"))
		},
	}
}
