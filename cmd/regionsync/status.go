package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newStatusCmd())
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon and service state",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			st, err := newSDK().Sync.Status(cmd.Context())
			if err != nil {
				exitError(err)
			}

			enabled := green.Render("enabled")
			if !st.Enabled {
				enabled = gray.Render("disabled")
			}
			batch := gray.Render("idle")
			if st.BatchRunning {
				batch = yellow.Render("batch running")
			}

			fmt.Printf("%s %s (%s)\n", cyan.Render("regionsync"), st.Version, st.Revision)
			fmt.Printf("  sync:      %s, %s\n", enabled, batch)
			fmt.Printf("  uptime:    %s\n", st.Uptime)
			fmt.Printf("  pending:   %d\n", st.Pending)
			fmt.Printf("  protected: %d\n", st.Protected)
			fmt.Printf("  source:    %s\n", st.SourceWorld)
			fmt.Printf("  dest:      %s\n", st.DestWorld)
			if st.Service != nil {
				line := st.Service.Status
				if st.Service.Pid != 0 {
					line = fmt.Sprintf("%s (pid %d)", st.Service.Status, st.Service.Pid)
				}
				fmt.Printf("  service:   %s\n", line)
			}
		},
	}
}
