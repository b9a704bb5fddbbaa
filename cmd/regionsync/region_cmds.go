package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(
		newAddCmd(),
		newDelCmd(),
		newDelAllCmd(),
		newProtectCmd(),
		newDeprotectCmd(),
		newDeprotectAllCmd(),
		newListCmd(),
		newListProtectCmd(),
		newScanCmd(),
	)
}

func newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [x z dim]",
		Short: "Queue a region for the next sync batch",
		Args:  cobra.MaximumNArgs(3),
		Run: func(cmd *cobra.Command, args []string) {
			params, err := regionParams(cmd, args)
			if err != nil {
				exitError(err)
			}

			resp, err := newSDK().Regions.AddPending(cmd.Context(), params)
			if err != nil {
				exitError(err)
			}
			fmt.Printf("%s queued %s\n", green.Render("OK"), resp.Region)
		},
	}
	addPlayerFlag(cmd)
	return cmd
}

func newDelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "del [x z dim]",
		Short: "Drop a region from the pending set",
		Args:  cobra.MaximumNArgs(3),
		Run: func(cmd *cobra.Command, args []string) {
			params, err := regionParams(cmd, args)
			if err != nil {
				exitError(err)
			}

			resp, err := newSDK().Regions.RemovePending(cmd.Context(), params)
			if err != nil {
				exitError(err)
			}
			fmt.Printf("%s dropped %s\n", green.Render("OK"), resp.Region)
		},
	}
	addPlayerFlag(cmd)
	return cmd
}

func newDelAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "del-all",
		Short: "Empty the pending set",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if err := newSDK().Regions.ClearPending(cmd.Context()); err != nil {
				exitError(err)
			}
			fmt.Printf("%s pending set cleared\n", green.Render("OK"))
		},
	}
}

func newProtectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "protect [x z dim]",
		Short: "Exclude a region from syncing",
		Args:  cobra.MaximumNArgs(3),
		Run: func(cmd *cobra.Command, args []string) {
			params, err := regionParams(cmd, args)
			if err != nil {
				exitError(err)
			}

			resp, err := newSDK().Regions.Protect(cmd.Context(), params)
			if err != nil {
				exitError(err)
			}
			fmt.Printf("%s protected %s\n", green.Render("OK"), resp.Region)
			if resp.RemovedFromPending {
				fmt.Println(yellow.Render("note: region was pending and has been dequeued"))
			}
		},
	}
	addPlayerFlag(cmd)
	return cmd
}

func newDeprotectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deprotect [x z dim]",
		Short: "Lift a region's protection",
		Args:  cobra.MaximumNArgs(3),
		Run: func(cmd *cobra.Command, args []string) {
			params, err := regionParams(cmd, args)
			if err != nil {
				exitError(err)
			}

			resp, err := newSDK().Regions.Deprotect(cmd.Context(), params)
			if err != nil {
				exitError(err)
			}
			fmt.Printf("%s deprotected %s\n", green.Render("OK"), resp.Region)
		},
	}
	addPlayerFlag(cmd)
	return cmd
}

func newDeprotectAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deprotect-all",
		Short: "Lift every region protection",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if err := newSDK().Regions.DeprotectAll(cmd.Context()); err != nil {
				exitError(err)
			}
			fmt.Printf("%s all protections lifted\n", green.Render("OK"))
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List regions queued for the next sync batch",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			resp, err := newSDK().Regions.Pending(cmd.Context())
			if err != nil {
				exitError(err)
			}
			fmt.Println(cyan.Render(fmt.Sprintf("%d pending", resp.Count)))
			printRegions(resp.Regions)
		},
	}
}

func newListProtectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-protect",
		Short: "List protected regions",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			resp, err := newSDK().Regions.Protected(cmd.Context())
			if err != nil {
				exitError(err)
			}
			fmt.Println(cyan.Render(fmt.Sprintf("%d protected", resp.Count)))
			printRegions(resp.Regions)
		},
	}
}

func newScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "List every region file present in the source world",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			resp, err := newSDK().Regions.Scan(cmd.Context())
			if err != nil {
				exitError(err)
			}
			fmt.Println(cyan.Render(fmt.Sprintf("%d regions in source world", resp.Count)))
			printRegions(resp.Regions)
		},
	}
}
