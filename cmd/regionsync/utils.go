package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/minecart-tools/regionsync/internal/region"
	"github.com/minecart-tools/regionsync/internal/sdk"
)

var (
	// https://github.com/muesli/termenv/blob/master/ansicolors.go
	red    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	green  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	gray   = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
)

func exitError(err error) {
	fmt.Printf("%s: %s\n", red.Render("ERROR"), err)
	os.Exit(1)
}

// newSDK builds a control plane client from the persistent flags and env.
func newSDK() *sdk.Client {
	client, err := sdk.New(viper.GetString("server"), viper.GetString("token"))
	if err != nil {
		exitError(err)
	}
	return client
}

// regionParams resolves the region a command addresses: either the
// positional `x z dim` args or the --player flag.
func regionParams(cmd *cobra.Command, args []string) (*sdk.RegionParams, error) {
	player, _ := cmd.Flags().GetString("player")
	if player != "" {
		if len(args) != 0 {
			return nil, fmt.Errorf("either --player or x z dim, not both")
		}
		return sdk.Player(player), nil
	}

	x, z, dim, err := parseRegionArgs(args)
	if err != nil {
		return nil, err
	}
	return sdk.Coords(x, z, dim), nil
}

func parseRegionArgs(args []string) (x, z, dim int, err error) {
	if len(args) != 3 {
		return 0, 0, 0, fmt.Errorf("expected x z dim, got %d arguments", len(args))
	}

	x, err = strconv.Atoi(args[0])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("x %q is not an integer", args[0])
	}
	z, err = strconv.Atoi(args[1])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("z %q is not an integer", args[1])
	}
	dim, err = strconv.Atoi(args[2])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("dim %q is not an integer", args[2])
	}
	if !region.ValidDim(dim) {
		return 0, 0, 0, fmt.Errorf("dim %d out of range [-1, 1]", dim)
	}

	return x, z, dim, nil
}

// addPlayerFlag attaches the --player alternative to coordinate args.
func addPlayerFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("player", "p", "", "address the region the player stands in")
}

func printRegions(regions []region.Region) {
	if len(regions) == 0 {
		fmt.Println(gray.Render("none"))
		return
	}
	for _, r := range regions {
		fmt.Println(r.String())
	}
}
