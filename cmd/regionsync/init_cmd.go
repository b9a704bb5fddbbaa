package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/minecart-tools/regionsync/internal/config"
)

func init() {
	rootCmd.AddCommand(newInitCmd())
}

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter config file",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			path := viper.GetString("config")

			if _, err := os.Stat(path); err == nil && !force {
				exitError(fmt.Errorf("%s already exists, use --force to overwrite", path))
			}

			cfg := config.Default()
			if err := cfg.Save(path); err != nil {
				exitError(err)
			}
			fmt.Printf("%s wrote %s\n", green.Render("OK"), cyan.Render(path))
			fmt.Println(gray.Render("edit the world directories, then start the daemon"))
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	return cmd
}
