package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/minecart-tools/regionsync/internal/config"
	"github.com/minecart-tools/regionsync/internal/version"
)

var rootCmd = &cobra.Command{
	Use:     "regionsync",
	Short:   "Sync map regions from a source world into a live served world",
	Version: version.Detailed(),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().SortFlags = false
	rootCmd.PersistentFlags().StringP("config", "c", config.DefaultConfigPath, "config file")
	rootCmd.PersistentFlags().StringP("server", "s", "http://"+config.DefaultHTTPAddr, "daemon control plane URL")
	rootCmd.PersistentFlags().StringP("token", "t", "", "daemon control plane token")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug logging")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil && !errors.Is(err, context.Canceled) {
		os.Exit(1)
	}
}

// bindFlags wires persistent flags to viper so REGIONSYNC_* env vars can
// override any of them.
func bindFlags(cmd *cobra.Command) error {
	viper.SetEnvPrefix("REGIONSYNC")
	viper.AutomaticEnv()

	for _, name := range []string{"config", "server", "token", "verbose"} {
		if err := viper.BindPFlag(name, cmd.Flags().Lookup(name)); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}

	setupConsoleLogging(viper.GetBool("verbose"))
	return nil
}

func setupConsoleLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	})
	slog.SetDefault(slog.New(handler))
}
