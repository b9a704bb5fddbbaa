package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/minecart-tools/regionsync/internal/config"
	"github.com/minecart-tools/regionsync/internal/daemon"
	"github.com/minecart-tools/regionsync/internal/utils"
	"github.com/minecart-tools/regionsync/internal/version"
)

func init() {
	rootCmd.AddCommand(newDaemonCmd())
}

func newDaemonCmd() *cobra.Command {
	var addr string
	var token string

	daemonCmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run the region sync daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			slog.Info("regionsync", "version", version.Version, "revision", version.Revision, "build", version.BuildDate)

			cfg, err := config.Load(viper.GetString("config"))
			if err != nil {
				return err
			}
			if cmd.Flag("http-addr").Changed {
				cfg.HTTPAddr = addr
			}
			if cmd.Flag("http-token").Changed {
				cfg.HTTPToken = token
			}

			if err := setupDaemonLogging(cfg, viper.GetBool("verbose")); err != nil {
				return err
			}

			d, err := daemon.New(cfg)
			if err != nil {
				return err
			}

			defer slog.Info("Bye!")
			if err := d.Start(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("daemon start", "error", err)
				return err
			}
			return nil
		},
	}

	daemonCmd.Flags().StringVarP(&addr, "http-addr", "a", config.DefaultHTTPAddr, "control plane bind address")
	daemonCmd.Flags().StringVarP(&token, "http-token", "", "", "control plane access token")

	return daemonCmd
}

// setupDaemonLogging replaces the console-only default logger with a fanout
// to the console and the daemon log file.
func setupDaemonLogging(cfg *config.Config, verbose bool) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	logPath := cfg.DaemonLogPath()
	if err := utils.EnsureParent(logPath); err != nil {
		return fmt.Errorf("log dir: %w", err)
	}
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("log open: %w", err)
	}

	consoleHandler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	})
	fileHandler := slog.NewTextHandler(utils.NewStampedWriter(file), &slog.HandlerOptions{
		Level: slog.LevelDebug,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// the stamped writer prefixes its own timestamp
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			return a
		},
	})

	slog.SetDefault(slog.New(utils.NewFanoutHandler(consoleHandler, fileHandler)))
	return nil
}
