package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/pixelpilot/internal/config"
	"github.com/aretw0/pixelpilot/internal/logging"
	"github.com/spf13/cobra"
)

var (
	cfg    = config.Default()
	logger = logging.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "pixelpilot",
	Short: "PixelPilot runs block graphs that watch the screen and drive the keyboard and mouse",
	Long: `PixelPilot evaluates a graph of input, logic and output blocks at a fixed rate.
Input blocks sample screen pixels and key state, logic blocks combine signals,
and output blocks press keys, click or update shared state.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		flagPath, _ := cmd.Flags().GetString("config")
		loaded, path, err := config.Load(flagPath)
		if err != nil {
			return err
		}
		cfg = loaded

		if cmd.Flags().Changed("log-level") {
			cfg.Logging.Level, _ = cmd.Flags().GetString("log-level")
		}
		if cmd.Flags().Changed("log-format") {
			cfg.Logging.Format, _ = cmd.Flags().GetString("log-format")
		}
		level, err := logging.ParseLevel(cfg.Logging.Level)
		if err != nil {
			return err
		}
		logger = logging.New(level, cfg.Logging.Format)
		slog.SetDefault(logger)
		if path != "" {
			logger.Debug("config loaded", "path", path)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default $"+config.EnvPath+" or ./"+config.DefaultPath+")")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", logging.FormatText, "Log format (text, json)")
}
