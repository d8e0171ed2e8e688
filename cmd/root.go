package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/ozdemircibaris/youtube-video-generator/internal/config"
	"github.com/ozdemircibaris/youtube-video-generator/internal/platform/logger"

	"github.com/spf13/cobra"
)

var (
	verbose   bool
	quiet     bool
	envFile   string
	logFormat string

	// cfg is populated in PersistentPreRunE from .env, the environment and flags.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "yvg",
	Short: "Build caption and section timelines for narrated videos",
	Long: `yvg turns text-to-speech timing data into the two schedules a video
renderer needs: word-level caption highlights and the section intervals
that decide which background image is on screen.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(envFile); err != nil {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
		cfg = config.FromEnv()
		applySettingsFlags(cmd, cfg)
		setupLogging()
		return nil
	},
}

func setupLogging() {
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	if quiet {
		level = "error"
	}
	format := cfg.LogFormat
	if logFormat != "" {
		format = logFormat
	}
	slog.SetDefault(logger.New(os.Stderr, level, format))
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load if present")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text or json (default from LOG_FORMAT)")
	addSettingsFlags(rootCmd)
}
