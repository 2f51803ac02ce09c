// Package cmd implements the banner-resolver CLI using Cobra.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/banner-resolver/pkg/config"
	"github.com/user/banner-resolver/pkg/logger"
)

var (
	configFile string
	startURL   string
	outputPath string
	mode       string

	cfg *config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "banner-resolver",
	Short: "banner-resolver maps every carousel banner on a page to its click destination",
	Long: `banner-resolver drives a headless browser through a banner carousel,
clicks each slide to learn where it leads, falls back to the page's embedded
data when a click reveals nothing, and writes the result as a CSV dataset.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("url") {
			cfg.StartURL = startURL
		}
		if cmd.Flags().Changed("out") {
			cfg.OutputPath = outputPath
		}
		if cmd.Flags().Changed("mode") {
			cfg.Mode = mode
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		log, err = logger.New(cfg.LogLevel, cfg.LogFormat)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "optional config file (yaml, json, toml or env)")
	rootCmd.PersistentFlags().StringVar(&startURL, "url", "", "page hosting the carousel")
	rootCmd.PersistentFlags().StringVar(&outputPath, "out", "", "CSV output path")
	rootCmd.PersistentFlags().StringVar(&mode, "mode", "", "interactive or static")
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
