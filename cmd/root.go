package main

import (
	"fmt"
	"os"

	"github.com/chenBenjamin97/soccer-coach/pkg/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configPath string

	cfg *config.Config
	log *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "soccer-coach",
	Short: "Soccer technique feedback from training videos",
	Long: `soccer-coach annotates training videos with pose landmarks and skill feedback,
finds the weakest skill from a rating set and recommends drills for it.

Configuration is read from config.yaml in the working directory (or --config)
and can be overridden with SOCCER_* environment variables, e.g. SOCCER_VIDEO_MODE=geometry.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
		if log, err = config.NewLogger(cfg.Log); err != nil {
			return err
		}
		log.SetOutput(os.Stderr)
		return nil
	},
}

//Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ./config.yaml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(assessCmd)
	rootCmd.AddCommand(versionCmd)
}
