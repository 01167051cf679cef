package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/chenBenjamin97/soccer-coach/pkg/config"
	"github.com/chenBenjamin97/soccer-coach/pkg/report"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var (
	processMode   string
	processOutput string
	processFormat string
)

var processCmd = &cobra.Command{
	Use:   "process <video>",
	Short: "Annotate a video and print its skill report",
	Long: `Annotate a video with pose landmarks and feedback, then print the report.

Modes:
  synthetic  generated ratings, generic feedback
  detailed   generated ratings, detailed feedback (default)
  geometry   per-frame posture, hip alignment and stance cues

Examples:
  soccer-coach process ./training.mp4
  soccer-coach process ./training.mp4 --mode geometry --format json
  soccer-coach process ./training.mov -o ./annotated.mp4`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().StringVarP(&processMode, "mode", "m", "", "Feedback mode (synthetic, detailed, geometry), default from config")
	processCmd.Flags().StringVarP(&processOutput, "output", "o", "", "Output video path (default a unique name in the ready directory)")
	processCmd.Flags().StringVarP(&processFormat, "format", "f", "text", "Report format (text, json, yaml)")
}

func runProcess(cmd *cobra.Command, args []string) error {
	format, err := report.ParseFormat(processFormat)
	if err != nil {
		return err
	}
	if err := cfg.EnsureDirectories(log); err != nil {
		return err
	}

	src, err := config.NewSource(cfg.Pose, log)
	if err != nil {
		return err
	}
	defer src.Close()

	assessor, err := config.NewAssessor(cfg)
	if err != nil {
		return err
	}
	p, err := config.NewPipeline(cfg, processMode, src, assessor, log, nil)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if isatty.IsTerminal(os.Stderr.Fd()) {
		s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
		s.Suffix = " processing " + args[0]
		s.Start()
		defer s.Stop()
	}

	rep, err := p.Process(ctx, args[0], processOutput)
	if err != nil {
		return err
	}

	return report.Write(cmd.OutOrStdout(), rep, format)
}
