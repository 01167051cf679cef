package main

import (
	"github.com/chenBenjamin97/soccer-coach/pkg/config"
	"github.com/chenBenjamin97/soccer-coach/pkg/report"
	"github.com/chenBenjamin97/soccer-coach/pkg/skills"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	assessRatings map[string]int
	assessPlayer  string
	assessFormat  string
)

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Find the weakest skill from self-ratings and recommend drills",
	Long: `Rate each skill from 1 to 10. The lowest rated skill (the first one in
Dribbling, Passing, Shooting, Speed, Agility order on ties) gets two drills.

Example:
  soccer-coach assess --player Sam -r dribbling=8,passing=4,shooting=6,speed=9,agility=3`,
	Args: cobra.NoArgs,
	RunE: runAssess,
}

func init() {
	assessCmd.Flags().StringToIntVarP(&assessRatings, "ratings", "r", nil, "Self-ratings, skill=rating for every skill")
	assessCmd.Flags().StringVarP(&assessPlayer, "player", "p", "", "Player name")
	assessCmd.Flags().StringVarP(&assessFormat, "format", "f", "text", "Report format (text, json, yaml)")
	_ = assessCmd.MarkFlagRequired("ratings")
}

func runAssess(cmd *cobra.Command, args []string) error {
	format, err := report.ParseFormat(assessFormat)
	if err != nil {
		return err
	}

	ratings, err := skills.ParseRatings(assessRatings)
	if err != nil {
		return err
	}

	assessor, err := config.NewAssessor(cfg)
	if err != nil {
		return err
	}
	assessment, err := assessor.Analyze(ratings)
	if err != nil {
		return err
	}
	feedback, err := assessor.Feedback(ratings, skills.StyleDetailed)
	if err != nil {
		return err
	}

	rep := report.Assemble(report.Input{
		Mode:       "self-assessment",
		Ratings:    ratings,
		Feedback:   feedback,
		Assessment: &assessment,
	})

	out := cmd.OutOrStdout()
	if assessPlayer != "" && format == report.FormatText {
		_, _ = color.New(color.Bold).Fprintf(out, "Skill report for %s\n\n", assessPlayer)
	}
	return report.Write(out, rep, format)
}
