package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/chenBenjamin97/soccer-coach/pkg/skills"
	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

//Format is an output encoding for Write.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

//ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown output format %q (text, json, yaml)", s)
	}
}

//Write renders r to w in given format.
func Write(w io.Writer, r *VideoReport, f Format) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	default:
		writeText(w, r)
		return nil
	}
}

func tierColor(t skills.Tier) *color.Color {
	switch t {
	case skills.Positive:
		return color.New(color.FgGreen)
	case skills.Neutral:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}

func writeText(w io.Writer, r *VideoReport) {
	bold := color.New(color.Bold)
	dim := color.New(color.FgHiBlack)

	if len(r.Ratings) > 0 {
		_, _ = bold.Fprintln(w, "SKILL RATINGS")
		messages := make(map[skills.Skill]skills.Entry, len(r.Feedback))
		for _, e := range r.Feedback {
			messages[e.Skill] = e
		}
		for _, rt := range r.Ratings {
			e := messages[rt.Skill]
			fmt.Fprintf(w, "  %-10s %2d/10  ", rt.Skill, rt.Rating)
			_, _ = tierColor(e.Tier).Fprintf(w, "%s %s\n", e.Tier.Icon(), e.Message)
		}
		fmt.Fprintln(w)
	}

	if r.WeakestSkill != "" {
		_, _ = bold.Fprint(w, "WEAKEST SKILL  ")
		fmt.Fprintln(w, r.WeakestSkill)
		_, _ = bold.Fprintln(w, "RECOMMENDED DRILLS")
		for _, d := range r.Drills {
			fmt.Fprintf(w, "  - %s\n", d)
		}
		fmt.Fprintln(w)
	}

	if len(r.FrameFeedback) > 0 {
		_, _ = bold.Fprintln(w, "TECHNIQUE FEEDBACK")
		for _, fb := range r.FrameFeedback {
			fmt.Fprintf(w, "  - %s\n", fb)
		}
		fmt.Fprintln(w)
	}

	if r.OutputPath == "" {
		return //self-assessment, no video
	}

	_, _ = dim.Fprintf(w, "%d frames (%dx%d @ %.2f fps) in %s, %d without detection, %d inference failures\n",
		r.Frames.Written, r.Width, r.Height, r.FPS, r.Duration.Round(time.Millisecond), r.Frames.WithoutDetection, r.Frames.InferenceFailures)
	_, _ = dim.Fprintf(w, "output: %s\n", r.OutputPath)
}
