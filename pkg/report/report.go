package report

import (
	"time"

	"github.com/chenBenjamin97/soccer-coach/pkg/skills"
)

//Status tells callers whether every frame had a pose detection.
type Status string

const (
	StatusOK               Status = "ok"
	StatusPartialDetection Status = "partial_detection"
)

//FrameStats summarises the frame loop.
type FrameStats struct {
	Written           int `json:"written" yaml:"written"`
	WithoutDetection  int `json:"without_detection" yaml:"without_detection"`
	InferenceFailures int `json:"inference_failures" yaml:"inference_failures"`
}

//VideoReport is the single result returned for one processed video.
//Rating fields are empty in geometry mode; FrameFeedback is empty in rating modes.
type VideoReport struct {
	OutputPath    string          `json:"output_path" yaml:"output_path"`
	Mode          string          `json:"mode" yaml:"mode"`
	Ratings       []skills.Rating `json:"ratings,omitempty" yaml:"ratings,omitempty"`
	Feedback      []skills.Entry  `json:"feedback,omitempty" yaml:"feedback,omitempty"`
	WeakestSkill  skills.Skill    `json:"weakest_skill,omitempty" yaml:"weakest_skill,omitempty"`
	Drills        []string        `json:"recommended_drills,omitempty" yaml:"recommended_drills,omitempty"`
	FrameFeedback []string        `json:"frame_feedback,omitempty" yaml:"frame_feedback,omitempty"`
	Frames        FrameStats      `json:"frames" yaml:"frames"`
	FPS           float64         `json:"fps" yaml:"fps"`
	Width         int             `json:"width" yaml:"width"`
	Height        int             `json:"height" yaml:"height"`
	Duration      time.Duration   `json:"duration_ns" yaml:"duration"`
	Status        Status          `json:"status" yaml:"status"`
}

//Input carries everything the pipeline gathered.
type Input struct {
	OutputPath    string
	Mode          string
	Ratings       skills.Ratings
	Feedback      map[skills.Skill]skills.Entry
	Assessment    *skills.Assessment
	FrameFeedback []string
	Frames        FrameStats
	FPS           float64
	Width         int
	Height        int
	Duration      time.Duration
}

//Assemble builds the report. Slices are copied so the report shares nothing with in.
func Assemble(in Input) *VideoReport {
	r := &VideoReport{
		OutputPath: in.OutputPath,
		Mode:       in.Mode,
		Frames:     in.Frames,
		FPS:        in.FPS,
		Width:      in.Width,
		Height:     in.Height,
		Duration:   in.Duration,
		Status:     StatusOK,
	}

	if len(in.Ratings) > 0 {
		r.Ratings = in.Ratings.Ordered()
	}
	if len(in.Feedback) > 0 {
		r.Feedback = skills.OrderedFeedback(in.Feedback)
	}
	if in.Assessment != nil {
		r.WeakestSkill = in.Assessment.Weakest
		r.Drills = append([]string(nil), in.Assessment.Drills...)
	}
	if len(in.FrameFeedback) > 0 {
		r.FrameFeedback = append([]string(nil), in.FrameFeedback...)
	}
	if in.Frames.WithoutDetection > 0 {
		r.Status = StatusPartialDetection
	}

	return r
}
