package video

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/chenBenjamin97/soccer-coach/pkg/skills"
	"github.com/chenBenjamin97/soccer-coach/pkg/utils"
	"gocv.io/x/gocv"
)

var (
	//ErrVideoOpen means the input could not be opened or decoded
	ErrVideoOpen = errors.New("cannot open video")
	//ErrEmptyVideo means the input opened but holds no frame
	ErrEmptyVideo = errors.New("video has no frames")
	//ErrWrite means the output could not be created or a frame write failed
	ErrWrite = errors.New("cannot write output video")
)

//Mode selects where feedback comes from
type Mode string

const (
	//ModeSynthetic generates random ratings once per video and overlays generic feedback
	ModeSynthetic Mode = "synthetic"
	//ModeDetailed generates random ratings once per video and overlays the detailed feedback table
	ModeDetailed Mode = "detailed"
	//ModeGeometry overlays posture cues computed on every frame's landmarks
	ModeGeometry Mode = "geometry"
)

//ParseMode validates a mode name, empty means ModeDetailed
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeSynthetic, ModeDetailed, ModeGeometry:
		return m, nil
	case "":
		return ModeDetailed, nil
	default:
		return "", fmt.Errorf("unknown mode %q (synthetic, detailed, geometry)", s)
	}
}

func (m Mode) style() skills.Style {
	if m == ModeDetailed {
		return skills.StyleDetailed
	}
	return skills.StyleGeneric
}

//StreamProps are the properties reported by a decoder
type StreamProps struct {
	FPS        float64
	Width      int
	Height     int
	FrameCount int //as reported by the container, informational only
}

//withDefaults replaces an unreported frame rate with utils.DefaultFPS
func (p StreamProps) withDefaults() StreamProps {
	if p.FPS <= 0 || math.IsNaN(p.FPS) || math.IsInf(p.FPS, 0) {
		p.FPS = utils.DefaultFPS
	}
	return p
}

//Decoder yields BGR frames in order
type Decoder interface {
	Props() StreamProps
	//Read fills dst with the next frame, false at end of stream or on a decode failure
	Read(dst *gocv.Mat) bool
	Close() error
}

//Encoder appends BGR frames to an output container
type Encoder interface {
	Write(frame gocv.Mat) error
	Close() error
}

//frameItem is one frame travelling between pipeline stages; the receiver owns mat
type frameItem struct {
	index int
	mat   gocv.Mat
}
