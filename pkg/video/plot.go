package video

import (
	"image"
	"image/color"

	"github.com/chenBenjamin97/soccer-coach/pkg/pose"
	"github.com/chenBenjamin97/soccer-coach/pkg/utils"
	"gocv.io/x/gocv"
)

var (
	markerColor     = color.RGBA{0, 255, 0, 0}
	backgroundColor = color.RGBA{0, 0, 0, 0}
)

//OverlayLine is one line of feedback text and its color
type OverlayLine struct {
	Text  string
	Color color.RGBA
}

//Layout positions the feedback lines. Line i has its baseline at Origin.Y + i*Step.
type Layout struct {
	Origin    image.Point
	Step      int
	FontScale float64
	Thickness int
	Padding   int //around the text, inside the background rectangle
}

//RatingLayout is compact, it has to fit five lines of static skill feedback
var RatingLayout = Layout{Origin: image.Pt(40, 50), Step: 30, FontScale: 0.6, Thickness: 1, Padding: 10}

//PostureLayout uses larger text for the (at most three) per-frame posture cues
var PostureLayout = Layout{Origin: image.Pt(50, 50), Step: 40, FontScale: 1, Thickness: 2, Padding: 8}

//Annotate returns a new frame: a copy of frame with a marker on every landmark and the given lines
//drawn over opaque backgrounds. frame itself is not modified. The caller owns the returned Mat.
func Annotate(frame gocv.Mat, landmarks *pose.Frame, lines []OverlayLine, layout Layout) gocv.Mat {
	out := frame.Clone()
	plotLandmarks(&out, landmarks)
	plotLines(&out, lines, layout)
	return out
}

//plotLandmarks draws a filled marker at each landmark's pixel position
func plotLandmarks(frame *gocv.Mat, landmarks *pose.Frame) {
	if !landmarks.Detected() {
		return
	}

	width, height := frame.Cols(), frame.Rows()
	for _, l := range landmarks.Landmarks {
		gocv.Circle(frame, l.Pixel(width, height), utils.MarkerRadius, markerColor, -1) //thickness -1 == filled
	}
}

//plotLines writes lines top to bottom, each above a filled rectangle sized to its text
func plotLines(frame *gocv.Mat, lines []OverlayLine, layout Layout) {
	y := layout.Origin.Y
	for _, line := range lines {
		size := gocv.GetTextSize(line.Text, gocv.FontHersheySimplex, layout.FontScale, layout.Thickness)
		textOrigin := image.Pt(layout.Origin.X, y)
		background := image.Rect(
			textOrigin.X-layout.Padding, textOrigin.Y-size.Y-layout.Padding,
			textOrigin.X+size.X+layout.Padding, textOrigin.Y+layout.Padding,
		)

		gocv.Rectangle(frame, background, backgroundColor, -1)
		gocv.PutTextWithParams(frame, line.Text, textOrigin, gocv.FontHersheySimplex, layout.FontScale, line.Color, layout.Thickness, gocv.LineAA, false)

		y += layout.Step
	}
}
