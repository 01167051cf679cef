package pose

import (
	"image"
	"math"
)

//Name identifies a body landmark.
type Name string

const (
	Nose          Name = "nose"
	Neck          Name = "neck"
	LeftEye       Name = "left_eye"
	RightEye      Name = "right_eye"
	LeftEar       Name = "left_ear"
	RightEar      Name = "right_ear"
	LeftShoulder  Name = "left_shoulder"
	RightShoulder Name = "right_shoulder"
	LeftElbow     Name = "left_elbow"
	RightElbow    Name = "right_elbow"
	LeftWrist     Name = "left_wrist"
	RightWrist    Name = "right_wrist"
	LeftHip       Name = "left_hip"
	RightHip      Name = "right_hip"
	LeftKnee      Name = "left_knee"
	RightKnee     Name = "right_knee"
	LeftAnkle     Name = "left_ankle"
	RightAnkle    Name = "right_ankle"
)

//Landmark is a named point normalised to the frame: X in [0,1] of the width,
//Y in [0,1] of the height, origin top left.
type Landmark struct {
	Name       Name    `json:"name"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Visibility float64 `json:"visibility,omitempty"`
}

//Pixel converts the landmark to the nearest pixel of a width x height frame.
func (l Landmark) Pixel(width, height int) image.Point {
	return image.Pt(int(math.Round(l.X*float64(width))), int(math.Round(l.Y*float64(height))))
}

//Frame is the landmark set detected on one video frame. A nil *Frame means
//nothing was detected.
type Frame struct {
	Landmarks []Landmark `json:"landmarks"`
}

//Get returns the landmark with given name.
func (f *Frame) Get(n Name) (Landmark, bool) {
	if f == nil {
		return Landmark{}, false
	}
	for _, l := range f.Landmarks {
		if l.Name == n {
			return l, true
		}
	}
	return Landmark{}, false
}

//Detected reports whether the frame holds at least one landmark.
func (f *Frame) Detected() bool {
	return f != nil && len(f.Landmarks) > 0
}
