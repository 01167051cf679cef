package pose

import (
	"math"

	"github.com/chenBenjamin97/soccer-coach/pkg/skills"
)

//maxHipOffset is the largest horizontal distance between hips, as a fraction
//of the frame width, still counted as aligned.
const maxHipOffset = 0.1

//Check names the posture check a cue comes from.
type Check string

const (
	CheckPosture   Check = "posture"
	CheckAlignment Check = "alignment"
	CheckStance    Check = "stance"
)

//Cue is one piece of technique feedback derived from a single frame.
type Cue struct {
	Check   Check       `json:"check"`
	Message string      `json:"message"`
	Tier    skills.Tier `json:"severity"`
}

const (
	msgGoodPosture   = "Good posture! Keep your knees bent slightly for better balance."
	msgBendKnees     = "Try bending your knees slightly more for improved stability."
	msgGoodAlignment = "Great hip alignment! Keep following through with your passing foot."
	msgAlignHips     = "Align your hips properly for a more accurate pass."
	msgShiftWeight   = "Shift your weight forward for more power in your shot."
)

//ExtractPosture runs the posture, hip alignment and shooting stance checks,
//in that order. It returns nothing when f is nil or lacks a hip or knee.
func ExtractPosture(f *Frame) []Cue {
	lk, ok1 := f.Get(LeftKnee)
	rk, ok2 := f.Get(RightKnee)
	lh, ok3 := f.Get(LeftHip)
	rh, ok4 := f.Get(RightHip)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return nil
	}

	cues := make([]Cue, 0, 3)

	//y grows downwards: a smaller y is higher in the frame
	if lk.Y < lh.Y && rk.Y < rh.Y {
		cues = append(cues, Cue{CheckPosture, msgGoodPosture, skills.Positive})
	} else {
		cues = append(cues, Cue{CheckPosture, msgBendKnees, skills.NeedsImprovement})
	}

	if math.Abs(lh.X-rh.X) < maxHipOffset {
		cues = append(cues, Cue{CheckAlignment, msgGoodAlignment, skills.Positive})
	} else {
		cues = append(cues, Cue{CheckAlignment, msgAlignHips, skills.NeedsImprovement})
	}

	if lk.Y > lh.Y || rk.Y > rh.Y {
		cues = append(cues, Cue{CheckStance, msgShiftWeight, skills.NeedsImprovement})
	}

	return cues
}
