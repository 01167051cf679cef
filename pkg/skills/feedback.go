package skills

import (
	"fmt"
	"image/color"
)

//Tier is the severity level of a feedback message
type Tier string

const (
	Positive         Tier = "positive"
	Neutral          Tier = "neutral"
	NeedsImprovement Tier = "needs-improvement"
)

//thresholds are inclusive lower bounds
const (
	positiveThreshold = 7
	neutralThreshold  = 5
)

var (
	green  = color.RGBA{0, 255, 0, 0}
	yellow = color.RGBA{255, 255, 0, 0}
	red    = color.RGBA{255, 0, 0, 0}
)

//TierFor maps a rating to its tier: >=7 positive, >=5 neutral, otherwise needs improvement
func TierFor(rating int) Tier {
	switch {
	case rating >= positiveThreshold:
		return Positive
	case rating >= neutralThreshold:
		return Neutral
	default:
		return NeedsImprovement
	}
}

//Color returns the overlay color of the tier (green, yellow, red)
func (t Tier) Color() color.RGBA {
	switch t {
	case Positive:
		return green
	case Neutral:
		return yellow
	default:
		return red
	}
}

//Icon returns a short marker used when printing feedback to a terminal
func (t Tier) Icon() string {
	switch t {
	case Positive:
		return "✅"
	case Neutral:
		return "⚠️"
	default:
		return "❌"
	}
}

//Style selects how feedback messages are produced
type Style string

const (
	StyleGeneric  Style = "generic"
	StyleDetailed Style = "detailed"
)

//Entry is the feedback given for one skill
type Entry struct {
	Skill   Skill  `json:"skill" yaml:"skill"`
	Message string `json:"message" yaml:"message"`
	Tier    Tier   `json:"severity" yaml:"severity"`
}

//Color is a shortcut for e.Tier.Color()
func (e Entry) Color() color.RGBA {
	return e.Tier.Color()
}

type tableKey struct {
	skill Skill
	tier  Tier
}

//FeedbackTable holds one hand written message per (skill, tier) pair
type FeedbackTable struct {
	messages map[tableKey]string
}

//Message returns the message stored for given skill and tier
func (t FeedbackTable) Message(s Skill, tier Tier) (string, bool) {
	msg, ok := t.messages[tableKey{s, tier}]
	return msg, ok
}

//NewFeedbackTable builds a table from skill -> tier -> message. All 15 combinations are required.
func NewFeedbackTable(src map[Skill]map[Tier]string) (FeedbackTable, error) {
	t := FeedbackTable{messages: make(map[tableKey]string, len(canonical)*3)}
	for _, s := range canonical {
		for _, tier := range []Tier{Positive, Neutral, NeedsImprovement} {
			msg := src[s][tier]
			if msg == "" {
				return FeedbackTable{}, fmt.Errorf("feedback table: missing %s/%s message", s, tier)
			}
			t.messages[tableKey{s, tier}] = msg
		}
	}
	return t, nil
}

//DefaultFeedbackTable returns the built-in detailed messages
func DefaultFeedbackTable() FeedbackTable {
	t, err := NewFeedbackTable(defaultDetailedMessages)
	if err != nil {
		panic(err) //built-in table is complete
	}
	return t
}

var defaultDetailedMessages = map[Skill]map[Tier]string{
	Dribbling: {
		Positive:         "Excellent ball control! Keep refining speed.",
		Neutral:          "Decent dribbling, but improve control at higher speeds.",
		NeedsImprovement: "Struggles with dribbling. Focus on close ball control.",
	},
	Passing: {
		Positive:         "Strong passing accuracy. Try increasing pass speed.",
		Neutral:          "Moderate passing. Work on consistency under pressure.",
		NeedsImprovement: "Passing needs work. Focus on target accuracy.",
	},
	Shooting: {
		Positive:         "Great shot power! Try improving shot placement.",
		Neutral:          "Decent shooting. Work on shot angles.",
		NeedsImprovement: "Shooting needs improvement. Focus on follow-through.",
	},
	Speed: {
		Positive:         "Fast sprint speed! Work on endurance.",
		Neutral:          "Average speed. Try explosive sprint drills.",
		NeedsImprovement: "Speed is low. Focus on acceleration training.",
	},
	Agility: {
		Positive:         "Quick footwork! Maintain consistency in lateral moves.",
		Neutral:          "Agility is decent. Improve quick direction changes.",
		NeedsImprovement: "Agility needs improvement. Do ladder and cone drills.",
	},
}

func genericMessage(s Skill, tier Tier) string {
	switch tier {
	case Positive:
		return fmt.Sprintf("Strong performance in %s. Keep practicing to maintain consistency!", s)
	case Neutral:
		return fmt.Sprintf("Decent %s, but can be improved with focused training.", s)
	default:
		return fmt.Sprintf("Needs improvement in %s. Focus on drills to build confidence and accuracy.", s)
	}
}
