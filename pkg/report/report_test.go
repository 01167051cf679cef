package report

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/chenBenjamin97/soccer-coach/pkg/skills"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func ratingInput(t *testing.T) Input {
	t.Helper()
	ratings := skills.Ratings{skills.Dribbling: 8, skills.Passing: 4, skills.Shooting: 6, skills.Speed: 9, skills.Agility: 3}
	a := skills.NewAssessor()
	fb, err := a.Feedback(ratings, skills.StyleDetailed)
	require.NoError(t, err)
	as, err := a.Analyze(ratings)
	require.NoError(t, err)

	return Input{
		OutputPath: "/tmp/out.mp4",
		Mode:       "detailed",
		Ratings:    ratings,
		Feedback:   fb,
		Assessment: &as,
		Frames:     FrameStats{Written: 10},
		FPS:        30,
		Width:      640,
		Height:     480,
		Duration:   1500 * time.Millisecond,
	}
}

func TestAssemble_RatingMode(t *testing.T) {
	in := ratingInput(t)

	r := Assemble(in)

	assert.Equal(t, StatusOK, r.Status)
	assert.Equal(t, skills.Agility, r.WeakestSkill)
	require.Len(t, r.Ratings, 5)
	require.Len(t, r.Feedback, 5)
	for i, s := range skills.All() {
		assert.Equal(t, s, r.Ratings[i].Skill)
		assert.Equal(t, s, r.Feedback[i].Skill)
	}
	assert.Len(t, r.Drills, 2)
	assert.Empty(t, r.FrameFeedback)

	//the report does not share the drills slice
	in.Assessment.Drills[0] = "changed"
	assert.NotEqual(t, "changed", r.Drills[0])
}

func TestAssemble_GeometryMode(t *testing.T) {
	r := Assemble(Input{
		Mode:          "geometry",
		FrameFeedback: []string{"a", "b"},
		Frames:        FrameStats{Written: 5, WithoutDetection: 2},
	})

	assert.Equal(t, StatusPartialDetection, r.Status)
	assert.Empty(t, r.Ratings)
	assert.Empty(t, r.WeakestSkill)
	assert.Equal(t, []string{"a", "b"}, r.FrameFeedback)
}

func TestWrite_Formats(t *testing.T) {
	r := Assemble(ratingInput(t))

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, r, FormatJSON))
		var got map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, "Agility", got["weakest_skill"])
		assert.Equal(t, "ok", got["status"])
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, r, FormatYAML))
		var got map[string]interface{}
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, "Agility", got["weakest_skill"])
		assert.Equal(t, "1.5s", got["duration"])
	})

	t.Run("text", func(t *testing.T) {
		color.NoColor = true
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, r, FormatText))
		out := buf.String()
		assert.Contains(t, out, "WEAKEST SKILL  Agility")
		assert.Contains(t, out, "Agility needs improvement. Do ladder and cone drills.")
		assert.Contains(t, out, "output: /tmp/out.mp4")
	})
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestWrite_TextWithoutVideo(t *testing.T) {
	color.NoColor = true
	in := ratingInput(t)
	in.OutputPath = ""
	in.Mode = "self-assessment"

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Assemble(in), FormatText))

	out := buf.String()
	assert.Contains(t, out, "WEAKEST SKILL  Agility")
	assert.NotContains(t, out, "output:")
	assert.NotContains(t, out, "frames (")
}
