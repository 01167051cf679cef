package skills

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//seqRand replays a fixed sequence, wrapping values into [0, n).
type seqRand struct {
	vals []int
	i    int
}

func (s *seqRand) Intn(n int) int {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v % n
}

func fullRatings(d, p, sh, sp, a int) Ratings {
	return Ratings{Dribbling: d, Passing: p, Shooting: sh, Speed: sp, Agility: a}
}

func TestAnalyze_WeakestIsMinimum(t *testing.T) {
	a := NewAssessor(WithRand(rand.New(rand.NewSource(42))))

	got, err := a.Analyze(fullRatings(8, 4, 6, 9, 3))

	require.NoError(t, err)
	assert.Equal(t, Agility, got.Weakest)
	assert.Len(t, got.Drills, RecommendedDrills)
	assert.Subset(t, a.Catalog().Drills(Agility), got.Drills)
	assert.NotEqual(t, got.Drills[0], got.Drills[1])
}

func TestAnalyze_TieBreakCanonicalOrder(t *testing.T) {
	tests := []struct {
		name    string
		ratings Ratings
		want    Skill
	}{
		{"all equal", fullRatings(5, 5, 5, 5, 5), Dribbling},
		{"passing and agility tie", fullRatings(7, 2, 9, 4, 2), Passing},
		{"speed and agility tie", fullRatings(9, 9, 9, 1, 1), Speed},
		{"single minimum last", fullRatings(10, 10, 10, 10, 9), Agility},
	}

	a := NewAssessor(WithRand(&seqRand{vals: []int{0}}))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.Analyze(tt.ratings)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Weakest)
		})
	}
}

func TestAnalyze_DrillsDistinctForAnySource(t *testing.T) {
	r := fullRatings(3, 6, 6, 6, 6)
	for seed := int64(1); seed <= 200; seed++ {
		a := NewAssessor(WithRand(rand.New(rand.NewSource(seed))))
		got, err := a.Analyze(r)
		require.NoError(t, err)
		require.Len(t, got.Drills, 2)
		assert.NotEqual(t, got.Drills[0], got.Drills[1])
		assert.Subset(t, a.Catalog().Drills(Dribbling), got.Drills)
	}

	//degenerate sources that always return the same index
	for _, v := range []int{0, 1, 2, 99} {
		a := NewAssessor(WithRand(&seqRand{vals: []int{v}}))
		got, err := a.Analyze(r)
		require.NoError(t, err)
		assert.NotEqual(t, got.Drills[0], got.Drills[1])
	}
}

func TestAnalyze_SampleIsDeterministicForFixedSequence(t *testing.T) {
	a := NewAssessor(WithRand(&seqRand{vals: []int{2, 0}}))

	got, err := a.Analyze(fullRatings(1, 5, 5, 5, 5))

	require.NoError(t, err)
	assert.Equal(t, []string{"Fast Feet Drills", "1v1 Dribble Challenge"}, got.Drills)
}

func TestAnalyze_InvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		ratings Ratings
	}{
		{"missing skill", Ratings{Dribbling: 5, Passing: 5, Shooting: 5, Speed: 5}},
		{"unknown skill", Ratings{Dribbling: 5, Passing: 5, Shooting: 5, Speed: 5, "Heading": 5}},
		{"extra skill", Ratings{Dribbling: 5, Passing: 5, Shooting: 5, Speed: 5, Agility: 5, "Heading": 5}},
		{"zero rating", fullRatings(0, 5, 5, 5, 5)},
		{"above range", fullRatings(5, 5, 11, 5, 5)},
		{"negative", fullRatings(5, 5, 5, 5, -3)},
		{"empty", Ratings{}},
	}

	a := NewAssessor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Analyze(tt.ratings)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestGenerateRatings_Range(t *testing.T) {
	for seed := int64(1); seed <= 100; seed++ {
		a := NewAssessor(WithRand(rand.New(rand.NewSource(seed))))
		r := a.GenerateRatings()
		require.Len(t, r, 5)
		for _, s := range All() {
			v, ok := r[s]
			require.True(t, ok, "missing %s", s)
			assert.GreaterOrEqual(t, v, MinGeneratedRating)
			assert.LessOrEqual(t, v, MaxGeneratedRating)
		}
		assert.NoError(t, r.Validate())
	}
}

func TestGenerateRatings_Bounds(t *testing.T) {
	low := NewAssessor(WithRand(&seqRand{vals: []int{0}})).GenerateRatings()
	high := NewAssessor(WithRand(&seqRand{vals: []int{6}})).GenerateRatings()

	for _, s := range All() {
		assert.Equal(t, 3, low[s])
		assert.Equal(t, 9, high[s])
	}
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		rating int
		want   Tier
	}{
		{10, Positive},
		{7, Positive},
		{6, Neutral},
		{5, Neutral},
		{4, NeedsImprovement},
		{1, NeedsImprovement},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TierFor(tt.rating), "rating %d", tt.rating)
	}
}

func TestTierColor(t *testing.T) {
	assert.Equal(t, green, Positive.Color())
	assert.Equal(t, yellow, Neutral.Color())
	assert.Equal(t, red, NeedsImprovement.Color())
}

func TestFeedback_Generic(t *testing.T) {
	a := NewAssessor()

	fb, err := a.Feedback(fullRatings(9, 5, 2, 7, 4), StyleGeneric)

	require.NoError(t, err)
	require.Len(t, fb, 5)
	assert.Equal(t, Positive, fb[Dribbling].Tier)
	assert.Contains(t, fb[Dribbling].Message, "Strong performance in Dribbling")
	assert.Equal(t, Neutral, fb[Passing].Tier)
	assert.Contains(t, fb[Passing].Message, "Decent Passing")
	assert.Equal(t, NeedsImprovement, fb[Shooting].Tier)
	assert.Contains(t, fb[Shooting].Message, "Needs improvement in Shooting")
	assert.Equal(t, Shooting, fb[Shooting].Skill)
}

func TestFeedback_DetailedUsesTable(t *testing.T) {
	a := NewAssessor()
	table := DefaultFeedbackTable()

	for _, rating := range []int{8, 5, 1} {
		fb, err := a.Feedback(fullRatings(rating, rating, rating, rating, rating), StyleDetailed)
		require.NoError(t, err)
		for _, s := range All() {
			want, ok := table.Message(s, TierFor(rating))
			require.True(t, ok)
			assert.Equal(t, want, fb[s].Message)
		}
	}

	fb, err := a.Feedback(fullRatings(2, 2, 2, 2, 2), StyleDetailed)
	require.NoError(t, err)
	assert.Equal(t, "Struggles with dribbling. Focus on close ball control.", fb[Dribbling].Message)
	assert.Equal(t, "Agility needs improvement. Do ladder and cone drills.", fb[Agility].Message)
}

func TestFeedback_InvalidInput(t *testing.T) {
	_, err := NewAssessor().Feedback(Ratings{Dribbling: 3}, StyleGeneric)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestOrderedViews(t *testing.T) {
	r := fullRatings(1, 2, 3, 4, 5)
	ordered := r.Ordered()
	require.Len(t, ordered, 5)
	for i, s := range All() {
		assert.Equal(t, s, ordered[i].Skill)
		assert.Equal(t, i+1, ordered[i].Rating)
	}

	fb, err := NewAssessor().Feedback(r, StyleGeneric)
	require.NoError(t, err)
	entries := OrderedFeedback(fb)
	for i, s := range All() {
		assert.Equal(t, s, entries[i].Skill)
	}
}

func TestParseRatings(t *testing.T) {
	got, err := ParseRatings(map[string]int{"dribbling": 8, "PASSING": 4, " Shooting ": 6, "Speed": 9, "agility": 3})
	require.NoError(t, err)
	assert.Equal(t, fullRatings(8, 4, 6, 9, 3), got)

	_, err = ParseRatings(map[string]int{"heading": 5})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestParseRatings_DuplicateSkill(t *testing.T) {
	src := map[string]int{"dribbling": 1, "Dribbling": 9, "passing": 5, "shooting": 5, "speed": 5, "agility": 5}

	//whatever the map iteration order, the collision is reported instead of one value winning
	for i := 0; i < 50; i++ {
		got, err := ParseRatings(src)
		require.ErrorIs(t, err, ErrInvalidInput)
		assert.Contains(t, err.Error(), "duplicate Dribbling")
		assert.Nil(t, got)
	}
}

func TestNewCatalog(t *testing.T) {
	t.Run("lower cased keys from config", func(t *testing.T) {
		src := DefaultDrills()
		src["dribbling"] = src["Dribbling"]
		delete(src, "Dribbling")

		c, err := NewCatalog(src)
		require.NoError(t, err)
		assert.Equal(t, []string{"Cone Dribbling Drill", "1v1 Dribble Challenge", "Fast Feet Drills"}, c.Drills(Dribbling))
	})

	t.Run("wrong drill count", func(t *testing.T) {
		src := DefaultDrills()
		src["Speed"] = []string{"Sprint Intervals", "Ladder Drills"}
		_, err := NewCatalog(src)
		assert.Error(t, err)
	})

	t.Run("duplicate drill", func(t *testing.T) {
		src := DefaultDrills()
		src["Speed"] = []string{"Sprint Intervals", "Sprint Intervals", "Ladder Drills"}
		_, err := NewCatalog(src)
		assert.Error(t, err)
	})

	t.Run("missing skill", func(t *testing.T) {
		src := DefaultDrills()
		delete(src, "Agility")
		_, err := NewCatalog(src)
		assert.Error(t, err)
	})

	t.Run("unknown skill", func(t *testing.T) {
		src := DefaultDrills()
		src["Heading"] = []string{"a", "b", "c"}
		_, err := NewCatalog(src)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("same skill under two spellings", func(t *testing.T) {
		src := DefaultDrills()
		src["dribbling"] = []string{"Box Dribble", "Sole Rolls", "Elastico Practice"}
		_, err := NewCatalog(src)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("drills returns a copy", func(t *testing.T) {
		c := DefaultCatalog()
		d := c.Drills(Passing)
		d[0] = "changed"
		assert.Equal(t, "Wall Passing Drill", c.Drills(Passing)[0])
	})
}

func TestNewFeedbackTable_RequiresAllCombinations(t *testing.T) {
	src := map[Skill]map[Tier]string{}
	for s, tiers := range defaultDetailedMessages {
		src[s] = map[Tier]string{}
		for tier, msg := range tiers {
			src[s][tier] = msg
		}
	}
	delete(src[Speed], Neutral)

	_, err := NewFeedbackTable(src)
	assert.Error(t, err)
}
