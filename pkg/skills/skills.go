package skills

import (
	"errors"
	"fmt"
	"strings"
)

//Skill is one of the five rated soccer skills
type Skill string

const (
	Dribbling Skill = "Dribbling"
	Passing   Skill = "Passing"
	Shooting  Skill = "Shooting"
	Speed     Skill = "Speed"
	Agility   Skill = "Agility"
)

//canonical order, also used to break ties when looking for the weakest skill
var canonical = [...]Skill{Dribbling, Passing, Shooting, Speed, Agility}

//Self assessment range (sliders in the UI) and the narrower range used for generated ratings
const (
	MinRating          = 1
	MaxRating          = 10
	MinGeneratedRating = 3
	MaxGeneratedRating = 9
)

//ErrInvalidInput is returned for a rating set with missing, unknown or out of range skills
var ErrInvalidInput = errors.New("invalid skill ratings")

//All returns the skills in canonical order
func All() []Skill {
	out := make([]Skill, len(canonical))
	copy(out, canonical[:])
	return out
}

//Parse returns the Skill matching given name, ignoring case (config keys come back lower cased)
func Parse(name string) (Skill, error) {
	for _, s := range canonical {
		if strings.EqualFold(string(s), strings.TrimSpace(name)) {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: unknown skill %q", ErrInvalidInput, name)
}

//parseKeys maps every key of src to its Skill. Two keys naming the same skill (e.g. "dribbling"
//and "Dribbling") are an error, whichever would win is up to map iteration order.
func parseKeys[V any](src map[string]V) (map[Skill]V, error) {
	out := make(map[Skill]V, len(src))
	for name, v := range src {
		s, err := Parse(name)
		if err != nil {
			return nil, err
		}
		if _, dup := out[s]; dup {
			return nil, fmt.Errorf("%w: duplicate %s", ErrInvalidInput, s)
		}
		out[s] = v
	}
	return out, nil
}

//ParseRatings builds Ratings from ratings keyed by skill name, matched case-insensitively.
//The result is not validated, see Ratings.Validate.
func ParseRatings(src map[string]int) (Ratings, error) {
	return parseKeys(src)
}

func known(s Skill) bool {
	for _, c := range canonical {
		if c == s {
			return true
		}
	}
	return false
}

//Ratings maps each skill to its rating
type Ratings map[Skill]int

//Rating is a single (skill, rating) pair, used where order matters
type Rating struct {
	Skill  Skill `json:"skill" yaml:"skill"`
	Rating int   `json:"rating" yaml:"rating"`
}

//Ordered returns ratings in canonical order. Missing skills are skipped.
func (r Ratings) Ordered() []Rating {
	out := make([]Rating, 0, len(canonical))
	for _, s := range canonical {
		if v, ok := r[s]; ok {
			out = append(out, Rating{Skill: s, Rating: v})
		}
	}
	return out
}

//Validate checks all five skills are present, nothing else is, and every value is in [MinRating, MaxRating]
func (r Ratings) Validate() error {
	if len(r) != len(canonical) {
		for _, s := range canonical {
			if _, ok := r[s]; !ok {
				return fmt.Errorf("%w: missing %s", ErrInvalidInput, s)
			}
		}
	}

	for s, v := range r {
		if !known(s) {
			return fmt.Errorf("%w: unknown skill %q", ErrInvalidInput, s)
		}
		if v < MinRating || v > MaxRating {
			return fmt.Errorf("%w: %s rating %d not in [%d,%d]", ErrInvalidInput, s, v, MinRating, MaxRating)
		}
	}

	return nil
}

//Weakest returns the lowest rated skill, earliest in canonical order among ties
func (r Ratings) Weakest() (Skill, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}

	weakest := canonical[0]
	for _, s := range canonical[1:] {
		if r[s] < r[weakest] {
			weakest = s
		}
	}
	return weakest, nil
}
