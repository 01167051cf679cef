package skills

import "fmt"

//DrillsPerSkill is the number of candidate drills every skill has in a catalog
const DrillsPerSkill = 3

//Catalog maps every skill to its candidate drills. It is read only once built.
type Catalog struct {
	drills map[Skill][DrillsPerSkill]string
}

//Drills returns a copy of the candidate drills of given skill
func (c Catalog) Drills(s Skill) []string {
	d, ok := c.drills[s]
	if !ok {
		return nil
	}
	out := make([]string, DrillsPerSkill)
	copy(out, d[:])
	return out
}

//NewCatalog validates src (keys are skill names as displayed) and builds a Catalog.
//Every skill needs exactly DrillsPerSkill distinct non empty drill names.
func NewCatalog(src map[string][]string) (Catalog, error) {
	c := Catalog{drills: make(map[Skill][DrillsPerSkill]string, len(canonical))}

	parsed, err := parseKeys(src)
	if err != nil {
		return Catalog{}, fmt.Errorf("drill catalog: %w", err)
	}

	for s, drills := range parsed {
		if len(drills) != DrillsPerSkill {
			return Catalog{}, fmt.Errorf("drill catalog: %s has %d drills, want %d", s, len(drills), DrillsPerSkill)
		}

		var entry [DrillsPerSkill]string
		seen := make(map[string]bool, DrillsPerSkill)
		for i, d := range drills {
			if d == "" || seen[d] {
				return Catalog{}, fmt.Errorf("drill catalog: %s has an empty or duplicated drill %q", s, d)
			}
			seen[d] = true
			entry[i] = d
		}
		c.drills[s] = entry
	}

	for _, s := range canonical {
		if _, ok := c.drills[s]; !ok {
			return Catalog{}, fmt.Errorf("drill catalog: missing %s", s)
		}
	}

	return c, nil
}

//DefaultDrills is the built-in catalog source, keyed the same way as the "drills" config section
func DefaultDrills() map[string][]string {
	return map[string][]string{
		string(Dribbling): {"Cone Dribbling Drill", "1v1 Dribble Challenge", "Fast Feet Drills"},
		string(Passing):   {"Wall Passing Drill", "Triangle Passing", "Long Pass Accuracy"},
		string(Shooting):  {"Target Shooting", "One-Touch Finishing", "Shooting Under Pressure"},
		string(Speed):     {"Sprint Intervals", "Ladder Drills", "Reaction Sprint Training"},
		string(Agility):   {"Cone Weaving", "Quick Change of Direction", "Lateral Hurdle Jumps"},
	}
}

//DefaultCatalog returns the built-in catalog
func DefaultCatalog() Catalog {
	c, err := NewCatalog(DefaultDrills())
	if err != nil {
		panic(err)
	}
	return c
}
