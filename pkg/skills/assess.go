package skills

import (
	"math/rand"
	"sync"
	"time"
)

//RecommendedDrills is how many drills are picked from the weakest skill's catalog entry
const RecommendedDrills = 2

//Rand is the source of randomness used for drill picking and generated ratings.
//*rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

type lockedRand struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rnd.Intn(n)
}

//NewRand returns a Rand safe for concurrent use. seed 0 seeds from the clock.
func NewRand(seed int64) Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &lockedRand{rnd: rand.New(rand.NewSource(seed))}
}

//Assessment is the outcome of analysing a rating set
type Assessment struct {
	Weakest Skill    `json:"weakest_skill" yaml:"weakest_skill"`
	Drills  []string `json:"recommended_drills" yaml:"recommended_drills"`
}

//Assessor finds the weakest skill, picks drills and writes feedback.
//It only holds immutable tables and a Rand, so it can be shared.
type Assessor struct {
	catalog Catalog
	table   FeedbackTable
	rnd     Rand
}

//Option configures an Assessor
type Option func(*Assessor)

//WithCatalog replaces the built-in drill catalog
func WithCatalog(c Catalog) Option {
	return func(a *Assessor) {
		if c.drills != nil {
			a.catalog = c
		}
	}
}

//WithFeedbackTable replaces the built-in detailed feedback table
func WithFeedbackTable(t FeedbackTable) Option {
	return func(a *Assessor) {
		if t.messages != nil {
			a.table = t
		}
	}
}

//WithRand sets the randomness source
func WithRand(r Rand) Option {
	return func(a *Assessor) {
		if r != nil {
			a.rnd = r
		}
	}
}

//NewAssessor creates an Assessor with the built-in tables and a clock seeded Rand unless overridden
func NewAssessor(opts ...Option) *Assessor {
	a := &Assessor{
		catalog: DefaultCatalog(),
		table:   DefaultFeedbackTable(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.rnd == nil {
		a.rnd = NewRand(0)
	}
	return a
}

//Catalog returns the drill catalog in use
func (a *Assessor) Catalog() Catalog {
	return a.catalog
}

//Analyze returns the weakest skill of given ratings and RecommendedDrills distinct drills for it,
//picked uniformly at random without replacement
func (a *Assessor) Analyze(r Ratings) (Assessment, error) {
	weakest, err := r.Weakest()
	if err != nil {
		return Assessment{}, err
	}

	return Assessment{
		Weakest: weakest,
		Drills:  sample(a.rnd, a.catalog.Drills(weakest), RecommendedDrills),
	}, nil
}

//GenerateRatings draws one rating per skill, uniformly in [MinGeneratedRating, MaxGeneratedRating]
func (a *Assessor) GenerateRatings() Ratings {
	r := make(Ratings, len(canonical))
	for _, s := range canonical {
		r[s] = MinGeneratedRating + a.rnd.Intn(MaxGeneratedRating-MinGeneratedRating+1)
	}
	return r
}

//Feedback returns one entry per skill using given style
func (a *Assessor) Feedback(r Ratings, style Style) (map[Skill]Entry, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	out := make(map[Skill]Entry, len(r))
	for _, s := range canonical {
		tier := TierFor(r[s])
		msg := genericMessage(s, tier)
		if style == StyleDetailed {
			if m, ok := a.table.Message(s, tier); ok {
				msg = m
			}
		}
		out[s] = Entry{Skill: s, Message: msg, Tier: tier}
	}
	return out, nil
}

//OrderedFeedback lists feedback entries in canonical order
func OrderedFeedback(fb map[Skill]Entry) []Entry {
	out := make([]Entry, 0, len(fb))
	for _, s := range canonical {
		if e, ok := fb[s]; ok {
			out = append(out, e)
		}
	}
	return out
}

//sample picks k distinct elements of items (partial Fisher-Yates on a copy)
func sample(rnd Rand, items []string, k int) []string {
	pool := make([]string, len(items))
	copy(pool, items)
	if k > len(pool) {
		k = len(pool)
	}
	for i := 0; i < k; i++ {
		j := i + rnd.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k]
}
