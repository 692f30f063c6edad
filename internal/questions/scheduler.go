package questions

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/spigell/interviewer/internal/interview"
)

const (
	// PerTier is the number of questions drawn from every tier.
	PerTier = 2
	// SetSize is the length of a generated set: the demo plus PerTier per tier.
	SetSize = 1 + PerTier*3

	demoText = "This is a demo question to get you familiar with the interface. " +
		"Can you tell me your favorite programming language and why? (This won't affect your final score)"
	demoTimeLimit = 60
)

var timeLimits = map[interview.Difficulty]int{
	interview.Easy:   90,
	interview.Medium: 120,
	interview.Hard:   150,
}

// TimeLimit returns the per-question limit in seconds for a tier.
func TimeLimit(d interview.Difficulty) int {
	return timeLimits[d]
}

// DemoQuestion returns the fixed warm-up question.
func DemoQuestion() interview.Question {
	return interview.Question{
		ID:               interview.DemoQuestionID,
		Text:             demoText,
		Difficulty:       interview.Easy,
		TimeLimitSeconds: demoTimeLimit,
	}
}

// Scheduler draws question sets from tier pools.
// A Scheduler is not safe for concurrent use because its random source is not.
type Scheduler struct {
	pools Pools
	rng   *rand.Rand
}

// New creates a scheduler over the pools. A nil rng is replaced by a time-seeded one.
func New(pools Pools, rng *rand.Rand) (*Scheduler, error) {
	if err := pools.Validate(PerTier); err != nil {
		return nil, fmt.Errorf("invalid question pools: %w", err)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Scheduler{pools: pools, rng: rng}, nil
}

// NewSeeded creates a scheduler whose draws are reproducible for the seed.
func NewSeeded(pools Pools, seed int64) (*Scheduler, error) {
	return New(pools, rand.New(rand.NewSource(seed)))
}

// Generate returns a new ordered question set: the demo question followed by
// PerTier questions of every tier, each tier sampled without replacement.
func (s *Scheduler) Generate() []interview.Question {
	set := make([]interview.Question, 0, SetSize)
	set = append(set, DemoQuestion())

	for _, d := range interview.Difficulties {
		for i, entry := range s.draw(s.pools.Tier(d), PerTier) {
			q := interview.Question{
				ID:               fmt.Sprintf("%s-%d", strings.ToLower(string(d)), i+1),
				Text:             entry.Text,
				Difficulty:       d,
				TimeLimitSeconds: TimeLimit(d),
				IsCoding:         entry.Coding,
			}
			if entry.Keywords != nil {
				q.ExpectedKeywords = append([]string{}, entry.Keywords...)
			}
			set = append(set, q)
		}
	}

	return set
}

// draw shuffles a copy of the pool and takes the first n entries.
func (s *Scheduler) draw(pool []Entry, n int) []Entry {
	shuffled := make([]Entry, len(pool))
	copy(shuffled, pool)
	s.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:n]
}
