package scoring

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/spigell/interviewer/internal/interview"
)

const (
	// Sentinel is the normalized placeholder answer that always scores 0.
	Sentinel = "no answer provided"

	MinAnswerLength = 15
	MaxScore        = 100
	FloorScore      = 25

	accuracyWeight   = 70
	uncertainPenalty = 40
)

var (
	exampleMarkers     = []string{"example", "for instance"}
	uncertaintyMarkers = []string{"i don't know", "not sure"}
	sentenceSplitter   = regexp.MustCompile(`[.!?]`)
)

// Breakdown exposes every intermediate value of a scoring run.
type Breakdown struct {
	Rule         string
	Keywords     []string
	Matched      []string
	Accuracy     float64
	Completeness int
	Penalty      int
	LengthOnly   bool
	Floored      bool
	Score        int
}

// Engine scores free-text answers with keyword heuristics.
type Engine struct {
	rules Rules
}

// NewEngine creates an engine over the supplied rules. Nil rules fall back to DefaultRules.
func NewEngine(rules Rules) *Engine {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Engine{rules: rules}
}

// Score returns the 0-100 score of an answer to the question.
func (e *Engine) Score(q interview.Question, answer string) int {
	return e.Explain(q, answer).Score
}

// ExpectedKeywords returns the keywords an answer to q is matched against and
// the name of the rule that produced them.
func (e *Engine) ExpectedKeywords(q interview.Question) (string, []string) {
	if q.ExpectedKeywords != nil {
		keywords := make([]string, 0, len(q.ExpectedKeywords))
		for _, k := range q.ExpectedKeywords {
			if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
				keywords = append(keywords, k)
			}
		}
		return "explicit", keywords
	}
	return e.rules.Keywords(strings.ToLower(q.Text))
}

// Explain scores the answer and reports how the score was built.
func (e *Engine) Explain(q interview.Question, answer string) Breakdown {
	if q.IsDemo() {
		return Breakdown{Rule: "demo"}
	}

	text := strings.ToLower(strings.TrimSpace(answer))
	length := utf8.RuneCountInString(text)
	if length < MinAnswerLength || text == Sentinel {
		return Breakdown{Rule: "unscoreable"}
	}

	rule, keywords := e.ExpectedKeywords(q)
	b := Breakdown{Rule: rule, Keywords: keywords}

	if len(keywords) == 0 {
		b.LengthOnly = true
		switch {
		case length > 100:
			b.Score = 70
		case length > 50:
			b.Score = 50
		default:
			b.Score = 30
		}
		return b
	}

	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			b.Matched = append(b.Matched, keyword)
		}
	}
	b.Accuracy = float64(len(b.Matched)) / float64(len(keywords)) * accuracyWeight

	if length > 85 {
		b.Completeness += 10
	}
	if length > 150 {
		b.Completeness += 5
	}
	if containsAny(text, exampleMarkers) {
		b.Completeness += 10
	}
	if len(sentenceSplitter.Split(text, -1)) > 2 {
		b.Completeness += 5
	}

	if containsAny(text, uncertaintyMarkers) {
		b.Penalty = uncertainPenalty
	}

	score := interview.RoundHalfUp(b.Accuracy + float64(b.Completeness) - float64(b.Penalty))
	score = max(0, min(MaxScore, score))

	if len(b.Matched) > 0 && score < FloorScore {
		score = FloorScore
		b.Floored = true
	}

	b.Score = score
	return b
}

func containsAny(text string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}
