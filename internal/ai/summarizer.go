package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/spigell/interviewer/internal/interview"
	"github.com/spigell/interviewer/internal/report"
)

// Summarizer writes the performance summary of a completed session.
type Summarizer interface {
	Summarize(ctx context.Context, session interview.Session) (string, error)
}

// TierAverage is the rounded mean score of one difficulty tier.
type TierAverage struct {
	Difficulty interview.Difficulty
	Average    int
	Count      int
}

// TierAverages returns the per-tier averages of the non-demo questions, in
// administration order. Tiers without questions are omitted.
func TierAverages(session interview.Session) []TierAverage {
	totals := make(map[interview.Difficulty]int)
	counts := make(map[interview.Difficulty]int)
	for _, q := range session.Scored() {
		totals[q.Difficulty] += q.ScoreValue()
		counts[q.Difficulty]++
	}

	out := make([]TierAverage, 0, len(interview.Difficulties))
	for _, d := range interview.Difficulties {
		if counts[d] == 0 {
			continue
		}
		out = append(out, TierAverage{
			Difficulty: d,
			Average:    interview.RoundHalfUp(float64(totals[d]) / float64(counts[d])),
			Count:      counts[d],
		})
	}
	return out
}

// TemplateSummarizer builds the summary from the scores alone.
type TemplateSummarizer struct{}

func (TemplateSummarizer) Summarize(ctx context.Context, session interview.Session) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return TemplateSummary(session), nil
}

// TemplateSummary is deterministic for a given session.
func TemplateSummary(session interview.Session) string {
	final := session.AverageScore()
	if session.FinalScore != nil {
		final = *session.FinalScore
	}

	name := session.Profile.FirstName()
	if name == "" {
		name = "The candidate"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s finished the interview with a final score of %d/100 (%s).", name, final, report.PerformanceLevel(final))

	tiers := TierAverages(session)
	if len(tiers) > 0 {
		parts := make([]string, 0, len(tiers))
		best, worst := tiers[0], tiers[0]
		for _, t := range tiers {
			parts = append(parts, fmt.Sprintf("%s %d", t.Difficulty, t.Average))
			if t.Average > best.Average {
				best = t
			}
			if t.Average < worst.Average {
				worst = t
			}
		}
		fmt.Fprintf(&b, " Tier averages: %s.", strings.Join(parts, ", "))
		if best.Difficulty != worst.Difficulty {
			fmt.Fprintf(&b, " Strongest on %s questions, weakest on %s questions.", best.Difficulty, worst.Difficulty)
		}
	}

	timedOut := 0
	for _, q := range session.Scored() {
		if q.AnswerValue() == interview.TimeoutAnswer {
			timedOut++
		}
	}
	switch timedOut {
	case 0:
	case 1:
		b.WriteString(" One question ran out of time.")
	default:
		fmt.Fprintf(&b, " %d questions ran out of time.", timedOut)
	}

	return b.String()
}
