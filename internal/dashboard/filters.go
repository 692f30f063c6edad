package dashboard

import (
	"strconv"
	"strings"
	"time"

	"github.com/spigell/interviewer/internal/interview"
)

type predicate struct {
	name string
	// reason is set once the filter is disabled.
	reason  string
	details map[string]string
	keep    func(interview.CompletedSession) bool
}

func (p *predicate) Name() string { return p.name }

func (p *predicate) Disable(reason string) {
	if reason == "" {
		reason = "disabled"
	}
	p.reason = reason
}

func (p *predicate) Status() Status {
	return Status{Name: p.name, Enabled: p.reason == "", Reason: p.reason, Details: p.details}
}

func (p *predicate) Keep(item interview.CompletedSession) bool { return p.keep(item) }

// NewSearch keeps sessions whose candidate name or email contains term,
// ignoring case. An empty term disables it.
func NewSearch(term string) Filter {
	term = strings.ToLower(strings.TrimSpace(term))
	p := &predicate{
		name:    "search",
		details: map[string]string{},
		keep: func(c interview.CompletedSession) bool {
			return strings.Contains(strings.ToLower(c.Profile.Name), term) ||
				strings.Contains(strings.ToLower(c.Profile.Email), term)
		},
	}
	if term == "" {
		p.Disable("no search term")
	} else {
		p.details["term"] = term
	}
	return p
}

// NewMinScore keeps sessions with a final score of at least minScore.
// A non-positive value disables it.
func NewMinScore(minScore int) Filter {
	p := &predicate{
		name:    "min_score",
		details: map[string]string{"min_score": strconv.Itoa(minScore)},
		keep: func(c interview.CompletedSession) bool {
			return c.FinalScoreValue() >= minScore
		},
	}
	if minScore <= 0 {
		p.Disable("no minimum score")
	}
	return p
}

// NewSince keeps sessions completed at or after since. A zero time disables it.
func NewSince(since time.Time) Filter {
	p := &predicate{
		name:    "since",
		details: map[string]string{},
		keep: func(c interview.CompletedSession) bool {
			return c.CompletedAt != nil && !c.CompletedAt.Before(since)
		},
	}
	if since.IsZero() {
		p.Disable("no date bound")
	} else {
		p.details["since"] = since.Format(time.RFC3339)
	}
	return p
}
