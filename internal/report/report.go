// Package report renders the plain-text interview report of a session.
package report

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/spigell/interviewer/internal/interview"
)

//go:embed report.tmpl
var reportTemplate string

var tmpl = template.Must(template.New("report").Parse(reportTemplate))

const (
	Excellent        = "Excellent"
	Good             = "Good"
	Average          = "Average"
	NeedsImprovement = "Needs Improvement"
)

// PerformanceLevel maps a final score to its label.
func PerformanceLevel(score int) string {
	switch {
	case score >= 80:
		return Excellent
	case score >= 60:
		return Good
	case score >= 40:
		return Average
	default:
		return NeedsImprovement
	}
}

type questionLine struct {
	Number     int
	Score      int
	Difficulty interview.Difficulty
	Coding     bool
	TimedOut   bool
}

type data struct {
	Name           string
	Email          string
	Phone          string
	ResumeFileName string
	FinalScore     int
	Level          string
	Answered       int
	Total          int
	MaxTotal       int
	Questions      []questionLine
	Summary        string
	Date           string
	Time           string
}

// Render returns the report of the session as of at. The demo question is
// excluded. A session that is not completed is reported with its running
// average as the final score.
func Render(session interview.Session, at time.Time) (string, error) {
	final := session.AverageScore()
	if session.FinalScore != nil {
		final = *session.FinalScore
	}

	d := data{
		Name:           session.Profile.Name,
		Email:          session.Profile.Email,
		Phone:          session.Profile.Phone,
		ResumeFileName: session.Profile.ResumeFileName,
		FinalScore:     final,
		Level:          PerformanceLevel(final),
		Total:          session.TotalScore(),
		Summary:        strings.TrimSpace(session.Summary),
		Date:           at.Format("2006-01-02"),
		Time:           at.Format("15:04:05"),
	}

	for i, q := range session.Questions {
		if q.IsDemo() {
			continue
		}
		if q.Answered() {
			d.Answered++
		}
		d.Questions = append(d.Questions, questionLine{
			Number:     session.DisplayNumber(i),
			Score:      q.ScoreValue(),
			Difficulty: q.Difficulty,
			Coding:     q.IsCoding,
			TimedOut:   q.AnswerValue() == interview.TimeoutAnswer,
		})
	}
	d.MaxTotal = len(d.Questions) * 100

	var out strings.Builder
	if err := tmpl.Execute(&out, d); err != nil {
		return "", fmt.Errorf("rendering report for %s: %w", session.Profile.ID, err)
	}
	return out.String(), nil
}

// Subject is the report title used for saved files and mail subjects.
func Subject(session interview.Session) string {
	return "Interview Report - " + session.Profile.Name
}
