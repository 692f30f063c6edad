package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/interviewer/internal/interview"
)

func completedSession(id, name string, score int) interview.CompletedSession {
	at := time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC)
	s := interview.NewSession(interview.CandidateProfile{ID: id, Name: name, Email: strings.ToLower(strings.Fields(name)[0]) + "@example.com"})
	s.Status = interview.StatusCompleted
	s.FinalScore = &score
	s.CompletedAt = &at
	return interview.CompletedSession{Session: s}
}

func TestPrintCandidates(t *testing.T) {
	var buf bytes.Buffer
	err := printCandidates(&buf, []interview.CompletedSession{
		completedSession("id-1", "Jane Doe", 82),
		completedSession("id-2", "John Roe", 35),
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"ID", "NAME", "EMAIL", "SCORE", "LEVEL", "COMPLETED"}, strings.Fields(lines[0]))
	assert.Contains(t, lines[1], "Jane Doe")
	assert.Contains(t, lines[1], "Excellent")
	assert.Contains(t, lines[2], "Needs Improvement")
}

func TestPrintCandidatesEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printCandidates(&buf, nil))
	assert.Equal(t, "No completed interviews found.\n", buf.String())
}

func TestReportFileName(t *testing.T) {
	assert.Equal(t, "report-jane-van-doe.txt", reportFileName(completedSession("1", "Jane  van Doe", 10).Session))
	assert.Equal(t, "report-candidate.txt", reportFileName(interview.Session{}))
}

func TestWriteReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jane.txt")

	got, err := writeReport(completedSession("1", "Jane Doe", 64).Session, path)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Interview Report for Jane Doe")
	assert.Contains(t, string(data), "Final Score: 64/100 (Good)")
}
