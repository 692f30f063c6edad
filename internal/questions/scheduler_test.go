package questions

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/interviewer/internal/interview"
)

func TestGenerateSetShape(t *testing.T) {
	scheduler, err := New(DefaultPools(), rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	for run := 0; run < 200; run++ {
		set := scheduler.Generate()
		require.Len(t, set, SetSize)

		require.Equal(t, interview.DemoQuestionID, set[0].ID)
		assert.Equal(t, interview.Easy, set[0].Difficulty)
		assert.Equal(t, 60, set[0].TimeLimitSeconds)

		counts := map[interview.Difficulty]int{}
		ids := map[string]struct{}{}
		texts := map[string]struct{}{}
		demos := 0
		for _, q := range set {
			if q.IsDemo() {
				demos++
				continue
			}
			counts[q.Difficulty]++
			assert.Equal(t, TimeLimit(q.Difficulty), q.TimeLimitSeconds)
			assert.False(t, q.IsCoding)
			assert.False(t, q.Answered())

			_, dupID := ids[q.ID]
			_, dupText := texts[q.Text]
			require.False(t, dupID, "duplicate id %s", q.ID)
			require.False(t, dupText, "duplicate question %q", q.Text)
			ids[q.ID] = struct{}{}
			texts[q.Text] = struct{}{}
		}

		assert.Equal(t, 1, demos)
		assert.Equal(t, map[interview.Difficulty]int{interview.Easy: 2, interview.Medium: 2, interview.Hard: 2}, counts)
	}
}

func TestGenerateOrderAndIDs(t *testing.T) {
	scheduler, err := NewSeeded(DefaultPools(), 42)
	require.NoError(t, err)

	var ids []string
	for _, q := range scheduler.Generate() {
		ids = append(ids, q.ID)
	}
	assert.Equal(t, []string{"demo", "easy-1", "easy-2", "medium-1", "medium-2", "hard-1", "hard-2"}, ids)
}

func TestGenerateReplaysSeed(t *testing.T) {
	first, err := NewSeeded(DefaultPools(), 99)
	require.NoError(t, err)
	second, err := NewSeeded(DefaultPools(), 99)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		assert.Equal(t, first.Generate(), second.Generate())
	}
}

func TestGenerateCoversWholePool(t *testing.T) {
	pools := Pools{
		Easy:   entries("e1", "e2", "e3"),
		Medium: entries("m1", "m2"),
		Hard:   entries("h1", "h2", "h3", "h4"),
	}
	scheduler, err := NewSeeded(pools, 3)
	require.NoError(t, err)

	seen := map[string]int{}
	for i := 0; i < 300; i++ {
		for _, q := range scheduler.Generate()[1:] {
			seen[q.Text]++
		}
	}

	for _, tier := range [][]Entry{pools.Easy, pools.Medium, pools.Hard} {
		for _, entry := range tier {
			assert.Positive(t, seen[entry.Text], "entry %q never drawn", entry.Text)
		}
	}
	// a two-entry pool is always drawn completely
	assert.Equal(t, 300, seen["m1"])
	assert.Equal(t, 300, seen["m2"])
}

func TestNewRejectsSmallPools(t *testing.T) {
	_, err := New(Pools{Easy: entries("only one"), Medium: entries("a", "b"), Hard: entries("c", "d")}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Easy pool has 1 questions")
}

func TestGenerateDoesNotMutatePools(t *testing.T) {
	pools := DefaultPools()
	before := append([]Entry{}, pools.Easy...)

	scheduler, err := NewSeeded(pools, 5)
	require.NoError(t, err)
	scheduler.Generate()

	assert.Equal(t, before, pools.Easy)
}

func TestParsePools(t *testing.T) {
	content := `
easy:
  - "What is a goroutine?"
  - text: "Write a function that reverses a string."
    keywords: [rune, loop]
    coding: true
medium:
  - "What is a channel?"
  - "What does select do?"
hard:
  - "Explain the Go memory model."
  - text: "How does the scheduler preempt goroutines?"
`
	pools, err := ParsePools([]byte(content))
	require.NoError(t, err)

	require.Len(t, pools.Easy, 2)
	assert.Equal(t, Entry{Text: "What is a goroutine?"}, pools.Easy[0])
	assert.Equal(t, Entry{Text: "Write a function that reverses a string.", Keywords: []string{"rune", "loop"}, Coding: true}, pools.Easy[1])
	assert.Len(t, pools.Medium, 2)
	assert.Equal(t, "How does the scheduler preempt goroutines?", pools.Hard[1].Text)

	scheduler, err := NewSeeded(pools, 1)
	require.NoError(t, err)
	for _, q := range scheduler.Generate() {
		if q.Text == pools.Easy[1].Text {
			assert.True(t, q.IsCoding)
			assert.Equal(t, []string{"rune", "loop"}, q.ExpectedKeywords)
		}
	}
}

func TestParsePoolsErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{name: "invalid yaml", content: "easy: [unclosed"},
		{name: "unknown tier", content: "expert: [a, b]"},
		{name: "missing tiers", content: "easy: [a, b]"},
		{name: "empty text", content: "easy: [a, {text: ''}]\nmedium: [a, b]\nhard: [a, b]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParsePools([]byte(tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadPools(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pools.yaml")
	require.NoError(t, os.WriteFile(path, []byte("easy: [a, b]\nmedium: [c, d]\nhard: [e, f]\n"), 0o644))

	pools, err := LoadPools(path)
	require.NoError(t, err)
	assert.Equal(t, entries("c", "d"), pools.Medium)

	_, err = LoadPools(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
