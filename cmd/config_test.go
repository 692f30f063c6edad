package cmd

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	setDefaults(v)
	bindEnv(v)
	return v
}

func TestLoadConfigDefaults(t *testing.T) {
	config, err := loadConfig(newTestViper(t))
	require.NoError(t, err)

	assert.Equal(t, ".interviewer", config.Storage.Dir)
	assert.Equal(t, time.Second, config.Timer.Tick)
	assert.Equal(t, 1500*time.Millisecond, config.Interview.Pace)
	assert.Equal(t, "template", config.Summary.Provider)
	assert.Equal(t, 30*time.Second, config.Summary.Timeout)
	assert.Equal(t, "gemini-2.5-flash", config.Summary.Gemini.Model)
	assert.Equal(t, 3, config.Summary.Gemini.MaxRetries)
	assert.Zero(t, config.Questions.Seed)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("INTERVIEWER_SUMMARY_TIMEOUT", "5s")
	t.Setenv("INTERVIEWER_SUMMARY_PROVIDER", "Gemini")
	t.Setenv("INTERVIEWER_SUMMARY_GEMINI_MAX_RETRIES", "2")
	t.Setenv("INTERVIEWER_QUESTIONS_SEED", "42")

	config, err := loadConfig(newTestViper(t))
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, config.Summary.Timeout)
	assert.Equal(t, "gemini", config.Summary.Provider)
	assert.Equal(t, 2, config.Summary.Gemini.MaxRetries)
	assert.EqualValues(t, 42, config.Questions.Seed)
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
		want  string
	}{
		{name: "unknown provider", key: "summary.provider", value: "openai", want: "Provider"},
		{name: "zero tick", key: "timer.tick", value: "0s", want: "Tick"},
		{name: "empty storage dir", key: "storage.dir", value: "", want: "Dir"},
		{name: "negative pace", key: "interview.pace", value: "-1s", want: "Pace"},
		{name: "too many retries", key: "summary.gemini.max-retries", value: 50, want: "MaxRetries"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newTestViper(t)
			v.Set(tt.key, tt.value)

			_, err := loadConfig(v)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
