package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Storage   StorageConfig   `mapstructure:"storage"`
	Questions QuestionsConfig `mapstructure:"questions"`
	Timer     TimerConfig     `mapstructure:"timer"`
	Interview InterviewConfig `mapstructure:"interview"`
	Summary   SummaryConfig   `mapstructure:"summary"`
}

type StorageConfig struct {
	Dir string `mapstructure:"dir" validate:"required"`
}

type QuestionsConfig struct {
	PoolFile string `mapstructure:"pool-file"`
	// Seed makes question draws reproducible. 0 draws a random seed.
	Seed int64 `mapstructure:"seed"`
}

type TimerConfig struct {
	Tick time.Duration `mapstructure:"tick" validate:"gt=0"`
}

type InterviewConfig struct {
	// Pace is the pause between confirming the start and the first question.
	Pace time.Duration `mapstructure:"pace" validate:"gte=0"`
}

type SummaryConfig struct {
	Provider     string        `mapstructure:"provider" validate:"oneof=template gemini"`
	Timeout      time.Duration `mapstructure:"timeout" validate:"gt=0"`
	Tone         string        `mapstructure:"tone"`
	Focus        string        `mapstructure:"focus"`
	Instructions string        `mapstructure:"instructions"`
	Gemini       GeminiConfig  `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries" validate:"gte=0,lte=10"`
	MaxLogLength int    `mapstructure:"max-log-length" validate:"gte=0"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.dir", ".interviewer")
	v.SetDefault("questions.pool-file", "")
	v.SetDefault("questions.seed", 0)
	v.SetDefault("timer.tick", time.Second)
	v.SetDefault("interview.pace", 1500*time.Millisecond)
	v.SetDefault("summary.provider", "template")
	v.SetDefault("summary.timeout", 30*time.Second)
	v.SetDefault("summary.tone", "")
	v.SetDefault("summary.focus", "")
	v.SetDefault("summary.instructions", "")
	v.SetDefault("summary.gemini.api-key-file", "")
	v.SetDefault("summary.gemini.model", "gemini-2.5-flash")
	v.SetDefault("summary.gemini.max-retries", 3)
	v.SetDefault("summary.gemini.max-log-length", 200)
}

// loadConfig decodes and validates the configuration held by v.
func loadConfig(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	config.Summary.Provider = strings.ToLower(strings.TrimSpace(config.Summary.Provider))

	if err := validator.New().Struct(config); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return nil, fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

func getConfig() (*Config, error) {
	return loadConfig(viper.GetViper())
}
