package cmd

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/interviewer/internal/ai"
	"github.com/spigell/interviewer/internal/ai/gemini"
	"github.com/spigell/interviewer/internal/questions"
	"github.com/spigell/interviewer/internal/secrets"
	"github.com/spigell/interviewer/internal/storage"
)

const geminiAPIKeyEnv = "GEMINI_API_KEY"

func openStore(config *Config, logger *zap.Logger) (*storage.Store, error) {
	blobs, err := storage.NewFileBlobs(config.Storage.Dir)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}
	return storage.New(blobs, storage.WithLogger(logger.Named("storage"))), nil
}

func newScheduler(config *Config, logger *zap.Logger) (*questions.Scheduler, error) {
	pools := questions.DefaultPools()
	if file := strings.TrimSpace(config.Questions.PoolFile); file != "" {
		loaded, err := questions.LoadPools(file)
		if err != nil {
			return nil, fmt.Errorf("loading question pools: %w", err)
		}
		pools = loaded
		logger.Info("using question pools from file", zap.String("file", file))
	}

	if config.Questions.Seed != 0 {
		return questions.NewSeeded(pools, config.Questions.Seed)
	}
	return questions.New(pools, nil)
}

// newSummarizer returns the configured summarizer. A Gemini backend that
// cannot be built falls back to the template summary.
func newSummarizer(ctx context.Context, config *Config, logger *zap.Logger) ai.Summarizer {
	if config.Summary.Provider != "gemini" {
		return ai.TemplateSummarizer{}
	}

	summarizer, err := newGeminiSummarizer(ctx, &config.Summary, logger)
	if err != nil {
		logger.Warn("using template summaries", zap.Error(err))
		return ai.TemplateSummarizer{}
	}
	return summarizer
}

func newGeminiSummarizer(ctx context.Context, cfg *SummaryConfig, logger *zap.Logger) (*gemini.Summarizer, error) {
	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
		Env:  geminiAPIKeyEnv,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set summary.gemini.api-key-file or %s)", err, geminiAPIKeyEnv)
	}

	genLogger := logger.With(
		zap.String("provider", "gemini"),
		zap.String("model", cfg.Gemini.Model),
		zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries),
	)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, genLogger)
	if err != nil {
		return nil, err
	}

	summarizer := gemini.NewSummarizer(generator, cfg.Gemini.MaxLogLength, genLogger)
	summarizer.SetPromptOverrides(gemini.PromptOverrides{
		Tone:             cfg.Tone,
		Focus:            cfg.Focus,
		UserInstructions: cfg.Instructions,
	})
	return summarizer, nil
}
