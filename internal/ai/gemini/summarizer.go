package gemini

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/interviewer/internal/interview"
	"github.com/spigell/interviewer/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
}

//go:embed prompt.md
var promptTemplate string

const (
	defaultMaxLogLength     = 200
	maxUserInstructionRunes = 500
	maxAnswerRunes          = 1200
	defaultTone             = "Neutral"
	defaultFocus            = "overall technical depth"
)

// PromptOverrides are operator preferences rendered into the system prompt.
type PromptOverrides struct {
	Tone             string
	Focus            string
	UserInstructions string
}

// Summarizer asks Gemini for a summary of a completed session.
type Summarizer struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
	overrides PromptOverrides
}

func NewSummarizer(generator contentGenerator, maxLogLength int, logger *zap.Logger) *Summarizer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Summarizer{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (s *Summarizer) SetPromptOverrides(o PromptOverrides) {
	s.overrides = o
}

type questionPayload struct {
	Number     int    `json:"number"`
	Difficulty string `json:"difficulty"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Score      int    `json:"score"`
	TimedOut   bool   `json:"timedOut,omitempty"`
}

type sessionPayload struct {
	Candidate  string            `json:"candidate"`
	FinalScore int               `json:"finalScore"`
	Questions  []questionPayload `json:"questions"`
}

func (s *Summarizer) Summarize(ctx context.Context, session interview.Session) (string, error) {
	if s.generator == nil {
		return "", errors.New("gemini generator is not configured")
	}

	payload := sessionPayload{
		Candidate:  session.Profile.FirstName(),
		FinalScore: session.FinalScoreValue(),
		Questions:  []questionPayload{},
	}
	for i, q := range session.Questions {
		if q.IsDemo() {
			continue
		}
		answer := q.AnswerValue()
		payload.Questions = append(payload.Questions, questionPayload{
			Number:     session.DisplayNumber(i),
			Difficulty: string(q.Difficulty),
			Question:   q.Text,
			Answer:     truncateRunes(answer, maxAnswerRunes),
			Score:      q.ScoreValue(),
			TimedOut:   answer == interview.TimeoutAnswer,
		})
	}

	message, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal session payload: %w", err)
	}

	system := buildPrompt(s.overrides)

	s.logger.Debug("gemini summary request",
		zap.String("session_id", session.Profile.ID),
		zap.Int("message_length", utf8.RuneCount(message)),
		zap.String("message_preview", utils.TruncateForLog(string(message), s.maxLogLen)),
	)

	raw, err := s.generator.GenerateContent(ctx, system, string(message))
	if err != nil {
		return "", err
	}

	s.logger.Debug("gemini summary response",
		zap.String("session_id", session.Profile.ID),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, s.maxLogLen)),
	)

	return parseResponse(raw)
}

func buildPrompt(o PromptOverrides) string {
	tone := sanitizeSingleLine(o.Tone)
	if tone == "" {
		tone = defaultTone
	}
	focus := sanitizeSingleLine(o.Focus)
	if focus == "" {
		focus = defaultFocus
	}

	prompt := strings.ReplaceAll(promptTemplate, "{{TONE}}", tone)
	prompt = strings.ReplaceAll(prompt, "{{FOCUS}}", focus)
	prompt = strings.ReplaceAll(prompt, "{{USER_INSTRUCTIONS}}", userInstructionsBlock(o.UserInstructions))
	return prompt
}

// sanitizeSingleLine collapses whitespace and replaces square brackets so
// operator text cannot open a new prompt section.
func sanitizeSingleLine(v string) string {
	v = strings.NewReplacer("[", "(", "]", ")").Replace(v)
	return strings.Join(strings.FieldsFunc(v, unicode.IsSpace), " ")
}

func userInstructionsBlock(v string) string {
	v = truncateRunes(strings.TrimSpace(v), maxUserInstructionRunes)

	lines := make([]string, 0)
	for _, line := range strings.Split(v, "\n") {
		if line = sanitizeSingleLine(line); line != "" {
			lines = append(lines, "  - "+line)
		}
	}
	if len(lines) == 0 {
		return "  - none"
	}
	return strings.Join(lines, "\n")
}

func truncateRunes(v string, limit int) string {
	if utf8.RuneCountInString(v) <= limit {
		return v
	}
	return string([]rune(v)[:limit])
}

func parseResponse(raw string) (string, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return "", fmt.Errorf("parse gemini response: %w", err)
	}

	summary := coerceString(data["summary"])
	if summary == "" {
		return "", errors.New("gemini response has no summary")
	}

	var b strings.Builder
	b.WriteString(summary)
	if strengths := coerceStrings(data["strengths"]); len(strengths) > 0 {
		b.WriteString("\nStrengths: " + strings.Join(strengths, "; "))
	}
	if improvements := coerceStrings(data["improvements"]); len(improvements) > 0 {
		b.WriteString("\nAreas to improve: " + strings.Join(improvements, "; "))
	}
	return b.String(), nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}

func coerceStrings(v any) []string {
	switch val := v.(type) {
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s := coerceString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if s := strings.TrimSpace(val); s != "" {
			return []string{s}
		}
	}
	return nil
}
