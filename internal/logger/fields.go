package logger

import (
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/interviewer/internal/interview"
)

const (
	FieldSessionID  = "session_id"
	FieldCandidate  = "candidate"
	FieldStatus     = "status"
	FieldQuestionID = "question_id"
	FieldDifficulty = "difficulty"
	FieldCoding     = "coding"
)

// WithFields attaches fields to logger. A nil logger becomes a no-op one.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(fields) == 0 {
		return logger
	}
	return logger.With(fields...)
}

// SessionFields identify the session of a log entry. Only the candidate's
// first name is logged; email, phone and resume text never are.
func SessionFields(s interview.Session) []zap.Field {
	fields := make([]zap.Field, 0, 3)
	fields = appendString(fields, FieldSessionID, s.Profile.ID)
	fields = appendString(fields, FieldCandidate, s.Profile.FirstName())
	fields = appendString(fields, FieldStatus, string(s.Status))
	return fields
}

// QuestionFields identify the question a log entry is about.
func QuestionFields(q interview.Question) []zap.Field {
	fields := make([]zap.Field, 0, 3)
	fields = appendString(fields, FieldQuestionID, q.ID)
	fields = appendString(fields, FieldDifficulty, string(q.Difficulty))
	if q.IsCoding {
		fields = append(fields, zap.Bool(FieldCoding, true))
	}
	return fields
}

func WithSession(logger *zap.Logger, s interview.Session) *zap.Logger {
	return WithFields(logger, SessionFields(s)...)
}

// appendString skips blank values to keep entries compact.
func appendString(fields []zap.Field, key, value string) []zap.Field {
	if value = strings.TrimSpace(value); value == "" {
		return fields
	}
	return append(fields, zap.String(key, value))
}
