package orchestrator

import (
	"context"
	"errors"

	"github.com/spigell/interviewer/internal/interview"
)

var (
	ErrSessionNotFound   = errors.New("no interview session")
	ErrSessionCompleted  = errors.New("interview already completed")
	ErrInvalidPhase      = errors.New("operation not allowed in the current phase")
	ErrProfileIncomplete = errors.New("candidate profile is incomplete")
	ErrEmptyAnswer       = errors.New("answer is empty")
	ErrStaleQuestion     = errors.New("answer is for a question that is no longer current")
	ErrClosed            = errors.New("orchestrator is closed")
)

type Phase string

const (
	PhaseNoSession     Phase = "no_session"
	PhaseCollecting    Phase = "collecting"
	PhaseAwaitingStart Phase = "awaiting_start"
	PhaseInterview     Phase = "interview"
	PhaseCompleted     Phase = "completed"
)

// Store persists sessions. *storage.Store implements it.
type Store interface {
	LoadCurrent(ctx context.Context) (interview.Session, error)
	SaveCurrent(ctx context.Context, session interview.Session) error
	ClearCurrent(ctx context.Context) error
	AppendCompleted(ctx context.Context, completed interview.CompletedSession) error
	ListCompleted(ctx context.Context) ([]interview.CompletedSession, error)
}

// QuestionSource produces the ordered question set of a new interview.
type QuestionSource interface {
	Generate() []interview.Question
}

type Scorer interface {
	Score(q interview.Question, answer string) int
}

// CollectionResult is the outcome of one profile field submission.
type CollectionResult struct {
	Accepted bool
	// Field is the field the input was validated against.
	Field interview.Field
	// Next is the field to collect next, FieldNone when the profile is complete.
	Next interview.Field
	// Message is the re-prompt on rejection and the next prompt on acceptance.
	Message string
}

// QuestionPrompt describes the question being asked.
type QuestionPrompt struct {
	Question interview.Question
	Index    int
	// Number is the 1-based ordinal among scored questions, 0 for the demo.
	Number int
	// Total is the number of scored questions.
	Total int
}

// AnswerResult describes a recorded answer.
type AnswerResult struct {
	QuestionID string
	Number     int
	Answer     string
	Score      int
	TimedOut   bool
}

// Callbacks are notified after each transition, outside the orchestrator
// lock and in transition order. Every field is optional.
type Callbacks struct {
	OnProfileUpdated         func(profile interview.CandidateProfile)
	OnInfoCollectionComplete func(profile interview.CandidateProfile)
	OnQuestion               func(prompt QuestionPrompt)
	OnTick                   func(questionID string, remaining int)
	OnAnswerRecorded         func(result AnswerResult)
	OnInterviewComplete      func(session interview.Session)
	OnRestart                func()
}
