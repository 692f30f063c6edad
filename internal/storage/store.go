package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/interviewer/internal/interview"
)

const (
	CurrentKey    = "current_interview"
	CandidatesKey = "candidates"
	// CorruptCandidatesKey keeps the last candidates list that failed to decode.
	CorruptCandidatesKey = "candidates_corrupt"
)

var (
	// ErrCorrupt wraps every failure to decode a persisted value.
	ErrCorrupt  = errors.New("corrupt persisted state")
	ErrNotFound = errors.New("not found")
)

// Store persists the current session and the completed candidates list.
type Store struct {
	blobs  Blobs
	logger *zap.Logger
}

type Option func(*Store)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func New(blobs Blobs, opts ...Option) *Store {
	s := &Store{blobs: blobs, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadCurrent returns the persisted current session. It returns ErrNotFound
// when there is none and an error wrapping ErrCorrupt when the blob cannot be
// decoded or breaks the session invariants.
func (s *Store) LoadCurrent(ctx context.Context) (interview.Session, error) {
	if err := ctx.Err(); err != nil {
		return interview.Session{}, err
	}

	data, err := s.blobs.Get(CurrentKey)
	if errors.Is(err, ErrKeyNotFound) {
		return interview.Session{}, ErrNotFound
	}
	if err != nil {
		return interview.Session{}, err
	}

	return DecodeSession(data)
}

// DecodeSession validates and decodes a session snapshot.
func DecodeSession(data []byte) (interview.Session, error) {
	if err := validateDocument(sessionSchema, data); err != nil {
		return interview.Session{}, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	var session interview.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return interview.Session{}, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	if err := checkInvariants(session); err != nil {
		return interview.Session{}, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	if session.Questions == nil {
		session.Questions = []interview.Question{}
	}
	return session, nil
}

func (s *Store) SaveCurrent(ctx context.Context, session interview.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if session.Questions == nil {
		session.Questions = []interview.Question{}
	}
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	if err := s.blobs.Put(CurrentKey, data); err != nil {
		return fmt.Errorf("saving current session: %w", err)
	}
	return nil
}

func (s *Store) ClearCurrent(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.blobs.Delete(CurrentKey); err != nil {
		return fmt.Errorf("clearing current session: %w", err)
	}
	return nil
}

// ListCompleted returns the completed candidates in insertion order.
func (s *Store) ListCompleted(ctx context.Context) ([]interview.CompletedSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := s.blobs.Get(CandidatesKey)
	if errors.Is(err, ErrKeyNotFound) {
		return []interview.CompletedSession{}, nil
	}
	if err != nil {
		return nil, err
	}

	if err := validateDocument(candidatesSchema, data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	var completed []interview.CompletedSession
	if err := json.Unmarshal(data, &completed); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if completed == nil {
		completed = []interview.CompletedSession{}
	}
	return completed, nil
}

// AppendCompleted adds a completed session to the candidates list.
func (s *Store) AppendCompleted(ctx context.Context, completed interview.CompletedSession) error {
	if completed.Status != interview.StatusCompleted || completed.FinalScore == nil || completed.CompletedAt == nil {
		return fmt.Errorf("session %s is not completed", completed.Profile.ID)
	}

	list, err := s.ListCompleted(ctx)
	if errors.Is(err, ErrCorrupt) {
		list, err = s.setAsideCorruptCompleted(err)
	}
	if err != nil {
		return fmt.Errorf("loading completed candidates: %w", err)
	}

	return s.writeCompleted(append(list, completed))
}

// setAsideCorruptCompleted moves an undecodable candidates list to
// CorruptCandidatesKey so appending can start over with an empty list.
func (s *Store) setAsideCorruptCompleted(cause error) ([]interview.CompletedSession, error) {
	data, err := s.blobs.Get(CandidatesKey)
	if err != nil {
		return nil, err
	}
	if err := s.blobs.Put(CorruptCandidatesKey, data); err != nil {
		return nil, fmt.Errorf("setting aside corrupt candidates: %w", err)
	}

	s.logger.Warn("corrupt completed candidates list moved aside, starting a new one",
		zap.String("moved_to", CorruptCandidatesKey),
		zap.Int("bytes", len(data)),
		zap.Error(cause),
	)
	return []interview.CompletedSession{}, nil
}

// GetCompleted returns the completed session of a candidate id.
func (s *Store) GetCompleted(ctx context.Context, id string) (interview.CompletedSession, error) {
	list, err := s.ListCompleted(ctx)
	if err != nil {
		return interview.CompletedSession{}, err
	}
	for _, c := range list {
		if c.Profile.ID == id {
			return c, nil
		}
	}
	return interview.CompletedSession{}, fmt.Errorf("candidate %s: %w", id, ErrNotFound)
}

// DeleteCompleted removes every completed session of the candidate id.
func (s *Store) DeleteCompleted(ctx context.Context, id string) error {
	list, err := s.ListCompleted(ctx)
	if err != nil {
		return err
	}

	kept := make([]interview.CompletedSession, 0, len(list))
	for _, c := range list {
		if c.Profile.ID != id {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(list) {
		return fmt.Errorf("candidate %s: %w", id, ErrNotFound)
	}

	return s.writeCompleted(kept)
}

func (s *Store) writeCompleted(list []interview.CompletedSession) error {
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encoding completed candidates: %w", err)
	}
	if err := s.blobs.Put(CandidatesKey, data); err != nil {
		return fmt.Errorf("saving completed candidates: %w", err)
	}
	return nil
}

func checkInvariants(s interview.Session) error {
	switch s.Status {
	case interview.StatusCollectingInfo:
		if len(s.Questions) != 0 {
			return errors.New("collecting session has questions")
		}
	case interview.StatusInProgress, interview.StatusCompleted:
		if len(s.Questions) == 0 {
			return fmt.Errorf("%s session has no questions", s.Status)
		}
	}

	if (s.Status == interview.StatusCompleted) != (s.FinalScore != nil) {
		return errors.New("final score must be set exactly when completed")
	}
	if s.Status == interview.StatusCompleted && s.CompletedAt == nil {
		return errors.New("completed session has no completion time")
	}
	if s.CurrentQuestionIndex > len(s.Questions) {
		return fmt.Errorf("current question %d out of range", s.CurrentQuestionIndex)
	}
	if s.Status == interview.StatusInProgress && s.CurrentQuestionIndex == len(s.Questions) {
		return errors.New("in progress session has no current question")
	}

	seen := make(map[string]struct{}, len(s.Questions))
	for i, q := range s.Questions {
		if _, ok := seen[q.ID]; ok {
			return fmt.Errorf("duplicate question id %s", q.ID)
		}
		seen[q.ID] = struct{}{}
		switch s.Status {
		case interview.StatusInProgress:
			if i < s.CurrentQuestionIndex && !q.Answered() {
				return fmt.Errorf("question %s before the current one is unanswered", q.ID)
			}
			if i >= s.CurrentQuestionIndex && q.Answered() {
				return fmt.Errorf("question %s at or after the current one is already answered", q.ID)
			}
		case interview.StatusCompleted:
			if !q.Answered() {
				return fmt.Errorf("completed session has unanswered question %s", q.ID)
			}
		}
	}
	return nil
}
