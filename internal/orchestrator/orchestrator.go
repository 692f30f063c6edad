// Package orchestrator drives one interview session through info collection,
// timed questions and completion.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/interviewer/internal/ai"
	"github.com/spigell/interviewer/internal/interview"
	"github.com/spigell/interviewer/internal/logger"
	"github.com/spigell/interviewer/internal/scoring"
	"github.com/spigell/interviewer/internal/storage"
	"github.com/spigell/interviewer/internal/timer"
	"github.com/spigell/interviewer/internal/utils"
)

const (
	defaultSummaryTimeout = 30 * time.Second
	answerPreviewLength   = 80
)

type Options struct {
	Store      Store
	Questions  QuestionSource
	Scorer     Scorer
	Summarizer ai.Summarizer
	Clock      timer.Clock
	Tick       time.Duration
	// SummaryTimeout bounds summary generation at completion.
	SummaryTimeout time.Duration
	Callbacks      Callbacks
	Logger         *zap.Logger
	Now            func() time.Time
}

// Orchestrator owns one session and its countdown.
type Orchestrator struct {
	ctx            context.Context
	store          Store
	questions      QuestionSource
	scorer         Scorer
	summarizer     ai.Summarizer
	timer          *timer.Controller
	summaryTimeout time.Duration
	callbacks      Callbacks
	logger         *zap.Logger
	now            func() time.Time

	mu          sync.Mutex
	session     *interview.Session
	draft       string
	activeToken timer.Token
	closed      bool
	queue       []func()

	dispatchMu sync.Mutex
}

// New creates an orchestrator without a session. Call Begin or Resume next.
func New(ctx context.Context, opts Options) (*Orchestrator, error) {
	if opts.Store == nil {
		return nil, errors.New("store is required")
	}
	if opts.Questions == nil {
		return nil, errors.New("question source is required")
	}

	o := &Orchestrator{
		ctx:            ctx,
		store:          opts.Store,
		questions:      opts.Questions,
		scorer:         opts.Scorer,
		summarizer:     opts.Summarizer,
		summaryTimeout: opts.SummaryTimeout,
		callbacks:      opts.Callbacks,
		logger:         opts.Logger,
		now:            opts.Now,
	}
	if o.scorer == nil {
		o.scorer = scoring.NewEngine(nil)
	}
	if o.summarizer == nil {
		o.summarizer = ai.TemplateSummarizer{}
	}
	if o.summaryTimeout <= 0 {
		o.summaryTimeout = defaultSummaryTimeout
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.now == nil {
		o.now = time.Now
	}
	o.timer = timer.New(opts.Clock, opts.Tick, o.logger.Named("timer"))

	return o, nil
}

// Begin discards any current session and starts collecting the profile.
// Prefilled fields that fail validation are cleared so they are collected again.
func (o *Orchestrator) Begin(profile interview.CandidateProfile) (interview.Field, error) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return interview.FieldNone, ErrClosed
	}

	o.stopCountdownLocked()
	o.draft = ""

	profile = o.normalizeProfile(profile)
	session := interview.NewSession(profile)
	o.session = &session
	o.persistLocked()

	log := o.sessionLogger(session)
	log.Info("interview session created", zap.String("next_field", string(profile.MissingField())))

	o.enqueueLocked(func() {
		if o.callbacks.OnProfileUpdated != nil {
			o.callbacks.OnProfileUpdated(profile)
		}
	})
	next := profile.MissingField()
	o.mu.Unlock()

	o.drain()
	return next, nil
}

func (o *Orchestrator) normalizeProfile(p interview.CandidateProfile) interview.CandidateProfile {
	p.ID = strings.TrimSpace(p.ID)
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = o.now().UTC()
	}

	for _, f := range []interview.Field{interview.FieldName, interview.FieldEmail, interview.FieldPhone} {
		value := strings.TrimSpace(fieldValue(p, f))
		if value != "" && f.Validate(value) != nil {
			o.logger.Debug("dropping invalid prefilled field", zap.String("field", string(f)))
			value = ""
		}
		p = f.Set(p, value)
	}
	return p
}

func fieldValue(p interview.CandidateProfile, f interview.Field) string {
	switch f {
	case interview.FieldName:
		return p.Name
	case interview.FieldEmail:
		return p.Email
	case interview.FieldPhone:
		return p.Phone
	default:
		return ""
	}
}

// Resume restores the persisted current session. A corrupt snapshot is
// discarded and reported as ErrSessionNotFound.
func (o *Orchestrator) Resume() (Phase, error) {
	loaded, err := o.store.LoadCurrent(o.ctx)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return PhaseNoSession, ErrSessionNotFound
	case errors.Is(err, storage.ErrCorrupt):
		o.logger.Warn("discarding corrupt interview snapshot", zap.Error(err))
		if clearErr := o.store.ClearCurrent(o.ctx); clearErr != nil {
			o.logger.Error("clearing corrupt interview snapshot", zap.Error(clearErr))
		}
		return PhaseNoSession, ErrSessionNotFound
	case err != nil:
		return PhaseNoSession, fmt.Errorf("loading current session: %w", err)
	}

	if loaded.Status == interview.StatusCompleted {
		loaded = o.restoreCompleted(loaded)
	}

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return PhaseNoSession, ErrClosed
	}

	o.stopCountdownLocked()
	o.draft = ""
	o.session = &loaded

	log := o.sessionLogger(loaded)
	log.Info("interview session resumed", zap.Int("current_question", loaded.CurrentQuestionIndex))

	if loaded.Status == interview.StatusInProgress {
		o.askLocked()
	}
	phase := o.phaseLocked()
	o.mu.Unlock()

	o.drain()
	return phase, nil
}

// restoreCompleted appends a completed snapshot to the candidates list when no
// record with the same profile id and completion time is there yet.
func (o *Orchestrator) restoreCompleted(session interview.Session) interview.Session {
	log := o.sessionLogger(session)

	list, err := o.store.ListCompleted(o.ctx)
	if err != nil && !errors.Is(err, storage.ErrCorrupt) {
		log.Error("checking completed candidates", zap.Error(err))
		return session
	}
	for _, c := range list {
		if c.Profile.ID == session.Profile.ID && c.CompletedAt != nil && c.CompletedAt.Equal(*session.CompletedAt) {
			return session
		}
	}

	if strings.TrimSpace(session.Summary) == "" {
		session.Summary = ai.TemplateSummary(session)
		if err := o.store.SaveCurrent(o.ctx, session); err != nil {
			log.Error("saving current session", zap.Error(err))
		}
	}
	if err := o.store.AppendCompleted(o.ctx, interview.CompletedSession{Session: session.Clone()}); err != nil {
		log.Error("saving completed interview", zap.Error(err))
		return session
	}
	log.Info("completed interview restored to candidates list")
	return session
}

// SubmitProfileField validates text against the next missing profile field.
// Invalid input is reported through the result, never as an error.
func (o *Orchestrator) SubmitProfileField(text string) (CollectionResult, error) {
	o.mu.Lock()
	if err := o.requireStatusLocked(interview.StatusCollectingInfo); err != nil {
		o.mu.Unlock()
		return CollectionResult{}, err
	}

	session := o.session.Clone()
	field := session.Profile.MissingField()
	if field == interview.FieldNone {
		o.mu.Unlock()
		return CollectionResult{}, fmt.Errorf("%w: profile is already complete", ErrInvalidPhase)
	}

	value := strings.TrimSpace(text)
	if err := field.Validate(value); err != nil {
		o.mu.Unlock()
		return CollectionResult{Accepted: false, Field: field, Next: field, Message: err.Error()}, nil
	}

	session.Profile = field.Set(session.Profile, value)
	o.session = &session
	o.persistLocked()

	next := session.Profile.MissingField()
	o.sessionLogger(session).Debug("profile field collected",
		zap.String("field", string(field)),
		zap.String("next_field", string(next)),
	)

	profile := session.Profile
	o.enqueueLocked(func() {
		if o.callbacks.OnProfileUpdated != nil {
			o.callbacks.OnProfileUpdated(profile)
		}
	})
	o.mu.Unlock()

	o.drain()
	return CollectionResult{Accepted: true, Field: field, Next: next, Message: next.Prompt()}, nil
}

// ConfirmStart generates the question set and asks the warm-up question.
func (o *Orchestrator) ConfirmStart() error {
	o.mu.Lock()
	if err := o.requireStatusLocked(interview.StatusCollectingInfo); err != nil {
		o.mu.Unlock()
		return err
	}
	if !o.session.Profile.Complete() {
		o.mu.Unlock()
		return fmt.Errorf("%w: missing %s", ErrProfileIncomplete, o.session.Profile.MissingField())
	}

	session := o.session.Clone()
	session.Questions = o.questions.Generate()
	if len(session.Questions) == 0 {
		o.mu.Unlock()
		return errors.New("question source returned no questions")
	}
	started := o.now().UTC()
	session.Status = interview.StatusInProgress
	session.CurrentQuestionIndex = 0
	session.StartedAt = &started
	o.session = &session
	o.persistLocked()

	o.sessionLogger(session).Info("interview started", zap.Int("questions", len(session.Questions)))

	profile := session.Profile
	o.enqueueLocked(func() {
		if o.callbacks.OnInfoCollectionComplete != nil {
			o.callbacks.OnInfoCollectionComplete(profile)
		}
	})
	o.askLocked()
	o.mu.Unlock()

	o.drain()
	return nil
}

// SubmitAnswer records text as the answer to the current question.
func (o *Orchestrator) SubmitAnswer(text string) error {
	return o.submit("", text)
}

// SubmitAnswerFor records text only if questionID is still the current question.
func (o *Orchestrator) SubmitAnswerFor(questionID, text string) error {
	if questionID == "" {
		return fmt.Errorf("%w: question id is empty", ErrStaleQuestion)
	}
	return o.submit(questionID, text)
}

func (o *Orchestrator) submit(questionID, text string) error {
	o.mu.Lock()
	if err := o.requireStatusLocked(interview.StatusInProgress); err != nil {
		o.mu.Unlock()
		return err
	}

	answer := strings.TrimSpace(text)
	if answer == "" {
		o.mu.Unlock()
		return ErrEmptyAnswer
	}

	current, _ := o.session.Current()
	if questionID != "" && questionID != current.ID {
		o.mu.Unlock()
		return fmt.Errorf("%w: %s (current is %s)", ErrStaleQuestion, questionID, current.ID)
	}
	if current.Answered() {
		o.mu.Unlock()
		return fmt.Errorf("recording answer to %s: %w", current.ID, interview.ErrAlreadyAnswered)
	}

	o.stopCountdownLocked()
	err := o.recordLocked(answer, false)
	o.mu.Unlock()

	o.drain()
	return err
}

// SetDraft keeps the partially typed answer. It is recorded if the countdown
// expires before an answer is submitted.
func (o *Orchestrator) SetDraft(text string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.requireStatusLocked(interview.StatusInProgress); err != nil {
		return err
	}
	o.draft = text
	return nil
}

// Restart cancels the countdown and deletes the current session.
func (o *Orchestrator) Restart() error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return ErrClosed
	}

	o.stopCountdownLocked()
	o.draft = ""
	if o.session != nil {
		o.sessionLogger(*o.session).Info("interview session discarded")
	}
	o.session = nil
	if err := o.store.ClearCurrent(o.ctx); err != nil {
		o.logger.Error("clearing current session", zap.Error(err))
	}

	o.enqueueLocked(func() {
		if o.callbacks.OnRestart != nil {
			o.callbacks.OnRestart()
		}
	})
	o.mu.Unlock()

	o.drain()
	return nil
}

// Snapshot returns a deep copy of the session.
func (o *Orchestrator) Snapshot() (interview.Session, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.session == nil {
		return interview.Session{}, ErrSessionNotFound
	}
	return o.session.Clone(), nil
}

func (o *Orchestrator) Phase() Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.phaseLocked()
}

// Remaining returns the seconds left on the current question, 0 when no countdown runs.
func (o *Orchestrator) Remaining() int {
	return o.timer.Remaining()
}

// Close cancels the countdown. The session stays persisted for Resume.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.stopCountdownLocked()
	o.closed = true
}

func (o *Orchestrator) phaseLocked() Phase {
	if o.session == nil {
		return PhaseNoSession
	}
	switch o.session.Status {
	case interview.StatusCollectingInfo:
		if o.session.Profile.Complete() {
			return PhaseAwaitingStart
		}
		return PhaseCollecting
	case interview.StatusInProgress:
		return PhaseInterview
	default:
		return PhaseCompleted
	}
}

func (o *Orchestrator) requireStatusLocked(status interview.Status) error {
	switch {
	case o.closed:
		return ErrClosed
	case o.session == nil:
		return ErrSessionNotFound
	case o.session.Status == status:
		return nil
	case o.session.Status == interview.StatusCompleted:
		return ErrSessionCompleted
	default:
		return fmt.Errorf("%w: session is %s", ErrInvalidPhase, o.session.Status)
	}
}

// askLocked announces the current question and starts its countdown.
func (o *Orchestrator) askLocked() {
	session := *o.session
	q, ok := session.Current()
	if !ok {
		return
	}

	prompt := QuestionPrompt{
		Question: q,
		Index:    session.CurrentQuestionIndex,
		Number:   session.DisplayNumber(session.CurrentQuestionIndex),
		Total:    len(session.Scored()),
	}
	o.enqueueLocked(func() {
		if o.callbacks.OnQuestion != nil {
			o.callbacks.OnQuestion(prompt)
		}
	})

	o.activeToken = o.timer.Start(q.TimeLimitSeconds, o.onTick, o.onExpire)

	o.sessionLogger(session).Debug("question asked",
		append(logger.QuestionFields(q), zap.Int("time_limit", q.TimeLimitSeconds))...,
	)
}

func (o *Orchestrator) stopCountdownLocked() {
	o.timer.Cancel()
	o.activeToken = 0
}

// recordLocked stores the answer to the current question and either asks the
// next one or completes the session.
func (o *Orchestrator) recordLocked(answer string, timedOut bool) error {
	session := o.session.Clone()
	idx := session.CurrentQuestionIndex
	q := session.Questions[idx]

	score := 0
	if !q.IsDemo() {
		score = o.scorer.Score(q, answer)
	}
	answered, err := q.WithResult(answer, score)
	if err != nil {
		return fmt.Errorf("recording answer to %s: %w", q.ID, err)
	}

	session.Questions[idx] = answered
	session.CurrentQuestionIndex = idx + 1
	o.draft = ""

	result := AnswerResult{
		QuestionID: q.ID,
		Number:     session.DisplayNumber(idx),
		Answer:     answer,
		Score:      answered.ScoreValue(),
		TimedOut:   timedOut,
	}

	o.sessionLogger(session).Info("answer recorded",
		append(logger.QuestionFields(q),
			zap.Int("score", result.Score),
			zap.Bool("timed_out", timedOut),
			zap.String("answer_preview", utils.TruncateForLog(answer, answerPreviewLength)),
		)...,
	)

	o.enqueueLocked(func() {
		if o.callbacks.OnAnswerRecorded != nil {
			o.callbacks.OnAnswerRecorded(result)
		}
	})

	if session.CurrentQuestionIndex < len(session.Questions) {
		o.session = &session
		o.persistLocked()
		o.askLocked()
		return nil
	}

	o.stopCountdownLocked()
	final := session.AverageScore()
	completedAt := o.now().UTC()
	session.Status = interview.StatusCompleted
	session.FinalScore = &final
	session.CompletedAt = &completedAt
	o.session = &session
	o.persistLocked()

	o.sessionLogger(session).Info("interview completed", zap.Int("final_score", final))

	completed := session.Clone()
	o.enqueueLocked(func() { o.finish(completed) })
	return nil
}

// finish summarizes the completed session, stores it in the candidates list
// and notifies. It runs from the dispatch queue, outside the state lock.
func (o *Orchestrator) finish(completed interview.Session) {
	log := o.sessionLogger(completed)

	ctx, cancel := context.WithTimeout(o.ctx, o.summaryTimeout)
	summary, err := o.summarizer.Summarize(ctx, completed)
	cancel()
	if err != nil || strings.TrimSpace(summary) == "" {
		log.Warn("summary generation failed, using template summary", zap.Error(err))
		summary = ai.TemplateSummary(completed)
	}
	completed.Summary = summary

	o.mu.Lock()
	if o.session != nil && o.session.Profile.ID == completed.Profile.ID && o.session.Status == interview.StatusCompleted {
		updated := o.session.Clone()
		updated.Summary = summary
		o.session = &updated
		o.persistLocked()
	}
	o.mu.Unlock()

	if err := o.store.AppendCompleted(o.ctx, interview.CompletedSession{Session: completed}); err != nil {
		log.Error("saving completed interview", zap.Error(err))
	}

	if o.callbacks.OnInterviewComplete != nil {
		o.callbacks.OnInterviewComplete(completed.Clone())
	}
}

func (o *Orchestrator) onTick(token timer.Token, remaining int) {
	o.mu.Lock()
	if o.closed || token != o.activeToken || o.session == nil {
		o.mu.Unlock()
		return
	}
	q, ok := o.session.Current()
	if !ok {
		o.mu.Unlock()
		return
	}

	id := q.ID
	o.enqueueLocked(func() {
		if o.callbacks.OnTick != nil {
			o.callbacks.OnTick(id, remaining)
		}
	})
	o.mu.Unlock()

	o.drain()
}

func (o *Orchestrator) onExpire(token timer.Token) {
	o.mu.Lock()
	if o.closed || token != o.activeToken || o.session == nil || o.session.Status != interview.StatusInProgress {
		o.mu.Unlock()
		o.logger.Debug("ignoring stale countdown expiry", zap.Uint64("token", uint64(token)))
		return
	}

	o.activeToken = 0
	answer := strings.TrimSpace(o.draft)
	if answer == "" {
		answer = interview.TimeoutAnswer
	}
	if err := o.recordLocked(answer, true); err != nil {
		o.logger.Error("recording timed out answer", zap.Error(err))
	}
	o.mu.Unlock()

	o.drain()
}

func (o *Orchestrator) persistLocked() {
	if o.session == nil {
		return
	}
	if err := o.store.SaveCurrent(o.ctx, *o.session); err != nil {
		o.sessionLogger(*o.session).Error("saving current session", zap.Error(err))
	}
}

func (o *Orchestrator) enqueueLocked(fn func()) {
	o.queue = append(o.queue, fn)
}

// drain runs queued callbacks in order. Only one goroutine drains at a time;
// callbacks queued by a callback run after it returns.
func (o *Orchestrator) drain() {
	for {
		if !o.dispatchMu.TryLock() {
			return
		}
		for {
			o.mu.Lock()
			if len(o.queue) == 0 {
				o.mu.Unlock()
				break
			}
			fn := o.queue[0]
			o.queue = o.queue[1:]
			o.mu.Unlock()

			fn()
		}
		o.dispatchMu.Unlock()

		o.mu.Lock()
		pending := len(o.queue) > 0
		o.mu.Unlock()
		if !pending {
			return
		}
	}
}

func (o *Orchestrator) sessionLogger(s interview.Session) *zap.Logger {
	return logger.WithSession(o.logger, s)
}
