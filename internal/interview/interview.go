package interview

import (
	"time"
)

const (
	// DemoQuestionID marks the warm-up question. It is always scored 0 and
	// never counted in aggregates.
	DemoQuestionID = "demo"
	// TimeoutAnswer is recorded when the countdown expires without an answer.
	TimeoutAnswer = "No answer provided"
)

type Status string

const (
	StatusCollectingInfo Status = "collecting_info"
	StatusInProgress     Status = "in_progress"
	StatusCompleted      Status = "completed"
)

type Difficulty string

const (
	Easy   Difficulty = "Easy"
	Medium Difficulty = "Medium"
	Hard   Difficulty = "Hard"
)

// Difficulties lists the tiers in administration order.
var Difficulties = []Difficulty{Easy, Medium, Hard}

type CandidateProfile struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	ResumeText     string    `json:"resumeText"`
	ResumeFileName string    `json:"resumeFileName"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Complete reports whether all fields required to start an interview are filled.
func (p CandidateProfile) Complete() bool {
	return p.MissingField() == FieldNone
}

// MissingField returns the next field to collect, in order name, email, phone.
func (p CandidateProfile) MissingField() Field {
	switch {
	case p.Name == "":
		return FieldName
	case p.Email == "":
		return FieldEmail
	case p.Phone == "":
		return FieldPhone
	default:
		return FieldNone
	}
}

// FirstName returns the first token of the candidate name.
func (p CandidateProfile) FirstName() string {
	for i, r := range p.Name {
		if r == ' ' {
			return p.Name[:i]
		}
	}
	return p.Name
}

type Question struct {
	ID               string     `json:"id"`
	Text             string     `json:"question"`
	Difficulty       Difficulty `json:"difficulty"`
	TimeLimitSeconds int        `json:"timeLimit"`
	IsCoding         bool       `json:"isCoding,omitempty"`
	ExpectedKeywords []string   `json:"expectedKeywords,omitempty"`
	Answer           *string    `json:"answer,omitempty"`
	Score            *int       `json:"score,omitempty"`
}

// IsDemo reports whether the question is the unscored warm-up.
func (q Question) IsDemo() bool {
	return q.ID == DemoQuestionID
}

// Answered reports whether an answer and score were recorded.
func (q Question) Answered() bool {
	return q.Answer != nil && q.Score != nil
}

// WithResult returns a copy of the question carrying the answer and score.
// The demo question is always stored with a score of 0.
func (q Question) WithResult(answer string, score int) (Question, error) {
	if q.Answer != nil || q.Score != nil {
		return q, ErrAlreadyAnswered
	}
	if q.IsDemo() {
		score = 0
	}
	q.ExpectedKeywords = cloneStrings(q.ExpectedKeywords)
	q.Answer = &answer
	q.Score = &score
	return q, nil
}

// ScoreValue returns the recorded score or 0 when unanswered.
func (q Question) ScoreValue() int {
	if q.Score == nil {
		return 0
	}
	return *q.Score
}

// AnswerValue returns the recorded answer or an empty string.
func (q Question) AnswerValue() string {
	if q.Answer == nil {
		return ""
	}
	return *q.Answer
}

func (q Question) clone() Question {
	q.ExpectedKeywords = cloneStrings(q.ExpectedKeywords)
	if q.Answer != nil {
		a := *q.Answer
		q.Answer = &a
	}
	if q.Score != nil {
		s := *q.Score
		q.Score = &s
	}
	return q
}

type Session struct {
	Profile              CandidateProfile `json:"profile"`
	CurrentQuestionIndex int              `json:"currentQuestion"`
	Questions            []Question       `json:"questions"`
	Status               Status           `json:"status"`
	FinalScore           *int             `json:"finalScore,omitempty"`
	Summary              string           `json:"summary,omitempty"`
	StartedAt            *time.Time       `json:"startedAt,omitempty"`
	CompletedAt          *time.Time       `json:"completedAt,omitempty"`
}

// CompletedSession is the record appended to the completed candidates list.
type CompletedSession struct {
	Session
}

// NewSession creates a session in the collecting phase.
func NewSession(profile CandidateProfile) Session {
	return Session{
		Profile:   profile,
		Questions: []Question{},
		Status:    StatusCollectingInfo,
	}
}

// Clone returns a deep copy of the session.
func (s Session) Clone() Session {
	out := s
	out.Questions = make([]Question, len(s.Questions))
	for i, q := range s.Questions {
		out.Questions[i] = q.clone()
	}
	if s.FinalScore != nil {
		v := *s.FinalScore
		out.FinalScore = &v
	}
	if s.StartedAt != nil {
		v := *s.StartedAt
		out.StartedAt = &v
	}
	if s.CompletedAt != nil {
		v := *s.CompletedAt
		out.CompletedAt = &v
	}
	return out
}

// Current returns the question at CurrentQuestionIndex.
func (s Session) Current() (Question, bool) {
	if s.Status != StatusInProgress {
		return Question{}, false
	}
	if s.CurrentQuestionIndex < 0 || s.CurrentQuestionIndex >= len(s.Questions) {
		return Question{}, false
	}
	return s.Questions[s.CurrentQuestionIndex], true
}

// Scored returns the questions counted in aggregates.
func (s Session) Scored() []Question {
	scored := make([]Question, 0, len(s.Questions))
	for _, q := range s.Questions {
		if q.IsDemo() {
			continue
		}
		scored = append(scored, q)
	}
	return scored
}

// TotalScore sums scores of non-demo questions.
func (s Session) TotalScore() int {
	total := 0
	for _, q := range s.Scored() {
		total += q.ScoreValue()
	}
	return total
}

// AverageScore is the rounded mean score over non-demo questions, 0 if none.
func (s Session) AverageScore() int {
	scored := s.Scored()
	if len(scored) == 0 {
		return 0
	}
	return RoundHalfUp(float64(s.TotalScore()) / float64(len(scored)))
}

// DisplayNumber returns the 1-based ordinal of a question among scored
// questions. The demo question has ordinal 0.
func (s Session) DisplayNumber(index int) int {
	if index < 0 || index >= len(s.Questions) || s.Questions[index].IsDemo() {
		return 0
	}
	n := 0
	for _, q := range s.Questions[:index+1] {
		if !q.IsDemo() {
			n++
		}
	}
	return n
}

// FinalScoreValue returns the final score or 0 when the session is not completed.
func (s Session) FinalScoreValue() int {
	if s.FinalScore == nil {
		return 0
	}
	return *s.FinalScore
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
