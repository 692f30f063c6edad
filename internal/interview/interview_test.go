package interview

import (
	"errors"
	"testing"
)

func TestFieldValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		field   Field
		input   string
		wantErr error
	}{
		{name: "single token name", field: FieldName, input: "John", wantErr: ErrInvalidName},
		{name: "full name", field: FieldName, input: "John Smith"},
		{name: "name with extra spaces", field: FieldName, input: "John   Ronald Smith"},
		{name: "email without tld", field: FieldEmail, input: "john@example", wantErr: ErrInvalidEmail},
		{name: "email with spaces", field: FieldEmail, input: "john smith@example.com", wantErr: ErrInvalidEmail},
		{name: "email", field: FieldEmail, input: "john.smith@example.co.uk"},
		{name: "short phone", field: FieldPhone, input: "12345", wantErr: ErrInvalidPhone},
		{name: "phone with dashes", field: FieldPhone, input: "555-123-4567", wantErr: ErrInvalidPhone},
		{name: "eleven digits", field: FieldPhone, input: "15551234567", wantErr: ErrInvalidPhone},
		{name: "phone", field: FieldPhone, input: "5551234567"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.field.Validate(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestProfileMissingField(t *testing.T) {
	p := CandidateProfile{}
	if got := p.MissingField(); got != FieldName {
		t.Fatalf("expected name first, got %q", got)
	}

	p.Name = "John Smith"
	if got := p.MissingField(); got != FieldEmail {
		t.Fatalf("expected email, got %q", got)
	}

	p = FieldEmail.Set(p, "john@example.com")
	p = FieldPhone.Set(p, "5551234567")
	if !p.Complete() {
		t.Fatalf("expected complete profile, missing %q", p.MissingField())
	}

	if p.FirstName() != "John" {
		t.Fatalf("unexpected first name %q", p.FirstName())
	}
}

func TestQuestionWithResult(t *testing.T) {
	q := Question{ID: "easy-1", Difficulty: Easy}

	answered, err := q.WithResult("closures capture scope", 55)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Answered() {
		t.Fatalf("original question must stay untouched")
	}
	if !answered.Answered() || answered.ScoreValue() != 55 {
		t.Fatalf("unexpected result: %+v", answered)
	}

	if _, err := answered.WithResult("again", 10); !errors.Is(err, ErrAlreadyAnswered) {
		t.Fatalf("expected ErrAlreadyAnswered, got %v", err)
	}

	demo, err := Question{ID: DemoQuestionID}.WithResult("Go, because it is simple", 90)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if demo.ScoreValue() != 0 {
		t.Fatalf("demo score must be 0, got %d", demo.ScoreValue())
	}
	if demo.AnswerValue() == "" {
		t.Fatalf("demo answer must be recorded")
	}
}

func TestSessionAggregates(t *testing.T) {
	s := NewSession(CandidateProfile{Name: "Jane Roe"})
	s.Status = StatusInProgress
	s.Questions = []Question{{ID: DemoQuestionID}}
	for i, score := range []int{80, 60, 90, 70, 50, 100} {
		q, err := Question{ID: string(rune('a' + i))}.WithResult("answer", score)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		s.Questions = append(s.Questions, q)
	}

	if got := s.AverageScore(); got != 75 {
		t.Fatalf("expected average 75, got %d", got)
	}
	if got := s.TotalScore(); got != 450 {
		t.Fatalf("expected total 450, got %d", got)
	}
	if got := s.DisplayNumber(0); got != 0 {
		t.Fatalf("demo must have ordinal 0, got %d", got)
	}
	if got := s.DisplayNumber(3); got != 3 {
		t.Fatalf("expected ordinal 3, got %d", got)
	}

	clone := s.Clone()
	*clone.Questions[1].Score = 0
	if s.Questions[1].ScoreValue() != 80 {
		t.Fatalf("clone must not alias question scores")
	}

	if got := NewSession(CandidateProfile{}).AverageScore(); got != 0 {
		t.Fatalf("expected 0 without questions, got %d", got)
	}
}

func TestRoundHalfUp(t *testing.T) {
	t.Parallel()

	cases := map[float64]int{0.5: 1, 1.49: 1, 74.5: 75, 2.5: 3, -0.4: 0}
	for in, want := range cases {
		if got := RoundHalfUp(in); got != want {
			t.Fatalf("RoundHalfUp(%v) = %d, want %d", in, got, want)
		}
	}
}
