package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spigell/interviewer/internal/interview"
	"github.com/spigell/interviewer/internal/orchestrator"
)

// eventBuffer must hold every callback fired while the terminal goroutine
// itself is inside an orchestrator call.
const eventBuffer = 64

type questionEvent struct {
	prompt orchestrator.QuestionPrompt
}

type tickEvent struct {
	questionID string
	remaining  int
}

type answerEvent struct {
	result orchestrator.AnswerResult
}

type completeEvent struct {
	session interview.Session
}

type lineResult struct {
	text string
	// err is io.EOF once the input is closed.
	err error
}

// lineReader reads one line per request. Between requests it does not touch
// the input, so interactive prompts can use it.
type lineReader struct {
	requests chan struct{}
	lines    chan lineResult
	pending  bool
}

func newLineReader(in io.Reader) *lineReader {
	r := &lineReader{
		requests: make(chan struct{}),
		lines:    make(chan lineResult, 1),
	}
	go r.loop(bufio.NewScanner(in))
	return r
}

func (r *lineReader) loop(scanner *bufio.Scanner) {
	for range r.requests {
		if scanner.Scan() {
			r.lines <- lineResult{text: scanner.Text()}
			continue
		}
		err := scanner.Err()
		if err == nil {
			err = io.EOF
		}
		r.lines <- lineResult{err: err}
	}
}

// request starts reading a line unless a read is already outstanding.
func (r *lineReader) request() {
	if r.pending {
		return
	}
	r.pending = true
	r.requests <- struct{}{}
}

func (r *lineReader) received() {
	r.pending = false
}

// terminal presents one orchestrator on a line-oriented terminal.
type terminal struct {
	out    io.Writer
	orch   *orchestrator.Orchestrator
	reader *lineReader
	events chan any
	// pace is the pause before the first question.
	pace time.Duration
}

func newTerminal(out io.Writer, in io.Reader) *terminal {
	return &terminal{
		out:    out,
		reader: newLineReader(in),
		events: make(chan any, eventBuffer),
	}
}

func (t *terminal) callbacks() orchestrator.Callbacks {
	return orchestrator.Callbacks{
		OnQuestion: func(prompt orchestrator.QuestionPrompt) {
			t.events <- questionEvent{prompt: prompt}
		},
		OnTick: func(questionID string, remaining int) {
			if remaining == 10 || remaining == 5 {
				t.events <- tickEvent{questionID: questionID, remaining: remaining}
			}
		},
		OnAnswerRecorded: func(result orchestrator.AnswerResult) {
			t.events <- answerEvent{result: result}
		},
		OnInterviewComplete: func(session interview.Session) {
			t.events <- completeEvent{session: session}
		},
	}
}

// interview asks questions and submits answer lines until the session completes.
// A line is attributed to the last question shown; if the orchestrator has
// already moved on, the line is rejected as stale.
func (t *terminal) interview(ctx context.Context) (interview.Session, error) {
	var current string
	for {
		select {
		case <-ctx.Done():
			return interview.Session{}, ctx.Err()

		case ev := <-t.events:
			switch ev := ev.(type) {
			case questionEvent:
				current = ev.prompt.Question.ID
				t.printQuestion(ev.prompt)
				t.reader.request()
			case tickEvent:
				if ev.questionID == current {
					fmt.Fprintf(t.out, "  ... %d seconds left\n", ev.remaining)
				}
			case answerEvent:
				t.printAnswer(ev.result)
			case completeEvent:
				return ev.session, nil
			}

		case line := <-t.reader.lines:
			t.reader.received()
			if line.err != nil {
				return interview.Session{}, fmt.Errorf("reading answer: %w", line.err)
			}

			err := t.orch.SubmitAnswerFor(current, line.text)
			switch {
			case err == nil:
			case errors.Is(err, orchestrator.ErrEmptyAnswer):
				fmt.Fprintln(t.out, "Please type an answer before pressing Enter.")
				t.reader.request()
			case errors.Is(err, orchestrator.ErrStaleQuestion):
				fmt.Fprintln(t.out, "That answer arrived after the time ran out and was not recorded.")
				t.reader.request()
			default:
				return interview.Session{}, err
			}
		}
	}
}

// settle waits for an outstanding line read, so the input is free again.
func (t *terminal) settle(ctx context.Context) error {
	if !t.reader.pending {
		return nil
	}
	fmt.Fprintln(t.out, "Press Enter to continue.")
	select {
	case <-ctx.Done():
		return ctx.Err()
	case line := <-t.reader.lines:
		t.reader.received()
		if line.err != nil && !errors.Is(line.err, io.EOF) {
			return line.err
		}
		return nil
	}
}

func (t *terminal) printQuestion(p orchestrator.QuestionPrompt) {
	q := p.Question
	fmt.Fprintln(t.out)
	if q.IsDemo() {
		fmt.Fprintf(t.out, "Warm-up question (not scored, %ds)\n", q.TimeLimitSeconds)
	} else {
		kind := string(q.Difficulty)
		if q.IsCoding {
			kind += ", coding"
		}
		fmt.Fprintf(t.out, "Question %d of %d (%s, %ds)\n", p.Number, p.Total, kind, q.TimeLimitSeconds)
	}
	fmt.Fprintln(t.out, q.Text)
	fmt.Fprint(t.out, "> ")
}

func (t *terminal) printAnswer(r orchestrator.AnswerResult) {
	switch {
	case r.TimedOut:
		fmt.Fprintln(t.out, "\nTime's up! Moving on.")
	case r.Number == 0:
		fmt.Fprintln(t.out, "Warm-up done. The scored questions start now.")
	default:
		fmt.Fprintln(t.out, "Answer recorded.")
	}
}

func (t *terminal) printResult(session interview.Session) {
	fmt.Fprintln(t.out)
	fmt.Fprintf(t.out, "Interview Complete! Your final score is %d/100\n", session.FinalScoreValue())
	if summary := strings.TrimSpace(session.Summary); summary != "" {
		fmt.Fprintln(t.out)
		fmt.Fprintln(t.out, summary)
	}
	fmt.Fprintln(t.out)
}
