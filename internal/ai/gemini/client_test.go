package gemini

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

type fakeReply struct {
	resp *genai.GenerateContentResponse
	err  error
}

type fakeChat struct {
	reply    fakeReply
	messages []string
}

func (f *fakeChat) SendMessage(_ context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	for _, part := range parts {
		f.messages = append(f.messages, part.Text)
	}
	return f.reply.resp, f.reply.err
}

type chatCall struct {
	model  string
	config *genai.GenerateContentConfig
	chat   *fakeChat
}

type fakeChats struct {
	mu      sync.Mutex
	replies []fakeReply
	calls   []chatCall
}

func (f *fakeChats) push(resp *genai.GenerateContentResponse, err error) {
	f.replies = append(f.replies, fakeReply{resp: resp, err: err})
}

func (f *fakeChats) Create(_ context.Context, model string, config *genai.GenerateContentConfig, _ []*genai.Content) (chatSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.replies) == 0 {
		return nil, errors.New("unexpected call")
	}
	chat := &fakeChat{reply: f.replies[0]}
	f.replies = f.replies[1:]
	f.calls = append(f.calls, chatCall{model: model, config: config, chat: chat})
	return chat, nil
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func stubSleep(t *testing.T) *[]time.Duration {
	t.Helper()
	original := sleep
	var delays []time.Duration
	sleep = func(d time.Duration) { delays = append(delays, d) }
	t.Cleanup(func() { sleep = original })
	return &delays
}

func TestGeneratorRetriesOnTemporaryError(t *testing.T) {
	delays := stubSleep(t)

	chats := &fakeChats{}
	chats.push(nil, genai.APIError{Code: http.StatusServiceUnavailable, Status: "UNAVAILABLE"})
	chats.push(textResponse("  retry ok "), nil)

	g := &Generator{chats: chats, model: "gemini-test", maxRetries: 3, logger: zap.NewNop()}

	output, err := g.GenerateContent(context.Background(), "system prompt", "session json")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if output != "retry ok" {
		t.Fatalf("unexpected output: %q", output)
	}
	if len(chats.calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(chats.calls))
	}
	if len(*delays) != 1 || (*delays)[0] != baseRetryDelay {
		t.Fatalf("expected one base delay, got %v", *delays)
	}

	for _, call := range chats.calls {
		if call.model != "gemini-test" {
			t.Fatalf("unexpected model %q", call.model)
		}
		if call.config == nil || call.config.SystemInstruction == nil {
			t.Fatalf("expected system instruction to be set")
		}
		if got := call.config.SystemInstruction.Parts[0].Text; got != "system prompt" {
			t.Fatalf("unexpected system instruction: %q", got)
		}
		if len(call.chat.messages) != 1 || call.chat.messages[0] != "session json" {
			t.Fatalf("unexpected chat message: %+v", call.chat.messages)
		}
	}
}

func TestGeneratorStopsAfterRetriesExhausted(t *testing.T) {
	stubSleep(t)

	chats := &fakeChats{}
	tempErr := genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"}
	chats.push(nil, tempErr)
	chats.push(nil, tempErr)

	g := &Generator{chats: chats, model: "gemini-test", maxRetries: 2, logger: zap.NewNop()}

	_, err := g.GenerateContent(context.Background(), "", "msg")
	if err == nil {
		t.Fatal("expected error after retries exhausted")
	}
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != http.StatusInternalServerError {
		t.Fatalf("expected wrapped api error, got %v", err)
	}
	if len(chats.calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(chats.calls))
	}
	if chats.calls[0].config != nil {
		t.Fatalf("empty system prompt must not set a config")
	}
}

func TestGeneratorDoesNotRetryOnLongQuotaDelay(t *testing.T) {
	stubSleep(t)

	chats := &fakeChats{}
	chats.push(nil, genai.APIError{
		Code:    http.StatusTooManyRequests,
		Status:  "RESOURCE_EXHAUSTED",
		Message: "quota exhausted, retry after 60 seconds",
	})

	g := &Generator{chats: chats, model: "gemini-test", maxRetries: 3, logger: zap.NewNop()}

	if _, err := g.GenerateContent(context.Background(), "sys", "msg"); err == nil {
		t.Fatal("expected error when quota delay too long")
	}
	if len(chats.calls) != 1 {
		t.Fatalf("expected single call, got %d", len(chats.calls))
	}
}

func TestGeneratorDoesNotRetryPermanentError(t *testing.T) {
	stubSleep(t)

	chats := &fakeChats{}
	chats.push(nil, genai.APIError{Code: http.StatusBadRequest, Status: "INVALID_ARGUMENT"})

	g := &Generator{chats: chats, model: "gemini-test", maxRetries: 5, logger: zap.NewNop()}

	if _, err := g.GenerateContent(context.Background(), "sys", "msg"); err == nil {
		t.Fatal("expected error")
	}
	if len(chats.calls) != 1 {
		t.Fatalf("expected single call, got %d", len(chats.calls))
	}
}

func TestGeneratorRejectsEmptyInput(t *testing.T) {
	g := &Generator{chats: &fakeChats{}, model: "gemini-test", logger: zap.NewNop()}
	if _, err := g.GenerateContent(context.Background(), "sys", "   "); err == nil {
		t.Fatal("expected error for empty message")
	}

	var nilGen *Generator
	if _, err := nilGen.GenerateContent(context.Background(), "sys", "msg"); err == nil {
		t.Fatal("expected error for nil generator")
	}
}

func TestGeneratorEmptyResponse(t *testing.T) {
	chats := &fakeChats{}
	chats.push(textResponse("   "), nil)

	g := &Generator{chats: chats, model: "gemini-test", maxRetries: 1, logger: zap.NewNop()}
	if _, err := g.GenerateContent(context.Background(), "sys", "msg"); err == nil {
		t.Fatal("expected error for empty response")
	}
}

func TestRetryDelay(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		attempt int
		delay   time.Duration
		retry   bool
	}{
		{name: "plain error", err: errors.New("boom"), attempt: 1},
		{name: "backoff grows", err: genai.APIError{Code: http.StatusBadGateway}, attempt: 3, delay: 4 * time.Second, retry: true},
		{name: "backoff capped", err: genai.APIError{Status: "UNAVAILABLE"}, attempt: 10, delay: maxRetryDelay, retry: true},
		{name: "short requested delay", err: genai.APIError{Code: http.StatusTooManyRequests, Message: "Please retry in 2.5s."}, attempt: 1, delay: 2500 * time.Millisecond, retry: true},
		{name: "pointer error", err: &genai.APIError{Code: http.StatusGatewayTimeout}, attempt: 1, delay: baseRetryDelay, retry: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delay, retry := retryDelay(tt.err, tt.attempt)
			if retry != tt.retry || delay != tt.delay {
				t.Fatalf("expected (%s, %v), got (%s, %v)", tt.delay, tt.retry, delay, retry)
			}
		})
	}
}
