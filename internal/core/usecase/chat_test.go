package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/legalarch/docai/internal/core/domain"
	"github.com/legalarch/docai/internal/infrastructure/conversation"
)

type stubChatGenerator struct {
	response string
	delay    time.Duration
	prompts  []string
}

func (s *stubChatGenerator) GenerateChat(ctx context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(s.delay):
		}
	}
	return s.response, nil
}

func chatForTest(gen *stubChatGenerator, timeout time.Duration) (*ChatService, *conversation.Store) {
	store := conversation.NewStore(12)
	svc := NewChatService(gen, store, 500, 6, timeout, testLogger(), nil)
	return svc, store
}

func TestRespondAssignsConversationID(t *testing.T) {
	svc, store := chatForTest(&stubChatGenerator{response: "Hello, how can I help?"}, time.Minute)

	reply, err := svc.Respond(context.Background(), "hi there", "", "")
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if reply.ConversationID == "" {
		t.Fatal("no conversation id assigned")
	}
	if reply.Response != "Hello, how can I help?" {
		t.Fatalf("response %q", reply.Response)
	}

	history := store.History(reply.ConversationID)
	if len(history) != 2 || history[0].Role != domain.RoleUser || history[1].Role != domain.RoleAssistant {
		t.Fatalf("history = %+v", history)
	}
}

func TestRespondTruncatesLongMessage(t *testing.T) {
	gen := &stubChatGenerator{response: "ok"}
	svc, store := chatForTest(gen, time.Minute)

	long := strings.Repeat("x", 800)
	reply, err := svc.Respond(context.Background(), long, "c1", "")
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	stored := store.History(reply.ConversationID)[0].Content
	if len(stored) != 503 || !strings.HasSuffix(stored, "...") {
		t.Fatalf("stored message length %d", len(stored))
	}
	if !strings.Contains(gen.prompts[0], stored) {
		t.Fatal("prompt does not carry the truncated message")
	}
}

func TestRespondEmptyMessageRejected(t *testing.T) {
	svc, _ := chatForTest(&stubChatGenerator{}, time.Minute)
	if _, err := svc.Respond(context.Background(), "  ", "", ""); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want invalid-input kind", err)
	}
}

func TestRespondTimesOutWithApology(t *testing.T) {
	svc, store := chatForTest(&stubChatGenerator{response: "late", delay: time.Second}, 20*time.Millisecond)

	reply, err := svc.Respond(context.Background(), "slow question", "c1", "")
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if !reply.TimedOut {
		t.Fatal("reply not marked timed out")
	}
	if reply.Response != timeoutReply {
		t.Fatalf("response %q", reply.Response)
	}

	history := store.History("c1")
	if len(history) != 2 || history[1].Content != timeoutReply {
		t.Fatalf("history = %+v", history)
	}
}

func TestBuildPromptLayout(t *testing.T) {
	gen := &stubChatGenerator{response: "fine"}
	svc, _ := chatForTest(gen, time.Minute)

	for i := 0; i < 5; i++ {
		if _, err := svc.Respond(context.Background(), "question", "c1", ""); err != nil {
			t.Fatalf("Respond: %v", err)
		}
	}
	if _, err := svc.Respond(context.Background(), "latest question", "c1", "clause 4 says X"); err != nil {
		t.Fatalf("Respond: %v", err)
	}

	prompt := gen.prompts[len(gen.prompts)-1]
	if !strings.HasPrefix(prompt, "<|begin_of_text|><|start_header_id|>system<|end_header_id|>") {
		t.Fatalf("prompt start: %q", prompt[:60])
	}
	if !strings.Contains(prompt, "clause 4 says X") {
		t.Fatal("document context missing from prompt")
	}
	if !strings.HasSuffix(prompt, "<|start_header_id|>assistant<|end_header_id|>\n\n") {
		t.Fatalf("prompt end: %q", prompt[len(prompt)-60:])
	}
	// Five prior exchanges are ten messages; only the last six may appear.
	if got := strings.Count(prompt, "<|start_header_id|>user<|end_header_id|>"); got != 4 {
		t.Fatalf("user turns in prompt = %d, want 3 history + 1 new", got)
	}
}
