package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/legalarch/docai/internal/core/domain"
)

type stubGenerator struct {
	name   string
	output string
	err    error
	calls  int
}

func (s *stubGenerator) Name() string { return s.name }

func (s *stubGenerator) Generate(_ context.Context, _ domain.Field, _ string) (string, error) {
	s.calls++
	return s.output, s.err
}

func testLogger() *slog.Logger { return slog.New(slog.DiscardHandler) }

func TestGenerateFieldFirstAcceptedWins(t *testing.T) {
	first := &stubGenerator{name: "hosted", output: "Employment Contract Termination Notice"}
	second := &stubGenerator{name: "local", output: "should not be reached"}
	chain := NewGenerationChain(testLogger(), nil, first, second)

	got, attempts := chain.GenerateField(context.Background(), domain.FieldTitle, "text")
	if got != "Employment Contract Termination Notice" {
		t.Fatalf("got %q", got)
	}
	if second.calls != 0 {
		t.Fatal("second generator invoked after acceptance")
	}
	if len(attempts) != 1 || !attempts[0].Accept {
		t.Fatalf("attempts = %+v", attempts)
	}
}

func TestGenerateFieldFallsThroughOnErrorAndRejection(t *testing.T) {
	failed := &stubGenerator{name: "hosted", err: errors.New("rate limited")}
	refusing := &stubGenerator{name: "local", output: "I cannot help with legal documents"}
	terminal := &stubGenerator{name: "rule-based", output: "Criminal Defense Practice Manual"}
	chain := NewGenerationChain(testLogger(), nil, failed, refusing, terminal)

	got, attempts := chain.GenerateField(context.Background(), domain.FieldTitle, "text")
	if got != "Criminal Defense Practice Manual" {
		t.Fatalf("got %q", got)
	}
	if len(attempts) != 3 {
		t.Fatalf("attempt trail %+v", attempts)
	}
	if attempts[0].Accept || attempts[1].Accept || !attempts[2].Accept {
		t.Fatalf("verdicts wrong: %+v", attempts)
	}
	if attempts[1].Reason != "refusal phrase" {
		t.Fatalf("rejection reason %q", attempts[1].Reason)
	}
}

func TestGenerateFieldTerminalOutputKeptDespiteValidation(t *testing.T) {
	terminal := &stubGenerator{name: "rule-based", output: "Legal Document"}
	chain := NewGenerationChain(testLogger(), nil, terminal)

	got, attempts := chain.GenerateField(context.Background(), domain.FieldTitle, "text")
	if got != "Legal Document" {
		t.Fatalf("got %q", got)
	}
	if len(attempts) != 1 || !attempts[0].Accept {
		t.Fatalf("attempts = %+v", attempts)
	}
}

func TestGenerateFieldCapsLongOutput(t *testing.T) {
	long := strings.Repeat("agreement between the parties ", 30)
	gen := &stubGenerator{name: "hosted", output: long}
	chain := NewGenerationChain(testLogger(), nil, gen, &stubGenerator{name: "rule-based", output: "fallback title here"})

	got, _ := chain.GenerateField(context.Background(), domain.FieldDescription, "text")
	if len(got) > domain.MaxDescriptionLength+3 {
		t.Fatalf("description length %d over cap", len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("capped output missing ellipsis: %q", got[len(got)-10:])
	}
	if strings.HasSuffix(strings.TrimSuffix(got, "..."), " ") {
		t.Fatal("truncation split mid-word boundary handling")
	}
}

func TestNewGenerationChainSkipsNilGenerators(t *testing.T) {
	terminal := &stubGenerator{name: "rule-based", output: "deterministic fallback output"}
	chain := NewGenerationChain(testLogger(), nil, nil, terminal)

	if got := chain.Backends(); len(got) != 1 || got[0] != "rule-based" {
		t.Fatalf("backends = %v", got)
	}
}
