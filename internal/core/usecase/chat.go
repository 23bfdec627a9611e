package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/legalarch/docai/internal/core/domain"
	"github.com/legalarch/docai/internal/core/ports"
	"github.com/legalarch/docai/internal/observability/metrics"
)

const timeoutReply = "I apologize, but I'm taking too long to respond. Please try with a shorter message or try again later."

const chatSystemPrompt = "You are a helpful legal assistant for a document management system. " +
	"Answer questions about the user's legal documents clearly and concisely. " +
	"If document context is provided, ground your answer in it and say so when the context does not cover the question. " +
	"Do not give formal legal advice; recommend consulting a lawyer for decisions with legal consequences."

// ChatService answers user messages with conversation history and optional
// document context. Generation runs in the background so a slow model
// degrades to an apologetic reply instead of holding the request open.
type ChatService struct {
	generator ports.ChatGenerator
	store     ports.ConversationStore
	logger    *slog.Logger
	metrics   *metrics.ServiceMetrics

	maxMessageLength   int
	recentHistoryLimit int
	generationTimeout  time.Duration
}

func NewChatService(
	generator ports.ChatGenerator,
	store ports.ConversationStore,
	maxMessageLength, recentHistoryLimit int,
	generationTimeout time.Duration,
	logger *slog.Logger,
	m *metrics.ServiceMetrics,
) *ChatService {
	if logger == nil {
		logger = slog.Default()
	}
	if maxMessageLength <= 0 {
		maxMessageLength = 500
	}
	if recentHistoryLimit <= 0 {
		recentHistoryLimit = 6
	}
	if generationTimeout <= 0 {
		generationTimeout = 3 * time.Minute
	}
	return &ChatService{
		generator:          generator,
		store:              store,
		logger:             logger,
		metrics:            m,
		maxMessageLength:   maxMessageLength,
		recentHistoryLimit: recentHistoryLimit,
		generationTimeout:  generationTimeout,
	}
}

// Respond answers one message. The user turn is recorded before generation
// so history survives timeouts, and the assistant turn afterwards, timeout
// reply included.
func (s *ChatService) Respond(ctx context.Context, message, conversationID, documentContext string) (domain.ChatReply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return domain.ChatReply{}, domain.WrapError(domain.ErrInvalidInput, "chat respond",
			fmt.Errorf("empty message"))
	}
	if len(message) > s.maxMessageLength {
		message = strings.TrimSpace(message[:s.maxMessageLength]) + "..."
	}
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	history := s.store.History(conversationID)
	s.store.Append(conversationID, domain.RoleUser, message)

	prompt := s.buildPrompt(message, documentContext, history)
	start := time.Now()
	response, timedOut := s.generate(ctx, prompt)
	elapsed := time.Since(start)

	outcome := "ok"
	if timedOut {
		outcome = "timeout"
		response = timeoutReply
		s.logger.Warn("chat generation timed out",
			"conversation_id", conversationID, "elapsed", elapsed)
	}
	if s.metrics != nil {
		s.metrics.RecordChatGeneration(outcome, elapsed)
	}

	s.store.Append(conversationID, domain.RoleAssistant, response)
	return domain.ChatReply{
		Response:       response,
		ConversationID: conversationID,
		GenerationTime: elapsed.Seconds(),
		TimedOut:       timedOut,
	}, nil
}

// generate runs the model in a goroutine and gives up after the configured
// timeout. The goroutine keeps the model lock until the underlying call
// returns; later requests queue behind it.
func (s *ChatService) generate(ctx context.Context, prompt string) (string, bool) {
	genCtx, cancel := context.WithTimeout(ctx, s.generationTimeout)
	defer cancel()

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		text, err := s.generator.GenerateChat(genCtx, prompt)
		done <- result{text: text, err: err}
	}()

	select {
	case <-genCtx.Done():
		return "", true
	case res := <-done:
		if res.err != nil {
			s.logger.Error("chat generation failed", "error", res.err)
			return "I'm sorry, I ran into a problem answering that. Please try again.", false
		}
		return strings.TrimSpace(res.text), false
	}
}

// buildPrompt renders the llama3 chat template: system turn, optional
// document context folded into the system turn, then the recent history and
// the new user turn.
func (s *ChatService) buildPrompt(message, documentContext string, history []domain.ChatMessage) string {
	var b strings.Builder

	b.WriteString("<|begin_of_text|><|start_header_id|>system<|end_header_id|>\n\n")
	b.WriteString(chatSystemPrompt)
	if documentContext = strings.TrimSpace(documentContext); documentContext != "" {
		b.WriteString("\n\nRelevant document context:\n")
		b.WriteString(documentContext)
	}
	b.WriteString("<|eot_id|>")

	recent := history
	if len(recent) > s.recentHistoryLimit {
		recent = recent[len(recent)-s.recentHistoryLimit:]
	}
	for _, turn := range recent {
		role := domain.RoleUser
		if turn.Role == domain.RoleAssistant {
			role = domain.RoleAssistant
		}
		fmt.Fprintf(&b, "<|start_header_id|>%s<|end_header_id|>\n\n%s<|eot_id|>", role, turn.Content)
	}

	fmt.Fprintf(&b, "<|start_header_id|>user<|end_header_id|>\n\n%s<|eot_id|>", message)
	b.WriteString("<|start_header_id|>assistant<|end_header_id|>\n\n")
	return b.String()
}
