// Package bootstrap wires each service's dependency graph and owns the HTTP
// server lifecycle.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	httpadapter "github.com/legalarch/docai/internal/adapters/http"
	"github.com/legalarch/docai/internal/config"
	"github.com/legalarch/docai/internal/core/ports"
	"github.com/legalarch/docai/internal/core/usecase"
	"github.com/legalarch/docai/internal/infrastructure/backend/laravel"
	"github.com/legalarch/docai/internal/infrastructure/conversation"
	"github.com/legalarch/docai/internal/infrastructure/extractor/document"
	"github.com/legalarch/docai/internal/infrastructure/generation/rulebased"
	"github.com/legalarch/docai/internal/infrastructure/heuristics"
	"github.com/legalarch/docai/internal/infrastructure/llm/hosted"
	"github.com/legalarch/docai/internal/infrastructure/llm/ollama"
	"github.com/legalarch/docai/internal/infrastructure/ocr"
	"github.com/legalarch/docai/internal/infrastructure/ocr/paddle"
	"github.com/legalarch/docai/internal/infrastructure/ocr/tesseract"
	"github.com/legalarch/docai/internal/infrastructure/rasterize/fitz"
	"github.com/legalarch/docai/internal/infrastructure/resilience"
	"github.com/legalarch/docai/internal/infrastructure/storage"
	"github.com/legalarch/docai/internal/observability/logging"
	"github.com/legalarch/docai/internal/observability/metrics"
)

// App is one runnable service: its handler, its address and its logger.
type App struct {
	Name    string
	Addr    string
	Handler http.Handler
	Logger  *slog.Logger

	cleanup []func() error
}

// NewExtractionService wires the text-extraction service: format readers,
// the OCR engine selector and the PDF rasterizer.
func NewExtractionService(cfg config.Config) (*App, error) {
	logger := logging.Setup("extraction", cfg.LogLevel)
	m := metrics.NewServiceMetrics("extraction")
	app := &App{Name: "extraction", Addr: net.JoinHostPort("", cfg.ExtractionPort), Logger: logger}

	var printed, handwritten ports.OCREngine
	if cfg.TesseractEnabled {
		engine, err := tesseract.New(cfg.TesseractLanguage)
		if err != nil {
			logger.Warn("tesseract unavailable, printed pages degrade to the handwriting engine", "error", err)
		} else {
			printed = engine
			app.cleanup = append(app.cleanup, engine.Close)
		}
	}
	if cfg.PaddleOCRURL != "" {
		handwritten = paddle.New(cfg.PaddleOCRURL, cfg.OCRMinConfidence)
	}
	if printed == nil && handwritten == nil {
		logger.Warn("no ocr engine configured, scanned documents will extract empty")
	}

	selector := ocr.NewSelector(printed, handwritten, logger, m)
	extractor := document.NewService(fitz.New(), selector, cfg.OCRDPI, cfg.OCRMaxPages, logger, m)

	router := httpadapter.NewExtractionRouter(extractor, logger)
	app.Handler = httpadapter.Wrap(router.Handler(m), logger, m, cfg.APIRateLimitRPS, cfg.APIRateLimitBurst)
	return app, nil
}

// NewEmbeddingService wires the embedding service on top of Ollama.
func NewEmbeddingService(cfg config.Config) (*App, error) {
	logger := logging.Setup("embedding", cfg.LogLevel)
	m := metrics.NewServiceMetrics("embedding")

	executor := resilience.NewExecutor(resilience.DefaultPolicy())
	client := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, executor)
	embedder := ollama.NewEmbedder(client)

	router := httpadapter.NewEmbeddingRouter(embedder, cfg.OllamaEmbedModel, logger)
	return &App{
		Name:    "embedding",
		Addr:    net.JoinHostPort("", cfg.EmbeddingPort),
		Handler: httpadapter.Wrap(router.Handler(m), logger, m, cfg.APIRateLimitRPS, cfg.APIRateLimitBurst),
		Logger:  logger,
	}, nil
}

// NewBridgeService wires the AI bridge: the generation fallback chain, the
// suggestion scorer, the backend client and semantic search.
func NewBridgeService(cfg config.Config) (*App, error) {
	logger := logging.Setup("bridge", cfg.LogLevel)
	m := metrics.NewServiceMetrics("bridge")

	tables, err := heuristics.Load(cfg.HeuristicsPath)
	if err != nil {
		return nil, fmt.Errorf("load heuristics: %w", err)
	}

	// Local generations are expensive; no retry, breaker only.
	genExecutor := resilience.NewExecutor(resilience.SingleAttemptPolicy())
	client := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, genExecutor)

	ruleBased := rulebased.New(tables)
	generators := make([]ports.FieldGenerator, 0, 3)
	if hostedGen := hosted.New(cfg.HostedLLMBaseURL, cfg.HostedLLMAPIKey, cfg.HostedLLMModel, cfg.HostedLLMTimeout); hostedGen != nil {
		generators = append(generators, hostedGen)
	}
	generators = append(generators, ollama.NewGenerator(client), ruleBased)
	chain := usecase.NewGenerationChain(logger, m, generators...)

	backendExecutor := resilience.NewExecutor(resilience.DefaultPolicy())
	backend := laravel.New(cfg.BackendBaseURL, cfg.BackendTimeout, backendExecutor)

	analyzer := usecase.NewAnalyzer(
		backend,
		chain,
		usecase.NewSuggester(tables),
		ruleBased,
		ollama.NewEmbedder(client),
		storage.NewRelocator(cfg.StorageRoot),
		cfg.MinAnalyzableLength,
		cfg.SearchScoreCutoff,
		logger,
	)

	router := httpadapter.NewBridgeRouter(analyzer, client, chain.Backends(), logger)
	return &App{
		Name:    "bridge",
		Addr:    net.JoinHostPort("", cfg.BridgePort),
		Handler: httpadapter.Wrap(router.Handler(m), logger, m, cfg.APIRateLimitRPS, cfg.APIRateLimitBurst),
		Logger:  logger,
	}, nil
}

// NewChatbotService wires the conversational assistant.
func NewChatbotService(cfg config.Config) (*App, error) {
	logger := logging.Setup("chatbot", cfg.LogLevel)
	m := metrics.NewServiceMetrics("chatbot")

	executor := resilience.NewExecutor(resilience.SingleAttemptPolicy())
	client := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, executor)
	store := conversation.NewStore(cfg.MaxHistoryMessages)

	assistant := usecase.NewChatService(
		ollama.NewGenerator(client),
		store,
		cfg.MaxMessageLength,
		cfg.RecentHistoryLimit,
		cfg.GenerationTimeout,
		logger,
		m,
	)

	router := httpadapter.NewChatbotRouter(assistant, store, cfg.OllamaGenModel, logger)
	return &App{
		Name:    "chatbot",
		Addr:    net.JoinHostPort("", cfg.ChatbotPort),
		Handler: httpadapter.Wrap(router.Handler(m), logger, m, cfg.APIRateLimitRPS, cfg.APIRateLimitBurst),
		Logger:  logger,
	}, nil
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              a.Addr,
		Handler:           a.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("http server starting", "addr", a.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		a.Logger.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		err := server.Shutdown(shutdownCtx)
		a.close()
		return err
	case err := <-errCh:
		a.close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (a *App) close() {
	for _, fn := range a.cleanup {
		if err := fn(); err != nil {
			a.Logger.Warn("cleanup failed", "error", err)
		}
	}
}
