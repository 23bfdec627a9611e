package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	ExtractionPort string
	EmbeddingPort  string
	BridgePort     string
	ChatbotPort    string
	LogLevel       string

	BackendBaseURL string
	BackendTimeout time.Duration
	StorageRoot    string

	OllamaURL        string
	OllamaGenModel   string
	OllamaEmbedModel string

	HostedLLMBaseURL string
	HostedLLMAPIKey  string
	HostedLLMModel   string
	HostedLLMTimeout time.Duration

	PaddleOCRURL      string
	TesseractEnabled  bool
	TesseractLanguage string
	OCRDPI            int
	OCRMaxPages       int
	OCRMinConfidence  float64

	HeuristicsPath string

	MaxHistoryMessages  int
	RecentHistoryLimit  int
	MaxMessageLength    int
	GenerationTimeout   time.Duration
	SearchScoreCutoff   float64
	MinAnalyzableLength int

	APIRateLimitRPS   float64
	APIRateLimitBurst int
}

func Load() Config {
	return Config{
		ExtractionPort: mustEnv("EXTRACTION_PORT", "5002"),
		EmbeddingPort:  mustEnv("EMBEDDING_PORT", "5001"),
		BridgePort:     mustEnv("BRIDGE_PORT", "5003"),
		ChatbotPort:    mustEnv("CHATBOT_PORT", "5000"),
		LogLevel:       mustEnv("LOG_LEVEL", "info"),

		BackendBaseURL: mustEnv("BACKEND_BASE_URL", "http://127.0.0.1:8000"),
		BackendTimeout: mustEnvDuration("BACKEND_TIMEOUT", 30*time.Second),
		StorageRoot:    mustEnv("STORAGE_ROOT", "./data/documents"),

		OllamaURL:        mustEnv("OLLAMA_URL", "http://localhost:11434"),
		OllamaGenModel:   mustEnv("OLLAMA_GEN_MODEL", "llama3.2:3b"),
		OllamaEmbedModel: mustEnv("OLLAMA_EMBED_MODEL", "all-minilm"),

		HostedLLMBaseURL: mustEnv("HOSTED_LLM_BASE_URL", ""),
		HostedLLMAPIKey:  mustEnv("HOSTED_LLM_API_KEY", ""),
		HostedLLMModel:   mustEnv("HOSTED_LLM_MODEL", "llama-3.1-8b-instant"),
		HostedLLMTimeout: mustEnvDuration("HOSTED_LLM_TIMEOUT", 30*time.Second),

		PaddleOCRURL:      mustEnv("PADDLE_OCR_URL", ""),
		TesseractEnabled:  mustEnvBool("TESSERACT_ENABLED", true),
		TesseractLanguage: mustEnv("TESSERACT_LANGUAGE", "eng"),
		OCRDPI:            mustEnvInt("OCR_DPI", 150),
		OCRMaxPages:       mustEnvInt("OCR_MAX_PAGES", 10),
		OCRMinConfidence:  mustEnvFloat("OCR_MIN_CONFIDENCE", 0.2),

		HeuristicsPath: mustEnv("HEURISTICS_PATH", ""),

		MaxHistoryMessages:  mustEnvInt("MAX_HISTORY_MESSAGES", 12),
		RecentHistoryLimit:  mustEnvInt("RECENT_HISTORY_LIMIT", 6),
		MaxMessageLength:    mustEnvInt("MAX_MESSAGE_LENGTH", 500),
		GenerationTimeout:   mustEnvDuration("GENERATION_TIMEOUT", 3*time.Minute),
		SearchScoreCutoff:   mustEnvFloat("SEARCH_SCORE_CUTOFF", 0.3),
		MinAnalyzableLength: mustEnvInt("MIN_ANALYZABLE_LENGTH", 50),

		APIRateLimitRPS:   mustEnvFloat("API_RATE_LIMIT_RPS", 0),
		APIRateLimitBurst: mustEnvInt("API_RATE_LIMIT_BURST", 1),
	}
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func mustEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func mustEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
