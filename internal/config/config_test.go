package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.ExtractionPort != "5002" || cfg.ChatbotPort != "5000" {
		t.Fatalf("ports = %s/%s", cfg.ExtractionPort, cfg.ChatbotPort)
	}
	if cfg.OCRMaxPages != 10 || cfg.OCRDPI != 150 {
		t.Fatalf("ocr caps = %d pages / %d dpi", cfg.OCRMaxPages, cfg.OCRDPI)
	}
	if cfg.GenerationTimeout != 3*time.Minute {
		t.Fatalf("generation timeout %v", cfg.GenerationTimeout)
	}
	if cfg.SearchScoreCutoff != 0.3 {
		t.Fatalf("search cutoff %f", cfg.SearchScoreCutoff)
	}
}

func TestLoadOverridesAndFallbacks(t *testing.T) {
	t.Setenv("BRIDGE_PORT", "6003")
	t.Setenv("OCR_MAX_PAGES", "5")
	t.Setenv("BACKEND_TIMEOUT", "10s")
	t.Setenv("TESSERACT_ENABLED", "false")
	t.Setenv("OCR_MIN_CONFIDENCE", "not-a-number")

	cfg := Load()
	if cfg.BridgePort != "6003" || cfg.OCRMaxPages != 5 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.BackendTimeout != 10*time.Second {
		t.Fatalf("timeout %v", cfg.BackendTimeout)
	}
	if cfg.TesseractEnabled {
		t.Fatal("bool override not applied")
	}
	if cfg.OCRMinConfidence != 0.2 {
		t.Fatalf("malformed float should fall back, got %f", cfg.OCRMinConfidence)
	}
}
