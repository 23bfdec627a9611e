package heuristics

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEmbeddedDefaultsLoad(t *testing.T) {
	tables, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(tables.DocumentTypes) == 0 || len(tables.KeywordGroups) == 0 {
		t.Fatalf("defaults incomplete: %+v", tables)
	}
	for _, p := range tables.TopicPatterns {
		if !p.Matches("confidentiality agreement") && p.Label == "confidentiality" {
			t.Errorf("pattern %q did not compile usefully", p.Label)
		}
	}
}

func TestLoadFromFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tables.yaml")
	raw := `document_types:
  - label: custom type
    keywords: [custom]
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	tables, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(tables.DocumentTypes) != 1 || tables.DocumentTypes[0].Label != "custom type" {
		t.Fatalf("tables = %+v", tables.DocumentTypes)
	}
}

func TestLoadRejectsBadPattern(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tables.yaml")
	raw := `topic_patterns:
  - label: broken
    pattern: "(["
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected compile error")
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load("/nonexistent/tables.yaml"); err == nil {
		t.Fatal("expected read error")
	}
}
