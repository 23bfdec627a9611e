package domain

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestAssemblePagesAscendingWithMarkers(t *testing.T) {
	got := AssemblePages(map[int]string{
		2: "third page text",
		0: "first page text",
		1: "  ",
	})
	want := "--- Page 1 ---\nfirst page text\n\n--- Page 3 ---\nthird page text"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestAssemblePagesEmptyInput(t *testing.T) {
	if got := AssemblePages(nil); got != "" {
		t.Fatalf("got %q, want empty", got)
	}
}

func TestNewExtractionResultCounts(t *testing.T) {
	res := NewExtractionResult("  two words  ", "text-layer")
	if res.Text != "two words" || res.WordCount != 2 || res.CharacterCount != 9 {
		t.Fatalf("result = %+v", res)
	}
	if !res.Success || res.Method != "text-layer" {
		t.Fatalf("result = %+v", res)
	}

	if res.Timestamp == "" {
		t.Fatal("result carries no timestamp")
	}

	empty := NewExtractionResult("   ", "ocr")
	if empty.Success || empty.WordCount != 0 {
		t.Fatalf("empty result = %+v", empty)
	}
	if empty.Timestamp == "" {
		t.Fatal("empty result carries no timestamp")
	}
}

func TestReconstructTextOrdersChunks(t *testing.T) {
	got := ReconstructText([]EmbeddingChunk{
		{ChunkIndex: 5, ChunkText: "tail"},
		{ChunkIndex: 0, ChunkText: " head "},
		{ChunkIndex: 3, ChunkText: "middle"},
		{ChunkIndex: 1, ChunkText: ""},
	})
	if got != "head middle tail" {
		t.Fatalf("got %q", got)
	}
}

func TestValidateFieldTitleRules(t *testing.T) {
	cases := []struct {
		raw    string
		ok     bool
		reason string
	}{
		{"Employment Termination Notice", true, ""},
		{"doc", false, "too short"},
		{"Legal Document", false, "generic title"},
		{"Here is the title you asked for", false, "conversational preamble"},
		{"I cannot generate a title for this", false, "refusal phrase"},
		{"As an AI model I cannot help", false, "refusal phrase"},
	}
	for _, tc := range cases {
		ok, reason := ValidateField(FieldTitle, tc.raw)
		if ok != tc.ok || reason != tc.reason {
			t.Errorf("ValidateField(title, %q) = (%v, %q), want (%v, %q)", tc.raw, ok, reason, tc.ok, tc.reason)
		}
	}
}

func TestValidateFieldProseMinimumLength(t *testing.T) {
	if ok, reason := ValidateField(FieldDescription, "short text"); ok || reason != "too short" {
		t.Fatalf("got (%v, %q)", ok, reason)
	}
	if ok, _ := ValidateField(FieldDescription, "a description comfortably above the prose floor"); !ok {
		t.Fatal("valid description rejected")
	}
}

func TestCapFieldLengthWordBoundary(t *testing.T) {
	long := strings.Repeat("word ", 40)
	capped := CapFieldLength(FieldTitle, long)
	if len(capped) > MaxTitleLength+3 {
		t.Fatalf("capped title length %d", len(capped))
	}
	if !strings.HasSuffix(capped, "...") {
		t.Fatalf("capped title %q missing marker", capped)
	}
	if strings.Contains(strings.TrimSuffix(capped, "..."), "  ") {
		t.Fatalf("capped title %q malformed", capped)
	}

	short := "Fits Within The Limit"
	if got := CapFieldLength(FieldTitle, short); got != short {
		t.Fatalf("short title altered: %q", got)
	}
}

func TestCapFieldLengthKeepsRunesIntact(t *testing.T) {
	// No spaces at all, so the cut lands mid-text; it must not split a rune.
	long := strings.Repeat("雇用契約解除通知書", 20)
	capped := CapFieldLength(FieldTitle, long)
	if !utf8.ValidString(capped) {
		t.Fatalf("capped title is not valid UTF-8: %q", capped)
	}
	if len(capped) > MaxTitleLength+3 {
		t.Fatalf("capped title length %d", len(capped))
	}
	if !strings.HasSuffix(capped, "...") {
		t.Fatalf("capped title %q missing marker", capped)
	}
}

func TestCosineSimilarity(t *testing.T) {
	if got := CosineSimilarity([]float32{1, 0}, []float32{1, 0}); got < 0.999 {
		t.Fatalf("identical vectors: %f", got)
	}
	if got := CosineSimilarity([]float32{1, 0}, []float32{0, 1}); got != 0 {
		t.Fatalf("orthogonal vectors: %f", got)
	}
	if got := CosineSimilarity([]float32{1, 0}, []float32{1}); got != 0 {
		t.Fatalf("dimension mismatch: %f", got)
	}
	if got := CosineSimilarity(nil, nil); got != 0 {
		t.Fatalf("empty vectors: %f", got)
	}
}
