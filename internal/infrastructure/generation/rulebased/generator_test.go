package rulebased

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/legalarch/docai/internal/core/domain"
)

const contractText = `SETTLEMENT AND RELEASE AGREEMENT

This agreement is made between the parties identified below, in
consideration of the mutual terms set out herein. The parties agree the
matter is confidential.`

func TestGenerateNeverErrors(t *testing.T) {
	g := New(nil)
	for _, field := range []domain.Field{domain.FieldTitle, domain.FieldDescription, domain.FieldRemarks} {
		out, err := g.Generate(context.Background(), field, contractText)
		if err != nil {
			t.Fatalf("Generate(%s): %v", field, err)
		}
		if out == "" {
			t.Fatalf("Generate(%s) returned empty output", field)
		}
	}
}

func TestDetectDocumentType(t *testing.T) {
	g := New(nil)
	if got := g.DetectDocumentType(contractText); got != "contract agreement" {
		t.Fatalf("got %q", got)
	}
	if got := g.DetectDocumentType("unrelated gardening notes"); got != "legal document" {
		t.Fatalf("default type = %q", got)
	}
}

func TestTitleFromHeadingLine(t *testing.T) {
	g := New(nil)
	out, err := g.Generate(context.Background(), domain.FieldTitle, contractText)
	if err != nil {
		t.Fatal(err)
	}
	if out != "SETTLEMENT AND RELEASE AGREEMENT" {
		t.Fatalf("got %q", out)
	}
}

func TestTitleSkipsBoilerplateLines(t *testing.T) {
	g := New(nil)
	text := "Page 1 of 12\nDate: 2026-01-15\nFrom: counsel@example.com\nMotion To Dismiss Count Two\nbody text follows"
	out, _ := g.Generate(context.Background(), domain.FieldTitle, text)
	if out != "Motion To Dismiss Count Two" {
		t.Fatalf("got %q", out)
	}
}

func TestDescriptionContainsWordCount(t *testing.T) {
	g := New(nil)
	wordCount := len(strings.Fields(contractText))

	out, err := g.Generate(context.Background(), domain.FieldDescription, contractText)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, fmt.Sprintf("%d words", wordCount)) {
		t.Fatalf("description %q missing word count %d", out, wordCount)
	}
	if !strings.Contains(out, "confidentiality requirements") {
		t.Fatalf("description %q missing confidentiality note", out)
	}
}

func TestRemarksConfidenceByLength(t *testing.T) {
	g := New(nil)

	short, _ := g.Generate(context.Background(), domain.FieldRemarks, contractText)
	if !strings.Contains(short, "Limited content") {
		t.Fatalf("short-document remarks %q", short)
	}

	long := contractText + strings.Repeat(" filler", 1200)
	verbose, _ := g.Generate(context.Background(), domain.FieldRemarks, long)
	if !strings.Contains(verbose, "High confidence") {
		t.Fatalf("long-document remarks %q", verbose)
	}
}
