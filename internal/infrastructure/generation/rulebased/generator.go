// Package rulebased is the terminal stage of the generation fallback chain:
// deterministic string analysis over the keyword tables, with no external
// dependency. Generate never fails.
package rulebased

import (
	"context"
	"fmt"
	"strings"

	"github.com/legalarch/docai/internal/core/domain"
	"github.com/legalarch/docai/internal/infrastructure/heuristics"
)

const (
	titleSearchLines = 10
	fallbackTitle    = "Legal Document"
)

type Generator struct {
	tables *heuristics.Tables
}

func New(tables *heuristics.Tables) *Generator {
	if tables == nil {
		tables = heuristics.MustDefaults()
	}
	return &Generator{tables: tables}
}

func (g *Generator) Name() string { return "rule-based" }

func (g *Generator) Generate(_ context.Context, field domain.Field, text string) (string, error) {
	switch field {
	case domain.FieldTitle:
		return g.title(text), nil
	case domain.FieldDescription:
		return g.description(text), nil
	default:
		return g.remarks(text), nil
	}
}

// DetectDocumentType counts keyword hits per document type and returns the
// best label. Strict > keeps the first table entry on ties.
func (g *Generator) DetectDocumentType(text string) string {
	lower := strings.ToLower(text)
	best := "legal document"
	bestScore := 0

	for _, docType := range g.tables.DocumentTypes {
		score := 0
		for _, keyword := range docType.Keywords {
			if strings.Contains(lower, keyword) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			best = docType.Label
		}
	}
	return best
}

func (g *Generator) subjectMatter(text string) string {
	lower := strings.ToLower(text)
	for _, pattern := range g.tables.SubjectPatterns {
		if strings.Contains(lower, pattern) {
			return pattern
		}
	}
	return ""
}

func (g *Generator) keyTopics(text string) []string {
	lower := strings.ToLower(text)
	topics := make([]string, 0, 3)
	for _, topic := range g.tables.TopicPatterns {
		if topic.Matches(lower) {
			topics = append(topics, topic.Label)
			if len(topics) == 3 {
				break
			}
		}
	}
	return topics
}

func (g *Generator) title(text string) string {
	if title := headingTitle(text); title != "" {
		return title
	}

	subject := g.subjectMatter(text)
	if subject != "" {
		return toTitleCase(subject) + " Guide"
	}

	docType := g.DetectDocumentType(text)
	if docType != "legal document" {
		return toTitleCase(docType)
	}
	return fallbackTitle
}

// headingTitle scans the first few lines for something that looks like a
// document heading.
func headingTitle(text string) string {
	lines := strings.Split(text, "\n")
	seen := 0
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		seen++
		if seen > titleSearchLines {
			break
		}
		if len(line) <= 10 || len(line) >= 100 {
			continue
		}
		clean := strings.TrimSpace(strings.NewReplacer("TITLE:", "", "Subject:", "").Replace(line))
		lower := strings.ToLower(clean)
		if clean == "" ||
			strings.HasPrefix(lower, "page") ||
			strings.HasPrefix(lower, "date") ||
			strings.HasPrefix(lower, "from:") ||
			strings.HasPrefix(lower, "to:") {
			continue
		}
		if len(clean) > domain.MaxTitleLength {
			clean = clean[:domain.MaxTitleLength]
		}
		return clean
	}
	return ""
}

func (g *Generator) description(text string) string {
	wordCount := len(strings.Fields(text))
	lower := strings.ToLower(text)

	var b strings.Builder
	fmt.Fprintf(&b, "This is a %s", g.DetectDocumentType(text))

	if subject := g.subjectMatter(text); subject != "" {
		fmt.Fprintf(&b, " focusing on %s", subject)
	}
	if topics := g.keyTopics(text); len(topics) > 0 {
		fmt.Fprintf(&b, ", covering topics such as %s", strings.Join(topics, ", "))
	}
	fmt.Fprintf(&b, ". This document contains %d words", wordCount)
	if strings.Contains(lower, "attorney-client privilege") || strings.Contains(lower, "confidential") {
		b.WriteString(" with confidentiality requirements")
	}
	b.WriteString(".")
	return b.String()
}

func (g *Generator) remarks(text string) string {
	wordCount := len(strings.Fields(text))
	docType := g.DetectDocumentType(text)

	var b strings.Builder
	fmt.Fprintf(&b, "AI Analysis: Document classified as %s. ", docType)
	fmt.Fprintf(&b, "Contains %d words. ", wordCount)
	if wordCount > 1000 {
		b.WriteString("High confidence in classification due to substantial content.")
	} else {
		b.WriteString("Limited content for detailed analysis.")
	}
	return b.String()
}

func toTitleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
