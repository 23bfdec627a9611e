// Package generation holds the prompting contract shared by the hosted and
// local metadata generators.
package generation

import (
	"fmt"

	"github.com/legalarch/docai/internal/core/domain"
)

// SamplingConfig is the per-field randomness and length budget. Titles run
// near-deterministic; prose fields get moderate randomness.
type SamplingConfig struct {
	Temperature float64
	TopP        float64
	MaxTokens   int
	Stop        []string
}

func Sampling(field domain.Field) SamplingConfig {
	switch field {
	case domain.FieldTitle:
		return SamplingConfig{Temperature: 0.1, TopP: 0.7, MaxTokens: 40, Stop: []string{"\n"}}
	case domain.FieldDescription:
		return SamplingConfig{Temperature: 0.3, TopP: 0.9, MaxTokens: 150}
	default:
		return SamplingConfig{Temperature: 0.3, TopP: 0.9, MaxTokens: 120}
	}
}

// prefixLimit bounds how much document text goes into the prompt, tuned per
// field to respect model context limits.
func prefixLimit(field domain.Field) int {
	switch field {
	case domain.FieldTitle:
		return 1200
	case domain.FieldDescription:
		return 1000
	default:
		return 1500
	}
}

// BuildFieldPrompt renders the instruction for one metadata field over a
// bounded prefix of the document text.
func BuildFieldPrompt(field domain.Field, text string) string {
	limit := prefixLimit(field)
	sample := text
	if len(sample) > limit {
		sample = sample[:limit]
	}

	switch field {
	case domain.FieldTitle:
		return fmt.Sprintf(`You are a legal document analyst. Based on the following legal document content, generate a clear, professional title (5-8 words) that describes what this document is about. Focus on the document type and main subject.

Legal document content:
%s

Output only the title, with no quotes and no commentary:`, sample)
	case domain.FieldDescription:
		return fmt.Sprintf(`You are a legal document analyst. Based on the following excerpt, write a concise professional description (2-3 sentences maximum, under 400 characters) that summarizes what this document is about. Do not copy text directly.

Document excerpt:
%s

Output only the description, with no commentary:`, sample)
	default:
		return fmt.Sprintf(`You are a legal document analyst. Based on the following excerpt, write brief analytical remarks (1-2 sentences) on the document's type, subject and completeness.

Document excerpt:
%s

Output only the remarks, with no commentary:`, sample)
	}
}
