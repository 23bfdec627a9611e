package domain

import (
	"strings"
	"unicode/utf8"
)

// Field identifies which metadata field a generator is asked to produce.
type Field string

const (
	FieldTitle       Field = "title"
	FieldDescription Field = "description"
	FieldRemarks     Field = "remarks"
)

const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 500

	minTitleLength = 5
	minProseLength = 20
)

// GenerationAttempt records one generator invocation and its verdict.
type GenerationAttempt struct {
	Backend string `json:"backend"`
	Field   Field  `json:"field"`
	Output  string `json:"output,omitempty"`
	Accept  bool   `json:"accepted"`
	Reason  string `json:"reason,omitempty"`
}

var titleBlocklist = []string{"legal document", "document", "legal"}

var conversationalPreambles = []string{
	"here is",
	"here's",
	"this is",
	"based on",
	"sure,",
	"certainly",
}

var refusalPhrases = []string{
	"i cannot",
	"i can't",
	"i am unable",
	"i'm unable",
	"unable to",
	"as an ai",
}

// ValidateField judges raw generator output for one field. The returned
// reason is empty on acceptance.
func ValidateField(field Field, raw string) (ok bool, reason string) {
	stripped := strings.TrimSpace(raw)
	lower := strings.ToLower(stripped)

	if containsAny(lower, refusalPhrases) {
		return false, "refusal phrase"
	}

	if field == FieldTitle {
		if len(stripped) < minTitleLength {
			return false, "too short"
		}
		for _, blocked := range titleBlocklist {
			if lower == blocked {
				return false, "generic title"
			}
		}
		for _, preamble := range conversationalPreambles {
			if strings.HasPrefix(lower, preamble) {
				return false, "conversational preamble"
			}
		}
		return true, ""
	}

	if len(stripped) < minProseLength {
		return false, "too short"
	}
	return true, ""
}

// CapFieldLength truncates accepted output at the last whole word before the
// field's limit and appends an ellipsis marker.
func CapFieldLength(field Field, text string) string {
	limit := MaxDescriptionLength
	if field == FieldTitle {
		limit = MaxTitleLength
	}
	return truncateAtWord(strings.TrimSpace(text), limit)
}

func truncateAtWord(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	cut := strings.LastIndex(text[:limit], " ")
	if cut <= 0 {
		// No word boundary; back the byte cut up to a rune boundary so
		// multi-byte text is never split mid-rune.
		cut = limit
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
	}
	return strings.TrimRight(text[:cut], " ") + "..."
}

func containsAny(haystack string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}
