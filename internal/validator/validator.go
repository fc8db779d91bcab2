// Package validator enforces structural and safety contracts on generated
// text. Validation failures are values, never panics: callers substitute the
// deterministic fallback, which itself always validates.
package validator

import (
	"fmt"
	"strings"

	"cognitive-rag/internal/models"
)

const maxWords = 300

// requiredSections are the headings every response must carry verbatim. The
// mode name parameterizes the first heading.
func requiredSections(mode models.TaskMode) []string {
	return []string{
		fmt.Sprintf("## %s Guidance", mode),
		"### 1. Likely Next Move",
		"### 2. Supporting Rationale",
		"### 4. Cautions or Limitations",
	}
}

// forbiddenPhrase pairs a first-person/opinion phrase with its rejection
// reason. Matching is case-insensitive substring; the slice keeps reporting
// deterministic.
type forbiddenPhrase struct {
	phrase string
	reason string
}

var forbiddenPhrases = []forbiddenPhrase{
	{"I think", "First-person opinion detected"},
	{"I believe", "First-person opinion detected"},
	{"I would", "First-person suggestion detected"},
	{"In my opinion", "Personal opinion detected"},
	{"My approach", "First-person perspective detected"},
	{"I recommend", "First-person recommendation detected"},
}

// claimIndicators flag factual claims that demand a citation.
var claimIndicators = []string{"research shows", "studies indicate", "evidence suggests"}

// Citation markers: either an explicit source reference or an explicit
// no-source acknowledgement.
const (
	citationMarker = "**Source"
	noSourceMarker = "[No relevant source"
)

// Validate checks output against the mode's structural and safety contracts.
// Checks run in precedence order: structure, then tone, then uncited claims,
// then length, so the reported reason is the most actionable one.
func Validate(output string, mode models.TaskMode) (bool, string) {
	for _, section := range requiredSections(mode) {
		if !strings.Contains(output, section) {
			return false, fmt.Sprintf("Missing required section: %s", section)
		}
	}

	lower := strings.ToLower(output)
	for _, fp := range forbiddenPhrases {
		if strings.Contains(lower, strings.ToLower(fp.phrase)) {
			return false, fp.reason
		}
	}

	if !strings.Contains(output, citationMarker) && !strings.Contains(output, noSourceMarker) {
		for _, indicator := range claimIndicators {
			if strings.Contains(lower, indicator) {
				return false, "Factual claims without source citations detected"
			}
		}
	}

	if wordCount := len(strings.Fields(output)); wordCount > maxWords {
		return false, fmt.Sprintf("Response too long (%d words, max %d)", wordCount, maxWords)
	}

	return true, ""
}

// maxContextWords bounds the embedded error context so it cannot push the
// fallback past the length cap.
const maxContextWords = 40

// Fallback returns the deterministic, citation-free message used when
// generation fails or its output does not validate. Fallback(mode, ctx)
// always passes Validate for every defined mode: an error context that would
// itself break validation, such as an upstream error body carrying a
// forbidden phrase, is replaced rather than embedded.
func Fallback(mode models.TaskMode, errorContext string) string {
	out := fallbackMessage(mode, sanitizeContext(errorContext))
	if valid, _ := Validate(out, mode); !valid {
		out = fallbackMessage(mode, "Unknown error")
	}
	return out
}

// sanitizeContext trims and truncates the error context.
func sanitizeContext(errorContext string) string {
	words := strings.Fields(errorContext)
	if len(words) == 0 {
		return "Unknown error"
	}
	if len(words) > maxContextWords {
		words = words[:maxContextWords]
	}
	return strings.Join(words, " ")
}

func fallbackMessage(mode models.TaskMode, errorContext string) string {
	return fmt.Sprintf(`## %s Guidance

### 1. Likely Next Move
Unable to generate specific guidance at this time.

### 2. Supporting Rationale
[No relevant source found - insufficient context in document corpus]

### 3. Alternative Paths
Consider uploading additional documents related to your topic for more targeted guidance.

### 4. Cautions or Limitations
The system encountered an issue generating guidance. This may indicate:
- Insufficient relevant documents in your corpus
- Need for more specific context in your query
- Technical limitation requiring retry

Error context: %s`, mode, errorContext)
}
