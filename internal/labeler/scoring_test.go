package labeler

import (
	"strings"
	"testing"

	"cognitive-rag/internal/models"
)

func TestCoverageScore(t *testing.T) {
	shortText := "A brief chunk of text." // < 50 words: +20
	longText := strings.Repeat("word ", 250)

	testCases := []struct {
		name     string
		text     string
		tagCount int
		want     int
	}{
		{"baseline short no tags", shortText, 0, 70},
		{"short with three tags", shortText, 3, 100},
		{"short with one tag", shortText, 1, 80},
		{"long text penalty", longText, 0, 40},
		{"list markup bonus", "- first item\n- second item", 0, 75},
		{"heading markup bonus", "# Heading\nbody text", 0, 75},
		{"list and heading", "# Heading\n- item", 0, 80},
		{"clamped at 100", "# H\n- item of a short text", 3, 100},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CoverageScore(tc.text, tc.tagCount); got != tc.want {
				t.Errorf("CoverageScore(%q, %d) = %d, want %d", tc.text, tc.tagCount, got, tc.want)
			}
		})
	}
}

func TestConfidenceFor(t *testing.T) {
	// Ten words or more, so the short-text floor does not apply.
	text := "this text certainly contains at least ten words in total"

	testCases := []struct {
		name           string
		roleConfidence float64
		tagCount       int
		coverage       int
		want           models.ConfidenceLabel
	}{
		// 0.5*1.0 + 0.3*1.0 + 0.2*0.5 = 0.9
		{"high", 1.0, 3, 50, models.ConfidenceHigh},
		// 0.5*0.5 + 0 + 0.2*1.0 = 0.45
		{"medium", 0.5, 0, 100, models.ConfidenceMedium},
		// exactly the 0.4 boundary: 0.5*0.8 = 0.4
		{"medium boundary", 0.8, 0, 0, models.ConfidenceMedium},
		// 0 + 0 + 0.2*0.5 = 0.1
		{"low", 0.0, 0, 50, models.ConfidenceLow},
		// tag count caps at 3: 0.5*0 + 0.3*1.0 + 0.2*1.0 = 0.5
		{"tag count capped", 0.0, 7, 100, models.ConfidenceMedium},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ConfidenceFor(text, tc.roleConfidence, tc.tagCount, tc.coverage)
			if got != tc.want {
				t.Errorf("ConfidenceFor(%f, %d, %d) = %s, want %s", tc.roleConfidence, tc.tagCount, tc.coverage, got, tc.want)
			}
		})
	}
}

func TestConfidenceFor_ShortTextFloor(t *testing.T) {
	// Under ten words the label is low regardless of composite.
	got := ConfidenceFor("nine words would still not be enough here", 1.0, 3, 100)
	if got != models.ConfidenceLow {
		t.Errorf("short text should force low confidence, got %s", got)
	}
}

func TestAutoLabel(t *testing.T) {
	l := New(fieldsTokenizer{})

	text := "Therefore the results demonstrate that Machine Learning models generalize, because Deep Learning benchmarks confirm it across every domain we studied in detail."
	label := l.AutoLabel(text)

	if label.RhetoricalRole != models.RoleArgument {
		t.Errorf("role = %s, want argument", label.RhetoricalRole)
	}
	if len(label.TopicTags) == 0 {
		t.Error("expected topic tags")
	}
	if label.TokenCount != len(strings.Fields(text)) {
		t.Errorf("token count = %d, want %d", label.TokenCount, len(strings.Fields(text)))
	}
	if !label.IsAutoLabeled || label.HumanVerified {
		t.Error("auto labels must be marked auto and unverified")
	}
	if label.CoverageScore < 0 || label.CoverageScore > 100 {
		t.Errorf("coverage score out of range: %d", label.CoverageScore)
	}
}

// fieldsTokenizer counts whitespace-separated words, enough for label tests.
type fieldsTokenizer struct{}

func (fieldsTokenizer) Encode(text string) []int {
	return make([]int, len(strings.Fields(text)))
}

func (fieldsTokenizer) Decode(tokens []int) string { return "" }
