package validator

import (
	"strings"
	"testing"

	"cognitive-rag/internal/models"
)

func validOutput(mode models.TaskMode) string {
	return `## ` + string(mode) + ` Guidance

### 1. Likely Next Move
Review the experimental design section before drafting further.

### 2. Supporting Rationale
- **Source 1 (paper.pdf, page 3)**: The design section grounds the recommendation.

### 4. Cautions or Limitations
Sources do not cover the statistical treatment.`
}

func TestValidate_Valid(t *testing.T) {
	valid, reason := Validate(validOutput(models.ModeStart), models.ModeStart)
	if !valid {
		t.Fatalf("expected valid output, got reason %q", reason)
	}
	if reason != "" {
		t.Errorf("valid output must carry an empty reason, got %q", reason)
	}
}

func TestValidate_MissingSections(t *testing.T) {
	testCases := []struct {
		name       string
		drop       string
		wantReason string
	}{
		{"missing mode heading", "## START Guidance", "Missing required section: ## START Guidance"},
		{"missing next move", "### 1. Likely Next Move", "Missing required section: ### 1. Likely Next Move"},
		{"missing cautions", "### 4. Cautions or Limitations", "Missing required section: ### 4. Cautions or Limitations"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			output := strings.Replace(validOutput(models.ModeStart), tc.drop, "", 1)
			valid, reason := Validate(output, models.ModeStart)
			if valid {
				t.Fatal("expected invalid output")
			}
			if reason != tc.wantReason {
				t.Errorf("reason = %q, want %q", reason, tc.wantReason)
			}
		})
	}
}

func TestValidate_ForbiddenPhrases(t *testing.T) {
	testCases := []struct {
		phrase     string
		wantReason string
	}{
		{"I think", "First-person opinion detected"},
		{"i BELIEVE", "First-person opinion detected"},
		{"I would", "First-person suggestion detected"},
		{"in my opinion", "Personal opinion detected"},
		{"My approach", "First-person perspective detected"},
		{"I recommend", "First-person recommendation detected"},
	}
	for _, tc := range testCases {
		t.Run(tc.phrase, func(t *testing.T) {
			output := validOutput(models.ModeStart) + "\n" + tc.phrase + " this is so."
			valid, reason := Validate(output, models.ModeStart)
			if valid {
				t.Fatal("expected invalid output")
			}
			if reason != tc.wantReason {
				t.Errorf("reason = %q, want %q", reason, tc.wantReason)
			}
		})
	}
}

func TestValidate_StructuralErrorsPrecedeTone(t *testing.T) {
	// Both a missing heading and a forbidden phrase: the structural reason
	// must win.
	output := strings.Replace(validOutput(models.ModeStart), "### 1. Likely Next Move", "", 1)
	output += "\nI think this works."

	valid, reason := Validate(output, models.ModeStart)
	if valid {
		t.Fatal("expected invalid output")
	}
	if !strings.HasPrefix(reason, "Missing required section:") {
		t.Errorf("structural reason must take precedence, got %q", reason)
	}
}

func TestValidate_UnsupportedClaims(t *testing.T) {
	base := `## START Guidance

### 1. Likely Next Move
Continue with the literature review since research shows this ordering helps.

### 2. Supporting Rationale
Methodological guidance only.

### 4. Cautions or Limitations
None noted.`

	valid, reason := Validate(base, models.ModeStart)
	if valid {
		t.Fatal("uncited claim indicator must invalidate")
	}
	if reason != "Factual claims without source citations detected" {
		t.Errorf("unexpected reason %q", reason)
	}

	// The same claim with a citation marker passes.
	cited := strings.Replace(base, "Methodological guidance only.",
		"- **Source 1 (paper.pdf, page 3)**: supporting passage.", 1)
	if valid, reason := Validate(cited, models.ModeStart); !valid {
		t.Errorf("cited claim should validate, got %q", reason)
	}

	// An explicit no-source acknowledgement also passes.
	acknowledged := strings.Replace(base, "Methodological guidance only.",
		"[No relevant source found for this claim]", 1)
	if valid, reason := Validate(acknowledged, models.ModeStart); !valid {
		t.Errorf("acknowledged gap should validate, got %q", reason)
	}
}

func TestValidate_LengthCheckedLast(t *testing.T) {
	padding := strings.Repeat("word ", 301)
	output := validOutput(models.ModeStart) + "\n" + padding

	valid, reason := Validate(output, models.ModeStart)
	if valid {
		t.Fatal("expected invalid output")
	}
	if !strings.HasPrefix(reason, "Response too long") {
		t.Errorf("reason = %q, want length failure", reason)
	}

	// When a structural problem coexists with excess length, structure wins.
	broken := strings.Replace(output, "### 4. Cautions or Limitations", "", 1)
	_, reason = Validate(broken, models.ModeStart)
	if !strings.HasPrefix(reason, "Missing required section:") {
		t.Errorf("structural reason must precede length, got %q", reason)
	}
}

func TestFallback_AlwaysValidates(t *testing.T) {
	for _, mode := range models.TaskModes {
		t.Run(string(mode), func(t *testing.T) {
			out := Fallback(mode, "x")
			valid, reason := Validate(out, mode)
			if !valid {
				t.Fatalf("fallback for %s failed its own validation: %s", mode, reason)
			}
			if reason != "" {
				t.Errorf("expected empty reason, got %q", reason)
			}
		})
	}
}

func TestFallback_CarriesErrorContext(t *testing.T) {
	out := Fallback(models.ModeOutline, "embedding service unreachable")
	if !strings.Contains(out, "Error context: embedding service unreachable") {
		t.Error("fallback must include the error context verbatim")
	}

	out = Fallback(models.ModeOutline, "")
	if !strings.Contains(out, "Error context: Unknown error") {
		t.Error("empty context must fall back to a stated unknown error")
	}
}

func TestFallback_HostileErrorContext(t *testing.T) {
	// Upstream error bodies are untrusted. A context that would itself trip
	// validation must not be embedded, or the fallback could fail its own
	// contract.
	out := Fallback(models.ModeStart, `upstream said: "I think you should retry"`)
	valid, reason := Validate(out, models.ModeStart)
	if !valid {
		t.Fatalf("fallback failed its own validation: %s", reason)
	}
	if !strings.Contains(out, "Error context: Unknown error") {
		t.Error("a context carrying a forbidden phrase must be replaced")
	}
}

func TestFallback_OversizedErrorContext(t *testing.T) {
	long := strings.Repeat("word ", 400)
	out := Fallback(models.ModeStart, long)
	valid, reason := Validate(out, models.ModeStart)
	if !valid {
		t.Fatalf("fallback failed its own validation: %s", reason)
	}
	if len(strings.Fields(out)) > 300 {
		t.Errorf("fallback is %d words, above the cap", len(strings.Fields(out)))
	}
}
