// Package prompt assembles layered generation prompts. Layer order is fixed:
// system rules, identity/scope, task mode, retrieved context, user input, and
// the output format, with optional style hints immediately before the output
// format. The assembly is a pure function of its inputs.
package prompt

import (
	"fmt"
	"strings"

	"cognitive-rag/internal/models"
)

// Builder constructs prompts from retrieval results and user input.
type Builder struct{}

func NewBuilder() *Builder {
	return &Builder{}
}

// Build assembles the complete prompt for mode. styleHints may be empty.
func (b *Builder) Build(mode models.TaskMode, editorContent string, sources []models.RetrievalResult, additionalContext, styleHints string) (string, error) {
	taskTemplate, ok := taskModeTemplates[mode]
	if !ok {
		return "", fmt.Errorf("unknown task mode: %q", mode)
	}

	components := models.PromptComponents{
		SystemRules:      SystemRules,
		IdentityScope:    IdentityScope,
		TaskMode:         taskTemplate,
		RetrievedContext: formatRetrievedContext(sources),
		UserInput:        formatUserInput(mode, editorContent, additionalContext),
		OutputFormat:     fmt.Sprintf(outputFormat, mode),
		StyleAdaptation:  styleHints,
	}
	return assemble(components), nil
}

// formatRetrievedContext renders sources with exact filename and location so
// citations in the output stay auditable. Zero sources produces the explicit
// no-sources block, never an empty string.
func formatRetrievedContext(sources []models.RetrievalResult) string {
	if len(sources) == 0 {
		return noSourcesBlock
	}

	var sb strings.Builder
	sb.WriteString("RETRIEVED SOURCES (ranked by relevance):\n\n")
	for i, source := range sources {
		fmt.Fprintf(&sb, "[Source %d]\n", i+1)
		fmt.Fprintf(&sb, "- Source: %s (%s)\n", source.SourceFilename, source.Location())
		fmt.Fprintf(&sb, "- Type: %s\n", source.ContentType)
		fmt.Fprintf(&sb, "- Role: %s\n", source.RhetoricalRole)
		fmt.Fprintf(&sb, "- Relevance Score: %.2f\n", source.SimilarityScore)
		fmt.Fprintf(&sb, "- Content: %q\n", source.Content)
		if i < len(sources)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func formatUserInput(mode models.TaskMode, editorContent, additionalContext string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "USER REQUEST:\nMode: %s\n\n", mode)

	if strings.TrimSpace(editorContent) != "" {
		fmt.Fprintf(&sb, "Current Editor Content:\n\"\"\"\n%s\n\"\"\"\n", editorContent)
	} else {
		sb.WriteString("Current Editor Content: [Empty - user has not started writing]\n")
	}

	if additionalContext != "" {
		fmt.Fprintf(&sb, "\nAdditional Context: %s\n", additionalContext)
	}
	return sb.String()
}

// assemble joins the layers with the context separator. Style hints, when
// present, slot in directly before the output format.
func assemble(c models.PromptComponents) string {
	sections := []string{
		c.SystemRules,
		c.IdentityScope,
		c.TaskMode,
		c.RetrievedContext,
		c.UserInput,
	}
	if c.StyleAdaptation != "" {
		sections = append(sections, c.StyleAdaptation)
	}
	sections = append(sections, c.OutputFormat)
	return strings.Join(sections, models.ContextSeparator)
}
