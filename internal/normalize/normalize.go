// Package normalize fixes known inconsistencies in upstream evaluation data
// before grouping. Every function here is pure and total over arbitrary
// string input.
package normalize

import "strings"

// DefaultSystemPrompt stands in for the default-assistant case where the full
// prompt is the question verbatim and no system prompt exists to extract.
const DefaultSystemPrompt = "Default Assistant response with no specific system prompt"

// DefaultPersonaWords is how many leading words of a persona description
// survive truncation.
const DefaultPersonaWords = 10

// Score maps renamed score labels to their canonical form. The judge briefly
// emitted "weird_ai" before the label was renamed to "weird_role".
func Score(score string) string {
	if score == "weird_ai" {
		return "weird_role"
	}
	return score
}

// SystemPrompt derives the system prompt from a concatenated full prompt by
// stripping the question suffix. A default-role prompt that equals the
// question verbatim maps to DefaultSystemPrompt; a prompt that does not end
// with the question is returned unchanged.
func SystemPrompt(prompt, question, role string) string {
	if prompt == "" || question == "" {
		return prompt
	}
	if role == "default" && prompt == question {
		return DefaultSystemPrompt
	}
	if strings.HasSuffix(prompt, question) {
		stripped := strings.TrimSpace(prompt[:len(prompt)-len(question)])
		return strings.TrimRight(stripped, ". ")
	}
	return prompt
}

// TruncatePersona bounds a persona description to maxWords words joined by
// single spaces, appending an ellipsis marker only when truncation happened.
// Personas at or under the bound pass through byte-for-byte.
func TruncatePersona(persona string, maxWords int) string {
	words := strings.Fields(persona)
	if len(words) <= maxWords {
		return persona
	}
	return strings.Join(words[:maxWords], " ") + "..."
}
