package ai

import (
	"fmt"
	"strings"

	"github.com/zhouzirui/alex-chat/backend/internal/model/persona"
)

// BuildSystemPrompt returns the persona message that opens every transcript.
// Personas with an explicit prompt use it verbatim.
func BuildSystemPrompt(p *persona.Persona) string {
	if prompt := strings.TrimSpace(p.Prompt); prompt != "" {
		return p.Prompt
	}
	return buildBasicSystemPrompt(p)
}

// buildBasicSystemPrompt creates a basic system prompt when no prompt is configured
func buildBasicSystemPrompt(p *persona.Persona) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("You are %s", p.Name))
	if p.Title != "" {
		builder.WriteString(", ")
		builder.WriteString(strings.ToLower(p.Title))
	}
	builder.WriteString(".")

	if p.Tone != "" {
		builder.WriteString("\nTone: ")
		builder.WriteString(p.Tone)
	}
	if len(p.Traits) > 0 {
		builder.WriteString("\n\nCore traits:\n- ")
		builder.WriteString(strings.Join(p.Traits, "\n- "))
	}
	builder.WriteString("\n\nStay in character and keep replies short and friendly.")
	return builder.String()
}
