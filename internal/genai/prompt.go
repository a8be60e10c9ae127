package genai

import (
	"fmt"
	"strings"

	"claim-intake/internal/models"
)

// BuildPrompt renders the follow-up question prompt from the claim progress.
func BuildPrompt(utterance string, progress models.Progress) string {
	var parts []string

	parts = append(parts, "You are a professional insurance claim assistant.")

	parts = append(parts, "\nCURRENT PROGRESS:")
	for _, f := range progress.Filled {
		parts = append(parts, fmt.Sprintf("- %s: %s", f.Field.Label(), f.Value))
	}

	missing := make([]string, 0, len(progress.Missing))
	for _, f := range progress.Missing {
		missing = append(missing, f.Label())
	}
	parts = append(parts, fmt.Sprintf("\nSTILL NEEDED: %s", strings.Join(missing, ", ")))

	parts = append(parts, "\nRULES:")
	parts = append(parts, "1. Acknowledge what the user just said.")
	parts = append(parts, "2. Ask for exactly ONE missing item.")
	parts = append(parts, "3. Keep it under 2 sentences. No small talk.")

	parts = append(parts, fmt.Sprintf("\nUser: %s", utterance))
	parts = append(parts, "Assistant:")

	return strings.Join(parts, "\n")
}
