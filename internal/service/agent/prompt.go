package agent

import (
	"fmt"
	"strings"
	"time"

	"github.com/sandevgo/buddybot/internal/core"
)

const (
	promptMessages = 10

	promptHeader = "Based on this conversation context:\n"
	promptFooter = "\n\nAnswer this question: %s\n\nFocus on tasks, project status, and action items from the conversation."
)

// buildPrompt renders the newest messages (at most promptMessages) followed by the question.
// Oldest lines are dropped until the prompt fits budget tokens; budget <= 0 disables the check.
func buildPrompt(question string, messages []core.Message, budget int, count func(string) int) string {
	if len(messages) > promptMessages {
		messages = messages[len(messages)-promptMessages:]
	}

	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		lines = append(lines, fmt.Sprintf("%s: %s", m.Timestamp.Format(time.RFC3339), m.Content))
	}

	footer := fmt.Sprintf(promptFooter, question)
	render := func(lines []string) string {
		return promptHeader + strings.Join(lines, "\n") + footer
	}

	prompt := render(lines)
	for budget > 0 && len(lines) > 0 && count(prompt) > budget {
		lines = lines[1:]
		prompt = render(lines)
	}
	return prompt
}
