// Package compose turns a selection of messages and a prompt template
// into the final text handed to an external model or editor.
package compose

import (
	"fmt"
	"strings"

	"github.com/promptgram/promptgram/internal/domain"
)

// timestampLayout approximates a locale-style date-time rendering.
const timestampLayout = "1/2/2006, 3:04:05 PM"

// RenderMessages renders the selection in insertion order, one block per
// message, blocks separated by a blank line.
func RenderMessages(msgs []domain.Message) string {
	blocks := make([]string, len(msgs))
	for i, m := range msgs {
		blocks[i] = fmt.Sprintf("[%s] %s: %s",
			m.Timestamp.Format(timestampLayout), senderName(m), m.Text)
	}
	return strings.Join(blocks, "\n\n")
}

// Compose substitutes the rendered selection for the first occurrence of
// the {{messages}} placeholder in body, then prepends an instruction
// naming the target language unless the text already mentions it
// (case-insensitively). A body without the placeholder passes through
// with only the language prefix applied. Pure function of its inputs.
func Compose(body string, msgs []domain.Message, langCode string) string {
	out := strings.Replace(body, Placeholder, RenderMessages(msgs), 1)

	lang := LanguageName(langCode)
	if !strings.Contains(strings.ToLower(out), strings.ToLower(lang)) {
		out = fmt.Sprintf("Please respond in %s. %s", lang, out)
	}
	return out
}

func senderName(m domain.Message) string {
	if m.Sender != nil && m.Sender.FirstName != "" {
		return m.Sender.FirstName
	}
	return "Unknown"
}
