package agent

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aduval/foyer/internal/llm"
)

const retitleTimeout = 30 * time.Second

const retitlePrompt = `Donne un titre court (cinq mots maximum, en français, sans guillemets) à une conversation qui commence par ce message :`

// RetitleAsync renames a conversation from its default timestamp title to a
// short model-generated one. Detached and best-effort: failures are logged
// and the turn is never blocked on it.
func (a *Assistant) RetitleAsync(householdID, conversationID int64, firstMessage string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), retitleTimeout)
		defer cancel()

		resp, err := a.client.Chat(ctx, a.model, []llm.Message{
			{Role: llm.RoleUser, Content: retitlePrompt + "\n\n" + firstMessage},
		}, nil)
		if err != nil {
			a.logger.Warn("retitle failed", "conversation", conversationID, "error", err)
			return
		}

		title := cleanTitle(resp.Message.Content)
		if title == "" {
			return
		}
		if err := a.convs.SetTitle(householdID, conversationID, title); err != nil {
			a.logger.Warn("retitle save failed", "conversation", conversationID, "error", err)
		}
	}()
}

func cleanTitle(raw string) string {
	title := strings.TrimSpace(raw)
	title = strings.Trim(title, `"«»`)
	title = strings.TrimSpace(title)
	if line, _, found := strings.Cut(title, "\n"); found {
		title = strings.TrimSpace(line)
	}
	const maxTitle = 80
	if utf8.RuneCountInString(title) > maxTitle {
		runes := []rune(title)
		title = string(runes[:maxTitle])
	}
	return title
}
