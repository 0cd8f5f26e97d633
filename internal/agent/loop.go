package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aduval/foyer/internal/llm"
	"github.com/aduval/foyer/internal/model"
	"github.com/aduval/foyer/internal/store"
)

// maxToolRounds bounds how many times one turn may go back to the model.
// Hitting the ceiling is not an error; the user gets asked to simplify.
const maxToolRounds = 8

const fallbackMessage = "Je n'ai pas réussi à terminer cette demande en un seul échange. Peux-tu la reformuler plus simplement, ou la découper en plusieurs demandes ?"

const systemPrompt = `Tu es l'assistant du foyer. Tu aides la famille à gérer ses tâches, ses zones, ses projets, son équipement, ses animaux, ses listes de courses, son budget et ses dates importantes.

Utilise les outils pour lire et modifier les données ; n'invente jamais un état. Quand un outil échoue parce que plusieurs entrées portent le même nom, demande une précision ou réessaie avec l'id indiqué. Réponds en français, brièvement, et confirme ce que tu as fait avec les détails renvoyés par l'outil (dates et montants formatés).`

// Attachment is a file the user joined to their message; its extracted
// text is inlined into the model input.
type Attachment struct {
	Filename string
	Content  string
}

// Assistant drives conversations: it owns the turn loop and the
// conversation bookkeeping around it.
type Assistant struct {
	logger   *slog.Logger
	client   llm.Client
	model    string
	registry *Registry
	convs    *store.ConversationStore
}

func NewAssistant(logger *slog.Logger, client llm.Client, modelName string, registry *Registry, convs *store.ConversationStore) *Assistant {
	return &Assistant{
		logger:   logger.With("component", "assistant"),
		client:   client,
		model:    modelName,
		registry: registry,
		convs:    convs,
	}
}

// Turn runs one user turn: persist the user message, drive the model with
// the tool catalogue until it answers in plain text or the round ceiling is
// reached, persist and return the reply. Tool failures are absorbed into
// tool results; only a failing model call aborts the turn.
func (a *Assistant) Turn(ctx context.Context, householdID, conversationID int64, userText string, attachments []Attachment) (string, error) {
	conv, err := a.convs.GetByID(householdID, conversationID)
	if err != nil {
		return "", err
	}
	if conv == nil {
		return "", fmt.Errorf("conversation %d not found", conversationID)
	}

	history, err := a.convs.ListMessages(conversationID)
	if err != nil {
		return "", err
	}

	input := inlineAttachments(userText, attachments)
	if _, err := a.convs.AppendMessage(conversationID, model.RoleUser, userText); err != nil {
		return "", err
	}

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: systemPrompt})
	for _, m := range history {
		messages = append(messages, llm.Message{Role: wireRole(m.Role), Content: m.Content})
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: input})

	reply, err := a.run(ctx, householdID, messages)
	if err != nil {
		return "", err
	}

	if _, err := a.convs.AppendMessage(conversationID, model.RoleAssistant, reply); err != nil {
		return "", err
	}
	if err := a.convs.Touch(householdID, conversationID); err != nil {
		a.logger.Warn("touch conversation failed", "error", err)
	}

	if len(history) == 0 {
		a.RetitleAsync(householdID, conversationID, userText)
	}
	return reply, nil
}

// run is the loop itself: AwaitingModel, then either a final text answer or
// a batch of tool calls executed in request order, results appended, and
// around again, at most maxToolRounds times.
func (a *Assistant) run(ctx context.Context, householdID int64, messages []llm.Message) (string, error) {
	tools := a.registry.Definitions()

	for round := 0; round < maxToolRounds; round++ {
		resp, err := a.client.Chat(ctx, a.model, messages, tools)
		if err != nil {
			return "", fmt.Errorf("model call failed: %w", err)
		}

		calls := resp.Message.ToolCalls
		if len(calls) == 0 {
			a.logger.Debug("turn finished", "rounds", round+1)
			return resp.Message.Content, nil
		}

		messages = append(messages, resp.Message)

		// Sequential, in request order: the model expects results in the
		// same order it asked for the calls.
		for _, call := range calls {
			result := a.registry.Execute(ctx, householdID, call.Name, call.Arguments)
			a.logger.Debug("tool executed", "tool", call.Name, "round", round+1)
			messages = append(messages, llm.Message{
				Role:       llm.RoleTool,
				Content:    result,
				ToolCallID: call.ID,
			})
		}
	}

	a.logger.Info("turn hit round ceiling", "rounds", maxToolRounds)
	return fallbackMessage, nil
}

func inlineAttachments(text string, attachments []Attachment) string {
	if len(attachments) == 0 {
		return text
	}
	var b strings.Builder
	b.WriteString(text)
	for _, att := range attachments {
		b.WriteString("\n\n[Pièce jointe : ")
		b.WriteString(att.Filename)
		b.WriteString("]\n")
		b.WriteString(att.Content)
	}
	return b.String()
}

func wireRole(stored string) string {
	if stored == model.RoleAssistant {
		return llm.RoleAssistant
	}
	return llm.RoleUser
}
