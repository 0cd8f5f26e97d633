// Package llm provides chat-completion clients for the assistant.
package llm

import "context"

// Client is implemented by every model provider.
type Client interface {
	// Chat sends a chat completion request and returns the response.
	Chat(ctx context.Context, model string, messages []Message, tools []map[string]any) (*ChatResponse, error)

	// Ping checks if the provider is reachable with the configured key.
	Ping(ctx context.Context) error
}
