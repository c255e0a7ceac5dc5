// Package chat orchestrates one conversational turn: resolve the session,
// retrieve service records for grounding, and call the configured model.
package chat

import "context"

// Message is one model-facing conversation entry.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest carries everything a provider needs for one call.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// CompletionProvider abstracts the language-model backend.
type CompletionProvider interface {
	Complete(ctx context.Context, request CompletionRequest) (string, error)
	Provider() string
}
