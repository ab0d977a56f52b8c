package providers

import "context"

// Message is one role-tagged entry in a chat completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// EmbeddingProvider turns text spans into fixed-dimensionality vectors.
// Model identifies the embedding model and is part of the index schema:
// an index built with one model must never be queried with another.
type EmbeddingProvider interface {
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
	Model() string
}

// LLMProvider produces a completion for an ordered message list.
type LLMProvider interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}
