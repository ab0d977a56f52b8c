package providers

import (
	"fmt"

	"mentorchat/internal/config"
)

// NewEmbedder builds the embedding provider named by the configuration.
func NewEmbedder(cfg config.Config) (EmbeddingProvider, error) {
	switch cfg.EmbedProvider {
	case "openai":
		return NewOpenAIProvider(cfg.EmbedModel, cfg.ChatModel, cfg.Temperature), nil
	case "ollama":
		return NewOllamaEmbeddingProvider(cfg.OllamaBaseURL, cfg.EmbedModel), nil
	case "mock":
		return NewMockProvider(cfg.MockEmbedDim), nil
	default:
		return nil, fmt.Errorf("unsupported embed provider: %s", cfg.EmbedProvider)
	}
}

// NewLLM builds the generation provider named by the configuration.
func NewLLM(cfg config.Config) (LLMProvider, error) {
	switch cfg.ChatProvider {
	case "openai":
		return NewOpenAIProvider(cfg.EmbedModel, cfg.ChatModel, cfg.Temperature), nil
	case "mock":
		return NewMockProvider(cfg.MockEmbedDim), nil
	default:
		return nil, fmt.Errorf("unsupported chat provider: %s", cfg.ChatProvider)
	}
}
