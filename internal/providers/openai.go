package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// OpenAIProvider talks to the OpenAI REST APIs for both embeddings and chat
// completions. The model identifiers and sampling temperature are fixed at
// construction; every index built with an embedding model must be served
// with the same one.
type OpenAIProvider struct {
	apiKey      string
	baseURL     string
	embedModel  string
	chatModel   string
	temperature float64
	client      *http.Client
}

func NewOpenAIProvider(embedModel, chatModel string, temperature float64) *OpenAIProvider {
	baseURL := strings.TrimSpace(os.Getenv("MENTORCHAT_OPENAI_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	return &OpenAIProvider{
		apiKey:      os.Getenv("OPENAI_API_KEY"),
		baseURL:     strings.TrimRight(baseURL, "/"),
		embedModel:  embedModel,
		chatModel:   chatModel,
		temperature: temperature,
		client:      &http.Client{Timeout: 90 * time.Second},
	}
}

func (o *OpenAIProvider) Model() string { return o.embedModel }

// ChatModel reports the generation model identifier.
func (o *OpenAIProvider) ChatModel() string { return o.chatModel }

func (o *OpenAIProvider) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	if o.apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set")
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no embedding inputs")
	}
	payload, _ := json.Marshal(map[string]any{"model": o.embedModel, "input": inputs})
	httpReq, _ := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/v1/embeddings", bytes.NewReader(payload))
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := o.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("openai embedding request failed: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("openai embedding error %d: %s", resp.StatusCode, string(body))
	}
	var parsed struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode embedding response: %w", err)
	}
	if len(parsed.Data) != len(inputs) {
		return nil, fmt.Errorf("openai returned %d embeddings for %d inputs", len(parsed.Data), len(inputs))
	}
	out := make([][]float32, 0, len(parsed.Data))
	for _, d := range parsed.Data {
		out = append(out, d.Embedding)
	}
	return out, nil
}

func (o *OpenAIProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	if o.apiKey == "" {
		return "", fmt.Errorf("OPENAI_API_KEY is not set")
	}
	payload, _ := json.Marshal(map[string]any{
		"model":       o.chatModel,
		"temperature": o.temperature,
		"messages":    messages,
	})
	httpReq, _ := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/v1/chat/completions", bytes.NewReader(payload))
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := o.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("openai chat request failed: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("openai chat error %d: %s", resp.StatusCode, string(body))
	}
	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("openai returned empty choices")
	}
	return parsed.Choices[0].Message.Content, nil
}
