package providers

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"sync"
)

// MockProvider is a deterministic in-process stand-in for both provider
// interfaces. Embeddings are hashed bag-of-words vectors, so texts sharing
// terms score closer under cosine similarity than unrelated texts. Chat
// calls record the messages they received and can be scripted to fail.
type MockProvider struct {
	dim int

	mu       sync.Mutex
	Response string
	FailWith error
	// Fails makes the next N Chat calls return FailWith before succeeding.
	Fails int
	Calls [][]Message
}

func NewMockProvider(dim int) *MockProvider {
	if dim <= 0 {
		dim = 256
	}
	return &MockProvider{dim: dim, Response: "Mock response."}
}

func (m *MockProvider) Model() string { return "mock-embed" }

func (m *MockProvider) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	_ = ctx
	out := make([][]float32, 0, len(inputs))
	for _, input := range inputs {
		out = append(out, termVector(input, m.dim))
	}
	return out, nil
}

func (m *MockProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, messages)
	if m.Fails > 0 {
		m.Fails--
		return "", m.FailWith
	}
	return m.Response, nil
}

// LastCall returns the most recent Chat message list, or nil.
func (m *MockProvider) LastCall() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return nil
	}
	return m.Calls[len(m.Calls)-1]
}

func termVector(input string, dim int) []float32 {
	vec := make([]float32, dim)
	for _, term := range strings.Fields(strings.ToLower(input)) {
		term = strings.Trim(term, ".,!?:;\"'()")
		if term == "" {
			continue
		}
		h := fnv.New32a()
		_, _ = h.Write([]byte(term))
		vec[int(h.Sum32())%dim]++
	}
	return normalize(vec)
}

func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	inv := float32(1.0 / math.Sqrt(sum))
	for i := range v {
		v[i] *= inv
	}
	return v
}
