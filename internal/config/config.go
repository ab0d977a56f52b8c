package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	APIAddr        string
	AllowedOrigins []string

	JWTSecret   string
	JWTIssuer   string
	JWTAudience string

	GCSBucket     string
	IndexPrefix   string
	HistoryPrefix string

	DataDir  string
	IndexDir string

	EmbedProvider string
	EmbedModel    string
	MockEmbedDim  int

	ChatProvider string
	ChatModel    string
	Temperature  float64

	ChunkSize    int
	ChunkOverlap int
	TopK         int

	EmbedBatchSize   int
	LLMTimeoutSecs   int
	LLMMaxRetries    int
	OllamaBaseURL    string
	RequestBodyLimit int64
}

func Load() Config {
	return Config{
		APIAddr:        getenv("MENTORCHAT_API_ADDR", ":8080"),
		AllowedOrigins: splitList(getenv("MENTORCHAT_ALLOWED_ORIGINS", "")),

		JWTSecret:   os.Getenv("MENTORCHAT_JWT_SECRET"),
		JWTIssuer:   getenv("MENTORCHAT_JWT_ISSUER", "https://hacktsu.doyou.love"),
		JWTAudience: getenv("MENTORCHAT_JWT_AUDIENCE", "my-ai-chat-app"),

		GCSBucket:     os.Getenv("MENTORCHAT_GCS_BUCKET"),
		IndexPrefix:   getenv("MENTORCHAT_INDEX_PREFIX", "faiss_index"),
		HistoryPrefix: getenv("MENTORCHAT_HISTORY_PREFIX", "chat_histories"),

		DataDir:  getenv("MENTORCHAT_DATA_DIR", "./data/yanbaru"),
		IndexDir: getenv("MENTORCHAT_INDEX_DIR", "./faiss_index"),

		EmbedProvider: getenv("MENTORCHAT_EMBED_PROVIDER", "openai"),
		EmbedModel:    getenv("MENTORCHAT_EMBED_MODEL", "text-embedding-ada-002"),
		MockEmbedDim:  getenvInt("MENTORCHAT_MOCK_EMBED_DIM", 256),

		ChatProvider: getenv("MENTORCHAT_CHAT_PROVIDER", "openai"),
		ChatModel:    getenv("MENTORCHAT_CHAT_MODEL", "gpt-4o"),
		Temperature:  getenvFloat("MENTORCHAT_TEMPERATURE", 0.5),

		ChunkSize:    getenvInt("MENTORCHAT_CHUNK_SIZE", 1000),
		ChunkOverlap: getenvInt("MENTORCHAT_CHUNK_OVERLAP", 200),
		TopK:         getenvInt("MENTORCHAT_TOP_K", 3),

		EmbedBatchSize:   getenvInt("MENTORCHAT_EMBED_BATCH_SIZE", 64),
		LLMTimeoutSecs:   getenvInt("MENTORCHAT_LLM_TIMEOUT_SECONDS", 60),
		LLMMaxRetries:    getenvInt("MENTORCHAT_LLM_MAX_RETRIES", 2),
		OllamaBaseURL:    getenv("MENTORCHAT_OLLAMA_BASE_URL", "http://localhost:11434"),
		RequestBodyLimit: int64(getenvInt("MENTORCHAT_REQUEST_BODY_LIMIT", 1<<20)),
	}
}

// Validate checks the pipeline parameters shared by the ingest job and the
// API server. Invalid settings are configuration errors and must keep the
// process from serving traffic.
func (c Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 {
		return fmt.Errorf("chunk overlap must not be negative, got %d", c.ChunkOverlap)
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("chunk overlap %d must be smaller than chunk size %d", c.ChunkOverlap, c.ChunkSize)
	}
	if c.TopK < 1 {
		return fmt.Errorf("top_k must be at least 1, got %d", c.TopK)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be in [0,2], got %g", c.Temperature)
	}
	if c.EmbedBatchSize < 1 {
		return fmt.Errorf("embed batch size must be at least 1, got %d", c.EmbedBatchSize)
	}
	if strings.TrimSpace(c.EmbedModel) == "" {
		return fmt.Errorf("embedding model identifier is required")
	}
	switch c.EmbedProvider {
	case "openai", "ollama", "mock":
	default:
		return fmt.Errorf("unsupported embed provider %q", c.EmbedProvider)
	}
	switch c.ChatProvider {
	case "openai", "mock":
	default:
		return fmt.Errorf("unsupported chat provider %q", c.ChatProvider)
	}
	return nil
}

// ValidateServe adds the requirements of the long-lived API server.
func (c Config) ValidateServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("MENTORCHAT_JWT_SECRET is required")
	}
	if c.GCSBucket == "" {
		return fmt.Errorf("MENTORCHAT_GCS_BUCKET is required")
	}
	return nil
}

// ValidateIngest adds the requirements of the offline index build job.
func (c Config) ValidateIngest() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.GCSBucket == "" {
		return fmt.Errorf("MENTORCHAT_GCS_BUCKET is required")
	}
	return nil
}

func getenv(k, fallback string) string {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	return v
}

func getenvInt(k string, fallback int) int {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvFloat(k string, fallback float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
