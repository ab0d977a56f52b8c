package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"mentorchat/internal/api"
	"mentorchat/internal/blob"
	"mentorchat/internal/config"
	"mentorchat/internal/history"
	"mentorchat/internal/index"
	"mentorchat/internal/providers"
	"mentorchat/internal/rag"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()
	if err := cfg.ValidateServe(); err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	ctx := context.Background()
	store, err := blob.NewGCS(ctx, cfg.GCSBucket)
	if err != nil {
		log.Fatalf("storage init failed: %v", err)
	}
	defer store.Close()

	embedder, err := providers.NewEmbedder(cfg)
	if err != nil {
		log.Fatalf("embedder init failed: %v", err)
	}
	llm, err := providers.NewLLM(cfg)
	if err != nil {
		log.Fatalf("llm init failed: %v", err)
	}

	// The index loads once per process; serving must not start until it is
	// in memory, so a broken or mismatched index keeps the process down.
	log.Printf("loading index bucket=%s prefix=%s model=%s", cfg.GCSBucket, cfg.IndexPrefix, cfg.EmbedModel)
	x, err := index.Fetch(ctx, store, cfg.IndexPrefix, embedder.Model())
	if err != nil {
		log.Fatalf("index load failed: %v", err)
	}
	log.Printf("index loaded entries=%d dim=%d", x.Len(), x.Dimension())

	pipeline := rag.NewPipeline(x, embedder, llm, rag.Options{
		TopK:        cfg.TopK,
		MaxRetries:  cfg.LLMMaxRetries,
		CallTimeout: time.Duration(cfg.LLMTimeoutSecs) * time.Second,
	})
	histories := history.NewStore(store, cfg.HistoryPrefix)
	srv := api.NewServer(cfg, pipeline, histories)

	log.Printf("mentorchat api listening on %s chat_model=%s embed_model=%s top_k=%d", cfg.APIAddr, cfg.ChatModel, cfg.EmbedModel, cfg.TopK)
	if err := http.ListenAndServe(cfg.APIAddr, srv.Routes()); err != nil {
		log.Fatal(err)
	}
}
