package main

import (
	"context"
	"log"

	"mentorchat/internal/blob"
	"mentorchat/internal/config"
	"mentorchat/internal/corpus"
	"mentorchat/internal/index"
	"mentorchat/internal/providers"
	"mentorchat/internal/util"

	"github.com/joho/godotenv"
)

// The ingest job rebuilds the whole corpus index from scratch and replaces
// the serialized copy in the bucket. It runs offline; serving processes
// pick the new index up on their next restart.
func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()
	if err := cfg.ValidateIngest(); err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	docs, loadErrs := corpus.Load(cfg.DataDir)
	for _, e := range loadErrs {
		log.Printf("skipping source: %v", e)
	}
	if len(docs) == 0 {
		log.Fatalf("%v: %s", util.ErrEmptyCorpus, cfg.DataDir)
	}
	log.Printf("loaded %d documents from %s (%d skipped)", len(docs), cfg.DataDir, len(loadErrs))

	chunks := corpus.SplitAll(docs, cfg.ChunkSize, cfg.ChunkOverlap)
	log.Printf("split into %d chunks size=%d overlap=%d", len(chunks), cfg.ChunkSize, cfg.ChunkOverlap)

	embedder, err := providers.NewEmbedder(cfg)
	if err != nil {
		log.Fatalf("embedder init failed: %v", err)
	}

	ctx := context.Background()
	x, err := index.Build(ctx, embedder, chunks, cfg.EmbedBatchSize)
	if err != nil {
		log.Fatalf("index build failed: %v", err)
	}
	if err := x.Save(cfg.IndexDir); err != nil {
		log.Fatalf("index save failed: %v", err)
	}
	log.Printf("index saved to %s entries=%d dim=%d model=%s", cfg.IndexDir, x.Len(), x.Dimension(), x.Model())

	store, err := blob.NewGCS(ctx, cfg.GCSBucket)
	if err != nil {
		log.Fatalf("storage init failed: %v", err)
	}
	defer store.Close()
	if err := index.Upload(ctx, store, cfg.IndexPrefix, cfg.IndexDir); err != nil {
		log.Fatalf("index upload failed: %v", err)
	}
	log.Printf("index uploaded to gs://%s/%s", cfg.GCSBucket, cfg.IndexPrefix)
}
