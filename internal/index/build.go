package index

import (
	"context"
	"fmt"
	"log"

	"mentorchat/internal/models"
	"mentorchat/internal/providers"
)

// Build embeds chunks in batches with the given provider and assembles the
// similarity index. Any embedding failure aborts the build: a partially
// embedded index would silently miss corpus content.
func Build(ctx context.Context, embedder providers.EmbeddingProvider, chunks []models.Chunk, batchSize int) (*Index, error) {
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no chunks to index")
	}
	if batchSize < 1 {
		batchSize = 1
	}
	x := New(embedder.Model())
	for start := 0; start < len(chunks); start += batchSize {
		end := start + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]
		inputs := make([]string, 0, len(batch))
		for _, c := range batch {
			inputs = append(inputs, c.Text)
		}
		vectors, err := embedder.Embed(ctx, inputs)
		if err != nil {
			return nil, fmt.Errorf("embed chunks %d-%d: %w", start, end-1, err)
		}
		if len(vectors) != len(batch) {
			return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(batch))
		}
		for i, c := range batch {
			if err := x.Add(Entry{
				ChunkID:    c.ChunkID,
				DocumentID: c.DocumentID,
				Source:     c.Source,
				Page:       c.Page,
				Offset:     c.Offset,
				Text:       c.Text,
				Vector:     vectors[i],
			}); err != nil {
				return nil, err
			}
		}
		log.Printf("embedded %d/%d chunks model=%s", end, len(chunks), embedder.Model())
	}
	return x, nil
}
