package corpus

import (
	"fmt"

	"mentorchat/internal/models"
	"mentorchat/internal/util"
)

// SplitDocument slides a window of chunkSize runes over the document text,
// advancing chunkSize-overlap runes per step, so consecutive chunks share
// exactly overlap runes. The final chunk may be shorter. Boundaries are
// deterministic for a given document and parameter pair.
//
// overlap < chunkSize is enforced by config validation; callers passing an
// invalid pair anyway get a single whole-document chunk rather than an
// infinite loop.
func SplitDocument(doc models.Document, chunkSize, overlap int) []models.Chunk {
	runes := []rune(doc.Text)
	if len(runes) == 0 {
		return nil
	}
	step := chunkSize - overlap
	if chunkSize <= 0 || step <= 0 {
		step = len(runes)
		chunkSize = len(runes)
	}

	out := make([]models.Chunk, 0, len(runes)/step+1)
	for start := 0; start < len(runes); start += step {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, models.Chunk{
			ChunkID:    fmt.Sprintf("%s-%d", util.ShortID(doc.ID, 12), len(out)),
			DocumentID: doc.ID,
			Source:     doc.Source,
			Page:       doc.Page,
			Index:      len(out),
			Offset:     start,
			Text:       string(runes[start:end]),
		})
		if end == len(runes) {
			break
		}
	}
	return out
}

// SplitAll chunks every document in order.
func SplitAll(docs []models.Document, chunkSize, overlap int) []models.Chunk {
	chunks := make([]models.Chunk, 0, len(docs))
	for _, d := range docs {
		chunks = append(chunks, SplitDocument(d, chunkSize, overlap)...)
	}
	return chunks
}
