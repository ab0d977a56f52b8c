package index

import (
	"fmt"
	"math"
	"sort"
)

// Entry is one embedded chunk: its vector plus enough metadata to show
// where the text came from.
type Entry struct {
	ChunkID    string
	DocumentID string
	Source     string
	Page       int
	Offset     int
	Text       string
	Vector     []float32
}

// Result is one retrieval hit, nearest-first by cosine similarity.
type Result struct {
	Entry Entry
	Score float64
}

// Index is an in-memory similarity index over chunk embeddings. It is
// populated once (by the offline build or by deserialization) and read-only
// afterwards, so queries need no locking.
type Index struct {
	model   string
	dim     int
	entries []Entry
}

func New(model string) *Index {
	return &Index{model: model}
}

// Model reports the embedding model the index was built with. It is part of
// the index schema: queries must be embedded with the same model.
func (x *Index) Model() string { return x.model }

func (x *Index) Len() int { return len(x.entries) }

func (x *Index) Dimension() int { return x.dim }

// Add appends entries, fixing the index dimensionality on first insert.
func (x *Index) Add(entries ...Entry) error {
	for _, e := range entries {
		if len(e.Vector) == 0 {
			return fmt.Errorf("chunk %s has an empty vector", e.ChunkID)
		}
		if x.dim == 0 {
			x.dim = len(e.Vector)
		}
		if len(e.Vector) != x.dim {
			return fmt.Errorf("chunk %s vector dimension %d does not match index dimension %d", e.ChunkID, len(e.Vector), x.dim)
		}
		x.entries = append(x.entries, e)
	}
	return nil
}

// Search returns the k entries nearest to query under cosine similarity,
// ordered by non-increasing score. Fewer than k results are returned only
// when the index holds fewer entries.
func (x *Index) Search(query []float32, k int) ([]Result, error) {
	if len(query) != x.dim {
		return nil, fmt.Errorf("query dimension %d does not match index dimension %d", len(query), x.dim)
	}
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}
	results := make([]Result, 0, len(x.entries))
	for _, e := range x.entries {
		results = append(results, Result{Entry: e, Score: cosine(e.Vector, query)})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
