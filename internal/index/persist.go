package index

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"mentorchat/internal/util"
)

// The on-disk layout is a manifest plus an opaque entries blob. The manifest
// records the embedding model because it is part of the index schema:
// loading an index with a different serving model produces meaningless
// similarity scores, and must fail loudly instead.
const (
	manifestName  = "manifest.json"
	entriesName   = "entries.gob"
	formatVersion = 1
)

type manifest struct {
	FormatVersion int       `json:"format_version"`
	EmbedModel    string    `json:"embed_model"`
	Dimension     int       `json:"dimension"`
	EntryCount    int       `json:"entry_count"`
	BuiltAt       time.Time `json:"built_at"`
}

// Save serializes the index into dir.
func (x *Index) Save(dir string) error {
	if x.Len() == 0 {
		return fmt.Errorf("refusing to save an empty index")
	}
	if err := util.EnsureDir(dir); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(dir, entriesName))
	if err != nil {
		return fmt.Errorf("create entries file: %w", err)
	}
	if err := gob.NewEncoder(f).Encode(x.entries); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode entries: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close entries file: %w", err)
	}
	return util.WriteJSONAtomic(filepath.Join(dir, manifestName), manifest{
		FormatVersion: formatVersion,
		EmbedModel:    x.model,
		Dimension:     x.dim,
		EntryCount:    x.Len(),
		BuiltAt:       time.Now().UTC(),
	})
}

// Load deserializes an index from dir. Corrupt or incompatible contents are
// deserialization errors, fatal to the caller's readiness.
func Load(dir string) (*Index, error) {
	raw, err := os.ReadFile(filepath.Join(dir, manifestName))
	if err != nil {
		return nil, fmt.Errorf("read index manifest: %w", err)
	}
	var m manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse index manifest: %w", err)
	}
	if m.FormatVersion != formatVersion {
		return nil, fmt.Errorf("index format version %d is not supported (want %d)", m.FormatVersion, formatVersion)
	}

	f, err := os.Open(filepath.Join(dir, entriesName))
	if err != nil {
		return nil, fmt.Errorf("open entries file: %w", err)
	}
	defer f.Close()
	var entries []Entry
	if err := gob.NewDecoder(f).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode entries: %w", err)
	}
	if len(entries) != m.EntryCount {
		return nil, fmt.Errorf("index holds %d entries but manifest says %d", len(entries), m.EntryCount)
	}

	x := New(m.EmbedModel)
	if err := x.Add(entries...); err != nil {
		return nil, fmt.Errorf("rebuild index: %w", err)
	}
	if x.dim != m.Dimension {
		return nil, fmt.Errorf("index dimension %d does not match manifest dimension %d", x.dim, m.Dimension)
	}
	return x, nil
}
