package index

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"mentorchat/internal/blob"
)

// Upload copies every file of a serialized index directory to the store
// under prefix, e.g. faiss_index/manifest.json and faiss_index/entries.gob.
func Upload(ctx context.Context, store blob.Store, prefix, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read index dir: %w", err)
	}
	uploaded := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return fmt.Errorf("read index file %s: %w", e.Name(), err)
		}
		key := path.Join(prefix, e.Name())
		if err := store.Upload(ctx, key, data, ""); err != nil {
			return fmt.Errorf("upload index file %s: %w", key, err)
		}
		uploaded++
	}
	if uploaded == 0 {
		return fmt.Errorf("index dir %s holds no files to upload", dir)
	}
	return nil
}

// Fetch downloads a serialized index from the store into a private temp
// directory, deserializes it, and removes the directory on every exit path.
// wantModel must match the manifest's embedding model; a mismatch means the
// serving configuration cannot embed queries compatibly and is a schema
// error, not a soft degradation.
func Fetch(ctx context.Context, store blob.Store, prefix, wantModel string) (*Index, error) {
	keys, err := store.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("list index objects under %s: %w", prefix, err)
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("no index objects found under %s", prefix)
	}

	tmp, err := os.MkdirTemp("", "mentorchat-index-*")
	if err != nil {
		return nil, fmt.Errorf("create index scratch dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	for _, key := range keys {
		data, err := store.Download(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("download index object %s: %w", key, err)
		}
		if err := os.WriteFile(filepath.Join(tmp, path.Base(key)), data, 0o644); err != nil {
			return nil, fmt.Errorf("write index scratch file: %w", err)
		}
	}

	x, err := Load(tmp)
	if err != nil {
		return nil, err
	}
	if x.Model() != wantModel {
		return nil, fmt.Errorf("index was built with embedding model %q but the server is configured for %q", x.Model(), wantModel)
	}
	return x, nil
}
