package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLoadTextFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", []byte("Oahu is an island."))
	writeFile(t, dir, "nested/b.txt", []byte("Naha is a city."))
	writeFile(t, dir, "ignored.md", []byte("not indexed"))

	docs, errs := Load(dir)
	require.Empty(t, errs)
	require.Len(t, docs, 2)
	for _, d := range docs {
		require.NotEmpty(t, d.ID)
		require.NotEmpty(t, d.Text)
		require.Zero(t, d.Page)
	}
}

func TestLoadSkipsInvalidUTF8AndContinues(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.txt", []byte{0xff, 0xfe, 0x41})
	writeFile(t, dir, "good.txt", []byte("still loads"))

	docs, errs := Load(dir)
	require.Len(t, docs, 1)
	require.Equal(t, "still loads", docs[0].Text)
	require.Len(t, errs, 1)
	require.Contains(t, errs[0].Error(), "UTF-8")
}

func TestLoadSkipsCorruptPDFAndContinues(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.pdf", []byte("this is not a pdf"))
	writeFile(t, dir, "ok.txt", []byte("plain text survives"))

	docs, errs := Load(dir)
	require.Len(t, docs, 1)
	require.Len(t, errs, 1)
}

func TestLoadMissingDirectoryYieldsEmptySet(t *testing.T) {
	docs, errs := Load(filepath.Join(t.TempDir(), "does-not-exist"))
	require.Empty(t, docs)
	require.Empty(t, errs)
}

func TestLoadStableDocumentIDs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", []byte("same bytes"))
	first, _ := Load(dir)
	second, _ := Load(dir)
	require.Equal(t, first[0].ID, second[0].ID)
}
