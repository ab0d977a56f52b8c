package corpus

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"mentorchat/internal/models"
	"mentorchat/internal/util"

	"github.com/ledongthuc/pdf"
)

// LoadError records a source file the loader had to skip.
type LoadError struct {
	Path string
	Err  error
}

func (e LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

// Load walks root recursively and returns one document per .txt file and one
// document per page of each .pdf file. Unreadable or undecodable files are
// skipped and reported, never aborting the walk; a missing root yields an
// empty result.
func Load(root string) ([]models.Document, []LoadError) {
	var (
		docs []models.Document
		errs []LoadError
	)
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if !os.IsNotExist(err) {
				errs = append(errs, LoadError{Path: path, Err: err})
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".txt":
			doc, err := loadText(path)
			if err != nil {
				errs = append(errs, LoadError{Path: path, Err: err})
				return nil
			}
			docs = append(docs, doc)
		case ".pdf":
			pages, err := loadPDF(path)
			if err != nil {
				errs = append(errs, LoadError{Path: path, Err: err})
				return nil
			}
			docs = append(docs, pages...)
		}
		return nil
	})
	return docs, errs
}

func loadText(path string) (models.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return models.Document{}, fmt.Errorf("read text file: %w", err)
	}
	if !utf8.Valid(raw) {
		return models.Document{}, fmt.Errorf("file is not valid UTF-8")
	}
	text := string(raw)
	return models.Document{
		ID:     util.SHA256Hex(raw),
		Source: path,
		Text:   text,
	}, nil
}

func loadPDF(path string) ([]models.Document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	total := r.NumPage()
	docs := make([]models.Document, 0, total)
	for i := 1; i <= total; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extract pdf page %d: %w", i, err)
		}
		text = util.SanitizeText(text)
		if text == "" {
			continue
		}
		docs = append(docs, models.Document{
			ID:     util.SHA256Hex([]byte(fmt.Sprintf("%s#page=%d:%s", path, i, text))),
			Source: path,
			Page:   i,
			Text:   text,
		})
	}
	if len(docs) == 0 {
		return nil, util.ErrNoExtractableText
	}
	return docs, nil
}
