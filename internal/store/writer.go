package store

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/crypto/sha3"

	"github.com/nao1215/corpusfetch/internal/model"
)

// DefaultCrawlFile is the file name of a crawled book when none is given.
const DefaultCrawlFile = "book.txt"

const (
	dirPerm  = 0o750
	filePerm = 0o644
)

// Writer writes documents into one output directory.
type Writer struct {
	dir    string
	logger *slog.Logger
}

// Option configures a Writer.
type Option func(*Writer)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Writer) {
		w.logger = logger
	}
}

// NewWriter returns a Writer for dir. The directory is created on the first write.
func NewWriter(dir string, opts ...Option) *Writer {
	w := &Writer{
		dir:    dir,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Dir returns the output directory.
func (w *Writer) Dir() string {
	return w.dir
}

// FileName returns the file name a document is written to.
func FileName(doc model.Document) string {
	collection := safeName(doc.Collection)
	var name string
	switch doc.Kind {
	case model.KindPage:
		name = collection + "_" + strconv.Itoa(doc.Page)
	case model.KindBook:
		name = collection
		if doc.Span != "" {
			name += "_" + safeName(doc.Span)
		}
	case model.KindCrawl:
		if doc.FileName != "" {
			return safeName(doc.FileName)
		}
		return DefaultCrawlFile
	}
	if !doc.Variant.IsBase() {
		name += "_" + doc.Variant.Slug()
	}
	return name + ".txt"
}

// safeName replaces path separators so a name stays inside the output directory.
func safeName(name string) string {
	name = strings.NewReplacer("/", "_", "\\", "_").Replace(strings.TrimSpace(name))
	if name == "" || name == "." || name == ".." {
		return "_"
	}
	return name
}

// Write persists doc. Documents without content are skipped unless they
// are anchors. Errors are logged and reported in the result; they never panic.
func (w *Writer) Write(doc model.Document) model.WriteResult {
	path := filepath.Join(w.dir, FileName(doc))
	result := model.WriteResult{Path: path, Variant: doc.Variant}

	if !doc.Anchor && !doc.HasContent() {
		result.Skipped = true
		w.logger.Debug("skipping document without content", "path", path)
		return result
	}

	if err := os.MkdirAll(w.dir, dirPerm); err != nil {
		return w.failed(result, err)
	}
	body := []byte(doc.Body)
	if err := writeAtomic(path, body); err != nil {
		return w.failed(result, err)
	}

	digest := sha3.Sum256(body)
	result.Written = true
	result.Bytes = len(body)
	result.Digest = hex.EncodeToString(digest[:])
	w.logger.Debug("document written", "path", path, "bytes", result.Bytes)
	return result
}

// WriteAll writes every document. A failed write does not stop the others.
func (w *Writer) WriteAll(docs []model.Document) []model.WriteResult {
	results := make([]model.WriteResult, 0, len(docs))
	for _, doc := range docs {
		results = append(results, w.Write(doc))
	}
	return results
}

func (w *Writer) failed(result model.WriteResult, err error) model.WriteResult {
	result.Err = fmt.Errorf("%w: %s: %w", model.ErrPersistence, result.Path, err)
	w.logger.Error("failed to write document", "path", result.Path, "error", err)
	return result
}

// writeAtomic replaces dest with data through a synced temporary file.
func writeAtomic(dest string, data []byte) (err error) {
	dir := filepath.Dir(dest)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	bw := bufio.NewWriter(tmp)
	if _, err = bw.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = bw.Flush(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmpPath, filePerm); err != nil {
		return err
	}
	if err = os.Rename(tmpPath, dest); err != nil {
		return err
	}
	_ = syncDir(dir)
	return nil
}

// syncDir flushes directory metadata so the rename survives a crash.
func syncDir(dir string) error {
	d, err := os.Open(dir) //nolint:gosec // dir is the configured output directory
	if err != nil {
		return err
	}
	defer d.Close()
	if err := d.Sync(); err != nil && !errors.Is(err, os.ErrInvalid) {
		return err
	}
	return nil
}
