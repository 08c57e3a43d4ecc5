// Package extract converts source files into plain text. Readers are keyed by
// file extension so new formats can be added without touching pipeline code.
package extract

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/docpipeline/constants"
)

// ReaderFunc converts one file into plain text.
type ReaderFunc func(path string) (string, error)

// Registry dispatches to a ReaderFunc by file extension, falling back to a
// plain text read for anything unregistered.
type Registry struct {
	byExt    map[string]ReaderFunc
	fallback ReaderFunc
	log      *slog.Logger
}

func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		byExt:    make(map[string]ReaderFunc),
		fallback: readText,
		log:      logger,
	}
	r.Register("txt", readText)
	r.Register("md", readText)
	r.Register("pdf", readPDF)
	r.Register("docx", readDOCX)
	return r
}

// Register installs (or replaces) the reader for an extension.
func (r *Registry) Register(ext string, fn ReaderFunc) {
	r.byExt[constants.NormalizeExt(ext)] = fn
}

// ReadFile extracts plain text from path using the reader registered for its
// extension.
func (r *Registry) ReadFile(path string) (string, error) {
	ext := constants.NormalizeExt(filepath.Ext(path))
	fn, ok := r.byExt[ext]
	if !ok {
		fn = r.fallback
	}

	format := constants.MapExtToFormat(ext)
	text, err := fn(path)
	if err != nil {
		r.log.Warn("extract.read_failed", "path", path, "format", format, "error", err)
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	r.log.Debug("extract.read_ok", "path", path, "format", format, "bytes", len(text))
	return text, nil
}

func readText(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
