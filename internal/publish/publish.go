// Package publish writes and reads the stats document as compressed JSON.
package publish

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/pable/go-merc-metrics/internal/model"
)

// ErrNotFound is returned by Read when no document exists at the path.
var ErrNotFound = errors.New("stats document not found")

// Format is the compression applied to the published JSON.
type Format int

const (
	Gzip Format = iota
	Zstd
)

// FormatFor picks the format from the file extension. Anything other than
// ".zst" is gzip.
func FormatFor(path string) Format {
	if strings.HasSuffix(path, ".zst") {
		return Zstd
	}
	return Gzip
}

// Encode writes doc to w as compressed JSON at the format's best compression level.
func Encode(w io.Writer, doc *model.GlobalStats, format Format) error {
	var zw io.WriteCloser
	var err error
	switch format {
	case Zstd:
		zw, err = zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	default:
		zw, err = gzip.NewWriterLevel(w, gzip.BestCompression)
	}
	if err != nil {
		return err
	}
	if err := json.NewEncoder(zw).Encode(doc); err != nil {
		zw.Close()
		return fmt.Errorf("encode document: %w", err)
	}
	return zw.Close()
}

// Decode reads a compressed JSON document from r.
func Decode(r io.Reader, format Format) (*model.GlobalStats, error) {
	var src io.Reader
	switch format {
	case Zstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("open zstd stream: %w", err)
		}
		defer zr.Close()
		src = zr
	default:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("open gzip stream: %w", err)
		}
		defer zr.Close()
		src = zr
	}

	var doc model.GlobalStats
	if err := json.NewDecoder(src).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &doc, nil
}

// Write publishes doc at path. The document is written to a temporary file in
// the same directory and renamed into place, so readers never see a partial file.
func Write(path string, doc *model.GlobalStats) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, doc, FormatFor(path)); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("publish %s: %w", path, err)
	}
	return nil
}

// Read loads the document at path.
func Read(path string) (*model.GlobalStats, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f, FormatFor(path))
}
