package cards

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// maxReferenceSize bounds the decompressed card reference.
const maxReferenceSize = 256 << 20

// Fetcher downloads the card reference over HTTP.
type Fetcher struct {
	http *http.Client
}

// NewFetcher returns a Fetcher with a 60s request timeout.
func NewFetcher() *Fetcher {
	return &Fetcher{http: &http.Client{Timeout: 60 * time.Second}}
}

// Download fetches the reference at url, decompressing ".gz" and ".zst" bodies,
// checks that it decodes to a non-empty reference, then writes the plain JSON to
// dst. It returns the number of cards in the reference.
func (f *Fetcher) Download(ctx context.Context, url, dst string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := f.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("GET %s: HTTP %d", url, resp.StatusCode)
	}

	var src io.Reader = resp.Body
	switch {
	case strings.HasSuffix(url, ".zst"):
		dec, err := zstd.NewReader(resp.Body)
		if err != nil {
			return 0, fmt.Errorf("zstd: %w", err)
		}
		defer dec.Close()
		src = dec
	case strings.HasSuffix(url, ".gz") || resp.Header.Get("Content-Encoding") == "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return 0, fmt.Errorf("gzip: %w", err)
		}
		defer gz.Close()
		src = gz
	}

	body, err := io.ReadAll(io.LimitReader(src, maxReferenceSize))
	if err != nil {
		return 0, fmt.Errorf("read body: %w", err)
	}
	ref, err := Decode(bytes.NewReader(body))
	if err != nil {
		return 0, err
	}

	if err := writeFileAtomic(dst, body); err != nil {
		return 0, err
	}
	return ref.Len(), nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
