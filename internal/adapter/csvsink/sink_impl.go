package csvsink

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/user/banner-resolver/internal/entity"
	"github.com/user/banner-resolver/internal/repository"
)

// utf8BOM lets spreadsheet tools detect UTF-8 and keep non-ASCII titles.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var header = []string{"Title", "Link", "Src", "Source"}

// Sink writes banner records as a CSV file.
type Sink struct {
	path string
}

// NewSink creates a RecordSink writing to path.
func NewSink(path string) repository.RecordSink {
	return &Sink{path: path}
}

// Write replaces the file at the sink's path. Rows repeating an earlier Src
// are dropped. The file is written even when records is empty.
func (s *Sink) Write(_ context.Context, records []entity.BannerRecord) (string, error) {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("creating output directory: %w", err)
		}
	}

	f, err := os.Create(s.path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", s.path, err)
	}
	defer f.Close()

	buf := bufio.NewWriter(f)
	if _, err := buf.Write(utf8BOM); err != nil {
		return "", fmt.Errorf("writing %s: %w", s.path, err)
	}

	w := csv.NewWriter(buf)
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("writing %s: %w", s.path, err)
	}
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		if _, dup := seen[r.ImageLocator]; dup {
			continue
		}
		seen[r.ImageLocator] = struct{}{}
		if err := w.Write([]string{r.Title, r.Destination, r.ImageLocator, string(r.Source)}); err != nil {
			return "", fmt.Errorf("writing %s: %w", s.path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("writing %s: %w", s.path, err)
	}
	if err := buf.Flush(); err != nil {
		return "", fmt.Errorf("writing %s: %w", s.path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", s.path, err)
	}
	return s.path, nil
}
