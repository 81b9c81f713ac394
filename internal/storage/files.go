package storage

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Sink persists one Markdown document per page URL.
type Sink interface {
	Save(pageURL, markdown string) (string, error)
}

// FileSink writes documents into a flat output directory. Two URLs that map
// to the same filename overwrite each other.
type FileSink struct {
	dir string
}

func NewFileSink(dir string) *FileSink {
	if dir == "" {
		dir = "output"
	}
	return &FileSink{dir: dir}
}

func (s *FileSink) Dir() string {
	return s.dir
}

// Save writes markdown under Filename(pageURL) and returns the written path.
func (s *FileSink) Save(pageURL, markdown string) (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(s.dir, Filename(pageURL))
	if err := os.WriteFile(path, []byte(markdown), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// Filename maps a page URL to its output file: the last non-empty path
// segment plus ".md", or "index.md" when the URL has no path segments.
func Filename(pageURL string) string {
	p := pageURL
	if u, err := url.Parse(pageURL); err == nil && u.Host != "" {
		p = u.Path
	}

	p = strings.TrimRight(p, "/")
	if p == "" {
		return "index.md"
	}

	segment := p[strings.LastIndex(p, "/")+1:]
	if segment == "" || segment == "." || segment == ".." {
		return "index.md"
	}
	return segment + ".md"
}
