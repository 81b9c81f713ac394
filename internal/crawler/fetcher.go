package crawler

import (
	"context"
	"time"
)

// Fetcher supplies raw documents and performs native link-following crawls.
// Transport, retries, rendering and politeness all live behind it.
type Fetcher interface {
	// Fetch retrieves the document at url. Depth 0 means this document only.
	Fetch(ctx context.Context, url string, depth int) (string, error)
	// Crawl follows links from root and returns every page it reached.
	Crawl(ctx context.Context, root string, config CrawlConfig) ([]string, error)
}

type CrawlConfig struct {
	Depth int
	Delay time.Duration
}

// DefaultCrawlConfig is used by the native crawl fallback.
func DefaultCrawlConfig() CrawlConfig {
	return CrawlConfig{
		Depth: 3,
		Delay: 100 * time.Millisecond,
	}
}
