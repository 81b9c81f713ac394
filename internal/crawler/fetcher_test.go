package crawler

import (
	"context"
	"errors"
)

// fakeFetcher serves documents from memory and records every request.
type fakeFetcher struct {
	docs     map[string]string
	links    []string
	crawlErr error

	fetched     []string
	fetchDepths []int
	crawlCalls  int
	crawlRoot   string
	crawlConfig CrawlConfig
}

func newFakeFetcher(docs map[string]string) *fakeFetcher {
	return &fakeFetcher{docs: docs}
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string, depth int) (string, error) {
	f.fetched = append(f.fetched, url)
	f.fetchDepths = append(f.fetchDepths, depth)
	doc, ok := f.docs[url]
	if !ok {
		return "", &FetchError{URL: url, Err: errors.New("Not Found")}
	}
	return doc, nil
}

func (f *fakeFetcher) Crawl(ctx context.Context, root string, config CrawlConfig) ([]string, error) {
	f.crawlCalls++
	f.crawlRoot = root
	f.crawlConfig = config
	return f.links, f.crawlErr
}

func (f *fakeFetcher) fetchCount(url string) int {
	n := 0
	for _, u := range f.fetched {
		if u == url {
			n++
		}
	}
	return n
}

func urlset(locs ...string) string {
	doc := `<?xml version="1.0" encoding="UTF-8"?>` + "\n" +
		`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`
	for _, loc := range locs {
		doc += "<url><loc>" + loc + "</loc></url>"
	}
	return doc + "</urlset>"
}

func sitemapIndex(locs ...string) string {
	doc := `<?xml version="1.0" encoding="UTF-8"?>` + "\n" +
		`<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`
	for _, loc := range locs {
		doc += "<sitemap><loc>" + loc + "</loc></sitemap>"
	}
	return doc + "</sitemapindex>"
}
