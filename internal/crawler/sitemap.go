package crawler

import (
	"context"
	"encoding/xml"
	"io"
	"strings"

	"github.com/romangod6/site2md/internal/models"
	"golang.org/x/net/html/charset"
)

// SitemapIndexer expands sitemaps and sitemap indexes into page URLs.
type SitemapIndexer struct {
	fetcher  Fetcher
	observer Observer
}

func NewSitemapIndexer(fetcher Fetcher, observer Observer) *SitemapIndexer {
	if observer == nil {
		observer = NopObserver()
	}
	return &SitemapIndexer{fetcher: fetcher, observer: observer}
}

// Expand resolves sitemapURLs and every sitemap they reference, adding page
// URLs to pages. Sitemaps are processed breadth-first from a worklist and each
// URL is expanded at most once, so reference cycles terminate.
//
// A sitemap that cannot be fetched is skipped. A sitemap that is not
// well-formed XML aborts the expansion with a *SitemapError.
func (x *SitemapIndexer) Expand(ctx context.Context, sitemapURLs []string, pages *URLSet) error {
	visited := make(map[string]struct{})
	var queue []string

	enqueue := func(u string) {
		if _, ok := visited[u]; ok {
			x.observer.Observe(Event{Kind: EventSitemapRevisited, URL: u})
			return
		}
		visited[u] = struct{}{}
		queue = append(queue, u)
	}

	for _, u := range sitemapURLs {
		if u = strings.TrimSpace(u); u != "" {
			enqueue(u)
		}
	}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		current := queue[0]
		queue = queue[1:]

		content, err := x.fetcher.Fetch(ctx, current, 0)
		if err != nil {
			x.observer.Observe(Event{Kind: EventSitemapUnavailable, URL: current, Err: err})
			continue
		}

		refs, err := ParseSitemap(current, strings.NewReader(content))
		if err != nil {
			return err
		}

		added := 0
		for _, ref := range refs {
			switch ref.Kind {
			case models.SitemapIndex:
				enqueue(ref.Loc)
			default:
				if pages.Add(ref.Loc) {
					added++
				}
			}
		}
		x.observer.Observe(Event{Kind: EventSitemapExpanded, URL: current, Count: added})
	}

	return nil
}

// ParseSitemap streams the document and returns its <loc> values in document
// order. Any <loc> counts except those of the image, video, news and mobile
// extensions, such as <image:loc>.
func ParseSitemap(sitemapURL string, r io.Reader) ([]models.SitemapRef, error) {
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = charset.NewReaderLabel

	var (
		refs  []models.SitemapRef
		inLoc bool
		text  strings.Builder
	)

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &SitemapError{URL: sitemapURL, Err: err}
		}

		switch t := token.(type) {
		case xml.StartElement:
			if isLoc(t.Name) {
				inLoc = true
				text.Reset()
			}
		case xml.CharData:
			if inLoc {
				text.Write(t)
			}
		case xml.EndElement:
			if inLoc && isLoc(t.Name) {
				inLoc = false
				if loc := strings.TrimSpace(text.String()); loc != "" {
					refs = append(refs, models.ClassifyLoc(loc))
				}
			}
		}
	}

	return refs, nil
}

// Extension namespaces whose own <loc> elements are not page or sitemap URLs.
var extensionNamespaces = []string{
	"google.com/schemas/sitemap-image",
	"google.com/schemas/sitemap-video",
	"google.com/schemas/sitemap-news",
	"google.com/schemas/sitemap-mobile",
	"w3.org/1999/xhtml",
}

func isLoc(name xml.Name) bool {
	if name.Local != "loc" {
		return false
	}
	switch name.Space {
	case "image", "video", "news", "mobile", "xhtml":
		// Prefix used without an xmlns declaration.
		return false
	}
	for _, ns := range extensionNamespaces {
		if strings.Contains(name.Space, ns) {
			return false
		}
	}
	return true
}
