package crawler

import (
	"context"
	"strings"
	"unicode"
)

const sitemapDirective = "sitemap:"

// RobotsResolver reads the Sitemap directives a site declares in robots.txt.
type RobotsResolver struct {
	fetcher  Fetcher
	observer Observer
}

func NewRobotsResolver(fetcher Fetcher, observer Observer) *RobotsResolver {
	if observer == nil {
		observer = NopObserver()
	}
	return &RobotsResolver{fetcher: fetcher, observer: observer}
}

// Resolve fetches <root>/robots.txt and returns its sitemap URLs in
// declaration order. A failed fetch yields an empty list.
func (r *RobotsResolver) Resolve(ctx context.Context, root string) []string {
	robotsURL := root + "/robots.txt"

	content, err := r.fetcher.Fetch(ctx, robotsURL, 0)
	if err != nil {
		r.observer.Observe(Event{Kind: EventRobotsUnavailable, URL: robotsURL, Err: err})
		return nil
	}

	sitemaps := ParseRobots(content)
	r.observer.Observe(Event{Kind: EventRobotsFetched, URL: robotsURL, Count: len(sitemaps)})
	return sitemaps
}

// ParseRobots extracts the value of every line starting with "sitemap:",
// matched case-insensitively after leading whitespace.
func ParseRobots(content string) []string {
	content = strings.TrimPrefix(content, "\ufeff")

	var sitemaps []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimLeftFunc(line, unicode.IsSpace)
		if len(line) < len(sitemapDirective) || !strings.EqualFold(line[:len(sitemapDirective)], sitemapDirective) {
			continue
		}
		if u := strings.TrimSpace(line[len(sitemapDirective):]); u != "" {
			sitemaps = append(sitemaps, u)
		}
	}
	return sitemaps
}
