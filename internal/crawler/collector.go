package crawler

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/gocolly/colly/v2"
)

type CollectorConfig struct {
	UserAgent string
	// RespectRobots makes native crawls skip paths disallowed by robots.txt.
	RespectRobots  bool
	RequestTimeout time.Duration
}

// CollyFetcher implements Fetcher with a fresh colly collector per call.
// Collectors run synchronously, so requests never overlap.
type CollyFetcher struct {
	config *CollectorConfig
}

func NewCollyFetcher(config *CollectorConfig) *CollyFetcher {
	if config == nil {
		config = &CollectorConfig{}
	}
	return &CollyFetcher{config: config}
}

// newCollector reads bodies in full. colly truncates at 10 MiB by default,
// while a sitemap may be 50 MB uncompressed.
func (f *CollyFetcher) newCollector(ctx context.Context, options ...colly.CollectorOption) *colly.Collector {
	options = append([]colly.CollectorOption{colly.MaxBodySize(0)}, options...)
	if f.config.UserAgent != "" {
		options = append(options, colly.UserAgent(f.config.UserAgent))
	}
	c := colly.NewCollector(options...)
	c.IgnoreRobotsTxt = true

	if f.config.RequestTimeout > 0 {
		c.SetRequestTimeout(f.config.RequestTimeout)
	}

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
		}
	})

	return c
}

// Fetch retrieves a single document. No link callbacks are registered, so
// nothing beyond url is requested whatever the depth.
func (f *CollyFetcher) Fetch(ctx context.Context, rawURL string, depth int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c := f.newCollector(ctx, colly.MaxDepth(depth+1))

	var (
		body     string
		received bool
		fetchErr error
	)
	c.OnResponse(func(r *colly.Response) {
		body = string(r.Body)
		received = true
	})
	c.OnError(func(r *colly.Response, err error) {
		fetchErr = err
	})

	if err := c.Visit(rawURL); err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}
	if fetchErr != nil {
		return "", &FetchError{URL: rawURL, Err: fetchErr}
	}
	if !received {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return "", &FetchError{URL: rawURL, Err: errNoResponse}
	}

	return body, nil
}

// Crawl follows same-host links from root up to config.Depth hops, waiting
// config.Delay between requests, and returns every page that responded in
// the order it was reached.
func (f *CollyFetcher) Crawl(ctx context.Context, root string, config CrawlConfig) ([]string, error) {
	u, err := url.Parse(root)
	if err != nil || u.Hostname() == "" {
		return nil, fmt.Errorf("invalid crawl root %q", root)
	}

	c := f.newCollector(ctx,
		colly.MaxDepth(config.Depth+1),
		colly.AllowedDomains(u.Hostname()),
	)
	c.IgnoreRobotsTxt = !f.config.RespectRobots

	// Set politeness limits
	if err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 1,
		Delay:       config.Delay,
	}); err != nil {
		return nil, fmt.Errorf("failed to set crawl limits: %w", err)
	}

	found := NewURLSet()
	c.OnResponse(func(r *colly.Response) {
		found.Add(r.Request.URL.String())
	})

	c.OnHTML("a[href]", func(e *colly.HTMLElement) {
		link := e.Request.AbsoluteURL(e.Attr("href"))
		if link == "" {
			return
		}
		// Already visited, off-host and too-deep links are rejected by colly.
		e.Request.Visit(link)
	})

	if err := c.Visit(root); err != nil {
		return found.URLs(), &FetchError{URL: root, Err: err}
	}
	c.Wait()

	if err := ctx.Err(); err != nil {
		return found.URLs(), err
	}
	return found.URLs(), nil
}
