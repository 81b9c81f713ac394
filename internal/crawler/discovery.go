package crawler

import (
	"context"
	"strings"
)

// Source names the discovery branch that produced a page set.
type Source string

const (
	SourceRobots  Source = "robots"
	SourceSitemap Source = "sitemap"
	SourceCrawl   Source = "crawl"
)

// Discovery is the finalized outcome of URL discovery for one site root.
type Discovery struct {
	Root           string
	RobotsSitemaps []string
	Source         Source
	URLs           []string
}

// Orchestrator picks the page set for a site root. Branches are tried in
// order and the first one that succeeds wins:
//
//  1. sitemaps declared in robots.txt (final once any are declared, even when
//     they expand to nothing)
//  2. <root>/sitemap.xml, when it expands to at least one page
//  3. a native crawl from the root
type Orchestrator struct {
	robots      *RobotsResolver
	indexer     *SitemapIndexer
	fetcher     Fetcher
	crawlConfig CrawlConfig
	observer    Observer
}

func NewOrchestrator(fetcher Fetcher, crawlConfig CrawlConfig, observer Observer) *Orchestrator {
	if observer == nil {
		observer = NopObserver()
	}
	return &Orchestrator{
		robots:      NewRobotsResolver(fetcher, observer),
		indexer:     NewSitemapIndexer(fetcher, observer),
		fetcher:     fetcher,
		crawlConfig: crawlConfig,
		observer:    observer,
	}
}

// NormalizeRoot trims whitespace and trailing slashes from a site root.
func NormalizeRoot(root string) string {
	return strings.TrimRight(strings.TrimSpace(root), "/")
}

// Discover runs the fallback chain for root. Only a malformed sitemap or a
// cancelled context produce an error; fetch failures just empty a branch.
func (o *Orchestrator) Discover(ctx context.Context, root string) (*Discovery, error) {
	root = NormalizeRoot(root)
	if root == "" {
		return nil, ErrEmptyRoot
	}

	d := &Discovery{Root: root}

	d.RobotsSitemaps = o.robots.Resolve(ctx, root)
	if len(d.RobotsSitemaps) > 0 {
		pages := NewURLSet()
		if err := o.indexer.Expand(ctx, d.RobotsSitemaps, pages); err != nil {
			return nil, err
		}
		return o.finish(d, SourceRobots, pages.URLs()), nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pages := NewURLSet()
	if err := o.indexer.Expand(ctx, []string{root + "/sitemap.xml"}, pages); err != nil {
		return nil, err
	}
	if pages.Len() > 0 {
		return o.finish(d, SourceSitemap, pages.URLs()), nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	crawled := NewURLSet()
	links, err := o.fetcher.Crawl(ctx, root, o.crawlConfig)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		o.observer.Observe(Event{Kind: EventCrawlFailed, URL: root, Err: err})
	}
	for _, link := range links {
		crawled.Add(link)
	}
	return o.finish(d, SourceCrawl, crawled.URLs()), nil
}

func (o *Orchestrator) finish(d *Discovery, source Source, urls []string) *Discovery {
	d.Source = source
	d.URLs = urls
	o.observer.Observe(Event{Kind: EventSourceSelected, URL: d.Root, Source: source, Count: len(urls)})
	return d
}
