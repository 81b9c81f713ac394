package crawler

import (
	"context"
	"fmt"
	"log"

	"github.com/romangod6/site2md/internal/markdown"
	"github.com/romangod6/site2md/internal/models"
	"github.com/romangod6/site2md/internal/storage"
	"github.com/romangod6/site2md/internal/utils"
)

// Crawler runs discovery for a site root and converts every discovered page.
// A Crawler holds no per-run state and may serve several runs.
type Crawler struct {
	store  storage.Store
	config *CrawlerConfig
}

type CrawlerConfig struct {
	// Fetcher serves robots.txt, sitemaps and the native crawl.
	Fetcher Fetcher
	// PageFetcher serves page bodies. Defaults to Fetcher.
	PageFetcher Fetcher
	Sink        storage.Sink
	Converter   markdown.Converter
	CrawlConfig CrawlConfig
	Observer    Observer
	// LogDir enables a per-run log file when set.
	LogDir string
}

func NewCrawler(store storage.Store, config *CrawlerConfig) *Crawler {
	cfg := CrawlerConfig{}
	if config != nil {
		cfg = *config
	}

	if cfg.Fetcher == nil {
		cfg.Fetcher = NewCollyFetcher(nil)
	}
	if cfg.PageFetcher == nil {
		cfg.PageFetcher = cfg.Fetcher
	}
	if cfg.Sink == nil {
		cfg.Sink = storage.NewFileSink("output")
	}
	if cfg.Converter == nil {
		cfg.Converter = markdown.ScanConverter{}
	}
	if cfg.CrawlConfig == (CrawlConfig{}) {
		cfg.CrawlConfig = DefaultCrawlConfig()
	}
	if cfg.Observer == nil {
		cfg.Observer = NopObserver()
	}

	return &Crawler{
		store:  store,
		config: &cfg,
	}
}

// Run records a new run for root and processes it.
func (c *Crawler) Run(ctx context.Context, root string) (*models.RunSummary, error) {
	root = NormalizeRoot(root)
	if root == "" {
		return nil, ErrEmptyRoot
	}

	run := models.NewRun(root)
	if c.store != nil {
		if err := c.store.CreateRun(ctx, run); err != nil {
			return nil, fmt.Errorf("failed to record run: %w", err)
		}
	}

	return c.Process(ctx, run)
}

// Process discovers the pages of run.Root and converts them one at a time.
// A page that fails is recorded and skipped. Discovery errors abort the run.
// The run is updated in the store when one is configured.
func (c *Crawler) Process(ctx context.Context, run *models.Run) (*models.RunSummary, error) {
	observer := c.config.Observer
	if c.config.LogDir != "" {
		logger, err := utils.NewCrawlerLogger(c.config.LogDir, run.Root)
		if err != nil {
			log.Printf("Failed to create run logger: %v", err)
		} else {
			defer logger.Close()
			observer = MultiObserver(observer, NewLogObserver(logger))
		}
	}

	summary, err := c.process(ctx, run, observer)
	observer.Observe(Event{Kind: EventRunFinished, URL: run.Root, Count: summary.Converted, Err: err})

	run.Finish(summary, err)
	if c.store != nil {
		// The run context may already be cancelled; the final state is still recorded.
		if updateErr := c.store.UpdateRun(context.WithoutCancel(ctx), run); updateErr != nil {
			log.Printf("Failed to update run %s: %v", run.ID, updateErr)
		}
	}

	return summary, err
}

func (c *Crawler) process(ctx context.Context, run *models.Run, observer Observer) (*models.RunSummary, error) {
	summary := &models.RunSummary{Root: run.Root}

	orchestrator := NewOrchestrator(c.config.Fetcher, c.config.CrawlConfig, observer)
	discovery, err := orchestrator.Discover(ctx, run.Root)
	if err != nil {
		return summary, fmt.Errorf("discovery failed for %s: %w", run.Root, err)
	}

	summary.Source = string(discovery.Source)
	summary.Discovered = len(discovery.URLs)

	for _, pageURL := range discovery.URLs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		html, md, path, err := c.processPage(ctx, pageURL)
		if err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", pageURL, err))
			observer.Observe(Event{Kind: EventPageFailed, URL: pageURL, Err: err})
			continue
		}

		summary.Converted++
		observer.Observe(Event{Kind: EventPageConverted, URL: pageURL, Path: path})

		// The file is already written; a ledger failure does not undo it.
		if err := c.recordDocument(ctx, run, pageURL, html, md); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: saved to %s but not recorded: %v", pageURL, path, err))
			observer.Observe(Event{Kind: EventDocumentUnrecorded, URL: pageURL, Path: path, Err: err})
		}
	}

	return summary, nil
}

// processPage fetches, converts and saves one page, returning its markup,
// Markdown and written path.
func (c *Crawler) processPage(ctx context.Context, pageURL string) (string, string, string, error) {
	html, err := c.config.PageFetcher.Fetch(ctx, pageURL, 0)
	if err != nil {
		return "", "", "", err
	}

	md, err := c.config.Converter.Convert(html)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to convert: %w", err)
	}

	path, err := c.config.Sink.Save(pageURL, md)
	if err != nil {
		return "", "", "", err
	}

	return html, md, path, nil
}

func (c *Crawler) recordDocument(ctx context.Context, run *models.Run, pageURL, html, md string) error {
	if c.store == nil {
		return nil
	}

	doc := models.NewDocument(run.ID, pageURL)
	doc.Filename = storage.Filename(pageURL)
	doc.Markdown = md
	if meta, err := ParsePageMeta(html); err == nil {
		doc.Title = meta.Title
		doc.Description = meta.Description
	}
	if err := c.store.SaveDocument(ctx, doc); err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	return nil
}
