package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/romangod6/site2md/config"
	"github.com/romangod6/site2md/internal/api"
	"github.com/romangod6/site2md/internal/crawler"
	"github.com/romangod6/site2md/internal/markdown"
	"github.com/romangod6/site2md/internal/storage"
)

const requestTimeout = 30 * time.Second

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize storage
	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	if store != nil {
		defer store.Close()
	}

	c, err := newCrawler(cfg, store)
	if err != nil {
		log.Printf("Failed to create crawler: %v", err)
		exit(store, 1)
	}

	root := cfg.Crawler.Root
	if len(os.Args) > 1 {
		root = os.Args[1]
	}

	if !cfg.Server.Enabled {
		if err := runOnce(c, root); err != nil {
			log.Printf("Run failed for %q: %v", root, err)
			exit(store, 1)
		}
		return
	}

	if store == nil {
		log.Fatalf("Server mode requires a database driver")
	}

	// Initialize API server
	server := api.NewServer(cfg.Server.Port, store, c)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup periodic crawling
	if crawler.NormalizeRoot(root) != "" {
		go schedule(ctx, c, root, cfg.GetCrawlDuration())
	} else {
		log.Println("No site root configured, periodic crawling disabled")
	}

	// Start the API server
	go func() {
		log.Printf("Starting API server on port %d", cfg.Server.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start API server: %v", err)
			exit(store, 1)
		}
	}()

	// Wait for shutdown
	waitForShutdown(cancel, server)
}

func openStore(cfg *config.Config) (storage.Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
	if driver == "" || driver == "none" {
		return nil, nil
	}
	return storage.Open(driver, cfg.Database.URL)
}

func newCrawler(cfg *config.Config, store storage.Store) (*crawler.Crawler, error) {
	converter, err := markdown.NewConverter(cfg.Crawler.Converter)
	if err != nil {
		return nil, err
	}

	fetcher := crawler.NewCollyFetcher(&crawler.CollectorConfig{
		UserAgent:      cfg.Crawler.UserAgent,
		RespectRobots:  cfg.Crawler.RespectRobots,
		RequestTimeout: requestTimeout,
	})

	var pageFetcher crawler.Fetcher = fetcher
	if len(cfg.Crawler.RenderHosts) > 0 {
		renderer := &crawler.ChromeRenderer{UserAgent: cfg.Crawler.UserAgent, Timeout: requestTimeout}
		pageFetcher = crawler.NewRenderingFetcher(fetcher, renderer, cfg.Crawler.RenderHosts)
		log.Printf("Rendering pages on %v with headless Chrome", cfg.Crawler.RenderHosts)
	}

	return crawler.NewCrawler(store, &crawler.CrawlerConfig{
		Fetcher:     fetcher,
		PageFetcher: pageFetcher,
		Sink:        storage.NewFileSink(cfg.Crawler.OutputDir),
		Converter:   converter,
		CrawlConfig: crawler.CrawlConfig{
			Depth: cfg.Crawler.MaxDepth,
			Delay: cfg.GetCrawlDelay(),
		},
		LogDir: cfg.Crawler.LogDir,
	}), nil
}

func runOnce(c *crawler.Crawler, root string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := c.Run(ctx, root)
	if err != nil {
		return err
	}

	log.Printf("Converted %d of %d page(s) from %s discovery (%d failed)",
		summary.Converted, summary.Discovered, summary.Source, summary.Failed)
	return nil
}

// exit closes the store before leaving, since os.Exit skips deferred calls.
func exit(store storage.Store, code int) {
	if store != nil {
		if err := store.Close(); err != nil {
			log.Printf("Error closing store: %v", err)
		}
	}
	os.Exit(code)
}

// schedule re-runs root every interval, skipping ticks while a run is still
// in progress.
func schedule(ctx context.Context, c *crawler.Crawler, root string, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var running atomic.Bool
	for {
		select {
		case <-ticker.C:
			if !running.CompareAndSwap(false, true) {
				log.Printf("Skipping periodic crawl of %s as it's already running", root)
				continue
			}
			go func() {
				defer running.Store(false)
				log.Printf("Starting periodic crawl of %s...", root)
				if _, err := c.Run(ctx, root); err != nil {
					log.Printf("Periodic crawl of %s failed: %v", root, err)
					return
				}
				log.Printf("Periodic crawl of %s completed", root)
			}()
		case <-ctx.Done():
			return
		}
	}
}

func waitForShutdown(cancel context.CancelFunc, server *api.Server) {
	// Handle system signals for shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Println("Shutting down...")
	cancel()

	// Graceful server shutdown
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Error shutting down server: %v", err)
	}
	log.Println("Server shut down gracefully")
}
