package crawler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/romangod6/site2md/internal/markdown"
	"github.com/romangod6/site2md/internal/models"
	"github.com/romangod6/site2md/internal/storage"
)

// memStore is an in-memory storage.Store.
type memStore struct {
	mu      sync.Mutex
	runs    map[uuid.UUID]models.Run
	docs    []*models.Document
	saveErr error
}

func newMemStore() *memStore {
	return &memStore{runs: make(map[uuid.UUID]models.Run)}
}

func (s *memStore) Initialize() error { return nil }
func (s *memStore) Close() error      { return nil }

func (s *memStore) CreateRun(ctx context.Context, run *models.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = *run
	return nil
}

func (s *memStore) UpdateRun(ctx context.Context, run *models.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[run.ID]; !ok {
		return errors.New("run not found")
	}
	s.runs[run.ID] = *run
	return nil
}

func (s *memStore) GetRun(ctx context.Context, id uuid.UUID) (*models.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, nil
	}
	return &run, nil
}

func (s *memStore) ListRuns(ctx context.Context, limit, offset int) ([]*models.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Run
	for _, run := range s.runs {
		run := run
		out = append(out, &run)
	}
	return out, nil
}

func (s *memStore) SaveDocument(ctx context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.docs = append(s.docs, doc)
	return nil
}

func (s *memStore) GetDocument(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.docs {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, nil
}

func (s *memStore) ListDocuments(ctx context.Context, limit, offset int) ([]*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*models.Document(nil), s.docs...), nil
}

func (s *memStore) SearchDocuments(ctx context.Context, query string, limit, offset int) ([]*models.Document, error) {
	return nil, nil
}

func (s *memStore) GetDocumentsByRun(ctx context.Context, runID uuid.UUID, limit, offset int) ([]*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Document
	for _, d := range s.docs {
		if d.RunID == runID {
			out = append(out, d)
		}
	}
	return out, nil
}

const (
	homePage  = `<html><head><title>Home</title></head><body><h1>Welcome</h1><p>Start <b>here</b></p></body></html>`
	guidePage = `<h2>Guide</h2><ul><li>one</li><li>two</li></ul>`
)

func siteFetcher() *fakeFetcher {
	return newFakeFetcher(map[string]string{
		"https://x.com/sitemap.xml": urlset("https://x.com/", "https://x.com/docs/guide/", "https://x.com/missing"),
		"https://x.com/":            homePage,
		"https://x.com/docs/guide/": guidePage,
	})
}

func TestCrawler_Run(t *testing.T) {
	outDir := t.TempDir()
	store := newMemStore()
	recorder := &Recorder{}

	c := NewCrawler(store, &CrawlerConfig{
		Fetcher:  siteFetcher(),
		Sink:     storage.NewFileSink(outDir),
		Observer: recorder,
	})

	summary, err := c.Run(context.Background(), "https://x.com/")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if summary.Source != string(SourceSitemap) {
		t.Errorf("Expected source %s, got %s", SourceSitemap, summary.Source)
	}
	if summary.Discovered != 3 || summary.Converted != 2 || summary.Failed != 1 {
		t.Errorf("Unexpected summary: %+v", summary)
	}
	if len(summary.Errors) != 1 || !strings.HasPrefix(summary.Errors[0], "https://x.com/missing:") {
		t.Errorf("Expected the missing page to be reported, got %v", summary.Errors)
	}

	for name, html := range map[string]string{"index.md": homePage, "guide.md": guidePage} {
		data, err := os.ReadFile(filepath.Join(outDir, name))
		if err != nil {
			t.Fatalf("Expected %s to be written: %v", name, err)
		}
		if string(data) != markdown.ToMarkdown(html) {
			t.Errorf("Unexpected content in %s: %q", name, data)
		}
	}
	if _, err := os.Stat(filepath.Join(outDir, "missing.md")); !os.IsNotExist(err) {
		t.Error("Expected no file for the failed page")
	}

	if recorder.Count(EventPageConverted) != 2 || recorder.Count(EventPageFailed) != 1 || recorder.Count(EventRunFinished) != 1 {
		t.Errorf("Unexpected events: %v", recorder.Events())
	}

	runs, _ := store.ListRuns(context.Background(), 10, 0)
	if len(runs) != 1 {
		t.Fatalf("Expected 1 run, got %d", len(runs))
	}
	run := runs[0]
	if run.Status != models.RunStatusCompleted || run.Converted != 2 || run.FinishedAt == nil {
		t.Errorf("Unexpected run: %+v", run)
	}

	docs, _ := store.GetDocumentsByRun(context.Background(), run.ID, 10, 0)
	if len(docs) != 2 {
		t.Fatalf("Expected 2 documents, got %d", len(docs))
	}
	if docs[0].URL != "https://x.com/" || docs[0].Title != "Home" || docs[0].Filename != "index.md" {
		t.Errorf("Unexpected document: %+v", docs[0])
	}
	if docs[1].Filename != "guide.md" || docs[1].Markdown != markdown.ToMarkdown(guidePage) {
		t.Errorf("Unexpected document: %+v", docs[1])
	}
}

func TestCrawler_LedgerFailureKeepsWrittenPage(t *testing.T) {
	outDir := t.TempDir()
	store := newMemStore()
	store.saveErr = errors.New("database is locked")
	recorder := &Recorder{}

	fetcher := newFakeFetcher(map[string]string{
		"https://x.com/sitemap.xml": urlset("https://x.com/guide"),
		"https://x.com/guide":       guidePage,
	})
	c := NewCrawler(store, &CrawlerConfig{
		Fetcher:  fetcher,
		Sink:     storage.NewFileSink(outDir),
		Observer: recorder,
	})

	summary, err := c.Run(context.Background(), "https://x.com")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if summary.Converted != 1 || summary.Failed != 0 {
		t.Errorf("Expected written page to count as converted, got %+v", summary)
	}
	if len(summary.Errors) != 1 || !strings.Contains(summary.Errors[0], "saved to "+filepath.Join(outDir, "guide.md")) {
		t.Errorf("Expected the error to name the written file, got %v", summary.Errors)
	}
	if _, err := os.Stat(filepath.Join(outDir, "guide.md")); err != nil {
		t.Errorf("Expected guide.md to be written: %v", err)
	}
	if recorder.Count(EventPageConverted) != 1 || recorder.Count(EventDocumentUnrecorded) != 1 || recorder.Count(EventPageFailed) != 0 {
		t.Errorf("Unexpected events: %v", recorder.Events())
	}
}

func TestCrawler_RunWithoutStore(t *testing.T) {
	outDir := t.TempDir()
	c := NewCrawler(nil, &CrawlerConfig{
		Fetcher:   siteFetcher(),
		Sink:      storage.NewFileSink(outDir),
		Converter: markdown.ScanConverter{},
	})

	summary, err := c.Run(context.Background(), "https://x.com")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if summary.Converted != 2 {
		t.Errorf("Expected 2 converted pages, got %d", summary.Converted)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatalf("Failed to read output dir: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("Expected 2 files, got %d", len(entries))
	}
}

func TestCrawler_PageFetcherServesPagesOnly(t *testing.T) {
	discovery := newFakeFetcher(map[string]string{
		"https://x.com/sitemap.xml": urlset("https://x.com/a"),
	})
	pages := newFakeFetcher(map[string]string{
		"https://x.com/a": "<p>from page fetcher</p>",
	})

	c := NewCrawler(nil, &CrawlerConfig{
		Fetcher:     discovery,
		PageFetcher: pages,
		Sink:        storage.NewFileSink(t.TempDir()),
	})

	summary, err := c.Run(context.Background(), "https://x.com")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if summary.Converted != 1 {
		t.Errorf("Expected page to be converted, got %+v", summary)
	}
	if discovery.fetchCount("https://x.com/a") != 0 || pages.fetchCount("https://x.com/sitemap.xml") != 0 {
		t.Error("Expected discovery and page fetches to stay on their fetchers")
	}
}

func TestCrawler_DiscoveryErrorFailsRun(t *testing.T) {
	store := newMemStore()
	fetcher := newFakeFetcher(map[string]string{
		"https://x.com/sitemap.xml": "<urlset><url><loc>https://x.com/a</loc>",
	})

	c := NewCrawler(store, &CrawlerConfig{
		Fetcher: fetcher,
		Sink:    storage.NewFileSink(t.TempDir()),
	})

	_, err := c.Run(context.Background(), "https://x.com")
	var sitemapErr *SitemapError
	if !errors.As(err, &sitemapErr) {
		t.Fatalf("Expected *SitemapError, got %v", err)
	}

	runs, _ := store.ListRuns(context.Background(), 10, 0)
	if len(runs) != 1 || runs[0].Status != models.RunStatusError || len(runs[0].Errors) == 0 {
		t.Errorf("Expected failed run to be recorded, got %+v", runs)
	}
}

func TestCrawler_EmptyRoot(t *testing.T) {
	store := newMemStore()
	c := NewCrawler(store, &CrawlerConfig{Fetcher: newFakeFetcher(nil)})

	if _, err := c.Run(context.Background(), "  "); !errors.Is(err, ErrEmptyRoot) {
		t.Errorf("Expected ErrEmptyRoot, got %v", err)
	}
	if len(store.runs) != 0 {
		t.Error("Expected no run to be recorded")
	}
}

func TestCrawler_WritesRunLog(t *testing.T) {
	logDir := t.TempDir()
	c := NewCrawler(nil, &CrawlerConfig{
		Fetcher: siteFetcher(),
		Sink:    storage.NewFileSink(t.TempDir()),
		LogDir:  logDir,
	})

	if _, err := c.Run(context.Background(), "https://x.com"); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(logDir, "x.com", "crawl_x.com_*.log"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("Expected one run log, got %v (%v)", matches, err)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("Failed to read log: %v", err)
	}
	if !strings.Contains(string(data), "[INFO] Using sitemap discovery for https://x.com: 3 page(s)") {
		t.Errorf("Expected source selection in log, got:\n%s", data)
	}
}

func TestNewCrawler_Defaults(t *testing.T) {
	c := NewCrawler(nil, nil)

	if _, ok := c.config.Fetcher.(*CollyFetcher); !ok {
		t.Errorf("Expected default CollyFetcher, got %T", c.config.Fetcher)
	}
	if c.config.PageFetcher != c.config.Fetcher {
		t.Error("Expected page fetcher to default to the discovery fetcher")
	}
	if c.config.CrawlConfig != DefaultCrawlConfig() {
		t.Errorf("Expected default crawl config, got %+v", c.config.CrawlConfig)
	}
	if sink, ok := c.config.Sink.(*storage.FileSink); !ok || sink.Dir() != "output" {
		t.Errorf("Expected FileSink in output, got %T", c.config.Sink)
	}
}
