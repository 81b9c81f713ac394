package crawler

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// Renderer returns the markup of a page after client-side rendering.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// ChromeRenderer renders pages in a headless Chrome via chromedp.
type ChromeRenderer struct {
	UserAgent string
	Timeout   time.Duration
}

func (r *ChromeRenderer) Render(ctx context.Context, rawURL string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.DisableGPU)
	if r.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(r.UserAgent))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	taskCtx, cancelTask := chromedp.NewContext(allocCtx)
	defer cancelTask()

	if r.Timeout > 0 {
		var cancelTimeout context.CancelFunc
		taskCtx, cancelTimeout = context.WithTimeout(taskCtx, r.Timeout)
		defer cancelTimeout()
	}

	var html string
	if err := chromedp.Run(taskCtx,
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	); err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}

	return html, nil
}

// RenderingFetcher sends pages on selected hosts through a Renderer and
// everything else to the wrapped Fetcher.
type RenderingFetcher struct {
	Fetcher
	renderer Renderer
	hosts    []string
}

func NewRenderingFetcher(base Fetcher, renderer Renderer, hosts []string) *RenderingFetcher {
	normalized := make([]string, 0, len(hosts))
	for _, h := range hosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			normalized = append(normalized, h)
		}
	}
	return &RenderingFetcher{Fetcher: base, renderer: renderer, hosts: normalized}
}

func (f *RenderingFetcher) Fetch(ctx context.Context, rawURL string, depth int) (string, error) {
	if f.renderer != nil && f.NeedsRender(rawURL) {
		return f.renderer.Render(ctx, rawURL)
	}
	return f.Fetcher.Fetch(ctx, rawURL, depth)
}

// NeedsRender reports whether rawURL's host, or a parent domain of it, is
// listed as requiring rendering.
func (f *RenderingFetcher) NeedsRender(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, h := range f.hosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}
