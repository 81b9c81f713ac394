package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/romangod6/site2md/internal/crawler"
	"github.com/romangod6/site2md/internal/markdown"
	"golang.org/x/net/html"
)

func main() {
	samples := flag.Int("samples", 3, "number of discovered pages to analyze")
	depth := flag.Int("depth", 3, "link depth of the native crawl fallback")
	verbose := flag.Bool("v", false, "print every discovery event")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: sitemap [-samples n] [-depth n] [-v] <site root>")
		os.Exit(2)
	}

	fetcher := crawler.NewCollyFetcher(&crawler.CollectorConfig{
		UserAgent:      "site2md-inspector/1.0",
		RequestTimeout: 30 * time.Second,
	})

	var observer crawler.Observer = crawler.NopObserver()
	if *verbose {
		observer = crawler.ObserverFunc(printEvent)
	}

	orchestrator := crawler.NewOrchestrator(fetcher, crawler.CrawlConfig{Depth: *depth, Delay: 100 * time.Millisecond}, observer)

	// Discover pages
	d, err := orchestrator.Discover(context.Background(), flag.Arg(0))
	if err != nil {
		log.Fatalf("Error discovering pages: %v", err)
	}

	fmt.Printf("Root: %s\n", d.Root)
	fmt.Printf("Sitemaps declared in robots.txt: %d\n", len(d.RobotsSitemaps))
	for _, s := range d.RobotsSitemaps {
		fmt.Printf("  %s\n", s)
	}
	fmt.Printf("Discovery source: %s\n", d.Source)
	fmt.Printf("Total URLs found: %d\n\n", len(d.URLs))
	for _, u := range d.URLs {
		fmt.Println(u)
	}

	// Analyze multiple URLs to get a better sample
	for i := 0; i < *samples && i < len(d.URLs); i++ {
		sampleURL := d.URLs[i]
		fmt.Printf("\n=== Analyzing URL %d/%d: %s ===\n", i+1, *samples, sampleURL)

		content, err := fetcher.Fetch(context.Background(), sampleURL, 0)
		if err != nil {
			log.Printf("Error fetching page: %v", err)
			continue
		}

		meta, err := crawler.ParsePageMeta(content)
		if err == nil {
			fmt.Printf("Title: %s\n", meta.Title)
			if meta.Description != "" {
				fmt.Printf("Description: %s\n", meta.Description)
			}
		}

		doc, err := html.Parse(strings.NewReader(content))
		if err != nil {
			log.Printf("Error parsing page: %v", err)
			continue
		}

		// Analyze content structure
		fmt.Println("\n--- Content Structure ---")
		analyzeContent(doc)
	}
}

func printEvent(e crawler.Event) {
	line := fmt.Sprintf("[%s] %s", e.Kind, e.URL)
	if e.Source != "" {
		line += fmt.Sprintf(" source=%s", e.Source)
	}
	if e.Count > 0 {
		line += fmt.Sprintf(" count=%d", e.Count)
	}
	if e.Err != nil {
		line += fmt.Sprintf(" err=%v", e.Err)
	}
	log.Println(line)
}

// analyzeContent counts the elements the scan converter has rules for, so
// pages that will convert poorly stand out.
func analyzeContent(n *html.Node) {
	counts := make(map[string]int)
	other := 0

	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case markdown.Recognized(n.Data):
				counts[n.Data]++
			case n.Data == "html" || n.Data == "head" || n.Data == "body":
			default:
				other++
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(n)

	tags := make([]string, 0, len(counts))
	for tag := range counts {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	for _, tag := range tags {
		fmt.Printf("  <%s>: %d\n", tag, counts[tag])
	}
	fmt.Printf("  other elements: %d\n", other)

	if title := findFirst(n, "h1"); title != nil {
		fmt.Printf("  First heading: %s\n", getNodeText(title))
	}
}

func findFirst(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func getNodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return strings.TrimSpace(n.Data)
	}
	var text string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		text += getNodeText(c)
	}
	return strings.TrimSpace(text)
}
