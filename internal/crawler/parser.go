// internal/crawler/parser.go
package crawler

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PageMeta holds the descriptive metadata of an HTML page.
type PageMeta struct {
	Title       string
	Description string
	Keywords    []string
}

// ParsePageMeta extracts the title, description and keywords of a page.
func ParsePageMeta(content string) (*PageMeta, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("error parsing HTML: %w", err)
	}

	meta := &PageMeta{
		Keywords: make([]string, 0),
	}

	// Extract title, falling back to the first heading
	meta.Title = strings.TrimSpace(doc.Find("title").First().Text())
	if meta.Title == "" {
		meta.Title = strings.TrimSpace(doc.Find("h1").First().Text())
	}

	doc.Find("meta[name='description'], meta[property='og:description']").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if content, exists := s.Attr("content"); exists && strings.TrimSpace(content) != "" {
			meta.Description = strings.TrimSpace(content)
			return false
		}
		return true
	})

	doc.Find("meta[name='keywords']").Each(func(i int, s *goquery.Selection) {
		if content, exists := s.Attr("content"); exists {
			for _, kw := range strings.Split(content, ",") {
				kw = strings.TrimSpace(kw)
				if kw != "" {
					meta.Keywords = append(meta.Keywords, strings.ToLower(kw))
				}
			}
		}
	})

	return meta, nil
}
