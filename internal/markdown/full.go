package markdown

import (
	"bytes"
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"
)

// FullConverter renders the parsed document tree, so nested formatting
// composes and links/images use their real href/src attributes.
type FullConverter struct{}

func NewFullConverter() *FullConverter {
	return &FullConverter{}
}

func (c *FullConverter) Convert(markup string) (string, error) {
	markdown, err := htmltomarkdown.ConvertString(cleanHTML(markup))
	if err != nil {
		return "", fmt.Errorf("converting HTML to markdown: %w", err)
	}
	return markdown, nil
}

// cleanHTML removes scripts, styles and comments from the markup.
func cleanHTML(content string) string {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return content // Return original content if parsing fails
	}

	var removeNodes func(*html.Node)
	removeNodes = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style" || n.Data == "noscript") {
			n.Parent.RemoveChild(n)
			return
		}
		if n.Type == html.CommentNode {
			n.Parent.RemoveChild(n)
			return
		}
		for c := n.FirstChild; c != nil; {
			next := c.NextSibling
			removeNodes(c)
			c = next
		}
	}
	removeNodes(doc)

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return content // Return original content if rendering fails
	}
	return buf.String()
}
