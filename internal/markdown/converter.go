// Package markdown turns page markup into Markdown documents.
package markdown

import (
	"fmt"
	"strings"
)

// Converter turns one page's markup into Markdown.
type Converter interface {
	Convert(markup string) (string, error)
}

const (
	ModeScan = "scan"
	ModeFull = "full"
)

// NewConverter returns the converter registered for mode. An empty mode selects the scan converter.
func NewConverter(mode string) (Converter, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", ModeScan:
		return ScanConverter{}, nil
	case ModeFull:
		return NewFullConverter(), nil
	default:
		return nil, fmt.Errorf("markdown: unsupported converter %q", mode)
	}
}

// TagKind is a recognized tag. TagNone means no recognized tag is open.
type TagKind int

const (
	TagNone TagKind = iota
	TagH1
	TagH2
	TagP
	TagLi
	TagA
	TagImg
	TagStrong
	TagEm
	TagBlockquote
)

var recognizedTags = map[string]TagKind{
	"h1":         TagH1,
	"h2":         TagH2,
	"p":          TagP,
	"li":         TagLi,
	"a":          TagA,
	"img":        TagImg,
	"strong":     TagStrong,
	"em":         TagEm,
	"blockquote": TagBlockquote,
}

// Recognized reports whether the scan converter has a rule for tag.
func Recognized(tag string) bool {
	_, ok := recognizedTags[tag]
	return ok || tag == "br" || tag == "ul" || tag == "ol"
}

// ScanConverter is a single left-to-right scan over the markup. Only one tag
// is tracked at a time: opening a recognized tag replaces whatever was open,
// so nested formatting does not compose.
type ScanConverter struct{}

func (ScanConverter) Convert(markup string) (string, error) {
	return ToMarkdown(markup), nil
}

// ToMarkdown converts markup using the single-slot scan. It never fails.
func ToMarkdown(markup string) string {
	var out, buf strings.Builder
	open := TagNone

	for i := 0; i < len(markup); {
		if markup[i] != '<' {
			buf.WriteByte(markup[i])
			i++
			continue
		}

		flush(&out, open, buf.String())
		buf.Reset()

		i++
		start := i
		for i < len(markup) && markup[i] != '>' && markup[i] != ' ' {
			i++
		}
		name := markup[start:i]
		for i < len(markup) && markup[i] != '>' {
			i++
		}
		i++ // past '>'

		switch kind, ok := recognizedTags[name]; {
		case strings.HasPrefix(name, "/"):
			open = TagNone
		case ok:
			open = kind
		case name == "br":
			out.WriteString("\n")
		case name == "ul" || name == "ol":
			out.WriteString("\n")
		default:
			open = TagNone
		}
	}

	flush(&out, open, buf.String())
	return out.String()
}

func flush(out *strings.Builder, open TagKind, content string) {
	c := strings.TrimSpace(content)
	if c == "" {
		return
	}

	switch open {
	case TagH1:
		fmt.Fprintf(out, "# %s\n\n", c)
	case TagH2:
		fmt.Fprintf(out, "## %s\n\n", c)
	case TagP:
		fmt.Fprintf(out, "%s\n\n", c)
	case TagLi:
		fmt.Fprintf(out, "- %s\n", c)
	case TagA:
		// No attribute extraction: the text is both label and target.
		fmt.Fprintf(out, "[%s](%s)", c, c)
	case TagImg:
		fmt.Fprintf(out, "![Image](%s)\n", c)
	case TagStrong:
		fmt.Fprintf(out, "**%s**", c)
	case TagEm:
		fmt.Fprintf(out, "*%s*", c)
	case TagBlockquote:
		fmt.Fprintf(out, "> %s\n\n", c)
	default:
		fmt.Fprintf(out, "%s\n", c)
	}
}
