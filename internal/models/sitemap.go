// internal/models/sitemap.go
package models

import "strings"

type SitemapKind int

const (
	// SitemapPage is a content URL.
	SitemapPage SitemapKind = iota
	// SitemapIndex references further sitemap documents.
	SitemapIndex
)

func (k SitemapKind) String() string {
	if k == SitemapIndex {
		return "index"
	}
	return "page"
}

// SitemapRef is a single <loc> value taken from a sitemap document.
type SitemapRef struct {
	Loc  string
	Kind SitemapKind
}

// ClassifyLoc classifies a <loc> value by suffix only.
func ClassifyLoc(loc string) SitemapRef {
	loc = strings.TrimSpace(loc)
	kind := SitemapPage
	if strings.HasSuffix(loc, ".xml") {
		kind = SitemapIndex
	}
	return SitemapRef{Loc: loc, Kind: kind}
}
