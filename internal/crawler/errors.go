package crawler

import (
	"errors"
	"fmt"
)

// ErrEmptyRoot is returned when a run is started without a site root.
var ErrEmptyRoot = errors.New("site root is empty")

var errNoResponse = errors.New("no response received")

// FetchError is a failed retrieval. It is always recoverable: the affected
// branch or page contributes nothing and the run moves on.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// SitemapError is a structural parse failure of a sitemap document. It aborts
// the whole discovery run.
type SitemapError struct {
	URL string
	Err error
}

func (e *SitemapError) Error() string {
	return fmt.Sprintf("malformed sitemap %s: %v", e.URL, e.Err)
}

func (e *SitemapError) Unwrap() error {
	return e.Err
}
