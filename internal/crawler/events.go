package crawler

import "sync"

type EventKind string

const (
	EventRobotsFetched      EventKind = "robots_fetched"
	EventRobotsUnavailable  EventKind = "robots_unavailable"
	EventSitemapExpanded    EventKind = "sitemap_expanded"
	EventSitemapUnavailable EventKind = "sitemap_unavailable"
	EventSitemapRevisited   EventKind = "sitemap_revisited"
	EventSourceSelected     EventKind = "source_selected"
	EventCrawlFailed        EventKind = "crawl_failed"
	EventPageConverted      EventKind = "page_converted"
	EventPageFailed         EventKind = "page_failed"
	EventDocumentUnrecorded EventKind = "document_unrecorded"
	EventRunFinished        EventKind = "run_finished"
)

// Event is a progress or diagnostic report emitted at a fixed pipeline point.
type Event struct {
	Kind   EventKind
	URL    string
	Source Source
	Count  int
	Path   string
	Err    error
}

// Observer receives pipeline events. Resolution and conversion code never
// logs directly.
type Observer interface {
	Observe(Event)
}

type ObserverFunc func(Event)

func (f ObserverFunc) Observe(e Event) { f(e) }

type nopObserver struct{}

func (nopObserver) Observe(Event) {}

// NopObserver discards every event.
func NopObserver() Observer { return nopObserver{} }

type multiObserver []Observer

func (m multiObserver) Observe(e Event) {
	for _, o := range m {
		o.Observe(e)
	}
}

// MultiObserver fans each event out to all non-nil observers.
func MultiObserver(observers ...Observer) Observer {
	var m multiObserver
	for _, o := range observers {
		if o != nil {
			m = append(m, o)
		}
	}
	if len(m) == 0 {
		return NopObserver()
	}
	if len(m) == 1 {
		return m[0]
	}
	return m
}

// Logger is the leveled logger the LogObserver writes to. utils.CrawlerLogger
// satisfies it.
type Logger interface {
	LogInfo(format string, v ...interface{})
	LogWarn(format string, v ...interface{})
	LogError(format string, v ...interface{})
	LogDebug(format string, v ...interface{})
}

// LogObserver renders events as log lines.
type LogObserver struct {
	logger Logger
}

func NewLogObserver(logger Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

func (o *LogObserver) Observe(e Event) {
	switch e.Kind {
	case EventRobotsFetched:
		o.logger.LogInfo("robots.txt %s declared %d sitemap(s)", e.URL, e.Count)
	case EventRobotsUnavailable:
		o.logger.LogWarn("Failed to fetch robots.txt %s: %v", e.URL, e.Err)
	case EventSitemapExpanded:
		o.logger.LogInfo("Expanded sitemap %s: %d new page(s)", e.URL, e.Count)
	case EventSitemapUnavailable:
		o.logger.LogWarn("Failed to fetch sitemap %s: %v", e.URL, e.Err)
	case EventSitemapRevisited:
		o.logger.LogDebug("Skipping already visited sitemap %s", e.URL)
	case EventSourceSelected:
		o.logger.LogInfo("Using %s discovery for %s: %d page(s)", e.Source, e.URL, e.Count)
	case EventCrawlFailed:
		o.logger.LogWarn("Native crawl of %s failed: %v", e.URL, e.Err)
	case EventPageConverted:
		o.logger.LogInfo("Saved %s to %s", e.URL, e.Path)
	case EventPageFailed:
		o.logger.LogError("Failed to process %s: %v", e.URL, e.Err)
	case EventDocumentUnrecorded:
		o.logger.LogWarn("Saved %s to %s but failed to record it: %v", e.URL, e.Path, e.Err)
	case EventRunFinished:
		if e.Err != nil {
			o.logger.LogError("Run for %s failed: %v", e.URL, e.Err)
			return
		}
		o.logger.LogInfo("Run for %s finished: %d page(s) converted", e.URL, e.Count)
	default:
		o.logger.LogDebug("%s %s", e.Kind, e.URL)
	}
}

// Recorder keeps every event it observes. It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Observe(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Count returns how many events of kind were observed.
func (r *Recorder) Count(kind EventKind) int {
	n := 0
	for _, e := range r.Events() {
		if e.Kind == kind {
			n++
		}
	}
	return n
}
