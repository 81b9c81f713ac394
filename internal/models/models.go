package models

import (
	"time"

	"github.com/google/uuid"
)

type RunStatus string

const (
	RunStatusRunning   RunStatus = "Running"
	RunStatusCompleted RunStatus = "Completed"
	RunStatusError     RunStatus = "Error"
)

// Document is one converted page.
type Document struct {
	ID          uuid.UUID `json:"id"`
	RunID       uuid.UUID `json:"run_id"`
	URL         string    `json:"url"`
	Filename    string    `json:"filename"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Markdown    string    `json:"markdown"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Run records one discovery + conversion pass over a site root.
type Run struct {
	ID         uuid.UUID  `json:"id"`
	Root       string     `json:"root"`
	Status     RunStatus  `json:"status"`
	Source     string     `json:"source,omitempty"`
	Discovered int        `json:"discovered"`
	Converted  int        `json:"converted"`
	Failed     int        `json:"failed"`
	Errors     []string   `json:"errors,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// RunSummary is what a pipeline pass reports back to its caller.
type RunSummary struct {
	Root       string
	Source     string
	Discovered int
	Converted  int
	Failed     int
	Errors     []string
}

// NewDocument creates a document with generated UUID and timestamps
func NewDocument(runID uuid.UUID, url string) *Document {
	now := time.Now()
	return &Document{
		ID:        uuid.New(),
		RunID:     runID,
		URL:       url,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewRun creates a running run for root.
func NewRun(root string) *Run {
	return &Run{
		ID:        uuid.New(),
		Root:      root,
		Status:    RunStatusRunning,
		StartedAt: time.Now(),
	}
}

// Finish copies the summary into the run and stamps it.
func (r *Run) Finish(summary *RunSummary, err error) {
	now := time.Now()
	r.FinishedAt = &now
	if summary != nil {
		r.Source = summary.Source
		r.Discovered = summary.Discovered
		r.Converted = summary.Converted
		r.Failed = summary.Failed
		r.Errors = append(r.Errors, summary.Errors...)
	}
	if err != nil {
		r.Status = RunStatusError
		r.Errors = append(r.Errors, err.Error())
		return
	}
	r.Status = RunStatusCompleted
}
