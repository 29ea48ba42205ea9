// Package audit defines the job model shared across the console subsystems.
package audit

import "time"

// Status represents the lifecycle state of an audit job as reported by the
// backend. Any value other than completed/failed is treated as in flight.
type Status string

// Job status values observed on the status endpoint.
const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Terminal reports whether the status ends the job's lifecycle. Unknown
// values are non-terminal so polling continues until the backend settles.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job mirrors the backend audit job resource. The console never mutates it;
// every field is owned by the backend pipeline.
type Job struct {
	ID              string       `json:"id"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
	TargetDomain    string       `json:"target_domain"`
	CompetitorsList []string     `json:"competitor_domains"`
	Locale          string       `json:"locale,omitempty"`
	Status          Status       `json:"status"`
	CurrentStage    Stage        `json:"current_stage,omitempty"`
	ProgressPercent int          `json:"progress_percent"`
	ErrorMessage    string       `json:"error_message,omitempty"`
	PagesScraped    int          `json:"total_pages_scraped"`
	ScrapeDebug     *ScrapeDebug `json:"scrape_debug,omitempty"`
}

// ScrapeDebug carries the diagnostic detail the backend attaches to failed
// scrapes. Rendered verbatim on the failed view; never interpreted here.
type ScrapeDebug struct {
	InputURL       string           `json:"input_url,omitempty"`
	FinalURL       string           `json:"final_url,omitempty"`
	BlockedReason  string           `json:"blocked_reason,omitempty"`
	PagesAttempted int              `json:"pages_attempted"`
	PagesSuccess   int              `json:"pages_success"`
	PagesFailed    int              `json:"pages_failed"`
	Timings        map[string]int64 `json:"timings,omitempty"`
	Errors         []string         `json:"errors,omitempty"`
}
