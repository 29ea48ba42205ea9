// Package backend is the HTTP client for the external audit API. The console
// never runs audits itself; everything substantive happens behind this client.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/seenbyai/audit-console/internal/audit"
)

// StatusFetcher is the narrow read surface the watcher polls against.
type StatusFetcher interface {
	GetAudit(ctx context.Context, jobID string) (audit.Job, error)
}

// StatusError reports a non-2xx response from the audit API.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("audit api returned %d", e.Code)
}

// Config controls Client behavior.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the audit backend over HTTP.
type Client struct {
	base *url.URL
	http *http.Client
}

// New constructs a Client. BaseURL must include the scheme and host.
func New(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", cfg.BaseURL)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		base: base,
		http: &http.Client{Timeout: timeout},
	}, nil
}

// CreateAudit submits a new audit for the given domain and returns the
// created job's identity as reported by the backend.
func (c *Client) CreateAudit(ctx context.Context, domain string) (CreateResult, error) {
	payload, err := json.Marshal(map[string]string{"target_domain": domain})
	if err != nil {
		return CreateResult{}, fmt.Errorf("encode create request: %w", err)
	}
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.endpoint("/api/audit"), bytes.NewReader(payload),
	)
	if err != nil {
		return CreateResult{}, fmt.Errorf("build create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var out CreateResult
	if err := c.do(req, &out); err != nil {
		return CreateResult{}, err
	}
	return out, nil
}

// GetAudit fetches the current job snapshot.
func (c *Client) GetAudit(ctx context.Context, jobID string) (audit.Job, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.endpoint("/api/audit/"+url.PathEscape(jobID)), nil,
	)
	if err != nil {
		return audit.Job{}, fmt.Errorf("build status request: %w", err)
	}
	var job audit.Job
	if err := c.do(req, &job); err != nil {
		return audit.Job{}, err
	}
	return job, nil
}

// JSONDownloadURL is the passthrough link for the raw audit result. The
// console redirects to it without fetching the payload itself.
func (c *Client) JSONDownloadURL(jobID string) string {
	return c.endpoint("/api/audit/" + url.PathEscape(jobID) + "/json")
}

// CreateResult is the backend's response to a new audit submission.
type CreateResult struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (c *Client) endpoint(path string) string {
	return c.base.String() + path
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("audit api request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Code: resp.StatusCode, Body: string(body)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode audit api response: %w", err)
	}
	return nil
}

// ReportPath is the navigation target shown once an audit completes. Relative
// so the front end resolves it against its own origin.
func ReportPath(jobID string) string {
	return "/report/" + url.PathEscape(jobID) + "?access=preview"
}
