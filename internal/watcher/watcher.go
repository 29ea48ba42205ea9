// Package watcher runs the status poll loop for one audit job view and keeps
// the projected display state current until the job settles.
package watcher

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/seenbyai/audit-console/internal/audit"
	"github.com/seenbyai/audit-console/internal/backend"
	"github.com/seenbyai/audit-console/internal/clock"
	"github.com/seenbyai/audit-console/internal/metrics"
	"github.com/seenbyai/audit-console/internal/progress"
)

// Default cadences. Poll and step advance follow the product's status page;
// the tick just re-evaluates the synthetic advance between polls.
const (
	DefaultPollInterval  = 3 * time.Second
	DefaultTickInterval  = time.Second
	DefaultRedirectDelay = 800 * time.Millisecond
)

// Config controls Watcher timing. Zero fields take the defaults above.
type Config struct {
	PollInterval  time.Duration
	TickInterval  time.Duration
	StepAdvance   time.Duration
	RedirectDelay time.Duration
}

func (c Config) withDefaults() Config {
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.TickInterval <= 0 {
		c.TickInterval = DefaultTickInterval
	}
	if c.StepAdvance <= 0 {
		c.StepAdvance = progress.DefaultStepAdvance
	}
	if c.RedirectDelay <= 0 {
		c.RedirectDelay = DefaultRedirectDelay
	}
	return c
}

// Navigate is invoked once, after the redirect delay, when the watched job
// completes. Injected so callers decide what "navigation" means (browser
// redirect target, CLI exit, test capture).
type Navigate func(jobID, target string)

// Watcher polls one job and reduces the results into display state. Safe for
// concurrent snapshot reads while the loop runs.
type Watcher struct {
	jobID    string
	fetcher  backend.StatusFetcher
	clock    clock.Clock
	proj     progress.Projector
	cfg      Config
	navigate Navigate
	logger   *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	doneCh chan struct{}

	mu            sync.RWMutex
	state         progress.State
	redirectTimer *time.Timer
	redirectDone  chan struct{}
	closed        bool

	closeOnce    sync.Once
	redirectOnce sync.Once
}

// New starts a Watcher for jobID. The returned watcher polls immediately and
// then at the configured cadence until the job settles or Close is called.
func New(
	jobID string,
	fetcher backend.StatusFetcher,
	clk clock.Clock,
	cfg Config,
	navigate Navigate,
	logger *zap.Logger,
) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if navigate == nil {
		navigate = func(string, string) {}
	}
	cfg = cfg.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		jobID:    jobID,
		fetcher:  fetcher,
		clock:    clk,
		proj:     progress.Projector{StepAdvance: cfg.StepAdvance},
		cfg:      cfg,
		navigate: navigate,
		logger:   logger.With(zap.String("job_id", jobID)),
		ctx:      ctx,
		cancel:   cancel,
		doneCh:   make(chan struct{}),
	}
	go w.run()
	return w
}

// JobID returns the watched job's identifier.
func (w *Watcher) JobID() string {
	return w.jobID
}

// Snapshot returns the current display state. The embedded job pointer is a
// read-only snapshot; callers must not mutate it.
func (w *Watcher) Snapshot() progress.State {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state
}

// Done is closed once the poll loop has exited, either because the job
// settled or because Close was called.
func (w *Watcher) Done() <-chan struct{} {
	return w.doneCh
}

// Close stops polling and cancels any pending redirect. Safe to call more
// than once; a redirect callback never fires after Close returns.
func (w *Watcher) Close() {
	w.closeOnce.Do(func() {
		w.cancel()
		var pending <-chan struct{}
		w.mu.Lock()
		w.closed = true
		if w.redirectTimer != nil && !w.redirectTimer.Stop() {
			// The callback already started; wait for it so navigate
			// cannot fire after Close returns.
			pending = w.redirectDone
		}
		w.mu.Unlock()
		if pending != nil {
			<-pending
		}
	})
	<-w.doneCh
}

func (w *Watcher) run() {
	defer close(w.doneCh)

	if w.pollOnce() {
		return
	}

	pollTicker := time.NewTicker(w.cfg.PollInterval)
	defer pollTicker.Stop()
	tickTicker := time.NewTicker(w.cfg.TickInterval)
	defer tickTicker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-pollTicker.C:
			if w.pollOnce() {
				return
			}
		case <-tickTicker.C:
			w.apply(progress.Tick{At: w.clock.Now()})
		}
	}
}

// pollOnce issues one status fetch and reports whether the loop should stop.
// The stop decision is re-derived from the freshly reduced state each time.
func (w *Watcher) pollOnce() bool {
	ctx, cancel := context.WithTimeout(w.ctx, w.cfg.PollInterval)
	defer cancel()

	job, err := w.fetcher.GetAudit(ctx, w.jobID)
	now := w.clock.Now()
	if err != nil {
		if w.ctx.Err() != nil {
			return true
		}
		metrics.ObservePoll(metrics.PollOutcomeError)
		w.logger.Warn("status fetch failed", zap.Error(err))
		w.apply(progress.PollErr{Err: err, At: now})
		return false
	}
	metrics.ObservePoll(metrics.PollOutcomeOK)
	state := w.apply(progress.PollOK{Job: job, At: now})

	if job.Status == audit.StatusCompleted {
		w.scheduleRedirect()
	}
	return !state.ShouldPoll()
}

func (w *Watcher) apply(ev progress.Event) progress.State {
	w.mu.Lock()
	before := w.state.Step
	w.state = w.proj.Reduce(w.state, ev)
	next := w.state
	w.mu.Unlock()
	after := next.Step

	if after > before {
		reason := metrics.AdvanceReasonTimer
		if _, ok := ev.(progress.PollOK); ok {
			reason = metrics.AdvanceReasonBackend
		}
		metrics.ObserveStepAdvance(reason)
		w.logger.Debug("display step advanced",
			zap.Int("from", before),
			zap.Int("to", after),
		)
	}
	return next
}

// scheduleRedirect arms the one-shot delayed navigation. Repeated completed
// responses observed before the delay elapses do not re-arm it.
func (w *Watcher) scheduleRedirect() {
	w.redirectOnce.Do(func() {
		target := backend.ReportPath(w.jobID)
		done := make(chan struct{})
		w.mu.Lock()
		if w.closed {
			w.mu.Unlock()
			return
		}
		w.redirectDone = done
		w.redirectTimer = time.AfterFunc(w.cfg.RedirectDelay, func() {
			defer close(done)
			w.mu.RLock()
			closed := w.closed
			w.mu.RUnlock()
			if closed {
				return
			}
			metrics.ObserveRedirect()
			w.logger.Info("audit completed, navigating", zap.String("target", target))
			w.navigate(w.jobID, target)
		})
		w.mu.Unlock()
	})
}
