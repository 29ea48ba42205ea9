// Package progress projects a stable four-step display from the backend's
// uneven stage signal. The projector is a pure reducer over poll results and
// clock ticks; the watcher package drives it with real timers.
package progress

import (
	"time"

	"github.com/seenbyai/audit-console/internal/audit"
)

// DefaultStepAdvance is how long a step may sit idle before the display
// advances on its own to keep the page perceptibly moving.
const DefaultStepAdvance = 30 * time.Second

// Event is one input to the reducer.
type Event interface{ at() time.Time }

// PollOK carries a successfully fetched job snapshot.
type PollOK struct {
	Job audit.Job
	At  time.Time
}

// PollErr records a failed status fetch. Polling continues; the error only
// shapes the view until the next successful fetch clears it.
type PollErr struct {
	Err error
	At  time.Time
}

// Tick is a periodic evaluation point with no new backend data.
type Tick struct {
	At time.Time
}

func (e PollOK) at() time.Time  { return e.At }
func (e PollErr) at() time.Time { return e.At }
func (e Tick) at() time.Time    { return e.At }

// State is the projector's full condition. The zero value is the initial
// state: nothing fetched yet, display uninitialized.
type State struct {
	// Step is the display step in [1, StepCount], or 0 before the first
	// successful fetch of a non-terminal job. Monotonically non-decreasing.
	Step int
	// StepStartedAt is when Step last changed; the synthetic advance timer
	// measures from here.
	StepStartedAt time.Time
	// Job is the last successfully fetched snapshot, nil before the first.
	Job *audit.Job
	// FetchErr is the error from the most recent poll attempt, nil if the
	// last attempt succeeded.
	FetchErr error
}

// ShouldPoll reports whether another status fetch is warranted. Derived
// fresh from the latest snapshot: only an observed terminal status stops
// the poll loop, never a fetch failure.
func (s State) ShouldPoll() bool {
	return s.Job == nil || !s.Job.Status.Terminal()
}

// Projector reduces events into display state. StepAdvance is the idle
// duration after which steps 1 and 2 advance without backend confirmation.
type Projector struct {
	StepAdvance time.Duration
}

// NewProjector returns a Projector with the default advance interval.
func NewProjector() Projector {
	return Projector{StepAdvance: DefaultStepAdvance}
}

// Reduce applies one event and returns the next state. Pure: no timers, no
// I/O. Transition rules, in priority order: initialization, backend
// catch-up, synthetic auto-advance. Steps 3 and 4 never advance by timer;
// step 4 resolves only through a terminal status.
func (p Projector) Reduce(s State, ev Event) State {
	advance := p.StepAdvance
	if advance <= 0 {
		advance = DefaultStepAdvance
	}

	switch ev := ev.(type) {
	case PollOK:
		job := ev.Job
		s.Job = &job
		s.FetchErr = nil
		if job.Status == audit.StatusCompleted {
			s.Step = audit.StepCount
			return s
		}
		if job.Status.Terminal() {
			return s
		}
		if s.Step == 0 {
			s.Step = 1
			s.StepStartedAt = ev.At
		}
		if backend := audit.ActiveStep(job.CurrentStage); backend > s.Step {
			s.Step = backend
			s.StepStartedAt = ev.At
		}
		return p.autoAdvance(s, ev.At, advance)
	case PollErr:
		s.FetchErr = ev.Err
		return s
	case Tick:
		if s.Job == nil || s.Job.Status.Terminal() {
			return s
		}
		return p.autoAdvance(s, ev.At, advance)
	default:
		return s
	}
}

// autoAdvance applies the synthetic timer rule: steps 1 and 2 move forward
// by exactly one once the step has been held for the advance interval.
func (Projector) autoAdvance(s State, now time.Time, advance time.Duration) State {
	if s.Step < 1 || s.Step > 2 {
		return s
	}
	if now.Sub(s.StepStartedAt) >= advance {
		s.Step++
		s.StepStartedAt = now
	}
	return s
}
