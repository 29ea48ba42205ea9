package progress

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/seenbyai/audit-console/internal/audit"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func runningJob(stage audit.Stage) audit.Job {
	return audit.Job{
		ID:           "job-1",
		TargetDomain: "example.com",
		Status:       audit.StatusRunning,
		CurrentStage: stage,
	}
}

// TestInitializationOnFirstSnapshot verifies the display starts at step 1
// once a non-terminal job is first observed.
func TestInitializationOnFirstSnapshot(t *testing.T) {
	t.Parallel()

	p := NewProjector()
	s := p.Reduce(State{}, PollOK{Job: runningJob(""), At: t0})
	require.Equal(t, 1, s.Step)
	require.Equal(t, t0, s.StepStartedAt)
	require.True(t, s.ShouldPoll())
}

// TestBackendAheadJump verifies the display jumps straight to the backend's
// step with no intermediate values.
func TestBackendAheadJump(t *testing.T) {
	t.Parallel()

	p := NewProjector()
	s := p.Reduce(State{}, PollOK{Job: runningJob(""), At: t0})
	s = p.Reduce(s, PollOK{Job: runningJob(audit.StageCoreAudit), At: t0.Add(3 * time.Second)})
	require.Equal(t, 3, s.Step)
	require.Equal(t, t0.Add(3*time.Second), s.StepStartedAt)
}

// TestDisplayNeverRegresses feeds a backend stage that maps lower than the
// current display step and expects no movement.
func TestDisplayNeverRegresses(t *testing.T) {
	t.Parallel()

	p := NewProjector()
	s := p.Reduce(State{}, PollOK{Job: runningJob(audit.StageCoreAudit), At: t0})
	require.Equal(t, 3, s.Step)

	s = p.Reduce(s, PollOK{Job: runningJob(audit.StageScrapingTarget), At: t0.Add(3 * time.Second)})
	require.Equal(t, 3, s.Step)
}

// TestMonotonicOverSequence replays an out-of-order stage sequence and checks
// the displayed step never decreases.
func TestMonotonicOverSequence(t *testing.T) {
	t.Parallel()

	stages := []audit.Stage{
		audit.StageScrapingTarget,
		audit.StageTestingAIModels,
		audit.StageScrapingCompetitors,
		"",
		audit.StageRenderingHTML,
		audit.StagePreparingContext,
		"mystery_stage",
	}
	p := NewProjector()
	var s State
	prev := 0
	for i, stage := range stages {
		s = p.Reduce(s, PollOK{Job: runningJob(stage), At: t0.Add(time.Duration(i) * 3 * time.Second)})
		require.GreaterOrEqual(t, s.Step, prev, "stage %q", stage)
		prev = s.Step
	}
	require.Equal(t, 4, s.Step)
}

// TestSyntheticAdvanceTiming exercises the synthetic advance timer: no advance
// before the interval, exactly one step at the interval, and no skipping.
func TestSyntheticAdvanceTiming(t *testing.T) {
	t.Parallel()

	p := Projector{StepAdvance: 30 * time.Second}
	s := p.Reduce(State{}, PollOK{Job: runningJob(audit.StageScrapingTarget), At: t0})
	require.Equal(t, 1, s.Step)

	s = p.Reduce(s, Tick{At: t0.Add(29 * time.Second)})
	require.Equal(t, 1, s.Step, "must not advance before the interval")

	s = p.Reduce(s, Tick{At: t0.Add(30 * time.Second)})
	require.Equal(t, 2, s.Step)
	require.Equal(t, t0.Add(30*time.Second), s.StepStartedAt)

	s = p.Reduce(s, Tick{At: t0.Add(59 * time.Second)})
	require.Equal(t, 2, s.Step, "second advance needs its own interval")

	s = p.Reduce(s, Tick{At: t0.Add(60 * time.Second)})
	require.Equal(t, 3, s.Step)
}

// TestStepThreeHolds confirms the timer never moves the display past step 3;
// only backend confirmation can.
func TestStepThreeHolds(t *testing.T) {
	t.Parallel()

	p := Projector{StepAdvance: 30 * time.Second}
	s := p.Reduce(State{}, PollOK{Job: runningJob(audit.StageIdentifyingGaps), At: t0})
	require.Equal(t, 3, s.Step)

	s = p.Reduce(s, Tick{At: t0.Add(10 * time.Minute)})
	require.Equal(t, 3, s.Step)

	s = p.Reduce(s, PollOK{Job: runningJob(audit.StageGeneratingPDF), At: t0.Add(11 * time.Minute)})
	require.Equal(t, 4, s.Step)
}

// TestStepFourIsASink parks the display at step 4 and confirms time alone
// never moves it.
func TestStepFourIsASink(t *testing.T) {
	t.Parallel()

	p := Projector{StepAdvance: time.Second}
	s := p.Reduce(State{}, PollOK{Job: runningJob(audit.StageSavingToDatabase), At: t0})
	require.Equal(t, 4, s.Step)

	for i := 1; i <= 100; i++ {
		s = p.Reduce(s, Tick{At: t0.Add(time.Duration(i) * time.Minute)})
		require.Equal(t, 4, s.Step)
	}
	require.True(t, s.ShouldPoll(), "step 4 alone does not end polling")
}

// TestCompletedStopsPolling verifies a completed snapshot fills the display
// and ends the poll loop.
func TestCompletedStopsPolling(t *testing.T) {
	t.Parallel()

	job := runningJob("")
	job.Status = audit.StatusCompleted
	p := NewProjector()
	s := p.Reduce(State{Step: 2, StepStartedAt: t0}, PollOK{Job: job, At: t0.Add(time.Second)})
	require.Equal(t, audit.StepCount, s.Step)
	require.False(t, s.ShouldPoll())
}

// TestFailedStopsPolling verifies a failed snapshot ends the poll loop and
// leaves the display where it was.
func TestFailedStopsPolling(t *testing.T) {
	t.Parallel()

	job := runningJob("")
	job.Status = audit.StatusFailed
	job.ErrorMessage = "[scraping_target] connection refused"
	p := NewProjector()
	s := p.Reduce(State{Step: 2, StepStartedAt: t0}, PollOK{Job: job, At: t0.Add(time.Second)})
	require.Equal(t, 2, s.Step)
	require.False(t, s.ShouldPoll())
}

// TestFetchErrorSelfHeals checks the error projection clears on the next
// successful poll and never stops the loop on its own.
func TestFetchErrorSelfHeals(t *testing.T) {
	t.Parallel()

	p := NewProjector()
	s := p.Reduce(State{}, PollErr{Err: errors.New("boom"), At: t0})
	require.Error(t, s.FetchErr)
	require.True(t, s.ShouldPoll())
	require.Equal(t, PhaseError, s.View().Phase)

	s = p.Reduce(s, PollOK{Job: runningJob(audit.StageBuildingContext), At: t0.Add(3 * time.Second)})
	require.NoError(t, s.FetchErr)
	require.Equal(t, PhaseInProgress, s.View().Phase)
	require.Equal(t, 2, s.Step)
}

// TestTickBeforeFirstSnapshotIsInert ensures ticks cannot initialize the
// display; only a loaded job can.
func TestTickBeforeFirstSnapshotIsInert(t *testing.T) {
	t.Parallel()

	p := Projector{StepAdvance: time.Millisecond}
	s := p.Reduce(State{}, Tick{At: t0.Add(time.Hour)})
	require.Zero(t, s.Step)
	require.Nil(t, s.Job)
}
