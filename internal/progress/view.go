package progress

import "github.com/seenbyai/audit-console/internal/audit"

// Phase names the mutually exclusive views derived from State.
type Phase string

// View phases. Failed is the terminal backend failure; Error is a fetch
// failure and clears itself on the next successful poll.
const (
	PhaseLoading    Phase = "loading"
	PhaseError      Phase = "error"
	PhaseFailed     Phase = "failed"
	PhaseInProgress Phase = "in_progress"
	PhaseCompleted  Phase = "completed"
)

// StepView is one rendered row of the progressive reveal.
type StepView struct {
	Number    int    `json:"number"`
	Label     string `json:"label"`
	Completed bool   `json:"completed"`
	Active    bool   `json:"active"`
}

// View is the full render model for one state. Steps beyond the current
// display step are absent, not greyed out.
type View struct {
	Phase        Phase              `json:"phase"`
	Steps        []StepView         `json:"steps,omitempty"`
	ErrorMessage string             `json:"error_message,omitempty"`
	ScrapeDebug  *audit.ScrapeDebug `json:"scrape_debug,omitempty"`
}

// View derives the render model. Exactly one phase applies:
//   - loading while nothing has been fetched and nothing has failed,
//   - error when the most recent fetch attempt failed,
//   - failed once the backend reports a terminal failure,
//   - completed once the backend reports completion,
//   - in-progress otherwise, revealing steps 1..Step only.
func (s State) View() View {
	if s.FetchErr != nil {
		return View{Phase: PhaseError, ErrorMessage: "Failed to fetch audit status"}
	}
	if s.Job == nil {
		return View{Phase: PhaseLoading}
	}
	switch s.Job.Status {
	case audit.StatusFailed:
		return View{
			Phase:        PhaseFailed,
			ErrorMessage: s.Job.ErrorMessage,
			ScrapeDebug:  s.Job.ScrapeDebug,
		}
	case audit.StatusCompleted:
		return View{Phase: PhaseCompleted, Steps: stepViews(audit.StepCount, true)}
	default:
		return View{Phase: PhaseInProgress, Steps: stepViews(s.Step, false)}
	}
}

// stepViews renders steps 1..upTo. When allDone is false the highest step is
// marked active and the rest completed.
func stepViews(upTo int, allDone bool) []StepView {
	if upTo < 1 {
		return nil
	}
	if upTo > audit.StepCount {
		upTo = audit.StepCount
	}
	steps := make([]StepView, 0, upTo)
	for n := 1; n <= upTo; n++ {
		steps = append(steps, StepView{
			Number:    n,
			Label:     audit.StepLabels[n-1],
			Completed: allDone || n < upTo,
			Active:    !allDone && n == upTo,
		})
	}
	return steps
}
