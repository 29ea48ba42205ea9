package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/seenbyai/audit-console/internal/audit"
	"github.com/seenbyai/audit-console/internal/backend"
	"github.com/seenbyai/audit-console/internal/clock/system"
	"github.com/seenbyai/audit-console/internal/config"
	"github.com/seenbyai/audit-console/internal/progress"
	"github.com/seenbyai/audit-console/internal/watcher"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <job-id>",
		Short: "Follow an audit's progress from the terminal.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, client, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck // best-effort flush
			return watchJob(args[0], cfg, client)
		},
	}
}

// watchJob runs a watcher and prints steps as the display reveals them,
// mirroring the web status view.
func watchJob(jobID string, cfg config.Config, fetcher backend.StatusFetcher) error {
	watchCfg := watcher.Config{
		PollInterval:  cfg.Status.PollInterval(),
		TickInterval:  cfg.Status.TickInterval(),
		StepAdvance:   cfg.Status.StepAdvance(),
		RedirectDelay: cfg.Status.RedirectDelay(),
	}
	redirected := make(chan string, 1)
	w := watcher.New(jobID, fetcher, system.New(), watchCfg, func(_, target string) {
		redirected <- target
	}, nil)
	defer w.Close()

	printed := 0
	render := time.NewTicker(200 * time.Millisecond)
	defer render.Stop()

	for {
		select {
		case <-w.Done():
			return finishWatch(w.Snapshot(), redirected)
		case <-render.C:
			state := w.Snapshot()
			view := state.View()
			for _, step := range view.Steps {
				if step.Number > printed {
					fmt.Printf("  [%d/%d] %s\n", step.Number, audit.StepCount, step.Label)
					printed = step.Number
				}
			}
		}
	}
}

func finishWatch(state progress.State, redirected <-chan string) error {
	view := state.View()
	switch view.Phase {
	case progress.PhaseCompleted:
		select {
		case target := <-redirected:
			fmt.Printf("\nAudit complete. Report: %s\n", target)
		case <-time.After(2 * time.Second):
			fmt.Println("\nAudit complete.")
		}
		printSummary(state.Job)
		return nil
	case progress.PhaseFailed:
		fmt.Fprintf(os.Stderr, "\nAudit failed: %s\n", view.ErrorMessage)
		if dbg := view.ScrapeDebug; dbg != nil {
			fmt.Fprintf(os.Stderr, "  pages attempted=%d success=%d failed=%d\n",
				dbg.PagesAttempted, dbg.PagesSuccess, dbg.PagesFailed)
			for _, e := range dbg.Errors {
				fmt.Fprintf(os.Stderr, "  - %s\n", e)
			}
		}
		return errors.New("audit failed")
	default:
		return errors.New("watch aborted before the audit settled")
	}
}

func printSummary(job *audit.Job) {
	if job == nil {
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Domain", "Pages scraped", "Competitors"})
	t.AppendRow(table.Row{job.TargetDomain, job.PagesScraped, len(job.CompetitorsList)})
	for _, competitor := range job.CompetitorsList {
		t.AppendRow(table.Row{"", "", competitor})
	}
	t.Render()
}
