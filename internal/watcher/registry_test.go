package watcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/seenbyai/audit-console/internal/audit"
	"github.com/seenbyai/audit-console/internal/clock/system"
)

func newTestRegistry() (*Registry, *scriptedFetcher) {
	fetcher := &scriptedFetcher{fn: func(int) (audit.Job, error) {
		return running(audit.StageScrapingTarget), nil
	}}
	registry := NewRegistry(func(jobID string) *Watcher {
		return New(jobID, fetcher, system.New(), fastConfig(), nil, nil)
	})
	return registry, fetcher
}

func TestRegistryOpenReturnsSameWatcher(t *testing.T) {
	t.Parallel()

	registry, _ := newTestRegistry()
	defer registry.CloseAll()

	first := registry.Open("job-1")
	second := registry.Open("job-1")
	require.Same(t, first, second)

	other := registry.Open("job-2")
	require.NotSame(t, first, other)
}

func TestRegistryResetStopsPolling(t *testing.T) {
	t.Parallel()

	registry, fetcher := newTestRegistry()
	defer registry.CloseAll()

	w := registry.Open("job-1")
	registry.Reset("job-1")

	select {
	case <-w.Done():
	case <-time.After(time.Second):
		t.Fatal("reset did not stop the watcher")
	}
	settled := fetcher.callCount()
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, settled, fetcher.callCount())

	_, ok := registry.Get("job-1")
	require.False(t, ok)
}

func TestRegistryCloseAllStopsEverything(t *testing.T) {
	t.Parallel()

	registry, _ := newTestRegistry()
	first := registry.Open("job-1")
	second := registry.Open("job-2")
	registry.CloseAll()

	for _, w := range []*Watcher{first, second} {
		select {
		case <-w.Done():
		case <-time.After(time.Second):
			t.Fatal("close all left a watcher running")
		}
	}
}
