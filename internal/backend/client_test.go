package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/seenbyai/audit-console/internal/audit"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := New(Config{BaseURL: srv.URL, Timeout: time.Second})
	require.NoError(t, err)
	return client
}

func TestClientGetAudit(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/audit/job-42", r.URL.Path)
		_ = json.NewEncoder(w).Encode(audit.Job{
			ID:           "job-42",
			TargetDomain: "example.com",
			Status:       audit.StatusRunning,
			CurrentStage: audit.StageBuildingContext,
		})
	}))

	job, err := client.GetAudit(context.Background(), "job-42")
	require.NoError(t, err)
	require.Equal(t, "job-42", job.ID)
	require.Equal(t, audit.StatusRunning, job.Status)
	require.Equal(t, audit.StageBuildingContext, job.CurrentStage)
}

func TestClientGetAuditNotFound(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"detail":"not found"}`, http.StatusNotFound)
	}))

	_, err := client.GetAudit(context.Background(), "missing")
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusNotFound, statusErr.Code)
}

func TestClientCreateAudit(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/audit", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "example.com", body["target_domain"])
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(CreateResult{ID: "job-7", Status: "pending", Message: "queued"})
	}))

	result, err := client.CreateAudit(context.Background(), "example.com")
	require.NoError(t, err)
	require.Equal(t, "job-7", result.ID)
	require.Equal(t, "pending", result.Status)
}

func TestClientRejectsRelativeBaseURL(t *testing.T) {
	t.Parallel()

	_, err := New(Config{BaseURL: "localhost:8000"})
	require.Error(t, err)
}

func TestJSONDownloadURL(t *testing.T) {
	t.Parallel()

	client, err := New(Config{BaseURL: "https://api.example.com/"})
	require.NoError(t, err)
	require.Equal(t,
		"https://api.example.com/api/audit/job-9/json",
		client.JSONDownloadURL("job-9"),
	)
}

func TestReportPath(t *testing.T) {
	t.Parallel()

	require.Equal(t, "/report/job-9?access=preview", ReportPath("job-9"))
}
