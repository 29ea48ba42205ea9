package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/seenbyai/audit-console/internal/backend"
	"github.com/seenbyai/audit-console/internal/progress"
)

type createAuditRequest struct {
	TargetDomain string `json:"target_domain"`
}

// statusView is the projected model the web UI polls instead of the raw job.
type statusView struct {
	JobID        string `json:"job_id"`
	TargetDomain string `json:"target_domain,omitempty"`
	progress.View
	Polling      bool     `json:"polling"`
	RedirectTo   string   `json:"redirect_to,omitempty"`
	JSONDownload string   `json:"json_download,omitempty"`
	PagesScraped int      `json:"total_pages_scraped,omitempty"`
	Competitors  []string `json:"competitor_domains,omitempty"`
}

func (s *Server) createAudit(w http.ResponseWriter, r *http.Request) {
	var req createAuditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.TargetDomain == "" {
		writeError(w, http.StatusBadRequest, "target_domain required")
		return
	}
	result, err := s.client.CreateAudit(r.Context(), req.TargetDomain)
	if err != nil {
		s.writeBackendError(w, err)
		return
	}
	// Start polling right away so the first view request has a snapshot.
	s.registry.Open(result.ID)
	writeJSON(w, http.StatusAccepted, result)
}

func (s *Server) getAudit(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	job, err := s.client.GetAudit(r.Context(), jobID)
	if err != nil {
		s.writeBackendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) getStatusView(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	state := s.registry.Open(jobID).Snapshot()
	view := statusView{
		JobID:   jobID,
		View:    state.View(),
		Polling: state.ShouldPoll(),
	}
	if job := state.Job; job != nil {
		view.TargetDomain = job.TargetDomain
		if view.Phase == progress.PhaseCompleted {
			view.RedirectTo = backend.ReportPath(jobID)
			view.JSONDownload = s.client.JSONDownloadURL(jobID)
			view.PagesScraped = job.PagesScraped
			view.Competitors = job.CompetitorsList
		}
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) resetView(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	s.registry.Reset(jobID)
	writeJSON(w, http.StatusOK, map[string]string{"job_id": jobID, "status": "reset"})
}

// downloadJSON hands the browser to the backend's raw result endpoint. The
// console never fetches the payload itself.
func (s *Server) downloadJSON(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	http.Redirect(w, r, s.client.JSONDownloadURL(jobID), http.StatusFound)
}

func (s *Server) writeBackendError(w http.ResponseWriter, err error) {
	var statusErr *backend.StatusError
	if asStatusError(err, &statusErr) {
		switch statusErr.Code {
		case http.StatusNotFound:
			writeError(w, http.StatusNotFound, "audit not found")
		case http.StatusBadRequest:
			writeError(w, http.StatusBadRequest, "backend rejected request")
		default:
			writeError(w, http.StatusBadGateway, "audit backend error")
		}
		return
	}
	writeError(w, http.StatusBadGateway, "audit backend unreachable")
}

func asStatusError(err error, target **backend.StatusError) bool {
	return errors.As(err, target)
}
