package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/reportkit/internal/core"
)

// exampleTimeLayout is ISO 8601 in UTC with millisecond precision.
const exampleTimeLayout = "2006-01-02T15:04:05.000Z"

// ExampleResponse is the body of GET /api/scheduled_reports/example.
type ExampleResponse struct {
	Time string `json:"time"`
}

// handleExample returns the current server time.
func (s *Server) handleExample(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ExampleResponse{
		Time: s.clock().UTC().Format(exampleTimeLayout),
	})
}

// handleCreateScheduledReport validates and stores a scheduled report.
func (s *Server) handleCreateScheduledReport(w http.ResponseWriter, r *http.Request) {
	var req core.CreateScheduledReportRequest
	if err := decodeJSON(w, r, MaxReportBodyBytes, &req); err != nil {
		respondError(w, r, err)
		return
	}

	report, err := s.service.CreateScheduledReport(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleListScheduledReports(w http.ResponseWriter, r *http.Request) {
	reports, err := s.service.ListScheduledReports(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

func (s *Server) handleGetScheduledReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.service.GetScheduledReport(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleDeleteScheduledReport(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteScheduledReport(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}
